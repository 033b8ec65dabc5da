package limit

import (
	"context"
	"net/http"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/transport"
)

type EvaluatorAPI interface {
	Evaluate(ctx context.Context, employeeID int64, amount money.Amount) Result
}

type Handler struct {
	*transport.BaseHandler
	Evaluator EvaluatorAPI
}

func NewHandler(baseHandler *transport.BaseHandler, evaluator EvaluatorAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Evaluator: evaluator}
}

// GetMyLimit previews how a candidate amount would be classified; amount defaults to zero.
func (h *Handler) GetMyLimit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.CurrentEmployeeID(w, r)
	if !ok {
		return
	}

	var amount money.Amount
	if raw := r.URL.Query().Get("amount"); raw != "" {
		parsed, err := money.Parse(raw)
		if err != nil || parsed < 0 {
			h.HandleServiceError(w, internal.NewValidationFieldError("amount", "amount must be a non-negative number", internal.ErrCodeInvalidAmount))
			return
		}
		amount = parsed
	}

	h.WriteJSON(w, http.StatusOK, h.Evaluator.Evaluate(r.Context(), id, amount))
}
