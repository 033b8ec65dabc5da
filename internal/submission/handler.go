package submission

import (
	"context"
	"net/http"

	"github.com/frahmantamala/expense-bot/internal/transport"
)

type ServiceAPI interface {
	Submit(ctx context.Context, employeeID int64, dto SubmitExpenseDTO) (*Result, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

// SubmitExpense answers 201 when the expense was recorded and 202 when it waits for limit approval.
func (h *Handler) SubmitExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := h.CurrentEmployeeID(w, r)
	if !ok {
		return
	}
	var dto SubmitExpenseDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	res, err := h.Service.Submit(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if res.Outcome == OutcomeApprovalRequired {
		status = http.StatusAccepted
	}
	h.WriteJSON(w, status, res)
}
