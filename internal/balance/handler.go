package balance

import (
	"context"
	"net/http"

	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/transport"
)

type EngineAPI interface {
	GetBalance(ctx context.Context, employeeID int64) (money.Amount, error)
	GetAllBalances(ctx context.Context) ([]EmployeeBalance, error)
	GetNegativeBalances(ctx context.Context) ([]EmployeeBalance, error)
	AddAdvance(ctx context.Context, employeeID int64, amount money.Amount, comment string) (*Outcome, error)
	Refund(ctx context.Context, employeeID int64, amount money.Amount, comment string) (*Outcome, error)
	Reconcile(ctx context.Context, employeeID int64) (*Reconciliation, error)
}

type Handler struct {
	*transport.BaseHandler
	Engine EngineAPI
}

func NewHandler(baseHandler *transport.BaseHandler, engine EngineAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Engine: engine}
}

func (h *Handler) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.CurrentEmployeeID(w, r)
	if !ok {
		return
	}
	balance, err := h.Engine.GetBalance(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, BalanceResponse{EmployeeID: id, Balance: balance})
}

func (h *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.Engine.GetAllBalances(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, newBalancesResponse(balances))
}

func (h *Handler) ListNegativeBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.Engine.GetNegativeBalances(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, newBalancesResponse(balances))
}

func (h *Handler) AddAdvance(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.Engine.AddAdvance)
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.Engine.Refund)
}

func (h *Handler) movement(w http.ResponseWriter, r *http.Request, apply func(context.Context, int64, money.Amount, string) (*Outcome, error)) {
	id, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}
	var dto MovementDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}
	out, err := apply(r.Context(), id, dto.Amount, dto.Comment)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}
	rec, err := h.Engine.Reconcile(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rec)
}
