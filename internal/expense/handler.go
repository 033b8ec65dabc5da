package expense

import (
	"context"
	"net/http"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, filter Filter) ([]*Expense, error)
	RequestCompensation(ctx context.Context, expenseID string, employeeID int64, note string) (*Expense, error)
	ApproveCompensation(ctx context.Context, expenseID string) (*Expense, error)
	RejectCompensation(ctx context.Context, expenseID, reason string) (*Expense, error)
	MarkCompensationPaid(ctx context.Context, expenseID string) (*Expense, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	// IsAdmin decides whether the caller may list other employees' expenses.
	IsAdmin func(role string) bool
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, isAdmin func(role string) bool) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		IsAdmin:     isAdmin,
	}
}

// ListExpenses returns the caller's own expenses; admins may pass employee_id or omit it for everyone.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.CurrentEmployeeID(w, r)
	if !ok {
		return
	}

	filter, appErr := FilterFromQuery(r.URL.Query())
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}
	if !h.IsAdmin(internal.RoleFromContext(r.Context())) {
		filter.EmployeeID = &callerID
	}

	expenses, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ExpensesResponse{Expenses: expenses})
}

func (h *Handler) RequestCompensation(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.CurrentEmployeeID(w, r)
	if !ok {
		return
	}
	var dto RequestCompensationDTO
	if r.ContentLength > 0 && !h.DecodeJSON(w, r, &dto) {
		return
	}
	e, err := h.Service.RequestCompensation(r.Context(), chi.URLParam(r, "id"), callerID, dto.Comment)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) ApproveCompensation(w http.ResponseWriter, r *http.Request) {
	e, err := h.Service.ApproveCompensation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) RejectCompensation(w http.ResponseWriter, r *http.Request) {
	var dto RejectDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	e, err := h.Service.RejectCompensation(r.Context(), chi.URLParam(r, "id"), dto.Reason)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) MarkCompensationPaid(w http.ResponseWriter, r *http.Request) {
	e, err := h.Service.MarkCompensationPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}
