package employee

import (
	"context"
	"net/http"

	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Get(ctx context.Context, id int64) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
	Add(ctx context.Context, dto AddEmployeeDTO) (*Employee, error)
	SetStatus(ctx context.Context, id int64, status Status) (*Employee, error)
	SetRole(ctx context.Context, id int64, role Role) (*Employee, error)
	SetLimit(ctx context.Context, id int64, limit money.Amount, period Period) (*Employee, error)
	SetSubscription(ctx context.Context, id int64, kind Subscription, enabled bool) (*Employee, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetMe is the identity lookup; blocked employees may still call it.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := h.CurrentEmployeeID(w, r)
	if !ok {
		return
	}
	e, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, EmployeesResponse{Employees: employees})
}

func (h *Handler) AddEmployee(w http.ResponseWriter, r *http.Request) {
	var dto AddEmployeeDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	e, err := h.Service.Add(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}
	var dto SetStatusDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	e, err := h.Service.SetStatus(r.Context(), id, dto.Status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}
	var dto SetRoleDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	e, err := h.Service.SetRole(r.Context(), id, dto.Role)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) SetLimit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}
	var dto SetLimitDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	e, err := h.Service.SetLimit(r.Context(), id, dto.Limit, dto.Period)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) SetSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(w, r, "id")
	if !ok {
		return
	}
	var dto SetSubscriptionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	kind := Subscription(chi.URLParam(r, "kind"))
	e, err := h.Service.SetSubscription(r.Context(), id, kind, dto.Enabled)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}
