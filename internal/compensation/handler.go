package compensation

import (
	"context"
	"net/http"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateRequest(ctx context.Context, dto CreateRequestDTO) (*Request, error)
	List(ctx context.Context, filter Filter) ([]*Request, error)
	Approve(ctx context.Context, requestID string) (*ApproveResult, error)
	Reject(ctx context.Context, requestID, reason string) (*Request, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	// IsApprover decides whether the caller may act on other employees' requests.
	IsApprover func(role string) bool
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, isApprover func(role string) bool) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		IsApprover:  isApprover,
	}
}

// CreateRequest opens a request for the caller. Approvers may open one on
// behalf of another employee by setting employee_id.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.CurrentEmployeeID(w, r)
	if !ok {
		return
	}

	var dto CreateRequestDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	if dto.EmployeeID == 0 || !h.IsApprover(internal.RoleFromContext(r.Context())) {
		dto.EmployeeID = callerID
	}
	if dto.Type == "" {
		dto.Type = TypeExpenseBased
	}

	req, err := h.Service.CreateRequest(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, req)
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	callerID, ok := h.CurrentEmployeeID(w, r)
	if !ok {
		return
	}

	filter, appErr := FilterFromQuery(r.URL.Query())
	if appErr != nil {
		h.HandleServiceError(w, appErr)
		return
	}
	if !h.IsApprover(internal.RoleFromContext(r.Context())) {
		filter.EmployeeID = &callerID
	}

	reqs, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, RequestsResponse{Requests: reqs})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var dto RejectDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	req, err := h.Service.Reject(r.Context(), chi.URLParam(r, "id"), dto.Reason)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, req)
}
