package project

import (
	"context"
	"net/http"

	"github.com/frahmantamala/expense-bot/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Add(ctx context.Context, dto AddProjectDTO) (*Project, error)
	List(ctx context.Context, status Status) ([]*Project, error)
	SetStatus(ctx context.Context, id string, status Status) (*Project, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: baseHandler, Service: service}
}

// ListProjects filters by ?status=; without it every project is returned.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Service.List(r.Context(), Status(r.URL.Query().Get("status")))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ProjectsResponse{Projects: projects})
}

func (h *Handler) AddProject(w http.ResponseWriter, r *http.Request) {
	var dto AddProjectDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	p, err := h.Service.Add(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var dto SetStatusDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	p, err := h.Service.SetStatus(r.Context(), chi.URLParam(r, "id"), dto.Status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}
