package category

import (
	"context"
	"net/http"

	"github.com/frahmantamala/expense-bot/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Category, error)
	Add(ctx context.Context, dto AddCategoryDTO) (*Category, error)
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

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, CategoriesResponse{
		Categories: categories,
	})
}

func (h *Handler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var dto AddCategoryDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	c, err := h.Service.Add(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}
