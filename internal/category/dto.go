package category

import (
	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/core/common/validation"
)

type AddCategoryDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ParentID    *int64 `json:"parent_id,omitempty"`
}

func (dto AddCategoryDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("description", dto.Description).MaxLength(255)
	return v.Validate()
}

type CategoriesResponse struct {
	Categories []*Category `json:"categories"`
}
