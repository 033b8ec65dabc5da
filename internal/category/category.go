package category

import (
	"strings"
	"time"

	categoryDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/category"
)

// Defaults are the categories offered when an expense is submitted.
var Defaults = []Category{
	{Name: "Transport", Description: "Fuel, taxi and delivery"},
	{Name: "Fasteners", Description: "Screws, anchors and fixings"},
	{Name: "Office", Description: "Organizational expenses"},
	{Name: "Materials", Description: "Construction materials"},
	{Name: "Payroll advance", Description: "Money handed out against salary"},
	{Name: "Other", Description: "Anything else"},
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ParentID    *int64    `json:"parent_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewCategory(name, description string, parentID *int64) *Category {
	now := time.Now()
	return &Category{
		Name:        strings.TrimSpace(name),
		Description: description,
		ParentID:    parentID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func ToDataModel(c *Category) *categoryDatamodel.ExpenseCategory {
	return &categoryDatamodel.ExpenseCategory{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.ExpenseCategory) *Category {
	return &Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
