package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/expense-bot/internal"
	expenseDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-bot/internal/expense"
	"gorm.io/gorm"
)

// ExpenseRepository implements expense.Repository using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

var _ expense.Repository = (*ExpenseRepository)(nil)

func (r *ExpenseRepository) Append(ctx context.Context, e *expense.Expense) error {
	return r.db.WithContext(ctx).Create(expense.ToDataModel(e)).Error
}

func (r *ExpenseRepository) Get(ctx context.Context, id string) (*expense.Expense, error) {
	var row expenseDatamodel.Expense
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExpenseNotFound
		}
		return nil, err
	}
	return expense.FromDataModel(&row), nil
}

func (r *ExpenseRepository) List(ctx context.Context, f expense.Filter) ([]*expense.Expense, error) {
	q := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{})
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if f.Operation != "" {
		q = q.Where("operation = ?", string(f.Operation))
	}
	if f.Status != nil {
		q = q.Where("compensation_status = ?", string(*f.Status))
	}
	if f.ProjectID != "" {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if !f.From.IsZero() {
		q = q.Where("spent_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("spent_at < ?", f.To)
	}

	var rows []*expenseDatamodel.Expense
	if err := q.Order("spent_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return expense.FromDataModelSlice(rows), nil
}

// UpdateFields appends the comment in SQL rather than rewriting it.
func (r *ExpenseRepository) UpdateFields(ctx context.Context, id string, f expense.Fields) error {
	updates := map[string]interface{}{}
	if f.CompensationStatus != nil {
		updates["compensation_status"] = string(*f.CompensationStatus)
	}
	if note := strings.TrimSpace(f.AppendComment); note != "" {
		updates["comment"] = gorm.Expr(
			"CASE WHEN comment IS NULL OR comment = '' THEN ? ELSE comment || ? || ? END",
			note, "; ", note)
	}
	if len(updates) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(&expenseDatamodel.Expense{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrExpenseNotFound
	}
	return nil
}
