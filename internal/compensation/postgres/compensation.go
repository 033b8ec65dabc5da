package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/compensation"
	compensationDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/compensation"
	"gorm.io/gorm"
)

type CompensationRepository struct {
	db *gorm.DB
}

func NewCompensationRepository(db *gorm.DB) *CompensationRepository {
	return &CompensationRepository{db: db}
}

var _ compensation.Repository = (*CompensationRepository)(nil)

func (r *CompensationRepository) Append(ctx context.Context, req *compensation.Request) error {
	return r.db.WithContext(ctx).Create(compensation.ToDataModel(req)).Error
}

func (r *CompensationRepository) Get(ctx context.Context, id string) (*compensation.Request, error) {
	var row compensationDatamodel.Request
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCompensationNotFound
		}
		return nil, err
	}
	return compensation.FromDataModel(&row), nil
}

func (r *CompensationRepository) List(ctx context.Context, f compensation.Filter) ([]*compensation.Request, error) {
	q := r.db.WithContext(ctx).Model(&compensationDatamodel.Request{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}

	var rows []*compensationDatamodel.Request
	if err := q.Order("requested_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	reqs := make([]*compensation.Request, len(rows))
	for i, row := range rows {
		reqs[i] = compensation.FromDataModel(row)
	}
	return reqs, nil
}

func (r *CompensationRepository) UpdateFields(ctx context.Context, id string, f compensation.Fields) error {
	updates := map[string]interface{}{}
	if f.Status != nil {
		updates["status"] = string(*f.Status)
	}
	if f.PaidAt != nil {
		updates["paid_at"] = *f.PaidAt
	}
	if note := strings.TrimSpace(f.AppendComment); note != "" {
		updates["comment"] = gorm.Expr(
			"CASE WHEN comment IS NULL OR comment = '' THEN ? ELSE comment || ? || ? END",
			note, "; ", note)
	}
	if len(updates) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(&compensationDatamodel.Request{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrCompensationNotFound
	}
	return nil
}
