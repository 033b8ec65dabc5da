package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/expense-bot/internal"
	employeeDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/employee"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

var _ employee.Repository = (*EmployeeRepository)(nil)

func (r *EmployeeRepository) Get(ctx context.Context, id int64) (*employee.Employee, error) {
	var row employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee.FromDataModel(&row), nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	var rows []*employeeDatamodel.Employee
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*employee.Employee, len(rows))
	for i, row := range rows {
		out[i] = employee.FromDataModel(row)
	}
	return out, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	return r.db.WithContext(ctx).Create(employee.ToDataModel(e)).Error
}

func (r *EmployeeRepository) UpdateFields(ctx context.Context, id int64, fields employee.Fields) error {
	cols := fields.Columns()
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrEmployeeNotFound
	}
	return nil
}
