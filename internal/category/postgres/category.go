package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/expense-bot/internal/category"
	categoryDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/category"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

var _ category.Repository = (*CategoryRepository)(nil)

func (r *CategoryRepository) List(ctx context.Context) ([]*category.Category, error) {
	var rows []*categoryDatamodel.ExpenseCategory
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*category.Category, len(rows))
	for i, row := range rows {
		out[i] = category.FromDataModel(row)
	}
	return out, nil
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*category.Category, error) {
	return r.first(ctx, "name = ?", name)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *CategoryRepository) first(ctx context.Context, query string, arg interface{}) (*category.Category, error) {
	var row categoryDatamodel.ExpenseCategory
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, category.ErrNotFound
		}
		return nil, err
	}
	return category.FromDataModel(&row), nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	row := category.ToDataModel(c)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	c.ID = row.ID
	return nil
}
