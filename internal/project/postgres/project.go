package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/expense-bot/internal"
	projectDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/project"
	"github.com/frahmantamala/expense-bot/internal/project"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

var _ project.Repository = (*ProjectRepository)(nil)

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	return r.db.WithContext(ctx).Create(project.ToDataModel(p)).Error
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	var row projectDatamodel.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrProjectNotFound
		}
		return nil, err
	}
	return project.FromDataModel(&row), nil
}

func (r *ProjectRepository) List(ctx context.Context, status project.Status) ([]*project.Project, error) {
	q := r.db.WithContext(ctx).Model(&projectDatamodel.Project{})
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	var rows []*projectDatamodel.Project
	if err := q.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*project.Project, len(rows))
	for i, row := range rows {
		out[i] = project.FromDataModel(row)
	}
	return out, nil
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, status project.Status) error {
	res := r.db.WithContext(ctx).Model(&projectDatamodel.Project{}).Where("id = ?", id).Update("status", string(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrProjectNotFound
	}
	return nil
}
