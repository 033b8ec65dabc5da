package project

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/expense-bot/internal"
)

// Repository returns internal.ErrProjectNotFound for unknown ids.
type Repository interface {
	Create(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, status Status) ([]*Project, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Add(ctx context.Context, dto AddProjectDTO) (*Project, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("project validation failed", "error", err)
		return nil, err
	}

	p := New(strings.TrimSpace(dto.Name), dto.Budget, dto.StartDate, dto.EndDate)
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("failed to create project", "error", err, "name", p.Name)
		return nil, internal.NewStoreError(err)
	}
	s.logger.Info("project created", "project_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrProjectNotFound) {
			return nil, internal.ErrProjectNotFound
		}
		s.logger.Error("failed to get project", "error", err, "project_id", id)
		return nil, internal.NewStoreError(err)
	}
	return p, nil
}

// List returns projects with the given status, or all of them when status is empty.
func (s *Service) List(ctx context.Context, status Status) ([]*Project, error) {
	if status != "" && !status.Valid() {
		return nil, internal.NewValidationFieldError("status", "status must be one of: active, suspended, completed", internal.ErrCodeInvalidStatus)
	}
	projects, err := s.repo.List(ctx, status)
	if err != nil {
		s.logger.Error("failed to list projects", "error", err)
		return nil, internal.NewStoreError(err)
	}
	return projects, nil
}

func (s *Service) ListActive(ctx context.Context) ([]*Project, error) {
	return s.List(ctx, StatusActive)
}

func (s *Service) SetStatus(ctx context.Context, id string, status Status) (*Project, error) {
	if err := (SetStatusDTO{Status: status}).Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, internal.ErrProjectNotFound) {
			return nil, internal.ErrProjectNotFound
		}
		s.logger.Error("failed to update project status", "error", err, "project_id", id)
		return nil, internal.NewStoreError(err)
	}
	s.logger.Info("project status changed", "project_id", id, "status", status)
	return s.Get(ctx, id)
}
