package category

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/frahmantamala/expense-bot/internal"
)

var ErrNotFound = errors.New("category not found")

// Repository returns ErrNotFound from the lookups when nothing matches.
type Repository interface {
	List(ctx context.Context) ([]*Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	Create(ctx context.Context, c *Category) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// List returns active categories.
func (s *Service) List(ctx context.Context) ([]*Category, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, internal.NewStoreError(err)
	}

	active := make([]*Category, 0, len(all))
	for _, c := range all {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *Service) Add(ctx context.Context, dto AddCategoryDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(dto.Name)
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return nil, internal.NewConflictError("category already exists", internal.ErrCodeCategoryExists)
	} else if !errors.Is(err, ErrNotFound) {
		s.logger.Error("failed to check category", "error", err, "name", name)
		return nil, internal.NewStoreError(err)
	}

	if dto.ParentID != nil {
		if _, err := s.repo.GetByID(ctx, *dto.ParentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, internal.NewValidationFieldError("parent_id", "parent category does not exist", internal.ErrCodeValidationFailed)
			}
			s.logger.Error("failed to check parent category", "error", err, "parent_id", *dto.ParentID)
			return nil, internal.NewStoreError(err)
		}
	}

	c := NewCategory(name, dto.Description, dto.ParentID)
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create category", "error", err, "name", name)
		return nil, internal.NewStoreError(err)
	}

	s.logger.Info("category created", "id", c.ID, "name", c.Name)
	return c, nil
}

// IsValid reports whether name is an active category. Free text is allowed on
// submission, so callers use this only to suggest.
func (s *Service) IsValid(ctx context.Context, name string) bool {
	c, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("error checking category validity", "name", name, "error", err)
		}
		return false
	}
	return c.IsActive
}

// EnsureDefaults creates any missing default category and returns how many were added.
func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	added := 0
	for _, d := range Defaults {
		_, err := s.repo.GetByName(ctx, d.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return added, internal.NewStoreError(err)
		}
		if err := s.repo.Create(ctx, NewCategory(d.Name, d.Description, nil)); err != nil {
			return added, internal.NewStoreError(err)
		}
		added++
	}
	if added > 0 {
		s.logger.Info("default categories created", "count", added)
	}
	return added, nil
}
