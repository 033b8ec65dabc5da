package employee

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/core/money"
)

// Repository is the employee side of the ledger store.
// Get returns internal.ErrEmployeeNotFound when the id is unknown.
type Repository interface {
	Get(ctx context.Context, id int64) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
	Create(ctx context.Context, e *Employee) error
	UpdateFields(ctx context.Context, id int64, fields Fields) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger

	mu       sync.RWMutex
	onChange []func(id int64)
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// OnChange registers a hook fired after any employee record is mutated.
func (s *Service) OnChange(fn func(id int64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *Service) changed(id int64) {
	s.mu.RLock()
	hooks := append([]func(int64){}, s.onChange...)
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn(id)
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrEmployeeNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		s.logger.Error("failed to get employee", "error", err, "employee_id", id)
		return nil, internal.NewStoreError(err)
	}
	return e, nil
}

func (s *Service) List(ctx context.Context) ([]*Employee, error) {
	employees, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, internal.NewStoreError(err)
	}
	return employees, nil
}

func (s *Service) Add(ctx context.Context, dto AddEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("employee validation failed", "error", err, "employee_id", dto.ID)
		return nil, err
	}

	if _, err := s.repo.Get(ctx, dto.ID); err == nil {
		return nil, internal.NewConflictError("employee already exists", internal.ErrCodeEmployeeExists)
	} else if !errors.Is(err, internal.ErrEmployeeNotFound) {
		s.logger.Error("failed to check existing employee", "error", err, "employee_id", dto.ID)
		return nil, internal.NewStoreError(err)
	}

	e := NewEmployee(dto.ID, dto.FirstName, dto.LastName, dto.Role)
	e.Limit = dto.Limit
	if dto.LimitPeriod != "" {
		e.LimitPeriod = dto.LimitPeriod
	}

	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("failed to create employee", "error", err, "employee_id", dto.ID)
		return nil, internal.NewStoreError(err)
	}

	s.logger.Info("employee added", "employee_id", e.ID, "role", e.Role)
	s.changed(e.ID)
	return e, nil
}

func (s *Service) SetStatus(ctx context.Context, id int64, status Status) (*Employee, error) {
	if err := (SetStatusDTO{Status: status}).Validate(); err != nil {
		return nil, err
	}
	return s.update(ctx, id, Fields{Status: &status}, "status", status)
}

func (s *Service) Block(ctx context.Context, id int64) (*Employee, error) {
	return s.SetStatus(ctx, id, StatusBlocked)
}

func (s *Service) Unblock(ctx context.Context, id int64) (*Employee, error) {
	return s.SetStatus(ctx, id, StatusActive)
}

func (s *Service) SetRole(ctx context.Context, id int64, role Role) (*Employee, error) {
	if err := (SetRoleDTO{Role: role}).Validate(); err != nil {
		return nil, err
	}
	return s.update(ctx, id, Fields{Role: &role}, "role", role)
}

func (s *Service) SetLimit(ctx context.Context, id int64, limit money.Amount, period Period) (*Employee, error) {
	if err := (SetLimitDTO{Limit: limit, Period: period}).Validate(); err != nil {
		return nil, err
	}
	return s.update(ctx, id, Fields{Limit: &limit, LimitPeriod: &period}, "limit", limit, "period", period)
}

func (s *Service) SetSubscription(ctx context.Context, id int64, kind Subscription, enabled bool) (*Employee, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	subs := e.Subscriptions
	if err := subs.Set(kind, enabled); err != nil {
		return nil, internal.NewValidationFieldError("kind", err.Error(), internal.ErrCodeValidationFailed)
	}
	return s.update(ctx, id, Fields{Subscriptions: &subs}, "subscription", kind, "enabled", enabled)
}

// Subscribers returns active employees subscribed to kind.
func (s *Service) Subscribers(ctx context.Context, kind Subscription) ([]*Employee, error) {
	employees, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Employee
	for _, e := range employees {
		if e.IsActive() && e.Subscriptions.Has(kind) {
			out = append(out, e)
		}
	}
	return out, nil
}

// WithRoles returns active employees holding any of roles.
func (s *Service) WithRoles(ctx context.Context, roles ...Role) ([]*Employee, error) {
	employees, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Employee
	for _, e := range employees {
		if !e.IsActive() {
			continue
		}
		for _, r := range roles {
			if e.Role == r {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (s *Service) update(ctx context.Context, id int64, fields Fields, logArgs ...any) (*Employee, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		s.logger.Error("failed to update employee", append([]any{"error", err, "employee_id", id}, logArgs...)...)
		return nil, internal.NewStoreError(err)
	}
	s.logger.Info("employee updated", append([]any{"employee_id", id}, logArgs...)...)
	s.changed(id)
	return s.Get(ctx, id)
}
