package expense

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/core/common/validation"
	"github.com/frahmantamala/expense-bot/internal/core/lock"
)

// Repository is the expense side of the ledger store.
// Get and UpdateFields return internal.ErrExpenseNotFound for unknown ids.
type Repository interface {
	Append(ctx context.Context, e *Expense) error
	Get(ctx context.Context, id string) (*Expense, error)
	List(ctx context.Context, filter Filter) ([]*Expense, error)
	UpdateFields(ctx context.Context, id string, fields Fields) error
}

var (
	ErrNotSettleable  = internal.NewConflictError("expense compensation is not pending", internal.ErrCodeInvalidTransition)
	ErrNotRequestable = internal.NewConflictError("compensation cannot be requested for this expense", internal.ErrCodeInvalidTransition)
	ErrNotApproved    = internal.NewConflictError("expense compensation is not approved", internal.ErrCodeInvalidTransition)
)

// Service owns the per-expense compensation flow: an employee attaches a receipt
// and asks for the expense to be compensated, an approver approves or rejects it.
// It never moves money; balances change only through compensation requests.
type Service struct {
	repo   Repository
	locks  *lock.KeyedMutex[string]
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		locks:  lock.NewKeyedMutex[string](),
		logger: logger,
	}
}

func (s *Service) Get(ctx context.Context, id string) (*Expense, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrExpenseNotFound) {
			return nil, internal.ErrExpenseNotFound
		}
		s.logger.Error("failed to get expense", "error", err, "expense_id", id)
		return nil, internal.NewStoreError(err)
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Expense, error) {
	expenses, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err)
		return nil, internal.NewStoreError(err)
	}
	return expenses, nil
}

// RequestCompensation marks the employee's own expense as awaiting compensation.
func (s *Service) RequestCompensation(ctx context.Context, expenseID string, employeeID int64, note string) (*Expense, error) {
	unlock := s.locks.Lock(expenseID)
	defer unlock()

	e, err := s.Get(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e.EmployeeID != employeeID {
		s.logger.Warn("compensation request for foreign expense", "expense_id", expenseID, "employee_id", employeeID)
		return nil, internal.ErrExpenseNotFound
	}
	if !e.CanRequestCompensation() {
		return nil, ErrNotRequestable
	}

	return s.transition(ctx, e, CompensationPending, note)
}

// ApproveCompensation moves a pending expense to approved.
func (s *Service) ApproveCompensation(ctx context.Context, expenseID string) (*Expense, error) {
	unlock := s.locks.Lock(expenseID)
	defer unlock()

	e, err := s.Get(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !e.CanBeSettled() {
		s.logger.Warn("cannot approve expense compensation", "expense_id", expenseID, "status", e.CompensationStatus)
		return nil, ErrNotSettleable
	}

	return s.transition(ctx, e, CompensationApproved, "")
}

// RejectCompensation moves a pending expense to rejected and records the reason.
func (s *Service) RejectCompensation(ctx context.Context, expenseID, reason string) (*Expense, error) {
	if err := validation.ValidateReason(reason); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(expenseID)
	defer unlock()

	e, err := s.Get(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !e.CanBeSettled() {
		s.logger.Warn("cannot reject expense compensation", "expense_id", expenseID, "status", e.CompensationStatus)
		return nil, ErrNotSettleable
	}

	return s.transition(ctx, e, CompensationRejected, reason)
}

// MarkCompensationPaid closes an approved expense once the money was handed over.
func (s *Service) MarkCompensationPaid(ctx context.Context, expenseID string) (*Expense, error) {
	unlock := s.locks.Lock(expenseID)
	defer unlock()

	e, err := s.Get(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e.CompensationStatus != CompensationApproved {
		return nil, ErrNotApproved
	}

	return s.transition(ctx, e, CompensationPaid, "")
}

func (s *Service) transition(ctx context.Context, e *Expense, to CompensationStatus, note string) (*Expense, error) {
	fields := Fields{CompensationStatus: &to, AppendComment: note}
	if err := s.repo.UpdateFields(ctx, e.ID, fields); err != nil {
		s.logger.Error("failed to update expense compensation status", "error", err, "expense_id", e.ID, "status", to)
		return nil, internal.NewStoreError(err)
	}

	from := e.CompensationStatus
	fields.Apply(e)
	s.logger.Info("expense compensation status changed",
		"expense_id", e.ID,
		"employee_id", e.EmployeeID,
		"from", from,
		"to", to)
	return e, nil
}
