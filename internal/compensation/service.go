package compensation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/core/common/validation"
	"github.com/frahmantamala/expense-bot/internal/core/lock"
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/expense"
	"github.com/frahmantamala/expense-bot/internal/notification"
)

// Repository is the compensation side of the ledger store.
// Get and UpdateFields return internal.ErrCompensationNotFound for unknown ids.
type Repository interface {
	Append(ctx context.Context, r *Request) error
	Get(ctx context.Context, id string) (*Request, error)
	List(ctx context.Context, filter Filter) ([]*Request, error)
	UpdateFields(ctx context.Context, id string, fields Fields) error
}

type EmployeeReader interface {
	Get(ctx context.Context, id int64) (*employee.Employee, error)
}

// Crediter moves money into an employee's balance. Reverse undoes a credit
// whose status write failed.
type Crediter interface {
	CreditCompensation(ctx context.Context, employeeID int64, amount money.Amount) (money.Amount, error)
	ReverseCompensation(ctx context.Context, employeeID int64, amount money.Amount) (money.Amount, error)
}

// ExpenseUpdater writes the compensation status back onto the expense a
// request was opened for.
type ExpenseUpdater interface {
	UpdateFields(ctx context.Context, id string, fields expense.Fields) error
}

var ErrNotPending = internal.NewConflictError("compensation request is not pending", internal.ErrCodeInvalidTransition)

type ApproveResult struct {
	Request    *Request     `json:"request"`
	NewBalance money.Amount `json:"new_balance"`
}

// Service is the compensation request lifecycle: pending requests are either
// paid (balance credited) or rejected (reason appended to the comment).
type Service struct {
	repo      Repository
	employees EmployeeReader
	crediter  Crediter
	expenses  ExpenseUpdater
	notifier  notification.Notifier
	locks     *lock.KeyedMutex[string]
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(repo Repository, employees EmployeeReader, crediter Crediter, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		employees: employees,
		crediter:  crediter,
		notifier:  notifier,
		locks:     lock.NewKeyedMutex[string](),
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock overrides the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithExpenses keeps linked expense rows in step with their requests.
func (s *Service) WithExpenses(u ExpenseUpdater) *Service {
	s.expenses = u
	return s
}

// SetCrediter wires the balance engine after construction; the two depend on each other.
func (s *Service) SetCrediter(c Crediter) {
	s.crediter = c
}

func (s *Service) CreateRequest(ctx context.Context, dto CreateRequestDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("compensation request validation failed", "error", err, "employee_id", dto.EmployeeID)
		return nil, err
	}

	if _, err := s.employees.Get(ctx, dto.EmployeeID); err != nil {
		if errors.Is(err, internal.ErrEmployeeNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		s.logger.Error("failed to load employee for compensation request", "error", err, "employee_id", dto.EmployeeID)
		return nil, internal.NewStoreError(err)
	}

	req := NewRequest(dto.EmployeeID, dto.Amount, dto.Type, dto.Comment, s.now())
	if dto.ExpenseID != "" {
		expenseID := dto.ExpenseID
		req.ExpenseID = &expenseID
	}

	if err := s.repo.Append(ctx, req); err != nil {
		s.logger.Error("failed to create compensation request",
			"error", err,
			"employee_id", dto.EmployeeID,
			"amount", dto.Amount,
			"type", dto.Type)
		return nil, internal.NewStoreError(err)
	}

	s.logger.Info("compensation request created",
		"request_id", req.ID,
		"employee_id", req.EmployeeID,
		"amount", req.Amount,
		"type", req.Type)

	// automatic requests are opened after the engine already wrote the row as pending
	if req.Type != TypeAutomatic {
		s.syncExpense(ctx, req, expense.CompensationPending, "")
	}

	s.notifier.Notify(ctx, notification.CompensationRequested(req.EmployeeID, req.ID, req.Amount, req.Comment))
	return req, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Request, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrCompensationNotFound) {
			return nil, internal.ErrCompensationNotFound
		}
		s.logger.Error("failed to get compensation request", "error", err, "request_id", id)
		return nil, internal.NewStoreError(err)
	}
	return req, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Request, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, internal.NewValidationFieldError("status", "unknown compensation status", internal.ErrCodeInvalidStatus)
	}
	reqs, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list compensation requests", "error", err)
		return nil, internal.NewStoreError(err)
	}
	return reqs, nil
}

// Approve pays a pending request. The balance is credited first and the status
// is written only after the credit succeeded; if the status write fails the
// credit is reversed. A second approve fails with ErrNotPending.
func (s *Service) Approve(ctx context.Context, requestID string) (*ApproveResult, error) {
	unlock := s.locks.Lock(requestID)
	defer unlock()

	req, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending || !req.Status.CanTransitionTo(StatusPaid) {
		s.logger.Warn("cannot approve compensation request", "request_id", requestID, "status", req.Status)
		return nil, ErrNotPending
	}

	newBalance, err := s.crediter.CreditCompensation(ctx, req.EmployeeID, req.Amount)
	if err != nil {
		s.logger.Error("failed to credit compensation", "error", err, "request_id", requestID, "employee_id", req.EmployeeID)
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		return nil, internal.NewStoreError(err)
	}

	paid := StatusPaid
	paidAt := s.now()
	fields := Fields{Status: &paid, PaidAt: &paidAt}
	if err := s.repo.UpdateFields(ctx, requestID, fields); err != nil {
		s.logger.Error("failed to mark compensation paid, reversing credit",
			"error", err,
			"request_id", requestID,
			"employee_id", req.EmployeeID,
			"amount", req.Amount)

		if _, revErr := s.crediter.ReverseCompensation(ctx, req.EmployeeID, req.Amount); revErr != nil {
			s.logger.Error("compensation credit reversal failed, balance and request disagree",
				"error", revErr,
				"request_id", requestID,
				"employee_id", req.EmployeeID,
				"amount", req.Amount)
			return nil, internal.NewInconsistentStateError("balance credited but request not marked paid", errors.Join(err, revErr))
		}
		return nil, internal.NewStoreError(err)
	}
	fields.Apply(req)

	s.logger.Info("compensation request paid",
		"request_id", req.ID,
		"employee_id", req.EmployeeID,
		"amount", req.Amount,
		"new_balance", newBalance)

	s.syncExpense(ctx, req, expense.CompensationPaid, "")

	s.notifier.Notify(ctx, notification.CompensationPaid(req.EmployeeID, req.ID, req.Amount, newBalance))
	return &ApproveResult{Request: req, NewBalance: newBalance}, nil
}

// Reject closes a pending request without touching the balance.
func (s *Service) Reject(ctx context.Context, requestID, reason string) (*Request, error) {
	if err := validation.ValidateReason(reason); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(requestID)
	defer unlock()

	req, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending || !req.Status.CanTransitionTo(StatusRejected) {
		s.logger.Warn("cannot reject compensation request", "request_id", requestID, "status", req.Status)
		return nil, ErrNotPending
	}

	rejected := StatusRejected
	fields := Fields{Status: &rejected, AppendComment: reason}
	if err := s.repo.UpdateFields(ctx, requestID, fields); err != nil {
		s.logger.Error("failed to reject compensation request", "error", err, "request_id", requestID)
		return nil, internal.NewStoreError(err)
	}
	fields.Apply(req)

	s.logger.Info("compensation request rejected",
		"request_id", req.ID,
		"employee_id", req.EmployeeID,
		"reason", reason)

	s.syncExpense(ctx, req, expense.CompensationRejected, reason)

	s.notifier.Notify(ctx, notification.CompensationRejected(req.EmployeeID, req.ID, req.Amount, reason))
	return req, nil
}

// syncExpense is best effort: the request is already committed, so a failed
// expense write is logged and left for reconciliation.
func (s *Service) syncExpense(ctx context.Context, req *Request, status expense.CompensationStatus, note string) {
	if s.expenses == nil || req.ExpenseID == nil {
		return
	}
	fields := expense.Fields{CompensationStatus: &status, AppendComment: note}
	if err := s.expenses.UpdateFields(ctx, *req.ExpenseID, fields); err != nil {
		s.logger.Error("failed to sync expense compensation status",
			"error", err,
			"request_id", req.ID,
			"expense_id", *req.ExpenseID,
			"status", status)
	}
}

// PendingTotal sums the amounts still awaiting a decision.
func (s *Service) PendingTotal(ctx context.Context) (money.Amount, error) {
	reqs, err := s.List(ctx, Filter{Status: StatusPending})
	if err != nil {
		return 0, err
	}
	var total money.Amount
	for _, r := range reqs {
		total += r.Amount
	}
	return total, nil
}
