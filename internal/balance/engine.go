package balance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/compensation"
	"github.com/frahmantamala/expense-bot/internal/core/common/validation"
	"github.com/frahmantamala/expense-bot/internal/core/lock"
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/expense"
	"github.com/frahmantamala/expense-bot/internal/limit"
)

type Operation string

const (
	OperationExpense      Operation = "expense"
	OperationAdvance      Operation = "advance"
	OperationCompensation Operation = "compensation"
	OperationRefund       Operation = "refund"
)

func (op Operation) Valid() bool {
	switch op {
	case OperationExpense, OperationAdvance, OperationCompensation, OperationRefund:
		return true
	}
	return false
}

// sign is +1 for credits and -1 for debits.
func (op Operation) sign() money.Amount {
	if op == OperationExpense || op == OperationRefund {
		return -1
	}
	return 1
}

const AdvanceCategory = "Advance"

type EmployeeStore interface {
	Get(ctx context.Context, id int64) (*employee.Employee, error)
	List(ctx context.Context) ([]*employee.Employee, error)
	UpdateFields(ctx context.Context, id int64, fields employee.Fields) error
}

type ExpenseStore interface {
	Append(ctx context.Context, e *expense.Expense) error
	List(ctx context.Context, filter expense.Filter) ([]*expense.Expense, error)
}

type CompensationLister interface {
	List(ctx context.Context, filter compensation.Filter) ([]*compensation.Request, error)
}

// RequestCreator opens the automatic compensation request when a balance drops to zero or below.
type RequestCreator interface {
	CreateRequest(ctx context.Context, dto compensation.CreateRequestDTO) (*compensation.Request, error)
}

type LimitEvaluator interface {
	EvaluateFor(ctx context.Context, emp *employee.Employee, amount money.Amount) limit.Result
}

// Engine owns every balance mutation. Read-modify-write on one employee's
// balance is serialized by a per-employee lock; different employees proceed in parallel.
type Engine struct {
	employees     EmployeeStore
	expenses      ExpenseStore
	compensations CompensationLister
	evaluator     LimitEvaluator
	requests      RequestCreator
	locks         *lock.KeyedMutex[int64]
	now           func() time.Time
	logger        *slog.Logger
}

func NewEngine(
	employees EmployeeStore,
	expenses ExpenseStore,
	compensations CompensationLister,
	evaluator LimitEvaluator,
	requests RequestCreator,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		employees:     employees,
		expenses:      expenses,
		compensations: compensations,
		evaluator:     evaluator,
		requests:      requests,
		locks:         lock.NewKeyedMutex[int64](),
		now:           time.Now,
		logger:        logger,
	}
}

// WithClock overrides the time source; used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Apply adds or subtracts amount according to op and returns the new balance.
func (e *Engine) Apply(ctx context.Context, employeeID int64, amount money.Amount, op Operation) (money.Amount, error) {
	if !op.Valid() {
		return 0, internal.NewValidationFieldError("operation", fmt.Sprintf("unknown operation %q", op), internal.ErrCodeValidationFailed)
	}
	if err := validation.ValidateAmount("amount", amount); err != nil {
		return 0, err
	}

	unlock := e.locks.Lock(employeeID)
	defer unlock()

	emp, err := e.load(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	return e.write(ctx, emp, emp.Balance+op.sign()*amount, op)
}

// CreditCompensation credits a paid compensation request.
func (e *Engine) CreditCompensation(ctx context.Context, employeeID int64, amount money.Amount) (money.Amount, error) {
	return e.Apply(ctx, employeeID, amount, OperationCompensation)
}

// ReverseCompensation takes back a credit whose request could not be marked paid.
func (e *Engine) ReverseCompensation(ctx context.Context, employeeID int64, amount money.Amount) (money.Amount, error) {
	if err := validation.ValidateAmount("amount", amount); err != nil {
		return 0, err
	}

	unlock := e.locks.Lock(employeeID)
	defer unlock()

	emp, err := e.load(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	e.logger.Warn("reversing compensation credit", "employee_id", employeeID, "amount", amount)
	return e.write(ctx, emp, emp.Balance-amount, OperationCompensation)
}

// ExpenseInput carries the fields of a submitted expense.
type ExpenseInput struct {
	EmployeeID  int64
	Amount      money.Amount
	SpentAt     time.Time
	Category    string
	Description string
	ReceiptRef  string
	ProjectID   string
	Comment     string
}

// Outcome is the result of ProcessExpense. On failure NewBalance still holds
// the best-known balance.
type Outcome struct {
	Success            bool                  `json:"success"`
	Expense            *expense.Expense      `json:"expense,omitempty"`
	NewBalance         money.Amount          `json:"new_balance"`
	NotificationNeeded bool                  `json:"notification_needed"`
	Limit              limit.Result          `json:"limit"`
	AutoRequest        *compensation.Request `json:"auto_request,omitempty"`
	AutoRequestFailed  bool                  `json:"auto_request_failed,omitempty"`
}

// ProcessExpense evaluates the limit, debits the balance and records the
// expense. If the record cannot be written the debit is rolled back. When the
// new balance is zero or below, an automatic compensation request is opened
// for the shortfall. A negative balance is a successful outcome.
func (e *Engine) ProcessExpense(ctx context.Context, in ExpenseInput) (*Outcome, error) {
	if err := validation.ValidateAmount("amount", in.Amount); err != nil {
		e.logger.Warn("expense rejected", "error", err, "employee_id", in.EmployeeID, "amount", in.Amount)
		return &Outcome{Limit: limit.NoLimit(in.Amount)}, err
	}

	unlock := e.locks.Lock(in.EmployeeID)
	defer unlock()

	emp, err := e.load(ctx, in.EmployeeID)
	if err != nil {
		return &Outcome{Limit: limit.NoLimit(in.Amount)}, err
	}

	out := &Outcome{
		NewBalance: emp.Balance,
		Limit:      e.evaluator.EvaluateFor(ctx, emp, in.Amount),
	}

	newBalance, err := e.write(ctx, emp, emp.Balance-in.Amount, OperationExpense)
	if err != nil {
		return out, err
	}
	out.NotificationNeeded = newBalance <= 0

	row := e.newRow(in.EmployeeID, expense.OperationExpense, in.Amount, in.SpentAt)
	row.Category = in.Category
	row.Description = in.Description
	if ref := strings.TrimSpace(in.ReceiptRef); ref != "" {
		row.ReceiptRef = ref
	}
	if in.ProjectID != "" {
		projectID := in.ProjectID
		row.ProjectID = &projectID
	}
	row.Comment = in.Comment
	row.CompensationStatus = expense.CompensationNotRequired
	if out.NotificationNeeded {
		row.CompensationStatus = expense.CompensationPending
	}

	if err := e.appendOrRollback(ctx, emp, row); err != nil {
		out.NewBalance = emp.Balance
		if internal.HasCode(err, internal.ErrCodeInconsistentState) {
			out.NewBalance = newBalance
		}
		out.NotificationNeeded = false
		return out, err
	}

	out.Success = true
	out.Expense = row
	out.NewBalance = newBalance

	e.logger.Info("expense processed",
		"employee_id", in.EmployeeID,
		"expense_id", row.ID,
		"amount", in.Amount,
		"new_balance", newBalance,
		"classification", out.Limit.Classification)

	if out.NotificationNeeded && newBalance.Abs() > 0 {
		req, err := e.requests.CreateRequest(ctx, compensation.CreateRequestDTO{
			EmployeeID: in.EmployeeID,
			Amount:     newBalance.Abs(),
			Type:       compensation.TypeAutomatic,
			Comment:    fmt.Sprintf("Automatic request: balance fell to %s after expense of %s", newBalance, in.Amount),
			ExpenseID:  row.ID,
		})
		if err != nil {
			e.logger.Error("failed to open automatic compensation request",
				"error", err,
				"employee_id", in.EmployeeID,
				"expense_id", row.ID,
				"amount", newBalance.Abs())
			out.AutoRequestFailed = true
		} else {
			out.AutoRequest = req
		}
	}

	return out, nil
}

// AddAdvance credits money handed to the employee and records it in the ledger.
func (e *Engine) AddAdvance(ctx context.Context, employeeID int64, amount money.Amount, comment string) (*Outcome, error) {
	return e.ledgerMovement(ctx, employeeID, amount, OperationAdvance, comment)
}

// Refund debits money the employee returned unspent.
func (e *Engine) Refund(ctx context.Context, employeeID int64, amount money.Amount, comment string) (*Outcome, error) {
	return e.ledgerMovement(ctx, employeeID, amount, OperationRefund, comment)
}

func (e *Engine) ledgerMovement(ctx context.Context, employeeID int64, amount money.Amount, op Operation, comment string) (*Outcome, error) {
	if err := validation.ValidateAmount("amount", amount); err != nil {
		return &Outcome{}, err
	}

	unlock := e.locks.Lock(employeeID)
	defer unlock()

	emp, err := e.load(ctx, employeeID)
	if err != nil {
		return &Outcome{}, err
	}

	out := &Outcome{NewBalance: emp.Balance, Limit: limit.NoLimit(0)}
	newBalance, err := e.write(ctx, emp, emp.Balance+op.sign()*amount, op)
	if err != nil {
		return out, err
	}

	rowOp := expense.OperationAdvance
	category := AdvanceCategory
	if op == OperationRefund {
		rowOp = expense.OperationRefund
		category = "Refund"
	}
	row := e.newRow(employeeID, rowOp, amount, time.Time{})
	row.Category = category
	row.Comment = comment

	if err := e.appendOrRollback(ctx, emp, row); err != nil {
		if internal.HasCode(err, internal.ErrCodeInconsistentState) {
			out.NewBalance = newBalance
		}
		return out, err
	}

	e.logger.Info("balance movement recorded",
		"employee_id", employeeID,
		"operation", op,
		"amount", amount,
		"new_balance", newBalance)

	out.Success = true
	out.Expense = row
	out.NewBalance = newBalance
	out.NotificationNeeded = newBalance <= 0
	return out, nil
}

// appendOrRollback writes the ledger row; on failure the balance is put back
// to what it was before this movement.
func (e *Engine) appendOrRollback(ctx context.Context, emp *employee.Employee, row *expense.Expense) error {
	appendErr := e.expenses.Append(ctx, row)
	if appendErr == nil {
		return nil
	}

	e.logger.Error("failed to record ledger row, rolling back balance",
		"error", appendErr,
		"employee_id", emp.ID,
		"operation", row.Operation,
		"amount", row.Amount)

	previous := emp.Balance
	if err := e.employees.UpdateFields(ctx, emp.ID, employee.Fields{Balance: &previous}); err != nil {
		e.logger.Error("balance rollback failed",
			"error", err,
			"employee_id", emp.ID,
			"expected_balance", previous)
		return internal.NewInconsistentStateError("balance changed but ledger row not recorded", errors.Join(appendErr, err))
	}
	return internal.NewStoreError(appendErr)
}

func (e *Engine) newRow(employeeID int64, op expense.Operation, amount money.Amount, spentAt time.Time) *expense.Expense {
	if spentAt.IsZero() {
		spentAt = e.now()
	}
	return expense.New(employeeID, op, amount, spentAt)
}

func (e *Engine) load(ctx context.Context, employeeID int64) (*employee.Employee, error) {
	emp, err := e.employees.Get(ctx, employeeID)
	if err != nil {
		if errors.Is(err, internal.ErrEmployeeNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		e.logger.Error("failed to read balance", "error", err, "employee_id", employeeID)
		return nil, internal.NewStoreError(err)
	}
	return emp, nil
}

func (e *Engine) write(ctx context.Context, emp *employee.Employee, newBalance money.Amount, op Operation) (money.Amount, error) {
	if err := e.employees.UpdateFields(ctx, emp.ID, employee.Fields{Balance: &newBalance}); err != nil {
		e.logger.Error("failed to write balance",
			"error", err,
			"employee_id", emp.ID,
			"operation", op,
			"balance", emp.Balance,
			"new_balance", newBalance)
		return emp.Balance, internal.NewStoreError(err)
	}
	return newBalance, nil
}
