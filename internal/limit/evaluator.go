package limit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/expense"
)

type EmployeeReader interface {
	Get(ctx context.Context, id int64) (*employee.Employee, error)
}

type ExpenseLister interface {
	List(ctx context.Context, filter expense.Filter) ([]*expense.Expense, error)
}

type Options struct {
	Location       *time.Location
	WarningPercent int64
	Clock          func() time.Time
}

// Evaluator classifies a candidate expense against the employee's spending limit.
// It never fails: store errors are logged and treated as "no limit data".
type Evaluator struct {
	employees      EmployeeReader
	expenses       ExpenseLister
	loc            *time.Location
	warningPercent int64
	now            func() time.Time
	logger         *slog.Logger
}

func NewEvaluator(employees EmployeeReader, expenses ExpenseLister, opts Options, logger *slog.Logger) *Evaluator {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.WarningPercent <= 0 {
		opts.WarningPercent = DefaultWarningPercent
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Evaluator{
		employees:      employees,
		expenses:       expenses,
		loc:            opts.Location,
		warningPercent: opts.WarningPercent,
		now:            opts.Clock,
		logger:         logger,
	}
}

func (e *Evaluator) Evaluate(ctx context.Context, employeeID int64, amount money.Amount) Result {
	emp, err := e.employees.Get(ctx, employeeID)
	if err != nil {
		if errors.Is(err, internal.ErrEmployeeNotFound) {
			e.logger.Warn("limit evaluation for unknown employee", "employee_id", employeeID)
		} else {
			e.logger.Error("limit evaluation failed open", "error", err, "employee_id", employeeID)
		}
		return NoLimit(amount)
	}
	return e.EvaluateFor(ctx, emp, amount)
}

// EvaluateFor evaluates using an already loaded employee record.
func (e *Evaluator) EvaluateFor(ctx context.Context, emp *employee.Employee, amount money.Amount) Result {
	if !emp.HasLimit() {
		return NoLimit(amount)
	}

	start := WindowStart(emp.LimitPeriod, e.now().In(e.loc))
	total, err := e.PeriodTotal(ctx, emp.ID, start)
	if err != nil {
		e.logger.Error("limit evaluation failed open", "error", err, "employee_id", emp.ID)
		return NoLimit(amount)
	}

	res := Classify(total, amount, emp.Limit, e.warningPercent)
	res.Period = emp.LimitPeriod
	res.WindowStart = start
	return res
}

// PeriodTotal sums expense operations dated at or after since.
func (e *Evaluator) PeriodTotal(ctx context.Context, employeeID int64, since time.Time) (money.Amount, error) {
	rows, err := e.expenses.List(ctx, expense.Filter{
		EmployeeID: &employeeID,
		Operation:  expense.OperationExpense,
		From:       since,
	})
	if err != nil {
		return 0, err
	}
	var total money.Amount
	for _, row := range rows {
		total += row.Amount
	}
	return total, nil
}
