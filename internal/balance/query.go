package balance

import (
	"context"
	"sort"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/compensation"
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/expense"
)

type EmployeeBalance struct {
	EmployeeID int64        `json:"employee_id"`
	Name       string       `json:"name"`
	Balance    money.Amount `json:"balance"`
}

func (e *Engine) GetBalance(ctx context.Context, employeeID int64) (money.Amount, error) {
	emp, err := e.load(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	return emp.Balance, nil
}

// GetAllBalances lists every employee's balance ordered by employee id.
func (e *Engine) GetAllBalances(ctx context.Context) ([]EmployeeBalance, error) {
	employees, err := e.employees.List(ctx)
	if err != nil {
		e.logger.Error("failed to list balances", "error", err)
		return nil, internal.NewStoreError(err)
	}

	balances := make([]EmployeeBalance, 0, len(employees))
	for _, emp := range employees {
		balances = append(balances, EmployeeBalance{
			EmployeeID: emp.ID,
			Name:       emp.FullName(),
			Balance:    emp.Balance,
		})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].EmployeeID < balances[j].EmployeeID })
	return balances, nil
}

// GetNegativeBalances lists employees whose balance is strictly below zero, most negative first.
func (e *Engine) GetNegativeBalances(ctx context.Context) ([]EmployeeBalance, error) {
	all, err := e.GetAllBalances(ctx)
	if err != nil {
		return nil, err
	}
	var negative []EmployeeBalance
	for _, b := range all {
		if b.Balance < 0 {
			negative = append(negative, b)
		}
	}
	sort.SliceStable(negative, func(i, j int) bool { return negative[i].Balance < negative[j].Balance })
	return negative, nil
}

// Reconciliation compares the stored balance with one recomputed from the ledgers.
type Reconciliation struct {
	EmployeeID        int64        `json:"employee_id"`
	Stored            money.Amount `json:"stored"`
	Computed          money.Amount `json:"computed"`
	Drift             money.Amount `json:"drift"`
	Advances          money.Amount `json:"advances"`
	Expenses          money.Amount `json:"expenses"`
	Refunds           money.Amount `json:"refunds"`
	CompensationsPaid money.Amount `json:"compensations_paid"`
	// UnlinkedPending lists pending expenses no compensation request points at,
	// such as an automatic request that failed to open.
	UnlinkedPending []string `json:"unlinked_pending,omitempty"`
}

func (r Reconciliation) Consistent() bool {
	return r.Drift == 0
}

// Reconcile recomputes advances + paid compensations - expenses - refunds for
// one employee. It holds the employee's lock so no movement lands mid-read.
func (e *Engine) Reconcile(ctx context.Context, employeeID int64) (*Reconciliation, error) {
	unlock := e.locks.Lock(employeeID)
	defer unlock()

	emp, err := e.load(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	rows, err := e.expenses.List(ctx, expense.Filter{EmployeeID: &employeeID})
	if err != nil {
		e.logger.Error("failed to list ledger rows for reconciliation", "error", err, "employee_id", employeeID)
		return nil, internal.NewStoreError(err)
	}
	reqs, err := e.compensations.List(ctx, compensation.Filter{EmployeeID: &employeeID})
	if err != nil {
		e.logger.Error("failed to list compensations for reconciliation", "error", err, "employee_id", employeeID)
		return nil, internal.NewStoreError(err)
	}

	rec := &Reconciliation{EmployeeID: employeeID, Stored: emp.Balance}
	for _, row := range rows {
		switch row.Operation {
		case expense.OperationAdvance:
			rec.Advances += row.Amount
		case expense.OperationRefund:
			rec.Refunds += row.Amount
		default:
			rec.Expenses += row.Amount
		}
	}
	linked := make(map[string]bool, len(reqs))
	for _, req := range reqs {
		if req.ExpenseID != nil {
			linked[*req.ExpenseID] = true
		}
		if req.Status == compensation.StatusPaid {
			rec.CompensationsPaid += req.Amount
		}
	}
	for _, row := range rows {
		if row.CompensationStatus == expense.CompensationPending && !linked[row.ID] {
			rec.UnlinkedPending = append(rec.UnlinkedPending, row.ID)
		}
	}
	rec.Computed = rec.Advances + rec.CompensationsPaid - rec.Expenses - rec.Refunds
	rec.Drift = rec.Stored - rec.Computed

	if len(rec.UnlinkedPending) > 0 {
		e.logger.Warn("pending expenses without a compensation request",
			"employee_id", employeeID,
			"expense_ids", rec.UnlinkedPending)
	}
	if !rec.Consistent() {
		e.logger.Warn("balance drift detected",
			"employee_id", employeeID,
			"stored", rec.Stored,
			"computed", rec.Computed,
			"drift", rec.Drift)
	}
	return rec, nil
}

// ReconcileAll reconciles every employee and stops at the first store error.
func (e *Engine) ReconcileAll(ctx context.Context) ([]*Reconciliation, error) {
	employees, err := e.employees.List(ctx)
	if err != nil {
		e.logger.Error("failed to list employees for reconciliation", "error", err)
		return nil, internal.NewStoreError(err)
	}
	out := make([]*Reconciliation, 0, len(employees))
	for _, emp := range employees {
		rec, err := e.Reconcile(ctx, emp.ID)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}
