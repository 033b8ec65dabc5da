package report

import (
	"sort"
	"time"

	"github.com/frahmantamala/expense-bot/internal/balance"
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/expense"
)

// Range is a half-open [From, To) window over spent_at.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (r Range) Filter() expense.Filter {
	return expense.Filter{Operation: expense.OperationExpense, From: r.From, To: r.To}
}

type CategoryTotal struct {
	Category string       `json:"category"`
	Total    money.Amount `json:"total"`
}

type ProjectTotal struct {
	ProjectID  string          `json:"project_id" db:"project_id"`
	Name       string          `json:"name" db:"name"`
	Count      int64           `json:"count" db:"count"`
	Total      money.Amount    `json:"total" db:"total"`
	ByCategory []CategoryTotal `json:"by_category,omitempty" db:"-"`
}

type EmployeeReport struct {
	EmployeeID int64              `json:"employee_id"`
	Range      Range              `json:"range"`
	Count      int                `json:"count"`
	Total      money.Amount       `json:"total"`
	Balance    money.Amount       `json:"balance"`
	Expenses   []*expense.Expense `json:"expenses"`
}

type BalanceSummary struct {
	GeneratedAt   time.Time                 `json:"generated_at"`
	Balances      []balance.EmployeeBalance `json:"balances"`
	Negative      []balance.EmployeeBalance `json:"negative"`
	NegativeTotal money.Amount              `json:"negative_total"`
	PendingTotal  money.Amount              `json:"pending_total"`
}

// byCategory totals rows per category, largest first.
func byCategory(rows []*expense.Expense) []CategoryTotal {
	totals := map[string]money.Amount{}
	for _, e := range rows {
		totals[e.Category] += e.Amount
	}
	out := make([]CategoryTotal, 0, len(totals))
	for c, t := range totals {
		out = append(out, CategoryTotal{Category: c, Total: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total == out[j].Total {
			return out[i].Category < out[j].Category
		}
		return out[i].Total > out[j].Total
	})
	return out
}

func sortProjects(totals []ProjectTotal) {
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total == totals[j].Total {
			return totals[i].ProjectID < totals[j].ProjectID
		}
		return totals[i].Total > totals[j].Total
	})
}
