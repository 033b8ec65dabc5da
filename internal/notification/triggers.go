package notification

import (
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/limit"
)

// LimitIntents maps a limit classification to the intent the submitter's flow fires.
func LimitIntents(employeeID int64, res limit.Result) []Intent {
	switch res.Classification {
	case limit.ClassificationWarning:
		return []Intent{LimitWarning(employeeID, res.UsagePercent, res.PeriodTotal, res.Limit)}
	case limit.ClassificationExceeded:
		return []Intent{LimitExceeded(employeeID, res.PeriodTotal, res.Limit, res.Candidate)}
	}
	return nil
}

// BalanceIntents fires low_balance when the balance is at or below zero, regardless of limits.
func BalanceIntents(employeeID int64, newBalance money.Amount) []Intent {
	if newBalance <= 0 {
		return []Intent{LowBalance(employeeID, newBalance)}
	}
	return nil
}

// Triggers returns every intent owed after a processed expense.
func Triggers(employeeID int64, res limit.Result, newBalance money.Amount) []Intent {
	return append(LimitIntents(employeeID, res), BalanceIntents(employeeID, newBalance)...)
}
