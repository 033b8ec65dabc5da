package notification

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/expense-bot/internal/core/money"
)

type Kind string

const (
	KindLimitWarning          Kind = "limit_warning"
	KindLimitExceeded         Kind = "limit_exceeded"
	KindLimitApprovalRequired Kind = "limit_approval_required"
	KindLowBalance            Kind = "low_balance"
	KindCompensationRequested Kind = "compensation_requested"
	KindCompensationPaid      Kind = "compensation_paid"
	KindCompensationRejected  Kind = "compensation_rejected"
)

var Kinds = []Kind{
	KindLimitWarning, KindLimitExceeded, KindLimitApprovalRequired, KindLowBalance,
	KindCompensationRequested, KindCompensationPaid, KindCompensationRejected,
}

func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Intent is a structured notification handed to the dispatcher. Only the
// fields relevant to Kind are set.
type Intent struct {
	ID           string        `json:"id"`
	Kind         Kind          `json:"kind"`
	EmployeeID   int64         `json:"employee_id"`
	CreatedAt    time.Time     `json:"created_at"`
	UsagePercent float64       `json:"usage_percent,omitempty"`
	PeriodTotal  money.Amount  `json:"period_total,omitempty"`
	Limit        money.Amount  `json:"limit,omitempty"`
	Candidate    money.Amount  `json:"candidate_amount,omitempty"`
	NewBalance   *money.Amount `json:"new_balance,omitempty"`
	Amount       money.Amount  `json:"amount,omitempty"`
	RequestID    string        `json:"request_id,omitempty"`
	Reason       string        `json:"reason,omitempty"`
}

func (i Intent) EventType() string     { return string(i.Kind) }
func (i Intent) EventID() string       { return i.ID }
func (i Intent) OccurredAt() time.Time { return i.CreatedAt }
func (i Intent) Payload() interface{}  { return i }

// Notifier accepts intents without blocking the caller. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, intent Intent)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, intent Intent)

func (f NotifierFunc) Notify(ctx context.Context, intent Intent) { f(ctx, intent) }

func newIntent(kind Kind, employeeID int64) Intent {
	return Intent{
		ID:         uuid.NewString(),
		Kind:       kind,
		EmployeeID: employeeID,
		CreatedAt:  time.Now(),
	}
}

func LimitWarning(employeeID int64, usagePercent float64, periodTotal, limit money.Amount) Intent {
	i := newIntent(KindLimitWarning, employeeID)
	i.UsagePercent = usagePercent
	i.PeriodTotal = periodTotal
	i.Limit = limit
	return i
}

func LimitExceeded(employeeID int64, periodTotal, limit, candidate money.Amount) Intent {
	i := newIntent(KindLimitExceeded, employeeID)
	i.PeriodTotal = periodTotal
	i.Limit = limit
	i.Candidate = candidate
	return i
}

func LimitApprovalRequired(employeeID int64, periodTotal, limit, candidate money.Amount) Intent {
	i := newIntent(KindLimitApprovalRequired, employeeID)
	i.PeriodTotal = periodTotal
	i.Limit = limit
	i.Candidate = candidate
	return i
}

func LowBalance(employeeID int64, newBalance money.Amount) Intent {
	i := newIntent(KindLowBalance, employeeID)
	i.NewBalance = &newBalance
	return i
}

func CompensationRequested(employeeID int64, requestID string, amount money.Amount, comment string) Intent {
	i := newIntent(KindCompensationRequested, employeeID)
	i.RequestID = requestID
	i.Amount = amount
	i.Reason = comment
	return i
}

func CompensationPaid(employeeID int64, requestID string, amount, newBalance money.Amount) Intent {
	i := newIntent(KindCompensationPaid, employeeID)
	i.RequestID = requestID
	i.Amount = amount
	i.NewBalance = &newBalance
	return i
}

func CompensationRejected(employeeID int64, requestID string, amount money.Amount, reason string) Intent {
	i := newIntent(KindCompensationRejected, employeeID)
	i.RequestID = requestID
	i.Amount = amount
	i.Reason = reason
	return i
}
