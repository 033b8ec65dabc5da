package limit

import (
	"time"

	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/employee"
)

type Classification string

const (
	ClassificationOK       Classification = "ok"
	ClassificationWarning  Classification = "warning_80"
	ClassificationExceeded Classification = "limit_exceeded"
)

const DefaultWarningPercent int64 = 80

type Result struct {
	Exceeded       bool            `json:"exceeded"`
	UsagePercent   float64         `json:"usage_percent"`
	Classification Classification  `json:"classification"`
	PeriodTotal    money.Amount    `json:"period_total"`
	Limit          money.Amount    `json:"limit"`
	Candidate      money.Amount    `json:"candidate_amount"`
	Period         employee.Period `json:"period,omitempty"`
	WindowStart    time.Time       `json:"window_start,omitempty"`
}

// NoLimit is the result for employees without a configured limit or without readable data.
func NoLimit(candidate money.Amount) Result {
	return Result{Classification: ClassificationOK, Candidate: candidate}
}

// Classify compares periodTotal+candidate against limit with integer arithmetic,
// so the warning boundary is exact. A limit of zero or less disables evaluation.
func Classify(periodTotal, candidate, limit money.Amount, warningPercent int64) Result {
	if limit <= 0 {
		return NoLimit(candidate)
	}
	if warningPercent <= 0 {
		warningPercent = DefaultWarningPercent
	}

	projected := periodTotal + candidate
	res := Result{
		UsagePercent:   float64(projected) / float64(limit) * 100,
		Classification: ClassificationOK,
		PeriodTotal:    periodTotal,
		Limit:          limit,
		Candidate:      candidate,
	}

	switch {
	case projected > limit:
		res.Exceeded = true
		res.Classification = ClassificationExceeded
	case int64(projected)*100 >= int64(limit)*warningPercent:
		res.Classification = ClassificationWarning
	}
	return res
}

// WindowStart returns the beginning of the calendar period containing now, in now's location.
// Weeks start on Monday.
func WindowStart(period employee.Period, now time.Time) time.Time {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch period {
	case employee.PeriodDay:
		return midnight
	case employee.PeriodWeek:
		offset := (int(midnight.Weekday()) + 6) % 7
		return midnight.AddDate(0, 0, -offset)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	}
}
