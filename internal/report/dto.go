package report

import (
	"net/url"
	"time"

	"github.com/frahmantamala/expense-bot/internal"
)

const dateLayout = "2006-01-02"

// RangeFromQuery reads ?period=week|month|quarter|all or explicit
// ?from=&to= dates. The default is the current month up to now.
func RangeFromQuery(q url.Values, now time.Time) (Range, *internal.AppError) {
	r := Range{From: monthStart(now), To: now}

	switch q.Get("period") {
	case "", "month":
	case "week":
		offset := (int(now.Weekday()) + 6) % 7
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		r.From = day.AddDate(0, 0, -offset)
	case "quarter":
		q := (int(now.Month()) - 1) / 3
		r.From = time.Date(now.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, now.Location())
	case "all":
		r.From = time.Time{}
	default:
		return r, internal.NewValidationFieldError("period", "period must be one of week, month, quarter, all", internal.ErrCodeInvalidPeriod)
	}

	if raw := q.Get("from"); raw != "" {
		from, err := time.ParseInLocation(dateLayout, raw, now.Location())
		if err != nil {
			return r, internal.NewValidationFieldError("from", "from must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
		}
		r.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.ParseInLocation(dateLayout, raw, now.Location())
		if err != nil {
			return r, internal.NewValidationFieldError("to", "to must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
		}
		// inclusive day
		r.To = to.AddDate(0, 0, 1)
	}
	if !r.From.IsZero() && !r.To.After(r.From) {
		return r, internal.NewValidationFieldError("to", "to must be after from", internal.ErrCodeInvalidDate)
	}
	return r, nil
}

func monthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

type ProjectTotalsResponse struct {
	Range    Range          `json:"range"`
	Projects []ProjectTotal `json:"projects"`
}
