package expense

import (
	"net/url"
	"strconv"
	"time"

	"github.com/frahmantamala/expense-bot/internal"
)

const dateLayout = "2006-01-02"

type RejectDTO struct {
	Reason string `json:"reason"`
}

type RequestCompensationDTO struct {
	Comment string `json:"comment,omitempty"`
}

type ExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// FilterFromQuery reads employee_id, operation, status, project_id, from and to.
// The to date is inclusive.
func FilterFromQuery(q url.Values) (Filter, *internal.AppError) {
	var f Filter

	if raw := q.Get("employee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, internal.NewValidationFieldError("employee_id", "employee_id must be numeric", internal.ErrCodeValidationFailed)
		}
		f.EmployeeID = &id
	}

	if raw := q.Get("operation"); raw != "" {
		op := Operation(raw)
		if op != OperationExpense && op != OperationAdvance && op != OperationRefund {
			return f, internal.NewValidationFieldError("operation", "operation must be one of: expense, advance, refund", internal.ErrCodeValidationFailed)
		}
		f.Operation = op
	}

	if q.Has("status") {
		status := CompensationStatus(q.Get("status"))
		if !status.Valid() {
			return f, internal.NewValidationFieldError("status", "unknown compensation status", internal.ErrCodeInvalidStatus)
		}
		f.Status = &status
	}

	f.ProjectID = q.Get("project_id")

	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return f, internal.NewValidationFieldError("from", "from must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
		}
		f.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return f, internal.NewValidationFieldError("to", "to must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
		}
		f.To = t.AddDate(0, 0, 1)
	}

	return f, nil
}
