package compensation

import (
	"net/url"
	"strconv"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/core/common/validation"
	"github.com/frahmantamala/expense-bot/internal/core/money"
)

type CreateRequestDTO struct {
	EmployeeID int64        `json:"employee_id,omitempty"`
	Amount     money.Amount `json:"amount"`
	Type       Type         `json:"type,omitempty"`
	Comment    string       `json:"comment,omitempty"`
	ExpenseID  string       `json:"expense_id,omitempty"`
}

func (dto CreateRequestDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("employee_id", dto.EmployeeID).Required()
	v.Field("amount", dto.Amount).Positive()
	v.Field("type", string(dto.Type)).OneOf(internal.ErrCodeValidationFailed,
		string(TypeExpenseBased), string(TypeAdvance), string(TypeAutomatic))
	v.Field("comment", dto.Comment).MaxLength(500)
	return v.Validate()
}

type RejectDTO struct {
	Reason string `json:"reason"`
}

type RequestsResponse struct {
	Requests []*Request `json:"requests"`
}

// FilterFromQuery reads status and employee_id.
func FilterFromQuery(q url.Values) (Filter, *internal.AppError) {
	var f Filter
	if raw := q.Get("status"); raw != "" {
		f.Status = Status(raw)
		if !f.Status.Valid() {
			return f, internal.NewValidationFieldError("status", "status must be one of: pending, approved, rejected, paid", internal.ErrCodeInvalidStatus)
		}
	}
	if raw := q.Get("employee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, internal.NewValidationFieldError("employee_id", "employee_id must be numeric", internal.ErrCodeValidationFailed)
		}
		f.EmployeeID = &id
	}
	return f, nil
}
