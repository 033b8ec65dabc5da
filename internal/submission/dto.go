package submission

import (
	"time"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/core/common/validation"
	"github.com/frahmantamala/expense-bot/internal/core/money"
)

type SubmitExpenseDTO struct {
	Amount      money.Amount `json:"amount"`
	SpentAt     *time.Time   `json:"spent_at,omitempty"`
	Category    string       `json:"category"`
	Description string       `json:"description,omitempty"`
	ReceiptRef  string       `json:"receipt_ref,omitempty"`
	ProjectID   string       `json:"project_id,omitempty"`
	Comment     string       `json:"comment,omitempty"`
}

func (dto SubmitExpenseDTO) Validate(now time.Time) *internal.AppError {
	v := validation.NewValidator()
	v.Field("amount", dto.Amount).Positive()
	v.Field("category", dto.Category).Required().MaxLength(100)
	v.Field("description", dto.Description).MaxLength(500)
	v.Field("receipt_ref", dto.ReceiptRef).MaxLength(255)
	v.Field("comment", dto.Comment).MaxLength(500)
	if dto.SpentAt != nil {
		v.Field("spent_at", *dto.SpentAt).NotFuture(now)
	}
	return v.Validate()
}
