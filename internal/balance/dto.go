package balance

import (
	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/core/common/validation"
	"github.com/frahmantamala/expense-bot/internal/core/money"
)

// MovementDTO is the body of an advance or refund.
type MovementDTO struct {
	Amount  money.Amount `json:"amount"`
	Comment string       `json:"comment,omitempty"`
}

func (dto MovementDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("amount", dto.Amount).Positive()
	v.Field("comment", dto.Comment).MaxLength(500)
	return v.Validate()
}

type BalanceResponse struct {
	EmployeeID int64        `json:"employee_id"`
	Balance    money.Amount `json:"balance"`
}

type BalancesResponse struct {
	Balances []EmployeeBalance `json:"balances"`
	Total    money.Amount      `json:"total"`
}

func newBalancesResponse(balances []EmployeeBalance) BalancesResponse {
	if balances == nil {
		balances = []EmployeeBalance{}
	}
	var total money.Amount
	for _, b := range balances {
		total += b.Balance
	}
	return BalancesResponse{Balances: balances, Total: total}
}
