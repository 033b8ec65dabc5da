package auth

import (
	"github.com/frahmantamala/expense-bot/internal"
)

// TokenRequestDTO is sent by the chat gateway to mint a token for one employee.
type TokenRequestDTO struct {
	EmployeeID int64  `json:"employee_id"`
	APIKey     string `json:"api_key"`
}

func (d TokenRequestDTO) Validate() *internal.AppError {
	if d.EmployeeID == 0 {
		return internal.NewValidationFieldError("employee_id", "employee_id is required", internal.ErrCodeValidationFailed)
	}
	if d.APIKey == "" {
		return internal.NewValidationFieldError("api_key", "api_key is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
