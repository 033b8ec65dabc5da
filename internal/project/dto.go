package project

import (
	"time"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/core/common/validation"
	"github.com/frahmantamala/expense-bot/internal/core/money"
)

type AddProjectDTO struct {
	Name      string        `json:"name"`
	Budget    *money.Amount `json:"budget,omitempty"`
	StartDate *time.Time    `json:"start_date,omitempty"`
	EndDate   *time.Time    `json:"end_date,omitempty"`
}

func (dto AddProjectDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(200)
	if dto.Budget != nil {
		v.Field("budget", *dto.Budget).NonNegative()
	}
	if dto.StartDate != nil && dto.EndDate != nil {
		v.Field("end_date", *dto.EndDate).Custom(func(interface{}) *internal.AppError {
			if dto.EndDate.Before(*dto.StartDate) {
				return internal.NewValidationFieldError("end_date", "end_date must not be before start_date", internal.ErrCodeInvalidDate)
			}
			return nil
		})
	}
	return v.Validate()
}

type SetStatusDTO struct {
	Status Status `json:"status"`
}

func (dto SetStatusDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("status", string(dto.Status)).OneOf(internal.ErrCodeInvalidStatus,
		string(StatusActive), string(StatusSuspended), string(StatusCompleted))
	return v.Validate()
}

type ProjectsResponse struct {
	Projects []*Project `json:"projects"`
}
