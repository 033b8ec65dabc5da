package employee

import (
	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/core/common/validation"
	"github.com/frahmantamala/expense-bot/internal/core/money"
)

type AddEmployeeDTO struct {
	ID          int64        `json:"id"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Role        Role         `json:"role,omitempty"`
	Limit       money.Amount `json:"limit,omitempty"`
	LimitPeriod Period       `json:"limit_period,omitempty"`
}

func (dto AddEmployeeDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("id", dto.ID).Required()
	v.Field("first_name", dto.FirstName).Required().MaxLength(100)
	v.Field("last_name", dto.LastName).MaxLength(100)
	v.Field("limit", dto.Limit).NonNegative()
	if dto.Role != "" {
		v.Field("role", string(dto.Role)).OneOf(internal.ErrCodeInvalidRole, roleNames()...)
	}
	if dto.LimitPeriod != "" {
		v.Field("limit_period", string(dto.LimitPeriod)).OneOf(internal.ErrCodeInvalidPeriod, periodNames()...)
	}
	return v.Validate()
}

type SetStatusDTO struct {
	Status Status `json:"status"`
}

func (dto SetStatusDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("status", string(dto.Status)).OneOf(internal.ErrCodeInvalidStatus, string(StatusActive), string(StatusBlocked))
	return v.Validate()
}

type SetRoleDTO struct {
	Role Role `json:"role"`
}

func (dto SetRoleDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("role", string(dto.Role)).OneOf(internal.ErrCodeInvalidRole, roleNames()...)
	return v.Validate()
}

type SetLimitDTO struct {
	Limit  money.Amount `json:"limit"`
	Period Period       `json:"period"`
}

func (dto SetLimitDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("limit", dto.Limit).NonNegative()
	v.Field("period", string(dto.Period)).OneOf(internal.ErrCodeInvalidPeriod, periodNames()...)
	return v.Validate()
}

type SetSubscriptionDTO struct {
	Enabled bool `json:"enabled"`
}

type EmployeesResponse struct {
	Employees []*Employee `json:"employees"`
}

func roleNames() []string {
	names := make([]string, len(Roles))
	for i, r := range Roles {
		names[i] = string(r)
	}
	return names
}

func periodNames() []string {
	return []string{string(PeriodDay), string(PeriodWeek), string(PeriodMonth)}
}
