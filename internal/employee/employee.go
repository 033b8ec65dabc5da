package employee

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/expense-bot/internal/core/money"

	employeeDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/employee"
)

type Role string

const (
	RoleOwner           Role = "owner"
	RoleChiefAccountant Role = "chief_accountant"
	RoleController      Role = "controller"
	RoleEmployee        Role = "employee"
)

var Roles = []Role{RoleOwner, RoleChiefAccountant, RoleController, RoleEmployee}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// IsApprover reports whether the role may settle compensation requests.
func (r Role) IsApprover() bool {
	return r == RoleOwner || r == RoleChiefAccountant
}

// IsAdmin reports whether the role may manage employees and projects.
func (r Role) IsAdmin() bool {
	return r == RoleOwner || r == RoleChiefAccountant || r == RoleController
}

type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusBlocked
}

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

func (p Period) Valid() bool {
	return p == PeriodDay || p == PeriodWeek || p == PeriodMonth
}

type Subscription string

const (
	SubscriptionDaily        Subscription = "daily"
	SubscriptionWeekly       Subscription = "weekly"
	SubscriptionMonthly      Subscription = "monthly"
	SubscriptionDailyAdmin   Subscription = "daily_admin"
	SubscriptionWeeklyAdmin  Subscription = "weekly_admin"
	SubscriptionMonthlyAdmin Subscription = "monthly_admin"
	SubscriptionBalanceAlert Subscription = "balance_alert"
)

var AllSubscriptions = []Subscription{
	SubscriptionDaily, SubscriptionWeekly, SubscriptionMonthly,
	SubscriptionDailyAdmin, SubscriptionWeeklyAdmin, SubscriptionMonthlyAdmin,
	SubscriptionBalanceAlert,
}

type Subscriptions struct {
	Daily        bool `json:"daily"`
	Weekly       bool `json:"weekly"`
	Monthly      bool `json:"monthly"`
	DailyAdmin   bool `json:"daily_admin"`
	WeeklyAdmin  bool `json:"weekly_admin"`
	MonthlyAdmin bool `json:"monthly_admin"`
	BalanceAlert bool `json:"balance_alert"`
}

func (s Subscriptions) Has(kind Subscription) bool {
	if f := s.field(kind); f != nil {
		return *f
	}
	return false
}

func (s *Subscriptions) Set(kind Subscription, enabled bool) error {
	f := s.field(kind)
	if f == nil {
		return fmt.Errorf("unknown subscription %q", kind)
	}
	*f = enabled
	return nil
}

func (s *Subscriptions) field(kind Subscription) *bool {
	switch kind {
	case SubscriptionDaily:
		return &s.Daily
	case SubscriptionWeekly:
		return &s.Weekly
	case SubscriptionMonthly:
		return &s.Monthly
	case SubscriptionDailyAdmin:
		return &s.DailyAdmin
	case SubscriptionWeeklyAdmin:
		return &s.WeeklyAdmin
	case SubscriptionMonthlyAdmin:
		return &s.MonthlyAdmin
	case SubscriptionBalanceAlert:
		return &s.BalanceAlert
	}
	return nil
}

// Employee is keyed by the chat platform account id.
type Employee struct {
	ID            int64         `json:"id"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	Status        Status        `json:"status"`
	Role          Role          `json:"role"`
	Limit         money.Amount  `json:"limit"`
	LimitPeriod   Period        `json:"limit_period"`
	Balance       money.Amount  `json:"balance"`
	Subscriptions Subscriptions `json:"subscriptions"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

func (e *Employee) IsActive() bool {
	return e.Status == StatusActive
}

// HasLimit reports whether limit evaluation applies; zero means unset.
func (e *Employee) HasLimit() bool {
	return e.Limit > 0
}

func NewEmployee(id int64, firstName, lastName string, role Role) *Employee {
	now := time.Now()
	if role == "" {
		role = RoleEmployee
	}
	return &Employee{
		ID:          id,
		FirstName:   firstName,
		LastName:    lastName,
		Status:      StatusActive,
		Role:        role,
		LimitPeriod: PeriodMonth,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Fields is a partial update; nil fields are left untouched.
type Fields struct {
	FirstName     *string
	LastName      *string
	Status        *Status
	Role          *Role
	Limit         *money.Amount
	LimitPeriod   *Period
	Balance       *money.Amount
	Subscriptions *Subscriptions
}

func (f Fields) IsEmpty() bool {
	return f.FirstName == nil && f.LastName == nil && f.Status == nil && f.Role == nil &&
		f.Limit == nil && f.LimitPeriod == nil && f.Balance == nil && f.Subscriptions == nil
}

// Apply copies the set fields onto e.
func (f Fields) Apply(e *Employee) {
	if f.FirstName != nil {
		e.FirstName = *f.FirstName
	}
	if f.LastName != nil {
		e.LastName = *f.LastName
	}
	if f.Status != nil {
		e.Status = *f.Status
	}
	if f.Role != nil {
		e.Role = *f.Role
	}
	if f.Limit != nil {
		e.Limit = *f.Limit
	}
	if f.LimitPeriod != nil {
		e.LimitPeriod = *f.LimitPeriod
	}
	if f.Balance != nil {
		e.Balance = *f.Balance
	}
	if f.Subscriptions != nil {
		e.Subscriptions = *f.Subscriptions
	}
	e.UpdatedAt = time.Now()
}

// Columns maps the set fields to storage column names.
func (f Fields) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if f.FirstName != nil {
		cols["first_name"] = *f.FirstName
	}
	if f.LastName != nil {
		cols["last_name"] = *f.LastName
	}
	if f.Status != nil {
		cols["status"] = string(*f.Status)
	}
	if f.Role != nil {
		cols["role"] = string(*f.Role)
	}
	if f.Limit != nil {
		cols["limit_amount"] = int64(*f.Limit)
	}
	if f.LimitPeriod != nil {
		cols["limit_period"] = string(*f.LimitPeriod)
	}
	if f.Balance != nil {
		cols["balance"] = int64(*f.Balance)
	}
	if s := f.Subscriptions; s != nil {
		cols["sub_daily"] = s.Daily
		cols["sub_weekly"] = s.Weekly
		cols["sub_monthly"] = s.Monthly
		cols["sub_daily_admin"] = s.DailyAdmin
		cols["sub_weekly_admin"] = s.WeeklyAdmin
		cols["sub_monthly_admin"] = s.MonthlyAdmin
		cols["sub_balance_alert"] = s.BalanceAlert
	}
	return cols
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:              e.ID,
		FirstName:       e.FirstName,
		LastName:        e.LastName,
		Status:          string(e.Status),
		Role:            string(e.Role),
		LimitAmount:     int64(e.Limit),
		LimitPeriod:     string(e.LimitPeriod),
		Balance:         int64(e.Balance),
		SubDaily:        e.Subscriptions.Daily,
		SubWeekly:       e.Subscriptions.Weekly,
		SubMonthly:      e.Subscriptions.Monthly,
		SubDailyAdmin:   e.Subscriptions.DailyAdmin,
		SubWeeklyAdmin:  e.Subscriptions.WeeklyAdmin,
		SubMonthlyAdmin: e.Subscriptions.MonthlyAdmin,
		SubBalanceAlert: e.Subscriptions.BalanceAlert,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:          e.ID,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Status:      Status(e.Status),
		Role:        Role(e.Role),
		Limit:       money.Amount(e.LimitAmount),
		LimitPeriod: Period(e.LimitPeriod),
		Balance:     money.Amount(e.Balance),
		Subscriptions: Subscriptions{
			Daily:        e.SubDaily,
			Weekly:       e.SubWeekly,
			Monthly:      e.SubMonthly,
			DailyAdmin:   e.SubDailyAdmin,
			WeeklyAdmin:  e.SubWeeklyAdmin,
			MonthlyAdmin: e.SubMonthlyAdmin,
			BalanceAlert: e.SubBalanceAlert,
		},
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}
