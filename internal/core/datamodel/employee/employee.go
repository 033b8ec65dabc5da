package employee

import "time"

type Employee struct {
	ID              int64     `gorm:"primaryKey;autoIncrement:false"`
	FirstName       string    `gorm:"column:first_name;not null"`
	LastName        string    `gorm:"column:last_name"`
	Status          string    `gorm:"column:status;not null;default:active"`
	Role            string    `gorm:"column:role;not null;default:employee"`
	LimitAmount     int64     `gorm:"column:limit_amount;not null;default:0"`
	LimitPeriod     string    `gorm:"column:limit_period;not null;default:month"`
	Balance         int64     `gorm:"column:balance;not null;default:0"`
	SubDaily        bool      `gorm:"column:sub_daily;not null;default:false"`
	SubWeekly       bool      `gorm:"column:sub_weekly;not null;default:false"`
	SubMonthly      bool      `gorm:"column:sub_monthly;not null;default:false"`
	SubDailyAdmin   bool      `gorm:"column:sub_daily_admin;not null;default:false"`
	SubWeeklyAdmin  bool      `gorm:"column:sub_weekly_admin;not null;default:false"`
	SubMonthlyAdmin bool      `gorm:"column:sub_monthly_admin;not null;default:false"`
	SubBalanceAlert bool      `gorm:"column:sub_balance_alert;not null;default:false"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}
