package compensation

import "time"

type Request struct {
	ID          string     `gorm:"primaryKey;size:36"`
	EmployeeID  int64      `gorm:"column:employee_id;not null;index"`
	Amount      int64      `gorm:"column:amount;not null"`
	Type        string     `gorm:"column:type;not null"`
	Status      string     `gorm:"column:status;not null;default:pending;index"`
	RequestedAt time.Time  `gorm:"column:requested_at;not null"`
	PaidAt      *time.Time `gorm:"column:paid_at"`
	Comment     string     `gorm:"column:comment"`
	ExpenseID   *string    `gorm:"column:expense_id;size:36"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Request) TableName() string {
	return "compensation_requests"
}
