package expense

import "time"

type Expense struct {
	ID                 string    `gorm:"primaryKey;size:36"`
	EmployeeID         int64     `gorm:"column:employee_id;not null;index"`
	SpentAt            time.Time `gorm:"column:spent_at;not null;index"`
	Amount             int64     `gorm:"column:amount;not null"`
	Category           string    `gorm:"column:category"`
	Description        string    `gorm:"column:description"`
	ReceiptRef         string    `gorm:"column:receipt_ref;not null;default:none"`
	ProjectID          *string   `gorm:"column:project_id;size:36"`
	CompensationStatus string    `gorm:"column:compensation_status"`
	Operation          string    `gorm:"column:operation;not null;default:expense"`
	Comment            string    `gorm:"column:comment"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}
