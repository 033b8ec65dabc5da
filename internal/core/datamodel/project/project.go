package project

import "time"

type Project struct {
	ID        string     `gorm:"primaryKey;size:36"`
	Name      string     `gorm:"column:name;not null"`
	Status    string     `gorm:"column:status;not null;default:active"`
	Budget    *int64     `gorm:"column:budget"`
	StartDate *time.Time `gorm:"column:start_date"`
	EndDate   *time.Time `gorm:"column:end_date"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}
