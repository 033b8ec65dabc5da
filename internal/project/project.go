package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/expense-bot/internal/core/money"

	projectDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/project"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusSuspended || s == StatusCompleted
}

// Project is referenced by expenses through its id. Nothing cascades: an
// expense may point at a completed or unknown project.
type Project struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Budget    *money.Amount `json:"budget,omitempty"`
	StartDate *time.Time    `json:"start_date,omitempty"`
	EndDate   *time.Time    `json:"end_date,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (p *Project) IsActive() bool {
	return p.Status == StatusActive
}

func New(name string, budget *money.Amount, start, end *time.Time) *Project {
	now := time.Now()
	return &Project{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    StatusActive,
		Budget:    budget,
		StartDate: start,
		EndDate:   end,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func ToDataModel(p *Project) *projectDatamodel.Project {
	row := &projectDatamodel.Project{
		ID:        p.ID,
		Name:      p.Name,
		Status:    string(p.Status),
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Budget != nil {
		b := int64(*p.Budget)
		row.Budget = &b
	}
	return row
}

func FromDataModel(row *projectDatamodel.Project) *Project {
	p := &Project{
		ID:        row.ID,
		Name:      row.Name,
		Status:    Status(row.Status),
		StartDate: row.StartDate,
		EndDate:   row.EndDate,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.Budget != nil {
		b := money.Amount(*row.Budget)
		p.Budget = &b
	}
	return p
}
