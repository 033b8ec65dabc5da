package compensation

import (
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/expense-bot/internal/core/money"

	compensationDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/compensation"
	"github.com/frahmantamala/expense-bot/internal/expense"
)

type Type string

const (
	TypeExpenseBased Type = "expense_based"
	TypeAdvance      Type = "advance"
	TypeAutomatic    Type = "automatic"
)

func (t Type) Valid() bool {
	return t == TypeExpenseBased || t == TypeAdvance || t == TypeAutomatic
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusPaid     Status = "paid"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected || s == StatusPaid
}

// transitions lists every allowed status move; paid and rejected are terminal.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusPaid, StatusRejected},
	StatusApproved: {StatusPaid},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

type Request struct {
	ID          string       `json:"id"`
	EmployeeID  int64        `json:"employee_id"`
	Amount      money.Amount `json:"amount"`
	Type        Type         `json:"type"`
	Status      Status       `json:"status"`
	RequestedAt time.Time    `json:"requested_at"`
	PaidAt      *time.Time   `json:"paid_at,omitempty"`
	Comment     string       `json:"comment,omitempty"`
	ExpenseID   *string      `json:"expense_id,omitempty"`
}

func NewRequest(employeeID int64, amount money.Amount, typ Type, comment string, requestedAt time.Time) *Request {
	return &Request{
		ID:          uuid.NewString(),
		EmployeeID:  employeeID,
		Amount:      amount,
		Type:        typ,
		Status:      StatusPending,
		RequestedAt: requestedAt,
		Comment:     comment,
	}
}

// Filter narrows List; zero values match everything.
type Filter struct {
	Status     Status
	EmployeeID *int64
}

func (f Filter) Matches(r *Request) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.EmployeeID != nil && r.EmployeeID != *f.EmployeeID {
		return false
	}
	return true
}

// Fields is a partial update. AppendComment is joined onto the stored comment.
type Fields struct {
	Status        *Status
	PaidAt        *time.Time
	AppendComment string
}

func (f Fields) Apply(r *Request) {
	if f.Status != nil {
		r.Status = *f.Status
	}
	if f.PaidAt != nil {
		t := *f.PaidAt
		r.PaidAt = &t
	}
	r.Comment = expense.AppendComment(r.Comment, f.AppendComment)
}

func ToDataModel(r *Request) *compensationDatamodel.Request {
	return &compensationDatamodel.Request{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		Amount:      int64(r.Amount),
		Type:        string(r.Type),
		Status:      string(r.Status),
		RequestedAt: r.RequestedAt,
		PaidAt:      r.PaidAt,
		Comment:     r.Comment,
		ExpenseID:   r.ExpenseID,
	}
}

func FromDataModel(r *compensationDatamodel.Request) *Request {
	return &Request{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		Amount:      money.Amount(r.Amount),
		Type:        Type(r.Type),
		Status:      Status(r.Status),
		RequestedAt: r.RequestedAt,
		PaidAt:      r.PaidAt,
		Comment:     r.Comment,
		ExpenseID:   r.ExpenseID,
	}
}
