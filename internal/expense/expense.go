package expense

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/expense-bot/internal/core/money"

	expenseDatamodel "github.com/frahmantamala/expense-bot/internal/core/datamodel/expense"
)

type Operation string

const (
	OperationExpense Operation = "expense"
	OperationAdvance Operation = "advance"
	OperationRefund  Operation = "refund"
)

// CompensationStatus is the per-expense compensation state used by the legacy flow.
type CompensationStatus string

const (
	CompensationNone        CompensationStatus = ""
	CompensationPending     CompensationStatus = "pending"
	CompensationApproved    CompensationStatus = "approved"
	CompensationRejected    CompensationStatus = "rejected"
	CompensationPaid        CompensationStatus = "paid"
	CompensationNotRequired CompensationStatus = "not_required"
)

func (s CompensationStatus) Valid() bool {
	switch s {
	case CompensationNone, CompensationPending, CompensationApproved,
		CompensationRejected, CompensationPaid, CompensationNotRequired:
		return true
	}
	return false
}

// NoReceipt marks an expense submitted without an attached receipt.
const NoReceipt = "none"

const commentSeparator = "; "

type Expense struct {
	ID                 string             `json:"id"`
	EmployeeID         int64              `json:"employee_id"`
	SpentAt            time.Time          `json:"spent_at"`
	Amount             money.Amount       `json:"amount"`
	Category           string             `json:"category"`
	Description        string             `json:"description"`
	ReceiptRef         string             `json:"receipt_ref"`
	ProjectID          *string            `json:"project_id,omitempty"`
	CompensationStatus CompensationStatus `json:"compensation_status"`
	Operation          Operation          `json:"operation"`
	Comment            string             `json:"comment,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// CanBeSettled reports whether the legacy flow may approve or reject this expense.
func (e *Expense) CanBeSettled() bool {
	return e.Operation == OperationExpense && e.CompensationStatus == CompensationPending
}

// CanRequestCompensation reports whether the employee may ask for this expense to be compensated.
func (e *Expense) CanRequestCompensation() bool {
	if e.Operation != OperationExpense {
		return false
	}
	switch e.CompensationStatus {
	case CompensationNone, CompensationNotRequired, CompensationRejected:
		return true
	}
	return false
}

func (e *Expense) HasReceipt() bool {
	return e.ReceiptRef != "" && e.ReceiptRef != NoReceipt
}

// New builds a ledger row with a fresh id; an empty receipt becomes NoReceipt.
func New(employeeID int64, op Operation, amount money.Amount, spentAt time.Time) *Expense {
	now := time.Now()
	return &Expense{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		SpentAt:    spentAt,
		Amount:     amount,
		ReceiptRef: NoReceipt,
		Operation:  op,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AppendComment joins a note onto an existing comment without losing earlier text.
func AppendComment(existing, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + commentSeparator + note
}

// Filter narrows List; zero values match everything.
type Filter struct {
	EmployeeID *int64
	Operation  Operation
	Status     *CompensationStatus
	ProjectID  string
	From       time.Time
	To         time.Time
}

func (f Filter) Matches(e *Expense) bool {
	if f.EmployeeID != nil && e.EmployeeID != *f.EmployeeID {
		return false
	}
	if f.Operation != "" && e.Operation != f.Operation {
		return false
	}
	if f.Status != nil && e.CompensationStatus != *f.Status {
		return false
	}
	if f.ProjectID != "" && (e.ProjectID == nil || *e.ProjectID != f.ProjectID) {
		return false
	}
	if !f.From.IsZero() && e.SpentAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !e.SpentAt.Before(f.To) {
		return false
	}
	return true
}

// Fields is a partial update. AppendComment is joined onto the stored comment.
type Fields struct {
	CompensationStatus *CompensationStatus
	AppendComment      string
}

func (f Fields) Apply(e *Expense) {
	if f.CompensationStatus != nil {
		e.CompensationStatus = *f.CompensationStatus
	}
	e.Comment = AppendComment(e.Comment, f.AppendComment)
	e.UpdatedAt = time.Now()
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:                 e.ID,
		EmployeeID:         e.EmployeeID,
		SpentAt:            e.SpentAt,
		Amount:             int64(e.Amount),
		Category:           e.Category,
		Description:        e.Description,
		ReceiptRef:         e.ReceiptRef,
		ProjectID:          e.ProjectID,
		CompensationStatus: string(e.CompensationStatus),
		Operation:          string(e.Operation),
		Comment:            e.Comment,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:                 e.ID,
		EmployeeID:         e.EmployeeID,
		SpentAt:            e.SpentAt,
		Amount:             money.Amount(e.Amount),
		Category:           e.Category,
		Description:        e.Description,
		ReceiptRef:         e.ReceiptRef,
		ProjectID:          e.ProjectID,
		CompensationStatus: CompensationStatus(e.CompensationStatus),
		Operation:          Operation(e.Operation),
		Comment:            e.Comment,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*expenseDatamodel.Expense) []*Expense {
	result := make([]*Expense, len(rows))
	for i, e := range rows {
		result[i] = FromDataModel(e)
	}
	return result
}
