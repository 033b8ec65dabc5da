package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/expense-bot/internal/category"
	"github.com/frahmantamala/expense-bot/internal/compensation"
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/expense"
	"github.com/frahmantamala/expense-bot/internal/project"
)

const (
	SheetEmployees     = "Employees"
	SheetExpenses      = "Expenses"
	SheetCompensations = "Compensations"
	SheetProjects      = "Projects"
	SheetCategories    = "Categories"
)

var SheetNames = []string{SheetEmployees, SheetExpenses, SheetCompensations, SheetProjects, SheetCategories}

var headers = map[string][]string{
	SheetEmployees: {
		"ID", "First name", "Last name", "Status", "Role", "Limit", "Limit period", "Balance",
		"Daily", "Weekly", "Monthly", "Daily admin", "Weekly admin", "Monthly admin", "Balance alert",
		"Created at", "Updated at",
	},
	SheetExpenses: {
		"ID", "Employee ID", "Spent at", "Amount", "Category", "Description", "Receipt",
		"Project ID", "Compensation status", "Operation", "Comment", "Created at",
	},
	SheetCompensations: {
		"ID", "Employee ID", "Amount", "Type", "Status", "Requested at", "Paid at", "Comment", "Expense ID",
	},
	SheetProjects: {
		"ID", "Name", "Status", "Budget", "Start date", "End date", "Created at",
	},
	SheetCategories: {
		"ID", "Name", "Description", "Parent ID", "Active", "Created at",
	},
}

// Width returns the column count of a sheet.
func Width(sheet string) int {
	return len(headers[sheet])
}

const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}

func parseTimePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func parseBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "1", "YES":
		return true
	}
	return false
}

func parseAmount(s string) (money.Amount, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return money.Parse(s)
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// cells pads a short row so every column index is addressable.
func cells(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

// decodeErr collects the first parse failure of a row.
type decodeErr struct {
	sheet string
	err   error
}

func (d *decodeErr) amount(column, s string) money.Amount {
	a, err := parseAmount(s)
	d.note(column, err)
	return a
}

func (d *decodeErr) at(column, s string) time.Time {
	t, err := parseTime(s)
	d.note(column, err)
	return t
}

func (d *decodeErr) atPtr(column, s string) *time.Time {
	t, err := parseTimePtr(s)
	d.note(column, err)
	return t
}

func (d *decodeErr) integer(column, s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	d.note(column, err)
	return v
}

func (d *decodeErr) note(column string, err error) {
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("%s: column %q: %w", d.sheet, column, err)
	}
}

func EncodeEmployee(e *employee.Employee) []string {
	s := e.Subscriptions
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.FirstName,
		e.LastName,
		string(e.Status),
		string(e.Role),
		e.Limit.String(),
		string(e.LimitPeriod),
		e.Balance.String(),
		formatBool(s.Daily),
		formatBool(s.Weekly),
		formatBool(s.Monthly),
		formatBool(s.DailyAdmin),
		formatBool(s.WeeklyAdmin),
		formatBool(s.MonthlyAdmin),
		formatBool(s.BalanceAlert),
		formatTime(e.CreatedAt),
		formatTime(e.UpdatedAt),
	}
}

func DecodeEmployee(row []string) (*employee.Employee, error) {
	row = cells(row, Width(SheetEmployees))
	d := &decodeErr{sheet: SheetEmployees}
	e := &employee.Employee{
		ID:          d.integer("ID", row[0]),
		FirstName:   row[1],
		LastName:    row[2],
		Status:      employee.Status(row[3]),
		Role:        employee.Role(row[4]),
		Limit:       d.amount("Limit", row[5]),
		LimitPeriod: employee.Period(row[6]),
		Balance:     d.amount("Balance", row[7]),
		Subscriptions: employee.Subscriptions{
			Daily:        parseBool(row[8]),
			Weekly:       parseBool(row[9]),
			Monthly:      parseBool(row[10]),
			DailyAdmin:   parseBool(row[11]),
			WeeklyAdmin:  parseBool(row[12]),
			MonthlyAdmin: parseBool(row[13]),
			BalanceAlert: parseBool(row[14]),
		},
		CreatedAt: d.at("Created at", row[15]),
		UpdatedAt: d.at("Updated at", row[16]),
	}
	if e.Status == "" {
		e.Status = employee.StatusActive
	}
	if e.Role == "" {
		e.Role = employee.RoleEmployee
	}
	if e.LimitPeriod == "" {
		e.LimitPeriod = employee.PeriodMonth
	}
	return e, d.err
}

func EncodeExpense(e *expense.Expense) []string {
	return []string{
		e.ID,
		strconv.FormatInt(e.EmployeeID, 10),
		formatTime(e.SpentAt),
		e.Amount.String(),
		e.Category,
		e.Description,
		e.ReceiptRef,
		optional(e.ProjectID),
		string(e.CompensationStatus),
		string(e.Operation),
		e.Comment,
		formatTime(e.CreatedAt),
	}
}

func DecodeExpense(row []string) (*expense.Expense, error) {
	row = cells(row, Width(SheetExpenses))
	d := &decodeErr{sheet: SheetExpenses}
	e := &expense.Expense{
		ID:                 row[0],
		EmployeeID:         d.integer("Employee ID", row[1]),
		SpentAt:            d.at("Spent at", row[2]),
		Amount:             d.amount("Amount", row[3]),
		Category:           row[4],
		Description:        row[5],
		ReceiptRef:         row[6],
		ProjectID:          optionalPtr(row[7]),
		CompensationStatus: expense.CompensationStatus(row[8]),
		Operation:          expense.Operation(row[9]),
		Comment:            row[10],
		CreatedAt:          d.at("Created at", row[11]),
	}
	if e.Operation == "" {
		e.Operation = expense.OperationExpense
	}
	if e.ReceiptRef == "" {
		e.ReceiptRef = expense.NoReceipt
	}
	e.UpdatedAt = e.CreatedAt
	return e, d.err
}

func EncodeCompensation(r *compensation.Request) []string {
	return []string{
		r.ID,
		strconv.FormatInt(r.EmployeeID, 10),
		r.Amount.String(),
		string(r.Type),
		string(r.Status),
		formatTime(r.RequestedAt),
		formatTimePtr(r.PaidAt),
		r.Comment,
		optional(r.ExpenseID),
	}
}

func DecodeCompensation(row []string) (*compensation.Request, error) {
	row = cells(row, Width(SheetCompensations))
	d := &decodeErr{sheet: SheetCompensations}
	r := &compensation.Request{
		ID:          row[0],
		EmployeeID:  d.integer("Employee ID", row[1]),
		Amount:      d.amount("Amount", row[2]),
		Type:        compensation.Type(row[3]),
		Status:      compensation.Status(row[4]),
		RequestedAt: d.at("Requested at", row[5]),
		PaidAt:      d.atPtr("Paid at", row[6]),
		Comment:     row[7],
		ExpenseID:   optionalPtr(row[8]),
	}
	return r, d.err
}

func EncodeProject(p *project.Project) []string {
	budget := ""
	if p.Budget != nil {
		budget = p.Budget.String()
	}
	return []string{
		p.ID,
		p.Name,
		string(p.Status),
		budget,
		formatTimePtr(p.StartDate),
		formatTimePtr(p.EndDate),
		formatTime(p.CreatedAt),
	}
}

func DecodeProject(row []string) (*project.Project, error) {
	row = cells(row, Width(SheetProjects))
	d := &decodeErr{sheet: SheetProjects}
	p := &project.Project{
		ID:        row[0],
		Name:      row[1],
		Status:    project.Status(row[2]),
		StartDate: d.atPtr("Start date", row[4]),
		EndDate:   d.atPtr("End date", row[5]),
		CreatedAt: d.at("Created at", row[6]),
	}
	if row[3] != "" {
		b := d.amount("Budget", row[3])
		p.Budget = &b
	}
	p.UpdatedAt = p.CreatedAt
	return p, d.err
}

func EncodeCategory(c *category.Category) []string {
	parent := ""
	if c.ParentID != nil {
		parent = strconv.FormatInt(*c.ParentID, 10)
	}
	return []string{
		strconv.FormatInt(c.ID, 10),
		c.Name,
		c.Description,
		parent,
		formatBool(c.IsActive),
		formatTime(c.CreatedAt),
	}
}

func DecodeCategory(row []string) (*category.Category, error) {
	row = cells(row, Width(SheetCategories))
	d := &decodeErr{sheet: SheetCategories}
	c := &category.Category{
		ID:          d.integer("ID", row[0]),
		Name:        row[1],
		Description: row[2],
		IsActive:    parseBool(row[4]),
		CreatedAt:   d.at("Created at", row[5]),
	}
	if row[3] != "" {
		parent := d.integer("Parent ID", row[3])
		c.ParentID = &parent
	}
	c.UpdatedAt = c.CreatedAt
	return c, d.err
}
