package sheets

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/category"
	"github.com/frahmantamala/expense-bot/internal/compensation"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/expense"
	"github.com/frahmantamala/expense-bot/internal/project"
)

// rowSet is the shared read/find/rewrite logic over one worksheet. The
// worksheet has no row locking, so every read-modify-write on it goes through mu.
type rowSet[T any] struct {
	table  Table
	mu     sync.Mutex
	encode func(T) []string
	decode func([]string) (T, error)
}

func (s *rowSet[T]) all(ctx context.Context) ([]T, error) {
	rows, err := s.table.Rows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		v, err := s.decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// find returns the record and its data row index, or ok=false.
func (s *rowSet[T]) find(ctx context.Context, key string) (v T, index int, ok bool, err error) {
	rows, err := s.table.Rows(ctx)
	if err != nil {
		return v, 0, false, err
	}
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) != key {
			continue
		}
		v, err = s.decode(row)
		if err != nil {
			return v, 0, false, err
		}
		return v, i, true, nil
	}
	return v, 0, false, nil
}

func (s *rowSet[T]) append(ctx context.Context, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Append(ctx, s.encode(v))
}

// rewrite loads the record, applies mutate and writes the whole row back.
func (s *rowSet[T]) rewrite(ctx context.Context, key string, mutate func(T)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, index, ok, err := s.find(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	mutate(v)
	return true, s.table.Update(ctx, index, s.encode(v))
}

type EmployeeRepository struct {
	rows *rowSet[*employee.Employee]
}

func NewEmployeeRepository(t Table) *EmployeeRepository {
	return &EmployeeRepository{rows: &rowSet[*employee.Employee]{
		table:  t,
		encode: EncodeEmployee,
		decode: DecodeEmployee,
	}}
}

var _ employee.Repository = (*EmployeeRepository)(nil)

func (r *EmployeeRepository) Get(ctx context.Context, id int64) (*employee.Employee, error) {
	e, _, ok, err := r.rows.find(ctx, strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, internal.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	return r.rows.all(ctx)
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) error {
	return r.rows.append(ctx, e)
}

func (r *EmployeeRepository) UpdateFields(ctx context.Context, id int64, fields employee.Fields) error {
	if fields.IsEmpty() {
		return nil
	}
	ok, err := r.rows.rewrite(ctx, strconv.FormatInt(id, 10), fields.Apply)
	if err != nil {
		return err
	}
	if !ok {
		return internal.ErrEmployeeNotFound
	}
	return nil
}

type ExpenseRepository struct {
	rows *rowSet[*expense.Expense]
}

func NewExpenseRepository(t Table) *ExpenseRepository {
	return &ExpenseRepository{rows: &rowSet[*expense.Expense]{
		table:  t,
		encode: EncodeExpense,
		decode: DecodeExpense,
	}}
}

var _ expense.Repository = (*ExpenseRepository)(nil)

func (r *ExpenseRepository) Append(ctx context.Context, e *expense.Expense) error {
	return r.rows.append(ctx, e)
}

func (r *ExpenseRepository) Get(ctx context.Context, id string) (*expense.Expense, error) {
	e, _, ok, err := r.rows.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, internal.ErrExpenseNotFound
	}
	return e, nil
}

func (r *ExpenseRepository) List(ctx context.Context, filter expense.Filter) ([]*expense.Expense, error) {
	all, err := r.rows.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*expense.Expense, 0, len(all))
	for _, e := range all {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *ExpenseRepository) UpdateFields(ctx context.Context, id string, fields expense.Fields) error {
	ok, err := r.rows.rewrite(ctx, id, fields.Apply)
	if err != nil {
		return err
	}
	if !ok {
		return internal.ErrExpenseNotFound
	}
	return nil
}

type CompensationRepository struct {
	rows *rowSet[*compensation.Request]
}

func NewCompensationRepository(t Table) *CompensationRepository {
	return &CompensationRepository{rows: &rowSet[*compensation.Request]{
		table:  t,
		encode: EncodeCompensation,
		decode: DecodeCompensation,
	}}
}

var _ compensation.Repository = (*CompensationRepository)(nil)

func (r *CompensationRepository) Append(ctx context.Context, req *compensation.Request) error {
	return r.rows.append(ctx, req)
}

func (r *CompensationRepository) Get(ctx context.Context, id string) (*compensation.Request, error) {
	req, _, ok, err := r.rows.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, internal.ErrCompensationNotFound
	}
	return req, nil
}

func (r *CompensationRepository) List(ctx context.Context, filter compensation.Filter) ([]*compensation.Request, error) {
	all, err := r.rows.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*compensation.Request, 0, len(all))
	for _, req := range all {
		if filter.Matches(req) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *CompensationRepository) UpdateFields(ctx context.Context, id string, fields compensation.Fields) error {
	ok, err := r.rows.rewrite(ctx, id, fields.Apply)
	if err != nil {
		return err
	}
	if !ok {
		return internal.ErrCompensationNotFound
	}
	return nil
}

type ProjectRepository struct {
	rows *rowSet[*project.Project]
}

func NewProjectRepository(t Table) *ProjectRepository {
	return &ProjectRepository{rows: &rowSet[*project.Project]{
		table:  t,
		encode: EncodeProject,
		decode: DecodeProject,
	}}
}

var _ project.Repository = (*ProjectRepository)(nil)

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	return r.rows.append(ctx, p)
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	p, _, ok, err := r.rows.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, internal.ErrProjectNotFound
	}
	return p, nil
}

func (r *ProjectRepository) List(ctx context.Context, status project.Status) ([]*project.Project, error) {
	all, err := r.rows.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*project.Project, 0, len(all))
	for _, p := range all {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, status project.Status) error {
	ok, err := r.rows.rewrite(ctx, id, func(p *project.Project) { p.Status = status })
	if err != nil {
		return err
	}
	if !ok {
		return internal.ErrProjectNotFound
	}
	return nil
}

type CategoryRepository struct {
	rows *rowSet[*category.Category]
}

func NewCategoryRepository(t Table) *CategoryRepository {
	return &CategoryRepository{rows: &rowSet[*category.Category]{
		table:  t,
		encode: EncodeCategory,
		decode: DecodeCategory,
	}}
}

var _ category.Repository = (*CategoryRepository)(nil)

func (r *CategoryRepository) List(ctx context.Context) ([]*category.Category, error) {
	return r.rows.all(ctx)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	c, _, ok, err := r.rows.find(ctx, strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, category.ErrNotFound
	}
	return c, nil
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*category.Category, error) {
	all, err := r.rows.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, category.ErrNotFound
}

// Create assigns the next numeric id under the worksheet lock.
func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	r.rows.mu.Lock()
	defer r.rows.mu.Unlock()

	all, err := r.rows.all(ctx)
	if err != nil {
		return err
	}
	var maxID int64
	for _, existing := range all {
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}
	c.ID = maxID + 1
	return r.rows.table.Append(ctx, EncodeCategory(c))
}
