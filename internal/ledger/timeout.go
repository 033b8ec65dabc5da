package ledger

import (
	"context"
	"time"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/category"
	"github.com/frahmantamala/expense-bot/internal/compensation"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/expense"
	"github.com/frahmantamala/expense-bot/internal/project"
)

type timeoutEmployees struct {
	next employee.Repository
	d    time.Duration
}

func (r *timeoutEmployees) Get(ctx context.Context, id int64) (*employee.Employee, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.Get(ctx, id)
}

func (r *timeoutEmployees) List(ctx context.Context) ([]*employee.Employee, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.List(ctx)
}

func (r *timeoutEmployees) Create(ctx context.Context, e *employee.Employee) error {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.Create(ctx, e)
}

func (r *timeoutEmployees) UpdateFields(ctx context.Context, id int64, fields employee.Fields) error {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.UpdateFields(ctx, id, fields)
}

type timeoutExpenses struct {
	next expense.Repository
	d    time.Duration
}

func (r *timeoutExpenses) Append(ctx context.Context, e *expense.Expense) error {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.Append(ctx, e)
}

func (r *timeoutExpenses) Get(ctx context.Context, id string) (*expense.Expense, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.Get(ctx, id)
}

func (r *timeoutExpenses) List(ctx context.Context, filter expense.Filter) ([]*expense.Expense, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.List(ctx, filter)
}

func (r *timeoutExpenses) UpdateFields(ctx context.Context, id string, fields expense.Fields) error {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.UpdateFields(ctx, id, fields)
}

type timeoutCompensations struct {
	next compensation.Repository
	d    time.Duration
}

func (r *timeoutCompensations) Append(ctx context.Context, req *compensation.Request) error {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.Append(ctx, req)
}

func (r *timeoutCompensations) Get(ctx context.Context, id string) (*compensation.Request, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.Get(ctx, id)
}

func (r *timeoutCompensations) List(ctx context.Context, filter compensation.Filter) ([]*compensation.Request, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.List(ctx, filter)
}

func (r *timeoutCompensations) UpdateFields(ctx context.Context, id string, fields compensation.Fields) error {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.UpdateFields(ctx, id, fields)
}

type timeoutProjects struct {
	next project.Repository
	d    time.Duration
}

func (r *timeoutProjects) Create(ctx context.Context, p *project.Project) error {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.Create(ctx, p)
}

func (r *timeoutProjects) Get(ctx context.Context, id string) (*project.Project, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.Get(ctx, id)
}

func (r *timeoutProjects) List(ctx context.Context, status project.Status) ([]*project.Project, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.List(ctx, status)
}

func (r *timeoutProjects) UpdateStatus(ctx context.Context, id string, status project.Status) error {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.UpdateStatus(ctx, id, status)
}

type timeoutCategories struct {
	next category.Repository
	d    time.Duration
}

func (r *timeoutCategories) List(ctx context.Context) ([]*category.Category, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.List(ctx)
}

func (r *timeoutCategories) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.GetByID(ctx, id)
}

func (r *timeoutCategories) GetByName(ctx context.Context, name string) (*category.Category, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.GetByName(ctx, name)
}

func (r *timeoutCategories) Create(ctx context.Context, c *category.Category) error {
	ctx, cancel := internal.WithTimeout(ctx, r.d)
	defer cancel()
	return r.next.Create(ctx, c)
}
