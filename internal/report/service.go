package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/balance"
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/expense"
	"github.com/frahmantamala/expense-bot/internal/project"
)

type ExpenseLister interface {
	List(ctx context.Context, filter expense.Filter) ([]*expense.Expense, error)
}

type ProjectReader interface {
	Get(ctx context.Context, id string) (*project.Project, error)
	List(ctx context.Context, status project.Status) ([]*project.Project, error)
}

type BalanceReader interface {
	GetBalance(ctx context.Context, employeeID int64) (money.Amount, error)
	GetAllBalances(ctx context.Context) ([]balance.EmployeeBalance, error)
	GetNegativeBalances(ctx context.Context) ([]balance.EmployeeBalance, error)
}

type PendingTotaler interface {
	PendingTotal(ctx context.Context) (money.Amount, error)
}

// ReadModel answers aggregate queries directly in SQL.
type ReadModel interface {
	ProjectTotals(ctx context.Context, r Range) ([]ProjectTotal, error)
}

type Service struct {
	expenses  ExpenseLister
	projects  ProjectReader
	balances  BalanceReader
	pending   PendingTotaler
	readModel ReadModel
	now       func() time.Time
	logger    *slog.Logger
}

func NewService(expenses ExpenseLister, projects ProjectReader, balances BalanceReader, pending PendingTotaler, logger *slog.Logger) *Service {
	return &Service{
		expenses: expenses,
		projects: projects,
		balances: balances,
		pending:  pending,
		now:      time.Now,
		logger:   logger,
	}
}

// WithReadModel routes aggregate queries to SQL instead of scanning the ledger.
func (s *Service) WithReadModel(rm ReadModel) *Service {
	s.readModel = rm
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ProjectTotals sums expense rows per project inside the range.
func (s *Service) ProjectTotals(ctx context.Context, r Range) ([]ProjectTotal, error) {
	if s.readModel != nil {
		totals, err := s.readModel.ProjectTotals(ctx, r)
		if err != nil {
			s.logger.Error("failed to query project totals", "error", err)
			return nil, internal.NewStoreError(err)
		}
		return totals, nil
	}

	rows, err := s.expenses.List(ctx, r.Filter())
	if err != nil {
		s.logger.Error("failed to list expenses for project totals", "error", err)
		return nil, internal.NewStoreError(err)
	}
	projects, err := s.projects.List(ctx, "")
	if err != nil {
		s.logger.Error("failed to list projects for project totals", "error", err)
		return nil, internal.NewStoreError(err)
	}
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	index := map[string]int{}
	var totals []ProjectTotal
	for _, e := range rows {
		if e.ProjectID == nil || *e.ProjectID == "" {
			continue
		}
		id := *e.ProjectID
		i, ok := index[id]
		if !ok {
			i = len(totals)
			index[id] = i
			totals = append(totals, ProjectTotal{ProjectID: id, Name: names[id]})
		}
		totals[i].Count++
		totals[i].Total += e.Amount
	}
	sortProjects(totals)
	return totals, nil
}

// ProjectDetail totals one project and breaks it down by category.
func (s *Service) ProjectDetail(ctx context.Context, projectID string, r Range) (*ProjectTotal, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, internal.ErrProjectNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get project", "error", err, "project_id", projectID)
		return nil, internal.NewStoreError(err)
	}

	filter := r.Filter()
	filter.ProjectID = projectID
	rows, err := s.expenses.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list project expenses", "error", err, "project_id", projectID)
		return nil, internal.NewStoreError(err)
	}

	out := &ProjectTotal{ProjectID: p.ID, Name: p.Name, Count: int64(len(rows)), ByCategory: byCategory(rows)}
	for _, e := range rows {
		out.Total += e.Amount
	}
	return out, nil
}

// EmployeePeriod lists one employee's expenses in the range with the current balance.
func (s *Service) EmployeePeriod(ctx context.Context, employeeID int64, r Range) (*EmployeeReport, error) {
	bal, err := s.balances.GetBalance(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	filter := r.Filter()
	filter.EmployeeID = &employeeID
	rows, err := s.expenses.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list employee expenses", "error", err, "employee_id", employeeID)
		return nil, internal.NewStoreError(err)
	}

	out := &EmployeeReport{EmployeeID: employeeID, Range: r, Count: len(rows), Balance: bal, Expenses: rows}
	for _, e := range rows {
		out.Total += e.Amount
	}
	return out, nil
}

func (s *Service) Balances(ctx context.Context) (*BalanceSummary, error) {
	all, err := s.balances.GetAllBalances(ctx)
	if err != nil {
		return nil, err
	}
	negative, err := s.balances.GetNegativeBalances(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.pending.PendingTotal(ctx)
	if err != nil {
		return nil, err
	}

	summary := &BalanceSummary{
		GeneratedAt:  s.now().UTC(),
		Balances:     all,
		Negative:     negative,
		PendingTotal: pending,
	}
	for _, b := range negative {
		summary.NegativeTotal += b.Balance
	}
	return summary, nil
}
