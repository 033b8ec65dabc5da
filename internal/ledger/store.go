package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/category"
	categoryPostgres "github.com/frahmantamala/expense-bot/internal/category/postgres"
	"github.com/frahmantamala/expense-bot/internal/compensation"
	compensationPostgres "github.com/frahmantamala/expense-bot/internal/compensation/postgres"
	"github.com/frahmantamala/expense-bot/internal/employee"
	employeePostgres "github.com/frahmantamala/expense-bot/internal/employee/postgres"
	"github.com/frahmantamala/expense-bot/internal/expense"
	expensePostgres "github.com/frahmantamala/expense-bot/internal/expense/postgres"
	"github.com/frahmantamala/expense-bot/internal/project"
	projectPostgres "github.com/frahmantamala/expense-bot/internal/project/postgres"
	"github.com/frahmantamala/expense-bot/internal/sheets"
)

// CheckFunc reports whether one backing component is reachable.
type CheckFunc func(ctx context.Context) error

// Store bundles the repositories of one backend. Every call is bounded by the
// configured store timeout.
type Store struct {
	Backend       string
	Employees     employee.Repository
	Expenses      expense.Repository
	Compensations compensation.Repository
	Projects      project.Repository
	Categories    category.Repository

	// DB and SQL are set only for the sql backend.
	DB  *gorm.DB
	SQL *sqlx.DB

	checks  map[string]CheckFunc
	closers []func() error
}

func Open(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (*Store, error) {
	var (
		s   *Store
		err error
	)
	switch cfg.Store.Backend {
	case internal.StoreBackendSQL, "":
		s, err = openSQL(cfg.Database)
	case internal.StoreBackendSheets:
		s, err = openSheets(ctx, cfg.Sheets, logger)
	case internal.StoreBackendMemory:
		s = Memory()
	default:
		err = fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("ledger store opened", "backend", s.Backend, "timeout", cfg.Store.Timeout)
	return s.WithTimeout(cfg.Store.Timeout), nil
}

func openSQL(cfg internal.DatabaseConfig) (*Store, error) {
	gdb, sqlDB, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	s := FromGorm(gdb)
	s.SQL = sqlDB
	s.checks = map[string]CheckFunc{cfg.Driver: sqlDB.PingContext}
	s.closers = append(s.closers, sqlDB.Close)
	return s, nil
}

// FromGorm builds the sql backend over an open gorm handle.
func FromGorm(gdb *gorm.DB) *Store {
	return &Store{
		Backend:       internal.StoreBackendSQL,
		Employees:     employeePostgres.NewEmployeeRepository(gdb),
		Expenses:      expensePostgres.NewExpenseRepository(gdb),
		Compensations: compensationPostgres.NewCompensationRepository(gdb),
		Projects:      projectPostgres.NewProjectRepository(gdb),
		Categories:    categoryPostgres.NewCategoryRepository(gdb),
		DB:            gdb,
		checks:        map[string]CheckFunc{},
	}
}

func openSheets(ctx context.Context, cfg internal.SheetsConfig, logger *slog.Logger) (*Store, error) {
	svc, err := sheets.NewService(ctx, sheets.Config{
		SpreadsheetID:   cfg.SpreadsheetID,
		CredentialsFile: cfg.CredentialsFile,
		CredentialsJSON: cfg.CredentialsJSON,
	})
	if err != nil {
		return nil, err
	}
	if err := sheets.EnsureSheets(ctx, svc, cfg.SpreadsheetID, logger); err != nil {
		return nil, err
	}

	table := func(name string) sheets.Table {
		return sheets.NewGoogleTable(svc, cfg.SpreadsheetID, name, sheets.Width(name))
	}
	s := fromTables(internal.StoreBackendSheets, Tables{
		Employees:     table(sheets.SheetEmployees),
		Expenses:      table(sheets.SheetExpenses),
		Compensations: table(sheets.SheetCompensations),
		Projects:      table(sheets.SheetProjects),
		Categories:    table(sheets.SheetCategories),
	})
	employees := s.Employees
	s.checks["sheets"] = func(ctx context.Context) error {
		_, err := employees.List(ctx)
		return err
	}
	return s, nil
}

// Tables are the worksheets behind the sheets and memory backends.
type Tables struct {
	Employees     sheets.Table
	Expenses      sheets.Table
	Compensations sheets.Table
	Projects      sheets.Table
	Categories    sheets.Table
}

// MemoryTables returns fresh in-process worksheets.
func MemoryTables() Tables {
	return Tables{
		Employees:     sheets.NewMemoryTable(sheets.SheetEmployees),
		Expenses:      sheets.NewMemoryTable(sheets.SheetExpenses),
		Compensations: sheets.NewMemoryTable(sheets.SheetCompensations),
		Projects:      sheets.NewMemoryTable(sheets.SheetProjects),
		Categories:    sheets.NewMemoryTable(sheets.SheetCategories),
	}
}

// Memory is a process-local store using the spreadsheet row codec.
func Memory() *Store {
	return FromTables(MemoryTables())
}

func FromTables(t Tables) *Store {
	return fromTables(internal.StoreBackendMemory, t)
}

func fromTables(backend string, t Tables) *Store {
	return &Store{
		Backend:       backend,
		Employees:     sheets.NewEmployeeRepository(t.Employees),
		Expenses:      sheets.NewExpenseRepository(t.Expenses),
		Compensations: sheets.NewCompensationRepository(t.Compensations),
		Projects:      sheets.NewProjectRepository(t.Projects),
		Categories:    sheets.NewCategoryRepository(t.Categories),
		checks:        map[string]CheckFunc{backend: func(context.Context) error { return nil }},
	}
}

// Checks returns the health probes of the backend keyed by component name.
func (s *Store) Checks() map[string]CheckFunc {
	out := make(map[string]CheckFunc, len(s.checks))
	for k, v := range s.checks {
		out[k] = v
	}
	return out
}

func (s *Store) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithTimeout wraps every repository so each call carries its own deadline.
func (s *Store) WithTimeout(d time.Duration) *Store {
	out := *s
	out.Employees = &timeoutEmployees{next: s.Employees, d: d}
	out.Expenses = &timeoutExpenses{next: s.Expenses, d: d}
	out.Compensations = &timeoutCompensations{next: s.Compensations, d: d}
	out.Projects = &timeoutProjects{next: s.Projects, d: d}
	out.Categories = &timeoutCategories{next: s.Categories, d: d}
	return &out
}
