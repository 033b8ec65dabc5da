package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/auth"
	"github.com/frahmantamala/expense-bot/internal/balance"
	"github.com/frahmantamala/expense-bot/internal/category"
	"github.com/frahmantamala/expense-bot/internal/compensation"
	"github.com/frahmantamala/expense-bot/internal/core/events"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/expense"
	"github.com/frahmantamala/expense-bot/internal/ledger"
	"github.com/frahmantamala/expense-bot/internal/limit"
	"github.com/frahmantamala/expense-bot/internal/notification"
	"github.com/frahmantamala/expense-bot/internal/project"
	"github.com/frahmantamala/expense-bot/internal/report"
	reportPostgres "github.com/frahmantamala/expense-bot/internal/report/postgres"
	"github.com/frahmantamala/expense-bot/internal/submission"
)

type Dependencies struct {
	Config *internal.Config
	Logger *slog.Logger
	Store  *ledger.Store

	Bus        *events.EventBus
	Deliverer  *notification.Deliverer
	Dispatcher *notification.Dispatcher

	Employees     *employee.Service
	Evaluator     *limit.Evaluator
	Engine        *balance.Engine
	Compensations *compensation.Service
	Expenses      *expense.Service
	Submissions   *submission.Service
	Projects      *project.Service
	Categories    *category.Service
	Reports       *report.Service
	Whitelist     *auth.Whitelist
	Auth          *auth.Service
}

func initializeDependencies(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := ledger.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger store: %w", err)
	}

	loc, err := cfg.Ledger.Location()
	if err != nil {
		return nil, err
	}
	policy, err := submission.ParsePolicy(cfg.Ledger.LimitPolicy)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{Config: cfg, Logger: logger, Store: store}
	deps.Employees = employee.NewService(store.Employees, logger)

	sink, err := newSink(cfg.Notification, logger)
	if err != nil {
		return nil, err
	}
	deps.Bus = events.NewEventBus(logger)
	deps.Deliverer = notification.NewDeliverer(deps.Employees, sink, logger)
	deps.Deliverer.Register(deps.Bus)
	deps.Dispatcher = notification.NewDispatcher(deps.Bus, notification.DispatcherConfig{
		QueueSize:       cfg.Notification.QueueSize,
		Workers:         cfg.Notification.Workers,
		DeliveryTimeout: cfg.Notification.Timeout,
	}, logger)

	deps.Evaluator = limit.NewEvaluator(store.Employees, store.Expenses, limit.Options{
		Location:       loc,
		WarningPercent: cfg.Ledger.WarningPercent,
	}, logger)

	// the engine credits approved requests and creates automatic ones, so
	// the compensation service gets its crediter once the engine exists
	deps.Compensations = compensation.NewService(store.Compensations, store.Employees, nil, deps.Dispatcher, logger).
		WithExpenses(store.Expenses)
	deps.Engine = balance.NewEngine(store.Employees, store.Expenses, store.Compensations, deps.Evaluator, deps.Compensations, logger)
	deps.Compensations.SetCrediter(deps.Engine)

	deps.Expenses = expense.NewService(store.Expenses, logger)
	deps.Submissions = submission.NewService(store.Employees, deps.Engine, deps.Evaluator, deps.Dispatcher, policy, logger)
	deps.Projects = project.NewService(store.Projects, logger)
	deps.Categories = category.NewService(store.Categories, logger)

	deps.Reports = report.NewService(store.Expenses, store.Projects, deps.Engine, deps.Compensations, logger)
	if store.SQL != nil {
		deps.Reports.WithReadModel(reportPostgres.NewReportRepository(store.SQL))
	}

	deps.Whitelist = auth.NewWhitelist(store.Employees, cfg.Security.WhitelistTTL, logger)
	deps.Employees.OnChange(deps.Whitelist.Invalidate)
	deps.Auth = auth.NewService(
		auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.TokenTTL),
		deps.Whitelist,
		cfg.Security.GatewayKeyHash,
		logger,
	)

	return deps, nil
}

func newSink(cfg internal.NotificationConfig, logger *slog.Logger) (notification.Sink, error) {
	switch cfg.Sink {
	case internal.NotificationSinkLog, "":
		return notification.NewLogSink(logger), nil
	case internal.NotificationSinkWebhook:
		return notification.NewWebhookSink(notification.WebhookConfig{
			URL:        cfg.WebhookURL,
			MaxRetries: cfg.MaxRetries,
			Backoff:    cfg.Backoff,
			Timeout:    cfg.Timeout,
		}, nil, logger), nil
	}
	return nil, fmt.Errorf("unknown notification sink %q", cfg.Sink)
}

// Close stops the dispatcher, dropping queued intents, then closes the store.
func (d *Dependencies) Close() error {
	d.Dispatcher.Shutdown()
	return d.Store.Close()
}
