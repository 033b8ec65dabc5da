package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/expense-bot/api"
	"github.com/frahmantamala/expense-bot/internal/auth"
	"github.com/frahmantamala/expense-bot/internal/balance"
	"github.com/frahmantamala/expense-bot/internal/category"
	"github.com/frahmantamala/expense-bot/internal/compensation"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/expense"
	"github.com/frahmantamala/expense-bot/internal/limit"
	"github.com/frahmantamala/expense-bot/internal/project"
	"github.com/frahmantamala/expense-bot/internal/report"
	"github.com/frahmantamala/expense-bot/internal/submission"
	"github.com/frahmantamala/expense-bot/internal/transport"
	"github.com/frahmantamala/expense-bot/internal/transport/rest"
	"github.com/frahmantamala/expense-bot/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP API and the notification dispatcher`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

func startHTTPServer() error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	lg := logger.LoggerWrapper()

	deps, err := initializeDependencies(context.Background(), cfg, lg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	router := chi.NewRouter()
	if err := setupRoutes(router, deps); err != nil {
		_ = deps.Close()
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		lg.Info("starting HTTP server", "address", addr, "backend", deps.Store.Backend)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = deps.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	}

	if err := deps.Close(); err != nil {
		lg.Error("failed to close dependencies", "error", err)
	}
	lg.Info("server stopped")
	return nil
}

func setupRoutes(router *chi.Mux, deps *Dependencies) error {
	base := transport.NewBaseHandler(deps.Logger)
	isApprover := func(role string) bool { return employee.Role(role).IsApprover() }
	isAdmin := func(role string) bool { return employee.Role(role).IsAdmin() }

	health := rest.NewHealthHandler(deps.Store.Checks()).
		WithDetails("notifications", func() map[string]any {
			return map[string]any{
				"delivered": deps.Dispatcher.Delivered(),
				"dropped":   deps.Dispatcher.Dropped(),
			}
		})

	handlers := rest.Handlers{
		Health:       health,
		Auth:         auth.NewHandler(base, deps.Auth),
		Employee:     employee.NewHandler(base, deps.Employees),
		Balance:      balance.NewHandler(base, deps.Engine),
		Limit:        limit.NewHandler(base, deps.Evaluator),
		Submission:   submission.NewHandler(base, deps.Submissions),
		Expense:      expense.NewHandler(base, deps.Expenses, isAdmin),
		Compensation: compensation.NewHandler(base, deps.Compensations, isApprover),
		Project:      project.NewHandler(base, deps.Projects),
		Category:     category.NewHandler(base, deps.Categories),
		Report:       report.NewHandler(base, deps.Reports),
	}

	return rest.RegisterAllRoutes(router, handlers, rest.Options{
		AllowedOrigins: deps.Config.Server.Origins(),
		OpenAPI:        api.OpenAPI,
	}, deps.Logger)
}

