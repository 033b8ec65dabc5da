package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

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
	"github.com/frahmantamala/expense-bot/internal/transport/middleware"
	"github.com/frahmantamala/expense-bot/internal/transport/swagger"
)

const APIPrefix = "/api/v1"

type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Handler
	Employee     *employee.Handler
	Balance      *balance.Handler
	Limit        *limit.Handler
	Submission   *submission.Handler
	Expense      *expense.Handler
	Compensation *compensation.Handler
	Project      *project.Handler
	Category     *category.Handler
	Report       *report.Handler
}

type Options struct {
	AllowedOrigins []string
	OpenAPI        []byte
}

var (
	approvers = []employee.Role{employee.RoleOwner, employee.RoleChiefAccountant}
	admins    = []employee.Role{employee.RoleOwner, employee.RoleChiefAccountant, employee.RoleController}
)

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) error {
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(opts.OpenAPI)
	})
	router.Handle("/swagger/*", swagger.Handler())

	var validator *middleware.OpenAPIValidator
	if len(opts.OpenAPI) > 0 {
		v, err := middleware.NewOpenAPIValidator(opts.OpenAPI, APIPrefix, logger)
		if err != nil {
			return err
		}
		validator = v
	}

	router.Route(APIPrefix, func(r chi.Router) {
		if validator != nil {
			r.Use(validator.Middleware)
		}

		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)
		r.Post("/auth/token", h.Auth.IssueToken)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/me", h.Employee.GetMe)
			pr.Get("/me/balance", h.Balance.GetMyBalance)
			pr.Get("/me/limit", h.Limit.GetMyLimit)
			pr.Get("/me/report", h.Report.MyReport)

			pr.Route("/expenses", func(er chi.Router) {
				er.Post("/", h.Submission.SubmitExpense)
				er.Get("/", h.Expense.ListExpenses)
				er.Post("/{id}/compensation", h.Expense.RequestCompensation)

				er.Group(func(ar chi.Router) {
					ar.Use(h.Auth.RequireRoles(approvers...))
					ar.Post("/{id}/compensation/approve", h.Expense.ApproveCompensation)
					ar.Post("/{id}/compensation/reject", h.Expense.RejectCompensation)
					ar.Post("/{id}/compensation/paid", h.Expense.MarkCompensationPaid)
				})
			})

			pr.Route("/compensations", func(cr chi.Router) {
				cr.Post("/", h.Compensation.CreateRequest)
				cr.Get("/", h.Compensation.ListRequests)

				cr.Group(func(ar chi.Router) {
					ar.Use(h.Auth.RequireRoles(approvers...))
					ar.Post("/{id}/approve", h.Compensation.Approve)
					ar.Post("/{id}/reject", h.Compensation.Reject)
				})
			})

			pr.Get("/projects", h.Project.ListProjects)
			pr.Get("/categories", h.Category.GetCategories)

			pr.Group(func(ar chi.Router) {
				ar.Use(h.Auth.RequireRoles(admins...))

				ar.Get("/balances", h.Balance.ListBalances)
				ar.Get("/balances/negative", h.Balance.ListNegativeBalances)

				ar.Get("/employees", h.Employee.ListEmployees)
				ar.Get("/employees/{id}/reconcile", h.Balance.Reconcile)
				ar.Put("/employees/{id}/subscriptions/{kind}", h.Employee.SetSubscription)

				ar.Post("/projects", h.Project.AddProject)
				ar.Patch("/projects/{id}/status", h.Project.SetStatus)
				ar.Post("/categories", h.Category.AddCategory)

				ar.Get("/reports/projects", h.Report.ProjectTotals)
				ar.Get("/reports/projects/{id}", h.Report.ProjectDetail)
				ar.Get("/reports/balances", h.Report.Balances)
				ar.Get("/reports/balances.pdf", h.Report.BalancesPDF)
			})

			pr.Group(func(ar chi.Router) {
				ar.Use(h.Auth.RequireRoles(approvers...))

				ar.Post("/employees", h.Employee.AddEmployee)
				ar.Patch("/employees/{id}/status", h.Employee.SetStatus)
				ar.Patch("/employees/{id}/role", h.Employee.SetRole)
				ar.Put("/employees/{id}/limit", h.Employee.SetLimit)
				ar.Post("/employees/{id}/advances", h.Balance.AddAdvance)
				ar.Post("/employees/{id}/refunds", h.Balance.Refund)
			})
		})
	})
	return nil
}
