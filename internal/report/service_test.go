package report_test

import (
	"bytes"
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/balance"
	"github.com/frahmantamala/expense-bot/internal/compensation"
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/ledger"
	"github.com/frahmantamala/expense-bot/internal/limit"
	"github.com/frahmantamala/expense-bot/internal/notification"
	"github.com/frahmantamala/expense-bot/internal/project"
	"github.com/frahmantamala/expense-bot/internal/report"
)

type stubReadModel struct {
	totals []report.ProjectTotal
	err    error
	calls  int
}

func (s *stubReadModel) ProjectTotals(ctx context.Context, r report.Range) ([]report.ProjectTotal, error) {
	s.calls++
	return s.totals, s.err
}

var _ = Describe("Report Service", func() {
	var (
		ctx      context.Context
		store    *ledger.Store
		engine   *balance.Engine
		comps    *compensation.Service
		projects *project.Service
		service  *report.Service
		roof     *project.Project
		fence    *project.Project
		month    report.Range
	)

	const (
		anna  = int64(1)
		boris = int64(2)
	)

	units := money.FromUnits
	day := func(d int) time.Time { return time.Date(2026, 6, d, 12, 0, 0, 0, time.UTC) }

	spend := func(id int64, amount money.Amount, at time.Time, category string, p *project.Project) {
		in := balance.ExpenseInput{EmployeeID: id, Amount: amount, SpentAt: at, Category: category}
		if p != nil {
			in.ProjectID = p.ID
		}
		_, err := engine.ProcessExpense(ctx, in)
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger := quietLogger()
		store = ledger.Memory()

		comps = compensation.NewService(store.Compensations, store.Employees, nil, notification.NotifierFunc(func(context.Context, notification.Intent) {}), logger)
		evaluator := limit.NewEvaluator(store.Employees, store.Expenses, limit.Options{}, logger)
		engine = balance.NewEngine(store.Employees, store.Expenses, store.Compensations, evaluator, comps, logger)
		comps.SetCrediter(engine)
		projects = project.NewService(store.Projects, logger)

		Expect(store.Employees.Create(ctx, employee.NewEmployee(anna, "Anna", "Petrova", ""))).To(Succeed())
		Expect(store.Employees.Create(ctx, employee.NewEmployee(boris, "Boris", "", ""))).To(Succeed())

		var err error
		roof, err = projects.Add(ctx, project.AddProjectDTO{Name: "Roof"})
		Expect(err).NotTo(HaveOccurred())
		fence, err = projects.Add(ctx, project.AddProjectDTO{Name: "Fence"})
		Expect(err).NotTo(HaveOccurred())

		_, err = engine.AddAdvance(ctx, anna, units(1000), "")
		Expect(err).NotTo(HaveOccurred())

		spend(anna, units(100), day(2), "Materials", roof)
		spend(anna, units(50), day(3), "Transport", roof)
		spend(boris, units(300), day(4), "Materials", fence)
		spend(anna, units(20), day(5), "Food", nil)
		spend(anna, units(999), time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC), "Materials", roof)

		month = report.Range{From: day(1).Add(-12 * time.Hour), To: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)}
		service = report.NewService(store.Expenses, projects, engine, comps, logger).
			WithClock(func() time.Time { return day(30) })
	})

	Describe("ProjectTotals", func() {
		It("should total expenses per project inside the range", func() {
			totals, err := service.ProjectTotals(ctx, month)
			Expect(err).NotTo(HaveOccurred())
			Expect(totals).To(HaveLen(2))

			Expect(totals[0].ProjectID).To(Equal(fence.ID))
			Expect(totals[0].Name).To(Equal("Fence"))
			Expect(totals[0].Total).To(Equal(units(300)))

			Expect(totals[1].Name).To(Equal("Roof"))
			Expect(totals[1].Count).To(Equal(int64(2)))
			Expect(totals[1].Total).To(Equal(units(150)))
		})

		It("should prefer the read model when one is set", func() {
			rm := &stubReadModel{totals: []report.ProjectTotal{{ProjectID: "x", Total: 1}}}
			totals, err := service.WithReadModel(rm).ProjectTotals(ctx, month)
			Expect(err).NotTo(HaveOccurred())
			Expect(totals).To(Equal(rm.totals))
			Expect(rm.calls).To(Equal(1))

			rm.err = errors.New("connection reset")
			_, err = service.ProjectTotals(ctx, month)
			Expect(internal.HasCode(err, internal.ErrCodeStoreUnavailable)).To(BeTrue())
		})
	})

	Describe("ProjectDetail", func() {
		It("should break a project down by category", func() {
			detail, err := service.ProjectDetail(ctx, roof.ID, month)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.Total).To(Equal(units(150)))
			Expect(detail.ByCategory).To(Equal([]report.CategoryTotal{
				{Category: "Materials", Total: units(100)},
				{Category: "Transport", Total: units(50)},
			}))
		})

		It("should report unknown projects", func() {
			_, err := service.ProjectDetail(ctx, "missing", month)
			Expect(errors.Is(err, internal.ErrProjectNotFound)).To(BeTrue())
		})
	})

	Describe("EmployeePeriod", func() {
		It("should list the employee's expenses with the current balance", func() {
			rep, err := service.EmployeePeriod(ctx, anna, month)
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Count).To(Equal(3))
			Expect(rep.Total).To(Equal(units(170)))
			Expect(rep.Balance).To(Equal(units(1000 - 100 - 50 - 20 - 999)))
		})

		It("should report unknown employees", func() {
			_, err := service.EmployeePeriod(ctx, 404, month)
			Expect(errors.Is(err, internal.ErrEmployeeNotFound)).To(BeTrue())
		})
	})

	Describe("Balances", func() {
		It("should summarise negative balances and pending compensation", func() {
			summary, err := service.Balances(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.GeneratedAt).To(Equal(day(30)))
			Expect(summary.Balances).To(HaveLen(2))
			Expect(summary.Negative).To(HaveLen(2))
			Expect(summary.NegativeTotal).To(Equal(units(-169 - 300)))
			// each overdraft opened an automatic request
			Expect(summary.PendingTotal).To(BeNumerically(">", 0))
		})

		It("should render a PDF statement", func() {
			summary, err := service.Balances(ctx)
			Expect(err).NotTo(HaveOccurred())

			var buf bytes.Buffer
			Expect(report.WriteBalancesPDF(&buf, summary)).To(Succeed())
			Expect(buf.Len()).To(BeNumerically(">", 500))
			Expect(buf.String()).To(HavePrefix("%PDF-"))
		})
	})
})
