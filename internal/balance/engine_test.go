package balance_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/balance"
	"github.com/frahmantamala/expense-bot/internal/compensation"
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/expense"
	"github.com/frahmantamala/expense-bot/internal/ledger"
	"github.com/frahmantamala/expense-bot/internal/limit"
	"github.com/frahmantamala/expense-bot/internal/notification"
	"github.com/frahmantamala/expense-bot/internal/sheets"
)

func TestBalance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Balance Engine Suite")
}

var errSheetDown = errors.New("sheet unavailable")

var _ = Describe("Balance Engine", func() {
	var (
		ctx       context.Context
		tables    ledger.Tables
		store     *ledger.Store
		comps     *compensation.Service
		engine    *balance.Engine
		employees *sheets.MemoryTable
		expenses  *sheets.MemoryTable
	)

	const id = int64(501)

	units := money.FromUnits

	balanceOf := func(employeeID int64) money.Amount {
		b, err := engine.GetBalance(ctx, employeeID)
		Expect(err).NotTo(HaveOccurred())
		return b
	}

	spend := func(amount money.Amount) *balance.Outcome {
		out, err := engine.ProcessExpense(ctx, balance.ExpenseInput{
			EmployeeID: id,
			Amount:     amount,
			Category:   "Transport",
		})
		Expect(err).NotTo(HaveOccurred())
		return out
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		tables = ledger.MemoryTables()
		store = ledger.FromTables(tables)
		employees = tables.Employees.(*sheets.MemoryTable)
		expenses = tables.Expenses.(*sheets.MemoryTable)

		silent := notification.NotifierFunc(func(context.Context, notification.Intent) {})
		comps = compensation.NewService(store.Compensations, store.Employees, nil, silent, logger).
			WithExpenses(store.Expenses)
		evaluator := limit.NewEvaluator(store.Employees, store.Expenses, limit.Options{}, logger)
		engine = balance.NewEngine(store.Employees, store.Expenses, store.Compensations, evaluator, comps, logger)
		comps.SetCrediter(engine)

		Expect(store.Employees.Create(ctx, employee.NewEmployee(id, "Anna", "Smirnova", employee.RoleEmployee))).To(Succeed())
	})

	Describe("ProcessExpense", func() {
		It("should debit an advanced balance without opening a request", func() {
			_, err := engine.AddAdvance(ctx, id, units(500), "site trip")
			Expect(err).NotTo(HaveOccurred())

			out := spend(units(200))
			Expect(out.Success).To(BeTrue())
			Expect(out.NewBalance).To(Equal(units(300)))
			Expect(out.NotificationNeeded).To(BeFalse())
			Expect(out.AutoRequest).To(BeNil())
			Expect(out.Expense.CompensationStatus).To(Equal(expense.CompensationNotRequired))
			Expect(balanceOf(id)).To(Equal(units(300)))
		})

		It("should go negative and open an automatic request for the shortfall", func() {
			_, err := engine.AddAdvance(ctx, id, units(100), "")
			Expect(err).NotTo(HaveOccurred())

			out := spend(units(250))
			Expect(out.Success).To(BeTrue())
			Expect(out.NewBalance).To(Equal(units(-150)))
			Expect(out.NotificationNeeded).To(BeTrue())
			Expect(out.Expense.CompensationStatus).To(Equal(expense.CompensationPending))

			Expect(out.AutoRequest).NotTo(BeNil())
			Expect(out.AutoRequest.Amount).To(Equal(units(150)))
			Expect(out.AutoRequest.Type).To(Equal(compensation.TypeAutomatic))
			Expect(*out.AutoRequest.ExpenseID).To(Equal(out.Expense.ID))
		})

		It("should flag a balance of exactly zero without opening a request", func() {
			_, err := engine.AddAdvance(ctx, id, units(100), "")
			Expect(err).NotTo(HaveOccurred())

			out := spend(units(100))
			Expect(out.NewBalance).To(BeZero())
			Expect(out.NotificationNeeded).To(BeTrue())
			Expect(out.AutoRequest).To(BeNil())

			pending, err := comps.List(ctx, compensation.Filter{Status: compensation.StatusPending})
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(BeEmpty())
		})

		It("should carry the limit classification", func() {
			limitAmount := units(1000)
			period := employee.PeriodMonth
			Expect(store.Employees.UpdateFields(ctx, id, employee.Fields{Limit: &limitAmount, LimitPeriod: &period})).To(Succeed())

			spend(units(700))
			out := spend(units(400))
			Expect(out.Success).To(BeTrue())
			Expect(out.Limit.Exceeded).To(BeTrue())
			Expect(out.Limit.PeriodTotal).To(Equal(units(700)))
		})

		It("should reject non-positive amounts", func() {
			_, err := engine.ProcessExpense(ctx, balance.ExpenseInput{EmployeeID: id, Amount: 0})
			Expect(internal.HasCode(err, internal.ErrCodeInvalidAmount)).To(BeTrue())
			Expect(expenses.Len()).To(BeZero())
		})

		It("should report unknown employees", func() {
			_, err := engine.ProcessExpense(ctx, balance.ExpenseInput{EmployeeID: 9, Amount: units(1)})
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})

		It("should leave everything untouched when the balance write fails", func() {
			employees.Fail = sheets.FailOn(errSheetDown, "update")

			out, err := engine.ProcessExpense(ctx, balance.ExpenseInput{EmployeeID: id, Amount: units(10)})
			Expect(internal.HasCode(err, internal.ErrCodeStoreUnavailable)).To(BeTrue())
			Expect(out.Success).To(BeFalse())
			Expect(expenses.Len()).To(BeZero())

			employees.Fail = nil
			Expect(balanceOf(id)).To(BeZero())
		})

		It("should roll the balance back when the ledger row cannot be written", func() {
			_, err := engine.AddAdvance(ctx, id, units(50), "")
			Expect(err).NotTo(HaveOccurred())
			expenses.Fail = sheets.FailOn(errSheetDown, "append")

			out, err := engine.ProcessExpense(ctx, balance.ExpenseInput{EmployeeID: id, Amount: units(80)})
			Expect(internal.HasCode(err, internal.ErrCodeStoreUnavailable)).To(BeTrue())
			Expect(out.Success).To(BeFalse())
			Expect(out.NewBalance).To(Equal(units(50)))
			Expect(out.NotificationNeeded).To(BeFalse())

			expenses.Fail = nil
			Expect(balanceOf(id)).To(Equal(units(50)))
		})

		It("should report an inconsistent state when the rollback also fails", func() {
			var updates atomic.Int32
			employees.Fail = func(op string) error {
				if op == "update" && updates.Add(1) > 1 {
					return errSheetDown
				}
				return nil
			}
			expenses.Fail = sheets.FailOn(errSheetDown, "append")

			out, err := engine.ProcessExpense(ctx, balance.ExpenseInput{EmployeeID: id, Amount: units(80)})
			Expect(internal.HasCode(err, internal.ErrCodeInconsistentState)).To(BeTrue())
			Expect(out.NewBalance).To(Equal(units(-80)))
		})

		It("should not lose the expense when the automatic request fails", func() {
			tables.Compensations.(*sheets.MemoryTable).Fail = sheets.FailOn(errSheetDown, "append")

			out := spend(units(40))
			Expect(out.Success).To(BeTrue())
			Expect(out.AutoRequestFailed).To(BeTrue())
			Expect(balanceOf(id)).To(Equal(units(-40)))
		})

		It("should serialize concurrent expenses of one employee", func() {
			const n = 40
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := engine.ProcessExpense(ctx, balance.ExpenseInput{EmployeeID: id, Amount: units(10)})
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()

			Expect(balanceOf(id)).To(Equal(units(-10 * n)))
			Expect(expenses.Len()).To(Equal(n))
		})
	})

	Describe("movements", func() {
		It("should treat a refund as a debit", func() {
			_, err := engine.AddAdvance(ctx, id, units(300), "")
			Expect(err).NotTo(HaveOccurred())

			out, err := engine.Refund(ctx, id, units(120), "unused cash")
			Expect(err).NotTo(HaveOccurred())
			Expect(out.NewBalance).To(Equal(units(180)))
			Expect(out.Expense.Operation).To(Equal(expense.OperationRefund))
		})

		It("should reject unknown operations in Apply", func() {
			_, err := engine.Apply(ctx, id, units(1), balance.Operation("gift"))
			Expect(internal.HasCode(err, internal.ErrCodeValidationFailed)).To(BeTrue())
		})

		It("should credit and reverse compensations", func() {
			b, err := engine.CreditCompensation(ctx, id, units(70))
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(Equal(units(70)))

			b, err = engine.ReverseCompensation(ctx, id, units(70))
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(BeZero())
		})
	})

	Describe("queries", func() {
		BeforeEach(func() {
			for _, other := range []int64{502, 503} {
				Expect(store.Employees.Create(ctx, employee.NewEmployee(other, "E", "", employee.RoleEmployee))).To(Succeed())
			}
			_, err := engine.Apply(ctx, 502, units(30), balance.OperationExpense)
			Expect(err).NotTo(HaveOccurred())
			_, err = engine.Apply(ctx, 503, units(90), balance.OperationExpense)
			Expect(err).NotTo(HaveOccurred())
			_, err = engine.Apply(ctx, id, units(10), balance.OperationAdvance)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should list every balance by employee id", func() {
			all, err := engine.GetAllBalances(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
			Expect(all[0].EmployeeID).To(Equal(id))
		})

		It("should list negative balances most negative first", func() {
			neg, err := engine.GetNegativeBalances(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(neg).To(HaveLen(2))
			Expect(neg[0].EmployeeID).To(Equal(int64(503)))
			Expect(neg[1].EmployeeID).To(Equal(int64(502)))
		})
	})

	Describe("Settling the automatic request", func() {
		It("should mark the originating expense paid", func() {
			out := spend(units(1200))
			Expect(out.AutoRequest).NotTo(BeNil())
			Expect(out.AutoRequest.ExpenseID).To(HaveValue(Equal(out.Expense.ID)))

			_, err := comps.Approve(ctx, out.AutoRequest.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(balanceOf(id)).To(BeZero())

			row, err := store.Expenses.Get(ctx, out.Expense.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(row.CompensationStatus).To(Equal(expense.CompensationPaid))
		})
	})

	Describe("Reconcile", func() {
		It("should match the ledger after a full cycle", func() {
			_, err := engine.AddAdvance(ctx, id, units(1000), "")
			Expect(err).NotTo(HaveOccurred())
			spend(units(300))
			_, err = engine.Refund(ctx, id, units(100), "")
			Expect(err).NotTo(HaveOccurred())
			out := spend(units(800))
			Expect(out.AutoRequest).NotTo(BeNil())

			_, err = comps.Approve(ctx, out.AutoRequest.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(balanceOf(id)).To(BeZero())

			rec, err := engine.Reconcile(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Consistent()).To(BeTrue())
			Expect(rec.Advances).To(Equal(units(1000)))
			Expect(rec.Expenses).To(Equal(units(1100)))
			Expect(rec.Refunds).To(Equal(units(100)))
			Expect(rec.CompensationsPaid).To(Equal(units(200)))
		})

		It("should list pending expenses whose automatic request never opened", func() {
			tables.Compensations.(*sheets.MemoryTable).Fail = sheets.FailOn(errSheetDown, "append")
			out := spend(units(40))
			Expect(out.AutoRequestFailed).To(BeTrue())
			tables.Compensations.(*sheets.MemoryTable).Fail = nil

			settled := spend(units(10))
			Expect(settled.AutoRequest).NotTo(BeNil())

			rec, err := engine.Reconcile(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Consistent()).To(BeTrue())
			Expect(rec.UnlinkedPending).To(ConsistOf(out.Expense.ID))
		})

		It("should detect a balance edited outside the engine", func() {
			spend(units(60))
			tampered := units(5)
			Expect(store.Employees.UpdateFields(ctx, id, employee.Fields{Balance: &tampered})).To(Succeed())

			recs, err := engine.ReconcileAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(1))
			Expect(recs[0].Consistent()).To(BeFalse())
			Expect(recs[0].Drift).To(Equal(units(65)))
		})
	})
})
