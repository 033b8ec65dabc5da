package compensation_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/compensation"
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/expense"
	"github.com/frahmantamala/expense-bot/internal/notification"
	"github.com/frahmantamala/expense-bot/internal/sheets"
)

func TestCompensation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Compensation Suite")
}

type mockEmployees struct {
	known map[int64]bool
}

func (m *mockEmployees) Get(ctx context.Context, id int64) (*employee.Employee, error) {
	if !m.known[id] {
		return nil, internal.ErrEmployeeNotFound
	}
	return employee.NewEmployee(id, "Test", "", employee.RoleEmployee), nil
}

// mockCrediter keeps balances in a map and can be told to fail.
type mockCrediter struct {
	mu           sync.Mutex
	balances     map[int64]money.Amount
	credits      int
	reversals    int
	creditError  error
	reverseError error
}

func (m *mockCrediter) CreditCompensation(ctx context.Context, id int64, amount money.Amount) (money.Amount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creditError != nil {
		return 0, m.creditError
	}
	m.credits++
	m.balances[id] += amount
	return m.balances[id], nil
}

func (m *mockCrediter) ReverseCompensation(ctx context.Context, id int64, amount money.Amount) (money.Amount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reverseError != nil {
		return 0, m.reverseError
	}
	m.reversals++
	m.balances[id] -= amount
	return m.balances[id], nil
}

type recorder struct {
	mu      sync.Mutex
	intents []notification.Intent
}

func (r *recorder) Notify(ctx context.Context, intent notification.Intent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, intent)
}

func (r *recorder) kinds() []notification.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.Kind, len(r.intents))
	for i, in := range r.intents {
		out[i] = in.Kind
	}
	return out
}

var _ = Describe("Compensation Service", func() {
	var (
		ctx      context.Context
		table    *sheets.MemoryTable
		crediter *mockCrediter
		notes    *recorder
		service  *compensation.Service
		now      time.Time
	)

	const id = int64(77)

	create := func(units int64) *compensation.Request {
		req, err := service.CreateRequest(ctx, compensation.CreateRequestDTO{
			EmployeeID: id,
			Amount:     money.FromUnits(units),
			Type:       compensation.TypeExpenseBased,
			Comment:    "fuel",
		})
		Expect(err).NotTo(HaveOccurred())
		return req
	}

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
		table = sheets.NewMemoryTable(sheets.SheetCompensations)
		crediter = &mockCrediter{balances: map[int64]money.Amount{id: money.FromUnits(-100)}}
		notes = &recorder{}

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = compensation.NewService(
			sheets.NewCompensationRepository(table),
			&mockEmployees{known: map[int64]bool{id: true}},
			crediter,
			notes,
			logger,
		).WithClock(func() time.Time { return now })
	})

	Describe("CreateRequest", func() {
		It("should open a pending request and notify approvers", func() {
			req := create(100)
			Expect(req.Status).To(Equal(compensation.StatusPending))
			Expect(req.RequestedAt).To(Equal(now))
			Expect(req.PaidAt).To(BeNil())
			Expect(notes.kinds()).To(ConsistOf(notification.KindCompensationRequested))
		})

		It("should reject non-positive amounts", func() {
			_, err := service.CreateRequest(ctx, compensation.CreateRequestDTO{EmployeeID: id, Type: compensation.TypeAdvance})
			Expect(internal.HasCode(err, internal.ErrCodeInvalidAmount)).To(BeTrue())
			Expect(table.Len()).To(BeZero())
		})

		It("should reject unknown types", func() {
			_, err := service.CreateRequest(ctx, compensation.CreateRequestDTO{EmployeeID: id, Amount: 1, Type: "bonus"})
			Expect(internal.HasCode(err, internal.ErrCodeValidationFailed)).To(BeTrue())
		})

		It("should reject unknown employees", func() {
			_, err := service.CreateRequest(ctx, compensation.CreateRequestDTO{EmployeeID: 5, Amount: 1, Type: compensation.TypeAdvance})
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})

		It("should surface store failures", func() {
			table.Fail = sheets.FailOn(errors.New("quota"), "append")
			_, err := service.CreateRequest(ctx, compensation.CreateRequestDTO{EmployeeID: id, Amount: 1, Type: compensation.TypeAdvance})
			Expect(internal.HasCode(err, internal.ErrCodeStoreUnavailable)).To(BeTrue())
			Expect(notes.kinds()).To(BeEmpty())
		})
	})

	Describe("Approve", func() {
		It("should credit the balance and mark the request paid", func() {
			req := create(100)

			res, err := service.Approve(ctx, req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.NewBalance).To(BeZero())
			Expect(res.Request.Status).To(Equal(compensation.StatusPaid))
			Expect(*res.Request.PaidAt).To(Equal(now))

			stored, err := service.Get(ctx, req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(compensation.StatusPaid))
			Expect(notes.kinds()).To(ContainElement(notification.KindCompensationPaid))
		})

		It("should refuse a second approval", func() {
			req := create(100)
			_, err := service.Approve(ctx, req.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Approve(ctx, req.ID)
			Expect(err).To(MatchError(compensation.ErrNotPending))
			Expect(crediter.credits).To(Equal(1))
		})

		It("should credit only once under concurrent approvals", func() {
			req := create(100)
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, _ = service.Approve(ctx, req.ID)
				}()
			}
			wg.Wait()
			Expect(crediter.credits).To(Equal(1))
			Expect(crediter.balances[id]).To(BeZero())
		})

		It("should leave the request pending when the credit fails", func() {
			req := create(100)
			crediter.creditError = internal.NewStoreError(errors.New("sheet down"))

			_, err := service.Approve(ctx, req.ID)
			Expect(internal.HasCode(err, internal.ErrCodeStoreUnavailable)).To(BeTrue())

			stored, _ := service.Get(ctx, req.ID)
			Expect(stored.Status).To(Equal(compensation.StatusPending))
		})

		It("should reverse the credit when the status write fails", func() {
			req := create(100)
			table.Fail = sheets.FailOn(errors.New("quota"), "update")

			_, err := service.Approve(ctx, req.ID)
			Expect(internal.HasCode(err, internal.ErrCodeStoreUnavailable)).To(BeTrue())
			Expect(crediter.reversals).To(Equal(1))
			Expect(crediter.balances[id]).To(Equal(money.FromUnits(-100)))

			table.Fail = nil
			stored, _ := service.Get(ctx, req.ID)
			Expect(stored.Status).To(Equal(compensation.StatusPending))
		})

		It("should report an inconsistent state when the reversal fails too", func() {
			req := create(100)
			table.Fail = sheets.FailOn(errors.New("quota"), "update")
			crediter.reverseError = errors.New("still down")

			_, err := service.Approve(ctx, req.ID)
			Expect(internal.HasCode(err, internal.ErrCodeInconsistentState)).To(BeTrue())
		})

		It("should return ErrCompensationNotFound for unknown ids", func() {
			_, err := service.Approve(ctx, "nope")
			Expect(err).To(MatchError(internal.ErrCompensationNotFound))
		})
	})

	Describe("Linked expenses", func() {
		var (
			expenseTable *sheets.MemoryTable
			expenses     *sheets.ExpenseRepository
			row          *expense.Expense
		)

		BeforeEach(func() {
			expenseTable = sheets.NewMemoryTable(sheets.SheetExpenses)
			expenses = sheets.NewExpenseRepository(expenseTable)
			service.WithExpenses(expenses)

			row = expense.New(id, expense.OperationExpense, money.FromUnits(100), now)
			row.CompensationStatus = expense.CompensationNotRequired
			Expect(expenses.Append(ctx, row)).To(Succeed())
		})

		createLinked := func() *compensation.Request {
			req, err := service.CreateRequest(ctx, compensation.CreateRequestDTO{
				EmployeeID: id,
				Amount:     money.FromUnits(100),
				Type:       compensation.TypeExpenseBased,
				ExpenseID:  row.ID,
			})
			Expect(err).NotTo(HaveOccurred())
			return req
		}

		statusOf := func() expense.CompensationStatus {
			stored, err := expenses.Get(ctx, row.ID)
			Expect(err).NotTo(HaveOccurred())
			return stored.CompensationStatus
		}

		It("should mark the expense pending when a request is opened for it", func() {
			createLinked()
			Expect(statusOf()).To(Equal(expense.CompensationPending))
		})

		It("should mark the expense paid on approval", func() {
			req := createLinked()
			_, err := service.Approve(ctx, req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(statusOf()).To(Equal(expense.CompensationPaid))
		})

		It("should mark the expense rejected and keep the reason", func() {
			req := createLinked()
			_, err := service.Reject(ctx, req.ID, "duplicate claim")
			Expect(err).NotTo(HaveOccurred())

			stored, err := expenses.Get(ctx, row.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.CompensationStatus).To(Equal(expense.CompensationRejected))
			Expect(stored.Comment).To(ContainSubstring("duplicate claim"))
		})

		It("should still pay the request when the expense row cannot be written", func() {
			req := createLinked()
			expenseTable.Fail = sheets.FailOn(errors.New("sheet unavailable"), "update")

			result, err := service.Approve(ctx, req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Request.Status).To(Equal(compensation.StatusPaid))
			Expect(crediter.credits).To(Equal(1))

			expenseTable.Fail = nil
			Expect(statusOf()).To(Equal(expense.CompensationPending))
		})

		It("should leave expenses alone for requests without one", func() {
			req := create(50)
			_, err := service.Approve(ctx, req.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(statusOf()).To(Equal(expense.CompensationNotRequired))
		})
	})

	Describe("Reject", func() {
		It("should close the request and append the reason", func() {
			req := create(100)

			rejected, err := service.Reject(ctx, req.ID, "no receipt")
			Expect(err).NotTo(HaveOccurred())
			Expect(rejected.Status).To(Equal(compensation.StatusRejected))
			Expect(rejected.Comment).To(Equal("fuel; no receipt"))
			Expect(crediter.credits).To(BeZero())
			Expect(notes.kinds()).To(ContainElement(notification.KindCompensationRejected))
		})

		It("should require a reason", func() {
			req := create(100)
			_, err := service.Reject(ctx, req.ID, "")
			Expect(internal.HasCode(err, internal.ErrCodeReasonRequired)).To(BeTrue())
		})

		It("should not reject a paid request", func() {
			req := create(100)
			_, err := service.Approve(ctx, req.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Reject(ctx, req.ID, "too late")
			Expect(err).To(MatchError(compensation.ErrNotPending))
		})
	})

	Describe("List and PendingTotal", func() {
		It("should sum only pending requests", func() {
			create(100)
			paid := create(40)
			create(25)
			_, err := service.Approve(ctx, paid.ID)
			Expect(err).NotTo(HaveOccurred())

			total, err := service.PendingTotal(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(money.FromUnits(125)))

			reqs, err := service.List(ctx, compensation.Filter{Status: compensation.StatusPaid})
			Expect(err).NotTo(HaveOccurred())
			Expect(reqs).To(HaveLen(1))
		})

		It("should reject an unknown status filter", func() {
			_, err := service.List(ctx, compensation.Filter{Status: "lost"})
			Expect(internal.HasCode(err, internal.ErrCodeInvalidStatus)).To(BeTrue())
		})
	})
})
