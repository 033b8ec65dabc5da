package expense_test

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
	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/expense"
)

func TestExpenseService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Expense Service Suite")
}

// mockExpenseRepository keeps rows in memory and copies on read like a real store.
type mockExpenseRepository struct {
	mu          sync.Mutex
	rows        map[string]*expense.Expense
	getError    error
	updateError error
	updates     int
}

func newMockExpenseRepository() *mockExpenseRepository {
	return &mockExpenseRepository{rows: make(map[string]*expense.Expense)}
}

func (m *mockExpenseRepository) Append(ctx context.Context, e *expense.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.rows[e.ID] = &cp
	return nil
}

func (m *mockExpenseRepository) Get(ctx context.Context, id string) (*expense.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	e, ok := m.rows[id]
	if !ok {
		return nil, internal.ErrExpenseNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockExpenseRepository) List(ctx context.Context, filter expense.Filter) ([]*expense.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	var out []*expense.Expense
	for _, e := range m.rows {
		if filter.Matches(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockExpenseRepository) UpdateFields(ctx context.Context, id string, fields expense.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateError != nil {
		return m.updateError
	}
	e, ok := m.rows[id]
	if !ok {
		return internal.ErrExpenseNotFound
	}
	fields.Apply(e)
	m.updates++
	return nil
}

var _ = Describe("Expense Service", func() {
	var (
		ctx     context.Context
		repo    *mockExpenseRepository
		service *expense.Service
		row     *expense.Expense
	)

	const owner = int64(1001)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockExpenseRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = expense.NewService(repo, logger)

		row = expense.New(owner, expense.OperationExpense, money.FromUnits(1500), time.Now())
		row.ReceiptRef = "receipts/1.jpg"
		Expect(repo.Append(ctx, row)).To(Succeed())
	})

	Describe("Get", func() {
		It("should return the stored expense", func() {
			e, err := service.Get(ctx, row.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Amount).To(Equal(money.FromUnits(1500)))
			Expect(e.HasReceipt()).To(BeTrue())
		})

		It("should return ErrExpenseNotFound for unknown ids", func() {
			_, err := service.Get(ctx, "missing")
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
		})

		It("should wrap other repository failures as store errors", func() {
			repo.getError = errors.New("timeout")
			_, err := service.Get(ctx, row.ID)
			Expect(internal.HasCode(err, internal.ErrCodeStoreUnavailable)).To(BeTrue())
		})
	})

	Describe("RequestCompensation", func() {
		It("should move the expense to pending and keep the note", func() {
			e, err := service.RequestCompensation(ctx, row.ID, owner, "receipt attached")
			Expect(err).NotTo(HaveOccurred())
			Expect(e.CompensationStatus).To(Equal(expense.CompensationPending))
			Expect(e.Comment).To(Equal("receipt attached"))
		})

		It("should hide another employee's expense", func() {
			_, err := service.RequestCompensation(ctx, row.ID, owner+1, "")
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
			Expect(repo.updates).To(BeZero())
		})

		It("should refuse a second request while pending", func() {
			_, err := service.RequestCompensation(ctx, row.ID, owner, "")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RequestCompensation(ctx, row.ID, owner, "")
			Expect(err).To(MatchError(expense.ErrNotRequestable))
		})

		It("should refuse non-expense operations", func() {
			adv := expense.New(owner, expense.OperationAdvance, money.FromUnits(100), time.Now())
			Expect(repo.Append(ctx, adv)).To(Succeed())

			_, err := service.RequestCompensation(ctx, adv.ID, owner, "")
			Expect(err).To(MatchError(expense.ErrNotRequestable))
		})

		It("should allow asking again after a rejection", func() {
			_, err := service.RequestCompensation(ctx, row.ID, owner, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.RejectCompensation(ctx, row.ID, "wrong receipt")
			Expect(err).NotTo(HaveOccurred())

			e, err := service.RequestCompensation(ctx, row.ID, owner, "new receipt")
			Expect(err).NotTo(HaveOccurred())
			Expect(e.CompensationStatus).To(Equal(expense.CompensationPending))
			Expect(e.Comment).To(Equal("wrong receipt; new receipt"))
		})
	})

	Describe("settlement", func() {
		BeforeEach(func() {
			_, err := service.RequestCompensation(ctx, row.ID, owner, "")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should approve and then mark paid", func() {
			e, err := service.ApproveCompensation(ctx, row.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.CompensationStatus).To(Equal(expense.CompensationApproved))

			e, err = service.MarkCompensationPaid(ctx, row.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.CompensationStatus).To(Equal(expense.CompensationPaid))
		})

		It("should not mark a pending expense as paid", func() {
			_, err := service.MarkCompensationPaid(ctx, row.ID)
			Expect(err).To(MatchError(expense.ErrNotApproved))
		})

		It("should not approve twice", func() {
			_, err := service.ApproveCompensation(ctx, row.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ApproveCompensation(ctx, row.ID)
			Expect(err).To(MatchError(expense.ErrNotSettleable))
		})

		It("should require a rejection reason", func() {
			_, err := service.RejectCompensation(ctx, row.ID, "  ")
			Expect(internal.HasCode(err, internal.ErrCodeReasonRequired)).To(BeTrue())

			stored, _ := repo.Get(ctx, row.ID)
			Expect(stored.CompensationStatus).To(Equal(expense.CompensationPending))
		})

		It("should report store failures without changing the caller's copy", func() {
			repo.updateError = errors.New("quota exceeded")

			_, err := service.ApproveCompensation(ctx, row.ID)
			Expect(internal.HasCode(err, internal.ErrCodeStoreUnavailable)).To(BeTrue())

			repo.updateError = nil
			stored, _ := repo.Get(ctx, row.ID)
			Expect(stored.CompensationStatus).To(Equal(expense.CompensationPending))
		})

		It("should let only one of two concurrent approvals through", func() {
			var wg sync.WaitGroup
			results := make(chan error, 2)
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := service.ApproveCompensation(ctx, row.ID)
					results <- err
				}()
			}
			wg.Wait()
			close(results)

			var failures int
			for err := range results {
				if err != nil {
					Expect(err).To(MatchError(expense.ErrNotSettleable))
					failures++
				}
			}
			Expect(failures).To(Equal(1))
		})
	})

	Describe("Filter", func() {
		It("should treat To as exclusive", func() {
			day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
			e := &expense.Expense{SpentAt: day.Add(24 * time.Hour)}
			Expect(expense.Filter{From: day, To: day.Add(24 * time.Hour)}.Matches(e)).To(BeFalse())
			Expect(expense.Filter{From: day, To: day.Add(48 * time.Hour)}.Matches(e)).To(BeTrue())
		})
	})
})
