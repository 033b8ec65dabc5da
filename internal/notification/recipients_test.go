package notification_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-bot/internal/core/money"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/notification"
	"github.com/frahmantamala/expense-bot/internal/sheets"
)

const (
	workerID     = int64(10)
	ownerID      = int64(20)
	accountantID = int64(30)
	controllerID = int64(40)
	watcherID    = int64(50)
	retiredID    = int64(60)
)

// newDirectory seeds one employee per role plus a balance-alert subscriber
// and a blocked chief accountant.
func newDirectory(ctx context.Context) *employee.Service {
	dir := employee.NewService(sheets.NewEmployeeRepository(sheets.NewMemoryTable(sheets.SheetEmployees)), quietLogger())
	seed := []struct {
		id   int64
		name string
		role employee.Role
	}{
		{workerID, "Worker", employee.RoleEmployee},
		{ownerID, "Owner", employee.RoleOwner},
		{accountantID, "Accountant", employee.RoleChiefAccountant},
		{controllerID, "Controller", employee.RoleController},
		{watcherID, "Watcher", employee.RoleEmployee},
		{retiredID, "Retired", employee.RoleChiefAccountant},
	}
	for _, s := range seed {
		_, err := dir.Add(ctx, employee.AddEmployeeDTO{ID: s.id, FirstName: s.name, Role: s.role})
		Expect(err).NotTo(HaveOccurred())
	}
	_, err := dir.SetSubscription(ctx, watcherID, employee.SubscriptionBalanceAlert, true)
	Expect(err).NotTo(HaveOccurred())
	_, err = dir.Block(ctx, retiredID)
	Expect(err).NotTo(HaveOccurred())
	return dir
}

func ids(list []*employee.Employee) []int64 {
	out := make([]int64, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

var _ = Describe("Recipients", func() {
	var (
		ctx context.Context
		dir *employee.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = newDirectory(ctx)
	})

	It("should send limit warnings to the subject, controller and owner", func() {
		subject, rcpts, err := notification.Recipients(ctx, dir, notification.LimitWarning(workerID, 85, 0, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(subject.ID).To(Equal(workerID))
		Expect(ids(rcpts)).To(ConsistOf(workerID, controllerID, ownerID))
	})

	It("should skip blocked staff on limit_exceeded", func() {
		_, rcpts, err := notification.Recipients(ctx, dir, notification.LimitExceeded(workerID, 0, 0, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(rcpts)).To(ConsistOf(workerID, accountantID, ownerID))
	})

	It("should list the owner once when the owner is the subject", func() {
		_, rcpts, err := notification.Recipients(ctx, dir, notification.LimitExceeded(ownerID, 0, 0, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(rcpts)).To(ConsistOf(ownerID, accountantID))
	})

	It("should add balance alert subscribers for low_balance", func() {
		_, rcpts, err := notification.Recipients(ctx, dir, notification.LowBalance(workerID, money.FromUnits(-1)))
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(rcpts)).To(ConsistOf(workerID, accountantID, ownerID, watcherID))
	})

	It("should tell approvers but not the subject about held expenses", func() {
		_, rcpts, err := notification.Recipients(ctx, dir, notification.LimitApprovalRequired(workerID, 0, 0, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(rcpts)).To(ConsistOf(accountantID, ownerID))
	})

	It("should tell only the subject about a paid request", func() {
		_, rcpts, err := notification.Recipients(ctx, dir, notification.CompensationPaid(workerID, "r1", 1, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(ids(rcpts)).To(ConsistOf(workerID))
	})

	It("should tolerate an unknown subject", func() {
		subject, rcpts, err := notification.Recipients(ctx, dir, notification.CompensationRequested(999, "r1", 1, ""))
		Expect(err).NotTo(HaveOccurred())
		Expect(subject).To(BeNil())
		Expect(ids(rcpts)).To(ConsistOf(accountantID, ownerID))
	})
})

var _ = Describe("Render", func() {
	worker := employee.NewEmployee(workerID, "Ivan", "Petrov", employee.RoleEmployee)
	owner := employee.NewEmployee(ownerID, "Olga", "", employee.RoleOwner)

	It("should address the subject directly", func() {
		text := notification.Render(notification.LowBalance(workerID, money.FromUnits(-15)), worker, worker)
		Expect(text).To(Equal("Your balance is -15.00."))
	})

	It("should name the subject for everybody else", func() {
		text := notification.Render(notification.LowBalance(workerID, money.FromUnits(-15)), worker, owner)
		Expect(text).To(Equal("Ivan Petrov has a balance of -15.00."))
	})

	It("should include the rejection reason", func() {
		text := notification.Render(notification.CompensationRejected(workerID, "r1", money.FromUnits(3), "duplicate"), worker, worker)
		Expect(text).To(ContainSubstring("Reason: duplicate"))
	})
})
