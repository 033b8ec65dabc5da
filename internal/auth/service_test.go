package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/auth"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/sheets"
)

const gatewayKey = "gateway-secret-key"

var gatewayKeyHash string

var _ = BeforeSuite(func() {
	var err error
	gatewayKeyHash, err = auth.HashKey(gatewayKey)
	Expect(err).NotTo(HaveOccurred())
})

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// countingLister counts List calls and can be made to fail.
type countingLister struct {
	inner *employee.Service
	calls atomic.Int32
	fail  error
}

func (c *countingLister) List(ctx context.Context) ([]*employee.Employee, error) {
	c.calls.Add(1)
	if c.fail != nil {
		return nil, c.fail
	}
	return c.inner.List(ctx)
}

func newEmployees(ctx context.Context) *employee.Service {
	svc := employee.NewService(sheets.NewEmployeeRepository(sheets.NewMemoryTable(sheets.SheetEmployees)), quietLogger())
	_, err := svc.Add(ctx, employee.AddEmployeeDTO{ID: 100, FirstName: "Anna", Role: employee.RoleOwner})
	Expect(err).NotTo(HaveOccurred())
	_, err = svc.Add(ctx, employee.AddEmployeeDTO{ID: 200, FirstName: "Boris"})
	Expect(err).NotTo(HaveOccurred())
	return svc
}

var _ = Describe("Whitelist", func() {
	var (
		ctx       context.Context
		employees *employee.Service
		lister    *countingLister
	)

	BeforeEach(func() {
		ctx = context.Background()
		employees = newEmployees(ctx)
		lister = &countingLister{inner: employees}
	})

	It("should serve lookups from the cache", func() {
		wl := auth.NewWhitelist(lister, time.Hour, quietLogger())

		e, ok, err := wl.Lookup(ctx, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(e.FirstName).To(Equal("Anna"))

		_, ok, err = wl.Lookup(ctx, 999)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		Expect(lister.calls.Load()).To(Equal(int32(1)))
		Expect(wl.Len()).To(Equal(2))
	})

	It("should reload after invalidation", func() {
		wl := auth.NewWhitelist(lister, time.Hour, quietLogger())
		employees.OnChange(wl.Invalidate)

		_, ok, _ := wl.Lookup(ctx, 300)
		Expect(ok).To(BeFalse())

		_, err := employees.Add(ctx, employee.AddEmployeeDTO{ID: 300, FirstName: "Vera"})
		Expect(err).NotTo(HaveOccurred())

		_, ok, err = wl.Lookup(ctx, 300)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(lister.calls.Load()).To(Equal(int32(2)))
	})

	It("should reload once the ttl passes", func() {
		wl := auth.NewWhitelist(lister, 0, quietLogger())

		for i := 0; i < 3; i++ {
			_, _, err := wl.Lookup(ctx, 100)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(lister.calls.Load()).To(Equal(int32(3)))
	})

	It("should surface registry errors", func() {
		lister.fail = errors.New("sheet offline")
		wl := auth.NewWhitelist(lister, time.Hour, quietLogger())

		_, _, err := wl.Lookup(ctx, 100)
		Expect(err).To(MatchError("sheet offline"))
	})
})

var _ = Describe("Auth Service", func() {
	var (
		ctx       context.Context
		employees *employee.Service
		lister    *countingLister
		service   *auth.Service
		tokens    *auth.JWTTokenGenerator
	)

	BeforeEach(func() {
		ctx = context.Background()
		employees = newEmployees(ctx)
		lister = &countingLister{inner: employees}
		wl := auth.NewWhitelist(lister, time.Hour, quietLogger())
		employees.OnChange(wl.Invalidate)
		tokens = auth.NewJWTTokenGenerator("test-secret", time.Hour)
		service = auth.NewService(tokens, wl, gatewayKeyHash, quietLogger())
	})

	It("should issue a token for a registered employee", func() {
		resp, err := service.IssueToken(ctx, auth.TokenRequestDTO{EmployeeID: 100, APIKey: gatewayKey})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.TokenType).To(Equal("Bearer"))

		claims, err := tokens.ValidateToken(resp.AccessToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.Role).To(Equal(string(employee.RoleOwner)))
	})

	It("should reject a wrong gateway key", func() {
		_, err := service.IssueToken(ctx, auth.TokenRequestDTO{EmployeeID: 100, APIKey: "guess"})
		Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		Expect(lister.calls.Load()).To(BeZero())
	})

	It("should refuse unregistered ids", func() {
		_, err := service.IssueToken(ctx, auth.TokenRequestDTO{EmployeeID: 999, APIKey: gatewayKey})
		Expect(err).To(MatchError(auth.ErrNotWhitelisted))
	})

	It("should validate the request", func() {
		_, err := service.IssueToken(ctx, auth.TokenRequestDTO{APIKey: gatewayKey})
		Expect(internal.HasCode(err, internal.ErrCodeValidationFailed)).To(BeTrue())
	})

	It("should still issue tokens to blocked employees", func() {
		_, err := employees.Block(ctx, 200)
		Expect(err).NotTo(HaveOccurred())

		resp, err := service.IssueToken(ctx, auth.TokenRequestDTO{EmployeeID: 200, APIKey: gatewayKey})
		Expect(err).NotTo(HaveOccurred())

		emp, err := service.Authenticate(ctx, resp.AccessToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(emp.IsActive()).To(BeFalse())
	})

	It("should resolve the current role on every request", func() {
		resp, err := service.IssueToken(ctx, auth.TokenRequestDTO{EmployeeID: 200, APIKey: gatewayKey})
		Expect(err).NotTo(HaveOccurred())

		_, err = employees.SetRole(ctx, 200, employee.RoleController)
		Expect(err).NotTo(HaveOccurred())

		emp, err := service.Authenticate(ctx, resp.AccessToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(emp.Role).To(Equal(employee.RoleController))
	})

	It("should wrap registry failures", func() {
		lister.fail = errors.New("sheet offline")
		_, err := service.IssueToken(ctx, auth.TokenRequestDTO{EmployeeID: 100, APIKey: gatewayKey})
		Expect(internal.HasCode(err, internal.ErrCodeStoreUnavailable)).To(BeTrue())
	})
})
