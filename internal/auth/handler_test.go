package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/auth"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/transport"
)

var _ = Describe("Auth Handler", func() {
	var (
		ctx       context.Context
		employees *employee.Service
		handler   *auth.Handler
		router    *chi.Mux
	)

	token := func(id int64) string {
		resp, err := handler.Service.IssueToken(ctx, auth.TokenRequestDTO{EmployeeID: id, APIKey: gatewayKey})
		Expect(err).NotTo(HaveOccurred())
		return resp.AccessToken
	}

	call := func(method, path, bearer string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	whoami := func(w http.ResponseWriter, r *http.Request) {
		id, _ := internal.EmployeeIDFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "role": internal.RoleFromContext(r.Context())})
	}

	BeforeEach(func() {
		ctx = context.Background()
		employees = newEmployees(ctx)
		wl := auth.NewWhitelist(employees, time.Hour, quietLogger())
		employees.OnChange(wl.Invalidate)
		svc := auth.NewService(auth.NewJWTTokenGenerator("test-secret", time.Hour), wl, gatewayKeyHash, quietLogger())
		handler = auth.NewHandler(transport.NewBaseHandler(quietLogger()), svc)

		router = chi.NewRouter()
		router.Post("/auth/token", handler.IssueToken)
		router.Group(func(r chi.Router) {
			r.Use(handler.AuthMiddleware)
			r.Get("/me", whoami)
			r.Get("/expenses", whoami)
			r.With(handler.RequireRoles(employee.RoleOwner, employee.RoleChiefAccountant)).Get("/balances", whoami)
		})
	})

	It("should issue tokens over HTTP", func() {
		body, _ := json.Marshal(auth.TokenRequestDTO{EmployeeID: 100, APIKey: gatewayKey})
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp auth.TokenResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.AccessToken).NotTo(BeEmpty())
	})

	It("should answer 401 for a wrong key", func() {
		body, _ := json.Marshal(auth.TokenRequestDTO{EmployeeID: 100, APIKey: "nope"})
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should require a bearer token", func() {
		Expect(call(http.MethodGet, "/me", "").Code).To(Equal(http.StatusUnauthorized))
		Expect(call(http.MethodGet, "/me", "garbage").Code).To(Equal(http.StatusUnauthorized))
	})

	It("should put the principal in the context", func() {
		rec := call(http.MethodGet, "/expenses", token(200))
		Expect(rec.Code).To(Equal(http.StatusOK))

		var got map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
		Expect(got["id"]).To(BeNumerically("==", 200))
		Expect(got["role"]).To(Equal(string(employee.RoleEmployee)))
	})

	It("should limit blocked employees to the identity route", func() {
		bearer := token(200)
		_, err := employees.Block(ctx, 200)
		Expect(err).NotTo(HaveOccurred())

		Expect(call(http.MethodGet, "/me", bearer).Code).To(Equal(http.StatusOK))
		Expect(call(http.MethodGet, "/expenses", bearer).Code).To(Equal(http.StatusForbidden))
	})

	It("should enforce roles", func() {
		Expect(call(http.MethodGet, "/balances", token(100)).Code).To(Equal(http.StatusOK))
		Expect(call(http.MethodGet, "/balances", token(200)).Code).To(Equal(http.StatusForbidden))
	})

	It("should apply role changes to issued tokens", func() {
		bearer := token(100)
		_, err := employees.SetRole(ctx, 100, employee.RoleEmployee)
		Expect(err).NotTo(HaveOccurred())

		Expect(call(http.MethodGet, "/balances", bearer).Code).To(Equal(http.StatusForbidden))
	})
})
