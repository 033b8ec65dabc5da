package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/employee"
	"github.com/frahmantamala/expense-bot/internal/transport"
	"github.com/frahmantamala/expense-bot/pkg/logger"
)

type ServiceAPI interface {
	IssueToken(ctx context.Context, dto TokenRequestDTO) (TokenResponse, error)
	Authenticate(ctx context.Context, token string) (*employee.Employee, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var dto TokenRequestDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	tokens, err := h.Service.IssueToken(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tokens)
}

// identityPath is the only route a blocked employee may call.
const identityPath = "/me"

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := transport.BearerToken(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		emp, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		if !emp.IsActive() && !(r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, identityPath)) {
			h.Logger.Warn("blocked employee denied", "employee_id", emp.ID, "path", r.URL.Path)
			h.HandleServiceError(w, internal.ErrEmployeeBlocked)
			return
		}

		ctx := internal.ContextWithPrincipal(r.Context(), emp.ID, string(emp.Role))
		ctx = logger.WithEmployee(ctx, emp.ID, string(emp.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles lets the request through only for the listed roles.
func (h *Handler) RequireRoles(roles ...employee.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := employee.Role(internal.RoleFromContext(r.Context()))
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			id, _ := internal.EmployeeIDFromContext(r.Context())
			h.Logger.Warn("access denied: insufficient role",
				"employee_id", id,
				"role", role,
				"required_roles", roles)
			h.HandleServiceError(w, internal.ErrInsufficientRole)
		})
	}
}
