package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextEmployeeKey ctxKey = "employeeID"
	ContextRoleKey     ctxKey = "employeeRole"
)

func EmployeeIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(ContextEmployeeKey).(int64)
	return id, ok
}

func ContextWithEmployeeID(ctx context.Context, employeeID int64) context.Context {
	return context.WithValue(ctx, ContextEmployeeKey, employeeID)
}

// ContextWithPrincipal stores the authenticated employee and its role.
func ContextWithPrincipal(ctx context.Context, employeeID int64, role string) context.Context {
	ctx = ContextWithEmployeeID(ctx, employeeID)
	return context.WithValue(ctx, ContextRoleKey, role)
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	role, _ := ctx.Value(ContextRoleKey).(string)
	return role
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
