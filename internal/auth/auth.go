package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/expense-bot/internal"
)

// Claims carries the employee a gateway token was minted for.
type Claims struct {
	EmployeeID int64  `json:"employee_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ErrNotWhitelisted is returned for ids absent from the employee registry.
var ErrNotWhitelisted = internal.NewForbiddenError("employee is not registered", internal.ErrCodeEmployeeNotFound)
