package auth

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/employee"
)

type Service struct {
	tokens    *JWTTokenGenerator
	whitelist *Whitelist
	keyHash   []byte
	logger    *slog.Logger
}

// NewService needs the bcrypt hash of the gateway API key.
func NewService(tokens *JWTTokenGenerator, whitelist *Whitelist, gatewayKeyHash string, logger *slog.Logger) *Service {
	return &Service{
		tokens:    tokens,
		whitelist: whitelist,
		keyHash:   []byte(gatewayKeyHash),
		logger:    logger,
	}
}

// IssueToken mints a bearer token for a registered employee. Blocked
// employees still get one; the middleware limits what they can call.
func (s *Service) IssueToken(ctx context.Context, dto TokenRequestDTO) (TokenResponse, error) {
	if err := dto.Validate(); err != nil {
		return TokenResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword(s.keyHash, []byte(dto.APIKey)); err != nil {
		s.logger.Warn("token request with invalid gateway key", "employee_id", dto.EmployeeID)
		return TokenResponse{}, internal.ErrInvalidCredentials
	}

	emp, err := s.lookup(ctx, dto.EmployeeID)
	if err != nil {
		return TokenResponse{}, err
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(emp.ID, string(emp.Role))
	if err != nil {
		return TokenResponse{}, internal.NewInternalError("failed to sign token", err)
	}
	s.logger.Info("token issued", "employee_id", emp.ID, "role", emp.Role)
	return TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a bearer token to the current employee record, so
// role and status changes apply before the token expires.
func (s *Service) Authenticate(ctx context.Context, token string) (*employee.Employee, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return s.lookup(ctx, claims.EmployeeID)
}

func (s *Service) lookup(ctx context.Context, id int64) (*employee.Employee, error) {
	emp, ok, err := s.whitelist.Lookup(ctx, id)
	if err != nil {
		return nil, internal.NewStoreError(err)
	}
	if !ok {
		s.logger.Warn("access attempt by unregistered employee", "employee_id", id)
		return nil, ErrNotWhitelisted
	}
	return emp, nil
}

// HashKey produces the bcrypt hash stored in security.gateway_key_hash.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
