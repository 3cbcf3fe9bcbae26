package admin

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"portfolio/internal/pkg/jwt"
)

const (
	adminSubject = "admin"
	adminRole    = "admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminDisabled      = errors.New("admin login is disabled")
)

// TokenIssuer signs admin bearer tokens.
type TokenIssuer interface {
	GenerateToken(subject, role string) (string, error)
	TTL() time.Duration
}

var _ TokenIssuer = (*jwt.Service)(nil)

// Service checks the single admin password and issues tokens.
type Service struct {
	passwordHash []byte
	tokens       TokenIssuer
}

func NewService(passwordHash string, tokens TokenIssuer) *Service {
	return &Service{
		passwordHash: []byte(passwordHash),
		tokens:       tokens,
	}
}

// Login returns a signed token when password matches the configured hash.
func (s *Service) Login(ctx context.Context, password string) (*LoginResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.passwordHash) == 0 {
		return nil, ErrAdminDisabled
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(adminSubject, adminRole)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

// HashPassword produces a hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
