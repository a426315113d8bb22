package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fcacademy/academyweb/internal/telemetry/tracing"
	"github.com/fcacademy/academyweb/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=auth_test

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnknownAccount     = errors.New("unknown account")
)

// AccountStore returns the stored bcrypt hash for a username, or ErrUnknownAccount.
type AccountStore interface {
	PasswordHash(ctx context.Context, username string) (string, error)
}

type TokenIssuer interface {
	Issue(username string) (string, time.Time, error)
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Service struct {
	accounts AccountStore
	issuer   TokenIssuer
	// compared against when the username is unknown, so both failure paths cost one bcrypt check
	dummyHash string
}

func NewService(accounts AccountStore, issuer TokenIssuer, bcryptCost int) (*Service, error) {
	dummyHash, err := pkg.HashPassword("academy-placeholder-password", bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}

	return &Service{
		accounts:  accounts,
		issuer:    issuer,
		dummyHash: dummyHash,
	}, nil
}

func (s *Service) Login(ctx context.Context, creds Credentials) (string, time.Time, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.login")
	defer span.End()

	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		span.SetStatus(codes.Error, "missing credentials")
		return "", time.Time{}, ErrMissingCredentials
	}
	span.SetAttributes(attribute.String("username", creds.Username))

	hash, err := s.accounts.PasswordHash(ctx, creds.Username)
	if errors.Is(err, ErrUnknownAccount) {
		pkg.CheckPasswordHash(creds.Password, s.dummyHash)
		span.SetStatus(codes.Error, "unknown account")
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return "", time.Time{}, fmt.Errorf("lookup account: %w", err)
	}

	if !pkg.CheckPasswordHash(creds.Password, hash) {
		span.SetStatus(codes.Error, "wrong password")
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issuer.Issue(creds.Username)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}

	return token, expiresAt, nil
}
