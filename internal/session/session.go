// Package session owns the bearer token lifecycle of the storefront user.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nikolayk812/storefront-client/internal/port"
	"go.uber.org/zap"
)

const (
	TokenKey = "token"

	DefaultSignInURL = "../auth/signIn.html"
)

var ErrAuthRequired = errors.New("authentication required")

// Redirect asks the presentation layer to send the user somewhere else.
type Redirect struct {
	Location string
}

// AuthRequiredError is returned by RequireAuth when no token is stored.
type AuthRequiredError struct {
	Redirect Redirect
}

func (e *AuthRequiredError) Error() string {
	return ErrAuthRequired.Error()
}

func (e *AuthRequiredError) Is(target error) bool {
	return target == ErrAuthRequired
}

type Session struct {
	store     port.Store
	signInURL string
	logger    *zap.Logger
}

type Option func(*Session)

func WithSignInURL(url string) Option {
	return func(s *Session) {
		s.signInURL = url
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func New(store port.Store, opts ...Option) (*Session, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}

	s := &Session{
		store:     store,
		signInURL: DefaultSignInURL,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Session) SaveToken(ctx context.Context, token string) error {
	if err := s.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("store.Set: %w", err)
	}
	return nil
}

// Token returns the stored token; ok is false when none or an empty one is stored.
func (s *Session) Token(ctx context.Context) (string, bool, error) {
	token, ok, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		return "", false, fmt.Errorf("store.Get: %w", err)
	}

	return token, ok && token != "", nil
}

func (s *Session) RemoveToken(ctx context.Context) error {
	if err := s.store.Remove(ctx, TokenKey); err != nil {
		return fmt.Errorf("store.Remove: %w", err)
	}
	return nil
}

func (s *Session) IsLoggedIn(ctx context.Context) (bool, error) {
	_, ok, err := s.Token(ctx)
	return ok, err
}

// Logout forgets the token and returns where the user should go next.
func (s *Session) Logout(ctx context.Context) (Redirect, error) {
	if err := s.RemoveToken(ctx); err != nil {
		return Redirect{}, err
	}

	s.logger.Info("session ended")
	return Redirect{Location: s.signInURL}, nil
}

// RequireAuth guards pages that need a logged-in user. It returns an
// *AuthRequiredError when no token is stored.
func (s *Session) RequireAuth(ctx context.Context) error {
	ok, err := s.IsLoggedIn(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return &AuthRequiredError{Redirect: Redirect{Location: s.signInURL}}
	}
	return nil
}

// Expiry reads the exp claim of a JWT token without verifying its signature.
// ok is false when no token is stored or it carries no expiry.
func (s *Session) Expiry(ctx context.Context) (time.Time, bool, error) {
	token, ok, err := s.Token(ctx)
	if err != nil || !ok {
		return time.Time{}, false, err
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false, fmt.Errorf("jwt.ParseUnverified: %w", err)
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, false, nil
	}
	return claims.ExpiresAt.Time, true, nil
}
