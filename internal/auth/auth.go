// Package auth provides [stores.Authenticator] implementations backed by bcrypt-hashed secrets.
package auth

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/marquee/internal/shared"
)

// Seed describes an account created when an authenticator starts.
type Seed struct {
	ID       string
	Username string
	Email    string
	Secret   string
	IsAdmin  bool
}

// DemoAccounts returns the two built-in accounts, both with the secret "password".
func DemoAccounts() []Seed {
	return []Seed{
		{ID: "1", Username: "demo", Email: "demo@example.com", Secret: "password"},
		{ID: "2", Username: "admin", Email: "admin@example.com", Secret: "password", IsAdmin: true},
	}
}

// Option configures an authenticator.
type Option func(*options)

type options struct {
	cost  int
	newID func() string
}

// WithCost sets the bcrypt cost. Tests use [bcrypt.MinCost].
func WithCost(cost int) Option {
	return func(o *options) { o.cost = cost }
}

// WithIDGenerator replaces [shared.GenerateID] for registered accounts.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

func newOptions(opts []Option) options {
	o := options{cost: bcrypt.DefaultCost, newID: shared.GenerateID}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AvatarURL returns the generated avatar image for username.
func AvatarURL(username string) string {
	return "https://i.pravatar.cc/150?u=" + url.QueryEscape(strings.TrimSpace(username))
}

func hashSecret(secret string, cost int) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}
	return hash, nil
}

func checkSecret(hash []byte, secret string) error {
	if err := bcrypt.CompareHashAndPassword(hash, []byte(secret)); err != nil {
		return shared.ErrInvalidCredentials
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	return nil
}
