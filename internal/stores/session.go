package stores

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Authenticator verifies credentials and creates accounts.
//
// Login returns [shared.ErrInvalidCredentials] for an unknown email or wrong secret.
// Register returns [shared.ErrAccountExists] when the email is taken.
type Authenticator interface {
	Login(ctx context.Context, email, secret string) (models.Identity, error)
	Register(ctx context.Context, username, email, secret string) (models.Identity, error)
}

// IdentitySlot durably holds at most one identity.
//
// Load reports found=false without error when the slot is empty.
type IdentitySlot interface {
	Load(ctx context.Context) (identity models.Identity, found bool, err error)
	Save(ctx context.Context, identity models.Identity) error
	Clear(ctx context.Context) error
}

// SessionState is an immutable snapshot of the session.
type SessionState struct {
	Identity *models.Identity
	Pending  bool
}

// IsAuthenticated reports whether an identity is current.
func (s SessionState) IsAuthenticated() bool {
	return s.Identity != nil
}

// clone returns s with its own copy of the identity.
func (s SessionState) clone() SessionState {
	if s.Identity != nil {
		identity := *s.Identity
		s.Identity = &identity
	}
	return s
}

// maxSecretBytes is the longest secret bcrypt accepts.
const maxSecretBytes = 72

// Registration is the input to [SessionStore.Register].
type Registration struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Secret   string `json:"password" validate:"required,min=6"`
}

// SessionStore holds the identity of whoever is using the application.
type SessionStore struct {
	auth Authenticator
	slot IdentitySlot

	writeMu   sync.Mutex
	mu        sync.Mutex
	state     SessionState
	inFlight  int
	observers broadcaster[SessionState]
}

// NewSessionStore creates an anonymous [SessionStore]. Call [SessionStore.Restore] to resume a persisted identity.
func NewSessionStore(auth Authenticator, slot IdentitySlot) *SessionStore {
	return &SessionStore{auth: auth, slot: slot}
}

// State returns the current snapshot.
func (s *SessionStore) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Current returns the current identity, if any.
func (s *SessionStore) Current() (models.Identity, bool) {
	st := s.State()
	if st.Identity == nil {
		return models.Identity{}, false
	}
	return *st.Identity, true
}

// Subscribe registers fn to receive every new snapshot after the change is applied.
//
// fn runs on the goroutine that made the change and must not call back into a mutating method.
func (s *SessionStore) Subscribe(fn func(SessionState)) (unsubscribe func()) {
	return s.observers.subscribe(fn)
}

// Login authenticates and adopts the identity, persisting it to the slot.
//
// On failure the session stays as it was and nothing is persisted.
// When two logins overlap, the one that completes last wins.
func (s *SessionStore) Login(ctx context.Context, email, secret string) (models.Identity, error) {
	s.begin()

	identity, err := s.auth.Login(ctx, strings.TrimSpace(email), secret)
	if err != nil {
		s.finish(nil)
		return models.Identity{}, err
	}

	return s.adopt(ctx, identity)
}

// Register validates the input, creates an account and adopts its identity.
func (s *SessionStore) Register(ctx context.Context, r Registration) (models.Identity, error) {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	if err := shared.Validate(r); err != nil {
		return models.Identity{}, err
	}
	if len(r.Secret) > maxSecretBytes {
		return models.Identity{}, fmt.Errorf("%w: password must be at most %d bytes", shared.ErrValidation, maxSecretBytes)
	}

	s.begin()

	identity, err := s.auth.Register(ctx, r.Username, r.Email, r.Secret)
	if err != nil {
		s.finish(nil)
		return models.Identity{}, err
	}

	return s.adopt(ctx, identity)
}

// Logout clears the slot and the current identity. It never fails; slot errors are dropped.
func (s *SessionStore) Logout(ctx context.Context) {
	_ = s.slot.Clear(ctx)

	s.apply(func(st *SessionState, _ *int) {
		st.Identity = nil
	})
}

// Restore adopts the identity held in the slot. A missing or unreadable record leaves the session anonymous.
func (s *SessionStore) Restore(ctx context.Context) SessionState {
	identity, found, err := s.slot.Load(ctx)

	return s.apply(func(st *SessionState, _ *int) {
		if err != nil || !found {
			st.Identity = nil
			return
		}
		st.Identity = &identity
	})
}

func (s *SessionStore) adopt(ctx context.Context, identity models.Identity) (models.Identity, error) {
	if err := s.slot.Save(ctx, identity); err != nil {
		s.finish(nil)
		return models.Identity{}, fmt.Errorf("persist identity: %w", err)
	}
	s.finish(&identity)
	return identity, nil
}

func (s *SessionStore) begin() {
	s.apply(func(_ *SessionState, inFlight *int) {
		*inFlight++
	})
}

// finish ends one in-flight call, replacing the identity when one is given.
func (s *SessionStore) finish(identity *models.Identity) {
	s.apply(func(st *SessionState, inFlight *int) {
		*inFlight--
		if identity != nil {
			st.Identity = identity
		}
	})
}

// apply mutates the state, recomputes Pending and publishes the result.
// Changes are published in the order they were applied.
func (s *SessionStore) apply(change func(st *SessionState, inFlight *int)) SessionState {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	change(&s.state, &s.inFlight)
	s.state.Pending = s.inFlight > 0
	next := s.state.clone()
	s.mu.Unlock()

	s.observers.publish(next)
	return next
}
