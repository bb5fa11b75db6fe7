package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

type memoryAccount struct {
	identity models.Identity
	hash     []byte
}

// Memory authenticates against an in-process account list. Registered accounts last as long as the process.
type Memory struct {
	mu       sync.RWMutex
	accounts []memoryAccount
	opts     options
}

// NewMemory creates a [Memory] authenticator holding seeds.
func NewMemory(seeds []Seed, opts ...Option) (*Memory, error) {
	m := &Memory{opts: newOptions(opts)}
	for _, s := range seeds {
		hash, err := hashSecret(s.Secret, m.opts.cost)
		if err != nil {
			return nil, err
		}
		m.accounts = append(m.accounts, memoryAccount{
			identity: models.Identity{ID: s.ID, Username: s.Username, Email: normalizeEmail(s.Email), Avatar: AvatarURL(s.Username), IsAdmin: s.IsAdmin},
			hash:     hash,
		})
	}
	return m, nil
}

// Login returns the identity whose email and secret match.
func (m *Memory) Login(ctx context.Context, email, secret string) (models.Identity, error) {
	if err := checkContext(ctx); err != nil {
		return models.Identity{}, err
	}

	m.mu.RLock()
	acct, ok := m.find(normalizeEmail(email))
	m.mu.RUnlock()

	if !ok {
		return models.Identity{}, shared.ErrInvalidCredentials
	}
	if err := checkSecret(acct.hash, secret); err != nil {
		return models.Identity{}, err
	}
	return acct.identity, nil
}

// Register adds a non-admin account with a fresh id.
func (m *Memory) Register(ctx context.Context, username, email, secret string) (models.Identity, error) {
	if err := checkContext(ctx); err != nil {
		return models.Identity{}, err
	}

	email = normalizeEmail(email)
	hash, err := hashSecret(secret, m.opts.cost)
	if err != nil {
		return models.Identity{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.find(email); exists {
		return models.Identity{}, fmt.Errorf("%w: %s", shared.ErrAccountExists, email)
	}

	username = strings.TrimSpace(username)
	identity := models.Identity{ID: m.opts.newID(), Username: username, Email: email, Avatar: AvatarURL(username)}
	m.accounts = append(m.accounts, memoryAccount{identity: identity, hash: hash})
	return identity, nil
}

// Identities lists every account in creation order.
func (m *Memory) Identities() []models.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Identity, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a.identity)
	}
	return out
}

func (m *Memory) find(email string) (memoryAccount, bool) {
	for _, a := range m.accounts {
		if a.identity.Email == email {
			return a, true
		}
	}
	return memoryAccount{}, false
}
