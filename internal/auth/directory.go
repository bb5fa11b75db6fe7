package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// AccountStore is the persistence [Directory] needs. [repositories.AccountRepository] implements it.
type AccountStore interface {
	Create(account *models.Account) error
	GetByEmail(email string) (*models.Account, error)
}

// Directory authenticates against persisted accounts.
type Directory struct {
	accounts AccountStore
	opts     options
}

// NewDirectory creates a [Directory] over accounts.
func NewDirectory(accounts AccountStore, opts ...Option) *Directory {
	return &Directory{accounts: accounts, opts: newOptions(opts)}
}

// Login looks the account up by email and checks the secret against its hash.
func (d *Directory) Login(ctx context.Context, email, secret string) (models.Identity, error) {
	if err := checkContext(ctx); err != nil {
		return models.Identity{}, err
	}

	account, err := d.accounts.GetByEmail(normalizeEmail(email))
	if errors.Is(err, shared.ErrNotFound) {
		return models.Identity{}, shared.ErrInvalidCredentials
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("look up account: %w", err)
	}

	if err := checkSecret([]byte(account.SecretHash()), secret); err != nil {
		return models.Identity{}, err
	}
	return account.Identity(), nil
}

// Register stores a new non-admin account. A taken email returns [shared.ErrAccountExists].
func (d *Directory) Register(ctx context.Context, username, email, secret string) (models.Identity, error) {
	if err := checkContext(ctx); err != nil {
		return models.Identity{}, err
	}

	hash, err := hashSecret(secret, d.opts.cost)
	if err != nil {
		return models.Identity{}, err
	}

	account := models.NewAccount(0, username, email, string(hash))
	account.SetID(d.opts.newID())
	account.SetAvatar(AvatarURL(username))
	if err := d.accounts.Create(account); err != nil {
		return models.Identity{}, err
	}
	return account.Identity(), nil
}

// Seed inserts each seed whose email is not yet taken and returns how many were added.
func (d *Directory) Seed(ctx context.Context, seeds []Seed) (int, error) {
	added := 0
	for _, s := range seeds {
		if err := checkContext(ctx); err != nil {
			return added, err
		}

		hash, err := hashSecret(s.Secret, d.opts.cost)
		if err != nil {
			return added, err
		}

		account := models.NewAccount(0, s.Username, s.Email, string(hash))
		account.SetID(s.ID)
		account.SetAdmin(s.IsAdmin)
		account.SetAvatar(AvatarURL(s.Username))

		err = d.accounts.Create(account)
		if errors.Is(err, shared.ErrAccountExists) {
			continue
		}
		if err != nil {
			return added, fmt.Errorf("seed %s: %w", s.Email, err)
		}
		added++
	}
	return added, nil
}
