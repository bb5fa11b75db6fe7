package models

import (
	"fmt"
	"strings"
	"time"
)

// Account is a persisted login for the SQLite authenticator.
type Account struct {
	id         string
	sequence   int
	username   string
	email      string
	avatar     string
	isAdmin    bool
	secretHash string
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewAccount creates an account with creation timestamps set to now.
// The email is lowercased; the ID is assigned by the repository.
func NewAccount(sequence int, username, email, secretHash string) *Account {
	now := time.Now()
	return &Account{
		sequence:   sequence,
		username:   strings.TrimSpace(username),
		email:      strings.ToLower(strings.TrimSpace(email)),
		secretHash: secretHash,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (a *Account) ID() string {
	return a.id
}

func (a *Account) Sequence() int {
	return a.sequence
}

func (a *Account) Username() string {
	return a.username
}

func (a *Account) Email() string {
	return a.email
}

func (a *Account) Avatar() string {
	return a.avatar
}

func (a *Account) IsAdmin() bool {
	return a.isAdmin
}

func (a *Account) SecretHash() string {
	return a.secretHash
}

func (a *Account) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Account) UpdatedAt() time.Time {
	return a.updatedAt
}

func (a *Account) DeletedAt() *time.Time {
	return a.deletedAt
}

func (a *Account) SetID(id string) {
	a.id = id
}

func (a *Account) SetSequence(seq int) {
	a.sequence = seq
}

func (a *Account) SetAvatar(avatar string) {
	a.avatar = avatar
}

func (a *Account) SetAdmin(admin bool) {
	a.isAdmin = admin
}

func (a *Account) SetSecretHash(hash string) {
	a.secretHash = hash
}

func (a *Account) SetCreatedAt(t time.Time) {
	a.createdAt = t
}

func (a *Account) SetUpdatedAt(t time.Time) {
	a.updatedAt = t
}

func (a *Account) SetDeletedAt(t *time.Time) {
	a.deletedAt = t
}

func (a *Account) IsDeleted() bool {
	return a.deletedAt != nil
}

func (a *Account) Identity() Identity {
	return Identity{ID: a.id, Username: a.username, Email: a.email, Avatar: a.avatar, IsAdmin: a.isAdmin}
}

// Validate checks the fields required to store the account.
func (a *Account) Validate() error {
	switch {
	case a.id == "":
		return fmt.Errorf("account id is required")
	case a.username == "":
		return fmt.Errorf("account username is required")
	case a.email == "" || !strings.Contains(a.email, "@"):
		return fmt.Errorf("account email is invalid: %q", a.email)
	case a.secretHash == "":
		return fmt.Errorf("account secret hash is required")
	}
	return nil
}
