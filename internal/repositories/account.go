package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

const accountColumns = `id, sequence, username, email, avatar, is_admin, secret_hash, created_at, updated_at, deleted_at`

// AccountRepository implements [models.Repository] for [models.Account] persistence.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new [AccountRepository] with the given database connection
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account with the next sequence number.
//
// An empty ID is replaced with a generated one. A duplicate email returns [shared.ErrAccountExists].
func (r *AccountRepository) Create(account *models.Account) error {
	sequence, err := NextSequence(r.db, "accounts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	account.SetSequence(sequence)

	if account.ID() == "" {
		account.SetID(shared.GenerateID())
	}

	if err := account.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO accounts (id, sequence, username, email, avatar, is_admin, secret_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		account.ID(), account.Sequence(), account.Username(), account.Email(), account.Avatar(),
		account.IsAdmin(), account.SecretHash(), account.CreatedAt(), account.UpdatedAt(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", shared.ErrAccountExists, account.Email())
	}
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// Get retrieves an account by ID, excluding soft-deleted accounts
func (r *AccountRepository) Get(id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ? AND deleted_at IS NULL`

	account, err := scanAccount(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// GetByEmail retrieves an active account by email, case-insensitively.
func (r *AccountRepository) GetByEmail(email string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = ? AND deleted_at IS NULL`

	account, err := scanAccount(r.db.QueryRow(query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %s", shared.ErrNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// Update modifies an existing account's profile, admin flag and secret hash.
func (r *AccountRepository) Update(account *models.Account) error {
	if err := account.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	account.SetUpdatedAt(now)

	query := `
		UPDATE accounts
		SET username = ?, email = ?, avatar = ?, is_admin = ?, secret_hash = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		account.Username(), account.Email(), account.Avatar(), account.IsAdmin(), account.SecretHash(), now, account.ID(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", shared.ErrAccountExists, account.Email())
	}
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	return requireRow(result, account.ID())
}

// Delete soft-deletes an account by ID
func (r *AccountRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE accounts SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return requireRow(result, id)
}

// List retrieves active accounts ordered by sequence.
//
// Supported criteria: "email" (string) and "is_admin" (bool).
func (r *AccountRepository) List(criteria map[string]any) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE deleted_at IS NULL`
	args := []any{}

	if email, ok := criteria["email"].(string); ok && email != "" {
		query += " AND email = ?"
		args = append(args, strings.ToLower(email))
	}
	if admin, ok := criteria["is_admin"].(bool); ok {
		query += " AND is_admin = ?"
		args = append(args, admin)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return accounts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*models.Account, error) {
	var (
		id, username, email, avatar, secretHash string
		sequence                                int
		isAdmin                                 bool
		createdAt, updatedAt                    time.Time
		deletedAt                               sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &username, &email, &avatar, &isAdmin, &secretHash, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	account := models.NewAccount(sequence, username, email, secretHash)
	account.SetID(id)
	account.SetAvatar(avatar)
	account.SetAdmin(isAdmin)
	account.SetCreatedAt(createdAt)
	account.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		account.SetDeletedAt(&deletedAt.Time)
	}
	return account, nil
}

func requireRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: account %s not found or already deleted", shared.ErrNotFound, id)
	}
	return nil
}
