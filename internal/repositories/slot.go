package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/marquee/internal/models"
)

// SlotRepository keeps a single named identity record in the session_slots table.
type SlotRepository struct {
	db   *sql.DB
	name string
}

// NewSlotRepository creates a [SlotRepository] for the slot called name.
func NewSlotRepository(db *sql.DB, name string) *SlotRepository {
	return &SlotRepository{db: db, name: name}
}

// Load returns the stored identity. found is false when the slot is empty.
func (r *SlotRepository) Load(ctx context.Context) (models.Identity, bool, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM session_slots WHERE name = ?`, r.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Identity{}, false, nil
	}
	if err != nil {
		return models.Identity{}, false, fmt.Errorf("failed to query slot %s: %w", r.name, err)
	}

	var identity models.Identity
	if err := json.Unmarshal([]byte(payload), &identity); err != nil {
		return models.Identity{}, false, fmt.Errorf("corrupt identity in slot %s: %w", r.name, err)
	}
	return identity, true, nil
}

// Save replaces the slot's contents with identity.
func (r *SlotRepository) Save(ctx context.Context, identity models.Identity) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	query := `
		INSERT INTO session_slots (name, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, r.name, string(payload), time.Now()); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", r.name, err)
	}
	return nil
}

// Clear empties the slot. Clearing an empty slot is not an error.
func (r *SlotRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_slots WHERE name = ?`, r.name); err != nil {
		return fmt.Errorf("failed to clear slot %s: %w", r.name, err)
	}
	return nil
}
