// Package repositories implements persistence for accounts and the current-identity slot.
//
// Key Implementations:
//   - [AccountRepository] : SQLite accounts with email lookups, soft deletes and sequence numbers
//   - [SlotRepository] : the identity slot as a row in the SQLite session_slots table
//   - [FileSlot] : the identity slot as a JSON file on an afero filesystem
//
// Both slot implementations satisfy the session store's IdentitySlot: Load reports a missing record as not found without error and an unreadable record as an error.
//
// Sequence numbers provide stable, human-readable ordering independent of ids and creation timestamps.
// The [NextSequence] function atomically increments per-table counters in dedicated sequence tables.
package repositories
