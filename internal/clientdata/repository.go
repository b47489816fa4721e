// Package clientdata provides persistent caching for bridge command payloads.
// Payloads are stored as msgpack-encoded records with expiration timestamps so
// the bridge can serve last-known-good data, flagged stale, when the backend
// is unreachable.
package clientdata

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// AllTables lists all payload tables for cleanup operations.
var AllTables = []string{
	"positions",
	"account_summary",
	"orders",
	"performance",
}

// validTables is a set for O(1) table name validation.
var validTables = func() map[string]bool {
	m := make(map[string]bool, len(AllTables))
	for _, t := range AllTables {
		m[t] = true
	}
	return m
}()

// Record is a cached payload with its fetch metadata.
type Record struct {
	Body      []byte `msgpack:"body"`
	SourceURL string `msgpack:"source_url"`
	FetchedAt int64  `msgpack:"fetched_at"`
}

// Repository provides cache operations for bridge payloads.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new client data repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InitSchema creates all payload tables if they do not exist.
func (r *Repository) InitSchema() error {
	for _, table := range AllTables {
		query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			account_id TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expires_at INTEGER NOT NULL
		)`, table)
		if _, err := r.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// validateTable ensures the table name is in our allowed list.
// This prevents SQL injection through table names.
func validateTable(table string) error {
	if !validTables[table] {
		return fmt.Errorf("invalid table name: %s", table)
	}
	return nil
}

// Store saves a payload record with expiration = now + ttl.
// Uses INSERT OR REPLACE to upsert data.
func (r *Repository) Store(table, accountID string, rec Record, ttl time.Duration) error {
	if err := validateTable(table); err != nil {
		return err
	}

	if rec.FetchedAt == 0 {
		rec.FetchedAt = time.Now().Unix()
	}

	data, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal payload record: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()

	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (account_id, data, expires_at) VALUES (?, ?, ?)",
		table,
	)

	if _, err := r.db.Exec(query, accountID, data, expiresAt); err != nil {
		return fmt.Errorf("failed to store payload in %s: %w", table, err)
	}

	return nil
}

// GetIfFresh returns the record only if expires_at > now.
// Returns nil, nil if the key doesn't exist or the record is expired.
// Use GetStale() to retrieve expired data as a fallback when calls fail.
func (r *Repository) GetIfFresh(table, accountID string) (*Record, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	query := fmt.Sprintf(
		"SELECT data FROM %s WHERE account_id = ? AND expires_at > ?",
		table,
	)

	return r.queryRecord(query, accountID, now)
}

// GetStale returns the record regardless of expiration, with its age in
// seconds. Returns nil, 0, nil if the key doesn't exist.
func (r *Repository) GetStale(table, accountID string) (*Record, int64, error) {
	if err := validateTable(table); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE account_id = ?", table)
	rec, err := r.queryRecord(query, accountID)
	if err != nil || rec == nil {
		return nil, 0, err
	}

	age := time.Now().Unix() - rec.FetchedAt
	if age < 0 {
		age = 0
	}
	return rec, age, nil
}

// DeleteAllExpired removes expired records from all tables.
// Returns a map of table name to number of deleted rows.
func (r *Repository) DeleteAllExpired() (map[string]int64, error) {
	now := time.Now().Unix()
	results := make(map[string]int64, len(AllTables))

	for _, table := range AllTables {
		query := fmt.Sprintf("DELETE FROM %s WHERE expires_at <= ?", table)
		res, err := r.db.Exec(query, now)
		if err != nil {
			return results, fmt.Errorf("failed to delete expired rows from %s: %w", table, err)
		}
		deleted, _ := res.RowsAffected()
		results[table] = deleted
	}

	return results, nil
}

// queryRecord runs a single-row query and unmarshals the record.
func (r *Repository) queryRecord(query string, args ...interface{}) (*Record, error) {
	var data []byte
	err := r.db.QueryRow(query, args...).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query payload: %w", err)
	}

	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload record: %w", err)
	}
	return &rec, nil
}
