// Package snapshots persists a history of synthesized portfolio summaries so
// the terminal can chart account value locally even when the backend keeps no
// history.
package snapshots

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fincept/autotrade-bridge/internal/domain"
)

// Snapshot is one persisted portfolio summary row
type Snapshot struct {
	ID                  int64   `json:"id"`
	AccountID           string  `json:"account_id"`
	CashBalance         float64 `json:"cash_balance"`
	TotalMarketValue    float64 `json:"total_market_value"`
	TotalCostBasis      float64 `json:"total_cost_basis"`
	TotalUnrealizedPnL  float64 `json:"total_unrealized_pnl"`
	TotalPositions      int     `json:"total_positions"`
	NetLiquidationValue float64 `json:"net_liquidation_value"`
	CreatedAt           int64   `json:"created_at"`
}

// Repository stores portfolio snapshots
type Repository struct {
	db *sql.DB
}

// NewRepository creates a snapshot repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InitSchema creates the snapshot table if it does not exist
func (r *Repository) InitSchema() error {
	query := `CREATE TABLE IF NOT EXISTS portfolio_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id TEXT NOT NULL,
		cash_balance REAL NOT NULL,
		total_market_value REAL NOT NULL,
		total_cost_basis REAL NOT NULL,
		total_unrealized_pnl REAL NOT NULL,
		total_positions INTEGER NOT NULL,
		net_liquidation_value REAL NOT NULL,
		created_at INTEGER NOT NULL
	)`
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create portfolio_snapshots table: %w", err)
	}

	index := `CREATE INDEX IF NOT EXISTS idx_snapshots_account_created
		ON portfolio_snapshots(account_id, created_at)`
	if _, err := r.db.Exec(index); err != nil {
		return fmt.Errorf("failed to create snapshot index: %w", err)
	}
	return nil
}

// Save persists one summary as a snapshot row
func (r *Repository) Save(summary domain.PortfolioSummary) error {
	query := `INSERT INTO portfolio_snapshots
		(account_id, cash_balance, total_market_value, total_cost_basis,
		 total_unrealized_pnl, total_positions, net_liquidation_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		summary.AccountID,
		summary.CashBalance,
		summary.TotalMarketValue,
		summary.TotalCostBasis,
		summary.TotalUnrealizedPnL,
		summary.TotalPositions,
		summary.NetLiquidationValue,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// History returns the most recent snapshots for an account, newest first
func (r *Repository) History(accountID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, account_id, cash_balance, total_market_value, total_cost_basis,
		total_unrealized_pnl, total_positions, net_liquidation_value, created_at
		FROM portfolio_snapshots
		WHERE account_id = ?
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := r.db.Query(query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(
			&s.ID, &s.AccountID, &s.CashBalance, &s.TotalMarketValue, &s.TotalCostBasis,
			&s.TotalUnrealizedPnL, &s.TotalPositions, &s.NetLiquidationValue, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// DeleteOlderThan removes snapshots older than the retention window.
// Returns the number of deleted rows.
func (r *Repository) DeleteOlderThan(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).Unix()

	res, err := r.db.Exec("DELETE FROM portfolio_snapshots WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old snapshots: %w", err)
	}
	deleted, _ := res.RowsAffected()
	return deleted, nil
}
