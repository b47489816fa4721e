package snapshots

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincept/autotrade-bridge/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	require.NoError(t, repo.InitSchema())
	return repo
}

func TestSaveAndHistory(t *testing.T) {
	repo := newTestRepo(t)

	summary := domain.PortfolioSummary{
		AccountID:           "DU8489265",
		CashBalance:         50000,
		TotalMarketValue:    4625,
		TotalCostBasis:      4550,
		TotalUnrealizedPnL:  75,
		TotalPositions:      1,
		NetLiquidationValue: 54625,
	}
	require.NoError(t, repo.Save(summary))

	history, err := repo.History("DU8489265", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 54625.0, history[0].NetLiquidationValue)
	assert.Equal(t, 1, history[0].TotalPositions)
	assert.NotZero(t, history[0].CreatedAt)
}

func TestHistoryScoping(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Save(domain.PortfolioSummary{AccountID: "A", NetLiquidationValue: 1}))
	require.NoError(t, repo.Save(domain.PortfolioSummary{AccountID: "B", NetLiquidationValue: 2}))

	history, err := repo.History("A", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "A", history[0].AccountID)
}

func TestHistoryLimit(t *testing.T) {
	repo := newTestRepo(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(domain.PortfolioSummary{AccountID: "A"}))
	}

	history, err := repo.History("A", 3)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestDeleteOlderThan(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Save(domain.PortfolioSummary{AccountID: "A"}))

	deleted, err := repo.DeleteOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted, "fresh snapshots survive")

	deleted, err = repo.DeleteOlderThan(-time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted, "cutoff in the future removes everything")
}
