package clientdata

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestStoreAndGetIfFresh(t *testing.T) {
	repo := newTestRepo(t)

	rec := Record{Body: []byte(`[{"symbol":"AAPL"}]`), SourceURL: "http://localhost:8001/api/v1/positions"}
	require.NoError(t, repo.Store("positions", "DU8489265", rec, time.Hour))

	got, err := repo.GetIfFresh("positions", "DU8489265")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Body, got.Body)
	assert.Equal(t, rec.SourceURL, got.SourceURL)
	assert.NotZero(t, got.FetchedAt)
}

func TestGetIfFreshMisses(t *testing.T) {
	repo := newTestRepo(t)

	t.Run("missing key", func(t *testing.T) {
		got, err := repo.GetIfFresh("positions", "UNKNOWN")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("expired record", func(t *testing.T) {
		rec := Record{Body: []byte(`[]`)}
		require.NoError(t, repo.Store("positions", "DU8489265", rec, -time.Second))

		got, err := repo.GetIfFresh("positions", "DU8489265")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestGetStale(t *testing.T) {
	repo := newTestRepo(t)

	rec := Record{
		Body:      []byte(`[{"symbol":"AAPL"}]`),
		FetchedAt: time.Now().Add(-2 * time.Minute).Unix(),
	}
	require.NoError(t, repo.Store("positions", "DU8489265", rec, -time.Second))

	got, age, err := repo.GetStale("positions", "DU8489265")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Body, got.Body)
	assert.GreaterOrEqual(t, age, int64(119))
}

func TestStoreUpserts(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Store("orders", "DU8489265", Record{Body: []byte(`old`)}, time.Hour))
	require.NoError(t, repo.Store("orders", "DU8489265", Record{Body: []byte(`new`)}, time.Hour))

	got, err := repo.GetIfFresh("orders", "DU8489265")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []byte(`new`), got.Body)
}

func TestDeleteAllExpired(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Store("positions", "A", Record{Body: []byte(`x`)}, -time.Second))
	require.NoError(t, repo.Store("positions", "B", Record{Body: []byte(`y`)}, time.Hour))
	require.NoError(t, repo.Store("orders", "A", Record{Body: []byte(`z`)}, -time.Second))

	deleted, err := repo.DeleteAllExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted["positions"])
	assert.Equal(t, int64(1), deleted["orders"])

	got, err := repo.GetIfFresh("positions", "B")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestValidateTable(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Store("positions; DROP TABLE positions", "A", Record{Body: []byte(`x`)}, time.Hour)
	require.Error(t, err)

	_, err = repo.GetIfFresh("nonexistent", "A")
	require.Error(t, err)
}
