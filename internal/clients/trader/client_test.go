package trader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetActiveStrategies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/strategies/active", r.URL.Path)
		w.Write([]byte(`[{"id": "momo-1", "name": "Momentum", "status": "running", "pnl": 120.5, "trades": 14}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zerolog.Nop())
	strategies, err := c.GetActiveStrategies(context.Background())

	require.NoError(t, err)
	require.Len(t, strategies, 1)
	assert.Equal(t, "momo-1", strategies[0].ID)
	assert.Equal(t, "running", strategies[0].Status)
	assert.Equal(t, 120.5, strategies[0].PnL)
}

func TestControlStrategy(t *testing.T) {
	t.Run("posts to the action path with no body", func(t *testing.T) {
		var gotPath, gotMethod string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotMethod = r.Method
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, time.Second, zerolog.Nop())
		err := c.ControlStrategy(context.Background(), "momo-1", "pause")

		require.NoError(t, err)
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "/strategies/momo-1/pause", gotPath)
	})

	t.Run("rejects unknown actions locally", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", time.Second, zerolog.Nop())
		err := c.ControlStrategy(context.Background(), "momo-1", "restart")
		require.Error(t, err)
	})
}

func TestPlaceOrder(t *testing.T) {
	var got OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zerolog.Nop())
	err := c.PlaceOrder(context.Background(), OrderRequest{
		Symbol: "AAPL", Quantity: 10, Side: "BUY", OrderType: "MARKET",
	})

	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, "MARKET", got.OrderType)
}

func TestGetLatestScreenerResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/screener/latest", r.URL.Path)
		assert.Equal(t, "value-large-cap", r.URL.Query().Get("config_name"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		w.Write([]byte(`[{"symbol": "MSFT", "score": 0.91}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zerolog.Nop())
	results, err := c.GetLatestScreenerResults(context.Background(), "value-large-cap", 25)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "MSFT", results[0].Symbol)
}

func TestBackendErrors(t *testing.T) {
	t.Run("non-2xx becomes an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, time.Second, zerolog.Nop())
		_, err := c.GetHealth(context.Background())
		require.Error(t, err)
	})

	t.Run("unreachable backend becomes an error", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", 200*time.Millisecond, zerolog.Nop())
		_, err := c.GetPositions(context.Background())
		require.Error(t, err)
	})
}
