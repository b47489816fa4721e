package autotrade

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincept/autotrade-bridge/internal/domain"
)

// mockInvoker records every command invocation and returns canned responses.
type mockInvoker struct {
	calls     []string
	responses map[string]*CommandResponse
	err       error
}

func newMockInvoker() *mockInvoker {
	return &mockInvoker{responses: make(map[string]*CommandResponse)}
}

func (m *mockInvoker) Invoke(ctx context.Context, command, accountID string, params map[string]string) (*CommandResponse, error) {
	m.calls = append(m.calls, command)
	if m.err != nil {
		return nil, m.err
	}
	if resp, ok := m.responses[command]; ok {
		return resp, nil
	}
	return nil, errors.New("no canned response for " + command)
}

func (m *mockInvoker) setData(command string, v interface{}) {
	data, _ := json.Marshal(v)
	m.responses[command] = &CommandResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

func newTestAdapter(m *mockInvoker) *Adapter {
	return NewAdapterWithInvoker(m, zerolog.Nop())
}

func TestAuthenticate(t *testing.T) {
	m := newMockInvoker()
	a := newTestAdapter(m)

	s, err := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})

	require.NoError(t, err)
	assert.True(t, s.Connected)
	assert.Equal(t, "DU8489265", s.AccountID)
	assert.NotEmpty(t, s.EstablishedAt)
	assert.Empty(t, m.calls, "authentication must not reach the network")
}

func TestSessionDerivations(t *testing.T) {
	a := newTestAdapter(newMockInvoker())
	s, _ := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})

	out := a.Logout(s)
	assert.False(t, out.Connected)
	assert.True(t, s.Connected, "original session value is untouched")

	refreshed := a.RefreshSession(out)
	assert.True(t, refreshed.Connected)
	assert.Equal(t, "DU8489265", refreshed.AccountID)
}

func TestCapabilities(t *testing.T) {
	a := newTestAdapter(newMockInvoker())

	caps := a.Capabilities()

	assert.True(t, caps.Reads)
	assert.False(t, caps.Writes)
	assert.False(t, caps.Streaming)
}

func TestGetFunds(t *testing.T) {
	t.Run("maps cash balance from the account summary", func(t *testing.T) {
		m := newMockInvoker()
		m.setData(CommandAccountSummary, PortfolioSummary{
			AccountID:           "DU8489265",
			CashBalance:         50000,
			NetLiquidationValue: 54625,
			Currency:            "USD",
		})
		a := newTestAdapter(m)
		s, _ := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})

		funds, err := a.GetFunds(context.Background(), s)

		require.NoError(t, err)
		assert.Equal(t, 50000.0, funds.AvailableCash)
		assert.Equal(t, 54625.0, funds.TotalBalance)
		assert.Equal(t, "USD", funds.Currency)
	})

	t.Run("propagates bridge failures", func(t *testing.T) {
		m := newMockInvoker()
		m.err = errors.New("connection refused")
		a := newTestAdapter(m)
		s, _ := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})

		_, err := a.GetFunds(context.Background(), s)

		require.Error(t, err)
		assert.Equal(t, domain.ErrCodeNotConnected, domain.ErrorCode(err))
	})

	t.Run("rejects backend-reported failures with their error code", func(t *testing.T) {
		m := newMockInvoker()
		msg := "account summary unavailable"
		code := domain.ErrCodeNotApplicable
		m.responses[CommandAccountSummary] = &CommandResponse{
			Success:   false,
			Error:     &msg,
			ErrorCode: &code,
			Timestamp: time.Now().Unix(),
		}
		a := newTestAdapter(m)
		s, _ := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})

		_, err := a.GetFunds(context.Background(), s)

		require.Error(t, err)
		assert.Equal(t, domain.ErrCodeNotApplicable, domain.ErrorCode(err))
		assert.Contains(t, err.Error(), "account summary unavailable")
	})

	t.Run("defaults the code when a failure envelope carries none", func(t *testing.T) {
		m := newMockInvoker()
		m.responses[CommandAccountSummary] = &CommandResponse{
			Success:   false,
			Timestamp: time.Now().Unix(),
		}
		a := newTestAdapter(m)
		s, _ := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})

		_, err := a.GetFunds(context.Background(), s)

		require.Error(t, err)
		assert.Equal(t, domain.ErrCodeNotApplicable, domain.ErrorCode(err))
	})

	t.Run("rejects disconnected sessions", func(t *testing.T) {
		a := newTestAdapter(newMockInvoker())
		s := domain.Session{AccountID: "DU8489265", Connected: false}

		_, err := a.GetFunds(context.Background(), s)

		require.Error(t, err)
		assert.Equal(t, domain.ErrCodeNotConnected, domain.ErrorCode(err))
	})
}

func TestGetPositions(t *testing.T) {
	t.Run("transforms remote positions", func(t *testing.T) {
		m := newMockInvoker()
		m.setData(CommandGetPositions, []Position{
			{Symbol: "AAPL", Quantity: 100, AvgPrice: 45.5, CurrentPrice: 46.25},
		})
		a := newTestAdapter(m)
		s, _ := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})

		positions, err := a.GetPositions(context.Background(), s)

		require.NoError(t, err)
		require.Len(t, positions, 1)
		assert.Equal(t, "AAPL", positions[0].Symbol)
		assert.Equal(t, 100.0, positions[0].BuyQuantity)
	})

	t.Run("degrades to empty slice on failure", func(t *testing.T) {
		m := newMockInvoker()
		m.err = errors.New("connection refused")
		a := newTestAdapter(m)
		s, _ := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})

		positions, err := a.GetPositions(context.Background(), s)

		require.NoError(t, err)
		assert.NotNil(t, positions)
		assert.Empty(t, positions)
	})
}

func TestGetOrders(t *testing.T) {
	t.Run("transforms remote orders", func(t *testing.T) {
		m := newMockInvoker()
		m.setData(CommandGetOrders, []Order{{OrderID: "ORD-1", Symbol: "AAPL", Side: "BUY"}})
		a := newTestAdapter(m)
		s, _ := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})

		orders, err := a.GetOrders(context.Background(), s)

		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "ORD-1", orders[0].OrderID)
	})

	t.Run("degrades to empty slice on malformed payload", func(t *testing.T) {
		m := newMockInvoker()
		m.responses[CommandGetOrders] = &CommandResponse{
			Success: true,
			Data:    json.RawMessage(`{"not":"a list"}`),
		}
		a := newTestAdapter(m)
		s, _ := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})

		orders, err := a.GetOrders(context.Background(), s)

		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestGetHoldings(t *testing.T) {
	m := newMockInvoker()
	m.setData(CommandAccountSummary, PortfolioSummary{
		AccountID: "DU8489265",
		Positions: []Position{{Symbol: "AAPL", Quantity: 100, AvgPrice: 45.5, CurrentPrice: 46.25}},
	})
	a := newTestAdapter(m)
	s, _ := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})

	holdings, err := a.GetHoldings(context.Background(), s)

	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "DU8489265", holdings[0].PortfolioID)
	assert.Equal(t, 4625.0, holdings[0].CurrentValue)
}

func TestGetPerformance(t *testing.T) {
	t.Run("passes the period and returns the series", func(t *testing.T) {
		m := newMockInvoker()
		m.setData(CommandGetPerformance, Performance{
			Period:   "30d",
			Currency: "USD",
			Series:   []PerformancePoint{{Timestamp: 1756080000, NAV: 54625}},
		})
		a := newTestAdapter(m)
		s, _ := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})

		perf, err := a.GetPerformance(context.Background(), s, "30d")

		require.NoError(t, err)
		assert.Equal(t, "30d", perf.Period)
		require.Len(t, perf.Series, 1)
		assert.Equal(t, 54625.0, perf.Series[0].NAV)
	})

	t.Run("propagates failures", func(t *testing.T) {
		m := newMockInvoker()
		m.err = errors.New("connection refused")
		a := newTestAdapter(m)
		s, _ := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})

		_, err := a.GetPerformance(context.Background(), s, "30d")

		require.Error(t, err)
	})
}

func TestWriteOperationsRejectedWithoutNetworkCalls(t *testing.T) {
	m := newMockInvoker()
	a := newTestAdapter(m)
	s, _ := a.Authenticate(context.Background(), domain.Credentials{AccountID: "DU8489265"})
	ctx := context.Background()
	req := domain.OrderRequest{Symbol: "AAPL", Side: "BUY", Quantity: 10}

	results := []domain.OrderResult{
		a.PlaceOrder(ctx, s, req),
		a.ModifyOrder(ctx, s, "ORD-1", req),
		a.CancelOrder(ctx, s, "ORD-1"),
		a.CancelAllOrders(ctx, s),
		a.PlaceSmartOrder(ctx, s, req),
		a.CloseAllPositions(ctx, s),
	}

	for _, r := range results {
		assert.False(t, r.Success)
		assert.Equal(t, domain.ErrCodeNotSupported, r.ErrorCode)
		assert.NotEmpty(t, r.Message)
	}
	assert.Empty(t, m.calls, "write operations must never reach the bridge")
}

func TestStreamingNoOps(t *testing.T) {
	a := newTestAdapter(newMockInvoker())

	assert.NoError(t, a.SubscribeTicks([]string{"AAPL"}, func(q domain.Quote) {}))
	assert.NoError(t, a.UnsubscribeTicks([]string{"AAPL"}))
}

func TestHealthCheckWithInvoker(t *testing.T) {
	t.Run("reports connected when a probe succeeds", func(t *testing.T) {
		m := newMockInvoker()
		m.setData(CommandGetPositions, []Position{})
		a := newTestAdapter(m)

		health, err := a.HealthCheck(context.Background())

		require.NoError(t, err)
		assert.True(t, health.Connected)
	})

	t.Run("reports disconnected when the probe fails", func(t *testing.T) {
		m := newMockInvoker()
		m.err = errors.New("connection refused")
		a := newTestAdapter(m)

		health, err := a.HealthCheck(context.Background())

		require.NoError(t, err)
		assert.False(t, health.Connected)
	})
}
