package autotrade

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fincept/autotrade-bridge/internal/domain"
)

// Adapter implements domain.BrokerAdapter for the read-only Autotrade
// integration. It holds no mutable session state: Authenticate returns an
// immutable Session value the caller threads into every read.
type Adapter struct {
	invoker Invoker
	bridge  *Bridge // nil when constructed over a bare Invoker (tests)
	logger  zerolog.Logger
}

// NewAdapter creates an adapter over the concrete bridge client.
func NewAdapter(bridge *Bridge, logger zerolog.Logger) *Adapter {
	return &Adapter{
		invoker: bridge,
		bridge:  bridge,
		logger:  logger.With().Str("component", "autotrade_adapter").Logger(),
	}
}

// NewAdapterWithInvoker creates an adapter over any Invoker.
func NewAdapterWithInvoker(invoker Invoker, logger zerolog.Logger) *Adapter {
	return &Adapter{
		invoker: invoker,
		logger:  logger.With().Str("component", "autotrade_adapter").Logger(),
	}
}

// Authenticate succeeds unconditionally with zero network calls: real
// authentication is owned by the external service, this layer only records
// which account subsequent reads are scoped to.
func (a *Adapter) Authenticate(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	return domain.Session{
		AccountID:     creds.AccountID,
		Connected:     true,
		EstablishedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// Logout derives a disconnected session. No network call, no broker-side
// logout exists for this integration.
func (a *Adapter) Logout(s domain.Session) domain.Session {
	s.Connected = false
	return s
}

// RefreshSession derives a fresh connected session from an existing one.
func (a *Adapter) RefreshSession(s domain.Session) domain.Session {
	s.Connected = true
	s.EstablishedAt = time.Now().UTC().Format(time.RFC3339)
	return s
}

// Capabilities declares the static capability set: reads only.
func (a *Adapter) Capabilities() domain.Capabilities {
	return domain.Capabilities{Reads: true}
}

// GetFunds fetches cash availability from the account summary.
// Unlike the list reads, failures here propagate to the caller.
func (a *Adapter) GetFunds(ctx context.Context, s domain.Session) (*domain.Funds, error) {
	if !s.Connected {
		return nil, domain.NewBrokerError(domain.ErrCodeNotConnected, "session is not connected")
	}

	summary, err := a.fetchSummary(ctx, s)
	if err != nil {
		return nil, err
	}

	return &domain.Funds{
		AvailableCash: summary.CashBalance,
		UsedMargin:    0,
		TotalBalance:  summary.NetLiquidationValue,
		Currency:      summary.Currency,
	}, nil
}

// GetPositions fetches current positions. On any failure it logs the cause
// and returns an empty slice so display panels render an empty table instead
// of an error state.
func (a *Adapter) GetPositions(ctx context.Context, s domain.Session) ([]domain.UnifiedPosition, error) {
	resp, err := a.invoke(ctx, CommandGetPositions, s, nil)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to fetch positions")
		return []domain.UnifiedPosition{}, nil
	}

	var positions []Position
	if err := json.Unmarshal(resp.Data, &positions); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to parse positions payload")
		return []domain.UnifiedPosition{}, nil
	}

	return ToUnifiedPositions(positions), nil
}

// GetOrders fetches the order book. Same degradation policy as GetPositions.
func (a *Adapter) GetOrders(ctx context.Context, s domain.Session) ([]domain.UnifiedOrder, error) {
	resp, err := a.invoke(ctx, CommandGetOrders, s, nil)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to fetch orders")
		return []domain.UnifiedOrder{}, nil
	}

	var orders []Order
	if err := json.Unmarshal(resp.Data, &orders); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to parse orders payload")
		return []domain.UnifiedOrder{}, nil
	}

	return ToUnifiedOrders(orders), nil
}

// GetHoldings projects the portfolio summary into display holdings.
// Same degradation policy as GetPositions.
func (a *Adapter) GetHoldings(ctx context.Context, s domain.Session) ([]domain.PortfolioHolding, error) {
	summary, err := a.fetchSummary(ctx, s)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to fetch holdings")
		return []domain.PortfolioHolding{}, nil
	}

	return SummaryToHoldings(*summary), nil
}

// GetPerformance fetches the NAV series for a period. Failures propagate:
// the performance panel distinguishes "no history" from "backend down".
func (a *Adapter) GetPerformance(ctx context.Context, s domain.Session, period string) (*domain.PerformanceSeries, error) {
	if !s.Connected {
		return nil, domain.NewBrokerError(domain.ErrCodeNotConnected, "session is not connected")
	}

	resp, err := a.invoke(ctx, CommandGetPerformance, s, map[string]string{"period": period})
	if err != nil {
		return nil, err
	}

	var perf Performance
	if err := json.Unmarshal(resp.Data, &perf); err != nil {
		return nil, fmt.Errorf("failed to parse performance payload: %w", err)
	}
	if perf.Period == "" {
		perf.Period = period
	}

	series := ToPerformanceSeries(perf)
	return &series, nil
}

// notSupported is the shared rejection for every write operation. It never
// reaches the invoker: order lifecycle is fully owned by the external service.
func (a *Adapter) notSupported(op string) domain.OrderResult {
	return domain.OrderResult{
		Success:   false,
		ErrorCode: domain.ErrCodeNotSupported,
		Message:   fmt.Sprintf("%s is not supported: autotrade integration is read-only", op),
	}
}

func (a *Adapter) PlaceOrder(ctx context.Context, s domain.Session, req domain.OrderRequest) domain.OrderResult {
	return a.notSupported("place_order")
}

func (a *Adapter) ModifyOrder(ctx context.Context, s domain.Session, orderID string, req domain.OrderRequest) domain.OrderResult {
	return a.notSupported("modify_order")
}

func (a *Adapter) CancelOrder(ctx context.Context, s domain.Session, orderID string) domain.OrderResult {
	return a.notSupported("cancel_order")
}

func (a *Adapter) CancelAllOrders(ctx context.Context, s domain.Session) domain.OrderResult {
	return a.notSupported("cancel_all_orders")
}

func (a *Adapter) PlaceSmartOrder(ctx context.Context, s domain.Session, req domain.OrderRequest) domain.OrderResult {
	return a.notSupported("place_smart_order")
}

func (a *Adapter) CloseAllPositions(ctx context.Context, s domain.Session) domain.OrderResult {
	return a.notSupported("close_all_positions")
}

// GetQuote returns a placeholder quote. The integration service exposes no
// quote endpoint; panels derive last prices from positions instead.
func (a *Adapter) GetQuote(ctx context.Context, s domain.Session, symbol string) (*domain.Quote, error) {
	return &domain.Quote{
		Symbol:    symbol,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// GetMarketDepth returns an empty book for the same reason as GetQuote.
func (a *Adapter) GetMarketDepth(ctx context.Context, s domain.Session, symbol string) (*domain.MarketDepth, error) {
	return &domain.MarketDepth{
		Symbol: symbol,
		Bids:   []domain.DepthLevel{},
		Asks:   []domain.DepthLevel{},
	}, nil
}

// SubscribeTicks is a no-op: the integration has no streaming transport.
func (a *Adapter) SubscribeTicks(symbols []string, cb domain.TickCallback) error {
	return nil
}

// UnsubscribeTicks is a no-op.
func (a *Adapter) UnsubscribeTicks(symbols []string) error {
	return nil
}

// HealthCheck reports backend reachability. When constructed over a bare
// Invoker it degrades to a positions probe.
func (a *Adapter) HealthCheck(ctx context.Context) (*domain.HealthResult, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	if a.bridge != nil {
		if err := a.bridge.Ping(ctx); err != nil {
			return &domain.HealthResult{Connected: false, Timestamp: now}, nil
		}
		return &domain.HealthResult{Connected: true, Timestamp: now}, nil
	}

	resp, err := a.invoker.Invoke(ctx, CommandGetPositions, "", nil)
	if err != nil {
		return &domain.HealthResult{Connected: false, Timestamp: now}, nil
	}
	return &domain.HealthResult{Connected: resp.Success, Stale: resp.Stale, Timestamp: now}, nil
}

// fetchSummary runs the account-summary command and decodes the payload.
func (a *Adapter) fetchSummary(ctx context.Context, s domain.Session) (*PortfolioSummary, error) {
	resp, err := a.invoke(ctx, CommandAccountSummary, s, nil)
	if err != nil {
		return nil, err
	}

	var summary PortfolioSummary
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse account summary payload: %w", err)
	}
	if summary.AccountID == "" {
		summary.AccountID = s.AccountID
	}
	return &summary, nil
}

// invoke runs a command and normalizes backend-reported failures into errors.
func (a *Adapter) invoke(ctx context.Context, command string, s domain.Session, params map[string]string) (*CommandResponse, error) {
	resp, err := a.invoker.Invoke(ctx, command, s.AccountID, params)
	if err != nil {
		return nil, domain.NewBrokerError(domain.ErrCodeNotConnected, "bridge call failed: %v", err)
	}
	if !resp.Success {
		msg := "backend reported failure"
		if resp.Error != nil {
			msg = *resp.Error
		}
		code := domain.ErrCodeNotApplicable
		if resp.ErrorCode != nil && *resp.ErrorCode != "" {
			code = *resp.ErrorCode
		}
		return nil, domain.NewBrokerError(code, "%s", msg)
	}
	return resp, nil
}
