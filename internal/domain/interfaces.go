package domain

import "context"

// Credentials identifies the account the terminal wants to attach to.
// Real authentication is delegated entirely to the external service; the
// adapter only records which account subsequent reads are scoped to.
type Credentials struct {
	AccountID string
	APIKey    string // Accepted for interface compatibility, unused by Autotrade
}

// Session is an immutable session-state value returned from Authenticate and
// threaded by the caller into subsequent calls. Adapters hold no mutable
// connection state: Logout and Refresh derive new values instead of toggling
// fields, which makes adapters safely shareable between tests and callers.
type Session struct {
	AccountID     string
	Connected     bool
	EstablishedAt string
}

// Capabilities declares, at construction time, which operation categories an
// adapter actually implements. Callers check this before invoking writes or
// streaming instead of discovering a runtime NOT_SUPPORTED failure.
type Capabilities struct {
	Reads     bool // Funds, positions, orders, holdings, performance
	Writes    bool // Order placement, modification, cancellation
	Streaming bool // Quote/market-depth streaming
}

// BrokerAdapter defines broker-agnostic trading and portfolio operations.
// All broker operations go through this interface for maximum flexibility.
//
// Error policy (deliberate asymmetry, kept for callers that distinguish
// "no data" from "broker down"): GetFunds propagates failures; the
// list-returning reads degrade to empty slices and log the cause.
type BrokerAdapter interface {
	// Session management. Authenticate always succeeds locally and performs
	// no network round-trip; Logout and Refresh are pure derivations.
	Authenticate(ctx context.Context, creds Credentials) (Session, error)
	Logout(s Session) Session
	RefreshSession(s Session) Session

	// Capabilities returns the adapter's static capability declaration
	Capabilities() Capabilities

	// Read operations
	GetFunds(ctx context.Context, s Session) (*Funds, error)
	GetPositions(ctx context.Context, s Session) ([]UnifiedPosition, error)
	GetOrders(ctx context.Context, s Session) ([]UnifiedOrder, error)
	GetHoldings(ctx context.Context, s Session) ([]PortfolioHolding, error)
	GetPerformance(ctx context.Context, s Session, period string) (*PerformanceSeries, error)

	// Write operations. Read-only adapters reject these deterministically
	// with ErrCodeNotSupported and zero network calls.
	PlaceOrder(ctx context.Context, s Session, req OrderRequest) OrderResult
	ModifyOrder(ctx context.Context, s Session, orderID string, req OrderRequest) OrderResult
	CancelOrder(ctx context.Context, s Session, orderID string) OrderResult
	CancelAllOrders(ctx context.Context, s Session) OrderResult
	PlaceSmartOrder(ctx context.Context, s Session, req OrderRequest) OrderResult
	CloseAllPositions(ctx context.Context, s Session) OrderResult

	// Market data / streaming. Placeholder data or no-ops on read-only adapters.
	GetQuote(ctx context.Context, s Session, symbol string) (*Quote, error)
	GetMarketDepth(ctx context.Context, s Session, symbol string) (*MarketDepth, error)
	SubscribeTicks(symbols []string, cb TickCallback) error
	UnsubscribeTicks(symbols []string) error

	// Connection & health
	HealthCheck(ctx context.Context) (*HealthResult, error)
}
