package domain

// Broker-agnostic types for the terminal's unified portfolio schema.
// These types abstract away broker-specific implementations (Autotrade, Zerodha, etc.)

// UnifiedPosition represents a portfolio position in the terminal's unified schema
type UnifiedPosition struct {
	Symbol       string  // Security symbol
	Exchange     string  // Exchange code
	ProductType  string  // Product type (defaulted when the broker omits it)
	Quantity     float64 // Signed quantity: positive=long, negative=short
	BuyQuantity  float64 // Quantity attributed to the long side
	SellQuantity float64 // Quantity attributed to the short side
	BuyValue     float64 // Value of the long side
	SellValue    float64 // Value of the short side
	AveragePrice float64 // Average purchase price
	LastPrice    float64 // Current market price
	PnL          float64 // Unrealized profit/loss
	PnLPercent   float64 // Unrealized profit/loss percent
	DayPnL       float64 // Profit/loss for the current day
	Overnight    bool    // Whether the position is carried overnight
}

// Funds represents account cash and margin availability
type Funds struct {
	AvailableCash float64 // Cash available for trading
	UsedMargin    float64 // Margin currently in use
	TotalBalance  float64 // Total account balance
	Currency      string  // Account currency
}

// UnifiedOrder represents an order in the terminal's unified schema.
// Order lifecycle is fully owned by the external service; this system
// only displays orders and never mutates them.
type UnifiedOrder struct {
	OrderID         string  // Broker order identifier
	Symbol          string  // Security symbol
	Exchange        string  // Exchange code
	Side            string  // "BUY" or "SELL"
	Quantity        float64 // Total order quantity
	FilledQuantity  float64 // Quantity filled so far
	PendingQuantity float64 // Quantity still pending
	Price           float64 // Limit price
	AveragePrice    float64 // Average fill price
	TriggerPrice    float64 // Trigger price for stop orders
	OrderType       string  // LIMIT, MARKET, SL, SL-M
	Status          string  // Broker order status
	PlacedAt        string  // Placement timestamp
	UpdatedAt       string  // Last update timestamp
}

// Quote represents a security quote
type Quote struct {
	Symbol    string  // Security symbol
	LastPrice float64 // Last traded price
	Change    float64 // Absolute change
	ChangePct float64 // Percentage change
	Volume    int64   // Trading volume
	Timestamp string  // Quote timestamp
}

// DepthLevel represents a single price level in the market depth book
type DepthLevel struct {
	Price    float64 // Price at this level
	Quantity float64 // Total quantity available at this price
	Orders   int     // Number of orders at this level
}

// MarketDepth represents bid/ask orders at different price levels
type MarketDepth struct {
	Symbol string       // Security symbol
	Bids   []DepthLevel // Buy side, sorted descending by price
	Asks   []DepthLevel // Sell side, sorted ascending by price
}

// PortfolioSummary is the aggregate of positions for one account
type PortfolioSummary struct {
	AccountID                 string            // Account identifier
	CashBalance               float64           // Available cash
	TotalMarketValue          float64           // Sum of position market values
	TotalCostBasis            float64           // Sum of position cost bases
	TotalUnrealizedPnL        float64           // Sum of position unrealized P&L
	TotalUnrealizedPnLPercent float64           // P&L relative to cost basis (0 when cost basis is 0)
	TotalPositions            int               // Number of positions
	NetLiquidationValue       float64           // TotalMarketValue + CashBalance
	Positions                 []UnifiedPosition // The positions this summary aggregates
	LastUpdated               string            // Timestamp of the snapshot
}

// PortfolioHolding is one row of display data per position.
// It is a projection of a position plus a grouping key; it has no independent
// lifecycle - created fresh on every fetch cycle, never persisted.
type PortfolioHolding struct {
	PortfolioID      string  // Grouping key (account identifier)
	Symbol           string  // Security symbol
	Exchange         string  // Exchange code
	Quantity         float64 // Signed quantity, unchanged from source
	AveragePrice     float64 // Average purchase price, unchanged from source
	LastPrice        float64 // Current market price
	InvestedValue    float64 // |quantity * averagePrice|
	CurrentValue     float64 // |quantity * lastPrice|
	PnL              float64 // Unrealized profit/loss
	PnLPercent       float64 // Unrealized profit/loss percent
	DayChangePercent float64 // Day change percent, passed through from source
	Weight           float64 // Fraction of total market value (filled by the caller)
}

// PerformancePoint is a single point in the account NAV series
type PerformancePoint struct {
	Timestamp        int64   // Unix timestamp in seconds
	NAV              float64 // Net asset value
	CumulativeReturn float64 // Cumulative return since series start
}

// PerformanceSeries is the account performance over a period
type PerformanceSeries struct {
	Period           string             // "1d", "7d", "30d", "ytd", "1y", "all"
	Currency         string             // Series currency
	AnnualizedReturn float64            // Annualized return over the period
	Series           []PerformancePoint // NAV points
}

// HealthResult represents broker connection health status
type HealthResult struct {
	Connected bool   // Whether the backend is reachable
	Stale     bool   // Whether the last payload was served from cache
	Timestamp string // Timestamp of the health check
}

// OrderRequest describes an order the terminal wants placed or modified
type OrderRequest struct {
	Symbol       string
	Exchange     string
	Side         string // "BUY" or "SELL"
	Quantity     float64
	Price        float64
	TriggerPrice float64
	OrderType    string // LIMIT, MARKET, SL, SL-M
	ProductType  string
}

// OrderResult is the structured outcome of a write operation.
// Write operations on read-only adapters never reach the network: they
// return Success=false with a non-empty ErrorCode.
type OrderResult struct {
	Success   bool
	OrderID   string
	ErrorCode string
	Message   string
}

// TickCallback receives streaming quote updates (unused by read-only adapters)
type TickCallback func(Quote)
