package autotrade

import "encoding/json"

// Remote schema types mirroring the Autotrade Integration Service JSON
// responses. Field names must exactly match the remote shape so parsing never
// silently drops or miscoerces fields.

// Position is a single position as returned by /api/v1/positions
type Position struct {
	Symbol               string  `json:"symbol"`
	Exchange             string  `json:"exchange"`
	ProductType          string  `json:"product_type"`
	Quantity             float64 `json:"quantity"`
	AvgPrice             float64 `json:"avg_price"`
	CurrentPrice         float64 `json:"current_price"`
	MarketValue          float64 `json:"market_value"`
	UnrealizedPnL        float64 `json:"unrealized_pnl"`
	UnrealizedPnLPercent float64 `json:"unrealized_pnl_percent"`
	DayChange            float64 `json:"day_change"`
	DayChangePercent     float64 `json:"day_change_percent"`
	Weight               float64 `json:"weight"`
	Overnight            bool    `json:"overnight"`
}

// PortfolioSummary is the full portfolio snapshot from /api/v1/portfolio
type PortfolioSummary struct {
	AccountID                 string     `json:"account_id"`
	CashBalance               float64    `json:"cash_balance"`
	TotalMarketValue          float64    `json:"total_market_value"`
	TotalCostBasis            float64    `json:"total_cost_basis"`
	TotalUnrealizedPnL        float64    `json:"total_unrealized_pnl"`
	TotalUnrealizedPnLPercent float64    `json:"total_unrealized_pnl_percent"`
	TotalPositions            int        `json:"total_positions"`
	NetLiquidationValue       float64    `json:"net_liquidation_value"`
	Currency                  string     `json:"currency"`
	Positions                 []Position `json:"positions"`
	LastUpdated               string     `json:"last_updated"`
}

// Order is a single order as returned by /api/v1/orders
type Order struct {
	OrderID         string  `json:"order_id"`
	Symbol          string  `json:"symbol"`
	Exchange        string  `json:"exchange"`
	Side            string  `json:"side"`
	Quantity        float64 `json:"quantity"`
	FilledQuantity  float64 `json:"filled_quantity"`
	PendingQuantity float64 `json:"pending_quantity"`
	Price           float64 `json:"price"`
	AveragePrice    float64 `json:"average_price"`
	TriggerPrice    float64 `json:"trigger_price"`
	OrderType       string  `json:"order_type"`
	Status          string  `json:"status"`
	PlacedAt        string  `json:"placed_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// PerformancePoint is one point of the NAV series from
// /api/v1/portfolio/performance
type PerformancePoint struct {
	Timestamp        int64   `json:"timestamp"`
	NAV              float64 `json:"nav"`
	CumulativeReturn float64 `json:"cumulative_return"`
}

// Performance is the performance payload from /api/v1/portfolio/performance
type Performance struct {
	Series           []PerformancePoint `json:"series"`
	Currency         string             `json:"currency"`
	Period           string             `json:"period"`
	AnnualizedReturn float64            `json:"annualized_return"`
}

// CommandResponse is the bridge command envelope. Every command returns this
// shape; Data carries the matching remote schema type. Stale and AgeSeconds
// are set when the payload was served from the last-known-good cache because
// the backend was unreachable.
type CommandResponse struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      *string         `json:"error,omitempty"`
	ErrorCode  *string         `json:"errorCode,omitempty"`
	Timestamp  int64           `json:"timestamp"`
	Stale      bool            `json:"stale,omitempty"`
	AgeSeconds int64           `json:"age_seconds,omitempty"`
}

// backendEnvelope is the raw response wrapper used by the integration service
// itself: {"success": true, "data": [...], "error": null}
type backendEnvelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *string         `json:"error"`
}
