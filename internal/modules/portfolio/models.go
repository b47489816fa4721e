package portfolio

import "github.com/fincept/autotrade-bridge/internal/domain"

// Summary is the API shape of a synthesized portfolio summary
type Summary struct {
	AccountID                 string    `json:"account_id"`
	CashBalance               float64   `json:"cash_balance"`
	TotalMarketValue          float64   `json:"total_market_value"`
	TotalCostBasis            float64   `json:"total_cost_basis"`
	TotalUnrealizedPnL        float64   `json:"total_unrealized_pnl"`
	TotalUnrealizedPnLPercent float64   `json:"total_unrealized_pnl_percent"`
	TotalPositions            int       `json:"total_positions"`
	NetLiquidationValue       float64   `json:"net_liquidation_value"`
	Positions                 []Holding `json:"positions"`
	LastUpdated               string    `json:"last_updated"`
}

// Holding is the API shape of one display row
type Holding struct {
	PortfolioID      string  `json:"portfolio_id"`
	Symbol           string  `json:"symbol"`
	Exchange         string  `json:"exchange"`
	Quantity         float64 `json:"quantity"`
	AveragePrice     float64 `json:"average_price"`
	LastPrice        float64 `json:"last_price"`
	InvestedValue    float64 `json:"invested_value"`
	CurrentValue     float64 `json:"current_value"`
	PnL              float64 `json:"pnl"`
	PnLPercent       float64 `json:"pnl_percent"`
	DayChangePercent float64 `json:"day_change_percent"`
	Weight           float64 `json:"weight"`
}

func summaryFromDomain(s domain.PortfolioSummary, holdings []domain.PortfolioHolding) Summary {
	rows := make([]Holding, 0, len(holdings))
	for _, h := range holdings {
		rows = append(rows, Holding{
			PortfolioID:      h.PortfolioID,
			Symbol:           h.Symbol,
			Exchange:         h.Exchange,
			Quantity:         h.Quantity,
			AveragePrice:     h.AveragePrice,
			LastPrice:        h.LastPrice,
			InvestedValue:    h.InvestedValue,
			CurrentValue:     h.CurrentValue,
			PnL:              h.PnL,
			PnLPercent:       h.PnLPercent,
			DayChangePercent: h.DayChangePercent,
			Weight:           h.Weight,
		})
	}

	return Summary{
		AccountID:                 s.AccountID,
		CashBalance:               s.CashBalance,
		TotalMarketValue:          s.TotalMarketValue,
		TotalCostBasis:            s.TotalCostBasis,
		TotalUnrealizedPnL:        s.TotalUnrealizedPnL,
		TotalUnrealizedPnLPercent: s.TotalUnrealizedPnLPercent,
		TotalPositions:            s.TotalPositions,
		NetLiquidationValue:       s.NetLiquidationValue,
		Positions:                 rows,
		LastUpdated:               s.LastUpdated,
	}
}
