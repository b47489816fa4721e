// Package portfolio synthesizes unified portfolio summaries from broker reads.
// The broker returns raw positions and cash; aggregation and position weights
// are computed here, in exactly one place.
package portfolio

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/fincept/autotrade-bridge/internal/domain"
)

// Service aggregates broker reads into portfolio summaries
type Service struct {
	adapter domain.BrokerAdapter
	logger  zerolog.Logger
}

// NewService creates a portfolio service over a broker adapter
func NewService(adapter domain.BrokerAdapter, logger zerolog.Logger) *Service {
	return &Service{
		adapter: adapter,
		logger:  logger.With().Str("component", "portfolio_service").Logger(),
	}
}

// GetSummary fetches positions and funds and synthesizes the account summary.
// GetFunds failures propagate (a summary without cash is wrong, not partial);
// the positions read degrades to empty per the adapter's policy, which yields
// a cash-only summary.
func (s *Service) GetSummary(ctx context.Context, session domain.Session) (*domain.PortfolioSummary, []domain.PortfolioHolding, error) {
	funds, err := s.adapter.GetFunds(ctx, session)
	if err != nil {
		return nil, nil, err
	}

	positions, err := s.adapter.GetPositions(ctx, session)
	if err != nil {
		return nil, nil, err
	}

	summary := Synthesize(session.AccountID, funds.AvailableCash, positions)
	holdings := HoldingsFor(summary)
	return &summary, holdings, nil
}

// Synthesize builds a portfolio summary from cash and positions.
// Pure: no I/O, deterministic for a given input.
func Synthesize(accountID string, cash float64, positions []domain.UnifiedPosition) domain.PortfolioSummary {
	var marketValue, costBasis, pnl float64
	for _, p := range positions {
		marketValue += math.Abs(p.Quantity) * p.LastPrice
		costBasis += math.Abs(p.Quantity) * p.AveragePrice
		pnl += p.PnL
	}

	// Zero cost basis means no invested capital to measure against.
	var pnlPercent float64
	if costBasis != 0 {
		pnlPercent = (pnl / costBasis) * 100
	}

	return domain.PortfolioSummary{
		AccountID:                 accountID,
		CashBalance:               cash,
		TotalMarketValue:          marketValue,
		TotalCostBasis:            costBasis,
		TotalUnrealizedPnL:        pnl,
		TotalUnrealizedPnLPercent: pnlPercent,
		TotalPositions:            len(positions),
		NetLiquidationValue:       marketValue + cash,
		Positions:                 positions,
		LastUpdated:               time.Now().UTC().Format(time.RFC3339),
	}
}

// HoldingsFor projects a summary into display holdings with weights filled.
// Weight is each position's share of total market value; when total market
// value is zero every weight is zero.
func HoldingsFor(summary domain.PortfolioSummary) []domain.PortfolioHolding {
	holdings := make([]domain.PortfolioHolding, 0, len(summary.Positions))
	for _, p := range summary.Positions {
		current := math.Abs(p.Quantity) * p.LastPrice

		var weight float64
		if summary.TotalMarketValue > 0 {
			weight = current / summary.TotalMarketValue * 100
		}

		holdings = append(holdings, domain.PortfolioHolding{
			PortfolioID:      summary.AccountID,
			Symbol:           p.Symbol,
			Exchange:         p.Exchange,
			Quantity:         p.Quantity,
			AveragePrice:     p.AveragePrice,
			LastPrice:        p.LastPrice,
			InvestedValue:    math.Abs(p.Quantity) * p.AveragePrice,
			CurrentValue:     current,
			PnL:              p.PnL,
			PnLPercent:       p.PnLPercent,
			DayChangePercent: dayChangePercent(p),
			Weight:           weight,
		})
	}
	return holdings
}

func dayChangePercent(p domain.UnifiedPosition) float64 {
	value := math.Abs(p.Quantity) * p.LastPrice
	if value == 0 {
		return 0
	}
	return p.DayPnL / value * 100
}
