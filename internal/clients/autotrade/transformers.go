package autotrade

import (
	"math"

	"github.com/fincept/autotrade-bridge/internal/domain"
)

// Pure transforms from the remote schema to the unified schema. No I/O, no
// logging, no mutation of inputs: every function returns a fresh value, so the
// same input always produces the same output.

// ToUnifiedPosition converts a remote position to the unified schema.
// Signed quantity splits into buy/sell sides: a long position has its full
// quantity on the buy side and zero on the sell side, a short position the
// mirror image.
func ToUnifiedPosition(p Position) domain.UnifiedPosition {
	var buyQty, sellQty float64
	if p.Quantity > 0 {
		buyQty = p.Quantity
	} else {
		sellQty = -p.Quantity
	}

	productType := p.ProductType
	if productType == "" {
		productType = "DELIVERY"
	}

	return domain.UnifiedPosition{
		Symbol:       p.Symbol,
		Exchange:     p.Exchange,
		ProductType:  productType,
		Quantity:     p.Quantity,
		BuyQuantity:  buyQty,
		SellQuantity: sellQty,
		BuyValue:     buyQty * p.AvgPrice,
		SellValue:    sellQty * p.AvgPrice,
		AveragePrice: p.AvgPrice,
		LastPrice:    p.CurrentPrice,
		PnL:          p.UnrealizedPnL,
		PnLPercent:   p.UnrealizedPnLPercent,
		DayPnL:       p.DayChange,
		Overnight:    true,
	}
}

// ToUnifiedPositions converts a slice of remote positions
func ToUnifiedPositions(positions []Position) []domain.UnifiedPosition {
	result := make([]domain.UnifiedPosition, 0, len(positions))
	for _, p := range positions {
		result = append(result, ToUnifiedPosition(p))
	}
	return result
}

// SummaryToHoldings projects the positions of a portfolio summary into
// display holdings. Invested and current values are absolute so short
// positions render as positive exposure. Weight is left zero: the portfolio
// service is the single owner of weight calculation.
func SummaryToHoldings(s PortfolioSummary) []domain.PortfolioHolding {
	holdings := make([]domain.PortfolioHolding, 0, len(s.Positions))
	for _, p := range s.Positions {
		holdings = append(holdings, domain.PortfolioHolding{
			PortfolioID:      s.AccountID,
			Symbol:           p.Symbol,
			Exchange:         p.Exchange,
			Quantity:         p.Quantity,
			AveragePrice:     p.AvgPrice,
			LastPrice:        p.CurrentPrice,
			InvestedValue:    math.Abs(p.Quantity * p.AvgPrice),
			CurrentValue:     math.Abs(p.Quantity * p.CurrentPrice),
			PnL:              p.UnrealizedPnL,
			PnLPercent:       p.UnrealizedPnLPercent,
			DayChangePercent: p.DayChangePercent,
		})
	}
	return holdings
}

// SummaryToDomain converts a remote portfolio summary to the unified schema
func SummaryToDomain(s PortfolioSummary) domain.PortfolioSummary {
	return domain.PortfolioSummary{
		AccountID:                 s.AccountID,
		CashBalance:               s.CashBalance,
		TotalMarketValue:          s.TotalMarketValue,
		TotalCostBasis:            s.TotalCostBasis,
		TotalUnrealizedPnL:        s.TotalUnrealizedPnL,
		TotalUnrealizedPnLPercent: s.TotalUnrealizedPnLPercent,
		TotalPositions:            s.TotalPositions,
		NetLiquidationValue:       s.NetLiquidationValue,
		Positions:                 ToUnifiedPositions(s.Positions),
		LastUpdated:               s.LastUpdated,
	}
}

// ToUnifiedOrder converts a remote order to the unified schema
func ToUnifiedOrder(o Order) domain.UnifiedOrder {
	return domain.UnifiedOrder{
		OrderID:         o.OrderID,
		Symbol:          o.Symbol,
		Exchange:        o.Exchange,
		Side:            o.Side,
		Quantity:        o.Quantity,
		FilledQuantity:  o.FilledQuantity,
		PendingQuantity: o.PendingQuantity,
		Price:           o.Price,
		AveragePrice:    o.AveragePrice,
		TriggerPrice:    o.TriggerPrice,
		OrderType:       o.OrderType,
		Status:          o.Status,
		PlacedAt:        o.PlacedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// ToUnifiedOrders converts a slice of remote orders
func ToUnifiedOrders(orders []Order) []domain.UnifiedOrder {
	result := make([]domain.UnifiedOrder, 0, len(orders))
	for _, o := range orders {
		result = append(result, ToUnifiedOrder(o))
	}
	return result
}

// ToPerformanceSeries converts a remote performance payload
func ToPerformanceSeries(p Performance) domain.PerformanceSeries {
	series := make([]domain.PerformancePoint, 0, len(p.Series))
	for _, pt := range p.Series {
		series = append(series, domain.PerformancePoint{
			Timestamp:        pt.Timestamp,
			NAV:              pt.NAV,
			CumulativeReturn: pt.CumulativeReturn,
		})
	}
	return domain.PerformanceSeries{
		Period:           p.Period,
		Currency:         p.Currency,
		AnnualizedReturn: p.AnnualizedReturn,
		Series:           series,
	}
}
