// Package performance fetches the account NAV series and derives summary
// analytics for the performance panel.
package performance

import (
	"context"
	"math"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/fincept/autotrade-bridge/internal/domain"
)

// smaWindow is the moving-average window used for the NAV trend signal
const smaWindow = 10

// tradingDaysPerYear annualizes daily return volatility
const tradingDaysPerYear = 252

// validPeriods are the periods the backend understands
var validPeriods = map[string]bool{
	"1d": true, "7d": true, "30d": true, "ytd": true, "1y": true, "all": true,
}

// Report is the derived performance payload served to the panel
type Report struct {
	Period           string                    `json:"period"`
	Currency         string                    `json:"currency"`
	AnnualizedReturn float64                   `json:"annualized_return"`
	Volatility       float64                   `json:"volatility"`
	MaxDrawdown      float64                   `json:"max_drawdown"`
	Trend            string                    `json:"trend"`
	Series           []domain.PerformancePoint `json:"series"`
}

// Service derives performance analytics from adapter reads
type Service struct {
	adapter domain.BrokerAdapter
	log     zerolog.Logger
}

// NewService creates a performance service
func NewService(adapter domain.BrokerAdapter, log zerolog.Logger) *Service {
	return &Service{
		adapter: adapter,
		log:     log.With().Str("component", "performance_service").Logger(),
	}
}

// GetReport fetches the NAV series for a period and derives analytics.
// Failures propagate: the panel distinguishes "no history" from "backend down".
func (s *Service) GetReport(ctx context.Context, session domain.Session, period string) (*Report, error) {
	if !validPeriods[period] {
		return nil, domain.NewBrokerError(domain.ErrCodeNotApplicable, "unknown performance period: %s", period)
	}

	series, err := s.adapter.GetPerformance(ctx, session, period)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Period:           series.Period,
		Currency:         series.Currency,
		AnnualizedReturn: series.AnnualizedReturn,
		Series:           series.Series,
	}

	navs := make([]float64, 0, len(series.Series))
	for _, pt := range series.Series {
		navs = append(navs, pt.NAV)
	}

	report.Volatility = AnnualizedVolatility(navs)
	report.MaxDrawdown = MaxDrawdown(navs)
	report.Trend = Trend(navs)

	return report, nil
}

// AnnualizedVolatility is the annualized standard deviation of daily NAV
// returns. Zero when the series is too short to form a single return.
func AnnualizedVolatility(navs []float64) float64 {
	returns := dailyReturns(navs)
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear)
}

// MaxDrawdown is the largest peak-to-trough NAV decline, as a fraction.
func MaxDrawdown(navs []float64) float64 {
	var peak, maxDD float64
	for _, nav := range navs {
		if nav > peak {
			peak = nav
		}
		if peak > 0 {
			dd := (peak - nav) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// Trend classifies the NAV direction by comparing the last value against its
// simple moving average: "up", "down" or "flat". Series shorter than the SMA
// window are "flat".
func Trend(navs []float64) string {
	if len(navs) < smaWindow {
		return "flat"
	}

	sma := talib.Sma(navs, smaWindow)
	last := navs[len(navs)-1]
	ref := sma[len(sma)-1]

	switch {
	case last > ref:
		return "up"
	case last < ref:
		return "down"
	default:
		return "flat"
	}
}

func dailyReturns(navs []float64) []float64 {
	if len(navs) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(navs)-1)
	for i := 1; i < len(navs); i++ {
		if navs[i-1] == 0 {
			continue
		}
		returns = append(returns, navs[i]/navs[i-1]-1)
	}
	return returns
}
