package performance

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincept/autotrade-bridge/internal/domain"
)

type perfStub struct {
	domain.BrokerAdapter

	series *domain.PerformanceSeries
	err    error
}

func (p *perfStub) GetPerformance(ctx context.Context, s domain.Session, period string) (*domain.PerformanceSeries, error) {
	return p.series, p.err
}

func navSeries(navs ...float64) *domain.PerformanceSeries {
	points := make([]domain.PerformancePoint, len(navs))
	for i, nav := range navs {
		points[i] = domain.PerformancePoint{Timestamp: int64(1756080000 + i*86400), NAV: nav}
	}
	return &domain.PerformanceSeries{Period: "30d", Currency: "USD", Series: points}
}

func TestGetReport(t *testing.T) {
	session := domain.Session{AccountID: "DU8489265", Connected: true}

	t.Run("derives analytics from the series", func(t *testing.T) {
		stub := &perfStub{series: navSeries(100, 102, 101, 104, 103, 105, 107, 106, 108, 110, 111)}
		svc := NewService(stub, zerolog.Nop())

		report, err := svc.GetReport(context.Background(), session, "30d")

		require.NoError(t, err)
		assert.Equal(t, "30d", report.Period)
		assert.Greater(t, report.Volatility, 0.0)
		assert.Greater(t, report.MaxDrawdown, 0.0)
		assert.Equal(t, "up", report.Trend)
		assert.Len(t, report.Series, 11)
	})

	t.Run("rejects unknown periods locally", func(t *testing.T) {
		svc := NewService(&perfStub{}, zerolog.Nop())

		_, err := svc.GetReport(context.Background(), session, "2w")

		require.Error(t, err)
		assert.Equal(t, domain.ErrCodeNotApplicable, domain.ErrorCode(err))
	})

	t.Run("propagates adapter failures", func(t *testing.T) {
		stub := &perfStub{err: errors.New("backend down")}
		svc := NewService(stub, zerolog.Nop())

		_, err := svc.GetReport(context.Background(), session, "7d")

		require.Error(t, err)
	})
}

func TestAnnualizedVolatility(t *testing.T) {
	assert.Equal(t, 0.0, AnnualizedVolatility(nil))
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{100}))
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{100, 101}), "one return is not enough for a deviation")
	assert.Greater(t, AnnualizedVolatility([]float64{100, 102, 99, 103}), 0.0)
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{100, 100, 100}), "constant NAV has zero volatility")
}

func TestMaxDrawdown(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown(nil))
	assert.Equal(t, 0.0, MaxDrawdown([]float64{100, 105, 110}), "monotonic rise has no drawdown")
	assert.InDelta(t, 0.5, MaxDrawdown([]float64{100, 200, 100, 150}), 1e-9)
}

func TestTrend(t *testing.T) {
	assert.Equal(t, "flat", Trend([]float64{100, 101, 102}), "short series is flat")

	rising := []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110}
	assert.Equal(t, "up", Trend(rising))

	falling := []float64{110, 109, 108, 107, 106, 105, 104, 103, 102, 101, 100}
	assert.Equal(t, "down", Trend(falling))
}
