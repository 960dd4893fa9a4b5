package waves

import (
	"math"

	"WaveFuse/internal/domain/models"
)

// DefaultVolatilityPeriod matches the conventional 14-sample ATR window.
const DefaultVolatilityPeriod = 14

// VolatilityUnit computes an ATR-like volatility unit: the mean absolute
// close-to-close change over the most recent `period` samples. Only
// closing-style samples are available upstream, so this is intentionally
// simpler than a true high/low/close True Range. Returns 0 when the
// series is shorter than period+1; downstream treats 0 as "no
// normalization available" and falls back to percentage offsets.
func VolatilityUnit(series []models.PricePoint, period int) float64 {
	if period <= 0 {
		period = DefaultVolatilityPeriod
	}
	if len(series) < period+1 {
		return 0
	}
	sum := 0.0
	for i := len(series) - period; i < len(series); i++ {
		sum += math.Abs(series[i].Price - series[i-1].Price)
	}
	return sum / float64(period)
}
