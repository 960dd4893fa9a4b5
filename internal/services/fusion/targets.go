package fusion

import (
	"math"

	"WaveFuse/internal/domain/models"
)

// priceTargets derives entry/stop/target prices. With a volatility unit
// available, offsets are fixed ATR multiples in the trade's favorable
// direction; direction flips for SELL, and HOLD/AVOID get a narrower
// symmetric band. Without a unit the percentage fallback applies, stop
// width and targets scaled by the composite's distance from the neutral
// midpoint. All prices round to 2 decimals.
func (e *Engine) priceTargets(rec models.Recommendation, price, unit, final float64) (entry, stop, t1, t2 float64) {
	t := e.cfg.Targets
	if unit > 0 {
		switch rec {
		case models.RecommendBuy:
			entry = price - t.EntryATR*unit
			stop = price - t.StopATR*unit
			t1 = price + t.Target1ATR*unit
			t2 = price + t.Target2ATR*unit
		case models.RecommendSell:
			entry = price + t.EntryATR*unit
			stop = price + t.StopATR*unit
			t1 = price - t.Target1ATR*unit
			t2 = price - t.Target2ATR*unit
		default:
			entry = price
			stop = price - t.BandATR*unit
			t1 = price + t.BandATR*unit
			t2 = price + 2*t.BandATR*unit
		}
		return round2(entry), round2(stop), round2(t1), round2(t2)
	}

	// No normalization available: percentage fallback. scale in [0,1]
	// grows with conviction.
	scale := math.Abs(final-50) / 50
	if scale > 1 {
		scale = 1
	}
	stopPct := t.StopPctMin + (t.StopPctMax-t.StopPctMin)*scale
	switch rec {
	case models.RecommendBuy:
		entry = price * (1 - t.EntryPct)
		stop = price * (1 - stopPct)
		t1 = price * (1 + t.Target1Pct*scale)
		t2 = price * (1 + t.Target2Pct*scale)
	case models.RecommendSell:
		entry = price * (1 + t.EntryPct)
		stop = price * (1 + stopPct)
		t1 = price * (1 - t.Target1Pct*scale)
		t2 = price * (1 - t.Target2Pct*scale)
	default:
		entry = price
		stop = price * (1 - t.BandPct)
		t1 = price * (1 + t.BandPct)
		t2 = price * (1 + 2*t.BandPct)
	}
	return round2(entry), round2(stop), round2(t1), round2(t2)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
