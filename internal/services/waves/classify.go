package waves

import (
	"WaveFuse/internal/domain/models"
)

const (
	// maxPivotWindow caps how much structure the classifier retains; wave
	// counts reset with fresh trend legs, so older pivots are discarded.
	maxPivotWindow = 10

	// trendChangePct is the minimum first-to-last change for a directional
	// trend call.
	trendChangePct = 0.05

	// strongWavePct marks a wave as a "strong" leg. Tunable policy
	// constant; kept at 3% of the wave's start price for behavioral
	// compatibility with the upstream heuristic.
	strongWavePct = 0.03

	impulseLabels    = "12345"
	correctionLabels = "ABC"
)

// OverallTrend classifies the retained pivot window as bullish, bearish
// or neutral. The call is directional only when both the first-to-last
// percentage change clears +-5% AND the majority of pivot-to-pivot swings
// point the same way; a single large move against mostly opposite minor
// swings stays neutral.
func OverallTrend(series []models.PricePoint, pivots []int) models.Trend {
	if len(pivots) < 2 {
		return models.TrendNeutral
	}
	win := retainedWindow(pivots)
	first := series[win[0]].Price
	last := series[win[len(win)-1]].Price
	change := 0.0
	if first > 0 {
		change = (last - first) / first
	}
	ups, downs := 0, 0
	for i := 1; i < len(win); i++ {
		if series[win[i]].Price > series[win[i-1]].Price {
			ups++
		} else if series[win[i]].Price < series[win[i-1]].Price {
			downs++
		}
	}
	switch {
	case change > trendChangePct && ups > downs:
		return models.TrendBullish
	case change < -trendChangePct && downs > ups:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}

// Classify groups pivots into a labeled wave sequence and returns the
// current wave label. Fewer than 3 pivots yield no waves and the label
// "Unknown". The labeling is a deterministic heuristic, not true
// Elliott-Wave recognition: every branch terminates in a label.
func Classify(series []models.PricePoint, pivots []int) ([]models.Wave, string) {
	if len(pivots) < 3 {
		return nil, models.UnknownWaveLabel
	}
	win := retainedWindow(pivots)
	trend := OverallTrend(series, pivots)

	ws := make([]models.Wave, 0, len(win)-1)
	for i := 1; i < len(win); i++ {
		ws = append(ws, models.Wave{
			StartIndex: win[i-1],
			EndIndex:   win[i],
			StartPrice: series[win[i-1]].Price,
			EndPrice:   series[win[i]].Price,
		})
	}

	switch {
	case trend == models.TrendBullish && countStrong(ws, 1) >= 2:
		labelCyclic(ws, impulseLabels, models.WaveImpulse)
	case trend == models.TrendBearish || (trend == models.TrendNeutral && countStrong(ws, -1) >= 2):
		labelCyclic(ws, correctionLabels, models.WaveCorrection)
	default:
		labelTransitional(series, ws)
	}

	return ws, ws[len(ws)-1].Label
}

// retainedWindow keeps at most the last maxPivotWindow pivots.
func retainedWindow(pivots []int) []int {
	if len(pivots) > maxPivotWindow {
		return pivots[len(pivots)-maxPivotWindow:]
	}
	return pivots
}

// countStrong counts waves among the last five whose move in direction
// dir (+1 gain, -1 loss) exceeds strongWavePct of the wave's start price.
func countStrong(ws []models.Wave, dir int) int {
	start := 0
	if len(ws) > 5 {
		start = len(ws) - 5
	}
	n := 0
	for _, w := range ws[start:] {
		g := w.Gain()
		if dir > 0 && g > strongWavePct {
			n++
		}
		if dir < 0 && g < -strongWavePct {
			n++
		}
	}
	return n
}

// labelCyclic assigns labels in chronological order, cycling through the
// alphabet. The label reflects position within the retained window, not an
// absolute wave count since inception; with exactly five impulse waves the
// oldest gets "1".
func labelCyclic(ws []models.Wave, alphabet string, kind models.WaveKind) {
	for i := range ws {
		ws[i].Kind = kind
		ws[i].Label = string(alphabet[i%len(alphabet)])
	}
}

// labelTransitional handles the mixed branch: neither a confirmed impulse
// nor a confirmed correction. The most recent wave's direction (current
// price vs. its start) seeds the last label; earlier waves fan outward.
// The fan arithmetic is acknowledged upstream as an arbitrary fallback and
// is preserved as-is.
func labelTransitional(series []models.PricePoint, ws []models.Wave) {
	last := ws[len(ws)-1]
	current := series[len(series)-1].Price
	if current >= last.StartPrice {
		// Seed the last wave as impulse "3", decreasing outward, clamped
		// at "1".
		for j := 0; j < len(ws); j++ {
			idx := len(ws) - 1 - j
			n := 3 - j
			if n < 1 {
				n = 1
			}
			ws[idx].Kind = models.WaveImpulse
			ws[idx].Label = string(impulseLabels[n-1])
		}
		return
	}
	// Seed the last wave as correction "A", wrapping backwards within
	// {A,B,C}: A, C, B, A, ...
	for j := 0; j < len(ws); j++ {
		idx := len(ws) - 1 - j
		ws[idx].Kind = models.WaveCorrection
		ws[idx].Label = string(correctionLabels[(3-j%3)%3])
	}
}
