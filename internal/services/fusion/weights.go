package fusion

import (
	"WaveFuse/internal/domain/models"
)

// adjustWeights computes the context-adaptive convex combination. Two
// stages: fixed-order context shifts on the base weights, then a
// per-signal confidence discount, then renormalization to sum exactly 1.
// The discount lets a low-confidence source fade gracefully instead of
// being hard-excluded.
func (e *Engine) adjustWeights(ctx instrumentContext, vix float64, critical bool, s models.SignalSet) models.Weights {
	w := e.cfg.BaseWeights

	switch ctx {
	case contextGrowth:
		// Growth names move on narrative and the macro tape.
		w.Sentiment += 0.10
		w.Macro += 0.10
		w.Pattern -= 0.10
		w.Technical -= 0.10
	case contextDefensive:
		w.Technical += 0.15
		w.Macro += 0.15
		w.Sentiment -= 0.15
		w.Pattern -= 0.15
	}

	if vix > e.cfg.ElevatedVolatilityIndex {
		// Elevated index: price structure gets noisy, macro context
		// matters more. The 0.15 reduction splits across the two
		// price-derived signals.
		w.Pattern -= 0.075
		w.Technical -= 0.075
		w.Macro += 0.15
	}

	if critical {
		// Favor slower-moving evidence while a critical risk is active.
		w.Technical -= 0.10
		w.Macro += 0.10
		w.Sentiment -= 0.10
		w.Pattern += 0.10
	}

	w.Pattern = clampNonNegative(w.Pattern) * s.Pattern.Confidence / 100
	w.Technical = clampNonNegative(w.Technical) * s.Technical.Confidence / 100
	w.Sentiment = clampNonNegative(w.Sentiment) * s.Sentiment.Confidence / 100
	w.Macro = clampNonNegative(w.Macro) * s.Macro.Confidence / 100

	total := w.Pattern + w.Technical + w.Sentiment + w.Macro
	if total <= 0 {
		// Every signal discounted to nothing: fall back to the base split
		// so the output remains a valid convex combination.
		return e.cfg.BaseWeights
	}
	w.Pattern /= total
	w.Technical /= total
	w.Sentiment /= total
	w.Macro /= total
	return w
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
