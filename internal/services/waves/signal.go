package waves

import (
	"WaveFuse/internal/domain/models"
)

// PatternSignal maps the classified wave structure to the 0-100
// pattern/structural score consumed by the fusion engine. The mapping is a
// deterministic policy: trend direction sets the bias, the position within
// the impulse/correction cycle adjusts for maturity (a fifth wave is late,
// a C wave is a correction close to exhaustion), and the last wave's
// magnitude adds a bounded kicker. Confidence grows with the amount of
// structure observed.
func PatternSignal(series []models.PricePoint, ws []models.Wave, label string, trend models.Trend) models.AnalyticalSignal {
	if len(ws) == 0 || label == models.UnknownWaveLabel {
		// No structure: neutral score, weak conviction.
		return models.AnalyticalSignal{Score: 50, Confidence: 40}
	}

	score := 50.0
	switch trend {
	case models.TrendBullish:
		score += 15
	case models.TrendBearish:
		score -= 15
	}

	switch label {
	case "1", "2":
		score += 10 // early impulse, room to run
	case "3":
		score += 10
	case "4":
		// consolidation leg, no adjustment
	case "5":
		score -= 5 // late impulse
	case "A":
		score -= 10
	case "B":
		score -= 5
	case "C":
		score += 5 // correction maturing
	}

	// Last-wave momentum kicker, clamped to +-10.
	kick := ws[len(ws)-1].Gain() * 200
	if kick > 10 {
		kick = 10
	}
	if kick < -10 {
		kick = -10
	}
	score += kick

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	conf := 50.0 + 5.0*float64(len(ws))
	if conf > 90 {
		conf = 90
	}
	return models.AnalyticalSignal{Score: score, Confidence: conf}
}
