package fusion

import (
	"strings"

	"WaveFuse/internal/domain/models"
)

// instrumentContext is the coarse industry classification driving the
// weight shifts.
type instrumentContext int

const (
	contextNeutral instrumentContext = iota
	contextGrowth
	contextDefensive
)

// criticalRisk decides whether the veto precondition holds: a severe risk
// term in the supplied phrases, extreme negative sentiment, or market-wide
// panic on the volatility index. The flag never forces a SELL on its own;
// it only caps upside and trims confidence.
func (e *Engine) criticalRisk(in models.FusionInput, vix float64) bool {
	for _, phrase := range in.RiskPhrases {
		lower := strings.ToLower(phrase)
		for _, term := range e.cfg.SevereRiskTerms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	if in.Signals.Sentiment.Score < e.cfg.PanicSentiment {
		return true
	}
	return vix > e.cfg.PanicVolatilityIndex
}

// classifyIndustry matches the industry name against the fixed keyword
// lists. Unmatched or empty industries stay neutral.
func (e *Engine) classifyIndustry(industry string) instrumentContext {
	if industry == "" {
		return contextNeutral
	}
	lower := strings.ToLower(industry)
	for _, kw := range e.cfg.GrowthIndustries {
		if strings.Contains(lower, kw) {
			return contextGrowth
		}
	}
	for _, kw := range e.cfg.DefensiveIndustries {
		if strings.Contains(lower, kw) {
			return contextDefensive
		}
	}
	return contextNeutral
}
