package fusion

import (
	"WaveFuse/internal/domain/models"
)

// Config carries every policy constant the engine consults. The defaults
// are tunable policy values, not derived quantities; they are kept at the
// upstream heuristic's numbers for behavioral compatibility. The engine
// holds no other state, so two engines with equal configs are
// interchangeable.
type Config struct {
	// BaseWeights is the context-free split, weighted toward the
	// pattern/structural signal as primary.
	BaseWeights models.Weights

	// SevereRiskTerms raise the critical flag when any risk phrase
	// contains one of them (case-insensitive substring).
	SevereRiskTerms []string

	// GrowthIndustries / DefensiveIndustries classify the instrument by
	// industry-name substring match.
	GrowthIndustries    []string
	DefensiveIndustries []string

	PanicSentiment          float64 // sentiment below this hints at an undisclosed crisis
	PanicVolatilityIndex    float64 // market-wide panic threshold
	ElevatedVolatilityIndex float64 // shifts weight toward macro
	DefaultVolatilityIndex  float64 // assumed when the caller supplies none

	ConflictSpread    float64 // max-min score spread forcing AVOID
	MinMeanConfidence float64 // mean confidence below this forces AVOID

	VetoCap       float64 // composite clamp while the critical flag is up
	BuyThreshold  float64 // final composite at or above -> BUY
	SellThreshold float64 // final composite at or below -> SELL

	DirectionalBonus float64 // flat confidence bonus for BUY/SELL
	HoldConfidence   float64 // HOLD confidence peak at the midpoint
	AvoidConfidence  float64 // confidence reported with an AVOID call
	ConfidenceCap    float64
	ConfidenceFloor  float64
	CriticalPenalty  float64 // confidence reduction while critical

	// WeakTailwindScore and ReducedPosition implement the narrow "two
	// independent bearish tailwinds" sizing control.
	WeakTailwindScore float64
	ReducedPosition   float64

	Targets TargetConfig
}

// TargetConfig scales entry/stop/target prices. ATR multiples apply when a
// volatility unit is available; Pct values are the percentage fallback.
type TargetConfig struct {
	EntryATR   float64
	StopATR    float64
	Target1ATR float64
	Target2ATR float64
	BandATR    float64 // symmetric band for HOLD/AVOID

	EntryPct   float64
	StopPctMin float64
	StopPctMax float64
	Target1Pct float64
	Target2Pct float64
	BandPct    float64
}

// DefaultConfig returns the engine defaults documented in the package.
func DefaultConfig() Config {
	return Config{
		BaseWeights: models.Weights{Pattern: 0.40, Technical: 0.25, Sentiment: 0.20, Macro: 0.15},
		SevereRiskTerms: []string{
			"fraud", "investigation", "lawsuit", "bankruptcy", "delisting",
			"recall", "default", "insolvency", "indictment", "restatement",
			"subpoena", "going concern",
		},
		GrowthIndustries: []string{
			"tech", "software", "semiconductor", "internet", "biotech",
			"ecommerce", "e-commerce", "crypto", "fintech", "ai",
		},
		DefensiveIndustries: []string{
			"utilit", "consumer staples", "healthcare", "pharma",
			"insurance", "telecom", "food", "beverage", "tobacco",
		},
		PanicSentiment:          20,
		PanicVolatilityIndex:    40,
		ElevatedVolatilityIndex: 25,
		DefaultVolatilityIndex:  20,

		ConflictSpread:    50,
		MinMeanConfidence: 50,

		VetoCap:       55,
		BuyThreshold:  65,
		SellThreshold: 44,

		DirectionalBonus: 10,
		HoldConfidence:   70,
		AvoidConfidence:  35,
		ConfidenceCap:    95,
		ConfidenceFloor:  30,
		CriticalPenalty:  25,

		WeakTailwindScore: 45,
		ReducedPosition:   0.5,

		Targets: TargetConfig{
			EntryATR:   0.5,
			StopATR:    2.0,
			Target1ATR: 2.0,
			Target2ATR: 4.0,
			BandATR:    1.0,

			EntryPct:   0.02,
			StopPctMin: 0.08,
			StopPctMax: 0.10,
			Target1Pct: 0.15,
			Target2Pct: 0.30,
			BandPct:    0.02,
		},
	}
}
