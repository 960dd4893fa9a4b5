package models

// DefaultConfidence is assumed when a producer does not report its own
// confidence.
const DefaultConfidence = 75.0

// AnalyticalSignal is one independently produced 0-100 score with the
// producer's own confidence in it.
type AnalyticalSignal struct {
	Score      float64 // [0,100]
	Confidence float64 // [0,100]
}

// SignalSet holds the four signals the fusion engine combines.
type SignalSet struct {
	Pattern   AnalyticalSignal // from the wave classifier
	Technical AnalyticalSignal
	Sentiment AnalyticalSignal
	Macro     AnalyticalSignal
}

// Recommendation is the actionable outcome of a fusion run. AVOID is not
// a bearish call: it means the evidence is too conflicting or too weak to
// act on at all.
type Recommendation string

const (
	RecommendBuy   Recommendation = "BUY"
	RecommendHold  Recommendation = "HOLD"
	RecommendSell  Recommendation = "SELL"
	RecommendAvoid Recommendation = "AVOID"
)

// Weights is a convex combination over the four signals; after adjustment
// the components always sum to 1.
type Weights struct {
	Pattern   float64
	Technical float64
	Sentiment float64
	Macro     float64
}

// FusionInput is the complete snapshot one fusion run operates on.
// Optional fields default inside the engine: empty Industry means neutral,
// zero VolatilityIndex means "use the configured default", an empty risk
// list means no known risk events, zero VolatilityUnit selects the
// percentage-based target fallback.
type FusionInput struct {
	Symbol          string
	CurrentPrice    float64
	Signals         SignalSet
	Industry        string
	VolatilityIndex float64
	RiskPhrases     []string
	VolatilityUnit  float64
}

// FusionOutput is a value object constructed fresh per fusion call and
// never mutated after return.
type FusionOutput struct {
	Recommendation         Recommendation
	Confidence             float64
	CompositeScore         float64
	FinalComposite         float64
	Entry                  float64
	Stop                   float64
	Target1                float64
	Target2                float64
	Rationale              string
	AdjustedWeights        Weights
	CriticalFlag           bool
	PositionSizeMultiplier float64
}

// SentimentReading is what the sentiment producer reports: the score plus
// the raw headline risk phrases the critical-risk scan runs over.
type SentimentReading struct {
	Signal      AnalyticalSignal
	RiskPhrases []string
}

// MacroReading is what the macro producer reports: the score plus the
// market volatility index and, when known, the instrument's industry.
type MacroReading struct {
	Signal          AnalyticalSignal
	VolatilityIndex float64
	Industry        string
}

// Advice is the consolidated advisory view returned to callers: the fusion
// result plus the pattern structure that fed it. Degraded lists signal
// producers that failed and were substituted with neutral defaults.
type Advice struct {
	Symbol       string
	CurrentPrice float64
	Pivots       []int
	Waves        []Wave
	WaveLabel    string
	Trend        Trend
	Fusion       FusionOutput
	Degraded     map[string]string
}
