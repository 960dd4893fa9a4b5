package models

// WaveKind distinguishes legs moving with the dominant trend from legs
// moving against it.
type WaveKind string

const (
	WaveImpulse    WaveKind = "impulse"
	WaveCorrection WaveKind = "correction"
)

// Trend is the overall direction of the retained pivot window.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// Wave is a labeled price leg between two consecutive pivots.
// EndIndex > StartIndex always holds; consecutive waves share boundary
// pivots.
type Wave struct {
	StartIndex int
	EndIndex   int
	StartPrice float64
	EndPrice   float64
	Kind       WaveKind
	Label      string // "1".."5" for impulse, "A".."C" for correction
}

// Gain returns the wave's price change as a fraction of its start price.
func (w Wave) Gain() float64 {
	if w.StartPrice == 0 {
		return 0
	}
	return (w.EndPrice - w.StartPrice) / w.StartPrice
}

// UnknownWaveLabel is emitted when the series carries too little structure
// to count waves.
const UnknownWaveLabel = "Unknown"
