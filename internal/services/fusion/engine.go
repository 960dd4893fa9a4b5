package fusion

import (
	"fmt"

	"WaveFuse/internal/domain/models"
)

// Engine fuses four independently produced analytical signals into one
// recommendation with price targets. It is a pure computation over the
// input snapshot: no clocks, no I/O, no shared state, so concurrent calls
// need no coordination and equal inputs always produce equal outputs.
type Engine struct {
	cfg Config
}

// New creates an engine with the given policy config.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// NewDefault creates an engine with DefaultConfig.
func NewDefault() *Engine {
	return New(DefaultConfig())
}

// Fuse runs the full decision sequence: critical-risk detection, context
// classification, adaptive weighting, composite scoring with the veto
// clamp, conflict/confidence gating, recommendation mapping, position
// sizing, price targets, and the rationale trace. Malformed inputs are
// rejected with a descriptive error naming the offending field; they are
// never silently clamped, because clamping would mask upstream defects.
func (e *Engine) Fuse(in models.FusionInput) (models.FusionOutput, error) {
	if err := validateInput(in); err != nil {
		return models.FusionOutput{}, err
	}

	vix := in.VolatilityIndex
	if vix == 0 {
		vix = e.cfg.DefaultVolatilityIndex
	}

	s := in.Signals
	critical := e.criticalRisk(in, vix)
	ictx := e.classifyIndustry(in.Industry)
	w := e.adjustWeights(ictx, vix, critical, s)

	composite := w.Pattern*s.Pattern.Score +
		w.Technical*s.Technical.Score +
		w.Sentiment*s.Sentiment.Score +
		w.Macro*s.Macro.Score

	final := composite
	if critical && final > e.cfg.VetoCap {
		// The veto: no amount of bullish signal reaches BUY territory
		// while a critical risk is active.
		final = e.cfg.VetoCap
	}

	spread := maxScore(s) - minScore(s)
	meanConf := (s.Pattern.Confidence + s.Technical.Confidence +
		s.Sentiment.Confidence + s.Macro.Confidence) / 4
	conflicting := spread > e.cfg.ConflictSpread
	lowConfidence := meanConf < e.cfg.MinMeanConfidence

	dist := final - 50
	if dist < 0 {
		dist = -dist
	}

	var rec models.Recommendation
	var conf float64
	switch {
	case conflicting || lowConfidence:
		// Disagreement and weak evidence are first-class outcomes, not a
		// flavor of HOLD.
		rec = models.RecommendAvoid
		conf = e.cfg.AvoidConfidence
	case final >= e.cfg.BuyThreshold:
		rec = models.RecommendBuy
		conf = directionalConfidence(dist, e.cfg)
	case final <= e.cfg.SellThreshold:
		rec = models.RecommendSell
		conf = directionalConfidence(dist, e.cfg)
	default:
		rec = models.RecommendHold
		conf = e.cfg.HoldConfidence - dist
	}

	if critical {
		conf -= e.cfg.CriticalPenalty
		if conf < e.cfg.ConfidenceFloor {
			conf = e.cfg.ConfidenceFloor
		}
	}

	mult := 1.0
	if s.Macro.Score < e.cfg.WeakTailwindScore && s.Sentiment.Score < e.cfg.WeakTailwindScore {
		// Two independent bearish tailwinds: halve size. Narrower control
		// than the critical-risk veto.
		mult = e.cfg.ReducedPosition
	}

	entry, stop, t1, t2 := e.priceTargets(rec, in.CurrentPrice, in.VolatilityUnit, final)

	out := models.FusionOutput{
		Recommendation:         rec,
		Confidence:             conf,
		CompositeScore:         composite,
		FinalComposite:         final,
		Entry:                  entry,
		Stop:                   stop,
		Target1:                t1,
		Target2:                t2,
		AdjustedWeights:        w,
		CriticalFlag:           critical,
		PositionSizeMultiplier: mult,
	}
	out.Rationale = e.rationale(in, out, spread, meanConf, conflicting, lowConfidence)
	return out, nil
}

// directionalConfidence scales with distance from the 50 midpoint plus a
// flat bonus, capped.
func directionalConfidence(dist float64, cfg Config) float64 {
	c := 50 + dist + cfg.DirectionalBonus
	if c > cfg.ConfidenceCap {
		c = cfg.ConfidenceCap
	}
	return c
}

func validateInput(in models.FusionInput) error {
	if in.CurrentPrice <= 0 {
		return fmt.Errorf("fuse %s: current price %.4f must be positive", in.Symbol, in.CurrentPrice)
	}
	if in.VolatilityIndex < 0 {
		return fmt.Errorf("fuse %s: volatility index %.2f must not be negative", in.Symbol, in.VolatilityIndex)
	}
	if in.VolatilityUnit < 0 {
		return fmt.Errorf("fuse %s: volatility unit %.4f must not be negative", in.Symbol, in.VolatilityUnit)
	}
	for _, c := range []struct {
		name string
		sig  models.AnalyticalSignal
	}{
		{"pattern", in.Signals.Pattern},
		{"technical", in.Signals.Technical},
		{"sentiment", in.Signals.Sentiment},
		{"macro", in.Signals.Macro},
	} {
		if c.sig.Score < 0 || c.sig.Score > 100 {
			return fmt.Errorf("fuse %s: %s score %.2f outside [0,100]", in.Symbol, c.name, c.sig.Score)
		}
		if c.sig.Confidence < 0 || c.sig.Confidence > 100 {
			return fmt.Errorf("fuse %s: %s confidence %.2f outside [0,100]", in.Symbol, c.name, c.sig.Confidence)
		}
	}
	return nil
}

func maxScore(s models.SignalSet) float64 {
	m := s.Pattern.Score
	for _, v := range []float64{s.Technical.Score, s.Sentiment.Score, s.Macro.Score} {
		if v > m {
			m = v
		}
	}
	return m
}

func minScore(s models.SignalSet) float64 {
	m := s.Pattern.Score
	for _, v := range []float64{s.Technical.Score, s.Sentiment.Score, s.Macro.Score} {
		if v < m {
			m = v
		}
	}
	return m
}
