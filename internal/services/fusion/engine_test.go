package fusion

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"WaveFuse/internal/domain/models"
)

func uniformInput(score, conf float64) models.FusionInput {
	sig := models.AnalyticalSignal{Score: score, Confidence: conf}
	return models.FusionInput{
		Symbol:          "AAPL",
		CurrentPrice:    100,
		Signals:         models.SignalSet{Pattern: sig, Technical: sig, Sentiment: sig, Macro: sig},
		VolatilityIndex: 18,
		VolatilityUnit:  2.0,
	}
}

func TestFuseAlignedBuy(t *testing.T) {
	e := NewDefault()
	out, err := e.Fuse(uniformInput(70, 90))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Recommendation != models.RecommendBuy {
		t.Fatalf("want BUY, got %s", out.Recommendation)
	}
	if math.Abs(out.FinalComposite-70) > 1e-9 {
		t.Fatalf("want composite 70, got %.4f", out.FinalComposite)
	}
	if math.Abs(out.Confidence-80) > 1e-9 {
		t.Fatalf("want confidence 80, got %.4f", out.Confidence)
	}
	if out.PositionSizeMultiplier != 1.0 {
		t.Fatalf("want full position, got %.2f", out.PositionSizeMultiplier)
	}
	if out.Entry != 99 || out.Stop != 96 || out.Target1 != 104 || out.Target2 != 108 {
		t.Fatalf("unexpected targets: entry=%.2f stop=%.2f t1=%.2f t2=%.2f",
			out.Entry, out.Stop, out.Target1, out.Target2)
	}
	if out.CriticalFlag {
		t.Fatal("aligned input must not flag critical risk")
	}
}

func TestFuseConflictingSignalsAvoid(t *testing.T) {
	e := NewDefault()
	in := uniformInput(0, 90)
	in.Signals.Pattern.Score = 75
	in.Signals.Technical.Score = 80
	in.Signals.Sentiment.Score = 20
	in.Signals.Macro.Score = 50

	out, err := e.Fuse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Recommendation != models.RecommendAvoid {
		t.Fatalf("spread 60 must map to AVOID, got %s", out.Recommendation)
	}
	if out.Confidence != e.cfg.AvoidConfidence {
		t.Fatalf("want avoid confidence %.0f, got %.2f", e.cfg.AvoidConfidence, out.Confidence)
	}
	if out.CriticalFlag {
		t.Fatal("sentiment 20 sits on the panic threshold, not below it")
	}
	if !strings.Contains(out.Rationale, "diverge") && !strings.Contains(out.Rationale, "conflict") {
		t.Fatalf("rationale should explain the conflict, got %q", out.Rationale)
	}
}

func TestFuseLowMeanConfidenceAvoid(t *testing.T) {
	e := NewDefault()
	out, err := e.Fuse(uniformInput(60, 40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Recommendation != models.RecommendAvoid {
		t.Fatalf("mean confidence 40 must map to AVOID, got %s", out.Recommendation)
	}
}

func TestFuseCriticalRiskVeto(t *testing.T) {
	e := NewDefault()
	in := uniformInput(70, 90)
	in.RiskPhrases = []string{"SEC investigation opened"}

	out, err := e.Fuse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.CriticalFlag {
		t.Fatal("risk phrase must set the critical flag")
	}
	if out.FinalComposite > e.cfg.VetoCap {
		t.Fatalf("veto must cap the composite at %.0f, got %.4f", e.cfg.VetoCap, out.FinalComposite)
	}
	if out.Recommendation != models.RecommendHold {
		t.Fatalf("capped composite 55 must map to HOLD, got %s", out.Recommendation)
	}
	if math.Abs(out.Confidence-40) > 1e-9 {
		t.Fatalf("want penalized confidence 40, got %.4f", out.Confidence)
	}
	if !strings.Contains(out.Rationale, "risk") {
		t.Fatalf("rationale should mention the risk, got %q", out.Rationale)
	}
}

func TestFusePanicSentimentIsCritical(t *testing.T) {
	e := NewDefault()
	in := uniformInput(70, 90)
	in.Signals.Sentiment.Score = 15

	out, err := e.Fuse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.CriticalFlag {
		t.Fatal("sentiment below the panic threshold must flag critical risk")
	}
}

func TestFuseWeakTailwindsHalvePosition(t *testing.T) {
	e := NewDefault()
	in := uniformInput(0, 80)
	in.Signals.Pattern.Score = 80
	in.Signals.Technical.Score = 75
	in.Signals.Sentiment.Score = 40
	in.Signals.Macro.Score = 40

	out, err := e.Fuse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.PositionSizeMultiplier != e.cfg.ReducedPosition {
		t.Fatalf("weak macro and sentiment must halve size, got %.2f", out.PositionSizeMultiplier)
	}
	if !strings.Contains(out.Rationale, "position") {
		t.Fatalf("rationale should note the reduced size, got %q", out.Rationale)
	}
}

func TestFusePercentageFallbackTargets(t *testing.T) {
	e := NewDefault()
	in := uniformInput(80, 90)
	in.VolatilityUnit = 0

	out, err := e.Fuse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Recommendation != models.RecommendBuy {
		t.Fatalf("want BUY, got %s", out.Recommendation)
	}
	// scale = (80-50)/50 = 0.6
	if out.Entry != 98 || out.Stop != 90.8 || out.Target1 != 109 || out.Target2 != 118 {
		t.Fatalf("unexpected fallback targets: entry=%.2f stop=%.2f t1=%.2f t2=%.2f",
			out.Entry, out.Stop, out.Target1, out.Target2)
	}
	if !(out.Stop < out.Entry && out.Entry < out.Target1 && out.Target1 < out.Target2) {
		t.Fatal("long targets must be ordered stop < entry < t1 < t2")
	}
}

func TestFuseSellMirrorsTargets(t *testing.T) {
	e := NewDefault()
	out, err := e.Fuse(uniformInput(30, 90))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Recommendation != models.RecommendSell {
		t.Fatalf("want SELL, got %s", out.Recommendation)
	}
	if out.Entry != 101 || out.Stop != 104 || out.Target1 != 96 || out.Target2 != 92 {
		t.Fatalf("unexpected short targets: entry=%.2f stop=%.2f t1=%.2f t2=%.2f",
			out.Entry, out.Stop, out.Target1, out.Target2)
	}
}

func TestFuseDeterministic(t *testing.T) {
	e := NewDefault()
	in := uniformInput(0, 85)
	in.Signals.Pattern.Score = 62
	in.Signals.Technical.Score = 58
	in.Signals.Sentiment.Score = 71
	in.Signals.Macro.Score = 44
	in.Industry = "Semiconductors"

	first, err := e.Fuse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := e.Fuse(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d diverged:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestAdjustWeightsSumToOne(t *testing.T) {
	e := NewDefault()
	cases := []struct {
		name     string
		ctx      instrumentContext
		vix      float64
		critical bool
		conf     [4]float64
	}{
		{"neutral", contextNeutral, 20, false, [4]float64{90, 90, 90, 90}},
		{"growth", contextGrowth, 20, false, [4]float64{80, 60, 95, 70}},
		{"defensive high vix", contextDefensive, 32, false, [4]float64{50, 100, 40, 85}},
		{"critical", contextNeutral, 20, true, [4]float64{75, 75, 75, 75}},
		{"stacked shifts", contextDefensive, 45, true, [4]float64{66, 10, 90, 33}},
	}
	for _, tc := range cases {
		s := models.SignalSet{
			Pattern:   models.AnalyticalSignal{Score: 50, Confidence: tc.conf[0]},
			Technical: models.AnalyticalSignal{Score: 50, Confidence: tc.conf[1]},
			Sentiment: models.AnalyticalSignal{Score: 50, Confidence: tc.conf[2]},
			Macro:     models.AnalyticalSignal{Score: 50, Confidence: tc.conf[3]},
		}
		w := e.adjustWeights(tc.ctx, tc.vix, tc.critical, s)
		sum := w.Pattern + w.Technical + w.Sentiment + w.Macro
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("%s: weights sum to %.12f, want 1", tc.name, sum)
		}
		for name, v := range map[string]float64{
			"pattern": w.Pattern, "technical": w.Technical,
			"sentiment": w.Sentiment, "macro": w.Macro,
		} {
			if v < 0 {
				t.Fatalf("%s: %s weight %.4f negative", tc.name, name, v)
			}
		}
	}
}

func TestAdjustWeightsZeroConfidenceFallsBack(t *testing.T) {
	e := NewDefault()
	s := models.SignalSet{}
	w := e.adjustWeights(contextNeutral, 20, false, s)
	if w != e.cfg.BaseWeights {
		t.Fatalf("all-zero confidence must fall back to base weights, got %+v", w)
	}
}

func TestFuseDefensiveContextShiftsWeights(t *testing.T) {
	e := NewDefault()
	in := uniformInput(70, 100)
	in.Industry = "Utilities"

	out, err := e.Fuse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := out.AdjustedWeights
	if w.Technical <= w.Pattern {
		t.Fatalf("defensive context must favor technical over pattern, got %+v", w)
	}
	if math.Abs(w.Technical-0.40) > 1e-9 || math.Abs(w.Sentiment-0.05) > 1e-9 {
		t.Fatalf("unexpected defensive weights: %+v", w)
	}
}

func TestFuseElevatedVolatilityFavorsMacro(t *testing.T) {
	e := NewDefault()
	in := uniformInput(70, 100)
	in.VolatilityIndex = 30

	out, err := e.Fuse(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w := out.AdjustedWeights
	if math.Abs(w.Macro-0.30) > 1e-9 || math.Abs(w.Pattern-0.325) > 1e-9 {
		t.Fatalf("unexpected elevated-volatility weights: %+v", w)
	}
}

func TestFuseRejectsMalformedInput(t *testing.T) {
	e := NewDefault()
	cases := []struct {
		name  string
		mut   func(*models.FusionInput)
		wants string
	}{
		{"zero price", func(in *models.FusionInput) { in.CurrentPrice = 0 }, "current price"},
		{"negative vix", func(in *models.FusionInput) { in.VolatilityIndex = -1 }, "volatility index"},
		{"pattern score high", func(in *models.FusionInput) { in.Signals.Pattern.Score = 120 }, "pattern score"},
		{"macro confidence low", func(in *models.FusionInput) { in.Signals.Macro.Confidence = -5 }, "macro confidence"},
	}
	for _, tc := range cases {
		in := uniformInput(70, 90)
		tc.mut(&in)
		_, err := e.Fuse(in)
		if err == nil {
			t.Fatalf("%s: want error, got none", tc.name)
		}
		if !strings.Contains(err.Error(), tc.wants) {
			t.Fatalf("%s: error %q should name %q", tc.name, err.Error(), tc.wants)
		}
	}
}
