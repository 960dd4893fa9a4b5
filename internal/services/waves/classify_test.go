package waves

import (
	"testing"

	"WaveFuse/internal/domain/models"
)

func allIndices(s []models.PricePoint) []int {
	idx := make([]int, len(s))
	for i := range s {
		idx[i] = i
	}
	return idx
}

func TestClassifyTooFewPivots(t *testing.T) {
	s := seriesOf(100, 110)
	ws, label := Classify(s, []int{0, 1})
	if ws != nil || label != models.UnknownWaveLabel {
		t.Fatalf("expected no waves and Unknown, got %v %q", ws, label)
	}
}

func TestClassifyImpulse(t *testing.T) {
	// Three strong up legs with two shallow pullbacks: a clean rally.
	s := seriesOf(100, 110, 105, 118, 112, 130)
	pivots := allIndices(s)
	if tr := OverallTrend(s, pivots); tr != models.TrendBullish {
		t.Fatalf("trend = %s, want bullish", tr)
	}
	ws, label := Classify(s, pivots)
	if len(ws) != 5 {
		t.Fatalf("want 5 waves, got %d", len(ws))
	}
	for i, want := range []string{"1", "2", "3", "4", "5"} {
		if ws[i].Label != want || ws[i].Kind != models.WaveImpulse {
			t.Fatalf("wave %d = %s/%s, want impulse/%s", i, ws[i].Kind, ws[i].Label, want)
		}
	}
	if label != "5" {
		t.Fatalf("current label = %q, want 5", label)
	}
}

func TestClassifyCorrection(t *testing.T) {
	s := seriesOf(100, 90, 95, 85, 88, 78)
	pivots := allIndices(s)
	if tr := OverallTrend(s, pivots); tr != models.TrendBearish {
		t.Fatalf("trend = %s, want bearish", tr)
	}
	ws, label := Classify(s, pivots)
	for i, want := range []string{"A", "B", "C", "A", "B"} {
		if ws[i].Label != want || ws[i].Kind != models.WaveCorrection {
			t.Fatalf("wave %d = %s/%s, want correction/%s", i, ws[i].Kind, ws[i].Label, want)
		}
	}
	if label != "B" {
		t.Fatalf("current label = %q, want B", label)
	}
}

func TestClassifyTransitionalUp(t *testing.T) {
	// Neutral drift, last wave pointing up: seed "3" and fan back,
	// clamped at "1".
	s := seriesOf(100, 103, 101, 104, 102, 105)
	pivots := allIndices(s)
	if tr := OverallTrend(s, pivots); tr != models.TrendNeutral {
		t.Fatalf("trend = %s, want neutral", tr)
	}
	ws, label := Classify(s, pivots)
	for i, want := range []string{"1", "1", "1", "2", "3"} {
		if ws[i].Label != want {
			t.Fatalf("wave %d label = %q, want %q", i, ws[i].Label, want)
		}
	}
	if label != "3" {
		t.Fatalf("current label = %q, want 3", label)
	}
}

func TestClassifyTransitionalDown(t *testing.T) {
	// Neutral drift, last wave down: seed "A" and wrap backwards within
	// {A,B,C}.
	s := seriesOf(100, 104, 102, 105, 103, 99)
	pivots := allIndices(s)
	ws, label := Classify(s, pivots)
	for i, want := range []string{"C", "A", "B", "C", "A"} {
		if ws[i].Label != want || ws[i].Kind != models.WaveCorrection {
			t.Fatalf("wave %d = %s/%s, want correction/%s", i, ws[i].Kind, ws[i].Label, want)
		}
	}
	if label != "A" {
		t.Fatalf("current label = %q, want A", label)
	}
}

func TestClassifyWavePartition(t *testing.T) {
	s := seriesOf(100, 108, 104, 115, 109, 121, 116, 128, 122, 135, 130, 140)
	ws, _ := Classify(s, allIndices(s))
	if len(ws) == 0 {
		t.Fatalf("expected waves")
	}
	for i, w := range ws {
		if w.EndIndex <= w.StartIndex {
			t.Fatalf("wave %d has EndIndex %d <= StartIndex %d", i, w.EndIndex, w.StartIndex)
		}
		if i > 0 && ws[i-1].EndIndex != w.StartIndex {
			t.Fatalf("waves %d and %d do not share a boundary pivot", i-1, i)
		}
		if w.Label == "" {
			t.Fatalf("wave %d left unlabeled", i)
		}
	}
}

func TestClassifyRetainsLastTenPivots(t *testing.T) {
	// 14 pivots; only the last 10 should form waves.
	prices := make([]float64, 14)
	for i := range prices {
		if i%2 == 0 {
			prices[i] = 100 + float64(i)
		} else {
			prices[i] = 90 + float64(i)
		}
	}
	s := seriesOf(prices...)
	ws, _ := Classify(s, allIndices(s))
	if len(ws) != 9 {
		t.Fatalf("want 9 waves from the last 10 pivots, got %d", len(ws))
	}
	if ws[0].StartIndex != 4 {
		t.Fatalf("oldest retained pivot = %d, want 4", ws[0].StartIndex)
	}
}

func TestPatternSignalBullishBias(t *testing.T) {
	s := seriesOf(100, 110, 105, 118, 112, 130)
	pivots := allIndices(s)
	ws, label := Classify(s, pivots)
	sig := PatternSignal(s, ws, label, OverallTrend(s, pivots))
	if sig.Score <= 55 {
		t.Fatalf("bullish impulse should bias positive, got %.1f", sig.Score)
	}
	if sig.Confidence < 50 || sig.Confidence > 90 {
		t.Fatalf("confidence %.1f outside expected range", sig.Confidence)
	}
}

func TestPatternSignalNoStructure(t *testing.T) {
	sig := PatternSignal(nil, nil, models.UnknownWaveLabel, models.TrendNeutral)
	if sig.Score != 50 || sig.Confidence != 40 {
		t.Fatalf("want neutral low-conviction signal, got %+v", sig)
	}
}
