package waves

import (
	"math"
	"testing"

	"WaveFuse/internal/domain/models"
)

func seriesOf(prices ...float64) []models.PricePoint {
	out := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = models.PricePoint{Timestamp: int64(i * 60), Price: p}
	}
	return out
}

func TestDetectPivotsFindsExtrema(t *testing.T) {
	s := seriesOf(1, 2, 3, 10, 3, 2, 1, 2, 3, 8, 3, 2, 1)
	got := DetectPivots(s, 3)
	want := []int{3, 6, 9}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestDetectPivotsTiesDisqualify(t *testing.T) {
	s := seriesOf(1, 2, 3, 10, 10, 3, 2, 1, 2, 3, 4)
	for _, idx := range DetectPivots(s, 3) {
		if idx == 3 || idx == 4 {
			t.Fatalf("flat top at %d must not be a pivot", idx)
		}
	}
}

func TestDetectPivotsShortSeries(t *testing.T) {
	if got := DetectPivots(seriesOf(1, 2, 3, 4, 5, 6), 3); got != nil {
		t.Fatalf("expected nil for short series, got %v", got)
	}
}

func TestDetectPivotsMonotoneAndBounded(t *testing.T) {
	s := make([]models.PricePoint, 120)
	for i := range s {
		s[i] = models.PricePoint{Timestamp: int64(i * 60), Price: 100 + 10*math.Sin(float64(i)/4)}
	}
	const window = 3
	got := DetectPivots(s, window)
	if len(got) == 0 {
		t.Fatalf("expected pivots on a sine series")
	}
	prev := -1
	for _, idx := range got {
		if idx <= prev {
			t.Fatalf("indices not strictly increasing: %v", got)
		}
		if idx < window || idx >= len(s)-window {
			t.Fatalf("index %d outside [%d,%d)", idx, window, len(s)-window)
		}
		prev = idx
	}
}
