package waves

import (
	"math"
	"testing"
)

func TestVolatilityUnit(t *testing.T) {
	s := seriesOf(10, 12, 11, 14)
	got := VolatilityUnit(s, 3)
	if math.Abs(got-2.0) > 1e-9 {
		t.Fatalf("got %.4f want 2.0", got)
	}
}

func TestVolatilityUnitInsufficientHistory(t *testing.T) {
	s := seriesOf(10, 12, 11, 14)
	if got := VolatilityUnit(s, 14); got != 0 {
		t.Fatalf("want 0 for short series, got %.4f", got)
	}
}

func TestVolatilityUnitFlatSeries(t *testing.T) {
	s := seriesOf(5, 5, 5, 5, 5)
	if got := VolatilityUnit(s, 4); got != 0 {
		t.Fatalf("flat series must yield 0, got %.4f", got)
	}
}
