package features

import (
	"math"

	"WaveFuse/internal/domain/models"
)

// Closes extracts the closing prices of a chronological series.
func Closes(series []models.PricePoint) []float64 {
	if len(series) == 0 {
		return nil
	}
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Price
	}
	return out
}

// LastPrice returns the most recent close, or 0 for an empty series.
func LastPrice(series []models.PricePoint) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1].Price
}

// LogReturns computes log returns r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(series)-1, or nil if insufficient data.
func LogReturns(series []models.PricePoint) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Price
		cur := series[i].Price
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}
