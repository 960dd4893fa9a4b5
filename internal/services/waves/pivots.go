package waves

import (
	"WaveFuse/internal/domain/models"
)

// DefaultPivotWindow is the look-around used when callers do not choose one.
const DefaultPivotWindow = 3

// DetectPivots returns indices of local price extrema in a chronological
// series. A point qualifies as a pivot iff it is strictly greater (or
// strictly smaller) than every point within `window` samples on both
// sides; equal neighbors disqualify it, so flat stretches never produce
// runs of pivots. Returns nil when the series is too short to hold a full
// window on each side. Indices are strictly increasing and lie in
// [window, len-window).
func DetectPivots(series []models.PricePoint, window int) []int {
	if window <= 0 {
		window = DefaultPivotWindow
	}
	if len(series) <= 2*window {
		return nil
	}
	var pivots []int
	for i := window; i < len(series)-window; i++ {
		p := series[i].Price
		isMax := true
		isMin := true
		for j := i - window; j <= i+window; j++ {
			if j == i {
				continue
			}
			if series[j].Price >= p {
				isMax = false
			}
			if series[j].Price <= p {
				isMin = false
			}
			if !isMax && !isMin {
				break
			}
		}
		if isMax || isMin {
			pivots = append(pivots, i)
		}
	}
	return pivots
}
