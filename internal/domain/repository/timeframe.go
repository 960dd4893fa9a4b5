package repository

// IsValidTimeframe reports whether tf names a supported bar size.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1s, TF1m, TF5m, TF1d:
		return true
	}
	return false
}

// DefaultTimeframe is the bar size used when a request leaves it out.
func DefaultTimeframe() Timeframe { return TF1m }

// NormalizeTimeframe maps a raw query value to a supported timeframe,
// falling back to the default for anything unrecognized.
func NormalizeTimeframe(s string) Timeframe {
	if tf := Timeframe(s); IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}
