package models

// PricePoint is a single closing-price sample in a chronological series.
// Series are produced by the price store and are immutable once fetched.
type PricePoint struct {
	Timestamp int64   // unix seconds
	Price     float64 // > 0
}

// Tick is a raw market data event from a price feed.
type Tick struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}
