package repository

import (
	"context"
	"time"

	"WaveFuse/internal/domain/models"
)

// Timeframe represents bar resolution buckets.
type Timeframe string

const (
	TF1s Timeframe = "1s"
	TF1m Timeframe = "1m"
	TF5m Timeframe = "5m"
	TF1d Timeframe = "1d"
)

// PriceStore provides read-only access to closing-price series for the
// advisory pipeline. Series come back in chronological order.
type PriceStore interface {
	GetLatestNPrices(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.PricePoint, error)
	GetPricesBetween(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.PricePoint, error)
}
