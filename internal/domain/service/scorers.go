package service

import (
	"context"

	"WaveFuse/internal/domain/models"
)

// TechnicalScorer scores an instrument from its recent price series.
type TechnicalScorer interface {
	Score(ctx context.Context, symbol string, series []models.PricePoint) (models.AnalyticalSignal, error)
}

// SentimentScorer scores news/social sentiment and surfaces risk phrases.
type SentimentScorer interface {
	Score(ctx context.Context, symbol string) (models.SentimentReading, error)
}

// MacroScorer scores the macro backdrop and reports the volatility index.
type MacroScorer interface {
	Score(ctx context.Context, symbol string) (models.MacroReading, error)
}
