package usecase

import (
	"context"
	"fmt"
	"time"

	"WaveFuse/internal/domain/models"
	domrepo "WaveFuse/internal/domain/repository"
	"WaveFuse/pkg/util"
)

// HistoryParams selects a bar range. From/To are aligned to bar boundaries
// for the timeframe; a zero range defaults to the last 24 hours.
type HistoryParams struct {
	Symbol    string
	Timeframe domrepo.Timeframe
	From      time.Time
	To        time.Time
}

func (p *HistoryParams) normalize() error {
	if p.Symbol == "" {
		return fmt.Errorf("%w: symbol required", ErrInvalidParams)
	}
	if p.To.IsZero() {
		p.To = time.Now()
	}
	if p.From.IsZero() {
		p.From = p.To.Add(-24 * time.Hour)
	}
	if !p.From.Before(p.To) {
		return fmt.Errorf("%w: from must precede to", ErrInvalidParams)
	}
	p.From, p.To = util.AlignFromTo(p.From, p.To, string(p.Timeframe))
	return nil
}

// HistoryResult is the closing-price series for a bar range.
type HistoryResult struct {
	Symbol    string
	Timeframe string
	From      int64
	To        int64
	Count     int
	Points    []models.PricePoint
}

// History returns raw bars between From and To, oldest first.
func (a *Advisor) History(ctx context.Context, p HistoryParams) (*HistoryResult, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	points, err := a.store.GetPricesBetween(ctx, p.Symbol, p.From, p.To, p.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return &HistoryResult{
		Symbol:    p.Symbol,
		Timeframe: string(p.Timeframe),
		From:      p.From.Unix(),
		To:        p.To.Unix(),
		Count:     len(points),
		Points:    points,
	}, nil
}
