package usecase

import (
	"context"
	"fmt"

	"WaveFuse/internal/domain/models"
	domrepo "WaveFuse/internal/domain/repository"
	"WaveFuse/internal/services/features"
	"WaveFuse/internal/services/waves"
)

// Results for the read-only segmentation endpoints. These expose the
// intermediate pattern structure without running the fusion engine.

type SegmentationParams struct {
	Symbol    string
	N         int
	Timeframe domrepo.Timeframe
	Window    int // pivot confirmation window
	Period    int // volatility normalization period
}

func (p *SegmentationParams) normalize() error {
	if p.Symbol == "" {
		return fmt.Errorf("%w: symbol required", ErrInvalidParams)
	}
	if p.N <= 0 {
		p.N = 240
	}
	if p.Window <= 0 {
		p.Window = waves.DefaultPivotWindow
	}
	if p.Period <= 1 {
		p.Period = waves.DefaultVolatilityPeriod
	}
	return nil
}

type WavesResult struct {
	Symbol    string
	Timeframe string
	Count     int
	Waves     []models.Wave
	WaveLabel string
	Trend     models.Trend
}

type PivotsResult struct {
	Symbol    string
	Timeframe string
	Count     int
	Pivots    []int
	Prices    []float64
}

type VolatilityResult struct {
	Symbol    string
	Timeframe string
	Period    int
	Unit      float64
	LastPrice float64
}

func (a *Advisor) loadSeries(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.PricePoint, error) {
	series, err := a.store.GetLatestNPrices(ctx, symbol, n, tf)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoHistory, symbol)
	}
	return series, nil
}

// Waves segments the price history and labels the wave structure.
func (a *Advisor) Waves(ctx context.Context, p SegmentationParams) (*WavesResult, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}
	series, err := a.loadSeries(ctx, p.Symbol, p.N, p.Timeframe)
	if err != nil {
		return nil, err
	}
	pivots := waves.DetectPivots(series, p.Window)
	ws, label := waves.Classify(series, pivots)
	return &WavesResult{
		Symbol:    p.Symbol,
		Timeframe: string(p.Timeframe),
		Count:     len(ws),
		Waves:     ws,
		WaveLabel: label,
		Trend:     waves.OverallTrend(series, pivots),
	}, nil
}

// Pivots returns the confirmed local extrema with their prices.
func (a *Advisor) Pivots(ctx context.Context, p SegmentationParams) (*PivotsResult, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}
	series, err := a.loadSeries(ctx, p.Symbol, p.N, p.Timeframe)
	if err != nil {
		return nil, err
	}
	pivots := waves.DetectPivots(series, p.Window)
	prices := make([]float64, len(pivots))
	for i, idx := range pivots {
		prices[i] = series[idx].Price
	}
	return &PivotsResult{
		Symbol:    p.Symbol,
		Timeframe: string(p.Timeframe),
		Count:     len(pivots),
		Pivots:    pivots,
		Prices:    prices,
	}, nil
}

// Volatility returns the normalization unit for the symbol's history.
func (a *Advisor) Volatility(ctx context.Context, p SegmentationParams) (*VolatilityResult, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}
	series, err := a.loadSeries(ctx, p.Symbol, p.N, p.Timeframe)
	if err != nil {
		return nil, err
	}
	return &VolatilityResult{
		Symbol:    p.Symbol,
		Timeframe: string(p.Timeframe),
		Period:    p.Period,
		Unit:      waves.VolatilityUnit(series, p.Period),
		LastPrice: features.LastPrice(series),
	}, nil
}
