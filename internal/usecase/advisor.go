package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"WaveFuse/internal/domain/models"
	domrepo "WaveFuse/internal/domain/repository"
	domsvc "WaveFuse/internal/domain/service"
	"WaveFuse/internal/services/features"
	"WaveFuse/internal/services/fusion"
	"WaveFuse/internal/services/waves"
)

// neutral stand-ins used when an external scorer fails: midpoint score with
// deliberately low confidence, so a degraded producer fades in the weighting
// and multiple failures push the engine toward AVOID.
const (
	degradedScore      = 50
	degradedConfidence = 40
)

// Advisor runs the full advisory pipeline: price history, pattern
// segmentation, concurrent external scoring with graceful degradation, and
// the fusion engine.
type Advisor struct {
	store     domrepo.PriceStore
	technical domsvc.TechnicalScorer
	sentiment domsvc.SentimentScorer
	macro     domsvc.MacroScorer
	engine    *fusion.Engine
	timeout   time.Duration
}

func NewAdvisor(store domrepo.PriceStore, technical domsvc.TechnicalScorer, sentiment domsvc.SentimentScorer, macro domsvc.MacroScorer, engine *fusion.Engine) *Advisor {
	return &Advisor{
		store:     store,
		technical: technical,
		sentiment: sentiment,
		macro:     macro,
		engine:    engine,
		timeout:   10 * time.Second,
	}
}

type AdviseParams struct {
	Symbol    string
	N         int
	Timeframe domrepo.Timeframe
	Industry  string // optional caller-supplied override
}

func (p *AdviseParams) normalize() error {
	if p.Symbol == "" {
		return fmt.Errorf("%w: symbol required", ErrInvalidParams)
	}
	if p.N <= 0 {
		p.N = 240
	}
	return nil
}

// Advise produces a full advisory for one symbol. External scorer failures
// degrade to neutral defaults and are reported in Advice.Degraded; only a
// missing price history or a fusion rejection fails the call.
func (a *Advisor) Advise(ctx context.Context, p AdviseParams) (*models.Advice, error) {
	if err := p.normalize(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	series, err := a.loadSeries(ctx, p.Symbol, p.N, p.Timeframe)
	if err != nil {
		return nil, err
	}

	pivots := waves.DetectPivots(series, waves.DefaultPivotWindow)
	ws, label := waves.Classify(series, pivots)
	trend := waves.OverallTrend(series, pivots)
	unit := waves.VolatilityUnit(series, waves.DefaultVolatilityPeriod)
	pattern := waves.PatternSignal(series, ws, label, trend)

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := a.technical.Score(ctx, p.Symbol, series)
		ch <- item{"technical", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := a.sentiment.Score(ctx, p.Symbol)
		ch <- item{"sentiment", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := a.macro.Score(ctx, p.Symbol)
		ch <- item{"macro", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	neutral := models.AnalyticalSignal{Score: degradedScore, Confidence: degradedConfidence}
	in := models.FusionInput{
		Symbol:       p.Symbol,
		CurrentPrice: features.LastPrice(series),
		Signals: models.SignalSet{
			Pattern:   pattern,
			Technical: neutral,
			Sentiment: neutral,
			Macro:     neutral,
		},
		Industry:       p.Industry,
		VolatilityUnit: unit,
	}
	degraded := map[string]string{}

	for it := range ch {
		if it.err != nil {
			degraded[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "technical":
			in.Signals.Technical = it.val.(models.AnalyticalSignal)
		case "sentiment":
			r := it.val.(models.SentimentReading)
			in.Signals.Sentiment = r.Signal
			in.RiskPhrases = r.RiskPhrases
		case "macro":
			r := it.val.(models.MacroReading)
			in.Signals.Macro = r.Signal
			in.VolatilityIndex = r.VolatilityIndex
			if r.Industry != "" {
				in.Industry = r.Industry
			}
		}
	}

	out, err := a.engine.Fuse(in)
	if err != nil {
		return nil, err
	}

	if len(degraded) == 0 {
		degraded = nil
	}
	return &models.Advice{
		Symbol:       p.Symbol,
		CurrentPrice: in.CurrentPrice,
		Pivots:       pivots,
		Waves:        ws,
		WaveLabel:    label,
		Trend:        trend,
		Fusion:       out,
		Degraded:     degraded,
	}, nil
}

// BatchEntry is one symbol's outcome inside a batch run.
type BatchEntry struct {
	Symbol string
	Advice *models.Advice
	Error  string
}

// AdviseBatch advises each symbol independently: one symbol's failure never
// aborts the rest, it is recorded on that symbol's entry.
func (a *Advisor) AdviseBatch(ctx context.Context, symbols []string, n int, tf domrepo.Timeframe) []BatchEntry {
	out := make([]BatchEntry, len(symbols))
	var wg sync.WaitGroup
	sem := make(chan struct{}, 4)
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			adv, err := a.Advise(ctx, AdviseParams{Symbol: sym, N: n, Timeframe: tf})
			out[i] = BatchEntry{Symbol: sym, Advice: adv}
			if err != nil {
				out[i].Error = err.Error()
			}
		}(i, sym)
	}
	wg.Wait()
	return out
}
