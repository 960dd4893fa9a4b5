package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"WaveFuse/internal/domain/models"
	domrepo "WaveFuse/internal/domain/repository"
	"WaveFuse/internal/services/fusion"
)

type fakeStore struct {
	series map[string][]models.PricePoint
}

func (f *fakeStore) GetLatestNPrices(_ context.Context, symbol string, n int, _ domrepo.Timeframe) ([]models.PricePoint, error) {
	s, ok := f.series[symbol]
	if !ok {
		return nil, fmt.Errorf("query failed for %s", symbol)
	}
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s, nil
}

func (f *fakeStore) GetPricesBetween(_ context.Context, symbol string, from, to time.Time, _ domrepo.Timeframe) ([]models.PricePoint, error) {
	s, ok := f.series[symbol]
	if !ok {
		return nil, fmt.Errorf("query failed for %s", symbol)
	}
	var out []models.PricePoint
	for _, p := range s {
		if p.Timestamp >= from.Unix() && p.Timestamp <= to.Unix() {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeTechnical struct {
	sig models.AnalyticalSignal
	err error
}

func (f *fakeTechnical) Score(context.Context, string, []models.PricePoint) (models.AnalyticalSignal, error) {
	return f.sig, f.err
}

type fakeSentiment struct {
	reading models.SentimentReading
	err     error
}

func (f *fakeSentiment) Score(context.Context, string) (models.SentimentReading, error) {
	return f.reading, f.err
}

type fakeMacro struct {
	reading models.MacroReading
	err     error
}

func (f *fakeMacro) Score(context.Context, string) (models.MacroReading, error) {
	return f.reading, f.err
}

func trendingSeries(n int) []models.PricePoint {
	out := make([]models.PricePoint, n)
	price := 100.0
	for i := range out {
		// rising with a small zigzag so pivots exist
		if i%4 == 3 {
			price -= 1.5
		} else {
			price += 1.0
		}
		out[i] = models.PricePoint{Timestamp: int64(1700000000 + i*60), Price: price}
	}
	return out
}

func newTestAdvisor(store *fakeStore, tech *fakeTechnical, sent *fakeSentiment, mac *fakeMacro) *Advisor {
	return NewAdvisor(store, tech, sent, mac, fusion.NewDefault())
}

func TestAdviseHappyPath(t *testing.T) {
	store := &fakeStore{series: map[string][]models.PricePoint{"AAPL": trendingSeries(60)}}
	a := newTestAdvisor(store,
		&fakeTechnical{sig: models.AnalyticalSignal{Score: 70, Confidence: 85}},
		&fakeSentiment{reading: models.SentimentReading{Signal: models.AnalyticalSignal{Score: 65, Confidence: 80}}},
		&fakeMacro{reading: models.MacroReading{Signal: models.AnalyticalSignal{Score: 60, Confidence: 75}, VolatilityIndex: 18}},
	)

	adv, err := a.Advise(context.Background(), AdviseParams{Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adv.Symbol != "AAPL" {
		t.Fatalf("wrong symbol %q", adv.Symbol)
	}
	if adv.CurrentPrice <= 0 {
		t.Fatalf("current price must come from the series, got %.2f", adv.CurrentPrice)
	}
	if adv.Degraded != nil {
		t.Fatalf("no scorer failed, Degraded should be nil: %v", adv.Degraded)
	}
	if adv.Fusion.Recommendation == "" {
		t.Fatal("missing recommendation")
	}
	if len(adv.Pivots) == 0 || len(adv.Waves) == 0 {
		t.Fatalf("zigzag series should segment: pivots=%d waves=%d", len(adv.Pivots), len(adv.Waves))
	}
}

func TestAdviseDegradesFailedScorer(t *testing.T) {
	store := &fakeStore{series: map[string][]models.PricePoint{"AAPL": trendingSeries(60)}}
	a := newTestAdvisor(store,
		&fakeTechnical{sig: models.AnalyticalSignal{Score: 70, Confidence: 85}},
		&fakeSentiment{err: fmt.Errorf("sentiment svc down")},
		&fakeMacro{reading: models.MacroReading{Signal: models.AnalyticalSignal{Score: 60, Confidence: 75}}},
	)

	adv, err := a.Advise(context.Background(), AdviseParams{Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("scorer failure must degrade, not fail: %v", err)
	}
	if adv.Degraded == nil || adv.Degraded["sentiment"] == "" {
		t.Fatalf("expected degraded sentiment entry, got %v", adv.Degraded)
	}
	if _, ok := adv.Degraded["technical"]; ok {
		t.Fatal("technical succeeded, must not be degraded")
	}
}

func TestAdviseMissingHistory(t *testing.T) {
	store := &fakeStore{series: map[string][]models.PricePoint{"AAPL": nil}}
	a := newTestAdvisor(store, &fakeTechnical{}, &fakeSentiment{}, &fakeMacro{})

	if _, err := a.Advise(context.Background(), AdviseParams{Symbol: "AAPL"}); err == nil {
		t.Fatal("empty history must fail")
	}
	if _, err := a.Advise(context.Background(), AdviseParams{}); err == nil {
		t.Fatal("missing symbol must fail")
	}
}

func TestAdviseBatchIsolatesFailures(t *testing.T) {
	store := &fakeStore{series: map[string][]models.PricePoint{
		"AAPL": trendingSeries(60),
		"MSFT": trendingSeries(60),
	}}
	a := newTestAdvisor(store,
		&fakeTechnical{sig: models.AnalyticalSignal{Score: 55, Confidence: 80}},
		&fakeSentiment{reading: models.SentimentReading{Signal: models.AnalyticalSignal{Score: 55, Confidence: 80}}},
		&fakeMacro{reading: models.MacroReading{Signal: models.AnalyticalSignal{Score: 55, Confidence: 80}}},
	)

	entries := a.AdviseBatch(context.Background(), []string{"AAPL", "BAD", "MSFT"}, 240, domrepo.TF1m)
	if len(entries) != 3 {
		t.Fatalf("want 3 entries, got %d", len(entries))
	}
	if entries[0].Symbol != "AAPL" || entries[2].Symbol != "MSFT" {
		t.Fatalf("order must follow input: %+v", entries)
	}
	if entries[0].Error != "" || entries[0].Advice == nil {
		t.Fatalf("AAPL should succeed: %+v", entries[0])
	}
	if entries[1].Error == "" || entries[1].Advice != nil {
		t.Fatalf("BAD should fail in isolation: %+v", entries[1])
	}
	if entries[2].Error != "" || entries[2].Advice == nil {
		t.Fatalf("MSFT should succeed despite BAD: %+v", entries[2])
	}
}

func TestHistoryRange(t *testing.T) {
	store := &fakeStore{series: map[string][]models.PricePoint{"AAPL": trendingSeries(60)}}
	a := newTestAdvisor(store, &fakeTechnical{}, &fakeSentiment{}, &fakeMacro{})

	from := time.Unix(1700000000, 0)
	to := time.Unix(1700000000+30*60, 0)
	res, err := a.History(context.Background(), HistoryParams{
		Symbol: "AAPL", Timeframe: domrepo.TF1m, From: from, To: to,
	})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if res.Count != len(res.Points) || res.Count == 0 {
		t.Fatalf("bad count: %+v", res)
	}
	for _, p := range res.Points {
		if p.Timestamp < res.From || p.Timestamp > res.To {
			t.Fatalf("point %d outside range [%d, %d]", p.Timestamp, res.From, res.To)
		}
	}

	if _, err := a.History(context.Background(), HistoryParams{Symbol: "AAPL", From: to, To: from}); err == nil {
		t.Fatal("inverted range must fail")
	}
}

func TestWavesAndPivotsEndpointsShareSeries(t *testing.T) {
	store := &fakeStore{series: map[string][]models.PricePoint{"AAPL": trendingSeries(60)}}
	a := newTestAdvisor(store, &fakeTechnical{}, &fakeSentiment{}, &fakeMacro{})

	pv, err := a.Pivots(context.Background(), SegmentationParams{Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("pivots: %v", err)
	}
	wv, err := a.Waves(context.Background(), SegmentationParams{Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("waves: %v", err)
	}
	if pv.Count != len(pv.Pivots) || len(pv.Prices) != pv.Count {
		t.Fatalf("pivot counts disagree: %+v", pv)
	}
	if wv.Count != len(wv.Waves) {
		t.Fatalf("wave counts disagree: %+v", wv)
	}

	vol, err := a.Volatility(context.Background(), SegmentationParams{Symbol: "AAPL"})
	if err != nil {
		t.Fatalf("volatility: %v", err)
	}
	if vol.Unit <= 0 {
		t.Fatalf("moving series must have a positive unit, got %.4f", vol.Unit)
	}
	if vol.Period == 0 {
		t.Fatal("period default not applied")
	}
}
