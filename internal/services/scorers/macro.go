package scorers

import (
	"context"
	"fmt"

	"WaveFuse/internal/domain/models"
	domsvc "WaveFuse/internal/domain/service"
	"WaveFuse/pkg/config"
)

type HTTPMacroScorer struct{ base *HTTPServiceBase }

func NewHTTPMacroScorer(cfg *config.Config) *HTTPMacroScorer {
	return &HTTPMacroScorer{base: NewHTTPServiceBase(cfg)}
}

type macroReq struct {
	Symbol string `json:"symbol"`
}

type macroResp struct {
	Score           float64 `json:"score"`
	Confidence      float64 `json:"confidence"`
	VolatilityIndex float64 `json:"volatility_index"`
	Industry        string  `json:"industry"`
}

func (s *HTTPMacroScorer) Score(ctx context.Context, symbol string) (models.MacroReading, error) {
	var mr macroResp
	err := s.base.PostJSONWithRetry(ctx, "/score/macro", macroReq{Symbol: symbol}, &mr, 3)
	if err != nil {
		return models.MacroReading{}, fmt.Errorf("post macro: %w", err)
	}
	reading := models.MacroReading{
		Signal:          models.AnalyticalSignal{Score: mr.Score, Confidence: mr.Confidence},
		VolatilityIndex: mr.VolatilityIndex,
		Industry:        mr.Industry,
	}
	if reading.Signal.Confidence == 0 {
		reading.Signal.Confidence = models.DefaultConfidence
	}
	return reading, nil
}

var _ domsvc.MacroScorer = (*HTTPMacroScorer)(nil)
