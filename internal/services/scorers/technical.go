package scorers

import (
	"context"
	"fmt"

	"WaveFuse/internal/domain/models"
	domsvc "WaveFuse/internal/domain/service"
	"WaveFuse/internal/services/features"
	"WaveFuse/pkg/config"
)

type HTTPTechnicalScorer struct{ base *HTTPServiceBase }

func NewHTTPTechnicalScorer(cfg *config.Config) *HTTPTechnicalScorer {
	return &HTTPTechnicalScorer{base: NewHTTPServiceBase(cfg)}
}

type technicalReq struct {
	Symbol  string    `json:"symbol"`
	Closes  []float64 `json:"closes"`
	Returns []float64 `json:"returns"`
}

type technicalResp struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

func (s *HTTPTechnicalScorer) Score(ctx context.Context, symbol string, series []models.PricePoint) (models.AnalyticalSignal, error) {
	req := technicalReq{
		Symbol:  symbol,
		Closes:  features.Closes(series),
		Returns: features.LogReturns(series),
	}
	var tr technicalResp
	err := s.base.PostJSONWithRetry(ctx, "/score/technical", req, &tr, 3)
	if err != nil {
		return models.AnalyticalSignal{}, fmt.Errorf("post technical: %w", err)
	}
	sig := models.AnalyticalSignal{Score: tr.Score, Confidence: tr.Confidence}
	if sig.Confidence == 0 {
		sig.Confidence = models.DefaultConfidence
	}
	return sig, nil
}

var _ domsvc.TechnicalScorer = (*HTTPTechnicalScorer)(nil)
