package scorers

import (
	"context"
	"fmt"

	"WaveFuse/internal/domain/models"
	domsvc "WaveFuse/internal/domain/service"
	"WaveFuse/pkg/config"
)

type HTTPSentimentScorer struct{ base *HTTPServiceBase }

func NewHTTPSentimentScorer(cfg *config.Config) *HTTPSentimentScorer {
	return &HTTPSentimentScorer{base: NewHTTPServiceBase(cfg)}
}

type sentimentReq struct {
	Symbol string `json:"symbol"`
}

type sentimentResp struct {
	Score       float64  `json:"score"`
	Confidence  float64  `json:"confidence"`
	RiskPhrases []string `json:"risk_phrases"`
}

func (s *HTTPSentimentScorer) Score(ctx context.Context, symbol string) (models.SentimentReading, error) {
	var sr sentimentResp
	err := s.base.PostJSONWithRetry(ctx, "/score/sentiment", sentimentReq{Symbol: symbol}, &sr, 3)
	if err != nil {
		return models.SentimentReading{}, fmt.Errorf("post sentiment: %w", err)
	}
	reading := models.SentimentReading{
		Signal:      models.AnalyticalSignal{Score: sr.Score, Confidence: sr.Confidence},
		RiskPhrases: sr.RiskPhrases,
	}
	if reading.Signal.Confidence == 0 {
		reading.Signal.Confidence = models.DefaultConfidence
	}
	return reading, nil
}

var _ domsvc.SentimentScorer = (*HTTPSentimentScorer)(nil)
