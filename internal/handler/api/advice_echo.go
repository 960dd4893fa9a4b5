package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	models "WaveFuse/internal/domain/models"
	domrepo "WaveFuse/internal/domain/repository"
	icache "WaveFuse/internal/service/cache"
	"WaveFuse/internal/service/metrics"
	"WaveFuse/internal/service/ratelimit"
	"WaveFuse/internal/usecase"
	pkgcache "WaveFuse/pkg/cache"
	xhttp "WaveFuse/pkg/http"
	xlogger "WaveFuse/pkg/logger"
	"WaveFuse/pkg/queue"
)

// AdviceEchoHandler exposes the advisory pipeline over HTTP. Responses are
// cached briefly per (symbol, params); rate limiting is per remote address
// and endpoint.
type AdviceEchoHandler struct {
	logger  *xlogger.Logger
	advisor *usecase.Advisor
	jobs    queue.QueueService
	cache   icache.BytesCache
	results pkgcache.Service
	rl      *ratelimit.Limiter
}

func NewAdviceEchoHandler(logger *xlogger.Logger, advisor *usecase.Advisor) *AdviceEchoHandler {
	metrics.Register()
	return &AdviceEchoHandler{logger: logger, advisor: advisor, rl: ratelimit.New()}
}

// SetCache injects the response cache.
func (h *AdviceEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetJobQueue injects the queue used by the batch endpoint.
func (h *AdviceEchoHandler) SetJobQueue(q queue.QueueService) { h.jobs = q }

// SetResultStore injects the store batch runs publish their results to.
func (h *AdviceEchoHandler) SetResultStore(s pkgcache.Service) { h.results = s }

func (h *AdviceEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/advise", h.Advise)
	g.GET("/waves", h.Waves)
	g.GET("/pivots", h.Pivots)
	g.GET("/volatility", h.Volatility)
	g.GET("/history", h.History)
	g.POST("/advise/batch", h.AdviseBatch)
	g.GET("/advise/batch/:id", h.BatchResult)
}

func (h *AdviceEchoHandler) observe(endpoint string, start time.Time) {
	metrics.AdvisorLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// fail records the failure and maps known pipeline errors to client-facing
// statuses; anything unrecognized stays a 500.
func (h *AdviceEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	metrics.AdvisorErrors.WithLabelValues(endpoint).Inc()
	h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	switch {
	case errors.Is(err, usecase.ErrInvalidParams):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	case errors.Is(err, usecase.ErrNoHistory):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	default:
		return xhttp.AppErrorResponse(c, err)
	}
}

// cached serves a prior response if present; returns true when it wrote one.
func (h *AdviceEchoHandler) cached(c echo.Context, endpoint, key string) bool {
	if h.cache == nil {
		return false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn(endpoint+" cache_get_error", xlogger.Error(err))
		return false
	}
	if !ok {
		return false
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	_ = c.String(200, string(b))
	return true
}

func (h *AdviceEchoHandler) store(endpoint, key string, v interface{}, ttl time.Duration) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := h.cache.SetBytes(key, b, ttl); err != nil {
		h.logger.Warn(endpoint+" cache_set_error", xlogger.Error(err))
	}
}

func (h *AdviceEchoHandler) Advise(c echo.Context) error {
	start := time.Now()
	defer h.observe("advise", start)

	req := &models.AdviseRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":advise", 5, 2) {
		return xhttp.TooManyRequestsResponse(c)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	key := pkgcache.Key("advise", req.Symbol, tf, req.Industry)
	if h.cached(c, "advise", key) {
		return nil
	}

	adv, err := h.advisor.Advise(c.Request().Context(), usecase.AdviseParams{
		Symbol:    req.Symbol,
		N:         req.N,
		Timeframe: tf,
		Industry:  req.Industry,
	})
	if err != nil {
		return h.fail(c, "advise", err)
	}
	metrics.Recommendations.WithLabelValues(string(adv.Fusion.Recommendation)).Inc()
	for name := range adv.Degraded {
		metrics.ScorerDegraded.WithLabelValues(name).Inc()
	}
	h.store("advise", key, adv, 15*time.Second)
	return xhttp.SuccessResponse(c, adv)
}

func (h *AdviceEchoHandler) Waves(c echo.Context) error {
	start := time.Now()
	defer h.observe("waves", start)

	req := &models.WavesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":waves", 5, 2) {
		return xhttp.TooManyRequestsResponse(c)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	res, err := h.advisor.Waves(c.Request().Context(), usecase.SegmentationParams{
		Symbol: req.Symbol, N: req.N, Timeframe: tf, Window: req.Window,
	})
	if err != nil {
		return h.fail(c, "waves", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AdviceEchoHandler) Pivots(c echo.Context) error {
	start := time.Now()
	defer h.observe("pivots", start)

	req := &models.PivotsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":pivots", 5, 2) {
		return xhttp.TooManyRequestsResponse(c)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	res, err := h.advisor.Pivots(c.Request().Context(), usecase.SegmentationParams{
		Symbol: req.Symbol, N: req.N, Timeframe: tf, Window: req.Window,
	})
	if err != nil {
		return h.fail(c, "pivots", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AdviceEchoHandler) Volatility(c echo.Context) error {
	start := time.Now()
	defer h.observe("volatility", start)

	req := &models.VolatilityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":volatility", 5, 2) {
		return xhttp.TooManyRequestsResponse(c)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	res, err := h.advisor.Volatility(c.Request().Context(), usecase.SegmentationParams{
		Symbol: req.Symbol, N: req.N, Timeframe: tf, Period: req.Period,
	})
	if err != nil {
		return h.fail(c, "volatility", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// History serves raw bars for a time range. from/to accept RFC3339 or unix
// seconds and default to the last 24 hours.
func (h *AdviceEchoHandler) History(c echo.Context) error {
	start := time.Now()
	defer h.observe("history", start)

	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol required")
	}
	if !h.rl.Allow(c.RealIP()+":history", 5, 2) {
		return xhttp.TooManyRequestsResponse(c)
	}
	tf := domrepo.NormalizeTimeframe(c.QueryParam("tf"))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), time.Now())
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), to.Add(-24*time.Hour))

	res, err := h.advisor.History(c.Request().Context(), usecase.HistoryParams{
		Symbol: symbol, Timeframe: tf, From: from, To: to,
	})
	if err != nil {
		return h.fail(c, "history", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// AdviseBatch enqueues a batch run and returns the request ID to poll with.
func (h *AdviceEchoHandler) AdviseBatch(c echo.Context) error {
	start := time.Now()
	defer h.observe("advise_batch", start)

	req := &models.AdviseBatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.jobs == nil {
		return xhttp.ServiceUnavailableResponse(c, "not configured")
	}
	id := uuid.NewString()
	payload := usecase.AdviseBatchPayload{
		RequestID: id,
		Symbols:   req.Symbols,
		N:         req.N,
		TF:        req.TF,
	}
	if err := h.jobs.PublishMessage(c.Request().Context(), "advise.batch", payload); err != nil {
		metrics.AdvisorErrors.WithLabelValues("advise_batch").Inc()
		h.logger.Error("advise batch enqueue error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"request_id": id, "status": "queued"})
}

// BatchResult serves a completed batch run, or 404 while it is pending.
func (h *AdviceEchoHandler) BatchResult(c echo.Context) error {
	start := time.Now()
	defer h.observe("advise_batch_result", start)

	id := c.Param("id")
	if id == "" {
		return xhttp.BadRequestResponse(c, "id required")
	}
	if h.results == nil {
		return xhttp.ServiceUnavailableResponse(c, "not configured")
	}
	var entries []usecase.BatchEntry
	err := h.results.Get(c.Request().Context(), usecase.BatchResultKey(id), &entries)
	if errors.Is(err, pkgcache.ErrCacheMiss) {
		return xhttp.NotFoundResponse(c, map[string]string{"request_id": id, "status": "pending"})
	}
	if err != nil {
		h.logger.Warn("batch result store_get_error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, entries)
}
