package usecase

import (
	"context"
	"fmt"
	"time"

	domrepo "WaveFuse/internal/domain/repository"
	"WaveFuse/pkg/cache"
	"WaveFuse/pkg/queue"
)

// AdviseBatchJob runs a queued batch advisory and parks the result in the
// result store so clients can poll for it by request ID.
type AdviseBatchJob struct {
	advisor *Advisor
	results cache.Service
	ttl     time.Duration
}

// AdviseBatchPayload is the queue message body.
type AdviseBatchPayload struct {
	RequestID string   `json:"request_id"`
	Symbols   []string `json:"symbols"`
	N         int      `json:"n"`
	TF        string   `json:"tf"`
}

func NewAdviseBatchJob(advisor *Advisor, results cache.Service, ttl time.Duration) *AdviseBatchJob {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AdviseBatchJob{advisor: advisor, results: results, ttl: ttl}
}

func (j *AdviseBatchJob) Name() string { return "advise_batch" }
func (j *AdviseBatchJob) Type() string { return "advise.batch" }

func (j *AdviseBatchJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[AdviseBatchPayload](payload)
	if err != nil {
		return fmt.Errorf("advise batch payload: %w", err)
	}
	if len(p.Symbols) == 0 {
		return fmt.Errorf("advise batch: no symbols")
	}

	// A retried delivery of the same request must not run the batch twice.
	locked, err := j.results.TryLock(ctx, batchLockKey(p.RequestID), j.ttl)
	if err != nil {
		return fmt.Errorf("batch lock: %w", err)
	}
	if !locked {
		return nil
	}

	entries := j.advisor.AdviseBatch(ctx, p.Symbols, p.N, domrepo.NormalizeTimeframe(p.TF))

	if err := j.results.Set(ctx, BatchResultKey(p.RequestID), entries, j.ttl); err != nil {
		_ = j.results.Unlock(ctx, batchLockKey(p.RequestID))
		return fmt.Errorf("store batch result: %w", err)
	}
	return nil
}

// BatchResultKey is the store key a queued batch run publishes under.
func BatchResultKey(requestID string) string {
	return cache.Key("advise:batch", requestID)
}

func batchLockKey(requestID string) string {
	return cache.Key("advise:batch:lock", requestID)
}

var _ queue.Job = (*AdviseBatchJob)(nil)
