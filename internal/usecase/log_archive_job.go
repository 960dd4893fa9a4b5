package usecase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	applogger "WaveFuse/pkg/logger"
	"WaveFuse/pkg/queue"
)

// LogArchiveJob persists aggregated application log batches published by the
// logger's collector, so repeated warnings survive process restarts and can
// be queried alongside market data.
type LogArchiveJob struct {
	db *sql.DB
}

func NewLogArchiveJob(db *sql.DB) *LogArchiveJob {
	return &LogArchiveJob{db: db}
}

func (j *LogArchiveJob) Name() string { return "log_archive" }
func (j *LogArchiveJob) Type() string { return "app.logs" }

func (j *LogArchiveJob) Handle(ctx context.Context, payload interface{}) error {
	entries, err := queue.ParsePayload[[]applogger.AggregatedLogEntry](payload)
	if err != nil {
		return fmt.Errorf("log archive payload: %w", err)
	}
	if len(*entries) == 0 {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("log archive begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO wavefuse.app_logs (level, message, caller, count, first_seen, last_seen, fields) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("log archive prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range *entries {
		fields, _ := json.Marshal(e.Fields)
		if _, err := stmt.ExecContext(ctx, e.Level, e.Message, e.Caller, uint32(e.Count), e.FirstSeen, e.LastSeen, string(fields)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("log archive insert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("log archive commit: %w", err)
	}
	return nil
}

var _ queue.Job = (*LogArchiveJob)(nil)
