package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"WaveFuse/internal/domain/models"
	domrepo "WaveFuse/internal/domain/repository"
	pkgch "WaveFuse/pkg/clickhouse"
	applogger "WaveFuse/pkg/logger"
)

// CHPriceStore implements PriceStore backed by ClickHouse bar tables.
type CHPriceStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHPriceStore(ch *pkgch.Client) *CHPriceStore {
	return &CHPriceStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHPriceStore) logErr(msg, table, symbol string, tf domrepo.Timeframe, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
		applogger.Error(err),
	)
}

func (s *CHPriceStore) logOK(msg, table, symbol string, tf domrepo.Timeframe, rows int, since time.Time) {
	if s.l == nil {
		return
	}
	s.l.Info(msg,
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.String("tf", string(tf)),
		applogger.Int("rows", rows),
		applogger.Duration("duration_ms", time.Since(since)),
	)
}

func (s *CHPriceStore) GetLatestNPrices(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.PricePoint, error) {
	start := time.Now()
	table, err := tableForTF(tf)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT bucket, close FROM %s WHERE symbol = ? ORDER BY bucket DESC LIMIT ?", table)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		s.logErr("clickhouse latest_prices query error", table, symbol, tf, err)
		return nil, fmt.Errorf("get latest prices: %w", err)
	}
	defer rows.Close()

	out := make([]models.PricePoint, 0, n)
	for rows.Next() {
		var bucket time.Time
		var p models.PricePoint
		if err := rows.Scan(&bucket, &p.Price); err != nil {
			s.logErr("clickhouse latest_prices scan error", table, symbol, tf, err)
			return nil, fmt.Errorf("scan price: %w", err)
		}
		p.Timestamp = bucket.Unix()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		s.logErr("clickhouse latest_prices rows error", table, symbol, tf, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	// query returns newest-first; callers expect ascending time
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	s.logOK("clickhouse latest_prices ok", table, symbol, tf, len(out), start)
	return out, nil
}

func (s *CHPriceStore) GetPricesBetween(ctx context.Context, symbol string, from, to time.Time, tf domrepo.Timeframe) ([]models.PricePoint, error) {
	start := time.Now()
	table, err := tableForTF(tf)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT bucket, close FROM %s WHERE symbol = ? AND bucket >= ? AND bucket <= ? ORDER BY bucket ASC LIMIT 100000", table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		s.logErr("clickhouse prices_between query error", table, symbol, tf, err)
		return nil, fmt.Errorf("get prices between: %w", err)
	}
	defer rows.Close()

	var out []models.PricePoint
	for rows.Next() {
		var bucket time.Time
		var p models.PricePoint
		if err := rows.Scan(&bucket, &p.Price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		p.Timestamp = bucket.Unix()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.logOK("clickhouse prices_between ok", table, symbol, tf, len(out), start)
	return out, nil
}

func tableForTF(tf domrepo.Timeframe) (string, error) {
	switch tf {
	case domrepo.TF1s:
		return "wavefuse.rt_bars_1s", nil
	case domrepo.TF1m:
		return "wavefuse.rt_bars_1m", nil
	case domrepo.TF5m:
		// folded to 1m; a native 5m rollup table is a possible later addition
		return "wavefuse.rt_bars_1m", nil
	case domrepo.TF1d:
		return "wavefuse.rt_bars_1d", nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
}
