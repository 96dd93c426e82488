package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"UKPredict/internal/domain/models"
	domrepo "UKPredict/internal/domain/repository"
	pkgch "UKPredict/pkg/clickhouse"
	applogger "UKPredict/pkg/logger"
)

// CHSeriesSource reads the demand history from a ClickHouse table with
// settlement_date and demand_value columns.
type CHSeriesSource struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

var _ domrepo.SeriesSource = (*CHSeriesSource)(nil)

func NewCHSeriesSource(ch *pkgch.Client, table string, l *applogger.Logger) *CHSeriesSource {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHSeriesSource{db: ch.DB(), table: table, l: l}
}

func (s *CHSeriesSource) Describe() string { return "clickhouse:" + s.table }

func (s *CHSeriesSource) Load(ctx context.Context) (*models.Series, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT settlement_date, demand_value
        FROM %s
        WHERE demand_value IS NOT NULL
        ORDER BY settlement_date ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.l.Error("clickhouse load_history query error",
			applogger.String("table", s.table),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	pts := make([]models.DemandPoint, 0, 1<<16)
	for rows.Next() {
		var (
			at time.Time
			v  float64
		)
		if err := rows.Scan(&at, &v); err != nil {
			return nil, fmt.Errorf("scan demand: %w", err)
		}
		pts = append(pts, models.DemandPoint{At: at.UTC(), DemandMW: v})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	s.l.Debug("clickhouse load_history ok",
		applogger.String("table", s.table),
		applogger.Int("rows", len(pts)),
		applogger.Duration("latency_ms", time.Since(start)),
	)
	return models.NewSeries(pts), nil
}
