package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"UKPredict/internal/domain/models"
	domrepo "UKPredict/internal/domain/repository"
	pkgch "UKPredict/pkg/clickhouse"
)

const predictionColumns = "event_id, service, requested_at, inputs, prediction, lower_bound, upper_bound, latency_ms, cached, history_used, trace_id"

// CHPredictionStore writes audit events into ClickHouse.
type CHPredictionStore struct {
	ch    *pkgch.Client
	db    *sql.DB
	table string
}

var _ domrepo.PredictionStore = (*CHPredictionStore)(nil)

func NewCHPredictionStore(ch *pkgch.Client, table string) *CHPredictionStore {
	return &CHPredictionStore{ch: ch, db: ch.DB(), table: table}
}

func (s *CHPredictionStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, pkgch.PredictionsDDL(s.table))
}

func (s *CHPredictionStore) Store(ctx context.Context, e *models.PredictionEvent) error {
	return s.StoreBatch(ctx, []*models.PredictionEvent{e})
}

// StoreBatch inserts events with one multi-row VALUES statement per chunk.
func (s *CHPredictionStore) StoreBatch(ctx context.Context, events []*models.PredictionEvent) error {
	const chunkSize = 2000
	for start := 0; start < len(events); start += chunkSize {
		end := start + chunkSize
		if end > len(events) {
			end = len(events)
		}

		values, args, err := predictionValues(events[start:end])
		if err != nil {
			return err
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, predictionColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert predictions: %w", err)
		}
	}
	return nil
}

func predictionValues(events []*models.PredictionEvent) ([]string, []interface{}, error) {
	values := make([]string, 0, len(events))
	args := make([]interface{}, 0, len(events)*11)
	for _, e := range events {
		if e == nil || e.ID == "" {
			continue
		}
		inputs, err := json.Marshal(e.Inputs)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal inputs of %s: %w", e.ID, err)
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			e.ID,
			e.Service,
			e.RequestedAt.UTC(),
			string(inputs),
			e.Prediction,
			e.LowerBound,
			e.UpperBound,
			float64(e.LatencyMS),
			boolUInt8(e.Cached),
			boolUInt8(e.HistoryUsed),
			e.TraceID,
		)
	}
	return values, args, nil
}

func boolUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func (s *CHPredictionStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}
