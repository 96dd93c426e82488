package clickhouse

import "fmt"

// PredictionsDDL creates the audit table written by the recorder.
func PredictionsDDL(table string) []string {
	return []string{fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			event_id      UUID,
			service       LowCardinality(String),
			requested_at  DateTime64(3, 'UTC'),
			inputs        String,
			prediction    Float64,
			lower_bound   Float64,
			upper_bound   Float64,
			latency_ms    Float64,
			cached        UInt8,
			history_used  UInt8,
			trace_id      String
		)
		ENGINE = ReplacingMergeTree
		PARTITION BY toYYYYMM(requested_at)
		ORDER BY (service, requested_at, event_id)
	`, table)}
}

// DemandDDL creates the half-hourly demand table read as a history source.
func DemandDDL(table string) []string {
	return []string{fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			settlement_date  DateTime('UTC'),
			demand_value     Float64
		)
		ENGINE = ReplacingMergeTree
		ORDER BY settlement_date
	`, table)}
}
