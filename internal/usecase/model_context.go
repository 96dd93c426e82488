package usecase

import (
	"UKPredict/internal/domain/models"
	"UKPredict/internal/domain/service"
	"UKPredict/pkg/util"
)

// ModelContext holds everything a predictor reads at request time. It is
// built once at startup and never mutated afterwards.
type ModelContext struct {
	Regressor service.Regressor
	Artifact  string
	// Series is nil when no history was loaded.
	Series       *models.Series
	SeriesSource string
}

func (m *ModelContext) Ready() bool {
	return m != nil && m.Regressor != nil
}

func (m *ModelContext) HistoryLoaded() bool {
	return m != nil && m.Series.Len() > 0
}

func (m *ModelContext) Backend() string {
	if !m.Ready() {
		return ""
	}
	return m.Regressor.Backend()
}

// HistoricalRange summarizes the loaded series, or returns nil without one.
func (m *ModelContext) HistoricalRange() *models.HistoricalRange {
	if !m.HistoryLoaded() {
		return nil
	}
	first, _ := m.Series.First()
	last, _ := m.Series.Last()
	return &models.HistoricalRange{
		MinDate:      util.FormatISO(first.At),
		MaxDate:      util.FormatISO(last.At),
		TotalRecords: m.Series.Len(),
		Source:       m.SeriesSource,
	}
}
