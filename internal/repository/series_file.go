package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"UKPredict/internal/domain/models"
	domrepo "UKPredict/internal/domain/repository"
	"UKPredict/pkg/logger"
	"UKPredict/pkg/util"
)

const (
	colSettlementDate = "settlement_date"
	colDemandValue    = "demand_value"
)

// FileSeriesSource loads the first existing file of a search path. Files
// ending in .parquet are read as Parquet, anything else as CSV.
type FileSeriesSource struct {
	paths []string
	l     *logger.Logger
	used  string
}

var _ domrepo.SeriesSource = (*FileSeriesSource)(nil)

func NewFileSeriesSource(paths []string, l *logger.Logger) *FileSeriesSource {
	if l == nil {
		l = logger.Nop()
	}
	return &FileSeriesSource{paths: paths, l: l}
}

func (s *FileSeriesSource) Describe() string {
	if s.used != "" {
		return "file:" + s.used
	}
	return "file:" + strings.Join(s.paths, ",")
}

func (s *FileSeriesSource) Load(ctx context.Context) (*models.Series, error) {
	path, ok := util.FirstExisting(s.paths)
	if !ok {
		return nil, fmt.Errorf("%w: none of %v exist", domrepo.ErrNoHistory, s.paths)
	}
	s.used = path

	var (
		pts     []models.DemandPoint
		skipped int
		err     error
	)
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		pts, skipped, err = readParquet(ctx, path)
	} else {
		pts, skipped, err = readCSV(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if skipped > 0 {
		s.l.Warn("Dropped unparseable history rows", logger.String("path", path), logger.Int("rows", skipped))
	}
	return models.NewSeries(pts), nil
}

func readCSV(ctx context.Context, path string) ([]models.DemandPoint, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	dateIdx, valIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case colSettlementDate:
			dateIdx = i
		case colDemandValue:
			valIdx = i
		}
	}
	if dateIdx < 0 || valIdx < 0 {
		return nil, 0, fmt.Errorf("csv needs %q and %q columns", colSettlementDate, colDemandValue)
	}

	var (
		pts     []models.DemandPoint
		skipped int
	)
	for line := 0; ; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		if dateIdx >= len(rec) || valIdx >= len(rec) {
			skipped++
			continue
		}
		at, err := util.ParseDateTime(rec[dateIdx])
		if err != nil {
			skipped++
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[valIdx]), 64)
		if err != nil {
			skipped++
			continue
		}
		pts = append(pts, models.DemandPoint{At: at, DemandMW: v})
	}
	return pts, skipped, nil
}

func readParquet(ctx context.Context, path string) ([]models.DemandPoint, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, 0, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, 0, fmt.Errorf("open parquet: %w", err)
	}

	dateCol, ok := pf.Schema().Lookup(colSettlementDate)
	if !ok {
		return nil, 0, fmt.Errorf("parquet has no %q column", colSettlementDate)
	}
	valCol, ok := pf.Schema().Lookup(colDemandValue)
	if !ok {
		return nil, 0, fmt.Errorf("parquet has no %q column", colDemandValue)
	}

	var (
		pts     []models.DemandPoint
		skipped int
		buf     = make([]parquet.Row, 512)
	)
	for _, rg := range pf.RowGroups() {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				at, okAt := parquetTime(pick(row, dateCol.ColumnIndex))
				v, okV := parquetFloat(pick(row, valCol.ColumnIndex))
				if !okAt || !okV {
					skipped++
					continue
				}
				pts = append(pts, models.DemandPoint{At: at, DemandMW: v})
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				rows.Close()
				return nil, 0, err
			}
		}
		rows.Close()
	}
	return pts, skipped, nil
}

func pick(row parquet.Row, col int) parquet.Value {
	for _, v := range row {
		if v.Column() == col {
			return v
		}
	}
	return parquet.Value{}
}

// parquetTime accepts ISO strings or integer epochs. Integer precision is
// inferred from magnitude since pandas writes seconds through nanoseconds.
func parquetTime(v parquet.Value) (time.Time, bool) {
	if v.IsNull() {
		return time.Time{}, false
	}
	switch v.Kind() {
	case parquet.ByteArray, parquet.FixedLenByteArray:
		t, err := util.ParseDateTime(string(v.ByteArray()))
		return t, err == nil
	case parquet.Int64, parquet.Int32:
		return epochTime(v.Int64()), true
	}
	return time.Time{}, false
}

func epochTime(n int64) time.Time {
	switch {
	case n > 1e17 || n < -1e17:
		return time.Unix(0, n).UTC()
	case n > 1e14 || n < -1e14:
		return time.UnixMicro(n).UTC()
	case n > 1e11 || n < -1e11:
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

func parquetFloat(v parquet.Value) (float64, bool) {
	if v.IsNull() {
		return 0, false
	}
	switch v.Kind() {
	case parquet.Double:
		return v.Double(), true
	case parquet.Float:
		return float64(v.Float()), true
	case parquet.Int64:
		return float64(v.Int64()), true
	case parquet.Int32:
		return float64(v.Int32()), true
	}
	return 0, false
}
