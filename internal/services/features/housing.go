package features

import (
	"errors"
	"fmt"

	"UKPredict/internal/domain/models"
	"UKPredict/pkg/util"
)

// ErrOutOfDomain marks a housing field whose value the model was never trained on.
var ErrOutOfDomain = errors.New("value out of domain")

var propertyTypes = map[string]string{
	"D": "Detached", "Detached": "Detached",
	"S": "Semi-Detached", "Semi-Detached": "Semi-Detached",
	"T": "Terraced", "Terraced": "Terraced",
	"F": "Flat", "Flat": "Flat",
	"O": "Other", "Other": "Other",
}

var tenures = map[string]string{
	"F": "Freehold", "Freehold": "Freehold",
	"L": "Leasehold", "Leasehold": "Leasehold",
}

const (
	HousingMinYear = 1995
	HousingMaxYear = 2025
)

// HousingColumns is the column order of the housing model.
var HousingColumns = []string{
	"property_type_label", "is_new_build", "tenure_label",
	"county", "district", "town_city", "year", "month", "quarter",
}

// NormalizeHousing builds the housing model row. Location names are trimmed
// and upper-cased, codes are expanded to labels and the quarter is always
// derived from the month.
func NormalizeHousing(req *models.HousingRequest) (models.FeatureRow, error) {
	ptype, ok := propertyTypes[req.PropertyTypeLabel]
	if !ok {
		return nil, fmt.Errorf("property_type_label %q: %w", req.PropertyTypeLabel, ErrOutOfDomain)
	}
	tenure, ok := tenures[req.TenureLabel]
	if !ok {
		return nil, fmt.Errorf("tenure_label %q: %w", req.TenureLabel, ErrOutOfDomain)
	}
	if req.Year < HousingMinYear || req.Year > HousingMaxYear {
		return nil, fmt.Errorf("year %d: %w", req.Year, ErrOutOfDomain)
	}
	if req.Month < 1 || req.Month > 12 {
		return nil, fmt.Errorf("month %d: %w", req.Month, ErrOutOfDomain)
	}

	county := util.NormalizeText(req.County)
	district := util.NormalizeText(req.District)
	town := util.NormalizeText(req.TownCity)
	for name, v := range map[string]string{"county": county, "district": district, "town_city": town} {
		if v == "" {
			return nil, fmt.Errorf("%s is empty: %w", name, ErrOutOfDomain)
		}
	}

	return models.FeatureRow{
		models.Cat("property_type_label", ptype),
		models.Flag("is_new_build", req.IsNewBuild),
		models.Cat("tenure_label", tenure),
		models.Cat("county", county),
		models.Cat("district", district),
		models.Cat("town_city", town),
		models.IntCol("year", req.Year),
		models.IntCol("month", req.Month),
		models.IntCol("quarter", QuarterOf(req.Month)),
	}, nil
}
