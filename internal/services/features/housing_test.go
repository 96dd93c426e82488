package features

import (
	"errors"
	"testing"

	"UKPredict/internal/domain/models"
)

func londonDetached() *models.HousingRequest {
	q := 2
	return &models.HousingRequest{
		PropertyTypeLabel: "Detached",
		TenureLabel:       "Freehold",
		County:            "GREATER LONDON",
		District:          "CITY OF WESTMINSTER",
		TownCity:          "LONDON",
		Year:              2017,
		Month:             6,
		Quarter:           &q,
	}
}

func TestNormalizeHousing(t *testing.T) {
	req := londonDetached()
	req.PropertyTypeLabel = "S"
	req.TenureLabel = "L"
	req.County = "  greater london "
	req.IsNewBuild = true
	bad := 4
	req.Quarter = &bad

	row, err := NormalizeHousing(req)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	names := row.Names()
	for i, n := range HousingColumns {
		if names[i] != n {
			t.Fatalf("column %d = %s, want %s", i, names[i], n)
		}
	}
	m := row.Map()
	if m["property_type_label"] != "Semi-Detached" || m["tenure_label"] != "Leasehold" {
		t.Fatalf("labels = %v / %v", m["property_type_label"], m["tenure_label"])
	}
	if m["county"] != "GREATER LONDON" {
		t.Fatalf("county = %q", m["county"])
	}
	if m["is_new_build"] != 1.0 || m["quarter"] != 2.0 {
		t.Fatalf("is_new_build=%v quarter=%v", m["is_new_build"], m["quarter"])
	}
	cats := row.CategoricalNames()
	if len(cats) != 5 {
		t.Fatalf("categorical columns = %v", cats)
	}
}

func TestNormalizeHousingRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.HousingRequest)
	}{
		{"property type", func(r *models.HousingRequest) { r.PropertyTypeLabel = "Castle" }},
		{"tenure", func(r *models.HousingRequest) { r.TenureLabel = "Commonhold" }},
		{"year", func(r *models.HousingRequest) { r.Year = 1990 }},
		{"month", func(r *models.HousingRequest) { r.Month = 13 }},
		{"blank town", func(r *models.HousingRequest) { r.TownCity = "   " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := londonDetached()
			tt.mutate(req)
			if _, err := NormalizeHousing(req); !errors.Is(err, ErrOutOfDomain) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}
