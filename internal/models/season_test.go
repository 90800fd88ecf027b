package models

import (
	"errors"
	"testing"
)

// TestSeasonForMonth covers every calendar month plus out-of-range input
func TestSeasonForMonth(t *testing.T) {
	tests := []struct {
		month   int
		want    Season
		wantErr bool
	}{
		{month: 1, want: Winter},
		{month: 2, want: Winter},
		{month: 3, want: Spring},
		{month: 4, want: Spring},
		{month: 5, want: Spring},
		{month: 6, want: Summer},
		{month: 7, want: Summer},
		{month: 8, want: Summer},
		{month: 9, want: Fall},
		{month: 10, want: Fall},
		{month: 11, want: Fall},
		{month: 12, want: Winter},
		{month: 0, wantErr: true},
		{month: 13, wantErr: true},
	}

	for _, tt := range tests {
		got, err := SeasonForMonth(tt.month)
		if (err != nil) != tt.wantErr {
			t.Errorf("SeasonForMonth(%d) error = %v, wantErr %v", tt.month, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("SeasonForMonth(%d) = %v, want %v", tt.month, got, tt.want)
		}
		if !tt.wantErr && !got.Valid() {
			t.Errorf("SeasonForMonth(%d) returned invalid season %d", tt.month, got)
		}
	}
}

func TestSeasonString(t *testing.T) {
	names := map[Season]string{
		Winter:        "Winter",
		Spring:        "Spring",
		Summer:        "Summer",
		Fall:          "Fall",
		SeasonUnknown: "Unknown Season",
	}
	for s, want := range names {
		if s.String() != want {
			t.Errorf("Season(%d).String() = %v, want %v", s, s.String(), want)
		}
	}
}

func TestParseSeason(t *testing.T) {
	for _, in := range []string{"3", "summer", "Summer"} {
		s, err := ParseSeason(in)
		if err != nil || s != Summer {
			t.Errorf("ParseSeason(%q) = %v, %v", in, s, err)
		}
	}
	if _, err := ParseSeason("monsoon"); err == nil {
		t.Error("ParseSeason should reject unknown names")
	}
}

// TestErrorClassification checks errors.Is matching and transience
func TestErrorClassification(t *testing.T) {
	integrity := &DataIntegrityError{
		Kind:    NonNumericColumn,
		Field:   ParamTemperature,
		Value:   "warm",
		Message: "non-numeric value at 2023060100",
	}

	if !errors.Is(integrity, ErrDataIntegrity) {
		t.Error("DataIntegrityError should match ErrDataIntegrity")
	}
	if errors.Is(integrity, ErrInsufficientSeasonData) {
		t.Error("DataIntegrityError should not match ErrInsufficientSeasonData")
	}
	if integrity.IsTransient() {
		t.Error("DataIntegrityError should not be transient")
	}
	want := `non_numeric_column: T2M: non-numeric value at 2023060100 (value "warm")`
	if integrity.Error() != want {
		t.Errorf("Error() = %v, want %v", integrity.Error(), want)
	}

	sparse := &InsufficientSeasonDataError{Season: Fall, Records: 1, Required: 2, Stage: "split"}
	if !errors.Is(sparse, ErrInsufficientSeasonData) {
		t.Error("InsufficientSeasonDataError should match ErrInsufficientSeasonData")
	}
	if sparse.Error() != "season Fall: 1 records, split requires at least 2" {
		t.Errorf("Error() = %v", sparse.Error())
	}
}
