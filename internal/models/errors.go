package models

import (
	"errors"
	"fmt"
)

// ErrDataIntegrity matches every DataIntegrityError via errors.Is
var ErrDataIntegrity = errors.New("data integrity error")

// ErrInsufficientSeasonData matches every InsufficientSeasonDataError via errors.Is
var ErrInsufficientSeasonData = errors.New("insufficient season data")

// IntegrityKind classifies a DataIntegrityError
type IntegrityKind string

const (
	MalformedTimestamp   IntegrityKind = "malformed_timestamp"
	NonNumericColumn     IntegrityKind = "non_numeric_column"
	ConflictingTimestamp IntegrityKind = "conflicting_timestamp"
	MissingSeries        IntegrityKind = "missing_series"
)

// DataIntegrityError aborts a cleaning pass.
// Field names the parameter or column, Value the offending raw input.
type DataIntegrityError struct {
	Kind    IntegrityKind
	Field   string
	Value   string
	Message string
}

func (e *DataIntegrityError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s (value %q)", e.Kind, e.Field, e.Message, e.Value)
}

func (e *DataIntegrityError) Is(target error) bool {
	return target == ErrDataIntegrity
}

// IsTransient returns false as integrity errors are permanent
func (e *DataIntegrityError) IsTransient() bool {
	return false
}

// InsufficientSeasonDataError marks a season whose partition is too small to model.
// It is local to that season; other seasons keep running.
type InsufficientSeasonDataError struct {
	Season   Season
	Records  int
	Required int
	Stage    string
}

func (e *InsufficientSeasonDataError) Error() string {
	return fmt.Sprintf("season %s: %d records, %s requires at least %d", e.Season, e.Records, e.Stage, e.Required)
}

func (e *InsufficientSeasonDataError) Is(target error) bool {
	return target == ErrInsufficientSeasonData
}

// IsTransient returns false; more data has to be fetched first
func (e *InsufficientSeasonDataError) IsTransient() bool {
	return false
}
