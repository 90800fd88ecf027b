// Package processing turns raw provider series into validated, season-labeled
// feature rows. Every stage returns a new slice and never mutates its input.
package processing

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"solar-platform/internal/models"
)

// column binds a provider parameter to the CleanedRecord field it fills
type column struct {
	param string
	set   func(*models.CleanedRecord, *float64)
}

var columns = []column{
	{models.ParamIrradiance, func(r *models.CleanedRecord, v *float64) { r.Irradiance = v }},
	{models.ParamTemperature, func(r *models.CleanedRecord, v *float64) { r.Temperature = v }},
	{models.ParamZenithAngle, func(r *models.CleanedRecord, v *float64) { r.ZenithAngle = v }},
}

// Clean merges the irradiance, temperature and zenith angle series on their
// timestamp key. Only timestamps present in all three series survive.
// The -999 sentinel and nulls become nil; anything that cannot be read as a
// number fails the whole pass. Output is ordered by timestamp.
func Clean(raw models.RawSeriesSet) ([]models.CleanedRecord, error) {
	parsed := make(map[string]map[time.Time]*float64, len(columns))

	for _, col := range columns {
		series, ok := raw[col.param]
		if !ok {
			return nil, &models.DataIntegrityError{
				Kind:    models.MissingSeries,
				Field:   col.param,
				Message: "series not present in raw input",
			}
		}

		values, err := parseSeries(col.param, series)
		if err != nil {
			return nil, err
		}
		parsed[col.param] = values
	}

	base := parsed[columns[0].param]
	records := make([]models.CleanedRecord, 0, len(base))

	for ts := range base {
		record := models.CleanedRecord{Timestamp: ts}
		joined := true
		for _, col := range columns {
			v, ok := parsed[col.param][ts]
			if !ok {
				joined = false
				break
			}
			col.set(&record, v)
		}
		if joined {
			records = append(records, record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	return records, nil
}

// parseSeries parses every key of one series and coerces its values.
// Two keys resolving to the same hour must carry the same value.
func parseSeries(param string, series map[string]interface{}) (map[time.Time]*float64, error) {
	values := make(map[time.Time]*float64, len(series))

	for key, rawValue := range series {
		ts, err := ParseTimestamp(key)
		if err != nil {
			return nil, &models.DataIntegrityError{
				Kind:    models.MalformedTimestamp,
				Field:   param,
				Value:   key,
				Message: "invalid timestamp format, expected YYYYMMDDHH",
			}
		}

		v, err := coerce(rawValue)
		if err != nil {
			return nil, &models.DataIntegrityError{
				Kind:    models.NonNumericColumn,
				Field:   param,
				Value:   fmt.Sprint(rawValue),
				Message: fmt.Sprintf("non-numeric value at %s", key),
			}
		}

		if existing, seen := values[ts]; seen && !sameValue(existing, v) {
			return nil, &models.DataIntegrityError{
				Kind:    models.ConflictingTimestamp,
				Field:   param,
				Value:   key,
				Message: "duplicate timestamp with conflicting values",
			}
		}
		values[ts] = v
	}

	return values, nil
}

// ParseTimestamp parses a YYYYMMDDHH key into a UTC hour
func ParseTimestamp(key string) (time.Time, error) {
	if len(key) != len(models.TimestampLayout) {
		return time.Time{}, fmt.Errorf("timestamp %q: expected %d digits", key, len(models.TimestampLayout))
	}
	return time.ParseInLocation(models.TimestampLayout, key, time.UTC)
}

// FormatTimestamp renders t as a provider key
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(models.TimestampLayout)
}

// coerce converts a decoded JSON value to a measurement.
// nil, NaN, ±Inf and the sentinel yield a nil pointer.
func coerce(raw interface{}) (*float64, error) {
	var v float64

	switch value := raw.(type) {
	case nil:
		return nil, nil
	case float64:
		v = value
	case float32:
		v = float64(value)
	case int:
		v = float64(value)
	case int64:
		v = float64(value)
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return nil, err
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, err
		}
		v = f
	default:
		return nil, fmt.Errorf("unsupported type %T", raw)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v == models.MissingSentinel {
		return nil, nil
	}
	return &v, nil
}

func sameValue(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
