package models

import (
	"time"
)

// NASA POWER parameter identifiers used as keys of a RawSeriesSet
const (
	ParamIrradiance  = "ALLSKY_SFC_SW_DWN"
	ParamTemperature = "T2M"
	ParamZenithAngle = "SZA"
)

// MissingSentinel is the provider marker for values that have not been uploaded yet
const MissingSentinel = -999.0

// TimestampLayout is the hourly key format used by the provider (YYYYMMDDHH)
const TimestampLayout = "2006010215"

// MeasurementParameters lists the parameters every RawSeriesSet must carry
var MeasurementParameters = []string{ParamIrradiance, ParamTemperature, ParamZenithAngle}

// RawSeriesSet maps a parameter name to its hourly series keyed by YYYYMMDDHH.
// Values are whatever the provider sent: numbers, numeric strings or the -999 sentinel.
type RawSeriesSet map[string]map[string]interface{}

// Location represents a point for which series are fetched
type Location struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CleanedRecord is one merged hour of measurements.
// Missing values (sentinel or null) are represented as nil pointers.
type CleanedRecord struct {
	Timestamp   time.Time `json:"timestamp" db:"observed_at"`
	Irradiance  *float64  `json:"irradiance" db:"irradiance"`
	Temperature *float64  `json:"temperature" db:"temperature"`
	ZenithAngle *float64  `json:"zenith_angle" db:"zenith_angle"`
}

// SeasonedRecord is a CleanedRecord with its calendar month and season code
type SeasonedRecord struct {
	CleanedRecord
	Month  int    `json:"month"`
	Season Season `json:"season"`
}

// FeatureRecord holds the modeling columns of a complete, non-zero irradiance row
type FeatureRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	Irradiance  float64   `json:"irradiance"`
	ZenithAngle float64   `json:"zenith_angle"`
	Temperature float64   `json:"temperature"`
	Season      Season    `json:"season"`
}

// HourlyObservation is a persisted CleanedRecord
type HourlyObservation struct {
	ID         int64 `json:"id" db:"id"`
	LocationID int64 `json:"location_id" db:"location_id"`
	CleanedRecord
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ModelRun stores the outcome of one season's regression
type ModelRun struct {
	ID              int64     `json:"id" db:"id"`
	RunID           string    `json:"run_id" db:"run_id"`
	LocationID      *int64    `json:"location_id,omitempty" db:"location_id"`
	Season          Season    `json:"season" db:"season"`
	Intercept       float64   `json:"intercept" db:"intercept"`
	TemperatureCoef float64   `json:"temperature_coef" db:"temperature_coef"`
	ZenithAngleCoef float64   `json:"zenith_angle_coef" db:"zenith_angle_coef"`
	R2              float64   `json:"r2" db:"r2"`
	MAE             float64   `json:"mae" db:"mae"`
	MSE             float64   `json:"mse" db:"mse"`
	TrainR2         float64   `json:"train_r2" db:"train_r2"`
	TrainSize       int       `json:"train_size" db:"train_size"`
	TestSize        int       `json:"test_size" db:"test_size"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Float returns a pointer to v, for building records with present values
func Float(v float64) *float64 {
	return &v
}
