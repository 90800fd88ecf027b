package modeling

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"solar-platform/internal/models"
)

// linearRows builds rows following irradiance = 2 + 0.1*T - 0.02*Z exactly
func linearRows(season models.Season, n int) []models.FeatureRecord {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]models.FeatureRecord, n)
	for i := range rows {
		temp := float64(i%7) + 0.5*float64(i)
		zenith := float64((i*13)%29) + 20
		rows[i] = models.FeatureRecord{
			Timestamp:   start.Add(time.Duration(i) * time.Hour),
			Temperature: temp,
			ZenithAngle: zenith,
			Irradiance:  2 + 0.1*temp - 0.02*zenith,
			Season:      season,
		}
	}
	return rows
}

func TestTrainTestSplit(t *testing.T) {
	rows := linearRows(models.Winter, 10)

	split, err := TrainTestSplit(rows, 0.2, DefaultSeed)
	require.NoError(t, err)

	assert.Len(t, split.Test, 2)
	assert.Len(t, split.Train, 8)
	assert.Len(t, split.YTest, 2)
	assert.Len(t, split.YTrain, 8)

	r, c := split.XTrain.Dims()
	assert.Equal(t, 8, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, split.Train[0].Temperature, split.XTrain.At(0, ColTemperature))
	assert.Equal(t, split.Train[0].ZenithAngle, split.XTrain.At(0, ColZenithAngle))
	assert.Equal(t, split.Train[0].Irradiance, split.YTrain[0])

	seen := make(map[time.Time]bool)
	for _, rec := range append(append([]models.FeatureRecord{}, split.Train...), split.Test...) {
		assert.False(t, seen[rec.Timestamp], "row %s appears twice", rec.Timestamp)
		seen[rec.Timestamp] = true
	}
	assert.Len(t, seen, 10)
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	rows := linearRows(models.Summer, 25)

	first, err := TrainTestSplit(rows, 0.2, DefaultSeed)
	require.NoError(t, err)
	second, err := TrainTestSplit(rows, 0.2, DefaultSeed)
	require.NoError(t, err)

	assert.Equal(t, first.Test, second.Test)
	assert.Equal(t, first.Train, second.Train)
}

func TestTrainTestSplitTooSmall(t *testing.T) {
	_, err := TrainTestSplit(linearRows(models.Fall, 1), 0.2, DefaultSeed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsufficientSeasonData))

	var sparse *models.InsufficientSeasonDataError
	require.True(t, errors.As(err, &sparse))
	assert.Equal(t, models.Fall, sparse.Season)
	assert.Equal(t, 1, sparse.Records)

	split, err := TrainTestSplit(linearRows(models.Fall, 2), 0.2, DefaultSeed)
	require.NoError(t, err)
	assert.Len(t, split.Test, 1)
	assert.Len(t, split.Train, 1)
}

func TestFitRecoversCoefficients(t *testing.T) {
	x, y := Design(linearRows(models.Spring, 30))

	model, err := Fit(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, model.Intercept, 1e-9)
	require.Len(t, model.Coefficients, 2)
	assert.InDelta(t, 0.1, model.Coefficients[ColTemperature], 1e-9)
	assert.InDelta(t, -0.02, model.Coefficients[ColZenithAngle], 1e-9)
	assert.InDelta(t, 1.0, model.Score(x, y), 1e-9)
}

func TestFitConstantTemperature(t *testing.T) {
	rows := linearRows(models.Winter, 20)
	for i := range rows {
		rows[i].Temperature = 5
		rows[i].Irradiance = 2 + 0.1*5 - 0.02*rows[i].ZenithAngle
	}
	x, y := Design(rows)

	model, err := Fit(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, model.Coefficients[ColTemperature], 1e-9)
	assert.InDelta(t, -0.02, model.Coefficients[ColZenithAngle], 1e-9)
	assert.InDelta(t, 2.5, model.Intercept, 1e-9)
	assert.InDelta(t, 1.0, model.Score(x, y), 1e-9)

	results, failures := NewRunner(0.2, DefaultSeed).RunBySeason(rows)
	assert.Empty(t, failures)
	require.Contains(t, results, models.Winter)
	assert.InDelta(t, 0.0, results[models.Winter].Metrics.MAE, 1e-9)
}

func TestFitCollinearPredictors(t *testing.T) {
	rows := linearRows(models.Spring, 12)
	for i := range rows {
		rows[i].ZenithAngle = 2 * rows[i].Temperature
		rows[i].Irradiance = 1 + 0.3*rows[i].Temperature
	}
	x, y := Design(rows)

	model, err := Fit(x, y)
	require.NoError(t, err)
	// minimum-norm split of the 0.3 slope across T and Z = 2T
	assert.InDelta(t, 0.06, model.Coefficients[ColTemperature], 1e-9)
	assert.InDelta(t, 0.12, model.Coefficients[ColZenithAngle], 1e-9)
	assert.InDelta(t, 1.0, model.Intercept, 1e-9)
}

func TestFitUnderdetermined(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	_, err := Fit(x, []float64{1, 2})
	assert.True(t, errors.Is(err, ErrUnderdetermined))

	_, err = Fit(x, []float64{1})
	assert.Error(t, err)
}

func TestErrorMetrics(t *testing.T) {
	observed := []float64{1, 2, 3, 4}
	predicted := []float64{1.5, 2, 2, 4}

	assert.InDelta(t, 0.375, MeanAbsoluteError(observed, predicted), 1e-12)
	assert.InDelta(t, 0.3125, MeanSquaredError(observed, predicted), 1e-12)
	// SSres = 1.25, SStot = 5
	assert.InDelta(t, 0.75, RSquared(observed, predicted), 1e-12)

	assert.Equal(t, 0.0, MeanAbsoluteError(nil, nil))
	assert.Equal(t, 0.0, MeanSquaredError(nil, nil))
}

func TestRSquaredConstantObservations(t *testing.T) {
	assert.Equal(t, 1.0, RSquared([]float64{2, 2}, []float64{2, 2}))
	assert.Equal(t, 0.0, RSquared([]float64{2, 2}, []float64{1, 3}))
	assert.Equal(t, 0.0, RSquared([]float64{2}, []float64{1.5}))
}

func TestRunBySeason(t *testing.T) {
	var rows []models.FeatureRecord
	rows = append(rows, linearRows(models.Winter, 40)...)
	rows = append(rows, linearRows(models.Summer, 1)...)
	rows = append(rows, linearRows(models.Fall, 3)...)

	runner := NewRunner(0.2, DefaultSeed)
	results, failures := runner.RunBySeason(rows)

	require.Contains(t, results, models.Winter)
	winter := results[models.Winter]
	assert.Equal(t, 40, winter.Records)
	assert.Len(t, winter.Predictions, 8)
	assert.Len(t, winter.Split.YTest, 8)
	assert.InDelta(t, 1.0, winter.Metrics.R2, 1e-9)
	assert.InDelta(t, 0.0, winter.Metrics.MAE, 1e-9)
	assert.InDelta(t, 1.0, winter.Metrics.TrainR2, 1e-9)
	assert.Contains(t, winter.Equation(), "* Temperature")

	require.Contains(t, failures, models.Summer)
	assert.True(t, errors.Is(failures[models.Summer], models.ErrInsufficientSeasonData))

	// 3 rows leave 2 for training, fewer than the 3 coefficients
	require.Contains(t, failures, models.Fall)
	assert.True(t, errors.Is(failures[models.Fall], models.ErrInsufficientSeasonData))

	assert.NotContains(t, results, models.Spring)
	assert.NotContains(t, failures, models.Spring)
}

func TestNewRunnerDefaults(t *testing.T) {
	assert.Equal(t, DefaultTestFraction, NewRunner(0, 1).TestFraction)
	assert.Equal(t, DefaultTestFraction, NewRunner(1.5, 1).TestFraction)
	assert.Equal(t, 0.3, NewRunner(0.3, 1).TestFraction)
}

func TestFormatEquation(t *testing.T) {
	m := &Model{Intercept: 1.5, Coefficients: []float64{0.25, -0.125}}
	assert.Equal(t, "y = 0.2500 * Temperature + -0.1250 * Solar Zenith Angle + 1.5000", FormatEquation(m))
	assert.Equal(t, "", FormatEquation(nil))
}
