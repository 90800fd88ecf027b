// Package modeling fits per-season linear regressions of irradiance on
// temperature and solar zenith angle.
package modeling

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"solar-platform/internal/models"
)

// Predictor column order of every feature matrix
const (
	ColTemperature = 0
	ColZenithAngle = 1
	numPredictors  = 2
)

// MinSplitRecords is the smallest partition that yields a non-empty train and test set
const MinSplitRecords = 2

// Split holds the four datasets of a train/test split.
// Train and Test keep the source rows for reporting.
type Split struct {
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain []float64
	YTest  []float64
	Train  []models.FeatureRecord
	Test   []models.FeatureRecord
}

// TrainTestSplit shuffles records with a seeded permutation and holds out
// ceil(n*testFraction) rows for testing. The same seed always yields the same split.
func TrainTestSplit(records []models.FeatureRecord, testFraction float64, seed int64) (*Split, error) {
	n := len(records)
	if n < MinSplitRecords {
		season := models.SeasonUnknown
		if n > 0 {
			season = records[0].Season
		}
		return nil, &models.InsufficientSeasonDataError{
			Season:   season,
			Records:  n,
			Required: MinSplitRecords,
			Stage:    "train/test split",
		}
	}

	testSize := int(math.Ceil(float64(n) * testFraction))
	if testSize < 1 {
		testSize = 1
	}
	if testSize > n-1 {
		testSize = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	test := make([]models.FeatureRecord, 0, testSize)
	for _, idx := range perm[:testSize] {
		test = append(test, records[idx])
	}
	train := make([]models.FeatureRecord, 0, n-testSize)
	for _, idx := range perm[testSize:] {
		train = append(train, records[idx])
	}

	xTrain, yTrain := Design(train)
	xTest, yTest := Design(test)

	return &Split{
		XTrain: xTrain,
		XTest:  xTest,
		YTrain: yTrain,
		YTest:  yTest,
		Train:  train,
		Test:   test,
	}, nil
}

// Design builds the (temperature, zenith angle) predictor matrix and the
// irradiance target vector
func Design(records []models.FeatureRecord) (*mat.Dense, []float64) {
	if len(records) == 0 {
		return nil, nil
	}

	x := mat.NewDense(len(records), numPredictors, nil)
	y := make([]float64, len(records))
	for i, r := range records {
		x.Set(i, ColTemperature, r.Temperature)
		x.Set(i, ColZenithAngle, r.ZenithAngle)
		y[i] = r.Irradiance
	}
	return x, y
}
