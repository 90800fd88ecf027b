package modeling

import (
	"errors"

	"solar-platform/internal/models"
)

// Default split settings; seed 4 keeps runs reproducible
const (
	DefaultTestFraction = 0.2
	DefaultSeed         = 4
)

// SeasonResult is everything downstream reporting needs for one season
type SeasonResult struct {
	Season      models.Season `json:"season"`
	Model       *Model        `json:"model"`
	Predictions []float64     `json:"predictions"`
	Split       *Split        `json:"-"`
	Metrics     Metrics       `json:"metrics"`
	Records     int           `json:"records"`
}

// Equation renders the fitted model as a readable formula
func (r *SeasonResult) Equation() string {
	return FormatEquation(r.Model)
}

// Runner partitions feature rows by season and fits one model per partition
type Runner struct {
	TestFraction float64
	Seed         int64
}

// NewRunner creates a runner; non-positive fractions fall back to the default
func NewRunner(testFraction float64, seed int64) *Runner {
	if testFraction <= 0 || testFraction >= 1 {
		testFraction = DefaultTestFraction
	}
	return &Runner{TestFraction: testFraction, Seed: seed}
}

// RunBySeason fits every non-empty season partition in code order.
// A season that cannot be split or fitted is reported in the error map and
// does not stop the others. Empty seasons appear in neither map.
func (r *Runner) RunBySeason(records []models.FeatureRecord) (map[models.Season]*SeasonResult, map[models.Season]error) {
	partitions := Partition(records)
	results := make(map[models.Season]*SeasonResult)
	failures := make(map[models.Season]error)

	for _, season := range models.Seasons {
		rows := partitions[season]
		if len(rows) == 0 {
			continue
		}

		result, err := r.runSeason(season, rows)
		if err != nil {
			failures[season] = err
			continue
		}
		results[season] = result
	}

	return results, failures
}

func (r *Runner) runSeason(season models.Season, rows []models.FeatureRecord) (*SeasonResult, error) {
	split, err := TrainTestSplit(rows, r.TestFraction, r.Seed)
	if err != nil {
		return nil, err
	}

	model, err := Fit(split.XTrain, split.YTrain)
	if err != nil {
		if errors.Is(err, ErrUnderdetermined) {
			return nil, &models.InsufficientSeasonDataError{
				Season:   season,
				Records:  len(split.Train),
				Required: numPredictors + 1,
				Stage:    "regression fit",
			}
		}
		return nil, err
	}

	predictions := model.Predict(split.XTest)

	return &SeasonResult{
		Season:      season,
		Model:       model,
		Predictions: predictions,
		Split:       split,
		Records:     len(rows),
		Metrics: Metrics{
			MAE:     MeanAbsoluteError(split.YTest, predictions),
			MSE:     MeanSquaredError(split.YTest, predictions),
			R2:      RSquared(split.YTest, predictions),
			TrainR2: model.Score(split.XTrain, split.YTrain),
		},
	}, nil
}

// Partition groups feature rows by season code
func Partition(records []models.FeatureRecord) map[models.Season][]models.FeatureRecord {
	out := make(map[models.Season][]models.FeatureRecord)
	for _, rec := range records {
		out[rec.Season] = append(out[rec.Season], rec)
	}
	return out
}
