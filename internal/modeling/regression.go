package modeling

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrUnderdetermined is returned when there are fewer rows than coefficients
var ErrUnderdetermined = errors.New("fewer observations than coefficients")

// Model is an ordinary least squares fit with intercept
type Model struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Fit solves y = b0 + b·x in the least squares sense.
// Predictors and target are centered and the slopes are the minimum-norm
// SVD solution. A rank-deficient partition (constant temperature, collinear
// columns) still fits; a constant column gets a zero coefficient.
func Fit(x mat.Matrix, y []float64) (*Model, error) {
	rows, cols := x.Dims()
	if rows != len(y) {
		return nil, fmt.Errorf("fit: %d rows but %d targets", rows, len(y))
	}
	if rows < cols+1 {
		return nil, fmt.Errorf("fit: %w: %d rows, %d coefficients", ErrUnderdetermined, rows, cols+1)
	}

	means := make([]float64, cols)
	column := make([]float64, rows)
	centered := mat.NewDense(rows, cols, nil)
	for j := 0; j < cols; j++ {
		mat.Col(column, j, x)
		means[j] = stat.Mean(column, nil)
		for i := 0; i < rows; i++ {
			centered.Set(i, j, column[i]-means[j])
		}
	}

	yMean := stat.Mean(y, nil)
	yCentered := make([]float64, rows)
	copy(yCentered, y)
	floats.AddConst(-yMean, yCentered)

	coefs := make([]float64, cols)
	var svd mat.SVD
	if !svd.Factorize(centered, mat.SVDThin) {
		return nil, errors.New("fit: singular value decomposition failed")
	}
	if rank := svd.Rank(rankTolerance); rank > 0 {
		var beta mat.VecDense
		svd.SolveVecTo(&beta, mat.NewVecDense(rows, yCentered), rank)
		for j := range coefs {
			coefs[j] = beta.AtVec(j)
		}
	}

	return &Model{
		Intercept:    yMean - floats.Dot(coefs, means),
		Coefficients: coefs,
	}, nil
}

// rankTolerance is the singular value cutoff relative to the largest one.
// Smaller values are treated as zero, dropping that direction from the fit.
const rankTolerance = 1e-10

// Predict evaluates the model on every row of x
func (m *Model) Predict(x mat.Matrix) []float64 {
	if x == nil {
		return nil
	}
	rows, cols := x.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		v := m.Intercept
		for j := 0; j < cols && j < len(m.Coefficients); j++ {
			v += m.Coefficients[j] * x.At(i, j)
		}
		out[i] = v
	}
	return out
}

// Score returns the coefficient of determination of the model on (x, y)
func (m *Model) Score(x mat.Matrix, y []float64) float64 {
	return RSquared(y, m.Predict(x))
}

// Metrics summarizes model error on a held-out set
type Metrics struct {
	MAE     float64 `json:"mae"`
	MSE     float64 `json:"mse"`
	R2      float64 `json:"r2"`
	TrainR2 float64 `json:"train_r2"`
}

// MeanAbsoluteError of predictions against observations
func MeanAbsoluteError(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}
	return floats.Distance(observed, predicted, 1) / float64(len(observed))
}

// MeanSquaredError of predictions against observations
func MeanSquaredError(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}
	d := floats.Distance(observed, predicted, 2)
	return d * d / float64(len(observed))
}

// RSquared of predictions against observations.
// Constant observations score 1 when predicted exactly and 0 otherwise, so
// the result is always finite.
func RSquared(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}
	if len(observed) < 2 || stat.Variance(observed, nil) == 0 {
		if floats.EqualApprox(observed, predicted, 1e-12) {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(predicted, observed, nil)
}
