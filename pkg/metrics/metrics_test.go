package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorRecordsPipelineMetrics(t *testing.T) {
	c := NewCollectorWith(prometheus.NewRegistry(), "solar_test")

	c.RecordCleaning(48, 3, 1, 0, true)
	c.RecordCleaning(24, 0, 0, 0, false)
	c.RecordFeatureSelection(10, 4, 2)
	c.RecordSeasonModel("Summer", 0.81, 0.05, 0.004)
	c.RecordSeasonFailure("Fall")
	c.RecordIntegrityError("non_numeric_column")

	assert.Equal(t, 72.0, testutil.ToFloat64(c.RecordsCleanedTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.MissingValuesTotal.WithLabelValues("irradiance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.GapsDetectedTotal))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.FeaturesSelected))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.FeaturesDropped.WithLabelValues("zero_irradiance")))
	assert.Equal(t, 0.81, testutil.ToFloat64(c.SeasonModelR2.WithLabelValues("Summer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SeasonFailuresTotal.WithLabelValues("Fall")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.IntegrityErrors.WithLabelValues("non_numeric_column")))
}

func TestCollectorsOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollectorWith(prometheus.NewRegistry(), "a")
		NewCollectorWith(prometheus.NewRegistry(), "a")
	})
}
