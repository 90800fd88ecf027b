package power

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-platform/internal/models"
	"solar-platform/pkg/logging"
	"solar-platform/pkg/metrics"
)

const samplePayload = `{
  "type": "Feature",
  "geometry": {"type": "Point", "coordinates": [-0.00564, 51.54501, 36.4]},
  "properties": {
    "parameter": {
      "ALLSKY_SFC_SW_DWN": {"2024060100": 0.0, "2024060112": 0.61, "2024060113": -999},
      "T2M": {"2024060100": 12.3, "2024060112": 18.9, "2024060113": 19.2},
      "SZA": {"2024060100": 105.2, "2024060112": 32.4, "2024060113": 34.0}
    }
  },
  "messages": []
}`

func newTestClient(baseURL string) *Client {
	return NewClient(Options{
		BaseURL: baseURL,
		Backoff: BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond},
	}, logging.Discard(), metrics.NewCollectorWith(prometheus.NewRegistry(), "power_test"))
}

func TestFetch(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	raw, err := newTestClient(server.URL).Fetch(context.Background(), Query{
		Latitude: 51.54501, Longitude: -0.00564, Start: "20240601", End: "20240601",
	})
	require.NoError(t, err)

	assert.Equal(t, "ALLSKY_SFC_SW_DWN,T2M,SZA", gotQuery["parameters"])
	assert.Equal(t, "RE", gotQuery["community"])
	assert.Equal(t, "51.54501", gotQuery["latitude"])
	assert.Equal(t, "-0.00564", gotQuery["longitude"])
	assert.Equal(t, "20240601", gotQuery["start"])
	assert.Equal(t, "JSON", gotQuery["format"])

	require.Len(t, raw, 3)
	assert.Len(t, raw[models.ParamIrradiance], 3)
	assert.Contains(t, raw[models.ParamTemperature], "2024060112")
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), Query{Latitude: 1, Longitude: 1, Start: "20240601", End: "20240601"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"messages": ["bad range"]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), Query{Latitude: 1, Longitude: 1, Start: "20240601", End: "20240601"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpected))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), Query{Latitude: 1, Longitude: 1, Start: "20240601", End: "20240601"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchEmptyParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"properties": {"parameter": {}}, "messages": ["no data"]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), Query{Latitude: 1, Longitude: 1, Start: "20240601", End: "20240601"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data")
}

func TestQueryValidate(t *testing.T) {
	assert.NoError(t, Query{Latitude: 51.5, Longitude: 0, Start: "20240601", End: "20240630"}.Validate())
	assert.Error(t, Query{Latitude: 95, Longitude: 0, Start: "20240601", End: "20240630"}.Validate())
	assert.Error(t, Query{Latitude: 0, Longitude: 200, Start: "20240601", End: "20240630"}.Validate())
	assert.Error(t, Query{Latitude: 0, Longitude: 0, Start: "2024-06-01", End: "20240630"}.Validate())
}
