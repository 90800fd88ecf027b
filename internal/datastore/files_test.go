package datastore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solar-platform/internal/models"
)

func TestFileNames(t *testing.T) {
	assert.Equal(t, "solar_data_51.54501_-0.00564_20230101_to_20240101.json", RawFileName(51.54501, -0.00564, "20230101", "20240101"))
	assert.Equal(t, "cleaned_solar_data_51.54501_-0.00564_20230101_to_20240101.json", CleanedFileName(51.54501, -0.00564, "20230101", "20240101"))
	assert.Equal(t, "solar_data_51_0.5_20240601_to_20240630.json", RawFileName(51, 0.5, "20240601", "20240630"))
}

func TestFileNamesDistinguishLocations(t *testing.T) {
	london := CleanedFileName(51.5, -0.1, "20240601", "20240601")
	paris := CleanedFileName(48.85, 2.35, "20240601", "20240601")
	nearby := CleanedFileName(51.504, -0.1, "20240601", "20240601")

	assert.NotEqual(t, london, paris)
	assert.NotEqual(t, london, nearby)
	assert.NotEqual(t, RawFileName(51.5, -0.1, "20240601", "20240601"), RawFileName(48.85, 2.35, "20240601", "20240601"))
}

func TestRawRoundTripKeepsNumbers(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "data"))
	raw := models.RawSeriesSet{
		models.ParamIrradiance: {"2024060112": 0.61, "2024060113": -999.0},
	}

	path, err := store.SaveRaw(RawFileName(51.5, -0.1, "20240601", "20240601"), raw)
	require.NoError(t, err)
	assert.FileExists(t, path)

	loaded, err := store.LoadRaw(RawFileName(51.5, -0.1, "20240601", "20240601"))
	require.NoError(t, err)
	assert.Equal(t, json.Number("0.61"), loaded[models.ParamIrradiance]["2024060112"])
	assert.Equal(t, json.Number("-999"), loaded[models.ParamIrradiance]["2024060113"])
}

func TestCleanedFileFormat(t *testing.T) {
	store := NewFileStore(t.TempDir())
	records := []models.CleanedRecord{
		{
			Timestamp:   time.Date(2023, 6, 1, 1, 0, 0, 0, time.UTC),
			Irradiance:  nil,
			Temperature: models.Float(16),
			ZenithAngle: models.Float(82),
		},
	}

	path, err := store.SaveCleaned(CleanedFileName(51.5, -0.1, "20230601", "20230601"), records)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(data)
	assert.True(t, strings.HasPrefix(body, "["))
	assert.Contains(t, body, `"timestamp":"2023-06-01T01:00:00Z"`)
	assert.Contains(t, body, `"irradiance":null`)

	loaded, err := store.LoadCleaned(CleanedFileName(51.5, -0.1, "20230601", "20230601"))
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].Timestamp.Equal(records[0].Timestamp))
	assert.Nil(t, loaded[0].Irradiance)
	assert.Equal(t, 16.0, *loaded[0].Temperature)
}

func TestLoadRawMissingFile(t *testing.T) {
	_, err := NewFileStore(t.TempDir()).LoadRaw("nope.json")
	assert.Error(t, err)
}
