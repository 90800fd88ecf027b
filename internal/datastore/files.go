// Package datastore keeps raw and cleaned series as JSON files under the data directory.
package datastore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"solar-platform/internal/models"
)

// FileStore reads and writes dataset files in one directory
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the root directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Path joins name onto the root directory
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// RawFileName names the raw series of one point and date range
func RawFileName(lat, lon float64, start, end string) string {
	return fmt.Sprintf("solar_data_%s_%s_%s_to_%s.json", formatCoord(lat), formatCoord(lon), start, end)
}

// CleanedFileName names the cleaned records of one point and date range
func CleanedFileName(lat, lon float64, start, end string) string {
	return fmt.Sprintf("cleaned_solar_data_%s_%s_%s_to_%s.json", formatCoord(lat), formatCoord(lon), start, end)
}

// formatCoord keeps every significant digit so nearby points get distinct files
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SaveRaw writes a RawSeriesSet and returns the file path
func (s *FileStore) SaveRaw(name string, raw models.RawSeriesSet) (string, error) {
	return s.writeJSON(name, raw)
}

// LoadRaw reads a RawSeriesSet. Numbers are kept as json.Number so the
// cleaner sees exactly what the provider sent.
func (s *FileStore) LoadRaw(name string) (models.RawSeriesSet, error) {
	return LoadRawFile(s.Path(name))
}

// LoadRawFile reads a RawSeriesSet from an arbitrary path
func LoadRawFile(path string) (models.RawSeriesSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw file: %w", err)
	}
	defer f.Close()

	decoder := json.NewDecoder(f)
	decoder.UseNumber()

	var raw models.RawSeriesSet
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode raw file %s: %w", path, err)
	}
	return raw, nil
}

// SaveCleaned writes cleaned records as a JSON array with ISO-8601
// timestamps and null for missing values
func (s *FileStore) SaveCleaned(name string, records []models.CleanedRecord) (string, error) {
	if records == nil {
		records = []models.CleanedRecord{}
	}
	return s.writeJSON(name, records)
}

// LoadCleaned reads records written by SaveCleaned
func (s *FileStore) LoadCleaned(name string) ([]models.CleanedRecord, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read cleaned file: %w", err)
	}

	var records []models.CleanedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode cleaned file %s: %w", name, err)
	}
	return records, nil
}

// writeJSON writes to a temp file and renames it so readers never see a partial file
func (s *FileStore) writeJSON(name string, v interface{}) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	path := s.Path(name)
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move %s into place: %w", name, err)
	}

	return path, nil
}
