package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "RE", cfg.Power.Community)
	assert.Equal(t, "20230101", cfg.Location.StartDate)
	assert.Equal(t, 0.2, cfg.Model.TestFraction)
	assert.Equal(t, int64(4), cfg.Model.Seed)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOCATION_LATITUDE", "40.7")
	t.Setenv("LOCATION_START_DATE", "20240601")
	t.Setenv("LOCATION_END_DATE", "20240630")
	t.Setenv("POWER_TIMEOUT", "5s")
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("SCHEDULER_INTERVAL", "6h")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 40.7, cfg.Location.Latitude)
	assert.Equal(t, 5*time.Second, cfg.Power.Timeout)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 6*time.Hour, cfg.Scheduler.Interval)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigRejectsMalformedValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")
	t.Setenv("MODEL_TEST_FRACTION", "a fifth")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "MODEL_TEST_FRACTION")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"latitude", func(c *Config) { c.Location.Latitude = 91 }, "LOCATION_LATITUDE"},
		{"longitude", func(c *Config) { c.Location.Longitude = -181 }, "LOCATION_LONGITUDE"},
		{"start date", func(c *Config) { c.Location.StartDate = "2023-01-01" }, "invalid start date"},
		{"date order", func(c *Config) { c.Location.EndDate = "20220101" }, "before start date"},
		{"test fraction", func(c *Config) { c.Model.TestFraction = 1 }, "MODEL_TEST_FRACTION"},
		{"grid interval", func(c *Config) { c.Grid.Interval = 0 }, "GRID_INTERVAL"},
		{"port", func(c *Config) { c.Server.Port = 0 }, "SERVER_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
