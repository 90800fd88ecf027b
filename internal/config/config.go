package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logging   LoggingConfig
	Power     PowerConfig
	Data      DataConfig
	Location  LocationConfig
	Grid      GridConfig
	Model     ModelConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string
}

// PowerConfig holds NASA POWER API settings
type PowerConfig struct {
	BaseURL         string
	Community       string
	Timeout         time.Duration
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DataConfig holds file locations
type DataConfig struct {
	Dir string
}

// LocationConfig is the point fetched by the ingester and the scheduler.
// Dates use YYYYMMDD.
type LocationConfig struct {
	Name      string
	Latitude  float64
	Longitude float64
	StartDate string
	EndDate   string
}

// GridConfig describes the heatmap grid around Location
type GridConfig struct {
	AreaLatitude  float64
	AreaLongitude float64
	Interval      float64
}

// ModelConfig holds train/test split settings
type ModelConfig struct {
	TestFraction float64
	Seed         int64
}

// SchedulerConfig controls periodic pipeline runs in the server
type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
	Timeout  time.Duration
}

// LoadConfig reads configuration from the environment, loading a .env file
// first when one is present
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("INFO: could not load .env file: %v", err)
	}

	var errs []error
	cfg := &Config{
		Server: ServerConfig{
			Host:         getenvDefault("SERVER_HOST", "0.0.0.0"),
			Port:         getenvInt("SERVER_PORT", 8080, &errs),
			ReadTimeout:  getenvDuration("SERVER_READ_TIMEOUT", 15*time.Second, &errs),
			WriteTimeout: getenvDuration("SERVER_WRITE_TIMEOUT", 120*time.Second, &errs),
			IdleTimeout:  getenvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second, &errs),
		},
		Database: DatabaseConfig{
			Enabled:         getenvBool("DB_ENABLED", true, &errs),
			Host:            getenvDefault("DB_HOST", "localhost"),
			Port:            getenvInt("DB_PORT", 5432, &errs),
			User:            getenvDefault("DB_USER", "solar"),
			Password:        os.Getenv("DB_PASSWORD"),
			Database:        getenvDefault("DB_NAME", "solar_platform"),
			SSLMode:         getenvDefault("DB_SSLMODE", "disable"),
			MaxOpenConns:    getenvInt("DB_MAX_OPEN_CONNS", 25, &errs),
			MaxIdleConns:    getenvInt("DB_MAX_IDLE_CONNS", 5, &errs),
			ConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute, &errs),
			ConnMaxIdleTime: getenvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute, &errs),
		},
		Logging: LoggingConfig{
			Level: getenvDefault("LOG_LEVEL", "info"),
		},
		Power: PowerConfig{
			BaseURL:         getenvDefault("POWER_BASE_URL", "https://power.larc.nasa.gov/api/temporal/hourly/point"),
			Community:       getenvDefault("POWER_COMMUNITY", "RE"),
			Timeout:         getenvDuration("POWER_TIMEOUT", 60*time.Second, &errs),
			MaxRetries:      getenvInt("POWER_MAX_RETRIES", 3, &errs),
			InitialInterval: getenvDuration("POWER_BACKOFF_INITIAL", 500*time.Millisecond, &errs),
			MaxInterval:     getenvDuration("POWER_BACKOFF_MAX", 10*time.Second, &errs),
		},
		Data: DataConfig{
			Dir: getenvDefault("DATA_DIR", "./data"),
		},
		// Defaults: London, calendar year 2023
		Location: LocationConfig{
			Name:      getenvDefault("LOCATION_NAME", "London"),
			Latitude:  getenvFloat("LOCATION_LATITUDE", 51.54501, &errs),
			Longitude: getenvFloat("LOCATION_LONGITUDE", -0.00564, &errs),
			StartDate: getenvDefault("LOCATION_START_DATE", "20230101"),
			EndDate:   getenvDefault("LOCATION_END_DATE", "20240101"),
		},
		Grid: GridConfig{
			AreaLatitude:  getenvFloat("GRID_AREA_LATITUDE", 0.5, &errs),
			AreaLongitude: getenvFloat("GRID_AREA_LONGITUDE", 0.5, &errs),
			Interval:      getenvFloat("GRID_INTERVAL", 0.5, &errs),
		},
		Model: ModelConfig{
			TestFraction: getenvFloat("MODEL_TEST_FRACTION", 0.2, &errs),
			Seed:         int64(getenvInt("MODEL_SEED", 4, &errs)),
		},
		Scheduler: SchedulerConfig{
			Enabled:  getenvBool("SCHEDULER_ENABLED", false, &errs),
			Interval: getenvDuration("SCHEDULER_INTERVAL", 24*time.Hour, &errs),
			Timeout:  getenvDuration("SCHEDULER_TIMEOUT", 10*time.Minute, &errs),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks ranges and formats
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port))
	}
	if c.Database.Enabled && c.Database.MaxOpenConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive"))
	}
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		errs = append(errs, fmt.Errorf("LOCATION_LATITUDE out of range: %v", c.Location.Latitude))
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		errs = append(errs, fmt.Errorf("LOCATION_LONGITUDE out of range: %v", c.Location.Longitude))
	}
	if err := ValidateDateRange(c.Location.StartDate, c.Location.EndDate); err != nil {
		errs = append(errs, err)
	}
	if c.Grid.Interval <= 0 {
		errs = append(errs, fmt.Errorf("GRID_INTERVAL must be positive"))
	}
	if c.Grid.AreaLatitude < 0 || c.Grid.AreaLongitude < 0 {
		errs = append(errs, fmt.Errorf("grid area must not be negative"))
	}
	if c.Model.TestFraction <= 0 || c.Model.TestFraction >= 1 {
		errs = append(errs, fmt.Errorf("MODEL_TEST_FRACTION must be in (0, 1): %v", c.Model.TestFraction))
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval < time.Minute {
		errs = append(errs, fmt.Errorf("SCHEDULER_INTERVAL must be at least 1m"))
	}
	if c.Scheduler.Enabled && c.Scheduler.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("SCHEDULER_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// ValidateDateRange checks two YYYYMMDD dates with start not after end
func ValidateDateRange(start, end string) error {
	s, err := time.Parse("20060102", start)
	if err != nil {
		return fmt.Errorf("invalid start date %q, expected YYYYMMDD", start)
	}
	e, err := time.Parse("20060102", end)
	if err != nil {
		return fmt.Errorf("invalid end date %q, expected YYYYMMDD", end)
	}
	if e.Before(s) {
		return fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return n
}

func getenvFloat(key string, def float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return f
}

func getenvBool(key string, def bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return b
}

func getenvDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return d
}
