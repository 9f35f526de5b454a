// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/quentinrf/plant-monitor/services/apds-service/internal/domain"
	"github.com/quentinrf/plant-monitor/services/apds-service/internal/ports"
	"github.com/quentinrf/plant-monitor/services/apds-service/pkg/tlsconfig"
)

// Config holds application configuration
type Config struct {
	Port       string
	RepoType   string // "memory" | "sqlite" | "mysql"
	DBPath     string // SQLite database file path (used when RepoType=sqlite)
	MySQLDSN   string // go-sql-driver DSN (used when RepoType=mysql)
	DriverType string // "mock" | "periph" | "ch347"
	I2CBus     string // periph bus name, empty for the first one

	Schedule      domain.Schedule
	Intervals     map[domain.Mode]time.Duration
	Warmup        time.Duration
	ProximityGain ports.ProximityGain
	Retention     time.Duration

	LogLevel zerolog.Level
	TLS      tlsconfig.Files
}

// Load reads configuration from environment variables.
// Variables are first filled from the given .env files (".env" when none is
// given); files that do not exist are skipped and real environment variables win.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := Config{
		Port:       getenv("PORT", "50052"),
		RepoType:   getenv("REPO_TYPE", "memory"),
		DBPath:     getenv("DB_PATH", "./apds.db"),
		MySQLDSN:   os.Getenv("MYSQL_DSN"),
		DriverType: getenv("DRIVER_TYPE", "mock"),
		I2CBus:     os.Getenv("I2C_BUS"),
		Intervals:  map[domain.Mode]time.Duration{},
		TLS: tlsconfig.Files{
			Cert: os.Getenv("TLS_CERT"),
			Key:  os.Getenv("TLS_KEY"),
			CA:   os.Getenv("TLS_CA"),
		},
	}

	var err error

	cfg.Schedule = domain.DefaultSchedule()
	if s := os.Getenv("SCHEDULE"); s != "" {
		if cfg.Schedule, err = domain.ParseSchedule(s); err != nil {
			return Config{}, fmt.Errorf("SCHEDULE: %w", err)
		}
	}

	for mode, name := range map[domain.Mode]string{
		domain.ModeLight:     "LIGHT_INTERVAL",
		domain.ModeProximity: "PROXIMITY_INTERVAL",
		domain.ModeGesture:   "GESTURE_INTERVAL",
	} {
		if cfg.Intervals[mode], err = duration(name, mode.DefaultPollInterval()); err != nil {
			return Config{}, err
		}
	}

	if cfg.Warmup, err = duration("WARMUP", ports.DefaultWarmup); err != nil {
		return Config{}, err
	}
	if cfg.Retention, err = duration("RETENTION", ports.DefaultRetention); err != nil {
		return Config{}, err
	}

	if cfg.ProximityGain, err = ports.ParseProximityGain(getenv("PROXIMITY_GAIN", "2x")); err != nil {
		return Config{}, fmt.Errorf("PROXIMITY_GAIN: %w", err)
	}

	if cfg.LogLevel, err = zerolog.ParseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	switch cfg.RepoType {
	case "memory", "sqlite":
	case "mysql":
		if cfg.MySQLDSN == "" {
			return Config{}, fmt.Errorf("MYSQL_DSN is required when REPO_TYPE=mysql")
		}
	default:
		return Config{}, fmt.Errorf("REPO_TYPE: unknown repository %q", cfg.RepoType)
	}

	switch cfg.DriverType {
	case "mock", "periph", "ch347":
	default:
		return Config{}, fmt.Errorf("DRIVER_TYPE: unknown driver %q", cfg.DriverType)
	}

	return cfg, nil
}

// SessionOptions turns the sensing settings into session options
func (c Config) SessionOptions() []ports.SessionOption {
	opts := []ports.SessionOption{
		ports.WithWarmup(c.Warmup),
		ports.WithProximityGain(c.ProximityGain),
	}
	for mode, interval := range c.Intervals {
		opts = append(opts, ports.WithPollInterval(mode, interval))
	}
	return opts
}

func getenv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// duration reads a positive duration, or fallback when the variable is unset
func duration(name string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(name)
	if s == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: %w: %s", name, domain.ErrInvalidValue, s)
	}
	return d, nil
}
