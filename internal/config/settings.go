package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Settings are process-level options read from the environment. Command-line
// flags override them.
type Settings struct {
	LogLevel  string // debug | info | warn | error
	LogFormat string // text | json
	Returns   string // path to the historical returns CSV
	Seed      *int64 // fixed Monte Carlo seed, nil for a random one
	Store     string // SQLite DSN for run history, "" disables it
	Addr      string // listen address for serve
	Workers   int
}

// Environment variable names.
const (
	EnvLogLevel  = "RETIRESIM_LOG_LEVEL"
	EnvLogFormat = "RETIRESIM_LOG_FORMAT"
	EnvReturns   = "RETIRESIM_RETURNS"
	EnvSeed      = "RETIRESIM_SEED"
	EnvStore     = "RETIRESIM_STORE"
	EnvAddr      = "RETIRESIM_ADDR"
	EnvWorkers   = "RETIRESIM_WORKERS"
)

// LoadSettings loads the given .env files (or ./.env when none are named) if
// present, then reads RETIRESIM_* variables over the defaults.
func LoadSettings(envFiles ...string) (*Settings, error) {
	// Missing .env files are not an error.
	_ = godotenv.Load(envFiles...)

	s := &Settings{}
	s.LogLevel = os.Getenv(EnvLogLevel)
	s.LogFormat = os.Getenv(EnvLogFormat)
	s.Returns = os.Getenv(EnvReturns)
	s.Store = os.Getenv(EnvStore)
	s.Addr = os.Getenv(EnvAddr)

	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config.LoadSettings: %s=%q: %w", EnvSeed, v, err)
		}
		s.Seed = &seed
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config.LoadSettings: %s=%q: %w", EnvWorkers, v, err)
		}
		s.Workers = n
	}

	setDefaults(s)
	return s, nil
}

func setDefaults(s *Settings) {
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.LogFormat == "" {
		s.LogFormat = "text"
	}
	if s.Addr == "" {
		s.Addr = ":8080"
	}
	if s.Workers < 0 {
		s.Workers = 0
	}
}
