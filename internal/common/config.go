package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Stockline
type Config struct {
	Environment string         `toml:"environment"`
	Storage     StorageConfig  `toml:"storage"`
	Clients     ClientsConfig  `toml:"clients"`
	Ingest      IngestConfig   `toml:"ingest"`
	Analysis    AnalysisConfig `toml:"analysis"`
	Report      ReportConfig   `toml:"report"`
	Schedule    ScheduleConfig `toml:"schedule"`
	Logging     LoggingConfig  `toml:"logging"`
}

// StorageConfig holds the base data directory.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	MOEX MOEXConfig `toml:"moex"`
}

// MOEXConfig holds MOEX ISS API configuration
type MOEXConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	PageSize  int    `toml:"page_size"`
	Retries   int    `toml:"retries"`
}

// GetTimeout parses and returns the timeout duration
func (c *MOEXConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// IngestConfig controls ingestion behavior.
type IngestConfig struct {
	InitialLookbackDays int `toml:"initial_lookback_days"`
	Concurrency         int `toml:"concurrency"`
}

// AnalysisConfig holds the indicator window parameters.
type AnalysisConfig struct {
	EMAWindows []int `toml:"ema_windows"`
	RSIPeriod  int   `toml:"rsi_period"`
	ADXPeriod  int   `toml:"adx_period"`
	SRWindow   int   `toml:"sr_window"`
	VolumeBins int   `toml:"volume_bins"`
}

// ReportConfig controls markdown report output.
type ReportConfig struct {
	Dir    string `toml:"dir"`
	Charts bool   `toml:"charts"`
}

// ScheduleConfig holds the cron expression for watch mode.
type ScheduleConfig struct {
	UpdateCron string `toml:"update_cron"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Path: "data",
		},
		Clients: ClientsConfig{
			MOEX: MOEXConfig{
				BaseURL:   "https://iss.moex.com/iss/history/engines/stock/markets/shares/securities",
				RateLimit: 5,
				Timeout:   "10s",
				PageSize:  100,
				Retries:   3,
			},
		},
		Ingest: IngestConfig{
			InitialLookbackDays: 365,
			Concurrency:         1,
		},
		Analysis: AnalysisConfig{
			EMAWindows: []int{20, 50, 200},
			RSIPeriod:  14,
			ADXPeriod:  14,
			SRWindow:   20,
			VolumeBins: 20,
		},
		Report: ReportConfig{
			Dir:    "reports",
			Charts: true,
		},
		Schedule: ScheduleConfig{
			// Weekdays at 19:30, after the MOEX main session close
			UpdateCron: "0 30 19 * * 1-5",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCKLINE_ENV"); env != "" {
		config.Environment = env
	}
	if level := os.Getenv("STOCKLINE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if path := os.Getenv("STOCKLINE_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}
	if url := os.Getenv("STOCKLINE_MOEX_BASE_URL"); url != "" {
		config.Clients.MOEX.BaseURL = url
	}
	if v := os.Getenv("STOCKLINE_INGEST_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Ingest.Concurrency = n
		}
	}
}

// validate rejects parameter values the engines cannot work with.
func validate(config *Config) error {
	a := &config.Analysis
	if len(a.EMAWindows) == 0 {
		a.EMAWindows = []int{20, 50, 200}
	}
	for _, w := range a.EMAWindows {
		if w <= 0 {
			return fmt.Errorf("invalid ema window %d: must be positive", w)
		}
	}
	for name, v := range map[string]int{
		"rsi_period":  a.RSIPeriod,
		"adx_period":  a.ADXPeriod,
		"sr_window":   a.SRWindow,
		"volume_bins": a.VolumeBins,
	} {
		if v <= 0 {
			return fmt.Errorf("invalid %s %d: must be positive", name, v)
		}
	}
	if config.Clients.MOEX.PageSize <= 0 || config.Clients.MOEX.PageSize > 100 {
		return fmt.Errorf("invalid page_size %d: must be 1..100", config.Clients.MOEX.PageSize)
	}
	if config.Ingest.Concurrency <= 0 {
		config.Ingest.Concurrency = 1
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
