// Package config loads and validates the monitor's YAML configuration.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-monitor/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the monitoring process.
type Config struct {
	// LogLevel sets the minimum log level; empty defaults to info.
	LogLevel     string             `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Monitor      MonitorConfig      `yaml:"monitor" json:"monitor" validate:"required"`
	Strategy     StrategyConfig     `yaml:"strategy" json:"strategy" validate:"required"`
	MarketData   MarketDataConfig   `yaml:"market_data" json:"market_data" validate:"required"`
	Notification NotificationConfig `yaml:"notification" json:"notification"`
	Storage      StorageConfig      `yaml:"storage" json:"storage"`
}

// MarketDataConfig configures the market data provider.
type MarketDataConfig struct {
	// LookbackDays is the daily-bar history window fetched per symbol.
	LookbackDays int `yaml:"lookback_days" json:"lookback_days" validate:"required,gt=0"`
	// Indexes maps an index name to its constituent symbols.
	Indexes map[string][]string `yaml:"indexes" json:"indexes"`
}

// MonitorConfig controls the polling loop.
type MonitorConfig struct {
	// Interval is the polling interval between evaluation cycles.
	Interval time.Duration `yaml:"interval" json:"interval" jsonschema:"title=Interval,description=Polling interval between evaluation cycles" validate:"required"`
	// Symbols is the symbol universe screened each cycle.
	Symbols []string `yaml:"symbols" json:"symbols" jsonschema:"title=Symbols,description=Symbol universe to screen" validate:"required,min=1"`
	// BatchSize chunks the universe into evaluation batches per cycle.
	// Zero evaluates the whole universe as a single batch.
	BatchSize int `yaml:"batch_size" json:"batch_size" jsonschema:"title=Batch Size,description=Symbols evaluated per batch; 0 means one batch,minimum=0" validate:"gte=0"`
	// InitialCapital is the capital base used for fixed-fractional sizing.
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Capital base for position sizing in USD,minimum=0" validate:"gt=0"`
}

// UnmarshalYAML implements custom unmarshaling so the interval can be written
// as a duration string like "15m" or "1h".
func (m *MonitorConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawMonitorConfig struct {
		Interval       string   `yaml:"interval"`
		Symbols        []string `yaml:"symbols"`
		BatchSize      int      `yaml:"batch_size"`
		InitialCapital float64  `yaml:"initial_capital"`
	}

	var raw rawMonitorConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	interval, err := time.ParseDuration(raw.Interval)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid monitor interval %q", raw.Interval)
	}

	m.Interval = interval
	m.Symbols = raw.Symbols
	m.BatchSize = raw.BatchSize
	m.InitialCapital = raw.InitialCapital

	return nil
}

// StrategyConfig holds the signal-generation parameters recognized by the core.
type StrategyConfig struct {
	// Name selects the strategy variant: bollinger, mean_reversion or composite.
	Name string `yaml:"name" json:"name" validate:"required,oneof=bollinger mean_reversion composite"`
	// MAPeriod is the moving-average period for the distance screen (e.g. 120 days).
	MAPeriod int `yaml:"ma_period" json:"ma_period" validate:"required,gt=0"`
	// BollingerPeriod and BollingerStdDev parameterize the bands.
	BollingerPeriod int     `yaml:"bollinger_period" json:"bollinger_period" validate:"required,gt=0"`
	BollingerStdDev float64 `yaml:"bollinger_std" json:"bollinger_std" validate:"required,gt=0"`
	// ThresholdLargeCap is the (tighter) deviation threshold for large caps, e.g. 0.08.
	ThresholdLargeCap float64 `yaml:"threshold_large_cap" json:"threshold_large_cap" validate:"required,gt=0"`
	// ThresholdSmallCap is the (looser) deviation threshold for everything else, e.g. 0.20.
	ThresholdSmallCap float64 `yaml:"threshold_small_cap" json:"threshold_small_cap" validate:"required,gt=0"`
	// LargeCapCutoff is the market cap at or above which a symbol is large-cap, e.g. 300e9.
	LargeCapCutoff float64 `yaml:"large_cap_cutoff" json:"large_cap_cutoff" validate:"required,gt=0"`
	// MidCapCutoff splits the remaining symbols into mid and small cap.
	MidCapCutoff float64 `yaml:"mid_cap_cutoff" json:"mid_cap_cutoff" validate:"required,gt=0,ltfield=LargeCapCutoff"`
	// RiskRewardRatio is the target distance multiple used to place targets.
	RiskRewardRatio float64 `yaml:"risk_reward_ratio" json:"risk_reward_ratio" validate:"required,gt=0"`
	// MinConfidence is the minimum signal confidence acted upon.
	MinConfidence float64 `yaml:"min_confidence" json:"min_confidence" validate:"gte=0,lte=1"`
	// RiskFraction is the fraction of capital risked per trade (fixed-fractional sizing).
	RiskFraction float64 `yaml:"risk_fraction" json:"risk_fraction" validate:"required,gt=0,lte=1"`
	// StopLossBuffer widens the stop below the band or pattern low, as a price fraction.
	StopLossBuffer float64 `yaml:"stop_loss_buffer" json:"stop_loss_buffer" validate:"gte=0"`
}

// NotificationConfig configures the webhook sink.
type NotificationConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	WebhookURL string `yaml:"webhook_url" json:"webhook_url" validate:"required_if=Enabled true,omitempty,url"`
}

// StorageConfig configures the persistence store.
type StorageConfig struct {
	// Path is the DuckDB database path; empty means in-memory.
	Path string `yaml:"path" json:"path"`
}

// Parse unmarshals and validates a YAML configuration document.
func Parse(content []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return Parse(content)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the configuration.
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
	}

	return reflector.Reflect(c)
}
