// Package config defines runtime settings, their defaults and validation.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/DrSkyle/proofscope/pkg/filter"
)

// Config holds every setting the CLI and TUI read.
type Config struct {
	Replay ReplayConfig `mapstructure:"replay"`
	Proof  ProofConfig  `mapstructure:"proof"`
	Watch  WatchConfig  `mapstructure:"watch"`
	AWS    AWSConfig    `mapstructure:"aws"`

	// Filter is a CEL expression hiding nodes that do not match.
	Filter string `mapstructure:"filter" validate:"celexpr"`

	// Telemetry config.
	OtelEndpoint  string `mapstructure:"otel_endpoint" validate:"omitempty,url"`
	SkipTelemetry bool   `mapstructure:"skip_telemetry"`

	JSONLogs bool `mapstructure:"json_logs"`
	Verbose  bool `mapstructure:"verbose"`
}

type ReplayConfig struct {
	// Interval is the delay between two reveals.
	Interval time.Duration `mapstructure:"interval" validate:"min=1ms,max=1m"`
}

type ProofConfig struct {
	// DefaultDepth is the depth proof mode jumps to on entry from the CLI.
	DefaultDepth int `mapstructure:"default_depth" validate:"gte=1,lte=64"`
}

type WatchConfig struct {
	// Debounce is the quiet period after a change before re-ingesting.
	Debounce time.Duration `mapstructure:"debounce" validate:"min=10ms,max=1m"`
}

type AWSConfig struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
	Profile  string `mapstructure:"profile"`
}

// Defaults.
const (
	DefaultReplayInterval = 200 * time.Millisecond
	DefaultProofDepth     = 1
	DefaultWatchDebounce  = 250 * time.Millisecond
)

// Default returns a configuration with sensible default values.
func Default() Config {
	return Config{
		Replay: ReplayConfig{Interval: DefaultReplayInterval},
		Proof:  ProofConfig{DefaultDepth: DefaultProofDepth},
		Watch:  WatchConfig{Debounce: DefaultWatchDebounce},
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("celexpr", validateCELExpr)
}

func validateCELExpr(fl validator.FieldLevel) bool {
	_, err := filter.Compile(fl.Field().String())
	return err == nil
}

// Validate checks ranges and formats.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SetDefaults registers every key with v so that environment variables
// and config files can override it.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("replay.interval", d.Replay.Interval)
	v.SetDefault("proof.default_depth", d.Proof.DefaultDepth)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("filter", d.Filter)
	v.SetDefault("otel_endpoint", d.OtelEndpoint)
	v.SetDefault("skip_telemetry", d.SkipTelemetry)
	v.SetDefault("json_logs", d.JSONLogs)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("aws.region", d.AWS.Region)
	v.SetDefault("aws.endpoint", d.AWS.Endpoint)
	v.SetDefault("aws.profile", d.AWS.Profile)
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
