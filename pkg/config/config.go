// Package config assembles the run parameters from flags, environment
// (LNRANK_*) and an optional .lnrank.yaml file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dd0wney/lnrank/pkg/graph"
	"github.com/dd0wney/lnrank/pkg/logging"
	"github.com/dd0wney/lnrank/pkg/validation"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "LNRANK"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// ErrConflictingConfiguration is returned when both freshness thresholds are set.
var ErrConflictingConfiguration = errors.New("min_last_update and max_channel_inactivity are mutually exclusive")

// Viper keys.
const (
	KeyTargetNode           = "target_node"
	KeyMinCapacity          = "min_capacity"
	KeyMinLastUpdate        = "min_last_update"
	KeyMaxChannelInactivity = "max_channel_inactivity"
	KeyStrict               = "strict"
	KeyWorkers              = "workers"
	KeyLimit                = "limit"
	KeyGraph                = "graph"
	KeyFormat               = "format"
	KeyTop                  = "top"
	KeyMetricsFile          = "metrics_file"
	KeyLogLevel             = "log_level"
)

// MaxWorkers caps the worker pool size accepted from configuration.
const MaxWorkers = 4096

// DefaultGraph is where the graph dump is read from when none is given.
const DefaultGraph = "assets/graph.json"

// Config holds all run parameters.
type Config struct {
	TargetNode  string `mapstructure:"target_node" yaml:"target_node" json:"target_node" validate:"required,nodeid"`
	MinCapacity int64  `mapstructure:"min_capacity" yaml:"min_capacity" json:"min_capacity"`

	// At most one of the two freshness thresholds may be set (seconds).
	MinLastUpdate        *int64 `mapstructure:"-" yaml:"min_last_update,omitempty" json:"min_last_update,omitempty"`
	MaxChannelInactivity *int64 `mapstructure:"-" yaml:"max_channel_inactivity,omitempty" json:"max_channel_inactivity,omitempty"`

	Strict      bool   `mapstructure:"strict" yaml:"strict" json:"strict"`
	Workers     int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	Limit       int    `mapstructure:"limit" yaml:"limit" json:"limit"`
	Graph       string `mapstructure:"graph" yaml:"graph" json:"graph"`
	Format      string `mapstructure:"format" yaml:"format" json:"format"`
	Top         int    `mapstructure:"top" yaml:"top" json:"top"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file,omitempty" json:"metrics_file,omitempty"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
}

// Default returns a Config with every default applied and no target.
func Default() Config {
	return Config{
		MinCapacity: graph.DefaultMinCapacity,
		Graph:       DefaultGraph,
		Format:      FormatText,
		LogLevel:    "info",
	}
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyTargetNode, d.TargetNode)
	v.SetDefault(KeyMinCapacity, d.MinCapacity)
	v.SetDefault(KeyStrict, d.Strict)
	v.SetDefault(KeyWorkers, d.Workers)
	v.SetDefault(KeyLimit, d.Limit)
	v.SetDefault(KeyGraph, d.Graph)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyTop, d.Top)
	v.SetDefault(KeyMetricsFile, d.MetricsFile)
	v.SetDefault(KeyLogLevel, d.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	// Thresholds have no default, so bind them explicitly for IsSet.
	_ = v.BindEnv(KeyMinLastUpdate)
	_ = v.BindEnv(KeyMaxChannelInactivity)
}

// Load reads the configuration held by v (flags, env, config file, defaults)
// and validates it.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if v.IsSet(KeyMinLastUpdate) {
		n := v.GetInt64(KeyMinLastUpdate)
		cfg.MinLastUpdate = &n
	}
	if v.IsSet(KeyMaxChannelInactivity) {
		n := v.GetInt64(KeyMaxChannelInactivity)
		cfg.MaxChannelInactivity = &n
	}

	cfg.Format = strings.ToLower(cfg.Format)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration. Setting both freshness thresholds
// yields an error wrapping ErrConflictingConfiguration, even when other
// fields are invalid as well.
func (c Config) Validate() error {
	structErr := validation.Struct(c)

	rulesErr := validation.NewConfigValidator("Config").
		Required("Graph", c.Graph).
		NonNegative64("MinCapacity", c.MinCapacity).
		NonNegative("Workers", c.Workers).
		MaxInt("Workers", c.Workers, MaxWorkers).
		NonNegative("Limit", c.Limit).
		NonNegative("Top", c.Top).
		OneOf("Format", validation.DefaultOr(c.Format, FormatText), Formats).
		Custom("LogLevel", func() error {
			if _, ok := logging.LookupLevel(validation.DefaultOr(c.LogLevel, "info")); !ok {
				return fmt.Errorf("unknown level %q", c.LogLevel)
			}
			return nil
		}).
		Custom("Thresholds", func() error {
			if c.MinLastUpdate != nil && c.MaxChannelInactivity != nil {
				return ErrConflictingConfiguration
			}
			return nil
		}).
		When(c.MinLastUpdate != nil, func(cv *validation.ConfigValidator) {
			cv.NonNegative64("MinLastUpdate", *c.MinLastUpdate)
		}).
		When(c.MaxChannelInactivity != nil, func(cv *validation.ConfigValidator) {
			cv.NonNegative64("MaxChannelInactivity", *c.MaxChannelInactivity)
		}).
		Validate()

	return errors.Join(structErr, rulesErr)
}

// EffectiveMinLastUpdate resolves the freshness threshold: MinLastUpdate
// when set, now minus MaxChannelInactivity when that is set, else 0.
func (c Config) EffectiveMinLastUpdate(now time.Time) int64 {
	switch {
	case c.MinLastUpdate != nil:
		return *c.MinLastUpdate
	case c.MaxChannelInactivity != nil:
		return now.Unix() - *c.MaxChannelInactivity
	default:
		return 0
	}
}

// BuildOptions converts the configuration into graph build options.
func (c Config) BuildOptions(now time.Time) graph.BuildOptions {
	return graph.BuildOptions{
		MinCapacity:   c.MinCapacity,
		MinLastUpdate: c.EffectiveMinLastUpdate(now),
		Strict:        c.Strict,
	}
}
