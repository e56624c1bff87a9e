package config

import (
	"fmt"
	"time"

	"github.com/kbukum/capdag/logger"
	"github.com/kbukum/capdag/validation"
)

// Execution modes understood by the engine.
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// ServiceConfig contains the fields every capdag process needs.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// EngineConfig selects how graphs are executed.
type EngineConfig struct {
	// Mode is "sequential" (reference behavior) or "parallel".
	Mode string `yaml:"mode" mapstructure:"mode" validate:"oneof=sequential parallel"`
	// Workers bounds the parallel worker pool; 0 means GOMAXPROCS.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=0"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
}

// Config is the root configuration of the capdag CLI.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Engine        EngineConfig    `yaml:"engine" mapstructure:"engine"`
	Telemetry     TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
	PipelineDirs  []string        `yaml:"pipeline_dirs" mapstructure:"pipeline_dirs"`
}

// ApplyDefaults fills in zero values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "capdag"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	if c.Engine.Mode == "" {
		c.Engine.Mode = ModeSequential
	}
	if c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = 15 * time.Second
	}
	if len(c.PipelineDirs) == 0 {
		c.PipelineDirs = []string{"./pipelines"}
	}
}

// Validate checks struct tags and the nested logging section.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
