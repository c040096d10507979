// Package config loads the composer's settings from a YAML file with
// BONDGRAPH_* environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-bondgraph/pkg/bondgraph"
	"github.com/dd0wney/cluso-bondgraph/pkg/logging"
	"github.com/dd0wney/cluso-bondgraph/pkg/validation"
)

// Environment variables that override file settings
const (
	EnvLibrary       = "BONDGRAPH_LIBRARY"
	EnvSpecification = "BONDGRAPH_SPECIFICATION"
	EnvLogLevel      = "BONDGRAPH_LOG_LEVEL"
	EnvPortPolicy    = "BONDGRAPH_PORT_POLICY"
	EnvMetrics       = "BONDGRAPH_METRICS"
)

// Default configuration values
const (
	DefaultLogLevel   = "warn"
	DefaultPortPolicy = "lenient"
)

var (
	logLevels    = []string{"debug", "info", "warn", "error"}
	portPolicies = []string{"lenient", "strict"}
)

// Config holds composer settings
type Config struct {
	// Library is the template library file
	Library string `yaml:"library"`

	// Specification is the model specification file
	Specification string `yaml:"specification"`

	// LogLevel is one of debug, info, warn or error (default: warn)
	LogLevel string `yaml:"log_level"`

	// PortPolicy decides how merges treat ports bound to existing nodes
	// (default: lenient)
	PortPolicy string `yaml:"port_policy"`

	// Metrics prints composition metrics after each command
	Metrics bool `yaml:"metrics"`

	// Namespaces are extra prefixes used when displaying results
	Namespaces map[string]string `yaml:"namespaces"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		LogLevel:   DefaultLogLevel,
		PortPolicy: DefaultPortPolicy,
	}
}

// Load reads the configuration file at path, if any, and then applies
// environment overrides. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from the environment. lookup is normally
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLibrary); ok && v != "" {
		c.Library = v
	}
	if v, ok := lookup(EnvSpecification); ok && v != "" {
		c.Specification = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvPortPolicy); ok && v != "" {
		c.PortPolicy = v
	}
	if v, ok := lookup(EnvMetrics); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMetrics, v, err)
		}
		c.Metrics = b
	}
	return nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	return validation.NewConfigValidator("Config").
		Required("library", c.Library).
		FileExists("library", c.Library).
		FileExists("specification", c.Specification).
		OneOf("log_level", c.LogLevel, logLevels).
		OneOf("port_policy", c.PortPolicy, portPolicies).
		Custom("namespaces", func() error { return validation.ValidateNamespaces(c.Namespaces) }).
		Validate()
}

// Level returns the configured log level.
func (c *Config) Level() logging.Level {
	if level, ok := logging.ParseLevel(c.LogLevel); ok {
		return level
	}
	return logging.WarnLevel
}

// Policy returns the configured port policy.
func (c *Config) Policy() bondgraph.PortPolicy {
	p, err := bondgraph.ParsePortPolicy(c.PortPolicy)
	if err != nil {
		return bondgraph.PortPolicyLenient
	}
	return p
}
