package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config enumerates every option the orchestrator recognizes. It
// replaces ambient environment lookups: the whole pipeline is
// constructed from one explicit value.
type Config struct {
	Credential string    `yaml:"credential"`
	Endpoints  Endpoints `yaml:"endpoints"`
	OutputDir  string    `yaml:"output_dir"`
	HistoryDB  string    `yaml:"history_db"`
	Timeouts   Timeouts  `yaml:"timeouts"`

	// MaxAttempts bounds the application-level retry loop per call.
	MaxAttempts int `yaml:"max_attempts"`

	// KeepPartialOnIntegrationFailure retains gathered expert responses
	// and merged issues in the error result when the integration stage
	// fails. Off by default: the compatible behavior discards them.
	KeepPartialOnIntegrationFailure bool `yaml:"keep_partial_on_integration_failure"`

	// OTLPEndpoint enables trace export when non-empty.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

type Endpoints struct {
	Ingestion   string `yaml:"ingestion"`
	Legal       string `yaml:"legal"`
	Business    string `yaml:"business"`
	Format      string `yaml:"format"`
	Integration string `yaml:"integration"`
}

type Timeouts struct {
	CallSec        int `yaml:"call_sec"`
	IntegrationSec int `yaml:"integration_sec"`
}

func (t Timeouts) Call() time.Duration        { return time.Duration(t.CallSec) * time.Second }
func (t Timeouts) Integration() time.Duration { return time.Duration(t.IntegrationSec) * time.Second }

func Default() *Config {
	return &Config{
		Endpoints: Endpoints{
			Ingestion:   "http://localhost:10001",
			Legal:       "http://localhost:10002",
			Business:    "http://localhost:10003",
			Format:      "http://localhost:10004",
			Integration: "http://localhost:10005",
		},
		OutputDir:   "./output",
		HistoryDB:   "./output/history.db",
		Timeouts:    Timeouts{CallSec: 120, IntegrationSec: 300},
		MaxAttempts: 3,
	}
}

// Load reads a YAML config file over the defaults. Unset fields keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1")
	}
	if c.Timeouts.CallSec < 1 || c.Timeouts.IntegrationSec < 1 {
		return fmt.Errorf("timeouts must be >= 1s")
	}
	for name, ep := range map[string]string{
		"ingestion":   c.Endpoints.Ingestion,
		"legal":       c.Endpoints.Legal,
		"business":    c.Endpoints.Business,
		"format":      c.Endpoints.Format,
		"integration": c.Endpoints.Integration,
	} {
		if ep == "" {
			return fmt.Errorf("endpoints.%s is required", name)
		}
	}
	return nil
}
