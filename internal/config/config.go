// Package config holds the run configuration of the vecgt command.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/vecgt/distance"
	"github.com/hupe1980/vecgt/gtfile"
	"github.com/hupe1980/vecgt/vectorset"
)

// Run is one ground-truth computation.
type Run struct {
	// Base and Queries are vector file locations (paths or s3:// / minio:// URIs).
	Base    string `yaml:"base"`
	Queries string `yaml:"queries"`
	// Output receives the result file.
	Output string `yaml:"output"`

	K       int    `yaml:"k"`
	Metric  string `yaml:"metric,omitempty"`
	QBlock  int    `yaml:"q_block,omitempty"`
	BBlock  int    `yaml:"b_block,omitempty"`
	Workers int    `yaml:"workers,omitempty"`

	// ElementType overrides detection from the file suffix.
	ElementType string `yaml:"element_type,omitempty"`

	// Copy reads inputs into memory instead of mapping them.
	Copy bool `yaml:"copy,omitempty"`

	Layout       string `yaml:"layout,omitempty"`
	DistanceBits int    `yaml:"distance_bits,omitempty"`

	// Filter lists the base indices eligible as neighbors.
	Filter string `yaml:"filter,omitempty"`

	Dataset string `yaml:"dataset,omitempty"`
	Timings string `yaml:"timings,omitempty"`
	Ledger  string `yaml:"ledger,omitempty"`

	ProgressInterval time.Duration `yaml:"progress_interval,omitempty"`

	Log Log `yaml:"log,omitempty"`
}

// Log configures the process logger.
type Log struct {
	Format string `yaml:"format,omitempty"`
	Level  string `yaml:"level,omitempty"`
}

// Default returns a Run with the defaults of the command line.
func Default() Run {
	return Run{
		K:                100,
		Metric:           distance.MetricL2.String(),
		BBlock:           5000,
		Layout:           gtfile.LayoutRaw.String(),
		DistanceBits:     32,
		ElementType:      "auto",
		ProgressInterval: 10 * time.Second,
		Log:              Log{Format: "text", Level: "info"},
	}
}

// Load reads a YAML run file on top of Default.
func Load(path string) (Run, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem in the run.
func (c *Run) Validate() error {
	var errs []error
	if c.Base == "" {
		errs = append(errs, errors.New("base is required"))
	}
	if c.Queries == "" {
		errs = append(errs, errors.New("queries is required"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if c.K <= 0 {
		errs = append(errs, fmt.Errorf("k must be positive, got %d", c.K))
	}
	if c.QBlock < 0 {
		errs = append(errs, fmt.Errorf("q_block must be non-negative, got %d", c.QBlock))
	}
	if c.BBlock < 0 {
		errs = append(errs, fmt.Errorf("b_block must be non-negative, got %d", c.BBlock))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be non-negative, got %d", c.Workers))
	}
	if _, err := distance.ParseMetric(c.Metric); err != nil {
		errs = append(errs, fmt.Errorf("metric: %w", err))
	}
	if _, err := vectorset.ParseElementType(c.ElementType); err != nil {
		errs = append(errs, fmt.Errorf("element_type: %w", err))
	}
	if _, err := gtfile.ParseLayout(c.Layout); err != nil {
		errs = append(errs, fmt.Errorf("layout: %w", err))
	}
	if c.DistanceBits != 32 && c.DistanceBits != 64 {
		errs = append(errs, fmt.Errorf("distance_bits must be 32 or 64, got %d", c.DistanceBits))
	}
	if c.ProgressInterval < 0 {
		errs = append(errs, fmt.Errorf("progress_interval must be non-negative, got %s", c.ProgressInterval))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}
