// Package config loads CLI configuration for the chartifact tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrConfigTooLarge = errors.New("config exceeds maximum size")
	ErrInvalidTimeout = errors.New("invalid timeout")
	ErrMissingRuntime = errors.New("runtime module not configured")
)

// MaxConfigSize limits config input to prevent memory exhaustion.
const MaxConfigSize = 1 << 20 // 1MB

// Defaults.
const (
	DefaultTimeout       = 30 * time.Second
	DefaultWatchDebounce = 200 * time.Millisecond
)

// Config holds all CLI configuration.
type Config struct {
	Workspace string         `yaml:"workspace"` // chart/table/concept store file
	Runtime   RuntimeConfig  `yaml:"runtime"`
	Render    RenderConfig   `yaml:"render"`
	Preview   PreviewConfig  `yaml:"preview"`
	Snapshot  SnapshotConfig `yaml:"snapshot"`
}

// RuntimeConfig locates the two externally built renderer modules.
type RuntimeConfig struct {
	SandboxModule  string        `yaml:"sandboxModule"` // URL or local bundle path
	HostModule     string        `yaml:"hostModule"`    // URL or local bundle path
	TimeoutSeconds int           `yaml:"timeoutSeconds"`
	timeout        time.Duration `yaml:"-"`
}

// Timeout returns the configured runtime timeout.
func (r RuntimeConfig) Timeout() time.Duration {
	if r.timeout > 0 {
		return r.timeout
	}
	return DefaultTimeout
}

// RenderConfig carries the fixed rendering parameters.
type RenderConfig struct {
	MaxBins     int  `yaml:"maxBins"`
	Interactive bool `yaml:"interactive"`
	Width       int  `yaml:"width"`
	Height      int  `yaml:"height"`
	ForExport   bool `yaml:"forExport"`
}

// PreviewConfig controls the live preview command.
type PreviewConfig struct {
	Watch             bool `yaml:"watch"`
	DebounceMillis    int  `yaml:"debounceMillis"`
	NormalizeLineEnds bool `yaml:"normalizeLineEnds"`
}

// Debounce returns the watch debounce interval.
func (p PreviewConfig) Debounce() time.Duration {
	if p.DebounceMillis > 0 {
		return time.Duration(p.DebounceMillis) * time.Millisecond
	}
	return DefaultWatchDebounce
}

// SnapshotConfig controls batch snapshot rendering.
type SnapshotConfig struct {
	OutputDir string `yaml:"outputDir"`
	Workers   int    `yaml:"workers"` // 0 = auto (GOMAXPROCS-based)
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			MaxBins:     10,
			Interactive: true,
			Width:       300,
			Height:      300,
		},
		Preview: PreviewConfig{
			Watch:             true,
			NormalizeLineEnds: true,
		},
	}
}

// Load reads configuration from path, falling back to defaults when path
// is empty and no file exists.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- config path comes from operator flags
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if len(data) > MaxConfigSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigTooLarge, len(data), MaxConfigSize)
	}

	cfg := Default()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if cfg.Runtime.TimeoutSeconds < 0 {
		return nil, fmt.Errorf("%w: %d seconds", ErrInvalidTimeout, cfg.Runtime.TimeoutSeconds)
	}
	if cfg.Runtime.TimeoutSeconds > 0 {
		cfg.Runtime.timeout = time.Duration(cfg.Runtime.TimeoutSeconds) * time.Second
	}
	return cfg, nil
}

// ValidateRuntime checks that both renderer modules are configured; the
// preview and snapshot commands cannot run without them.
func (c *Config) ValidateRuntime() error {
	if c.Runtime.SandboxModule == "" {
		return fmt.Errorf("%w: sandboxModule", ErrMissingRuntime)
	}
	if c.Runtime.HostModule == "" {
		return fmt.Errorf("%w: hostModule", ErrMissingRuntime)
	}
	return nil
}
