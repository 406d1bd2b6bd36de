package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mchu-1/barcode-simulator/internal/population"
)

const (
	DefaultBarcodes    = 20
	DefaultGenerations = 5
	DefaultParity      = 64
	DefaultWells       = 1
	DefaultCells       = 100000
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Barcodes    int               `yaml:"n" json:"n"`
	Generations int               `yaml:"k" json:"k"`
	Parity      int               `yaml:"parity" json:"parity"`
	Wells       int               `yaml:"wells" json:"wells"`
	Cells       int               `yaml:"cells" json:"cells"`
	Seed        uint64            `yaml:"seed" json:"seed"`
	MaxCells    int               `yaml:"max_cells" json:"max_cells"`
	Policy      population.Policy `yaml:"policy" json:"policy"`
}

func DefaultConfig() *Config {
	return &Config{
		Barcodes:    DefaultBarcodes,
		Generations: DefaultGenerations,
		Parity:      DefaultParity,
		Wells:       DefaultWells,
		Cells:       DefaultCells,
		Policy:      population.DefaultPolicy(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run-level values and the step policy.
func (c *Config) Validate() error {
	switch {
	case c.Barcodes < 2:
		return fmt.Errorf("%w: n must be at least 2, got %d", ErrInvalidConfig, c.Barcodes)
	case c.Generations < 0:
		return fmt.Errorf("%w: k must not be negative, got %d", ErrInvalidConfig, c.Generations)
	case c.Parity < 1:
		return fmt.Errorf("%w: parity must be at least 1, got %d", ErrInvalidConfig, c.Parity)
	case c.Wells < 1:
		return fmt.Errorf("%w: wells must be at least 1, got %d", ErrInvalidConfig, c.Wells)
	case c.Cells < 0:
		return fmt.Errorf("%w: cells must not be negative, got %d", ErrInvalidConfig, c.Cells)
	case c.MaxCells < 0:
		return fmt.Errorf("%w: max_cells must not be negative, got %d", ErrInvalidConfig, c.MaxCells)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
