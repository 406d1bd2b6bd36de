package config

import (
	"sort"

	"github.com/mchu-1/barcode-simulator/internal/population"
)

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"small": {
		Barcodes: 10, Generations: 4, Parity: 32, Wells: 1, Cells: 1000,
		Policy: population.DefaultPolicy(),
	},
	"deep": {
		Barcodes: 20, Generations: 8, Parity: 128, Wells: 1, Cells: 2000,
		Policy: population.Policy{Continuation: 0.3, Rounds: 2, Divisions: 2, Loss: 0.5, Splits: 2},
	},
	"lossless": {
		Barcodes: 16, Generations: 4, Parity: 64, Wells: 2, Cells: 500,
		Policy: population.Policy{Continuation: 0.2, Rounds: 1, Divisions: 1, Loss: 0, Splits: 2},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
