// Package storage manages run directories: run metadata, per-generation
// lineage matrices and their heatmaps. Populations themselves are never
// written.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/mchu-1/barcode-simulator/internal/config"
	"github.com/mchu-1/barcode-simulator/internal/experiment"
	"github.com/mchu-1/barcode-simulator/internal/lineage"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        uint64             `json:"seed"`
	Config      config.Config      `json:"config"`
	Generations []experiment.Stats `json:"generations"`
	Status      string             `json:"status"`
	Error       string             `json:"error,omitempty"`
}

const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Create allocates a run directory and writes its initial metadata.
func (s *Store) Create(cfg config.Config, seed uint64) (*RunMetadata, error) {
	now := time.Now()
	meta := &RunMetadata{
		ID:        fmt.Sprintf("run_%d", now.UnixMilli()),
		Timestamp: now,
		Seed:      seed,
		Config:    cfg,
		Status:    StatusRunning,
	}
	if err := os.MkdirAll(s.RunDir(meta.ID), 0755); err != nil {
		return nil, err
	}
	if err := s.SaveMetadata(meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

func (s *Store) SaveMetadata(meta *RunMetadata) error {
	f, err := os.Create(filepath.Join(s.RunDir(meta.ID), "metadata.json"))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func (s *Store) matrixPath(runID string, gen int) string {
	return filepath.Join(s.RunDir(runID), fmt.Sprintf("tree-%d.csv", gen))
}

// HeatmapPath is where the rendered heatmap of generation gen belongs.
func (s *Store) HeatmapPath(runID string, gen int) string {
	return filepath.Join(s.RunDir(runID), fmt.Sprintf("tree-%d.png", gen))
}

// SaveMatrix writes m as CSV, one row per clone.
func (s *Store) SaveMatrix(runID string, gen int, m lineage.Matrix) error {
	f, err := os.Create(s.matrixPath(runID, gen))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range m {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) LoadMatrix(runID string, gen int) (lineage.Matrix, error) {
	f, err := os.Open(s.matrixPath(runID, gen))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	m := make(lineage.Matrix, len(records))
	for i, rec := range records {
		if len(rec) != len(records) {
			return nil, fmt.Errorf("%s: row %d has %d columns, want %d", s.matrixPath(runID, gen), i, len(rec), len(records))
		}
		m[i] = make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d col %d: %w", s.matrixPath(runID, gen), i, j, err)
			}
			m[i][j] = v
		}
	}
	return m, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
