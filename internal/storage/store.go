// Package storage keeps summaries of headless runs on disk. Each run is a
// directory holding metadata.json and series.csv with one row per frame.
// Particle positions are never written.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
)

var ErrMalformedSeries = errors.New("storage: malformed series file")

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
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	Frames      int                `json:"frames"`
	SimTime     float64            `json:"sim_time"`
	WallSeconds float64            `json:"wall_seconds"`
	Config      config.Config      `json:"config"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Save writes a run under a new id derived from name and the current
// time.
func (s *Store) Save(name string, cfg *config.Config, result *sim.Result, wall time.Duration) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.Unix())
	for n := 1; s.exists(runID); n++ {
		runID = fmt.Sprintf("%s_%d_%d", name, now.Unix(), n)
	}
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        name,
		Timestamp:   now,
		Frames:      result.Frames,
		SimTime:     result.Time,
		WallSeconds: wall.Seconds(),
		Config:      *cfg,
		Metrics:     result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) exists(runID string) bool {
	_, err := os.Stat(filepath.Join(s.baseDir, runID))
	return err == nil
}

func writeSeries(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	names := make([]string, 0, len(result.Series))
	for name := range result.Series {
		names = append(names, name)
	}
	sort.Strings(names)

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"frame", "time"}, names...)); err != nil {
		return err
	}

	for i, t := range result.Times {
		row := []string{strconv.Itoa(i + 1), strconv.FormatFloat(t, 'f', 6, 64)}
		for _, name := range names {
			val := 0.0
			if s := result.Series[name]; i < len(s) {
				val = s[i]
			}
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the metadata of every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSeries reads the per-frame metric series of a run.
func (s *Store) LoadSeries(runID string) (map[string][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: missing header: %w", runID, ErrMalformedSeries)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, nil, fmt.Errorf("%s: header %v: %w", runID, header, ErrMalformedSeries)
	}
	names := header[2:]

	series := make(map[string][]float64, len(names))
	for _, name := range names {
		series[name] = make([]float64, 0, len(records)-1)
	}
	times := make([]float64, 0, len(records)-1)

	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: row %d: %w", runID, i+1, ErrMalformedSeries)
		}
		times = append(times, t)

		for j, name := range names {
			val, err := strconv.ParseFloat(record[j+2], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: row %d column %s: %w", runID, i+1, name, ErrMalformedSeries)
			}
			series[name] = append(series[name], val)
		}
	}

	return series, times, nil
}
