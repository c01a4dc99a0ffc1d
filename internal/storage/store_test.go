package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Frames: 3,
		Time:   0.015,
		Times:  []float64{0.005, 0.01, 0.015},
		Series: map[string][]float64{
			"avg_height": {120, 110.5, 99.25},
			"escaped":    {0, 0, 0},
		},
		Metrics: map[string]float64{
			"avg_height": 99.25,
			"escaped":    0,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Particles = 321
	runID, err := st.Save("dam_break", cfg, testResult(), 2*time.Second)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Name != "dam_break" {
		t.Errorf("expected name 'dam_break', got '%s'", meta.Name)
	}
	if meta.Config != *cfg {
		t.Errorf("config not preserved: %+v", meta.Config)
	}
	if meta.Frames != 3 || meta.WallSeconds != 2 {
		t.Errorf("frames=%d wall=%f", meta.Frames, meta.WallSeconds)
	}
	if meta.Metrics["avg_height"] != 99.25 {
		t.Errorf("expected avg_height 99.25, got %f", meta.Metrics["avg_height"])
	}

	series, times, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}

	if len(times) != 3 || times[2] != 0.015 {
		t.Errorf("times = %v", times)
	}
	if got := series["avg_height"]; len(got) != 3 || got[1] != 110.5 {
		t.Errorf("avg_height series = %v", got)
	}
	if len(series) != 2 {
		t.Errorf("expected 2 series, got %d", len(series))
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	first, err := st.Save("calm", cfg, testResult(), time.Second)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save("calm", cfg, testResult(), time.Second)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if first == second {
		t.Fatalf("run ids collided: %s", first)
	}

	// stray entries are skipped
	os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0644)
	os.Mkdir(filepath.Join(tmpDir, "empty"), 0755)

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("test", config.DefaultConfig(), &sim.Result{}, 0)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "series.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	series, times, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(series) != 0 || len(times) != 0 {
		t.Errorf("expected empty series, got %v %v", series, times)
	}
}

func TestLoadSeriesMalformed(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	runDir := filepath.Join(tmpDir, "broken")
	os.MkdirAll(runDir, 0755)
	os.WriteFile(filepath.Join(runDir, "series.csv"), []byte("frame,time,escaped\n1,abc,0\n"), 0644)

	if _, _, err := st.LoadSeries("broken"); !errors.Is(err, ErrMalformedSeries) {
		t.Errorf("expected ErrMalformedSeries, got %v", err)
	}
	if _, _, err := st.LoadSeries("missing"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	st.Init()
	runID, err := st.Save("splash", config.DefaultConfig(), testResult(), time.Second)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.Export(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Run.ID != runID || len(data.Times) != 3 || len(data.Series["escaped"]) != 3 {
		t.Errorf("unexpected export %+v", data)
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := st.ExportFile(path, runID); err != nil {
		t.Fatalf("export file failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("export file not created")
	}
}
