package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/fluidsim/internal/config"
)

type countMetric struct {
	frames int
}

func (c *countMetric) Name() string   { return "count" }
func (c *countMetric) Observe(Frame)  { c.frames++ }
func (c *countMetric) Value() float64 { return float64(c.frames) }
func (c *countMetric) Reset()         { c.frames = 0 }

type recorder struct {
	indices []int
}

func (r *recorder) OnFrame(f Frame) { r.indices = append(r.indices, f.Index) }

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Particles = 100
	cfg.Substeps = 2
	return cfg
}

func TestNewDefaults(t *testing.T) {
	d, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil): %v", err)
	}
	if d.NumFluid() != config.DefaultParticles {
		t.Errorf("NumFluid() = %d, want %d", d.NumFluid(), config.DefaultParticles)
	}
	if d.Total() <= d.NumFluid() {
		t.Error("expected boundary particles after fluid ids")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Particles = config.MaxParticles + 1
	if _, err := New(cfg); !errors.Is(err, config.ErrParticleCount) {
		t.Errorf("expected ErrParticleCount, got %v", err)
	}
}

func TestNewRejectsUnallocatableConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Fluid.MaxNeighbors = 1 << 40
	if _, err := New(cfg); !errors.Is(err, config.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}

	cfg = config.DefaultConfig()
	cfg.Width = 1e12
	if _, err := New(cfg); !errors.Is(err, config.ErrBoxSize) {
		t.Errorf("expected ErrBoxSize, got %v", err)
	}
}

func TestRun(t *testing.T) {
	d, err := New(smallConfig())
	if err != nil {
		t.Fatal(err)
	}
	m := &countMetric{}
	rec := &recorder{}
	d.AddMetric(m)
	d.AddObserver(rec)

	result, err := d.Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Frames != 10 || d.Frame() != 10 {
		t.Errorf("expected 10 frames, got %d (driver %d)", result.Frames, d.Frame())
	}
	if len(result.Times) != 10 || len(result.Series["count"]) != 10 {
		t.Errorf("series lengths: times=%d count=%d", len(result.Times), len(result.Series["count"]))
	}
	if result.Metrics["count"] != 10 {
		t.Errorf("final metric = %v, want 10", result.Metrics["count"])
	}
	if want := 10 * 2 * d.Config().Dt; math.Abs(result.Time-want) > 1e-12 {
		t.Errorf("time = %v, want %v", result.Time, want)
	}
	if len(rec.indices) != 10 || rec.indices[0] != 1 || rec.indices[9] != 10 {
		t.Errorf("observer saw frames %v", rec.indices)
	}
}

func TestRunCanceled(t *testing.T) {
	d, _ := New(smallConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := d.Run(ctx, 5)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.Frames != 0 {
		t.Error("expected an empty partial result")
	}
}

func TestRunInvalidState(t *testing.T) {
	d, _ := New(smallConfig())
	vx, _ := d.System().Velocities()
	vx[0] = math.NaN()

	_, err := d.Run(context.Background(), 3)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	var simErr *SimError
	if !errors.As(err, &simErr) || simErr.Frame != 0 {
		t.Errorf("expected *SimError at frame 0, got %#v", err)
	}
}

func TestRunNotInitialized(t *testing.T) {
	var d Driver
	if _, err := d.Run(context.Background(), 1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	d.Step(nil)
	if xs, _ := d.Positions(); xs != nil {
		t.Error("zero driver should have no positions")
	}
}

func TestSetters(t *testing.T) {
	d, _ := New(smallConfig())
	d.Step(nil)

	if err := d.SetViscosity(250); err != nil {
		t.Fatal(err)
	}
	if err := d.SetTension(7); err != nil {
		t.Fatal(err)
	}
	p := d.System().Params()
	if p.Viscosity != 250 || p.Tension != 7 {
		t.Errorf("params = %+v", p)
	}
	if d.Frame() != 1 {
		t.Error("coefficient changes should not reset the system")
	}

	if err := d.SetViscosity(-1); !errors.Is(err, config.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if err := d.SetTension(math.NaN()); !errors.Is(err, config.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestSetParticleCountInvalidKeepsState(t *testing.T) {
	d, _ := New(smallConfig())
	d.Step(nil)
	if err := d.SetParticleCount(-5); !errors.Is(err, config.ErrParticleCount) {
		t.Fatalf("expected ErrParticleCount, got %v", err)
	}
	if d.NumFluid() != 100 || d.Frame() != 1 {
		t.Error("failed resize should leave the driver untouched")
	}
}

func TestStir(t *testing.T) {
	in := Stir(200, 200, 50, 1)
	p0 := in(0, 0)
	if !p0.Active || math.Abs(p0.X-250) > 1e-9 || p0.VX != 0 || p0.VY != 0 {
		t.Errorf("first pointer = %+v", p0)
	}
	p1 := in(1, 0.25)
	if math.Abs(p1.Y-250) > 1e-9 || math.Abs(p1.VX+50) > 1e-9 || math.Abs(p1.VY-50) > 1e-9 {
		t.Errorf("quarter turn pointer = %+v", p1)
	}
}

func TestEnsemble(t *testing.T) {
	a := smallConfig()
	a.Frames = 3
	b := smallConfig()
	b.Frames = 5
	b.Layout = "dam_break"

	results, err := NewEnsemble([]*config.Config{a, b}, func() []Metric {
		return []Metric{&countMetric{}}
	}).Run(context.Background())
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(results) != 2 || results[0].Frames != 3 || results[1].Frames != 5 {
		t.Fatalf("unexpected results %+v", results)
	}
	if results[1].Metrics["count"] != 5 {
		t.Errorf("metric = %v, want 5", results[1].Metrics["count"])
	}

	bad := smallConfig()
	bad.Substeps = 0
	if _, err := NewEnsemble([]*config.Config{a, bad}, nil).Run(context.Background()); err == nil {
		t.Error("expected invalid configuration error")
	}
}
