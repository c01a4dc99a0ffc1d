// Package sim drives a fluid system frame by frame. A frame runs a fixed
// number of solver sub-steps followed by the pointer drag.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/fluid"
)

// Driver owns one fluid system and its configuration. It is not safe for
// concurrent use.
type Driver struct {
	cfg   config.Config
	sys   *fluid.System
	frame int
	time  float64

	input     Input
	metrics   []Metric
	observers []Observer
}

// New validates cfg and builds the system it describes. A nil cfg uses
// the defaults.
func New(cfg *config.Config) (*Driver, error) {
	d := &Driver{}
	if err := d.Init(cfg); err != nil {
		return nil, err
	}
	return d, nil
}

// Init replaces the configuration and rebuilds the system from it. On
// error the driver keeps its previous state.
func (d *Driver) Init(cfg *config.Config) error {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.cfg = *cfg
	d.rebuild()
	return nil
}

func (d *Driver) rebuild() {
	p := d.cfg.FluidParams()
	fx, fy, _ := fluid.SeedFluid(p, d.cfg.Layout, d.cfg.Particles)
	fluid.Jitter(p, fx, fy, d.cfg.Jitter, d.cfg.Seed)
	bx, by := fluid.Enclosure(p)

	d.sys = fluid.New(p, fx, fy, bx, by)
	d.frame = 0
	d.time = 0
}

// Step advances one frame. ptr may be nil.
func (d *Driver) Step(ptr *Pointer) {
	if d.sys == nil {
		return
	}
	for k := 0; k < d.cfg.Substeps; k++ {
		d.sys.Substep(ptr)
	}
	d.sys.Drag(ptr)
	d.frame++
	d.time += float64(d.cfg.Substeps) * d.cfg.Dt
}

// Reset rebuilds the system from the stored configuration. The seeded
// layout is deterministic, so consecutive resets are identical.
func (d *Driver) Reset() {
	d.rebuild()
}

func (d *Driver) SetViscosity(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("viscosity=%v: %w", v, config.ErrParameterBounds)
	}
	d.cfg.Fluid.Viscosity = v
	if d.sys != nil {
		d.sys.SetViscosity(v)
	}
	return nil
}

func (d *Driver) SetTension(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("tension=%v: %w", v, config.ErrParameterBounds)
	}
	d.cfg.Fluid.Tension = v
	if d.sys != nil {
		d.sys.SetTension(v)
	}
	return nil
}

// SetParticleCount changes the fluid particle count. Every array depends
// on it, so the system is rebuilt.
func (d *Driver) SetParticleCount(n int) error {
	next := d.cfg
	next.Particles = n
	return d.Init(&next)
}

// SetInput installs the pointer source used by Run.
func (d *Driver) SetInput(in Input) { d.input = in }

func (d *Driver) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }
func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

// Config returns a copy of the active configuration.
func (d *Driver) Config() config.Config { return d.cfg }

func (d *Driver) System() *fluid.System { return d.sys }
func (d *Driver) Frame() int            { return d.frame }
func (d *Driver) Time() float64         { return d.time }

func (d *Driver) NumFluid() int {
	if d.sys == nil {
		return 0
	}
	return d.sys.NumFluid()
}

func (d *Driver) Total() int {
	if d.sys == nil {
		return 0
	}
	return d.sys.Total()
}

// Positions returns the live position slices of all particles. Ids below
// NumFluid are fluid.
func (d *Driver) Positions() (xs, ys []float64) {
	if d.sys == nil {
		return nil, nil
	}
	return d.sys.Positions()
}

func (d *Driver) Snapshot() Frame {
	if d.sys == nil {
		return Frame{}
	}
	xs, ys := d.sys.Positions()
	vx, vy := d.sys.Velocities()
	return Frame{
		Index:     d.frame,
		Time:      d.time,
		NumFluid:  d.sys.NumFluid(),
		X:         xs,
		Y:         ys,
		VX:        vx,
		VY:        vy,
		Mass:      d.sys.Mass(),
		Truncated: d.sys.Truncated(),
		Params:    d.sys.Params(),
	}
}

// Run advances frames frames from the current state, recording every
// metric after each frame. The returned result holds the frames completed
// so far even when an error is returned.
func (d *Driver) Run(ctx context.Context, frames int) (*Result, error) {
	if d.sys == nil {
		return nil, ErrNotInitialized
	}
	if frames < 0 {
		return nil, fmt.Errorf("frames must be non-negative, got %d", frames)
	}

	result := &Result{
		Times:   make([]float64, 0, frames),
		Series:  make(map[string][]float64, len(d.metrics)),
		Metrics: make(map[string]float64, len(d.metrics)),
	}
	for _, m := range d.metrics {
		m.Reset()
		result.Series[m.Name()] = make([]float64, 0, frames)
	}
	defer func() {
		for _, m := range d.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}()

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if !d.valid() {
			return result, &SimError{Frame: d.frame, Time: d.time, Wrapped: ErrInvalidState}
		}

		var ptr *Pointer
		if d.input != nil {
			ptr = d.input(d.frame, d.time)
		}
		d.Step(ptr)

		f := d.Snapshot()
		for _, m := range d.metrics {
			m.Observe(f)
			result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
		}
		for _, obs := range d.observers {
			obs.OnFrame(f)
		}
		result.Times = append(result.Times, d.time)
		result.Frames++
		result.Time = d.time
	}

	if !d.valid() {
		return result, &SimError{Frame: d.frame, Time: d.time, Wrapped: ErrInvalidState}
	}
	return result, nil
}

func (d *Driver) valid() bool {
	xs, ys := d.sys.Positions()
	vx, vy := d.sys.Velocities()
	for i := 0; i < d.sys.NumFluid(); i++ {
		for _, v := range [...]float64{xs[i], ys[i], vx[i], vy[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
