package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fluidsim/internal/fluid"
)

const (
	MaxParticles     = 4000
	DefaultParticles = 400
	DefaultSubsteps  = 5
	DefaultFrames    = 600
	DefaultSeed      = 1

	// Upper bounds that keep allocations and cell coordinates small.
	MaxBoxSize         = 4000.0
	MaxBoundarySamples = 8000
	MaxNeighbors       = 1024
)

type Config struct {
	Particles      int           `yaml:"particles" json:"particles"`
	Width          float64       `yaml:"width" json:"width"`
	Height         float64       `yaml:"height" json:"height"`
	Floor          float64       `yaml:"floor" json:"floor"`
	ParticleRadius float64       `yaml:"particle_radius" json:"particle_radius"`
	Layout         string        `yaml:"layout" json:"layout"`
	Seed           int64         `yaml:"seed" json:"seed"`
	Jitter         float64       `yaml:"jitter" json:"jitter"`
	Substeps       int           `yaml:"substeps" json:"substeps"`
	Dt             float64       `yaml:"dt" json:"dt"`
	Frames         int           `yaml:"frames" json:"frames"`
	Fluid          FluidConfig   `yaml:"fluid" json:"fluid"`
	Pointer        PointerConfig `yaml:"pointer" json:"pointer"`
}

type FluidConfig struct {
	RestDensity  float64 `yaml:"rest_density" json:"rest_density"`
	Stiffness    float64 `yaml:"stiffness" json:"stiffness"`
	Exponent     float64 `yaml:"exponent" json:"exponent"`
	Gravity      float64 `yaml:"gravity" json:"gravity"`
	Viscosity    float64 `yaml:"viscosity" json:"viscosity"`
	Tension      float64 `yaml:"tension" json:"tension"`
	MaxSpeed     float64 `yaml:"max_speed" json:"max_speed"`
	Restitution  float64 `yaml:"restitution" json:"restitution"`
	SupportScale float64 `yaml:"support_scale" json:"support_scale"`
	MaxNeighbors int     `yaml:"max_neighbors" json:"max_neighbors"`
}

type PointerConfig struct {
	Radius   float64 `yaml:"radius" json:"radius"`
	Strength float64 `yaml:"strength" json:"strength"`
	DragGain float64 `yaml:"drag_gain" json:"drag_gain"`
}

func DefaultConfig() *Config {
	p := fluid.DefaultParams()
	return &Config{
		Particles:      DefaultParticles,
		Width:          p.Width,
		Height:         p.Height,
		Floor:          p.Floor,
		ParticleRadius: p.ParticleRadius,
		Layout:         fluid.LayoutCentered,
		Seed:           DefaultSeed,
		Substeps:       DefaultSubsteps,
		Dt:             p.Dt,
		Frames:         DefaultFrames,
		Fluid: FluidConfig{
			RestDensity:  p.RestDensity,
			Stiffness:    p.Stiffness,
			Exponent:     p.Exponent,
			Gravity:      p.Gravity,
			Viscosity:    p.Viscosity,
			Tension:      p.Tension,
			MaxSpeed:     p.MaxSpeed,
			Restitution:  p.Restitution,
			SupportScale: p.SupportScale,
			MaxNeighbors: p.MaxNeighbors,
		},
		Pointer: PointerConfig{
			Radius:   p.PointerRadius,
			Strength: p.PointerStrength,
			DragGain: p.DragGain,
		},
	}
}

// Load reads a YAML file over the defaults, so a file only needs the
// keys it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

// FluidParams converts the configuration into solver constants.
func (c *Config) FluidParams() fluid.Params {
	return fluid.Params{
		ParticleRadius:  c.ParticleRadius,
		SupportScale:    c.Fluid.SupportScale,
		RestDensity:     c.Fluid.RestDensity,
		Stiffness:       c.Fluid.Stiffness,
		Exponent:        c.Fluid.Exponent,
		Gravity:         c.Fluid.Gravity,
		Viscosity:       c.Fluid.Viscosity,
		Tension:         c.Fluid.Tension,
		Dt:              c.Dt,
		MaxSpeed:        c.Fluid.MaxSpeed,
		Restitution:     c.Fluid.Restitution,
		MaxNeighbors:    c.Fluid.MaxNeighbors,
		Width:           c.Width,
		Height:          c.Height,
		Floor:           c.Floor,
		PointerRadius:   c.Pointer.Radius,
		PointerStrength: c.Pointer.Strength,
		DragGain:        c.Pointer.DragGain,
	}
}

// Validate checks everything the solver assumes about its inputs. The
// solver itself never fails, so this is the only place bad values are
// rejected.
func (c *Config) Validate() error {
	if c.Particles < 0 || c.Particles > MaxParticles {
		return fmt.Errorf("particles=%d not in [0, %d]: %w", c.Particles, MaxParticles, ErrParticleCount)
	}
	if !positive(c.ParticleRadius) {
		return fmt.Errorf("particle_radius=%v: %w", c.ParticleRadius, ErrParameterBounds)
	}

	r := c.ParticleRadius
	if !finite(c.Width) || !finite(c.Height) || c.Width <= 2*r {
		return fmt.Errorf("width=%v height=%v: %w", c.Width, c.Height, ErrBoxSize)
	}
	if !finite(c.Floor) || c.Floor < 0 || c.Height-c.Floor <= 2*r {
		return fmt.Errorf("height=%v floor=%v: %w", c.Height, c.Floor, ErrBoxSize)
	}
	if c.Width > MaxBoxSize || c.Height > MaxBoxSize {
		return fmt.Errorf("width=%v height=%v exceed %v: %w", c.Width, c.Height, MaxBoxSize, ErrBoxSize)
	}
	// float estimate first so a tiny radius cannot overflow the int count
	if (c.Width+c.Height)/r > MaxBoundarySamples {
		return fmt.Errorf("particle_radius=%v too small for %vx%v: %w", r, c.Width, c.Height, ErrBoxSize)
	}
	if n := fluid.EnclosureSize(c.FluidParams()); n > MaxBoundarySamples {
		return fmt.Errorf("%d wall samples exceed %d: %w", n, MaxBoundarySamples, ErrBoxSize)
	}

	if err := c.checkBounds(); err != nil {
		return err
	}

	p := c.FluidParams()
	xs, ys, ok := fluid.SeedFluid(p, c.Layout, c.Particles)
	if !ok {
		return fmt.Errorf("layout %q: %w", c.Layout, ErrUnknownLayout)
	}
	if !fluid.Contained(p, xs, ys) {
		return fmt.Errorf("%d particles in %q layout do not fit %vx%v: %w",
			c.Particles, c.Layout, c.Width, c.Height, ErrLayoutOverflow)
	}
	return nil
}

func (c *Config) checkBounds() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"dt", positive(c.Dt)},
		{"substeps", c.Substeps >= 1},
		{"frames", c.Frames >= 0},
		{"jitter", finite(c.Jitter) && c.Jitter >= 0 && c.Jitter < c.ParticleRadius},
		{"fluid.rest_density", positive(c.Fluid.RestDensity)},
		{"fluid.stiffness", finite(c.Fluid.Stiffness) && c.Fluid.Stiffness >= 0},
		{"fluid.exponent", positive(c.Fluid.Exponent)},
		{"fluid.gravity", finite(c.Fluid.Gravity)},
		{"fluid.viscosity", finite(c.Fluid.Viscosity) && c.Fluid.Viscosity >= 0},
		{"fluid.tension", finite(c.Fluid.Tension) && c.Fluid.Tension >= 0},
		{"fluid.max_speed", positive(c.Fluid.MaxSpeed)},
		{"fluid.restitution", c.Fluid.Restitution >= 0 && c.Fluid.Restitution <= 1},
		{"fluid.support_scale", finite(c.Fluid.SupportScale) && c.Fluid.SupportScale >= 1},
		{"fluid.max_neighbors", c.Fluid.MaxNeighbors >= 1 && c.Fluid.MaxNeighbors <= MaxNeighbors},
		{"pointer.radius", positive(c.Pointer.Radius)},
		{"pointer.strength", finite(c.Pointer.Strength) && c.Pointer.Strength >= 0},
		{"pointer.drag_gain", c.Pointer.DragGain >= 0 && c.Pointer.DragGain <= 1},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("%s: %w", chk.name, ErrParameterBounds)
		}
	}
	return nil
}

func finite(v float64) bool   { return !math.IsNaN(v) && !math.IsInf(v, 0) }
func positive(v float64) bool { return finite(v) && v > 0 }
