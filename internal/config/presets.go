package config

import (
	"sort"

	"github.com/san-kum/fluidsim/internal/fluid"
)

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"dam_break": preset(func(c *Config) {
		c.Layout = fluid.LayoutDamBreak
		c.Frames = 400
	}),
	"calm": preset(func(c *Config) {
		c.Particles = 200
		c.Fluid.Viscosity = 200
		c.Fluid.Tension = 5
	}),
	"viscous": preset(func(c *Config) {
		c.Particles = 600
		c.Fluid.Viscosity = 400
		c.Fluid.Tension = 20
	}),
	"splash": preset(func(c *Config) {
		c.Particles = 800
		c.Layout = fluid.LayoutDamBreak
		c.Jitter = 0.5
		c.Fluid.Viscosity = 50
		c.Pointer.Strength = 80
		c.Pointer.Radius = 60
	}),
}

func preset(mod func(*Config)) *Config {
	c := DefaultConfig()
	mod(c)
	return c
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
