package sim

import "github.com/san-kum/fluidsim/internal/fluid"

// Pointer is the optional per-frame interaction input.
type Pointer = fluid.Pointer

// Frame is a read-only view of the particle state after a frame. The
// slices alias the solver's arrays and change on the next Step.
type Frame struct {
	Index     int
	Time      float64
	NumFluid  int
	X, Y      []float64
	VX, VY    []float64
	Mass      float64
	Truncated int
	Params    fluid.Params
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

// Input supplies the pointer for a frame. Returning nil means no
// interaction.
type Input func(frame int, t float64) *Pointer

type Result struct {
	Frames  int
	Time    float64
	Times   []float64
	Series  map[string][]float64
	Metrics map[string]float64
}
