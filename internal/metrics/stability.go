package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/fluidsim/internal/sim"
)

type MaxSpeed struct {
	name     string
	buf, tmp []float64
	value    float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(f sim.Frame) {
	if f.NumFluid == 0 {
		m.value = 0
		return
	}
	m.buf, m.tmp = speedsSquared(f, m.buf, m.tmp)
	m.value = math.Sqrt(floats.Max(m.buf))
}

func (m *MaxSpeed) Value() float64 { return m.value }
func (m *MaxSpeed) Reset()         { m.value = 0 }

// Stability is the fraction of observed frames in which every fluid
// particle stayed below the given fraction of the speed clamp.
type Stability struct {
	name       string
	fraction   float64
	buf, tmp   []float64
	violations int
	samples    int
}

func NewStability(fraction float64) *Stability {
	return &Stability{
		name:     "stability",
		fraction: fraction,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f sim.Frame) {
	s.samples++
	if f.NumFluid == 0 {
		return
	}
	s.buf, s.tmp = speedsSquared(f, s.buf, s.tmp)
	limit := s.fraction * f.Params.MaxSpeed
	if floats.Max(s.buf) >= limit*limit {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Containment counts fluid particles outside the box. The integrator
// clamps every position, so anything non-zero is a bug.
type Containment struct {
	name  string
	value float64
}

func NewContainment() *Containment {
	return &Containment{name: "escaped"}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(f sim.Frame) {
	minX, maxX, minY, maxY := f.Params.Bounds()
	out := 0
	for i := 0; i < f.NumFluid; i++ {
		x, y := f.X[i], f.Y[i]
		if !(x >= minX && x <= maxX && y >= minY && y <= maxY) {
			out++
		}
	}
	c.value = float64(out)
}

func (c *Containment) Value() float64 { return c.value }
func (c *Containment) Reset()         { c.value = 0 }

// Truncation is the number of particles whose neighbor list overflowed
// in the last neighbor search.
type Truncation struct {
	name  string
	value float64
}

func NewTruncation() *Truncation {
	return &Truncation{name: "truncated"}
}

func (t *Truncation) Name() string        { return t.name }
func (t *Truncation) Observe(f sim.Frame) { t.value = float64(f.Truncated) }
func (t *Truncation) Value() float64      { return t.value }
func (t *Truncation) Reset()              { t.value = 0 }
