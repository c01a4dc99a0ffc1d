// Package fluid implements a 2-D weakly compressible SPH solver.
//
// Particle state is stored as parallel slices indexed by particle id. Ids
// below [System.NumFluid] are free-moving fluid particles; the remaining
// ids are static boundary samples whose positions are fixed at
// construction. Each call to [System.Substep] runs the phases
//
//	neighbor search -> gravity -> density -> pressure -> forces ->
//	pointer impulse -> symplectic Euler
//
// with every phase finishing over the whole particle range before the
// next begins.
//
// The solver never fails: coincident particles contribute nothing,
// density is floored at rest density, speeds are clamped and neighbor
// lists that overflow are truncated.
package fluid

import (
	"math"

	"github.com/san-kum/fluidsim/internal/kernel"
	"github.com/san-kum/fluidsim/internal/spatial"
)

// System owns all particle arrays and the neighbor index.
type System struct {
	p    Params
	kern *kernel.CubicSpline
	grid *spatial.HashGrid
	nbrs *spatial.Arena

	numFluid, total int
	mass            float64

	x, y   []float64
	vx, vy []float64
	ax, ay []float64
	rho    []float64
	press  []float64
	psi    []float64
}

// New builds a system from explicit fluid and boundary seeds. The seed
// slices are copied. Boundary pseudo-masses are computed once from the
// seeded wall layout.
func New(p Params, fluidX, fluidY, boundaryX, boundaryY []float64) *System {
	nf, nb := len(fluidX), len(boundaryX)
	total := nf + nb
	h := p.SupportRadius()

	s := &System{
		p:        p,
		kern:     kernel.New(h),
		grid:     spatial.NewHashGrid(h, 2*total, total),
		nbrs:     spatial.NewArena(total, p.MaxNeighbors),
		numFluid: nf,
		total:    total,
		x:        make([]float64, total),
		y:        make([]float64, total),
		vx:       make([]float64, total),
		vy:       make([]float64, total),
		ax:       make([]float64, total),
		ay:       make([]float64, total),
		rho:      make([]float64, total),
		press:    make([]float64, total),
		psi:      make([]float64, total),
	}
	copy(s.x, fluidX)
	copy(s.y, fluidY)
	copy(s.x[nf:], boundaryX)
	copy(s.y[nf:], boundaryY)

	s.mass = p.RestDensity / s.latticeSum()
	s.searchNeighbors()
	s.computePsi()
	return s
}

// latticeSum is the kernel sum at a particle of an infinite square
// lattice with the seeding spacing. Dividing rest density by it gives a
// mass for which the seeded grid sits exactly at rest density.
func (s *System) latticeSum() float64 {
	d := s.p.Spacing()
	m := int(math.Ceil(s.kern.H() / d))
	sum := 0.0
	for i := -m; i <= m; i++ {
		for j := -m; j <= m; j++ {
			sum += s.kern.Weight(d * math.Hypot(float64(i), float64(j)))
		}
	}
	return sum
}

// computePsi sums over the boundary range directly so the pseudo-masses
// do not depend on the neighbor cap.
func (s *System) computePsi() {
	h := s.kern.H()
	for i := s.numFluid; i < s.total; i++ {
		delta := s.kern.W0()
		for j := s.numFluid; j < s.total; j++ {
			if j == i {
				continue
			}
			if r := math.Hypot(s.x[i]-s.x[j], s.y[i]-s.y[j]); r < h {
				delta += s.kern.Weight(r)
			}
		}
		s.psi[i] = s.p.RestDensity / delta
	}
}

func (s *System) Params() Params { return s.p }
func (s *System) NumFluid() int  { return s.numFluid }
func (s *System) Total() int     { return s.total }
func (s *System) Mass() float64  { return s.mass }

// Psi returns the pseudo-mass of boundary particle i.
func (s *System) Psi(i int) float64 { return s.psi[i] }

// Positions returns the live position slices for all particles. Callers
// must not modify them.
func (s *System) Positions() (xs, ys []float64) { return s.x, s.y }

// Velocities returns the live velocity slices. Callers must not modify them.
func (s *System) Velocities() (vx, vy []float64) { return s.vx, s.vy }

// Densities returns the live density slice; only fluid ids are meaningful.
func (s *System) Densities() []float64 { return s.rho }

// Truncated is the number of particles whose neighbor list overflowed
// during the last search.
func (s *System) Truncated() int { return s.nbrs.Truncated() }

// SetViscosity and SetTension change force coefficients in place.
func (s *System) SetViscosity(v float64) { s.p.Viscosity = v }
func (s *System) SetTension(v float64)   { s.p.Tension = v }
