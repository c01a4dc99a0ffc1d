package fluid

import (
	"math"

	"github.com/san-kum/fluidsim/internal/kernel"
)

// Substep advances the fluid by one time step. ptr may be nil.
func (s *System) Substep(ptr *Pointer) {
	s.searchNeighbors()
	s.resetAccelerations()
	s.computeDensity()
	s.computePressure()
	s.computeForces()
	s.applyPointer(ptr)
	s.integrate()
}

func (s *System) searchNeighbors() {
	s.grid.Rebuild(s.x, s.y)
	h := s.kern.H()
	for i := 0; i < s.total; i++ {
		s.grid.Query(s.x[i], s.y[i], i, h, s.nbrs.At(i), s.x, s.y)
	}
}

func (s *System) resetAccelerations() {
	for i := 0; i < s.numFluid; i++ {
		s.ax[i] = 0
		s.ay[i] = s.p.Gravity
	}
}

func (s *System) computeDensity() {
	rho0 := s.p.RestDensity
	for i := 0; i < s.numFluid; i++ {
		d := s.mass * s.kern.W0()
		n := s.nbrs.At(i)
		for k := 0; k < n.Size; k++ {
			j := int(n.IDs[k])
			w := s.kern.Weight(n.Dist[k])
			if j < s.numFluid {
				d += s.mass * w
			} else {
				d += s.psi[j] * w
			}
		}
		s.rho[i] = math.Max(d, rho0)
	}
}

// computePressure applies Tait's equation of state.
func (s *System) computePressure() {
	rho0 := s.p.RestDensity
	for i := 0; i < s.numFluid; i++ {
		s.press[i] = s.p.Stiffness * (math.Pow(s.rho[i]/rho0, s.p.Exponent) - 1.0)
	}
}

// computeForces accumulates pressure, artificial viscosity and surface
// tension into the accelerations of fluid particles. Each pair is visited
// once from each side; every visit writes only to particle i.
func (s *System) computeForces() {
	h := s.kern.H()
	soft := 0.01 * h * h
	visc := s.p.Viscosity * s.p.ParticleRadius
	tension := s.p.Tension
	m := s.mass

	for i := 0; i < s.numFluid; i++ {
		dpi := s.press[i] / (s.rho[i] * s.rho[i])
		ax, ay := 0.0, 0.0

		n := s.nbrs.At(i)
		for k := 0; k < n.Size; k++ {
			j := int(n.IDs[k])
			r, dx, dy := n.Dist[k], n.DX[k], n.DY[k]
			if r < kernel.Epsilon {
				continue
			}
			gx, gy := s.kern.Gradient(dx, dy, r)

			if j >= s.numFluid {
				psi := s.psi[j]
				ax -= psi * dpi * gx
				ay -= psi * dpi * gy

				if vr := s.vx[i]*dx + s.vy[i]*dy; vr < 0 {
					pi := -visc * vr / ((r*r + soft) * s.rho[i])
					ax -= psi * pi * gx
					ay -= psi * pi * gy
				}
				continue
			}

			dpj := s.press[j] / (s.rho[j] * s.rho[j])
			ax -= m * (dpi + dpj) * gx
			ay -= m * (dpi + dpj) * gy

			vxij, vyij := s.vx[i]-s.vx[j], s.vy[i]-s.vy[j]
			if vr := vxij*dx + vyij*dy; vr < 0 {
				rhoBar := 0.5 * (s.rho[i] + s.rho[j])
				pi := -visc * vr / ((r*r + soft) * rhoBar)
				ax -= m * pi * gx
				ay -= m * pi * gy
			}

			if tension != 0 {
				f := tension * (m / s.rho[j]) * s.kern.Weight(r)
				ax -= f * dx
				ay -= f * dy
			}
		}
		s.ax[i] += ax
		s.ay[i] += ay
	}
}

// applyPointer pushes fluid within the pointer radius away from it.
func (s *System) applyPointer(ptr *Pointer) {
	if ptr == nil || !ptr.Active {
		return
	}
	radius := s.p.PointerRadius
	for i := 0; i < s.numFluid; i++ {
		dx, dy := s.x[i]-ptr.X, s.y[i]-ptr.Y
		d := math.Sqrt(dx*dx + dy*dy)
		if d >= radius || d < kernel.Epsilon {
			continue
		}
		f := s.p.PointerStrength * (1 - d/radius) / d
		s.vx[i] += f * dx
		s.vy[i] += f * dy
	}
}

// integrate is a symplectic Euler step: velocity first, then position
// from the new velocity.
func (s *System) integrate() {
	dt := s.p.Dt
	maxV := s.p.MaxSpeed
	for i := 0; i < s.numFluid; i++ {
		vx := s.vx[i] + dt*s.ax[i]
		vy := s.vy[i] + dt*s.ay[i]
		if v := math.Sqrt(vx*vx + vy*vy); v > maxV {
			vx *= maxV / v
			vy *= maxV / v
		}
		s.vx[i], s.vy[i] = vx, vy
		s.x[i] += dt * vx
		s.y[i] += dt * vy
		s.collide(i)
	}
}

// collide clamps particle i into the box, reflecting and damping the
// velocity component of every wall it touched.
func (s *System) collide(i int) {
	minX, maxX, minY, maxY := s.p.Bounds()
	e := -s.p.Restitution
	if s.x[i] < minX {
		s.x[i] = minX
		s.vx[i] *= e
	} else if s.x[i] > maxX {
		s.x[i] = maxX
		s.vx[i] *= e
	}
	if s.y[i] < minY {
		s.y[i] = minY
		s.vy[i] *= e
	} else if s.y[i] > maxY {
		s.y[i] = maxY
		s.vy[i] *= e
	}
}

// Drag moves fluid under an active pointer along the pointer's motion.
// It is applied once per frame after all sub-steps.
func (s *System) Drag(ptr *Pointer) {
	if ptr == nil || !ptr.Active {
		return
	}
	radius := s.p.PointerRadius
	for i := 0; i < s.numFluid; i++ {
		dx, dy := s.x[i]-ptr.X, s.y[i]-ptr.Y
		d := math.Sqrt(dx*dx + dy*dy)
		if d >= radius {
			continue
		}
		f := s.p.DragGain * (1 - d/radius)
		s.x[i] += f * ptr.VX
		s.y[i] += f * ptr.VY
		s.collide(i)
	}
}
