// Package kernel provides the smoothing kernel used by the SPH solver.
//
// [CubicSpline] is the 2-D cubic spline with compact support h. It is
// normalized so that its integral over the support disk is 1, and its
// gradient is antisymmetric in the separation vector, which keeps
// pairwise pressure forces equal and opposite.
package kernel

import "math"

// Epsilon is the separation below which the gradient is treated as zero.
// Coincident particles have no defined direction.
const Epsilon = 1e-6

// CubicSpline is a 2-D cubic spline kernel with support radius h.
type CubicSpline struct {
	h  float64
	k  float64 // weight normalization
	l  float64 // gradient normalization
	w0 float64
}

// New precomputes the normalization constants for support radius h.
func New(h float64) *CubicSpline {
	c := &CubicSpline{
		h: h,
		k: 40.0 / (7.0 * math.Pi * h * h),
		l: 240.0 / (7.0 * math.Pi * h * h),
	}
	c.w0 = c.Weight(0)
	return c
}

func (c *CubicSpline) H() float64  { return c.h }
func (c *CubicSpline) W0() float64 { return c.w0 }

// Weight evaluates the kernel at separation r. It is zero for r >= h.
func (c *CubicSpline) Weight(r float64) float64 {
	q := r / c.h
	if q >= 1.0 {
		return 0
	}
	if q <= 0.5 {
		q2 := q * q
		return c.k * (6.0*q2*q - 6.0*q2 + 1.0)
	}
	f := 1.0 - q
	return c.k * 2.0 * f * f * f
}

// Gradient evaluates the kernel gradient for the displacement (dx, dy)
// whose length is r. The result is colinear with (dx, dy).
func (c *CubicSpline) Gradient(dx, dy, r float64) (gx, gy float64) {
	if r < Epsilon || r >= c.h {
		return 0, 0
	}
	q := r / c.h
	var s float64
	if q <= 0.5 {
		s = c.l * q * (3.0*q - 2.0)
	} else {
		f := 1.0 - q
		s = -c.l * f * f
	}
	s /= r * c.h
	return s * dx, s * dy
}
