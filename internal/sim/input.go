package sim

import "math"

// Stir returns an input that drags an active pointer around a circle of
// the given radius centered at (cx, cy), one revolution per period
// seconds. Its velocity is the per-frame displacement.
func Stir(cx, cy, radius, period float64) Input {
	var lastX, lastY float64
	started := false
	return func(frame int, t float64) *Pointer {
		angle := 2 * math.Pi * t / period
		x := cx + radius*math.Cos(angle)
		y := cy + radius*math.Sin(angle)
		if !started {
			lastX, lastY, started = x, y, true
		}
		p := &Pointer{Active: true, X: x, Y: y, VX: x - lastX, VY: y - lastY}
		lastX, lastY = x, y
		return p
	}
}
