package fluid

import (
	"math"
	"math/rand"
)

const (
	LayoutCentered = "centered"
	LayoutDamBreak = "dam_break"
)

// Layouts lists the fluid seeding layouts understood by SeedFluid.
func Layouts() []string { return []string{LayoutCentered, LayoutDamBreak} }

// SeedFluid places n fluid particles on a square lattice of spacing
// p.Spacing(). It reports false for an unknown layout.
func SeedFluid(p Params, layout string, n int) (xs, ys []float64, ok bool) {
	switch layout {
	case LayoutCentered:
		xs, ys = centered(p, n)
	case LayoutDamBreak:
		xs, ys = column(p, n)
	default:
		return nil, nil, false
	}
	return xs, ys, true
}

// centered fills a near-square block in the middle of the box.
func centered(p Params, n int) ([]float64, []float64) {
	xs, ys := make([]float64, n), make([]float64, n)
	if n == 0 {
		return xs, ys
	}
	d := p.Spacing()
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	_, _, minY, maxY := p.Bounds()
	offX := (p.Width - float64(cols-1)*d) / 2
	offY := minY + (maxY-minY-float64(rows-1)*d)/2

	for i := 0; i < n; i++ {
		xs[i] = offX + float64(i%cols)*d
		ys[i] = offY + float64(i/cols)*d
	}
	return xs, ys
}

// column stacks a tall block four times as high as wide against the
// left wall and the floor.
func column(p Params, n int) ([]float64, []float64) {
	xs, ys := make([]float64, n), make([]float64, n)
	if n == 0 {
		return xs, ys
	}
	d := p.Spacing()
	cols := int(math.Ceil(math.Sqrt(float64(n) / 4)))
	_, _, _, maxY := p.Bounds()
	x0 := d
	y0 := maxY + p.ParticleRadius - d

	for i := 0; i < n; i++ {
		xs[i] = x0 + float64(i%cols)*d
		ys[i] = y0 - float64(i/cols)*d
	}
	return xs, ys
}

// Jitter perturbs positions by up to amount in each axis using a seeded
// source, then clamps them back into the box.
func Jitter(p Params, xs, ys []float64, amount float64, seed int64) {
	if amount <= 0 {
		return
	}
	rng := rand.New(rand.NewSource(seed))
	minX, maxX, minY, maxY := p.Bounds()
	for i := range xs {
		xs[i] = clamp(xs[i]+(rng.Float64()*2-1)*amount, minX, maxX)
		ys[i] = clamp(ys[i]+(rng.Float64()*2-1)*amount, minY, maxY)
	}
}

// Contained reports whether every position lies inside the fluid box.
func Contained(p Params, xs, ys []float64) bool {
	minX, maxX, minY, maxY := p.Bounds()
	for i := range xs {
		if xs[i] < minX || xs[i] > maxX || ys[i] < minY || ys[i] > maxY {
			return false
		}
	}
	return true
}

// Enclosure samples the four walls of the box. The side walls sit one
// particle radius outside the fluid box and the bottom wall one radius
// below the floor. Corners are emitted once.
func Enclosure(p Params) (xs, ys []float64) {
	right, bottom, nx, ny := enclosureGrid(p)
	at := func(i, n int, span float64) float64 { return float64(i) * span / float64(n-1) }

	for i := 0; i < nx; i++ {
		xs = append(xs, at(i, nx, right))
		ys = append(ys, 0)
	}
	for i := 0; i < nx; i++ {
		xs = append(xs, at(i, nx, right))
		ys = append(ys, bottom)
	}
	for j := 1; j < ny-1; j++ {
		xs = append(xs, 0)
		ys = append(ys, at(j, ny, bottom))
	}
	for j := 1; j < ny-1; j++ {
		xs = append(xs, right)
		ys = append(ys, at(j, ny, bottom))
	}
	return xs, ys
}

// EnclosureSize is the number of samples Enclosure places for p.
func EnclosureSize(p Params) int {
	_, _, nx, ny := enclosureGrid(p)
	return 2*nx + 2*(ny-2)
}

func enclosureGrid(p Params) (right, bottom float64, nx, ny int) {
	d := p.Spacing()
	right = p.Width
	bottom = p.Height - p.Floor + p.ParticleRadius
	nx = int(math.Ceil(right/d)) + 1
	ny = int(math.Ceil(bottom/d)) + 1
	return right, bottom, nx, ny
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
