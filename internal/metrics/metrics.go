// Package metrics provides per-frame diagnostics for fluid runs. Each
// metric reports the value for the most recent frame it observed.
package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/fluidsim/internal/sim"
)

// Default returns a fresh set of the standard diagnostics.
func Default() []sim.Metric {
	return []sim.Metric{
		NewAverageHeight(),
		NewKineticEnergy(),
		NewMaxSpeed(),
		NewContainment(),
		NewTruncation(),
		NewStability(0.99),
	}
}

// speedsSquared writes |v|^2 of every fluid particle into buf, growing it
// as needed.
func speedsSquared(f sim.Frame, buf, tmp []float64) ([]float64, []float64) {
	n := f.NumFluid
	if cap(buf) < n {
		buf, tmp = make([]float64, n), make([]float64, n)
	}
	buf, tmp = buf[:n], tmp[:n]
	floats.MulTo(buf, f.VX[:n], f.VX[:n])
	floats.MulTo(tmp, f.VY[:n], f.VY[:n])
	floats.Add(buf, tmp)
	return buf, tmp
}

// AverageHeight is the mean height of fluid particles above the floor.
type AverageHeight struct {
	name  string
	buf   []float64
	value float64
}

func NewAverageHeight() *AverageHeight {
	return &AverageHeight{name: "avg_height"}
}

func (a *AverageHeight) Name() string { return a.name }

func (a *AverageHeight) Observe(f sim.Frame) {
	n := f.NumFluid
	if n == 0 {
		a.value = 0
		return
	}
	if cap(a.buf) < n {
		a.buf = make([]float64, n)
	}
	a.buf = a.buf[:n]
	copy(a.buf, f.Y[:n])
	floats.Scale(-1, a.buf)
	floats.AddConst(f.Params.Height-f.Params.Floor, a.buf)
	a.value = floats.Sum(a.buf) / float64(n)
}

func (a *AverageHeight) Value() float64 { return a.value }
func (a *AverageHeight) Reset()         { a.value = 0 }

type KineticEnergy struct {
	name     string
	buf, tmp []float64
	value    float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(f sim.Frame) {
	k.buf, k.tmp = speedsSquared(f, k.buf, k.tmp)
	k.value = 0.5 * f.Mass * floats.Sum(k.buf)
}

func (k *KineticEnergy) Value() float64 { return k.value }
func (k *KineticEnergy) Reset()         { k.value = 0 }
