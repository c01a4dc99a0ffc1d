package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/sim"
)

func averageHeight(d *sim.Driver) float64 {
	_, ys := d.Positions()
	floor := d.Config().Height - d.Config().Floor
	sum := 0.0
	for i := 0; i < d.NumFluid(); i++ {
		sum += floor - ys[i]
	}
	return sum / float64(d.NumFluid())
}

func copyPositions(d *sim.Driver) ([]float64, []float64) {
	xs, ys := d.Positions()
	return append([]float64(nil), xs...), append([]float64(nil), ys...)
}

func expectFinite(d *sim.Driver) {
	xs, ys := d.Positions()
	for i := 0; i < d.NumFluid(); i++ {
		Expect(math.IsNaN(xs[i]) || math.IsInf(xs[i], 0)).To(BeFalse(), "x[%d]", i)
		Expect(math.IsNaN(ys[i]) || math.IsInf(ys[i], 0)).To(BeFalse(), "y[%d]", i)
	}
}

var _ = Describe("Driver", func() {
	var (
		cfg *config.Config
		d   *sim.Driver
	)

	BeforeEach(func() {
		cfg = config.DefaultConfig()
	})

	JustBeforeEach(func() {
		var err error
		d, err = sim.New(cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("dam break", func() {
		BeforeEach(func() {
			cfg.Layout = "dam_break"
			cfg.Particles = 400
			cfg.Width, cfg.Height = 400, 400
		})

		It("collapses the column without blowing up", func() {
			start := averageHeight(d)
			Expect(start).To(BeNumerically(">", 100))

			result, err := d.Run(context.Background(), 200)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Frames).To(Equal(200))

			expectFinite(d)
			Expect(averageHeight(d)).To(BeNumerically("<", 0.8*start))
		})

		It("spreads fluid across the floor", func() {
			_, err := d.Run(context.Background(), 200)
			Expect(err).NotTo(HaveOccurred())

			xs, _ := d.Positions()
			maxX := 0.0
			for i := 0; i < d.NumFluid(); i++ {
				maxX = math.Max(maxX, xs[i])
			}
			Expect(maxX).To(BeNumerically(">", cfg.Width/4))
		})
	})

	Context("reset", func() {
		BeforeEach(func() {
			cfg.Particles = 200
			cfg.Jitter = 0.5
		})

		It("produces bit-identical layouts", func() {
			d.Reset()
			x1, y1 := copyPositions(d)
			d.Reset()
			x2, y2 := copyPositions(d)
			Expect(x2).To(Equal(x1))
			Expect(y2).To(Equal(y1))
		})

		It("restores the seeded layout after stepping", func() {
			x0, y0 := copyPositions(d)
			for i := 0; i < 20; i++ {
				d.Step(&sim.Pointer{Active: true, X: 200, Y: 200, VX: 5})
			}
			Expect(d.Frame()).To(Equal(20))

			d.Reset()
			x1, y1 := copyPositions(d)
			Expect(x1).To(Equal(x0))
			Expect(y1).To(Equal(y0))
			Expect(d.Frame()).To(Equal(0))
			Expect(d.Time()).To(BeZero())
		})
	})

	It("never moves boundary particles", func() {
		nf := d.NumFluid()
		x0, y0 := copyPositions(d)

		d.SetInput(sim.Stir(200, 300, 80, 0.5))
		_, err := d.Run(context.Background(), 60)
		Expect(err).NotTo(HaveOccurred())

		xs, ys := d.Positions()
		Expect(xs[nf:]).To(Equal(x0[nf:]))
		Expect(ys[nf:]).To(Equal(y0[nf:]))
	})

	It("keeps fluid inside the box under interaction", func() {
		d.SetInput(sim.Stir(200, 350, 120, 0.3))
		for i := 0; i < 60; i++ {
			_, err := d.Run(context.Background(), 1)
			Expect(err).NotTo(HaveOccurred())

			xs, ys := d.Positions()
			minX, maxX, minY, maxY := d.System().Params().Bounds()
			for j := 0; j < d.NumFluid(); j++ {
				Expect(xs[j]).To(BeNumerically(">=", minX))
				Expect(xs[j]).To(BeNumerically("<=", maxX))
				Expect(ys[j]).To(BeNumerically(">=", minY))
				Expect(ys[j]).To(BeNumerically("<=", maxY))
			}
		}
	})

	It("is deterministic across drivers", func() {
		other, err := sim.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 15; i++ {
			d.Step(nil)
			other.Step(nil)
		}
		x1, y1 := copyPositions(d)
		x2, y2 := copyPositions(other)
		Expect(x2).To(Equal(x1))
		Expect(y2).To(Equal(y1))
	})

	Describe("SetParticleCount", func() {
		It("rebuilds with the new count", func() {
			boundary := d.Total() - d.NumFluid()
			d.Step(nil)

			Expect(d.SetParticleCount(250)).To(Succeed())
			Expect(d.NumFluid()).To(Equal(250))
			Expect(d.Total()).To(Equal(250 + boundary))
			Expect(d.Frame()).To(Equal(0))
			Expect(d.Config().Particles).To(Equal(250))
		})

		It("accepts an empty box", func() {
			Expect(d.SetParticleCount(0)).To(Succeed())
			Expect(d.NumFluid()).To(Equal(0))
			d.Step(nil)
		})

		It("rejects counts out of range", func() {
			err := d.SetParticleCount(config.MaxParticles + 1)
			Expect(err).To(MatchError(config.ErrParticleCount))
			Expect(d.NumFluid()).To(Equal(cfg.Particles))
		})
	})
})
