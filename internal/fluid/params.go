package fluid

// Params holds every constant the solver reads. Coordinates follow the
// screen convention: x grows right, y grows down, gravity is +y.
type Params struct {
	ParticleRadius float64
	SupportScale   float64 // support radius h = SupportScale * ParticleRadius
	RestDensity    float64
	Stiffness      float64
	Exponent       float64
	Gravity        float64
	Viscosity      float64
	Tension        float64
	Dt             float64
	MaxSpeed       float64
	Restitution    float64
	MaxNeighbors   int

	Width, Height float64
	Floor         float64 // distance from the bottom edge to the fluid floor

	PointerRadius   float64
	PointerStrength float64
	DragGain        float64
}

func DefaultParams() Params {
	return Params{
		ParticleRadius:  3.0,
		SupportScale:    3.0,
		RestDensity:     1000.0,
		Stiffness:       1e8,
		Exponent:        7,
		Gravity:         1000.0,
		Viscosity:       100.0,
		Tension:         10.0,
		Dt:              0.001,
		MaxSpeed:        600.0,
		Restitution:     0.5,
		MaxNeighbors:    64,
		Width:           400,
		Height:          400,
		Floor:           3.0,
		PointerRadius:   40.0,
		PointerStrength: 40.0,
		DragGain:        0.2,
	}
}

func (p Params) SupportRadius() float64 { return p.SupportScale * p.ParticleRadius }

// Spacing is the seeding distance between neighboring particles.
func (p Params) Spacing() float64 { return 2.0 * p.ParticleRadius }

// Bounds returns the box fluid particle centers are clamped to.
func (p Params) Bounds() (minX, maxX, minY, maxY float64) {
	return p.ParticleRadius, p.Width - p.ParticleRadius, p.ParticleRadius, p.Height - p.Floor
}

// Pointer is an external interaction cursor. VX/VY are its displacement
// per frame, used by the drag nudge.
type Pointer struct {
	Active bool
	X, Y   float64
	VX, VY float64
}
