package spatial

// Neighbors is a fixed-capacity neighbor list for one particle.
// Appends past capacity are dropped and mark the list as truncated.
type Neighbors struct {
	IDs       []int32
	Dist      []float64
	DX, DY    []float64
	Size      int
	Truncated bool
}

// NewNeighbors allocates a standalone list with the given capacity.
func NewNeighbors(capacity int) *Neighbors {
	return &Neighbors{
		IDs:  make([]int32, capacity),
		Dist: make([]float64, capacity),
		DX:   make([]float64, capacity),
		DY:   make([]float64, capacity),
	}
}

func (n *Neighbors) Cap() int   { return len(n.IDs) }
func (n *Neighbors) Len() int   { return n.Size }
func (n *Neighbors) Full() bool { return n.Size >= len(n.IDs) }

func (n *Neighbors) Reset() {
	n.Size = 0
	n.Truncated = false
}

func (n *Neighbors) add(id int32, dist, dx, dy float64) {
	i := n.Size
	n.IDs[i] = id
	n.Dist[i] = dist
	n.DX[i] = dx
	n.DY[i] = dy
	n.Size++
}

// Arena holds one Neighbors list per particle, all backed by shared flat
// slices of length count*capacity.
type Arena struct {
	lists    []Neighbors
	capacity int
}

// NewArena allocates lists for count particles with capacity entries each.
func NewArena(count, capacity int) *Arena {
	ids := make([]int32, count*capacity)
	dist := make([]float64, count*capacity)
	dx := make([]float64, count*capacity)
	dy := make([]float64, count*capacity)

	a := &Arena{lists: make([]Neighbors, count), capacity: capacity}
	for i := range a.lists {
		lo, hi := i*capacity, (i+1)*capacity
		a.lists[i] = Neighbors{
			IDs:  ids[lo:hi:hi],
			Dist: dist[lo:hi:hi],
			DX:   dx[lo:hi:hi],
			DY:   dy[lo:hi:hi],
		}
	}
	return a
}

func (a *Arena) Len() int      { return len(a.lists) }
func (a *Arena) Capacity() int { return a.capacity }

// At returns the list for particle i.
func (a *Arena) At(i int) *Neighbors { return &a.lists[i] }

// Truncated counts the lists that overflowed during the last fill.
func (a *Arena) Truncated() int {
	n := 0
	for i := range a.lists {
		if a.lists[i].Truncated {
			n++
		}
	}
	return n
}
