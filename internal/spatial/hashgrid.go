// Package spatial implements the uniform-grid hash index used for SPH
// neighbor search.
//
// [HashGrid] buckets particles by hashed cell coordinate using a counting
// sort: one pass counts bucket occupancy, a prefix sum turns counts into
// start offsets, and a second pass scatters ids into one flat array. No
// per-cell allocation happens after construction.
package spatial

import "math"

// HashGrid maps 2-D cells to contiguous ranges of particle ids.
type HashGrid struct {
	cellSize  float64
	tableSize int

	cellStart   []int32 // tableSize+1 offsets into cellEntries
	cellEntries []int32
	cellX       []int32 // integer cell of each particle, for exact lookups
	cellY       []int32
	count       int
}

// NewHashGrid creates an index for up to capacity particles.
func NewHashGrid(cellSize float64, tableSize, capacity int) *HashGrid {
	if tableSize < 1 {
		tableSize = 1
	}
	return &HashGrid{
		cellSize:    cellSize,
		tableSize:   tableSize,
		cellStart:   make([]int32, tableSize+1),
		cellEntries: make([]int32, capacity),
		cellX:       make([]int32, capacity),
		cellY:       make([]int32, capacity),
	}
}

func (g *HashGrid) CellSize() float64 { return g.cellSize }
func (g *HashGrid) TableSize() int    { return g.tableSize }
func (g *HashGrid) Count() int        { return g.count }

func (g *HashGrid) cellCoord(v float64) int32 {
	return int32(math.Floor(v / g.cellSize))
}

func (g *HashGrid) hashCell(cx, cy int32) int {
	h := int64((cx * 92837111) ^ (cy * 689287499))
	if h < 0 {
		h = -h
	}
	return int(h % int64(g.tableSize))
}

// Rebuild indexes every position in xs/ys from scratch.
func (g *HashGrid) Rebuild(xs, ys []float64) {
	n := len(xs)
	if n > len(g.cellEntries) {
		g.cellEntries = make([]int32, n)
		g.cellX = make([]int32, n)
		g.cellY = make([]int32, n)
	}
	g.count = n

	for i := range g.cellStart {
		g.cellStart[i] = 0
	}

	for i := 0; i < n; i++ {
		cx, cy := g.cellCoord(xs[i]), g.cellCoord(ys[i])
		g.cellX[i], g.cellY[i] = cx, cy
		g.cellStart[g.hashCell(cx, cy)]++
	}

	var start int32
	for i := 0; i < g.tableSize; i++ {
		start += g.cellStart[i]
		g.cellStart[i] = start
	}
	g.cellStart[g.tableSize] = start

	// walk backwards so each bucket keeps ids in ascending order
	for i := n - 1; i >= 0; i-- {
		h := g.hashCell(g.cellX[i], g.cellY[i])
		g.cellStart[h]--
		g.cellEntries[g.cellStart[h]] = int32(i)
	}
}

// Query collects particles strictly within radius of (x, y) into out,
// skipping the particle with id exclude (pass -1 to keep all). xs and ys
// must be the positions the grid was last rebuilt from. Once out is full
// the search stops at the next match and out.Truncated is set; remaining
// neighbors are dropped.
func (g *HashGrid) Query(x, y float64, exclude int, radius float64, out *Neighbors, xs, ys []float64) {
	out.Reset()
	if out.Cap() == 0 {
		return
	}

	r2 := radius * radius
	x0, x1 := g.cellCoord(x-radius), g.cellCoord(x+radius)
	y0, y1 := g.cellCoord(y-radius), g.cellCoord(y+radius)

	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			h := g.hashCell(cx, cy)
			for k := g.cellStart[h]; k < g.cellStart[h+1]; k++ {
				j := g.cellEntries[k]
				if int(j) == exclude || g.cellX[j] != cx || g.cellY[j] != cy {
					continue
				}
				dx, dy := x-xs[j], y-ys[j]
				d2 := dx*dx + dy*dy
				if d2 >= r2 {
					continue
				}
				if out.Full() {
					out.Truncated = true
					return
				}
				out.add(j, math.Sqrt(d2), dx, dy)
			}
		}
	}
}
