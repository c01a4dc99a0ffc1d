package viz

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestCanvasDotMapping(t *testing.T) {
	tests := []struct {
		x, y     int
		row, col int
		bit      rune
	}{
		{0, 0, 0, 0, 0x1},
		{1, 0, 0, 0, 0x8},
		{0, 3, 0, 0, 0x40},
		{1, 3, 0, 0, 0x80},
		{2, 4, 1, 1, 0x1},
		{5, 6, 1, 2, 0x20},
	}

	for _, tt := range tests {
		c := NewCanvas(4, 3)
		c.Set(tt.x, tt.y)
		if got := c.Grid[tt.row][tt.col]; got != blank|tt.bit {
			t.Errorf("Set(%d,%d): cell[%d][%d] = %#x, want %#x", tt.x, tt.y, tt.row, tt.col, got, blank|tt.bit)
		}
		if !c.IsSet(tt.x, tt.y) {
			t.Errorf("IsSet(%d,%d) = false", tt.x, tt.y)
		}
		c.Unset(tt.x, tt.y)
		if c.Grid[tt.row][tt.col] != blank {
			t.Errorf("Unset(%d,%d) left %#x", tt.x, tt.y, c.Grid[tt.row][tt.col])
		}
	}
}

func TestCanvasOutOfRange(t *testing.T) {
	c := NewCanvas(2, 2)
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 8}, {100, 100}} {
		c.Set(p[0], p[1])
		c.Mark(p[0], p[1], 3)
		if c.IsSet(p[0], p[1]) {
			t.Errorf("dot %v reported set", p)
		}
	}
	if c.String() != strings.Repeat(string(rune(blank))+string(rune(blank))+"\n", 2) {
		t.Errorf("canvas changed: %q", c.String())
	}
}

func TestCanvasProject(t *testing.T) {
	c := NewCanvas(10, 5) // 20 x 20 dots
	x, y := c.Project(200, 100, 400, 400)
	if x != 10 || y != 5 {
		t.Errorf("Project = (%d, %d), want (10, 5)", x, y)
	}

	c.Plot(0, 0, 400, 400)
	if !c.IsSet(0, 0) {
		t.Error("Plot did not set the origin")
	}
}

func TestDrawLineAndRect(t *testing.T) {
	c := NewCanvas(5, 2)
	c.DrawLine(0, 0, 9, 7)
	if !c.IsSet(0, 0) || !c.IsSet(9, 7) {
		t.Error("line endpoints not set")
	}

	c.Clear()
	c.DrawRect(0, 0, 9, 7)
	for _, p := range [][2]int{{0, 0}, {9, 0}, {9, 7}, {0, 7}, {5, 0}, {0, 4}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("rect dot %v not set", p)
		}
	}
	if c.IsSet(4, 4) {
		t.Error("rect interior set")
	}
}

func TestDrawCircle(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawCircle(10, 10, 4)
	for _, p := range [][2]int{{14, 10}, {6, 10}, {10, 14}, {10, 6}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("circle dot %v not set", p)
		}
	}
	if c.IsSet(10, 10) {
		t.Error("circle center set")
	}
}

func TestMarkLevels(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Mark(0, 0, 2)
	c.Mark(1, 1, 1)
	if c.Level[0][0] != 2 {
		t.Errorf("level = %d, want max 2", c.Level[0][0])
	}
	c.Clear()
	if c.Level[0][0] != 0 {
		t.Error("Clear kept levels")
	}
}

func TestRenderKeepsCells(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Mark(0, 0, 1)
	c.Mark(4, 4, 9) // past the style list

	styles := []lipgloss.Style{lipgloss.NewStyle(), lipgloss.NewStyle()}
	out := c.Render(styles)
	if got := strings.Count(out, "\n"); got != 2 {
		t.Errorf("expected 2 rows, got %d", got)
	}
	if c.Render(nil) != c.String() {
		t.Error("Render without styles should match String")
	}
}
