package grid

import "time"

// Point is a pointer position in the shell's coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box, used for rendered cells and menus.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Contains reports whether p lies inside r (min inclusive, max exclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Layout describes where a rendered month grid sits on screen so a pointer
// position can be resolved back to a day.
type Layout struct {
	Month      time.Time
	Origin     Point
	CellWidth  float64
	CellHeight float64
}

// CellRect returns the on-screen box of cell i (0..41).
func (l Layout) CellRect(i int) Rect {
	col, row := float64(i%7), float64(i/7)
	min := Point{X: l.Origin.X + col*l.CellWidth, Y: l.Origin.Y + row*l.CellHeight}
	return Rect{Min: min, Max: Point{X: min.X + l.CellWidth, Y: min.Y + l.CellHeight}}
}

// DayAt resolves p to the date of the cell under it. ok is false when p is
// outside the grid or the layout has no geometry.
func (l Layout) DayAt(p Point) (time.Time, bool) {
	if l.CellWidth <= 0 || l.CellHeight <= 0 {
		return time.Time{}, false
	}
	dx, dy := p.X-l.Origin.X, p.Y-l.Origin.Y
	if dx < 0 || dy < 0 {
		return time.Time{}, false
	}
	col, row := int(dx/l.CellWidth), int(dy/l.CellHeight)
	if col > 6 || row > Cells/7-1 {
		return time.Time{}, false
	}
	return FirstCell(l.Month).AddDate(0, 0, row*7+col), true
}
