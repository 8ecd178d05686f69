// Package diagram contains the graph models produced by the parsers and consumed
// by layout and rendering.
//
// Every model is built once per render call and treated as read-only afterwards.
package diagram

// Point represents a 2D coordinate on the character grid.
type Point struct {
	X, Y int
}

// Direction represents a cardinal direction.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns the string representation of a Direction.
func (d Direction) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

// Opposite returns the opposite direction.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	case West:
		return East
	default:
		return d
	}
}

// Step returns the neighbouring point one cell away in direction d.
func (p Point) Step(d Direction) Point {
	switch d {
	case North:
		return Point{p.X, p.Y - 1}
	case East:
		return Point{p.X + 1, p.Y}
	case South:
		return Point{p.X, p.Y + 1}
	case West:
		return Point{p.X - 1, p.Y}
	}
	return p
}

// DirectionBetween returns the direction of travel from a to an orthogonal
// neighbour b. The second result is false when a and b are not on a common axis.
func DirectionBetween(a, b Point) (Direction, bool) {
	switch {
	case a.X == b.X && b.Y < a.Y:
		return North, true
	case a.X == b.X && b.Y > a.Y:
		return South, true
	case a.Y == b.Y && b.X > a.X:
		return East, true
	case a.Y == b.Y && b.X < a.X:
		return West, true
	}
	return North, false
}

// Rect is an axis-aligned rectangle of character cells.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Right returns the x coordinate of the rightmost column.
func (r Rect) Right() int { return r.X + r.Width - 1 }

// Bottom returns the y coordinate of the bottom row.
func (r Rect) Bottom() int { return r.Y + r.Height - 1 }

// CenterX returns the middle column.
func (r Rect) CenterX() int { return r.X + r.Width/2 }

// CenterY returns the middle row.
func (r Rect) CenterY() int { return r.Y + r.Height/2 }

// Contains checks if a point is inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Overlaps reports whether two rectangles share at least one cell.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Inflate grows the rectangle by dx columns on each side and dy rows on each side.
func (r Rect) Inflate(dx, dy int) Rect {
	return Rect{X: r.X - dx, Y: r.Y - dy, Width: r.Width + 2*dx, Height: r.Height + 2*dy}
}

// Union returns the smallest rectangle covering both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Width == 0 || r.Height == 0 {
		return o
	}
	if o.Width == 0 || o.Height == 0 {
		return r
	}
	x1, y1 := min(r.X, o.X), min(r.Y, o.Y)
	x2, y2 := max(r.X+r.Width, o.X+o.Width), max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Path represents a route through the canvas.
type Path struct {
	Points []Point
	Cost   int // Used by pathfinding algorithms
}

// Length returns the number of points in the path.
func (p Path) Length() int {
	return len(p.Points)
}

// IsEmpty returns true if the path has no points.
func (p Path) IsEmpty() bool {
	return len(p.Points) == 0
}
