package pathfinding

import "termaid/diagram"

// ObstacleChecker is a function that returns true if a point is blocked.
type ObstacleChecker func(diagram.Point) bool

// RectangleObstacle represents a rectangular obstacle (like a node).
type RectangleObstacle struct {
	Rect    diagram.Rect
	Padding int // Extra space around the rectangle
}

// Contains checks if a point is inside the rectangle (including padding).
func (r RectangleObstacle) Contains(p diagram.Point) bool {
	return r.Rect.Inflate(r.Padding, r.Padding).Contains(p)
}

// CreateRectObstacleChecker blocks every cell covered by one of rects.
// Cells listed in open stay passable even when a rectangle covers them;
// routes use this to leave and enter boxes through their ports.
func CreateRectObstacleChecker(rects []diagram.Rect, padding int, open ...diagram.Point) ObstacleChecker {
	obstacles := make([]RectangleObstacle, len(rects))
	for i, r := range rects {
		obstacles[i] = RectangleObstacle{Rect: r, Padding: padding}
	}
	return func(p diagram.Point) bool {
		for _, o := range open {
			if o == p {
				return false
			}
		}
		for _, o := range obstacles {
			if o.Contains(p) {
				return true
			}
		}
		return false
	}
}

// CreateBoundsObstacleChecker blocks points outside bounds.
func CreateBoundsObstacleChecker(bounds diagram.Rect) ObstacleChecker {
	return func(p diagram.Point) bool {
		return !bounds.Contains(p)
	}
}

// CombineObstacleCheckers combines multiple obstacle checkers with OR logic.
func CombineObstacleCheckers(checkers ...ObstacleChecker) ObstacleChecker {
	return func(p diagram.Point) bool {
		for _, checker := range checkers {
			if checker != nil && checker(p) {
				return true
			}
		}
		return false
	}
}

// PathSet records the cells used by already routed paths.
type PathSet struct {
	cells map[diagram.Point]int
}

// NewPathSet creates an empty set.
func NewPathSet() *PathSet {
	return &PathSet{cells: make(map[diagram.Point]int)}
}

// Add marks every cell of path as used.
func (s *PathSet) Add(path diagram.Path) {
	for _, p := range path.Points {
		s.cells[p]++
	}
}

// Uses returns how many paths pass through p.
func (s *PathSet) Uses(p diagram.Point) int {
	return s.cells[p]
}

// Checker reports cells used by at least one path.
func (s *PathSet) Checker() ObstacleChecker {
	return func(p diagram.Point) bool {
		return s.cells[p] > 0
	}
}
