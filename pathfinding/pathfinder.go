// Package pathfinding routes orthogonal connectors around obstacles.
//
// Searches run over an abstract integer grid: the flowchart layout uses
// coarse layout cells, the entity-relationship layout uses canvas cells.
// Callers describe the grid through ObstacleChecker functions.
package pathfinding

import "termaid/diagram"

// PathCost defines the cost model for path finding.
type PathCost struct {
	StraightCost int // Base cost for straight movement
	TurnCost     int // Penalty for changing direction
	CrossingCost int // Penalty for entering a cell another route already uses
}

// DefaultPathCost provides reasonable defaults for path finding.
var DefaultPathCost = PathCost{
	StraightCost: 10,
	TurnCost:     20,
	CrossingCost: 15,
}

// ManhattanDistance calculates the Manhattan distance between two points.
func ManhattanDistance(p1, p2 diagram.Point) int {
	return abs(p2.X-p1.X) + abs(p2.Y-p1.Y)
}

// neighbors returns the four orthogonal neighbours of p with the moves that
// reduce the larger remaining axis first. Exploration order feeds the heap
// tie-break, so it has to be a pure function of p and goal.
func neighbors(p, goal diagram.Point) []diagram.Point {
	dx, dy := goal.X-p.X, goal.Y-p.Y

	horiz, vert := diagram.East, diagram.South
	if dx < 0 {
		horiz = diagram.West
	}
	if dy < 0 {
		vert = diagram.North
	}
	first, second := vert, horiz
	if abs(dx) > abs(dy) {
		first, second = horiz, vert
	}

	return []diagram.Point{
		p.Step(first),
		p.Step(second),
		p.Step(second.Opposite()),
		p.Step(first.Opposite()),
	}
}

// SimplifyPath removes intermediate points on straight runs, keeping the
// endpoints and every corner.
func SimplifyPath(path diagram.Path) diagram.Path {
	if len(path.Points) <= 2 {
		return path
	}
	out := []diagram.Point{path.Points[0]}
	for i := 1; i < len(path.Points)-1; i++ {
		prev, cur, next := path.Points[i-1], path.Points[i], path.Points[i+1]
		if (prev.X == cur.X && cur.X == next.X) || (prev.Y == cur.Y && cur.Y == next.Y) {
			continue
		}
		out = append(out, cur)
	}
	out = append(out, path.Points[len(path.Points)-1])
	return diagram.Path{Points: out, Cost: path.Cost}
}

// Turns counts the direction changes along a cell-by-cell path.
func Turns(path diagram.Path) int {
	turns := 0
	for i := 2; i < len(path.Points); i++ {
		d1, _ := diagram.DirectionBetween(path.Points[i-2], path.Points[i-1])
		d2, _ := diagram.DirectionBetween(path.Points[i-1], path.Points[i])
		if d1 != d2 {
			turns++
		}
	}
	return turns
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
