package pathfinding

import (
	"container/heap"

	"github.com/cockroachdb/errors"

	"termaid/diagram"
)

var (
	// ErrNoPath is returned when the goal cannot be reached.
	ErrNoPath = errors.New("no path found")
	// ErrBlocked is returned when the start or goal lies on an obstacle.
	ErrBlocked = errors.New("endpoint is blocked")
	// ErrNodeLimit is returned when the search explores too many cells.
	ErrNodeLimit = errors.New("pathfinding exceeded node limit")
)

// AStarNode represents a state in the A* search.
type AStarNode struct {
	Point     diagram.Point
	GCost     int // Cost from start
	HCost     int // Heuristic cost to goal
	FCost     int // GCost + HCost
	Parent    *AStarNode
	Direction diagram.Direction // Direction we entered this node from
	Index     int               // Index in the heap
	order     int               // push sequence, last tie-break
}

// NodeQueue is a priority queue for A* nodes.
type NodeQueue []*AStarNode

func (nq NodeQueue) Len() int { return len(nq) }
func (nq NodeQueue) Less(i, j int) bool {
	if nq[i].FCost != nq[j].FCost {
		return nq[i].FCost < nq[j].FCost
	}
	// Prefer nodes closer to goal.
	if nq[i].HCost != nq[j].HCost {
		return nq[i].HCost < nq[j].HCost
	}
	return nq[i].order < nq[j].order
}

func (nq NodeQueue) Swap(i, j int) {
	nq[i], nq[j] = nq[j], nq[i]
	nq[i].Index = i
	nq[j].Index = j
}

func (nq *NodeQueue) Push(x interface{}) {
	node := x.(*AStarNode)
	node.Index = len(*nq)
	*nq = append(*nq, node)
}

func (nq *NodeQueue) Pop() interface{} {
	old := *nq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil  // avoid memory leak
	node.Index = -1 // for safety
	*nq = old[0 : n-1]
	return node
}

// AStarPathFinder implements A* pathfinding with turn and crossing penalties.
type AStarPathFinder struct {
	costs    PathCost
	maxNodes int // Maximum nodes to explore (safety limit)
}

// NewAStarPathFinder creates a new A* path finder with the given cost model.
func NewAStarPathFinder(costs PathCost) *AStarPathFinder {
	return &AStarPathFinder{
		costs:    costs,
		maxNodes: 50000,
	}
}

// SetMaxNodes sets the maximum number of nodes to explore.
func (a *AStarPathFinder) SetMaxNodes(max int) {
	a.maxNodes = max
}

// FindPath finds the cheapest orthogonal path from start to end avoiding
// obstacles. The result lists every cell along the way.
func (a *AStarPathFinder) FindPath(start, end diagram.Point, obstacles ObstacleChecker) (diagram.Path, error) {
	return a.FindRoute(start, end, obstacles, nil)
}

// FindRoute is FindPath with an extra checker for cells already taken by
// other routes. Such cells stay passable but cost CrossingCost more.
func (a *AStarPathFinder) FindRoute(start, end diagram.Point, obstacles, crossings ObstacleChecker) (diagram.Path, error) {
	if start == end {
		return diagram.Path{Points: []diagram.Point{start}}, nil
	}
	if obstacles != nil && (obstacles(start) || obstacles(end)) {
		return diagram.Path{}, errors.Wrapf(ErrBlocked, "route %v -> %v", start, end)
	}

	openSet := &NodeQueue{}
	closed := make(map[diagram.Point]bool)
	seen := make(map[diagram.Point]*AStarNode)
	pushed := 0

	startNode := &AStarNode{Point: start, HCost: a.heuristic(start, end), Direction: -1}
	startNode.FCost = startNode.HCost
	heap.Push(openSet, startNode)
	seen[start] = startNode

	explored := 0
	for openSet.Len() > 0 {
		explored++
		if explored > a.maxNodes {
			return diagram.Path{}, errors.Wrapf(ErrNodeLimit, "route %v -> %v", start, end)
		}

		current := heap.Pop(openSet).(*AStarNode)
		if current.Point == end {
			return reconstructPath(current), nil
		}
		closed[current.Point] = true

		for _, next := range neighbors(current.Point, end) {
			if closed[next] {
				continue
			}
			if obstacles != nil && obstacles(next) {
				continue
			}
			dir, _ := diagram.DirectionBetween(current.Point, next)
			g := a.calculateGCost(current, next, dir, crossings)

			existing, ok := seen[next]
			if !ok {
				pushed++
				n := &AStarNode{
					Point:     next,
					GCost:     g,
					HCost:     a.heuristic(next, end),
					Parent:    current,
					Direction: dir,
					order:     pushed,
				}
				n.FCost = n.GCost + n.HCost
				heap.Push(openSet, n)
				seen[next] = n
			} else if g < existing.GCost {
				existing.GCost = g
				existing.FCost = g + existing.HCost
				existing.Parent = current
				existing.Direction = dir
				heap.Fix(openSet, existing.Index)
			}
		}
	}

	return diagram.Path{}, errors.Wrapf(ErrNoPath, "route %v -> %v", start, end)
}

// heuristic is the Manhattan distance plus one turn when both axes differ.
func (a *AStarPathFinder) heuristic(current, goal diagram.Point) int {
	dx := abs(goal.X - current.X)
	dy := abs(goal.Y - current.Y)
	h := (dx + dy) * a.costs.StraightCost
	if dx > 0 && dy > 0 {
		h += a.costs.TurnCost
	}
	return h
}

// calculateGCost calculates the cost to move from current to next.
func (a *AStarPathFinder) calculateGCost(current *AStarNode, next diagram.Point, nextDir diagram.Direction, crossings ObstacleChecker) int {
	cost := a.costs.StraightCost

	if current.Parent != nil && current.Direction != nextDir {
		cost += a.costs.TurnCost
		// Turning again right after a turn produces zigzags.
		if current.Parent.Parent != nil && current.Parent.Direction != current.Direction {
			cost += a.costs.TurnCost
		}
	}

	if crossings != nil && crossings(next) {
		cost += a.costs.CrossingCost
	}

	return current.GCost + cost
}

// reconstructPath builds the final path from the goal node.
func reconstructPath(goal *AStarNode) diagram.Path {
	var points []diagram.Point
	for n := goal; n != nil; n = n.Parent {
		points = append(points, n.Point)
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return diagram.Path{Points: points, Cost: goal.GCost}
}
