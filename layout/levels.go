// Package layout assigns positions to the visual units of each diagram family.
//
// Layouts work in canvas coordinates and never draw. Each family returns a
// plain value describing boxes, routed connector polylines and label
// anchors that the render package turns into characters.
package layout

import (
	"io"

	"github.com/charmbracelet/log"
)

// Spacing holds the user-tunable gaps shared by every layout.
type Spacing struct {
	PaddingX   int // horizontal gap between boxes
	PaddingY   int // vertical gap between boxes
	BoxPadding int // blank cells between a box border and its text
}

// DefaultSpacing matches the defaults of the public options record.
var DefaultSpacing = Spacing{PaddingX: 5, PaddingY: 5, BoxPadding: 1}

// Clamp returns s with negative gaps raised to zero.
func (s Spacing) Clamp() Spacing {
	return Spacing{
		PaddingX:   max(s.PaddingX, 0),
		PaddingY:   max(s.PaddingY, 0),
		BoxPadding: max(s.BoxPadding, 0),
	}
}

// Link is a directed parent to child pair used for leveling.
type Link struct {
	From, To string
}

// backEdge represents an edge that creates a cycle
type backEdge struct {
	from, to int
}

// findBackEdges identifies edges that close a cycle. The DFS visits ids and
// their outgoing links in declaration order, so the edge that loses is
// always the first one found that way.
func findBackEdges(n int, outgoing [][]int) map[backEdge]bool {
	back := make(map[backEdge]bool)
	visited := make([]int, n) // 0=unvisited, 1=visiting, 2=visited

	var dfs func(u int)
	dfs = func(u int) {
		visited[u] = 1
		for _, v := range outgoing[u] {
			switch visited[v] {
			case 1:
				back[backEdge{u, v}] = true
			case 0:
				dfs(v)
			}
		}
		visited[u] = 2
	}

	for u := 0; u < n; u++ {
		if visited[u] == 0 {
			dfs(u)
		}
	}
	return back
}

// Levels assigns every id its level: ids without parents sit at level 0 and
// every other id at one more than its deepest parent. Links to unknown ids
// and self links are ignored and links closing a cycle are dropped first,
// so every id ends up below all of its remaining parents.
func Levels(ids []string, links []Link) map[string]int {
	return assignLevels(ids, links, true)
}

// CappedLevels assigns levels by relaxing from the parentless ids over every
// link, cycles included. Growth stops at len(ids)-1, which bounds the work
// on cyclic input; ids only reachable through a cycle with no parentless
// entry stay at level 0.
func CappedLevels(ids []string, links []Link) map[string]int {
	return assignLevels(ids, links, false)
}

func assignLevels(ids []string, links []Link, breakCycles bool) map[string]int {
	n := len(ids)
	index := make(map[string]int, n)
	for i, id := range ids {
		index[id] = i
	}

	outgoing := make([][]int, n)
	for _, l := range links {
		u, ok1 := index[l.From]
		v, ok2 := index[l.To]
		if !ok1 || !ok2 || u == v {
			continue
		}
		outgoing[u] = append(outgoing[u], v)
	}

	var back map[backEdge]bool
	if breakCycles {
		back = findBackEdges(n, outgoing)
	}
	hasParent := make([]bool, n)
	for u, succ := range outgoing {
		kept := succ[:0:0]
		for _, v := range succ {
			if !back[backEdge{u, v}] {
				kept = append(kept, v)
				hasParent[v] = true
			}
		}
		outgoing[u] = kept
	}

	level := make([]int, n)
	var queue []int
	for u := 0; u < n; u++ {
		if !hasParent[u] {
			queue = append(queue, u)
		}
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range outgoing[u] {
			next := level[u] + 1
			if next > level[v] && next <= n-1 {
				level[v] = next
				queue = append(queue, v)
			}
		}
	}

	out := make(map[string]int, n)
	for i, id := range ids {
		out[id] = level[i]
	}
	return out
}

// Rows groups ids by level, keeping declaration order inside each row.
func Rows(ids []string, levels map[string]int) [][]string {
	var rows [][]string
	for _, id := range ids {
		l := levels[id]
		for len(rows) <= l {
			rows = append(rows, nil)
		}
		rows[l] = append(rows[l], id)
	}
	return rows
}

// orDiscard returns l, or a logger that drops everything when l is nil.
func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}
