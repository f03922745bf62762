// Package layout assigns each commit a (row, lane) grid position.
//
// Rows come from a single global topological order consistent with commit
// time: parents always precede children, unrelated commits are ordered by
// timestamp ascending, and hashes break remaining ties. The oldest commit
// is row 0 (top of the diagram). Lanes are the index of the commit's
// owning branch in the graph's deterministic branch order, so the main
// branch is always lane 0.
//
// The layout is a pure function of the graph: recomputing it for an
// unchanged repository yields identical positions.
package layout

import (
	"container/heap"

	"github.com/ZUXTUO/commit-view/pkg/dag"
)

// Position is one commit's grid cell. Rows are contiguous integers
// starting at 0; no two commits share a row.
type Position struct {
	Row  int // Topological/chronological rank, 0 = oldest
	Lane int // Owning branch's lane, 0 = main
}

// Layout holds the computed positions for a graph.
type Layout struct {
	Positions map[string]Position // commit hash -> cell
	Rows      int                 // number of rows in use
	Lanes     int                 // number of lanes in use (max lane + 1)
}

// Position returns the cell for a commit hash.
func (l Layout) Position(hash string) (Position, bool) {
	p, ok := l.Positions[hash]
	return p, ok
}

// Compute produces the layout for a commit graph.
// An empty graph yields an empty layout with zero rows and lanes.
func Compute(g *dag.DAG) Layout {
	l := Layout{Positions: make(map[string]Position, g.NodeCount())}

	// Kahn's algorithm over parent→child edges with a priority queue
	// ordered by (timestamp, hash), so the row order is the unique
	// time-consistent topological order.
	pending := make(map[string]int, g.NodeCount())
	ready := &nodeQueue{}
	heap.Init(ready)

	for _, n := range g.Nodes() {
		pending[n.Commit.Hash] = len(n.Commit.Parents)
		if len(n.Commit.Parents) == 0 {
			heap.Push(ready, n)
		}
	}

	row := 0
	for ready.Len() > 0 {
		n := heap.Pop(ready).(*dag.Node)
		hash := n.Commit.Hash

		lane := g.Lane(n.Branch)
		if lane < 0 {
			lane = 0
		}
		l.Positions[hash] = Position{Row: row, Lane: lane}
		if lane+1 > l.Lanes {
			l.Lanes = lane + 1
		}
		row++

		for _, child := range g.Children(hash) {
			pending[child]--
			if pending[child] == 0 {
				if cn, ok := g.Node(child); ok {
					heap.Push(ready, cn)
				}
			}
		}
	}

	l.Rows = row
	return l
}

// nodeQueue is a min-heap of graph nodes ordered by commit time, with the
// hash as a deterministic tie-break.
type nodeQueue []*dag.Node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	ci, cj := q[i].Commit, q[j].Commit
	if !ci.When.Equal(cj.When) {
		return ci.When.Before(cj.When)
	}
	return ci.Hash < cj.Hash
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(*dag.Node)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
