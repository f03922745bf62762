// Package dag builds the in-memory commit graph: one node per commit keyed
// by hash, parent→child edges derived from parent hashes, and a
// deterministic branch attribution for every node.
//
// The graph is acyclic by construction of Git history; Validate checks the
// invariant anyway, along with the invariant that every referenced parent
// exists in the node table.
package dag

import (
	"errors"
	"slices"

	"github.com/ZUXTUO/commit-view/pkg/gitrepo"
)

var (
	// ErrMissingParent is returned by [Build] and [DAG.Validate] when a
	// commit references a parent hash that is not in the node table.
	// The reader collects all commits reachable from every branch head,
	// so a missing parent indicates a corrupt snapshot.
	ErrMissingParent = errors.New("commit references a parent outside the graph")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is
	// detected. Git history is acyclic by construction, so this also
	// indicates a corrupt snapshot. Cycles are detected using
	// depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Node is a commit in the graph plus its branch attribution.
type Node struct {
	Commit gitrepo.Commit

	// Branch is the owning branch: the first branch in the deterministic
	// branch order whose ancestry walk reaches this commit. It decides
	// the node's lane and color.
	Branch string

	// Branches is the full membership set (every branch that can reach
	// this commit), sorted by name. Ownership does not erase membership.
	Branches []string
}

// Edge is a directed parent→child connection.
type Edge struct {
	From string // Parent commit hash
	To   string // Child commit hash
}

// DAG is the commit graph for one repository snapshot.
// The zero value is not usable - use [Build] to create one.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	edges    []Edge
	children map[string][]string // parent hash -> child hashes
	branches []string            // deterministic branch order, main first
	main     string
}

// Node returns the node with the given hash and true, or nil and false.
func (d *DAG) Node(hash string) (*Node, bool) {
	n, ok := d.nodes[hash]
	return n, ok
}

// Nodes returns all nodes sorted by commit hash, so iteration order is
// stable across runs.
func (d *DAG) Nodes() []*Node {
	hashes := make([]string, 0, len(d.nodes))
	for h := range d.nodes {
		hashes = append(hashes, h)
	}
	slices.Sort(hashes)
	nodes := make([]*Node, len(hashes))
	for i, h := range hashes {
		nodes[i] = d.nodes[h]
	}
	return nodes
}

// Edges returns a copy of all parent→child edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// Children returns the child hashes of the given commit.
// The returned slice is a read-only view.
func (d *DAG) Children(hash string) []string { return d.children[hash] }

// Parents returns the parent hashes of the given commit.
func (d *DAG) Parents(hash string) []string {
	n, ok := d.nodes[hash]
	if !ok {
		return nil
	}
	return n.Commit.Parents
}

// InDegree returns the number of parents (incoming arrows when drawn).
func (d *DAG) InDegree(hash string) int { return len(d.Parents(hash)) }

// OutDegree returns the number of children.
func (d *DAG) OutDegree(hash string) int { return len(d.children[hash]) }

// NodeCount returns the number of commits in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of parent→child edges.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Branches returns the deterministic branch order: the main branch first,
// remaining branches sorted by name. Lane assignment follows this order.
func (d *DAG) Branches() []string { return d.branches }

// Main returns the name of the main branch, or "" for an empty graph.
func (d *DAG) Main() string { return d.main }

// Lane returns the lane index of a branch in the deterministic order,
// or -1 if the branch is unknown. The main branch is always lane 0.
func (d *DAG) Lane(branch string) int {
	return slices.Index(d.branches, branch)
}

// Tips returns the hashes of commits with no children, sorted.
func (d *DAG) Tips() []string {
	var tips []string
	for h := range d.nodes {
		if len(d.children[h]) == 0 {
			tips = append(tips, h)
		}
	}
	slices.Sort(tips)
	return tips
}

// Roots returns the hashes of commits with no parents, sorted.
func (d *DAG) Roots() []string {
	var roots []string
	for h, n := range d.nodes {
		if len(n.Commit.Parents) == 0 {
			roots = append(roots, h)
		}
	}
	slices.Sort(roots)
	return roots
}

// Validate checks graph integrity and returns nil if valid.
// It verifies that every referenced parent exists in the node table and
// that the graph is acyclic. Cycle detection runs in O(N+E) time using
// depth-first search.
func (d *DAG) Validate() error {
	for _, n := range d.nodes {
		for _, p := range n.Commit.Parents {
			if _, ok := d.nodes[p]; !ok {
				return ErrMissingParent
			}
		}
	}
	return d.detectCycles()
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(hash string)
	dfs = func(hash string) {
		color[hash] = gray
		for _, child := range d.children[hash] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[hash] = black
	}

	for hash := range d.nodes {
		if color[hash] == white {
			dfs(hash)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}
