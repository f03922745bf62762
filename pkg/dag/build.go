package dag

import (
	"fmt"
	"slices"

	"github.com/ZUXTUO/commit-view/pkg/gitrepo"
)

// mainCandidates are the branch names recognized as the main branch,
// checked in order. If none exists, the first branch by name is main.
var mainCandidates = []string{"main", "master"}

// Build constructs the commit graph from a repository snapshot.
//
// Branch attribution is deterministic: branches are visited main-first and
// then in name order, and a commit reachable from several branches is owned
// by the first branch that reaches it. A snapshot with zero commits yields
// an empty graph.
func Build(snap *gitrepo.Snapshot) (*DAG, error) {
	d := &DAG{
		nodes:    make(map[string]*Node, len(snap.Commits)),
		children: make(map[string][]string),
	}

	for _, c := range snap.Commits {
		d.nodes[c.Hash] = &Node{Commit: c}
	}

	d.branches = orderBranches(snap.Branches)
	if len(d.branches) > 0 {
		d.main = d.branches[0]
	}

	heads := make(map[string]string, len(snap.Branches))
	for _, b := range snap.Branches {
		heads[b.Name] = b.Head
	}
	for _, branch := range d.branches {
		if err := d.attribute(branch, heads[branch]); err != nil {
			return nil, err
		}
	}
	for _, n := range d.nodes {
		slices.Sort(n.Branches)
	}

	// Edge insertion follows sorted hash order so Edges() is stable.
	for _, n := range d.Nodes() {
		for _, p := range n.Commit.Parents {
			if _, ok := d.nodes[p]; !ok {
				return nil, fmt.Errorf("commit %s: %w", n.Commit.Hash, ErrMissingParent)
			}
			d.edges = append(d.edges, Edge{From: p, To: n.Commit.Hash})
			d.children[p] = append(d.children[p], n.Commit.Hash)
		}
	}

	return d, nil
}

// attribute walks the ancestry of one branch head, recording membership on
// every reachable commit and ownership on commits not yet claimed.
func (d *DAG) attribute(branch, head string) error {
	if _, ok := d.nodes[head]; !ok {
		return fmt.Errorf("branch %s head %s: %w", branch, head, ErrMissingParent)
	}

	visited := make(map[string]bool)
	stack := []string{head}
	for len(stack) > 0 {
		hash := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[hash] {
			continue
		}
		visited[hash] = true

		n, ok := d.nodes[hash]
		if !ok {
			return fmt.Errorf("branch %s: commit %s: %w", branch, hash, ErrMissingParent)
		}
		if n.Branch == "" {
			n.Branch = branch
		}
		n.Branches = append(n.Branches, branch)
		stack = append(stack, n.Commit.Parents...)
	}
	return nil
}

// orderBranches returns the deterministic branch order: the first matching
// main candidate, then every other branch sorted by name. Input branches
// are assumed name-sorted (the reader guarantees it), which makes the
// "first branch" fallback deterministic too.
func orderBranches(branches []gitrepo.Branch) []string {
	if len(branches) == 0 {
		return nil
	}

	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.Name
	}
	slices.Sort(names)

	main := names[0]
	for _, cand := range mainCandidates {
		if slices.Contains(names, cand) {
			main = cand
			break
		}
	}

	ordered := []string{main}
	for _, name := range names {
		if name != main {
			ordered = append(ordered, name)
		}
	}
	return ordered
}
