// Package graph provides the JSON serialization format for commit
// graphs. It backs the machine-readable "json" output format and is
// designed for stable, deterministic output: commits are ordered by
// layout row, branches by lane.
package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ZUXTUO/commit-view/pkg/dag"
	"github.com/ZUXTUO/commit-view/pkg/layout"
)

// Document is the canonical serialization format for a laid-out commit
// graph.
type Document struct {
	Branches []BranchEntry `json:"branches"`
	Commits  []CommitEntry `json:"commits"`
	Edges    []EdgeEntry   `json:"edges"`
}

// BranchEntry describes one branch and its assigned lane.
type BranchEntry struct {
	Name string `json:"name"`
	Lane int    `json:"lane"`
}

// CommitEntry describes one commit with its grid position.
type CommitEntry struct {
	Hash     string    `json:"hash"`
	Parents  []string  `json:"parents,omitempty"`
	Author   string    `json:"author"`
	Date     time.Time `json:"date"`
	Message  string    `json:"message"`
	Added    int       `json:"added"`
	Removed  int       `json:"removed"`
	Branch   string    `json:"branch"`
	Branches []string  `json:"branches,omitempty"`
	Row      int       `json:"row"`
	Lane     int       `json:"lane"`
}

// EdgeEntry is one parent→child relationship.
type EdgeEntry struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FromDAG converts a commit graph and its layout into the serialization
// format. Commits are emitted in row order.
func FromDAG(g *dag.DAG, l layout.Layout) Document {
	doc := Document{
		Branches: make([]BranchEntry, 0, len(g.Branches())),
		Commits:  make([]CommitEntry, 0, g.NodeCount()),
		Edges:    make([]EdgeEntry, 0, g.EdgeCount()),
	}

	for i, name := range g.Branches() {
		doc.Branches = append(doc.Branches, BranchEntry{Name: name, Lane: i})
	}

	byRow := make(map[int]*dag.Node, g.NodeCount())
	for _, n := range g.Nodes() {
		if p, ok := l.Position(n.Commit.Hash); ok {
			byRow[p.Row] = n
		}
	}
	for row := 0; row < l.Rows; row++ {
		n, ok := byRow[row]
		if !ok {
			continue
		}
		p, _ := l.Position(n.Commit.Hash)
		c := n.Commit
		doc.Commits = append(doc.Commits, CommitEntry{
			Hash:     c.Hash,
			Parents:  c.Parents,
			Author:   c.Author,
			Date:     c.When,
			Message:  c.Message,
			Added:    c.Added,
			Removed:  c.Removed,
			Branch:   n.Branch,
			Branches: n.Branches,
			Row:      p.Row,
			Lane:     p.Lane,
		})
	}

	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, EdgeEntry{From: e.From, To: e.To})
	}
	return doc
}

// Marshal serializes a laid-out commit graph as indented JSON.
func Marshal(g *dag.DAG, l layout.Layout) ([]byte, error) {
	doc := FromDAG(g, l)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
