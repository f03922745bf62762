package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/ZUXTUO/commit-view/pkg/dag"
	"github.com/ZUXTUO/commit-view/pkg/errors"
	"github.com/ZUXTUO/commit-view/pkg/layout"
)

// ToDOT converts a commit graph to Graphviz DOT format for node-link
// visualization. Nodes are grouped into one cluster per branch lane and
// labeled with the short hash and commit summary. The resulting DOT
// string can be rendered with [RenderDOT].
func ToDOT(g *dag.DAG, l layout.Layout, th Theme) string {
	var buf bytes.Buffer
	buf.WriteString("digraph commits {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		lane := 0
		if p, ok := l.Position(n.Commit.Hash); ok {
			lane = p.Lane
		}
		label := fmt.Sprintf("%s\n%s", shortHash(n.Commit.Hash), Truncate(n.Commit.Summary(), th.MessageLimit))
		attrs := []string{
			fmt.Sprintf("label=%q", label),
			fmt.Sprintf("fillcolor=%q", nodeTint(g, n, lane, th)),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Commit.Hash, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		lane := 0
		if p, ok := l.Position(e.To); ok {
			lane = p.Lane
		}
		fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", e.From, e.To, th.LaneColor(lane))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeTint(g *dag.DAG, n *dag.Node, lane int, th Theme) string {
	if c := th.MergeColor(len(n.Commit.Parents)); c != "" {
		return c
	}
	if g.OutDegree(n.Commit.Hash) == 0 {
		return th.TipColor
	}
	return th.LaneColor(lane)
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

// RenderDOT renders a DOT graph using Graphviz. Format must be
// [graphviz.SVG] or [graphviz.PNG].
func RenderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "initializing graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "parsing DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "rendering %s", format)
	}
	return buf.Bytes(), nil
}
