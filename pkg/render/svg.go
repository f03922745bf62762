package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math/rand/v2"

	"github.com/ZUXTUO/commit-view/pkg/dag"
	"github.com/ZUXTUO/commit-view/pkg/layout"
)

const flowLineCSS = `.flow-line{stroke-dasharray:10 20;stroke-linecap:round;animation:flow 1s linear infinite}` +
	`@keyframes flow{to{stroke-dashoffset:-30}}`

// SVGOption configures the timeline SVG renderer.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme    Theme
	seed     uint64
	decorate bool
}

// WithTheme overrides the default theme.
func WithTheme(th Theme) SVGOption { return func(r *svgRenderer) { r.theme = th } }

// WithSeed sets the seed for decorative randomization.
func WithSeed(seed uint64) SVGOption { return func(r *svgRenderer) { r.seed = seed } }

// WithoutDecoration disables the star field and galaxy backdrop.
func WithoutDecoration() SVGOption { return func(r *svgRenderer) { r.decorate = false } }

// RenderSVG renders the timeline view of the commit graph: one annotated
// box per commit at its (row, lane) cell and one directed connector per
// parent→child edge, colored by the child's lane.
//
// Output is fully self-contained and deterministic: rendering the same
// graph twice yields byte-identical SVG. An empty graph produces a
// minimal background-only canvas.
func RenderSVG(g *dag.DAG, l layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{theme: DefaultTheme(), seed: DefaultSeed, decorate: true}
	for _, opt := range opts {
		opt(&r)
	}
	th := r.theme

	width := th.Margin * 2
	if l.Lanes > 0 {
		width += float64(l.Lanes)*th.NodeWidth + float64(l.Lanes-1)*th.LaneGap
	}
	height := th.Margin * 2
	if l.Rows > 0 {
		height += float64(l.Rows)*th.NodeHeight + float64(l.Rows-1)*th.RowGap
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)

	r.renderDefs(&buf, l.Lanes)
	r.renderBackground(&buf, width, height)
	r.renderEdges(&buf, g, l)
	r.renderNodes(&buf, g, l)
	r.renderText(&buf, g, l)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// nodeX returns the left edge of a lane's node column.
func (r *svgRenderer) nodeX(lane int) float64 {
	return r.theme.Margin + float64(lane)*(r.theme.NodeWidth+r.theme.LaneGap)
}

// nodeY returns the top edge of a row's node line.
func (r *svgRenderer) nodeY(row int) float64 {
	return r.theme.Margin + float64(row)*(r.theme.NodeHeight+r.theme.RowGap)
}

func (r *svgRenderer) renderDefs(buf *bytes.Buffer, lanes int) {
	th := r.theme
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <linearGradient id="bgGrad" x1="0" y1="0" x2="0" y2="1">`+"\n")
	fmt.Fprintf(buf, `      <stop offset="0" stop-color="%s"/>`+"\n", EscapeXML(th.BackgroundTop))
	fmt.Fprintf(buf, `      <stop offset="1" stop-color="%s"/>`+"\n", EscapeXML(th.BackgroundBottom))
	buf.WriteString("    </linearGradient>\n")

	buf.WriteString(`    <radialGradient id="galaxyGrad">` + "\n")
	buf.WriteString(`      <stop offset="0" stop-color="#fff8e7" stop-opacity="0.9"/>` + "\n")
	buf.WriteString(`      <stop offset="0.4" stop-color="#c8a2ff" stop-opacity="0.35"/>` + "\n")
	buf.WriteString(`      <stop offset="1" stop-color="#c8a2ff" stop-opacity="0"/>` + "\n")
	buf.WriteString("    </radialGradient>\n")

	// One arrowhead per lane so connectors and heads share a color.
	for lane := range max(lanes, 1) {
		fmt.Fprintf(buf, `    <marker id="arrow-%d" markerWidth="10" markerHeight="10" refX="10" refY="5" orient="auto">`+"\n", lane)
		fmt.Fprintf(buf, `      <path d="M0,0 L10,5 L0,10 L3,5 Z" fill="%s"/>`+"\n", EscapeXML(th.LaneColor(lane)))
		buf.WriteString("    </marker>\n")
	}

	fmt.Fprintf(buf, "    <style>%s</style>\n", flowLineCSS)
	buf.WriteString("  </defs>\n")
}

func (r *svgRenderer) renderBackground(buf *bytes.Buffer, width, height float64) {
	fmt.Fprintf(buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="url(#bgGrad)"/>`+"\n", width, height)
	if !r.decorate {
		return
	}

	// Fixed-seed decoration; PCG keeps the sequence stable across Go releases.
	rng := rand.New(rand.NewPCG(r.seed, r.seed^0xdeadbeef))

	gx := width * (0.6 + rng.Float64()*0.3)
	gy := height * (0.1 + rng.Float64()*0.2)
	fmt.Fprintf(buf, `  <ellipse cx="%.1f" cy="%.1f" rx="%.1f" ry="%.1f" fill="url(#galaxyGrad)" transform="rotate(-20 %.1f %.1f)"/>`+"\n",
		gx, gy, width*0.12, height*0.04, gx, gy)

	for range r.theme.StarCount {
		x := rng.Float64() * width
		y := rng.Float64() * height
		radius := 0.4 + rng.Float64()*1.2
		opacity := 0.2 + rng.Float64()*0.4
		fmt.Fprintf(buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f" fill="#ffffff" opacity="%.2f"/>`+"\n",
			x, y, radius, opacity)
	}
}

func (r *svgRenderer) renderEdges(buf *bytes.Buffer, g *dag.DAG, l layout.Layout) {
	th := r.theme
	for _, e := range g.Edges() {
		src, okS := l.Position(e.From)
		dst, okD := l.Position(e.To)
		if !okS || !okD {
			continue
		}

		// Arrows run from the parent's bottom edge to the child's top
		// edge; rows grow downward so the child is always below.
		x1 := r.nodeX(src.Lane) + th.NodeWidth/2
		y1 := r.nodeY(src.Row) + th.NodeHeight
		x2 := r.nodeX(dst.Lane) + th.NodeWidth/2
		y2 := r.nodeY(dst.Row)

		color := th.LaneColor(dst.Lane)
		marker := fmt.Sprintf("url(#arrow-%d)", dst.Lane)

		if src.Lane == dst.Lane {
			fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="4" opacity="0.6" marker-end="%s"/>`+"\n",
				x1, y1, x2, y2, EscapeXML(color), marker)
			fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2" opacity="0.8" class="flow-line"/>`+"\n",
				x1, y1, x2, y2, EscapeXML(th.EdgeColor))
			continue
		}

		// Lane change: cubic curve with vertical control points.
		cy := (y1 + y2) / 2
		path := fmt.Sprintf("M%.1f,%.1f C%.1f,%.1f %.1f,%.1f %.1f,%.1f", x1, y1, x1, cy, x2, cy, x2, y2)
		fmt.Fprintf(buf, `  <path d="%s" fill="none" stroke="%s" stroke-width="4" opacity="0.6" marker-end="%s"/>`+"\n",
			path, EscapeXML(color), marker)
		fmt.Fprintf(buf, `  <path d="%s" fill="none" stroke="%s" stroke-width="2" opacity="0.8" class="flow-line"/>`+"\n",
			path, EscapeXML(th.EdgeColor))
	}
}

func (r *svgRenderer) renderNodes(buf *bytes.Buffer, g *dag.DAG, l layout.Layout) {
	th := r.theme
	for _, n := range nodesByRow(g, l) {
		p, _ := l.Position(n.Commit.Hash)
		fill := r.nodeFill(g, n, p.Lane)
		fmt.Fprintf(buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="12" ry="12" fill="%s" opacity="0.8" stroke="white" stroke-width="2"/>`+"\n",
			r.nodeX(p.Lane), r.nodeY(p.Row), th.NodeWidth, th.NodeHeight, EscapeXML(fill))
	}
}

// nodeFill picks the commit box color: merge commits are tinted by parent
// count, childless tips get their own tint, everything else uses the lane
// color.
func (r *svgRenderer) nodeFill(g *dag.DAG, n *dag.Node, lane int) string {
	if c := r.theme.MergeColor(len(n.Commit.Parents)); c != "" {
		return c
	}
	if g.OutDegree(n.Commit.Hash) == 0 {
		return r.theme.TipColor
	}
	return r.theme.LaneColor(lane)
}

func (r *svgRenderer) renderText(buf *bytes.Buffer, g *dag.DAG, l layout.Layout) {
	th := r.theme
	for _, n := range nodesByRow(g, l) {
		p, _ := l.Position(n.Commit.Hash)
		x := r.nodeX(p.Lane) + 10
		y := r.nodeY(p.Row)
		c := n.Commit

		msg := Truncate(c.Summary(), th.MessageLimit)
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" fill="%s" font-size="16px" font-family="%s">%s</text>`+"\n",
			x, y+25, EscapeXML(th.TextColor), EscapeXML(th.FontFamily), EscapeXML(msg))

		meta := fmt.Sprintf("%s | %s", c.Author, c.When.Format("2006-01-02 15:04"))
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" fill="%s" font-size="12px" font-family="%s">%s</text>`+"\n",
			x, y+45, EscapeXML(th.TextColor), EscapeXML(th.FontFamily), EscapeXML(meta))

		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="12px" font-family="%s">`, x, y+65, EscapeXML(th.FontFamily))
		fmt.Fprintf(buf, `<tspan fill="%s">+%d</tspan>`, EscapeXML(th.AddedColor), c.Added)
		fmt.Fprintf(buf, `<tspan fill="%s"> / </tspan>`, EscapeXML(th.TextColor))
		fmt.Fprintf(buf, `<tspan fill="%s">-%d</tspan>`, EscapeXML(th.RemovedColor), c.Removed)
		buf.WriteString("</text>\n")
	}
}

// nodesByRow returns the graph's nodes ordered by layout row.
func nodesByRow(g *dag.DAG, l layout.Layout) []*dag.Node {
	nodes := g.Nodes()
	ordered := make([]*dag.Node, 0, len(nodes))
	byRow := make(map[int]*dag.Node, len(nodes))
	for _, n := range nodes {
		if p, ok := l.Position(n.Commit.Hash); ok {
			byRow[p.Row] = n
		}
	}
	for row := 0; row < l.Rows; row++ {
		if n, ok := byRow[row]; ok {
			ordered = append(ordered, n)
		}
	}
	return ordered
}

// EscapeXML escapes text for use in SVG content and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Truncate shortens s to at most limit runes, appending "..." when cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
