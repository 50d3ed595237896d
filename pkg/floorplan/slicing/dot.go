package slicing

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT representation of the tree.
//
// Internal nodes are drawn as ellipses labelled with their cutline, leaves as
// rounded boxes labelled with the module ID and its current dimensions. Left
// children are emitted before right children so "dot" keeps their order.
func (t *Tree) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph SlicingTree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=14, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	if t.root != None {
		t.writeDOTNode(&buf, t.root)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func (t *Tree) writeDOTNode(buf *bytes.Buffer, i int) {
	n := t.nodes[i]
	switch n.Kind {
	case Leaf:
		m := t.store.At(n.Module)
		label := fmt.Sprintf("%d\n%dx%d", m.ID, m.W, m.H)
		fmt.Fprintf(buf, "  n%d [label=%q, shape=box, style=\"filled,rounded\"];\n", i, label)

	case Internal:
		fmt.Fprintf(buf, "  n%d [label=%q, shape=ellipse];\n", i, n.Cutline.String())
		for _, c := range [2]int{n.Left, n.Right} {
			if c == None {
				continue
			}
			fmt.Fprintf(buf, "  n%d -> n%d;\n", i, c)
			t.writeDOTNode(buf, c)
		}
	}
}

// RenderSVG renders the tree diagram as SVG via Graphviz.
//
// All errors are wrapped with context using fmt.Errorf with %w.
func (t *Tree) RenderSVG(ctx context.Context) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(t.ToDOT()))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
