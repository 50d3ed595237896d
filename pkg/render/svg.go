package render

import (
	"bytes"
	"fmt"

	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
)

// SVG renders mods as an SVG document.
func SVG(mods []module.Module, opts ...Option) []byte {
	f := newFrame(mods, newOptions(opts...))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		f.pw, f.ph, f.pw, f.ph)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="white"/>`+"\n")

	fill := "none"
	if f.options.fill {
		fill = "#dde6ff"
	}
	stroke := fmt.Sprintf("#%02x%02x%02x", Outline.R, Outline.G, Outline.B)
	for _, m := range mods {
		x, y, w, h := f.rect(m)
		fmt.Fprintf(&buf, `  <rect id="module-%d" class="module" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s" stroke-width="%.2f"/>`+"\n",
			m.ID, x, y, w, h, fill, stroke, f.options.stroke)
	}

	if f.options.labels {
		size := labelSize(f)
		for _, m := range mods {
			x, y, w, h := f.rect(m)
			fmt.Fprintf(&buf, `  <text x="%.2f" y="%.2f" font-family="monospace" font-size="%.1f" text-anchor="middle" dominant-baseline="central">%d</text>`+"\n",
				x+w/2, y+h/2, size, m.ID)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// labelSize picks a font size that stays readable at any scale.
func labelSize(f frame) float64 {
	return min(max(f.scale*0.4, 10), 24)
}
