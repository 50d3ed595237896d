package cli

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/xianaiyang/vlsiFloorplan/pkg/floorplan/module"
	fpio "github.com/xianaiyang/vlsiFloorplan/pkg/io"
)

// Map dimensions in terminal cells.
const (
	mapCols = 48
	mapRows = 16
)

var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	mapCellStyle   = lipgloss.NewStyle().Foreground(colorGray)
	mapActiveStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

// sortKey orders the module table.
type sortKey int

const (
	sortByID sortKey = iota
	sortByArea
	sortByPosition
)

func (k sortKey) String() string {
	switch k {
	case sortByArea:
		return "area"
	case sortByPosition:
		return "position"
	}
	return "id"
}

// =============================================================================
// PlacementModel - Interactive placement browser
// =============================================================================

// PlacementModel is the bubbletea model for browsing a placement. The table
// lists every module; the map shows where the selected one sits.
type PlacementModel struct {
	Placement *fpio.Placement
	Cursor    int
	Height    int
	Offset    int
	Sort      sortKey

	order []int   // table row -> module index
	grid  [][]int // map cell -> module index or -1
}

// NewPlacementModel creates a browser for p.
func NewPlacementModel(p *fpio.Placement) PlacementModel {
	m := PlacementModel{
		Placement: p,
		Height:    15,
		grid:      placementGrid(p.Modules, mapCols, mapRows),
	}
	m.sort()
	return m
}

// Selected returns the module under the cursor.
func (m PlacementModel) Selected() module.Module {
	return m.Placement.Modules[m.order[m.Cursor]]
}

func (m PlacementModel) Init() tea.Cmd {
	return nil
}

func (m PlacementModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.order)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "s":
			selected := m.order[m.Cursor]
			m.Sort = (m.Sort + 1) % 3
			m.sort()
			m.Cursor = slices.Index(m.order, selected)
			m.Offset = max(0, min(m.Offset, m.Cursor))
			if m.Cursor >= m.Offset+m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-mapRows-10, 5)
	}
	return m, nil
}

func (m *PlacementModel) sort() {
	mods := m.Placement.Modules
	m.order = make([]int, len(mods))
	for i := range m.order {
		m.order[i] = i
	}
	slices.SortStableFunc(m.order, func(a, b int) int {
		ma, mb := mods[a], mods[b]
		switch m.Sort {
		case sortByArea:
			return cmp.Compare(mb.Area(), ma.Area())
		case sortByPosition:
			return cmp.Or(cmp.Compare(ma.Y, mb.Y), cmp.Compare(ma.X, mb.X))
		}
		return cmp.Compare(ma.ID, mb.ID)
	})
}

func (m PlacementModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Floorplan"))
	b.WriteString("  ")
	b.WriteString(m.summary())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  s sort (" + m.Sort.String() + ")  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.renderMap(m.order[m.Cursor]))
	b.WriteString("\n")
	b.WriteString(m.renderTable(m.Offset, min(m.Offset+m.Height, len(m.order)), true))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.order))))
	return b.String()
}

// Static renders the full table and map without interaction, for pipes and
// non-terminal output.
func (m PlacementModel) Static() string {
	var b strings.Builder
	b.WriteString(m.summary())
	b.WriteString("\n\n")
	b.WriteString(m.renderMap(-1))
	b.WriteString("\n")
	b.WriteString(m.renderTable(0, len(m.order), false))
	b.WriteString("\n")
	return b.String()
}

func (m PlacementModel) summary() string {
	p := m.Placement
	w, h := module.BoundingBox(p.Modules)
	util := 0.0
	if p.Area > 0 {
		util = 100 * float64(module.TotalArea(p.Modules)) / float64(p.Area)
	}
	s := fmt.Sprintf("area %d (%dx%d), %d modules, %.1f%% used", p.Area, w, h, len(p.Modules), util)
	if p.Expression != "" {
		s += "\n" + listDimStyle.Render(p.Expression)
	}
	return s
}

func (m PlacementModel) renderTable(from, to int, cursor bool) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, to-from)
	for i := from; i < to; i++ {
		md := m.Placement.Modules[m.order[i]]
		mark := "  "
		if cursor && i == m.Cursor {
			mark = "▸ "
		}
		rows = append(rows, []string{
			mark,
			fmt.Sprint(md.ID),
			fmt.Sprintf("%dx%d", md.W, md.H),
			fmt.Sprintf("(%d, %d)", md.X, md.Y),
			fmt.Sprint(md.Area()),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Size", "Position", "Area").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if cursor && from+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col == 3 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}

// renderMap draws the placement grid, highlighting module index active.
// Row 0 of the output is the top of the floorplan.
func (m PlacementModel) renderMap(active int) string {
	var b strings.Builder
	for r := len(m.grid) - 1; r >= 0; r-- {
		b.WriteString("  ")
		for _, idx := range m.grid[r] {
			switch {
			case idx < 0:
				b.WriteString(listDimStyle.Render("·"))
			case idx == active:
				b.WriteString(mapActiveStyle.Render("█"))
			default:
				b.WriteString(mapCellStyle.Render(cellGlyph(m.Placement.Modules[idx].ID)))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// cellGlyph returns a glyph that distinguishes neighbouring modules.
func cellGlyph(id int) string {
	const glyphs = "0123456789abcdefghijklmnopqrstuvwxyz"
	if id < 0 {
		id = -id
	}
	return string(glyphs[id%len(glyphs)])
}

// placementGrid samples mods at the centres of a cols x rows raster of their
// bounding box. grid[r][c] is the covering module index or -1; r grows with y.
// A floorplan smaller than the raster gets one cell per unit.
func placementGrid(mods []module.Module, cols, rows int) [][]int {
	bw, bh := module.BoundingBox(mods)
	if bw <= 0 || bh <= 0 {
		return nil
	}
	cols, rows = min(cols, bw), min(rows, bh)
	sx, sy := float64(bw)/float64(cols), float64(bh)/float64(rows)

	grid := make([][]int, rows)
	for r := range grid {
		grid[r] = slices.Repeat([]int{-1}, cols)
	}
	for i, md := range mods {
		c0, c1 := cellSpan(md.X, md.Right(), sx, cols)
		r0, r1 := cellSpan(md.Y, md.Top(), sy, rows)
		for r := r0; r < r1; r++ {
			for c := c0; c < c1; c++ {
				grid[r][c] = i
			}
		}
	}
	return grid
}

// cellSpan returns the half-open range of cells whose centres fall inside
// [lo, hi) for cells of size step.
func cellSpan(lo, hi int, step float64, n int) (int, int) {
	from := int(math.Ceil(float64(lo)/step - 0.5))
	to := int(math.Ceil(float64(hi)/step - 0.5))
	return max(from, 0), min(to, n)
}
