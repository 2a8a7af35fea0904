package mapview

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/mask/internal/models"
)

type cell int

const (
	cellEmpty cell = iota
	cellGrid
	cellMask
	cellSelected
	cellScratch
	cellEdge
	cellVertex
	cellCursor
)

var (
	glyphs = map[cell]string{
		cellEmpty:    " ",
		cellGrid:     "·",
		cellMask:     "░",
		cellSelected: "▓",
		cellScratch:  "▒",
		cellEdge:     "•",
		cellVertex:   "●",
		cellCursor:   "+",
	}

	styles = map[cell]lipgloss.Style{
		cellEmpty:    lipgloss.NewStyle(),
		cellGrid:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		cellMask:     lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		cellSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		cellScratch:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		cellEdge:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		cellVertex:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		cellCursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
	}
)

// Render draws the viewport as styled text, one line per row.
func (s *Surface) Render() string {
	w, h := s.View.Width, s.View.Height
	if w <= 0 || h <= 0 {
		return ""
	}

	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x] = s.baseCell(models.ScreenPoint{X: x, Y: y})
		}
	}

	if s.capturing {
		var prev *models.ScreenPoint
		for _, v := range s.vertices {
			p := s.View.ToScreen(v)
			if prev != nil {
				line(*prev, p, func(q models.ScreenPoint) { mark(grid, q, cellEdge) })
			}
			prev = &p
		}
		if prev != nil {
			line(*prev, s.Cursor, func(q models.ScreenPoint) { mark(grid, q, cellEdge) })
		}
		for _, v := range s.vertices {
			mark(grid, s.View.ToScreen(v), cellVertex)
		}
	}
	mark(grid, s.Cursor, cellCursor)

	var sb strings.Builder
	for y, row := range grid {
		if y > 0 {
			sb.WriteByte('\n')
		}
		renderRow(&sb, row)
	}
	return sb.String()
}

// baseCell classifies a cell from the layers under it.
func (s *Surface) baseCell(p models.ScreenPoint) cell {
	pt := s.View.ToWorld(p)
	if s.draft != nil && containsPoint(s.draft.Polygon, pt) {
		return cellScratch
	}
	kind := cellEmpty
	for _, f := range s.features {
		if containsPoint(f.Geometry, pt) {
			if f.ObjectID == s.selected && s.selected.Valid() {
				return cellSelected
			}
			kind = cellMask
		}
	}
	if kind != cellEmpty {
		return kind
	}
	if s.onGraticule(pt[0], s.View.Resolution()) || s.onGraticule(pt[1], s.View.Resolution()*cellAspect) {
		return cellGrid
	}
	return cellEmpty
}

func (s *Surface) onGraticule(v, cellSize float64) bool {
	if s.GridSpacing <= 0 || cellSize > s.GridSpacing {
		return false
	}
	lo := math.Floor((v - cellSize/2) / s.GridSpacing)
	hi := math.Floor((v + cellSize/2) / s.GridSpacing)
	return lo != hi
}

func mark(grid [][]cell, p models.ScreenPoint, c cell) {
	if p.Y < 0 || p.Y >= len(grid) || p.X < 0 || p.X >= len(grid[p.Y]) {
		return
	}
	if c > grid[p.Y][p.X] {
		grid[p.Y][p.X] = c
	}
}

// maxLine bounds the cells walked for one capture edge.
const maxLine = 4096

// line walks the cells between a and b (Bresenham).
func line(a, b models.ScreenPoint, visit func(models.ScreenPoint)) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	if dx > maxLine || -dy > maxLine {
		return
	}
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	for {
		visit(a)
		if a == b {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			a.X += sx
		}
		if e2 <= dx {
			err += dx
			a.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// renderRow styles runs of identical cells together.
func renderRow(sb *strings.Builder, row []cell) {
	start := 0
	for i := 1; i <= len(row); i++ {
		if i < len(row) && row[i] == row[start] {
			continue
		}
		run := strings.Repeat(glyphs[row[start]], i-start)
		sb.WriteString(styles[row[start]].Render(run))
		start = i
	}
}
