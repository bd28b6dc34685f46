package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"medview/internal/config"
	"medview/internal/navigator"
	"medview/internal/profile"
)

const (
	// greyBase is the first of the 24 greyscale entries of the 256-colour palette
	greyBase   = 232
	greyLevels = 24
	rampChars  = " .:-=+*#%@"
	sparkChars = "▁▂▃▄▅▆▇█"
	lineCell   = "██"
)

var (
	greyStyles   = buildGreyStyles()
	lineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	sparkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func buildGreyStyles() []lipgloss.Style {
	styles := make([]lipgloss.Style, greyLevels)
	for i := range styles {
		styles[i] = lipgloss.NewStyle().Background(lipgloss.Color(strconv.Itoa(greyBase + i)))
	}
	return styles
}

// window returns the display range for img; an unset bound comes from the
// image itself.
func window(img mat.Matrix, opts navigator.RenderOptions) (float64, float64) {
	lo, hi := imageRange(img)
	if opts.VMin != nil {
		lo = *opts.VMin
	}
	if opts.VMax != nil {
		hi = *opts.VMax
	}
	return lo, hi
}

// imageRange returns the smallest and largest sample of img, skipping NaN.
// An image without numbers yields (0, 0).
func imageRange(img mat.Matrix) (float64, float64) {
	r, c := img.Dims()
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := img.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// normalize maps v into [0, 1] inside the window. NaN maps to 0.
func normalize(v, lo, hi float64) float64 {
	if !(hi > lo) {
		return 0
	}
	t := (v - lo) / (hi - lo)
	if math.IsNaN(t) {
		return 0
	}
	return math.Max(0, math.Min(1, t))
}

// cellOf returns the grid cell containing a data-space coordinate.
func cellOf(v, scale float64, n int) int {
	c := int(math.Floor((v + 0.5) / scale))
	return max(0, min(c, n-1))
}

// overlayCells rasterizes every overlay line onto the panel grid.
func overlayCells(p *panel, g geometry) map[[2]int]bool {
	cells := make(map[[2]int]bool)
	for _, line := range p.lines {
		x0, y0 := cellOf(line[0].X, g.scale, g.cols), cellOf(line[0].Y, g.scale, g.rows)
		x1, y1 := cellOf(line[1].X, g.scale, g.cols), cellOf(line[1].Y, g.scale, g.rows)

		// Bresenham
		dx, dy := abs(x1-x0), -abs(y1-y0)
		sx, sy := 1, 1
		if x0 > x1 {
			sx = -1
		}
		if y0 > y1 {
			sy = -1
		}
		e := dx + dy
		for {
			cells[[2]int{x0, y0}] = true
			if x0 == x1 && y0 == y1 {
				break
			}
			e2 := 2 * e
			if e2 >= dy {
				e += dy
				x0 += sx
			}
			if e2 <= dx {
				e += dx
				y0 += sy
			}
		}
	}
	return cells
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	return string(r[:width])
}

// renderCell draws one image cell in the given palette.
func renderCell(t float64, palette string) string {
	if palette == config.PaletteRamp {
		c := string(rampChars[int(math.Round(t*float64(len(rampChars)-1)))])
		return strings.Repeat(c, cellChars)
	}
	level := int(math.Round(t * float64(greyLevels-1)))
	return greyStyles[level].Render(strings.Repeat(" ", cellChars))
}

// renderPanel returns the title row followed by one row per grid line.
func renderPanel(p *panel, g geometry, defaultPalette string) []string {
	rows := make([]string, 0, g.height+1)
	rows = append(rows, titleStyle.Width(g.width).Render(truncate(p.title, g.width)))
	if p.image == nil {
		return rows
	}

	palette := p.opts.Palette
	if palette == "" {
		palette = defaultPalette
	}
	r, c := p.image.Dims()
	lo, hi := window(p.image, p.opts)
	overlay := overlayCells(p, g)

	var b strings.Builder
	for cy := 0; cy < g.rows; cy++ {
		b.Reset()
		y := max(0, min(int(math.Round((float64(cy)+0.5)*g.scale-0.5)), r-1))
		for cx := 0; cx < g.cols; cx++ {
			if overlay[[2]int{cx, cy}] {
				b.WriteString(lineStyle.Render(lineCell))
				continue
			}
			x := max(0, min(int(math.Round((float64(cx)+0.5)*g.scale-0.5)), c-1))
			b.WriteString(renderCell(normalize(p.image.At(y, x), lo, hi), palette))
		}
		rows = append(rows, b.String())
	}
	return rows
}

// renderPanels joins every panel side by side, separated by panelGap.
func (s *Surface) renderPanels() string {
	layout := s.layout()
	blocks := make([]string, 0, 2*len(s.panels))
	gap := strings.Repeat(" ", panelGap)
	for i, p := range s.panels {
		if i > 0 {
			blocks = append(blocks, gap)
		}
		blocks = append(blocks, strings.Join(renderPanel(p, layout[i], s.palette), "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

// sparkline draws values as block characters, at most width runes long.
func sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	n := min(len(values), width)
	lo, hi := 0.0, 0.0
	if finite := numbers(values); len(finite) > 0 {
		lo, hi = floats.Min(finite), floats.Max(finite)
	}
	levels := []rune(sparkChars)

	var b strings.Builder
	for i := 0; i < n; i++ {
		v := values[i*len(values)/n]
		b.WriteRune(levels[int(math.Round(normalize(v, lo, hi)*float64(len(levels)-1)))])
	}
	return b.String()
}

// numbers returns values without NaN entries.
func numbers(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func formatSummary(p profile.Profile) string {
	sum := p.Summary()
	return fmt.Sprintf("n=%d  min=%.4g  max=%.4g  mean=%.4g  sd=%.4g",
		p.Len(), sum.Min, sum.Max, sum.Mean, sum.StdDev)
}

// renderPlots draws the newest profile panes, newest last.
func (s *Surface) renderPlots(width int) string {
	if len(s.plots) == 0 {
		return ""
	}
	first := max(0, len(s.plots)-maxProfilePanes)

	var b strings.Builder
	for i, pane := range s.plots[first:] {
		b.WriteString(captionStyle.Render(fmt.Sprintf("[%d] %s", first+i+1, pane.title)))
		b.WriteString("\n")
		for _, prof := range pane.profiles {
			b.WriteString(sparkStyle.Render(sparkline(prof.Values, width)))
			b.WriteString("\n")
			b.WriteString(captionStyle.Render(formatSummary(prof)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Render draws every panel and the open profile panes.
func (s *Surface) Render(width int) string {
	var b strings.Builder
	b.WriteString(s.renderPanels())
	b.WriteString("\n")
	if plots := s.renderPlots(width); plots != "" {
		b.WriteString("\n")
		b.WriteString(plots)
	}
	return b.String()
}
