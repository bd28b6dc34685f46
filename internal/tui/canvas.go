package tui

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"medview/internal/navigator"
	"medview/internal/profile"
)

// Surface is the terminal implementation of navigator.Canvas. It keeps what
// each panel shows and turns bubbletea input into navigator events.
type Surface struct {
	panels   []*panel
	plots    []*profilePane
	handlers []navigator.Handler

	maxWidth  int
	maxHeight int
	palette   string

	redraws int
}

type panel struct {
	image mat.Matrix
	title string
	opts  navigator.RenderOptions
	lines [][2]profile.Point
}

type profilePane struct {
	title    string
	profiles []profile.Profile
}

// geometry describes where one panel lands on screen
type geometry struct {
	left   int
	cols   int
	rows   int
	scale  float64
	width  int
	height int
}

// NewSurface creates a surface whose panels are at most maxWidth characters
// wide and maxHeight rows high.
func NewSurface(maxWidth, maxHeight int, palette string) *Surface {
	return &Surface{
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
		palette:   palette,
	}
}

// Subdivide implements navigator.Canvas.
func (s *Surface) Subdivide(n int) ([]navigator.Panel, error) {
	s.panels = make([]*panel, n)
	out := make([]navigator.Panel, n)
	for i := range out {
		s.panels[i] = &panel{}
		out[i] = s.panels[i]
	}
	return out, nil
}

// Connect implements navigator.Canvas.
func (s *Surface) Connect(h navigator.Handler) {
	s.handlers = append(s.handlers, h)
}

// Disconnect implements navigator.Canvas.
func (s *Surface) Disconnect(h navigator.Handler) {
	for i, existing := range s.handlers {
		if existing == h {
			s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
			return
		}
	}
}

// Redraw implements navigator.Canvas. Rendering itself happens in View.
func (s *Surface) Redraw() { s.redraws++ }

// NewProfilePlot implements navigator.Canvas. Every call opens a new pane.
func (s *Surface) NewProfilePlot(title string) navigator.ProfilePlot {
	pane := &profilePane{title: title}
	s.plots = append(s.plots, pane)
	return pane
}

// ClosePlot removes the newest profile pane.
func (s *Surface) ClosePlot() bool {
	if len(s.plots) == 0 {
		return false
	}
	s.plots = s.plots[:len(s.plots)-1]
	return true
}

// Plots returns the number of open profile panes.
func (s *Surface) Plots() int { return len(s.plots) }

// Fit shrinks the panel bounds so that every panel fits a terminal of the
// given size. Bounds never grow past the configured maximum.
func (s *Surface) Fit(width, height, maxWidth, maxHeight int) {
	s.maxWidth, s.maxHeight = maxWidth, maxHeight
	if n := len(s.panels); n > 0 && width > 0 {
		per := (width - panelGap*(n-1)) / n
		if per < s.maxWidth {
			s.maxWidth = per
		}
	}
	if height > 0 {
		rows := height - imageTop - profileRows - footerRows
		if rows < s.maxHeight {
			s.maxHeight = rows
		}
	}
	s.maxWidth = max(s.maxWidth, 2*cellChars)
	s.maxHeight = max(s.maxHeight, 2)
}

// Scroll dispatches a scroll event to every connected handler.
func (s *Surface) Scroll(ev navigator.ScrollEvent) {
	for _, h := range s.handlers {
		h.HandleScroll(ev)
	}
}

// Key dispatches a key press (down) or release.
func (s *Surface) Key(key string, down bool) {
	for _, h := range s.handlers {
		h.HandleKey(key, down)
	}
}

// Click dispatches a button press.
func (s *Surface) Click(ev navigator.ClickEvent) {
	for _, h := range s.handlers {
		h.HandleClick(ev)
	}
}

// layout computes the on-screen geometry of every panel, left to right.
func (s *Surface) layout() []geometry {
	out := make([]geometry, len(s.panels))
	left := 0
	for i, p := range s.panels {
		g := geometry{left: left, scale: 1}
		if p.image != nil {
			r, c := p.image.Dims()
			g.scale = math.Max(1, math.Max(
				float64(c)/float64(s.maxWidth/cellChars),
				float64(r)/float64(s.maxHeight),
			))
			g.cols = int(math.Ceil(float64(c) / g.scale))
			g.rows = int(math.Ceil(float64(r) / g.scale))
		}
		g.width = g.cols * cellChars
		g.height = g.rows
		out[i] = g
		left += g.width + panelGap
	}
	return out
}

// Locate maps a screen cell to a panel index and a data-space position.
func (s *Surface) Locate(x, y int) (navigator.ClickEvent, bool) {
	row := y - imageTop
	if row < 0 {
		return navigator.ClickEvent{}, false
	}
	for i, g := range s.layout() {
		if x < g.left || x >= g.left+g.width || row >= g.height {
			continue
		}
		cx := (x - g.left) / cellChars
		return navigator.ClickEvent{
			Panel: i,
			At: profile.Point{
				X: (float64(cx)+0.5)*g.scale - 0.5,
				Y: (float64(row)+0.5)*g.scale - 0.5,
			},
		}, true
	}
	return navigator.ClickEvent{}, false
}

// Show implements navigator.Panel.
func (p *panel) Show(img mat.Matrix, opts navigator.RenderOptions) {
	p.image = img
	p.opts = opts
}

// SetImage implements navigator.Panel.
func (p *panel) SetImage(img mat.Matrix) { p.image = img }

// SetTitle implements navigator.Panel.
func (p *panel) SetTitle(title string) { p.title = title }

// DrawLine implements navigator.Panel.
func (p *panel) DrawLine(a, b profile.Point) {
	p.lines = append(p.lines, [2]profile.Point{a, b})
}

// ClearOverlays implements navigator.Panel.
func (p *panel) ClearOverlays() { p.lines = nil }

// Plot implements navigator.ProfilePlot.
func (p *profilePane) Plot(prof profile.Profile) {
	p.profiles = append(p.profiles, prof)
}
