package navigator

import (
	"gonum.org/v1/gonum/mat"

	"medview/internal/profile"
)

// HeadlessCanvas is an in-memory Canvas that records what a navigator draws.
// It backs non-interactive commands and tests.
type HeadlessCanvas struct {
	Panels  []*HeadlessPanel
	Plots   []*HeadlessPlot
	Redraws int

	handlers []Handler
}

// HeadlessPanel records the state of one panel.
type HeadlessPanel struct {
	Image   mat.Matrix
	Title   string
	Options RenderOptions
	Lines   [][2]profile.Point
}

// HeadlessPlot records the profiles plotted on one profile surface.
type HeadlessPlot struct {
	Title    string
	Profiles []profile.Profile
}

// NewHeadlessCanvas creates an empty canvas.
func NewHeadlessCanvas() *HeadlessCanvas {
	return &HeadlessCanvas{}
}

// Subdivide implements Canvas.
func (c *HeadlessCanvas) Subdivide(n int) ([]Panel, error) {
	c.Panels = make([]*HeadlessPanel, n)
	panels := make([]Panel, n)
	for i := range panels {
		c.Panels[i] = &HeadlessPanel{}
		panels[i] = c.Panels[i]
	}
	return panels, nil
}

// Connect implements Canvas.
func (c *HeadlessCanvas) Connect(h Handler) {
	c.handlers = append(c.handlers, h)
}

// Disconnect implements Canvas.
func (c *HeadlessCanvas) Disconnect(h Handler) {
	for i, existing := range c.handlers {
		if existing == h {
			c.handlers = append(c.handlers[:i], c.handlers[i+1:]...)
			return
		}
	}
}

// Connected returns the number of registered handlers.
func (c *HeadlessCanvas) Connected() int { return len(c.handlers) }

// Redraw implements Canvas.
func (c *HeadlessCanvas) Redraw() { c.Redraws++ }

// NewProfilePlot implements Canvas.
func (c *HeadlessCanvas) NewProfilePlot(title string) ProfilePlot {
	plot := &HeadlessPlot{Title: title}
	c.Plots = append(c.Plots, plot)
	return plot
}

// Scroll dispatches a scroll event to every connected handler.
func (c *HeadlessCanvas) Scroll(ev ScrollEvent) {
	for _, h := range c.handlers {
		h.HandleScroll(ev)
	}
}

// Key dispatches a key-press (down) or key-release event.
func (c *HeadlessCanvas) Key(key string, down bool) {
	for _, h := range c.handlers {
		h.HandleKey(key, down)
	}
}

// Click dispatches a button-press event.
func (c *HeadlessCanvas) Click(ev ClickEvent) {
	for _, h := range c.handlers {
		h.HandleClick(ev)
	}
}

// Show implements Panel.
func (p *HeadlessPanel) Show(img mat.Matrix, opts RenderOptions) {
	p.Image = img
	p.Options = opts
}

// SetImage implements Panel.
func (p *HeadlessPanel) SetImage(img mat.Matrix) { p.Image = img }

// SetTitle implements Panel.
func (p *HeadlessPanel) SetTitle(title string) { p.Title = title }

// DrawLine implements Panel.
func (p *HeadlessPanel) DrawLine(a, b profile.Point) {
	p.Lines = append(p.Lines, [2]profile.Point{a, b})
}

// ClearOverlays implements Panel.
func (p *HeadlessPanel) ClearOverlays() { p.Lines = nil }

// Plot implements ProfilePlot.
func (p *HeadlessPlot) Plot(prof profile.Profile) {
	p.Profiles = append(p.Profiles, prof)
}
