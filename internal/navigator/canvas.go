package navigator

import (
	"gonum.org/v1/gonum/mat"

	"medview/internal/profile"
)

// RenderOptions are passed through to every panel's initial Show call.
type RenderOptions struct {
	// VMin and VMax fix the display window; nil means auto-scale per slice.
	VMin *float64
	VMax *float64
	// Palette names the surface-specific colour mapping.
	Palette string
}

// Canvas is the rendering surface a Navigator draws on and receives events
// from.
type Canvas interface {
	// Subdivide returns n panels, one per volume.
	Subdivide(n int) ([]Panel, error)
	// Connect registers h for scroll, key and click events until Disconnect.
	Connect(h Handler)
	Disconnect(h Handler)
	// Redraw marks the surface as needing to be drawn again.
	Redraw()
	// NewProfilePlot opens a new, independent surface for a 1D profile.
	NewProfilePlot(title string) ProfilePlot
}

// Panel displays one slice with a title and optional line overlays.
type Panel interface {
	Show(img mat.Matrix, opts RenderOptions)
	SetImage(img mat.Matrix)
	SetTitle(title string)
	DrawLine(a, b profile.Point)
	ClearOverlays()
}

// ProfilePlot displays a sampled intensity profile.
type ProfilePlot interface {
	Plot(p profile.Profile)
}

// Direction of a scroll event.
type Direction int

const (
	// Up increases the slice index.
	Up Direction = iota + 1
	// Down decreases the slice index.
	Down
)

// ScrollEvent is one scroll gesture. When Steps is non-zero its sign gives
// the direction and its magnitude the number of notches; otherwise Direction
// counts as a single notch.
type ScrollEvent struct {
	Direction Direction
	Steps     int
}

// ClickEvent is a button press at a data-space position on a panel.
type ClickEvent struct {
	Panel int
	At    profile.Point
}

// Handler receives the events a Canvas dispatches.
type Handler interface {
	HandleScroll(ev ScrollEvent)
	HandleKey(key string, down bool)
	HandleClick(ev ClickEvent)
}
