// Package navigator scrolls through the slices of a volume set and keeps every
// panel of a Canvas showing the same slice index.
package navigator

import (
	"errors"
	"fmt"

	"medview/internal/logging"
	"medview/internal/profile"
	"medview/internal/volume"
)

const (
	// DefaultFastKey is the modifier that enlarges scroll steps.
	DefaultFastKey = "shift"
	// DefaultFastStep is the step size while the fast key is held.
	DefaultFastStep = 10
)

var (
	// ErrNilCanvas is returned by New without a surface to draw on.
	ErrNilCanvas = errors.New("navigator requires a canvas")
	// ErrPanelCount is returned when a canvas yields the wrong number of panels.
	ErrPanelCount = errors.New("canvas returned wrong number of panels")
)

// Options configure optional navigator capabilities.
type Options struct {
	// FastKey defaults to DefaultFastKey.
	FastKey string
	// FastStep defaults to DefaultFastStep.
	FastStep int
	// PickKey enables two-point profile picking while held. Empty disables it.
	PickKey string
	// Titles override the set's titles when non-empty.
	Titles []string
	Render RenderOptions
	Logger *logging.Logger
}

// Navigator owns the slice index, modifier state and picked points of one
// volume set. It is not safe for concurrent use; all calls are expected on the
// surface's event goroutine.
type Navigator struct {
	set    volume.Set
	canvas Canvas
	panels []Panel
	titles []string
	logger *logging.Logger

	bound int
	index int

	fastKey  string
	fastStep int
	pickKey  string
	held     map[string]bool

	picks     []profile.Point
	pickPanel int

	closed bool
}

// New shows the middle slice of every volume on its own panel of canvas and
// connects the navigator to the canvas's events.
func New(set volume.Set, canvas Canvas, opts Options) (*Navigator, error) {
	if canvas == nil {
		return nil, ErrNilCanvas
	}
	bound := set.Bound()
	if bound <= 0 {
		return nil, fmt.Errorf("%w: slice bound is %d", volume.ErrEmptyVolume, bound)
	}

	n := &Navigator{
		set:      set,
		canvas:   canvas,
		titles:   make([]string, set.Len()),
		logger:   opts.Logger,
		bound:    bound,
		index:    bound / 2,
		fastKey:  opts.FastKey,
		fastStep: opts.FastStep,
		pickKey:  opts.PickKey,
		held:     make(map[string]bool),
	}
	if n.fastKey == "" {
		n.fastKey = DefaultFastKey
	}
	if n.fastStep <= 0 {
		n.fastStep = DefaultFastStep
	}
	n.held[n.fastKey] = false
	if n.pickKey != "" {
		n.held[n.pickKey] = false
	}

	titles := set.Titles
	if len(opts.Titles) > 0 {
		titles = opts.Titles
	}
	copy(n.titles, titles)

	panels, err := canvas.Subdivide(set.Len())
	if err != nil {
		return nil, fmt.Errorf("failed to create panels: %w", err)
	}
	if len(panels) != set.Len() {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrPanelCount, set.Len(), len(panels))
	}
	n.panels = panels

	for i, p := range n.panels {
		p.Show(n.set.Volumes[i].Slice(n.index), opts.Render)
		p.SetTitle(n.title(i))
	}
	canvas.Connect(n)
	canvas.Redraw()

	n.logger.Info("navigator.created", "Navigator created", map[string]interface{}{
		"volumes": set.Len(),
		"bound":   bound,
		"index":   n.index,
		"picking": n.PickingEnabled(),
	})
	return n, nil
}

// Index returns the current slice index, always in [0, Bound()).
func (n *Navigator) Index() int { return n.index }

// Bound returns the number of navigable slices.
func (n *Navigator) Bound() int { return n.bound }

// PickingEnabled reports whether a pick key is configured.
func (n *Navigator) PickingEnabled() bool { return n.pickKey != "" }

// Titles returns the titles currently shown on each panel.
func (n *Navigator) Titles() []string {
	out := make([]string, len(n.panels))
	for i := range out {
		out[i] = n.title(i)
	}
	return out
}

// Picks returns a copy of the picked-point buffer.
func (n *Navigator) Picks() []profile.Point {
	return append([]profile.Point(nil), n.picks...)
}

// Held reports whether a recognized modifier is currently held.
func (n *Navigator) Held(key string) bool { return n.held[key] }

func (n *Navigator) title(i int) string {
	if n.titles[i] != "" {
		return n.titles[i]
	}
	return fmt.Sprintf("slice #%d", n.index)
}

// SetIndex moves to index modulo Bound() and redraws every panel.
// Out-of-range values wrap; they are never clamped.
func (n *Navigator) SetIndex(index int) {
	n.index = ((index % n.bound) + n.bound) % n.bound

	for i, p := range n.panels {
		p.SetImage(n.set.Volumes[i].Slice(n.index))
		p.SetTitle(n.title(i))
		p.ClearOverlays()
	}
	n.canvas.Redraw()

	n.logger.Debug("navigator.index.changed", "Slice index changed", map[string]interface{}{
		"index": n.index,
		"bound": n.bound,
	})
}

// Scroll moves by one step per notch; the step is FastStep while the fast
// key is held.
func (n *Navigator) Scroll(ev ScrollEvent) {
	notches := ev.Steps
	if notches == 0 {
		switch ev.Direction {
		case Up:
			notches = 1
		case Down:
			notches = -1
		default:
			return
		}
	}

	step := 1
	if n.held[n.fastKey] {
		step = n.fastStep
	}
	n.SetIndex(n.index + notches*step)
}

// KeyPress marks a recognized modifier as held. Other keys are ignored.
func (n *Navigator) KeyPress(key string) {
	if _, ok := n.held[key]; ok {
		n.held[key] = true
	}
}

// KeyRelease marks a recognized modifier as released. Other keys are ignored.
func (n *Navigator) KeyRelease(key string) {
	if _, ok := n.held[key]; ok {
		n.held[key] = false
	}
}

// Click collects a picked point while the pick key is held. The second point
// of a pair yields a profile, which is also drawn on the panel and plotted on
// a new profile surface; the buffer is then emptied and the pick key released.
func (n *Navigator) Click(ev ClickEvent) (profile.Profile, bool) {
	if !n.PickingEnabled() || !n.held[n.pickKey] {
		return profile.Profile{}, false
	}
	if ev.Panel < 0 || ev.Panel >= len(n.panels) {
		return profile.Profile{}, false
	}

	// a pair never spans two panels
	if len(n.picks) > 0 && ev.Panel != n.pickPanel {
		n.picks = n.picks[:0]
	}
	n.pickPanel = ev.Panel
	n.picks = append(n.picks, ev.At)
	if len(n.picks) < 2 {
		return profile.Profile{}, false
	}

	a, b := n.picks[0], n.picks[1]
	p := profile.Sample(n.set.Volumes[ev.Panel].Slice(n.index), a, b)

	n.picks = n.picks[:0]
	n.held[n.pickKey] = false

	n.panels[ev.Panel].DrawLine(a, b)
	n.canvas.Redraw()

	title := fmt.Sprintf("%s: (%.1f, %.1f) to (%.1f, %.1f)", n.title(ev.Panel), a.X, a.Y, b.X, b.Y)
	n.canvas.NewProfilePlot(title).Plot(p)

	n.logger.Info("navigator.profile.extracted", "Profile extracted", map[string]interface{}{
		"panel":   ev.Panel,
		"index":   n.index,
		"samples": p.Len(),
	})
	return p, true
}

// Close disconnects the navigator from its canvas. It is safe to call twice.
func (n *Navigator) Close() {
	if n.closed {
		return
	}
	n.closed = true
	n.canvas.Disconnect(n)
}

// HandleScroll implements Handler.
func (n *Navigator) HandleScroll(ev ScrollEvent) { n.Scroll(ev) }

// HandleKey implements Handler.
func (n *Navigator) HandleKey(key string, down bool) {
	if down {
		n.KeyPress(key)
		return
	}
	n.KeyRelease(key)
}

// HandleClick implements Handler.
func (n *Navigator) HandleClick(ev ClickEvent) { n.Click(ev) }
