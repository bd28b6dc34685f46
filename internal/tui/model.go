package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"medview/internal/logging"
	"medview/internal/navigator"
	"medview/internal/volume"
)

// ErrNoPanels is returned by NewModel for an empty volume set
var ErrNoPanels = errors.New("nothing to display")

// Model is the bubbletea model of the slice viewer
type Model struct {
	quitting bool
	showHelp bool

	logger       *logging.Logger
	stateManager *UIStateManager

	source  string
	view    volume.View
	fastKey string
	pickKey string
	maxW    int
	maxH    int
	surface *Surface
	nav     *navigator.Navigator
	width   int
	height  int
	status  string
	lastErr string
}

const down = "down"

// NewModel builds the surface, attaches a navigator to it and restores the
// saved slice index when resuming the same source.
func NewModel(set volume.Set, opts Options) (Model, error) {
	if set.Len() == 0 {
		return Model{}, ErrNoPanels
	}

	surface := NewSurface(opts.MaxWidth, opts.MaxHeight, opts.Render.Palette)
	nav, err := navigator.New(set, surface, navigator.Options{
		FastKey:  opts.FastKey,
		FastStep: opts.FastStep,
		PickKey:  opts.PickKey,
		Titles:   opts.Titles,
		Render:   opts.Render,
		Logger:   opts.Logger,
	})
	if err != nil {
		return Model{}, err
	}

	fastKey := opts.FastKey
	if fastKey == "" {
		fastKey = navigator.DefaultFastKey
	}

	m := Model{
		logger:       opts.Logger,
		stateManager: NewUIStateManager(opts.StateDir, opts.Logger),
		source:       opts.Source,
		view:         opts.View,
		fastKey:      fastKey,
		pickKey:      opts.PickKey,
		maxW:         opts.MaxWidth,
		maxH:         opts.MaxHeight,
		surface:      surface,
		nav:          nav,
	}

	m.lastErr = m.stateManager.LastError()
	if opts.Resume {
		m.resume()
	}
	return m, nil
}

func (m *Model) resume() {
	index, ok, err := m.stateManager.Lookup(m.source, m.view.String())
	if err != nil {
		m.logger.Warn("tui.state.load_failed", "Failed to load UI state", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if !ok {
		return
	}
	m.nav.SetIndex(index)
	m.status = fmt.Sprintf("Resumed at slice %d", m.nav.Index())
}

// Navigator returns the navigator driving the panels
func (m Model) Navigator() *navigator.Navigator { return m.nav }

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.surface.Fit(msg.Width, msg.Height, m.maxW, m.maxH)
		return m, nil
	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	case tea.KeyMsg:
		key := msg.String()
		if next, handled, cmd := m.handleQuitKeys(key); handled {
			return next, cmd
		}
		if next, handled := m.handleNavigationKeys(key); handled {
			return next, nil
		}
		if next, handled := m.handlePickKeys(key); handled {
			return next, nil
		}
		if key == "?" {
			m.showHelp = !m.showHelp
		}
	}
	return m, nil
}

func (m Model) handleQuitKeys(key string) (tea.Model, bool, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		m.saveState()
		m.nav.Close()
		return m, true, tea.Quit
	}
	return m, false, nil
}

func (m Model) handleNavigationKeys(key string) (tea.Model, bool) {
	switch key {
	case "up", "k":
		m.surface.Scroll(navigator.ScrollEvent{Direction: navigator.Up})
	case down, "j":
		m.surface.Scroll(navigator.ScrollEvent{Direction: navigator.Down})
	case "pgup", "shift+up":
		m.fastScroll(navigator.Up)
	case "pgdown", "shift+down":
		m.fastScroll(navigator.Down)
	case "home":
		m.nav.SetIndex(0)
	case "end":
		m.nav.SetIndex(m.nav.Bound() - 1)
	default:
		return m, false
	}
	m.status = ""
	return m, true
}

// fastScroll holds the fast key for the duration of one scroll notch.
func (m Model) fastScroll(dir navigator.Direction) {
	m.surface.Key(m.fastKey, true)
	m.surface.Scroll(navigator.ScrollEvent{Direction: dir})
	m.surface.Key(m.fastKey, false)
}

func (m Model) handlePickKeys(key string) (tea.Model, bool) {
	switch key {
	case "p":
		if !m.nav.PickingEnabled() {
			m.status = "Profile picking is disabled"
			return m, true
		}
		held := m.nav.Held(m.pickKey)
		m.surface.Key(m.pickKey, !held)
		if held {
			m.status = "Picking cancelled"
		} else {
			m.status = "Picking: click two points on a panel"
		}
		return m, true
	case "esc":
		if m.nav.PickingEnabled() && m.nav.Held(m.pickKey) {
			m.surface.Key(m.pickKey, false)
			m.status = "Picking cancelled"
		}
		return m, true
	case "x":
		if m.surface.ClosePlot() {
			m.status = "Closed profile"
		}
		return m, true
	}
	return m, false
}

// modifierHeld reports whether the named modifier is down in a mouse event.
func modifierHeld(msg tea.MouseMsg, key string) bool {
	switch key {
	case "shift":
		return msg.Shift
	case "ctrl":
		return msg.Ctrl
	case "alt":
		return msg.Alt
	}
	return false
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		dir := navigator.Up
		if msg.Button == tea.MouseButtonWheelDown {
			dir = navigator.Down
		}
		m.surface.Key(m.fastKey, modifierHeld(msg, m.fastKey))
		m.surface.Scroll(navigator.ScrollEvent{Direction: dir})
		m.surface.Key(m.fastKey, false)
		m.status = ""
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return m
		}
		if m.nav.PickingEnabled() && modifierHeld(msg, m.pickKey) {
			m.surface.Key(m.pickKey, true)
		}
		ev, ok := m.surface.Locate(msg.X, msg.Y)
		if !ok {
			return m
		}
		before := m.surface.Plots()
		m.surface.Click(ev)
		switch {
		case m.surface.Plots() > before:
			m.status = fmt.Sprintf("Profile %d extracted", m.surface.Plots())
		case len(m.nav.Picks()) == 1:
			m.status = fmt.Sprintf("First point (%.1f, %.1f); click the second", ev.At.X, ev.At.Y)
		}
	}
	return m
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(m.header()))
	b.WriteString("\n\n")
	b.WriteString(m.surface.Render(m.plotWidth()))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.renderHelp())
		return b.String()
	}

	if m.lastErr != "" {
		b.WriteString(errorStyle.Render("Last error: " + m.lastErr))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render("↑/↓ scroll • pgup/pgdn fast • p pick • x close profile • ? help • q quit"))
	return b.String()
}

func (m Model) header() string {
	h := fmt.Sprintf("medview • %s • %s • slice %d/%d",
		m.source, m.view, m.nav.Index(), m.nav.Bound())
	if m.nav.PickingEnabled() && m.nav.Held(m.pickKey) {
		h += " • PICK"
	}
	return h
}

func (m Model) plotWidth() int {
	if m.width > 0 {
		return m.width
	}
	return m.maxW
}

func (m Model) renderHelp() string {
	lines := []string{
		"Keys",
		"  up/k, down/j        previous/next slice",
		"  pgup, pgdown        jump by the fast step",
		"  home, end           first/last slice",
		"  p                   start/cancel two-point profile",
		"  esc                 cancel picking",
		"  x                   close newest profile",
		"  q, ctrl+c           quit",
		"Mouse",
		"  wheel               scroll (" + m.fastKey + " for fast step)",
		"  left click          pick a point (hold " + m.pickKey + " or press p)",
	}
	return strings.Join(lines, "\n") + "\n"
}

// saveState records where this source was left. A clean exit clears the
// previous run's error.
func (m *Model) saveState() {
	if err := m.stateManager.Record(m.source, m.view.String(), m.nav.Index(), ""); err != nil {
		m.logger.Warn("tui.state.save_failed", "Failed to save UI state", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
