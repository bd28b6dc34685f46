package tui

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"medview/internal/config"
	"medview/internal/logging"
	"medview/internal/volume"
)

// constantSlices returns a depth×8×8 volume whose slice z is filled with z.
func constantSlices(t *testing.T, depth int) volume.Volume {
	t.Helper()
	data := make([]float64, depth*8*8)
	for i := range data {
		data[i] = float64(i / 64)
	}
	v, err := volume.NewVolume(depth, 8, 8, data)
	if err != nil {
		t.Fatalf("NewVolume() error = %v", err)
	}
	return v
}

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Source:    "test-volume",
		View:      volume.Transverse,
		FastKey:   "shift",
		FastStep:  10,
		PickKey:   "ctrl",
		MaxWidth:  64,
		MaxHeight: 32,
		StateDir:  t.TempDir(),
		Logger:    logging.NewLogger(logging.LevelError),
	}
}

func newTestModel(t *testing.T, opts Options, depths ...int) Model {
	t.Helper()
	set := volume.Set{}
	for _, d := range depths {
		set.Volumes = append(set.Volumes, constantSlices(t, d))
		set.Titles = append(set.Titles, "")
	}
	m, err := NewModel(set, opts)
	if err != nil {
		t.Fatalf("NewModel() error = %v", err)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(Model)
	if !ok {
		t.Fatal("Expected Model type from Update")
	}
	return updated, cmd
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func leftClick(x, y int, ctrl bool) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Ctrl: ctrl, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestNewModel(t *testing.T) {
	m := newTestModel(t, testOptions(t), 20)

	if m.quitting {
		t.Error("Expected quitting to be false initially")
	}
	if got := m.Navigator().Index(); got != 10 {
		t.Errorf("initial index = %d, want 10", got)
	}
	if m.Init() != nil {
		t.Error("Expected Init to return nil command")
	}
}

func TestNewModel_EmptySet(t *testing.T) {
	if _, err := NewModel(volume.Set{}, testOptions(t)); err == nil {
		t.Error("NewModel() should fail without volumes")
	}
}

func TestModelUpdate_Keys(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want int
	}{
		{"up", []string{"up"}, 11},
		{"k", []string{"k"}, 11},
		{"down", []string{"down"}, 9},
		{"j", []string{"j"}, 9},
		{"pgup wraps", []string{"pgup"}, 0},
		{"pgdown", []string{"pgdown"}, 0},
		{"pgup then up", []string{"pgup", "up"}, 1},
		{"home", []string{"home"}, 0},
		{"end", []string{"end"}, 19},
		{"end then up wraps", []string{"end", "up"}, 0},
		{"unknown key", []string{"z"}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, testOptions(t), 20)
			for _, k := range tt.keys {
				m, _ = update(t, m, keyMsg(k))
			}
			if got := m.Navigator().Index(); got != tt.want {
				t.Errorf("index after %v = %d, want %d", tt.keys, got, tt.want)
			}
			if m.Navigator().Held("shift") {
				t.Error("fast key should not stay held after a fast scroll")
			}
		})
	}
}

func TestModelUpdate_Wheel(t *testing.T) {
	m := newTestModel(t, testOptions(t), 30)

	m, _ = update(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if got := m.Navigator().Index(); got != 16 {
		t.Errorf("index after wheel up = %d, want 16", got)
	}

	m, _ = update(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress, Shift: true})
	if got := m.Navigator().Index(); got != 26 {
		t.Errorf("index after shift+wheel up = %d, want 26", got)
	}

	m, _ = update(t, m, tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if got := m.Navigator().Index(); got != 25 {
		t.Errorf("index after wheel down = %d, want 25", got)
	}
	if m.Navigator().Held("shift") {
		t.Error("shift should be released after the wheel event")
	}
}

func TestModelUpdate_PickWithToggle(t *testing.T) {
	m := newTestModel(t, testOptions(t), 20)

	m, _ = update(t, m, keyMsg("p"))
	if !m.Navigator().Held("ctrl") {
		t.Fatal("p should hold the pick key")
	}
	if !strings.Contains(m.View(), "PICK") {
		t.Error("header should show the pick state")
	}

	// (0, 0) then (3, 4)
	m, _ = update(t, m, leftClick(0, imageTop, false))
	if got := len(m.Navigator().Picks()); got != 1 {
		t.Fatalf("picks after first click = %d, want 1", got)
	}
	m, _ = update(t, m, leftClick(6, imageTop+4, false))

	if m.surface.Plots() != 1 {
		t.Fatalf("Plots() = %d, want 1", m.surface.Plots())
	}
	prof := m.surface.plots[0].profiles[0]
	if prof.Len() != 6 {
		t.Errorf("profile samples = %d, want 6", prof.Len())
	}
	for _, v := range prof.Values {
		if math.Abs(v-10) > 1e-9 {
			t.Errorf("profile value = %v, want 10 on slice 10", v)
		}
	}
	if len(m.Navigator().Picks()) != 0 || m.Navigator().Held("ctrl") {
		t.Error("buffer and pick key should be cleared after a profile")
	}
	if len(m.surface.panels[0].lines) != 1 {
		t.Errorf("panel should carry one line overlay, got %d", len(m.surface.panels[0].lines))
	}

	// a third click without re-holding is ignored
	m, _ = update(t, m, leftClick(2, imageTop, false))
	if len(m.Navigator().Picks()) != 0 {
		t.Error("click without the pick key should be ignored")
	}

	// scrolling clears the overlay but keeps the profile pane
	m, _ = update(t, m, keyMsg("up"))
	if len(m.surface.panels[0].lines) != 0 {
		t.Error("changing slice should clear overlays")
	}
	if m.surface.Plots() != 1 {
		t.Error("profile pane should survive a slice change")
	}

	m, _ = update(t, m, keyMsg("x"))
	if m.surface.Plots() != 0 {
		t.Error("x should close the newest profile pane")
	}
}

func TestModelUpdate_PickWithCtrlClick(t *testing.T) {
	m := newTestModel(t, testOptions(t), 20, 20)

	// second panel starts after 8 cells and the gap
	left := 8*cellChars + panelGap
	m, _ = update(t, m, leftClick(left, imageTop, true))
	m, _ = update(t, m, leftClick(left+2*cellChars, imageTop, true))

	if m.surface.Plots() != 1 {
		t.Fatalf("Plots() = %d, want 1 after ctrl-clicking two points", m.surface.Plots())
	}
	if len(m.surface.panels[1].lines) != 1 || len(m.surface.panels[0].lines) != 0 {
		t.Error("the line should be drawn on the clicked panel only")
	}
	if got := m.surface.plots[0].profiles[0].Len(); got != 3 {
		t.Errorf("profile samples = %d, want 3", got)
	}
}

func TestModelUpdate_PickOutsidePanels(t *testing.T) {
	m := newTestModel(t, testOptions(t), 20)

	m, _ = update(t, m, keyMsg("p"))
	m, _ = update(t, m, leftClick(0, 0, false))
	if len(m.Navigator().Picks()) != 0 {
		t.Error("clicks on the header should not pick points")
	}
	if !m.Navigator().Held("ctrl") {
		t.Error("missed click should keep picking armed")
	}

	m, _ = update(t, m, keyMsg("esc"))
	if m.Navigator().Held("ctrl") {
		t.Error("esc should release the pick key")
	}
}

func TestModelUpdate_PickingDisabled(t *testing.T) {
	opts := testOptions(t)
	opts.PickKey = ""
	m := newTestModel(t, opts, 20)

	m, _ = update(t, m, keyMsg("p"))
	if !strings.Contains(m.View(), "disabled") {
		t.Error("p without a pick key should report that picking is disabled")
	}

	m, _ = update(t, m, leftClick(0, imageTop, true))
	m, _ = update(t, m, leftClick(4, imageTop, true))
	if m.surface.Plots() != 0 {
		t.Error("no profile should be extracted with picking disabled")
	}
}

func TestModelUpdate_QuitSavesState(t *testing.T) {
	opts := testOptions(t)
	m := newTestModel(t, opts, 20)
	m, _ = update(t, m, keyMsg("up"))

	m, cmd := update(t, m, keyMsg("q"))
	if !m.quitting {
		t.Error("Expected quitting to be true after 'q' key")
	}
	if cmd == nil {
		t.Error("Expected quit command to be returned")
	}
	if m.View() != "" {
		t.Error("View should be empty after quitting")
	}
	if len(m.surface.handlers) != 0 {
		t.Error("quitting should disconnect the navigator")
	}

	state, err := NewUIStateManager(opts.StateDir, nil).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if state.Source != "test-volume" || state.View != "transverse" || state.Index != 11 {
		t.Errorf("saved state = %+v, want test-volume/transverse/11", state)
	}
}

func TestModelUpdate_QuitOnCtrlC(t *testing.T) {
	m := newTestModel(t, testOptions(t), 4)

	m, cmd := update(t, m, keyMsg("ctrl+c"))
	if !m.quitting || cmd == nil {
		t.Error("Expected ctrl+c to quit")
	}
}

func TestNewModel_Resume(t *testing.T) {
	tests := []struct {
		name  string
		state UIState
		want  int
	}{
		{"same source", UIState{Source: "test-volume", View: "transverse", Index: 3}, 3},
		{"other source", UIState{Source: "other", View: "transverse", Index: 3}, 10},
		{"other view", UIState{Source: "test-volume", View: "coronal", Index: 3}, 10},
		{"stale index wraps", UIState{Source: "test-volume", View: "transverse", Index: 23}, 3},
		{"from bookmark", UIState{
			Source: "other", View: "transverse", Index: 1,
			Recent: []Bookmark{{Source: "test-volume", View: "transverse", Index: 7}},
		}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t)
			opts.Resume = true
			state := tt.state
			if err := NewUIStateManager(opts.StateDir, nil).Save(&state); err != nil {
				t.Fatal(err)
			}

			m := newTestModel(t, opts, 20)
			if got := m.Navigator().Index(); got != tt.want {
				t.Errorf("index = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestModelView(t *testing.T) {
	opts := testOptions(t)
	opts.Render.Palette = config.PaletteRamp
	m := newTestModel(t, opts, 20, 12)

	view := m.View()
	for _, want := range []string{"test-volume", "transverse", "slice 6/12", "slice #6", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	lines := strings.Split(view, "\n")
	if !strings.Contains(lines[imageTop-1], "slice #6") {
		t.Errorf("titles should be on row %d, got %q", imageTop-1, lines[imageTop-1])
	}

	m, _ = update(t, m, keyMsg("?"))
	if !strings.Contains(m.View(), "Keys") {
		t.Error("? should show help")
	}
	m, _ = update(t, m, keyMsg("?"))
	if strings.Contains(m.View(), "Keys") {
		t.Error("? should toggle help off")
	}
}

func TestModelUpdate_WindowSize(t *testing.T) {
	m := newTestModel(t, testOptions(t), 20, 20)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 20, Height: 60})
	if m.width != 20 || m.height != 60 {
		t.Errorf("size = %dx%d, want 20x60", m.width, m.height)
	}
	if g := m.surface.layout()[0]; g.cols != 4 {
		t.Errorf("panel columns after resize = %d, want 4", g.cols)
	}
}
