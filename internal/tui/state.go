package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"medview/internal/fsutil"
	"medview/internal/logging"
)

// UIStateFileName is the name of the UI state file
const UIStateFileName = "ui_state.json"

// UIStateManager persists where each viewed source was left
type UIStateManager struct {
	path   string
	logger *logging.Logger
}

// NewUIStateManager keeps its state file in stateDir
func NewUIStateManager(stateDir string, logger *logging.Logger) *UIStateManager {
	return &UIStateManager{
		path:   filepath.Join(stateDir, UIStateFileName),
		logger: logger,
	}
}

// Load reads the saved state. A missing file is an empty state.
func (m *UIStateManager) Load() (*UIState, error) {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return &UIState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state UIState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state %s: %w", m.path, err)
	}
	return &state, nil
}

// Save stamps and writes state atomically
func (m *UIStateManager) Save(state *UIState) error {
	if err := fsutil.EnsureStateDirectory(filepath.Dir(m.path)); err != nil {
		return err
	}
	state.Updated = time.Now().UTC()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	return fsutil.AtomicWriteFile(m.path, data, fsutil.DefaultFilePermissions, m.logger)
}

// Record makes (source, view, index) the current session. The session it
// replaces moves to the front of Recent; older entries for the same source
// and view are dropped.
func (m *UIStateManager) Record(source, view string, index int, lastError string) error {
	state := m.loadOrReset()

	recent := make([]Bookmark, 0, maxRecent)
	if state.Source != "" && (state.Source != source || state.View != view) {
		recent = append(recent, Bookmark{Source: state.Source, View: state.View, Index: state.Index})
	}
	for _, b := range state.Recent {
		if len(recent) == maxRecent {
			break
		}
		if (b.Source == source && b.View == view) || (b.Source == state.Source && b.View == state.View) {
			continue
		}
		recent = append(recent, b)
	}

	state.Source, state.View, state.Index = source, view, index
	state.LastError = lastError
	state.Recent = recent

	if err := m.Save(state); err != nil {
		return err
	}
	m.logger.Debug("tui.state.saved", "UI state saved", map[string]interface{}{
		"source": source,
		"view":   view,
		"index":  index,
		"recent": len(recent),
	})
	return nil
}

// Lookup returns the last index recorded for source in view.
func (m *UIStateManager) Lookup(source, view string) (int, bool, error) {
	state, err := m.Load()
	if err != nil {
		return 0, false, err
	}
	if state.Source == source && state.View == view {
		return state.Index, true, nil
	}
	for _, b := range state.Recent {
		if b.Source == source && b.View == view {
			return b.Index, true, nil
		}
	}
	return 0, false, nil
}

// SaveError records an error message, keeping the rest of the saved state
func (m *UIStateManager) SaveError(errorMsg string) error {
	state := m.loadOrReset()
	state.LastError = errorMsg
	return m.Save(state)
}

// loadOrReset returns the saved state, or an empty one when the file cannot
// be read. The unreadable file is overwritten by the next save.
func (m *UIStateManager) loadOrReset() *UIState {
	state, err := m.Load()
	if err != nil {
		m.logger.Warn("tui.state.load_failed", "Replacing unreadable UI state", map[string]interface{}{
			"path":  m.path,
			"error": err.Error(),
		})
		return &UIState{}
	}
	return state
}

// LastError returns the error left by the previous run, if any
func (m *UIStateManager) LastError() string {
	state, err := m.Load()
	if err != nil {
		return ""
	}
	return state.LastError
}
