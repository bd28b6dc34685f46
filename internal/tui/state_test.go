package tui

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"medview/internal/logging"
)

func TestUIStateManager_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	logger := logging.NewLogger(logging.LevelError)
	manager := NewUIStateManager(tmpDir, logger)

	state := &UIState{
		Source:    "/data/ct",
		View:      "coronal",
		Index:     42,
		LastError: "test error",
	}

	if err := manager.Save(state); err != nil {
		t.Fatalf("Failed to save state: %v", err)
	}

	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}

	if loaded.Source != "/data/ct" {
		t.Errorf("Expected source /data/ct, got %s", loaded.Source)
	}
	if loaded.View != "coronal" {
		t.Errorf("Expected view coronal, got %s", loaded.View)
	}
	if loaded.Index != 42 {
		t.Errorf("Expected index 42, got %d", loaded.Index)
	}
	if loaded.LastError != "test error" {
		t.Errorf("Expected error 'test error', got %s", loaded.LastError)
	}
	if loaded.Updated.IsZero() {
		t.Error("Expected Updated to be set on save")
	}
}

func TestUIStateManager_LoadNonExistent(t *testing.T) {
	manager := NewUIStateManager(t.TempDir(), nil)

	state, err := manager.Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if state.Source != "" || state.Index != 0 || state.LastError != "" {
		t.Errorf("Expected empty state, got %+v", state)
	}
}

func TestUIStateManager_LoadCorrupt(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, UIStateFileName), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	manager := NewUIStateManager(tmpDir, nil)
	if _, err := manager.Load(); err == nil {
		t.Error("Expected error for corrupt state file")
	}
}

func TestUIStateManager_RecordReplacesCorrupt(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, UIStateFileName), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	manager := NewUIStateManager(tmpDir, logging.NewWriterLogger(logging.LevelInfo, logging.FormatJSON, &buf))
	if err := manager.Record("vol", "transverse", 4, ""); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if !strings.Contains(buf.String(), "tui.state.load_failed") {
		t.Errorf("expected tui.state.load_failed warning, got %q", buf.String())
	}
	index, ok, err := manager.Lookup("vol", "transverse")
	if err != nil || !ok || index != 4 {
		t.Errorf("Lookup() = %d, %v, %v; want 4, true, nil", index, ok, err)
	}
}

func TestUIStateManager_SaveError(t *testing.T) {
	manager := NewUIStateManager(t.TempDir(), nil)

	if err := manager.Save(&UIState{Source: "vol", Index: 3}); err != nil {
		t.Fatal(err)
	}

	errorMsg := "failed to decode slice"
	if err := manager.SaveError(errorMsg); err != nil {
		t.Fatalf("Failed to save error: %v", err)
	}

	state, err := manager.Load()
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}

	if state.LastError != errorMsg {
		t.Errorf("Expected error '%s', got '%s'", errorMsg, state.LastError)
	}
	if state.Source != "vol" || state.Index != 3 {
		t.Errorf("SaveError should keep the rest of the state, got %+v", state)
	}
}

func TestUIStateManager_RecordAndLookup(t *testing.T) {
	manager := NewUIStateManager(t.TempDir(), nil)

	if err := manager.Record("/data/a", "transverse", 4, ""); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := manager.Record("/data/b", "coronal", 9, ""); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	tests := []struct {
		source, view string
		want         int
		found        bool
	}{
		{"/data/b", "coronal", 9, true},
		{"/data/a", "transverse", 4, true},
		{"/data/a", "sagittal", 0, false},
		{"/data/c", "transverse", 0, false},
	}
	for _, tt := range tests {
		index, ok, err := manager.Lookup(tt.source, tt.view)
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if ok != tt.found || index != tt.want {
			t.Errorf("Lookup(%s, %s) = %d, %v; want %d, %v", tt.source, tt.view, index, ok, tt.want, tt.found)
		}
	}
}

func TestUIStateManager_RecordReplacesOldBookmark(t *testing.T) {
	manager := NewUIStateManager(t.TempDir(), nil)

	steps := []struct {
		source string
		index  int
	}{
		{"a", 1}, {"b", 2}, {"a", 3}, {"a", 5},
	}
	for _, s := range steps {
		if err := manager.Record(s.source, "transverse", s.index, ""); err != nil {
			t.Fatal(err)
		}
	}

	state, err := manager.Load()
	if err != nil {
		t.Fatal(err)
	}
	if state.Source != "a" || state.Index != 5 {
		t.Errorf("current = %s/%d, want a/5", state.Source, state.Index)
	}
	if len(state.Recent) != 1 || state.Recent[0] != (Bookmark{Source: "b", View: "transverse", Index: 2}) {
		t.Errorf("Recent = %+v, want only b/2", state.Recent)
	}
}

func TestUIStateManager_RecentIsBounded(t *testing.T) {
	manager := NewUIStateManager(t.TempDir(), nil)

	for i := 0; i < maxRecent+5; i++ {
		if err := manager.Record(fmt.Sprintf("src-%d", i), "transverse", i, ""); err != nil {
			t.Fatal(err)
		}
	}

	state, err := manager.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Recent) != maxRecent {
		t.Errorf("len(Recent) = %d, want %d", len(state.Recent), maxRecent)
	}
	if state.Recent[0].Source != fmt.Sprintf("src-%d", maxRecent+3) {
		t.Errorf("Recent[0] = %+v, want the previous session first", state.Recent[0])
	}
}

func TestUIStateManager_RecordClearsError(t *testing.T) {
	manager := NewUIStateManager(t.TempDir(), nil)

	if err := manager.SaveError("terminal lost"); err != nil {
		t.Fatal(err)
	}
	if got := manager.LastError(); got != "terminal lost" {
		t.Errorf("LastError() = %q, want terminal lost", got)
	}

	if err := manager.Record("a", "transverse", 0, ""); err != nil {
		t.Fatal(err)
	}
	if got := manager.LastError(); got != "" {
		t.Errorf("LastError() = %q after a clean record, want empty", got)
	}
}

func TestUIStateManager_AtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	manager := NewUIStateManager(tmpDir, nil)

	if err := manager.Save(&UIState{Source: "vol"}); err != nil {
		t.Fatalf("Failed to save state: %v", err)
	}

	tmpPath := filepath.Join(tmpDir, "ui_state.json.tmp")
	if _, err := os.Stat(tmpPath); !os.IsNotExist(err) {
		t.Errorf("Temp file should not exist after save")
	}

	statePath := filepath.Join(tmpDir, "ui_state.json")
	if _, err := os.Stat(statePath); err != nil {
		t.Errorf("State file should exist: %v", err)
	}
}

func TestUIStateManager_CreatesStateDir(t *testing.T) {
	stateDir := filepath.Join(t.TempDir(), "nested", "state")
	manager := NewUIStateManager(stateDir, nil)

	if err := manager.Save(&UIState{}); err != nil {
		t.Fatalf("Failed to save state: %v", err)
	}
	if _, err := os.Stat(filepath.Join(stateDir, UIStateFileName)); err != nil {
		t.Errorf("State file should exist: %v", err)
	}
}
