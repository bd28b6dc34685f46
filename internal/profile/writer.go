package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"medview/internal/fsutil"
	"medview/internal/logging"
)

// Record is one exported profile line.
type Record struct {
	// ID identifies the record across appended exports; Write fills it in.
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	Source    string    `json:"source"`
	View      string    `json:"view"`
	Panel     int       `json:"panel"`
	Index     int       `json:"index"`
	Summary   Summary   `json:"summary"`
	Profile   Profile   `json:"profile"`
}

// Writer appends profile records to a JSON Lines file
type Writer struct {
	logger *logging.Logger
}

// NewWriter creates a new profile writer
func NewWriter(logger *logging.Logger) *Writer {
	return &Writer{
		logger: logger,
	}
}

// Write appends rec to path, creating the file when needed.
func (w *Writer) Write(rec Record, path string) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	data = append(data, '\n')

	file, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, fsutil.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to open profile export: %w", err)
	}
	defer fsutil.CloseWithError(file.Close, w.logger, path)

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	w.logger.Debug("profile.exported", "Profile appended", map[string]interface{}{
		"id":      rec.ID,
		"path":    path,
		"samples": rec.Profile.Len(),
	})
	return nil
}
