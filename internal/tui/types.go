package tui

import (
	"time"

	"medview/internal/logging"
	"medview/internal/navigator"
	"medview/internal/volume"
)

// Layout constants, in terminal cells
const (
	// cellChars is the number of characters one image cell occupies
	cellChars = 2
	// panelGap separates neighbouring panels
	panelGap = 2
	// imageTop is the first screen row of panel images (header, blank, title)
	imageTop = 3
	// maxProfilePanes is how many profile plots are rendered at once
	maxProfilePanes = 2
	// profileRows is the space reserved below the panels for profile panes
	profileRows = 3*maxProfilePanes + 1
	// footerRows holds the status line and key hints
	footerRows = 2
)

// Options configure the viewer model
type Options struct {
	// Source is the path or label of what is being viewed; used to match saved state
	Source string
	View   volume.View

	FastKey  string
	FastStep int
	// PickKey empty disables profile picking
	PickKey string
	Titles  []string
	Render  navigator.RenderOptions

	// MaxWidth and MaxHeight bound each panel, in characters and rows
	MaxWidth  int
	MaxHeight int

	StateDir string
	// Resume restores the last saved index when Source and View match
	Resume bool

	Logger *logging.Logger
}

// UIState represents the persisted viewer state: the session that ran last
// plus bookmarks of earlier ones
type UIState struct {
	Source    string     `json:"source"`
	View      string     `json:"view"`
	Index     int        `json:"index"`
	LastError string     `json:"last_error"`
	Updated   time.Time  `json:"updated"`
	Recent    []Bookmark `json:"recent,omitempty"`
}

// Bookmark is the last slice index seen for one source and view
type Bookmark struct {
	Source string `json:"source"`
	View   string `json:"view"`
	Index  int    `json:"index"`
}

// maxRecent bounds how many earlier sessions are remembered
const maxRecent = 16
