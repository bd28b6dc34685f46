package config

// Config represents the complete medview configuration
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
	State   StateConfig   `yaml:"state"`
}

// ViewerConfig represents navigation and picking behaviour
type ViewerConfig struct {
	View     string `yaml:"view"`
	FastKey  string `yaml:"fast_key"`
	FastStep int    `yaml:"fast_step"`
	PickKey  string `yaml:"pick_key"`
	// Picking is a pointer so an explicit "false" survives merging
	Picking *bool `yaml:"picking"`
}

// RenderConfig represents panel rendering options
type RenderConfig struct {
	VMin      *float64 `yaml:"vmin"`
	VMax      *float64 `yaml:"vmax"`
	Palette   string   `yaml:"palette"`
	MaxWidth  int      `yaml:"max_width"`
	MaxHeight int      `yaml:"max_height"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// StateConfig represents where UI state is persisted
type StateConfig struct {
	Dir string `yaml:"dir"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Path + ": " + e.Message
}

// PickingEnabled reports whether profile picking is switched on
func (c Config) PickingEnabled() bool {
	return c.Viewer.Picking != nil && *c.Viewer.Picking && c.Viewer.PickKey != ""
}
