package config

const (
	// PaletteGray renders slices as grey background cells.
	PaletteGray = "gray"
	// PaletteRamp renders slices as an ASCII density ramp.
	PaletteRamp = "ramp"
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	picking := true
	return Config{
		Viewer: ViewerConfig{
			View:     "transverse",
			FastKey:  "shift",
			FastStep: 10,
			PickKey:  "ctrl",
			Picking:  &picking,
		},
		Render: RenderConfig{
			Palette:   PaletteGray,
			MaxWidth:  64,
			MaxHeight: 32,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
