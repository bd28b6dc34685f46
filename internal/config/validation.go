package config

import (
	"fmt"
	"math"
	"slices"

	"medview/internal/volume"
)

const minPanelCells = 4

// Warnings reports settings that load but fall back to a default. An
// unrecognized view leaves volumes unpermuted, as transverse does.
func (c *Config) Warnings() []ValidationError {
	var warnings []ValidationError
	if _, ok := volume.ParseView(c.Viewer.View); !ok {
		warnings = append(warnings, ValidationError{
			Path:    "viewer.view",
			Message: fmt.Sprintf("unrecognized view '%s', using transverse", c.Viewer.View),
		})
	}
	return warnings
}

// Validate checks if the configuration is valid
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateViewer()...)
	errors = append(errors, c.validateRender()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateViewer() []ValidationError {
	var errors []ValidationError

	if c.Viewer.FastKey == "" {
		errors = append(errors, ValidationError{
			Path:    "viewer.fast_key",
			Message: "must not be empty",
		})
	}

	if c.Viewer.FastStep < 1 {
		errors = append(errors, ValidationError{
			Path:    "viewer.fast_step",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Viewer.FastStep),
		})
	}

	if c.Viewer.PickKey != "" && c.Viewer.PickKey == c.Viewer.FastKey {
		errors = append(errors, ValidationError{
			Path:    "viewer.pick_key",
			Message: fmt.Sprintf("must differ from fast_key '%s'", c.Viewer.FastKey),
		})
	}

	return errors
}

func (c *Config) validateRender() []ValidationError {
	var errors []ValidationError

	validPalettes := []string{PaletteGray, PaletteRamp}
	if !slices.Contains(validPalettes, c.Render.Palette) {
		errors = append(errors, ValidationError{
			Path:    "render.palette",
			Message: fmt.Sprintf("must be one of %v, got '%s'", validPalettes, c.Render.Palette),
		})
	}

	for _, bound := range []struct {
		path  string
		value *float64
	}{{"render.vmin", c.Render.VMin}, {"render.vmax", c.Render.VMax}} {
		if bound.value != nil && (math.IsNaN(*bound.value) || math.IsInf(*bound.value, 0)) {
			errors = append(errors, ValidationError{
				Path:    bound.path,
				Message: fmt.Sprintf("must be a finite number, got %g", *bound.value),
			})
		}
	}

	if c.Render.VMin != nil && c.Render.VMax != nil && *c.Render.VMin >= *c.Render.VMax {
		errors = append(errors, ValidationError{
			Path:    "render.vmin",
			Message: fmt.Sprintf("must be less than vmax (%g), got %g", *c.Render.VMax, *c.Render.VMin),
		})
	}

	if c.Render.MaxWidth < minPanelCells {
		errors = append(errors, ValidationError{
			Path:    "render.max_width",
			Message: fmt.Sprintf("must be at least %d, got %d", minPanelCells, c.Render.MaxWidth),
		})
	}

	if c.Render.MaxHeight < minPanelCells {
		errors = append(errors, ValidationError{
			Path:    "render.max_height",
			Message: fmt.Sprintf("must be at least %d, got %d", minPanelCells, c.Render.MaxHeight),
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, c.Logging.Level) {
		errors = append(errors, ValidationError{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got '%s'", validLevels, c.Logging.Level),
		})
	}

	validFormats := []string{"json", "text"}
	if !slices.Contains(validFormats, c.Logging.Format) {
		errors = append(errors, ValidationError{
			Path:    "logging.format",
			Message: fmt.Sprintf("must be one of %v, got '%s'", validFormats, c.Logging.Format),
		})
	}

	return errors
}
