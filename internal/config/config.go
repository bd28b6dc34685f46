package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDirEnv overrides the system configuration directory
	ConfigDirEnv     = "MEDVIEW_CONFIG_DIR"
	systemConfigDir  = "/etc/medview"
	systemConfigFile = "config.yaml"
	userConfigDir    = ".medview"
	userConfigFile   = "config.yaml"
)

// Load loads and merges configuration from system and user files
// Priority: defaults < system config < user config
func Load() (Config, error) {
	cfg := DefaultConfig()

	if err := mergeConfigFile(&cfg, SystemConfigPath()); err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to load system config: %w", err)
		}
	}

	if userPath := UserConfigPath(); userPath != "" {
		if err := mergeConfigFile(&cfg, userPath); err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to load user config: %w", err)
			}
		}
	}

	if validationErrors := cfg.Validate(); len(validationErrors) > 0 {
		return cfg, fmt.Errorf("config.validation.error: %v", formatValidationErrors(validationErrors))
	}

	return cfg, nil
}

// LoadFrom loads configuration from a specific file path on top of the defaults
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := mergeConfigFile(&cfg, path); err != nil {
		return cfg, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if validationErrors := cfg.Validate(); len(validationErrors) > 0 {
		return cfg, fmt.Errorf("config.validation.error: %v", formatValidationErrors(validationErrors))
	}

	return cfg, nil
}

// mergeConfigFile reads a YAML file and merges it into the existing config
func mergeConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path is constructed from trusted sources
	if err != nil {
		return err
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	mergeConfig(cfg, &overlay)
	return nil
}

// mergeConfig merges non-zero values from src into dst
func mergeConfig(dst, src *Config) {
	if src.Viewer.View != "" {
		dst.Viewer.View = src.Viewer.View
	}
	if src.Viewer.FastKey != "" {
		dst.Viewer.FastKey = src.Viewer.FastKey
	}
	if src.Viewer.FastStep != 0 {
		dst.Viewer.FastStep = src.Viewer.FastStep
	}
	if src.Viewer.PickKey != "" {
		dst.Viewer.PickKey = src.Viewer.PickKey
	}
	if src.Viewer.Picking != nil {
		dst.Viewer.Picking = src.Viewer.Picking
	}

	if src.Render.VMin != nil {
		dst.Render.VMin = src.Render.VMin
	}
	if src.Render.VMax != nil {
		dst.Render.VMax = src.Render.VMax
	}
	if src.Render.Palette != "" {
		dst.Render.Palette = src.Render.Palette
	}
	if src.Render.MaxWidth != 0 {
		dst.Render.MaxWidth = src.Render.MaxWidth
	}
	if src.Render.MaxHeight != 0 {
		dst.Render.MaxHeight = src.Render.MaxHeight
	}

	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.Format != "" {
		dst.Logging.Format = src.Logging.Format
	}
	if src.Logging.File != "" {
		dst.Logging.File = src.Logging.File
	}

	if src.State.Dir != "" {
		dst.State.Dir = src.State.Dir
	}
}

// formatValidationErrors formats validation errors for display
func formatValidationErrors(errors []ValidationError) string {
	if len(errors) == 0 {
		return ""
	}
	if len(errors) == 1 {
		return errors[0].Error()
	}
	result := fmt.Sprintf("%d validation errors:\n", len(errors))
	for _, err := range errors {
		result += "  - " + err.Error() + "\n"
	}
	return result
}

// SystemConfigPath returns the path to the system configuration file,
// below $MEDVIEW_CONFIG_DIR when set
func SystemConfigPath() string {
	dir := systemConfigDir
	if env := os.Getenv(ConfigDirEnv); env != "" {
		dir = env
		if abs, err := filepath.Abs(env); err == nil {
			dir = abs
		}
	}
	return filepath.Join(dir, systemConfigFile)
}

// UserConfigPath returns the path to the user configuration file
func UserConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, userConfigDir, userConfigFile)
}
