package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
)

// DefaultConfigDir returns the default directory for per-user shop data.
// On all platforms this is ~/.speedsfeeds/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".speedsfeeds")
}

// DefaultSettingsPath returns the default path for the persisted cutting
// settings file.
func DefaultSettingsPath() string {
	return filepath.Join(DefaultConfigDir(), "settings.json")
}

// SaveSettings persists cutting settings to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveSettings(path string, settings model.Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadSettings reads cutting settings from the given path.
// If the file does not exist, it returns the stock settings with no error.
func LoadSettings(path string) (model.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultSettings(), nil
		}
		return model.Settings{}, err
	}
	var settings model.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return model.Settings{}, err
	}
	// Ensure SpeedFactors is never nil
	if settings.SpeedFactors == nil {
		settings.SpeedFactors = map[model.ToolMaterial]float64{}
	}
	if err := settings.Validate(); err != nil {
		return model.Settings{}, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}
