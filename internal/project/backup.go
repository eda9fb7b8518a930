package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
)

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string         `json:"version"`
	CreatedAt string         `json:"created_at"`
	Settings  model.Settings `json:"settings"`
	Library   model.Library  `json:"library"`
}

// ExportAllData exports all application data (cutting settings and the shop
// library) to a single JSON file at the specified path.
func ExportAllData(exportPath string, settings model.Settings, lib model.Library) error {
	backup := BackupData{
		Version:   "1.0.0",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Settings:  settings,
		Library:   lib,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported settings and library.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	// Ensure SpeedFactors is never nil
	if backup.Settings.SpeedFactors == nil {
		backup.Settings.SpeedFactors = map[model.ToolMaterial]float64{}
	}
	if err := backup.Settings.Validate(); err != nil {
		return BackupData{}, fmt.Errorf("invalid backup settings: %w", err)
	}
	if err := backup.Library.Validate(); err != nil {
		return BackupData{}, fmt.Errorf("invalid backup library: %w", err)
	}
	return backup, nil
}
