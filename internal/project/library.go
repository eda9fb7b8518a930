// Package project persists the per-user shop data: the library of machines,
// tools and work materials under the user's home directory, plus versioned
// backups of the full data set for moving between computers.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
)

// DefaultLibraryPath returns the default file path for the library file.
// This is located at ~/.speedsfeeds/library.json.
func DefaultLibraryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".speedsfeeds", "library.json"), nil
}

// SaveLibrary writes the library to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveLibrary(path string, lib model.Library) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadLibrary reads the library from the specified JSON file.
// If the file does not exist, it returns the default library and saves it.
// A file that parses but fails validation is an error; better to stop than
// to silently compute with a broken shop definition.
func LoadLibrary(path string) (model.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			lib := model.DefaultLibrary()
			if saveErr := SaveLibrary(path, lib); saveErr != nil {
				return lib, saveErr
			}
			return lib, nil
		}
		return model.Library{}, err
	}
	var lib model.Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return model.Library{}, fmt.Errorf("failed to parse library file: %w", err)
	}
	if err := lib.Validate(); err != nil {
		return model.Library{}, fmt.Errorf("invalid library file: %w", err)
	}
	return lib, nil
}

// LoadOrCreateLibrary loads the library from the default path.
// If the file does not exist, it creates one with the default entries.
func LoadOrCreateLibrary() (model.Library, string, error) {
	path, err := DefaultLibraryPath()
	if err != nil {
		return model.DefaultLibrary(), "", err
	}
	lib, err := LoadLibrary(path)
	return lib, path, err
}

// ExportLibrary exports the library to a user-specified JSON file.
func ExportLibrary(path string, lib model.Library) error {
	return SaveLibrary(path, lib)
}

// ImportLibrary imports a library from a user-specified JSON file, merging
// it with the existing library. Duplicate machines and materials (by name)
// and tools (by ID) are skipped.
func ImportLibrary(path string, existing model.Library) (model.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return existing, err
	}
	var imported model.Library
	if err := json.Unmarshal(data, &imported); err != nil {
		return existing, err
	}

	machineNames := make(map[string]bool, len(existing.Machines))
	for _, m := range existing.Machines {
		machineNames[m.Name] = true
	}
	toolIDs := make(map[string]bool, len(existing.Tools))
	for _, t := range existing.Tools {
		toolIDs[t.ID] = true
	}
	materialNames := make(map[string]bool, len(existing.Materials))
	for _, m := range existing.Materials {
		materialNames[m.Name] = true
	}

	for _, m := range imported.Machines {
		if !machineNames[m.Name] {
			existing.Machines = append(existing.Machines, m)
			machineNames[m.Name] = true
		}
	}
	for _, t := range imported.Tools {
		if !toolIDs[t.ID] {
			existing.Tools = append(existing.Tools, t)
			toolIDs[t.ID] = true
		}
	}
	for _, m := range imported.Materials {
		if !materialNames[m.Name] {
			existing.Materials = append(existing.Materials, m)
			materialNames[m.Name] = true
		}
	}

	return existing, nil
}
