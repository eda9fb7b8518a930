package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
)

func TestExportAndImportAllData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	settings := model.DefaultSettings()
	settings.ChipLoad = 0.003
	settings.PowerSafetyFactor = 0.6
	lib := model.DefaultLibrary()

	if err := ExportAllData(path, settings, lib); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}

	if backup.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %s", backup.Version)
	}
	if _, err := time.Parse(time.RFC3339, backup.CreatedAt); err != nil {
		t.Errorf("CreatedAt is not RFC 3339: %q", backup.CreatedAt)
	}
	if backup.Settings.ChipLoad != 0.003 {
		t.Errorf("expected ChipLoad=0.003, got %f", backup.Settings.ChipLoad)
	}
	if backup.Settings.PowerSafetyFactor != 0.6 {
		t.Errorf("expected PowerSafetyFactor=0.6, got %f", backup.Settings.PowerSafetyFactor)
	}
	if len(backup.Library.Machines) != len(lib.Machines) {
		t.Errorf("expected %d machines, got %d", len(lib.Machines), len(backup.Library.Machines))
	}
	if len(backup.Library.Tools) != len(lib.Tools) {
		t.Errorf("expected %d tools, got %d", len(lib.Tools), len(backup.Library.Tools))
	}
	if len(backup.Library.Materials) != len(lib.Materials) {
		t.Errorf("expected %d materials, got %d", len(lib.Materials), len(backup.Library.Materials))
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	_, err := ImportAllData(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportAllDataInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ImportAllData(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportAllDataMissingVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "noversion.json")
	data := []byte(`{"settings":{"chip_load":0.005}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := ImportAllData(path)
	if err == nil {
		t.Fatal("expected error for missing version")
	}
}

func TestImportAllDataRejectsInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	settings := model.DefaultSettings()
	settings.ChipLoad = -1.0
	if err := ExportAllData(path, settings, model.DefaultLibrary()); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	_, err := ImportAllData(path)
	if err == nil {
		t.Fatal("expected error for invalid settings")
	}
}

func TestImportAllDataRejectsInvalidLibrary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	lib := model.DefaultLibrary()
	lib.Tools[0].Teeth = 0
	if err := ExportAllData(path, model.DefaultSettings(), lib); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	_, err := ImportAllData(path)
	if err == nil {
		t.Fatal("expected error for invalid library")
	}
}

func TestExportAllDataCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deep", "nested", "backup.json")

	if err := ExportAllData(path, model.DefaultSettings(), model.DefaultLibrary()); err != nil {
		t.Fatalf("ExportAllData should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("backup file was not created")
	}
}

func TestImportAllDataNilSpeedFactors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	settings := model.DefaultSettings()
	settings.SpeedFactors = nil
	if err := ExportAllData(path, settings, model.DefaultLibrary()); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Settings.SpeedFactors == nil {
		t.Error("SpeedFactors should not be nil after import")
	}
}
