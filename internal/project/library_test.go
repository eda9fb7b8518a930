package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pwnage101/speeds-and-feeds/internal/model"
	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

func TestDefaultLibraryPath(t *testing.T) {
	path, err := DefaultLibraryPath()
	if err != nil {
		t.Fatalf("DefaultLibraryPath failed: %v", err)
	}
	if filepath.Base(path) != "library.json" {
		t.Errorf("expected library.json, got %s", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != ".speedsfeeds" {
		t.Errorf("expected .speedsfeeds dir, got %s", filepath.Dir(path))
	}
}

func TestSaveAndLoadLibrary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.json")

	lib := model.DefaultLibrary()
	lib.Machines[0].Name = "Tormach 1100MX"

	if err := SaveLibrary(path, lib); err != nil {
		t.Fatalf("SaveLibrary failed: %v", err)
	}

	loaded, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}

	if len(loaded.Machines) != len(lib.Machines) {
		t.Errorf("expected %d machines, got %d", len(lib.Machines), len(loaded.Machines))
	}
	if loaded.MachineByName("Tormach 1100MX") == nil {
		t.Error("renamed machine not found after reload")
	}
	if len(loaded.Tools) != len(lib.Tools) {
		t.Errorf("expected %d tools, got %d", len(lib.Tools), len(loaded.Tools))
	}
	if len(loaded.Materials) != len(lib.Materials) {
		t.Errorf("expected %d materials, got %d", len(lib.Materials), len(loaded.Materials))
	}
}

func TestLoadLibraryCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deep", "nested", "library.json")

	lib, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}
	if err := lib.Validate(); err != nil {
		t.Errorf("default library should validate: %v", err)
	}
	want := model.DefaultLibrary()
	if len(lib.Machines) != len(want.Machines) {
		t.Errorf("expected %d machines, got %d", len(want.Machines), len(lib.Machines))
	}

	// The default should be persisted so the user has a file to edit.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("library file was not created")
	}
}

func TestLoadLibraryInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadLibrary(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoadLibraryRejectsInvalidEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.json")

	lib := model.DefaultLibrary()
	lib.Tools[0].Teeth = 0
	if err := SaveLibrary(path, lib); err != nil {
		t.Fatalf("SaveLibrary failed: %v", err)
	}

	_, err := LoadLibrary(path)
	if err == nil {
		t.Fatal("expected error for library that fails validation")
	}
}

func TestExportLibrary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export", "shop.json")

	if err := ExportLibrary(path, model.DefaultLibrary()); err != nil {
		t.Fatalf("ExportLibrary failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("exported file not found: %v", err)
	}
	if info.Size() == 0 {
		t.Error("exported file is empty")
	}
}

func TestImportLibraryMergesWithoutDuplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "incoming.json")

	existing := model.DefaultLibrary()

	maxSpeed := units.New(10000, units.RevPerMinute)
	newMachine := model.Machine{
		Name:     "Tormach 1100MX",
		Power:    units.New(2, units.Horsepower),
		MaxFeed:  units.New(300, units.InchesPerMinute),
		MaxSpeed: &maxSpeed,
	}
	newTool := model.NewTool("1/4\" 3 fl. Carbide", units.New(0.25, units.Inch), 3, model.Carbide)
	newMaterial := model.WorkMaterial{
		Name:         "Brass",
		SurfaceSpeed: units.New(250, units.FeetPerMinute),
		UnitPower:    units.New(0.8, units.HPMinPerCubicInch),
	}

	incoming := model.Library{
		Machines:  []model.Machine{existing.Machines[0], newMachine},
		Tools:     []model.Tool{existing.Tools[0], newTool},
		Materials: []model.WorkMaterial{existing.Materials[0], newMaterial},
	}
	if err := ExportLibrary(path, incoming); err != nil {
		t.Fatalf("ExportLibrary failed: %v", err)
	}

	merged, err := ImportLibrary(path, existing)
	if err != nil {
		t.Fatalf("ImportLibrary failed: %v", err)
	}

	if len(merged.Machines) != len(existing.Machines)+1 {
		t.Errorf("expected %d machines after merge, got %d", len(existing.Machines)+1, len(merged.Machines))
	}
	if merged.MachineByName("Tormach 1100MX") == nil {
		t.Error("imported machine not found")
	}
	if len(merged.Tools) != len(existing.Tools)+1 {
		t.Errorf("expected %d tools after merge, got %d", len(existing.Tools)+1, len(merged.Tools))
	}
	if merged.ToolByID(newTool.ID) == nil {
		t.Error("imported tool not found")
	}
	if len(merged.Materials) != len(existing.Materials)+1 {
		t.Errorf("expected %d materials after merge, got %d", len(existing.Materials)+1, len(merged.Materials))
	}
	if merged.MaterialByName("Brass") == nil {
		t.Error("imported material not found")
	}
}

func TestImportLibraryMissingFile(t *testing.T) {
	_, err := ImportLibrary(filepath.Join(t.TempDir(), "nope.json"), model.DefaultLibrary())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
