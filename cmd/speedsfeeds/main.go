// speedsfeeds renders rough milling parameter charts for every machine,
// tool and work material combination in the shop library.
//
// Build:
//   go build -o speedsfeeds ./cmd/speedsfeeds
//
// Typical usage:
//   speedsfeeds                      # stock library, charts in the current directory
//   speedsfeeds -config shop.yaml    # library and calibration from a config file
//   speedsfeeds -tools tools.csv     # merge a tool list before computing
//   speedsfeeds -xlsx speeds.xlsx    # also write a spreadsheet summary
//   speedsfeeds -whatif-machine M -whatif-tool T -whatif-material W  # compare calibrations

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pwnage101/speeds-and-feeds/internal/config"
	"github.com/pwnage101/speeds-and-feeds/internal/engine"
	"github.com/pwnage101/speeds-and-feeds/internal/export"
	"github.com/pwnage101/speeds-and-feeds/internal/importer"
	"github.com/pwnage101/speeds-and-feeds/internal/logging"
	"github.com/pwnage101/speeds-and-feeds/internal/model"
	"github.com/pwnage101/speeds-and-feeds/internal/project"
	"github.com/pwnage101/speeds-and-feeds/internal/report"
)

func main() {
	log := logging.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "", "Path to configuration file (YAML)")
	outDir := flag.String("out", "", "Output directory for charts (overrides the configured one)")
	libraryPath := flag.String("library", "", "Library JSON file to use instead of the per-user one")
	mergeLibrary := flag.String("merge-library", "", "Library JSON export to merge into the active library")
	toolsPath := flag.String("tools", "", "CSV or Excel tool list to merge into the library")
	xlsxPath := flag.String("xlsx", "", "Also write a spreadsheet summary to this path")
	labelsPath := flag.String("labels", "", "Also write QR setup labels to this path")
	backupPath := flag.String("backup", "", "Export settings and library to this path and exit")
	restorePath := flag.String("restore", "", "Import settings and library from a backup file")
	workers := flag.Int("workers", 0, "Worker goroutines for the calculation (0 = configured value or one per CPU)")
	whatifMachine := flag.String("whatif-machine", "", "Machine name for a calibration comparison (needs -whatif-tool and -whatif-material)")
	whatifTool := flag.String("whatif-tool", "", "Tool label or ID for the calibration comparison")
	whatifMaterial := flag.String("whatif-material", "", "Work material name for the calibration comparison")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.WithError(err).Error("Failed to load configuration")
			os.Exit(1)
		}
		cfg = loaded
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithEnv("LOG_LEVEL").WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	settings := cfg.ToSettings()
	if *configPath == "" {
		persisted, err := project.LoadSettings(project.DefaultSettingsPath())
		if err != nil {
			log.WithError(err).Warn("Ignoring persisted settings")
		} else {
			settings = persisted
		}
	}

	var lib model.Library
	switch {
	case *libraryPath != "":
		loaded, err := project.LoadLibrary(*libraryPath)
		if err != nil {
			log.WithError(err).Error("Failed to load library file")
			os.Exit(1)
		}
		lib = loaded
		log.WithFields(logging.Fields{"path": *libraryPath}).Info("loaded library file")
	case cfg.HasLibrary():
		lib = cfg.ToLibrary()
		log.WithFields(logging.Fields{"source": *configPath}).Info("using library from configuration")
	default:
		loaded, path, err := project.LoadOrCreateLibrary()
		if err != nil {
			log.WithError(err).Error("Failed to load shop library")
			os.Exit(1)
		}
		lib = loaded
		log.WithFields(logging.Fields{"path": path}).Info("loaded shop library")
	}

	if *restorePath != "" {
		backup, err := project.ImportAllData(*restorePath)
		if err != nil {
			log.WithError(err).Error("Failed to restore backup")
			os.Exit(1)
		}
		settings = backup.Settings
		lib = backup.Library
		if err := project.SaveSettings(project.DefaultSettingsPath(), settings); err != nil {
			log.WithError(err).Warn("Failed to persist restored settings")
		}
		if path, err := project.DefaultLibraryPath(); err == nil {
			if err := project.SaveLibrary(path, lib); err != nil {
				log.WithError(err).Warn("Failed to persist restored library")
			}
		}
		log.WithFields(logging.Fields{
			"path":       *restorePath,
			"created_at": backup.CreatedAt,
		}).Info("restored settings and library from backup")
	}

	if *mergeLibrary != "" {
		before := len(lib.Machines) + len(lib.Tools) + len(lib.Materials)
		merged, err := project.ImportLibrary(*mergeLibrary, lib)
		if err != nil {
			log.WithError(err).Error("Failed to merge library file")
			os.Exit(1)
		}
		if err := merged.Validate(); err != nil {
			log.WithError(err).Error("Merged library is invalid")
			os.Exit(1)
		}
		lib = merged
		after := len(lib.Machines) + len(lib.Tools) + len(lib.Materials)
		log.WithFields(logging.Fields{
			"file":  *mergeLibrary,
			"added": after - before,
		}).Info("merged library file")
	}

	if *toolsPath != "" {
		mergeToolList(log, &lib, *toolsPath)
	}

	log.WithFields(logging.Fields{
		"machines":  len(lib.Machines),
		"tools":     len(lib.Tools),
		"materials": len(lib.Materials),
	}).Info("starting speeds-and-feeds")

	if *backupPath != "" {
		if err := project.ExportAllData(*backupPath, settings, lib); err != nil {
			log.WithError(err).Error("Failed to export backup")
			os.Exit(1)
		}
		log.WithFields(logging.Fields{"path": *backupPath}).Info("exported settings and library")
		return
	}

	if *whatifMachine != "" || *whatifTool != "" || *whatifMaterial != "" {
		runWhatIf(log, lib, settings, *whatifMachine, *whatifTool, *whatifMaterial)
		return
	}

	dir := cfg.Report.OutDir
	if *outDir != "" {
		dir = *outDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.WithError(err).Error("Failed to create output directory")
		os.Exit(1)
	}

	poolSize := cfg.Report.Workers
	if *workers > 0 {
		poolSize = *workers
	}

	bundle, err := report.Build(lib, settings, poolSize)
	if err != nil {
		log.WithError(err).Error("Calculation failed")
		os.Exit(1)
	}

	paths, err := export.ExportCharts(dir, bundle, settings)
	if err != nil {
		log.WithError(err).Error("Failed to write charts")
		os.Exit(1)
	}
	for _, path := range paths {
		log.WithFields(logging.Fields{"path": path}).Info("wrote chart")
	}

	if *xlsxPath != "" {
		if err := export.ExportXLSX(*xlsxPath, bundle); err != nil {
			log.WithError(err).Error("Failed to write spreadsheet")
			os.Exit(1)
		}
		log.WithFields(logging.Fields{"path": *xlsxPath}).Info("wrote spreadsheet")
	}

	if *labelsPath != "" {
		if err := export.ExportLabels(*labelsPath, bundle); err != nil {
			log.WithError(err).Error("Failed to write setup labels")
			os.Exit(1)
		}
		log.WithFields(logging.Fields{"path": *labelsPath}).Info("wrote setup labels")
	}

	log.WithFields(logging.Fields{
		"results": len(bundle.Results),
		"charts":  len(paths),
	}).Info("speeds-and-feeds finished")
}

// mergeToolList imports a CSV or Excel tool list and merges it into the
// library, reporting per-row problems without aborting the run. The run
// stops only when the file yields nothing at all.
func mergeToolList(log *logging.Log, lib *model.Library, path string) {
	var result importer.ImportResult
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		result = importer.ImportExcel(path)
	default:
		result = importer.ImportCSV(path)
	}

	for _, warning := range result.Warnings {
		log.WithFields(logging.Fields{"file": path}).Warn(warning)
	}
	for _, problem := range result.Errors {
		log.WithFields(logging.Fields{"file": path}).Warn(problem)
	}

	if len(result.Tools) == 0 {
		log.WithFields(logging.Fields{"file": path}).Error("Tool list yielded no tools")
		os.Exit(1)
	}

	merged := lib.MergeTools(result.Tools)
	logging.LogDataFlowEntry(log.WithComponent("importer"), path, "library", merged, "tools")
	log.WithFields(logging.Fields{
		"file":     path,
		"tools":    merged,
		"problems": len(result.Errors),
	}).Info("merged imported tools")
}

// runWhatIf prints a side-by-side comparison of calibration variants for a
// single machine, tool and material setup.
func runWhatIf(log *logging.Log, lib model.Library, settings model.Settings, machineName, toolName, materialName string) {
	if machineName == "" || toolName == "" || materialName == "" {
		log.Error("What-if comparison needs -whatif-machine, -whatif-tool and -whatif-material together")
		os.Exit(1)
	}

	machine := lib.MachineByName(machineName)
	if machine == nil {
		log.WithFields(logging.Fields{"machine": machineName}).Error("Machine not found in library")
		os.Exit(1)
	}
	tool := lib.ToolByLabel(toolName)
	if tool == nil {
		tool = lib.ToolByID(toolName)
	}
	if tool == nil {
		log.WithFields(logging.Fields{"tool": toolName}).Error("Tool not found in library")
		os.Exit(1)
	}
	material := lib.MaterialByName(materialName)
	if material == nil {
		log.WithFields(logging.Fields{"material": materialName}).Error("Material not found in library")
		os.Exit(1)
	}

	scenarios := engine.BuildDefaultScenarios(settings)
	results, err := engine.CompareScenarios(scenarios, *machine, *tool, *material)
	if err != nil {
		log.WithError(err).Error("What-if comparison failed")
		os.Exit(1)
	}

	fmt.Printf("%s  +  %s  +  %s\n\n", machine.Name, tool.Label, material.Name)
	fmt.Printf("%-28s %8s %12s %14s %16s\n", "Scenario", "RPM", "Feed (IPM)", "MRR (in3/min)", "Stepover @ 1D")
	for _, r := range results {
		fmt.Printf("%-28s %8.0f %12.1f %14.2f %15.1f%%\n",
			r.Scenario.Name, r.SpindleRPM, r.FeedIPM, r.MRR, r.StepoverAt1D)
	}
}
