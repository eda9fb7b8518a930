// Package report evaluates a shop library in full: every machine, tool and
// work material combination run through the engine once, collected in a
// deterministic order for the exporters.
package report

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/pwnage101/speeds-and-feeds/internal/engine"
	"github.com/pwnage101/speeds-and-feeds/internal/logging"
	"github.com/pwnage101/speeds-and-feeds/internal/model"
	"github.com/pwnage101/speeds-and-feeds/internal/units"
)

// Bundle holds one cutting result per machine/tool/material combination,
// ordered machine-major, then tool, then material, following the library's
// declared order.
type Bundle struct {
	Results []model.CuttingResult
}

type job struct {
	slot     int
	machine  model.Machine
	tool     model.Tool
	material model.WorkMaterial
	depths   []units.Quantity
}

// Build evaluates every combination in the library under the given settings.
// Combinations are independent, so they fan out to a pool of workers; each
// result lands in its own slot, which keeps the output order deterministic
// regardless of the worker count. workers < 1 means one per CPU. The first
// combination that fails aborts the build with an error naming it.
func Build(lib model.Library, settings model.Settings, workers int) (*Bundle, error) {
	log := logging.GetLogger().WithComponent("report")

	if workers < 1 {
		workers = runtime.NumCPU()
	}

	grid := engine.GridFromSettings(settings)

	jobs := make([]job, 0, len(lib.Machines)*len(lib.Tools)*len(lib.Materials))
	for _, machine := range lib.Machines {
		for _, tool := range lib.Tools {
			// One depth grid per tool; Calculate never mutates it, so
			// the material jobs can share it.
			depths := grid.Samples(tool.Diameter)
			for _, material := range lib.Materials {
				jobs = append(jobs, job{
					slot:     len(jobs),
					machine:  machine,
					tool:     tool,
					material: material,
					depths:   depths,
				})
			}
		}
	}

	log.WithFields(logging.Fields{
		"machines":     len(lib.Machines),
		"tools":        len(lib.Tools),
		"materials":    len(lib.Materials),
		"combinations": len(jobs),
		"workers":      workers,
	}).Info("building report bundle")

	start := time.Now()
	results := make([]model.CuttingResult, len(jobs))
	errs := make([]error, len(jobs))

	queue := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				result, err := engine.Calculate(j.machine, j.tool, j.material, settings, j.depths)
				if err != nil {
					errs[j.slot] = fmt.Errorf("evaluate %s / %s / %s: %w",
						j.machine.Name, j.tool.Label, j.material.Name, err)
					continue
				}
				results[j.slot] = result
			}
		}()
	}
	for _, j := range jobs {
		queue <- j
	}
	close(queue)
	wg.Wait()

	// Report the first failure in combination order, not completion order.
	for _, err := range errs {
		if err != nil {
			log.WithError(err).Error("bundle build failed")
			return nil, err
		}
	}

	logging.LogPerformanceEntry(log, "report", "build_bundle", time.Since(start), logging.Fields{
		"combinations": len(jobs),
	})

	return &Bundle{Results: results}, nil
}

// Machines returns the machine names present in the bundle, in bundle order.
func (b *Bundle) Machines() []string {
	var names []string
	seen := make(map[string]bool)
	for _, r := range b.Results {
		if !seen[r.Machine.Name] {
			seen[r.Machine.Name] = true
			names = append(names, r.Machine.Name)
		}
	}
	return names
}

// ForMachine returns the results for one machine, in bundle order.
func (b *Bundle) ForMachine(name string) []model.CuttingResult {
	var out []model.CuttingResult
	for _, r := range b.Results {
		if r.Machine.Name == name {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the result for one combination, or nil if the bundle does
// not contain it.
func (b *Bundle) Find(machineName, toolID, materialName string) *model.CuttingResult {
	for i := range b.Results {
		r := &b.Results[i]
		if r.Machine.Name == machineName && r.Tool.ID == toolID && r.Material.Name == materialName {
			return r
		}
	}
	return nil
}
