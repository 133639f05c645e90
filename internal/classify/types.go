// Package classify tags imports and lifted functions against a fixed
// API recognition catalogue, separating hardware-relevant code from
// host-OS scaffolding.
package classify

import "github.com/xyproto/hwlift/internal/peimage"

// Category is a classification tag drawn from a closed set of fourteen
// values grouped into a hardware band (six) and a scaffolding band (eight), plus
// Unknown for unrecognized imports.
type Category int

const (
	Unknown Category = iota

	// Hardware band.
	PortIO
	MMIO
	DMA
	Interrupt
	Timing
	PCIConfig

	// Scaffolding band.
	IRP
	PNP
	Power
	MemoryManager
	Synchronization
	Registry
	String
	WMI
)

var categoryNames = map[Category]string{
	Unknown: "unknown",
	PortIO: "port-io", MMIO: "mmio", DMA: "dma", Interrupt: "interrupt",
	Timing: "timing", PCIConfig: "pci-config",
	IRP: "irp", PNP: "pnp", Power: "power", MemoryManager: "memory-manager",
	Synchronization: "synchronization", Registry: "registry", String: "string", WMI: "wmi",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// IsHardware reports whether cat belongs to the hardware band.
func IsHardware(cat Category) bool {
	switch cat {
	case PortIO, MMIO, DMA, Interrupt, Timing, PCIConfig:
		return true
	}
	return false
}

// IsScaffolding reports whether cat belongs to the scaffolding band.
func IsScaffolding(cat Category) bool {
	switch cat {
	case IRP, PNP, Power, MemoryManager, Synchronization, Registry, String, WMI:
		return true
	}
	return false
}

// ClassifiedImport is a PE import decorated with its catalogue
// category and, for hardware entries, the target-runtime word that
// implements it.
type ClassifiedImport struct {
	peimage.Import
	Category   Category
	TargetWord string
}

// ClassifiedFunction is a lifted function decorated with classification
// evidence.
type ClassifiedFunction struct {
	EntryAddress           uint32
	Name                   string
	Category               Category
	HasPortIO              bool
	HasMMIO                bool
	HasTiming              bool
	HasPCI                 bool
	HasScaffoldingEvidence bool
	HardwareCallCount      int
	ScaffoldingCallCount   int
	HardwareRelevant       bool
	Ports                  []uint16
}

// ClassificationResult is the output of AnalyzeFunctions.
type ClassificationResult struct {
	Imports               []ClassifiedImport
	Functions             []ClassifiedFunction
	HardwareFunctionCount int
	FilteredCount         int
}
