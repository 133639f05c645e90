package classify

import (
	"testing"

	"github.com/xyproto/hwlift/internal/lifter"
	"github.com/xyproto/hwlift/internal/peimage"
)

func TestClassifyImportsRecognizesCatalogueEntries(t *testing.T) {
	imports := []peimage.Import{
		{DLL: "HAL.dll", Name: "READ_PORT_UCHAR", IATRVA: 0x2000},
		{DLL: "ntoskrnl.exe", Name: "IoCompleteRequest", IATRVA: 0x2004},
		{DLL: "ntoskrnl.exe", Name: "KeStallExecutionProcessor", IATRVA: 0x2008},
		{DLL: "HAL.dll", Name: "HalGetBusData", IATRVA: 0x200c},
		{DLL: "ntoskrnl.exe", Name: "SomeTotallyUnknownApi", IATRVA: 0x2010},
	}
	got := ClassifyImports(imports)
	want := []struct {
		cat  Category
		word string
	}{
		{PortIO, "C@-PORT"},
		{IRP, ""},
		{Timing, "US-DELAY"},
		{PCIConfig, "PCI-READ"},
		{Unknown, ""},
	}
	for i, w := range want {
		if got[i].Category != w.cat || got[i].TargetWord != w.word {
			t.Errorf("%s = %s/%q, want %s/%q",
				imports[i].Name, got[i].Category, got[i].TargetWord, w.cat, w.word)
		}
	}
	if got[0].IATRVA != 0x2000 {
		t.Error("IAT RVA must be retained on classified imports")
	}
}

func TestAnalyzeFunctionsDirectPortIO(t *testing.T) {
	fn := &lifter.Function{
		EntryAddress: 0x1000,
		HasPortIO:    true,
		PortsRead:    []uint16{0x60},
	}
	result := AnalyzeFunctions([]*lifter.Function{fn}, nil, nil, 0)
	if len(result.Functions) != 1 {
		t.Fatalf("got %d classified functions, want 1", len(result.Functions))
	}
	cf := result.Functions[0]
	if cf.Category != PortIO || !cf.HardwareRelevant {
		t.Errorf("cf = %+v, want port-io/hardware-relevant", cf)
	}
	if result.HardwareFunctionCount != 1 || result.FilteredCount != 0 {
		t.Errorf("counts = hw:%d filtered:%d, want 1/0", result.HardwareFunctionCount, result.FilteredCount)
	}
}

func TestAnalyzeFunctionsIndirectCallThroughIAT(t *testing.T) {
	imports := ClassifyImports([]peimage.Import{
		{DLL: "HAL.dll", Name: "WRITE_REGISTER_ULONG", IATRVA: 0x3000},
	})
	block := &lifter.BasicBlock{
		Instructions: []lifter.IRInstruction{
			{Op: lifter.IRCall, Src1: lifter.IROperand{
				Kind: lifter.IROperandMem,
				Mem:  lifter.IRMem{Base: -1, Index: -1, Disp: 0x3000},
			}},
		},
	}
	fn := &lifter.Function{EntryAddress: 0x5000, Blocks: []*lifter.BasicBlock{block}}

	result := AnalyzeFunctions([]*lifter.Function{fn}, imports, nil, 0)
	cf := result.Functions[0]
	if !cf.HasMMIO || cf.HardwareCallCount != 1 {
		t.Errorf("cf = %+v, want HasMMIO and one hardware call", cf)
	}
	if !cf.HardwareRelevant {
		t.Error("function reached only through an indirect hardware call must be hardware-relevant")
	}
}

func TestAnalyzeFunctionsRebasesIndirectCallByImageBase(t *testing.T) {
	imports := ClassifyImports([]peimage.Import{
		{DLL: "HAL.dll", Name: "READ_PORT_UCHAR", IATRVA: 0x3000},
	})
	// A compiled thunk calls through the absolute VA of the IAT slot.
	block := &lifter.BasicBlock{
		Instructions: []lifter.IRInstruction{
			{Op: lifter.IRCall, Src1: lifter.IROperand{
				Kind: lifter.IROperandMem,
				Mem:  lifter.IRMem{Base: -1, Index: -1, Disp: 0x10000 + 0x3000},
			}},
		},
	}
	fn := &lifter.Function{EntryAddress: 0x5000, Blocks: []*lifter.BasicBlock{block}}

	result := AnalyzeFunctions([]*lifter.Function{fn}, imports, nil, 0x10000)
	cf := result.Functions[0]
	if cf.HardwareCallCount != 1 || !cf.HardwareRelevant {
		t.Errorf("cf = %+v, want the VA-addressed call matched after rebasing", cf)
	}
}

func TestAnalyzeFunctionsScaffoldingOnlyIsFiltered(t *testing.T) {
	imports := ClassifyImports([]peimage.Import{
		{DLL: "ntoskrnl.exe", Name: "KeAcquireSpinLock", IATRVA: 0x4000},
	})
	block := &lifter.BasicBlock{
		Instructions: []lifter.IRInstruction{
			{Op: lifter.IRCall, Src1: lifter.IROperand{
				Kind: lifter.IROperandMem,
				Mem:  lifter.IRMem{Base: -1, Index: -1, Disp: 0x4000},
			}},
		},
	}
	fn := &lifter.Function{EntryAddress: 0x6000, Blocks: []*lifter.BasicBlock{block}}

	result := AnalyzeFunctions([]*lifter.Function{fn}, imports, nil, 0)
	cf := result.Functions[0]
	if cf.HardwareRelevant {
		t.Error("scaffolding-only function should not be hardware-relevant")
	}
	if result.FilteredCount != 1 {
		t.Errorf("FilteredCount = %d, want 1", result.FilteredCount)
	}
}

func TestAnalyzeFunctionsUsesExportNameWhenPresent(t *testing.T) {
	fn := &lifter.Function{EntryAddress: 0x1100}
	exports := []peimage.Export{{Name: "DriverEntry", RVA: 0x1100}}
	result := AnalyzeFunctions([]*lifter.Function{fn}, nil, exports, 0)
	if result.Functions[0].Name != "DriverEntry" {
		t.Errorf("Name = %q, want export name DriverEntry", result.Functions[0].Name)
	}
}

func TestAnalyzeFunctionsSynthesizesNameWithoutExport(t *testing.T) {
	fn := &lifter.Function{EntryAddress: 0x1200}
	result := AnalyzeFunctions([]*lifter.Function{fn}, nil, nil, 0)
	if result.Functions[0].Name != "fn_00001200" {
		t.Errorf("Name = %q, want fn_00001200", result.Functions[0].Name)
	}
}

func TestSuggestFindsNearMiss(t *testing.T) {
	got := Suggest("READ_PORT_UCHR")
	found := false
	for _, s := range got {
		if s == "READ_PORT_UCHAR" {
			found = true
		}
	}
	if !found {
		t.Errorf("Suggest(%q) = %v, want it to include READ_PORT_UCHAR", "READ_PORT_UCHR", got)
	}
}
