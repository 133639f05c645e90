package classify

import (
	"fmt"
	"sort"

	"github.com/xyproto/hwlift/internal/engine"
	"github.com/xyproto/hwlift/internal/lifter"
	"github.com/xyproto/hwlift/internal/peimage"
)

// ClassifyImports looks up every import in the frozen catalogue,
// tagging unrecognized names unknown with no target word.
func ClassifyImports(imports []peimage.Import) []ClassifiedImport {
	out := make([]ClassifiedImport, len(imports))
	for i, imp := range imports {
		cat, word, _ := Lookup(imp.Name)
		out[i] = ClassifiedImport{Import: imp, Category: cat, TargetWord: word}
	}
	return out
}

// AnalyzeFunctions classifies each lifted function's evidence, merging
// direct port I/O with indirect calls through the IAT resolved against
// classified imports. exports supplies display names for functions
// whose entry address matches an export RVA; pass nil when the image
// carries no export table. imageBase rebases the absolute addresses
// compiled into `call [iat_slot]` thunks back into RVA space; pass 0
// when the calling code already works in RVAs.
func AnalyzeFunctions(functions []*lifter.Function, imports []ClassifiedImport, exports []peimage.Export, imageBase uint64) ClassificationResult {
	byIATRVA := make(map[uint32]ClassifiedImport, len(imports))
	for _, imp := range imports {
		byIATRVA[imp.IATRVA] = imp
	}
	byRVA := make(map[uint32]string, len(exports))
	for _, exp := range exports {
		byRVA[exp.RVA] = exp.Name
	}

	result := ClassificationResult{Imports: imports}
	for _, fn := range functions {
		name, ok := byRVA[fn.EntryAddress]
		if !ok {
			name = fmt.Sprintf("fn_%08x", fn.EntryAddress)
		}
		cf := ClassifiedFunction{
			EntryAddress: fn.EntryAddress,
			Name:         name,
			HasPortIO:    fn.HasPortIO,
			Ports:        mergePorts(fn.PortsRead, fn.PortsWritten),
		}

		for _, b := range fn.Blocks {
			for _, inst := range b.Instructions {
				if inst.Op != lifter.IRCall {
					continue
				}
				imp, ok := resolveIndirectCall(inst, byIATRVA, imageBase)
				if !ok {
					continue
				}
				switch {
				case IsHardware(imp.Category):
					cf.HardwareCallCount++
					switch imp.Category {
					case MMIO:
						cf.HasMMIO = true
					case Timing:
						cf.HasTiming = true
					case PCIConfig:
						cf.HasPCI = true
					}
				case IsScaffolding(imp.Category):
					cf.ScaffoldingCallCount++
					cf.HasScaffoldingEvidence = true
				}
			}
		}

		if cf.HasPortIO {
			cf.Category = PortIO
		} else {
			cf.Category = Unknown
		}
		cf.HardwareRelevant = cf.HasPortIO || cf.HardwareCallCount > 0

		result.Functions = append(result.Functions, cf)
		if cf.HardwareRelevant {
			result.HardwareFunctionCount++
		} else {
			result.FilteredCount++
		}
	}
	return result
}

// resolveIndirectCall matches a CALL through an absolute memory
// operand (no base, no index register — the shape of a compiled
// `call dword ptr [import_iat_slot]` thunk) against a classified
// import's IAT RVA. The compiled displacement is a virtual address;
// both the raw value and the value rebased by imageBase are tried so
// RVA-space callers and VA-space binaries both match.
func resolveIndirectCall(inst lifter.IRInstruction, byIATRVA map[uint32]ClassifiedImport, imageBase uint64) (ClassifiedImport, bool) {
	if inst.Src1.Kind != lifter.IROperandMem {
		return ClassifiedImport{}, false
	}
	mem := inst.Src1.Mem
	if mem.Base >= 0 || mem.Index >= 0 {
		return ClassifiedImport{}, false
	}
	if imp, ok := byIATRVA[uint32(mem.Disp)]; ok {
		return imp, true
	}
	if imageBase != 0 {
		if imp, ok := byIATRVA[uint32(uint64(uint32(mem.Disp))-imageBase)]; ok {
			return imp, true
		}
	}
	return ClassifiedImport{}, false
}

func mergePorts(read, written []uint16) []uint16 {
	set := make(map[uint16]struct{}, len(read)+len(written))
	for _, p := range read {
		set[p] = struct{}{}
	}
	for _, p := range written {
		set[p] = struct{}{}
	}
	out := make([]uint16, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Suggest returns up to 3 catalogue names close in edit distance to an
// unrecognized import, for near-miss diagnostics.
func Suggest(name string) []string {
	return engine.FindSimilar(name, Names(), 3)
}
