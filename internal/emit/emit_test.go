package emit

import (
	"strings"
	"testing"
)

func minimalInput() ModuleInput {
	dep, _ := HardwareDependency([]Function{
		{Name: "FN-1000", Address: 0x1000, Ops: []PortOp{{Write: false, Offset: 0x60, Width: 1}}},
		{Name: "FN-1002", Address: 0x1002, Ops: []PortOp{{Write: true, Offset: 0x61, Width: 1}}},
	})
	return ModuleInput{
		Vocabulary:   "UART16550",
		Category:     "port-io",
		Source:       SourceExtracted,
		SourceBinary: "serial.sys",
		Confidence:   ConfidenceHigh,
		Dependencies: []Dependency{dep},
		BasePort:     0x60,
		PortOffsets:  []uint16{0x60, 0x61},
		Functions: []Function{
			{Name: "FN-1000", Address: 0x1000, Ops: []PortOp{{Write: false, Offset: 0x60, Width: 1}}},
			{Name: "FN-1002", Address: 0x1002, Ops: []PortOp{{Write: true, Offset: 0x61, Width: 1}}},
		},
	}
}

func TestEmitMinimalDriverContainsRequiredElements(t *testing.T) {
	out := Emit(minimalInput())

	want := []string{
		"\\ CATALOG: UART16550",
		"VOCABULARY UART16550",
		"HEX",
		"60 CONSTANT REG-60",
		"61 CONSTANT REG-61",
		"\\ REQUIRES: HARDWARE (C!-PORT C@-PORT)",
		"VARIABLE IO-BASE",
		"FORTH DEFINITIONS",
		"DECIMAL",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("Emit output missing %q\n--- output ---\n%s", w, out)
		}
	}
}

func TestEmitHeaderGrammar(t *testing.T) {
	out := Emit(minimalInput())
	lines := nonEmptyLines(out)
	if len(lines) < 10 {
		t.Fatalf("got %d non-empty lines, want at least 10", len(lines))
	}
	keys := []string{"CATALOG", "CATEGORY", "SOURCE", "SOURCE-BINARY", "VENDOR-ID", "DEVICE-ID", "PORTS", "MMIO", "CONFIDENCE", "REQUIRES"}
	for i, key := range keys {
		line := lines[i]
		if !strings.HasPrefix(line, "\\ "+key+":") {
			t.Errorf("line %d = %q, want prefix %q", i, line, "\\ "+key+":")
		}
	}
}

func TestEmitStructuralSingletons(t *testing.T) {
	out := Emit(minimalInput())
	for _, marker := range []string{"VOCABULARY UART16550", "UART16550 DEFINITIONS", "HEX", "FORTH DEFINITIONS", "DECIMAL"} {
		if n := strings.Count(out, marker); n != 1 {
			t.Errorf("marker %q appears %d times, want 1", marker, n)
		}
	}
}

func TestEmitNoPortsOmitsAccessorsAndConstants(t *testing.T) {
	input := ModuleInput{
		Vocabulary: "SCAFFOLDONLY",
		Category:   "unknown",
		Source:     SourceExtracted,
		Confidence: ConfidenceLow,
		Functions: []Function{
			{Name: "FN-2000", Address: 0x2000},
		},
	}
	out := Emit(input)
	if strings.Contains(out, "VARIABLE IO-BASE") {
		t.Error("no-port module must omit base accessors")
	}
	if strings.Contains(out, "CONSTANT REG-") {
		t.Error("no-port module must omit register constants")
	}
	if !strings.Contains(out, "\\ PORTS: none") {
		t.Error("no-port module must render PORTS: none")
	}
	if !strings.Contains(out, ": FN-2000") {
		t.Error("stub word missing for port-less function")
	}
}

func TestEmitMultiOpFunctionSequencesOperations(t *testing.T) {
	input := minimalInput()
	input.Functions = []Function{
		{
			Name:    "FN-3000",
			Address: 0x3000,
			Ops: []PortOp{
				{Write: false, Offset: 0x60, Width: 1},
				{Write: true, Offset: 0x61, Width: 1},
			},
		},
	}
	input.PortOffsets = []uint16{0x60, 0x61}
	out := Emit(input)
	idxRead := strings.Index(out, "60 PORT@")
	idxWrite := strings.Index(out, "61 PORT!")
	if idxRead == -1 || idxWrite == -1 {
		t.Fatalf("expected both port operations in output:\n%s", out)
	}
	if idxRead > idxWrite {
		t.Error("operations must be emitted in their original order")
	}
}

func TestPortRangeDescription(t *testing.T) {
	if got := PortRangeDescription(0x60, 1); got != "0x60" {
		t.Errorf("single port = %q, want 0x60", got)
	}
	if got := PortRangeDescription(0x60, 2); got != "0x60-0x61" {
		t.Errorf("two ports = %q, want 0x60-0x61", got)
	}
}

func TestDynamicPortFunctionRendersStub(t *testing.T) {
	input := minimalInput()
	input.Functions = []Function{{Name: "FN-4000", Address: 0x4000, Dynamic: true}}
	out := Emit(input)
	if !strings.Contains(out, "runtime via DX") {
		t.Errorf("dynamic-port function should note runtime resolution:\n%s", out)
	}
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
