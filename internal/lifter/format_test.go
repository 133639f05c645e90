package lifter

import (
	"strings"
	"testing"

	"github.com/xyproto/hwlift/internal/decoder"
)

func TestFormatFunctionShowsBlocksAndLinks(t *testing.T) {
	code := []byte{
		0x83, 0xF8, 0x00, // cmp eax, 0
		0x74, 0x05, // jz +5
		0xB9, 0x01, 0x00, 0x00, 0x00, // mov ecx, 1
		0xBA, 0x02, 0x00, 0x00, 0x00, // mov edx, 2
	}
	instructions, err := decoder.DecodeRange(code, 0x2000)
	if err != nil {
		t.Fatalf("DecodeRange: %v", err)
	}
	fn, err := Lift(instructions, 0x2000)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}

	out := FormatFunction(fn)
	if !strings.Contains(out, "block_0: 0x00002000") {
		t.Errorf("missing block_0 label:\n%s", out)
	}
	if !strings.Contains(out, "-> fall_through: block_1") {
		t.Errorf("missing fall-through link:\n%s", out)
	}
	if !strings.Contains(out, "-> branch: block_2") {
		t.Errorf("missing branch link:\n%s", out)
	}
}

func TestFormatFunctionPortSummary(t *testing.T) {
	code := []byte{0xE4, 0x60, 0xE6, 0x61, 0xC3}
	instructions, err := decoder.DecodeRange(code, 0x3000)
	if err != nil {
		t.Fatalf("DecodeRange: %v", err)
	}
	fn, err := Lift(instructions, 0x3000)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	out := FormatFunction(fn)
	if !strings.Contains(out, "ports-read: 0x60") {
		t.Errorf("missing ports-read summary:\n%s", out)
	}
	if !strings.Contains(out, "ports-written: 0x61") {
		t.Errorf("missing ports-written summary:\n%s", out)
	}
}
