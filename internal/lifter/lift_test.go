package lifter

import (
	"testing"

	"github.com/xyproto/hwlift/internal/decoder"
)

func TestLiftPrologueEpilogueSingleBlock(t *testing.T) {
	code := []byte{0x55, 0x89, 0xE5, 0x5D, 0xC3}
	instructions, err := decoder.DecodeRange(code, 0x1000)
	if err != nil {
		t.Fatalf("DecodeRange: %v", err)
	}
	fn, err := Lift(instructions, 0x1000)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	if len(fn.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1 (no branches)", len(fn.Blocks))
	}
	b := fn.Blocks[0]
	if !b.IsEntry {
		t.Error("sole block should be marked entry")
	}
	if len(b.Instructions) != 4 {
		t.Fatalf("got %d IR instructions, want 4", len(b.Instructions))
	}
	if b.Instructions[3].Op != IRRet {
		t.Errorf("last instruction = %s, want ret", b.Instructions[3].Op)
	}
	if b.FallThrough != nil || b.Branch != nil {
		t.Error("ret block must have no successors")
	}
}

func TestLiftSplitsOnConditionalJump(t *testing.T) {
	// cmp eax, 0 ; jz (over the next mov, to the one after) ; mov ecx, 1 ; mov edx, 2
	code := []byte{
		0x83, 0xF8, 0x00, // cmp eax, 0            (0x2000, 3 bytes)
		0x74, 0x05, // jz +5                        (0x2003, 2 bytes) -> 0x200a
		0xB9, 0x01, 0x00, 0x00, 0x00, // mov ecx, 1 (0x2005, 5 bytes)
		0xBA, 0x02, 0x00, 0x00, 0x00, // mov edx, 2 (0x200a, 5 bytes)
	}
	instructions, err := decoder.DecodeRange(code, 0x2000)
	if err != nil {
		t.Fatalf("DecodeRange: %v", err)
	}
	fn, err := Lift(instructions, 0x2000)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	if len(fn.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(fn.Blocks))
	}
	entry := fn.Blocks[0]
	if entry.Branch == nil || entry.Branch.Start != 0x200a {
		t.Fatalf("entry block branch target = %+v, want 0x200a", entry.Branch)
	}
	if entry.FallThrough == nil || entry.FallThrough.Start != 0x2005 {
		t.Fatalf("entry block fall-through = %+v, want 0x2005", entry.FallThrough)
	}
}

func TestLiftPortSummary(t *testing.T) {
	code := []byte{
		0xE4, 0x60, // in al, 0x60
		0xE6, 0x61, // out 0x61, al
		0xEC, // in al, dx
	}
	instructions, err := decoder.DecodeRange(code, 0x3000)
	if err != nil {
		t.Fatalf("DecodeRange: %v", err)
	}
	fn, err := Lift(instructions, 0x3000)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	if !fn.HasPortIO {
		t.Fatal("HasPortIO should be true")
	}
	if len(fn.PortsRead) != 1 || fn.PortsRead[0] != 0x60 {
		t.Errorf("PortsRead = %v, want [0x60]", fn.PortsRead)
	}
	if len(fn.PortsWritten) != 1 || fn.PortsWritten[0] != 0x61 {
		t.Errorf("PortsWritten = %v, want [0x61]", fn.PortsWritten)
	}
	if !fn.DynamicPort {
		t.Error("DynamicPort should be true after `in al, dx`")
	}
}

func TestLiftUnconditionalJumpHasNoFallThrough(t *testing.T) {
	code := []byte{
		0xEB, 0x02, // jmp +2
		0x90, 0x90, // nop nop (skipped at runtime, still decoded linearly)
		0xC3, // ret
	}
	instructions, err := decoder.DecodeRange(code, 0x4000)
	if err != nil {
		t.Fatalf("DecodeRange: %v", err)
	}
	fn, err := Lift(instructions, 0x4000)
	if err != nil {
		t.Fatalf("Lift: %v", err)
	}
	entry := fn.Blocks[0]
	if entry.FallThrough != nil {
		t.Error("unconditional jump block must have no fall-through")
	}
	if entry.Branch == nil || entry.Branch.Start != 0x4004 {
		t.Fatalf("branch target = %+v, want 0x4004", entry.Branch)
	}
}
