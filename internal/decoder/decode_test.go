package decoder

import "testing"

func TestDecodeOnePrologueEpilogue(t *testing.T) {
	// push ebp; mov ebp, esp; pop ebp; ret
	code := []byte{0x55, 0x89, 0xE5, 0x5D, 0xC3}
	insts, err := DecodeRange(code, 0x1000)
	if err != nil {
		t.Fatalf("DecodeRange: %v", err)
	}
	want := []struct {
		op  Op
		len int
	}{
		{OpPush, 1},
		{OpMov, 2},
		{OpPop, 1},
		{OpRet, 1},
	}
	if len(insts) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(insts), len(want))
	}
	for i, w := range want {
		if insts[i].Op != w.op {
			t.Errorf("instruction %d: op = %s, want %s", i, insts[i].Op, w.op)
		}
		if insts[i].Length != w.len {
			t.Errorf("instruction %d: length = %d, want %d", i, insts[i].Length, w.len)
		}
	}
}

func TestDecodeOneCallTargetArithmetic(t *testing.T) {
	code := []byte{0xE8, 0x10, 0x00, 0x00, 0x00}
	inst, n, err := DecodeOne(code, 0x1000)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	if n != 5 {
		t.Fatalf("consumed %d bytes, want 5", n)
	}
	if inst.Op != OpCall {
		t.Fatalf("op = %s, want call", inst.Op)
	}
	if inst.NumOperands != 1 || inst.Operands[0].Kind != OperandRelative {
		t.Fatalf("operand = %+v, want one relative operand", inst.Operands[0])
	}
	if got := uint32(inst.Operands[0].Imm); got != 0x1015 {
		t.Errorf("target = 0x%x, want 0x1015", got)
	}
}

func TestDecodeOneEndOfInput(t *testing.T) {
	_, _, err := DecodeOne(nil, 0x1000)
	if err != ErrEndOfInput {
		t.Fatalf("err = %v, want ErrEndOfInput", err)
	}
}

func TestDecodeOneTruncatedModRM(t *testing.T) {
	// mov ev,gv opcode with no ModR/M byte following
	_, _, err := DecodeOne([]byte{0x89}, 0x1000)
	if err == nil {
		t.Fatal("expected error for truncated instruction")
	}
}

func TestDecodeOneJccShort(t *testing.T) {
	code := []byte{0x74, 0xFE} // jz $-2
	inst, _, err := DecodeOne(code, 0x2000)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	if inst.Op != OpJcc || inst.Condition != CondZ {
		t.Fatalf("op/cond = %s/%s, want jcc/z", inst.Op, inst.Condition)
	}
	if got := uint32(inst.Operands[0].Imm); got != 0x2000 {
		t.Errorf("target = 0x%x, want 0x2000", got)
	}
}

func TestDecodeOnePortIO(t *testing.T) {
	code := []byte{0xEC} // in al, dx
	inst, n, err := DecodeOne(code, 0x3000)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	if n != 1 || inst.Op != OpIn {
		t.Fatalf("op/len = %s/%d, want in/1", inst.Op, n)
	}
	if inst.Operands[1].Kind != OperandRegister || inst.Operands[1].Reg != RegDX {
		t.Errorf("second operand = %+v, want dx register", inst.Operands[1])
	}
}

func TestDecodeOneGroup5IndirectCall(t *testing.T) {
	code := []byte{0xFF, 0xD0} // call eax
	inst, _, err := DecodeOne(code, 0x4000)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	if inst.Op != OpCall {
		t.Fatalf("op = %s, want call", inst.Op)
	}
	if inst.Operands[0].Kind != OperandRegister {
		t.Errorf("operand kind = %v, want register", inst.Operands[0].Kind)
	}
}

func TestDecodeOneUnknownOpcodeIsNotAnError(t *testing.T) {
	// 0x0F 0x05 (SYSCALL) is outside this decoder's covered subset.
	inst, n, err := DecodeOne([]byte{0x0F, 0x05}, 0x5000)
	if err != nil {
		t.Fatalf("DecodeOne: %v", err)
	}
	if inst.Op != OpUnknown {
		t.Fatalf("op = %s, want unknown", inst.Op)
	}
	if n != 2 {
		t.Fatalf("consumed %d bytes, want 2", n)
	}
}
