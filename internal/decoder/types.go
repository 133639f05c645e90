// Package decoder turns a byte stream into a sequence of structured
// x86-32 instructions. Coverage targets driver-relevant code: the
// data movement, arithmetic, logic, control flow, port I/O and system
// opcodes a Windows kernel driver actually emits, not the full ISA.
package decoder

// Op is a semantic opcode tag drawn from a closed set, grouped by
// category.
type Op int

const (
	OpUnknown Op = iota

	// Data movement.
	OpMov
	OpMovzx
	OpMovsx
	OpLea
	OpXchg
	OpPush
	OpPop
	OpPushad
	OpPopad

	// Arithmetic.
	OpAdd
	OpOr
	OpAdc
	OpSbb
	OpAnd
	OpSub
	OpXor
	OpCmp
	OpTest
	OpNeg
	OpNot
	OpInc
	OpDec
	OpMul
	OpImul
	OpDiv
	OpIdiv

	// Shifts and rotates.
	OpShl
	OpShr
	OpSar
	OpRol
	OpRor

	// Control flow.
	OpJmp
	OpJcc
	OpCall
	OpRet
	OpLoop
	OpInt
	OpSetcc

	// Port I/O.
	OpIn
	OpOut

	// System.
	OpCli
	OpSti
	OpHlt
	OpNop
	OpLeave
	OpCld
	OpStd
	OpCdq
	OpCbw
	OpMfence

	// String operations, width resolved from the operand-size prefix.
	OpMovsb
	OpMovsw
	OpMovsd
	OpCmpsb
	OpCmpsw
	OpCmpsd
	OpStosb
	OpStosw
	OpStosd
	OpLodsb
	OpLodsw
	OpLodsd
	OpScasb
	OpScasw
	OpScasd
)

var opNames = map[Op]string{
	OpUnknown: "unknown",
	OpMov:     "mov", OpMovzx: "movzx", OpMovsx: "movsx", OpLea: "lea",
	OpXchg: "xchg", OpPush: "push", OpPop: "pop", OpPushad: "pushad", OpPopad: "popad",
	OpAdd: "add", OpOr: "or", OpAdc: "adc", OpSbb: "sbb", OpAnd: "and",
	OpSub: "sub", OpXor: "xor", OpCmp: "cmp", OpTest: "test",
	OpNeg: "neg", OpNot: "not", OpInc: "inc", OpDec: "dec",
	OpMul: "mul", OpImul: "imul", OpDiv: "div", OpIdiv: "idiv",
	OpShl: "shl", OpShr: "shr", OpSar: "sar", OpRol: "rol", OpRor: "ror",
	OpJmp: "jmp", OpJcc: "jcc", OpCall: "call", OpRet: "ret", OpLoop: "loop",
	OpInt: "int", OpSetcc: "setcc",
	OpIn: "in", OpOut: "out",
	OpCli: "cli", OpSti: "sti", OpHlt: "hlt", OpNop: "nop", OpLeave: "leave",
	OpCld: "cld", OpStd: "std", OpCdq: "cdq", OpCbw: "cbw", OpMfence: "mfence",
	OpMovsb: "movsb", OpMovsw: "movsw", OpMovsd: "movsd",
	OpCmpsb: "cmpsb", OpCmpsw: "cmpsw", OpCmpsd: "cmpsd",
	OpStosb: "stosb", OpStosw: "stosw", OpStosd: "stosd",
	OpLodsb: "lodsb", OpLodsw: "lodsw", OpLodsd: "lodsd",
	OpScasb: "scasb", OpScasw: "scasw", OpScasd: "scasd",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}

// OperandKind tags which field of Operand is meaningful. Go has no
// sum types, so Operand keeps one field per variant and clears the
// rest: an "all fields, tag discriminates" record.
type OperandKind int

const (
	OperandNone OperandKind = iota
	OperandRegister
	OperandMemory
	OperandImmediate
	OperandRelative
)

// Mem is a memory effective address: base, index, scale (1/2/4/8),
// and a signed displacement. Base/Index of -1 means absent.
type Mem struct {
	Base  int
	Index int
	Scale int
	Disp  int32
}

// Operand is one instruction operand. Kind selects which of Reg, Mem,
// or Imm is populated; Width is the operand's size in bytes (1, 2 or 4),
// left 0 on relative branch targets.
type Operand struct {
	Kind  OperandKind
	Reg   int
	Mem   Mem
	Imm   int64
	Width int
}

// Prefix bits recorded on an Instruction.
const (
	PrefixRep = 1 << iota
	PrefixRepne
	PrefixLock
	PrefixOperandSize
	PrefixAddressSize
)

// Cond is the condition-code tag carried by Jcc, SETcc and (in the
// IR) conditional branches. Values equal the x86 condition encoding
// (0 = O, 1 = NO, ... 15 = G) so Jcc's condition is second-opcode-byte
// minus 0x80 with no translation.
type Cond int

const (
	CondO Cond = iota
	CondNO
	CondB
	CondNB
	CondZ
	CondNZ
	CondBE
	CondA
	CondS
	CondNS
	CondP
	CondNP
	CondL
	CondGE
	CondLE
	CondG
	CondNone = -1
)

var condNames = [16]string{
	"o", "no", "b", "nb", "z", "nz", "be", "a",
	"s", "ns", "p", "np", "l", "ge", "le", "g",
}

func (c Cond) String() string {
	if c < 0 || int(c) >= len(condNames) {
		return ""
	}
	return condNames[c]
}

// Instruction is one decoded x86-32 instruction.
type Instruction struct {
	Address     uint32
	Length      int
	Op          Op
	NumOperands int
	Operands    [4]Operand
	Prefixes    uint8
	SegOverride int // register index of segment override, -1 if none
	Condition   Cond
}
