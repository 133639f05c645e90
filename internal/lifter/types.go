// Package lifter converts a decoded instruction stream into a function
// of basic blocks carrying a platform-neutral intermediate
// representation.
package lifter

import "github.com/xyproto/hwlift/internal/decoder"

// IROp is the lifted instruction's opcode tag, a closed set distinct
// from (and coarser than) decoder.Op.
type IROp int

const (
	IRNop IROp = iota
	IRMov
	IRLoad
	IRStore
	IRPush
	IRPop
	IRLea
	IRMovzx
	IRMovsx
	IRAdd
	IRSub
	IRMul
	IRImul
	IRDiv
	IRIdiv
	IRNeg
	IRInc
	IRDec
	IRAnd
	IROr
	IRXor
	IRNot
	IRShl
	IRShr
	IRSar
	IRCmp
	IRTest
	IRJmp
	IRJcc
	IRCall
	IRRet
	IRPortIn
	IRPortOut
	IRCli
	IRSti
	IRHlt
)

var irOpNames = map[IROp]string{
	IRNop: "nop", IRMov: "mov", IRLoad: "load", IRStore: "store",
	IRPush: "push", IRPop: "pop", IRLea: "lea", IRMovzx: "movzx", IRMovsx: "movsx",
	IRAdd: "add", IRSub: "sub", IRMul: "mul", IRImul: "imul", IRDiv: "div", IRIdiv: "idiv",
	IRNeg: "neg", IRInc: "inc", IRDec: "dec",
	IRAnd: "and", IROr: "or", IRXor: "xor", IRNot: "not",
	IRShl: "shl", IRShr: "shr", IRSar: "sar",
	IRCmp: "cmp", IRTest: "test",
	IRJmp: "jmp", IRJcc: "jcc", IRCall: "call", IRRet: "ret",
	IRPortIn: "port-in", IRPortOut: "port-out",
	IRCli: "cli", IRSti: "sti", IRHlt: "hlt",
}

func (o IROp) String() string {
	if name, ok := irOpNames[o]; ok {
		return name
	}
	return "nop"
}

// IROperandKind mirrors the decoder's operand kinds. Register operands
// keep the machine register indices (EAX=0 .. EDI=7) unchanged.
type IROperandKind int

const (
	IROperandNone IROperandKind = iota
	IROperandReg
	IROperandMem
	IROperandImm
	IROperandRel
)

// IRMem is an abstract memory reference; fields carry the machine
// register numbers verbatim since the lifter does not rename them,
// only reclassifies the operand kind tag.
type IRMem struct {
	Base  int
	Index int
	Scale int
	Disp  int32
}

// IROperand is one lifted operand.
type IROperand struct {
	Kind  IROperandKind
	Reg   int
	Mem   IRMem
	Imm   int64
	Width int
}

// IRInstruction is one lifted instruction.
type IRInstruction struct {
	Op        IROp
	Dst       IROperand
	Src1      IROperand
	Src2      IROperand
	Width     int
	Address   uint32
	Condition decoder.Cond
}

// BasicBlock is an ordered instruction sequence plus successor
// links. FallThrough and Branch are nil when absent.
type BasicBlock struct {
	Start        uint32
	IsEntry      bool
	Instructions []IRInstruction
	FallThrough  *BasicBlock
	Branch       *BasicBlock
}

// Function is a lifted function: its blocks plus derived port
// summaries.
type Function struct {
	EntryAddress uint32
	Blocks       []*BasicBlock
	PortsRead    []uint16
	PortsWritten []uint16
	HasPortIO    bool
	DynamicPort  bool
}
