package lifter

import "github.com/xyproto/hwlift/internal/decoder"

// convertInstruction translates one decoded machine instruction into
// exactly one IR instruction per the lifting table.
func convertInstruction(inst decoder.Instruction) IRInstruction {
	ir := IRInstruction{Address: inst.Address, Condition: inst.Condition}

	ops := make([]IROperand, inst.NumOperands)
	for i := 0; i < inst.NumOperands; i++ {
		ops[i] = convertOperand(inst.Operands[i])
	}

	switch inst.Op {
	case decoder.OpMov:
		ir.Op = IRMov
		set2(&ir, ops)
		if len(ops) == 2 {
			if ops[0].Kind == IROperandMem {
				ir.Op = IRStore
			} else if ops[1].Kind == IROperandMem {
				ir.Op = IRLoad
			}
		}
	case decoder.OpXchg:
		ir.Op = IRMov // approximated: the swap's second direction is lost
		set2(&ir, ops)
	case decoder.OpLea:
		ir.Op = IRLea
		set2(&ir, ops)
	case decoder.OpMovzx:
		ir.Op = IRMovzx
		set2(&ir, ops)
	case decoder.OpMovsx:
		ir.Op = IRMovsx
		set2(&ir, ops)
	case decoder.OpPush:
		ir.Op = IRPush
		if len(ops) > 0 {
			ir.Src1 = ops[0]
		}
	case decoder.OpPop:
		ir.Op = IRPop
		if len(ops) > 0 {
			ir.Dst = ops[0]
		}
	case decoder.OpPushad, decoder.OpPopad:
		ir.Op = IRNop

	case decoder.OpAdd:
		ir.Op = IRAdd
		set2(&ir, ops)
	case decoder.OpOr:
		ir.Op = IROr
		set2(&ir, ops)
	case decoder.OpAdc:
		ir.Op = IRAdd
		set2(&ir, ops)
	case decoder.OpSbb:
		ir.Op = IRSub
		set2(&ir, ops)
	case decoder.OpAnd:
		ir.Op = IRAnd
		set2(&ir, ops)
	case decoder.OpSub:
		ir.Op = IRSub
		set2(&ir, ops)
	case decoder.OpXor:
		ir.Op = IRXor
		set2(&ir, ops)
	case decoder.OpCmp:
		ir.Op = IRCmp
		setCompare(&ir, ops)
	case decoder.OpTest:
		ir.Op = IRTest
		setCompare(&ir, ops)
	case decoder.OpNeg:
		ir.Op = IRNeg
		set1(&ir, ops)
	case decoder.OpNot:
		ir.Op = IRNot
		set1(&ir, ops)
	case decoder.OpInc:
		ir.Op = IRInc
		set1(&ir, ops)
	case decoder.OpDec:
		ir.Op = IRDec
		set1(&ir, ops)
	case decoder.OpMul:
		ir.Op = IRMul
		set1(&ir, ops)
	case decoder.OpImul:
		ir.Op = IRImul
		switch len(ops) {
		case 1:
			set1(&ir, ops)
		case 2:
			set2(&ir, ops)
		case 3:
			ir.Dst, ir.Src1, ir.Src2 = ops[0], ops[1], ops[2]
		}
	case decoder.OpDiv:
		ir.Op = IRDiv
		set1(&ir, ops)
	case decoder.OpIdiv:
		ir.Op = IRIdiv
		set1(&ir, ops)

	case decoder.OpShl:
		ir.Op = IRShl
		set2(&ir, ops)
	case decoder.OpShr:
		ir.Op = IRShr
		set2(&ir, ops)
	case decoder.OpSar:
		ir.Op = IRSar
		set2(&ir, ops)
	case decoder.OpRol, decoder.OpRor:
		ir.Op = IRNop // no rotate tag in the IR's closed set

	case decoder.OpJmp:
		ir.Op = IRJmp
		if len(ops) > 0 {
			ir.Src1 = ops[0]
		}
	case decoder.OpJcc:
		ir.Op = IRJcc
		if len(ops) > 0 {
			ir.Src1 = ops[0]
		}
	case decoder.OpLoop:
		ir.Op = IRJcc // behaves as a conditional branch for linking purposes
		if len(ops) > 0 {
			ir.Src1 = ops[0]
		}
	case decoder.OpCall:
		ir.Op = IRCall
		if len(ops) > 0 {
			ir.Src1 = ops[0]
		}
	case decoder.OpRet:
		ir.Op = IRRet
		if len(ops) > 0 {
			ir.Src1 = ops[0]
		}
	case decoder.OpSetcc:
		ir.Op = IRNop // byte-set is scaffolding-adjacent, outside the IR's closed set

	case decoder.OpIn:
		ir.Op = IRPortIn
		if len(ops) == 2 {
			ir.Dst, ir.Src1 = ops[0], ops[1]
		}
	case decoder.OpOut:
		ir.Op = IRPortOut
		if len(ops) == 2 {
			ir.Src1, ir.Src2 = ops[0], ops[1]
		}

	case decoder.OpCli:
		ir.Op = IRCli
	case decoder.OpSti:
		ir.Op = IRSti
	case decoder.OpHlt:
		ir.Op = IRHlt
	case decoder.OpNop, decoder.OpLeave, decoder.OpCld, decoder.OpStd, decoder.OpCdq, decoder.OpCbw, decoder.OpMfence:
		ir.Op = IRNop

	case decoder.OpMovsb, decoder.OpMovsw, decoder.OpMovsd,
		decoder.OpCmpsb, decoder.OpCmpsw, decoder.OpCmpsd,
		decoder.OpStosb, decoder.OpStosw, decoder.OpStosd,
		decoder.OpLodsb, decoder.OpLodsw, decoder.OpLodsd,
		decoder.OpScasb, decoder.OpScasw, decoder.OpScasd:
		ir.Op = IRNop // string ops carry no driver-relevant hardware evidence

	default:
		ir.Op = IRNop
	}

	ir.Width = widthOf(ir)
	return ir
}

func set1(ir *IRInstruction, ops []IROperand) {
	if len(ops) > 0 {
		ir.Dst = ops[0]
	}
}

func set2(ir *IRInstruction, ops []IROperand) {
	if len(ops) > 0 {
		ir.Dst = ops[0]
	}
	if len(ops) > 1 {
		ir.Src1 = ops[1]
	}
}

func setCompare(ir *IRInstruction, ops []IROperand) {
	if len(ops) > 0 {
		ir.Src1 = ops[0]
	}
	if len(ops) > 1 {
		ir.Src2 = ops[1]
	}
}

func widthOf(ir IRInstruction) int {
	for _, op := range []IROperand{ir.Dst, ir.Src1, ir.Src2} {
		if op.Kind != IROperandNone && op.Width > 0 {
			return op.Width
		}
	}
	return 4
}

func convertOperand(op decoder.Operand) IROperand {
	out := IROperand{Width: op.Width}
	switch op.Kind {
	case decoder.OperandNone:
		out.Kind = IROperandNone
	case decoder.OperandRegister:
		out.Kind = IROperandReg
		out.Reg = op.Reg
	case decoder.OperandMemory:
		out.Kind = IROperandMem
		out.Mem = IRMem{Base: op.Mem.Base, Index: op.Mem.Index, Scale: op.Mem.Scale, Disp: op.Mem.Disp}
	case decoder.OperandImmediate:
		out.Kind = IROperandImm
		out.Imm = op.Imm
	case decoder.OperandRelative:
		out.Kind = IROperandRel
		out.Imm = op.Imm
	}
	return out
}
