package decoder

// aluBases maps a one-byte ALU opcode's base (opcode & 0xF8) to the
// semantic tag, covering the add/or/adc/sbb/and/sub/xor/cmp family's
// six encoding forms.
var aluBases = map[byte]Op{
	0x00: OpAdd, 0x08: OpOr, 0x10: OpAdc, 0x18: OpSbb,
	0x20: OpAnd, 0x28: OpSub, 0x30: OpXor, 0x38: OpCmp,
}

// groupAluOps is the reg-field-selected ALU op for the 0x80-0x83
// immediate-group opcodes, in ModR/M reg field order.
var groupAluOps = [8]Op{OpAdd, OpOr, OpAdc, OpSbb, OpAnd, OpSub, OpXor, OpCmp}

// decodeALUFamily handles the 8 ALU mnemonics' 6 shared encodings
// (Eb,Gb / Ev,Gv / Gb,Eb / Gv,Ev / AL,Ib / eAX,Iz) plus the 0x80-0x83
// immediate-group forms. Returns handled=false if opcode isn't part of
// this family, letting the caller fall through to its own switch.
func decodeALUFamily(data []byte, pos *int, width int, opcode byte, inst *Instruction) (bool, error) {
	if opcode >= 0x80 && opcode <= 0x83 {
		opWidth := width
		if opcode == 0x80 || opcode == 0x82 {
			opWidth = 1
		}
		immWidth := 1
		if opcode == 0x81 {
			immWidth = width
		}
		rm, regField, n, err := decodeModRM(data, *pos, opWidth)
		if err != nil {
			return true, err
		}
		*pos += n
		var immVal int64
		if immWidth == 1 {
			v, err := i8At(data, *pos)
			if err != nil {
				return true, err
			}
			*pos++
			immVal = int64(v)
		} else {
			v, err := readImmWidth(data, pos, width)
			if err != nil {
				return true, err
			}
			immVal = v
		}
		inst.Op = groupAluOps[regField]
		setOperands(inst, rm, immOperand(immVal, opWidth))
		return true, nil
	}

	base := opcode &^ 0x07
	op, ok := aluBases[base]
	if !ok {
		return false, nil
	}
	variant := opcode & 0x07

	switch variant {
	case 0: // Eb, Gb
		return true, decodeRMGroupInstr(data, pos, 1, op, inst, true)
	case 1: // Ev, Gv
		return true, decodeRMGroupInstr(data, pos, width, op, inst, true)
	case 2: // Gb, Eb
		return true, decodeRMGroupInstr(data, pos, 1, op, inst, false)
	case 3: // Gv, Ev
		return true, decodeRMGroupInstr(data, pos, width, op, inst, false)
	case 4: // AL, Ib
		imm, err := i8At(data, *pos)
		if err != nil {
			return true, err
		}
		*pos++
		inst.Op = op
		setOperands(inst, regOperand(0, 1), immOperand(int64(imm), 1))
		return true, nil
	case 5: // eAX, Iz
		imm, err := readImmWidth(data, pos, width)
		if err != nil {
			return true, err
		}
		inst.Op = op
		setOperands(inst, regOperand(0, width), immOperand(imm, width))
		return true, nil
	}
	return false, nil
}

// decodeExtendingMov decodes MOVZX/MOVSX, whose source operand width
// (srcWidth) is narrower than the destination register's (destWidth).
func decodeExtendingMov(data []byte, pos *int, destWidth, srcWidth int, op Op, inst *Instruction) error {
	rm, regField, n, err := decodeModRM(data, *pos, srcWidth)
	if err != nil {
		return err
	}
	*pos += n
	inst.Op = op
	setOperands(inst, otherOperand(regField, destWidth), rm)
	return nil
}

// decodeUnaryModRM decodes a single r/m operand whose op is chosen by
// the ModR/M reg field, for groups where the reg field distinguishes
// unrelated mnemonics (INC/DEC/POP groups).
func decodeUnaryModRM(data []byte, pos *int, width int, inst *Instruction, pick func(reg int) (Op, bool), _ bool) error {
	rm, regField, n, err := decodeModRM(data, *pos, width)
	if err != nil {
		return err
	}
	*pos += n
	op, ok := pick(regField)
	if !ok {
		inst.Op = OpUnknown
		return nil
	}
	inst.Op = op
	setOperands(inst, rm)
	return nil
}

// decodeGroupWithImm decodes an r/m operand followed by an immediate
// of immWidth bytes, used by the MOV Eb,Ib / MOV Ev,Iz group opcodes.
func decodeGroupWithImm(data []byte, pos *int, width int, inst *Instruction, pick func(reg int) (Op, bool), immWidth int) error {
	rm, regField, n, err := decodeModRM(data, *pos, width)
	if err != nil {
		return err
	}
	*pos += n
	op, ok := pick(regField)
	if !ok {
		inst.Op = OpUnknown
		return nil
	}
	var immVal int64
	if immWidth == 1 {
		v, err := i8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		immVal = int64(v)
	} else {
		v, err := readImmWidth(data, pos, width)
		if err != nil {
			return err
		}
		immVal = v
	}
	inst.Op = op
	setOperands(inst, rm, immOperand(immVal, immWidth))
	return nil
}

// decodeImul3 decodes the three-operand IMUL Gv, Ev, Ib/Iz forms.
func decodeImul3(data []byte, pos *int, width int, inst *Instruction, immWidth int) error {
	rm, regField, n, err := decodeModRM(data, *pos, width)
	if err != nil {
		return err
	}
	*pos += n
	var immVal int64
	if immWidth == 1 {
		v, err := i8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		immVal = int64(v)
	} else {
		v, err := readImmWidth(data, pos, width)
		if err != nil {
			return err
		}
		immVal = v
	}
	inst.Op = OpImul
	setOperands(inst, otherOperand(regField, width), rm, immOperand(immVal, immWidth))
	return nil
}

type shiftSrcKind int

const (
	shiftSrcOne shiftSrcKind = iota
	shiftSrcCL
	shiftSrcImm8
)

// shiftGroupOps is the reg-field-selected rotate/shift op. RCL and RCR
// (reg fields 2 and 3) have no semantic tag and decode as unknown,
// matching the decoder's driver-relevant coverage scope.
var shiftGroupOps = [8]struct {
	op Op
	ok bool
}{
	{OpRol, true}, {OpRor, true}, {OpUnknown, false}, {OpUnknown, false},
	{OpShl, true}, {OpShr, true}, {OpShl, true}, {OpSar, true},
}

func decodeShiftGroup(data []byte, pos *int, width int, inst *Instruction, src shiftSrcKind) error {
	rm, regField, n, err := decodeModRM(data, *pos, width)
	if err != nil {
		return err
	}
	*pos += n
	entry := shiftGroupOps[regField]
	if !entry.ok {
		inst.Op = OpUnknown
		return nil
	}
	inst.Op = entry.op
	switch src {
	case shiftSrcOne:
		setOperands(inst, rm, immOperand(1, 1))
	case shiftSrcCL:
		setOperands(inst, rm, regOperand(1, 1))
	case shiftSrcImm8:
		imm, err := u8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		setOperands(inst, rm, immOperand(int64(imm), 1))
	}
	return nil
}

// decodeUnaryGroup decodes the 0xF6/0xF7 group: TEST (with trailing
// immediate), NOT, NEG, MUL, IMUL, DIV, IDIV, selected by reg field.
func decodeUnaryGroup(data []byte, pos *int, width int, inst *Instruction) error {
	rm, regField, n, err := decodeModRM(data, *pos, width)
	if err != nil {
		return err
	}
	*pos += n
	switch regField {
	case 0, 1: // TEST
		var immVal int64
		if width == 1 {
			v, err := i8At(data, *pos)
			if err != nil {
				return err
			}
			*pos++
			immVal = int64(v)
		} else {
			v, err := readImmWidth(data, pos, width)
			if err != nil {
				return err
			}
			immVal = v
		}
		inst.Op = OpTest
		setOperands(inst, rm, immOperand(immVal, width))
	case 2:
		inst.Op = OpNot
		setOperands(inst, rm)
	case 3:
		inst.Op = OpNeg
		setOperands(inst, rm)
	case 4:
		inst.Op = OpMul
		setOperands(inst, rm)
	case 5:
		inst.Op = OpImul
		setOperands(inst, rm)
	case 6:
		inst.Op = OpDiv
		setOperands(inst, rm)
	case 7:
		inst.Op = OpIdiv
		setOperands(inst, rm)
	}
	return nil
}

// decodeGroup5 decodes the 0xFF group: INC/DEC/CALL/JMP/PUSH Ev,
// selected by reg field.
func decodeGroup5(data []byte, pos *int, width int, inst *Instruction) error {
	rm, regField, n, err := decodeModRM(data, *pos, width)
	if err != nil {
		return err
	}
	*pos += n
	switch regField {
	case 0:
		inst.Op = OpInc
		setOperands(inst, rm)
	case 1:
		inst.Op = OpDec
		setOperands(inst, rm)
	case 2:
		inst.Op = OpCall
		setOperands(inst, rm)
	case 4:
		inst.Op = OpJmp
		setOperands(inst, rm)
	case 6:
		inst.Op = OpPush
		setOperands(inst, rm)
	default:
		inst.Op = OpUnknown
	}
	return nil
}
