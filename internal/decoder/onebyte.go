package decoder

// decodeOneByte dispatches a one-byte opcode.
// pos points just past the opcode byte on entry.
func decodeOneByte(data []byte, pos *int, width int, opcode byte, inst *Instruction) error {
	if handled, err := decodeALUFamily(data, pos, width, opcode, inst); handled {
		return err
	}

	switch {
	case opcode >= 0x50 && opcode <= 0x57: // PUSH r32
		inst.Op = OpPush
		setOperands(inst, regOperand(int(opcode-0x50), width))
		return nil
	case opcode >= 0x58 && opcode <= 0x5F: // POP r32
		inst.Op = OpPop
		setOperands(inst, regOperand(int(opcode-0x58), width))
		return nil
	case opcode >= 0x40 && opcode <= 0x47: // INC r32
		inst.Op = OpInc
		setOperands(inst, regOperand(int(opcode-0x40), width))
		return nil
	case opcode >= 0x48 && opcode <= 0x4F: // DEC r32
		inst.Op = OpDec
		setOperands(inst, regOperand(int(opcode-0x48), width))
		return nil
	case opcode >= 0x91 && opcode <= 0x97: // XCHG eAX, r32
		inst.Op = OpXchg
		setOperands(inst, regOperand(0, width), regOperand(int(opcode-0x90), width))
		return nil
	case opcode >= 0xB0 && opcode <= 0xB7: // MOV r8, Ib
		imm, err := i8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		inst.Op = OpMov
		setOperands(inst, regOperand(int(opcode-0xB0), 1), immOperand(int64(imm), 1))
		return nil
	case opcode >= 0xB8 && opcode <= 0xBF: // MOV r32, Iz
		imm, err := readImmWidth(data, pos, width)
		if err != nil {
			return err
		}
		inst.Op = OpMov
		setOperands(inst, regOperand(int(opcode-0xB8), width), immOperand(imm, width))
		return nil
	case opcode >= 0x70 && opcode <= 0x7F: // Jcc short
		disp, err := i8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		inst.Op = OpJcc
		inst.Condition = Cond(opcode - 0x70)
		setOperands(inst, relOperand(inst.Address+uint32(*pos)+uint32(int32(disp))))
		return nil
	}

	switch opcode {
	case 0x84: // TEST Eb, Gb
		return decodeRMGroupInstr(data, pos, 1, OpTest, inst, false)
	case 0x85: // TEST Ev, Gv
		return decodeRMGroupInstr(data, pos, width, OpTest, inst, false)
	case 0xA8: // TEST AL, Ib
		imm, err := i8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		inst.Op = OpTest
		setOperands(inst, regOperand(0, 1), immOperand(int64(imm), 1))
		return nil
	case 0xA9: // TEST eAX, Iz
		imm, err := readImmWidth(data, pos, width)
		if err != nil {
			return err
		}
		inst.Op = OpTest
		setOperands(inst, regOperand(0, width), immOperand(imm, width))
		return nil

	case 0x86: // XCHG Eb, Gb
		return decodeRMGroupInstr(data, pos, 1, OpXchg, inst, true)
	case 0x87: // XCHG Ev, Gv
		return decodeRMGroupInstr(data, pos, width, OpXchg, inst, true)

	case 0x88: // MOV Eb, Gb
		return decodeRMGroupInstr(data, pos, 1, OpMov, inst, true)
	case 0x89: // MOV Ev, Gv
		return decodeRMGroupInstr(data, pos, width, OpMov, inst, true)
	case 0x8A: // MOV Gb, Eb
		return decodeRMGroupInstr(data, pos, 1, OpMov, inst, false)
	case 0x8B: // MOV Gv, Ev
		return decodeRMGroupInstr(data, pos, width, OpMov, inst, false)
	case 0x8D: // LEA Gv, M
		return decodeRMGroupInstr(data, pos, width, OpLea, inst, false)
	case 0x8F: // POP Ev (group, reg field must be 0)
		return decodeUnaryModRM(data, pos, width, inst, func(reg int) (Op, bool) {
			if reg == 0 {
				return OpPop, true
			}
			return OpUnknown, false
		}, false)
	case 0xC6: // MOV Eb, Ib (group, reg field must be 0)
		return decodeGroupWithImm(data, pos, 1, inst, func(reg int) (Op, bool) {
			if reg == 0 {
				return OpMov, true
			}
			return OpUnknown, false
		}, 1)
	case 0xC7: // MOV Ev, Iz (group, reg field must be 0)
		return decodeGroupWithImm(data, pos, width, inst, func(reg int) (Op, bool) {
			if reg == 0 {
				return OpMov, true
			}
			return OpUnknown, false
		}, width)

	case 0x60:
		inst.Op = OpPushad
		return nil
	case 0x61:
		inst.Op = OpPopad
		return nil

	case 0x68: // PUSH Iz
		imm, err := readImmWidth(data, pos, width)
		if err != nil {
			return err
		}
		inst.Op = OpPush
		setOperands(inst, immOperand(imm, width))
		return nil
	case 0x6A: // PUSH Ib (sign-extended)
		imm, err := i8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		inst.Op = OpPush
		setOperands(inst, immOperand(int64(imm), width))
		return nil

	case 0x69: // IMUL Gv, Ev, Iz
		return decodeImul3(data, pos, width, inst, width)
	case 0x6B: // IMUL Gv, Ev, Ib
		return decodeImul3(data, pos, width, inst, 1)

	case 0xC0: // shift group Eb, Ib
		return decodeShiftGroup(data, pos, 1, inst, shiftSrcImm8)
	case 0xC1: // shift group Ev, Ib
		return decodeShiftGroup(data, pos, width, inst, shiftSrcImm8)
	case 0xD0: // shift group Eb, 1
		return decodeShiftGroup(data, pos, 1, inst, shiftSrcOne)
	case 0xD1: // shift group Ev, 1
		return decodeShiftGroup(data, pos, width, inst, shiftSrcOne)
	case 0xD2: // shift group Eb, CL
		return decodeShiftGroup(data, pos, 1, inst, shiftSrcCL)
	case 0xD3: // shift group Ev, CL
		return decodeShiftGroup(data, pos, width, inst, shiftSrcCL)

	case 0xF6: // unary group Eb
		return decodeUnaryGroup(data, pos, 1, inst)
	case 0xF7: // unary group Ev
		return decodeUnaryGroup(data, pos, width, inst)

	case 0xFE: // INC/DEC Eb
		return decodeUnaryModRM(data, pos, 1, inst, func(reg int) (Op, bool) {
			switch reg {
			case 0:
				return OpInc, true
			case 1:
				return OpDec, true
			}
			return OpUnknown, false
		}, false)
	case 0xFF: // INC/DEC/CALL/JMP/PUSH Ev group
		return decodeGroup5(data, pos, width, inst)

	case 0xE8: // CALL rel32
		disp, err := i32At(data, *pos)
		if err != nil {
			return err
		}
		*pos += 4
		inst.Op = OpCall
		setOperands(inst, relOperand(inst.Address+uint32(*pos)+uint32(disp)))
		return nil
	case 0xE9: // JMP rel32
		disp, err := i32At(data, *pos)
		if err != nil {
			return err
		}
		*pos += 4
		inst.Op = OpJmp
		setOperands(inst, relOperand(inst.Address+uint32(*pos)+uint32(disp)))
		return nil
	case 0xEB: // JMP rel8
		disp, err := i8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		inst.Op = OpJmp
		setOperands(inst, relOperand(inst.Address+uint32(*pos)+uint32(int32(disp))))
		return nil
	case 0xE0, 0xE1, 0xE2: // LOOP/LOOPE/LOOPNE
		disp, err := i8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		inst.Op = OpLoop
		setOperands(inst, relOperand(inst.Address+uint32(*pos)+uint32(int32(disp))))
		return nil
	case 0xC3: // RET
		inst.Op = OpRet
		return nil
	case 0xC2: // RET Iw
		imm, err := u16At(data, *pos)
		if err != nil {
			return err
		}
		*pos += 2
		inst.Op = OpRet
		setOperands(inst, immOperand(int64(imm), 2))
		return nil
	case 0xCC: // INT3
		inst.Op = OpInt
		setOperands(inst, immOperand(3, 1))
		return nil
	case 0xCD: // INT Ib
		imm, err := u8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		inst.Op = OpInt
		setOperands(inst, immOperand(int64(imm), 1))
		return nil

	case 0xE4: // IN AL, Ib
		port, err := u8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		inst.Op = OpIn
		setOperands(inst, regOperand(0, 1), immOperand(int64(port), 1))
		return nil
	case 0xE5: // IN eAX, Ib
		port, err := u8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		inst.Op = OpIn
		setOperands(inst, regOperand(0, width), immOperand(int64(port), 1))
		return nil
	case 0xE6: // OUT Ib, AL
		port, err := u8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		inst.Op = OpOut
		setOperands(inst, immOperand(int64(port), 1), regOperand(0, 1))
		return nil
	case 0xE7: // OUT Ib, eAX
		port, err := u8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		inst.Op = OpOut
		setOperands(inst, immOperand(int64(port), 1), regOperand(0, width))
		return nil
	case 0xEC: // IN AL, DX
		inst.Op = OpIn
		setOperands(inst, regOperand(0, 1), regOperand(RegDX, 2))
		return nil
	case 0xED: // IN eAX, DX
		inst.Op = OpIn
		setOperands(inst, regOperand(0, width), regOperand(RegDX, 2))
		return nil
	case 0xEE: // OUT DX, AL
		inst.Op = OpOut
		setOperands(inst, regOperand(RegDX, 2), regOperand(0, 1))
		return nil
	case 0xEF: // OUT DX, eAX
		inst.Op = OpOut
		setOperands(inst, regOperand(RegDX, 2), regOperand(0, width))
		return nil

	case 0x90:
		inst.Op = OpNop
		return nil
	case 0xF4:
		inst.Op = OpHlt
		return nil
	case 0xFA:
		inst.Op = OpCli
		return nil
	case 0xFB:
		inst.Op = OpSti
		return nil
	case 0xC9:
		inst.Op = OpLeave
		return nil
	case 0xFC:
		inst.Op = OpCld
		return nil
	case 0xFD:
		inst.Op = OpStd
		return nil
	case 0x99:
		inst.Op = OpCdq
		return nil
	case 0x98:
		inst.Op = OpCbw
		return nil

	case 0xA4:
		inst.Op = OpMovsb
		return nil
	case 0xA5:
		inst.Op = widthString(width, OpMovsw, OpMovsd)
		return nil
	case 0xA6:
		inst.Op = OpCmpsb
		return nil
	case 0xA7:
		inst.Op = widthString(width, OpCmpsw, OpCmpsd)
		return nil
	case 0xAA:
		inst.Op = OpStosb
		return nil
	case 0xAB:
		inst.Op = widthString(width, OpStosw, OpStosd)
		return nil
	case 0xAC:
		inst.Op = OpLodsb
		return nil
	case 0xAD:
		inst.Op = widthString(width, OpLodsw, OpLodsd)
		return nil
	case 0xAE:
		inst.Op = OpScasb
		return nil
	case 0xAF:
		inst.Op = widthString(width, OpScasw, OpScasd)
		return nil
	}

	inst.Op = OpUnknown
	return nil
}

func widthString(width int, w16, w32 Op) Op {
	if width == 2 {
		return w16
	}
	return w32
}

func readImmWidth(data []byte, pos *int, width int) (int64, error) {
	if width == 2 {
		v, err := u16At(data, *pos)
		if err != nil {
			return 0, err
		}
		*pos += 2
		return int64(v), nil
	}
	v, err := u32At(data, *pos)
	if err != nil {
		return 0, err
	}
	*pos += 4
	return int64(int32(v)), nil
}

// decodeRMGroupInstr handles the common Eb/Gb, Ev/Gv, Gb/Eb, Gv/Ev
// shapes: one ModR/M r/m operand and one reg-field register operand.
// rmIsDest selects which one is the destination.
func decodeRMGroupInstr(data []byte, pos *int, width int, op Op, inst *Instruction, rmIsDest bool) error {
	rm, regField, n, err := decodeModRM(data, *pos, width)
	if err != nil {
		return err
	}
	*pos += n
	inst.Op = op
	other := otherOperand(regField, width)
	if rmIsDest {
		setOperands(inst, rm, other)
	} else {
		setOperands(inst, other, rm)
	}
	return nil
}
