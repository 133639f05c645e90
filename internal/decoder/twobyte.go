package decoder

// decodeTwoByte dispatches the 0x0F two-byte opcode escape: Jcc near,
// SETcc, MOVZX/MOVSX, two-operand IMUL, MFENCE.
func decodeTwoByte(data []byte, pos *int, width int, inst *Instruction) error {
	second, err := u8At(data, *pos)
	if err != nil {
		return err
	}
	*pos++

	switch {
	case second >= 0x80 && second <= 0x8F: // Jcc near, rel32
		disp, err := i32At(data, *pos)
		if err != nil {
			return err
		}
		*pos += 4
		inst.Op = OpJcc
		inst.Condition = Cond(second - 0x80)
		setOperands(inst, relOperand(inst.Address+uint32(*pos)+uint32(disp)))
		return nil
	case second >= 0x90 && second <= 0x9F: // SETcc Eb
		rm, _, n, err := decodeModRM(data, *pos, 1)
		if err != nil {
			return err
		}
		*pos += n
		inst.Op = OpSetcc
		inst.Condition = Cond(second - 0x90)
		setOperands(inst, rm)
		return nil
	}

	switch second {
	case 0xB6: // MOVZX Gv, Eb
		return decodeExtendingMov(data, pos, width, 1, OpMovzx, inst)
	case 0xB7: // MOVZX Gv, Ew
		return decodeExtendingMov(data, pos, width, 2, OpMovzx, inst)
	case 0xBE: // MOVSX Gv, Eb
		return decodeExtendingMov(data, pos, width, 1, OpMovsx, inst)
	case 0xBF: // MOVSX Gv, Ew
		return decodeExtendingMov(data, pos, width, 2, OpMovsx, inst)
	case 0xAF: // IMUL Gv, Ev (two-operand form)
		rm, regField, n, err := decodeModRM(data, *pos, width)
		if err != nil {
			return err
		}
		*pos += n
		inst.Op = OpImul
		setOperands(inst, otherOperand(regField, width), rm)
		return nil
	case 0xAE: // MFENCE is encoded as 0F AE F0 in the subset this decoder targets
		next, err := u8At(data, *pos)
		if err != nil {
			return err
		}
		*pos++
		if next == 0xF0 {
			inst.Op = OpMfence
			return nil
		}
		inst.Op = OpUnknown
		return nil
	}

	inst.Op = OpUnknown
	return nil
}
