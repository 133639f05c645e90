package decoder

// decodeModRM reads a ModR/M byte (and, when present, a SIB byte and
// a displacement) starting at data[pos]. It returns the r/m operand,
// the independently-selected reg field, and the number of bytes
// consumed.
func decodeModRM(data []byte, pos int, width int) (Operand, int, int, error) {
	modrm, err := u8At(data, pos)
	if err != nil {
		return Operand{}, 0, 0, err
	}
	consumed := 1
	mod := (modrm >> 6) & 3
	regField := int((modrm >> 3) & 7)
	rm := int(modrm & 7)

	if mod == 3 {
		return Operand{Kind: OperandRegister, Reg: rm, Width: width}, regField, consumed, nil
	}

	mem := Mem{Base: -1, Index: -1, Scale: 1}

	if rm == 4 {
		sib, err := u8At(data, pos+consumed)
		if err != nil {
			return Operand{}, 0, 0, err
		}
		consumed++

		scale := 1 << ((sib >> 6) & 3)
		index := int((sib >> 3) & 7)
		base := int(sib & 7)
		if index != 4 {
			mem.Index = index
			mem.Scale = scale
		}
		if base == 5 && mod == 0 {
			d, err := i32At(data, pos+consumed)
			if err != nil {
				return Operand{}, 0, 0, err
			}
			consumed += 4
			mem.Disp = d
		} else {
			mem.Base = base
		}
	} else if rm == 5 && mod == 0 {
		d, err := i32At(data, pos+consumed)
		if err != nil {
			return Operand{}, 0, 0, err
		}
		consumed += 4
		mem.Disp = d
	} else {
		mem.Base = rm
	}

	switch mod {
	case 1:
		d8, err := i8At(data, pos+consumed)
		if err != nil {
			return Operand{}, 0, 0, err
		}
		consumed++
		mem.Disp = int32(d8)
	case 2:
		d32, err := i32At(data, pos+consumed)
		if err != nil {
			return Operand{}, 0, 0, err
		}
		consumed += 4
		mem.Disp = d32
	}

	return Operand{Kind: OperandMemory, Mem: mem, Width: width}, regField, consumed, nil
}
