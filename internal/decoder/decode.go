package decoder

import "fmt"

// segmentOverrideBytes maps a segment-override prefix byte to a
// segment register index (ES=0,CS=1,SS=2,DS=3,FS=4,GS=5). Overrides
// are recorded but otherwise ignored.
var segmentOverrideBytes = map[byte]int{
	0x26: 0, 0x2E: 1, 0x36: 2, 0x3E: 3, 0x64: 4, 0x65: 5,
}

// DecodeOne decodes a single instruction starting at data[0], labeling
// it with virtual address addr. It returns the instruction and the
// number of bytes consumed, ErrEndOfInput if data is empty, or
// ErrTruncated if an instruction was begun but could not be
// completed.
func DecodeOne(data []byte, addr uint32) (Instruction, int, error) {
	if len(data) == 0 {
		return Instruction{}, 0, ErrEndOfInput
	}

	pos := 0
	prefixes, segOverride, err := scanPrefixes(data, &pos)
	if err != nil {
		return Instruction{}, 0, err
	}

	width := 4
	if prefixes&PrefixOperandSize != 0 {
		width = 2
	}

	opcodeByte, err := u8At(data, pos)
	if err != nil {
		return Instruction{}, 0, err
	}
	pos++

	inst := Instruction{Address: addr, Prefixes: prefixes, SegOverride: segOverride, Condition: CondNone}

	if opcodeByte == 0x0F {
		err = decodeTwoByte(data, &pos, width, &inst)
	} else {
		err = decodeOneByte(data, &pos, width, opcodeByte, &inst)
	}
	if err != nil {
		return Instruction{}, 0, err
	}

	inst.Length = pos
	return inst, pos, nil
}

// DecodeRange repeats DecodeOne until the input is exhausted,
// returning every instruction decoded.
func DecodeRange(data []byte, base uint32) ([]Instruction, error) {
	var instructions []Instruction
	addr := base
	for {
		inst, n, err := DecodeOne(data[addr-base:], addr)
		if err == ErrEndOfInput {
			break
		}
		if err != nil {
			return instructions, err
		}
		if n <= 0 {
			return instructions, fmt.Errorf("decoder: non-positive advance at 0x%x", addr)
		}
		instructions = append(instructions, inst)
		addr += uint32(n)
	}
	return instructions, nil
}

func scanPrefixes(data []byte, pos *int) (uint8, int, error) {
	var flags uint8
	segOverride := -1
	for {
		b, err := u8At(data, *pos)
		if err != nil {
			return 0, 0, err
		}
		switch b {
		case 0xF3:
			flags |= PrefixRep
		case 0xF2:
			flags |= PrefixRepne
		case 0xF0:
			flags |= PrefixLock
		case 0x66:
			flags |= PrefixOperandSize
		case 0x67:
			flags |= PrefixAddressSize
		default:
			if seg, ok := segmentOverrideBytes[b]; ok {
				segOverride = seg
			} else {
				return flags, segOverride, nil
			}
		}
		*pos = *pos + 1
	}
}

// otherOperand builds the register operand the ModR/M reg field
// independently selects.
func otherOperand(regField, width int) Operand {
	return Operand{Kind: OperandRegister, Reg: regField, Width: width}
}

func regOperand(reg, width int) Operand {
	return Operand{Kind: OperandRegister, Reg: reg, Width: width}
}

func immOperand(v int64, width int) Operand {
	return Operand{Kind: OperandImmediate, Imm: v, Width: width}
}

func relOperand(target uint32) Operand {
	return Operand{Kind: OperandRelative, Imm: int64(target)}
}

func noneOp() Operand { return Operand{Kind: OperandNone} }

func setOperands(inst *Instruction, ops ...Operand) {
	inst.NumOperands = len(ops)
	for i, op := range ops {
		inst.Operands[i] = op
	}
}
