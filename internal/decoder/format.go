package decoder

import (
	"fmt"
	"strings"
)

// Format renders an instruction the way the disasm CLI target prints
// it: address, mnemonic, comma-separated operands.
func Format(inst Instruction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%08x: %s", inst.Address, mnemonic(inst))
	for i := 0; i < inst.NumOperands; i++ {
		if i == 0 {
			b.WriteString(" ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(FormatOperand(inst.Operands[i]))
	}
	return b.String()
}

func mnemonic(inst Instruction) string {
	if inst.Op == OpJcc && inst.Condition != CondNone {
		return "j" + inst.Condition.String()
	}
	if inst.Op == OpSetcc && inst.Condition != CondNone {
		return "set" + inst.Condition.String()
	}
	return inst.Op.String()
}

// FormatOperand renders a single operand in plain Intel-adjacent form
// (no leading '$'/'%' sigils).
func FormatOperand(op Operand) string {
	switch op.Kind {
	case OperandRegister:
		return RegName(op.Reg, op.Width)
	case OperandImmediate:
		return fmt.Sprintf("0x%x", op.Imm)
	case OperandRelative:
		return fmt.Sprintf("0x%x", uint32(op.Imm))
	case OperandMemory:
		return formatMem(op.Mem)
	default:
		return ""
	}
}

func formatMem(m Mem) string {
	var b strings.Builder
	b.WriteString("[")
	wrote := false
	if m.Base >= 0 {
		b.WriteString(RegName(m.Base, 4))
		wrote = true
	}
	if m.Index >= 0 {
		if wrote {
			b.WriteString("+")
		}
		fmt.Fprintf(&b, "%s*%d", RegName(m.Index, 4), m.Scale)
		wrote = true
	}
	if m.Disp != 0 || !wrote {
		if wrote && m.Disp >= 0 {
			b.WriteString("+")
		}
		fmt.Fprintf(&b, "0x%x", m.Disp)
	}
	b.WriteString("]")
	return b.String()
}
