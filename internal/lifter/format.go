package lifter

import (
	"fmt"
	"strings"
)

// FormatFunction renders fn the way the "uir" CLI target prints it:
// a port I/O summary header, then each block's address label, its
// indented instructions, and its successor links.
func FormatFunction(fn *Function) string {
	var b strings.Builder

	fmt.Fprintf(&b, "function 0x%08x\n", fn.EntryAddress)
	fmt.Fprintf(&b, "  ports-read: %s\n", formatPortSet(fn.PortsRead))
	fmt.Fprintf(&b, "  ports-written: %s\n", formatPortSet(fn.PortsWritten))
	if fn.DynamicPort {
		b.WriteString("  dynamic-port: yes\n")
	}

	index := make(map[*BasicBlock]int, len(fn.Blocks))
	for i, blk := range fn.Blocks {
		index[blk] = i
	}

	for i, blk := range fn.Blocks {
		fmt.Fprintf(&b, "block_%d: 0x%08x\n", i, blk.Start)
		for _, inst := range blk.Instructions {
			fmt.Fprintf(&b, "  %08x: %s\n", inst.Address, FormatInstruction(inst))
		}
		if blk.FallThrough != nil {
			fmt.Fprintf(&b, "  -> fall_through: block_%d\n", index[blk.FallThrough])
		}
		if blk.Branch != nil {
			fmt.Fprintf(&b, "  -> branch: block_%d\n", index[blk.Branch])
		}
	}

	return b.String()
}

func formatPortSet(ports []uint16) string {
	if len(ports) == 0 {
		return "none"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = fmt.Sprintf("0x%x", p)
	}
	return strings.Join(parts, ", ")
}

// FormatInstruction renders one lifted instruction as "OPCODE DEST,
// SRC1, SRC2", omitting absent operands.
func FormatInstruction(inst IRInstruction) string {
	mnemonic := inst.Op.String()
	if inst.Op == IRJcc && inst.Condition >= 0 {
		mnemonic = "jcc." + inst.Condition.String()
	}

	var operands []string
	for _, op := range []IROperand{inst.Dst, inst.Src1, inst.Src2} {
		if s := formatIROperand(op); s != "" {
			operands = append(operands, s)
		}
	}
	if len(operands) == 0 {
		return mnemonic
	}
	return mnemonic + " " + strings.Join(operands, ", ")
}

func formatIROperand(op IROperand) string {
	switch op.Kind {
	case IROperandReg:
		return fmt.Sprintf("r%d", op.Reg)
	case IROperandImm:
		return fmt.Sprintf("0x%x", op.Imm)
	case IROperandRel:
		return fmt.Sprintf("0x%x", uint32(op.Imm))
	case IROperandMem:
		return formatIRMem(op.Mem)
	default:
		return ""
	}
}

func formatIRMem(m IRMem) string {
	var b strings.Builder
	b.WriteString("[")
	wrote := false
	if m.Base >= 0 {
		fmt.Fprintf(&b, "r%d", m.Base)
		wrote = true
	}
	if m.Index >= 0 {
		if wrote {
			b.WriteString("+")
		}
		fmt.Fprintf(&b, "r%d*%d", m.Index, m.Scale)
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
