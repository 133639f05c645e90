package decoder

// Register name tables, ordered by the x86 ModR/M encoding (EAX=0 ..
// EDI=7).
var (
	reg32Names = [8]string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi"}
	reg16Names = [8]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}
	reg8Names  = [8]string{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"}
)

// RegName returns the textual register name for a register index at
// the given operand width in bytes (1, 2, or 4).
func RegName(reg, width int) string {
	if reg < 0 || reg > 7 {
		return "?"
	}
	switch width {
	case 1:
		return reg8Names[reg]
	case 2:
		return reg16Names[reg]
	default:
		return reg32Names[reg]
	}
}

// RegDX is the register index of DX/EDX, used to recognize the
// DX-addressed forms of IN/OUT.
const RegDX = 2
