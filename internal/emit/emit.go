package emit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Emit renders input as a complete module file: metadata header,
// vocabulary preamble, register constants, base accessors, function
// bodies, and footer, in that fixed order. It never fails on
// well-formed input.
func Emit(input ModuleInput) string {
	var b strings.Builder

	writeHeader(&b, input)
	b.WriteString("\n")
	writeVocabularyPreamble(&b, input.Vocabulary)
	b.WriteString("\n")
	writeRegisterConstants(&b, input.PortOffsets)
	writeBaseAccessors(&b, input.PortOffsets)
	writeFunctions(&b, input)
	writeFooter(&b)

	return b.String()
}

func headerValue(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// writeHeader renders the metadata block: nine fixed key/value
// comments plus zero or more REQUIRES lines, each parseable
// by line-oriented text tools.
func writeHeader(b *strings.Builder, input ModuleInput) {
	fmt.Fprintf(b, "\\ CATALOG: %s\n", headerValue(input.Vocabulary))
	fmt.Fprintf(b, "\\ CATEGORY: %s\n", headerValue(input.Category))
	fmt.Fprintf(b, "\\ SOURCE: %s\n", input.Source.String())
	fmt.Fprintf(b, "\\ SOURCE-BINARY: %s\n", headerValue(input.SourceBinary))
	fmt.Fprintf(b, "\\ VENDOR-ID: %s\n", headerValue(input.VendorID))
	fmt.Fprintf(b, "\\ DEVICE-ID: %s\n", headerValue(input.DeviceID))
	fmt.Fprintf(b, "\\ PORTS: %s\n", headerValue(portsDescription(input)))
	fmt.Fprintf(b, "\\ MMIO: %s\n", headerValue(input.MMIO))
	fmt.Fprintf(b, "\\ CONFIDENCE: %s\n", input.Confidence.String())
	for _, dep := range input.Dependencies {
		fmt.Fprintf(b, "\\ REQUIRES: %s (%s)\n", dep.Vocabulary, strings.Join(dep.Words, " "))
	}
}

func portsDescription(input ModuleInput) string {
	if len(input.PortOffsets) == 0 {
		return ""
	}
	return PortRangeDescription(input.BasePort, len(input.PortOffsets))
}

func writeVocabularyPreamble(b *strings.Builder, vocabulary string) {
	fmt.Fprintf(b, "VOCABULARY %s\n", vocabulary)
	fmt.Fprintf(b, "%s DEFINITIONS\n", vocabulary)
	b.WriteString("HEX\n")
}

// regConstantName renders a symbolic REG-XX name for a port offset,
// XX being the offset's upper-case hex digits.
func regConstantName(offset uint16) string {
	return "REG-" + strings.ToUpper(strconv.FormatUint(uint64(offset), 16))
}

func writeRegisterConstants(b *strings.Builder, offsets []uint16) {
	if len(offsets) == 0 {
		return
	}
	for _, off := range offsets {
		fmt.Fprintf(b, "%X CONSTANT %s  ( offset 0x%X )\n", off, regConstantName(off), off)
	}
	b.WriteString("\n")
}

// writeBaseAccessors declares the I/O base port variable and the
// three small helper words: offset-to-port arithmetic, byte read,
// byte write. Omitted entirely if the module has no ports.
func writeBaseAccessors(b *strings.Builder, offsets []uint16) {
	if len(offsets) == 0 {
		return
	}
	b.WriteString("VARIABLE IO-BASE\n")
	b.WriteString(": OFFSET>PORT ( offset -- port ) IO-BASE @ + ;\n")
	b.WriteString(": PORT@ ( offset -- byte ) OFFSET>PORT C@-PORT ;\n")
	b.WriteString(": PORT! ( byte offset -- ) OFFSET>PORT C!-PORT ;\n")
	b.WriteString("\n")
}

func widthReadWord(width int) string {
	switch width {
	case 2:
		return "W@-PORT"
	case 4:
		return "@-PORT"
	default:
		return "C@-PORT"
	}
}

func widthWriteWord(width int) string {
	switch width {
	case 2:
		return "W!-PORT"
	case 4:
		return "!-PORT"
	default:
		return "C!-PORT"
	}
}

// writeFunctions renders one word per function.
func writeFunctions(b *strings.Builder, input ModuleInput) {
	for _, fn := range input.Functions {
		writeFunction(b, fn)
	}
}

func writeFunction(b *strings.Builder, fn Function) {
	switch {
	case fn.Dynamic && len(fn.Ops) == 0:
		fmt.Fprintf(b, ": %s ( -- )  \\ port address resolved at runtime via DX, address 0x%X\n", fn.Name, fn.Address)
		b.WriteString("  ;\n\n")
	case len(fn.Ops) == 0:
		fmt.Fprintf(b, ": %s ( -- )  \\ no port I/O, address 0x%X\n", fn.Name, fn.Address)
		b.WriteString("  ;\n\n")
	case len(fn.Ops) == 1:
		op := fn.Ops[0]
		stackEffect := "( -- n )"
		if op.Write {
			stackEffect = "( n -- )"
		}
		fmt.Fprintf(b, ": %s %s\n", fn.Name, stackEffect)
		writePortOpLine(b, op, "  ")
		b.WriteString("  ;\n\n")
	default:
		fmt.Fprintf(b, ": %s ( -- )  \\ %d port operations, address 0x%X\n", fn.Name, len(fn.Ops), fn.Address)
		for _, op := range fn.Ops {
			writePortOpLine(b, op, "  ")
		}
		b.WriteString("  ;\n\n")
	}
}

func writePortOpLine(b *strings.Builder, op PortOp, indent string) {
	offHex := strings.ToUpper(strconv.FormatUint(uint64(op.Offset), 16))
	if op.Write {
		if op.Width == 1 {
			fmt.Fprintf(b, "%s%s PORT!\n", indent, offHex)
		} else {
			fmt.Fprintf(b, "%s%s OFFSET>PORT %s\n", indent, offHex, widthWriteWord(op.Width))
		}
		return
	}
	if op.Width == 1 {
		fmt.Fprintf(b, "%s%s PORT@\n", indent, offHex)
	} else {
		fmt.Fprintf(b, "%s%s OFFSET>PORT %s\n", indent, offHex, widthReadWord(op.Width))
	}
}

// HardwareDependency scans functions for the width-specific primitive words
// its bodies actually call (directly, for width 2/4, or indirectly
// through PORT@/PORT! for width 1) and returns the single HARDWARE
// vocabulary dependency this module requires. Returns the zero value
// if no function performs port I/O.
func HardwareDependency(functions []Function) (Dependency, bool) {
	seen := make(map[string]bool)
	for _, fn := range functions {
		for _, op := range fn.Ops {
			if op.Write {
				seen[widthWriteWord(op.Width)] = true
			} else {
				seen[widthReadWord(op.Width)] = true
			}
		}
	}
	if len(seen) == 0 {
		return Dependency{}, false
	}
	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	sort.Strings(words)
	return Dependency{Vocabulary: "HARDWARE", Words: words}, true
}

func writeFooter(b *strings.Builder) {
	b.WriteString("FORTH DEFINITIONS\n")
	b.WriteString("DECIMAL\n")
}
