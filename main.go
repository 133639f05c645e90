// hwlift - extract hardware driver logic from Windows kernel driver
// binaries (PE/COFF .sys files) and emit portable driver modules for a
// stack-based bare-metal interpreter.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xyproto/env/v2"
	"github.com/xyproto/hwlift/internal/classify"
	"github.com/xyproto/hwlift/internal/decoder"
	"github.com/xyproto/hwlift/internal/emit"
	"github.com/xyproto/hwlift/internal/lifter"
	"github.com/xyproto/hwlift/internal/peimage"
)

const versionString = "hwlift 1.0.0"

// Global flag for controlling diagnostic verbosity, read from anywhere
// progress output is produced.
var VerboseMode bool

// Target selects which intermediate form the CLI prints.
type Target int

const (
	TargetDisasm Target = iota
	TargetUIR
	TargetForth
)

func (t Target) String() string {
	switch t {
	case TargetDisasm:
		return "disasm"
	case TargetUIR:
		return "uir"
	default:
		return "forth"
	}
}

// ParseTarget parses a -t value from the closed set {disasm, uir,
// forth}. Other names listed in older documentation are reserved and
// rejected here.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(s) {
	case "disasm":
		return TargetDisasm, nil
	case "uir":
		return TargetUIR, nil
	case "forth":
		return TargetForth, nil
	default:
		return 0, fmt.Errorf("unsupported target: %s (supported: disasm, uir, forth)", s)
	}
}

// options carries the parsed command line into the pipeline driver.
type options struct {
	binaryPath   string
	target       Target
	outputPath   string
	showSections bool
	showImports  bool
	showExports  bool
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "usage: hwlift [options] <driver.sys>\n\n")
	fmt.Fprintf(os.Stderr, "Extracts hardware access logic from a Windows kernel driver binary\n")
	fmt.Fprintf(os.Stderr, "and emits a driver module for a stack-based bare-metal interpreter.\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
	fmt.Fprintf(os.Stderr, "  HWLIFT_TARGET   default for -t\n")
	fmt.Fprintf(os.Stderr, "  HWLIFT_VERBOSE  default for -v\n")
}

func main() {
	fs := flag.NewFlagSet("hwlift", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { usage(fs) }

	// Defaults can come from the environment so scripted runs don't
	// need to repeat flags.
	defaultTarget := env.Str("HWLIFT_TARGET", "forth")
	var targetFlag = fs.String("t", defaultTarget, "output kind: disasm, uir or forth")
	var targetLongFlag = fs.String("target", defaultTarget, "output kind: disasm, uir or forth")
	var outputFlag = fs.String("o", "", "write output to file instead of standard output")
	var outputLongFlag = fs.String("output", "", "write output to file instead of standard output")
	var verbose = fs.Bool("v", env.Bool("HWLIFT_VERBOSE"), "verbose mode (show pipeline progress on stderr)")
	var verboseLong = fs.Bool("verbose", env.Bool("HWLIFT_VERBOSE"), "verbose mode (show pipeline progress on stderr)")
	var showSections = fs.Bool("s", false, "print the section table to stderr before translating")
	var showImports = fs.Bool("i", false, "print classified imports to stderr before translating")
	var showExports = fs.Bool("e", false, "print exports to stderr before translating")
	var version = fs.Bool("V", false, "print version information and exit")
	var versionLong = fs.Bool("version", false, "print version information and exit")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if *version || *versionLong {
		fmt.Println(versionString)
		os.Exit(0)
	}

	// Use whichever form was specified.
	VerboseMode = *verbose || *verboseLong
	targetName := *targetFlag
	if *targetLongFlag != defaultTarget {
		targetName = *targetLongFlag
	}
	outputPath := *outputFlag
	if outputPath == "" {
		outputPath = *outputLongFlag
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", usageError("expected exactly one input binary"))
		usage(fs)
		os.Exit(1)
	}

	target, err := ParseTarget(targetName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := options{
		binaryPath:   fs.Arg(0),
		target:       target,
		outputPath:   outputPath,
		showSections: *showSections,
		showImports:  *showImports,
		showExports:  *showExports,
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run drives the whole pipeline: read, parse, decode, lift, classify,
// emit. Diagnostics go to stderr; only the translated output reaches
// stdout (or the -o file).
func run(opts options) error {
	if VerboseMode {
		fmt.Fprintf(os.Stderr, "----=[ %s ]=----\n", versionString)
		fmt.Fprintf(os.Stderr, "source binary: %s\n", opts.binaryPath)
	}

	data, err := os.ReadFile(opts.binaryPath)
	if err != nil {
		return wrapStageError("read", KindUsage, err)
	}

	out, err := translate(data, opts)
	if err != nil {
		return err
	}

	if opts.outputPath != "" {
		if err := os.WriteFile(opts.outputPath, []byte(out), 0o644); err != nil {
			return wrapStageError("write", KindInternal, err)
		}
		if VerboseMode {
			fmt.Fprintf(os.Stderr, "-> Wrote %s output: %s\n", opts.target, opts.outputPath)
		}
		return nil
	}
	fmt.Print(out)
	return nil
}

// translate converts a raw PE image into the requested textual form.
func translate(data []byte, opts options) (string, error) {
	img, err := peimage.Load(data)
	if err != nil {
		return "", wrapStageError("parse", parseErrorKind(err), err)
	}
	if VerboseMode {
		fmt.Fprintf(os.Stderr, "-> Parsed %s image, base 0x%x, %d sections, %d imports, %d exports\n",
			img.Machine, img.ImageBase, len(img.Sections), len(img.Imports), len(img.Exports))
	}

	if opts.showSections {
		dumpSections(img)
	}
	if opts.showImports {
		dumpImports(img)
	}
	if opts.showExports {
		dumpExports(img)
	}

	if img.Text == nil {
		return "", &PipelineError{Stage: "pipeline", Kind: KindNoCodeSection,
			Message: "image has no executable code section"}
	}

	instructions, err := decodeText(img)
	if err != nil {
		return "", err
	}
	if VerboseMode {
		fmt.Fprintf(os.Stderr, "-> Decoded %d instructions from .text at RVA 0x%x\n",
			len(instructions), img.Text.RVA)
	}

	if opts.target == TargetDisasm {
		var b strings.Builder
		for _, inst := range instructions {
			b.WriteString(decoder.Format(inst))
			b.WriteString("\n")
		}
		return b.String(), nil
	}

	functions, err := liftFunctions(img, instructions)
	if err != nil {
		return "", err
	}
	if VerboseMode {
		fmt.Fprintf(os.Stderr, "-> Lifted %d function(s)\n", len(functions))
	}

	if opts.target == TargetUIR {
		var b strings.Builder
		for _, fn := range functions {
			b.WriteString(lifter.FormatFunction(fn))
			b.WriteString("\n")
		}
		return b.String(), nil
	}

	imports := classify.ClassifyImports(img.Imports)
	result := classify.AnalyzeFunctions(functions, imports, img.Exports, img.ImageBase)
	if VerboseMode {
		fmt.Fprintf(os.Stderr, "-> Classified %d function(s): %d hardware, %d filtered\n",
			len(result.Functions), result.HardwareFunctionCount, result.FilteredCount)
	}

	input := buildModuleInput(opts.binaryPath, functions, result)
	return emit.Emit(input), nil
}

// decodeText decodes the executable section. A truncated instruction
// at the very end of the section is the normal shape of data packed
// after code and ends decoding cleanly; truncation with nothing decoded
// is a real failure.
func decodeText(img *peimage.Image) ([]decoder.Instruction, error) {
	raw := img.Text.Raw
	instructions, err := decoder.DecodeRange(raw, img.Text.RVA)
	if err != nil {
		if errors.Is(err, decoder.ErrTruncated) && len(instructions) > 0 {
			if VerboseMode {
				fmt.Fprintf(os.Stderr, "Warning: section tail is not a whole instruction, stopping decode there\n")
			}
			return instructions, nil
		}
		return nil, wrapStageError("decode", KindTruncatedInstruction, err)
	}
	return instructions, nil
}

// liftFunctions slices the decoded stream into functions and lifts
// each. Function entries are the image entry point plus every export
// whose RVA lands in the text section; with neither, the whole section
// is one function.
func liftFunctions(img *peimage.Image, instructions []decoder.Instruction) ([]*lifter.Function, error) {
	entries := functionEntries(img)

	var functions []*lifter.Function
	for i, entry := range entries {
		end := img.Text.RVA + img.Text.RawSize
		if i+1 < len(entries) {
			end = entries[i+1]
		}
		var slice []decoder.Instruction
		for _, inst := range instructions {
			if inst.Address >= entry && inst.Address < end {
				slice = append(slice, inst)
			}
		}
		if len(slice) == 0 {
			continue
		}
		fn, err := lifter.Lift(slice, entry)
		if err != nil {
			return nil, wrapStageError("lift", KindInternal, err)
		}
		functions = append(functions, fn)
	}
	return functions, nil
}

func functionEntries(img *peimage.Image) []uint32 {
	inText := func(rva uint32) bool {
		return rva >= img.Text.RVA && rva < img.Text.RVA+img.Text.RawSize
	}

	seen := make(map[uint32]bool)
	var entries []uint32
	add := func(rva uint32) {
		if inText(rva) && !seen[rva] {
			seen[rva] = true
			entries = append(entries, rva)
		}
	}

	add(img.EntryPointRVA)
	for _, exp := range img.Exports {
		add(exp.RVA)
	}
	if len(entries) == 0 {
		add(img.Text.RVA)
	}

	// Insertion order happens to be sorted for well-formed export
	// tables, but don't rely on it.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1] > entries[j]; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
	return entries
}

// buildModuleInput assembles the emitter's declarative record from the
// classification result, keeping only hardware-relevant functions.
// When nothing in the binary touches hardware the module still lists
// every function as a stub so the output documents what was scanned.
func buildModuleInput(binaryPath string, functions []*lifter.Function, result classify.ClassificationResult) emit.ModuleInput {
	byEntry := make(map[uint32]*lifter.Function, len(functions))
	for _, fn := range functions {
		byEntry[fn.EntryAddress] = fn
	}

	var emitFns []emit.Function
	portSet := make(map[uint16]bool)
	anyImmediatePort := false
	anyDynamicPort := false
	anyHardwareCall := false

	for _, cf := range result.Functions {
		if result.HardwareFunctionCount > 0 && !cf.HardwareRelevant {
			continue
		}
		fn := byEntry[cf.EntryAddress]
		ops := collectPortOps(fn)
		if len(ops) > 0 {
			anyImmediatePort = true
		}
		if fn != nil && fn.DynamicPort {
			anyDynamicPort = true
		}
		if cf.HardwareCallCount > 0 {
			anyHardwareCall = true
		}
		for _, p := range cf.Ports {
			portSet[p] = true
		}
		emitFns = append(emitFns, emit.Function{
			Name:      forthWordName(cf.Name),
			Address:   cf.EntryAddress,
			Ops:       ops,
			Dynamic:   fn != nil && fn.DynamicPort && len(ops) == 0,
			IsInit:    isInitPattern(ops),
			IsPolling: isPollingPattern(fn, ops),
		})
	}

	offsets := sortedPorts(portSet)
	var basePort uint16
	if len(offsets) > 0 {
		basePort = offsets[0]
	}

	category := "unknown"
	if result.HardwareFunctionCount > 0 {
		category = classify.PortIO.String()
	}

	confidence := emit.ConfidenceLow
	switch {
	case anyImmediatePort:
		confidence = emit.ConfidenceHigh
	case anyDynamicPort || anyHardwareCall:
		confidence = emit.ConfidenceMedium
	}

	var deps []emit.Dependency
	if dep, ok := emit.HardwareDependency(emitFns); ok {
		deps = append(deps, dep)
	}

	return emit.ModuleInput{
		Vocabulary:   vocabularyName(binaryPath),
		Category:     category,
		Source:       emit.SourceExtracted,
		SourceBinary: filepath.Base(binaryPath),
		Confidence:   confidence,
		Dependencies: deps,
		BasePort:     basePort,
		PortOffsets:  offsets,
		Functions:    emitFns,
	}
}

// collectPortOps walks a lifted function's blocks in order, recording
// every immediate-port access as one emitter port operation. The data
// operand's width picks the byte/word/dword primitive later.
func collectPortOps(fn *lifter.Function) []emit.PortOp {
	if fn == nil {
		return nil
	}
	var ops []emit.PortOp
	for _, b := range fn.Blocks {
		for _, inst := range b.Instructions {
			switch inst.Op {
			case lifter.IRPortIn:
				if inst.Src1.Kind == lifter.IROperandImm {
					ops = append(ops, emit.PortOp{
						Offset: uint16(inst.Src1.Imm),
						Width:  dataWidth(inst.Dst),
					})
				}
			case lifter.IRPortOut:
				if inst.Src1.Kind == lifter.IROperandImm {
					ops = append(ops, emit.PortOp{
						Write:  true,
						Offset: uint16(inst.Src1.Imm),
						Width:  dataWidth(inst.Src2),
					})
				}
			}
		}
	}
	return ops
}

func dataWidth(op lifter.IROperand) int {
	if op.Width == 1 || op.Width == 2 || op.Width == 4 {
		return op.Width
	}
	return 1
}

// isInitPattern marks write-only sequences, the usual shape of a
// controller setup routine.
func isInitPattern(ops []emit.PortOp) bool {
	if len(ops) == 0 {
		return false
	}
	for _, op := range ops {
		if !op.Write {
			return false
		}
	}
	return true
}

// isPollingPattern marks functions that read a port and contain a loop
// (a block whose branch goes backwards). It does not check that the
// read sits inside that loop.
func isPollingPattern(fn *lifter.Function, ops []emit.PortOp) bool {
	if fn == nil {
		return false
	}
	hasRead := false
	for _, op := range ops {
		if !op.Write {
			hasRead = true
			break
		}
	}
	if !hasRead {
		return false
	}
	for _, b := range fn.Blocks {
		if b.Branch != nil && b.Branch.Start <= b.Start {
			return true
		}
	}
	return false
}

func sortedPorts(set map[uint16]bool) []uint16 {
	out := make([]uint16, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// vocabularyName derives the module's vocabulary from the binary file
// name: "kbd8042.sys" becomes "KBD8042". Characters outside the
// interpreter's identifier set become dashes.
func vocabularyName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ToUpper(name)
	if name == "" || name == "." {
		return "DRIVER"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "DRIVER"
	}
	return b.String()
}

// forthWordName renders a classified function name as an upper-case
// word: "fn_00001000" becomes "FN-00001000", "DriverEntry" becomes
// "DRIVERENTRY".
func forthWordName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "_", "-"))
}

func parseErrorKind(err error) ErrorKind {
	switch {
	case errors.Is(err, peimage.ErrTooSmall):
		return KindInputTooSmall
	case errors.Is(err, peimage.ErrBadMagic), errors.Is(err, peimage.ErrUnsupportedMachine):
		return KindBadMagic
	case errors.Is(err, peimage.ErrOutOfBoundsRVA):
		return KindOutOfBoundsRVA
	case errors.Is(err, peimage.ErrSanityCap):
		return KindSanityCapExceeded
	default:
		return KindInternal
	}
}

// dumpSections prints the section table to the diagnostic stream,
// one line per section.
func dumpSections(img *peimage.Image) {
	fmt.Fprintf(os.Stderr, "Sections (%d):\n", len(img.Sections))
	for _, s := range img.Sections {
		marker := " "
		if img.Text != nil && s.VirtualAddress == img.Text.RVA {
			marker = "*"
		}
		fmt.Fprintf(os.Stderr, "  %s %-8s vaddr=0x%08x vsize=0x%-8x raw=0x%08x+0x%-8x flags=0x%08x\n",
			marker, s.Name, s.VirtualAddress, s.VirtualSize, s.RawOffset, s.RawSize, s.Characteristics)
	}
}

// dumpImports prints every import with its catalogue classification.
// Unrecognized names close to a catalogue entry get a near-miss hint.
func dumpImports(img *peimage.Image) {
	classified := classify.ClassifyImports(img.Imports)
	fmt.Fprintf(os.Stderr, "Imports (%d):\n", len(classified))
	for _, imp := range classified {
		name := imp.Name
		if imp.ByOrdinal {
			name = fmt.Sprintf("#%d", imp.Ordinal)
		}
		line := fmt.Sprintf("  %-16s %-32s iat=0x%08x %s", imp.DLL, name, imp.IATRVA, imp.Category)
		if imp.TargetWord != "" {
			line += " -> " + imp.TargetWord
		}
		if imp.Category == classify.Unknown && !imp.ByOrdinal {
			if suggestions := classify.Suggest(imp.Name); len(suggestions) > 0 {
				line += fmt.Sprintf(" (did you mean %s?)", strings.Join(suggestions, ", "))
			}
		}
		fmt.Fprintln(os.Stderr, line)
	}
}

func dumpExports(img *peimage.Image) {
	fmt.Fprintf(os.Stderr, "Exports (%d):\n", len(img.Exports))
	for _, exp := range img.Exports {
		fmt.Fprintf(os.Stderr, "  %-32s ordinal=%-4d rva=0x%08x\n", exp.Name, exp.Ordinal, exp.RVA)
	}
}
