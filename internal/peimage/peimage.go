// Package peimage parses PE/COFF headers well enough to locate the
// executable section and resolve the import and export tables of a
// Windows driver binary. It never executes or maps the image; every
// read is bounds-checked against the caller-provided buffer.
package peimage

import "fmt"

// Machine identifies the target architecture recorded in the COFF
// file header.
type Machine int

const (
	MachineUnknown Machine = iota
	MachineI386
	MachineAMD64
)

func (m Machine) String() string {
	switch m {
	case MachineI386:
		return "i386"
	case MachineAMD64:
		return "amd64"
	default:
		return "unknown"
	}
}

// Section describes one entry of the PE section table.
type Section struct {
	Name            string
	VirtualSize     uint32
	VirtualAddress  uint32
	RawSize         uint32
	RawOffset       uint32
	Characteristics uint32
}

// executable reports whether the section both contains code and is
// marked executable — the pair of bits the loader and the extractor
// both use to find ".text".
func (s Section) executable() bool {
	const (
		codeFlag = 0x00000020 // IMAGE_SCN_CNT_CODE
		execFlag = 0x20000000 // IMAGE_SCN_MEM_EXECUTE
	)
	return s.Characteristics&codeFlag != 0 && s.Characteristics&execFlag != 0
}

// contains reports whether rva falls inside this section's virtual
// address range.
func (s Section) contains(rva uint32) bool {
	return rva >= s.VirtualAddress && rva < s.VirtualAddress+s.VirtualSize
}

// Import is one resolved entry of one DLL's Import Lookup Table,
// matched position-by-position against the bound Import Address
// Table so it carries the RVA of its IAT slot.
type Import struct {
	DLL       string
	Name      string
	Ordinal   uint16
	ByOrdinal bool
	IATRVA    uint32
}

// Export is one resolved entry of the export directory.
type Export struct {
	Name    string
	Ordinal uint16
	RVA     uint32
}

// TextSection is a convenience pointer to the first executable
// section found while walking the section table.
type TextSection struct {
	Raw     []byte
	RawSize uint32
	RVA     uint32
}

// Image is the PE image descriptor. It borrows the buffer passed to
// Load — Text.Raw and every slice ResolveRVA returns point into it.
type Image struct {
	Machine       Machine
	IsPE32Plus    bool
	ImageBase     uint64
	EntryPointRVA uint32
	Sections      []Section
	Text          *TextSection
	Imports       []Import
	Exports       []Export

	raw []byte
}

// Sanity caps defending against adversarial or truncated input.
const (
	maxSections      = 256
	maxImports       = 10000
	maxExports       = 10000
	maxDirectoryWalk = 1000
)

// Concrete magic values, named instead of inlined.
const (
	mzMagic            = 0x5A4D // "MZ"
	peSignature        = 0x00004550
	optMagicPE32       = 0x010B
	optMagicPE32Plus   = 0x020B
	machineI386Value   = 0x014c
	machineAMD64Value  = 0x8664
	peHeaderOffsetSlot = 0x3C
)

// Load parses data as a PE/COFF image. The returned Image borrows
// data; it must stay alive and unmodified for as long as the Image
// is used.
func Load(data []byte) (*Image, error) {
	img := &Image{raw: data}

	peOff, err := readDOSHeader(data)
	if err != nil {
		return nil, err
	}

	coff, optMagic, optStart, err := readPESignatureAndCOFF(data, peOff)
	if err != nil {
		return nil, err
	}

	switch coff.machine {
	case machineI386Value:
		img.Machine = MachineI386
	case machineAMD64Value:
		img.Machine = MachineAMD64
	default:
		return nil, fmt.Errorf("%w: machine type 0x%04x", ErrUnsupportedMachine, coff.machine)
	}

	if int(coff.numberOfSections) > maxSections {
		return nil, fmt.Errorf("%w: %d sections", ErrSanityCap, coff.numberOfSections)
	}

	var dataDirs []dataDirectory
	switch optMagic {
	case optMagicPE32:
		img.IsPE32Plus = false
	case optMagicPE32Plus:
		img.IsPE32Plus = true
	default:
		return nil, fmt.Errorf("%w: optional header magic 0x%04x", ErrBadMagic, optMagic)
	}

	base, entry, dirs, err := readOptionalHeader(data, optStart, img.IsPE32Plus, coff.sizeOfOptionalHeader)
	if err != nil {
		return nil, err
	}
	img.ImageBase = base
	img.EntryPointRVA = entry
	dataDirs = dirs

	sectionTableOff := optStart + int(coff.sizeOfOptionalHeader)
	sections, err := readSections(data, sectionTableOff, int(coff.numberOfSections))
	if err != nil {
		return nil, err
	}
	img.Sections = sections

	for i := range sections {
		if sections[i].executable() {
			raw, err := sliceRaw(data, sections[i].RawOffset, sections[i].RawSize)
			if err != nil {
				return nil, err
			}
			img.Text = &TextSection{Raw: raw, RawSize: sections[i].RawSize, RVA: sections[i].VirtualAddress}
			break
		}
	}

	if len(dataDirs) > 1 && dataDirs[1].Size != 0 {
		imports, err := readImports(data, sections, dataDirs[1].VirtualAddress, img.IsPE32Plus)
		if err != nil {
			return nil, err
		}
		img.Imports = imports
	}

	if len(dataDirs) > 0 && dataDirs[0].Size != 0 {
		exports, err := readExports(data, sections, dataDirs[0].VirtualAddress)
		if err != nil {
			return nil, err
		}
		img.Exports = exports
	}

	return img, nil
}

// ResolveRVA converts an RVA to a byte slice inside the caller's
// buffer: it finds the section whose virtual range holds rva and
// fails if the resulting file offset plus length runs past the end of
// the buffer. Inside this package the table walkers use rvaToOffset,
// which performs the same section lookup without the length check.
func (img *Image) ResolveRVA(rva uint32, length uint32) ([]byte, error) {
	for i := range img.Sections {
		s := &img.Sections[i]
		if s.contains(rva) {
			return sliceRaw(img.raw, s.RawOffset+(rva-s.VirtualAddress), length)
		}
	}
	return nil, fmt.Errorf("%w: rva 0x%x", ErrOutOfBoundsRVA, rva)
}

func sliceRaw(data []byte, offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: offset 0x%x length %d exceeds buffer of %d bytes", ErrOutOfBoundsRVA, offset, length, len(data))
	}
	return data[offset:end], nil
}
