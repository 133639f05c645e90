package peimage

import (
	"bytes"
	"encoding/binary"
)

// buildSyntheticPE32 assembles a minimal but structurally valid PE32
// image with a single executable section holding code, optionally
// followed by one DLL's import table, so tests never depend on a real
// driver binary being present on disk.
func buildSyntheticPE32(code []byte, dll, importName string) []byte {
	const (
		peOffset       = 0x40
		numDataDirs    = 16
		sectionVA      = 0x1000
		rawDataOffset  = 0x200
	)

	var section bytes.Buffer
	section.Write(code)

	var importDirRVA, importDirSize uint32
	if dll != "" {
		// Hint/name entry for the imported function.
		hintNameRVA := sectionVA + uint32(section.Len())
		section.Write([]byte{0, 0}) // hint
		section.WriteString(importName)
		section.WriteByte(0)

		dllNameRVA := sectionVA + uint32(section.Len())
		section.WriteString(dll)
		section.WriteByte(0)

		for section.Len()%4 != 0 {
			section.WriteByte(0)
		}

		iltRVA := sectionVA + uint32(section.Len())
		writeU32(&section, hintNameRVA)
		writeU32(&section, 0) // ILT terminator

		iatRVA := sectionVA + uint32(section.Len())
		writeU32(&section, hintNameRVA)
		writeU32(&section, 0) // IAT terminator

		importDirRVA = sectionVA + uint32(section.Len())
		writeU32(&section, iltRVA)
		writeU32(&section, 0) // TimeDateStamp
		writeU32(&section, 0) // ForwarderChain
		writeU32(&section, dllNameRVA)
		writeU32(&section, iatRVA)
		section.Write(make([]byte, 20)) // terminating all-zero descriptor
		importDirSize = 40
	}

	sectionSize := uint32(section.Len())

	var buf bytes.Buffer
	buf.Write([]byte{'M', 'Z'})
	buf.Write(make([]byte, 0x3C-2))
	writeU32(&buf, peOffset)
	buf.Write(make([]byte, peOffset-buf.Len()))

	buf.Write([]byte{'P', 'E', 0, 0})
	writeU16(&buf, machineI386Value)
	writeU16(&buf, 1) // number of sections
	writeU32(&buf, 0) // timestamp
	writeU32(&buf, 0) // symbol table pointer
	writeU32(&buf, 0) // number of symbols
	optHdrSize := uint16(96 + numDataDirs*8)
	writeU16(&buf, optHdrSize)
	writeU16(&buf, 0) // characteristics

	writeU16(&buf, optMagicPE32)
	buf.WriteByte(0) // major linker
	buf.WriteByte(0) // minor linker
	writeU32(&buf, sectionSize) // size of code
	writeU32(&buf, 0)
	writeU32(&buf, 0)
	writeU32(&buf, sectionVA) // entry point RVA
	writeU32(&buf, sectionVA) // base of code
	writeU32(&buf, sectionVA) // base of data (PE32 only)
	writeU32(&buf, 0x400000)  // image base
	writeU32(&buf, 0x1000)    // section alignment
	writeU32(&buf, 0x200)     // file alignment
	writeU16(&buf, 0)
	writeU16(&buf, 0)
	writeU16(&buf, 0)
	writeU16(&buf, 0)
	writeU16(&buf, 0)
	writeU16(&buf, 0)
	writeU32(&buf, 0)
	writeU32(&buf, sectionVA+sectionSize) // size of image
	writeU32(&buf, uint32(rawDataOffset)) // size of headers
	writeU32(&buf, 0)                     // checksum
	writeU16(&buf, 1)                     // subsystem: native (driver)
	writeU16(&buf, 0)
	writeU32(&buf, 0x100000)
	writeU32(&buf, 0x1000)
	writeU32(&buf, 0x100000)
	writeU32(&buf, 0x1000)
	writeU32(&buf, 0)
	writeU32(&buf, numDataDirs)

	for i := 0; i < numDataDirs; i++ {
		switch i {
		case 1:
			writeU32(&buf, importDirRVA)
			writeU32(&buf, importDirSize)
		default:
			writeU32(&buf, 0)
			writeU32(&buf, 0)
		}
	}

	// Section header.
	name := make([]byte, 8)
	copy(name, ".text")
	buf.Write(name)
	writeU32(&buf, sectionSize)    // virtual size
	writeU32(&buf, sectionVA)      // virtual address
	writeU32(&buf, sectionSize)    // size of raw data
	writeU32(&buf, rawDataOffset)  // pointer to raw data
	writeU32(&buf, 0)              // relocations
	writeU32(&buf, 0)              // line numbers
	writeU16(&buf, 0)
	writeU16(&buf, 0)
	writeU32(&buf, 0x60000020) // CODE | EXECUTE | READ

	for buf.Len() < rawDataOffset {
		buf.WriteByte(0)
	}
	buf.Write(section.Bytes())

	return buf.Bytes()
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}
