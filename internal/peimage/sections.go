package peimage

import (
	"bytes"
	"strings"
)

const sectionHeaderSize = 40

// readSections parses the section table immediately following the
// optional header. Each entry is 40 bytes.
func readSections(data []byte, offset, count int) ([]Section, error) {
	sections := make([]Section, 0, count)
	for i := 0; i < count; i++ {
		base := offset + i*sectionHeaderSize
		if base+sectionHeaderSize > len(data) {
			return nil, ErrTooSmall
		}

		name := sectionName(data[base : base+8])
		virtualSize, err := readU32(data, base+8)
		if err != nil {
			return nil, err
		}
		virtualAddress, err := readU32(data, base+12)
		if err != nil {
			return nil, err
		}
		rawSize, err := readU32(data, base+16)
		if err != nil {
			return nil, err
		}
		rawOffset, err := readU32(data, base+20)
		if err != nil {
			return nil, err
		}
		characteristics, err := readU32(data, base+36)
		if err != nil {
			return nil, err
		}

		sections = append(sections, Section{
			Name:            name,
			VirtualSize:     virtualSize,
			VirtualAddress:  virtualAddress,
			RawSize:         rawSize,
			RawOffset:       rawOffset,
			Characteristics: characteristics,
		})
	}
	return sections, nil
}

func sectionName(raw []byte) string {
	if idx := bytes.IndexByte(raw, 0); idx != -1 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(string(raw))
}
