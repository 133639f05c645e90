package peimage

import (
	"encoding/binary"
	"fmt"
)

// Bounds-checked little-endian readers. Every integer field read in
// this package goes through one of these three and every string
// through readCString; section names and sliceRaw check their length
// against the buffer before slicing, so no read can walk past the end
// of the caller's slice.

func readU16(data []byte, offset int) (uint16, error) {
	if offset < 0 || offset+2 > len(data) {
		return 0, fmt.Errorf("%w: u16 at 0x%x", ErrTooSmall, offset)
	}
	return binary.LittleEndian.Uint16(data[offset:]), nil
}

func readU32(data []byte, offset int) (uint32, error) {
	if offset < 0 || offset+4 > len(data) {
		return 0, fmt.Errorf("%w: u32 at 0x%x", ErrTooSmall, offset)
	}
	return binary.LittleEndian.Uint32(data[offset:]), nil
}

func readU64(data []byte, offset int) (uint64, error) {
	if offset < 0 || offset+8 > len(data) {
		return 0, fmt.Errorf("%w: u64 at 0x%x", ErrTooSmall, offset)
	}
	return binary.LittleEndian.Uint64(data[offset:]), nil
}

// readCString reads a NUL-terminated string starting at offset,
// refusing to walk past the end of data.
func readCString(data []byte, offset int) (string, error) {
	if offset < 0 || offset >= len(data) {
		return "", fmt.Errorf("%w: string at 0x%x", ErrTooSmall, offset)
	}
	end := offset
	for end < len(data) && data[end] != 0 {
		end++
	}
	if end >= len(data) {
		return "", fmt.Errorf("%w: unterminated string at 0x%x", ErrTooSmall, offset)
	}
	return string(data[offset:end]), nil
}
