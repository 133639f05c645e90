package decoder

import (
	"encoding/binary"
	"fmt"
)

func u8At(data []byte, off int) (byte, error) {
	if off < 0 || off >= len(data) {
		return 0, fmt.Errorf("%w: need 1 byte at %d", ErrTruncated, off)
	}
	return data[off], nil
}

func i8At(data []byte, off int) (int8, error) {
	b, err := u8At(data, off)
	return int8(b), err
}

func u16At(data []byte, off int) (uint16, error) {
	if off < 0 || off+2 > len(data) {
		return 0, fmt.Errorf("%w: need 2 bytes at %d", ErrTruncated, off)
	}
	return binary.LittleEndian.Uint16(data[off:]), nil
}

func u32At(data []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(data) {
		return 0, fmt.Errorf("%w: need 4 bytes at %d", ErrTruncated, off)
	}
	return binary.LittleEndian.Uint32(data[off:]), nil
}

func i32At(data []byte, off int) (int32, error) {
	v, err := u32At(data, off)
	return int32(v), err
}
