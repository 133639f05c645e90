package peimage

import "errors"

// Sentinel errors, one per failure band of the parsing stage, in
// severity order. Callers match with errors.Is.
var (
	ErrTooSmall           = errors.New("peimage: input too small")
	ErrBadMagic           = errors.New("peimage: bad magic")
	ErrUnsupportedMachine = errors.New("peimage: unsupported machine type")
	ErrOutOfBoundsRVA     = errors.New("peimage: rva out of bounds")
	ErrSanityCap          = errors.New("peimage: sanity cap exceeded")
)
