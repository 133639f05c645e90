package decoder

import "errors"

// ErrEndOfInput means DecodeOne was called with no bytes left and
// no instruction was attempted — a clean stop, not a failure.
var ErrEndOfInput = errors.New("decoder: end of input")

// ErrTruncated means an instruction was begun (at least one prefix or
// opcode byte consumed) but the input ran out before it could be
// completed. Kept distinct from ErrEndOfInput so callers can tell
// clean termination from malformed input.
var ErrTruncated = errors.New("decoder: truncated instruction")
