package http

import (
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
)

// AppendPayload reads size bytes from r into dst, directly after the bytes
// already there, growing dst once.
//
// If r ends early the bytes that were read are kept and ErrShortRead is
// returned alongside them; the caller decides whether to send them. Any other
// read failure returns dst unchanged with an ErrPayloadRead error.
func AppendPayload(dst []byte, r io.Reader, size int64) ([]byte, error) {
	if size <= 0 {
		return dst, nil
	}

	start := len(dst)
	if size > int64(math.MaxInt-start) {
		return dst, fmt.Errorf("%w: %d bytes does not fit in memory", ErrPayloadRead, size)
	}
	end := start + int(size)

	dst = slices.Grow(dst, int(size))[:end]

	n, err := io.ReadFull(r, dst[start:end])
	switch {
	case err == nil:
		return dst, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return dst[:start+n], fmt.Errorf("%w: read %d of %d bytes", ErrShortRead, n, size)
	default:
		return dst[:start], fmt.Errorf("%w: %w", ErrPayloadRead, err)
	}
}
