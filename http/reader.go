package http

import (
	"errors"
	"fmt"
	"io"
)

// ReadRequest reads everything the client has sent so far.
//
// It starts with DefaultReadBufferSize bytes and asks r for all remaining
// capacity on each call. A read that comes back shorter than requested ends
// the request. A read that fills the buffer exactly might have been cut off,
// so the buffer doubles and reading continues. The returned slice has exactly
// the length read.
//
// A connection closed before any short read yields ErrPeerClosed. Other read
// failures are wrapped in ErrRead.
func ReadRequest(r io.Reader) ([]byte, error) {
	buf := make([]byte, DefaultReadBufferSize)
	total := 0
	empty := 0

	for {
		requested := len(buf) - total
		n, err := r.Read(buf[total:])
		if n < 0 || n > requested {
			return nil, fmt.Errorf("%w: invalid read count %d", ErrRead, n)
		}
		total += n

		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}

		switch {
		case n == 0 && err != nil:
			return nil, ErrPeerClosed
		case n == 0:
			empty++
			if empty >= maxConsecutiveEmptyReads {
				return nil, io.ErrNoProgress
			}
			continue
		case n < requested:
			return buf[:total:total], nil
		}

		empty = 0

		grown := make([]byte, 2*len(buf))
		copy(grown, buf[:total])
		buf = grown
	}
}
