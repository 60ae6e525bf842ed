package http

import (
	"bytes"
	"fmt"
)

// Request is the request line of a raw request. Its fields point into the
// buffer passed to Parse and are only valid while that buffer is.
type Request struct {
	Method   []byte
	Path     []byte
	Protocol []byte
}

// Parse accepts exactly "GET <path> HTTP/1.<x>" on the first line of raw.
// Tokens are separated by one or more spaces and a trailing CR is ignored.
// Everything after the first line is ignored. Any other shape is an
// ErrBadRequest.
func (req *Request) Parse(raw []byte) error {
	req.Reset()

	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	line = bytes.TrimSuffix(line, []byte{'\r'})

	method, rest := nextToken(line)
	if !bytes.Equal(method, methodGet) {
		return fmt.Errorf("%w: method %q", ErrBadRequest, method)
	}

	path, rest := nextToken(rest)
	if len(path) == 0 {
		return fmt.Errorf("%w: missing path", ErrBadRequest)
	}

	protocol, rest := nextToken(rest)
	if len(protocol) <= len(protocolPrefix) || !bytes.HasPrefix(protocol, protocolPrefix) {
		return fmt.Errorf("%w: protocol %q", ErrBadRequest, protocol)
	}

	if extra, _ := nextToken(rest); len(extra) > 0 {
		return fmt.Errorf("%w: unexpected token %q", ErrBadRequest, extra)
	}

	req.Method = method
	req.Path = path
	req.Protocol = protocol
	return nil
}

func (req *Request) Reset() {
	req.Method = nil
	req.Path = nil
	req.Protocol = nil
}

// nextToken skips leading spaces and returns the bytes up to the next space.
func nextToken(b []byte) (token, rest []byte) {
	b = bytes.TrimLeft(b, " ")

	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return b, nil
	}
	return b[:i], b[i:]
}
