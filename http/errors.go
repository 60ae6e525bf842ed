package http

import (
	"errors"
	"io"

	"github.com/freekieb7/staticd/filesystem"
)

var (
	// ErrBadRequest is answered with 400 Bad Request.
	ErrBadRequest = errors.New("http: malformed request line")

	// Fatal for the connection: it is closed without a response.
	ErrPeerClosed  = errors.New("http: client socket closed before a complete request was received")
	ErrRead        = errors.New("http: reading request failed")
	ErrPayloadRead = errors.New("http: reading requested file failed")
	ErrWrite       = errors.New("http: writing response failed")

	// Reported, but the response is still delivered.
	ErrShortRead  = errors.New("http: did not read all of the content into the reply")
	ErrShortWrite = errors.New("http: did not write all of the content to the socket")

	ErrServerClosed = errors.New("http: server closed")
)

// failureReason names a fatal connection error for metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrPeerClosed):
		return "peer_closed"
	case errors.Is(err, io.ErrNoProgress):
		return "no_progress"
	case errors.Is(err, ErrRead):
		return "read"
	case errors.Is(err, ErrPayloadRead):
		return "payload_read"
	case errors.Is(err, ErrWrite):
		return "write"
	case errors.Is(err, filesystem.ErrStat):
		return "stat"
	default:
		return "unknown"
	}
}
