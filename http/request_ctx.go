package http

import (
	"log/slog"
	"net"

	"github.com/freekieb7/staticd/filesystem"
	"github.com/google/uuid"
)

// RequestCtx is everything a single connection owns while it is served.
// Nothing in it is shared with other connections.
type RequestCtx struct {
	ID   uuid.UUID
	Conn net.Conn

	Raw      []byte
	Request  Request
	Resource filesystem.Resource
	Header   Header
	Response []byte

	Logger *slog.Logger
}

func newRequestCtx(conn net.Conn, logger *slog.Logger) *RequestCtx {
	id := uuid.New()

	return &RequestCtx{
		ID:     id,
		Conn:   conn,
		Logger: logger.With("conn", id.String(), "remote", remoteAddr(conn)),
	}
}

// Close releases the requested file, the buffers and the connection.
func (reqCtx *RequestCtx) Close() {
	if err := reqCtx.Resource.Close(); err != nil {
		reqCtx.Logger.Error("closing file error", "error", err)
	}

	reqCtx.Request.Reset()
	reqCtx.Raw = nil
	reqCtx.Response = nil

	if err := reqCtx.Conn.Close(); err != nil {
		reqCtx.Logger.Error("closing connection error", "error", err)
	}
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
