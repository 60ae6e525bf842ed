package http

import (
	"slices"
	"strconv"
	"time"
)

// Header describes the response header. ContentLength and ContentType are
// only written when Status has content.
type Header struct {
	Status        Status
	Date          time.Time
	Server        string
	ContentLength int64
	ContentType   string
}

// NewHeaderBuffer returns an empty buffer sized for any header the server
// produces with a reasonable server name.
func NewHeaderBuffer() []byte {
	return make([]byte, 0, DefaultHeaderSize)
}

// Len returns the exact number of bytes AppendTo appends.
func (h *Header) Len() int {
	status := h.Status.Text()

	n := len(statusLinePrefix) + numDigits(int64(h.Status)) + 1 + len(status) + len(crlf)
	n += len(headerConnectionClose)
	n += len(headerDate) + len(TimeFormat) + len(crlf)
	n += len(headerServer) + len(h.Server) + len(crlf)

	if h.Status.HasContent() {
		n += len(headerContentLength) + numDigits(h.ContentLength) + len(crlf)
		n += len(headerContentType) + len(h.ContentType) + len(crlf)
	}

	return n + len(crlf)
}

// AppendTo formats the header onto dst and returns the extended buffer. dst
// is grown once, before anything is written, to hold the whole header.
//
//	HTTP/1.1 200 OK
//	Connection: close
//	Date: Mon, 02 Jan 2006 15:04:05 GMT
//	Server: KSBT
//	Content-Length: 42
//	Content-Type: text/html
func (h *Header) AppendTo(dst []byte) []byte {
	dst = slices.Grow(dst, h.Len())

	dst = append(dst, statusLinePrefix...)
	dst = strconv.AppendInt(dst, int64(h.Status), 10)
	dst = append(dst, ' ')
	dst = append(dst, h.Status.Text()...)
	dst = append(dst, crlf...)

	dst = append(dst, headerConnectionClose...)

	dst = append(dst, headerDate...)
	dst = h.Date.UTC().AppendFormat(dst, TimeFormat)
	dst = append(dst, crlf...)

	dst = append(dst, headerServer...)
	dst = append(dst, h.Server...)
	dst = append(dst, crlf...)

	if h.Status.HasContent() {
		dst = append(dst, headerContentLength...)
		dst = strconv.AppendInt(dst, h.ContentLength, 10)
		dst = append(dst, crlf...)

		dst = append(dst, headerContentType...)
		dst = append(dst, h.ContentType...)
		dst = append(dst, crlf...)
	}

	return append(dst, crlf...)
}
