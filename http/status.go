package http

import "strconv"

// Status is one of the three outcomes the server ever reports.
type Status uint16

const (
	StatusOK         Status = 200 // RFC 7231, 6.3.1
	StatusBadRequest Status = 400 // RFC 7231, 6.5.1
	StatusNotFound   Status = 404 // RFC 7231, 6.5.4
)

var (
	unknownStatusCode = "Unknown Status Code"

	statusMessages = map[Status]string{
		StatusOK:         "OK",
		StatusBadRequest: "Bad Request",
		StatusNotFound:   "Not Found",
	}
)

// Text returns the reason phrase, e.g. "Not Found".
func (status Status) Text() string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return unknownStatusCode
}

// String returns the status as it appears on the status line, e.g. "404 Not Found".
func (status Status) String() string {
	return strconv.Itoa(int(status)) + " " + status.Text()
}

// HasContent reports whether a response with this status carries the
// Content-Length and Content-Type fields and a body.
func (status Status) HasContent() bool {
	return status == StatusOK
}
