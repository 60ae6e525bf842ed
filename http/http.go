package http

const (
	DefaultReadBufferSize = 256 // initial request buffer, doubled while reads come back full
	DefaultHeaderSize     = 256 // fits every status, date, type and length combination

	// TimeFormat is the RFC 1123 layout used for the Date header, always in GMT.
	TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

	maxConsecutiveEmptyReads = 100
)

var (
	methodGet      = []byte("GET")
	protocolPrefix = []byte("HTTP/1.")

	// Pre-computed header parts
	statusLinePrefix      = []byte("HTTP/1.1 ")
	headerConnectionClose = []byte("Connection: close\r\n")
	headerDate            = []byte("Date: ")
	headerServer          = []byte("Server: ")
	headerContentLength   = []byte("Content-Length: ")
	headerContentType     = []byte("Content-Type: ")
	crlf                  = []byte("\r\n")
)
