package http

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/freekieb7/staticd/test"
)

// chunkReader returns one scripted chunk per Read call, then io.EOF.
type chunkReader struct {
	chunks [][]byte
	sizes  []int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	r.sizes = append(r.sizes, len(p))
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}

	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func TestReadRequestShortRead(t *testing.T) {
	reqMsg := []byte("GET /index.html HTTP/1.1\r\nHost: localhost\r\n\r\n")

	raw, err := ReadRequest(bytes.NewReader(reqMsg))
	test.NoError(t, err)
	test.Equal(t, string(reqMsg), string(raw))
	test.Equal(t, len(raw), cap(raw))
}

func TestReadRequestGrowsPastInitialBuffer(t *testing.T) {
	path := "/" + strings.Repeat("a", 400) + ".html"
	reqMsg := []byte("GET " + path + " HTTP/1.1\r\n\r\n")

	raw, err := ReadRequest(bytes.NewReader(reqMsg))
	test.NoError(t, err)
	test.Equal(t, string(reqMsg), string(raw))

	var req Request
	test.NoError(t, req.Parse(raw))
	test.Equal(t, path, string(req.Path))
}

func TestReadRequestExactlyFullReadGrows(t *testing.T) {
	first := bytes.Repeat([]byte{'x'}, DefaultReadBufferSize)
	second := []byte("tail")
	r := &chunkReader{chunks: [][]byte{first, second}}

	raw, err := ReadRequest(r)
	test.NoError(t, err)
	test.Equal(t, string(first)+string(second), string(raw))

	// The first read asks for the whole buffer, the second for what is left
	// after doubling.
	test.Equal(t, 2, len(r.sizes))
	test.Equal(t, DefaultReadBufferSize, r.sizes[0])
	test.Equal(t, DefaultReadBufferSize, r.sizes[1])
}

func TestReadRequestDoublesRepeatedly(t *testing.T) {
	r := &chunkReader{chunks: [][]byte{
		bytes.Repeat([]byte{'a'}, 256),
		bytes.Repeat([]byte{'b'}, 256),
		bytes.Repeat([]byte{'c'}, 512),
		[]byte("end"),
	}}

	raw, err := ReadRequest(r)
	test.NoError(t, err)
	test.Equal(t, 256+256+512+3, len(raw))
	test.Equal(t, 1024, r.sizes[3])
	if !bytes.HasSuffix(raw, []byte("cend")) {
		t.Errorf("bytes out of order: %q", raw[len(raw)-8:])
	}
}

func TestReadRequestOneByteAtATime(t *testing.T) {
	// Every read is shorter than requested, so the first byte is the request.
	raw, err := ReadRequest(iotest.OneByteReader(strings.NewReader("GET / HTTP/1.1\r\n")))
	test.NoError(t, err)
	test.Equal(t, "G", string(raw))
}

func TestReadRequestPeerClosed(t *testing.T) {
	_, err := ReadRequest(bytes.NewReader(nil))
	test.ErrorIs(t, err, ErrPeerClosed)

	// A burst that exactly fills the buffer is followed by another read, which
	// sees the close.
	_, err = ReadRequest(bytes.NewReader(make([]byte, DefaultReadBufferSize)))
	test.ErrorIs(t, err, ErrPeerClosed)
}

func TestReadRequestError(t *testing.T) {
	broken := errors.New("connection reset")

	_, err := ReadRequest(iotest.ErrReader(broken))
	test.ErrorIs(t, err, ErrRead)
	test.ErrorIs(t, err, broken)
}

func TestReadRequestDataWithEOF(t *testing.T) {
	raw, err := ReadRequest(iotest.DataErrReader(strings.NewReader("GET / HTTP/1.0\n")))
	test.NoError(t, err)
	test.Equal(t, "GET / HTTP/1.0\n", string(raw))
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, nil }

func TestReadRequestNoProgress(t *testing.T) {
	_, err := ReadRequest(emptyReader{})
	test.ErrorIs(t, err, io.ErrNoProgress)
}

func BenchmarkReadRequest(b *testing.B) {
	reqMsg := []byte("GET /test HTTP/1.1\r\nAccept: text/css\r\nConnection: keep-alive\r\nContent-Length: 0\r\n\r\n")
	reader := bytes.NewReader(reqMsg)

	for b.Loop() {
		reader.Reset(reqMsg)
		if _, err := ReadRequest(reader); err != nil {
			b.Error(err)
		}
	}
}
