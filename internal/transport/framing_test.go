package transport

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-httpflow/internal/model"
)

func TestSelectFraming(t *testing.T) {
	cases := []struct {
		name    string
		method  string
		code    int
		header  model.Header
		framing Framing
		length  int64
	}{
		{"HeadIgnoresLength", "HEAD", 200, header("Content-Length", "10"), FramingNone, 0},
		{"HeadIgnoresChunked", "HEAD", 200, header("Transfer-Encoding", "chunked"), FramingNone, 0},
		{"Informational", "GET", 101, header("Content-Length", "10"), FramingNone, 0},
		{"NoContent", "GET", 204, header("Transfer-Encoding", "chunked"), FramingNone, 0},
		{"NotModified", "GET", 304, header("Content-Length", "10"), FramingNone, 0},
		{"Chunked", "GET", 200, header("Transfer-Encoding", "chunked"), FramingChunked, -1},
		{"ChunkedCaseInsensitive", "GET", 200, header("transfer-encoding", "gzip, Chunked"), FramingChunked, -1},
		{"ChunkedWinsOverLength", "GET", 200, header("Content-Length", "3", "Transfer-Encoding", "chunked"), FramingChunked, -1},
		{"Length", "POST", 200, header("Content-Length", "5"), FramingLength, 5},
		{"ZeroLength", "GET", 200, header("Content-Length", "0"), FramingLength, 0},
		{"DuplicateEqualLength", "GET", 200, header("Content-Length", "5", "content-length", " 5"), FramingLength, 5},
		// malformed lengths degrade to read-to-close instead of failing
		{"NegativeLength", "GET", 200, header("Content-Length", "-5"), FramingClose, -1},
		{"NonNumericLength", "GET", 200, header("Content-Length", "five"), FramingClose, -1},
		{"ConflictingLength", "GET", 200, header("Content-Length", "5", "Content-Length", "6"), FramingClose, -1},
		{"NoFraming", "GET", 200, nil, FramingClose, -1},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			f, n := SelectFraming(c.method, c.code, c.header)
			assert.Equal(t, c.framing, f, "framing is %s", f)
			if f == FramingLength {
				assert.Equal(t, c.length, n)
			}
		})
	}
}

func TestLengthBodyKeepsRemainder(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("helloHTTP/1.1 200 OK\r\n"))
	body, err := io.ReadAll(frameBody(FramingLength, 5, br, false))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	rest, _ := io.ReadAll(br)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n", string(rest))
}

func TestLengthBodyShort(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("hel"))
	_, err := io.ReadAll(frameBody(FramingLength, 5, br, false))
	var te *model.TransportError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestChunkedBody(t *testing.T) {
	const wire = "3\r\nabc\r\n0\r\n\r\n"

	br := bufio.NewReader(strings.NewReader(wire + "next"))
	body, err := io.ReadAll(frameBody(FramingChunked, -1, br, false))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(body))
	rest, _ := io.ReadAll(br)
	assert.Equal(t, "next", string(rest))

	br = bufio.NewReader(strings.NewReader(wire + "next"))
	body, err = io.ReadAll(frameBody(FramingChunked, -1, br, true))
	require.NoError(t, err)
	assert.Equal(t, wire, string(body))
	rest, _ = io.ReadAll(br)
	assert.Equal(t, "next", string(rest))
}

func TestCloseBodyReadsToEOF(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("everything until close"))
	body, err := io.ReadAll(frameBody(FramingClose, -1, br, false))
	require.NoError(t, err)
	assert.Equal(t, "everything until close", string(body))
}

func TestNoBodyLeavesConnection(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("HTTP/1.1 200 OK\r\n"))
	body, err := io.ReadAll(frameBody(FramingNone, 0, br, false))
	require.NoError(t, err)
	assert.Empty(t, body)
	assert.Equal(t, 0, br.Buffered(), "no byte was pulled from the connection")
}

func TestDecide(t *testing.T) {
	assert.Equal(t, model.Reuse, Decide(nil, FramingLength))
	assert.Equal(t, model.Reuse, Decide(header("Connection", "keep-alive"), FramingChunked))
	assert.Equal(t, model.Reuse, Decide(nil, FramingNone))
	assert.Equal(t, model.DontReuse, Decide(header("Connection", "close"), FramingLength))
	assert.Equal(t, model.DontReuse, Decide(header("connection", "Keep-Alive, CLOSE"), FramingNone))
	assert.Equal(t, model.DontReuse, Decide(nil, FramingClose))
	assert.Equal(t, model.DontReuse, Decide(header("Connection", "keep-alive"), FramingClose))
}
