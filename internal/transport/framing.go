package transport

import (
	"bufio"
	"io"
	"net/http"
	"net/textproto"
	"strconv"

	"golang.org/x/net/http/httpguts"

	"github.com/frankli0324/go-httpflow/internal/model"
	"github.com/frankli0324/go-httpflow/internal/transport/chunked"
)

// Framing is the rule deciding where a response body ends.
type Framing int

const (
	FramingNone Framing = iota
	FramingChunked
	FramingLength
	FramingClose
)

func (f Framing) String() string {
	switch f {
	case FramingNone:
		return "none"
	case FramingChunked:
		return "chunked"
	case FramingLength:
		return "content-length"
	}
	return "read-to-close"
}

// noBody reports responses that never carry a body, RFC 2616 section 4.4.
func noBody(method string, code int) bool {
	return method == "HEAD" || code/100 == 1 || code == 204 || code == 304
}

// SelectFraming picks the body framing of a response. The returned length
// is only meaningful for [FramingLength].
func SelectFraming(method string, code int, h model.Header) (Framing, int64) {
	if noBody(method, code) {
		return FramingNone, 0
	}
	if httpguts.HeaderValuesContainsToken(h.Values("Transfer-Encoding"), "chunked") {
		return FramingChunked, -1
	}
	if cl := contentLength(h); cl >= 0 {
		return FramingLength, cl
	}
	return FramingClose, -1
}

// contentLength returns -1 when the header is absent, malformed or
// declared more than once with different values.
func contentLength(h model.Header) int64 {
	contentLens := h.Values("Content-Length")
	if len(contentLens) == 0 {
		return -1
	}
	// Hardening against HTTP response smuggling, taken from standard library
	// Per RFC 7230 Section 3.3.2
	first := textproto.TrimString(contentLens[0])
	for _, ct := range contentLens[1:] {
		if first != textproto.TrimString(ct) {
			return -1
		}
	}
	n, err := strconv.ParseUint(first, 10, 63)
	if err != nil {
		return -1
	}
	return int64(n)
}

// frameBody bounds br to the body selected by f.
func frameBody(f Framing, n int64, br *bufio.Reader, raw bool) io.Reader {
	switch f {
	case FramingNone:
		return http.NoBody
	case FramingChunked:
		if raw {
			return bodyReader{chunked.NewRawReader(br)}
		}
		return bodyReader{chunked.NewChunkedReader(br)}
	case FramingLength:
		return bodyReader{&lengthReader{io.LimitedReader{R: br, N: n}}}
	}
	return bodyReader{br}
}
