package transport

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-httpflow/internal/model"
)

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

var ok200 = model.Status{Code: 200, Reason: "OK"}

func TestDecompressGzip(t *testing.T) {
	h := header("Content-Encoding", "gzip")
	body := Decompress(bytes.NewReader(gzipped(t, "plain text")), ok200, h, AlwaysDecompress)
	out, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "plain text", string(out))
}

func TestDecompressDeflate(t *testing.T) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write([]byte("deflated"))
	zw.Close()

	out, err := io.ReadAll(Decompress(&buf, ok200, header("Content-Encoding", "deflate"), nil))
	require.NoError(t, err)
	assert.Equal(t, "deflated", string(out))
}

func TestDecompressGate(t *testing.T) {
	payload := gzipped(t, "x")
	cases := []struct {
		name   string
		header model.Header
		pred   model.DecompressPredicate
		decode bool
	}{
		{"NoEncoding", nil, AlwaysDecompress, false},
		{"Identity", header("Content-Encoding", "identity"), AlwaysDecompress, false},
		{"XGzip", header("Content-Encoding", "x-gzip"), AlwaysDecompress, true},
		{"Never", header("Content-Encoding", "gzip"), NeverDecompress, false},
		{"BrowserText", header("Content-Encoding", "gzip", "Content-Type", "text/html; charset=utf-8"), BrowserDecompress, true},
		{"BrowserTar", header("Content-Encoding", "gzip", "Content-Type", "application/x-tar"), BrowserDecompress, false},
		{"BrowserGzipArchive", header("Content-Encoding", "gzip", "Content-Type", "application/gzip"), BrowserDecompress, false},
		{"DefaultIsBrowser", header("Content-Encoding", "gzip", "Content-Type", "application/x-tar"), nil, false},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			out, err := io.ReadAll(Decompress(bytes.NewReader(payload), ok200, c.header, c.pred))
			require.NoError(t, err)
			if c.decode {
				assert.Equal(t, "x", string(out))
			} else {
				assert.Equal(t, payload, out)
			}
		})
	}
}

func TestDecompressEmptyBody(t *testing.T) {
	out, err := io.ReadAll(Decompress(strings.NewReader(""), ok200, header("Content-Encoding", "gzip"), nil))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecompressMalformed(t *testing.T) {
	_, err := io.ReadAll(Decompress(strings.NewReader("definitely not gzip"), ok200,
		header("Content-Encoding", "gzip"), nil))
	var de *model.DecompressionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "gzip", de.Encoding)
}

func TestDecompressTruncated(t *testing.T) {
	payload := gzipped(t, strings.Repeat("abcdefgh", 100))
	r := Decompress(bytes.NewReader(payload[:len(payload)/2]), ok200, header("Content-Encoding", "gzip"), nil)
	_, err := io.ReadAll(r)
	var de *model.DecompressionError
	require.ErrorAs(t, err, &de)

	// the error is sticky, no silently truncated EOF afterwards
	_, err = r.Read(make([]byte, 8))
	assert.ErrorAs(t, err, &de)
}

func TestDecompressKeepsTransportErrors(t *testing.T) {
	payload := gzipped(t, strings.Repeat("abcdefgh", 100))
	// the connection closes before the declared length arrived
	br := bufio.NewReader(bytes.NewReader(payload[:len(payload)/2]))
	framed := frameBody(FramingLength, int64(len(payload)), br, false)
	_, err := io.ReadAll(Decompress(framed, ok200, header("Content-Encoding", "gzip"), nil))
	var te *model.TransportError
	require.ErrorAs(t, err, &te)
	var de *model.DecompressionError
	assert.False(t, errors.As(err, &de))
}
