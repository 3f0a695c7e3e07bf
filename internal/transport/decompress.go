package transport

import (
	"compress/gzip"
	"compress/zlib"
	"errors"
	"io"
	"mime"
	"strings"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// AlwaysDecompress decodes every body the server declares as encoded.
func AlwaysDecompress(model.Status, model.Header) bool { return true }

// NeverDecompress hands encoded bodies to the consumer as they are.
func NeverDecompress(model.Status, model.Header) bool { return false }

// BrowserDecompress decodes like a browser does, except for archive media
// types: for those the encoding is usually the payload itself and many
// servers or proxies have already removed it.
func BrowserDecompress(_ model.Status, h model.Header) bool {
	mt, _, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return true
	}
	switch mt {
	case "application/x-tar", "application/gzip", "application/x-gzip":
		return false
	}
	return true
}

// contentEncoding returns "gzip", "deflate" or "" for the outermost coding
// of h.
func contentEncoding(h model.Header) string {
	vals := h.Values("Content-Encoding")
	if len(vals) == 0 {
		return ""
	}
	codings := strings.Split(vals[len(vals)-1], ",")
	switch strings.ToLower(strings.TrimSpace(codings[len(codings)-1])) {
	case "gzip", "x-gzip":
		return "gzip"
	case "deflate":
		return "deflate"
	}
	return ""
}

// Decompress applies the decompression gate to a framed body.
func Decompress(body io.Reader, status model.Status, h model.Header, pred model.DecompressPredicate) io.Reader {
	enc := contentEncoding(h)
	if enc == "" {
		return body
	}
	if pred == nil {
		pred = BrowserDecompress
	}
	if !pred(status, h) {
		return body
	}
	return &decoder{enc: enc, body: body}
}

// decoder lazily creates the decompressor on the first Read, like the
// GzipReader of net/http, so an empty body is not an error.
type decoder struct {
	enc  string
	body io.Reader
	zr   io.Reader
	zerr error // sticky error
}

func (d *decoder) Read(p []byte) (n int, err error) {
	if d.zerr != nil {
		return 0, d.zerr
	}
	if d.zr == nil {
		if d.enc == "gzip" {
			d.zr, err = gzip.NewReader(d.body)
		} else {
			d.zr, err = zlib.NewReader(d.body)
		}
		if err != nil {
			d.zerr = d.wrap(err)
			return 0, d.zerr
		}
	}
	n, err = d.zr.Read(p)
	if err != nil {
		err = d.wrap(err)
		if err != io.EOF {
			d.zerr = err
		}
	}
	return n, err
}

// wrap keeps framing and transport errors from the body as they are and
// reports anything else as a DecompressionError.
func (d *decoder) wrap(err error) error {
	var pe *model.ParseError
	var te *model.TransportError
	if err == io.EOF || errors.As(err, &pe) || errors.As(err, &te) {
		return err
	}
	return &model.DecompressionError{Encoding: d.enc, Err: err}
}
