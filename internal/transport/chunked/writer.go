package chunked

import (
	"fmt"
	"io"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// NewChunkedWriter is taken from golang src/net/http/internal/chunked.go
func NewChunkedWriter(w io.Writer) *chunkedWriter {
	return &chunkedWriter{w}
}

type chunkedWriter struct {
	Wire io.Writer
}

func (cw *chunkedWriter) Write(data []byte) (n int, err error) {

	// Don't send 0-length data. It looks like EOF for chunked encoding.
	if len(data) == 0 {
		return 0, nil
	}

	if _, err = fmt.Fprintf(cw.Wire, "%x\r\n", len(data)); err != nil {
		return 0, err
	}
	if n, err = cw.Wire.Write(data); err != nil {
		return
	}
	if n != len(data) {
		err = io.ErrShortWrite
		return
	}
	if _, err = io.WriteString(cw.Wire, "\r\n"); err != nil {
		return
	}
	if f, ok := cw.Wire.(interface{ Flush() error }); ok {
		err = f.Flush()
	}
	return
}

// CloseWithTrailer writes the last chunk followed by trailer and the final
// CRLF. The underlying writer is not closed.
func (cw *chunkedWriter) CloseWithTrailer(trailer model.Header) error {
	if _, err := io.WriteString(cw.Wire, "0\r\n"); err != nil {
		return err
	}
	for _, f := range trailer {
		if _, err := fmt.Fprintf(cw.Wire, "%s: %s\r\n", f.Name, f.Value); err != nil {
			return err
		}
	}
	_, err := io.WriteString(cw.Wire, "\r\n")
	return err
}
