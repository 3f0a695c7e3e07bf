package transport

import (
	"errors"
	"io"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// maxDrainBytes is how much of an unread body is discarded to keep the
// connection, larger remainders get the connection closed instead.
const maxDrainBytes = 256 << 10

// bodyReader types the errors of a framed body: framing problems stay
// ParseErrors, everything else is a TransportError.
type bodyReader struct {
	r io.Reader
}

func (b bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF {
		var pe *model.ParseError
		var te *model.TransportError
		if !errors.As(err, &pe) && !errors.As(err, &te) {
			err = &model.TransportError{Op: "read body", Err: err}
		}
	}
	return n, err
}

// lengthReader is an [io.LimitedReader] that treats a short body as an error.
type lengthReader struct {
	io.LimitedReader
}

func (l *lengthReader) Read(p []byte) (int, error) {
	n, err := l.LimitedReader.Read(p)
	if err == io.EOF && l.N > 0 {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// drain discards what is left of body and reports whether it ended
// cleanly within maxDrainBytes.
func drain(body io.Reader) bool {
	n, err := io.CopyN(io.Discard, body, maxDrainBytes+1)
	return err == io.EOF && n <= maxDrainBytes
}
