package transport

import (
	"bufio"
	"io"
	"time"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// Conn is the part of a leased connection a transaction needs. Reader
// must return the same *bufio.Reader for the whole life of the connection,
// bytes buffered after one response belong to the next one.
type Conn interface {
	io.Writer
	Reader() *bufio.Reader
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// Consumer receives the head of a response and its body. The body is only
// valid until the consumer returns.
type Consumer[T any] func(status model.Status, header model.Header, body io.Reader) (T, error)

type Head struct {
	Proto  string
	Status model.Status
	Header model.Header
}
