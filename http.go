// Package httpflow is a streaming HTTP/1.1 client engine. Responses are
// handed to a [Consumer] while their bodies arrive, connections are pooled
// per destination and redirects are followed as an explicit loop.
package httpflow

import (
	"github.com/frankli0324/go-httpflow/internal/model"
	"github.com/frankli0324/go-httpflow/internal/transport"
)

type Request = model.Request
type PreparedRequest = model.PreparedRequest
type Header = model.Header
type Field = model.Field
type Status = model.Status
type Disposition = model.Disposition
type ConnKey = model.ConnKey

const (
	Reuse     = model.Reuse
	DontReuse = model.DontReuse
)

// Consumer receives a response while it arrives. The body reader is
// bounded to the current message and only valid until the consumer
// returns.
type Consumer[T any] = transport.Consumer[T]

type DecompressPredicate = model.DecompressPredicate

var (
	AlwaysDecompress  DecompressPredicate = transport.AlwaysDecompress
	NeverDecompress   DecompressPredicate = transport.NeverDecompress
	BrowserDecompress DecompressPredicate = transport.BrowserDecompress
)

type (
	ParseError            = model.ParseError
	TransportError        = model.TransportError
	DecompressionError    = model.DecompressionError
	TooManyRedirectsError = model.TooManyRedirectsError
	StatusCodeError       = model.StatusCodeError
)

var ErrBodyNotReplayable = model.ErrBodyNotReplayable

func NewRequest(method, rawURL string) (*Request, error) {
	return model.NewRequest(method, rawURL)
}
