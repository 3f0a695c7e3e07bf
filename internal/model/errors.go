package model

import (
	"fmt"
	"strconv"
)

// ParseError reports a malformed status line, header block or chunk
// framing. The connection it came from is never reused.
type ParseError struct {
	What string // "status line", "header", "chunk size" ...
	Line string // offending input, may be truncated
	Err  error
}

func (e *ParseError) Error() string {
	msg := "http: malformed " + e.What
	if e.Line != "" {
		msg += " " + strconv.Quote(e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// TransportError wraps I/O failures while sending a request or receiving
// a response.
type TransportError struct {
	Op  string // "dial", "write", "read head", "read body"
	Err error
}

func (e *TransportError) Error() string { return "http: " + e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// DecompressionError reports a body that does not decode with its
// declared content encoding.
type DecompressionError struct {
	Encoding string
	Err      error
}

func (e *DecompressionError) Error() string {
	return "http: invalid " + e.Encoding + " body: " + e.Err.Error()
}

func (e *DecompressionError) Unwrap() error { return e.Err }

// TooManyRedirectsError is returned when the redirect budget runs out. Request
// is the last request that was sent.
type TooManyRedirectsError struct {
	Request *Request
	Max     int
}

func (e *TooManyRedirectsError) Error() string {
	return fmt.Sprintf("http: stopped after %d redirects, last request %s %s",
		e.Max, e.Request.Method, e.Request.URL())
}

// StatusCodeError carries a complete non-2xx response collected by the
// convenience helpers.
type StatusCodeError struct {
	Status Status
	Header Header
	Body   []byte
}

func (e *StatusCodeError) Error() string {
	return "http: unexpected status " + e.Status.String()
}
