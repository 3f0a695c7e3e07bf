package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"golang.org/x/net/http/httpguts"
)

// ErrBodyNotReplayable is returned when a request whose body could only be
// read once has to be sent again, e.g. after a 307 redirect.
var ErrBodyNotReplayable = errors.New("request body can not be sent twice")

// PreparedRequest is a [Request] checked and normalized for the wire.
type PreparedRequest struct {
	*Request

	Header     Header // user headers without the ones computed by the engine
	HeaderHost string
	GetBody    func() (io.ReadCloser, error)

	// ContentLength is -1 when unknown, the body is then sent chunked.
	ContentLength int64
	// Replayable reports whether GetBody may be called more than once.
	Replayable bool
}

// computed by the transport, never taken from the caller
var managedHeaders = map[string]bool{
	"host": true, "content-length": true, "transfer-encoding": true,
}

func (r *Request) Prepare() (*PreparedRequest, error) {
	if r.Method == "" {
		return nil, errors.New("empty request method")
	}
	for _, c := range r.Method {
		if !httpguts.IsTokenRune(c) {
			return nil, fmt.Errorf("invalid method %q", r.Method)
		}
	}
	if r.Host == "" {
		return nil, errors.New("empty request host")
	}

	headers := make(Header, 0, len(r.Header))
	for _, f := range r.Header {
		if !httpguts.ValidHeaderFieldName(f.Name) {
			return nil, fmt.Errorf("invalid header field name %q", f.Name)
		}
		if !httpguts.ValidHeaderFieldValue(f.Value) {
			return nil, fmt.Errorf("invalid header field value for %q", f.Name)
		}
		if managedHeaders[canonicalName(f.Name)] {
			continue
		}
		headers = append(headers, f)
	}

	pr := &PreparedRequest{
		Request:       r,
		Header:        headers,
		HeaderHost:    r.HostHeader(),
		ContentLength: -1,
		Replayable:    true,
	}
	if err := pr.updateBody(); err != nil {
		return nil, err
	}
	return pr, nil
}

// should only be called once at [Request.Prepare]
func (r *PreparedRequest) updateBody() (err error) {
	if r.Request.Body == nil {
		switch r.Method {
		case "POST", "PUT", "PATCH":
			r.ContentLength = 0
		}
		r.GetBody = func() (io.ReadCloser, error) {
			return http.NoBody, nil
		}
		return nil
	}
	switch b := r.Request.Body.(type) {
	case string:
		r.ContentLength = int64(len(b))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(b)), nil
		}
	case []byte:
		r.ContentLength = int64(len(b))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		}
	case *bytes.Buffer: // below is taken from http.NewRequest
		r.ContentLength = int64(b.Len())
		buf := b.Bytes()
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(buf)), nil
		}
	case *bytes.Reader:
		r.ContentLength = int64(b.Len())
		snapshot := *b
		r.GetBody = func() (io.ReadCloser, error) {
			r := snapshot
			return io.NopCloser(&r), nil
		}
	case *strings.Reader:
		r.ContentLength = int64(b.Len())
		snapshot := *b
		r.GetBody = func() (io.ReadCloser, error) {
			r := snapshot
			return io.NopCloser(&r), nil
		}
	case io.Reader:
		if sizer, ok := b.(interface{ Size() int64 }); ok {
			r.ContentLength = sizer.Size()
		}
		cb, ok := b.(io.ReadCloser)
		if !ok {
			cb = io.NopCloser(b)
		}
		once := atomic.Bool{}
		r.Replayable = false
		r.GetBody = func() (io.ReadCloser, error) {
			if once.CompareAndSwap(false, true) {
				return cb, nil
			}
			return nil, ErrBodyNotReplayable
		}
	default:
		return fmt.Errorf("unsupported body type: %T", r.Request.Body)
	}
	return nil
}
