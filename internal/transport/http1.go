package transport

import (
	"bufio"
	"encoding/base64"
	"io"
	"net/url"
	"strconv"

	"github.com/frankli0324/go-httpflow/internal/model"
	"github.com/frankli0324/go-httpflow/internal/transport/chunked"
)

// WriteRequest serializes r onto w. Host and body framing headers are
// computed here, a body of unknown length is sent chunked.
func WriteRequest(w io.Writer, r *model.PreparedRequest) error {
	body, err := r.GetBody() // can write body
	if err != nil {
		return err
	}
	defer body.Close() // request body is ALWAYS closed

	bw := bufio.NewWriter(w) // default bufsize is 4096
	if err := writeHeader(bw, r); err != nil {
		return &model.TransportError{Op: "write request", Err: err}
	}
	if r.ContentLength > 0 {
		if _, err := io.CopyN(bw, body, r.ContentLength); err != nil {
			return &model.TransportError{Op: "write request body", Err: err}
		}
	} else if r.ContentLength < 0 && r.Body != nil {
		cw := chunked.NewChunkedWriter(bw)
		if _, err := io.Copy(cw, body); err != nil {
			return &model.TransportError{Op: "write request body", Err: err}
		}
		if err := cw.CloseWithTrailer(nil); err != nil {
			return &model.TransportError{Op: "write request body", Err: err}
		}
	}
	if err := bw.Flush(); err != nil {
		return &model.TransportError{Op: "write request", Err: err}
	}
	return nil
}

// writeHeader writes the request line and header part of an http 1.1 request
// e.g.:
//
//	GET / HTTP/1.1\r\n
//	Host: www.google.com\r\n
//	X-Xx-Yy: cccccc\r\n
//	\r\n
func writeHeader(header *bufio.Writer, r *model.PreparedRequest) error {
	header.WriteString(r.Method)
	header.WriteByte(' ')
	header.WriteString(requestTarget(r))
	header.WriteString(" HTTP/1.1\r\n")

	header.WriteString("Host: ")
	header.WriteString(r.HeaderHost)
	header.WriteString("\r\n")
	if auth := proxyAuthorization(r); auth != "" {
		header.WriteString("Proxy-Authorization: ")
		header.WriteString(auth)
		header.WriteString("\r\n")
	}
	if r.ContentLength >= 0 {
		header.WriteString("Content-Length: ")
		header.WriteString(strconv.FormatInt(r.ContentLength, 10))
		header.WriteString("\r\n")
	} else if r.Body != nil {
		header.WriteString("Transfer-Encoding: chunked\r\n")
	}
	for _, f := range r.Header {
		header.WriteString(f.Name)
		header.WriteString(": ")
		header.WriteString(f.Value)
		if _, err := header.WriteString("\r\n"); err != nil {
			return err
		}
	}
	_, err := header.WriteString("\r\n")
	return err
}

// plain requests through an HTTP proxy carry the absolute URL, everything
// else, including CONNECT tunnels, uses origin-form.
func viaPlainProxy(r *model.PreparedRequest) bool {
	return r.Proxy != "" && !r.Secure && r.Method != "CONNECT"
}

func requestTarget(r *model.PreparedRequest) string {
	if r.Method == "CONNECT" {
		return r.HeaderHost
	}
	if viaPlainProxy(r) {
		return r.Scheme() + "://" + r.HeaderHost + r.RequestURI()
	}
	return r.RequestURI()
}

func proxyAuthorization(r *model.PreparedRequest) string {
	if !viaPlainProxy(r) {
		return ""
	}
	u, err := url.Parse(r.Proxy)
	if err != nil || u.User == nil {
		return ""
	}
	password, _ := u.User.Password()
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(u.User.Username()+":"+password))
}
