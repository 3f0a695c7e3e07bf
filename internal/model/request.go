package model

import (
	"encoding/base64"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

var defaultPorts = map[bool]int{false: 80, true: 443}

// Request is the description of a single HTTP exchange. It is treated as
// immutable once handed to the engine, redirects derive new values with
// [Request.Clone].
type Request struct {
	Method string
	Secure bool
	Host   string
	Port   int
	Path   string
	Query  string // raw query, without the leading '?'

	Header Header
	Body   interface{}

	// RawBody delivers chunked bodies exactly as they appear on the wire.
	RawBody bool
	// Decompress gates decoding of encoded bodies, nil means the browser
	// heuristic.
	Decompress DecompressPredicate
	// Proxy is the URL of an HTTP(S) proxy, empty for direct connections.
	Proxy string
}

func NewRequest(method, rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	r := &Request{Method: method}
	if err := r.SetURL(u); err != nil {
		return nil, err
	}
	return r, nil
}

// SetURL points r at u. Only absolute http and https URLs are accepted,
// the fragment is dropped.
func (r *Request) SetURL(u *url.URL) error {
	var secure bool
	switch strings.ToLower(u.Scheme) {
	case "http":
	case "https":
		secure = true
	default:
		return fmt.Errorf("unsupported protocol scheme %q", u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return url.InvalidHostError("empty host")
	}
	port := defaultPorts[secure]
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n <= 0 || n > 65535 {
			return fmt.Errorf("invalid port %q", p)
		}
		port = n
	}
	r.Secure, r.Host, r.Port = secure, host, port
	r.Path = u.EscapedPath()
	r.Query = u.RawQuery
	return nil
}

func (r *Request) Scheme() string {
	if r.Secure {
		return "https"
	}
	return "http"
}

// URL rebuilds the absolute URL of the request.
func (r *Request) URL() *url.URL {
	u := &url.URL{
		Scheme:   r.Scheme(),
		Host:     r.HostHeader(),
		RawQuery: r.Query,
	}
	if p, err := url.PathUnescape(r.Path); err == nil {
		u.Path, u.RawPath = p, r.Path
	} else {
		u.Path = r.Path
	}
	return u
}

// RequestURI is the origin-form request target.
func (r *Request) RequestURI() string {
	uri := r.Path
	if uri == "" {
		uri = "/"
	}
	if r.Query != "" {
		uri += "?" + r.Query
	}
	return uri
}

// HostHeader is the value of the Host header, the port is omitted when it
// is the scheme default.
func (r *Request) HostHeader() string {
	if r.Port == 0 || r.Port == defaultPorts[r.Secure] {
		if strings.Contains(r.Host, ":") {
			return "[" + r.Host + "]"
		}
		return r.Host
	}
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

func (r *Request) Key() ConnKey {
	port := r.Port
	if port == 0 {
		port = defaultPorts[r.Secure]
	}
	return ConnKey{Host: r.Host, Port: port, Secure: r.Secure, Proxy: r.Proxy}
}

// Clone returns a copy of r that can be modified without affecting r.
// The body is shared.
func (r *Request) Clone() *Request {
	c := *r
	c.Header = r.Header.Clone()
	return &c
}

func (r *Request) SetBasicAuth(username, password string) {
	auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	r.Header.Set("Authorization", "Basic "+auth)
}

// SetFormBody replaces the body with the url-encoded form of values.
func (r *Request) SetFormBody(values url.Values) {
	r.Body = values.Encode()
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
}
