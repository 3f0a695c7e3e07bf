package model

import (
	"net"
	"strconv"
)

type Status struct {
	Code   int
	Reason string
}

func (s Status) String() string {
	if s.Reason == "" {
		return strconv.Itoa(s.Code)
	}
	return strconv.Itoa(s.Code) + " " + s.Reason
}

func (s Status) IsSuccess() bool  { return s.Code >= 200 && s.Code < 300 }
func (s Status) IsRedirect() bool { return s.Code >= 300 && s.Code < 400 }

// Disposition is the verdict on whether a connection may go back to the
// pool after a transaction.
type Disposition int

const (
	Reuse Disposition = iota
	DontReuse
)

func (d Disposition) String() string {
	if d == Reuse {
		return "reuse"
	}
	return "dont-reuse"
}

// ConnKey identifies connections that are interchangeable for a request.
type ConnKey struct {
	Host   string
	Port   int
	Secure bool
	Proxy  string // proxy URL, empty for direct connections
}

func (k ConnKey) Addr() string {
	return net.JoinHostPort(k.Host, strconv.Itoa(k.Port))
}

func (k ConnKey) String() string {
	s := "http://"
	if k.Secure {
		s = "https://"
	}
	s += k.Addr()
	if k.Proxy != "" {
		s += " via " + k.Proxy
	}
	return s
}

// DecompressPredicate decides whether an encoded response body is decoded
// before it reaches the consumer.
type DecompressPredicate func(status Status, header Header) bool
