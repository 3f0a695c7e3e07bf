package model

import (
	"net/http"
	"strings"
)

// Field is a single header line. Name keeps the spelling seen on the wire.
type Field struct {
	Name  string
	Value string
}

// Header is an ordered list of header fields. Unlike [net/http.Header] it
// keeps duplicates and their relative order, lookups are case-insensitive.
type Header []Field

// canonicalName lower-cases ASCII letters of a field name, lookups are
// performed on this form only.
func canonicalName(name string) string {
	for i := 0; i < len(name); i++ {
		if c := name[i]; 'A' <= c && c <= 'Z' {
			return strings.ToLower(name)
		}
	}
	return name
}

func (h Header) Get(name string) string {
	name = canonicalName(name)
	for _, f := range h {
		if canonicalName(f.Name) == name {
			return f.Value
		}
	}
	return ""
}

// Values returns every value of name in wire order.
func (h Header) Values(name string) (vals []string) {
	name = canonicalName(name)
	for _, f := range h {
		if canonicalName(f.Name) == name {
			vals = append(vals, f.Value)
		}
	}
	return
}

func (h Header) Has(name string) bool {
	name = canonicalName(name)
	for _, f := range h {
		if canonicalName(f.Name) == name {
			return true
		}
	}
	return false
}

func (h *Header) Add(name, value string) {
	*h = append(*h, Field{name, value})
}

// Set replaces all values of name with a single field appended at the end.
func (h *Header) Set(name, value string) {
	h.Del(name)
	h.Add(name, value)
}

func (h *Header) Del(name string) {
	name = canonicalName(name)
	kept := (*h)[:0]
	for _, f := range *h {
		if canonicalName(f.Name) != name {
			kept = append(kept, f)
		}
	}
	*h = kept
}

func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	return append(Header(nil), h...)
}

// Std converts h to a [net/http.Header], merging duplicates under their
// canonical MIME key.
func (h Header) Std() http.Header {
	std := make(http.Header, len(h))
	for _, f := range h {
		std.Add(f.Name, f.Value)
	}
	return std
}

// HeaderFromStd builds an ordered header from a map. Keys are visited in
// map order, so the result has no meaningful order across keys.
func HeaderFromStd(std http.Header) Header {
	h := make(Header, 0, len(std))
	for k, vv := range std {
		for _, v := range vv {
			h = append(h, Field{k, v})
		}
	}
	return h
}
