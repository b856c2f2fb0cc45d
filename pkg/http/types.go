// Package http decodes HTTP/1.1 request heads per RFC 9112 and serializes
// the single response a connection sends back.
//
// Decoding is incremental: a Decoder pulls one line at a time from a
// LineSource, so it works directly on a network stream that delivers bytes
// in arbitrary chunks. Only the request line and header block are decoded;
// request bodies are not read.
//
// # Thread Safety
//
// ParseRequestLine, ParseMethod, ParseTarget, Marshal, Validate and Parse
// are safe for concurrent use. A Decoder owns its LineSource and must be
// used by one goroutine at a time.
//
// # Header policy
//
// Field names are lower-cased on decode. Repeated fields are merged into one
// entry by joining their values with ", " in arrival order, so every name
// maps to exactly one value.
package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shapestone/shape-httpd/internal/fastparser"
)

// Request is a decoded HTTP/1.1 request head. It is created only by the
// decoder (or NodeToRequest) and is not modified afterwards.
type Request struct {
	Method  Method
	Target  Target
	Version string  // "HTTP/1.1"
	Headers Headers // lower-cased names, duplicates merged
}

// Host returns the authority the request is addressed to: the target's host
// for absolute and authority forms, otherwise the Host header.
func (r *Request) Host() string {
	if r.Target.URL != nil && (r.Target.Form == AbsoluteForm || r.Target.Form == AuthorityForm) {
		return r.Target.URL.Host
	}
	return r.Headers.Get("Host")
}

// Response represents an HTTP/1.1 response message.
type Response struct {
	Version    string  // "HTTP/1.1"
	StatusCode int     // 200, 404, etc.
	Reason     string  // "OK", "Not Found"
	Headers    Headers // ordered, repeatable headers
	Body       []byte  // raw body (nil if none)
}

// Header represents a single HTTP header key-value pair.
type Header struct {
	Key   string
	Value string
}

// Headers is an ordered list of HTTP headers.
// Lookups are ASCII case-insensitive; keys keep the case they were stored with.
type Headers []Header

// Get returns the first header value for the given key (case-insensitive).
// Returns empty string if not found.
func (h Headers) Get(key string) string {
	for _, hdr := range h {
		if fastparser.EqFold(hdr.Key, key) {
			return hdr.Value
		}
	}
	return ""
}

// Has reports whether a header with the given key is present.
func (h Headers) Has(key string) bool {
	for _, hdr := range h {
		if fastparser.EqFold(hdr.Key, key) {
			return true
		}
	}
	return false
}

// Values returns all header values for the given key (case-insensitive).
func (h Headers) Values(key string) []string {
	var vals []string
	for _, hdr := range h {
		if fastparser.EqFold(hdr.Key, key) {
			vals = append(vals, hdr.Value)
		}
	}
	return vals
}

// Set replaces the first header with the given key (case-insensitive) or appends if not found.
func (h *Headers) Set(key, value string) {
	for i, hdr := range *h {
		if fastparser.EqFold(hdr.Key, key) {
			(*h)[i].Value = value
			// Remove any subsequent headers with same key
			j := i + 1
			for j < len(*h) {
				if fastparser.EqFold((*h)[j].Key, key) {
					*h = append((*h)[:j], (*h)[j+1:]...)
				} else {
					j++
				}
			}
			return
		}
	}
	*h = append(*h, Header{Key: key, Value: value})
}

// Add appends a header without replacing existing ones.
func (h *Headers) Add(key, value string) {
	*h = append(*h, Header{Key: key, Value: value})
}

// Merge folds value into the existing entry for key, comma-joined, or
// appends a new entry. Empty values contribute nothing to an existing
// entry. It returns the index of the entry that holds the value.
func (h *Headers) Merge(key, value string) int {
	for i, hdr := range *h {
		if fastparser.EqFold(hdr.Key, key) {
			switch {
			case value == "":
			case hdr.Value == "":
				(*h)[i].Value = value
			default:
				(*h)[i].Value = hdr.Value + ", " + value
			}
			return i
		}
	}
	*h = append(*h, Header{Key: key, Value: value})
	return len(*h) - 1
}

// Del removes all headers with the given key (case-insensitive).
func (h *Headers) Del(key string) {
	j := 0
	for _, hdr := range *h {
		if !fastparser.EqFold(hdr.Key, key) {
			(*h)[j] = hdr
			j++
		}
	}
	*h = (*h)[:j]
}

// Clone returns a deep copy of the headers.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	clone := make(Headers, len(h))
	copy(clone, h)
	return clone
}

// ContentLength returns the Content-Length header value, or -1 if absent or invalid.
func (h Headers) ContentLength() int64 {
	v := h.Get("Content-Length")
	if v == "" {
		return -1
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// Marshaler is the interface implemented by types that can marshal themselves
// into valid HTTP wire format.
type Marshaler interface {
	MarshalHTTP() ([]byte, error)
}

// RawMessage is an already encoded HTTP message. It marshals to itself, so
// pre-serialized responses can go through an Encoder unchanged.
type RawMessage []byte

// MarshalHTTP returns m. An empty message is an error.
func (m RawMessage) MarshalHTTP() ([]byte, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("http: empty RawMessage")
	}
	return m, nil
}

// Unmarshaler is the interface implemented by types that can unmarshal
// an HTTP wire-format description of themselves.
type Unmarshaler interface {
	UnmarshalHTTP([]byte) error
}
