package http

import (
	"io"
	"strings"

	"github.com/shapestone/shape-core/pkg/ast"
)

// Parse decodes an HTTP/1.1 request head from a string into an AST.
//
// The input must contain the request line and a header block terminated by
// an empty line; anything after it is ignored. Returns an ast.ObjectNode:
//
//	{ "type": "request", "method": "GET", "target": "/api",
//	  "version": "HTTP/1.1",
//	  "headers": [{"key": "host", "value": "example.com"}, ...] }
func Parse(input string) (ast.SchemaNode, error) {
	return ParseReader(strings.NewReader(input))
}

// ParseReader decodes a request head from r into an AST. Only the head is
// read from r.
func ParseReader(r io.Reader) (ast.SchemaNode, error) {
	req, err := DecodeRequest(r)
	if err != nil {
		return nil, err
	}
	return RequestToNode(req), nil
}
