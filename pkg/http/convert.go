package http

import (
	"fmt"

	"github.com/shapestone/shape-core/pkg/ast"
	"github.com/shapestone/shape-httpd/internal/fastparser"
	"github.com/shapestone/shape-httpd/internal/parser"
)

// RequestToNode converts a Request to an AST ObjectNode (see Parse for the
// node layout).
func RequestToNode(req *Request) ast.SchemaNode {
	return parser.HeadToNode(requestHead(req))
}

// NodeToRequest converts an AST ObjectNode back to a Request. The node's
// fields go through the same validation as wire input, so the result obeys
// every Request invariant.
func NodeToRequest(node ast.SchemaNode) (*Request, error) {
	head, err := parser.NodeToHead(node)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}

	rl, err := ParseRequestLine(head.Method + " " + head.Target + " " + head.Version)
	if err != nil {
		return nil, err
	}

	req := &Request{Method: rl.Method, Target: rl.Target, Version: rl.Version}
	for _, f := range head.Fields {
		fld, err := fastparser.ParseField(f.Name + ":" + f.Value)
		if err != nil {
			return nil, &ParseError{Kind: ErrMalformedHeader, Message: quoteLine(f.Name), Err: err}
		}
		req.Headers.Merge(fld.Name, fld.Value)
	}
	return req, nil
}

func requestHead(req *Request) *fastparser.Head {
	fields := make([]fastparser.Field, len(req.Headers))
	for i, h := range req.Headers {
		fields[i] = fastparser.Field{Name: h.Key, Value: h.Value}
	}
	target := req.Target.Raw
	if target == "" {
		target = req.Target.String()
	}
	return &fastparser.Head{
		Method:  req.Method.String(),
		Target:  target,
		Version: req.Version,
		Fields:  fields,
	}
}
