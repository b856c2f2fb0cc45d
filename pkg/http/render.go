package http

import (
	"fmt"

	"github.com/shapestone/shape-core/pkg/ast"
)

// Render converts an AST node (from Parse or RequestToNode) back to HTTP
// wire format bytes.
//
// The node must be an ObjectNode with a "type" property of "request".
func Render(node ast.SchemaNode) ([]byte, error) {
	req, err := NodeToRequest(node)
	if err != nil {
		return nil, fmt.Errorf("http: Render: %w", err)
	}
	return Marshal(req)
}
