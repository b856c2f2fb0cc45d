// Package parser maps decoded HTTP/1.1 request heads to shape-core AST
// nodes and back. The server uses the AST form for structured debug dumps.
//
// A request head is mapped to an ObjectNode with the following structure:
//
//	{ "type": "request", "method": "GET", "target": "/api",
//	  "version": "HTTP/1.1",
//	  "headers": [{"key": "host", "value": "example.com"}, ...] }
package parser

import (
	"fmt"

	"github.com/shapestone/shape-core/pkg/ast"
	"github.com/shapestone/shape-httpd/internal/fastparser"
)

var zeroPos = ast.Position{}

// HeadToNode converts a request head to an AST ObjectNode.
func HeadToNode(h *fastparser.Head) ast.SchemaNode {
	return ast.NewObjectNode(map[string]ast.SchemaNode{
		"type":    ast.NewLiteralNode("request", zeroPos),
		"method":  ast.NewLiteralNode(h.Method, zeroPos),
		"target":  ast.NewLiteralNode(h.Target, zeroPos),
		"version": ast.NewLiteralNode(h.Version, zeroPos),
		"headers": fieldsToNode(h.Fields),
	}, zeroPos)
}

func fieldsToNode(fields []fastparser.Field) ast.SchemaNode {
	elements := make([]ast.SchemaNode, len(fields))
	for i, f := range fields {
		elements[i] = ast.NewObjectNode(map[string]ast.SchemaNode{
			"key":   ast.NewLiteralNode(f.Name, zeroPos),
			"value": ast.NewLiteralNode(f.Value, zeroPos),
		}, zeroPos)
	}
	return ast.NewArrayDataNode(elements, zeroPos)
}

// NodeToHead converts an AST ObjectNode back to a request head.
func NodeToHead(node ast.SchemaNode) (*fastparser.Head, error) {
	obj, ok := node.(*ast.ObjectNode)
	if !ok {
		return nil, fmt.Errorf("expected ObjectNode, got %T", node)
	}

	props := obj.Properties()
	if typ := literalString(props["type"]); typ != "request" {
		return nil, fmt.Errorf("expected type \"request\", got %q", typ)
	}

	h := &fastparser.Head{
		Method:  literalString(props["method"]),
		Target:  literalString(props["target"]),
		Version: literalString(props["version"]),
	}
	if v, ok := props["headers"]; ok {
		fields, err := nodeToFields(v)
		if err != nil {
			return nil, err
		}
		h.Fields = fields
	}
	return h, nil
}

func nodeToFields(node ast.SchemaNode) ([]fastparser.Field, error) {
	arr, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, fmt.Errorf("expected ArrayDataNode for headers, got %T", node)
	}

	elements := arr.Elements()
	fields := make([]fastparser.Field, 0, len(elements))
	for _, elem := range elements {
		obj, ok := elem.(*ast.ObjectNode)
		if !ok {
			continue
		}
		props := obj.Properties()
		fields = append(fields, fastparser.Field{
			Name:  literalString(props["key"]),
			Value: literalString(props["value"]),
		})
	}
	return fields, nil
}

// literalString returns the string value of a LiteralNode, or "" for
// missing or non-string nodes.
func literalString(node ast.SchemaNode) string {
	lit, ok := node.(*ast.LiteralNode)
	if !ok {
		return ""
	}
	s, _ := lit.Value().(string)
	return s
}
