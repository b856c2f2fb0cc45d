package http

import (
	"bytes"
	"fmt"
)

// Unmarshal decodes the request head in data and stores the result in v.
//
// v must be a *Request or implement Unmarshaler.
//
// # Authentication
//
// Authentication headers are decoded as ordinary fields and are available
// via req.Headers.Get:
//
//	req.Headers.Get("Authorization") // "Bearer eyJhbGci..."
//	req.Headers.Get("X-API-Key")     // "abc123def456"
//
// Query-string API keys stay part of the target:
//
//	// GET /api/users?api_key=abc123 HTTP/1.1  →  req.Target.String() = "/api/users?api_key=abc123"
func Unmarshal(data []byte, v interface{}) error {
	if v == nil {
		return fmt.Errorf("http: Unmarshal(nil)")
	}

	// Check for Unmarshaler interface
	if u, ok := v.(Unmarshaler); ok {
		return u.UnmarshalHTTP(data)
	}

	target, ok := v.(*Request)
	if !ok {
		return fmt.Errorf("http: Unmarshal unsupported type %T (expected *Request)", v)
	}
	req, err := UnmarshalRequest(data)
	if err != nil {
		return err
	}
	*target = *req
	return nil
}

// UnmarshalRequest decodes data as a request head with default limits.
func UnmarshalRequest(data []byte) (*Request, error) {
	return DecodeRequest(bytes.NewReader(data))
}
