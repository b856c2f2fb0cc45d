package http

import (
	"fmt"
	"sync"
)

// bufPool pools []byte slices for the encoder fast path.
var bufPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 1024)
		return &b
	},
}

// Marshal returns the HTTP/1.1 wire-format encoding of v.
//
// v must be a *Request or *Response. A *Request is serialized as its head
// (request line and headers, names as stored). For a *Response with a body
// and no Content-Length header, Content-Length is set automatically.
//
// Marshal uses a sync.Pool buffer internally.
func Marshal(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("http: Marshal(nil)")
	}

	// Check for Marshaler interface
	if m, ok := v.(Marshaler); ok {
		return m.MarshalHTTP()
	}

	bp := bufPool.Get().(*[]byte)
	buf := (*bp)[:0]

	var err error
	switch msg := v.(type) {
	case *Request:
		buf, err = appendRequest(buf, msg)
	case *Response:
		buf, err = appendResponse(buf, msg)
	default:
		*bp = buf
		bufPool.Put(bp)
		return nil, fmt.Errorf("http: Marshal unsupported type %T (expected *Request or *Response)", v)
	}

	if err != nil {
		*bp = buf
		bufPool.Put(bp)
		return nil, err
	}

	result := make([]byte, len(buf))
	copy(result, buf)
	*bp = buf
	bufPool.Put(bp)
	return result, nil
}
