package server

import (
	"context"

	"github.com/shapestone/shape-httpd/pkg/http"
)

// A Responder produces the complete wire bytes of the single response sent
// on a connection. An error makes the connection answer with a generic 500.
type Responder interface {
	Respond(ctx context.Context, req *http.Request) ([]byte, error)
}

// ResponderFunc adapts an ordinary function to a Responder.
type ResponderFunc func(ctx context.Context, req *http.Request) ([]byte, error)

// Respond calls f(ctx, req).
func (f ResponderFunc) Respond(ctx context.Context, req *http.Request) ([]byte, error) {
	return f(ctx, req)
}

// DefaultGreeting is the body sent by the default responder.
const DefaultGreeting = "Hello, Mum!"

// TextResponder answers every request with 200 and body as text/plain.
// The response is serialized once.
func TextResponder(body string) (Responder, error) {
	data, err := http.Marshal(http.NewResponse(http.StatusOK, "text/plain; charset=utf-8", []byte(body)))
	if err != nil {
		return nil, err
	}
	return ResponderFunc(func(context.Context, *http.Request) ([]byte, error) {
		return data, nil
	}), nil
}

var defaultResponder = func() Responder {
	r, err := TextResponder(DefaultGreeting)
	if err != nil {
		panic(err)
	}
	return r
}()
