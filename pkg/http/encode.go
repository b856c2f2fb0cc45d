package http

import (
	"io"
)

// Encoder writes HTTP messages to an output stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the HTTP wire-format encoding of v to the stream.
// v must be a *Request, a *Response or a Marshaler such as RawMessage. The
// encoding is written with a single Write call. It returns the number of bytes
// written, which is short of the full encoding only when err is non-nil.
func (enc *Encoder) Encode(v interface{}) (int, error) {
	data, err := Marshal(v)
	if err != nil {
		return 0, err
	}
	return enc.w.Write(data)
}
