package http

import (
	"io"

	"github.com/shapestone/shape-httpd/internal/linesource"
)

// LineSource yields decoded text lines, terminator excluded. NextLine
// returns io.EOF when the stream ends cleanly before a new line starts and
// io.ErrUnexpectedEOF when it ends mid-line; an empty string with a nil
// error is an empty line.
type LineSource interface {
	NextLine() (string, error)
}

// Decoder reads one HTTP/1.1 request head from a line source.
// A single Decoder is not safe for concurrent use; create one per
// connection.
type Decoder struct {
	src    LineSource
	line   RequestLineParser
	header HeaderParser
}

// NewDecoder returns a decoder that reads from r with the given limits.
// Zero fields of limits select the defaults.
func NewDecoder(r io.Reader, limits Limits) *Decoder {
	limits = limits.withDefaults()
	return NewSourceDecoder(linesource.New(r, limits.MaxLineBytes), limits)
}

// NewSourceDecoder returns a decoder over an existing line source. The
// source is expected to enforce limits.MaxLineBytes itself.
func NewSourceDecoder(src LineSource, limits Limits) *Decoder {
	limits = limits.withDefaults()
	return &Decoder{
		src:    src,
		line:   RequestLineParser{Versions: limits.Versions},
		header: HeaderParser{MaxCount: limits.MaxHeaderCount, MaxBytes: limits.MaxHeaderBytes},
	}
}

// Decode reads the request line and header block and assembles a Request.
// The first failure ends decoding and is returned as a *ParseError. A stream
// that ends before the request line arrives yields ErrUnexpectedEOF that
// also matches io.EOF, so callers can tell a silent peer from a truncated
// request.
func (dec *Decoder) Decode() (*Request, error) {
	start, line, err := nextLine(dec.src, 0)
	if err != nil {
		return nil, lineError(err, line)
	}

	rl, err := dec.line.Parse(start)
	if err != nil {
		return nil, atLine(err, line)
	}

	headers, err := dec.header.parse(dec.src, line)
	if err != nil {
		return nil, err
	}

	return &Request{
		Method:  rl.Method,
		Target:  rl.Target,
		Version: rl.Version,
		Headers: headers,
	}, nil
}

// DecodeRequest is a convenience wrapper that decodes one request head
// from r with default limits.
func DecodeRequest(r io.Reader) (*Request, error) {
	return NewDecoder(r, Limits{}).Decode()
}
