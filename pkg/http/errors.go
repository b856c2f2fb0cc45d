package http

import (
	"errors"
	"fmt"
	"io"

	"github.com/shapestone/shape-httpd/internal/linesource"
)

// ErrorKind classifies a decoding failure. Every kind is itself an error so
// callers can match with errors.Is(err, http.ErrInvalidMethod).
type ErrorKind int

const (
	// ErrUnexpectedEOF: the stream ended where more data was required.
	ErrUnexpectedEOF ErrorKind = iota + 1
	// ErrMalformedLine: a line exceeded the configured maximum length.
	ErrMalformedLine
	// ErrMalformedRequestLine: the start line is not METHOD SP TARGET SP VERSION.
	ErrMalformedRequestLine
	// ErrMalformedHeader: a header line has no colon or an invalid field name.
	ErrMalformedHeader
	ErrInvalidMethod
	ErrInvalidProtocol
	ErrInvalidTarget
	// ErrHeadersTooLarge: the header block exceeded a count or byte bound.
	ErrHeadersTooLarge
	// ErrIO: the underlying transport failed. Always fatal to the connection.
	ErrIO
)

func (k ErrorKind) Error() string {
	switch k {
	case ErrUnexpectedEOF:
		return "unexpected EOF"
	case ErrMalformedLine:
		return "malformed line"
	case ErrMalformedRequestLine:
		return "malformed request line"
	case ErrMalformedHeader:
		return "malformed header"
	case ErrInvalidMethod:
		return "invalid method"
	case ErrInvalidProtocol:
		return "invalid protocol version"
	case ErrInvalidTarget:
		return "invalid request target"
	case ErrHeadersTooLarge:
		return "headers too large"
	case ErrIO:
		return "i/o error"
	default:
		return fmt.Sprintf("unknown error kind %d", int(k))
	}
}

// String returns a stable identifier suitable for log fields.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnexpectedEOF:
		return "unexpected_eof"
	case ErrMalformedLine:
		return "malformed_line"
	case ErrMalformedRequestLine:
		return "malformed_request_line"
	case ErrMalformedHeader:
		return "malformed_header"
	case ErrInvalidMethod:
		return "invalid_method"
	case ErrInvalidProtocol:
		return "invalid_protocol"
	case ErrInvalidTarget:
		return "invalid_target"
	case ErrHeadersTooLarge:
		return "headers_too_large"
	case ErrIO:
		return "io_error"
	default:
		return "unknown"
	}
}

// ParseError represents an error that occurred while decoding a request.
type ParseError struct {
	Kind    ErrorKind
	Message string // human-readable detail (may be empty)
	Line    int    // 1-indexed line number where error occurred (0 if unknown)
	Err     error  // underlying cause, if any
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("http: parse error at line %d: %s", e.Line, msg)
	}
	return "http: " + msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the ErrorKind carried by err, or 0 if err is not a
// decoding error.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	var k ErrorKind
	if errors.As(err, &k) {
		return k
	}
	return 0
}

func newParseError(kind ErrorKind, line int, format string, args ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

// lineError classifies an error returned by a LineSource. An over-long line
// is ErrMalformedLine wherever it occurs in the request head.
func lineError(err error, line int) error {
	var pe *ParseError
	switch {
	case errors.As(err, &pe):
		return err
	case errors.Is(err, linesource.ErrLineTooLong):
		return &ParseError{Kind: ErrMalformedLine, Line: line, Err: err}
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return &ParseError{Kind: ErrUnexpectedEOF, Line: line, Err: err}
	default:
		return &ParseError{Kind: ErrIO, Line: line, Err: err}
	}
}

// lineCounter is implemented by line sources that track their own
// position, such as *linesource.Reader.
type lineCounter interface {
	Line() int
}

// nextLine reads one line from src and returns it with its 1-based line
// number. prev is the number of the previous line; it is used when src
// does not count lines itself.
func nextLine(src LineSource, prev int) (string, int, error) {
	s, err := src.NextLine()
	lc, ok := src.(lineCounter)
	switch {
	case !ok:
		return s, prev + 1, err
	case err != nil:
		// The failed line was never counted.
		return s, lc.Line() + 1, err
	default:
		return s, lc.Line(), nil
	}
}

// atLine stamps a line number onto a ParseError that has none.
func atLine(err error, line int) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Line == 0 {
		pe.Line = line
	}
	return err
}
