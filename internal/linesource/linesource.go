// Package linesource decodes text lines from a byte stream for the HTTP/1.1
// request head decoder. It hides buffering and transport details behind a
// single NextLine operation.
package linesource

import (
	"bufio"
	"errors"
	"io"
)

// DefaultMaxLineBytes bounds a single line when no limit is configured.
const DefaultMaxLineBytes = 8 << 10

// ErrLineTooLong is returned when a line exceeds the configured maximum
// before its terminator arrives.
var ErrLineTooLong = errors.New("linesource: line too long")

// Source yields one decoded line at a time, without its terminator.
//
// NextLine returns io.EOF when the stream ends cleanly before the first byte
// of a new line, and io.ErrUnexpectedEOF when it ends in the middle of one.
// An empty string with a nil error is an empty line.
type Source interface {
	NextLine() (string, error)
}

// Reader is a Source over an io.Reader. Both "\r\n" and bare "\n" end a
// line. A Reader is not safe for concurrent use.
type Reader struct {
	br   *bufio.Reader
	max  int
	line int
}

// New returns a Reader over r that rejects lines longer than maxLineBytes
// (terminator excluded). A non-positive maxLineBytes selects
// DefaultMaxLineBytes. If r is already a *bufio.Reader it is used directly.
func New(r io.Reader, maxLineBytes int) *Reader {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, 4<<10)
	}
	return &Reader{br: br, max: maxLineBytes}
}

// Line returns the number of lines returned so far.
func (r *Reader) Line() int { return r.line }

// NextLine reads the next line. Memory use is bounded by the line limit
// plus the buffer size: oversized lines fail before they are fully read.
func (r *Reader) NextLine() (string, error) {
	var buf []byte
	for {
		frag, err := r.br.ReadSlice('\n')
		switch {
		case err == nil:
			var line []byte
			if buf == nil {
				line = frag
			} else {
				buf = append(buf, frag...)
				line = buf
			}
			line = trimTerminator(line)
			if len(line) > r.max {
				return "", ErrLineTooLong
			}
			r.line++
			return string(line), nil

		case errors.Is(err, bufio.ErrBufferFull):
			buf = append(buf, frag...)
			// One trailing '\r' may still turn out to be part of "\r\n".
			if len(buf) > r.max+1 {
				return "", ErrLineTooLong
			}

		case errors.Is(err, io.EOF):
			if len(buf)+len(frag) == 0 {
				return "", io.EOF
			}
			return "", io.ErrUnexpectedEOF

		default:
			return "", err
		}
	}
}

// trimTerminator strips a trailing "\n" and at most one preceding "\r".
func trimTerminator(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
		if n := len(b); n > 0 && b[n-1] == '\r' {
			b = b[:n-1]
		}
	}
	return b
}

var _ Source = (*Reader)(nil)
