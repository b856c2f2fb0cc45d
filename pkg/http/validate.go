package http

import (
	"io"
	"strings"
)

// Validate checks that input starts with a valid HTTP/1.1 request head:
// request line, header fields, and the terminating empty line. Bytes after
// the head are not examined.
// Returns nil if valid, or a *ParseError identifying the problem.
func Validate(input string) error {
	return ValidateReader(strings.NewReader(input))
}

// ValidateReader reads a request head from r and validates it.
// See Validate for the validation semantics.
func ValidateReader(r io.Reader) error {
	_, err := DecodeRequest(r)
	return err
}
