// Package fastparser scans individual HTTP/1.1 header field lines without
// allocating intermediate structures. It works on one line at a time; line
// framing and limits are the caller's concern.
package fastparser

import (
	"errors"
)

// Field is a header field split from one line. Name is lower-cased.
type Field struct {
	Name  string
	Value string
}

// Head is a decoded request head in plain strings, used as the interchange
// form between the public request type and the AST builder.
type Head struct {
	Method  string
	Target  string
	Version string
	Fields  []Field
}

var (
	// ErrNoColon is returned for a field line without a ':' separator.
	ErrNoColon = errors.New("missing colon")
	// ErrEmptyName is returned when nothing but whitespace precedes the colon.
	ErrEmptyName = errors.New("empty field name")
	// ErrInvalidName is returned when the field name is not an RFC 9110 token.
	ErrInvalidName = errors.New("invalid character in field name")
)

// ParseField splits a "Name: Value" line. The name is trimmed and
// lower-cased; the value is trimmed of leading and trailing SP/HTAB only,
// interior whitespace is preserved. The colon split is on the first ':'
// so values may themselves contain colons.
func ParseField(line string) (Field, error) {
	colon := -1
	for i := 0; i < len(line); i++ {
		if line[i] == ':' {
			colon = i
			break
		}
	}
	if colon < 0 {
		return Field{}, ErrNoColon
	}

	name := TrimOWS(line[:colon])
	if name == "" {
		return Field{}, ErrEmptyName
	}
	for i := 0; i < len(name); i++ {
		if !isTokenChar(name[i]) {
			return Field{}, ErrInvalidName
		}
	}

	return Field{
		Name:  internLowerName(name),
		Value: TrimOWS(line[colon+1:]),
	}, nil
}

// IsContinuation reports whether line is an obs-fold continuation of the
// previous field, i.e. it starts with SP or HTAB.
func IsContinuation(line string) bool {
	return len(line) > 0 && (line[0] == ' ' || line[0] == '\t')
}

// TrimOWS trims optional whitespace (SP and HTAB) from both ends of s.
func TrimOWS(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		s = s[:len(s)-1]
	}
	return s
}

// isTokenChar reports whether c is a tchar per RFC 9110 §5.6.2.
func isTokenChar(c byte) bool {
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// EqFold is a fast ASCII case-insensitive string comparison.
func EqFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
