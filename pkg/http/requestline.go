package http

import (
	"strings"

	"github.com/shapestone/shape-httpd/internal/tokenizer"
)

// RequestLine is the decoded start line of a request.
type RequestLine struct {
	Method  Method
	Target  Target
	Version string
}

// RequestLineParser decodes request start lines. The zero value accepts
// only HTTP/1.1.
type RequestLineParser struct {
	// Versions lists the accepted protocol version tokens.
	Versions []string
}

var defaultRequestLineParser = &RequestLineParser{}

// ParseRequestLine decodes line ("METHOD SP TARGET SP VERSION", terminator
// removed) accepting only HTTP/1.1.
func ParseRequestLine(line string) (RequestLine, error) {
	return defaultRequestLineParser.Parse(line)
}

// Parse decodes one start line. It has no side effects.
//
// The line is split on single spaces: the first two fields are the method
// and target, and the version is the rest of the line.
//
// Checks run in order: structure (ErrMalformedRequestLine), method
// (ErrInvalidMethod), target (ErrInvalidTarget), version (ErrInvalidProtocol).
func (p *RequestLineParser) Parse(line string) (RequestLine, error) {
	for i := 0; i < len(line); i++ {
		if c := line[i]; (c < 0x20 && c != '\t') || c >= 0x7f {
			return RequestLine{}, newParseError(ErrMalformedRequestLine, 0, "invalid byte 0x%02x at offset %d", c, i)
		}
	}

	fields, ok := tokenizer.Fields(line)
	if !ok || len(fields) < 3 {
		return RequestLine{}, newParseError(ErrMalformedRequestLine, 0, "%q", line)
	}
	// The version token runs to the end of the line, so trailing spaces or
	// extra words make it an invalid version rather than a fourth token.
	version := fields[2]
	if len(fields) > 3 {
		version = strings.Join(fields[2:], " ")
	}
	if fields[0] == "" || fields[1] == "" || version == "" {
		return RequestLine{}, newParseError(ErrMalformedRequestLine, 0, "empty token in %q", line)
	}

	method, err := ParseMethod(fields[0])
	if err != nil {
		return RequestLine{}, err
	}

	target, err := ParseTarget(method, fields[1])
	if err != nil {
		return RequestLine{}, err
	}

	if !p.acceptsVersion(version) {
		return RequestLine{}, newParseError(ErrInvalidProtocol, 0, "%q", version)
	}

	return RequestLine{Method: method, Target: target, Version: version}, nil
}

func (p *RequestLineParser) acceptsVersion(v string) bool {
	if len(p.Versions) == 0 {
		return v == Version11
	}
	for _, ok := range p.Versions {
		if v == ok {
			return true
		}
	}
	return false
}
