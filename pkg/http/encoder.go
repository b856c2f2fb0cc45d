package http

import (
	"fmt"
	"strconv"
	"strings"
)

// appendRequest serializes a Request head to HTTP/1.1 wire format.
// It appends "METHOD TARGET VERSION\r\n" followed by headers and the empty line.
func appendRequest(buf []byte, req *Request) ([]byte, error) {
	if req.Method == 0 || int(req.Method) >= len(methodNames) {
		return nil, &ParseError{Kind: ErrInvalidMethod, Message: "request method is not set"}
	}
	target := req.Target.Raw
	if target == "" {
		target = req.Target.String()
	}
	if target == "" {
		return nil, &ParseError{Kind: ErrInvalidTarget, Message: "request target is empty"}
	}

	version := req.Version
	if version == "" {
		version = Version11
	}

	buf = appendRequestLine(buf, req.Method.String(), target, version)
	buf = appendHeaders(buf, req.Headers)
	return appendCRLF(buf), nil
}

// appendResponse serializes a Response to HTTP/1.1 wire format.
// It appends "VERSION STATUS REASON\r\n" followed by headers and body.
func appendResponse(buf []byte, resp *Response) ([]byte, error) {
	if resp.StatusCode < 100 || resp.StatusCode > 999 {
		return nil, fmt.Errorf("http: invalid status code %d", resp.StatusCode)
	}

	version := resp.Version
	if version == "" {
		version = Version11
	}
	reason := resp.Reason
	if reason == "" {
		reason = StatusText(resp.StatusCode)
	}

	buf = appendStatusLine(buf, version, resp.StatusCode, reason)
	buf = appendHeaders(buf, resp.Headers)

	// Auto-set Content-Length if body present and header absent
	if len(resp.Body) > 0 && !resp.Headers.Has("Content-Length") {
		buf = append(buf, "Content-Length: "...)
		buf = strconv.AppendInt(buf, int64(len(resp.Body)), 10)
		buf = appendCRLF(buf)
	}

	buf = appendCRLF(buf) // empty line before body
	if len(resp.Body) > 0 {
		buf = append(buf, resp.Body...)
	}

	return buf, nil
}

// appendHeaders appends all headers in "Key: Value\r\n" format. CR, LF and
// other control bytes in keys and values are dropped so a header can never
// split the message.
func appendHeaders(buf []byte, headers Headers) []byte {
	for _, h := range headers {
		buf = appendSanitized(buf, h.Key)
		buf = append(buf, ':', ' ')
		buf = appendSanitized(buf, h.Value)
		buf = appendCRLF(buf)
	}
	return buf
}

// appendSanitized appends s without CR, LF, DEL and control bytes other
// than HTAB.
func appendSanitized(buf []byte, s string) []byte {
	if !strings.ContainsFunc(s, isCTL) {
		return append(buf, s...)
	}
	for i := 0; i < len(s); i++ {
		if c := s[i]; !isCTL(rune(c)) {
			buf = append(buf, c)
		}
	}
	return buf
}

func isCTL(r rune) bool {
	return (r < 0x20 && r != '\t') || r == 0x7f
}
