package http

import (
	"strconv"

	"github.com/shapestone/shape-httpd/internal/fastparser"
)

// HeaderParser decodes the header block that follows a request line.
// Zero fields select the default bounds.
type HeaderParser struct {
	MaxCount int // maximum number of field lines
	MaxBytes int // maximum summed length of header lines, terminators excluded
}

// Parse reads field lines from src until an empty line. See parse.
func (p *HeaderParser) Parse(src LineSource) (Headers, error) {
	return p.parse(src, 0)
}

// parse reads field lines from src until an empty line. line is the number
// of lines src has already delivered, for error positions; sources that
// count their own lines override it.
//
// Names are lower-cased and duplicates merged (see Headers.Merge). obs-fold
// continuation lines are appended to the previous field's value with a
// single SP. The stream ending before the empty line is ErrUnexpectedEOF.
func (p *HeaderParser) parse(src LineSource, line int) (Headers, error) {
	maxCount, maxBytes := p.MaxCount, p.MaxBytes
	if maxCount <= 0 {
		maxCount = DefaultMaxHeaderCount
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxHeaderBytes
	}

	headers := make(Headers, 0, 8)
	count, total := 0, 0
	last := -1

	for {
		s, n, err := nextLine(src, line)
		line = n
		if err != nil {
			return nil, lineError(err, line)
		}

		// Empty line = end of headers
		if s == "" {
			return headers, nil
		}

		total += len(s)
		if total > maxBytes {
			return nil, newParseError(ErrHeadersTooLarge, line, "header block exceeds %d bytes", maxBytes)
		}

		if fastparser.IsContinuation(s) {
			if last < 0 {
				return nil, newParseError(ErrMalformedHeader, line, "continuation line without a preceding field")
			}
			if v := fastparser.TrimOWS(s); v != "" {
				if headers[last].Value == "" {
					headers[last].Value = v
				} else {
					headers[last].Value += " " + v
				}
			}
			continue
		}

		count++
		if count > maxCount {
			return nil, newParseError(ErrHeadersTooLarge, line, "more than %d header fields", maxCount)
		}

		f, err := fastparser.ParseField(s)
		if err != nil {
			return nil, &ParseError{Kind: ErrMalformedHeader, Line: line, Message: quoteLine(s), Err: err}
		}
		last = headers.Merge(f.Name, f.Value)
	}
}

// quoteLine quotes a header line for an error message, truncated to 64 bytes.
func quoteLine(s string) string {
	const limit = 64
	if len(s) > limit {
		return strconv.Quote(s[:limit]) + "..."
	}
	return strconv.Quote(s)
}
