package http

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestDecoder_Request(t *testing.T) {
	data := "GET /hello HTTP/1.1\r\nHost: x\r\n\r\n"
	req, err := NewDecoder(strings.NewReader(data), Limits{}).Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if req.Method != MethodGet {
		t.Errorf("Method = %v, want GET", req.Method)
	}
	if req.Target.String() != "/hello" {
		t.Errorf("Target = %q, want /hello", req.Target.String())
	}
	if req.Version != "HTTP/1.1" {
		t.Errorf("Version = %q, want HTTP/1.1", req.Version)
	}
	if len(req.Headers) != 1 || req.Headers[0] != (Header{Key: "host", Value: "x"}) {
		t.Errorf("Headers = %v, want [host: x]", req.Headers)
	}
}

func TestDecoder_NoHeaders(t *testing.T) {
	req, err := DecodeRequest(strings.NewReader("GET / HTTP/1.1\r\n\r\n"))
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if len(req.Headers) != 0 {
		t.Errorf("Headers = %v, want empty", req.Headers)
	}
}

func TestDecoder_BareLF(t *testing.T) {
	req, err := DecodeRequest(strings.NewReader("POST /submit HTTP/1.1\nHost: x\nContent-Length: 3\n\n"))
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if req.Method != MethodPost {
		t.Errorf("Method = %v, want POST", req.Method)
	}
	if req.Headers.ContentLength() != 3 {
		t.Errorf("ContentLength() = %d, want 3", req.Headers.ContentLength())
	}
}

func TestDecoder_OneByteReads(t *testing.T) {
	data := "GET /a/b?c=d HTTP/1.1\r\nHost: example.com\r\nAccept: */*\r\nX-Fold: one\r\n two\r\n\r\n"
	whole, err := DecodeRequest(strings.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	chunked, err := DecodeRequest(iotest.OneByteReader(strings.NewReader(data)))
	if err != nil {
		t.Fatalf("DecodeRequest(OneByteReader) error = %v", err)
	}
	halves, err := DecodeRequest(iotest.HalfReader(strings.NewReader(data)))
	if err != nil {
		t.Fatalf("DecodeRequest(HalfReader) error = %v", err)
	}

	for _, got := range []*Request{chunked, halves} {
		if got.Method != whole.Method || got.Target.String() != whole.Target.String() || got.Version != whole.Version {
			t.Errorf("request line = %v %s %s, want %v %s %s",
				got.Method, got.Target, got.Version, whole.Method, whole.Target, whole.Version)
		}
		if len(got.Headers) != len(whole.Headers) {
			t.Fatalf("Headers = %v, want %v", got.Headers, whole.Headers)
		}
		for i := range whole.Headers {
			if got.Headers[i] != whole.Headers[i] {
				t.Errorf("header[%d] = %+v, want %+v", i, got.Headers[i], whole.Headers[i])
			}
		}
	}
}

func TestDecoder_LeavesBodyUnread(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("POST / HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"))
	if _, err := NewDecoder(br, Limits{}).Decode(); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	rest, err := io.ReadAll(br)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(rest) != "hello" {
		t.Errorf("remaining = %q, want hello", rest)
	}
}

func TestDecoder_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		limits   Limits
		want     ErrorKind
		wantLine int
	}{
		{"bogus method", "BOGUS / HTTP/1.1\r\n\r\n", Limits{}, ErrInvalidMethod, 1},
		{"two tokens", "GET /\r\n\r\n", Limits{}, ErrMalformedRequestLine, 1},
		{"empty start line", "\r\n", Limits{}, ErrMalformedRequestLine, 1},
		{"bad version", "GET / HTTP/1.0\r\n\r\n", Limits{}, ErrInvalidProtocol, 1},
		{"bad target", "GET http://a.example/../x HTTP/1.1\r\n\r\n", Limits{}, ErrInvalidTarget, 1},
		{"empty stream", "", Limits{}, ErrUnexpectedEOF, 1},
		{"partial start line", "GET / HTTP/1.1", Limits{}, ErrUnexpectedEOF, 1},
		{"no terminator", "GET / HTTP/1.1\r\nHost: x\r\n", Limits{}, ErrUnexpectedEOF, 3},
		{"partial header", "GET / HTTP/1.1\r\nHost: x", Limits{}, ErrUnexpectedEOF, 2},
		{"bad header", "GET / HTTP/1.1\r\nHost x\r\n\r\n", Limits{}, ErrMalformedHeader, 2},
		{"long start line", "GET /" + strings.Repeat("a", 64) + " HTTP/1.1\r\n\r\n", Limits{MaxLineBytes: 32}, ErrMalformedLine, 1},
		{"long header line", "GET / HTTP/1.1\r\nX: " + strings.Repeat("a", 64) + "\r\n\r\n", Limits{MaxLineBytes: 32}, ErrMalformedLine, 2},
		{"header count", "GET / HTTP/1.1\r\nA: 1\r\nB: 2\r\n\r\n", Limits{MaxHeaderCount: 1}, ErrHeadersTooLarge, 3},
		{"header bytes", "GET / HTTP/1.1\r\nA: 1234\r\nB: 5678\r\n\r\n", Limits{MaxHeaderBytes: 10}, ErrHeadersTooLarge, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(strings.NewReader(tt.data), tt.limits).Decode()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.want)
			}
			if KindOf(err) != tt.want {
				t.Errorf("KindOf() = %v, want %v", KindOf(err), tt.want)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Decode() error %T is not *ParseError", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", pe.Line, tt.wantLine)
			}
		})
	}
}

func TestDecoder_EOFDistinction(t *testing.T) {
	// A peer that sends nothing is distinguishable from one that stops mid-line.
	_, err := DecodeRequest(strings.NewReader(""))
	if !errors.Is(err, io.EOF) {
		t.Errorf("empty stream error = %v, want io.EOF cause", err)
	}

	_, err = DecodeRequest(strings.NewReader("GET / HT"))
	if errors.Is(err, io.EOF) {
		t.Errorf("partial line error = %v, want no io.EOF cause", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("partial line error = %v, want io.ErrUnexpectedEOF cause", err)
	}

	// A line that arrived but is malformed is not an EOF at all.
	_, err = DecodeRequest(strings.NewReader("GET\r\n\r\n"))
	if errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("malformed line error = %v, want no ErrUnexpectedEOF", err)
	}
}

func TestDecoder_IOError(t *testing.T) {
	cause := errors.New("connection reset by peer")
	r := io.MultiReader(strings.NewReader("GET / HTTP/1.1\r\nHost: x\r\n"), iotest.ErrReader(cause))

	_, err := DecodeRequest(r)
	if !errors.Is(err, ErrIO) {
		t.Fatalf("DecodeRequest() error = %v, want ErrIO", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("DecodeRequest() error = %v, want cause %v", err, cause)
	}
}

func TestDecoder_Versions(t *testing.T) {
	limits := Limits{Versions: []string{"HTTP/1.0", "HTTP/1.1"}}
	req, err := NewDecoder(strings.NewReader("GET / HTTP/1.0\r\n\r\n"), limits).Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if req.Version != "HTTP/1.0" {
		t.Errorf("Version = %q, want HTTP/1.0", req.Version)
	}
}

func TestDecoder_SourceDecoder(t *testing.T) {
	src := &sliceSource{lines: []string{"DELETE /item/42 HTTP/1.1", "Host: example.com", ""}}
	req, err := NewSourceDecoder(src, Limits{}).Decode()
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if req.Method != MethodDelete || req.Target.Path() != "/item/42" {
		t.Errorf("Decode() = %v %s, want DELETE /item/42", req.Method, req.Target)
	}
}

// countingSource reports its own line numbers, starting after offset.
type countingSource struct {
	sliceSource
	n int
}

func (s *countingSource) NextLine() (string, error) {
	line, err := s.sliceSource.NextLine()
	if err == nil {
		s.n++
	}
	return line, err
}

func (s *countingSource) Line() int { return s.n }

func TestDecoder_SourceLineNumbers(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		err   error
		kind  ErrorKind
		line  int
	}{
		{"bad request line", []string{"GET /"}, nil, ErrMalformedRequestLine, 11},
		{"bad header", []string{"GET / HTTP/1.1", "A: 1", "Host x", ""}, nil, ErrMalformedHeader, 13},
		{"truncated", []string{"GET / HTTP/1.1", "A: 1"}, io.ErrUnexpectedEOF, ErrUnexpectedEOF, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &countingSource{sliceSource: sliceSource{lines: tt.lines, err: tt.err}, n: 10}
			_, err := NewSourceDecoder(src, Limits{}).Decode()
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Decode() error = %v, want *ParseError", err)
			}
			if pe.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", pe.Kind, tt.kind)
			}
			if pe.Line != tt.line {
				t.Errorf("Line = %d, want %d", pe.Line, tt.line)
			}
		})
	}
}

func TestDecoder_LongHeaderLineDefaults(t *testing.T) {
	data := "GET / HTTP/1.1\r\nX-Big: " + strings.Repeat("b", 9<<10) + "\r\n\r\n"
	_, err := DecodeRequest(strings.NewReader(data))
	if !errors.Is(err, ErrMalformedLine) {
		t.Fatalf("DecodeRequest() error = %v, want ErrMalformedLine", err)
	}
	if errors.Is(err, ErrHeadersTooLarge) {
		t.Errorf("DecodeRequest() error = %v, must not match ErrHeadersTooLarge", err)
	}
	if KindOf(err) != ErrMalformedLine {
		t.Errorf("KindOf() = %v, want %v", KindOf(err), ErrMalformedLine)
	}
}

func TestParseError_Error(t *testing.T) {
	tests := []struct {
		err  *ParseError
		want string
	}{
		{
			&ParseError{Kind: ErrInvalidMethod, Line: 1, Message: `"BOGUS"`},
			`http: parse error at line 1: invalid method: "BOGUS"`,
		},
		{
			&ParseError{Kind: ErrIO, Line: 2, Err: errors.New("reset")},
			"http: parse error at line 2: i/o error: reset",
		},
		{
			&ParseError{Kind: ErrInvalidTarget},
			"http: invalid request target",
		},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestErrorKind_String(t *testing.T) {
	kinds := []ErrorKind{
		ErrUnexpectedEOF, ErrMalformedLine, ErrMalformedRequestLine, ErrMalformedHeader,
		ErrInvalidMethod, ErrInvalidProtocol, ErrInvalidTarget, ErrHeadersTooLarge, ErrIO,
	}
	seen := make(map[string]bool)
	for _, k := range kinds {
		s := k.String()
		if s == "unknown" || seen[s] {
			t.Errorf("ErrorKind(%d).String() = %q, want unique identifier", int(k), s)
		}
		seen[s] = true
	}
	if KindOf(errors.New("other")) != 0 {
		t.Error("KindOf(non-decoding error) != 0")
	}
	if KindOf(ErrHeadersTooLarge) != ErrHeadersTooLarge {
		t.Error("KindOf(ErrHeadersTooLarge) mismatch")
	}
}
