package fastparser

// String interning for common lower-cased header names.
//
// The Go compiler optimizes map lookups with string([]byte) keys
// to avoid allocating the temporary string (the mapaccess optimization).
// This means internLowerName is zero-alloc for known names that arrive in
// any letter case, as long as they fit the stack buffer.

var headerNames = map[string]string{}

func init() {
	for _, n := range []string{
		"accept", "accept-charset", "accept-encoding", "accept-language",
		"authorization", "cache-control", "connection", "content-encoding",
		"content-language", "content-length", "content-type", "cookie",
		"date", "expect", "forwarded", "from", "host", "if-match",
		"if-modified-since", "if-none-match", "if-range",
		"if-unmodified-since", "max-forwards", "origin", "pragma",
		"proxy-authorization", "range", "referer", "te", "trailer",
		"transfer-encoding", "upgrade", "user-agent", "via",
		"x-forwarded-for", "x-forwarded-host", "x-forwarded-proto",
		"x-request-id", "x-real-ip",
	} {
		headerNames[n] = n
	}
}

// internLowerName returns the lower-cased form of name, interned when it is
// a well-known header.
func internLowerName(name string) string {
	var stack [64]byte
	var b []byte
	if len(name) <= len(stack) {
		b = stack[:len(name)]
	} else {
		b = make([]byte, len(name))
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	if s, ok := headerNames[string(b)]; ok {
		return s
	}
	return string(b)
}
