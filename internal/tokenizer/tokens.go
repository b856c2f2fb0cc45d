// Package tokenizer splits HTTP/1.1 start lines using Shape's tokenizer
// framework.
package tokenizer

// Token type constants for the request start line. Lines reach the
// tokenizer with their terminator already removed, so only two kinds exist.
const (
	TokenSP   = "SP"   // single space separator
	TokenWord = "Word" // maximal run of non-SP characters (method, target, version)
)
