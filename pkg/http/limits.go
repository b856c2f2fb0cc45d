package http

import "github.com/shapestone/shape-httpd/internal/linesource"

// Version11 is the only protocol version accepted by default.
const Version11 = "HTTP/1.1"

// Default decoding bounds.
const (
	DefaultMaxLineBytes   = linesource.DefaultMaxLineBytes
	DefaultMaxHeaderCount = 100
	DefaultMaxHeaderBytes = 64 << 10
)

// Limits bounds what a Decoder accepts from a peer. Zero fields select the
// defaults.
type Limits struct {
	// MaxLineBytes caps any single line, terminator excluded.
	MaxLineBytes int
	// MaxHeaderCount caps the number of field lines in the header block.
	MaxHeaderCount int
	// MaxHeaderBytes caps the summed length of all header lines,
	// terminators excluded.
	MaxHeaderBytes int
	// Versions lists the accepted protocol version tokens, matched exactly.
	Versions []string
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxLineBytes:   DefaultMaxLineBytes,
		MaxHeaderCount: DefaultMaxHeaderCount,
		MaxHeaderBytes: DefaultMaxHeaderBytes,
		Versions:       []string{Version11},
	}
}

// withDefaults returns l with every zero field replaced by its default.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxLineBytes <= 0 {
		l.MaxLineBytes = d.MaxLineBytes
	}
	if l.MaxHeaderCount <= 0 {
		l.MaxHeaderCount = d.MaxHeaderCount
	}
	if l.MaxHeaderBytes <= 0 {
		l.MaxHeaderBytes = d.MaxHeaderBytes
	}
	if len(l.Versions) == 0 {
		l.Versions = d.Versions
	}
	return l
}
