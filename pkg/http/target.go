package http

import (
	"net"
	"net/url"
	"strconv"
	"strings"
)

// TargetForm is the request-target form of RFC 9112 §3.2.
type TargetForm uint8

const (
	OriginForm    TargetForm = iota // "/path?query"
	AbsoluteForm                    // "http://host/path"
	AuthorityForm                   // "host:port", CONNECT only
	AsteriskForm                    // "*", OPTIONS only
)

func (f TargetForm) String() string {
	switch f {
	case OriginForm:
		return "origin"
	case AbsoluteForm:
		return "absolute"
	case AuthorityForm:
		return "authority"
	case AsteriskForm:
		return "asterisk"
	default:
		return "unknown"
	}
}

// Target is a request-target. Origin and absolute forms are resolved
// against a fixed base authority so both parse into a full URL.
type Target struct {
	Raw  string     // exactly as received
	URL  *url.URL   // resolved URL; Host only for authority form, nil for asterisk form
	Form TargetForm
}

// baseURL is the implicit authority for origin-form targets.
var baseURL = &url.URL{Scheme: "http", Host: "localhost", Path: "/"}

// String returns the target as a request would carry it after
// normalization: the request-URI for origin form, the full URL for absolute
// form, host:port for authority form, and "*" for asterisk form.
func (t Target) String() string {
	switch {
	case t.Form == AsteriskForm:
		return "*"
	case t.URL == nil:
		return t.Raw
	case t.Form == AuthorityForm:
		return t.URL.Host
	case t.Form == AbsoluteForm:
		return t.URL.String()
	default:
		return t.URL.RequestURI()
	}
}

// Path returns the decoded path of the resolved URL, or "" when the target
// has no path (authority and asterisk forms).
func (t Target) Path() string {
	if t.URL == nil || t.Form == AuthorityForm {
		return ""
	}
	return t.URL.Path
}

// ParseTarget resolves a raw request-target for method m. Failures are
// reported as ErrInvalidTarget. Dot-segments are removed during resolution,
// but a target whose ".." segments would climb above the root is rejected
// rather than clamped.
func ParseTarget(m Method, raw string) (Target, error) {
	switch {
	case raw == "":
		return Target{}, newParseError(ErrInvalidTarget, 0, "empty target")

	case raw == "*":
		if m != MethodOptions {
			return Target{}, newParseError(ErrInvalidTarget, 0, "asterisk-form is only allowed with OPTIONS")
		}
		return Target{Raw: raw, Form: AsteriskForm}, nil

	case m == MethodConnect:
		return parseAuthorityTarget(raw)

	case strings.IndexByte(raw, '#') >= 0:
		return Target{}, newParseError(ErrInvalidTarget, 0, "fragment in target %q", raw)

	case raw[0] == '/':
		ref, err := url.ParseRequestURI(raw)
		if err != nil {
			return Target{}, &ParseError{Kind: ErrInvalidTarget, Err: err}
		}
		if escapesRoot(ref.Path) {
			return Target{}, newParseError(ErrInvalidTarget, 0, "target %q escapes the root", raw)
		}
		return Target{Raw: raw, URL: baseURL.ResolveReference(ref), Form: OriginForm}, nil

	default:
		u, err := url.Parse(raw)
		if err != nil {
			return Target{}, &ParseError{Kind: ErrInvalidTarget, Err: err}
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return Target{}, newParseError(ErrInvalidTarget, 0, "unsupported target %q", raw)
		}
		if u.Host == "" || u.Opaque != "" {
			return Target{}, newParseError(ErrInvalidTarget, 0, "absolute target %q has no authority", raw)
		}
		if u.User != nil {
			return Target{}, newParseError(ErrInvalidTarget, 0, "userinfo in target")
		}
		if escapesRoot(u.Path) {
			return Target{}, newParseError(ErrInvalidTarget, 0, "target %q escapes the root", raw)
		}
		return Target{Raw: raw, URL: baseURL.ResolveReference(u), Form: AbsoluteForm}, nil
	}
}

func parseAuthorityTarget(raw string) (Target, error) {
	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return Target{}, &ParseError{Kind: ErrInvalidTarget, Err: err}
	}
	if host == "" {
		return Target{}, newParseError(ErrInvalidTarget, 0, "authority %q has no host", raw)
	}
	if n, err := strconv.ParseUint(port, 10, 16); err != nil || n == 0 {
		return Target{}, newParseError(ErrInvalidTarget, 0, "authority %q has invalid port", raw)
	}
	if strings.ContainsAny(host, "/?#@ ") {
		return Target{}, newParseError(ErrInvalidTarget, 0, "invalid authority %q", raw)
	}
	return Target{Raw: raw, URL: &url.URL{Host: raw}, Form: AuthorityForm}, nil
}

// escapesRoot reports whether removing dot-segments from path would need to
// pop above the root. Empty segments count as path depth, as in RFC 3986
// §5.2.4.
func escapesRoot(path string) bool {
	depth := 0
	for _, seg := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		switch seg {
		case ".":
		case "..":
			depth--
			if depth < 0 {
				return true
			}
		default:
			depth++
		}
	}
	return false
}
