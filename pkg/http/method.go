package http

import "strconv"

// Method is one of the request methods this decoder accepts. The set is
// closed: a token outside it never becomes a Method value.
type Method uint8

const (
	MethodOptions Method = iota + 1
	MethodGet
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodTrace
	MethodConnect
)

var methodNames = [...]string{
	MethodOptions: "OPTIONS",
	MethodGet:     "GET",
	MethodHead:    "HEAD",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodTrace:   "TRACE",
	MethodConnect: "CONNECT",
}

// Methods returns every accepted method in declaration order.
func Methods() []Method {
	return []Method{
		MethodOptions, MethodGet, MethodHead, MethodPost,
		MethodPut, MethodDelete, MethodTrace, MethodConnect,
	}
}

// ParseMethod maps a method token to a Method. Matching is exact and
// case-sensitive; any other token fails with ErrInvalidMethod.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "OPTIONS":
		return MethodOptions, nil
	case "GET":
		return MethodGet, nil
	case "HEAD":
		return MethodHead, nil
	case "POST":
		return MethodPost, nil
	case "PUT":
		return MethodPut, nil
	case "DELETE":
		return MethodDelete, nil
	case "TRACE":
		return MethodTrace, nil
	case "CONNECT":
		return MethodConnect, nil
	}
	return 0, newParseError(ErrInvalidMethod, 0, "%q", s)
}

// String returns the wire token for m.
func (m Method) String() string {
	if m == 0 || int(m) >= len(methodNames) {
		return "Method(" + strconv.Itoa(int(m)) + ")"
	}
	return methodNames[m]
}
