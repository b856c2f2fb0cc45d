package http

import "strconv"

// Status codes used by the server.
const (
	StatusOK                          = 200
	StatusNoContent                   = 204
	StatusBadRequest                  = 400
	StatusNotFound                    = 404
	StatusMethodNotAllowed            = 405
	StatusRequestTimeout              = 408
	StatusRequestHeaderFieldsTooLarge = 431
	StatusInternalServerError         = 500
	StatusNotImplemented              = 501
	StatusServiceUnavailable          = 503
	StatusHTTPVersionNotSupported     = 505
)

var statusText = map[int]string{
	StatusOK:                          "OK",
	StatusNoContent:                   "No Content",
	StatusBadRequest:                  "Bad Request",
	StatusNotFound:                    "Not Found",
	StatusMethodNotAllowed:            "Method Not Allowed",
	StatusRequestTimeout:              "Request Timeout",
	StatusRequestHeaderFieldsTooLarge: "Request Header Fields Too Large",
	StatusInternalServerError:         "Internal Server Error",
	StatusNotImplemented:              "Not Implemented",
	StatusServiceUnavailable:          "Service Unavailable",
	StatusHTTPVersionNotSupported:     "HTTP Version Not Supported",
}

// StatusText returns the reason phrase for code, or "" if unknown.
func StatusText(code int) string {
	return statusText[code]
}

// NewResponse builds a complete HTTP/1.1 response that closes the
// connection after it is sent. contentType is omitted when empty.
func NewResponse(code int, contentType string, body []byte) *Response {
	resp := &Response{
		Version:    Version11,
		StatusCode: code,
		Reason:     StatusText(code),
		Body:       body,
	}
	if contentType != "" {
		resp.Headers.Add("Content-Type", contentType)
	}
	resp.Headers.Add("Content-Length", strconv.Itoa(len(body)))
	resp.Headers.Add("Connection", "close")
	return resp
}

// ErrorResponse returns the serialized plain-text response for code with
// the reason phrase as body.
func ErrorResponse(code int) []byte {
	text := StatusText(code)
	if text == "" {
		text = "Error"
	}
	data, err := Marshal(NewResponse(code, "text/plain; charset=utf-8", []byte(text+"\n")))
	if err != nil {
		// Only reachable for codes outside 100-999.
		return []byte("HTTP/1.1 500 Internal Server Error\r\nContent-Length: 0\r\nConnection: close\r\n\r\n")
	}
	return data
}
