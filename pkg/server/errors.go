package server

import (
	"errors"
	"io"

	"github.com/shapestone/shape-httpd/pkg/http"
)

// ErrServerClosed is returned by Serve and ListenAndServe after Shutdown or
// Close.
var ErrServerClosed = errors.New("server: Server closed")

// StatusForError returns the status code sent back for a decoding error, or
// 0 when nothing should be written: the peer hung up or the transport failed.
func StatusForError(err error) int {
	switch http.KindOf(err) {
	case http.ErrMalformedLine, http.ErrMalformedRequestLine, http.ErrMalformedHeader, http.ErrInvalidTarget:
		return http.StatusBadRequest
	case http.ErrInvalidMethod:
		return http.StatusNotImplemented
	case http.ErrInvalidProtocol:
		return http.StatusHTTPVersionNotSupported
	case http.ErrHeadersTooLarge:
		return http.StatusRequestHeaderFieldsTooLarge
	default:
		return 0
	}
}

// isSilentClose reports whether err means the peer closed the connection
// cleanly before sending the first byte of a request.
func isSilentClose(err error) bool {
	var pe *http.ParseError
	return errors.As(err, &pe) && pe.Kind == http.ErrUnexpectedEOF && pe.Line == 1 && errors.Is(err, io.EOF)
}
