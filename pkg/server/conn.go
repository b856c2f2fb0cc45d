package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime/debug"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shapestone/shape-httpd/pkg/http"
)

// aLongTimeAgo is a deadline in the past, used to abort blocked I/O.
var aLongTimeAgo = time.Unix(1, 0)

// conn serves the single request of one accepted connection.
type conn struct {
	srv   *Server
	rwc   net.Conn
	id    uuid.UUID
	log   zerolog.Logger
	state atomic.Int32
}

func (s *Server) newConn(rwc net.Conn) *conn {
	id := uuid.New()
	c := &conn{srv: s, rwc: rwc, id: id}
	c.log = s.Logger.With().
		Str("conn", id.String()).
		Str("remote", remoteAddr(rwc)).
		Logger()
	return c
}

// serve runs the connection to completion: decode, respond, close. It
// never returns an error; failures are logged and end the connection.
func (c *conn) serve(ctx context.Context) {
	start := time.Now()

	// Cancellation moves the deadline into the past, failing any blocked
	// read or write.
	stop := context.AfterFunc(ctx, func() {
		_ = c.rwc.SetDeadline(aLongTimeAgo)
	})

	defer func() {
		if err := recover(); err != nil {
			c.log.Error().
				Interface("panic", err).
				Str("stack", string(debug.Stack())).
				Msg("panic serving connection")
		}
		stop()
		c.close()
	}()

	c.setState(StateDecoding)
	c.log.Debug().Msg("connection accepted")

	req, err := c.readRequest(ctx)
	if err != nil {
		c.handleDecodeError(ctx, err)
		return
	}

	if e := c.log.Debug(); e.Enabled() {
		head, err := http.Marshal(req)
		e.Str("head", string(head)).AnErr("marshal_error", err).Msg("request decoded")
	}

	c.setState(StateResponding)
	status, n, err := c.respond(ctx, req)
	if err != nil {
		c.log.Warn().
			Err(err).
			Str("kind", http.ErrIO.String()).
			Int("bytes", n).
			Msg("write failed")
		return
	}

	c.log.Info().
		Str("method", req.Method.String()).
		Str("target", req.Target.String()).
		Int("status", status).
		Int("bytes", n).
		Dur("duration", time.Since(start)).
		Msg("request served")
}

// readRequest decodes the request head under the read timeouts.
func (c *conn) readRequest(ctx context.Context) (*http.Request, error) {
	r := &deadlineReader{ctx: ctx, conn: c.rwc, idle: c.srv.readIdleTimeout()}
	if d := c.srv.readHeaderTimeout(); d > 0 {
		r.headerDeadline = time.Now().Add(d)
	}
	return http.NewDecoder(r, c.srv.Limits).Decode()
}

// handleDecodeError logs err and, when the peer can still be told, writes
// the matching error response on a best-effort basis.
func (c *conn) handleDecodeError(ctx context.Context, err error) {
	kind := http.KindOf(err)

	switch {
	case isSilentClose(err):
		c.log.Debug().Msg("peer closed connection before sending a request")
		return
	case ctx.Err() != nil:
		c.log.Debug().Err(err).Msg("connection aborted by shutdown")
		return
	case errors.Is(err, os.ErrDeadlineExceeded):
		c.log.Info().Err(err).Str("kind", kind.String()).Msg("read timeout")
		return
	}

	code := StatusForError(err)
	c.log.Warn().
		Err(err).
		Str("kind", kind.String()).
		Int("status", code).
		Msg("request rejected")
	if code == 0 {
		return
	}

	if n, werr := c.write(ctx, http.RawMessage(http.ErrorResponse(code))); werr != nil {
		c.log.Debug().Err(werr).Int("bytes", n).Msg("error response not delivered")
	}
}

// respond obtains the response from the responder, falling back to a 500,
// and writes it. It returns the status code sent.
func (c *conn) respond(ctx context.Context, req *http.Request) (int, int, error) {
	data, err := c.srv.responder().Respond(ctx, req)
	if err == nil && len(data) == 0 {
		err = errors.New("empty response")
	}
	if err != nil {
		c.log.Error().Err(err).Msg("responder failed")
		data = http.ErrorResponse(http.StatusInternalServerError)
	}
	n, err := c.write(ctx, http.RawMessage(data))
	return statusOf(data), n, err
}

// write encodes msg onto the connection under the write timeout. A failure,
// including cancellation of ctx, is an ErrIO.
func (c *conn) write(ctx context.Context, msg interface{}) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: write: %w", http.ErrIO, err)
	}
	if d := c.srv.writeTimeout(); d > 0 {
		_ = c.rwc.SetWriteDeadline(time.Now().Add(d))
		// The refresh above may have overwritten a cancellation deadline.
		if ctx.Err() != nil {
			_ = c.rwc.SetWriteDeadline(aLongTimeAgo)
		}
	}
	n, err := http.NewEncoder(c.rwc).Encode(msg)
	if err != nil {
		return n, fmt.Errorf("%w: write: %w", http.ErrIO, err)
	}
	return n, nil
}

func (c *conn) setState(state ConnState) {
	c.state.Store(int32(state))
	if hook := c.srv.ConnStateHook; hook != nil {
		hook(c.rwc, state)
	}
}

func (c *conn) close() {
	if err := c.rwc.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		c.log.Debug().Err(err).Msg("close")
	}
	c.setState(StateClosed)
	c.srv.trackConn(c, false)
}

// deadlineReader refreshes the read deadline before every read so that
// ReadIdleTimeout measures silence, capped by the absolute header deadline.
type deadlineReader struct {
	ctx            context.Context
	conn           net.Conn
	idle           time.Duration
	headerDeadline time.Time
}

func (r *deadlineReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}

	var d time.Time
	if r.idle > 0 {
		d = time.Now().Add(r.idle)
	}
	if !r.headerDeadline.IsZero() && (d.IsZero() || r.headerDeadline.Before(d)) {
		d = r.headerDeadline
	}
	if !d.IsZero() {
		if err := r.conn.SetReadDeadline(d); err != nil {
			return 0, err
		}
		// The refresh above may have overwritten a cancellation deadline.
		if r.ctx.Err() != nil {
			_ = r.conn.SetReadDeadline(aLongTimeAgo)
		}
	}
	return r.conn.Read(p)
}

// statusOf extracts the status code from a serialized response, or 0.
func statusOf(b []byte) int {
	// "HTTP/1.1 200 ..."
	if len(b) < 12 || b[8] != ' ' {
		return 0
	}
	code, err := strconv.Atoi(string(b[9:12]))
	if err != nil {
		return 0
	}
	return code
}

func remoteAddr(c net.Conn) string {
	if a := c.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}
