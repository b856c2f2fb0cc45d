// Package server accepts TCP connections and answers exactly one HTTP/1.1
// request on each. Every connection is served by its own goroutine; a
// failure on one connection never affects another or the accept loop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/shapestone/shape-httpd/pkg/http"
)

// DefaultAddr is the listen address used when Server.Addr is empty.
const DefaultAddr = "localhost:1234"

// Timeouts applied when the corresponding Server field is zero.
const (
	DefaultReadIdleTimeout   = 30 * time.Second
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
)

// Server accepts connections and serves one request per connection. The
// zero value is usable: it listens on DefaultAddr, applies the default
// decoding limits and timeouts, answers with DefaultGreeting and logs
// nothing.
//
// Exported fields must not be modified once Serve has been called.
type Server struct {
	Addr   string
	Limits http.Limits

	// ReadIdleTimeout bounds each wait for bytes from the peer. It is
	// refreshed before every socket read.
	ReadIdleTimeout time.Duration
	// ReadHeaderTimeout bounds the whole request head, from accept to the
	// empty line.
	ReadHeaderTimeout time.Duration
	// WriteTimeout bounds writing the response.
	//
	// For all three timeouts zero selects the Default value and a negative
	// duration disables the timeout.
	WriteTimeout time.Duration

	Responder Responder
	Logger    zerolog.Logger

	// ConnStateHook, if set, is called on every connection state change.
	// It runs on the connection's goroutine and must not block.
	ConnStateHook func(net.Conn, ConnState)

	inShutdown atomic.Bool

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	listeners map[net.Listener]struct{}
	conns     map[*conn]struct{}
	wg        sync.WaitGroup
}

// ListenAndServe listens on s.Addr and calls Serve.
func (s *Server) ListenAndServe() error {
	if s.shuttingDown() {
		return ErrServerClosed
	}
	addr := s.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on l until l fails or the server is shut down,
// starting a goroutine for each. Temporary accept errors are retried with
// exponential backoff. Serve always closes l and returns a non-nil error;
// after Shutdown or Close it is ErrServerClosed.
func (s *Server) Serve(l net.Listener) error {
	ctx := s.baseContext()
	if !s.trackListener(l, true) {
		l.Close()
		return ErrServerClosed
	}
	defer s.trackListener(l, false)
	defer l.Close()

	log := s.Logger.With().Str("addr", l.Addr().String()).Logger()
	log.Info().Msg("listening")

	var tempDelay time.Duration
	for {
		rw, err := l.Accept()
		if err != nil {
			if s.shuttingDown() {
				return ErrServerClosed
			}
			if isTemporary(err) {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if maxDelay := time.Second; tempDelay > maxDelay {
					tempDelay = maxDelay
				}
				log.Warn().Err(err).Dur("retry_in", tempDelay).Msg("accept error")
				select {
				case <-time.After(tempDelay):
				case <-ctx.Done():
				}
				continue
			}
			return fmt.Errorf("server: accept: %w", err)
		}
		tempDelay = 0

		c := s.newConn(rw)
		if !s.trackConn(c, true) {
			rw.Close()
			return ErrServerClosed
		}
		go c.serve(ctx)
	}
}

// Shutdown stops accepting connections, aborts every in-flight read and
// write, and waits for the connection goroutines to exit or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.stop(false)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes all listeners and connections immediately without waiting.
func (s *Server) Close() error {
	return s.stop(true)
}

func (s *Server) stop(closeConns bool) error {
	s.inShutdown.Store(true)
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for l := range s.listeners {
		if err := l.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	if closeConns {
		for c := range s.conns {
			c.rwc.Close()
		}
	}
	return errors.Join(errs...)
}

// ActiveConns returns the number of connections currently being served.
func (s *Server) ActiveConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) shuttingDown() bool {
	return s.inShutdown.Load()
}

// baseContext returns the context every connection derives from. It is
// cancelled by Shutdown and Close.
func (s *Server) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
		if s.shuttingDown() {
			s.cancel()
		}
	}
	return s.ctx
}

func (s *Server) trackListener(l net.Listener, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listeners == nil {
		s.listeners = make(map[net.Listener]struct{})
	}
	if add {
		if s.shuttingDown() {
			return false
		}
		s.listeners[l] = struct{}{}
	} else {
		delete(s.listeners, l)
	}
	return true
}

// trackConn registers or releases c. Registration fails once shutdown has
// begun, so no connection is added after Shutdown starts waiting.
func (s *Server) trackConn(c *conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns == nil {
		s.conns = make(map[*conn]struct{})
	}
	if add {
		if s.shuttingDown() {
			return false
		}
		s.conns[c] = struct{}{}
		s.wg.Add(1)
	} else if _, ok := s.conns[c]; ok {
		delete(s.conns, c)
		s.wg.Done()
	}
	return true
}

func (s *Server) readIdleTimeout() time.Duration {
	return orDefault(s.ReadIdleTimeout, DefaultReadIdleTimeout)
}

func (s *Server) readHeaderTimeout() time.Duration {
	return orDefault(s.ReadHeaderTimeout, DefaultReadHeaderTimeout)
}

func (s *Server) writeTimeout() time.Duration {
	return orDefault(s.WriteTimeout, DefaultWriteTimeout)
}

// orDefault returns def for zero, 0 (disabled) for negative d, else d.
func orDefault(d, def time.Duration) time.Duration {
	switch {
	case d == 0:
		return def
	case d < 0:
		return 0
	}
	return d
}

func (s *Server) responder() Responder {
	if s.Responder != nil {
		return s.Responder
	}
	return defaultResponder
}

// isTemporary reports whether an accept error is worth retrying.
func isTemporary(err error) bool {
	var te interface{ Temporary() bool }
	return errors.As(err, &te) && te.Temporary()
}
