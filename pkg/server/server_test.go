package server

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/shapestone/shape-httpd/pkg/http"
)

func startServer(t *testing.T, cfg func(*Server)) (*Server, string, <-chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &Server{Logger: zerolog.Nop()}
	if cfg != nil {
		cfg(s)
	}
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(ln) }()
	t.Cleanup(func() { _ = s.Close() })
	return s, ln.Addr().String(), errc
}

// send dials addr, writes raw and returns everything read until the server
// closes the connection.
func send(addr, raw string) (string, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return "", err
	}
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(5 * time.Second))
	if _, err := io.WriteString(c, raw); err != nil {
		return "", err
	}
	out, err := io.ReadAll(c)
	return string(out), err
}

func roundTrip(t *testing.T, addr, raw string) string {
	t.Helper()
	out, err := send(addr, raw)
	if err != nil {
		t.Fatalf("send(%q) error = %v", raw, err)
	}
	return out
}

func TestServer_OneRequestPerConnection(t *testing.T) {
	_, addr, _ := startServer(t, nil)

	out := roundTrip(t, addr, "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n")

	want := "HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"Content-Length: 11\r\n" +
		"Connection: close\r\n" +
		"\r\n" +
		"Hello, Mum!"
	if out != want {
		t.Errorf("response =\n%q\nwant:\n%q", out, want)
	}
}

func TestServer_SecondRequestIgnored(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	_, addr, _ := startServer(t, func(s *Server) {
		s.Responder = ResponderFunc(func(context.Context, *http.Request) ([]byte, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			return http.Marshal(http.NewResponse(http.StatusNoContent, "", nil))
		})
	})

	out := roundTrip(t, addr, "GET /a HTTP/1.1\r\n\r\nGET /b HTTP/1.1\r\n\r\n")

	if strings.Count(out, "HTTP/1.1 ") != 1 {
		t.Errorf("response = %q, want exactly one response", out)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("responder calls = %d, want 1", calls)
	}
}

func TestServer_FailureIsolation(t *testing.T) {
	_, addr, _ := startServer(t, nil)

	// A client that never finishes its request must not hold up others.
	stalled, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer stalled.Close()
	if _, err := io.WriteString(stalled, "GET / HT"); err != nil {
		t.Fatalf("write: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw := "GET / HTTP/1.1\r\n\r\n"
			if i%2 == 1 {
				raw = "BOGUS / HTTP/1.1\r\n\r\n"
			}
			results[i], errs[i] = send(addr, raw)
		}(i)
	}
	wg.Wait()

	for i, out := range results {
		if errs[i] != nil {
			t.Errorf("conn %d error = %v", i, errs[i])
			continue
		}
		want := "HTTP/1.1 200 "
		if i%2 == 1 {
			want = "HTTP/1.1 501 "
		}
		if !strings.HasPrefix(out, want) {
			t.Errorf("conn %d response = %q, want prefix %q", i, out, want)
		}
	}
}

func TestServer_Shutdown(t *testing.T) {
	s, addr, errc := startServer(t, nil)

	// Serve one request so the listener is known to be accepting.
	if out := roundTrip(t, addr, "GET / HTTP/1.1\r\n\r\n"); !strings.HasPrefix(out, "HTTP/1.1 200 ") {
		t.Fatalf("response = %q", out)
	}

	idle, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer idle.Close()

	// Wait until the idle connection is being served.
	deadline := time.Now().Add(5 * time.Second)
	for s.ActiveConns() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("idle connection never became active")
		}
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	select {
	case err := <-errc:
		if !errors.Is(err, ErrServerClosed) {
			t.Errorf("Serve() error = %v, want ErrServerClosed", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after Shutdown")
	}

	if n := s.ActiveConns(); n != 0 {
		t.Errorf("ActiveConns() = %d after Shutdown, want 0", n)
	}

	_ = idle.SetReadDeadline(time.Now().Add(5 * time.Second))
	if out, _ := io.ReadAll(idle); len(out) != 0 {
		t.Errorf("idle connection received %q, want nothing", out)
	}

	if err := s.ListenAndServe(); !errors.Is(err, ErrServerClosed) {
		t.Errorf("ListenAndServe() after Shutdown error = %v, want ErrServerClosed", err)
	}
}

func TestServer_ShutdownDeadline(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	s, addr, _ := startServer(t, func(s *Server) {
		s.Responder = ResponderFunc(func(context.Context, *http.Request) ([]byte, error) {
			close(entered)
			<-release
			return http.Marshal(http.NewResponse(http.StatusOK, "", nil))
		})
	})
	defer close(release)

	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	if _, err := io.WriteString(c, "GET / HTTP/1.1\r\n\r\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want DeadlineExceeded", err)
	}
}

func TestServer_ServeAfterClose(t *testing.T) {
	s := &Server{Logger: zerolog.Nop()}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if err := s.Serve(ln); !errors.Is(err, ErrServerClosed) {
		t.Errorf("Serve() error = %v, want ErrServerClosed", err)
	}
	if _, err := ln.Accept(); err == nil {
		t.Error("listener still open after Serve returned")
	}
}

// tempErr is an accept error that asks to be retried.
type tempErr struct{}

func (tempErr) Error() string   { return "temporary failure" }
func (tempErr) Timeout() bool   { return false }
func (tempErr) Temporary() bool { return true }

// flakyListener fails the first n Accept calls with a temporary error.
type flakyListener struct {
	net.Listener
	mu sync.Mutex
	n  int
}

func (l *flakyListener) Accept() (net.Conn, error) {
	l.mu.Lock()
	if l.n > 0 {
		l.n--
		l.mu.Unlock()
		return nil, tempErr{}
	}
	l.mu.Unlock()
	return l.Listener.Accept()
}

func TestServer_TemporaryAcceptError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &Server{Logger: zerolog.Nop()}
	defer s.Close()
	go func() { _ = s.Serve(&flakyListener{Listener: ln, n: 3}) }()

	out := roundTrip(t, ln.Addr().String(), "GET / HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(out, "HTTP/1.1 200 ") {
		t.Errorf("response = %q, want 200 after accept retries", out)
	}
}

func TestServer_PermanentAcceptError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ln.Close()

	s := &Server{Logger: zerolog.Nop()}
	err = s.Serve(ln)
	if err == nil || errors.Is(err, ErrServerClosed) {
		t.Errorf("Serve() error = %v, want accept error", err)
	}
}

func TestTextResponder(t *testing.T) {
	r, err := TextResponder("pong")
	if err != nil {
		t.Fatalf("TextResponder() error = %v", err)
	}
	data, err := r.Respond(context.Background(), &http.Request{})
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if !strings.HasSuffix(string(data), "\r\n\r\npong") {
		t.Errorf("Respond() = %q", data)
	}
}

func TestServer_DefaultTimeouts(t *testing.T) {
	tests := []struct {
		name                      string
		s                         *Server
		idle, header, writeBudget time.Duration
	}{
		{"zero value", &Server{}, DefaultReadIdleTimeout, DefaultReadHeaderTimeout, DefaultWriteTimeout},
		{"explicit", &Server{ReadIdleTimeout: time.Second, ReadHeaderTimeout: 2 * time.Second, WriteTimeout: 3 * time.Second}, time.Second, 2 * time.Second, 3 * time.Second},
		{"disabled", &Server{ReadIdleTimeout: -1, ReadHeaderTimeout: -1, WriteTimeout: -1}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.readIdleTimeout(); got != tt.idle {
				t.Errorf("readIdleTimeout() = %v, want %v", got, tt.idle)
			}
			if got := tt.s.readHeaderTimeout(); got != tt.header {
				t.Errorf("readHeaderTimeout() = %v, want %v", got, tt.header)
			}
			if got := tt.s.writeTimeout(); got != tt.writeBudget {
				t.Errorf("writeTimeout() = %v, want %v", got, tt.writeBudget)
			}
		})
	}
}
