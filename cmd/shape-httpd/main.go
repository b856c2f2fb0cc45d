// Command shape-httpd listens on a TCP address and answers every connection
// with a single HTTP/1.1 response.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/shapestone/shape-httpd/pkg/http"
	"github.com/shapestone/shape-httpd/pkg/server"
)

type options struct {
	addr              string
	greeting          string
	readIdleTimeout   time.Duration
	readHeaderTimeout time.Duration
	writeTimeout      time.Duration
	shutdownTimeout   time.Duration
	maxLineBytes      int
	maxHeaderCount    int
	maxHeaderBytes    int
	versions          string
	logLevel          string
	logFormat         string
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("shape-httpd", flag.ContinueOnError)
	fs.StringVar(&o.addr, "addr", server.DefaultAddr, "listen address")
	fs.StringVar(&o.greeting, "greeting", server.DefaultGreeting, "response body sent to every request")
	fs.DurationVar(&o.readIdleTimeout, "read-idle-timeout", server.DefaultReadIdleTimeout, "max silence while reading a request (negative disables)")
	fs.DurationVar(&o.readHeaderTimeout, "read-header-timeout", server.DefaultReadHeaderTimeout, "max time to read a request head (negative disables)")
	fs.DurationVar(&o.writeTimeout, "write-timeout", server.DefaultWriteTimeout, "max time to write a response (negative disables)")
	fs.DurationVar(&o.shutdownTimeout, "shutdown-timeout", 5*time.Second, "grace period for in-flight connections on shutdown")
	fs.IntVar(&o.maxLineBytes, "max-line-bytes", http.DefaultMaxLineBytes, "max length of a single line")
	fs.IntVar(&o.maxHeaderCount, "max-header-count", http.DefaultMaxHeaderCount, "max number of header fields")
	fs.IntVar(&o.maxHeaderBytes, "max-header-bytes", http.DefaultMaxHeaderBytes, "max total size of the header block")
	fs.StringVar(&o.versions, "versions", http.Version11, "comma-separated accepted protocol versions")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	fs.StringVar(&o.logFormat, "log-format", "console", "log format (console or json)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

func (o *options) limits() http.Limits {
	var versions []string
	for _, v := range strings.Split(o.versions, ",") {
		if v = strings.TrimSpace(v); v != "" {
			versions = append(versions, v)
		}
	}
	return http.Limits{
		MaxLineBytes:   o.maxLineBytes,
		MaxHeaderCount: o.maxHeaderCount,
		MaxHeaderBytes: o.maxHeaderBytes,
		Versions:       versions,
	}
}

func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, err
	}
	switch format {
	case "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format %q", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func newServer(o *options, log zerolog.Logger) (*server.Server, error) {
	responder, err := server.TextResponder(o.greeting)
	if err != nil {
		return nil, err
	}
	return &server.Server{
		Addr:              o.addr,
		Limits:            o.limits(),
		ReadIdleTimeout:   o.readIdleTimeout,
		ReadHeaderTimeout: o.readHeaderTimeout,
		WriteTimeout:      o.writeTimeout,
		Responder:         responder,
		Logger:            log,
	}, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	log, err := newLogger(stderr, o.logLevel, o.logFormat)
	if err != nil {
		return err
	}
	srv, err := newServer(o, log)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("grace", o.shutdownTimeout).Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), o.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("forcing close")
		_ = srv.Close()
	}
	if err := <-errc; err != nil && !errors.Is(err, server.ErrServerClosed) {
		return err
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stderr)
	stop()

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	default:
		fmt.Fprintln(os.Stderr, "shape-httpd:", err)
		os.Exit(1)
	}
}
