/*
	Minimal HTTP/1.1 static file server: GET and HEAD over keep-alive
	connections, serving out of a sandboxed document root.

	HTTP/1.1 protocol specification: https://www.rfc-editor.org/rfc/rfc7230
*/

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

var (
	rootFlag    string
	portFlag    int
	workersFlag int
	debugFlag   bool
)

func init() {
	flag.StringVar(&rootFlag, "r", "./static", "document root directory")
	flag.StringVar(&rootFlag, "root", "./static", "document root directory")
	flag.IntVar(&portFlag, "p", 8080, "port to listen on")
	flag.IntVar(&portFlag, "port", 8080, "port to listen on")
	flag.IntVar(&workersFlag, "w", 1, "number of accept workers")
	flag.IntVar(&workersFlag, "workers", 1, "number of accept workers")
	flag.BoolVar(&debugFlag, "d", false, "enable debug logging")
	flag.BoolVar(&debugFlag, "debug", false, "enable debug logging")
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func main() {
	flag.Parse()
	logger := newLogger(debugFlag)

	cfg, err := newConfig(rootFlag, portFlag, workersFlag, debugFlag)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	srv := newServer(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(sctx)
	}
}
