package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Server accepts connections and hands each one to a conn. Workers is
// the number of accept loops sharing the listener; with SO_REUSEPORT
// set on the socket, additional server processes can bind the same
// port for horizontal scaling.
type Server struct {
	cfg Config
	log zerolog.Logger

	ln     net.Listener
	mu     sync.Mutex
	conns  map[*conn]struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
}

func newServer(cfg Config, log zerolog.Logger) *Server {
	return &Server{cfg: cfg, log: log, conns: make(map[*conn]struct{})}
}

// ListenAndServe blocks until the listener is closed by Shutdown.
func (s *Server) ListenAndServe() error {
	lc := net.ListenConfig{Control: setSockOpts}
	ln, err := lc.Listen(context.Background(), "tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.ln = ln
	s.log.Info().
		Int("port", s.cfg.Port).
		Str("root", s.cfg.Root).
		Int("workers", s.cfg.Workers).
		Msg("listening")

	var accept sync.WaitGroup
	for i := 0; i < s.cfg.Workers; i++ {
		accept.Add(1)
		go func() {
			defer accept.Done()
			s.acceptLoop()
		}()
	}
	accept.Wait()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		nc, err := s.ln.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		c := newConn(nc, s.cfg, s.log)
		s.track(c)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(c)
			c.serve()
		}()
	}
}

// Shutdown stops accepting and drains open connections, aborting any
// that outlive ctx.
func (s *Server) Shutdown(ctx context.Context) {
	s.closed.Store(true)
	if s.ln != nil {
		s.ln.Close()
	}

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		s.mu.Lock()
		for c := range s.conns {
			c.abort()
		}
		s.mu.Unlock()
		s.wg.Wait()
	}
}

func (s *Server) track(c *conn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(c *conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}
