package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// conn owns one accepted connection end to end: reads and parses
// requests, resolves them against the document root, writes responses,
// and decides whether to keep the connection open. At most one request
// is in flight at a time; the next request is not read until the
// current response is fully written.
type conn struct {
	rwc net.Conn
	r   *bufio.Reader
	cfg Config
	log zerolog.Logger

	req         *Request
	res         *Response
	began       time.Time
	numRequests int
	keepAlive   bool
	done        chan struct{}
}

type stateFunc func(*conn) stateFunc

func newConn(nc net.Conn, cfg Config, log zerolog.Logger) *conn {
	return &conn{
		rwc:  nc,
		r:    bufio.NewReader(nc),
		cfg:  cfg,
		log:  log.With().Str("remote", nc.RemoteAddr().String()).Logger(),
		done: make(chan struct{}),
	}
}

// serve drives the state machine until the connection closes. Every
// exit path runs through closing, which releases the connection's
// resources and signals Done.
func (c *conn) serve() {
	for state := awaitRequest; state != nil; {
		state = state(c)
	}
}

// Done is closed once the connection is fully torn down; the accept
// loop uses it to drain on shutdown.
func (c *conn) Done() <-chan struct{} { return c.done }

// abort closes the transport out from under the state machine,
// cancelling any in-flight read or write.
func (c *conn) abort() { c.rwc.Close() }

func awaitRequest(c *conn) stateFunc {
	c.req, c.res = nil, nil
	c.rwc.SetReadDeadline(time.Now().Add(c.cfg.IdleTimeout))

	req, err := parseRequest(c.r)
	c.began = time.Now()
	if err != nil {
		var pe *parseError
		if errors.As(err, &pe) {
			// Still answerable; malformed input forfeits keep-alive.
			c.keepAlive = false
			c.res = errorResponse(pe.status)
			c.log.Debug().Err(err).Msg("rejected request")
			return respond
		}
		// Idle timeout, client EOF or transport failure: silent close.
		if !errors.Is(err, io.EOF) && !os.IsTimeout(err) {
			c.log.Debug().Err(err).Msg("read failed")
		}
		return closing
	}

	c.req = req
	c.numRequests++
	c.keepAlive = req.KeepAlive && c.numRequests < c.cfg.MaxRequests
	return resolveTarget
}

func resolveTarget(c *conn) stateFunc {
	req := c.req

	if req.Method == MethodUnsupported {
		c.res = errorResponse(405)
		c.res.Headers.Set("Allow", "GET, HEAD")
	} else {
		rt := resolve(c.cfg.Root, req.RawTarget)
		switch rt.Outcome {
		case targetBad:
			c.keepAlive = false
			c.res = errorResponse(400)
		case targetNotFound:
			c.res = errorResponse(404)
		case targetForbidden:
			c.res = errorResponse(403)
		case targetFound:
			c.res = fileResponse(req, rt)
		}
	}

	if req.Method == MethodHead {
		c.res.SuppressBody()
	}
	return respond
}

// fileResponse builds the reply for a resolved file: 304 when the
// client's validator still matches, otherwise 200 with the file as
// body source (headers only for HEAD).
func fileResponse(req *Request, rt resolution) *Response {
	etag := weakETag(rt.Path, rt.Info.ModTime())
	if req.Headers.Get("If-None-Match") == etag {
		res := newResponse(304)
		res.Headers.Set("ETag", etag)
		return res
	}

	res := newResponse(200)
	res.Headers.Set("ETag", etag)
	ctype := contentTypeFor(rt.Path)
	if req.Method == MethodHead {
		res.ContentLength = rt.Info.Size()
		res.Headers.Set("Content-Type", ctype)
		return res
	}

	f, err := os.Open(rt.Path)
	if err != nil {
		if os.IsPermission(err) {
			return errorResponse(403)
		}
		return errorResponse(500)
	}
	res.SetFile(f, rt.Info.Size(), ctype)
	return res
}

func respond(c *conn) stateFunc {
	res := c.res
	if c.keepAlive {
		res.Headers.Set("Connection", "keep-alive")
		res.Headers.Set("Keep-Alive", fmt.Sprintf("timeout=%d, max=%d",
			int(c.cfg.IdleTimeout.Seconds()), c.cfg.MaxRequests-c.numRequests))
	} else {
		res.Headers.Set("Connection", "close")
	}

	c.rwc.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	err := writeResponse(c.rwc, res)
	res.Close()
	c.logAccess(res, err)

	if err != nil || !c.keepAlive {
		return closing
	}
	return awaitRequest
}

func (c *conn) logAccess(res *Response, err error) {
	ev := c.log.Info()
	if err != nil {
		ev = c.log.Warn().Err(err)
	}
	if c.req != nil {
		ev = ev.Str("method", c.req.Method.String()).Str("target", c.req.RawTarget)
	}
	ev.Int("status", res.Status).
		Int64("bytes", res.ContentLength).
		Dur("elapsed", time.Since(c.began)).
		Msg("request")
}

func closing(c *conn) stateFunc {
	if c.res != nil {
		c.res.Close()
	}
	c.rwc.Close()
	close(c.done)
	c.log.Debug().Int("requests", c.numRequests).Msg("connection closed")
	return nil
}
