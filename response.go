package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"time"
)

const serverName = "httpd/0.1"

// Response is one reply: status, headers and an optional body source,
// either in-memory bytes or an open file streamed out as is.
type Response struct {
	Status        int
	Headers       Header
	ContentLength int64

	body []byte
	file *os.File
	head bool
}

func newResponse(status int) *Response {
	h := Header{}
	h.Set("Date", httpDate(time.Now()))
	h.Set("Server", serverName)
	return &Response{Status: status, Headers: h}
}

// errorResponse is a status with a small HTML body naming it.
func errorResponse(status int) *Response {
	res := newResponse(status)
	body := fmt.Sprintf("<html><body><h1>%d %s</h1></body></html>",
		status, http.StatusText(status))
	res.SetBody([]byte(body), "text/html")
	return res
}

func (r *Response) SetBody(b []byte, contentType string) {
	r.body = b
	r.ContentLength = int64(len(b))
	r.Headers.Set("Content-Type", contentType)
}

// SetFile attaches an open file as the body source. The response takes
// ownership; Close releases it.
func (r *Response) SetFile(f *os.File, size int64, contentType string) {
	r.file = f
	r.ContentLength = size
	r.Headers.Set("Content-Type", contentType)
}

// SuppressBody marks the response header-only (HEAD). Content-Length
// still advertises the body that would have been sent.
func (r *Response) SuppressBody() { r.head = true }

// Close releases the streamed body, if any. Safe to call twice.
func (r *Response) Close() {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
}

func (r *Response) bodyAllowed() bool {
	return r.Status >= 200 && r.Status != 204 && r.Status != 304
}

// writeResponse emits the status line, headers and blank line in one
// write, then streams the body unless it is suppressed or the status
// forbids one. Headers go out sorted so output is deterministic.
func writeResponse(w io.Writer, r *Response) error {
	if r.bodyAllowed() {
		r.Headers.Set("Content-Length", strconv.FormatInt(r.ContentLength, 10))
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", r.Status, http.StatusText(r.Status))
	keys := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s: %s\r\n", canonicalKey(k), r.Headers[k])
	}
	buf.WriteString("\r\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}
	if r.head || !r.bodyAllowed() {
		return nil
	}
	if r.file != nil {
		_, err := io.Copy(w, r.file)
		return err
	}
	if len(r.body) > 0 {
		_, err := w.Write(r.body)
		return err
	}
	return nil
}

// httpDate formats t as an RFC 7231 HTTP-date, always in GMT.
func httpDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}
