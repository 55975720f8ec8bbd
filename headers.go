package main

import (
	"bufio"
	"strings"
)

// Header holds the header fields of one request or response. Keys are
// stored lowercased; lookups are case-insensitive and a duplicate field
// overwrites the previous one (last wins).
type Header map[string]string

func (h Header) Get(key string) string { return h[strings.ToLower(key)] }

func (h Header) Set(key, value string) { h[strings.ToLower(key)] = value }

// parseHeaders reads header lines up to the blank line that ends the
// block. The cumulative size of the block is bounded by maxBytes.
func parseHeaders(r *bufio.Reader, maxBytes int) (Header, error) {
	h := Header{}
	total := 0
	for {
		line, err := readLine(r, maxRequestLine)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return h, nil
		}
		total += len(line) + 2
		if total > maxBytes {
			return nil, errLineTooLong
		}
		// Split on the first colon only; values may contain colons
		// (cookies, user agents, ...).
		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, errMalformedHeader
		}
		h.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}
}

// canonicalKey restores Header-Case when a lowercased key goes back on
// the wire: the first letter and every letter after a '-' is uppercased.
func canonicalKey(k string) string {
	b := []byte(k)
	upper := true
	for i, c := range b {
		if upper && 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
		upper = c == '-'
	}
	return string(b)
}
