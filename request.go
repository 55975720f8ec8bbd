package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

// Method is the request method after classification. Anything that is a
// recognized HTTP method but not GET or HEAD parses as
// MethodUnsupported and is answered with 405 later; an unrecognizable
// token fails the parse with 501.
type Method int

const (
	MethodGet Method = iota
	MethodHead
	MethodUnsupported
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodHead:
		return "HEAD"
	}
	return "UNSUPPORTED"
}

type Request struct {
	Method Method
	// Request-target exactly as received, still percent-encoded.
	RawTarget string
	Version   string
	Headers   Header
	// Negotiated connection reuse: HTTP/1.1 defaults to true unless
	// "Connection: close", HTTP/1.0 defaults to false unless
	// "Connection: keep-alive".
	KeepAlive bool
}

const (
	// Cap on the request line (and any single header line). Overflowing
	// it on the request line is answered with 414.
	maxRequestLine = 8192
	// Cap on the whole header block.
	maxHeaderBytes = 32768
)

var (
	errLineTooLong     = errors.New("line too long")
	errMalformedHeader = errors.New("malformed header line")
)

// parseError is a request the parser could categorize but not accept.
// status is the HTTP status to answer with before closing.
type parseError struct {
	status int
	reason string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("%s (%d)", e.reason, e.status)
}

var recognizedMethods = map[string]bool{
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"OPTIONS": true,
	"PATCH":   true,
	"TRACE":   true,
	"CONNECT": true,
}

// parseRequest reads one request line plus header block from r. It
// returns a *parseError when the request is malformed but a status can
// still be answered (400/414/501/505); any other error is a transport
// condition (timeout, EOF, socket failure) and is returned as is.
// GET/HEAD requests carry no body, so nothing past the blank line is
// consumed.
func parseRequest(r *bufio.Reader) (*Request, error) {
	line, err := readLine(r, maxRequestLine)
	if err != nil {
		if errors.Is(err, errLineTooLong) {
			return nil, &parseError{status: 414, reason: "request line too long"}
		}
		return nil, err
	}
	if line == "" {
		return nil, &parseError{status: 400, reason: "empty request line"}
	}

	fields := strings.Split(line, " ")
	if len(fields) != 3 {
		return nil, &parseError{status: 400, reason: "malformed request line"}
	}
	methodTok, target, version := fields[0], fields[1], fields[2]

	if target == "" {
		return nil, &parseError{status: 400, reason: "empty request target"}
	}

	var method Method
	switch {
	case methodTok == "GET":
		method = MethodGet
	case methodTok == "HEAD":
		method = MethodHead
	case recognizedMethods[methodTok]:
		method = MethodUnsupported
	default:
		return nil, &parseError{status: 501, reason: "unknown method " + methodTok}
	}

	if version != "HTTP/1.0" && version != "HTTP/1.1" {
		return nil, &parseError{status: 505, reason: "unsupported version " + version}
	}

	headers, err := parseHeaders(r, maxHeaderBytes)
	if err != nil {
		if errors.Is(err, errMalformedHeader) || errors.Is(err, errLineTooLong) {
			return nil, &parseError{status: 400, reason: err.Error()}
		}
		return nil, err
	}

	connOpt := strings.ToLower(headers.Get("Connection"))
	keepAlive := false
	if version == "HTTP/1.1" {
		keepAlive = connOpt != "close"
	} else {
		keepAlive = connOpt == "keep-alive"
	}

	return &Request{
		Method:    method,
		RawTarget: target,
		Version:   version,
		Headers:   headers,
		KeepAlive: keepAlive,
	}, nil
}

// readLine reads one CRLF-terminated line, tolerating a bare LF, and
// fails with errLineTooLong once the line exceeds max bytes.
func readLine(r *bufio.Reader, max int) (string, error) {
	var line []byte
	for {
		l, more, err := r.ReadLine()
		if err != nil {
			return "", err
		}
		if line == nil && !more {
			if len(l) > max {
				return "", errLineTooLong
			}
			return string(l), nil
		}
		line = append(line, l...)
		if len(line) > max {
			return "", errLineTooLong
		}
		if !more {
			break
		}
	}
	return string(line), nil
}
