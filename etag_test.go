package main

import (
	"strings"
	"testing"
	"time"
)

func TestWeakETag(t *testing.T) {
	mt := time.Unix(1700000000, 0)
	a := weakETag("/root/a.html", mt)
	if !strings.HasPrefix(a, `W/"`) || !strings.HasSuffix(a, `"`) {
		t.Errorf("malformed weak etag %q", a)
	}
	if b := weakETag("/root/a.html", mt); b != a {
		t.Errorf("etag not stable: %q vs %q", a, b)
	}
	if b := weakETag("/root/b.html", mt); b == a {
		t.Error("different paths produced the same etag")
	}
	if b := weakETag("/root/a.html", mt.Add(time.Second)); b == a {
		t.Error("different mtimes produced the same etag")
	}
}
