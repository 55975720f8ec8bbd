package main

import (
	"testing"
)

func TestNewConfig(t *testing.T) {
	root := newTestRoot(t)

	cfg, err := newConfig(root, 8080, 2, true)
	if err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	if cfg.Root != root {
		t.Errorf("root = %q, want %q", cfg.Root, root)
	}
	if cfg.MaxRequests != defaultMaxRequests || cfg.IdleTimeout != defaultIdleTimeout {
		t.Error("defaults not applied")
	}
}

func TestNewConfigRejectsBadInput(t *testing.T) {
	root := newTestRoot(t)

	if _, err := newConfig(root, 0, 1, false); err == nil {
		t.Error("port 0 accepted")
	}
	if _, err := newConfig(root, 8080, 0, false); err == nil {
		t.Error("zero workers accepted")
	}
	if _, err := newConfig("/definitely/not/a/real/dir", 8080, 1, false); err == nil {
		t.Error("missing document root accepted")
	}
	file := writeFile(t, root, "plain.txt", "x")
	if _, err := newConfig(file, 8080, 1, false); err == nil {
		t.Error("file as document root accepted")
	}
}
