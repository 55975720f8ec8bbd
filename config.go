package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	// Absolute document root with symlinks already resolved, so the
	// resolver's containment checks compare like with like.
	Root    string
	Port    int
	Workers int
	Debug   bool

	IdleTimeout  time.Duration
	WriteTimeout time.Duration
	// Maximum number of requests served over one keep-alive connection.
	MaxRequests int
}

const (
	defaultIdleTimeout  = 30 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultMaxRequests  = 100
)

func newConfig(root string, port, workers int, debug bool) (Config, error) {
	if port < 1 || port > 65535 {
		return Config{}, fmt.Errorf("port out of range: %d", port)
	}
	if workers < 1 {
		return Config{}, fmt.Errorf("workers must be at least 1, got %d", workers)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return Config{}, fmt.Errorf("document root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return Config{}, fmt.Errorf("document root: %w", err)
	}
	fi, err := os.Stat(resolved)
	if err != nil {
		return Config{}, fmt.Errorf("document root: %w", err)
	}
	if !fi.IsDir() {
		return Config{}, fmt.Errorf("document root is not a directory: %s", resolved)
	}

	return Config{
		Root:         resolved,
		Port:         port,
		Workers:      workers,
		Debug:        debug,
		IdleTimeout:  defaultIdleTimeout,
		WriteTimeout: defaultWriteTimeout,
		MaxRequests:  defaultMaxRequests,
	}, nil
}
