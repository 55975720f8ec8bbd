//go:build !linux

package main

import "syscall"

// SO_REUSEPORT is Linux-specific; elsewhere the platform defaults are
// left alone.
func setSockOpts(network, address string, rc syscall.RawConn) error {
	return nil
}
