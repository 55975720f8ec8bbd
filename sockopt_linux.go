//go:build linux

package main

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// setSockOpts enables SO_REUSEADDR and SO_REUSEPORT on the listener so
// restarts bind promptly and several worker processes can share the
// port.
func setSockOpts(network, address string, rc syscall.RawConn) error {
	var serr error
	err := rc.Control(func(fd uintptr) {
		if serr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); serr != nil {
			return
		}
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return serr
}
