package main

import (
	"fmt"
	"hash/fnv"
	"time"
)

// weakETag derives a validator from the file's path and mtime. Weak on
// purpose: no file reads on the request path.
func weakETag(path string, modTime time.Time) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d-%s", modTime.Unix(), path)
	return fmt.Sprintf("W/\"%x\"", h.Sum64())
}
