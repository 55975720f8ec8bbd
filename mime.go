package main

import (
	"path/filepath"
	"strings"
)

// mimeTypes pins the served content types instead of consulting the
// host's mime database, so responses are identical across machines.
var mimeTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".swf":  "application/x-shockwave-flash",
	".txt":  "text/plain",
	".json": "application/json",
	".xml":  "application/xml",
	".ico":  "image/x-icon",
}

func contentTypeFor(path string) string {
	if t, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return "application/octet-stream"
}
