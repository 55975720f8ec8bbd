package main

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type outcome int

const (
	targetFound outcome = iota
	targetNotFound
	targetForbidden
	// targetBad is a request-target that is not even a well-formed
	// path (bad percent-encoding, missing leading slash); answered
	// with 400.
	targetBad
)

// resolution is the result of mapping a request-target onto the
// filesystem. Path and Info are set only for targetFound.
type resolution struct {
	Outcome outcome
	Path    string
	Info    os.FileInfo
	// WasDir records that the target named a directory and index.html
	// was substituted.
	WasDir bool
}

// resolve maps a raw request-target onto a file under root. root must
// be absolute with symlinks resolved (newConfig guarantees this).
// Pure apart from stat/readlink: every outcome, including any on
// attacker-controlled input, is a returned value.
//
// A directory with no index.html, and any target with a trailing slash
// that is not a directory, resolves to targetNotFound. Directory
// listings are not supported.
func resolve(root, rawTarget string) resolution {
	target := rawTarget
	if i := strings.IndexByte(target, '?'); i >= 0 {
		target = target[:i]
	}

	// PathUnescape decodes %XX but leaves '+' alone; '+' is a literal
	// path character here.
	decoded, err := url.PathUnescape(target)
	if err != nil {
		return resolution{Outcome: targetBad}
	}
	if !strings.HasPrefix(decoded, "/") {
		return resolution{Outcome: targetBad}
	}

	// Catch any ".." that climbs above the root before normalization
	// collapses it away.
	depth := 0
	for _, seg := range strings.Split(decoded, "/") {
		switch seg {
		case "", ".":
		case "..":
			depth--
			if depth < 0 {
				return resolution{Outcome: targetForbidden}
			}
		default:
			depth++
		}
	}

	fsPath := filepath.Join(root, filepath.FromSlash(decoded))
	if !contained(root, fsPath) {
		return resolution{Outcome: targetForbidden}
	}

	real, err := filepath.EvalSymlinks(fsPath)
	if err != nil {
		return resolution{Outcome: statOutcome(err)}
	}
	if !contained(root, real) {
		// Symlink pointing outside the root.
		return resolution{Outcome: targetForbidden}
	}

	fi, err := os.Stat(real)
	if err != nil {
		return resolution{Outcome: statOutcome(err)}
	}

	if fi.IsDir() {
		return resolveIndex(root, real)
	}
	if strings.HasSuffix(decoded, "/") {
		// A trailing slash promises a directory.
		return resolution{Outcome: targetNotFound}
	}
	if !fi.Mode().IsRegular() {
		return resolution{Outcome: targetForbidden}
	}
	if !readable(fi) {
		return resolution{Outcome: targetForbidden}
	}
	return resolution{Outcome: targetFound, Path: real, Info: fi}
}

// resolveIndex substitutes dir/index.html for a directory target.
func resolveIndex(root, dir string) resolution {
	index := filepath.Join(dir, "index.html")
	real, err := filepath.EvalSymlinks(index)
	if err != nil {
		if os.IsPermission(err) {
			return resolution{Outcome: targetForbidden, WasDir: true}
		}
		return resolution{Outcome: targetNotFound, WasDir: true}
	}
	if !contained(root, real) {
		return resolution{Outcome: targetForbidden, WasDir: true}
	}
	fi, err := os.Stat(real)
	if err != nil || fi.IsDir() {
		return resolution{Outcome: targetNotFound, WasDir: true}
	}
	if !readable(fi) {
		return resolution{Outcome: targetForbidden, WasDir: true}
	}
	return resolution{Outcome: targetFound, Path: real, Info: fi, WasDir: true}
}

func statOutcome(err error) outcome {
	if os.IsPermission(err) {
		return targetForbidden
	}
	return targetNotFound
}

func contained(root, p string) bool {
	return p == root || strings.HasPrefix(p, root+string(filepath.Separator))
}

func readable(fi os.FileInfo) bool {
	return fi.Mode().Perm()&0444 != 0
}
