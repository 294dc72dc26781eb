// Package hooklog renders hook events as human-readable blocks and
// appends them to the active session log. The log file itself is owned
// by the session tooling that wrote the log reference; this package
// only ever appends.
package hooklog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Resolve returns the active session log path, or "" when no session
// is active. The reference file at projectDir/refRelPath names the log
// file; a missing reference, an empty path, or a missing target all
// mean logging is off. Only an unreadable reference is an error.
func Resolve(projectDir, refRelPath string) (string, error) {
	ref := filepath.Join(projectDir, refRelPath)
	data, err := os.ReadFile(ref)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read log reference: %w", err)
	}
	path := strings.TrimSpace(string(data))
	if path == "" {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}

// Append writes one rendered block plus a trailing newline to the log
// at path.
func Append(path, block string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close() //nolint:errcheck // close error is unactionable after sync

	if _, err := f.WriteString(block + "\n"); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return f.Sync()
}
