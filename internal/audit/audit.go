// Package audit keeps the machine-readable trail of hook executions:
// one JSON line per invocation, separate from the human-readable
// session log. The trail is what makes a silently fail-open handler
// debuggable after the fact.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome classifies how a hook invocation ended.
type Outcome string

// Outcomes recorded by the handlers.
const (
	OutcomeLogged  Outcome = "logged"  // event appended to the session log
	OutcomeSkipped Outcome = "skipped" // no active session, nothing written
	OutcomeError   Outcome = "error"   // internal failure, swallowed by the logger
	OutcomeAllow   Outcome = "allow"   // guard passed the content
	OutcomeBlock   Outcome = "block"   // guard refused the content
)

// Entry is one trail line.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Hook       string    `json:"hook"`
	EventType  string    `json:"event_type,omitempty"`
	ToolName   string    `json:"tool_name,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
	Outcome    Outcome   `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// Trail appends entries to a JSONL file. A nil Trail drops everything,
// so handlers never need to check before recording.
type Trail struct {
	path string
	log  *zap.Logger
}

// NewTrail returns a trail writing to path. An empty path disables
// recording.
func NewTrail(path string, log *zap.Logger) *Trail {
	if path == "" {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Trail{path: path, log: log}
}

// Path returns the trail file location.
func (t *Trail) Path() string {
	if t == nil {
		return ""
	}
	return t.path
}

// Record stamps and appends one entry. Failures are logged at debug
// and swallowed; the trail must never take a hook down with it.
func (t *Trail) Record(e Entry) {
	if t == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if err := appendLine(t.path, e); err != nil {
		t.log.Debug("audit append failed", zap.String("path", t.path), zap.Error(err))
	}
}

// appendLine appends one JSON line to path, creating parents as
// needed.
func appendLine(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open trail: %w", err)
	}
	defer func() {
		_ = f.Close() //nolint:errcheck // sync already called, close best-effort
	}()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write line: %w", err)
	}

	return f.Sync()
}

// Filters narrows a Query. Zero values match everything.
type Filters struct {
	Limit     int
	Since     time.Time
	EventType string
	Outcome   Outcome
}

func (f Filters) match(e Entry) bool {
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	return true
}

// Query returns trail entries newest first, applying f. A missing
// trail yields no entries; malformed lines are skipped.
func Query(path string, f Filters) (entries []Entry, err error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue // Skip malformed lines
		}
		if !f.match(e) {
			continue
		}
		entries = append(entries, e)
	}
	if serr := scanner.Err(); serr != nil {
		return nil, serr
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if f.Limit > 0 && len(entries) > f.Limit {
		entries = entries[:f.Limit]
	}
	return entries, nil
}
