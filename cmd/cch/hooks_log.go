package main

import (
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cchtools/cch/internal/audit"
	"github.com/cchtools/cch/internal/event"
	"github.com/cchtools/cch/internal/hooklog"
)

// maxEventBytes caps how much of stdin a handler will read. Hook
// payloads are small; anything past this is not one.
const maxEventBytes = 1 << 20

var hooksLogEventType string

var hooksLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Append a hook event to the session log",
	Long: `Read one JSON hook payload from stdin and append it, formatted, to
the active session log.

Claude Code invokes this handler; each registered event passes
--event-type so payloads without their own event_type field still
decode as the right kind. A payload-level event_type always wins.

The handler always exits 0. Problems (unreadable payload, missing log,
failed write) are recorded in the audit trail and reported on stderr at
the configured log level, never to the calling session.`,
	RunE: runHooksLog,
}

func init() {
	hooksCmd.AddCommand(hooksLogCmd)
	hooksLogCmd.Flags().StringVar(&hooksLogEventType, "event-type", string(event.KindTool),
		"Payload kind assumed when the payload has no event_type field")
}

func runHooksLog(cmd *cobra.Command, args []string) error {
	start := time.Now()
	rt := newRuntime()
	defer rt.close()

	res := logEvent(rt, cmd.InOrStdin(), start, event.Kind(hooksLogEventType))

	rt.trail.Record(audit.Entry{
		Hook:       "log",
		EventType:  res.eventType,
		ToolName:   res.toolName,
		SessionID:  res.sessionID,
		Outcome:    res.outcome,
		Detail:     res.detail,
		DurationMS: time.Since(start).Milliseconds(),
	})

	// The logger never fails the calling session.
	return nil
}

// logResult captures one logger invocation for the audit trail.
type logResult struct {
	outcome   audit.Outcome
	detail    string
	eventType string
	toolName  string
	sessionID string
}

// logEvent decodes one payload from in and appends the rendered block
// to the active session log. Every failure path returns a result
// instead of an error: the caller records it and exits clean.
func logEvent(rt *runtime, in io.Reader, now time.Time, defaultKind event.Kind) logResult {
	res := logResult{eventType: string(defaultKind)}

	data, err := io.ReadAll(io.LimitReader(in, maxEventBytes))
	if err != nil {
		rt.log.Debug("read hook payload", zap.Error(err))
		res.outcome = audit.OutcomeError
		res.detail = "read stdin: " + err.Error()
		return res
	}

	ev, err := event.Decode(data, defaultKind)
	if err != nil {
		rt.log.Debug("decode hook payload", zap.Int("bytes", len(data)), zap.Error(err))
		res.outcome = audit.OutcomeError
		res.detail = err.Error()
		return res
	}

	res.eventType = string(ev.Payload.Kind())
	res.toolName = event.ToolName(ev.Payload)
	res.sessionID = ev.SessionID

	path, err := hooklog.Resolve(rt.cfg.ProjectDir, rt.cfg.SessionLogRef)
	if err != nil {
		rt.log.Warn("resolve session log", zap.Error(err))
		res.outcome = audit.OutcomeError
		res.detail = err.Error()
		return res
	}
	if path == "" {
		rt.log.Debug("no active session log", zap.String("project_dir", rt.cfg.ProjectDir))
		res.outcome = audit.OutcomeSkipped
		res.detail = "no active session log"
		return res
	}

	if err := hooklog.Append(path, hooklog.Format(ev.Payload, now)); err != nil {
		rt.log.Warn("append session log", zap.String("path", path), zap.Error(err))
		res.outcome = audit.OutcomeError
		res.detail = err.Error()
		return res
	}

	rt.log.Debug("logged hook event",
		zap.String("event_type", res.eventType),
		zap.String("path", path))
	res.outcome = audit.OutcomeLogged
	res.detail = path
	return res
}
