package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/cchtools/cch/internal/audit"
	"github.com/cchtools/cch/internal/event"
	"github.com/cchtools/cch/internal/guard"
)

// errBlocked is the sentinel a guard returns to exit nonzero after it
// has already written its verdict to stderr.
var errBlocked = errors.New("content blocked")

var noConsoleLogCmd = &cobra.Command{
	Use:   "no-console-log",
	Short: "Block console.log statements in edited files",
	Long: `Refuse Write/Edit content containing console.log.

Reads one JSON hook payload from stdin and scans the new file content
for the literal substring "console.log". A match exits 1 with the
refusal on stderr, which makes Claude Code block the tool call; clean
content exits 0 silently.

This is the simple guard. 'console-check' covers the whole console.*
family and reports which methods it found.`,
	SilenceErrors: true,
	RunE:          runNoConsoleLog,
}

var consoleCheckCmd = &cobra.Command{
	Use:   "console-check",
	Short: "Block console.* calls in edited files",
	Long: `Refuse Write/Edit content containing console method calls.

Reads one JSON hook payload from stdin and scans the new file content
for console.log, console.warn, console.error, console.debug, and
console.info calls. Any match exits 1 with the offending methods on
stderr; clean content exits 0 and prints a pass message.

Unlike 'no-console-log', unparseable payloads are refused too: a guard
that cannot see the content does not pass it.`,
	SilenceErrors: true,
	RunE:          runConsoleCheck,
}

func init() {
	hooksCmd.AddCommand(noConsoleLogCmd)
	hooksCmd.AddCommand(consoleCheckCmd)
}

func runNoConsoleLog(cmd *cobra.Command, args []string) error {
	start := time.Now()
	rt := newRuntime()
	defer rt.close()

	data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxEventBytes))
	if err != nil {
		return guardFault(cmd, rt, "no-console-log", start, fmt.Errorf("read hook payload: %w", err))
	}

	content, err := guard.Content(data)
	if err != nil {
		return guardFault(cmd, rt, "no-console-log", start, fmt.Errorf("parse hook payload: %w", err))
	}

	if guard.HasConsoleLog(content) {
		fmt.Fprintln(cmd.ErrOrStderr(), guard.BlockMessage)
		recordGuard(rt, "no-console-log", audit.OutcomeBlock, guard.BlockMessage, start)
		return errBlocked
	}

	recordGuard(rt, "no-console-log", audit.OutcomeAllow, "", start)
	return nil
}

func runConsoleCheck(cmd *cobra.Command, args []string) error {
	start := time.Now()
	rt := newRuntime()
	defer rt.close()

	data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxEventBytes))
	if err != nil {
		return guardFault(cmd, rt, "console-check", start, fmt.Errorf("read hook payload: %w", err))
	}

	content, err := guard.Content(data)
	if err != nil {
		// Unparseable input is refused, not passed through.
		msg := fmt.Sprintf("Invalid JSON input: %v", err)
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
		recordGuard(rt, "console-check", audit.OutcomeBlock, msg, start)
		return errBlocked
	}

	if methods := guard.ConsoleMethods(content); len(methods) > 0 {
		reason := guard.BlockReason(methods)
		fmt.Fprintln(cmd.ErrOrStderr(), reason)
		recordGuard(rt, "console-check", audit.OutcomeBlock, reason, start)
		return errBlocked
	}

	fmt.Fprintln(cmd.OutOrStdout(), guard.PassMessage)
	recordGuard(rt, "console-check", audit.OutcomeAllow, "", start)
	return nil
}

// guardFault reports an internal guard failure: the error goes to
// stderr and the exit code blocks, but the audit trail records a
// fault, not a verdict.
func guardFault(cmd *cobra.Command, rt *runtime, hook string, start time.Time, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err)
	recordGuard(rt, hook, audit.OutcomeError, err.Error(), start)
	return err
}

func recordGuard(rt *runtime, hook string, outcome audit.Outcome, detail string, start time.Time) {
	rt.trail.Record(audit.Entry{
		Hook:       hook,
		EventType:  string(event.KindPreTool),
		Outcome:    outcome,
		Detail:     detail,
		DurationMS: time.Since(start).Milliseconds(),
	})
}
