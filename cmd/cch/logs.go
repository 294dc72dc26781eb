package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cchtools/cch/internal/audit"
	"github.com/cchtools/cch/internal/formatter"
)

var (
	logsLimit   int
	logsSince   string
	logsEvent   string
	logsOutcome string
	logsJSON    bool
	logsFollow  bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Query the hook audit trail",
	Long: `Query the audit trail every handler writes to.

Each entry records one hook invocation: which handler ran, the event
and tool involved, how it ended (logged, skipped, error, allow, block),
and how long it took. Entries are shown newest first.

Examples:
  cch logs                          # Last 10 invocations
  cch logs --outcome block          # Recent guard refusals
  cch logs --event tool --limit 50  # Recent tool events
  cch logs --follow                 # Stream entries as hooks fire`,
	RunE: runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().IntVar(&logsLimit, "limit", 10, "Maximum entries to show")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Only entries at or after this RFC3339 timestamp")
	logsCmd.Flags().StringVar(&logsEvent, "event", "", "Filter by event type (e.g. user_prompt, tool)")
	logsCmd.Flags().StringVar(&logsOutcome, "outcome", "", "Filter by outcome (logged, skipped, error, allow, block)")
	logsCmd.Flags().BoolVar(&logsJSON, "json", false, "Output entries as JSON")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Stream new entries as they are recorded")
}

func runLogs(cmd *cobra.Command, args []string) error {
	rt := newRuntime()
	defer rt.close()

	if logsFollow {
		return followLogs(cmd, rt)
	}

	filters := audit.Filters{
		Limit:     logsLimit,
		EventType: logsEvent,
		Outcome:   audit.Outcome(logsOutcome),
	}
	if logsSince != "" {
		since, err := time.Parse(time.RFC3339, logsSince)
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Warning: invalid --since timestamp, expected RFC3339 (e.g. 2024-01-01T00:00:00Z)")
		} else {
			filters.Since = since
		}
	}

	entries, err := audit.Query(rt.cfg.AuditLog, filters)
	if err != nil {
		return fmt.Errorf("query audit trail: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No log entries found.")
		return nil
	}

	if logsJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal entries: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Found %d log entries:\n", len(entries))
	return renderLogEntries(cmd.OutOrStdout(), entries)
}

func renderLogEntries(w io.Writer, entries []audit.Entry) error {
	table := formatter.NewTable(w, "TIMESTAMP", "HOOK", "EVENT", "TOOL", "OUTCOME", "DETAIL")
	table.SetMaxWidth(5, 48)
	for _, e := range entries {
		table.AddRow(
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Hook,
			orDash(e.EventType),
			orDash(e.ToolName),
			string(e.Outcome),
			e.Detail,
		)
	}
	return table.Render()
}

func followLogs(cmd *cobra.Command, rt *runtime) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Following %s (Ctrl-C to stop)\n", rt.cfg.AuditLog)
	return audit.Follow(ctx, rt.cfg.AuditLog, func(e audit.Entry) {
		fmt.Fprintln(cmd.OutOrStdout(), formatFollowEntry(e))
	})
}

// formatFollowEntry renders one streamed entry on a single line.
func formatFollowEntry(e audit.Entry) string {
	return fmt.Sprintf("%s  %-14s %-13s %-10s %-7s %s",
		e.Timestamp.Format("15:04:05"),
		e.Hook,
		orDash(e.EventType),
		orDash(e.ToolName),
		e.Outcome,
		e.Detail)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
