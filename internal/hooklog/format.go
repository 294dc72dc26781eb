package hooklog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cchtools/cch/internal/event"
)

// Character limits applied when rendering, never at decode time.
const (
	promptLimit  = 300
	messageLimit = 200
	commandLimit = 200
	editLimit    = 100
)

// Format renders one event as a log block: a separator, a timestamped
// header, kind-specific detail lines, and a closing separator. The
// trailing newline is added at append time.
func Format(p event.Payload, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n---\n[%s] ", now.Format("15:04:05"))

	switch v := p.(type) {
	case event.UserPrompt:
		fmt.Fprintf(&b, "💬 USER_PROMPT (%s)", v.PromptType)
		if utf8.RuneCountInString(v.Text) > promptLimit {
			fmt.Fprintf(&b, "\nTEXT: %s... (truncated)", truncate(v.Text, promptLimit))
		} else {
			fmt.Fprintf(&b, "\nTEXT: %s", v.Text)
		}

	case event.Permission:
		fmt.Fprintf(&b, "🔒 PERMISSION: %s", v.Action)
		if v.Tool != "" {
			fmt.Fprintf(&b, "\nTOOL: %s", v.Tool)
		}
		if v.Resource != "" {
			fmt.Fprintf(&b, "\nRESOURCE: %s", v.Resource)
		}
		fmt.Fprintf(&b, "\nRESPONSE: %s", v.Response)

	case event.Notification:
		fmt.Fprintf(&b, "🔔 NOTIFICATION [%s]", strings.ToUpper(v.Level))
		fmt.Fprintf(&b, "\nTYPE: %s", v.Type)
		if v.Message != "" {
			fmt.Fprintf(&b, "\nMESSAGE: %s", truncate(v.Message, messageLimit))
		}

	case event.SessionStart:
		fmt.Fprintf(&b, "🎬 SESSION_START: %s", v.SessionType)

	case event.PreCompact:
		fmt.Fprintf(&b, "🗜️  PRE_COMPACT: %s", v.CompactType)

	case event.Stop:
		fmt.Fprintf(&b, "🛑 AGENT_STOP: %s", v.Reason)

	case event.SubagentStop:
		fmt.Fprintf(&b, "🔻 SUBAGENT_STOP: %s", v.Subagent)

	case event.PreTool:
		fmt.Fprintf(&b, "⏸️  PRE_TOOL: %s", v.ToolName)
		if v.HasParams {
			b.WriteString("\nPARAMS_READY: Yes")
		}

	case event.PostTool:
		fmt.Fprintf(&b, "TOOL: %s", v.ToolName)
		writeToolDetail(&b, v.Detail)
	}

	b.WriteString("\n---")
	return b.String()
}

func writeToolDetail(b *strings.Builder, d event.ToolDetail) {
	switch v := d.(type) {
	case event.BashDetail:
		fmt.Fprintf(b, "\nCOMMAND: %s", truncate(v.Command, commandLimit))
		fmt.Fprintf(b, "\nDESC: %s", v.Description)

	case event.ReadDetail:
		fmt.Fprintf(b, "\nFILE: %s", v.FilePath)
		if v.Offset != nil {
			fmt.Fprintf(b, "\nOFFSET: %s", formatNum(*v.Offset))
		}
		if v.Limit != nil {
			fmt.Fprintf(b, "\nLIMIT: %s", formatNum(*v.Limit))
		}

	case event.WriteDetail:
		fmt.Fprintf(b, "\nFILE: %s", v.FilePath)
		fmt.Fprintf(b, "\nSIZE: %d chars", v.ContentChars)

	case event.EditDetail:
		// OLD and NEW always carry the ellipsis, truncated or not.
		fmt.Fprintf(b, "\nFILE: %s", v.FilePath)
		fmt.Fprintf(b, "\nOLD: %s...", truncate(v.OldString, editLimit))
		fmt.Fprintf(b, "\nNEW: %s...", truncate(v.NewString, editLimit))
		if v.ReplaceAll {
			b.WriteString("\nREPLACE_ALL: True")
		}

	case event.GrepDetail:
		fmt.Fprintf(b, "\nPATTERN: %s", v.Pattern)
		if v.Path != "" {
			fmt.Fprintf(b, "\nPATH: %s", v.Path)
		}
		if v.Glob != "" {
			fmt.Fprintf(b, "\nGLOB: %s", v.Glob)
		}
		fmt.Fprintf(b, "\nMODE: %s", v.OutputMode)
		if v.CaseInsensitive {
			b.WriteString("\nCASE_INSENSITIVE: True")
		}

	case event.GlobDetail:
		fmt.Fprintf(b, "\nPATTERN: %s", v.Pattern)
		if v.Path != "" {
			fmt.Fprintf(b, "\nPATH: %s", v.Path)
		}

	case event.TodoDetail:
		fmt.Fprintf(b, "\nTODOS: %d items", v.Total)
		fmt.Fprintf(b, "\nSTATUS: %d done, %d active, %d pending", v.Completed, v.InProgress, v.Pending)
	}
}

// truncate returns at most limit runes of s.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// formatNum renders a JSON number the shortest way that round-trips,
// so whole numbers print without an exponent or decimal point.
func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
