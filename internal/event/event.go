// Package event decodes hook payloads from the host tool into a closed
// set of typed variants. Dispatch happens once, at decode time, on the
// payload's event_type field; every optional field gets its documented
// default here so formatting and auditing never touch raw JSON.
package event

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Kind identifies one hook event variant.
type Kind string

// Event kinds dispatched on the payload's event_type field.
const (
	KindUserPrompt   Kind = "user_prompt"
	KindPermission   Kind = "permission"
	KindNotification Kind = "notification"
	KindSessionStart Kind = "session_start"
	KindPreCompact   Kind = "pre_compact"
	KindStop         Kind = "stop"
	KindSubagentStop Kind = "subagent_stop"
	KindPreTool      Kind = "pre_tool"

	// KindTool covers post-tool-use reports. It is also the fallback for
	// absent or unrecognized event_type values, which dispatch a second
	// time on tool_name.
	KindTool Kind = "tool"
)

// Payload is one decoded event variant. The implementation set is
// closed: adding a kind means adding a variant and a Decode arm.
type Payload interface {
	Kind() Kind
	payload()
}

// Event is a single decoded hook payload.
type Event struct {
	SessionID string
	Payload   Payload
}

// UserPrompt records a prompt submitted by the user.
type UserPrompt struct {
	PromptType string
	Text       string
}

// Kind implements Payload.
func (UserPrompt) Kind() Kind { return KindUserPrompt }

func (UserPrompt) payload() {}

// Permission records a permission request and its resolution state.
type Permission struct {
	Action   string
	Tool     string
	Resource string
	Response string
}

// Kind implements Payload.
func (Permission) Kind() Kind { return KindPermission }

func (Permission) payload() {}

// Notification records a host-tool notification.
type Notification struct {
	Level   string
	Type    string
	Message string
}

// Kind implements Payload.
func (Notification) Kind() Kind { return KindNotification }

func (Notification) payload() {}

// SessionStart records a session boundary (startup, resume, clear,
// compact).
type SessionStart struct {
	SessionType string
}

// Kind implements Payload.
func (SessionStart) Kind() Kind { return KindSessionStart }

func (SessionStart) payload() {}

// PreCompact records an imminent context compaction (manual or auto).
type PreCompact struct {
	CompactType string
}

// Kind implements Payload.
func (PreCompact) Kind() Kind { return KindPreCompact }

func (PreCompact) payload() {}

// Stop records the agent finishing its turn.
type Stop struct {
	Reason string
}

// Kind implements Payload.
func (Stop) Kind() Kind { return KindStop }

func (Stop) payload() {}

// SubagentStop records a subagent finishing.
type SubagentStop struct {
	Subagent string
}

// Kind implements Payload.
func (SubagentStop) Kind() Kind { return KindSubagentStop }

func (SubagentStop) payload() {}

// PreTool records a tool call about to run. Parameters are flagged but
// never dumped.
type PreTool struct {
	ToolName  string
	HasParams bool
}

// Kind implements Payload.
func (PreTool) Kind() Kind { return KindPreTool }

func (PreTool) payload() {}

// PostTool reports a completed tool call. Detail is nil for tools
// without a dedicated extractor.
type PostTool struct {
	ToolName string
	Detail   ToolDetail
}

// Kind implements Payload.
func (PostTool) Kind() Kind { return KindTool }

func (PostTool) payload() {}

// ToolDetail carries per-tool fields extracted from tool_input. The
// implementation set is closed, mirroring the tools the logger knows.
type ToolDetail interface {
	toolDetail()
}

// BashDetail holds the command and its description.
type BashDetail struct {
	Command     string
	Description string
}

func (BashDetail) toolDetail() {}

// ReadDetail holds the file path and the optional paging window. Offset
// and Limit are nil when the payload omits them; zero is a real value.
type ReadDetail struct {
	FilePath string
	Offset   *float64
	Limit    *float64
}

func (ReadDetail) toolDetail() {}

// WriteDetail holds the file path and the content size in characters.
// The content itself is never retained.
type WriteDetail struct {
	FilePath     string
	ContentChars int
}

func (WriteDetail) toolDetail() {}

// EditDetail holds the file path and the replacement pair.
type EditDetail struct {
	FilePath   string
	OldString  string
	NewString  string
	ReplaceAll bool
}

func (EditDetail) toolDetail() {}

// GrepDetail holds the search parameters.
type GrepDetail struct {
	Pattern         string
	Path            string
	Glob            string
	OutputMode      string
	CaseInsensitive bool
}

func (GrepDetail) toolDetail() {}

// GlobDetail holds the match parameters.
type GlobDetail struct {
	Pattern string
	Path    string
}

func (GlobDetail) toolDetail() {}

// TodoDetail summarizes a todo-list update. Items with a status outside
// the three known values count toward Total only.
type TodoDetail struct {
	Total      int
	Completed  int
	InProgress int
	Pending    int
}

func (TodoDetail) toolDetail() {}

// Decode parses one hook payload and applies the documented defaults
// for absent fields. defaultKind is used when the payload carries no
// event_type of its own; handlers wired into the host tool's settings
// pass the kind they were installed for.
func Decode(data []byte, defaultKind Kind) (*Event, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}

	kind := defaultKind
	if v, ok := raw["event_type"].(string); ok {
		kind = Kind(v)
	}

	ev := &Event{SessionID: str(raw, "session_id", "")}

	switch kind {
	case KindUserPrompt:
		ev.Payload = UserPrompt{
			PromptType: str(raw, "prompt_type", "chat"),
			Text:       str(raw, "prompt", ""),
		}
	case KindPermission:
		ev.Payload = Permission{
			Action:   str(raw, "action", "unknown"),
			Tool:     str(raw, "tool", ""),
			Resource: str(raw, "resource", ""),
			Response: str(raw, "response", "pending"),
		}
	case KindNotification:
		ev.Payload = Notification{
			Level:   str(raw, "level", "info"),
			Type:    str(raw, "notification_type", "unknown"),
			Message: str(raw, "message", ""),
		}
	case KindSessionStart:
		ev.Payload = SessionStart{SessionType: str(raw, "session_type", "unknown")}
	case KindPreCompact:
		ev.Payload = PreCompact{CompactType: str(raw, "compact_type", "unknown")}
	case KindStop:
		ev.Payload = Stop{Reason: str(raw, "reason", "completed")}
	case KindSubagentStop:
		ev.Payload = SubagentStop{Subagent: str(raw, "subagent", "unknown")}
	case KindPreTool:
		ev.Payload = PreTool{
			ToolName:  str(raw, "tool_name", "Unknown"),
			HasParams: len(objectAt(raw, "tool_input")) > 0,
		}
	default:
		// Anything else, including the implicit "tool", is a post-tool-use
		// report.
		ev.Payload = decodeTool(raw)
	}
	return ev, nil
}

// ToolName returns the tool associated with p, or "" for kinds that do
// not carry one.
func ToolName(p Payload) string {
	switch v := p.(type) {
	case PreTool:
		return v.ToolName
	case PostTool:
		return v.ToolName
	case Permission:
		return v.Tool
	}
	return ""
}

func decodeTool(raw map[string]any) PostTool {
	name := str(raw, "tool_name", "Unknown")
	in := objectAt(raw, "tool_input")
	pt := PostTool{ToolName: name}

	switch name {
	case "Bash":
		pt.Detail = BashDetail{
			Command:     str(in, "command", ""),
			Description: str(in, "description", "No description"),
		}
	case "Read":
		pt.Detail = ReadDetail{
			FilePath: str(in, "file_path", ""),
			Offset:   numAt(in, "offset"),
			Limit:    numAt(in, "limit"),
		}
	case "Write":
		pt.Detail = WriteDetail{
			FilePath:     str(in, "file_path", ""),
			ContentChars: utf8.RuneCountInString(str(in, "content", "")),
		}
	case "Edit":
		pt.Detail = EditDetail{
			FilePath:   str(in, "file_path", ""),
			OldString:  str(in, "old_string", ""),
			NewString:  str(in, "new_string", ""),
			ReplaceAll: boolAt(in, "replace_all"),
		}
	case "Grep":
		pt.Detail = GrepDetail{
			Pattern:         str(in, "pattern", ""),
			Path:            str(in, "path", ""),
			Glob:            str(in, "glob", ""),
			OutputMode:      str(in, "output_mode", "files_with_matches"),
			CaseInsensitive: boolAt(in, "-i"),
		}
	case "Glob":
		pt.Detail = GlobDetail{
			Pattern: str(in, "pattern", ""),
			Path:    str(in, "path", ""),
		}
	case "TodoWrite":
		pt.Detail = todoDetail(sliceAt(in, "todos"))
	}
	return pt
}

func todoDetail(todos []any) TodoDetail {
	d := TodoDetail{Total: len(todos)}
	for _, item := range todos {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		switch m["status"] {
		case "completed":
			d.Completed++
		case "in_progress":
			d.InProgress++
		case "pending":
			d.Pending++
		}
	}
	return d
}

// str reads a string field, falling back to def when the key is absent
// or holds a non-string value.
func str(raw map[string]any, key, def string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return def
}

// objectAt reads a nested object, or nil when absent or mistyped.
func objectAt(raw map[string]any, key string) map[string]any {
	m, _ := raw[key].(map[string]any)
	return m
}

// numAt reads a numeric field, or nil when absent or mistyped. JSON
// null counts as absent.
func numAt(raw map[string]any, key string) *float64 {
	if v, ok := raw[key].(float64); ok {
		return &v
	}
	return nil
}

// boolAt reads a boolean field; only a literal true counts.
func boolAt(raw map[string]any, key string) bool {
	v, _ := raw[key].(bool)
	return v
}

// sliceAt reads an array field, or nil when absent or mistyped.
func sliceAt(raw map[string]any, key string) []any {
	s, _ := raw[key].([]any)
	return s
}
