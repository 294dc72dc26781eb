package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cchtools/cch/internal/event"
)

// HookEntry represents a single hook command (e.g., {"type": "command", "command": "..."}).
type HookEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// HookGroup represents a hook group with optional matcher and a hooks array.
// Claude Code format: {"matcher": "Write|Edit", "hooks": [{"type": "command", "command": "..."}]}
type HookGroup struct {
	Matcher string      `json:"matcher,omitempty"`
	Hooks   []HookEntry `json:"hooks"`
}

// eventKinds maps each Claude Code settings event to the payload kind
// the logger decodes when the payload itself carries no event_type.
var eventKinds = []struct {
	Event string
	Kind  event.Kind
}{
	{"SessionStart", event.KindSessionStart},
	{"PreToolUse", event.KindPreTool},
	{"PostToolUse", event.KindTool},
	{"UserPromptSubmit", event.KindUserPrompt},
	{"Notification", event.KindNotification},
	{"Stop", event.KindStop},
	{"SubagentStop", event.KindSubagentStop},
	{"PreCompact", event.KindPreCompact},
}

// AllEventNames returns the Claude Code hook event names cch covers, in canonical order.
func AllEventNames() []string {
	names := make([]string, len(eventKinds))
	for i, ek := range eventKinds {
		names[i] = ek.Event
	}
	return names
}

// HooksConfig represents the hooks section of Claude settings, limited
// to the events cch handles.
type HooksConfig struct {
	SessionStart     []HookGroup `json:"SessionStart,omitempty"`
	PreToolUse       []HookGroup `json:"PreToolUse,omitempty"`
	PostToolUse      []HookGroup `json:"PostToolUse,omitempty"`
	UserPromptSubmit []HookGroup `json:"UserPromptSubmit,omitempty"`
	Notification     []HookGroup `json:"Notification,omitempty"`
	Stop             []HookGroup `json:"Stop,omitempty"`
	SubagentStop     []HookGroup `json:"SubagentStop,omitempty"`
	PreCompact       []HookGroup `json:"PreCompact,omitempty"`
}

// eventGroupPtrs returns a map from event name to a pointer to the corresponding
// []HookGroup field. Used by GetEventGroups and SetEventGroups.
func (c *HooksConfig) eventGroupPtrs() map[string]*[]HookGroup {
	return map[string]*[]HookGroup{
		"SessionStart":     &c.SessionStart,
		"PreToolUse":       &c.PreToolUse,
		"PostToolUse":      &c.PostToolUse,
		"UserPromptSubmit": &c.UserPromptSubmit,
		"Notification":     &c.Notification,
		"Stop":             &c.Stop,
		"SubagentStop":     &c.SubagentStop,
		"PreCompact":       &c.PreCompact,
	}
}

// eventGroupPtr returns a pointer to the []HookGroup field for the given event name,
// or nil if the event is unknown.
func (c *HooksConfig) eventGroupPtr(event string) *[]HookGroup {
	return c.eventGroupPtrs()[event]
}

// GetEventGroups returns the hook groups for a given event name.
func (c *HooksConfig) GetEventGroups(event string) []HookGroup {
	ptr := c.eventGroupPtr(event)
	if ptr == nil {
		return nil
	}
	return *ptr
}

// SetEventGroups sets the hook groups for a given event name.
func (c *HooksConfig) SetEventGroups(event string, groups []HookGroup) {
	ptr := c.eventGroupPtr(event)
	if ptr == nil {
		return
	}
	*ptr = groups
}

// Guard modes selectable at install time.
const (
	guardModeNone   = "none"   // logger only
	guardModeBasic  = "basic"  // block console.log
	guardModeStrict = "strict" // block all console.* calls
)

// hookTimeout is the per-hook timeout, in seconds, written to settings.
const hookTimeout = 10

// guardMatcher limits guards to the tools that introduce file content.
const guardMatcher = "Write|Edit"

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Manage Claude Code hook handlers",
	Long: `The hooks command manages the cch handlers registered with Claude Code.

Subcommands:
  init       Start a session log in the current project
  install    Register handlers in Claude Code settings
  uninstall  Remove cch handlers from Claude Code settings
  show       Display current hook configuration

The handlers themselves (log, no-console-log, console-check) read one
JSON payload from stdin. Claude Code invokes them; running them by hand
is only useful for testing.

Example workflow:
  cch hooks install --guard basic  # Register logger + console.log guard
  cch hooks init                   # Start a session log
  cch doctor                       # Verify everything works`,
}

func init() {
	rootCmd.AddCommand(hooksCmd)
}

// loggerCommand builds the shell command Claude Code runs for a given
// payload kind. PostToolUse payloads are the logger's decode default,
// so that event needs no flag.
func loggerCommand(kind event.Kind) string {
	if kind == event.KindTool {
		return "cch hooks log"
	}
	return fmt.Sprintf("cch hooks log --event-type %s", kind)
}

// guardCommand returns the guard handler for a mode, or "" when the
// mode installs no guard.
func guardCommand(mode string) string {
	switch mode {
	case guardModeBasic:
		return "cch hooks no-console-log"
	case guardModeStrict:
		return "cch hooks console-check"
	}
	return ""
}

// validGuardMode reports whether mode names a known guard mode.
func validGuardMode(mode string) bool {
	switch mode {
	case guardModeNone, guardModeBasic, guardModeStrict:
		return true
	}
	return false
}

// generateHooksConfig creates the cch hooks configuration: the logger
// on every covered event, plus an optional pre-tool guard.
func generateHooksConfig(guardMode string) *HooksConfig {
	config := &HooksConfig{}
	for _, ek := range eventKinds {
		config.SetEventGroups(ek.Event, []HookGroup{
			{
				Hooks: []HookEntry{
					{Type: "command", Command: loggerCommand(ek.Kind), Timeout: hookTimeout},
				},
			},
		})
	}

	if cmd := guardCommand(guardMode); cmd != "" {
		groups := config.GetEventGroups("PreToolUse")
		groups = append(groups, HookGroup{
			Matcher: guardMatcher,
			Hooks: []HookEntry{
				{Type: "command", Command: cmd, Timeout: hookTimeout},
			},
		})
		config.SetEventGroups("PreToolUse", groups)
	}

	return config
}
