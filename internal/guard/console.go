// Package guard implements the content checks behind the write-guard
// hooks. Two checks coexist on purpose: a blunt substring match and a
// stricter word-boundary pattern. They answer differently on inputs
// like "xconsole.log(" and are kept divergent rather than unified.
package guard

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// BlockMessage is the refusal printed by the substring check.
const BlockMessage = "console.log statements are not allowed in production code"

// PassMessage is the confirmation printed by the strict check when the
// content is clean. The host tool surfaces it as context, not as an
// error.
const PassMessage = "Code review passed: No console statements found."

var consoleCall = regexp.MustCompile(`\bconsole\.(log|warn|error|debug|info)\s*\(`)

type payload struct {
	ToolInput struct {
		NewString string `json:"newString"`
		Content   string `json:"content"`
	} `json:"tool_input"`
}

// Content extracts the text under review from a write or edit payload.
// A non-empty newString wins over content; both absent means empty.
// The decode error is returned as-is so callers control its framing.
func Content(data []byte) (string, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return "", err
	}
	if p.ToolInput.NewString != "" {
		return p.ToolInput.NewString, nil
	}
	return p.ToolInput.Content, nil
}

// HasConsoleLog reports whether content contains the literal text
// "console.log" anywhere, including inside comments and string
// literals.
func HasConsoleLog(content string) bool {
	return strings.Contains(content, "console.log")
}

// ConsoleMethods returns the distinct console methods invoked in
// content, in first-seen order. Only word-boundary calls count, so
// "xconsole.log(" does not match.
func ConsoleMethods(content string) []string {
	var methods []string
	seen := make(map[string]bool)
	for _, m := range consoleCall.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			methods = append(methods, m[1])
		}
	}
	return methods
}

// BlockReason renders the strict check's refusal, naming each matched
// method once.
func BlockReason(methods []string) string {
	return fmt.Sprintf("Found console.%s statements in code. Use proper logging instead.", strings.Join(methods, ", "))
}
