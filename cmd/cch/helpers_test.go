package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// clearHookEnv points HOME and the cch environment at temp dirs so
// command tests never touch the real user config. Returns the temp
// home and project directories.
func clearHookEnv(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CLAUDE_PROJECT_DIR", project)
	t.Setenv("CCH_CONFIG", "")
	t.Setenv("CCH_SESSION_LOG_REF", "")
	t.Setenv("CCH_AUDIT_LOG", filepath.Join(home, "audit.jsonl"))
	t.Setenv("CCH_LOG_LEVEL", "")
	return home, project
}

// newHandlerCommand wraps a handler RunE in a bare command with
// captured output streams, the way Claude Code would invoke it.
func newHandlerCommand(run func(*cobra.Command, []string) error) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := &cobra.Command{
		Use:           "handler",
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errBuf)
	return cmd, out, errBuf
}
