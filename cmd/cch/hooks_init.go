package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cchtools/cch/internal/config"
	"github.com/cchtools/cch/internal/hooklog"
)

var hooksInitForce bool

var hooksInitCmd = &cobra.Command{
	Use:   "init [description]",
	Short: "Start a session log in the current project",
	Long: `Create a dated session log and point the log reference at it.

This creates:
  debugging/log-YYYY_MM_DD-HH_MM[-description].md  - The session log
  debugging/current_log_file.txt                   - Reference naming the active log

Once the reference exists, every Claude Code event flows into the log
via 'cch hooks log'. To stop logging, delete the reference file; to
rotate, run init again with --force.

The optional description is slugged into the log file name:
  cch hooks init "auth bug"   # debugging/log-2024_03_15-12_30-auth-bug.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHooksInit,
}

func init() {
	hooksCmd.AddCommand(hooksInitCmd)
	hooksInitCmd.Flags().BoolVar(&hooksInitForce, "force", false, "Start a new log even when one is active")
}

func runHooksInit(cmd *cobra.Command, args []string) error {
	rt := newRuntime()
	defer rt.close()

	description := ""
	if len(args) > 0 {
		description = args[0]
	}

	return initSessionLog(rt.cfg, description, hooksInitForce, GetDryRun(), time.Now(), cmd.OutOrStdout())
}

// initSessionLog creates the dated log file and activates it through
// the reference file. An already-active session blocks unless force is
// set.
func initSessionLog(cfg *config.Config, description string, force, dryRun bool, now time.Time, w io.Writer) error {
	projectDir := cfg.ProjectDir
	if projectDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		projectDir = cwd
	}

	active, err := hooklog.Resolve(projectDir, cfg.SessionLogRef)
	if err != nil {
		return err
	}
	if active != "" && !force {
		fmt.Fprintf(w, "Session log already active: %s\n", active)
		fmt.Fprintln(w, "Use --force to start a new one.")
		return nil
	}

	refPath := filepath.Join(projectDir, cfg.SessionLogRef)
	logDir := filepath.Dir(refPath)
	logPath := filepath.Join(logDir, sessionLogName(now, description))

	if dryRun {
		fmt.Fprintf(w, "[dry-run] Would create %s\n", logPath)
		fmt.Fprintf(w, "[dry-run] Would activate it via %s\n", refPath)
		return nil
	}

	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		fmt.Fprintf(w, "✓ Created %s%c\n", logDir, filepath.Separator)
	}

	header := fmt.Sprintf("# Session Log\n\nStarted: %s\n", now.Format(time.RFC3339))
	if err := os.WriteFile(logPath, []byte(header), 0644); err != nil {
		return fmt.Errorf("create session log: %w", err)
	}
	fmt.Fprintf(w, "✓ Created %s\n", logPath)

	absPath, err := filepath.Abs(logPath)
	if err != nil {
		absPath = logPath
	}
	if err := os.WriteFile(refPath, []byte(absPath+"\n"), 0644); err != nil {
		return fmt.Errorf("write log reference: %w", err)
	}
	fmt.Fprintf(w, "✓ Activated via %s\n", refPath)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Claude Code events will now be appended to the log.")
	fmt.Fprintf(w, "To stop logging, delete %s\n", refPath)
	return nil
}

// sessionLogName builds the dated log file name, with an optional
// slugged description.
func sessionLogName(now time.Time, description string) string {
	name := "log-" + now.Format("2006_01_02-15_04")
	if slug := slugify(description); slug != "" {
		name += "-" + slug
	}
	return name + ".md"
}

// slugify lowercases and keeps [a-z0-9], mapping separators to hyphens.
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
