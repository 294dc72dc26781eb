package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cchtools/cch/internal/config"
)

var (
	configShow bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and manage cch configuration.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables
  3. Project config (.cch/config.yaml)
  4. Home config (~/.cch/config.yaml)
  5. Defaults

Environment variables:
  CLAUDE_PROJECT_DIR  - Project root, injected by Claude Code on every hook call
  CCH_CONFIG          - Explicit config file path (overrides default project config location)
  CCH_SESSION_LOG_REF - Session log reference file, relative to the project root
  CCH_AUDIT_LOG       - Audit trail path (JSONL)
  CCH_LOG_LEVEL       - Handler diagnostics level (debug, info, warn, error)

Examples:
  cch config --show           # Show resolved configuration
  cch config --show -o json   # Output as JSON`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show resolved configuration with sources")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if !configShow {
		// Show help if no flags
		return cmd.Help()
	}

	var flagLogLevel string
	if GetVerbose() {
		flagLogLevel = "debug"
	}

	// Get resolved config with sources
	resolved := config.Resolve(flagLogLevel)

	if GetOutput() == "json" {
		data, err := json.MarshalIndent(resolved, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	// Print table format
	fmt.Println("cch Configuration")
	fmt.Println("=================")
	fmt.Println()

	fmt.Println("Config files:")
	homeConfig := filepath.Join(os.Getenv("HOME"), ".cch", "config.yaml")
	if _, err := os.Stat(homeConfig); err == nil {
		fmt.Printf("  ✓ Home:    %s\n", homeConfig)
	} else {
		fmt.Printf("  ✗ Home:    %s (not found)\n", homeConfig)
	}

	cwd, _ := os.Getwd()
	projectConfig := filepath.Join(cwd, ".cch", "config.yaml")
	if _, err := os.Stat(projectConfig); err == nil {
		fmt.Printf("  ✓ Project: %s\n", projectConfig)
	} else {
		fmt.Printf("  ✗ Project: %s (not found)\n", projectConfig)
	}

	fmt.Println()
	fmt.Println("Resolved values:")
	fmt.Printf("  project_dir:     %v  (from %s)\n", resolved.ProjectDir.Value, resolved.ProjectDir.Source)
	fmt.Printf("  session_log_ref: %v  (from %s)\n", resolved.SessionLogRef.Value, resolved.SessionLogRef.Source)
	fmt.Printf("  audit_log:       %v  (from %s)\n", resolved.AuditLog.Value, resolved.AuditLog.Source)
	fmt.Printf("  log_level:       %v  (from %s)\n", resolved.LogLevel.Value, resolved.LogLevel.Source)

	fmt.Println()
	fmt.Println("Environment variables (if set):")
	envVars := []string{
		"CLAUDE_PROJECT_DIR",
		"CCH_CONFIG",
		"CCH_SESSION_LOG_REF",
		"CCH_AUDIT_LOG",
		"CCH_LOG_LEVEL",
	}
	anySet := false
	for _, env := range envVars {
		if v := os.Getenv(env); v != "" {
			fmt.Printf("  %s=%s\n", env, v)
			anySet = true
		}
	}
	if !anySet {
		fmt.Println("  (none set)")
	}

	return nil
}
