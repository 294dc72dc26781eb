package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	dryRun  bool
	verbose bool
	output  string
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cch",
	Short: "Claude Code hook handlers",
	Long: `cch is a toolkit of Claude Code hook handlers: a session event logger
and content guards, plus the commands to install and observe them.

Get Started:
  hooks init     Start a session log in the current project
  hooks install  Register cch handlers in Claude Code settings

Handlers (invoked by Claude Code, not by hand):
  hooks log             Append a hook event to the session log
  hooks no-console-log  Block console.log in edited files
  hooks console-check   Block all console.* calls in edited files

Observe:
  logs       Query the hook audit trail
  doctor     Check the cch installation
  config     Show resolved configuration

Handlers read one JSON payload on stdin and exit fast; the logger never
fails the calling session, the guards exit nonzero to block.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.cch/config.yaml)")
}

// GetDryRun returns the dry-run flag value for use by subcommands.
func GetDryRun() bool {
	return dryRun
}

// GetVerbose returns the verbose flag value for use by subcommands.
func GetVerbose() bool {
	return verbose
}

// GetOutput returns the output format for use by subcommands.
func GetOutput() string {
	return output
}

// GetConfigFile returns the config file path for use by subcommands.
func GetConfigFile() string {
	return cfgFile
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(GetConfigFile())
	if path == "" {
		return
	}
	_ = os.Setenv("CCH_CONFIG", path)
}
