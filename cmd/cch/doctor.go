package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cchtools/cch/internal/audit"
	"github.com/cchtools/cch/internal/hooklog"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the cch installation",
	Long: `Run health checks on the cch installation.

Validates that the handlers are registered, the session log is
reachable, and the audit trail is writable. Optional components are
reported as warnings but do not cause failure.

Examples:
  cch doctor
  cch doctor --json`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output results as JSON")
	rootCmd.AddCommand(doctorCmd)
}

type doctorCheck struct {
	Name     string `json:"name"`
	Status   string `json:"status"` // "pass", "warn", "fail"
	Detail   string `json:"detail"`
	Required bool   `json:"required"`
}

type doctorOutput struct {
	Checks  []doctorCheck `json:"checks"`
	Result  string        `json:"result"` // "HEALTHY", "UNHEALTHY"
	Summary string        `json:"summary"`
}

// gatherDoctorChecks runs all doctor checks and returns the results.
func gatherDoctorChecks(rt *runtime) []doctorCheck {
	return []doctorCheck{
		{Name: "cch CLI", Status: "pass", Detail: fmt.Sprintf("v%s", version), Required: true},
		checkBinaryInPath(),
		checkClaudeSettings(),
		checkProjectDir(rt),
		checkSessionLog(rt),
		checkAuditTrail(rt),
	}
}

// doctorStatusIcon returns the display icon for a check status.
func doctorStatusIcon(status string) string {
	switch status {
	case "pass":
		return "✓"
	case "warn":
		return "!"
	case "fail":
		return "✗"
	}
	return "?"
}

// renderDoctorTable writes the formatted doctor output table.
func renderDoctorTable(w io.Writer, output doctorOutput) {
	fmt.Fprintln(w, "cch doctor")
	fmt.Fprintln(w, "──────────")

	maxName := 0
	for _, c := range output.Checks {
		if len(c.Name) > maxName {
			maxName = len(c.Name)
		}
	}

	for _, c := range output.Checks {
		padding := strings.Repeat(" ", maxName-len(c.Name))
		fmt.Fprintf(w, "%s %s%s  %s\n", doctorStatusIcon(c.Status), c.Name, padding, c.Detail)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", output.Summary)
}

// hasRequiredFailure returns true if any required check has failed.
func hasRequiredFailure(checks []doctorCheck) bool {
	for _, c := range checks {
		if c.Required && c.Status == "fail" {
			return true
		}
	}
	return false
}

func runDoctor(cmd *cobra.Command, args []string) error {
	rt := newRuntime()
	defer rt.close()

	output := computeResult(gatherDoctorChecks(rt))
	w := cmd.OutOrStdout()

	if doctorJSON {
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal doctor output: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	renderDoctorTable(w, output)

	if hasRequiredFailure(output.Checks) {
		return fmt.Errorf("doctor failed: one or more required checks did not pass")
	}

	return nil
}

// checkBinaryInPath verifies that registered hook commands can find cch.
func checkBinaryInPath() doctorCheck {
	path, err := exec.LookPath("cch")
	if err != nil {
		return doctorCheck{
			Name:     "cch in PATH",
			Status:   "warn",
			Detail:   "not found — registered hooks cannot run until cch is on PATH",
			Required: false,
		}
	}
	return doctorCheck{Name: "cch in PATH", Status: "pass", Detail: path, Required: false}
}

// checkClaudeSettings looks for cch hooks in the home settings first,
// then the project settings.
func checkClaudeSettings() doctorCheck {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return doctorCheck{Name: "Claude Settings", Status: "fail", Detail: "cannot determine home directory", Required: true}
	}

	paths := []string{filepath.Join(homeDir, ".claude", "settings.json")}
	if dir := os.Getenv("CLAUDE_PROJECT_DIR"); dir != "" {
		paths = append(paths, filepath.Join(dir, ".claude", "settings.json"))
	} else if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".claude", "settings.json"))
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var settings map[string]any
		if err := json.Unmarshal(data, &settings); err != nil {
			continue
		}
		hooksMap, ok := settings["hooks"].(map[string]any)
		if !ok {
			continue
		}
		if check, found := evaluateHookCoverage(hooksMap); found {
			return check
		}
	}

	return doctorCheck{
		Name:     "Claude Settings",
		Status:   "warn",
		Detail:   "no cch hooks found — run 'cch hooks install'",
		Required: false,
	}
}

// evaluateHookCoverage grades cch coverage in a hooks map. found is
// false when the map carries no cch hooks at all.
func evaluateHookCoverage(hooksMap map[string]any) (check doctorCheck, found bool) {
	covered := 0
	for _, event := range AllEventNames() {
		if hookGroupContainsCch(hooksMap, event) {
			covered++
		}
	}
	if covered == 0 {
		return doctorCheck{}, false
	}

	total := len(AllEventNames())
	if covered < total {
		return doctorCheck{
			Name:     "Claude Settings",
			Status:   "warn",
			Detail:   fmt.Sprintf("partial coverage: %d/%d events — run 'cch hooks install --force'", covered, total),
			Required: false,
		}, true
	}
	return doctorCheck{
		Name:     "Claude Settings",
		Status:   "pass",
		Detail:   fmt.Sprintf("full coverage: %d/%d events", covered, total),
		Required: false,
	}, true
}

func checkProjectDir(rt *runtime) doctorCheck {
	if rt.cfg.ProjectDir != "" {
		if _, err := os.Stat(rt.cfg.ProjectDir); err != nil {
			return doctorCheck{Name: "Project Dir", Status: "fail", Detail: fmt.Sprintf("%s does not exist", rt.cfg.ProjectDir), Required: false}
		}
		return doctorCheck{Name: "Project Dir", Status: "pass", Detail: rt.cfg.ProjectDir, Required: false}
	}
	return doctorCheck{
		Name:     "Project Dir",
		Status:   "warn",
		Detail:   "CLAUDE_PROJECT_DIR not set — handlers resolve paths from the working directory",
		Required: false,
	}
}

func checkSessionLog(rt *runtime) doctorCheck {
	path, err := hooklog.Resolve(rt.cfg.ProjectDir, rt.cfg.SessionLogRef)
	if err != nil {
		return doctorCheck{Name: "Session Log", Status: "fail", Detail: err.Error(), Required: false}
	}
	if path == "" {
		return doctorCheck{
			Name:     "Session Log",
			Status:   "warn",
			Detail:   "no active session — run 'cch hooks init'",
			Required: false,
		}
	}
	return doctorCheck{Name: "Session Log", Status: "pass", Detail: path, Required: false}
}

func checkAuditTrail(rt *runtime) doctorCheck {
	path := rt.cfg.AuditLog
	if path == "" {
		return doctorCheck{Name: "Audit Trail", Status: "warn", Detail: "disabled (empty audit_log)", Required: false}
	}

	entries, err := audit.Query(path, audit.Filters{})
	if err != nil {
		return doctorCheck{Name: "Audit Trail", Status: "fail", Detail: fmt.Sprintf("unreadable: %v", err), Required: false}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return doctorCheck{Name: "Audit Trail", Status: "fail", Detail: fmt.Sprintf("cannot create %s: %v", filepath.Dir(path), err), Required: false}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return doctorCheck{Name: "Audit Trail", Status: "fail", Detail: fmt.Sprintf("not writable: %v", err), Required: false}
	}
	_ = f.Close()

	return doctorCheck{
		Name:     "Audit Trail",
		Status:   "pass",
		Detail:   fmt.Sprintf("%s (%d entries)", path, len(entries)),
		Required: false,
	}
}

// countCheckStatuses tallies pass, fail, and warn counts from checks.
func countCheckStatuses(checks []doctorCheck) (passes, fails, warns int) {
	for _, c := range checks {
		switch c.Status {
		case "pass":
			passes++
		case "fail":
			fails++
		case "warn":
			warns++
		}
	}
	return passes, fails, warns
}

// buildDoctorSummary constructs a human-readable summary from check tallies.
func buildDoctorSummary(passes, fails, warns, total int) string {
	switch {
	case fails == 0 && warns == 0:
		return fmt.Sprintf("%d/%d checks passed", passes, total)
	case fails == 0:
		summary := fmt.Sprintf("%d/%d checks passed, %d warning", passes, total, warns)
		if warns > 1 {
			summary += "s"
		}
		return summary
	default:
		parts := []string{fmt.Sprintf("%d/%d checks passed", passes, total)}
		if warns > 0 {
			w := fmt.Sprintf("%d warning", warns)
			if warns > 1 {
				w += "s"
			}
			parts = append(parts, w)
		}
		if fails > 0 {
			parts = append(parts, fmt.Sprintf("%d failed", fails))
		}
		return strings.Join(parts, ", ")
	}
}

func computeResult(checks []doctorCheck) doctorOutput {
	passes, fails, warns := countCheckStatuses(checks)
	total := len(checks)

	result := "HEALTHY"
	if fails > 0 {
		result = "UNHEALTHY"
	}

	return doctorOutput{
		Checks:  checks,
		Result:  result,
		Summary: buildDoctorSummary(passes, fails, warns, total),
	}
}
