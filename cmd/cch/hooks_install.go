package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	hooksGuardMode string
	hooksForce     bool
	hooksProject   bool
)

var hooksInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Register handlers in Claude Code settings",
	Long: `Install cch handlers to Claude Code settings.

This command:
  1. Reads existing settings.json (if any)
  2. Merges cch handlers with existing configuration
  3. Creates a backup of the original settings
  4. Writes the updated configuration

The logger is registered on every covered event. The --guard flag picks
the pre-tool content guard:
  none     logger only
  basic    block console.log in Write/Edit content
  strict   block console.log/warn/error/debug/info in Write/Edit content

By default settings are written to ~/.claude/settings.json. Use
--project to write the project's .claude/settings.json instead.
Use --force to overwrite existing cch hooks.`,
	RunE: runHooksInstall,
}

var hooksUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove cch handlers from Claude Code settings",
	Long: `Remove every cch-managed hook group from Claude Code settings.

Hook groups installed by other tools are left untouched. The hooks
section itself is removed when nothing remains in it.`,
	RunE: runHooksUninstall,
}

var hooksShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current hook configuration",
	Long:  `Display the current Claude Code hooks configuration and per-event cch coverage.`,
	RunE:  runHooksShow,
}

func init() {
	hooksCmd.AddCommand(hooksInstallCmd)
	hooksCmd.AddCommand(hooksUninstallCmd)
	hooksCmd.AddCommand(hooksShowCmd)

	hooksInstallCmd.Flags().StringVar(&hooksGuardMode, "guard", guardModeBasic, "Guard mode: none, basic, strict")
	hooksInstallCmd.Flags().BoolVar(&hooksForce, "force", false, "Overwrite existing cch hooks")
	hooksInstallCmd.Flags().BoolVar(&hooksProject, "project", false, "Write the project's .claude/settings.json instead of ~/.claude/settings.json")
	hooksUninstallCmd.Flags().BoolVar(&hooksProject, "project", false, "Edit the project's .claude/settings.json instead of ~/.claude/settings.json")
	hooksShowCmd.Flags().BoolVar(&hooksProject, "project", false, "Read the project's .claude/settings.json instead of ~/.claude/settings.json")
}

// hooksSettingsPath returns the settings.json location for the chosen
// scope: the project's .claude/ directory with --project, the home
// directory otherwise.
func hooksSettingsPath() (string, error) {
	if hooksProject {
		dir := os.Getenv("CLAUDE_PROJECT_DIR")
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("get working directory: %w", err)
			}
			dir = cwd
		}
		return filepath.Join(dir, ".claude", "settings.json"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude", "settings.json"), nil
}

func loadHooksSettings(settingsPath string) (map[string]any, error) {
	rawSettings := make(map[string]any)
	data, err := os.ReadFile(settingsPath)
	if err == nil {
		if err := json.Unmarshal(data, &rawSettings); err != nil {
			return nil, fmt.Errorf("parse existing settings: %w", err)
		}
		return rawSettings, nil
	}
	if os.IsNotExist(err) {
		return rawSettings, nil
	}
	return nil, fmt.Errorf("read settings: %w", err)
}

func cloneHooksMap(rawSettings map[string]any) map[string]any {
	hooksMap := make(map[string]any)
	if existing, ok := rawSettings["hooks"].(map[string]any); ok {
		for k, v := range existing {
			hooksMap[k] = v
		}
	}
	return hooksMap
}

// mergeHookEvents replaces cch-managed groups with the freshly generated
// ones, keeping hook groups installed by other tools.
func mergeHookEvents(hooksMap map[string]any, newHooks *HooksConfig, eventsToInstall []string) int {
	installedEvents := 0
	for _, event := range eventsToInstall {
		groups := filterNonCchHookGroups(hooksMap, event)
		newGroups := newHooks.GetEventGroups(event)
		for _, g := range newGroups {
			groups = append(groups, hookGroupToMap(g))
		}
		if len(newGroups) > 0 {
			hooksMap[event] = groups
			installedEvents++
		}
	}
	return installedEvents
}

func backupHooksSettings(settingsPath string) error {
	if _, err := os.Stat(settingsPath); err != nil {
		return nil
	}
	backupPath := fmt.Sprintf("%s.backup.%s", settingsPath, time.Now().Format("20060102-150405"))
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil
	}
	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	fmt.Printf("Backed up existing settings to %s\n", backupPath)
	return nil
}

func writeHooksSettings(settingsPath string, rawSettings map[string]any) error {
	// Ensure .claude directory exists
	claudeDir := filepath.Dir(settingsPath)
	if err := os.MkdirAll(claudeDir, 0755); err != nil {
		return fmt.Errorf("create .claude directory: %w", err)
	}

	// Write new settings
	data, err := json.MarshalIndent(rawSettings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(settingsPath, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func printHooksInstallSummary(settingsPath string, newHooks *HooksConfig, installedEvents int) {
	fmt.Printf("✓ Installed cch hooks to %s\n", settingsPath)
	fmt.Println()
	fmt.Printf("Hooks installed: %d/%d events\n", installedEvents, len(AllEventNames()))
	for _, event := range AllEventNames() {
		groups := newHooks.GetEventGroups(event)
		if len(groups) > 0 {
			hookCount := 0
			for _, g := range groups {
				hookCount += len(g.Hooks)
			}
			fmt.Printf("  %s: %d hook(s)\n", event, hookCount)
		}
	}
	fmt.Println()
	fmt.Println("Run 'cch hooks init' to start a session log, then 'cch doctor' to verify.")
}

// existingCchHooksBlock returns true if cch hooks are already installed and --force was not set.
func existingCchHooksBlock(rawSettings map[string]any) bool {
	if hooksForce {
		return false
	}
	existingHooks, ok := rawSettings["hooks"].(map[string]any)
	if !ok {
		return false
	}
	for _, event := range AllEventNames() {
		if hookGroupContainsCch(existingHooks, event) {
			return true
		}
	}
	return false
}

// dryRunPrintSettings prints the would-be settings and returns true if --dry-run is active.
func dryRunPrintSettings(settingsPath string, rawSettings map[string]any) (bool, error) {
	if !GetDryRun() {
		return false, nil
	}
	fmt.Println("[dry-run] Would write to", settingsPath)
	data, err := json.MarshalIndent(rawSettings, "", "  ")
	if err != nil {
		return true, fmt.Errorf("marshal hooks settings: %w", err)
	}
	fmt.Println(string(data))
	return true, nil
}

func runHooksInstall(cmd *cobra.Command, args []string) error {
	if !validGuardMode(hooksGuardMode) {
		return fmt.Errorf("unknown guard mode: %s (use none, basic, or strict)", hooksGuardMode)
	}

	settingsPath, err := hooksSettingsPath()
	if err != nil {
		return err
	}

	rawSettings, err := loadHooksSettings(settingsPath)
	if err != nil {
		return err
	}

	if existingCchHooksBlock(rawSettings) {
		fmt.Println("cch hooks already installed. Use --force to overwrite.")
		return nil
	}

	newHooks := generateHooksConfig(hooksGuardMode)
	hooksMap := cloneHooksMap(rawSettings)
	installedEvents := mergeHookEvents(hooksMap, newHooks, AllEventNames())
	rawSettings["hooks"] = hooksMap

	if done, err := dryRunPrintSettings(settingsPath, rawSettings); done || err != nil {
		return err
	}

	return commitHooksSettings(settingsPath, rawSettings, newHooks, installedEvents)
}

// commitHooksSettings backs up, writes, and prints a summary for the hooks installation.
func commitHooksSettings(settingsPath string, rawSettings map[string]any, newHooks *HooksConfig, installedEvents int) error {
	if err := backupHooksSettings(settingsPath); err != nil {
		return err
	}
	if err := writeHooksSettings(settingsPath, rawSettings); err != nil {
		return err
	}
	printHooksInstallSummary(settingsPath, newHooks, installedEvents)
	return nil
}

// removeCchHookGroups strips cch-managed groups from every event in the
// map, dropping events left with no groups. Returns the removed count.
func removeCchHookGroups(hooksMap map[string]any) int {
	removed := 0
	for evt, raw := range hooksMap {
		groups, ok := raw.([]any)
		if !ok {
			continue
		}
		kept := make([]any, 0, len(groups))
		for _, g := range groups {
			group, ok := g.(map[string]any)
			if ok && rawGroupIsCchManaged(group) {
				removed++
				continue
			}
			kept = append(kept, g)
		}
		if len(kept) == 0 {
			delete(hooksMap, evt)
		} else {
			hooksMap[evt] = kept
		}
	}
	return removed
}

func runHooksUninstall(cmd *cobra.Command, args []string) error {
	settingsPath, err := hooksSettingsPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		fmt.Println("No Claude settings found at", settingsPath)
		return nil
	}

	rawSettings, err := loadHooksSettings(settingsPath)
	if err != nil {
		return err
	}

	hooksMap := cloneHooksMap(rawSettings)
	removed := removeCchHookGroups(hooksMap)
	if removed == 0 {
		fmt.Println("cch hooks are not installed.")
		return nil
	}

	if len(hooksMap) == 0 {
		delete(rawSettings, "hooks")
	} else {
		rawSettings["hooks"] = hooksMap
	}

	if done, err := dryRunPrintSettings(settingsPath, rawSettings); done || err != nil {
		return err
	}

	if err := backupHooksSettings(settingsPath); err != nil {
		return err
	}
	if err := writeHooksSettings(settingsPath, rawSettings); err != nil {
		return err
	}
	fmt.Printf("✓ Removed %d cch hook group(s) from %s\n", removed, settingsPath)
	return nil
}

// loadHooksMap reads settings.json and extracts the hooks map.
// Returns (nil, nil) with a printed message when hooks are absent or invalid.
func loadHooksMap(settingsPath string) (map[string]any, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No Claude settings found at", settingsPath)
			fmt.Println("Run 'cch hooks install' to set up hooks.")
			return nil, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	hooks, ok := settings["hooks"]
	if !ok {
		fmt.Println("No hooks configured in", settingsPath)
		fmt.Println("Run 'cch hooks install' to set up hooks.")
		return nil, nil
	}

	hooksMap, ok := hooks.(map[string]any)
	if !ok {
		fmt.Println("Invalid hooks format in", settingsPath)
		return nil, nil
	}
	return hooksMap, nil
}

// countRawGroupHooks counts the total hooks across all entries in a raw hook group slice.
func countRawGroupHooks(groups []any) int {
	count := 0
	for _, g := range groups {
		gm, ok := g.(map[string]any)
		if !ok {
			continue
		}
		if hs, ok := gm["hooks"].([]any); ok {
			count += len(hs)
		}
	}
	return count
}

// printEventCoverage prints per-event hook coverage and returns the count of installed events.
func printEventCoverage(hooksMap map[string]any) int {
	allEvents := AllEventNames()
	installedCount := 0
	fmt.Println("Hook Event Coverage:")
	fmt.Println()
	for _, event := range allEvents {
		groups, hasEvent := hooksMap[event].([]any)
		if hasEvent && len(groups) > 0 {
			fmt.Printf("  ✓ %-20s %d hook(s)\n", event, countRawGroupHooks(groups))
			installedCount++
		} else {
			fmt.Printf("  - %-20s not installed\n", event)
		}
	}
	return installedCount
}

func runHooksShow(cmd *cobra.Command, args []string) error {
	settingsPath, err := hooksSettingsPath()
	if err != nil {
		return err
	}

	hooksMap, err := loadHooksMap(settingsPath)
	if err != nil {
		return err
	}
	if hooksMap == nil {
		return nil
	}

	installedCount := printEventCoverage(hooksMap)

	allEvents := AllEventNames()
	fmt.Println()
	fmt.Printf("%d/%d events installed\n", installedCount, len(allEvents))

	// Check for cch hooks specifically
	fmt.Println()
	cchInstalled := false
	for _, event := range allEvents {
		if hookGroupContainsCch(hooksMap, event) {
			cchInstalled = true
			break
		}
	}
	if cchInstalled {
		fmt.Println("✓ cch hooks are installed")
	} else {
		fmt.Println("⚠ cch hooks not found. Run 'cch hooks install' to set up.")
	}

	return nil
}

// rawGroupIsCchManaged checks whether a single raw hook group (map[string]any)
// contains a cch-managed command.
func rawGroupIsCchManaged(group map[string]any) bool {
	hooks, ok := group["hooks"].([]any)
	if !ok {
		return false
	}
	for _, h := range hooks {
		hook, ok := h.(map[string]any)
		if !ok {
			continue
		}
		if cmd, ok := hook["command"].(string); ok && isCchManagedHookCommand(cmd) {
			return true
		}
	}
	return false
}

// hookGroupContainsCch checks if any hook group in the given event contains a cch command.
func hookGroupContainsCch(hooksMap map[string]any, event string) bool {
	groups, ok := hooksMap[event].([]any)
	if !ok {
		return false
	}
	for _, g := range groups {
		group, ok := g.(map[string]any)
		if !ok {
			continue
		}
		if rawGroupIsCchManaged(group) {
			return true
		}
	}
	return false
}

// filterNonCchHookGroups returns hook groups that don't contain cch commands.
func filterNonCchHookGroups(hooksMap map[string]any, event string) []map[string]any {
	result := make([]map[string]any, 0)
	groups, ok := hooksMap[event].([]any)
	if !ok {
		return result
	}
	for _, g := range groups {
		group, ok := g.(map[string]any)
		if !ok {
			continue
		}
		if !rawGroupIsCchManaged(group) {
			result = append(result, group)
		}
	}
	return result
}

func isCchManagedHookCommand(cmd string) bool {
	return strings.Contains(cmd, "cch ")
}

// hookGroupToMap converts a HookGroup to a map for JSON serialization.
func hookGroupToMap(g HookGroup) map[string]any {
	hooks := make([]map[string]any, len(g.Hooks))
	for i, h := range g.Hooks {
		entry := map[string]any{
			"type":    h.Type,
			"command": h.Command,
		}
		if h.Timeout > 0 {
			entry["timeout"] = h.Timeout
		}
		hooks[i] = entry
	}
	result := map[string]any{
		"hooks": hooks,
	}
	if g.Matcher != "" {
		result["matcher"] = g.Matcher
	}
	return result
}
