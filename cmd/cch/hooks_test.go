package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAllEventNames(t *testing.T) {
	events := AllEventNames()
	if len(events) != 8 {
		t.Fatalf("expected 8 events, got %d", len(events))
	}
	expected := []string{
		"SessionStart", "PreToolUse",
		"PostToolUse", "UserPromptSubmit",
		"Notification", "Stop",
		"SubagentStop", "PreCompact",
	}
	for i, e := range expected {
		if events[i] != e {
			t.Errorf("event %d: expected %s, got %s", i, e, events[i])
		}
	}
}

func TestHooksConfigGetSetEventGroups(t *testing.T) {
	config := &HooksConfig{}
	groups := []HookGroup{
		{Hooks: []HookEntry{{Type: "command", Command: "test"}}},
	}

	for _, event := range AllEventNames() {
		config.SetEventGroups(event, groups)
		got := config.GetEventGroups(event)
		if len(got) != 1 {
			t.Errorf("event %s: expected 1 group after set, got %d", event, len(got))
		}
	}

	// Unknown event returns nil
	if got := config.GetEventGroups("Unknown"); got != nil {
		t.Error("expected nil for unknown event")
	}
}

func TestGenerateHooksConfigLoggerOnly(t *testing.T) {
	hooks := generateHooksConfig(guardModeNone)

	for _, event := range AllEventNames() {
		groups := hooks.GetEventGroups(event)
		if len(groups) != 1 {
			t.Fatalf("event %s: expected 1 group, got %d", event, len(groups))
		}
		if len(groups[0].Hooks) != 1 {
			t.Fatalf("event %s: expected 1 hook, got %d", event, len(groups[0].Hooks))
		}
		h := groups[0].Hooks[0]
		if h.Type != "command" {
			t.Errorf("event %s: expected command type, got %s", event, h.Type)
		}
		if !strings.HasPrefix(h.Command, "cch hooks log") {
			t.Errorf("event %s: expected logger command, got %s", event, h.Command)
		}
		if h.Timeout != hookTimeout {
			t.Errorf("event %s: expected timeout %d, got %d", event, hookTimeout, h.Timeout)
		}
	}
}

func TestGenerateHooksConfigEventTypes(t *testing.T) {
	hooks := generateHooksConfig(guardModeNone)

	cases := []struct {
		event   string
		command string
	}{
		{"SessionStart", "cch hooks log --event-type session_start"},
		{"PreToolUse", "cch hooks log --event-type pre_tool"},
		{"PostToolUse", "cch hooks log"},
		{"UserPromptSubmit", "cch hooks log --event-type user_prompt"},
		{"Notification", "cch hooks log --event-type notification"},
		{"Stop", "cch hooks log --event-type stop"},
		{"SubagentStop", "cch hooks log --event-type subagent_stop"},
		{"PreCompact", "cch hooks log --event-type pre_compact"},
	}
	for _, tc := range cases {
		groups := hooks.GetEventGroups(tc.event)
		if len(groups) == 0 || len(groups[0].Hooks) == 0 {
			t.Fatalf("event %s: no hooks generated", tc.event)
		}
		if got := groups[0].Hooks[0].Command; got != tc.command {
			t.Errorf("event %s: expected %q, got %q", tc.event, tc.command, got)
		}
	}
}

func TestGenerateHooksConfigGuardModes(t *testing.T) {
	basic := generateHooksConfig(guardModeBasic)
	groups := basic.GetEventGroups("PreToolUse")
	if len(groups) != 2 {
		t.Fatalf("basic: expected 2 PreToolUse groups, got %d", len(groups))
	}
	if groups[1].Matcher != "Write|Edit" {
		t.Errorf("basic: expected Write|Edit matcher, got %q", groups[1].Matcher)
	}
	if groups[1].Hooks[0].Command != "cch hooks no-console-log" {
		t.Errorf("basic: expected no-console-log guard, got %q", groups[1].Hooks[0].Command)
	}

	strict := generateHooksConfig(guardModeStrict)
	groups = strict.GetEventGroups("PreToolUse")
	if len(groups) != 2 {
		t.Fatalf("strict: expected 2 PreToolUse groups, got %d", len(groups))
	}
	if groups[1].Hooks[0].Command != "cch hooks console-check" {
		t.Errorf("strict: expected console-check guard, got %q", groups[1].Hooks[0].Command)
	}

	none := generateHooksConfig(guardModeNone)
	if got := len(none.GetEventGroups("PreToolUse")); got != 1 {
		t.Errorf("none: expected 1 PreToolUse group, got %d", got)
	}
	// Guards never attach to other events
	if got := len(basic.GetEventGroups("PostToolUse")); got != 1 {
		t.Errorf("basic: expected 1 PostToolUse group, got %d", got)
	}
}

func TestValidGuardMode(t *testing.T) {
	for _, mode := range []string{guardModeNone, guardModeBasic, guardModeStrict} {
		if !validGuardMode(mode) {
			t.Errorf("expected %q to be valid", mode)
		}
	}
	for _, mode := range []string{"", "all", "Basic"} {
		if validGuardMode(mode) {
			t.Errorf("expected %q to be invalid", mode)
		}
	}
}

func TestIsCchManagedHookCommand(t *testing.T) {
	cases := []struct {
		cmd     string
		managed bool
	}{
		{"cch hooks log", true},
		{"cch hooks log --event-type stop", true},
		{"/usr/local/bin/cch hooks no-console-log", true},
		{"my-custom-hook", false},
		{"echo cch", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isCchManagedHookCommand(tc.cmd); got != tc.managed {
			t.Errorf("%q: expected %v, got %v", tc.cmd, tc.managed, got)
		}
	}
}

func TestHookGroupToMap(t *testing.T) {
	g := HookGroup{
		Matcher: "Write|Edit",
		Hooks: []HookEntry{
			{Type: "command", Command: "cch hooks no-console-log", Timeout: 10},
		},
	}

	m := hookGroupToMap(g)
	if m["matcher"] != "Write|Edit" {
		t.Errorf("expected matcher Write|Edit, got %v", m["matcher"])
	}
	hooks, ok := m["hooks"].([]map[string]any)
	if !ok || len(hooks) != 1 {
		t.Fatalf("expected 1 hook map, got %v", m["hooks"])
	}
	if hooks[0]["timeout"] != 10 {
		t.Errorf("expected timeout 10, got %v", hooks[0]["timeout"])
	}

	// Empty matcher and zero timeout are omitted
	m2 := hookGroupToMap(HookGroup{Hooks: []HookEntry{{Type: "command", Command: "x"}}})
	if _, exists := m2["matcher"]; exists {
		t.Error("expected no matcher key when Matcher is empty")
	}
	hooks2 := m2["hooks"].([]map[string]any)
	if _, exists := hooks2[0]["timeout"]; exists {
		t.Error("expected no timeout key when Timeout is 0")
	}
}

func TestFilterNonCchHookGroups(t *testing.T) {
	hooksMap := map[string]any{
		"PreToolUse": []any{
			map[string]any{
				"hooks": []any{
					map[string]any{"type": "command", "command": "cch hooks no-console-log"},
				},
			},
			map[string]any{
				"hooks": []any{
					map[string]any{"type": "command", "command": "my-custom-hook"},
				},
			},
		},
	}

	filtered := filterNonCchHookGroups(hooksMap, "PreToolUse")
	if len(filtered) != 1 {
		t.Fatalf("expected 1 non-cch group, got %d", len(filtered))
	}
	hooks := filtered[0]["hooks"].([]any)
	if hooks[0].(map[string]any)["command"] != "my-custom-hook" {
		t.Errorf("expected custom hook preserved, got %v", hooks[0])
	}

	if got := filterNonCchHookGroups(hooksMap, "Stop"); len(got) != 0 {
		t.Errorf("expected no groups for absent event, got %d", len(got))
	}
}

func TestHookGroupContainsCch(t *testing.T) {
	hooksMap := map[string]any{
		"Stop": []any{
			map[string]any{
				"hooks": []any{
					map[string]any{"type": "command", "command": "cch hooks log --event-type stop"},
				},
			},
		},
		"PreToolUse": []any{
			map[string]any{
				"hooks": []any{
					map[string]any{"type": "command", "command": "other-tool"},
				},
			},
		},
	}

	if !hookGroupContainsCch(hooksMap, "Stop") {
		t.Error("expected cch hook detected in Stop")
	}
	if hookGroupContainsCch(hooksMap, "PreToolUse") {
		t.Error("expected no cch hook in PreToolUse")
	}
	if hookGroupContainsCch(hooksMap, "Notification") {
		t.Error("expected no cch hook in absent event")
	}
}

func TestMergeHookEventsPreservesForeignGroups(t *testing.T) {
	hooksMap := map[string]any{
		"PreToolUse": []any{
			map[string]any{
				"hooks": []any{
					map[string]any{"type": "command", "command": "cch hooks no-console-log"},
				},
			},
			map[string]any{
				"hooks": []any{
					map[string]any{"type": "command", "command": "my-custom-hook"},
				},
			},
		},
	}

	installed := mergeHookEvents(hooksMap, generateHooksConfig(guardModeStrict), AllEventNames())
	if installed != len(AllEventNames()) {
		t.Fatalf("expected %d installed events, got %d", len(AllEventNames()), installed)
	}

	groups, ok := hooksMap["PreToolUse"].([]map[string]any)
	if !ok {
		t.Fatalf("expected merged group slice, got %T", hooksMap["PreToolUse"])
	}
	// Foreign group first, then the fresh logger and guard groups.
	if len(groups) != 3 {
		t.Fatalf("expected 3 PreToolUse groups, got %d", len(groups))
	}
	first := groups[0]["hooks"].([]any)
	if first[0].(map[string]any)["command"] != "my-custom-hook" {
		t.Errorf("expected foreign group preserved first, got %v", first[0])
	}
}

func TestRemoveCchHookGroups(t *testing.T) {
	hooksMap := map[string]any{
		"Stop": []any{
			map[string]any{
				"hooks": []any{
					map[string]any{"type": "command", "command": "cch hooks log --event-type stop"},
				},
			},
		},
		"PreToolUse": []any{
			map[string]any{
				"hooks": []any{
					map[string]any{"type": "command", "command": "cch hooks no-console-log"},
				},
			},
			map[string]any{
				"hooks": []any{
					map[string]any{"type": "command", "command": "my-custom-hook"},
				},
			},
		},
	}

	removed := removeCchHookGroups(hooksMap)
	if removed != 2 {
		t.Fatalf("expected 2 removed groups, got %d", removed)
	}
	if _, exists := hooksMap["Stop"]; exists {
		t.Error("expected Stop event dropped once empty")
	}
	groups, ok := hooksMap["PreToolUse"].([]any)
	if !ok || len(groups) != 1 {
		t.Fatalf("expected 1 surviving PreToolUse group, got %v", hooksMap["PreToolUse"])
	}
}

func TestCountRawGroupHooks(t *testing.T) {
	groups := []any{
		map[string]any{"hooks": []any{map[string]any{}, map[string]any{}}},
		map[string]any{"hooks": []any{map[string]any{}}},
		"not a group",
	}
	if got := countRawGroupHooks(groups); got != 3 {
		t.Errorf("expected 3 hooks, got %d", got)
	}
}

func TestExistingCchHooksBlock(t *testing.T) {
	defer func() { hooksForce = false }()

	raw := map[string]any{
		"hooks": map[string]any{
			"Stop": []any{
				map[string]any{
					"hooks": []any{
						map[string]any{"type": "command", "command": "cch hooks log --event-type stop"},
					},
				},
			},
		},
	}

	hooksForce = false
	if !existingCchHooksBlock(raw) {
		t.Error("expected existing cch hooks to block without --force")
	}

	hooksForce = true
	if existingCchHooksBlock(raw) {
		t.Error("expected --force to bypass the existing-hooks block")
	}

	hooksForce = false
	if existingCchHooksBlock(map[string]any{}) {
		t.Error("expected empty settings not to block")
	}
}

func TestLoadHooksSettings(t *testing.T) {
	dir := t.TempDir()

	// Missing file yields an empty map
	settings, err := loadHooksSettings(filepath.Join(dir, "settings.json"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if len(settings) != 0 {
		t.Errorf("expected empty settings, got %v", settings)
	}

	// Existing settings are preserved
	path := filepath.Join(dir, "existing.json")
	if err := os.WriteFile(path, []byte(`{"model": "opus", "hooks": {}}`), 0644); err != nil {
		t.Fatal(err)
	}
	settings, err = loadHooksSettings(path)
	if err != nil {
		t.Fatalf("existing file: %v", err)
	}
	if settings["model"] != "opus" {
		t.Errorf("expected unrelated settings preserved, got %v", settings)
	}

	// Malformed settings are an error, not silently clobbered
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadHooksSettings(bad); err == nil {
		t.Error("expected error for malformed settings")
	}
}

func TestRunHooksInstallAndUninstall(t *testing.T) {
	home, _ := clearHookEnv(t)
	defer func() {
		hooksGuardMode = guardModeBasic
		hooksForce = false
		hooksProject = false
	}()
	hooksGuardMode = guardModeBasic
	hooksForce = false
	hooksProject = false

	if err := runHooksInstall(nil, nil); err != nil {
		t.Fatalf("install: %v", err)
	}

	settingsPath := filepath.Join(home, ".claude", "settings.json")
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		t.Fatalf("parse settings: %v", err)
	}
	hooksMap, ok := settings["hooks"].(map[string]any)
	if !ok {
		t.Fatal("expected hooks section in settings")
	}
	for _, event := range AllEventNames() {
		if !hookGroupContainsCch(hooksMap, event) {
			t.Errorf("event %s: expected cch hook installed", event)
		}
	}
	pre, ok := hooksMap["PreToolUse"].([]any)
	if !ok || len(pre) != 2 {
		t.Fatalf("expected logger + guard on PreToolUse, got %v", hooksMap["PreToolUse"])
	}

	// Second install without --force leaves settings untouched
	before := string(data)
	if err := runHooksInstall(nil, nil); err != nil {
		t.Fatalf("reinstall: %v", err)
	}
	after, err := os.ReadFile(settingsPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != before {
		t.Error("expected second install without --force to change nothing")
	}

	// Uninstall strips every cch group and the empty hooks section
	if err := runHooksUninstall(nil, nil); err != nil {
		t.Fatalf("uninstall: %v", err)
	}
	data, err = os.ReadFile(settingsPath)
	if err != nil {
		t.Fatal(err)
	}
	settings = map[string]any{}
	if err := json.Unmarshal(data, &settings); err != nil {
		t.Fatal(err)
	}
	if _, exists := settings["hooks"]; exists {
		t.Errorf("expected hooks section removed, got %v", settings["hooks"])
	}
}

func TestRunHooksInstallRejectsUnknownGuardMode(t *testing.T) {
	clearHookEnv(t)
	defer func() { hooksGuardMode = guardModeBasic }()

	hooksGuardMode = "aggressive"
	if err := runHooksInstall(nil, nil); err == nil {
		t.Error("expected error for unknown guard mode")
	}
}

func TestRunHooksInstallDryRun(t *testing.T) {
	home, _ := clearHookEnv(t)
	defer func() {
		dryRun = false
		hooksGuardMode = guardModeBasic
	}()
	dryRun = true
	hooksGuardMode = guardModeBasic

	if err := runHooksInstall(nil, nil); err != nil {
		t.Fatalf("dry-run install: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".claude", "settings.json")); !os.IsNotExist(err) {
		t.Error("expected dry-run to write nothing")
	}
}

func TestRunHooksInstallPreservesForeignSettings(t *testing.T) {
	home, _ := clearHookEnv(t)
	defer func() {
		hooksGuardMode = guardModeBasic
		hooksForce = false
	}()
	hooksGuardMode = guardModeNone
	hooksForce = false

	claudeDir := filepath.Join(home, ".claude")
	if err := os.MkdirAll(claudeDir, 0755); err != nil {
		t.Fatal(err)
	}
	existing := `{
  "model": "opus",
  "hooks": {
    "PreToolUse": [{"hooks": [{"type": "command", "command": "my-linter --check"}]}]
  }
}`
	settingsPath := filepath.Join(claudeDir, "settings.json")
	if err := os.WriteFile(settingsPath, []byte(existing), 0644); err != nil {
		t.Fatal(err)
	}

	if err := runHooksInstall(nil, nil); err != nil {
		t.Fatalf("install: %v", err)
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		t.Fatal(err)
	}
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		t.Fatal(err)
	}
	if settings["model"] != "opus" {
		t.Errorf("expected unrelated settings preserved, got %v", settings["model"])
	}
	hooksMap := settings["hooks"].(map[string]any)
	pre := hooksMap["PreToolUse"].([]any)
	if len(pre) != 2 {
		t.Fatalf("expected foreign group + logger, got %d groups", len(pre))
	}
	foreign := pre[0].(map[string]any)["hooks"].([]any)
	if foreign[0].(map[string]any)["command"] != "my-linter --check" {
		t.Errorf("expected foreign hook preserved first, got %v", foreign[0])
	}

	// A backup of the original settings is written alongside
	entries, err := os.ReadDir(claudeDir)
	if err != nil {
		t.Fatal(err)
	}
	backupFound := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "settings.json.backup.") {
			backupFound = true
		}
	}
	if !backupFound {
		t.Error("expected settings backup to be created")
	}
}
