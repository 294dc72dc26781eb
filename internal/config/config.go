// Package config provides configuration management for cch.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (CLAUDE_PROJECT_DIR, CCH_*)
// 3. Project config (.cch/config.yaml in cwd)
// 4. Home config (~/.cch/config.yaml)
// 5. Defaults
//
// Handlers receive the resolved Config at startup; nothing below the
// command layer reads the environment on its own.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all cch configuration.
type Config struct {
	// ProjectDir is the host project root. The host tool injects it
	// through CLAUDE_PROJECT_DIR when it invokes a hook.
	ProjectDir string `yaml:"project_dir" json:"project_dir"`

	// SessionLogRef is the path, relative to ProjectDir, of the file
	// naming the active session log.
	SessionLogRef string `yaml:"session_log_ref" json:"session_log_ref"`

	// AuditLog is the JSONL trail of hook executions.
	AuditLog string `yaml:"audit_log" json:"audit_log"`

	// LogLevel controls handler diagnostics on stderr (zap level names).
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default config values (used in resolution and validation).
const (
	defaultSessionLogRef = "debugging/current_log_file.txt"
	defaultLogLevel      = "warn"
)

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		ProjectDir:    "",
		SessionLogRef: defaultSessionLogRef,
		AuditLog:      filepath.Join(homeDir, ".claude", "logs", "cch.jsonl"),
		LogLevel:      defaultLogLevel,
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	// Load home config
	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	// Load project config
	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	// Apply environment variables
	cfg = applyEnv(cfg)

	// Apply flag overrides
	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cch", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("CCH_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".cch", "config.yaml")
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("CLAUDE_PROJECT_DIR"); v != "" {
		cfg.ProjectDir = v
	}
	if v := os.Getenv("CCH_SESSION_LOG_REF"); v != "" {
		cfg.SessionLogRef = v
	}
	if v := os.Getenv("CCH_AUDIT_LOG"); v != "" {
		cfg.AuditLog = v
	}
	if v := os.Getenv("CCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.ProjectDir, src.ProjectDir)
	mergeStr(&dst.SessionLogRef, src.SessionLogRef)
	mergeStr(&dst.AuditLog, src.AuditLog)
	mergeStr(&dst.LogLevel, src.LogLevel)
	return dst
}

// Source represents where a config value came from.
type Source string

// Known value sources, from lowest to highest precedence.
const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.cch/config.yaml"
	SourceProject Source = ".cch/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

// getEnvString returns the value and whether the env var was set.
func getEnvString(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

// resolveStringField resolves a string through the precedence chain.
// Returns the resolved value and its source.
func resolveStringField(home, project, env, flag, def string) resolved {
	result := resolved{Value: def, Source: SourceDefault}

	if home != "" {
		result = resolved{Value: home, Source: SourceHome}
	}
	if project != "" {
		result = resolved{Value: project, Source: SourceProject}
	}
	if env != "" {
		result = resolved{Value: env, Source: SourceEnv}
	}
	if flag != "" {
		result = resolved{Value: flag, Source: SourceFlag}
	}

	return result
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	ProjectDir    resolved `json:"project_dir"`
	SessionLogRef resolved `json:"session_log_ref"`
	AuditLog      resolved `json:"audit_log"`
	LogLevel      resolved `json:"log_level"`
}

type resolved struct {
	Value  interface{} `json:"value"`
	Source Source      `json:"source"`
}

// Resolve returns configuration with source tracking.
// Uses precedence chain: flags > env > project > home > defaults.
func Resolve(flagLogLevel string) *ResolvedConfig {
	homeConfig, _ := loadFromPath(homeConfigPath())
	projectConfig, _ := loadFromPath(projectConfigPath())

	var homeProjectDir, homeSessionLogRef, homeAuditLog, homeLogLevel string
	if homeConfig != nil {
		homeProjectDir = homeConfig.ProjectDir
		homeSessionLogRef = homeConfig.SessionLogRef
		homeAuditLog = homeConfig.AuditLog
		homeLogLevel = homeConfig.LogLevel
	}

	var projectProjectDir, projectSessionLogRef, projectAuditLog, projectLogLevel string
	if projectConfig != nil {
		projectProjectDir = projectConfig.ProjectDir
		projectSessionLogRef = projectConfig.SessionLogRef
		projectAuditLog = projectConfig.AuditLog
		projectLogLevel = projectConfig.LogLevel
	}

	envProjectDir, _ := getEnvString("CLAUDE_PROJECT_DIR")
	envSessionLogRef, _ := getEnvString("CCH_SESSION_LOG_REF")
	envAuditLog, _ := getEnvString("CCH_AUDIT_LOG")
	envLogLevel, _ := getEnvString("CCH_LOG_LEVEL")

	def := Default()
	return &ResolvedConfig{
		ProjectDir:    resolveStringField(homeProjectDir, projectProjectDir, envProjectDir, "", def.ProjectDir),
		SessionLogRef: resolveStringField(homeSessionLogRef, projectSessionLogRef, envSessionLogRef, "", def.SessionLogRef),
		AuditLog:      resolveStringField(homeAuditLog, projectAuditLog, envAuditLog, "", def.AuditLog),
		LogLevel:      resolveStringField(homeLogLevel, projectLogLevel, envLogLevel, flagLogLevel, def.LogLevel),
	}
}
