// Package config holds the server's workspace settings: the LSP-supplied
// configuration (initializationOptions / workspace/didChangeConfiguration)
// merged with an optional on-disk default file and environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"jls/internal/logging"

	"gopkg.in/yaml.v3"
)

// DiagnosticsConfig controls the diagnostics provider.
type DiagnosticsConfig struct {
	Enable        bool   `json:"enable" yaml:"enable"`
	UnusedImports string `json:"unusedImports" yaml:"unusedImports"` // off|warning|error
}

// FeaturesConfig toggles optional LSP capabilities.
type FeaturesConfig struct {
	InlayHints     bool `json:"inlayHints" yaml:"inlayHints"`
	SemanticTokens bool `json:"semanticTokens" yaml:"semanticTokens"`
}

// GenerateConstructorConfig filters the field set used by the
// "generate constructor" code action.
type GenerateConstructorConfig struct {
	Include []string `json:"include" yaml:"include"`
}

// CodeActionsConfig groups per-code-action settings.
type CodeActionsConfig struct {
	GenerateConstructor GenerateConstructorConfig `json:"generateConstructor" yaml:"generateConstructor"`
}

// CacheConfig controls on-disk persistent state location.
type CacheConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

// Config holds all jls server configuration.
type Config struct {
	ClassPath            []string          `json:"classPath" yaml:"classPath"`
	DocPath              []string          `json:"docPath" yaml:"docPath"`
	ExternalDependencies []string          `json:"externalDependencies" yaml:"externalDependencies"`
	AddExports           []string          `json:"addExports" yaml:"addExports"`
	MavenSettings        string            `json:"mavenSettings" yaml:"mavenSettings"`
	ImportOrder          string            `json:"importOrder" yaml:"importOrder"`
	Diagnostics          DiagnosticsConfig `json:"diagnostics" yaml:"diagnostics"`
	Features             FeaturesConfig    `json:"features" yaml:"features"`
	CodeActions          CodeActionsConfig `json:"codeActions" yaml:"codeActions"`
	Cache                CacheConfig       `json:"cache" yaml:"cache"`
	Logging              LoggingConfig     `json:"logging" yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Diagnostics: DiagnosticsConfig{
			Enable:        true,
			UnusedImports: "warning",
		},
		Features: FeaturesConfig{
			InlayHints:     true,
			SemanticTokens: true,
		},
		ImportOrder: "java,javax,org,com",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads an optional workspace default-settings file (`.jls.yaml`) and
// layers it over DefaultConfig. A missing file is not an error: the server
// runs on defaults until the client's initializationOptions arrive.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("Loading workspace defaults from: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("No workspace config file, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		logging.BootError("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.BootError("Failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("Workspace config loaded from %s", path)

	return cfg, nil
}

// Save writes the configuration back to a YAML file, e.g. after a
// workspace/didChangeConfiguration round-trip an operator wants persisted.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// MergeJSON decodes an LSP initializationOptions/didChangeConfiguration
// payload and overlays it onto the receiver. The settings may be nested
// under either a "jls" or "java" key, or be the bare settings object.
func (c *Config) MergeJSON(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	settings := raw
	if inner, ok := envelope["jls"]; ok {
		settings = inner
	} else if inner, ok := envelope["java"]; ok {
		settings = inner
	}

	if err := json.Unmarshal(settings, c); err != nil {
		return fmt.Errorf("failed to parse jls/java settings: %w", err)
	}

	return nil
}

// applyEnvOverrides layers environment-supplied fallbacks onto the config.
func (c *Config) applyEnvOverrides() {
	if len(c.ClassPath) == 0 {
		if cp := os.Getenv("CLASSPATH"); cp != "" {
			c.ClassPath = splitPathList(cp)
		}
	}
	if c.Cache.Dir == "" {
		if dir := os.Getenv("CACHE"); dir != "" {
			c.Cache.Dir = dir
		}
	}
}

func splitPathList(s string) []string {
	sep := ":"
	if runtime.GOOS == "windows" {
		sep = ";"
	}
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep[0] {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// CacheDir resolves the effective cache root: the explicit override, or the
// XDG default ($XDG_CACHE_HOME/jls or $HOME/.cache/jls).
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "jls")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "jls")
	}
	return filepath.Join(home, ".cache", "jls")
}

// Validate checks the configuration for internally inconsistent settings.
func (c *Config) Validate() error {
	switch c.Diagnostics.UnusedImports {
	case "", "off", "warning", "error":
	default:
		return fmt.Errorf("invalid diagnostics.unusedImports: %s (valid: off, warning, error)", c.Diagnostics.UnusedImports)
	}
	return nil
}
