package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetState() {
	CloseAll()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	workspace = ""
	configLoaded = false
	config = loggingConfig{}
}

func TestAllCategoriesLog(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".jls")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"categories": {
				"boot": true,
				"file_store": true,
				"index": true,
				"search": true,
				"build_config": true,
				"classpath": true,
				"compiler": true,
				"lombok": true,
				"providers": true,
				"dispatcher": true,
				"watcher": true
			}
		}
	}`

	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	resetState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if !IsDebugMode() {
		t.Error("Expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryBoot, CategoryFileStore, CategoryIndex, CategorySearch,
		CategoryBuildConfig, CategoryClasspath, CategoryCompiler,
		CategoryLombok, CategoryProviders, CategoryDispatcher, CategoryWatcher,
	}

	for _, cat := range categories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be enabled", cat)
		}
		logger := Get(cat)
		logger.Info("Test info message for %s", cat)
		logger.Debug("Test debug message for %s", cat)
		logger.Warn("Test warn message for %s", cat)
		logger.Error("Test error message for %s", cat)
	}

	Boot("Convenience boot log")
	FileStore("Convenience file_store log")
	Index("Convenience index log")
	Search("Convenience search log")
	BuildConfig("Convenience build_config log")
	Classpath("Convenience classpath log")
	Compiler("Convenience compiler log")
	Lombok("Convenience lombok log")
	Providers("Convenience providers log")
	Dispatcher("Convenience dispatcher log")
	Watcher("Convenience watcher log")

	CloseAll()

	logsPath := filepath.Join(tempDir, ".jls", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}

	for _, cat := range categories {
		found := false
		for _, entry := range entries {
			if strings.Contains(entry.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
				if err != nil {
					t.Errorf("Failed to read log file for %s: %v", cat, err)
					continue
				}
				if len(content) == 0 {
					t.Errorf("Log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("No log file found for category: %s", cat)
		}
	}
}

func TestDebugModeDisabled(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_disabled")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".jls")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": false,
			"categories": {"boot": true, "compiler": true}
		}
	}`

	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	resetState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if IsDebugMode() {
		t.Error("Expected debug mode to be DISABLED (production mode)")
	}

	for _, cat := range []Category{CategoryBoot, CategoryCompiler, CategoryWatcher} {
		if IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be DISABLED when debug_mode=false", cat)
		}
	}

	Boot("This should NOT be logged")
	Compiler("This should NOT be logged")

	logger := Get(CategoryBoot)
	logger.Info("This should NOT be logged")

	CloseAll()

	logsPath := filepath.Join(tempDir, ".jls", "logs")
	if _, err := os.Stat(logsPath); err == nil {
		entries, _ := os.ReadDir(logsPath)
		if len(entries) > 0 {
			t.Errorf("Expected NO log files in production mode, but found %d files", len(entries))
		}
	} else if !os.IsNotExist(err) {
		t.Fatalf("unexpected stat error: %v", err)
	}
}

func TestCategoryToggle(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_category")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".jls")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"categories": {
				"boot": true,
				"compiler": true,
				"watcher": false,
				"search": false
			}
		}
	}`

	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	resetState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	if !IsCategoryEnabled(CategoryBoot) {
		t.Error("boot should be enabled")
	}
	if !IsCategoryEnabled(CategoryCompiler) {
		t.Error("compiler should be enabled")
	}
	if IsCategoryEnabled(CategoryWatcher) {
		t.Error("watcher should be DISABLED")
	}
	if IsCategoryEnabled(CategorySearch) {
		t.Error("search should be DISABLED")
	}
	if !IsCategoryEnabled(CategoryLombok) {
		t.Error("lombok (not in config) should default to enabled")
	}

	Boot("This SHOULD be logged")
	Compiler("This SHOULD be logged")
	Watcher("This should NOT be logged")
	Search("This should NOT be logged")
	Lombok("This SHOULD be logged (default enabled)")

	CloseAll()

	logsPath := filepath.Join(tempDir, ".jls", "logs")
	entries, _ := os.ReadDir(logsPath)

	var hasBoot, hasCompiler, hasWatcher, hasSearch bool
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.Contains(name, "boot"):
			hasBoot = true
		case strings.Contains(name, "compiler"):
			hasCompiler = true
		case strings.Contains(name, "watcher"):
			hasWatcher = true
		case strings.Contains(name, "search"):
			hasSearch = true
		}
	}

	if !hasBoot {
		t.Error("Expected boot log file")
	}
	if !hasCompiler {
		t.Error("Expected compiler log file")
	}
	if hasWatcher {
		t.Error("Should NOT have watcher log file (disabled)")
	}
	if hasSearch {
		t.Error("Should NOT have search log file (disabled)")
	}
}

func TestTimerLogging(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_timer")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".jls")
	os.MkdirAll(configDir, 0755)

	configContent := `{"logging": {"level": "debug", "debug_mode": true}}`
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte(configContent), 0644)

	resetState()
	Initialize(tempDir)

	timer := StartTimer(CategoryCompiler, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()

	if elapsed <= 0 {
		t.Error("Timer should have recorded non-zero duration")
	}

	CloseAll()
}
