// Package logging provides config-driven categorized file-based logging for jls.
// Logs are written to .jls/logs/ with separate files per category.
// Logging is controlled by debug_mode in .jls/config.json - when false, no logs are written.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot        Category = "boot"        // server startup/shutdown, capability negotiation
	CategoryFileStore   Category = "file_store"  // workspace scan, open/change/close tracking
	CategoryIndex       Category = "index"       // token index build/update
	CategorySearch      Category = "search"      // string search queries
	CategoryBuildConfig Category = "build_config" // Maven/Gradle/Bazel inference
	CategoryClasspath   Category = "classpath"   // JDK/classpath scanning
	CategoryCompiler    Category = "compiler"    // compiler facade, compile tasks
	CategoryLombok      Category = "lombok"      // lombok metadata computation
	CategoryProviders   Category = "providers"   // request providers (hover, completion, etc.)
	CategoryDispatcher  Category = "dispatcher"  // request dispatch, settings, progress
	CategoryWatcher     Category = "watcher"     // filesystem watcher
)

// loggingConfig mirrors the relevant parts of config.LoggingConfig
// to avoid circular imports.
type loggingConfig struct {
	DebugMode  bool            `json:"debug_mode"`
	Categories map[string]bool `json:"categories"`
	Level      string          `json:"level"`
	JSONFormat bool            `json:"json_format"`
}

// configFile structure for reading .jls/config.json.
type configFile struct {
	Logging loggingConfig `json:"logging"`
}

// StructuredLogEntry is a JSON log entry.
type StructuredLogEntry struct {
	Timestamp int64                  `json:"ts"`
	Category  string                 `json:"cat"`
	Level     string                 `json:"lvl"`
	Message   string                 `json:"msg"`
	RequestID string                 `json:"req,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers      = make(map[Category]*Logger)
	loggersMu    sync.RWMutex
	logsDir      string
	workspace    string
	config       loggingConfig
	configLoaded bool
	configMu     sync.RWMutex
	logLevel     int
)

const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Initialize sets up the logging directory and loads config.
// Should be called once at startup with the workspace path.
func Initialize(ws string) error {
	if ws == "" {
		return fmt.Errorf("workspace path required")
	}

	workspace = ws
	logsDir = filepath.Join(workspace, ".jls", "logs")

	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not load config: %v\n", err)
		config.DebugMode = false
	}

	if !config.DebugMode {
		return nil
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	bootLogger := Get(CategoryBoot)
	bootLogger.Info("=== jls logging initialized ===")
	bootLogger.Info("Workspace: %s", workspace)
	bootLogger.Info("Logs directory: %s", logsDir)
	bootLogger.Info("Debug mode: %v", config.DebugMode)
	bootLogger.Info("Log level: %s", config.Level)

	if len(config.Categories) > 0 {
		enabledCount := 0
		for cat, enabled := range config.Categories {
			if enabled {
				enabledCount++
			}
			bootLogger.Debug("Category '%s': %v", cat, enabled)
		}
		bootLogger.Info("Enabled categories: %d/%d", enabledCount, len(config.Categories))
	} else {
		bootLogger.Info("All categories enabled (no category filter)")
	}

	return nil
}

// loadConfig reads the logging config from .jls/config.json.
func loadConfig() error {
	configMu.Lock()
	defer configMu.Unlock()

	configPath := filepath.Join(workspace, ".jls", "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			config.DebugMode = false
			configLoaded = true
			return nil
		}
		return err
	}

	var cf configFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	config = cf.Logging
	configLoaded = true

	switch config.Level {
	case "debug":
		logLevel = LevelDebug
	case "info":
		logLevel = LevelInfo
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}

	return nil
}

// ReloadConfig reloads the config from disk. Call after workspace/didChangeConfiguration.
func ReloadConfig() error {
	return loadConfig()
}

// IsDebugMode returns whether debug logging is enabled.
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !config.DebugMode {
		return false
	}
	if config.Categories == nil {
		return true
	}
	enabled, exists := config.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled or the category is disabled.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}
	if logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s.log", date, category)
	logPath := filepath.Join(logsDir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l

	return l
}

func (l *Logger) logJSON(level, msg string) {
	entry := StructuredLogEntry{
		Timestamp: time.Now().UnixMilli(),
		Category:  string(l.category),
		Level:     level,
		Message:   msg,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.Printf("[%s] %s", level, msg)
		return
	}
	l.logger.Printf("%s", data)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if config.JSONFormat {
		l.logJSON("debug", msg)
	} else {
		l.logger.Printf("[DEBUG] %s", msg)
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if config.JSONFormat {
		l.logJSON("info", msg)
	} else {
		l.logger.Printf("[INFO] %s", msg)
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if config.JSONFormat {
		l.logJSON("warn", msg)
	} else {
		l.logger.Printf("[WARN] %s", msg)
	}
}

// Error logs an error message (always logged if logger exists).
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if config.JSONFormat {
		l.logJSON("error", msg)
	} else {
		l.logger.Printf("[ERROR] %s", msg)
	}
}

// StructuredLog writes a fully structured log entry with custom fields.
func (l *Logger) StructuredLog(level string, msg string, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	entry := StructuredLogEntry{
		Timestamp: time.Now().UnixMilli(),
		Category:  string(l.category),
		Level:     level,
		Message:   msg,
		Fields:    fields,
	}
	if config.JSONFormat {
		data, err := json.Marshal(entry)
		if err == nil {
			l.logger.Printf("%s", data)
			return
		}
	}
	l.logger.Printf("[%s] %s | fields=%v", level, msg, fields)
}

// IsJSONFormat returns whether JSON logging is enabled.
func IsJSONFormat() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return config.JSONFormat
}

// WithContext returns a context logger for structured logging.
func (l *Logger) WithContext(ctx map[string]interface{}) *ContextLogger {
	return &ContextLogger{logger: l, context: ctx}
}

// ContextLogger provides structured logging with key-value context.
type ContextLogger struct {
	logger  *Logger
	context map[string]interface{}
}

func (c *ContextLogger) Debug(format string, args ...interface{}) {
	if c.logger.logger == nil || logLevel > LevelDebug {
		return
	}
	msg := fmt.Sprintf(format, args...)
	c.logger.logger.Printf("[DEBUG] %s | ctx=%v", msg, c.context)
}

func (c *ContextLogger) Info(format string, args ...interface{}) {
	if c.logger.logger == nil || logLevel > LevelInfo {
		return
	}
	msg := fmt.Sprintf(format, args...)
	c.logger.logger.Printf("[INFO] %s | ctx=%v", msg, c.context)
}

func (c *ContextLogger) Warn(format string, args ...interface{}) {
	if c.logger.logger == nil || logLevel > LevelWarn {
		return
	}
	msg := fmt.Sprintf(format, args...)
	c.logger.logger.Printf("[WARN] %s | ctx=%v", msg, c.context)
}

func (c *ContextLogger) Error(format string, args ...interface{}) {
	if c.logger.logger == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	c.logger.logger.Printf("[ERROR] %s | ctx=%v", msg, c.context)
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// Convenience wrappers, one pair per category.
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{})  { Get(CategoryBoot).Debug(format, args...) }
func BootWarn(format string, args ...interface{})   { Get(CategoryBoot).Warn(format, args...) }
func BootError(format string, args ...interface{})  { Get(CategoryBoot).Error(format, args...) }

func FileStore(format string, args ...interface{})      { Get(CategoryFileStore).Info(format, args...) }
func FileStoreDebug(format string, args ...interface{})  { Get(CategoryFileStore).Debug(format, args...) }
func FileStoreWarn(format string, args ...interface{})   { Get(CategoryFileStore).Warn(format, args...) }
func FileStoreError(format string, args ...interface{})  { Get(CategoryFileStore).Error(format, args...) }

func Index(format string, args ...interface{})      { Get(CategoryIndex).Info(format, args...) }
func IndexDebug(format string, args ...interface{})  { Get(CategoryIndex).Debug(format, args...) }
func IndexWarn(format string, args ...interface{})   { Get(CategoryIndex).Warn(format, args...) }
func IndexError(format string, args ...interface{})  { Get(CategoryIndex).Error(format, args...) }

func Search(format string, args ...interface{})     { Get(CategorySearch).Info(format, args...) }
func SearchDebug(format string, args ...interface{}) { Get(CategorySearch).Debug(format, args...) }

func BuildConfig(format string, args ...interface{})     { Get(CategoryBuildConfig).Info(format, args...) }
func BuildConfigDebug(format string, args ...interface{}) { Get(CategoryBuildConfig).Debug(format, args...) }
func BuildConfigWarn(format string, args ...interface{})  { Get(CategoryBuildConfig).Warn(format, args...) }
func BuildConfigError(format string, args ...interface{}) { Get(CategoryBuildConfig).Error(format, args...) }

func Classpath(format string, args ...interface{})     { Get(CategoryClasspath).Info(format, args...) }
func ClasspathDebug(format string, args ...interface{}) { Get(CategoryClasspath).Debug(format, args...) }
func ClasspathWarn(format string, args ...interface{})  { Get(CategoryClasspath).Warn(format, args...) }
func ClasspathError(format string, args ...interface{}) { Get(CategoryClasspath).Error(format, args...) }

func Compiler(format string, args ...interface{})     { Get(CategoryCompiler).Info(format, args...) }
func CompilerDebug(format string, args ...interface{}) { Get(CategoryCompiler).Debug(format, args...) }
func CompilerWarn(format string, args ...interface{})  { Get(CategoryCompiler).Warn(format, args...) }
func CompilerError(format string, args ...interface{}) { Get(CategoryCompiler).Error(format, args...) }

func Lombok(format string, args ...interface{})     { Get(CategoryLombok).Info(format, args...) }
func LombokDebug(format string, args ...interface{}) { Get(CategoryLombok).Debug(format, args...) }

func Providers(format string, args ...interface{})     { Get(CategoryProviders).Info(format, args...) }
func ProvidersDebug(format string, args ...interface{}) { Get(CategoryProviders).Debug(format, args...) }
func ProvidersWarn(format string, args ...interface{})  { Get(CategoryProviders).Warn(format, args...) }
func ProvidersError(format string, args ...interface{}) { Get(CategoryProviders).Error(format, args...) }

func Dispatcher(format string, args ...interface{})     { Get(CategoryDispatcher).Info(format, args...) }
func DispatcherDebug(format string, args ...interface{}) { Get(CategoryDispatcher).Debug(format, args...) }
func DispatcherWarn(format string, args ...interface{})  { Get(CategoryDispatcher).Warn(format, args...) }
func DispatcherError(format string, args ...interface{}) { Get(CategoryDispatcher).Error(format, args...) }

func Watcher(format string, args ...interface{})     { Get(CategoryWatcher).Info(format, args...) }
func WatcherDebug(format string, args ...interface{}) { Get(CategoryWatcher).Debug(format, args...) }
func WatcherWarn(format string, args ...interface{})  { Get(CategoryWatcher).Warn(format, args...) }
func WatcherError(format string, args ...interface{}) { Get(CategoryWatcher).Error(format, args...) }

// =============================================================================
// Timing helpers.
// =============================================================================

// Timer helps measure operation duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level.
func (t *Timer) StopWithInfo() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Info("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold, debug otherwise.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
