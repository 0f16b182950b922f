package buildconfig

import (
	"context"
	"os"
	"runtime"
	"time"

	"jls/internal/logging"
)

func existsOnDisk(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Options carries the user-facing configuration knobs that affect
// inference: explicit overrides always win over any build-tool detection.
type Options struct {
	ExplicitClassPath []string
	ExplicitDocPath   []string
	ExternalDeps      []string
	MavenSettings     string
	ExtraArgs         []string
	Timeout           time.Duration
}

// Engine resolves the classpath/doc-path for a workspace root, sharing one
// caching wrapper across all three build-tool paths.
type Engine struct {
	cache *diskCache
}

// NewEngine creates an Engine whose inference cache lives under cacheDir.
func NewEngine(cacheDir string) *Engine {
	return &Engine{cache: newDiskCache(cacheDir)}
}

// Resolve implements the explicit -> Maven/Gradle/Bazel -> CLASSPATH-env ->
// empty fallback chain described in the build-configuration-inference
// component, with fingerprint-keyed caching shared across all three tools.
func (e *Engine) Resolve(ctx context.Context, root string, opts Options) (Result, Tool) {
	if len(opts.ExplicitClassPath) > 0 || len(opts.ExplicitDocPath) > 0 {
		logging.BuildConfig("using explicit classPath/docPath override")
		return Result{ClassPath: opts.ExplicitClassPath, DocPath: opts.ExplicitDocPath}, ToolExplicit
	}

	tool := DetectTool(root)
	if tool == ToolNone {
		if cp := os.Getenv("CLASSPATH"); cp != "" {
			logging.BuildConfig("no build file found, falling back to CLASSPATH env")
			return Result{ClassPath: splitPathList(cp)}, ToolNone
		}
		logging.BuildConfig("no build file and no CLASSPATH env; compiling against JDK only")
		return Result{}, ToolNone
	}

	goal := string(tool)
	fp := ComputeFingerprint(root, opts.ExternalDeps, opts.MavenSettings, goal, opts.ExtraArgs)

	if cached, ok := e.cache.Load(fp); ok {
		logging.BuildConfigDebug("inference cache hit for %s (%s)", root, tool)
		return cached, tool
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var result Result
	switch tool {
	case ToolMaven:
		result = runMaven(ctx, root, opts.ExtraArgs, timeout)
	case ToolGradle:
		result = runGradle(ctx, root, opts.ExtraArgs, timeout)
	case ToolBazel:
		result = runBazel(ctx, root, opts.ExtraArgs, timeout)
	}

	if len(result.ClassPath) == 0 {
		if cp := os.Getenv("CLASSPATH"); cp != "" {
			logging.BuildConfig("%s inference returned no jars; falling back to CLASSPATH env", tool)
			result.ClassPath = splitPathList(cp)
		}
	}

	if err := e.cache.Store(fp, result); err != nil {
		logging.BuildConfigWarn("failed to persist inference cache: %v", err)
	}

	return result, tool
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
