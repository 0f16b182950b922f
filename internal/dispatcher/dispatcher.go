// Package dispatcher applies configuration, routes editor requests to the
// request providers, schedules background lint, and publishes progress —
// the component named in spec §4.6. It owns every process-wide component
// (File Store, Token Index, Compiler Façade, Build Config Engine, Watcher)
// and threads them explicitly into providers rather than exposing them as
// ambient globals.
package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"jls/internal/buildconfig"
	"jls/internal/classpath"
	"jls/internal/compiler"
	"jls/internal/config"
	"jls/internal/filestore"
	"jls/internal/index"
	"jls/internal/javaparse"
	"jls/internal/lombok"
	"jls/internal/logging"
	"jls/internal/providers"
)

// ProgressFunc reports a named phase of a possibly long-running operation,
// mirroring the custom java/startProgress -> java/reportProgress ->
// java/endProgress notification triple alongside the standard LSP
// $/progress flow.
type ProgressFunc func(phase string, done bool)

// DiagnosticsPublisher is called once per file whenever Lint recomputes its
// diagnostics, the dispatcher's push side of textDocument/publishDiagnostics.
type DiagnosticsPublisher func(providers.FileDiagnostics)

// Dispatcher is the single owner of every process-wide mutable component
// named in the concurrency model (§5): the File Store, the Token Index, and
// the inference caches. Compile-bound requests are serialized by acquiring
// mu for the duration of their provider call; read-only token lookups go
// through the Index's own lock and do not need mu.
type Dispatcher struct {
	mu sync.Mutex

	root string
	cfg  *config.Config

	store       *filestore.Store
	index       *index.Index
	lombokStore *lombok.Store
	facade      *compiler.Facade
	buildEngine *buildconfig.Engine
	watcher     *filestore.Watcher
	parser      *javaparse.Parser

	classpathSet *classpath.Set
	javaHome     string
	buildTool    buildconfig.Tool

	buildStale bool
	settings   compiler.Settings

	Progress  ProgressFunc
	Publish   DiagnosticsPublisher
	lintTimer *time.Timer
	lintMu    sync.Mutex
}

// New creates a Dispatcher bound to a workspace root and its resolved
// configuration. Call Initialize before serving any requests.
func New(root string, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		root:   root,
		cfg:    cfg,
		parser: javaparse.New(),
	}
}

func (d *Dispatcher) progress(phase string, done bool) {
	if d.Progress != nil {
		d.Progress(phase, done)
	}
}

// Initialize performs the one-time workspace bring-up: scans the file
// store, loads the token-index cache, resolves the classpath, and starts
// the filesystem watcher. Each phase is reported through Progress so a
// slow Maven/Gradle subprocess invocation shows up to the client.
func (d *Dispatcher) Initialize(ctx context.Context) error {
	d.progress("Configure javac", false)
	defer d.progress("Configure javac", true)

	cacheDir := d.workspaceCacheDir()
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		logging.DispatcherWarn("failed to create cache dir %s: %v", cacheDir, err)
	}

	d.progress("Finding source roots", false)
	d.store = filestore.New(cacheDir)
	if err := d.store.SetWorkspaceRoots([]string{d.root}); err != nil {
		d.progress("Finding source roots", true)
		return fmt.Errorf("dispatcher: scan workspace: %w", err)
	}
	d.progress("Finding source roots", true)

	d.index = index.New(cacheDir)
	if err := d.index.LoadCache([]string{d.root}); err != nil {
		logging.DispatcherWarn("failed to load token index cache: %v", err)
	}
	d.indexAllFiles()

	d.lombokStore = lombok.NewStore()
	d.buildEngine = buildconfig.NewEngine(cacheDir)
	d.javaHome = os.Getenv("JAVA_HOME")

	if err := d.rebuildCompiler(ctx); err != nil {
		return err
	}

	w, err := filestore.NewWatcher(d.store)
	if err != nil {
		logging.DispatcherWarn("failed to start filesystem watcher: %v", err)
	} else {
		w.OnBuildFileEvent = func(path string) {
			logging.Dispatcher("build file changed: %s, marking compiler stale", path)
			d.mu.Lock()
			d.buildStale = true
			d.mu.Unlock()
		}
		if err := w.AddRoot(d.root); err != nil {
			logging.DispatcherWarn("failed to watch workspace root: %v", err)
		}
		w.Start()
		d.watcher = w
	}

	return nil
}

func (d *Dispatcher) indexAllFiles() {
	for _, path := range d.store.AllFiles() {
		content, err := d.store.Contents(path)
		if err != nil {
			continue
		}
		modTime, err := d.store.Modified(path)
		if err != nil {
			continue
		}
		d.index.UpdateFile(path, modTime, []byte(content))
	}
}

func (d *Dispatcher) workspaceCacheDir() string {
	base := d.cfg.CacheDir()
	name := fmt.Sprintf("%s-%s", filepath.Base(d.root), shortHash(d.root))
	return filepath.Join(base, name)
}

func shortHash(s string) string {
	h := classpath.HashInputs([]string{s})
	if len(h) > 8 {
		return h[:8]
	}
	return h
}

// rebuildCompiler resolves (or re-resolves) the classpath/doc-path and
// rebuilds the Façade. Called from Initialize and again whenever a watched
// build file changes or settings differ, per §4.6.
func (d *Dispatcher) rebuildCompiler(ctx context.Context) error {
	d.progress("Inferring class path", false)
	opts := buildconfig.Options{
		ExplicitClassPath: d.cfg.ClassPath,
		ExplicitDocPath:   d.cfg.DocPath,
		ExternalDeps:      d.cfg.ExternalDependencies,
		MavenSettings:     d.cfg.MavenSettings,
	}
	result, tool := d.buildEngine.Resolve(ctx, d.root, opts)
	d.buildTool = tool
	if tool != buildconfig.ToolNone && tool != buildconfig.ToolExplicit {
		d.progress("Using cached classpath", true)
	}
	d.progress("Inferring class path", true)

	d.progress("Inferring doc path", false)
	_ = result.DocPath // the doc-path is not passed on to the façade or the classpath set
	d.progress("Inferring doc path", true)

	cacheDir := d.workspaceCacheDir()
	d.classpathSet = classpath.NewSet(cacheDir, d.javaHome, result.ClassPath)

	d.settings = compiler.Settings{
		ClassPath:   result.ClassPath,
		AddExports:  d.cfg.AddExports,
		LombokAware: true,
	}

	if d.facade == nil {
		d.facade = compiler.NewFacade(d.store, d.index, d.classpathSet, d.lombokStore)
	}
	d.facade.UpdateSettings(d.settings)
	d.buildStale = false
	return nil
}

// ensureCompilerCurrent rebuilds the façade only when a watched build file
// changed since the last build, recreating it lazily on the next request
// rather than eagerly on the watcher goroutine (the watcher only flags
// staleness; rebuilding runs on the requesting goroutine so a slow Maven
// invocation blocks that one request, not the whole server).
func (d *Dispatcher) ensureCompilerCurrent(ctx context.Context) error {
	d.mu.Lock()
	stale := d.buildStale
	d.mu.Unlock()
	if !stale {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rebuildCompiler(ctx)
}

// ApplyConfig merges an initializationOptions/didChangeConfiguration
// payload into the live configuration and marks the façade stale if any
// field affecting compilation changed.
func (d *Dispatcher) ApplyConfig(ctx context.Context, raw json.RawMessage) error {
	prev := *d.cfg
	if err := d.cfg.MergeJSON(raw); err != nil {
		return err
	}
	if !stringsEqual(prev.ClassPath, d.cfg.ClassPath) ||
		!stringsEqual(prev.DocPath, d.cfg.DocPath) ||
		!stringsEqual(prev.AddExports, d.cfg.AddExports) ||
		!stringsEqual(prev.ExternalDependencies, d.cfg.ExternalDependencies) ||
		prev.MavenSettings != d.cfg.MavenSettings {
		d.mu.Lock()
		d.buildStale = true
		d.mu.Unlock()
	}
	logging.ReloadConfig()
	return nil
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Shutdown stops the watcher, flushes every disk cache, and releases any
// outstanding compile lease.
func (d *Dispatcher) Shutdown() {
	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.index != nil {
		if err := d.index.SaveCache(); err != nil {
			logging.DispatcherWarn("failed to save token index cache: %v", err)
		}
	}
	if d.store != nil {
		d.store.Close()
	}
}

// ---------------------------------------------------------------------
// Document lifecycle
// ---------------------------------------------------------------------

// DidOpen tracks an opened buffer and reindexes it immediately so
// candidate-filter lookups see the editor's live content right away.
func (d *Dispatcher) DidOpen(path, text string, version int) {
	d.store.Open(path, text, version)
	d.index.UpdateFile(path, time.Now(), []byte(text))
}

// DidChange applies buffer edits and reindexes, then schedules a debounced
// re-lint tick (the "debounce re-lint last edited file into an async tick"
// behavior named in §4.6).
func (d *Dispatcher) DidChange(path string, changes []filestore.Change, version int, relint func()) error {
	if err := d.store.Change(path, changes, version); err != nil {
		return err
	}
	content, err := d.store.Contents(path)
	if err == nil {
		d.index.UpdateFile(path, time.Now(), []byte(content))
	}
	d.scheduleRelint(relint)
	return nil
}

func (d *Dispatcher) scheduleRelint(relint func()) {
	if relint == nil {
		return
	}
	d.lintMu.Lock()
	defer d.lintMu.Unlock()
	if d.lintTimer != nil {
		d.lintTimer.Stop()
	}
	d.lintTimer = time.AfterFunc(300*time.Millisecond, relint)
}

// DidClose drops the open buffer. Per §7, diagnostics previously published
// for the file are only cleared by the caller when it chooses to (the
// dispatcher does not force-clear on close; it is the LSP layer's decision
// whether to publish an empty diagnostics set).
func (d *Dispatcher) DidClose(path string) {
	d.store.Close(path)
}

// DidSave re-lints the saved file plus every file that FindTypeReferences
// reports as referring to its class name. References are not followed
// further: a file that reaches the class only through another file is not
// re-linted.
func (d *Dispatcher) DidSave(ctx context.Context, path string) ([]providers.FileDiagnostics, error) {
	files := []string{path}
	if pkg, err := d.store.PackageName(path); err == nil {
		qualified := pkg
		base := filepath.Base(path)
		if len(base) > len(".java") {
			simple := base[:len(base)-len(".java")]
			if pkg != "" {
				qualified = pkg + "." + simple
			} else {
				qualified = simple
			}
			for _, candidate := range d.facade.FindTypeReferences(qualified) {
				if candidate != path {
					files = append(files, candidate)
				}
			}
		}
	}
	return d.Lint(ctx, files)
}

// ---------------------------------------------------------------------
// Providers
// ---------------------------------------------------------------------

// compile ensures the façade is current and leases a task over paths,
// serialized under mu so at most one Compile Task is outstanding at a time.
func (d *Dispatcher) compile(ctx context.Context, paths []string) (*compiler.Task, error) {
	if err := d.ensureCompilerCurrent(ctx); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.facade.Compile(ctx, paths)
}

// Lint compiles files and returns the sorted per-file diagnostics payload,
// publishing each through Publish if set.
func (d *Dispatcher) Lint(ctx context.Context, files []string) ([]providers.FileDiagnostics, error) {
	if !d.cfg.Diagnostics.Enable {
		return nil, nil
	}
	if len(files) == 0 {
		files = d.store.AllFiles()
	}
	task, err := d.compile(ctx, files)
	if err != nil {
		return nil, err
	}
	defer task.Close()

	results := providers.Lint(task)
	sort.Slice(results, func(i, j int) bool { return results[i].URI < results[j].URI })
	if d.Publish != nil {
		for _, r := range results {
			d.Publish(r)
		}
	}
	return results, nil
}

// Hover compiles the single file and renders the element at (line, char).
func (d *Dispatcher) Hover(ctx context.Context, path string, line, char int) (*providers.HoverResult, error) {
	task, err := d.compile(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	defer task.Close()
	modTime, _ := d.store.Modified(path)
	return providers.Hover(task, d.lombokStore, modTime, path, line, char), nil
}

// Complete compiles path as it stands (method bodies are not pruned, here
// or in the caller) and dispatches by cursor leaf kind.
func (d *Dispatcher) Complete(ctx context.Context, path string, line, char int) (providers.CompletionResult, error) {
	task, err := d.compile(ctx, []string{path})
	if err != nil {
		return providers.CompletionResult{}, err
	}
	defer task.Close()
	return providers.Complete(task, d.classpathSet, path, line, char), nil
}

// ResolveCompletionItem re-parses the referenced type's source to extract
// its doc comment, without repeating the original completion compile.
func (d *Dispatcher) ResolveCompletionItem(ctx context.Context, data *providers.CompletionData) (string, error) {
	task, err := d.compile(ctx, nil)
	if err != nil {
		return "", err
	}
	defer task.Close()
	return providers.ResolveCompletionItem(task, data), nil
}

// Definition compiles path and locates the definition of the element at
// (line, char), falling back to findAnywhere/jar extraction as needed.
func (d *Dispatcher) Definition(ctx context.Context, path string, line, char int) (*providers.Location, error) {
	task, err := d.compile(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	defer task.Close()
	return providers.Definition(task, d.facade, d.store, path, line, char), nil
}

// References compiles path to locate the target, widens the candidate file
// set via the façade/index, compiles that set, and scans for matches.
func (d *Dispatcher) References(ctx context.Context, path string, line, char int) ([]providers.Location, error) {
	task, err := d.compile(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	target := providers.BuildReferenceTarget(task, path, line, char)
	task.Close()
	if target == nil {
		return nil, nil
	}

	candidates := d.facade.FindTypeReferences(target.QualifiedOwner)
	names := append([]string{target.Name}, target.AccessorNames...)
	candidates = append(candidates, d.index.FilesContainingAny(names)...)
	candidates = dedup(append(candidates, path))

	refTask, err := d.compile(ctx, candidates)
	if err != nil {
		return nil, err
	}
	defer refTask.Close()
	target2 := providers.BuildReferenceTarget(refTask, path, line, char)
	if target2 == nil {
		target2 = target
	}
	return providers.FindReferences(refTask, d.facade, target2), nil
}

func dedup(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// CodeActions returns both diagnostic-driven and cursor-driven actions for
// a range request.
func (d *Dispatcher) CodeActions(ctx context.Context, path string, line, char int, diags []compiler.Diagnostic) ([]providers.CodeAction, error) {
	task, err := d.compile(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	defer task.Close()
	actions := providers.DiagnosticActions(diags)
	actions = append(actions, providers.CursorActions(task, path, line, char)...)
	return actions, nil
}

// ResolveCodeAction recompiles data.Path and computes the deferred edit for
// one of the generator code actions, following the same compile/close/
// delegate-to-provider shape as Rename.
func (d *Dispatcher) ResolveCodeAction(ctx context.Context, data providers.CodeActionData) (map[string][]providers.TextEdit, error) {
	task, err := d.compile(ctx, []string{data.Path})
	if err != nil {
		return nil, err
	}
	defer task.Close()
	return providers.ResolveCodeAction(task, data)
}

// CodeLenses parses (does not compile) the file, matching §4.5's lighter
// lens contract.
func (d *Dispatcher) CodeLenses(path string) ([]providers.CodeLens, error) {
	f, err := d.parseOnly(path)
	if err != nil {
		return nil, err
	}
	return providers.CodeLenses(f), nil
}

// ResolveReferencesLens runs the fast token-only count behind a references
// lens, capped at 20+.
func (d *Dispatcher) ResolveReferencesLens(name string) string {
	return providers.ResolveReferencesLens(d.index, name)
}

// Rename computes the full workspace-edit map for renaming the element at
// (line, char).
func (d *Dispatcher) Rename(ctx context.Context, path string, line, char int, newName string) (map[string][]providers.RenameEdit, error) {
	task, err := d.compile(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	defer task.Close()
	return providers.Rename(task, d.facade, path, line, char, newName)
}

// PrepareRename validates the element at (line, char) can be renamed.
func (d *Dispatcher) PrepareRename(ctx context.Context, path string, line, char int) (*javaparse.Range, error) {
	task, err := d.compile(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	defer task.Close()
	return providers.PrepareRename(task, path, line, char)
}

// FoldingRanges parses (does not compile) the file.
func (d *Dispatcher) FoldingRanges(path string) ([]providers.FoldingRange, error) {
	f, err := d.parseOnly(path)
	if err != nil {
		return nil, err
	}
	return providers.FoldingRanges(f), nil
}

// InlayHints compiles the file for receiver-type inference.
func (d *Dispatcher) InlayHints(ctx context.Context, path string) ([]providers.InlayHint, error) {
	if !d.cfg.Features.InlayHints {
		return nil, nil
	}
	task, err := d.compile(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	defer task.Close()
	return providers.InlayHints(task, path), nil
}

// DocumentSymbols parses (does not compile) the file.
func (d *Dispatcher) DocumentSymbols(path string) ([]providers.Symbol, error) {
	f, err := d.parseOnly(path)
	if err != nil {
		return nil, err
	}
	return providers.DocumentSymbols(f), nil
}

// WorkspaceSymbols enumerates types/methods/fields across the workspace,
// capped at the first 50 substring matches on simple name.
func (d *Dispatcher) WorkspaceSymbols(ctx context.Context, query string) ([]providers.WorkspaceSymbolMatch, error) {
	paths := d.store.AllFiles()
	readSource := func(path string) ([]byte, error) {
		content, err := d.store.Contents(path)
		if err != nil {
			return nil, err
		}
		return []byte(content), nil
	}
	return providers.WorkspaceSymbols(ctx, d.index, d.parser, paths, readSource, query)
}

func (d *Dispatcher) parseOnly(path string) (*javaparse.File, error) {
	content, err := d.store.Contents(path)
	if err != nil {
		return nil, err
	}
	return d.parser.Parse(context.Background(), path, []byte(content))
}

// ExtractJarEntryToTempFile extracts a single entry of a jar to a temp
// file so a definition resolving into library source can be opened as a
// normal file URI.
func (d *Dispatcher) ExtractJarEntryToTempFile(ctx context.Context, jarPath, entryName string) (string, error) {
	return providers.ExtractJarEntryToTempFile(ctx, jarPath, entryName)
}
