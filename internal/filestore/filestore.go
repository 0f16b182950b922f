// Package filestore tracks every .java file in a workspace: its package
// name, on-disk modification time, and optional open-buffer content. It is
// the read-through accessor every other component uses instead of touching
// the filesystem directly.
package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"jls/internal/logging"
)

// excludedDirs mirrors the workspace-walk exclusion list: directories that
// are never descended into regardless of their contents.
var excludedDirs = map[string]struct{}{
	".git":         {},
	".idea":        {},
	".gradle":      {},
	"node_modules": {},
	"target":       {},
	"build":        {},
	"dist":         {},
	"out":          {},
}

var packageRe = regexp.MustCompile(`(?m)^\s*package\s+([\w.]+)\s*;`)

// openBuffer is the in-memory content of a file open in the editor.
type openBuffer struct {
	text    string
	version int
}

// SourceFile is one tracked .java file.
type SourceFile struct {
	Path        string
	packageName string
	packageSet  bool
	modTime     time.Time
	open        *openBuffer
	Pruned      bool
}

// Store owns all SourceFile state for a workspace. It is the single
// process-wide mutable owner named in the concurrency model: all mutation
// goes through these entry points under mu, and readers copy data out
// before releasing the lock.
type Store struct {
	mu    sync.RWMutex
	roots []string
	files map[string]*SourceFile

	version uint64 // workspace version counter, bumped on every mutation

	cache *diskCache
}

// New creates an empty Store. Call SetWorkspaceRoots to populate it.
func New(cacheDir string) *Store {
	return &Store{
		files: make(map[string]*SourceFile),
		cache: newDiskCache(cacheDir),
	}
}

// Version returns the current workspace version counter.
func (s *Store) Version() uint64 {
	return atomic.LoadUint64(&s.version)
}

func (s *Store) bumpVersion() {
	atomic.AddUint64(&s.version, 1)
}

// SetWorkspaceRoots normalizes and replaces the root set, loads the
// persisted cache, then walks the filesystem to refresh membership.
func (s *Store) SetWorkspaceRoots(roots []string) error {
	normalized := make([]string, 0, len(roots))
	for _, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return fmt.Errorf("resolve workspace root %q: %w", r, err)
		}
		normalized = append(normalized, abs)
	}

	s.mu.Lock()
	s.roots = normalized
	s.mu.Unlock()

	s.loadCache()

	return s.Scan()
}

// Scan walks every workspace root and refreshes tracked-file membership.
// It is safe to call from a background goroutine; all writes go through
// the Store's own locked entry points.
func (s *Store) Scan() error {
	timer := logging.StartTimer(logging.CategoryFileStore, "workspace scan")
	defer timer.Stop()

	seen := make(map[string]struct{})

	s.mu.RLock()
	roots := append([]string(nil), s.roots...)
	s.mu.RUnlock()

	for _, root := range roots {
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil // best effort; skip unreadable entries
			}
			if info.Mode()&os.ModeSymlink != 0 {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if info.IsDir() {
				if path != root {
					if _, excluded := excludedDirs[info.Name()]; excluded {
						return filepath.SkipDir
					}
				}
				return nil
			}
			if !strings.HasSuffix(path, ".java") {
				return nil
			}
			seen[path] = struct{}{}
			s.track(path, info.ModTime())
			return nil
		})
		if err != nil {
			logging.FileStoreWarn("walk %s: %v", root, err)
		}
	}

	s.mu.Lock()
	for path := range s.files {
		if _, ok := seen[path]; !ok {
			delete(s.files, path)
		}
	}
	s.mu.Unlock()
	s.bumpVersion()

	s.saveCacheAsync()
	return nil
}

func (s *Store) track(path string, modTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[path]; ok {
		f.modTime = modTime
		return
	}
	s.files[path] = &SourceFile{Path: path, modTime: modTime}
}

// Open registers (or replaces) the in-memory content of an open buffer.
func (s *Store) Open(path, text string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.getOrCreateLocked(path)
	f.open = &openBuffer{text: text, version: version}
	s.bumpVersionLocked()
}

// Change applies a full or ranged replacement to an open buffer. A change
// whose version is not greater than the current one is ignored.
type Change struct {
	Full                             bool
	Text                             string
	StartLine, StartChar, EndLine, EndChar int
}

func (s *Store) Change(path string, changes []Change, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[path]
	if !ok || f.open == nil {
		return fmt.Errorf("change on unopened file: %s", path)
	}
	if version <= f.open.version {
		logging.FileStoreWarn("ignoring stale change for %s: version %d <= current %d", path, version, f.open.version)
		return nil
	}

	text := f.open.text
	for _, c := range changes {
		if c.Full {
			text = c.Text
			continue
		}
		text = applyRangedChange(text, c)
	}
	f.open.text = text
	f.open.version = version
	s.bumpVersionLocked()
	return nil
}

func applyRangedChange(text string, c Change) string {
	lines := strings.SplitAfter(text, "\n")
	startOffset := offsetOf(lines, c.StartLine, c.StartChar)
	endOffset := offsetOf(lines, c.EndLine, c.EndChar)
	if startOffset < 0 || endOffset < 0 || startOffset > endOffset || endOffset > len(text) {
		return text
	}
	return text[:startOffset] + c.Text + text[endOffset:]
}

func offsetOf(lines []string, line, char int) int {
	if line < 0 || line >= len(lines) {
		if line == len(lines) {
			total := 0
			for _, l := range lines {
				total += len(l)
			}
			return total
		}
		return -1
	}
	offset := 0
	for i := 0; i < line; i++ {
		offset += len(lines[i])
	}
	lineContent := strings.TrimSuffix(lines[line], "\n")
	lineContent = strings.TrimSuffix(lineContent, "\r")
	if char > len(lineContent) {
		char = len(lineContent)
	}
	return offset + char
}

// Close drops the open buffer; subsequent reads return disk contents.
func (s *Store) Close(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[path]; ok {
		f.open = nil
	}
	s.bumpVersionLocked()
}

// Contents returns the current effective content: the open buffer if
// present, otherwise the on-disk text.
func (s *Store) Contents(path string) (string, error) {
	s.mu.RLock()
	f, ok := s.files[path]
	s.mu.RUnlock()

	if ok && f.open != nil {
		return f.open.text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// IsOpen reports whether path has an in-memory version.
func (s *Store) IsOpen(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[path]
	return ok && f.open != nil
}

// Modified returns the file's modification time.
func (s *Store) Modified(path string) (time.Time, error) {
	s.mu.RLock()
	f, ok := s.files[path]
	s.mu.RUnlock()
	if ok {
		return f.modTime, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// PackageName returns the parsed package name, computing and caching it on
// first lookup.
func (s *Store) PackageName(path string) (string, error) {
	s.mu.RLock()
	f, ok := s.files[path]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("untracked file: %s", path)
	}

	text, err := s.Contents(path)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f.packageSet {
		return f.packageName, nil
	}
	m := packageRe.FindStringSubmatch(text)
	if m != nil {
		f.packageName = m[1]
	}
	f.packageSet = true
	return f.packageName, nil
}

func (s *Store) getOrCreateLocked(path string) *SourceFile {
	if f, ok := s.files[path]; ok {
		return f
	}
	f := &SourceFile{Path: path}
	if info, err := os.Stat(path); err == nil {
		f.modTime = info.ModTime()
	}
	s.files[path] = f
	return f
}

func (s *Store) bumpVersionLocked() {
	atomic.AddUint64(&s.version, 1)
}

// ExternalCreate handles a watcher-reported file creation.
func (s *Store) ExternalCreate(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	s.track(path, info.ModTime())
	s.bumpVersion()
	s.saveCacheAsync()
}

// ExternalChange handles a watcher-reported file modification.
func (s *Store) ExternalChange(path string) {
	info, err := os.Stat(path)
	if err != nil {
		s.ExternalDelete(path)
		return
	}
	s.mu.Lock()
	if f, ok := s.files[path]; ok {
		f.modTime = info.ModTime()
		f.packageSet = false
	} else {
		s.files[path] = &SourceFile{Path: path, modTime: info.ModTime()}
	}
	s.mu.Unlock()
	s.bumpVersion()
	s.saveCacheAsync()
}

// ExternalDelete handles a watcher-reported file deletion: removes the file
// from tracking and bumps the workspace version.
func (s *Store) ExternalDelete(path string) {
	s.mu.Lock()
	delete(s.files, path)
	s.mu.Unlock()
	s.bumpVersion()
	s.saveCacheAsync()
}

// List returns all tracked files whose parsed package equals packageName.
func (s *Store) List(packageName string) []string {
	s.mu.RLock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	s.mu.RUnlock()

	var out []string
	for _, p := range paths {
		pkg, err := s.PackageName(p)
		if err == nil && pkg == packageName {
			out = append(out, p)
		}
	}
	return out
}

// AllFiles returns every tracked file path.
func (s *Store) AllFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	return out
}

// SourceRoots derives the set of directories from each tracked file's
// package name by stripping package components from its parent directory.
func (s *Store) SourceRoots() []string {
	s.mu.RLock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	s.mu.RUnlock()

	seen := make(map[string]struct{})
	var roots []string
	for _, p := range paths {
		pkg, err := s.PackageName(p)
		if err != nil {
			continue
		}
		dir := filepath.Dir(p)
		if pkg != "" {
			segments := strings.Count(pkg, ".") + 1
			for i := 0; i < segments; i++ {
				dir = filepath.Dir(dir)
			}
		}
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			roots = append(roots, dir)
		}
	}
	return roots
}
