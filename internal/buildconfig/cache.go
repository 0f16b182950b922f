package buildconfig

import (
	"encoding/json"
	"os"
	"path/filepath"

	"jls/internal/logging"
)

// Result is the resolved classpath/doc-path pair for a workspace.
type Result struct {
	ClassPath []string `json:"classPath"`
	DocPath   []string `json:"docPath"`
}

type cacheFile struct {
	Fingerprint string   `json:"fingerprint"`
	ClassPath   []string `json:"classPath"`
	DocPath     []string `json:"docPath"`
}

// diskCache persists one inference result keyed by its fingerprint, at
// <cacheDir>/inferred-classpath.json, written atomically.
type diskCache struct {
	path string
}

func newDiskCache(cacheDir string) *diskCache {
	return &diskCache{path: filepath.Join(cacheDir, "inferred-classpath.json")}
}

// Load returns the cached result only if it exists and matches fp, and
// every cached path still exists on disk.
func (c *diskCache) Load(fp Fingerprint) (Result, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return Result{}, false
	}
	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return Result{}, false
	}
	if cf.Fingerprint != fp.String() {
		return Result{}, false
	}
	for _, p := range append(append([]string{}, cf.ClassPath...), cf.DocPath...) {
		if _, err := os.Stat(p); err != nil {
			return Result{}, false
		}
	}
	return Result{ClassPath: cf.ClassPath, DocPath: cf.DocPath}, true
}

// Store writes the result keyed by fp, using write-temp-then-rename.
func (c *diskCache) Store(fp Fingerprint, res Result) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	cf := cacheFile{Fingerprint: fp.String(), ClassPath: res.ClassPath, DocPath: res.DocPath}
	data, err := json.Marshal(cf)
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return err
	}
	logging.BuildConfigDebug("wrote inference cache: %s", c.path)
	return nil
}
