package classpath

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"jls/internal/logging"
)

type cacheFile struct {
	Hash    string   `json:"hash"`
	Classes []string `json:"classes"`
}

func readCache(path, hash string) ([]string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, false
	}
	if cf.Hash != hash {
		return nil, false
	}
	return cf.Classes, true
}

func writeCache(path, hash string, classes []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(cacheFile{Hash: hash, Classes: classes})
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Set holds the combined universe of qualified class names visible to the
// compiler: those from the JDK's own modules plus those on the classpath.
type Set struct {
	cacheDir string
	JDK      []string
	External []string
}

// NewSet scans (or loads from cache) the JDK modules under javaHome and the
// jars in classPath, persisting each half under its own cache file as
// jdk-classes.json and classpath-<hex>.json.
func NewSet(cacheDir, javaHome string, classPath []string) *Set {
	s := &Set{cacheDir: cacheDir}

	jdkHash := HashInputs([]string{javaHome, runtime.Version()})
	jdkPath := filepath.Join(cacheDir, "jdk-classes.json")
	if cached, ok := readCache(jdkPath, jdkHash); ok {
		logging.ClasspathDebug("classpath: jdk-classes cache hit (%d classes)", len(cached))
		s.JDK = cached
	} else if javaHome != "" {
		classes, err := ScanJDKModules(javaHome)
		if err != nil {
			logging.ClasspathWarn("classpath: jdk module scan failed: %v", err)
		} else {
			s.JDK = classes
			if err := writeCache(jdkPath, jdkHash, classes); err != nil {
				logging.ClasspathWarn("classpath: failed to persist jdk-classes cache: %v", err)
			}
		}
	}

	cpHash := HashInputs(classPath)
	cpPath := filepath.Join(cacheDir, "classpath-"+cpHash+".json")
	if cached, ok := readCache(cpPath, cpHash); ok {
		logging.ClasspathDebug("classpath: classpath-%s cache hit (%d classes)", cpHash, len(cached))
		s.External = cached
	} else {
		classes := ScanClassPath(classPath)
		s.External = classes
		if err := writeCache(cpPath, cpHash, classes); err != nil {
			logging.ClasspathWarn("classpath: failed to persist classpath cache: %v", err)
		}
	}

	return s
}

// All returns the union of JDK and external class names.
func (s *Set) All() []string {
	out := make([]string, 0, len(s.JDK)+len(s.External))
	out = append(out, s.JDK...)
	out = append(out, s.External...)
	return out
}

// MatchingSimpleName returns every qualified name in the set whose simple
// name (final '.'-separated component) equals simpleName.
func (s *Set) MatchingSimpleName(simpleName string) []string {
	var out []string
	for _, qn := range s.All() {
		if simpleNameOf(qn) == simpleName {
			out = append(out, qn)
		}
	}
	return out
}

// SimpleNamePrefix returns every qualified name whose simple name begins
// with prefix, used for uppercase-identifier type completion.
func (s *Set) SimpleNamePrefix(prefix string) []string {
	var out []string
	for _, qn := range s.All() {
		sn := simpleNameOf(qn)
		if len(sn) >= len(prefix) && sn[:len(prefix)] == prefix {
			out = append(out, qn)
		}
	}
	return out
}

// WithPrefix returns every qualified name beginning with prefix, used for
// import-statement completion.
func (s *Set) WithPrefix(prefix string) []string {
	var out []string
	for _, qn := range s.All() {
		if len(qn) >= len(prefix) && qn[:len(prefix)] == prefix {
			out = append(out, qn)
		}
	}
	return out
}

func simpleNameOf(qualified string) string {
	idx := -1
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == '.' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return qualified
	}
	return qualified[idx+1:]
}
