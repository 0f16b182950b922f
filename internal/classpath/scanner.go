// Package classpath enumerates the top-level class names visible to the
// compiler: those shipped in the JDK's own modules and those found in every
// jar on the resolved classpath. Class names come from archive entry paths
// alone; access flags are not read, so non-public top-level classes are
// included too. Both scans are cached to disk, keyed by a hash of their
// inputs.
package classpath

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"jls/internal/logging"
)

// jmodHeaderSize is the 4-byte "JM\x01\x00" magic every .jmod file is
// prefixed with before its embedded zip archive.
const jmodHeaderSize = 4

// ClassNameOf converts a .class archive entry path (e.g.
// "classes/java/util/List.class" or "java/util/List.class") to its
// fully-qualified name, or "" if the entry does not describe a top-level
// class (nested/anonymous classes contain "$" and are skipped).
func ClassNameOf(entryName string) string {
	if !strings.HasSuffix(entryName, ".class") {
		return ""
	}
	name := strings.TrimSuffix(entryName, ".class")
	if strings.Contains(name, "$") {
		return ""
	}
	if idx := strings.Index(name, "/"); idx >= 0 {
		// jmod entries are rooted at classes/<package-path>; drop that
		// leading segment so the result is a plain package-qualified name.
		if strings.Count(name, "/") > 0 && looksLikeModuleRoot(name) {
			name = name[idx+1:]
		}
	}
	name = strings.ReplaceAll(name, "/", ".")
	if name == "module-info" || strings.HasSuffix(name, ".module-info") || name == "package-info" {
		return ""
	}
	return name
}

// looksLikeModuleRoot is a heuristic: jmod class entries always begin with
// "classes/" inside the archive; anything else is the module descriptor or
// native/config resources we don't care about.
func looksLikeModuleRoot(name string) bool {
	return strings.HasPrefix(name, "classes/")
}

// ScanJar returns every top-level class name found in the jar at path.
func ScanJar(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []string
	for _, f := range r.File {
		if name := ClassNameOf(f.Name); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

// ScanJmod returns every top-level class name found in a single JDK .jmod
// file, stripping the 4-byte jmod header before delegating to the zip
// reader.
func ScanJmod(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	size := info.Size() - jmodHeaderSize
	if size <= 0 {
		return nil, fmt.Errorf("classpath: %s too small to be a jmod", path)
	}
	sr := io.NewSectionReader(f, jmodHeaderSize, size)
	zr, err := zip.NewReader(sr, size)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, entry := range zr.File {
		name := strings.TrimPrefix(entry.Name, "classes/")
		if name == entry.Name {
			continue // not a class entry, e.g. native/ or bin/
		}
		if cn := ClassNameOf("classes/" + name); cn != "" {
			out = append(out, cn)
		}
	}
	return out, nil
}

// ScanJDKModules walks javaHome/jmods, scanning every .jmod file found, and
// returns the sorted union of top-level class names (public or not).
func ScanJDKModules(javaHome string) ([]string, error) {
	jmodsDir := filepath.Join(javaHome, "jmods")
	entries, err := os.ReadDir(jmodsDir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jmod") {
			continue
		}
		names, err := ScanJmod(filepath.Join(jmodsDir, e.Name()))
		if err != nil {
			logging.ClasspathWarn("classpath: failed to scan %s: %v", e.Name(), err)
			continue
		}
		for _, n := range names {
			seen[n] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

// ScanClassPath scans every jar on the classpath and returns the sorted
// union of top-level class names across all of them.
func ScanClassPath(jars []string) []string {
	seen := make(map[string]struct{})
	for _, jar := range jars {
		names, err := ScanJar(jar)
		if err != nil {
			logging.ClasspathWarn("classpath: failed to scan jar %s: %v", jar, err)
			continue
		}
		for _, n := range names {
			seen[n] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// HashInputs produces a stable hex digest over a list of strings, used as
// the cache key for both the JDK scan (javaHome + JDK version) and each
// classpath scan (sorted jar list).
func HashInputs(inputs []string) string {
	sorted := append([]string(nil), inputs...)
	sort.Strings(sorted)
	h := sha256.New()
	for _, s := range sorted {
		fmt.Fprintf(h, "%s\n", s)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
