package filestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestOpenThenContentsReturnsOpenedText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "A.java", "class A {}")

	store := New("")
	require.NoError(t, store.SetWorkspaceRoots([]string{dir}))

	store.Open(path, "class A { int x; }", 1)
	text, err := store.Contents(path)
	require.NoError(t, err)
	assert.Equal(t, "class A { int x; }", text)
}

func TestOpenChangeCloseRestoresDiskContents(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "A.java", "class A {}")

	store := New("")
	require.NoError(t, store.SetWorkspaceRoots([]string{dir}))

	store.Open(path, "class A {}", 1)
	err := store.Change(path, []Change{{Full: true, Text: "class A { int y; }"}}, 2)
	require.NoError(t, err)

	text, err := store.Contents(path)
	require.NoError(t, err)
	assert.Equal(t, "class A { int y; }", text)

	store.Close(path)
	text, err = store.Contents(path)
	require.NoError(t, err)
	assert.Equal(t, "class A {}", text)
}

func TestStaleChangeIsIgnored(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "A.java", "class A {}")

	store := New("")
	require.NoError(t, store.SetWorkspaceRoots([]string{dir}))
	store.Open(path, "v1", 5)

	err := store.Change(path, []Change{{Full: true, Text: "v-stale"}}, 3)
	require.NoError(t, err)

	text, err := store.Contents(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", text)
}

func TestScanExcludesDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/com/acme/A.java", "package com.acme;\nclass A {}")
	writeFile(t, dir, "target/Generated.java", "class Generated {}")
	writeFile(t, dir, ".git/Ignored.java", "class Ignored {}")

	store := New("")
	require.NoError(t, store.SetWorkspaceRoots([]string{dir}))

	files := store.AllFiles()
	assert.Len(t, files, 1)
	assert.Contains(t, files[0], "A.java")
}

func TestPackageNameParsed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "src/com/acme/A.java", "package com.acme;\n\nclass A {}")

	store := New("")
	require.NoError(t, store.SetWorkspaceRoots([]string{dir}))

	pkg, err := store.PackageName(path)
	require.NoError(t, err)
	assert.Equal(t, "com.acme", pkg)

	matches := store.List("com.acme")
	assert.Len(t, matches, 1)
}

func TestWorkspaceVersionBumpsOnMutation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "A.java", "class A {}")

	store := New("")
	require.NoError(t, store.SetWorkspaceRoots([]string{dir}))
	before := store.Version()

	store.Open(path, "class A {}", 1)
	assert.Greater(t, store.Version(), before)
}
