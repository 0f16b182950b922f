package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateFileThenFilesContaining(t *testing.T) {
	idx := New("")
	idx.UpdateFile("/ws/A.java", time.Now(), []byte("class A { int fooBar; }"))

	files := idx.FilesContaining("fooBar")
	assert.Equal(t, []string{"/ws/A.java"}, files)
}

func TestRemoveFileClearsAllEntries(t *testing.T) {
	idx := New("")
	idx.UpdateFile("/ws/A.java", time.Now(), []byte("class A { int fooBar; }"))
	idx.RemoveFile("/ws/A.java")

	assert.Empty(t, idx.FilesContaining("fooBar"))
	assert.Empty(t, idx.FilesContaining("A"))
}

func TestUpdateFileSkipsUnchangedModTime(t *testing.T) {
	idx := New("")
	now := time.Now()
	idx.UpdateFile("/ws/A.java", now, []byte("class A { int original; }"))
	idx.UpdateFile("/ws/A.java", now, []byte("class A { int replaced; }"))

	assert.NotEmpty(t, idx.FilesContaining("original"))
	assert.Empty(t, idx.FilesContaining("replaced"))
}

func TestFilesContainingAnyUnion(t *testing.T) {
	idx := New("")
	idx.UpdateFile("/ws/A.java", time.Now(), []byte("class A { int alpha; }"))
	idx.UpdateFile("/ws/B.java", time.Now(), []byte("class B { int beta; }"))

	files := idx.FilesContainingAny([]string{"alpha", "beta"})
	assert.ElementsMatch(t, []string{"/ws/A.java", "/ws/B.java"}, files)
}

func TestSaveAndLoadCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	javaFile := filepath.Join(dir, "A.java")
	require.NoError(t, os.WriteFile(javaFile, []byte("class A { int fooBar; }"), 0644))
	info, err := os.Stat(javaFile)
	require.NoError(t, err)

	idx := New(dir)
	idx.UpdateFile(javaFile, info.ModTime(), []byte("class A { int fooBar; }"))
	require.NoError(t, idx.SaveCache())

	loaded := New(dir)
	require.NoError(t, loaded.LoadCache([]string{dir}))

	assert.Equal(t, []string{javaFile}, loaded.FilesContaining("fooBar"))
}

func TestLoadCacheDiscardsStaleModTime(t *testing.T) {
	dir := t.TempDir()
	javaFile := filepath.Join(dir, "A.java")
	require.NoError(t, os.WriteFile(javaFile, []byte("class A {}"), 0644))

	idx := New(dir)
	idx.UpdateFile(javaFile, time.Now().Add(-time.Hour), []byte("class A { int stale; }"))
	require.NoError(t, idx.SaveCache())

	loaded := New(dir)
	require.NoError(t, loaded.LoadCache([]string{dir}))
	assert.Empty(t, loaded.FilesContaining("stale"))
}
