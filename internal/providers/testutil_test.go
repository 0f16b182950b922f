package providers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"jls/internal/classpath"
	"jls/internal/compiler"
	"jls/internal/filestore"
	"jls/internal/index"
	"jls/internal/lombok"
)

// newTestFacade mirrors internal/compiler's own test helper: a temp-dir
// workspace wired to a Facade, so provider-level tests can compile real
// source fixtures the same way the dispatcher does.
func newTestFacade(t *testing.T, files map[string]string) (*compiler.Facade, *filestore.Store, string) {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	store := filestore.New(t.TempDir())
	require.NoError(t, store.SetWorkspaceRoots([]string{dir}))

	idx := index.New("")
	for _, f := range store.AllFiles() {
		content, _ := store.Contents(f)
		mt, _ := store.Modified(f)
		idx.UpdateFile(f, mt, []byte(content))
	}

	cp := classpath.NewSet(t.TempDir(), "", nil)
	facade := compiler.NewFacade(store, idx, cp, lombok.NewStore())
	return facade, store, dir
}

func compileAll(t *testing.T, facade *compiler.Facade, paths ...string) *compiler.Task {
	t.Helper()
	task, err := facade.Compile(context.Background(), paths)
	require.NoError(t, err)
	t.Cleanup(task.Close)
	return task
}
