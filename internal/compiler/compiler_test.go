package compiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jls/internal/classpath"
	"jls/internal/filestore"
	"jls/internal/index"
	"jls/internal/lombok"
)

func newTestFacade(t *testing.T, files map[string]string) (*Facade, *filestore.Store, string) {
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
	facade := NewFacade(store, idx, cp, lombok.NewStore())
	return facade, store, dir
}

const widgetSource = `package com.example;

public class Widget {
    private String name;

    public String getName() {
        return name;
    }
}
`

func TestCompileProducesTaskWithTypes(t *testing.T) {
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": widgetSource})
	path := filepath.Join(dir, "Widget.java")

	task, err := facade.Compile(context.Background(), []string{path})
	require.NoError(t, err)
	defer task.Close()

	require.Contains(t, task.Files(), path)
	_, _, ok := task.FindTypeDeclaration("com.example.Widget")
	assert.True(t, ok)
}

func TestCompileReusesCachedTaskWhenUnchanged(t *testing.T) {
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": widgetSource})
	path := filepath.Join(dir, "Widget.java")

	t1, err := facade.Compile(context.Background(), []string{path})
	require.NoError(t, err)
	t2, err := facade.Compile(context.Background(), []string{path})
	require.NoError(t, err)

	assert.Same(t, t1, t2)
}

func TestCannotResolveLocationTriggersRetryWithSiblingFile(t *testing.T) {
	main := `package com.example;

public class Main extends Helper {
}
`
	helper := `package com.example;

class Helper {
    void assist() {}
}
`
	facade, _, dir := newTestFacade(t, map[string]string{
		"Main.java":   main,
		"Helper.java": helper,
	})
	path := filepath.Join(dir, "Main.java")

	task, err := facade.Compile(context.Background(), []string{path})
	require.NoError(t, err)
	defer task.Close()

	helperPath := filepath.Join(dir, "Helper.java")
	assert.Contains(t, task.Files(), helperPath)
}

func TestElementAtResolvesMethodDeclaration(t *testing.T) {
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": widgetSource})
	path := filepath.Join(dir, "Widget.java")

	task, err := facade.Compile(context.Background(), []string{path})
	require.NoError(t, err)
	defer task.Close()

	el := task.ElementAt(path, 5, 18)
	require.NotNil(t, el)
	assert.Equal(t, ElementMethod, el.Kind)
	assert.Equal(t, "getName", el.Decl.Name)
}

func TestIsAccessible(t *testing.T) {
	assert.True(t, IsAccessible([]string{"public"}, "a", "b"))
	assert.False(t, IsAccessible([]string{"private"}, "a", "b"))
	assert.True(t, IsAccessible([]string{"protected"}, "a", "a"))
	assert.False(t, IsAccessible([]string{"protected"}, "a", "b"))
	assert.True(t, IsAccessible(nil, "a", "a"))
}

func TestErasureStripsGenericsAndArrays(t *testing.T) {
	assert.Equal(t, "List", Erasure("List<String>"))
	assert.Equal(t, "int", Erasure("int[]"))
}

const malformedLombokSource = `package com.example;

import lombok.Data;

@Data
public interface Widget {
}
`

func TestAPFaultRetrySucceedsWithAPDisabled(t *testing.T) {
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": malformedLombokSource})
	path := filepath.Join(dir, "Widget.java")
	facade.UpdateSettings(Settings{LombokAware: true})

	task, err := facade.Compile(context.Background(), []string{path})
	require.NoError(t, err)
	defer task.Close()

	assert.True(t, task.APDisabled())
	assert.Contains(t, task.Files(), path)
}
