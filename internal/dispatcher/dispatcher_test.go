package dispatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jls/internal/config"
)

func writeJava(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestDispatcher(t *testing.T) (*Dispatcher, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Cache.Dir = filepath.Join(dir, ".cache")
	d := New(dir, cfg)
	require.NoError(t, d.Initialize(context.Background()))
	t.Cleanup(d.Shutdown)
	return d, dir
}

func TestInitializeScansWorkspaceAndLintsCleanly(t *testing.T) {
	d, dir := newTestDispatcher(t)
	writeJava(t, dir, "com/example/Greeter.java", `package com.example;

public class Greeter {
    public String greet(String name) {
        return "Hello, " + name;
    }
}
`)
	d.store.Scan()
	d.indexAllFiles()

	results, err := d.Lint(context.Background(), nil)
	require.NoError(t, err)
	for _, r := range results {
		for _, diag := range r.Diagnostics {
			assert.NotEqual(t, "cannot-resolve-location", diag.Code, "unexpected diagnostic: %s", diag.Message)
		}
	}
}

func TestHoverReturnsSignatureForMethodDeclaration(t *testing.T) {
	d, dir := newTestDispatcher(t)
	path := writeJava(t, dir, "com/example/Greeter.java", `package com.example;

public class Greeter {
    public String greet(String name) {
        return "Hello, " + name;
    }
}
`)
	d.store.Scan()
	d.indexAllFiles()

	hover, err := d.Hover(context.Background(), path, 3, 19)
	require.NoError(t, err)
	require.NotNil(t, hover)
	assert.Contains(t, hover.Markdown, "greet")
}

func TestDidChangeSchedulesRelintCallback(t *testing.T) {
	d, dir := newTestDispatcher(t)
	path := writeJava(t, dir, "com/example/Greeter.java", "package com.example;\npublic class Greeter {}\n")
	d.store.Scan()
	d.indexAllFiles()
	d.DidOpen(path, "package com.example;\npublic class Greeter {}\n", 1)

	called := make(chan struct{}, 1)
	err := d.DidChange(path, nil, 2, func() { called <- struct{}{} })
	require.NoError(t, err)

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("expected debounced relint callback to fire")
	}
}

func TestApplyConfigMarksBuildStaleOnClassPathChange(t *testing.T) {
	d, _ := newTestDispatcher(t)
	assert.False(t, d.buildStale)

	err := d.ApplyConfig(context.Background(), []byte(`{"classPath":["/tmp/extra.jar"]}`))
	require.NoError(t, err)
	assert.True(t, d.buildStale)
}
