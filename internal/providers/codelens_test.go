package providers

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jls/internal/index"
)

func TestCodeLensesEmitsReferencesAndTestLenses(t *testing.T) {
	const src = `package com.example;

public class WidgetTest {
    void helper() {
    }

    @Test
    void checksSomething() {
    }
}
`
	facade, _, dir := newTestFacade(t, map[string]string{"WidgetTest.java": src})
	path := filepath.Join(dir, "WidgetTest.java")
	task := compileAll(t, facade, path)
	f := task.Files()[path]
	require.NotNil(t, f)

	lenses := CodeLenses(f)

	var sawClassRefs, sawHelperRefs, sawRunTest, sawDebugTest, sawRunAll bool
	for _, l := range lenses {
		switch {
		case l.Kind == LensReferences && l.Name == "" && l.Owner == "com.example.WidgetTest":
			sawClassRefs = true
		case l.Kind == LensReferences && l.Name == "helper":
			sawHelperRefs = true
		case l.Kind == LensRunTest && l.Name == "checksSomething":
			sawRunTest = true
		case l.Kind == LensDebugTest && l.Name == "checksSomething":
			sawDebugTest = true
		case l.Kind == LensRunAllTests:
			sawRunAll = true
		}
	}
	assert.True(t, sawClassRefs)
	assert.True(t, sawHelperRefs)
	assert.True(t, sawRunTest)
	assert.True(t, sawDebugTest)
	assert.True(t, sawRunAll)
}

func TestResolveReferencesLensAndTitles(t *testing.T) {
	idx := index.New("")
	idx.UpdateFile("/a/Foo.java", time.Time{}, []byte("class Foo { void useWidget() { Widget w; } }"))
	idx.UpdateFile("/b/Bar.java", time.Time{}, []byte("class Bar { void useWidget() { Widget w; } }"))

	assert.Equal(t, "2 references", ResolveReferencesLens(idx, "Widget"))
	assert.Equal(t, "no references", ResolveReferencesLens(idx, "Nowhere"))

	assert.Equal(t, "Run All Tests", LensTitle(LensRunAllTests))
	assert.Equal(t, "Run Test", LensTitle(LensRunTest))
	assert.Equal(t, "Debug Test", LensTitle(LensDebugTest))
	assert.Equal(t, "", LensTitle(LensReferences))
}
