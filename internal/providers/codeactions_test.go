package providers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jls/internal/compiler"
	"jls/internal/javaparse"
)

func TestDiagnosticActionsStructuralCodesSkipSuppressFallback(t *testing.T) {
	diags := []compiler.Diagnostic{
		{Code: compiler.CodeMissingConstructor, Message: "missing constructor", SimpleName: "Widget"},
		{Code: compiler.CodeUnusedImport, Message: "unused import 'java.util.List'", SimpleName: "List"},
	}
	actions := DiagnosticActions(diags)

	var ctorActions, suppressActions int
	for _, a := range actions {
		switch a.Kind {
		case ActionGenerateConstructor:
			ctorActions++
		case ActionAddSuppressWarnings:
			suppressActions++
		}
	}
	assert.Equal(t, 1, ctorActions)
	// Only the lint-style unused-import diagnostic gets a suppress fallback;
	// the structural missing-constructor diagnostic does not.
	assert.Equal(t, 1, suppressActions)
}

func TestCursorActionsOffersClassGenerators(t *testing.T) {
	const src = `package com.example;

public class Widget {
    String name;
    int age;

    void show() {
    }
}
`
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": src})
	path := filepath.Join(dir, "Widget.java")
	task := compileAll(t, facade, path)

	// line 5 is the blank line inside the class body but outside show().
	actions := CursorActions(task, path, 5, 0)

	var sawCtor, sawToString, sawEquals, sawGetSet, sawOverride bool
	for _, a := range actions {
		switch a.Kind {
		case ActionGenerateConstructor:
			sawCtor = true
			assert.Equal(t, "com.example.Widget", a.Payload["owner"])
		case ActionGenerateToString:
			sawToString = true
		case ActionGenerateEqualsHashCode:
			sawEquals = true
		case ActionGenerateGettersSetters:
			sawGetSet = true
		case ActionOverrideInheritedMethod:
			sawOverride = true
		}
	}
	assert.True(t, sawCtor)
	assert.True(t, sawToString)
	assert.True(t, sawEquals)
	assert.True(t, sawGetSet)
	assert.True(t, sawOverride, "expected an override action for the inheritable show() method")
}

func TestResolveCodeActionGeneratesConstructor(t *testing.T) {
	const src = `package com.example;

public class Widget {
    String name;
    int age;
}
`
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": src})
	path := filepath.Join(dir, "Widget.java")
	task := compileAll(t, facade, path)

	data := CodeActionData{
		Path: path,
		Kind: ActionGenerateConstructor,
		Range: javaparse.Range{
			Start: javaparse.Position{Line: 2, Char: 13},
			End:   javaparse.Position{Line: 2, Char: 19},
		},
		Payload: map[string]string{"owner": "com.example.Widget"},
	}
	edits, err := ResolveCodeAction(task, data)
	require.NoError(t, err)
	require.Contains(t, edits, path)
	text := edits[path][0].NewText
	assert.Contains(t, text, "public Widget(String name, int age)")
	assert.Contains(t, text, "this.name = name;")
	assert.Contains(t, text, "this.age = age;")
}

func TestResolveCodeActionGeneratesGettersSetters(t *testing.T) {
	const src = `package com.example;

public class Widget {
    String name;
}
`
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": src})
	path := filepath.Join(dir, "Widget.java")
	task := compileAll(t, facade, path)

	data := CodeActionData{
		Path: path,
		Kind: ActionGenerateGettersSetters,
		Range: javaparse.Range{
			Start: javaparse.Position{Line: 2, Char: 13},
			End:   javaparse.Position{Line: 2, Char: 19},
		},
		Payload: map[string]string{"owner": "com.example.Widget"},
	}
	edits, err := ResolveCodeAction(task, data)
	require.NoError(t, err)
	text := edits[path][0].NewText
	assert.Contains(t, text, "public String getName()")
	assert.Contains(t, text, "public void setName(String name)")
}

func TestResolveCodeActionAddThrows(t *testing.T) {
	const src = `package com.example;

public class Widget {
    void show() {
    }
}
`
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": src})
	path := filepath.Join(dir, "Widget.java")
	task := compileAll(t, facade, path)

	data := CodeActionData{
		Path: path,
		Kind: ActionAddThrows,
		Range: javaparse.Range{
			Start: javaparse.Position{Line: 3, Char: 9},
			End:   javaparse.Position{Line: 3, Char: 13},
		},
		Payload: map[string]string{"simpleName": "IOException"},
	}
	edits, err := ResolveCodeAction(task, data)
	require.NoError(t, err)
	require.Contains(t, edits, path)
	assert.Contains(t, edits[path][0].NewText, "IOException")
}
