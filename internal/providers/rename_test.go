package providers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareRenameField(t *testing.T) {
	const src = `package com.example;

public class Widget {
    String name;
}
`
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": src})
	path := filepath.Join(dir, "Widget.java")
	task := compileAll(t, facade, path)

	r, err := PrepareRename(task, path, 3, 12)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 3, r.Start.Line)
}

func TestPrepareRenameUnsupportedKind(t *testing.T) {
	const src = `package com.example;

public class Widget {
}
`
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": src})
	path := filepath.Join(dir, "Widget.java")
	task := compileAll(t, facade, path)

	// char 17 lands inside the "Widget" type name itself.
	_, err := PrepareRename(task, path, 2, 17)
	assert.Error(t, err)
}

func TestRenameFieldAcrossFiles(t *testing.T) {
	const widget = `package com.example;

public class Widget {
    String foo;
}
`
	const caller = `package com.example;

public class Caller {
    void use(Widget w) {
        String foo = w.foo;
    }
}
`
	facade, _, dir := newTestFacade(t, map[string]string{
		"Widget.java": widget,
		"Caller.java": caller,
	})
	widgetPath := filepath.Join(dir, "Widget.java")
	callerPath := filepath.Join(dir, "Caller.java")
	task := compileAll(t, facade, widgetPath, callerPath)

	// char 11 lands inside "foo" on the field declaration line.
	edits, err := Rename(task, facade, widgetPath, 3, 11, "bar")
	require.NoError(t, err)
	assert.Contains(t, edits, widgetPath)
	assert.Contains(t, edits, callerPath)
}
