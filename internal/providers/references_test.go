package providers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildReferenceTargetWidensLombokAccessors exercises scenario 4:
// find-references starting on a @Data field must widen to the Lombok
// getter/setter names the field would generate.
func TestBuildReferenceTargetWidensLombokAccessors(t *testing.T) {
	const widget = `package com.example;

import lombok.Data;

@Data
public class Widget {
    private String foo;
}
`
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": widget})
	path := filepath.Join(dir, "Widget.java")
	task := compileAll(t, facade, path)

	target := BuildReferenceTarget(task, path, 6, 20)
	require.NotNil(t, target)
	assert.Equal(t, "foo", target.Name)
	assert.Contains(t, target.AccessorNames, "getFoo")
	assert.Contains(t, target.AccessorNames, "setFoo")
}

// TestFindReferencesAcrossFilesForAccessor exercises scenario 4 end to end:
// a reference to the generated getter in another file is found alongside
// the field declaration itself.
func TestFindReferencesAcrossFilesForAccessor(t *testing.T) {
	const widget = `package com.example;

import lombok.Data;

@Data
public class Widget {
    private String foo;
}
`
	const caller = `package com.example;

public class Caller {
    void use(Widget w) {
        String foo = w.getFoo();
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

	target := BuildReferenceTarget(task, widgetPath, 6, 20)
	require.NotNil(t, target)

	locs := FindReferences(task, facade, target)

	var sawWidget, sawCaller bool
	for _, loc := range locs {
		switch loc.URI {
		case widgetPath:
			sawWidget = true
		case callerPath:
			sawCaller = true
		}
	}
	assert.True(t, sawWidget, "expected the field declaration itself among references")
	assert.True(t, sawCaller, "expected the cross-file getter call among references")
}

// TestAccessorBackingFieldRoutesToField exercises the method-side half of
// accessor widening: a find-references request that starts on an explicit
// getter override resolves back to the backing field's reference set.
func TestAccessorBackingFieldRoutesToField(t *testing.T) {
	const src = `package com.example;

public class Widget {
    private String foo;

    public String getFoo() {
        return foo;
    }
}
`
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": src})
	path := filepath.Join(dir, "Widget.java")
	task := compileAll(t, facade, path)

	// char 18 lands inside "getFoo" on the method declaration line.
	target := BuildReferenceTarget(task, path, 5, 18)
	require.NotNil(t, target)
	assert.Equal(t, "foo", target.Name)
	assert.Contains(t, target.AccessorNames, "getFoo")
}
