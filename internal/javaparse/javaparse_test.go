package javaparse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSource = `
package com.example.widgets;

import java.util.List;
import static java.util.Collections.*;

/** Represents a widget. */
public class Widget {
    private final String name;
    private int count;

    public Widget(String name) {
        this.name = name;
    }

    /** Returns the widget's name. */
    public String getName() {
        return name;
    }

    public void setCount(int count) {
        this.count = count;
    }
}
`

func TestParsePackageAndImports(t *testing.T) {
	p := New()
	f, err := p.Parse(context.Background(), "Widget.java", []byte(sampleSource))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "com.example.widgets", f.Package)
	require.Len(t, f.Imports, 2)
	assert.Equal(t, "java.util.List", f.Imports[0].Path)
	assert.True(t, f.Imports[1].Static)
	assert.True(t, f.Imports[1].Wildcard)
}

func TestParseClassMembers(t *testing.T) {
	p := New()
	f, err := p.Parse(context.Background(), "Widget.java", []byte(sampleSource))
	require.NoError(t, err)
	defer f.Close()

	require.Len(t, f.Types, 1)
	widget := f.Types[0]
	assert.Equal(t, "Widget", widget.Name)
	assert.Equal(t, "Represents a widget.", widget.Doc)

	var names []string
	for _, c := range widget.Children {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "name")
	assert.Contains(t, names, "count")
	assert.Contains(t, names, "getName")
	assert.Contains(t, names, "setCount")
}

func TestDeclAtFindsEnclosingMethod(t *testing.T) {
	p := New()
	f, err := p.Parse(context.Background(), "Widget.java", []byte(sampleSource))
	require.NoError(t, err)
	defer f.Close()

	d := f.DeclAt(17, 10)
	require.NotNil(t, d)
	assert.Equal(t, "getName", d.Name)
	assert.Equal(t, "Widget.getName", d.QualifiedName())
}

func TestHasAnnotationAndModifier(t *testing.T) {
	p := New()
	f, err := p.Parse(context.Background(), "Widget.java", []byte(sampleSource))
	require.NoError(t, err)
	defer f.Close()

	widget := f.Types[0]
	assert.True(t, widget.HasModifier("public"))
	assert.False(t, widget.HasAnnotation("Deprecated"))
}
