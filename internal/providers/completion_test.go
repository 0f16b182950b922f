package providers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompleteMemberSelectOnThis exercises scenario 2: completing an
// instance member after `this.` inside a method body.
func TestCompleteMemberSelectOnThis(t *testing.T) {
	const src = `package com.example;

public class Widget {
    String name;
    int age;

    void show() {
        this.name;
    }
}
`
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": src})
	path := filepath.Join(dir, "Widget.java")
	task := compileAll(t, facade, path)

	// char 12 lands on the '.' between "this" and "name", so NodeAt resolves
	// the enclosing field_access node rather than either identifier.
	result := Complete(task, nil, path, 7, 12)

	var names []string
	for _, item := range result.Items {
		names = append(names, item.Label)
	}
	assert.Contains(t, names, "name")
	assert.Contains(t, names, "age")

	for _, item := range result.Items {
		if item.Label == "name" {
			require.Equal(t, CompletionField, item.Kind)
			assert.Equal(t, "String", item.Detail)
		}
	}
}
