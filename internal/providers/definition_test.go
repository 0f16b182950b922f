package providers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefinitionOfRecordAccessor exercises scenario 3: go-to-definition on
// an explicit accessor override inside a record resolves back to the
// record's own declaration, not the method body.
func TestDefinitionOfRecordAccessor(t *testing.T) {
	const src = `package com.example;

public record Point(String name, int x) {
    public String name() {
        return name;
    }
}
`
	facade, store, dir := newTestFacade(t, map[string]string{"Point.java": src})
	path := filepath.Join(dir, "Point.java")
	task := compileAll(t, facade, path)

	// char 19 lands inside the accessor's own "name" identifier on line 3.
	loc := Definition(task, facade, store, path, 3, 19)
	require.NotNil(t, loc)
	assert.Equal(t, path, loc.URI)

	// The record's own name token sits on line 2; the accessor method's
	// name token sits on line 3. The fallback must point at the record.
	assert.Equal(t, 2, loc.Range.Start.Line)
	assert.NotEqual(t, 3, loc.Range.Start.Line)
}
