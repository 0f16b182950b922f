package providers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldingRangesImportsTypeAndJavadoc(t *testing.T) {
	const src = `package com.example;

import java.util.List;
import java.util.Map;

/**
 * Widget is a thing.
 */
public class Widget {
    void show() {
        System.out.println("hi");
    }
}
`
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": src})
	path := filepath.Join(dir, "Widget.java")
	task := compileAll(t, facade, path)
	f := task.Files()[path]
	require.NotNil(t, f)

	ranges := FoldingRanges(f)

	var sawImports, sawComment, sawType bool
	for _, r := range ranges {
		switch r.Kind {
		case FoldImports:
			sawImports = true
			assert.Less(t, r.StartLine, r.EndLine)
		case FoldComment:
			sawComment = true
		case FoldRegion:
			if r.EndLine > r.StartLine {
				sawType = true
			}
		}
	}
	assert.True(t, sawImports, "expected an import-block folding range")
	assert.True(t, sawComment, "expected the javadoc to fold")
	assert.True(t, sawType, "expected the class/method body to fold")
}
