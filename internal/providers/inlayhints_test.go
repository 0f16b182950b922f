package providers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInlayHintsParameterNamesAndVarType(t *testing.T) {
	const src = `package com.example;

public class Widget {
    void configure(String name, int count) {
    }

    void use() {
        configure("a", 1);
        var w = new Widget();
    }
}
`
	facade, _, dir := newTestFacade(t, map[string]string{"Widget.java": src})
	path := filepath.Join(dir, "Widget.java")
	task := compileAll(t, facade, path)

	hints := InlayHints(task, path)

	var sawName, sawCount, sawVarType bool
	for _, h := range hints {
		switch {
		case h.Kind == HintParameterName && h.Label == "name:":
			sawName = true
		case h.Kind == HintParameterName && h.Label == "count:":
			sawCount = true
		case h.Kind == HintInferredType && h.Label == ": Widget":
			sawVarType = true
		}
	}
	assert.True(t, sawName, "expected a parameter-name hint for 'name'")
	assert.True(t, sawCount, "expected a parameter-name hint for 'count'")
	assert.True(t, sawVarType, "expected an inferred-type hint for the var declarator")
}
