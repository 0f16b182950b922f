package lombok

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jls/internal/javaparse"
)

const dataSource = `
package com.example;

import lombok.Data;

@Data
public class Point {
    private final int x;
    private final int y;

    public int customMethod() {
        return x + y;
    }
}
`

func parseFirstClass(t *testing.T, src string) *javaparse.Decl {
	t.Helper()
	p := javaparse.New()
	f, err := p.Parse(context.Background(), "Point.java", []byte(src))
	require.NoError(t, err)
	require.Len(t, f.Types, 1)
	return f.Types[0]
}

func TestComputeDataAnnotationImpliesAllMembers(t *testing.T) {
	decl := parseFirstClass(t, dataSource)
	meta := Compute(decl)

	assert.True(t, meta.Getters)
	assert.True(t, meta.Setters)
	assert.True(t, meta.ToString)
	assert.True(t, meta.EqualsAndHashCode)
	assert.Equal(t, ConstructorRequiredArgs, meta.Constructor)
	assert.Len(t, meta.Fields, 2)
	assert.True(t, meta.HasExplicit("customMethod"))
}

func TestGetterNameUsesIsPrefixForBoolean(t *testing.T) {
	assert.Equal(t, "isActive", GetterName(javaparse.Param{Name: "active", Type: "boolean"}))
	assert.Equal(t, "getName", GetterName(javaparse.Param{Name: "name", Type: "String"}))
	assert.Equal(t, "setName", SetterName(javaparse.Param{Name: "name", Type: "String"}))
}

func TestStoreInvalidatesOnAdvancedModTime(t *testing.T) {
	decl := parseFirstClass(t, dataSource)
	s := NewStore()

	t0 := time.Now()
	m1 := s.Get("com.example.Point", t0, decl)
	m2 := s.Get("com.example.Point", t0, decl)
	assert.Same(t, m1, m2)

	m3 := s.Get("com.example.Point", t0.Add(time.Second), decl)
	assert.NotSame(t, m1, m3)
}

func TestIsLombokAnnotated(t *testing.T) {
	assert.True(t, IsLombokAnnotated([]byte(dataSource)))
	assert.False(t, IsLombokAnnotated([]byte("package com.example;")))
}
