package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsWordRequiresBoundary(t *testing.T) {
	assert.True(t, ContainsWord("int fooBar = 1;", "fooBar"))
	assert.False(t, ContainsWord("int fooBarBaz = 1;", "fooBar"))
	assert.False(t, ContainsWord("int xfooBar = 1;", "fooBar"))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("return getFoo();", []string{"getFoo", "isFoo", "setFoo"}))
	assert.False(t, ContainsAny("return getBar();", []string{"getFoo", "isFoo", "setFoo"}))
}

func TestCountOccurrencesCapsAtLimit(t *testing.T) {
	text := "foo foo foo foo foo"
	assert.Equal(t, 5, CountOccurrences(text, "foo", 0))
	assert.Equal(t, 2, CountOccurrences(text, "foo", 2))
}

func TestSafeToRename(t *testing.T) {
	assert.True(t, SafeToRename("int foo;", "foo", "bar"))
	assert.False(t, SafeToRename("int foo; int bar;", "foo", "bar"))
	assert.True(t, SafeToRename("int foo;", "foo", "foo"))
}
