package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jls/internal/javaparse"
)

func TestPathURIRoundTrip(t *testing.T) {
	path := "/home/dev/workspace/src/com/example/Greeter.java"
	u := pathToURI(path)
	assert.Equal(t, path, uriToPath(u))
}

func TestToRangeConvertsZeroBasedLineChar(t *testing.T) {
	r := javaparse.Range{
		Start: javaparse.Position{Line: 3, Char: 4},
		End:   javaparse.Position{Line: 3, Char: 10},
	}
	out := toRange(r)
	assert.Equal(t, uint32(3), out.Start.Line)
	assert.Equal(t, uint32(4), out.Start.Character)
	assert.Equal(t, uint32(10), out.End.Character)
}

func TestFromPositionConvertsBackToIntPair(t *testing.T) {
	line, char := fromPosition(Position{Line: 7, Character: 2})
	assert.Equal(t, 7, line)
	assert.Equal(t, 2, char)
}
