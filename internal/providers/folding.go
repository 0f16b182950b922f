package providers

import (
	sitter "github.com/smacker/go-tree-sitter"

	"jls/internal/javaparse"
)

// FoldingKind distinguishes the LSP folding-range kinds this provider emits.
type FoldingKind int

const (
	FoldRegion FoldingKind = iota
	FoldImports
	FoldComment
)

// FoldingRange is a single collapsible range.
type FoldingRange struct {
	Kind      FoldingKind
	StartLine int
	EndLine   int
}

// FoldingRanges emits one range for the import block (when more than one
// import is present), one per type/method/field-initializer body, and one
// per multi-line Javadoc comment.
func FoldingRanges(f *javaparse.File) []FoldingRange {
	var out []FoldingRange

	if len(f.Imports) > 1 && f.Tree != nil {
		var first, last *sitter.Node
		root := f.Tree.RootNode()
		for i := 0; i < int(root.NamedChildCount()); i++ {
			c := root.NamedChild(i)
			if c.Type() == "import_declaration" {
				if first == nil {
					first = c
				}
				last = c
			}
		}
		if first != nil && last != nil && last.StartPoint().Row > first.StartPoint().Row {
			out = append(out, FoldingRange{
				Kind:      FoldImports,
				StartLine: int(first.StartPoint().Row),
				EndLine:   int(last.StartPoint().Row),
			})
		}
	}

	for _, d := range f.AllDecls() {
		if d.BodyRange.End.Line > d.BodyRange.Start.Line {
			out = append(out, FoldingRange{Kind: FoldRegion, StartLine: d.BodyRange.Start.Line, EndLine: d.BodyRange.End.Line})
		}
		if d.Doc != "" {
			if start, end, ok := javadocLines(f.Source, d.BodyRange.Start.Line); ok && end > start {
				out = append(out, FoldingRange{Kind: FoldComment, StartLine: start, EndLine: end})
			}
		}
	}
	return out
}

// javadocLines locates the /** ... */ block comment immediately preceding
// declLine (the declaration's own start line) by scanning the source
// backwards line by line from declLine.
func javadocLines(src []byte, declLine int) (int, int, bool) {
	lines := splitLinesKeepEnds(src)
	if declLine <= 0 || declLine > len(lines) {
		return 0, 0, false
	}
	end := -1
	for i := declLine - 1; i >= 0; i-- {
		trimmed := trimSpaceBytes(lines[i])
		if len(trimmed) == 0 {
			continue
		}
		if hasSuffixBytes(trimmed, []byte("*/")) {
			end = i
		}
		break
	}
	if end < 0 {
		return 0, 0, false
	}
	start := -1
	for i := end; i >= 0; i-- {
		trimmed := trimSpaceBytes(lines[i])
		if hasPrefixBytes(trimmed, []byte("/**")) {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, 0, false
	}
	return start, end, true
}

func splitLinesKeepEnds(src []byte) [][]byte {
	var out [][]byte
	start := 0
	for i, b := range src {
		if b == '\n' {
			out = append(out, src[start:i])
			start = i + 1
		}
	}
	out = append(out, src[start:])
	return out
}

func trimSpaceBytes(b []byte) []byte {
	i, j := 0, len(b)
	for i < j && (b[i] == ' ' || b[i] == '\t' || b[i] == '\r') {
		i++
	}
	for j > i && (b[j-1] == ' ' || b[j-1] == '\t' || b[j-1] == '\r') {
		j--
	}
	return b[i:j]
}

func hasSuffixBytes(b, suffix []byte) bool {
	if len(b) < len(suffix) {
		return false
	}
	return string(b[len(b)-len(suffix):]) == string(suffix)
}

func hasPrefixBytes(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	return string(b[:len(prefix)]) == string(prefix)
}
