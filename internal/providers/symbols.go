package providers

import (
	"context"
	"strings"

	"jls/internal/index"
	"jls/internal/javaparse"
)

// SymbolKind mirrors the subset of LSP SymbolKind values this provider
// distinguishes.
type SymbolKind int

const (
	SymbolClass SymbolKind = iota
	SymbolInterface
	SymbolEnum
	SymbolRecord
	SymbolAnnotation
	SymbolMethod
	SymbolConstructor
	SymbolField
	SymbolEnumMember
)

// Symbol is one entry in a document or workspace symbol tree.
type Symbol struct {
	Name       string
	Detail     string
	Kind       SymbolKind
	Range      javaparse.Range
	SelectRange javaparse.Range
	Children   []Symbol
}

func kindOf(d *javaparse.Decl) SymbolKind {
	switch d.Kind {
	case javaparse.KindClass:
		return SymbolClass
	case javaparse.KindInterface:
		return SymbolInterface
	case javaparse.KindEnum:
		return SymbolEnum
	case javaparse.KindRecord:
		return SymbolRecord
	case javaparse.KindAnnotationType:
		return SymbolAnnotation
	case javaparse.KindMethod:
		return SymbolMethod
	case javaparse.KindConstructor:
		return SymbolConstructor
	case javaparse.KindField:
		return SymbolField
	case javaparse.KindEnumConstant:
		return SymbolEnumMember
	default:
		return SymbolClass
	}
}

// DocumentSymbols builds the nested outline for a single file: types
// containing their members, nested types recursing the same way.
func DocumentSymbols(f *javaparse.File) []Symbol {
	var out []Symbol
	for _, d := range f.Types {
		out = append(out, symbolOf(d))
	}
	return out
}

func symbolOf(d *javaparse.Decl) Symbol {
	s := Symbol{
		Name:        d.Name,
		Detail:      detailOf(d),
		Kind:        kindOf(d),
		Range:       d.BodyRange,
		SelectRange: d.NameRange,
	}
	for _, c := range d.Children {
		s.Children = append(s.Children, symbolOf(c))
	}
	return s
}

func detailOf(d *javaparse.Decl) string {
	switch d.Kind {
	case javaparse.KindMethod:
		return signature(d)
	case javaparse.KindConstructor:
		return signature(d)
	case javaparse.KindField:
		return d.FieldType
	default:
		if d.Superclass != "" {
			return "extends " + d.Superclass
		}
		return ""
	}
}

func signature(d *javaparse.Decl) string {
	var parts []string
	for _, p := range d.Params {
		parts = append(parts, p.Type)
	}
	sig := "(" + strings.Join(parts, ", ") + ")"
	if d.ReturnType != "" {
		sig += " : " + d.ReturnType
	}
	return sig
}

// WorkspaceSymbolMatch is one workspace/symbol result, carrying the owning
// file path since there is no live Task at workspace-search time.
type WorkspaceSymbolMatch struct {
	Symbol Symbol
	Path   string
}

// WorkspaceSymbols narrows the candidate files to those the token index
// lists for the lower-cased query as a whole token (falling back to every
// path when there are none), parses them, and returns each declaration
// whose name contains query, case-insensitively.
func WorkspaceSymbols(ctx context.Context, idx *index.Index, parser *javaparse.Parser, paths []string, readSource func(string) ([]byte, error), query string) ([]WorkspaceSymbolMatch, error) {
	if query == "" {
		return nil, nil
	}
	candidates := idx.FilesContaining(strings.ToLower(query))
	if len(candidates) == 0 {
		candidates = paths
	}

	var matches []WorkspaceSymbolMatch
	for _, path := range candidates {
		src, err := readSource(path)
		if err != nil {
			continue
		}
		f, err := parser.Parse(ctx, path, src)
		if err != nil || f == nil {
			continue
		}
		for _, d := range f.AllDecls() {
			if strings.Contains(strings.ToLower(d.Name), strings.ToLower(query)) {
				matches = append(matches, WorkspaceSymbolMatch{Symbol: symbolOf(d), Path: path})
			}
		}
		f.Close()
	}
	return matches, nil
}
