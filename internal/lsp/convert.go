package lsp

import (
	"encoding/json"

	"go.lsp.dev/uri"

	"jls/internal/compiler"
	"jls/internal/javaparse"
	"jls/internal/providers"
)

// pathToURI and uriToPath mirror the teacher's own pathToURI/uriToPath
// helpers (internal/mangle/lsp.go), but delegate to go.lsp.dev/uri instead
// of hand-rolling the file:// scheme and Windows-drive-letter handling.
func pathToURI(path string) string {
	return string(uri.File(path))
}

func uriToPath(u string) string {
	return uri.URI(u).Filename()
}

func toRange(r javaparse.Range) Range {
	return Range{
		Start: Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Char)},
		End:   Position{Line: uint32(r.End.Line), Character: uint32(r.End.Char)},
	}
}

func fromPosition(p Position) (line, char int) {
	return int(p.Line), int(p.Character)
}

func toLocation(l providers.Location) Location {
	return Location{URI: pathToURI(l.URI), Range: toRange(l.Range)}
}

func toLocations(ls []providers.Location) []Location {
	out := make([]Location, 0, len(ls))
	for _, l := range ls {
		out = append(out, toLocation(l))
	}
	return out
}

func toDiagnostic(d compiler.Diagnostic) Diagnostic {
	return Diagnostic{
		Range:    toRange(d.Range),
		Severity: int(d.Severity),
		Code:     d.Code,
		Source:   "jls",
		Message:  d.Message,
	}
}

func toDiagnostics(ds []compiler.Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDiagnostic(d))
	}
	return out
}

func toHover(h *providers.HoverResult) *Hover {
	if h == nil {
		return nil
	}
	r := toRange(h.Range)
	return &Hover{Contents: MarkupContent{Kind: "markdown", Value: h.Markdown}, Range: &r}
}

func toCompletionItemKind(k providers.CompletionItemKind) int {
	switch k {
	case providers.CompletionField:
		return 5
	case providers.CompletionMethod:
		return 2
	case providers.CompletionClass:
		return 7
	case providers.CompletionKeyword:
		return 14
	case providers.CompletionEnumMember:
		return 20
	default:
		return 1
	}
}

func toCompletionList(r providers.CompletionResult) CompletionList {
	items := make([]CompletionItem, 0, len(r.Items))
	for _, it := range r.Items {
		item := CompletionItem{
			Label:  it.Label,
			Kind:   toCompletionItemKind(it.Kind),
			Detail: it.Detail,
		}
		if it.Data != nil {
			if raw, err := json.Marshal(it.Data); err == nil {
				item.Data = raw
			}
		}
		items = append(items, item)
	}
	return CompletionList{IsIncomplete: r.Incomplete, Items: items}
}

func toSymbolKind(k providers.SymbolKind) int {
	switch k {
	case providers.SymbolClass:
		return 5
	case providers.SymbolInterface:
		return 11
	case providers.SymbolEnum:
		return 10
	case providers.SymbolRecord:
		return 23
	case providers.SymbolAnnotation:
		return 11
	case providers.SymbolMethod:
		return 6
	case providers.SymbolConstructor:
		return 9
	case providers.SymbolField:
		return 8
	case providers.SymbolEnumMember:
		return 22
	default:
		return 1
	}
}

func toDocumentSymbol(s providers.Symbol) DocumentSymbol {
	children := make([]DocumentSymbol, 0, len(s.Children))
	for _, c := range s.Children {
		children = append(children, toDocumentSymbol(c))
	}
	return DocumentSymbol{
		Name:           s.Name,
		Detail:         s.Detail,
		Kind:           toSymbolKind(s.Kind),
		Range:          toRange(s.Range),
		SelectionRange: toRange(s.SelectRange),
		Children:       children,
	}
}

func toFoldingKind(k providers.FoldingKind) string {
	switch k {
	case providers.FoldImports:
		return "imports"
	case providers.FoldComment:
		return "comment"
	default:
		return "region"
	}
}

func toFoldingRange(f providers.FoldingRange) FoldingRange {
	return FoldingRange{StartLine: uint32(f.StartLine), EndLine: uint32(f.EndLine), Kind: toFoldingKind(f.Kind)}
}

func toInlayHintKind(k providers.InlayHintKind) int {
	switch k {
	case providers.HintParameterName:
		return 2
	case providers.HintInferredType:
		return 1
	default:
		return 1
	}
}

func toInlayHint(h providers.InlayHint) InlayHint {
	return InlayHint{
		Position: Position{Line: uint32(h.Position.Line), Character: uint32(h.Position.Char)},
		Label:    h.Label,
		Kind:     toInlayHintKind(h.Kind),
	}
}

func toCodeActionKind(k providers.CodeActionKind) string {
	switch k {
	case providers.ActionRemoveUnusedDeclaration, providers.ActionRemoveUnusedThrows,
		providers.ActionConvertUnusedLocalToStatement, providers.ActionAddMissingImport,
		providers.ActionAddThrows, providers.ActionAddSuppressWarnings:
		return "quickfix"
	default:
		return "refactor"
	}
}

func toCodeAction(a providers.CodeAction, path string) CodeAction {
	out := CodeAction{Title: a.Title, Kind: toCodeActionKind(a.Kind)}
	if providers.IsDeferred(a.Kind) {
		data := providers.CodeActionData{Path: path, Kind: a.Kind, Range: a.Range, Payload: a.Payload}
		if raw, err := json.Marshal(data); err == nil {
			out.Data = raw
		}
		return out
	}
	args := make([]interface{}, 0, len(a.Payload)+1)
	args = append(args, a.Payload)
	out.Command = &Command{
		Title:     a.Title,
		Command:   "jls.codeAction",
		Arguments: args,
	}
	return out
}

func toWorkspaceEdit(edits map[string][]providers.TextEdit) WorkspaceEdit {
	changes := make(map[string][]TextEdit, len(edits))
	for path, es := range edits {
		out := make([]TextEdit, 0, len(es))
		for _, e := range es {
			out = append(out, TextEdit{Range: toRange(e.Range), NewText: e.NewText})
		}
		changes[pathToURI(path)] = out
	}
	return WorkspaceEdit{Changes: changes}
}

func toCodeLens(l providers.CodeLens, title string) CodeLens {
	return CodeLens{
		Range: toRange(l.Range),
		Command: &Command{
			Title:   title,
			Command: "jls.noop",
		},
		Data: map[string]interface{}{"owner": l.Owner, "name": l.Name, "kind": int(l.Kind)},
	}
}

func toRenameEdits(edits map[string][]providers.RenameEdit, newName string) WorkspaceEdit {
	changes := make(map[string][]TextEdit, len(edits))
	for path, es := range edits {
		out := make([]TextEdit, 0, len(es))
		for _, e := range es {
			out = append(out, TextEdit{Range: toRange(e.Range), NewText: newName})
		}
		changes[pathToURI(path)] = out
	}
	return WorkspaceEdit{Changes: changes}
}
