package lsp

import (
	"context"
	"encoding/json"

	"go.lsp.dev/jsonrpc2"

	"jls/internal/compiler"
	"jls/internal/filestore"
	"jls/internal/providers"
)

func (s *Server) onInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params InitializeParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	s.disp.Progress = func(phase string, done bool) {
		_ = s.conn.Notify(ctx, "$/progress", map[string]interface{}{
			"token": "jls-init",
			"value": map[string]interface{}{"kind": progressKind(done), "message": phase},
		})
	}

	if err := s.disp.Initialize(ctx); err != nil {
		return reply(ctx, nil, err)
	}
	if len(params.InitializationOptions) > 0 {
		_ = s.disp.ApplyConfig(ctx, params.InitializationOptions)
	}

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:             2, // incremental
			HoverProvider:                true,
			CompletionProvider:           &CompletionOptions{ResolveProvider: true, TriggerCharacters: []string{".", "@"}},
			DefinitionProvider:           true,
			ReferencesProvider:           true,
			DocumentSymbolProvider:       true,
			WorkspaceSymbolProvider:      true,
			CodeActionProvider:           &CodeActionOptions{ResolveProvider: true},
			CodeLensProvider:             &CodeLensOptions{ResolveProvider: true},
			DocumentFoldingRangeProvider: true,
			RenameProvider:               &RenameOptions{PrepareProvider: true},
			InlayHintProvider:            true,
		},
	}
	return reply(ctx, result, nil)
}

func progressKind(done bool) string {
	if done {
		return "end"
	}
	return "report"
}

func (s *Server) publishDiagnostics(ctx context.Context, fd providers.FileDiagnostics) {
	_ = s.conn.Notify(ctx, "textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         pathToURI(fd.URI),
		Diagnostics: toDiagnostics(fd.Diagnostics),
	})
}

func (s *Server) onDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidOpenTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	s.disp.DidOpen(path, params.TextDocument.Text, params.TextDocument.Version)
	go s.lintAndPublish(ctx, []string{path})
	return reply(ctx, nil, nil)
}

func (s *Server) onDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidChangeTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	changes := make([]filestore.Change, 0, len(params.ContentChanges))
	for _, c := range params.ContentChanges {
		if c.Range == nil {
			changes = append(changes, filestore.Change{Full: true, Text: c.Text})
			continue
		}
		startLine, startChar := fromPosition(c.Range.Start)
		endLine, endChar := fromPosition(c.Range.End)
		changes = append(changes, filestore.Change{
			Text: c.Text, StartLine: startLine, StartChar: startChar, EndLine: endLine, EndChar: endChar,
		})
	}
	if err := s.disp.DidChange(path, changes, params.TextDocument.Version, func() {
		s.lintAndPublish(context.Background(), []string{path})
	}); err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, nil, nil)
}

func (s *Server) onDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidCloseTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	s.disp.DidClose(uriToPath(params.TextDocument.URI))
	return reply(ctx, nil, nil)
}

func (s *Server) onDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidSaveTextDocumentParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	results, err := s.disp.DidSave(ctx, path)
	if err != nil {
		return reply(ctx, nil, err)
	}
	for _, r := range results {
		s.publishDiagnostics(ctx, r)
	}
	return reply(ctx, nil, nil)
}

func (s *Server) onDidChangeConfiguration(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidChangeConfigurationParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	if err := s.disp.ApplyConfig(ctx, params.Settings); err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, nil, nil)
}

func (s *Server) onDidChangeWatchedFiles(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	// The filesystem watcher already observes disk changes directly
	// (internal/filestore/watcher.go); this notification is acknowledged
	// for clients whose editors don't surface raw fs events themselves.
	return reply(ctx, nil, nil)
}

func (s *Server) lintAndPublish(ctx context.Context, paths []string) {
	results, err := s.disp.Lint(ctx, paths)
	if err != nil {
		return
	}
	for _, r := range results {
		s.publishDiagnostics(ctx, r)
	}
}

func (s *Server) onHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params TextDocumentPositionParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	line, char := fromPosition(params.Position)
	h, err := s.disp.Hover(ctx, uriToPath(params.TextDocument.URI), line, char)
	if err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, toHover(h), nil)
}

func (s *Server) onCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params CompletionParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	line, char := fromPosition(params.Position)
	result, err := s.disp.Complete(ctx, uriToPath(params.TextDocument.URI), line, char)
	if err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, toCompletionList(result), nil)
}

func (s *Server) onResolveCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var item CompletionItem
	if err := unmarshalParams(req, &item); err != nil {
		return reply(ctx, nil, err)
	}
	if len(item.Data) == 0 {
		return reply(ctx, item, nil)
	}
	var data providers.CompletionData
	if err := json.Unmarshal(item.Data, &data); err != nil {
		return reply(ctx, item, nil)
	}
	doc, err := s.disp.ResolveCompletionItem(ctx, &data)
	if err != nil {
		return reply(ctx, item, nil)
	}
	item.Documentation = doc
	return reply(ctx, item, nil)
}

func (s *Server) onDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params TextDocumentPositionParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	line, char := fromPosition(params.Position)
	loc, err := s.disp.Definition(ctx, uriToPath(params.TextDocument.URI), line, char)
	if err != nil {
		return reply(ctx, nil, err)
	}
	if loc == nil {
		return reply(ctx, nil, nil)
	}
	return reply(ctx, toLocation(*loc), nil)
}

func (s *Server) onReferences(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params ReferenceParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	line, char := fromPosition(params.Position)
	locs, err := s.disp.References(ctx, uriToPath(params.TextDocument.URI), line, char)
	if err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, toLocations(locs), nil)
}

func (s *Server) onCodeAction(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params CodeActionParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	line, char := fromPosition(params.Range.Start)

	diags := make([]compiler.Diagnostic, 0, len(params.Context.Diagnostics))
	for _, d := range params.Context.Diagnostics {
		diags = append(diags, compiler.Diagnostic{
			URI:     path,
			Code:    d.Code,
			Message: d.Message,
		})
	}

	actions, err := s.disp.CodeActions(ctx, path, line, char, diags)
	if err != nil {
		return reply(ctx, nil, err)
	}
	out := make([]CodeAction, 0, len(actions))
	for _, a := range actions {
		out = append(out, toCodeAction(a, path))
	}
	return reply(ctx, out, nil)
}

func (s *Server) onResolveCodeAction(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var action CodeAction
	if err := unmarshalParams(req, &action); err != nil {
		return reply(ctx, nil, err)
	}
	if len(action.Data) == 0 {
		return reply(ctx, action, nil)
	}
	var data providers.CodeActionData
	if err := json.Unmarshal(action.Data, &data); err != nil {
		return reply(ctx, action, nil)
	}
	edits, err := s.disp.ResolveCodeAction(ctx, data)
	if err != nil {
		return reply(ctx, action, nil)
	}
	we := toWorkspaceEdit(edits)
	action.Edit = &we
	return reply(ctx, action, nil)
}

func (s *Server) onCodeLens(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params CodeLensParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	lenses, err := s.disp.CodeLenses(uriToPath(params.TextDocument.URI))
	if err != nil {
		return reply(ctx, nil, err)
	}
	out := make([]CodeLens, 0, len(lenses))
	for _, l := range lenses {
		title := providers.LensTitle(l.Kind)
		out = append(out, toCodeLens(l, title))
	}
	return reply(ctx, out, nil)
}

func (s *Server) onResolveCodeLens(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var lens CodeLens
	if err := unmarshalParams(req, &lens); err != nil {
		return reply(ctx, nil, err)
	}
	data, _ := lens.Data.(map[string]interface{})
	name, _ := data["name"].(string)
	owner, _ := data["owner"].(string)
	lookup := name
	if lookup == "" {
		lookup = owner
	}
	title := s.disp.ResolveReferencesLens(lookup)
	lens.Command = &Command{Title: title, Command: "jls.noop"}
	return reply(ctx, lens, nil)
}

func (s *Server) onRename(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params RenameParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	line, char := fromPosition(params.Position)
	edits, err := s.disp.Rename(ctx, uriToPath(params.TextDocument.URI), line, char, params.NewName)
	if err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, toRenameEdits(edits, params.NewName), nil)
}

func (s *Server) onPrepareRename(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params TextDocumentPositionParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	line, char := fromPosition(params.Position)
	r, err := s.disp.PrepareRename(ctx, uriToPath(params.TextDocument.URI), line, char)
	if err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, toRange(*r), nil)
}

func (s *Server) onFoldingRange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params FoldingRangeParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	ranges, err := s.disp.FoldingRanges(uriToPath(params.TextDocument.URI))
	if err != nil {
		return reply(ctx, nil, err)
	}
	out := make([]FoldingRange, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, toFoldingRange(r))
	}
	return reply(ctx, out, nil)
}

func (s *Server) onInlayHint(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params InlayHintParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	hints, err := s.disp.InlayHints(ctx, uriToPath(params.TextDocument.URI))
	if err != nil {
		return reply(ctx, nil, err)
	}
	out := make([]InlayHint, 0, len(hints))
	for _, h := range hints {
		out = append(out, toInlayHint(h))
	}
	return reply(ctx, out, nil)
}

func (s *Server) onDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DocumentSymbolParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	symbols, err := s.disp.DocumentSymbols(uriToPath(params.TextDocument.URI))
	if err != nil {
		return reply(ctx, nil, err)
	}
	out := make([]DocumentSymbol, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, toDocumentSymbol(sym))
	}
	return reply(ctx, out, nil)
}

func (s *Server) onWorkspaceSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params WorkspaceSymbolParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	matches, err := s.disp.WorkspaceSymbols(ctx, params.Query)
	if err != nil {
		return reply(ctx, nil, err)
	}
	out := make([]SymbolInformation, 0, len(matches))
	for _, m := range matches {
		out = append(out, SymbolInformation{
			Name: m.Symbol.Name,
			Kind: toSymbolKind(m.Symbol.Kind),
			Location: Location{
				URI:   pathToURI(m.Path),
				Range: toRange(m.Symbol.Range),
			},
		})
	}
	return reply(ctx, out, nil)
}
