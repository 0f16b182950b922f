// Package lsp is the JSON-RPC stdio transport: it frames and dispatches
// the wire protocol onto internal/dispatcher, which does the actual work.
// Geometry (Position/Range) rides on go.lsp.dev/protocol's types since
// that's the one piece of the wire format every client and every other
// go.lsp.dev-based tool in the pack agrees on bit-for-bit; everything
// above that is this package's own request/response structs, since the
// wire shape of a given method is exactly the LSP spec's JSON shape
// regardless of which Go package mediates it.
package lsp

import (
	"encoding/json"

	"go.lsp.dev/protocol"
)

type Position = protocol.Position
type Range = protocol.Range

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type ContentChangeEvent struct {
	Range       *Range `json:"range,omitempty"`
	RangeLength *int   `json:"rangeLength,omitempty"`
	Text        string `json:"text"`
}

type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type InitializeParams struct {
	ProcessID             *int            `json:"processId,omitempty"`
	RootURI               string          `json:"rootUri,omitempty"`
	RootPath              string          `json:"rootPath,omitempty"`
	InitializationOptions json.RawMessage `json:"initializationOptions,omitempty"`
}

type ServerCapabilities struct {
	TextDocumentSync            int                     `json:"textDocumentSync"`
	HoverProvider                bool                    `json:"hoverProvider"`
	CompletionProvider           *CompletionOptions      `json:"completionProvider,omitempty"`
	DefinitionProvider           bool                    `json:"definitionProvider"`
	ReferencesProvider           bool                    `json:"referencesProvider"`
	DocumentSymbolProvider       bool                    `json:"documentSymbolProvider"`
	WorkspaceSymbolProvider      bool                    `json:"workspaceSymbolProvider"`
	CodeActionProvider           *CodeActionOptions      `json:"codeActionProvider,omitempty"`
	CodeLensProvider             *CodeLensOptions        `json:"codeLensProvider,omitempty"`
	DocumentFoldingRangeProvider bool                    `json:"foldingRangeProvider"`
	RenameProvider               *RenameOptions          `json:"renameProvider,omitempty"`
	InlayHintProvider            bool                    `json:"inlayHintProvider"`
}

type CompletionOptions struct {
	ResolveProvider   bool     `json:"resolveProvider"`
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

type CodeLensOptions struct {
	ResolveProvider bool `json:"resolveProvider"`
}

type RenameOptions struct {
	PrepareProvider bool `json:"prepareProvider"`
}

type CodeActionOptions struct {
	ResolveProvider bool `json:"resolveProvider"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
}

type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity"`
	Code     string `json:"code,omitempty"`
	Source   string `json:"source"`
	Message  string `json:"message"`
}

type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier `json:"textDocument"`
	ContentChanges []ContentChangeEvent            `json:"contentChanges"`
}

type DidSaveTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Text         *string                `json:"text,omitempty"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type DidChangeConfigurationParams struct {
	Settings json.RawMessage `json:"settings"`
}

type FileEvent struct {
	URI  string `json:"uri"`
	Type int    `json:"type"`
}

type DidChangeWatchedFilesParams struct {
	Changes []FileEvent `json:"changes"`
}

type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

type CompletionParams struct {
	TextDocumentPositionParams
}

type CompletionItem struct {
	Label         string          `json:"label"`
	Kind          int             `json:"kind,omitempty"`
	Detail        string          `json:"detail,omitempty"`
	Documentation string          `json:"documentation,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
	TextEdit      *TextEdit       `json:"textEdit,omitempty"`
}

type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

type WorkspaceEdit struct {
	Changes map[string][]TextEdit `json:"changes"`
}

type ReferenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

type ReferenceParams struct {
	TextDocumentPositionParams
	Context ReferenceContext `json:"context"`
}

type RenameParams struct {
	TextDocumentPositionParams
	NewName string `json:"newName"`
}

type CodeActionContext struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type CodeActionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
	Context      CodeActionContext      `json:"context"`
}

type Command struct {
	Title     string        `json:"title"`
	Command   string        `json:"command"`
	Arguments []interface{} `json:"arguments,omitempty"`
}

type CodeAction struct {
	Title   string          `json:"title"`
	Kind    string          `json:"kind,omitempty"`
	Edit    *WorkspaceEdit  `json:"edit,omitempty"`
	Command *Command        `json:"command,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type CodeLensParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type CodeLens struct {
	Range   Range       `json:"range"`
	Command *Command    `json:"command,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type DocumentSymbolParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type DocumentSymbol struct {
	Name           string           `json:"name"`
	Detail         string           `json:"detail,omitempty"`
	Kind           int              `json:"kind"`
	Range          Range            `json:"range"`
	SelectionRange Range            `json:"selectionRange"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

type WorkspaceSymbolParams struct {
	Query string `json:"query"`
}

type SymbolInformation struct {
	Name     string   `json:"name"`
	Kind     int      `json:"kind"`
	Location Location `json:"location"`
}

type FoldingRangeParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type FoldingRange struct {
	StartLine uint32 `json:"startLine"`
	EndLine   uint32 `json:"endLine"`
	Kind      string `json:"kind,omitempty"`
}

// InlayHint mirrors LSP 3.17's inlay hint shape directly; go.lsp.dev/protocol
// predates that addition to the spec, so this method's wire types are
// hand-declared here rather than borrowed, same as every other struct in
// this file.
type InlayHint struct {
	Position Position `json:"position"`
	Label    string   `json:"label"`
	Kind     int      `json:"kind,omitempty"`
}

type InlayHintParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
}
