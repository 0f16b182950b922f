package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"

	"jls/internal/dispatcher"
	"jls/internal/logging"
	"jls/internal/providers"
)

// Server is the JSON-RPC stdio front door onto a Dispatcher, replacing the
// teacher's hand-rolled Content-Length framing loop
// (internal/mangle/lsp.go's ServeStdio/handleRequest) with the real
// go.lsp.dev/jsonrpc2 transport while keeping the same switch-on-method
// dispatch table shape.
type Server struct {
	disp     *dispatcher.Dispatcher
	conn     jsonrpc2.Conn
	shutdown bool
}

// NewServer binds a Server to a Dispatcher. disp.Initialize runs later,
// when the client sends its initialize request.
func NewServer(disp *dispatcher.Dispatcher) *Server {
	return &Server{disp: disp}
}

// Serve runs the JSON-RPC loop over stdio until the client disconnects,
// sends exit, or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	stream := jsonrpc2.NewStream(stdrwc{})
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn

	conn.Go(ctx, s.handle)

	s.disp.Publish = func(fd providers.FileDiagnostics) {
		s.publishDiagnostics(ctx, fd)
	}

	select {
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	case <-conn.Done():
		return conn.Err()
	}
}

func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	logging.DispatcherDebug("lsp: %s", req.Method())

	switch req.Method() {
	case "initialize":
		return s.onInitialize(ctx, reply, req)
	case "initialized":
		return reply(ctx, nil, nil)
	case "shutdown":
		s.shutdown = true
		return reply(ctx, nil, nil)
	case "exit":
		s.conn.Close()
		return reply(ctx, nil, nil)

	case "textDocument/didOpen":
		return s.onDidOpen(ctx, reply, req)
	case "textDocument/didChange":
		return s.onDidChange(ctx, reply, req)
	case "textDocument/didClose":
		return s.onDidClose(ctx, reply, req)
	case "textDocument/didSave":
		return s.onDidSave(ctx, reply, req)
	case "workspace/didChangeConfiguration":
		return s.onDidChangeConfiguration(ctx, reply, req)
	case "workspace/didChangeWatchedFiles":
		return s.onDidChangeWatchedFiles(ctx, reply, req)

	case "textDocument/hover":
		return s.onHover(ctx, reply, req)
	case "textDocument/completion":
		return s.onCompletion(ctx, reply, req)
	case "completionItem/resolve":
		return s.onResolveCompletion(ctx, reply, req)
	case "textDocument/definition":
		return s.onDefinition(ctx, reply, req)
	case "textDocument/references":
		return s.onReferences(ctx, reply, req)
	case "textDocument/codeAction":
		return s.onCodeAction(ctx, reply, req)
	case "codeAction/resolve":
		return s.onResolveCodeAction(ctx, reply, req)
	case "textDocument/codeLens":
		return s.onCodeLens(ctx, reply, req)
	case "codeLens/resolve":
		return s.onResolveCodeLens(ctx, reply, req)
	case "textDocument/rename":
		return s.onRename(ctx, reply, req)
	case "textDocument/prepareRename":
		return s.onPrepareRename(ctx, reply, req)
	case "textDocument/foldingRange":
		return s.onFoldingRange(ctx, reply, req)
	case "textDocument/inlayHint":
		return s.onInlayHint(ctx, reply, req)
	case "textDocument/documentSymbol":
		return s.onDocumentSymbol(ctx, reply, req)
	case "workspace/symbol":
		return s.onWorkspaceSymbol(ctx, reply, req)

	default:
		return reply(ctx, nil, fmt.Errorf("lsp: method not found: %s", req.Method()))
	}
}

func unmarshalParams(req jsonrpc2.Request, v interface{}) error {
	return json.Unmarshal(req.Params(), v)
}
