package lsp

import (
	"io"
	"os"
)

// stdrwc adapts stdin/stdout into the single io.ReadWriteCloser a
// jsonrpc2 stream wraps, the same role the teacher's ServeStdio gives its
// bufio.Reader/os.Stdout pair in internal/mangle/lsp.go.
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdrwc) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

var _ io.ReadWriteCloser = stdrwc{}
