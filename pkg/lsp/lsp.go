// Package lsp implements a minimal language server for Arcana templates:
// parse diagnostics published on open/change, nothing else. Grounded on the
// teacher's pkg/lsp (src.elv.sh/pkg/lsp), stripped to the one piece of that
// server Arcana's single-pass, non-interactive grammar actually supports —
// there is no completion/hover surface to mirror since Arcana has no
// command or variable namespace to complete against, only a flat alias
// space resolved at eval time, not parse time.
package lsp

import (
	"context"
	"io"

	"github.com/sourcegraph/jsonrpc2"
)

// Run serves the language server protocol over in/out until the connection
// closes or ctx is cancelled. Grounded on the teacher's lsp.Program.Run,
// minus the prog.Program subprogram plumbing arcc has no equivalent of.
func Run(ctx context.Context, in io.ReadCloser, out io.WriteCloser) error {
	s := newServer()
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(transport{in, out}, jsonrpc2.VSCodeObjectCodec{}),
		s.handler())
	<-conn.DisconnectNotify()
	return nil
}

type transport struct {
	in  io.ReadCloser
	out io.WriteCloser
}

func (t transport) Read(p []byte) (int, error)  { return t.in.Read(p) }
func (t transport) Write(p []byte) (int, error) { return t.out.Write(p) }

func (t transport) Close() error {
	if err := t.in.Close(); err != nil {
		t.out.Close()
		return err
	}
	return t.out.Close()
}
