// Command arcana-lsp runs a minimal language server for Arcana templates
// over stdio, publishing parse diagnostics on open/change. Grounded on the
// teacher's cmd/elvish-lsp (a thin main wrapping pkg/lsp.Program.Run); arcc
// has no subprogram framework of its own, so this is a standalone binary
// instead of a flag on arcc.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/frankiebaffa/arcana/pkg/lsp"
)

func main() {
	if err := lsp.Run(context.Background(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "arcana-lsp:", err)
		os.Exit(1)
	}
}
