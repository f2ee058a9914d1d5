package eval

import (
	"context"
	"os"

	"github.com/frankiebaffa/arcana/pkg/fsutil"
	"github.com/frankiebaffa/arcana/pkg/parse"
)

// evalWrite evaluates body and writes it to path, creating parent
// directories as needed and truncating any existing file, per spec.md
// §4.E's Write-Content contract.
func (e *Evaluator) evalWrite(ctx context.Context, n *parse.Write) (string, error) {
	path, err := e.resolvePath(n, n.Path)
	if err != nil {
		return "", err
	}
	body, err := e.evalNodes(ctx, n.Body.Nodes)
	if err != nil {
		return "", err
	}
	if err := fsutil.WriteFile(path, []byte(body)); err != nil {
		return "", e.ioErr(n, err)
	}
	return "", nil
}

// evalCopyPath duplicates src to dst, dispatching to a directory or file
// copy depending on what src names.
func (e *Evaluator) evalCopyPath(n *parse.CopyPath) (string, error) {
	src, err := e.resolvePath(n, n.Src)
	if err != nil {
		return "", err
	}
	dst, err := e.resolvePath(n, n.Dst)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(src)
	if err != nil {
		return "", e.ioErr(n, err)
	}
	if info.IsDir() {
		err = fsutil.CopyDir(src, dst)
	} else {
		err = fsutil.CopyFile(src, dst)
	}
	if err != nil {
		return "", e.ioErr(n, err)
	}
	return "", nil
}

// evalDeletePath removes path, whether it names a file or a directory tree.
func (e *Evaluator) evalDeletePath(n *parse.DeletePath) (string, error) {
	path, err := e.resolvePath(n, n.Path)
	if err != nil {
		return "", err
	}
	if err := fsutil.DeletePath(path); err != nil {
		return "", e.ioErr(n, err)
	}
	return "", nil
}
