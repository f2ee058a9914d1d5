// Package eval implements Arcana's Node Evaluator, Expression & Modifier
// Evaluator, and File Effects: it walks a parsed *parse.Block against a
// ctxstack.Stack, writes to an output buffer, and executes the file
// operations the control-flow/inclusion/mutation/iteration tags request.
//
// The driver's shape — a long-lived evaluator value threaded through
// recursive node-walking, with depth tracking for recursive re-entry rather
// than a fresh struct per call — is grounded on the teacher's eval.Frame:
// each recursive re-entry (closure call, command substitution) derives a
// new Frame from the parent rather than mutating shared state, generalized
// here to Arcana's Extend/Include/Source-File recursion.
package eval

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/frankiebaffa/arcana/pkg/ctxstack"
	"github.com/frankiebaffa/arcana/pkg/diag"
	"github.com/frankiebaffa/arcana/pkg/fsutil"
	"github.com/frankiebaffa/arcana/pkg/logutil"
	"github.com/frankiebaffa/arcana/pkg/markdown"
	"github.com/frankiebaffa/arcana/pkg/parse"
	"github.com/frankiebaffa/arcana/pkg/value"
)

// DefaultMaxDepth bounds recursive Extend/Include-File re-entry, per
// spec.md §5's "implementation-defined recursion limit (recommend ≥64)".
const DefaultMaxDepth = 64

// Evaluator drives evaluation of a parsed Node tree against a Context
// Stack. It is not safe for concurrent use — evaluation is single-threaded
// and cooperative, per spec.md §5.
type Evaluator struct {
	Stack    *ctxstack.Stack
	Markdown markdown.Processor
	MaxDepth int

	depth   int
	cycling map[string]struct{}

	curName   string // name of the source currently being evaluated, for diagnostics
	curSource string
	curDir    string // directory curName's path resolution is relative to

	log logPrinter
}

// logPrinter is the subset of *log.Logger the evaluator depends on, so
// tests can swap in a quieter sink without touching the standard library's
// concrete type.
type logPrinter interface {
	Printf(format string, v ...interface{})
}

// New returns an Evaluator seeded with root as the outermost scope.
func New(root value.Value) *Evaluator {
	return &Evaluator{
		Stack:    ctxstack.New(root),
		Markdown: markdown.Default,
		MaxDepth: DefaultMaxDepth,
		cycling:  map[string]struct{}{},
		log:      logutil.GetLogger("arcana: "),
	}
}

// EvalString evaluates src (named name, for diagnostics) and returns the
// produced output.
func (e *Evaluator) EvalString(ctx context.Context, name, src string) (string, error) {
	block, err := parse.Parse(name, src)
	if err != nil {
		return "", err
	}
	restore := e.enterSource(name, src)
	defer restore()
	return e.evalNodes(ctx, block.Nodes)
}

// EvalFile reads, parses, and evaluates the template at path.
func (e *Evaluator) EvalFile(ctx context.Context, path string) (string, error) {
	return e.evalFileAt(ctx, path)
}

// evalFileAt is the shared recursive entry point for Extend, Include-File
// (non-raw), and the top-level EvalFile: it tracks the recursion depth and
// the cycle-detection set, per spec.md §5.
func (e *Evaluator) evalFileAt(ctx context.Context, path string) (string, error) {
	canon, cerr := filepath.Abs(filepath.Clean(path))
	if cerr != nil {
		canon = filepath.Clean(path)
	}
	if _, ok := e.cycling[canon]; ok {
		return "", diag.NewError(diag.CycleDetected,
			fmt.Sprintf("%q is already being evaluated", path), e.curName, e.curSource, diag.PointRanging(0))
	}
	e.cycling[canon] = struct{}{}
	defer delete(e.cycling, canon)

	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.MaxDepth {
		return "", diag.NewError(diag.RecursionLimitExceeded,
			fmt.Sprintf("exceeded recursion limit of %d while evaluating %q", e.MaxDepth, path),
			e.curName, e.curSource, diag.PointRanging(0))
	}

	e.log.Printf("entering %s at depth %d", path, e.depth)

	data, err := fsutil.ReadFile(path)
	if err != nil {
		return "", diag.NewError(ioKind(err), err.Error(), e.curName, e.curSource, diag.PointRanging(0))
	}
	src := string(data)
	block, err := parse.Parse(path, src)
	if err != nil {
		return "", err
	}

	restore := e.enterSource(path, src)
	defer restore()
	return e.evalNodes(ctx, block.Nodes)
}

// enterSource points the evaluator's diagnostic context at a new source,
// returning a closure that restores the previous one.
func (e *Evaluator) enterSource(name, src string) func() {
	prevName, prevSrc, prevDir := e.curName, e.curSource, e.curDir
	e.curName, e.curSource = name, src
	e.curDir = filepath.Dir(name)
	return func() {
		e.curName, e.curSource, e.curDir = prevName, prevSrc, prevDir
	}
}

func ioKind(err error) diag.Kind {
	if errors.Is(err, fs.ErrNotExist) {
		return diag.NotFound
	}
	return diag.ReadFailed
}

func (e *Evaluator) errAt(n parse.Node, kind diag.Kind, message string) *diag.Error {
	return diag.NewError(kind, message, e.curName, e.curSource, n.Range())
}

func (e *Evaluator) ioErr(n parse.Node, err error) *diag.Error {
	return e.errAt(n, ioKind(err), err.Error())
}

// resolvePath resolves a PathExpr to a concrete path string: literal paths
// are used as-is, alias paths are looked up and must resolve to a String.
func (e *Evaluator) resolvePath(n parse.Node, p parse.PathExpr) (string, error) {
	if !p.IsAlias {
		return p.Literal, nil
	}
	v, ok := e.Stack.Lookup(value.ParsePath(p.Alias))
	if !ok {
		return "", e.errAt(n, diag.AliasNotFound, fmt.Sprintf("alias %q not found", p.Alias))
	}
	if v.Kind() != value.KindString {
		return "", e.errAt(n, diag.TypeMismatch, fmt.Sprintf("pathlike alias %q does not resolve to a string", p.Alias))
	}
	return v.AsString(), nil
}

// resolveRelativeToCurrentFile joins a relative path against the directory
// of the file currently being evaluated, per Set-Item's `path` modifier
// (see DESIGN.md for how this generalizes the original's per-alias
// scoped-path provenance table).
func (e *Evaluator) resolveRelativeToCurrentFile(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(e.curDir, p))
}

// evalNodes walks nodes in order, accumulating output. An Extend-Template
// node encountered anywhere in nodes defers its target until the rest of
// nodes has been evaluated, then replaces the entire accumulated output
// with the extension file's output, per spec.md §4.E. Only the first
// Extend-Template seen in a given nodes slice takes effect, per spec.md
// §3's "only one extend may be active per file".
func (e *Evaluator) evalNodes(ctx context.Context, nodes []parse.Node) (string, error) {
	var buf strings.Builder
	var pendingExtend *parse.ExtendTemplate

	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return "", e.errAt(n, diag.Cancelled, "evaluation cancelled")
		}
		if ext, ok := n.(*parse.ExtendTemplate); ok {
			if pendingExtend == nil {
				pendingExtend = ext
			}
			continue
		}
		s, err := e.evalNode(ctx, n)
		if err != nil {
			return "", err
		}
		buf.WriteString(s)
	}

	if pendingExtend != nil {
		return e.evalExtend(ctx, pendingExtend, buf.String())
	}
	return buf.String(), nil
}

func (e *Evaluator) evalNode(ctx context.Context, n parse.Node) (string, error) {
	switch t := n.(type) {
	case *parse.Text:
		return t.Value, nil
	case *parse.WhitespaceContinuation:
		return "", nil
	case *parse.Comment:
		return "", nil
	case *parse.Ignore:
		return "", nil
	case *parse.SourceFile:
		return e.evalSourceFile(t)
	case *parse.IncludeFile:
		return e.evalIncludeFile(ctx, t)
	case *parse.If:
		return e.evalIf(ctx, t)
	case *parse.ForEachItem:
		return e.evalForEachItem(ctx, t)
	case *parse.ForEachFile:
		return e.evalForEachFile(ctx, t)
	case *parse.IncludeContent:
		return e.evalIncludeContent(t)
	case *parse.SetItem:
		return e.evalSetItem(ctx, t)
	case *parse.Siphon:
		return e.evalSiphon(t)
	case *parse.Unset:
		return e.evalUnset(t)
	case *parse.Write:
		return e.evalWrite(ctx, t)
	case *parse.CopyPath:
		return e.evalCopyPath(t)
	case *parse.DeletePath:
		return e.evalDeletePath(t)
	default:
		return "", fmt.Errorf("eval: unhandled node type %T", n)
	}
}
