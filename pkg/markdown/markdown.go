// Package markdown implements Arcana's "No-Flavor Markdown" post-processor:
// an external collaborator, per spec.md §1, invoked only through the `md`
// Include-File modifier. It is grounded on original_source/core/src/parser.rs's
// use of an external nfm_core::Parser: a real, separately-versioned routine
// applied to a finished string, not something the core tag grammar knows
// the internals of.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Processor flattens markdown structure out of a finished string, leaving
// only its textual content — "no flavor" rendering, as opposed to HTML.
type Processor interface {
	Process(src string) (string, error)
}

// Default is the goldmark-backed Processor used when Include-File's `md`
// modifier is applied without further configuration.
var Default Processor = goldmarkProcessor{}

type goldmarkProcessor struct{}

func (goldmarkProcessor) Process(src string) (string, error) {
	return Process(src)
}

// Process parses src as CommonMark and walks the resulting AST, emitting
// only the textual content of each node — headings, paragraphs, emphasis,
// list items, and link/image text — separated by blank lines between block
// elements. Markdown syntax markers (`#`, `*`, `[...](...)`, etc.) never
// appear in the output.
func Process(src string) (string, error) {
	source := []byte(src)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var buf strings.Builder
	first := true
	emitBlockBreak := func() {
		if !first {
			buf.WriteString("\n\n")
		}
		first = false
	}

	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.FencedCodeBlock:
			emitBlockBreak()
			writeLines(&buf, t.Lines(), source)
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			emitBlockBreak()
			writeLines(&buf, t.Lines(), source)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.Blockquote:
			emitBlockBreak()
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeLines(buf *strings.Builder, lines *text.Segments, source []byte) {
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
}
