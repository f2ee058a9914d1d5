package parse_test

import (
	"testing"

	"github.com/frankiebaffa/arcana/pkg/parse"
)

func textOf(t *testing.T, src string) []parse.Node {
	t.Helper()
	b, err := parse.Parse("<test>", src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return b.Nodes
}

func TestIdempotentTextPassthrough(t *testing.T) {
	src := "plain text with no tags at all"
	nodes := textOf(t, src)
	if len(nodes) != 1 {
		t.Fatalf("expected a single Text node, got %d nodes", len(nodes))
	}
	txt, ok := nodes[0].(*parse.Text)
	if !ok || txt.Value != src {
		t.Fatalf("got %#v, want Text(%q)", nodes[0], src)
	}
}

func TestCommentEmitsNothing(t *testing.T) {
	nodes := textOf(t, "before#{this is a comment}#after")
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes (Text, Comment, Text), got %d: %#v", len(nodes), nodes)
	}
	if _, ok := nodes[1].(*parse.Comment); !ok {
		t.Errorf("nodes[1] = %#v, want *Comment", nodes[1])
	}
}

func TestIgnoreSwallowsVerbatim(t *testing.T) {
	nodes := textOf(t, "x!{ ${not a real tag} }!y")
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d: %#v", len(nodes), nodes)
	}
	if _, ok := nodes[1].(*parse.Ignore); !ok {
		t.Errorf("nodes[1] = %#v, want *Ignore", nodes[1])
	}
}

func TestWhitespaceContinuation(t *testing.T) {
	nodes := textOf(t, "A \\\n   B")
	var out string
	for _, n := range nodes {
		if txt, ok := n.(*parse.Text); ok {
			out += txt.Value
		}
	}
	if out != "AB" {
		t.Errorf("got %q, want %q", out, "AB")
	}
}

func TestBackslashEscape(t *testing.T) {
	nodes := textOf(t, `\$literal`)
	var out string
	for _, n := range nodes {
		if txt, ok := n.(*parse.Text); ok {
			out += txt.Value
		}
	}
	if out != "$literal" {
		t.Errorf("got %q, want %q", out, "$literal")
	}
}

func TestIncludeContentAlias(t *testing.T) {
	nodes := textOf(t, "${n|upper}")
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d: %#v", len(nodes), nodes)
	}
	ic, ok := nodes[0].(*parse.IncludeContent)
	if !ok {
		t.Fatalf("got %#v, want *IncludeContent", nodes[0])
	}
	if ic.Alias != "n" {
		t.Errorf("Alias = %q, want %q", ic.Alias, "n")
	}
	if len(ic.Modifiers) != 1 || ic.Modifiers[0].Name != "upper" {
		t.Errorf("Modifiers = %#v", ic.Modifiers)
	}
}

func TestSetItemStringDialect(t *testing.T) {
	nodes := textOf(t, "={k}{hello}")
	si, ok := nodes[0].(*parse.SetItem)
	if !ok {
		t.Fatalf("got %#v, want *SetItem", nodes[0])
	}
	if si.Alias != "k" || len(si.Blocks) != 1 || si.Blocks[0].Delim != parse.Braces {
		t.Errorf("got %#v", si)
	}
}

func TestSetItemJSONDialect(t *testing.T) {
	nodes := textOf(t, `={}({"k":"v"})`)
	si, ok := nodes[0].(*parse.SetItem)
	if !ok {
		t.Fatalf("got %#v, want *SetItem", nodes[0])
	}
	if si.Alias != "" || si.Blocks[0].Delim != parse.Parens {
		t.Errorf("got %#v", si)
	}
}

func TestSiphonToRoot(t *testing.T) {
	nodes := textOf(t, "={$root}<{album}")
	siphon, ok := nodes[0].(*parse.Siphon)
	if !ok {
		t.Fatalf("got %#v, want *Siphon", nodes[0])
	}
	if siphon.Dst != "$root" || siphon.Src != "album" {
		t.Errorf("got %#v", siphon)
	}
}

func TestChainCollapsesWhitespace(t *testing.T) {
	nodes := textOf(t, "%{t exists}-\n  {yes}-\n  {no}")
	ifNode, ok := nodes[0].(*parse.If)
	if !ok {
		t.Fatalf("got %#v, want *If", nodes[0])
	}
	if ifNode.Then == nil || ifNode.Else == nil {
		t.Fatalf("expected both branches parsed, got %#v", ifNode)
	}
}

func TestConditionLeftToRightEqualPrecedence(t *testing.T) {
	nodes := textOf(t, "%{a && b || c}{Y}{N}")
	ifNode := nodes[0].(*parse.If)
	if len(ifNode.Cond.Terms) != 3 {
		t.Fatalf("expected 3 terms, got %d", len(ifNode.Cond.Terms))
	}
	if ifNode.Cond.Joins[0] != parse.JoinAnd || ifNode.Cond.Joins[1] != parse.JoinOr {
		t.Errorf("Joins = %#v", ifNode.Cond.Joins)
	}
}

func TestConditionComparisonOperator(t *testing.T) {
	nodes := textOf(t, "%{a >= b}{Y}{N}")
	ifNode := nodes[0].(*parse.If)
	if len(ifNode.Cond.Terms) != 1 {
		t.Fatalf("expected 1 term, got %d", len(ifNode.Cond.Terms))
	}
	term := ifNode.Cond.Terms[0]
	if term.Alias != "a" || term.Op != parse.OpGe || term.RHSAlias != "b" {
		t.Errorf("got %#v, want Alias=a Op=>= RHSAlias=b", term)
	}
	if term.Predicate != parse.PredNone {
		t.Errorf("Predicate = %q, want PredNone (comparison terms carry no predicate)", term.Predicate)
	}
}

func TestStrayBracketIsPlainText(t *testing.T) {
	_, err := parse.Parse("<test>", "text with a stray ] bracket")
	if err != nil {
		t.Errorf("plain text with a non-sigil bracket should not error: %v", err)
	}
}
