package parse

import (
	"fmt"

	"github.com/frankiebaffa/arcana/pkg/diag"
)

// parseTag is the dispatch point: ps is positioned at sigil, which is
// followed by a recognized opener ('{' or '(').
func parseTag(ps *parser, sigil rune) (Node, error) {
	start := ps.pos
	ps.next() // consume sigil

	switch sigil {
	case '#':
		return parseVerbatimTag(ps, start, "}#", func(b nodeBase) Node { return &Comment{b} })
	case '!':
		return parseVerbatimTag(ps, start, "}!", func(b nodeBase) Node { return &Ignore{b} })
	case '+':
		return parseExtend(ps, start)
	case '.':
		return parseSource(ps, start)
	case '&':
		return parseIncludeFile(ps, start)
	case '%':
		return parseIf(ps, start)
	case '@':
		return parseForEachItem(ps, start)
	case '*':
		return parseForEachFile(ps, start)
	case '$':
		return parseIncludeContent(ps, start)
	case '=':
		return parseSetOrSiphon(ps, start)
	case '/':
		return parseUnset(ps, start)
	case '^':
		return parseWrite(ps, start)
	case '~':
		return parseCopyPath(ps, start)
	case '-':
		return parseDeletePath(ps, start)
	default:
		return nil, ps.errAt(start, start+1, diag.UnknownSigil, fmt.Sprintf("unknown sigil %q", sigil))
	}
}

// parseVerbatimTag handles Comment/Ignore: swallow everything verbatim
// (no nested tag recognition) until the literal endSigil sequence, per
// spec.md §4.C. It also swallows exactly one trailing newline, per
// spec.md §4.E ("immediately followed by a single newline consumes that
// newline") — implemented here at parse time since it only ever depends on
// adjacent source text, not on evaluation state.
func parseVerbatimTag(ps *parser, start int, endSigil string, mk func(nodeBase) Node) (Node, error) {
	if ps.peek() != '{' {
		return nil, ps.errHere(diag.UnterminatedTag, "expected '{' to open comment/ignore")
	}
	ps.next()
	for {
		if ps.eof() {
			return nil, ps.errAt(start, ps.pos, diag.UnterminatedBlock, "unterminated comment or ignore")
		}
		if ps.hasPrefix(endSigil) {
			ps.pos += len(endSigil)
			break
		}
		ps.next()
	}
	if ps.peek() == '\n' {
		ps.next()
	}
	return mk(nodeBase{start, ps.pos}), nil
}

// openHeadToken expects the next rune to be '{' or '(' and consumes it,
// returning the Delim for callers that need to know which bracket closes
// the token (Siphon/CopyPath reuse this for their bracketed alias/path
// segments as well as full tag heads).
func (ps *parser) openHeadToken(tagName string) (Delim, error) {
	switch ps.peek() {
	case '{':
		ps.next()
		return Braces, nil
	case '(':
		ps.next()
		return Parens, nil
	default:
		return 0, ps.errHere(diag.UnterminatedTag, fmt.Sprintf("%s: expected '{' or '('", tagName))
	}
}

func (ps *parser) closeHeadToken(tagName string, d Delim) error {
	want := byte(matchingCloser(d))
	if ps.eof() || ps.src[ps.pos] != want {
		return ps.errHere(diag.UnterminatedTag, fmt.Sprintf("%s: expected closing %q", tagName, want))
	}
	ps.pos++
	return nil
}

func parseExtend(ps *parser, start int) (Node, error) {
	const name = "extend"
	d, err := ps.openHeadToken(name)
	if err != nil {
		return nil, err
	}
	path, err := ps.scanPathExpr()
	if err != nil {
		return nil, err
	}
	if err := ps.closeHeadToken(name, d); err != nil {
		return nil, err
	}
	return &ExtendTemplate{nodeBase{start, ps.pos}, path}, nil
}

func parseSource(ps *parser, start int) (Node, error) {
	const name = "source"
	d, err := ps.openHeadToken(name)
	if err != nil {
		return nil, err
	}
	path, err := ps.scanPathExpr()
	if err != nil {
		return nil, err
	}
	mods, err := ps.scanModifiers()
	if err != nil {
		return nil, err
	}
	as := ""
	for _, m := range mods {
		if m.Name == "as" && len(m.Args) == 1 {
			as = m.Args[0]
		}
	}
	if err := ps.closeHeadToken(name, d); err != nil {
		return nil, err
	}
	return &SourceFile{nodeBase{start, ps.pos}, path, as}, nil
}

func parseIncludeFile(ps *parser, start int) (Node, error) {
	const name = "include-file"
	d, err := ps.openHeadToken(name)
	if err != nil {
		return nil, err
	}
	path, err := ps.scanPathExpr()
	if err != nil {
		return nil, err
	}
	mods, err := ps.scanModifiers()
	if err != nil {
		return nil, err
	}
	if err := ps.closeHeadToken(name, d); err != nil {
		return nil, err
	}

	node := &IncludeFile{Path: path, Modifiers: mods}
	if hasUpcomingBlockOpener(ps) {
		bd, err := ps.chainOrOpener(name, start)
		if err != nil {
			return nil, err
		}
		setup, err := parseBlockBody(ps, bd)
		if err != nil {
			return nil, err
		}
		node.Setup = setup
	}
	node.nodeBase = nodeBase{start, ps.pos}
	return node, nil
}

// hasUpcomingBlockOpener looks ahead (without consuming) to see whether the
// next significant token is a block opener, either directly (after inline
// space) or via the Chain syntax (a '-' that skips all whitespace including
// newlines to reach the opener). Used to decide whether an optional
// trailing block is actually present versus the tag simply ending.
func hasUpcomingBlockOpener(ps *parser) bool {
	save := ps.pos
	defer func() { ps.pos = save }()
	ps.skipInlineSpace()
	if ps.peek() == '{' || ps.peek() == '(' {
		return true
	}
	if ps.peek() != '-' {
		return false
	}
	ps.next()
	ps.skipWhitespace()
	return ps.peek() == '{' || ps.peek() == '('
}

func parseBlockBody(ps *parser, d Delim) (*Block, error) {
	start := ps.pos - 1 // include the opener already consumed by caller
	nodes, err := parseNodes(ps, d)
	if err != nil {
		return nil, err
	}
	return &Block{nodeBase{start, ps.pos}, nodes, d}, nil
}

func parseIf(ps *parser, start int) (Node, error) {
	const name = "if"
	d, err := ps.openHeadToken(name)
	if err != nil {
		return nil, err
	}
	cond, err := parseCondition(ps)
	if err != nil {
		return nil, err
	}
	if err := ps.closeHeadToken(name, d); err != nil {
		return nil, err
	}

	thenDelim, err := ps.chainOrOpener(name, start)
	if err != nil {
		return nil, err
	}
	thenBlock, err := parseBlockBody(ps, thenDelim)
	if err != nil {
		return nil, err
	}
	elseDelim, err := ps.chainOrOpener(name, start)
	if err != nil {
		return nil, err
	}
	elseBlock, err := parseBlockBody(ps, elseDelim)
	if err != nil {
		return nil, err
	}
	return &If{nodeBase{start, ps.pos}, cond, thenBlock, elseBlock}, nil
}

func parseForEachItem(ps *parser, start int) (Node, error) {
	const name = "for-each-item"
	d, err := ps.openHeadToken(name)
	if err != nil {
		return nil, err
	}
	ps.skipInlineSpace()
	v := ps.scanIdent()
	if v == "" {
		return nil, ps.errHere(diag.BadCondition, name+": expected a loop variable name")
	}
	ps.skipInlineSpace()
	if !ps.hasPrefix("in") {
		return nil, ps.errHere(diag.BadCondition, name+": expected 'in'")
	}
	ps.pos += len("in")
	ps.skipInlineSpace()
	source, err := ps.scanAlias()
	if err != nil {
		return nil, err
	}
	mods, err := ps.scanModifiers()
	if err != nil {
		return nil, err
	}
	if err := ps.closeHeadToken(name, d); err != nil {
		return nil, err
	}

	bodyDelim, err := ps.chainOrOpener(name, start)
	if err != nil {
		return nil, err
	}
	body, err := parseBlockBody(ps, bodyDelim)
	if err != nil {
		return nil, err
	}
	emptyDelim, err := ps.chainOrOpener(name, start)
	if err != nil {
		return nil, err
	}
	empty, err := parseBlockBody(ps, emptyDelim)
	if err != nil {
		return nil, err
	}
	return &ForEachItem{nodeBase{start, ps.pos}, v, source, mods, body, empty}, nil
}

func parseForEachFile(ps *parser, start int) (Node, error) {
	const name = "for-each-file"
	d, err := ps.openHeadToken(name)
	if err != nil {
		return nil, err
	}
	ps.skipInlineSpace()
	v := ps.scanIdent()
	if v == "" {
		return nil, ps.errHere(diag.BadCondition, name+": expected a loop variable name")
	}
	ps.skipInlineSpace()
	if !ps.hasPrefix("in") {
		return nil, ps.errHere(diag.BadCondition, name+": expected 'in'")
	}
	ps.pos += len("in")
	ps.skipInlineSpace()
	path, err := ps.scanPathExpr()
	if err != nil {
		return nil, err
	}
	mods, err := ps.scanModifiers()
	if err != nil {
		return nil, err
	}
	if err := ps.closeHeadToken(name, d); err != nil {
		return nil, err
	}

	bodyDelim, err := ps.chainOrOpener(name, start)
	if err != nil {
		return nil, err
	}
	body, err := parseBlockBody(ps, bodyDelim)
	if err != nil {
		return nil, err
	}
	emptyDelim, err := ps.chainOrOpener(name, start)
	if err != nil {
		return nil, err
	}
	empty, err := parseBlockBody(ps, emptyDelim)
	if err != nil {
		return nil, err
	}
	return &ForEachFile{nodeBase{start, ps.pos}, v, path, mods, body, empty}, nil
}

func parseIncludeContent(ps *parser, start int) (Node, error) {
	const name = "include-content"
	d, err := ps.openHeadToken(name)
	if err != nil {
		return nil, err
	}
	alias, err := ps.scanAlias()
	if err != nil {
		return nil, err
	}
	mods, err := ps.scanModifiers()
	if err != nil {
		return nil, err
	}
	if err := ps.closeHeadToken(name, d); err != nil {
		return nil, err
	}
	return &IncludeContent{nodeBase{start, ps.pos}, alias, mods}, nil
}

// parseSetOrSiphon handles both `={alias|mods}{body}...` (Set-Item) and
// `={dst}<{src}` (Siphon), disambiguated by whether a '<' follows the head
// closer.
func parseSetOrSiphon(ps *parser, start int) (Node, error) {
	const name = "set"
	d, err := ps.openHeadToken(name)
	if err != nil {
		return nil, err
	}

	alias := ""
	if ps.peek() != matchingCloser(d) {
		alias, err = ps.scanAlias()
		if err != nil {
			return nil, err
		}
	}
	mods, err := ps.scanModifiers()
	if err != nil {
		return nil, err
	}
	if err := ps.closeHeadToken(name, d); err != nil {
		return nil, err
	}

	if ps.peek() == '<' {
		ps.next()
		sd, err := ps.openHeadToken("siphon")
		if err != nil {
			return nil, err
		}
		src, err := ps.scanAlias()
		if err != nil {
			return nil, err
		}
		if err := ps.closeHeadToken("siphon", sd); err != nil {
			return nil, err
		}
		return &Siphon{nodeBase{start, ps.pos}, alias, src}, nil
	}

	var blocks []*Block
	for hasUpcomingBlockOpener(ps) {
		bd, err := ps.chainOrOpener(name, start)
		if err != nil {
			return nil, err
		}
		b, err := parseBlockBody(ps, bd)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	if len(blocks) == 0 {
		return nil, ps.errHere(diag.UnterminatedTag, name+": expected at least one value block")
	}
	return &SetItem{nodeBase{start, ps.pos}, alias, mods, blocks}, nil
}

func parseUnset(ps *parser, start int) (Node, error) {
	const name = "unset"
	d, err := ps.openHeadToken(name)
	if err != nil {
		return nil, err
	}
	alias, err := ps.scanAlias()
	if err != nil {
		return nil, err
	}
	mods, err := ps.scanModifiers()
	if err != nil {
		return nil, err
	}
	if err := ps.closeHeadToken(name, d); err != nil {
		return nil, err
	}
	return &Unset{nodeBase{start, ps.pos}, alias, mods}, nil
}

func parseWrite(ps *parser, start int) (Node, error) {
	const name = "write"
	d, err := ps.openHeadToken(name)
	if err != nil {
		return nil, err
	}
	path, err := ps.scanPathExpr()
	if err != nil {
		return nil, err
	}
	if err := ps.closeHeadToken(name, d); err != nil {
		return nil, err
	}
	bodyDelim, err := ps.chainOrOpener(name, start)
	if err != nil {
		return nil, err
	}
	body, err := parseBlockBody(ps, bodyDelim)
	if err != nil {
		return nil, err
	}
	return &Write{nodeBase{start, ps.pos}, path, body}, nil
}

func parseCopyPath(ps *parser, start int) (Node, error) {
	const name = "copy-path"
	d, err := ps.openHeadToken(name)
	if err != nil {
		return nil, err
	}
	src, err := ps.scanPathExpr()
	if err != nil {
		return nil, err
	}
	if err := ps.closeHeadToken(name, d); err != nil {
		return nil, err
	}
	d2, err := ps.openHeadToken(name)
	if err != nil {
		return nil, err
	}
	dst, err := ps.scanPathExpr()
	if err != nil {
		return nil, err
	}
	if err := ps.closeHeadToken(name, d2); err != nil {
		return nil, err
	}
	return &CopyPath{nodeBase{start, ps.pos}, src, dst}, nil
}

func parseDeletePath(ps *parser, start int) (Node, error) {
	const name = "delete-path"
	d, err := ps.openHeadToken(name)
	if err != nil {
		return nil, err
	}
	path, err := ps.scanPathExpr()
	if err != nil {
		return nil, err
	}
	if err := ps.closeHeadToken(name, d); err != nil {
		return nil, err
	}
	return &DeletePath{nodeBase{start, ps.pos}, path}, nil
}

// parseCondition implements the condition grammar of spec.md §4.C.
func parseCondition(ps *parser) (Condition, error) {
	var cond Condition
	for {
		ps.skipInlineSpace()
		term, err := parseCondTerm(ps)
		if err != nil {
			return Condition{}, err
		}
		cond.Terms = append(cond.Terms, term)
		ps.skipInlineSpace()
		if ps.hasPrefix("&&") {
			ps.pos += 2
			cond.Joins = append(cond.Joins, JoinAnd)
			continue
		}
		if ps.hasPrefix("||") {
			ps.pos += 2
			cond.Joins = append(cond.Joins, JoinOr)
			continue
		}
		return cond, nil
	}
}

var condOps = []CondOp{OpGe, OpLe, OpEq, OpNe, OpGt, OpLt}

func parseCondTerm(ps *parser) (CondTerm, error) {
	var term CondTerm
	if ps.peek() == '!' {
		term.Negate = true
		ps.next()
		ps.skipInlineSpace()
	}
	alias, err := ps.scanAlias()
	if err != nil {
		return CondTerm{}, err
	}
	term.Alias = alias

	save := ps.pos
	ps.skipInlineSpace()
	for _, op := range condOps {
		if ps.hasPrefix(string(op)) {
			ps.pos += len(op)
			ps.skipInlineSpace()
			rhs, err := ps.scanAlias()
			if err != nil {
				return CondTerm{}, err
			}
			term.Op = op
			term.RHSAlias = rhs
			return term, nil
		}
	}
	if ps.hasPrefix(string(PredExists)) {
		ps.pos += len(PredExists)
		term.Predicate = PredExists
		return term, nil
	}
	if ps.hasPrefix(string(PredEmpty)) {
		ps.pos += len(PredEmpty)
		term.Predicate = PredEmpty
		return term, nil
	}
	ps.pos = save
	return term, nil
}

