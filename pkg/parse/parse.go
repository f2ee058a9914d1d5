package parse

import (
	"fmt"

	"github.com/frankiebaffa/arcana/pkg/diag"
)

// tagOpeners is the set of sigil characters that start a tag when followed
// by '{' or '('. Comment/Ignore are special-cased in parseTag since their
// bodies are scanned verbatim rather than recursively.
var tagOpeners = map[rune]bool{
	'#': true, '!': true, '+': true, '.': true, '&': true, '%': true,
	'@': true, '*': true, '$': true, '=': true, '/': true, '^': true,
	'~': true, '-': true,
}

// Parse parses src (named name, for diagnostics) into a top-level Block
// (delimiter-less: Delim is left as the zero value and carries no meaning).
func Parse(name, src string) (*Block, error) {
	ps := &parser{name: name, src: src}
	nodes, err := parseNodes(ps, 0)
	if err != nil {
		return nil, err
	}
	if !ps.eof() {
		return nil, ps.errHere(diag.UnknownSigil, fmt.Sprintf("unexpected character %q", ps.peek()))
	}
	return &Block{nodeBase: nodeBase{0, len(src)}, Nodes: nodes}, nil
}

// parseNodes scans Text/tags until EOF or, if closeDelim is nonzero, until
// an unescaped matching closer is found at nesting depth 0. It returns with
// the closer consumed (when closeDelim != 0) or at EOF.
func parseNodes(ps *parser, closeDelim Delim) ([]Node, error) {
	var nodes []Node
	textStart := ps.pos

	flush := func() {
		if ps.pos > textStart {
			nodes = append(nodes, &Text{nodeBase{textStart, ps.pos}, ps.src[textStart:ps.pos]})
		}
	}

	depth := 0
	var openRune, closeRune rune
	if closeDelim != 0 {
		openRune = rune(closeDelim)
		closeRune = matchingCloser(closeDelim)
	}

	for {
		if ps.eof() {
			if closeDelim != 0 {
				return nil, ps.errAt(textStart, ps.pos, diag.UnterminatedBlock,
					fmt.Sprintf("unterminated block, expected closing %q", closeRune))
			}
			flush()
			return nodes, nil
		}

		r := ps.peek()

		if closeDelim != 0 && r == closeRune {
			if depth == 0 {
				flush()
				ps.next()
				return nodes, nil
			}
			depth--
			ps.next()
			continue
		}
		if closeDelim != 0 && r == openRune {
			depth++
			ps.next()
			continue
		}

		if r == '\\' {
			end := ps.pos
			if nx := ps.peekByteAt(1); nx == '\n' || (nx == '\r' && ps.peekByteAt(2) == '\n') {
				// A continuation also drops the spaces and tabs before the backslash.
				for end > textStart && (ps.src[end-1] == ' ' || ps.src[end-1] == '\t') {
					end--
				}
			}
			if end > textStart {
				nodes = append(nodes, &Text{nodeBase{textStart, end}, ps.src[textStart:end]})
			}
			node, err := scanBackslash(ps)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
			textStart = ps.pos
			continue
		}

		if tagOpeners[r] && isOpenerNext(ps) {
			flush()
			node, err := parseTag(ps, r)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
			textStart = ps.pos
			continue
		}

		ps.next()
	}
}

func matchingCloser(d Delim) rune {
	if d == Braces {
		return '}'
	}
	return ')'
}

// isOpenerNext reports whether the rune after the current sigil rune is a
// recognized tag opener ('{' or '(').
func isOpenerNext(ps *parser) bool {
	b := ps.peekByteAt(1)
	return b == '{' || b == '('
}

// scanBackslash handles both escape forms: `\<newline>` (whitespace
// continuation, consuming the following whitespace run; parseNodes drops
// the spaces and tabs before the backslash) and `\<char>` (a one-rune Text
// literal, so the backslash itself never reaches output).
func scanBackslash(ps *parser) (Node, error) {
	start := ps.pos
	ps.next() // consume '\'
	if ps.eof() {
		return nil, ps.errAt(start, ps.pos, diag.BadEscape, "backslash at end of input")
	}
	r := ps.peek()
	if r == '\n' || (r == '\r' && ps.peekByteAt(1) == '\n') {
		if r == '\r' {
			ps.next()
		}
		ps.next() // consume the newline
		ps.skipWhitespace()
		return &WhitespaceContinuation{nodeBase{start, ps.pos}}, nil
	}
	// Plain escape: the char immediately following '\' is literal text.
	// Consume it here and report it as a one-rune Text node so the
	// backslash itself never appears in output.
	litStart := ps.pos
	ps.next()
	return &Text{nodeBase{start, ps.pos}, ps.src[litStart:ps.pos]}, nil
}
