package parse

import (
	"strings"
	"unicode/utf8"

	"github.com/frankiebaffa/arcana/pkg/diag"
)

// parser maintains the mutable scan state, following the teacher's
// src.elv.sh/pkg/parse parser struct: a source name, the full source text,
// and a byte offset. Errors are returned as they occur, not accumulated.
type parser struct {
	name string
	src  string
	pos  int
}

const eof rune = -1

func (ps *parser) eof() bool { return ps.pos >= len(ps.src) }

func (ps *parser) peek() rune {
	if ps.pos >= len(ps.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(ps.src[ps.pos:])
	return r
}

func (ps *parser) peekByteAt(off int) byte {
	if ps.pos+off >= len(ps.src) || ps.pos+off < 0 {
		return 0
	}
	return ps.src[ps.pos+off]
}

func (ps *parser) hasPrefix(s string) bool {
	return strings.HasPrefix(ps.src[ps.pos:], s)
}

func (ps *parser) next() rune {
	if ps.pos >= len(ps.src) {
		return eof
	}
	r, size := utf8.DecodeRuneInString(ps.src[ps.pos:])
	ps.pos += size
	return r
}

// skipInlineSpace consumes spaces and tabs (not newlines).
func (ps *parser) skipInlineSpace() {
	for {
		switch ps.peek() {
		case ' ', '\t':
			ps.next()
		default:
			return
		}
	}
}

// skipWhitespace consumes spaces, tabs, newlines and carriage returns.
func (ps *parser) skipWhitespace() {
	for {
		switch ps.peek() {
		case ' ', '\t', '\n', '\r':
			ps.next()
		default:
			return
		}
	}
}

func isIdentRune(r rune) bool {
	return r == '-' || r == '_' || (r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// isAliasRune additionally allows '.' and '$' so dotted paths and reserved
// `$content`/`$loop`/`$root` aliases scan as one token.
func isAliasRune(r rune) bool {
	return isIdentRune(r) || r == '.' || r == '$'
}

// scanWhile consumes and returns a run of runes satisfying pred.
func (ps *parser) scanWhile(pred func(rune) bool) string {
	start := ps.pos
	for pred(ps.peek()) {
		ps.next()
	}
	return ps.src[start:ps.pos]
}

// errAt builds a *diag.Error anchored at [from, to) in the current source.
func (ps *parser) errAt(from, to int, kind diag.Kind, message string) *diag.Error {
	return diag.NewError(kind, message, ps.name, ps.src, diag.Ranging{From: from, To: to})
}

func (ps *parser) errHere(kind diag.Kind, message string) *diag.Error {
	to := ps.pos
	if to < len(ps.src) {
		to++
	}
	return ps.errAt(ps.pos, to, kind, message)
}
