package parse

import (
	"fmt"
	"strings"

	"github.com/frankiebaffa/arcana/pkg/diag"
)

// scanAlias reads a dotted alias token (identifier/digit/-/_/. plus leading
// `$` for the reserved names), per spec.md §3.
func (ps *parser) scanAlias() (string, error) {
	start := ps.pos
	ps.scanWhile(isAliasRune)
	full := ps.src[start:ps.pos]
	if full == "" {
		return "", ps.errHere(diag.BadCondition, "expected an alias")
	}
	return full, nil
}

// scanIdent reads a bareword modifier/identifier name (letters/digits/-/_,
// no dots).
func (ps *parser) scanIdent() string {
	return ps.scanWhile(isIdentRune)
}

// scanQuoted reads a double-quoted string with `\"` escapes, consuming both
// quote characters, and returns the unquoted content.
func (ps *parser) scanQuoted() (string, error) {
	start := ps.pos
	if ps.peek() != '"' {
		return "", ps.errHere(diag.BadModifier, "expected a quoted string")
	}
	ps.next()
	var buf strings.Builder
	for {
		if ps.eof() {
			return "", ps.errAt(start, ps.pos, diag.UnterminatedTag, "unterminated quoted string")
		}
		r := ps.next()
		if r == '"' {
			return buf.String(), nil
		}
		if r == '\\' {
			if ps.eof() {
				return "", ps.errAt(start, ps.pos, diag.BadEscape, "unterminated escape in quoted string")
			}
			buf.WriteRune(ps.next())
			continue
		}
		buf.WriteRune(r)
	}
}

// scanModifierArg reads a single positional modifier argument: a quoted
// string, or a bare run of identifier/digit characters.
func (ps *parser) scanModifierArg() (string, error) {
	if ps.peek() == '"' {
		return ps.scanQuoted()
	}
	tok := ps.scanWhile(isIdentRune)
	if tok == "" {
		return "", ps.errHere(diag.BadModifier, "expected a modifier argument")
	}
	return tok, nil
}

// scanModifiers parses a `|`-separated modifier pipeline: zero or more
// `|name arg...` stages, per spec.md §4.C/§4.D. It stops at the first
// character that is not `|` after skipping inline whitespace.
func (ps *parser) scanModifiers() ([]Modifier, error) {
	var mods []Modifier
	for {
		ps.skipInlineSpace()
		if ps.peek() != '|' {
			return mods, nil
		}
		ps.next()
		ps.skipInlineSpace()
		name := ps.scanIdent()
		if name == "" {
			return nil, ps.errHere(diag.BadModifier, "expected a modifier name after '|'")
		}
		mod := Modifier{Name: name}
		for {
			ps.skipInlineSpace()
			r := ps.peek()
			if r == '|' || r == '}' || r == ')' || r == eof {
				break
			}
			arg, err := ps.scanModifierArg()
			if err != nil {
				return nil, err
			}
			mod.Args = append(mod.Args, arg)
		}
		mods = append(mods, mod)
	}
}

// scanPathExpr parses a pathlike: a quoted literal path, or an alias that
// resolves to a path string at eval time.
func (ps *parser) scanPathExpr() (PathExpr, error) {
	if ps.peek() == '"' {
		s, err := ps.scanQuoted()
		if err != nil {
			return PathExpr{}, err
		}
		return PathExpr{Literal: s}, nil
	}
	alias, err := ps.scanAlias()
	if err != nil {
		return PathExpr{}, err
	}
	return PathExpr{Alias: alias, IsAlias: true}, nil
}

// expectByte consumes r if it is next, erroring with kind/message otherwise.
func (ps *parser) expectByte(r byte, kind diag.Kind, message string) error {
	if ps.eof() || ps.src[ps.pos] != r {
		return ps.errHere(kind, message)
	}
	ps.pos++
	return nil
}

// chainOrOpener skips up to the next block opener, honoring the Chain
// syntax: a '-' placed before the opener (after skipping inline whitespace)
// means "skip all whitespace, including newlines, until the opener",
// whereas without it only inline whitespace is skipped. It returns the
// Delim the caller should open with.
func (ps *parser) chainOrOpener(tagName string, start int) (Delim, error) {
	ps.skipInlineSpace()
	if ps.peek() == '-' {
		ps.next()
		ps.skipWhitespace()
	}
	switch ps.peek() {
	case '{':
		ps.next()
		return Braces, nil
	case '(':
		ps.next()
		return Parens, nil
	default:
		return 0, ps.errAt(start, ps.pos, diag.UnterminatedTag,
			fmt.Sprintf("%s: expected a block opener '{' or '('", tagName))
	}
}
