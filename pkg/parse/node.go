// Package parse implements Arcana's tokenizer/parser: it recognizes tag
// syntax embedded in free-form text and produces a tree of Nodes, resolving
// block bodies into already-parsed Node sequences rather than raw text, per
// spec.md §9 ("Re-parsing per iteration is neither necessary nor correct").
//
// The parser's low-level shape — a mutable scan position over a source
// string, rune-at-a-time peek/next, and Nodes that record their own
// source Ranging — is grounded on the teacher's pkg/parse
// (src.elv.sh/pkg/parse): a hand-written recursive-descent parser with the
// same parser-state-struct idiom, generalized here from Elvish's shell
// grammar to Arcana's tag grammar.
package parse

import "github.com/frankiebaffa/arcana/pkg/diag"

// Node is any element of a parsed template: literal text or a tag. Every
// Node knows the byte range of source text it was parsed from.
type Node interface {
	Range() diag.Ranging
}

type nodeBase struct {
	From, To int
}

func (n nodeBase) Range() diag.Ranging { return diag.Ranging{From: n.From, To: n.To} }

// Delim identifies which bracket pair a Block was captured with. Only
// Set-Item's value blocks give it semantic meaning (§6: Braces is string
// value, Parens is JSON value); every other block-bearing tag accepts
// either form with identical meaning.
type Delim byte

const (
	Braces Delim = '{'
	Parens Delim = '('
)

// Block is a sequence of Nodes captured between a matching delimiter pair.
type Block struct {
	nodeBase
	Nodes []Node
	Delim Delim
}

// Modifier is one stage of a `|`-separated modifier pipeline: a name plus
// its positional arguments (already unquoted/unescaped).
type Modifier struct {
	Name string
	Args []string
}

// PathExpr is a "pathlike": either a literal quoted path, or an alias whose
// resolved value supplies the path string at eval time.
type PathExpr struct {
	Literal string
	Alias   string
	IsAlias bool
}

// Text is literal output.
type Text struct {
	nodeBase
	Value string
}

// WhitespaceContinuation is a backslash-at-EOL: it consumes the following
// run of whitespace and emits nothing.
type WhitespaceContinuation struct {
	nodeBase
}

// Comment is a `#{...}#` tag: parsed but emits nothing.
type Comment struct {
	nodeBase
}

// Ignore is a `!{...}!` tag: parsed but emits nothing.
type Ignore struct {
	nodeBase
}

// ExtendTemplate is a `+{path}` tag.
type ExtendTemplate struct {
	nodeBase
	Path PathExpr
}

// SourceFile is a `.{path}` or `.{path|as alias}` tag.
type SourceFile struct {
	nodeBase
	Path PathExpr
	As   string // "" if no `as` modifier was given
}

// IncludeFile is a `&{path}{setup?}` tag.
type IncludeFile struct {
	nodeBase
	Path      PathExpr
	Modifiers []Modifier
	Setup     *Block // nil if no setup block was given
}

// CondOp is a relational operator in the condition grammar.
type CondOp string

const (
	OpNone CondOp = ""
	OpEq   CondOp = "=="
	OpNe   CondOp = "!="
	OpGt   CondOp = ">"
	OpGe   CondOp = ">="
	OpLt   CondOp = "<"
	OpLe   CondOp = "<="
)

// CondPredicate is a unary predicate in the condition grammar.
type CondPredicate string

const (
	PredNone   CondPredicate = "" // implicit truthy
	PredExists CondPredicate = "exists"
	PredEmpty  CondPredicate = "empty"
)

// CondTerm is one term of a condition: `['!'] alias [op alias]?` or
// `['!'] alias predicate`.
type CondTerm struct {
	Negate    bool
	Alias     string
	Op        CondOp
	RHSAlias  string // set iff Op != OpNone
	Predicate CondPredicate
}

// CondJoin is the boolean operator joining two condition terms.
type CondJoin string

const (
	JoinAnd CondJoin = "&&"
	JoinOr  CondJoin = "||"
)

// Condition is a left-to-right, equal-precedence chain of terms, per
// spec.md §4.C.
type Condition struct {
	Terms []CondTerm
	Joins []CondJoin // len(Joins) == len(Terms)-1
}

// If is a `%{cond}then else` tag.
type If struct {
	nodeBase
	Cond Condition
	Then *Block
	Else *Block
}

// ForEachItem is an `@{var in source}body empty` tag.
type ForEachItem struct {
	nodeBase
	Var       string
	Source    string
	Modifiers []Modifier
	Body      *Block
	Empty     *Block
}

// ForEachFile is a `*{var in path}body empty` tag.
type ForEachFile struct {
	nodeBase
	Var       string
	Path      PathExpr
	Modifiers []Modifier
	Body      *Block
	Empty     *Block
}

// IncludeContent is a `${alias|modifiers}` tag.
type IncludeContent struct {
	nodeBase
	Alias     string
	Modifiers []Modifier
}

// SetItem is a `={alias}{body}...` or `={alias|mods}(body)...` tag.
type SetItem struct {
	nodeBase
	Alias     string // "" for the empty-alias root-merge form
	Modifiers []Modifier
	Blocks    []*Block
}

// Siphon is a `={dst}<{src}` tag.
type Siphon struct {
	nodeBase
	Dst string
	Src string
}

// Unset is a `/{alias}` tag.
type Unset struct {
	nodeBase
	Alias     string
	Modifiers []Modifier
}

// Write is a `^{path}(body)` tag.
type Write struct {
	nodeBase
	Path PathExpr
	Body *Block
}

// CopyPath is a `~{src}{dst}` tag.
type CopyPath struct {
	nodeBase
	Src PathExpr
	Dst PathExpr
}

// DeletePath is a `-{path}` tag.
type DeletePath struct {
	nodeBase
	Path PathExpr
}
