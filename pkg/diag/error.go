// Package diag provides source-position tracking and error rendering shared
// by the parser and evaluator: a byte-offset Ranging, a Context that binds a
// Ranging to a named source, and an Error that carries a closed-set Kind plus
// a human message.
package diag

import "fmt"

// Kind is one of the closed set of error kinds a compile can fail with.
type Kind string

// Parse error kinds.
const (
	UnterminatedTag   Kind = "UnterminatedTag"
	UnterminatedBlock Kind = "UnterminatedBlock"
	UnknownSigil      Kind = "UnknownSigil"
	BadModifier       Kind = "BadModifier"
	BadCondition      Kind = "BadCondition"
	BadEscape         Kind = "BadEscape"
)

// Resolve error kinds.
const (
	AliasNotFound Kind = "AliasNotFound"
	TypeMismatch  Kind = "TypeMismatch"
	NotAnArray    Kind = "NotAnArray"
	NotAnObject   Kind = "NotAnObject"
)

// IO error kinds.
const (
	ReadFailed   Kind = "ReadFailed"
	WriteFailed  Kind = "WriteFailed"
	NotFound     Kind = "NotFound"
	NotADirectory Kind = "NotADirectory"
)

// Semantic error kinds.
const (
	CycleDetected          Kind = "CycleDetected"
	RecursionLimitExceeded Kind = "RecursionLimitExceeded"
	InvalidJSON            Kind = "InvalidJson"
	InvalidPath            Kind = "InvalidPath"
	Cancelled              Kind = "Cancelled"
)

// Error is a fatal compile error carrying its kind, a one-line message, and
// the source context it occurred at.
type Error struct {
	Kind    Kind
	Message string
	Context Context
}

// NewError builds an *Error for r within the named source.
func NewError(kind Kind, message string, name, source string, r Ranger) *Error {
	return &Error{Kind: kind, Message: message, Context: NewContext(name, source, r)}
}

// Error implements error with a single-line rendering:
// "<kind>: <file>:<line>:<col>: <message>".
func (e *Error) Error() string {
	line, col := e.Context.LineCol()
	return fmt.Sprintf("%s: %s:%d:%d: %s", e.Kind, e.Context.Name, line, col, e.Message)
}

// Range implements Ranger.
func (e *Error) Range() Ranging { return e.Context.Range() }

// Show renders the two-part diagnostic the CLI prints: a header with the
// kind and message, followed by an indented source excerpt.
func (e *Error) Show(indent string) string {
	header := fmt.Sprintf("%s: %s\n", e.Kind, e.Message)
	return header + indent + e.Context.ShowCompact(indent+"  ")
}
