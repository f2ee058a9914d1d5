package eval

import (
	"fmt"

	"github.com/frankiebaffa/arcana/pkg/diag"
	"github.com/frankiebaffa/arcana/pkg/parse"
	"github.com/frankiebaffa/arcana/pkg/value"
)

// evalCondition evaluates a left-to-right, equal-precedence chain of terms
// with strict short-circuiting, per spec.md §4.C: `&&` and `||` are not
// given differing precedence, so "a || b && c" evaluates as "(a || b) && c".
func (e *Evaluator) evalCondition(n parse.Node, c parse.Condition) (bool, error) {
	result, err := e.evalCondTerm(n, c.Terms[0])
	if err != nil {
		return false, err
	}
	for i, join := range c.Joins {
		if join == parse.JoinAnd && !result {
			result = false
			continue
		}
		if join == parse.JoinOr && result {
			continue
		}
		next, err := e.evalCondTerm(n, c.Terms[i+1])
		if err != nil {
			return false, err
		}
		if join == parse.JoinAnd {
			result = result && next
		} else {
			result = result || next
		}
	}
	return result, nil
}

// evalCondTerm evaluates one term of a Condition. Alias-not-found is the
// single recoverable error in the language: under `exists` and the implicit
// truthy test it resolves to false, under `empty` to true (negation then
// applies), rather than erroring, per spec.md §7. A missing alias on either
// side of a comparison operator is an AliasNotFound error.
func (e *Evaluator) evalCondTerm(n parse.Node, t parse.CondTerm) (bool, error) {
	result, err := e.evalCondTermRaw(n, t)
	if err != nil {
		return false, err
	}
	if t.Negate {
		return !result, nil
	}
	return result, nil
}

func (e *Evaluator) evalCondTermRaw(n parse.Node, t parse.CondTerm) (bool, error) {
	lhs, ok := e.Stack.Lookup(value.ParsePath(t.Alias))

	if t.Op != parse.OpNone {
		if !ok {
			return false, e.errAt(n, diag.AliasNotFound, fmt.Sprintf("alias %q not found", t.Alias))
		}
		rhs, rok := e.Stack.Lookup(value.ParsePath(t.RHSAlias))
		if !rok {
			return false, e.errAt(n, diag.AliasNotFound, fmt.Sprintf("alias %q not found", t.RHSAlias))
		}
		return e.compareOp(n, t.Op, lhs, rhs)
	}

	switch t.Predicate {
	case parse.PredExists:
		return ok, nil
	case parse.PredEmpty:
		if !ok {
			return true, nil
		}
		return lhs.Empty(), nil
	default: // PredNone: implicit truthy
		if !ok {
			return false, nil
		}
		return lhs.Truthy(), nil
	}
}

func (e *Evaluator) compareOp(n parse.Node, op parse.CondOp, a, b value.Value) (bool, error) {
	if op == parse.OpEq {
		return a.EqualTo(b), nil
	}
	if op == parse.OpNe {
		return !a.EqualTo(b), nil
	}

	ord := value.Compare(a, b)
	if ord == value.Uncomparable {
		return false, e.errAt(n, diag.TypeMismatch, value.TypeMismatchError(string(op), a, b).Error())
	}
	switch op {
	case parse.OpGt:
		return ord == value.Greater, nil
	case parse.OpGe:
		return ord == value.Greater || ord == value.Equal, nil
	case parse.OpLt:
		return ord == value.Less, nil
	case parse.OpLe:
		return ord == value.Less || ord == value.Equal, nil
	default:
		return false, fmt.Errorf("eval: unknown condition operator %q", op)
	}
}
