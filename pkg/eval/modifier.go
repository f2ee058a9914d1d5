package eval

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/frankiebaffa/arcana/pkg/diag"
	"github.com/frankiebaffa/arcana/pkg/parse"
	"github.com/frankiebaffa/arcana/pkg/value"
)

// applyContentModifiers folds Include-Content's modifier pipeline
// left-to-right over v, per spec.md §4.D. It returns the final value and
// whether the `json` modifier was applied (the caller needs this to decide
// between raw-string and always-quoted rendering).
func (e *Evaluator) applyContentModifiers(n parse.Node, v value.Value, mods []parse.Modifier) (value.Value, bool, error) {
	sawPath := false
	jsonMod := false

	for _, m := range mods {
		switch m.Name {
		case "lower":
			v = value.String(strings.ToLower(v.String()))
		case "upper":
			v = value.String(strings.ToUpper(v.String()))
		case "trim":
			v = value.String(strings.TrimSpace(v.String()))
		case "replace":
			if len(m.Args) != 2 {
				return value.Value{}, false, e.errAt(n, diag.BadModifier, "replace requires two arguments")
			}
			v = value.String(strings.ReplaceAll(v.String(), m.Args[0], m.Args[1]))
		case "split":
			if len(m.Args) != 2 {
				return value.Value{}, false, e.errAt(n, diag.BadModifier, "split requires two arguments")
			}
			into, idx, err := parseSplitArgs(m.Args[0], m.Args[1])
			if err != nil {
				return value.Value{}, false, e.errAt(n, diag.BadModifier, err.Error())
			}
			chunk, err := splitChunk(v.String(), into, idx)
			if err != nil {
				return value.Value{}, false, e.errAt(n, diag.BadModifier, err.Error())
			}
			v = value.String(chunk)
		case "path":
			sawPath = true
		case "filename":
			if !sawPath {
				return value.Value{}, false, e.errAt(n, diag.BadModifier, "filename requires a preceding path modifier")
			}
			v = value.String(filepath.Base(v.String()))
		case "json":
			jsonMod = true
		default:
			return value.Value{}, false, e.errAt(n, diag.BadModifier, fmt.Sprintf("unknown include-content modifier %q", m.Name))
		}
	}
	return v, jsonMod, nil
}

func parseSplitArgs(intoArg, idxArg string) (into, idx int, err error) {
	if _, err = fmt.Sscanf(intoArg, "%d", &into); err != nil {
		return 0, 0, fmt.Errorf("split: invalid chunk count %q", intoArg)
	}
	if _, err = fmt.Sscanf(idxArg, "%d", &idx); err != nil {
		return 0, 0, fmt.Errorf("split: invalid index %q", idxArg)
	}
	return into, idx, nil
}

// splitChunk divides s (by byte length) into `into` roughly-equal chunks —
// chunk size l/into, with the final chunk absorbing any remainder — and
// returns the chunk at idx. idx may be negative to count from the end.
// Grounded on the character-count chunking the corpus's split modifier
// actually performs (see DESIGN.md): the whitespace-tokenizing reading of
// this modifier's name does not match its worked example.
func splitChunk(s string, into, idx int) (string, error) {
	if into < 2 {
		return "", fmt.Errorf("split: chunk count must be >= 2, got %d", into)
	}
	if idx < 0 {
		idx = into + idx
	}
	if idx < 0 || idx >= into {
		return "", fmt.Errorf("split: index out of range for %d chunks", into)
	}
	l := len(s)
	if into > l {
		return "", fmt.Errorf("split: cannot split a %d-byte value into %d chunks", l, into)
	}
	chunk := l / into
	start := idx * chunk
	end := start + chunk
	if idx == into-1 {
		end = l
	}
	if start > l {
		start = l
	}
	if end > l {
		end = l
	}
	return s[start:end], nil
}
