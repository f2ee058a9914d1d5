package diag

import (
	"bytes"
	"fmt"
	"strings"
)

// Context is a range of text within a named source, used to point at the
// offending span of a parse or evaluation error.
type Context struct {
	Name   string
	Source string
	Ranging

	info *rangeShowInfo
}

// NewContext builds a Context for r within the named source.
func NewContext(name, source string, r Ranger) Context {
	return Context{Name: name, Source: source, Ranging: r.Range()}
}

type rangeShowInfo struct {
	Head      string
	Culprit   string
	Tail      string
	BeginLine int
	EndLine   int
}

const culpritPlaceholder = "^"

func (c *Context) showInfo() *rangeShowInfo {
	if c.info != nil {
		return c.info
	}
	from, to := c.From, c.To
	if from < 0 {
		from = 0
	}
	if to > len(c.Source) {
		to = len(c.Source)
	}
	if from > to {
		from = to
	}

	before := c.Source[:from]
	culprit := c.Source[from:to]
	after := c.Source[to:]

	head := lastLine(before)
	beginLine := strings.Count(before, "\n") + 1

	var tail string
	if strings.HasSuffix(culprit, "\n") {
		culprit = culprit[:len(culprit)-1]
	} else {
		tail = firstLine(after)
	}
	endLine := beginLine + strings.Count(culprit, "\n")

	c.info = &rangeShowInfo{head, culprit, tail, beginLine, endLine}
	return c.info
}

// LineCol returns the 1-based line and column of the start of the range.
func (c *Context) LineCol() (line, col int) {
	before := c.Source[:clamp(c.From, 0, len(c.Source))]
	line = strings.Count(before, "\n") + 1
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		col = len(before) - i
	} else {
		col = len(before) + 1
	}
	return
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// lineRange renders "line N", or "line N-M" for multi-line culprits.
func (c *Context) lineRange() string {
	info := c.showInfo()
	if info.BeginLine == info.EndLine {
		return fmt.Sprintf("line %d", info.BeginLine)
	}
	return fmt.Sprintf("line %d-%d", info.BeginLine, info.EndLine)
}

// Show renders a multi-line description of the context: a header naming the
// source and line range, followed by an indented excerpt of the line(s)
// holding the culprit text. The culprit itself is not marked; an empty
// culprit is shown as "^".
func (c *Context) Show(indent string) string {
	line, col := c.LineCol()
	header := fmt.Sprintf("%s:%d:%d: %s", c.Name, line, col, c.lineRange())
	return header + "\n" + indent + c.relevantSource(indent)
}

// ShowCompact renders the same information as Show but on fewer lines,
// suitable for single-line terminal output.
func (c *Context) ShowCompact(indent string) string {
	line, col := c.LineCol()
	desc := fmt.Sprintf("%s:%d:%d ", c.Name, line, col)
	return desc + c.relevantSource(indent+strings.Repeat(" ", len(desc)))
}

func (c *Context) relevantSource(indent string) string {
	info := c.showInfo()
	var buf bytes.Buffer
	buf.WriteString(info.Head)

	culprit := info.Culprit
	if culprit == "" {
		culprit = culpritPlaceholder
	}
	for i, line := range strings.Split(culprit, "\n") {
		if i > 0 {
			buf.WriteByte('\n')
			buf.WriteString(indent)
		}
		buf.WriteString(line)
	}
	buf.WriteString(info.Tail)
	return buf.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func lastLine(s string) string {
	return s[strings.LastIndexByte(s, '\n')+1:]
}
