package diag_test

import (
	"strings"
	"testing"

	"github.com/frankiebaffa/arcana/pkg/diag"
)

func TestErrorSingleLineRendering(t *testing.T) {
	src := "line one\nline two bad\nline three"
	from := strings.Index(src, "bad")
	err := diag.NewError(diag.AliasNotFound, `alias "x" not found`, "<test>", src, diag.PointRanging(from))

	got := err.Error()
	want := "AliasNotFound: <test>:2:10: " + `alias "x" not found`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLineColMultiline(t *testing.T) {
	src := "abc\ndef\nghi"
	from := strings.Index(src, "ghi")
	ctx := diag.NewContext("<test>", src, diag.PointRanging(from))
	line, col := ctx.LineCol()
	if line != 3 || col != 1 {
		t.Errorf("LineCol() = (%d,%d), want (3,1)", line, col)
	}
}

func TestShowIncludesHeaderAndMessage(t *testing.T) {
	src := "x = 1"
	err := diag.NewError(diag.BadModifier, "unknown modifier", "<t>", src, diag.PointRanging(0))
	out := err.Show("")
	if !strings.Contains(out, "BadModifier") || !strings.Contains(out, "unknown modifier") {
		t.Errorf("Show() = %q, missing kind or message", out)
	}
}

func TestMixedRangingSpansBothSides(t *testing.T) {
	a := diag.Ranging{From: 2, To: 4}
	b := diag.Ranging{From: 7, To: 9}
	m := diag.MixedRanging(a, b)
	if m.From != 2 || m.To != 9 {
		t.Errorf("MixedRanging() = %+v, want {2 9}", m)
	}
}
