package lsp_test

import (
	"testing"

	golsp "github.com/sourcegraph/go-lsp"

	"github.com/frankiebaffa/arcana/pkg/lsp"
)

func TestDiagnoseEmptyOnValidSource(t *testing.T) {
	diags := lsp.Diagnose(golsp.DocumentURI("file:///a.tmpl"), "Hello ${n}!")
	if len(diags) != 0 {
		t.Fatalf("got %d diagnostics for valid source, want 0: %#v", len(diags), diags)
	}
}

func TestDiagnoseReportsParseError(t *testing.T) {
	diags := lsp.Diagnose(golsp.DocumentURI("file:///a.tmpl"), "%{t exists}{yes}")
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1 for an unterminated if-tag: %#v", len(diags), diags)
	}
	if diags[0].Severity != golsp.Error || diags[0].Source != "parse" {
		t.Errorf("got %#v", diags[0])
	}
	if diags[0].Range.Start.Line != 0 {
		t.Errorf("got Range.Start.Line = %d, want 0 for a single-line source", diags[0].Range.Start.Line)
	}
}
