package deploy_test

import (
	"encoding/json"
	"testing"

	"github.com/frankiebaffa/arcana/pkg/deploy"
)

func TestUnmarshalDocumentDispatchesByKind(t *testing.T) {
	src := `{"actions":[
		{"kind":"compile-file","template":"t.tmpl","context":"c.json","output":"out.html"},
		{"kind":"copy-file","src":"a","dst":"b"},
		{"kind":"delete-file","path":"stale.txt"}
	]}`

	var doc deploy.Document
	if err := json.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Actions) != 3 {
		t.Fatalf("got %d actions, want 3", len(doc.Actions))
	}

	a := doc.Actions[0]
	if a.Kind != deploy.KindCompileFile || a.CompileFile == nil || a.CompileFile.Template != "t.tmpl" {
		t.Errorf("action 0 = %#v", a)
	}
	b := doc.Actions[1]
	if b.Kind != deploy.KindCopyFile || b.CopyFile == nil || b.CopyFile.Dst != "b" {
		t.Errorf("action 1 = %#v", b)
	}
	c := doc.Actions[2]
	if c.Kind != deploy.KindDeleteFile || c.DeleteFile == nil || c.DeleteFile.Path != "stale.txt" {
		t.Errorf("action 2 = %#v", c)
	}
}

func TestUnmarshalCompileAgainstTargets(t *testing.T) {
	src := `{"kind":"compile-against","template":"t.tmpl","context":"c.json","output-dir":"out",
		"target":[{"alias":"posts","for-each":"posts","filename-extractor":"slug","alias-to":"post"}]}`

	var a deploy.Action
	if err := json.Unmarshal([]byte(src), &a); err != nil {
		t.Fatal(err)
	}
	if a.CompileAgainst == nil || len(a.CompileAgainst.Targets) != 1 {
		t.Fatalf("got %#v", a.CompileAgainst)
	}
	if got := a.CompileAgainst.Targets[0].AliasTo; got != "post" {
		t.Errorf("AliasTo = %q, want %q", got, "post")
	}
}

func TestUnmarshalUnknownKindErrors(t *testing.T) {
	var a deploy.Action
	err := json.Unmarshal([]byte(`{"kind":"nonexistent"}`), &a)
	if err == nil {
		t.Fatal("expected an error for an unknown action kind")
	}
}
