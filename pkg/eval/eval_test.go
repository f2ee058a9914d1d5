package eval_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frankiebaffa/arcana/pkg/diag"
	"github.com/frankiebaffa/arcana/pkg/eval"
	"github.com/frankiebaffa/arcana/pkg/value"
)

func mustParseJSON(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.ParseJSON([]byte(s))
	if err != nil {
		t.Fatalf("ParseJSON(%q): %v", s, err)
	}
	return v
}

func evalStr(t *testing.T, root value.Value, src string) string {
	t.Helper()
	e := eval.New(root)
	out, err := e.EvalString(context.Background(), "<test>", src)
	if err != nil {
		t.Fatalf("EvalString(%q): %v", src, err)
	}
	return out
}

// Scenario 1: basic include-content.
func TestScenarioBasicIncludeContent(t *testing.T) {
	got := evalStr(t, mustParseJSON(t, `{"n":"Jane"}`), "Hello ${n}!")
	if want := "Hello Jane!"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Scenario 2: source file + alias field access.
func TestScenarioSourceFileAndAlias(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "c.json"), []byte(`{"name":"Jane","age":42}`), 0o644); err != nil {
		t.Fatal(err)
	}
	tmpl := filepath.Join(dir, "t.tmpl")
	ctxPath := filepath.Join(dir, "c.json")
	src := `.{"` + ctxPath + `"|as p}${p.name}: ${p.age}`
	if err := os.WriteFile(tmpl, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	e := eval.New(value.EmptyObject())
	out, err := e.EvalFile(context.Background(), tmpl)
	if err != nil {
		t.Fatalf("EvalFile: %v", err)
	}
	if want := "Jane: 42"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

// Scenario 3: if/else on exists.
func TestScenarioIfElseExists(t *testing.T) {
	tmpl := "%{x exists}{Y}{N}"
	if got := evalStr(t, value.EmptyObject(), tmpl); got != "N" {
		t.Errorf("got %q, want %q", got, "N")
	}
	if got := evalStr(t, mustParseJSON(t, `{"x":1}`), tmpl); got != "Y" {
		t.Errorf("got %q, want %q", got, "Y")
	}
}

// Scenario 4: for-each with loop context.
func TestScenarioForEachLoopContext(t *testing.T) {
	src := `@{i in xs}{${$loop.position}:${i};}{none}`
	got := evalStr(t, mustParseJSON(t, `{"xs":["a","b","c"]}`), src)
	if want := "1:a;2:b;3:c;"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestScenarioForEachEmpty(t *testing.T) {
	src := `@{i in xs}{${$loop.position}:${i};}{none}`
	got := evalStr(t, mustParseJSON(t, `{"xs":[]}`), src)
	if want := "none"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Scenario 5: siphon into $root, visible from the outermost scope.
func TestScenarioSiphonRoot(t *testing.T) {
	src := `={$root}<{album}${name}`
	got := evalStr(t, mustParseJSON(t, `{"album":{"name":"A"}}`), src)
	if want := "A"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Scenario 6: set-item with the JSON block dialect.
func TestScenarioSetItemJSONDialect(t *testing.T) {
	src := `={}({"k":"v"})${k}`
	got := evalStr(t, value.EmptyObject(), src)
	if want := "v"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Scenario 7: split modifier is character-chunked, not whitespace-tokenized.
func TestScenarioSplitModifier(t *testing.T) {
	src := `${n|split 2 1}`
	got := evalStr(t, mustParseJSON(t, `{"n":"Jane Doe"}`), src)
	if want := " Doe"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// Scenario 8: Chain syntax collapses the newline+indentation between blocks.
func TestScenarioChainCollapsesWhitespace(t *testing.T) {
	src := "%{t exists}-\n  {yes}-\n  {no}"
	got := evalStr(t, mustParseJSON(t, `{"t":1}`), src)
	if want := "yes"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoopCounterInvariants(t *testing.T) {
	src := `@{i in xs}{${$loop.index}/${$loop.length}/${$loop.max} ` +
		`%{$loop.first exists}{F}{-}%{$loop.last exists}{L}{-};}{empty}`
	got := evalStr(t, mustParseJSON(t, `{"xs":["a","b","c"]}`), src)
	want := "0/3/2 F-;1/3/2 --;2/3/2 -L;"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoopCounterEmptyUsesEmptyBlock(t *testing.T) {
	src := `@{i in xs}{${i}}{empty}`
	got := evalStr(t, mustParseJSON(t, `{"xs":[]}`), src)
	if got != "empty" {
		t.Errorf("got %q, want %q", got, "empty")
	}
}

func TestSelfIncludeIsACycle(t *testing.T) {
	dir := t.TempDir()
	self := filepath.Join(dir, "self.tmpl")
	if err := os.WriteFile(self, []byte(`&{"`+self+`"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	e := eval.New(value.EmptyObject())
	_, err := e.EvalFile(context.Background(), self)
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.CycleDetected {
		t.Fatalf("got %v, want a CycleDetected *diag.Error", err)
	}
}

func TestRecursionLimitExceeded(t *testing.T) {
	dir := t.TempDir()
	const chainLen = 80 // > eval.DefaultMaxDepth, each file distinct so no cycle trips first

	paths := make([]string, chainLen)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("f%d.tmpl", i))
	}
	for i, p := range paths {
		body := "leaf"
		if i+1 < len(paths) {
			body = `&{"` + paths[i+1] + `"}`
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	e := eval.New(value.EmptyObject())
	_, err := e.EvalFile(context.Background(), paths[0])
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.RecursionLimitExceeded {
		t.Fatalf("got %v, want a RecursionLimitExceeded *diag.Error", err)
	}
}

func TestAliasNotFoundIsRecoverableInCondition(t *testing.T) {
	src := `%{missing exists}{Y}{N}`
	got := evalStr(t, value.EmptyObject(), src)
	if got != "N" {
		t.Errorf("got %q, want %q", got, "N")
	}
}

func TestWriteContentCreatesFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "sub", "out.txt")
	src := `^{"` + out + `"}{hello ${n}}`
	evalStr(t, mustParseJSON(t, `{"n":"world"}`), src)

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Errorf("got %q, want %q", got, "hello world")
	}
}

func TestComparisonOperatorGreaterThan(t *testing.T) {
	src := `%{a > b}{Y}{N}`
	if got := evalStr(t, mustParseJSON(t, `{"a":5,"b":3}`), src); got != "Y" {
		t.Errorf("got %q, want %q", got, "Y")
	}
	if got := evalStr(t, mustParseJSON(t, `{"a":1,"b":3}`), src); got != "N" {
		t.Errorf("got %q, want %q", got, "N")
	}
}

// A missing LHS/RHS alias for a comparison operator is NOT covered by the
// exists/implicit-truthy alias-not-found carve-out (spec.md §7): it must
// raise AliasNotFound rather than recover to false.
func TestAliasNotFoundIsAnErrorInComparison(t *testing.T) {
	e := eval.New(mustParseJSON(t, `{"b":3}`))
	_, err := e.EvalString(context.Background(), "<test>", `%{missing > b}{Y}{N}`)
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.AliasNotFound {
		t.Fatalf("got %v, want an AliasNotFound *diag.Error", err)
	}
}

func TestAliasNotFoundIsAnErrorInComparisonRHS(t *testing.T) {
	e := eval.New(mustParseJSON(t, `{"a":3}`))
	_, err := e.EvalString(context.Background(), "<test>", `%{a > missing}{Y}{N}`)
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.AliasNotFound {
		t.Fatalf("got %v, want an AliasNotFound *diag.Error", err)
	}
}

func TestScenarioForEachFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	src := `*{f in "` + dir + `"}{${f|path|filename};}{empty}`
	got := evalStr(t, value.EmptyObject(), src)
	if !strings.Contains(got, "a.txt;") || !strings.Contains(got, "b.txt;") {
		t.Errorf("got %q, want both a.txt and b.txt, directories excluded by default", got)
	}
	if strings.Contains(got, "sub") {
		t.Errorf("got %q, for-each-file without `paths` must exclude directories", got)
	}
}

func TestScenarioForEachFileEmptyDir(t *testing.T) {
	dir := t.TempDir()
	src := `*{f in "` + dir + `"}{${f}}{empty}`
	if got := evalStr(t, value.EmptyObject(), src); got != "empty" {
		t.Errorf("got %q, want %q", got, "empty")
	}
}

func TestScenarioExtendTemplate(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.tmpl")
	if err := os.WriteFile(base, []byte("Base[${$content}]"), 0o644); err != nil {
		t.Fatal(err)
	}
	child := filepath.Join(dir, "child.tmpl")
	if err := os.WriteFile(child, []byte(`+{"`+base+`"}Child body`), 0o644); err != nil {
		t.Fatal(err)
	}

	e := eval.New(value.EmptyObject())
	out, err := e.EvalFile(context.Background(), child)
	if err != nil {
		t.Fatalf("EvalFile: %v", err)
	}
	if want := "Base[Child body]"; out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestScenarioIncludeFileSetupBindsContent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.tmpl")
	if err := os.WriteFile(target, []byte("Content: ${$content}"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := `&{"` + target + `"}{hello}`
	got := evalStr(t, value.EmptyObject(), src)
	if want := "Content: hello"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestScenarioIncludeFileRawSkipsEvaluation(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.tmpl")
	if err := os.WriteFile(target, []byte(`${nonexistent}`), 0o644); err != nil {
		t.Fatal(err)
	}

	src := `&{"` + target + `"|raw}`
	got := evalStr(t, value.EmptyObject(), src)
	if want := `${nonexistent}`; got != want {
		t.Errorf("got %q, want raw passthrough %q", got, want)
	}
}

func TestScenarioIncludeFileMarkdown(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.tmpl")
	if err := os.WriteFile(target, []byte("# Title\n\nBody text."), 0o644); err != nil {
		t.Fatal(err)
	}

	src := `&{"` + target + `"|md}`
	got := evalStr(t, value.EmptyObject(), src)
	if want := "Title\n\nBody text."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestScenarioSiphonToNonRootAlias(t *testing.T) {
	src := `={dst}<{album}${dst.name}`
	got := evalStr(t, mustParseJSON(t, `{"album":{"name":"A"}}`), src)
	if want := "A"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestUnsetPopModifier(t *testing.T) {
	e := eval.New(value.EmptyObject())
	ctx := context.Background()

	if _, err := e.EvalString(ctx, "<test>", `={xs|array}(1)(2)(3)`); err != nil {
		t.Fatalf("array set-item: %v", err)
	}
	before, err := e.EvalString(ctx, "<test>", `${xs|json}`)
	if err != nil {
		t.Fatalf("include-content json: %v", err)
	}
	if want := `[1,2,3]`; before != want {
		t.Fatalf("got %q, want %q", before, want)
	}

	if _, err := e.EvalString(ctx, "<test>", `/{xs|pop}`); err != nil {
		t.Fatalf("unset pop: %v", err)
	}
	after, err := e.EvalString(ctx, "<test>", `${xs|json}`)
	if err != nil {
		t.Fatalf("include-content json: %v", err)
	}
	if want := `[1,2]`; after != want {
		t.Errorf("got %q, want %q after popping the array's last element", after, want)
	}
}

func TestIncludeContentModifierLower(t *testing.T) {
	got := evalStr(t, mustParseJSON(t, `{"n":"JANE"}`), `${n|lower}`)
	if want := "jane"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIncludeContentModifierReplace(t *testing.T) {
	got := evalStr(t, mustParseJSON(t, `{"n":"a-b-c"}`), `${n|replace "-" "_"}`)
	if want := "a_b_c"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIncludeContentModifierPathFilename(t *testing.T) {
	got := evalStr(t, mustParseJSON(t, `{"p":"/tmp/dir/file.txt"}`), `${p|path|filename}`)
	if want := "file.txt"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIncludeContentModifierFilenameWithoutPathErrors(t *testing.T) {
	e := eval.New(mustParseJSON(t, `{"p":"/tmp/dir/file.txt"}`))
	_, err := e.EvalString(context.Background(), "<test>", `${p|filename}`)
	de, ok := err.(*diag.Error)
	if !ok || de.Kind != diag.BadModifier {
		t.Fatalf("got %v, want a BadModifier *diag.Error", err)
	}
}

func TestIncludeContentModifierJSON(t *testing.T) {
	got := evalStr(t, mustParseJSON(t, `{"o":{"a":1}}`), `${o|json}`)
	if want := `{"a":1}`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCopyThenDeletePath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(src, []byte("A"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "b.txt")

	evalStr(t, value.EmptyObject(), `~{"`+src+`"}{"`+dst+`"}`)
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("copy-path did not create dst: %v", err)
	}

	evalStr(t, value.EmptyObject(), `-{"`+dst+`"}`)
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("delete-path did not remove dst, stat err = %v", err)
	}
}
