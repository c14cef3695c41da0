package templatepro

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func scanSource(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := NewCompiler().scan(src, "", CompileOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return toks
}

func tok(k Kind, v1, v2 string, r1, r2 int) Token {
	return Token{Kind: k, Value1: v1, Value2: v2, Ref1: r1, Ref2: r2}
}

func TestScanVerbatim(t *testing.T) {
	got := scanSource(t, `just text`)
	want := []Token{
		tok(KindSystemVersion, Version, "", -1, -1),
		tok(KindContent, "just text", "", -1, -1),
		tok(KindEOF, "", "", -1, -1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestScanValueDirective(t *testing.T) {
	got := scanSource(t, `a{{:b.c}}d`)
	want := []Token{
		tok(KindSystemVersion, Version, "", -1, -1),
		tok(KindContent, "a", "", -1, -1),
		tok(KindValue, "b.c", "", -1, -1),
		tok(KindContent, "d", "", -1, -1),
		tok(KindEOF, "", "", -1, -1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestScanRawFlag(t *testing.T) {
	got := scanSource(t, `{{:x$}}`)
	want := []Token{
		tok(KindSystemVersion, Version, "", -1, -1),
		tok(KindValue, "x", "", -1, 1),
		tok(KindEOF, "", "", -1, -1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestScanFilterTokens(t *testing.T) {
	got := scanSource(t, `{{:n | substr, 0, "x", 1.5, other}}`)
	want := []Token{
		tok(KindSystemVersion, Version, "", -1, -1),
		tok(KindValue, "n", "", 4, -1),
		tok(KindFilterName, "substr", "", 4, -1),
		tok(KindFilterParameter, "0", "", -1, ParamInteger),
		tok(KindFilterParameter, "x", "", -1, ParamString),
		tok(KindFilterParameter, "1.5", "", -1, ParamFloat),
		tok(KindFilterParameter, "other", "", -1, ParamVariable),
		tok(KindEOF, "", "", -1, -1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestScanForDirective(t *testing.T) {
	got := scanSource(t, `{{for i in items}}{{endfor}}`)
	want := []Token{
		tok(KindSystemVersion, Version, "", -1, -1),
		tok(KindFor, "items", "i", -1, -1),
		tok(KindEndFor, "", "", -1, -1),
		tok(KindEOF, "", "", -1, -1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestScanIfDirective(t *testing.T) {
	got := scanSource(t, `{{if !ok}}{{endif}}`)
	want := []Token{
		tok(KindSystemVersion, Version, "", -1, -1),
		tok(KindIfThen, "", "", -1, -1),
		tok(KindBoolExpression, "!ok", "", -1, -1),
		tok(KindEndIf, "", "", -1, -1),
		tok(KindEOF, "", "", -1, -1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token mismatch (-want +got):\n%s", diff)
	}
}

func TestScanKeywordsCaseInsensitive(t *testing.T) {
	got := scanSource(t, `{{FOR i IN xs}}{{EndFor}}`)
	if got[1].Kind != KindFor || got[2].Kind != KindEndFor {
		t.Fatalf("case-insensitive keywords not recognized: %v", got)
	}
}

func TestScanLineBreakCollapsing(t *testing.T) {
	// the second line holds only a directive and must not emit LineBreak
	got := scanSource(t, "a\n{{if x}}\nb\n{{endif}}")
	kinds := make([]Kind, 0, len(got))
	for _, tk := range got {
		kinds = append(kinds, tk.Kind)
	}
	want := []Kind{
		KindSystemVersion,
		KindContent, KindLineBreak,
		KindIfThen, KindBoolExpression,
		KindContent, KindLineBreak,
		KindEndIf,
		KindEOF,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kind mismatch (-want +got):\n%s", diff)
	}
}

func TestScanIgnoreSysVersion(t *testing.T) {
	toks, err := NewCompiler().scan("x", "", CompileOptions{IgnoreSysVersion: true})
	if err != nil {
		t.Fatal(err)
	}
	if toks[0].Kind != KindContent {
		t.Fatalf("expected no SystemVersion, got %v", toks[0])
	}
}

func TestScanPseudoVariable(t *testing.T) {
	got := scanSource(t, `{{:@@index}}`)
	if got[1].Kind != KindValue || got[1].Value1 != "@@index" {
		t.Fatalf("pseudo variable lexed wrong: %v", got[1])
	}
}

func TestScanBracketPath(t *testing.T) {
	got := scanSource(t, `{{:xs[2].name}}`)
	if got[1].Value1 != "xs[2].name" {
		t.Fatalf("bracket path lexed wrong: %v", got[1])
	}
}

func TestScanErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unterminated directive", `{{:x`},
		{"unclosed string", `{{"abc}}`},
		{"unterminated comment", `{{# foo`},
		{"unknown directive", `{{frob x}}`},
		{"bad fraction", `{{:n | gt, 3.}}`},
		{"missing in", `{{for i of xs}}{{endfor}}`},
		{"iterator equals source", `{{for xs in xs}}{{endfor}}`},
		{"bad identifier after dot", `{{:a.1}}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewCompiler().scan(c.src, "", CompileOptions{})
			if err == nil {
				t.Fatalf("expected a compile error for %q", c.src)
			}
			if _, ok := err.(*CompileError); !ok {
				t.Fatalf("expected *CompileError, got %T", err)
			}
		})
	}
}

func TestScanErrorCarriesPosition(t *testing.T) {
	_, err := NewCompiler().scan("line one\n{{frob}}", "page.tpl", CompileOptions{})
	ce, ok := err.(*CompileError)
	if !ok {
		t.Fatalf("expected *CompileError, got %T", err)
	}
	if ce.Line != 2 {
		t.Fatalf("expected line 2, got %d", ce.Line)
	}
	if ce.File != "page.tpl" {
		t.Fatalf("expected file carried, got %q", ce.File)
	}
	if len(ce.Peek) > 20 {
		t.Fatalf("peek too long: %q", ce.Peek)
	}
}
