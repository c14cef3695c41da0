package templatepro

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCompileEmptySource(t *testing.T) {
	tpl, err := Compile(``)
	if err != nil {
		t.Fatal(err)
	}
	toks := tpl.Tokens()
	if len(toks) != 2 || toks[0].Kind != KindSystemVersion || toks[1].Kind != KindEOF {
		t.Fatalf("unexpected vector for empty source: %v", toks)
	}
}

func TestCompileVersionStamp(t *testing.T) {
	tpl, err := Compile(`x`)
	if err != nil {
		t.Fatal(err)
	}
	if got := tpl.Tokens()[0]; got.Value1 != Version {
		t.Fatalf("SystemVersion payload %q, want %q", got.Value1, Version)
	}
}

func TestCompileErrorNotPartial(t *testing.T) {
	if tpl, err := Compile(`ok {{endfor}}`); err == nil || tpl != nil {
		t.Fatalf("failed compile must not return a template: %v %v", tpl, err)
	}
}

func TestResolveRef(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	// reference path is a file: resolve next to it
	got := resolveRef("part.inc", filepath.Join(dir, "page.tpl"))
	if got != filepath.Join(dir, "part.inc") {
		t.Fatalf("got %q", got)
	}

	// reference path is an existing directory: resolve inside it
	got = resolveRef("part.inc", sub)
	if got != filepath.Join(sub, "part.inc") {
		t.Fatalf("got %q", got)
	}

	// absolute targets pass through
	abs := filepath.Join(dir, "abs.inc")
	if got := resolveRef(abs, "whatever"); got != abs {
		t.Fatalf("got %q", got)
	}
}

func TestCompilerReusableAcrossTemplates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "part.inc", `P`)
	one := writeFile(t, dir, "one.tpl", `1{{include "part.inc"}}`)
	two := writeFile(t, dir, "two.tpl", `2{{include "part.inc"}}`)

	c := NewCompiler()
	for _, path := range []string{one, two} {
		tpl, err := c.CompileFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := tpl.Render(); err != nil {
			t.Fatal(err)
		}
	}
	if len(c.cache) != 1 {
		t.Fatalf("expected one cached partial, got %d", len(c.cache))
	}
}

func TestCompileIgnoreSysVersionOption(t *testing.T) {
	c := NewCompilerOptions(CompileOptions{IgnoreSysVersion: true})
	tpl, err := c.CompileString(`x`, "")
	if err != nil {
		t.Fatal(err)
	}
	if tpl.Tokens()[0].Kind == KindSystemVersion {
		t.Fatal("IgnoreSysVersion should drop the version token")
	}
}
