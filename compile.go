package templatepro

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Version is the engine version stamped into the leading SystemVersion
// token of every compiled vector.
const Version = "1.3.0"

// CompileOptions control one compilation. IgnoreSysVersion drops the
// leading SystemVersion token; ParentTemplate marks a sub-template pulled
// in through include or extends, which itself may not extend.
type CompileOptions struct {
	IgnoreSysVersion bool
	ParentTemplate   bool
}

// Compiler turns template source into compiled Templates. Sub-templates
// named by include and extends are read from disk relative to the
// reference path and their scanned vectors are cached per absolute path,
// so shared partials compile once.
type Compiler struct {
	opts  CompileOptions
	cache map[string][]Token
	locks *fileLock
}

func NewCompiler() *Compiler {
	return &Compiler{
		cache: map[string][]Token{},
		locks: newFileLock(),
	}
}

// NewCompilerOptions returns a compiler with explicit top-level options.
func NewCompilerOptions(opts CompileOptions) *Compiler {
	c := NewCompiler()
	c.opts = opts
	return c
}

// CompileString compiles source text. refPath is used only to resolve
// relative include and extends targets; it may be empty when the template
// names none.
func (c *Compiler) CompileString(src, refPath string) (*Template, error) {
	toks, err := c.scan(src, refPath, c.opts)
	if err != nil {
		return nil, err
	}
	if err := resolveJumps(toks, refPath); err != nil {
		return nil, err
	}
	return newCompiledTemplate(toks), nil
}

// CompileFile reads and compiles the named template file.
func (c *Compiler) CompileFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CompileError{
			Msg:  errors.Wrap(err, "reading template").Error(),
			File: path,
			Line: 1,
		}
	}
	return c.CompileString(string(data), path)
}

// Compile is the package-level convenience over a fresh compiler.
func Compile(src string) (*Template, error) {
	return NewCompiler().CompileString(src, "")
}

func (c *Compiler) scan(src, refPath string, opts CompileOptions) ([]Token, error) {
	s := &scanner{
		src:  src,
		line: 1,
		file: refPath,
		opts: opts,
		comp: c,
	}
	return s.run()
}

// resolveRef maps an include or extends target to a path. A reference
// path naming an existing directory anchors the target inside it;
// otherwise the target resolves next to the reference file.
func resolveRef(target, refPath string) string {
	if filepath.IsAbs(target) || refPath == "" {
		return target
	}
	if info, err := os.Stat(refPath); err == nil && info.IsDir() {
		return filepath.Join(refPath, target)
	}
	return filepath.Join(filepath.Dir(refPath), target)
}

// scanRelative loads and scans a sub-template for the scanner, serving
// repeats from the cache. The cached copy stays pristine; callers get a
// fresh slice because the jump resolver mutates refs in place.
func (c *Compiler) scanRelative(target, refPath string, opts CompileOptions) ([]Token, error) {
	path := resolveRef(target, refPath)
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	c.locks.Lock(abs)
	defer c.locks.Unlock(abs)

	c.locks.lk.Lock()
	cached, ok := c.cache[abs]
	c.locks.lk.Unlock()
	if ok {
		return append([]Token(nil), cached...), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %q", target)
	}
	toks, err := c.scan(string(data), path, opts)
	if err != nil {
		return nil, err
	}
	c.locks.lk.Lock()
	c.cache[abs] = toks
	c.locks.lk.Unlock()
	return append([]Token(nil), toks...), nil
}
