package templatepro

import "fmt"

// CompileError is fatal to compilation. Peek holds up to 20 characters of
// source at the offending position.
type CompileError struct {
	Msg  string
	Peek string
	Line int
	File string
}

func (e *CompileError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s near %q", e.File, e.Line, e.Msg, e.Peek)
	}
	return fmt.Sprintf("line %d: %s near %q", e.Line, e.Msg, e.Peek)
}

// RenderError is fatal to a render.
type RenderError struct {
	Msg string
}

func (e *RenderError) Error() string {
	return e.Msg
}

func renderErrorf(format string, args ...interface{}) *RenderError {
	return &RenderError{Msg: fmt.Sprintf(format, args...)}
}
