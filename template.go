package templatepro

// GetValueFunc is the unresolved-lookup hook. dataSource is the head of
// the failed path and members the remaining dotted tail. Returning
// handled=false leaves the value Empty.
type GetValueFunc func(dataSource, members string) (value Value, handled bool)

// Template is one compiled template: the resolved token vector plus the
// per-instance render state holders. The vector is immutable and may be
// shared; everything else belongs to this instance, so renders from
// different goroutines need different Templates.
type Template struct {
	toks    []Token
	env     *environment
	filters filterMap

	// OnGetValue, when set, is consulted for variable paths whose head
	// name neither the loop stack nor the environment binds. A bound head
	// whose tail does not resolve yields Empty without a callback.
	OnGetValue GetValueFunc

	// FormatSettings drive number, date and time rendering.
	FormatSettings *FormatSettings
}

func newCompiledTemplate(toks []Token) *Template {
	return &Template{
		toks:           toks,
		env:            newEnvironment(),
		filters:        builtinFilters(),
		FormatSettings: DefaultFormatSettings(),
	}
}

// Clone returns a template sharing the compiled vector but owning fresh
// render state, for use from another goroutine.
func (t *Template) Clone() *Template {
	n := newCompiledTemplate(t.toks)
	n.OnGetValue = t.OnGetValue
	*n.FormatSettings = *t.FormatSettings
	for name, fn := range t.filters {
		n.filters[name] = fn
	}
	return n
}

// SetData binds a variable under a case-insensitive name, replacing any
// prior binding. Plain Go values are projected through FromAny.
func (t *Template) SetData(name string, value interface{}) {
	t.env.Set(name, FromAny(value))
}

// SetValue binds an already-constructed Value.
func (t *Template) SetValue(name string, v Value) {
	t.env.Set(name, v)
}

// ClearData drops all bindings.
func (t *Template) ClearData() {
	t.env.Clear()
}

// AddFilter registers a filter under a case-insensitive name; registering
// an existing name replaces it.
func (t *Template) AddFilter(name string, fn FilterFunc) {
	t.filters.add(name, fn)
}

// Render executes the token vector against the current environment and
// returns the produced text.
func (t *Template) Render() (string, error) {
	r := newRenderer(t)
	if err := r.run(); err != nil {
		return "", err
	}
	return r.out.String(), nil
}

// ForEachToken visits the compiled vector in order. Debug aid; the
// visitor must not retain or mutate state the render depends on.
func (t *Template) ForEachToken(visit func(i int, tok Token)) {
	for i, tok := range t.toks {
		visit(i, tok)
	}
}

// Tokens returns a copy of the compiled vector.
func (t *Template) Tokens() []Token {
	return append([]Token(nil), t.toks...)
}
