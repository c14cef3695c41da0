package templatepro

import (
	"strings"
	"unicode/utf8"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// scanner walks the template source once, appending tokens to toks.
// Verbatim text accumulates between startVerbatim and pos and is flushed
// as a Content token whenever a directive or line break interrupts it.
// lineContent counts the content-bearing tokens emitted on the current
// line; a line break only emits a LineBreak token when it is nonzero, so
// lines holding nothing but directives collapse.
type scanner struct {
	src  string
	pos  int
	line int
	file string

	startVerbatim int
	lineContent   int

	toks     []Token
	opts     CompileOptions
	comp     *Compiler
	extended bool

	err *CompileError
}

// A state either advances the scan or records s.err and returns nil.
type scanState func(*scanner) scanState

func (s *scanner) run() ([]Token, error) {
	if !s.opts.IgnoreSysVersion {
		s.toks = append(s.toks, newToken(KindSystemVersion, Version, ""))
	}
	for state := scanText; state != nil; {
		state = state(s)
	}
	if s.err != nil {
		return nil, s.err
	}
	s.toks = append(s.toks, newToken(KindEOF, "", ""))
	return s.toks, nil
}

// errorf records a compile error with a 20 character peek at the current
// position. Helpers report failure through their ok result; the state
// machine stops on the nil state.
func (s *scanner) errorf(msg string) scanState {
	if s.err != nil {
		return nil
	}
	peek := s.src[s.pos:]
	if len(peek) > 20 {
		peek = peek[:20]
	}
	s.err = &CompileError{
		Msg:  msg,
		Peek: peek,
		Line: s.line,
		File: s.file,
	}
	return nil
}

func (s *scanner) emit(t Token) {
	s.toks = append(s.toks, t)
}

// emitCounted emits a token that counts as line content.
func (s *scanner) emitCounted(t Token) {
	s.toks = append(s.toks, t)
	s.lineContent++
}

func (s *scanner) flushVerbatim() {
	if s.pos > s.startVerbatim {
		s.emitCounted(newToken(KindContent, s.src[s.startVerbatim:s.pos], ""))
	}
	s.startVerbatim = s.pos
}

func (s *scanner) rest() string {
	return s.src[s.pos:]
}

func (s *scanner) peek() rune {
	if s.pos >= len(s.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return r
}

func (s *scanner) skipSpaces() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c != ' ' && c != '\t' {
			break
		}
		s.pos++
	}
}

// lineBreakLen reports the byte length of a line break at the start of
// str, or 0.
func lineBreakLen(str string) int {
	if strings.HasPrefix(str, "\r\n") {
		return 2
	}
	if len(str) > 0 && (str[0] == '\n' || str[0] == '\r') {
		return 1
	}
	return 0
}

func scanText(s *scanner) scanState {
	for s.pos < len(s.src) {
		rest := s.rest()
		// {{{ escapes a literal open delimiter
		if strings.HasPrefix(rest, openDelim+"{") {
			s.flushVerbatim()
			s.emitCounted(newToken(KindContent, openDelim, ""))
			s.pos += 3
			s.startVerbatim = s.pos
			continue
		}
		if strings.HasPrefix(rest, openDelim) {
			s.flushVerbatim()
			s.pos += 2
			return scanDirective
		}
		if nl := lineBreakLen(rest); nl > 0 {
			s.flushVerbatim()
			s.pos += nl
			s.line++
			s.startVerbatim = s.pos
			if s.lineContent > 0 {
				s.emit(newToken(KindLineBreak, "", ""))
				s.lineContent = 0
			}
			continue
		}
		s.pos++
	}
	s.flushVerbatim()
	return nil
}

func scanDirective(s *scanner) scanState {
	s.skipSpaces()
	switch {
	case s.peek() == -1:
		return s.errorf("unterminated directive")
	case s.peek() == '#':
		return scanComment
	case s.peek() == ':':
		s.pos++
		return scanValue
	case s.peek() == '"':
		return scanLiteralString
	}
	word, ok := s.scanIdent()
	if !ok {
		return s.errorf("unknown directive")
	}
	switch strings.ToLower(word) {
	case "for":
		return scanFor
	case "endfor":
		s.emit(newToken(KindEndFor, "", ""))
		return s.closeDirective()
	case "continue":
		s.emit(newToken(KindContinue, "", ""))
		return s.closeDirective()
	case "if":
		return scanIf
	case "else":
		s.emit(newToken(KindElse, "", ""))
		return s.closeDirective()
	case "endif":
		s.emit(newToken(KindEndIf, "", ""))
		return s.closeDirective()
	case "include":
		return scanInclude
	case "extends":
		return scanExtends
	case "block":
		return scanBlock
	case "endblock":
		s.emit(newToken(KindEndBlock, "", ""))
		return s.closeDirective()
	case "exit":
		s.emit(newToken(KindExit, "", ""))
		return s.closeDirective()
	}
	return s.errorf("unknown directive " + word)
}

// closeDirective consumes optional spaces and the close delimiter, then
// resumes verbatim scanning.
func (s *scanner) closeDirective() scanState {
	s.skipSpaces()
	if !strings.HasPrefix(s.rest(), closeDelim) {
		return s.errorf("expected " + closeDelim)
	}
	s.pos += 2
	s.startVerbatim = s.pos
	return scanText
}

func scanComment(s *scanner) scanState {
	end := strings.Index(s.rest(), closeDelim)
	if end < 0 {
		return s.errorf("unterminated comment")
	}
	s.line += strings.Count(s.src[s.pos:s.pos+end], "\n")
	s.pos += end + 2
	s.startVerbatim = s.pos
	return scanText
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '@' ||
		('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isIdentRune(r rune) bool {
	return r == '_' ||
		('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') ||
		('0' <= r && r <= '9')
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

// scanIdent consumes one identifier. The leading rune may be @ so the
// loop pseudo variables (@@index and friends) lex as ordinary heads.
func (s *scanner) scanIdent() (string, bool) {
	start := s.pos
	if !isIdentStart(s.peek()) {
		return "", false
	}
	s.pos++
	if s.src[start] == '@' && s.peek() == '@' {
		s.pos++
	}
	for s.pos < len(s.src) && isIdentRune(rune(s.src[s.pos])) {
		s.pos++
	}
	return s.src[start:s.pos], true
}

// scanVarPath consumes ident ('.' ident)* with an optional [N] after any
// segment. The textual form is kept; brackets resolve at render time.
// On failure the error is recorded and ok is false.
func (s *scanner) scanVarPath() (string, bool) {
	start := s.pos
	if _, ok := s.scanIdent(); !ok {
		s.errorf("expected identifier")
		return "", false
	}
	for {
		if s.peek() == '[' {
			s.pos++
			if !isDigit(s.peek()) {
				s.errorf("expected index digits")
				return "", false
			}
			for isDigit(s.peek()) {
				s.pos++
			}
			if s.peek() != ']' {
				s.errorf("expected ]")
				return "", false
			}
			s.pos++
		}
		if s.peek() != '.' {
			break
		}
		s.pos++
		if _, ok := s.scanIdent(); !ok {
			s.errorf("expected identifier after .")
			return "", false
		}
	}
	return s.src[start:s.pos], true
}

// filterCall is a parsed pipeline tail, emitted after its value token.
type filterCall struct {
	name   string
	params []Token
}

// scanFilter parses name (',' param)* after a | was consumed.
func (s *scanner) scanFilter() (filterCall, bool) {
	var f filterCall
	s.skipSpaces()
	name, ok := s.scanIdent()
	if !ok {
		s.errorf("expected filter name")
		return f, false
	}
	f.name = name
	for {
		s.skipSpaces()
		if s.peek() != ',' {
			break
		}
		s.pos++
		s.skipSpaces()
		p, ok := s.scanFilterParam()
		if !ok {
			return f, false
		}
		f.params = append(f.params, p)
	}
	return f, true
}

func (s *scanner) scanFilterParam() (Token, bool) {
	switch r := s.peek(); {
	case r == '"':
		str, ok := s.scanString()
		if !ok {
			return Token{}, false
		}
		t := newToken(KindFilterParameter, str, "")
		t.Ref2 = ParamString
		return t, true
	case r == '+' || r == '-' || isDigit(r):
		return s.scanNumber()
	case isIdentStart(r):
		path, ok := s.scanVarPath()
		if !ok {
			return Token{}, false
		}
		t := newToken(KindFilterParameter, path, "")
		t.Ref2 = ParamVariable
		return t, true
	}
	s.errorf("expected filter parameter")
	return Token{}, false
}

// scanNumber consumes a sign, digits and an optional fraction. A dot
// with no fractional digits is a compile error.
func (s *scanner) scanNumber() (Token, bool) {
	start := s.pos
	if r := s.peek(); r == '+' || r == '-' {
		s.pos++
	}
	if !isDigit(s.peek()) {
		s.errorf("expected digits")
		return Token{}, false
	}
	for isDigit(s.peek()) {
		s.pos++
	}
	typ := ParamInteger
	if s.peek() == '.' {
		s.pos++
		if !isDigit(s.peek()) {
			s.errorf("expected digits after decimal point")
			return Token{}, false
		}
		for isDigit(s.peek()) {
			s.pos++
		}
		typ = ParamFloat
	}
	t := newToken(KindFilterParameter, s.src[start:s.pos], "")
	t.Ref2 = typ
	return t, true
}

// scanString consumes a double-quoted string. No escape syntax exists
// inside strings.
func (s *scanner) scanString() (string, bool) {
	if s.peek() != '"' {
		s.errorf("expected string")
		return "", false
	}
	s.pos++
	end := strings.IndexByte(s.rest(), '"')
	if end < 0 {
		s.errorf("unclosed string")
		return "", false
	}
	str := s.src[s.pos : s.pos+end]
	s.pos += end + 1
	return str, true
}

// scanValueTail handles the shared ('$'?) ('|' filter)? suffix of value
// and literal-string directives, then emits the value token and its
// filter tokens.
func (s *scanner) scanValueTail(t Token) scanState {
	s.skipSpaces()
	if s.peek() == '$' {
		s.pos++
		t.Ref2 = 1
	}
	s.skipSpaces()
	var filter *filterCall
	if s.peek() == '|' {
		s.pos++
		f, ok := s.scanFilter()
		if !ok {
			return nil
		}
		filter = &f
		t.Ref1 = len(f.params)
	}
	s.emitCounted(t)
	if filter != nil {
		ft := newToken(KindFilterName, filter.name, "")
		ft.Ref1 = len(filter.params)
		s.emit(ft)
		for _, p := range filter.params {
			s.emit(p)
		}
	}
	return s.closeDirective()
}

func scanValue(s *scanner) scanState {
	s.skipSpaces()
	path, ok := s.scanVarPath()
	if !ok {
		return nil
	}
	t := newToken(KindValue, path, "")
	t.Ref2 = -1 // escape unless $ flips it
	return s.scanValueTail(t)
}

func scanLiteralString(s *scanner) scanState {
	str, ok := s.scanString()
	if !ok {
		return nil
	}
	t := newToken(KindLiteralString, str, "")
	t.Ref2 = -1
	return s.scanValueTail(t)
}

func scanFor(s *scanner) scanState {
	s.skipSpaces()
	iter, ok := s.scanIdent()
	if !ok {
		return s.errorf("expected iterator name")
	}
	s.skipSpaces()
	kw, ok := s.scanIdent()
	if !ok || !strings.EqualFold(kw, "in") {
		return s.errorf("expected in")
	}
	s.skipSpaces()
	src, ok := s.scanVarPath()
	if !ok {
		return nil
	}
	if strings.EqualFold(iter, src) {
		return s.errorf("iterator name equals data source name")
	}
	s.emit(newToken(KindFor, src, iter))
	return s.closeDirective()
}

func scanIf(s *scanner) scanState {
	s.skipSpaces()
	neg := ""
	if s.peek() == '!' {
		s.pos++
		s.skipSpaces()
		neg = "!"
	}
	path, ok := s.scanVarPath()
	if !ok {
		return nil
	}
	s.emit(newToken(KindIfThen, "", ""))
	t := newToken(KindBoolExpression, neg+path, "")
	s.skipSpaces()
	var filter *filterCall
	if s.peek() == '|' {
		s.pos++
		f, ok := s.scanFilter()
		if !ok {
			return nil
		}
		filter = &f
		t.Ref1 = len(f.params)
	}
	s.emit(t)
	if filter != nil {
		ft := newToken(KindFilterName, filter.name, "")
		ft.Ref1 = len(filter.params)
		s.emit(ft)
		for _, p := range filter.params {
			s.emit(p)
		}
	}
	return s.closeDirective()
}

func scanBlock(s *scanner) scanState {
	s.skipSpaces()
	name, ok := s.scanString()
	if !ok {
		return nil
	}
	s.emit(newToken(KindBlock, name, ""))
	return s.closeDirective()
}

func scanInclude(s *scanner) scanState {
	s.skipSpaces()
	path, ok := s.scanString()
	if !ok {
		return nil
	}
	sub, err := s.comp.scanRelative(path, s.file, CompileOptions{
		IgnoreSysVersion: true,
		ParentTemplate:   true,
	})
	if err != nil {
		return s.compileFailed(err)
	}
	s.spliceCounted(sub)
	return s.closeDirective()
}

func scanExtends(s *scanner) scanState {
	if s.opts.ParentTemplate {
		return s.errorf("extends not allowed in a parent template")
	}
	if s.extended {
		return s.errorf("duplicate extends")
	}
	s.extended = true
	s.skipSpaces()
	path, ok := s.scanString()
	if !ok {
		return nil
	}
	parent, err := s.comp.scanRelative(path, s.file, CompileOptions{
		IgnoreSysVersion: true,
		ParentTemplate:   true,
	})
	if err != nil {
		return s.compileFailed(err)
	}
	s.emit(newToken(KindInfo, infoBeginOfLayout, ""))
	s.spliceCounted(parent)
	s.emit(newToken(KindInfo, infoEndOfLayout, ""))
	return s.closeDirective()
}

// spliceCounted appends a sub-template vector minus its trailing EOF.
// The splice counts as content on the current line.
func (s *scanner) spliceCounted(sub []Token) {
	if n := len(sub); n > 0 && sub[n-1].Kind == KindEOF {
		sub = sub[:n-1]
	}
	s.toks = append(s.toks, sub...)
	s.lineContent++
}

// compileFailed surfaces a sub-template failure. Compile errors from the
// sub-template keep their own position; anything else (unreadable file)
// is reported at the directive.
func (s *scanner) compileFailed(err error) scanState {
	if ce, ok := err.(*CompileError); ok {
		s.err = ce
		return nil
	}
	return s.errorf(err.Error())
}
