package templatepro

import (
	"strconv"
	"strings"
)

// renderer holds the mutable state of one render: the loop stack, the
// block-override return register and the output builder. The program
// counter is local to run. The token vector is never written.
type renderer struct {
	t           *Template
	toks        []Token
	loops       loopStack
	out         strings.Builder
	blockReturn int
}

func newRenderer(t *Template) *renderer {
	return &renderer{
		t:           t,
		toks:        t.toks,
		blockReturn: -1,
	}
}

func (r *renderer) run() (err error) {
	pc := 0
	if len(r.toks) > 0 && r.toks[0].Kind == KindSystemVersion {
		pc = 1
	}
	for pc < len(r.toks) {
		tok := r.toks[pc]
		switch tok.Kind {
		case KindContent:
			r.out.WriteString(tok.Value1)
			pc++

		case KindLineBreak:
			r.out.WriteString("\n")
			pc++

		case KindSystemVersion, KindEndIf:
			pc++

		case KindValue, KindLiteralString:
			pc, err = r.emitValue(pc)
			if err != nil {
				return err
			}

		case KindIfThen:
			var cond bool
			var after int
			cond, after, err = r.evalBool(pc + 1)
			if err != nil {
				return err
			}
			switch {
			case cond:
				pc = after
			case tok.Ref1 >= 0:
				pc = tok.Ref1 + 1
			default:
				pc = tok.Ref2 + 1
			}

		case KindElse:
			// reached by fall-through from the then branch
			pc = tok.Ref2

		case KindFor:
			v := r.lookup(tok.Value1)
			if !v.IsIterable() || v.iterLen() == 0 {
				pc = tok.Ref1 + 1
				break
			}
			f := &loopFrame{
				sourceName: pathHead(tok.Value1),
				fullPath:   tok.Value1,
				iterName:   tok.Value2,
				source:     v,
				position:   -1,
			}
			f.advance()
			r.loops.push(f)
			pc++

		case KindEndFor:
			f := r.loops.top()
			if f == nil {
				return renderErrorf("endfor outside of a loop")
			}
			if f.advance() {
				pc = tok.Ref1 + 1
			} else {
				r.loops.pop()
				pc++
			}

		case KindContinue:
			pc = tok.Ref1

		case KindBlock:
			if tok.Ref1 >= 0 {
				// overridden by the page; return lands at our EndBlock
				r.blockReturn = tok.Ref2
				pc = tok.Ref1 + 1
			} else {
				pc++
			}

		case KindEndBlock:
			if r.blockReturn >= 0 {
				pc = r.blockReturn
				r.blockReturn = -1
			} else {
				pc++
			}

		case KindInfo:
			// the page section only runs through block overrides
			if tok.Value1 == infoEndOfLayout {
				return nil
			}
			pc++

		case KindExit, KindEOF:
			return nil

		default:
			// filter tokens are consumed by their value heads
			pc++
		}
	}
	return nil
}

// emitValue renders a Value or LiteralString token, applying its filter
// and escaping, and returns the index after the expression.
func (r *renderer) emitValue(pc int) (int, error) {
	tok := r.toks[pc]
	var v Value
	if tok.Kind == KindLiteralString {
		v = StringValue(tok.Value1)
	} else {
		v = r.lookup(tok.Value1)
	}
	next := pc + 1
	if tok.Ref1 >= 0 {
		fv, after, err := r.applyFilter(next, v)
		if err != nil {
			return 0, err
		}
		v = fv
		next = after
	}
	s := r.t.FormatSettings.FormatValue(v)
	if tok.Ref2 != 1 {
		s = EscapeHTML(s)
	}
	r.out.WriteString(s)
	return next, nil
}

// evalBool evaluates the BoolExpression token at pc.
func (r *renderer) evalBool(pc int) (bool, int, error) {
	tok := r.toks[pc]
	if tok.Kind != KindBoolExpression {
		return false, 0, renderErrorf("malformed if expression")
	}
	path := tok.Value1
	neg := false
	if strings.HasPrefix(path, "!") {
		neg = true
		path = path[1:]
	}
	v := r.lookup(path)
	next := pc + 1
	if tok.Ref1 >= 0 {
		fv, after, err := r.applyFilter(next, v)
		if err != nil {
			return false, 0, err
		}
		v = fv
		next = after
	}
	truthy := v.Truthy()
	if neg {
		truthy = !truthy
	}
	return truthy, next, nil
}

// applyFilter invokes the FilterName token at pc on v and returns the
// index after the filter's parameter tokens.
func (r *renderer) applyFilter(pc int, v Value) (Value, int, error) {
	tok := r.toks[pc]
	if tok.Kind != KindFilterName {
		return v, pc, renderErrorf("expected filter after value")
	}
	count := tok.Ref1
	if count < 0 {
		count = 0
	}
	params := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		pt := r.toks[pc+1+i]
		pv, err := r.resolveParam(pt)
		if err != nil {
			return v, 0, err
		}
		params = append(params, pv)
	}
	fn, ok := r.t.filters[filterKey(tok.Value1)]
	if !ok {
		return v, 0, renderErrorf("unknown filter %q", tok.Value1)
	}
	out, err := fn(v, params, r.t.FormatSettings)
	if err != nil {
		return v, 0, renderErrorf("filter %q: %s", tok.Value1, err)
	}
	return out, pc + 1 + count, nil
}

func (r *renderer) resolveParam(tok Token) (Value, error) {
	switch tok.Ref2 {
	case ParamInteger:
		n, err := strconv.ParseInt(tok.Value1, 10, 64)
		if err != nil {
			return EmptyValue(), renderErrorf("bad integer parameter %q", tok.Value1)
		}
		return IntValue(n), nil
	case ParamFloat:
		f, err := strconv.ParseFloat(tok.Value1, 64)
		if err != nil {
			return EmptyValue(), renderErrorf("bad float parameter %q", tok.Value1)
		}
		return FloatValue(f), nil
	case ParamString:
		return StringValue(tok.Value1), nil
	case ParamVariable:
		return r.lookup(tok.Value1), nil
	}
	return EmptyValue(), renderErrorf("bad parameter type %d", tok.Ref2)
}

func pathHead(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

// lookup resolves a dotted, optionally bracket-indexed variable path:
// loop iterators shadow the environment, pseudo variables read the
// nearest frame, and unresolved names fall through to the OnGetValue
// callback before defaulting to Empty.
func (r *renderer) lookup(path string) Value {
	segs := splitPath(path)
	head := segs[0]

	switch strings.ToLower(head.name) {
	case "@@index":
		if f := r.loops.top(); f != nil {
			return IntValue(int64(f.position + 1))
		}
		return EmptyValue()
	case "@@odd":
		if f := r.loops.top(); f != nil {
			return BoolValue((f.position+1)%2 == 1)
		}
		return EmptyValue()
	case "@@even":
		if f := r.loops.top(); f != nil {
			return BoolValue((f.position+1)%2 == 0)
		}
		return EmptyValue()
	}

	if f := r.loops.byIterator(head.name); f != nil {
		v := f.current()
		if head.hasIx {
			var ok bool
			v, ok = descend(v, pathSegment{index: head.index, hasIx: true})
			if !ok {
				return EmptyValue()
			}
		}
		if out, ok := walkPath(v, segs[1:]); ok {
			return out
		}
		return EmptyValue()
	}

	if v, ok := r.t.env.Get(head.name); ok {
		if head.hasIx {
			v, ok = descend(v, pathSegment{index: head.index, hasIx: true})
			if !ok {
				return EmptyValue()
			}
		}
		if out, ok := walkPath(v, segs[1:]); ok {
			return out
		}
		return EmptyValue()
	}

	if r.t.OnGetValue != nil {
		members := ""
		if i := strings.IndexByte(path, '.'); i >= 0 {
			members = path[i+1:]
		}
		if v, handled := r.t.OnGetValue(head.name, members); handled {
			return v
		}
	}
	return EmptyValue()
}
