package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError is a syntax error with the byte offset at which it occurred.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

// Parse converts rule text into an expression tree. Input left over after a
// complete expression is an error.
func Parse(src string) (Expr, error) {
	p := &parser{src: src}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	p.ws()
	if p.pos < len(p.src) {
		return nil, &ParseError{Pos: p.pos, Msg: fmt.Sprintf("remaining input: %q", p.src[p.pos:])}
	}
	return e, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) needsMore(what string) error {
	return &ParseError{Pos: p.pos, Msg: "needs more input: " + what}
}

func (p *parser) ws() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

// word consumes the keyword if it is a prefix of the remaining input.
func (p *parser) word(kw string) bool {
	if strings.HasPrefix(p.src[p.pos:], kw) {
		p.pos += len(kw)
		return true
	}
	return false
}

// expr parses a leading value followed by zero or more postfix operations,
// folded left to right.
func (p *parser) expr() (Expr, error) {
	acc, err := p.value()
	if err != nil {
		return nil, err
	}
	for {
		next, ok, err := p.operation(acc)
		if err != nil {
			return nil, err
		}
		if !ok {
			return acc, nil
		}
		acc = next
	}
}

func (p *parser) value() (Expr, error) {
	p.ws()
	if p.eof() {
		return nil, p.needsMore("expected a value")
	}
	switch c := p.src[p.pos]; {
	case c == '(':
		p.pos++
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		p.ws()
		if p.eof() {
			return nil, p.needsMore("unterminated group")
		}
		if p.src[p.pos] != ')' {
			return nil, p.errorf("expected ')', found %q", p.src[p.pos])
		}
		p.pos++
		return e, nil
	case c == '[':
		p.pos++
		elems := List{}
		for {
			p.ws()
			if p.eof() {
				return nil, p.needsMore("unterminated list")
			}
			if p.src[p.pos] == ']' {
				p.pos++
				return Lit{V: elems}, nil
			}
			e, err := p.value()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
	case c == '"':
		return p.stringLit()
	case c == '.':
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && (isAlpha(p.src[p.pos]) || p.src[p.pos] == '.') {
			p.pos++
		}
		return Context{Path: p.src[start:p.pos]}, nil
	case c >= '0' && c <= '9':
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		n, err := strconv.ParseUint(p.src[start:p.pos], 10, 64)
		if err != nil {
			return nil, &ParseError{Pos: start, Msg: fmt.Sprintf("bad numeral %q: %v", p.src[start:p.pos], err)}
		}
		return Lit{V: Numeral(n)}, nil
	case p.word("true"):
		return Lit{V: Boolean(true)}, nil
	case p.word("false"):
		return Lit{V: Boolean(false)}, nil
	default:
		return nil, p.errorf("expected a value, found %q", c)
	}
}

func (p *parser) stringLit() (Expr, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for {
		if p.eof() {
			return nil, p.needsMore("unterminated string")
		}
		switch c := p.src[p.pos]; c {
		case '"':
			p.pos++
			return Lit{V: String(b.String())}, nil
		case '\\':
			if p.pos+1 >= len(p.src) {
				return nil, p.needsMore("unterminated escape")
			}
			switch next := p.src[p.pos+1]; next {
			case '"', '\\':
				b.WriteByte(next)
			default:
				// Unknown escapes keep the backslash literally.
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			p.pos += 2
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
}

// operation parses a single trailing operator and wraps the accumulator.
// It reports ok=false when the remaining input starts no operation.
func (p *parser) operation(acc Expr) (Expr, bool, error) {
	p.ws()
	if p.eof() {
		return nil, false, nil
	}

	// Nullary postfix operators.
	switch {
	case p.word("not"):
		return Not{A: acc}, true, nil
	case p.word("length"):
		return Length{List: acc}, true, nil
	case p.word("lines"):
		return Lines{S: acc}, true, nil
	}

	// Binary operators take a trailing value.
	wrap := func(f func(arg Expr) Expr) (Expr, bool, error) {
		arg, err := p.value()
		if err != nil {
			return nil, false, err
		}
		return f(arg), true, nil
	}
	switch {
	case p.word("="):
		return wrap(func(arg Expr) Expr { return Equal{A: acc, B: arg} })
	case p.word("<"):
		return wrap(func(arg Expr) Expr { return LessThan{A: acc, B: arg} })
	case p.word(">"):
		return wrap(func(arg Expr) Expr { return GreaterThan{A: acc, B: arg} })
	case p.word("and"):
		return wrap(func(arg Expr) Expr { return And{A: acc, B: arg} })
	case p.word("or"):
		return wrap(func(arg Expr) Expr { return Or{A: acc, B: arg} })
	case p.word("xor"):
		return wrap(func(arg Expr) Expr { return Xor{A: acc, B: arg} })
	case p.word("all"):
		return wrap(func(arg Expr) Expr { return All{List: acc, Pred: arg} })
	case p.word("any"):
		return wrap(func(arg Expr) Expr { return Any{List: acc, Pred: arg} })
	case p.word("filter"):
		return wrap(func(arg Expr) Expr { return Filter{List: acc, Pred: arg} })
	case p.word("map"):
		return wrap(func(arg Expr) Expr { return Map{List: acc, Xform: arg} })
	case p.word("test"):
		return wrap(func(arg Expr) Expr { return Test{Haystack: acc, Pattern: arg} })
	}
	return nil, false, nil
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
