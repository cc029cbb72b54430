package expr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidType marks an operator applied to a value of the wrong kind.
	ErrInvalidType = errors.New("invalid type")
	// ErrKeyNotFound marks a context path that resolved a missing key.
	ErrKeyNotFound = errors.New("no such key")
)

// EvalRule parses and evaluates a rule expression against a context. The
// expression must produce a boolean.
func EvalRule(expression string, input Value) (bool, error) {
	e, err := Parse(expression)
	if err != nil {
		return false, fmt.Errorf("parse expression: %w", err)
	}
	v, err := Eval(e, input)
	if err != nil {
		return false, fmt.Errorf("evaluate expression: %w", err)
	}
	b, ok := v.(Boolean)
	if !ok {
		return false, fmt.Errorf("%w: rule produced %s, want boolean", ErrInvalidType, kindOf(v))
	}
	return bool(b), nil
}

// Eval reduces an expression tree against a context value.
func Eval(e Expr, ctx Value) (Value, error) {
	switch e := e.(type) {
	case Lit:
		return e.V, nil
	case Equal:
		a, err := Eval(e.A, ctx)
		if err != nil {
			return nil, err
		}
		b, err := Eval(e.B, ctx)
		if err != nil {
			return nil, err
		}
		return Boolean(equalValues(a, b)), nil
	case LessThan:
		a, b, err := evalNumerals(e.A, e.B, ctx)
		if err != nil {
			return nil, err
		}
		return Boolean(a < b), nil
	case GreaterThan:
		a, b, err := evalNumerals(e.A, e.B, ctx)
		if err != nil {
			return nil, err
		}
		return Boolean(a > b), nil
	case And:
		a, b, err := evalBooleans(e.A, e.B, ctx)
		if err != nil {
			return nil, err
		}
		return Boolean(a && b), nil
	case Or:
		a, b, err := evalBooleans(e.A, e.B, ctx)
		if err != nil {
			return nil, err
		}
		return Boolean(a || b), nil
	case Xor:
		a, b, err := evalBooleans(e.A, e.B, ctx)
		if err != nil {
			return nil, err
		}
		return Boolean(a != b), nil
	case Not:
		a, err := evalBoolean(e.A, ctx)
		if err != nil {
			return nil, err
		}
		return Boolean(!a), nil
	case All:
		list, err := evalList(e.List, ctx)
		if err != nil {
			return nil, err
		}
		for _, elem := range list {
			ok, err := evalElemPred(elem, e.Pred, ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				return Boolean(false), nil
			}
		}
		return Boolean(true), nil
	case Any:
		list, err := evalList(e.List, ctx)
		if err != nil {
			return nil, err
		}
		for _, elem := range list {
			ok, err := evalElemPred(elem, e.Pred, ctx)
			if err != nil {
				return nil, err
			}
			if ok {
				return Boolean(true), nil
			}
		}
		return Boolean(false), nil
	case Filter:
		list, err := evalList(e.List, ctx)
		if err != nil {
			return nil, err
		}
		kept := List{}
		for _, elem := range list {
			ev, err := Eval(elem, ctx)
			if err != nil {
				return nil, err
			}
			ok, err := evalBoolean(e.Pred, ev)
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, Lit{V: ev})
			}
		}
		return kept, nil
	case Map:
		list, err := evalList(e.List, ctx)
		if err != nil {
			return nil, err
		}
		mapped := List{}
		for _, elem := range list {
			ev, err := Eval(elem, ctx)
			if err != nil {
				return nil, err
			}
			out, err := Eval(e.Xform, ev)
			if err != nil {
				return nil, err
			}
			mapped = append(mapped, Lit{V: out})
		}
		return mapped, nil
	case Length:
		list, err := evalList(e.List, ctx)
		if err != nil {
			return nil, err
		}
		return Numeral(len(list)), nil
	case Test:
		haystack, err := evalString(e.Haystack, ctx)
		if err != nil {
			return nil, err
		}
		pattern, err := evalString(e.Pattern, ctx)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(string(pattern))
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		return Boolean(re.MatchString(string(haystack))), nil
	case Lines:
		s, err := evalString(e.S, ctx)
		if err != nil {
			return nil, err
		}
		lines := List{}
		for _, line := range strings.Split(string(s), "\n") {
			lines = append(lines, Lit{V: String(line)})
		}
		return lines, nil
	case Context:
		cur := ctx
		for _, seg := range strings.Split(e.Path, ".") {
			if seg == "" {
				continue
			}
			dict, ok := cur.(Dictionary)
			if !ok {
				return nil, fmt.Errorf("%w: cannot navigate %q through %s", ErrInvalidType, seg, kindOf(cur))
			}
			v, ok := dict[seg]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, seg)
			}
			cur = v
		}
		return cur, nil
	default:
		return nil, fmt.Errorf("unknown expression node %T", e)
	}
}

// evalElemPred evaluates a list element in the outer context, then the
// predicate with the element's value as the new context.
func evalElemPred(elem, pred Expr, ctx Value) (bool, error) {
	ev, err := Eval(elem, ctx)
	if err != nil {
		return false, err
	}
	b, err := evalBoolean(pred, ev)
	if err != nil {
		return false, err
	}
	return bool(b), nil
}

func evalNumeral(e Expr, ctx Value) (Numeral, error) {
	v, err := Eval(e, ctx)
	if err != nil {
		return 0, err
	}
	n, ok := v.(Numeral)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not a numeral", ErrInvalidType, kindOf(v))
	}
	return n, nil
}

func evalNumerals(a, b Expr, ctx Value) (Numeral, Numeral, error) {
	na, err := evalNumeral(a, ctx)
	if err != nil {
		return 0, 0, err
	}
	nb, err := evalNumeral(b, ctx)
	if err != nil {
		return 0, 0, err
	}
	return na, nb, nil
}

func evalBoolean(e Expr, ctx Value) (Boolean, error) {
	v, err := Eval(e, ctx)
	if err != nil {
		return false, err
	}
	b, ok := v.(Boolean)
	if !ok {
		return false, fmt.Errorf("%w: %s is not a boolean", ErrInvalidType, kindOf(v))
	}
	return b, nil
}

func evalBooleans(a, b Expr, ctx Value) (Boolean, Boolean, error) {
	ba, err := evalBoolean(a, ctx)
	if err != nil {
		return false, false, err
	}
	bb, err := evalBoolean(b, ctx)
	if err != nil {
		return false, false, err
	}
	return ba, bb, nil
}

func evalList(e Expr, ctx Value) (List, error) {
	v, err := Eval(e, ctx)
	if err != nil {
		return nil, err
	}
	l, ok := v.(List)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a list", ErrInvalidType, kindOf(v))
	}
	return l, nil
}

func evalString(e Expr, ctx Value) (String, error) {
	v, err := Eval(e, ctx)
	if err != nil {
		return "", err
	}
	s, ok := v.(String)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", ErrInvalidType, kindOf(v))
	}
	return s, nil
}
