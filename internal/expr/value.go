// Package expr implements the rule expression language: a small postfix
// language over JSON-like values with list comprehensions, regex matching
// and field access against a context dictionary.
package expr

import "reflect"

// Value is the runtime datum of the rule language.
type Value interface {
	isValue()
}

// Numeral is an unsigned integer value.
type Numeral uint

// Boolean is a truth value.
type Boolean bool

// String is a text value.
type String string

// List holds expressions, not values, so that a literal like [1 true] and a
// context reference share one representation. Elements are evaluated on
// demand.
type List []Expr

// Dictionary maps field names to values. It is the shape of the evaluation
// context.
type Dictionary map[string]Value

func (Numeral) isValue()    {}
func (Boolean) isValue()    {}
func (String) isValue()     {}
func (List) isValue()       {}
func (Dictionary) isValue() {}

// Expr is a node of a parsed expression tree.
type Expr interface {
	isExpr()
}

// Lit is a literal value.
type Lit struct {
	V Value
}

// Equal compares two evaluated values structurally.
type Equal struct{ A, B Expr }

// LessThan compares two numerals.
type LessThan struct{ A, B Expr }

// GreaterThan compares two numerals.
type GreaterThan struct{ A, B Expr }

// And is boolean conjunction. Both sides are always evaluated.
type And struct{ A, B Expr }

// Or is boolean disjunction. Both sides are always evaluated.
type Or struct{ A, B Expr }

// Xor is boolean exclusive-or.
type Xor struct{ A, B Expr }

// Not is boolean negation.
type Not struct{ A Expr }

// All is true iff the predicate holds for every list element.
type All struct{ List, Pred Expr }

// Any is true iff the predicate holds for at least one list element.
type Any struct{ List, Pred Expr }

// Filter keeps the list elements whose predicate evaluates to true.
type Filter struct{ List, Pred Expr }

// Map applies a transform to every list element.
type Map struct{ List, Xform Expr }

// Length yields the length of a list.
type Length struct{ List Expr }

// Test matches a regex pattern against a string.
type Test struct{ Haystack, Pattern Expr }

// Lines splits a string on newlines into a list of strings.
type Lines struct{ S Expr }

// Context navigates the current context along a dotted path. An empty path
// yields the context unchanged.
type Context struct{ Path string }

func (Lit) isExpr()         {}
func (Equal) isExpr()       {}
func (LessThan) isExpr()    {}
func (GreaterThan) isExpr() {}
func (And) isExpr()         {}
func (Or) isExpr()          {}
func (Xor) isExpr()         {}
func (Not) isExpr()         {}
func (All) isExpr()         {}
func (Any) isExpr()         {}
func (Filter) isExpr()      {}
func (Map) isExpr()         {}
func (Length) isExpr()      {}
func (Test) isExpr()        {}
func (Lines) isExpr()       {}
func (Context) isExpr()     {}

// equalValues reports structural equality. Values of different kinds never
// compare equal; list elements compare as expression trees.
func equalValues(a, b Value) bool {
	return reflect.DeepEqual(a, b)
}

// kindOf names the kind of a value for error messages.
func kindOf(v Value) string {
	switch v.(type) {
	case Numeral:
		return "numeral"
	case Boolean:
		return "boolean"
	case String:
		return "string"
	case List:
		return "list"
	case Dictionary:
		return "dictionary"
	default:
		return "unknown"
	}
}
