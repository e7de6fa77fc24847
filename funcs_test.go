package expr_test

import (
	"math"
	"testing"

	"github.com/exprkit/expr"
)

func TestMathBuiltins(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"sqrt(9)", 3},
		{"floor(1.7)", 1},
		{"floor(-1.2)", -2},
		{"ceil(1.2)", 2},
		{"round(2.5)", 3},
		{"abs(-3)", 3},
		{"abs(3)", 3},
		{"cos(0)", 1},
		{"sin(0)", 0},
		{"tan(0)", 0},
		{"acos(1)", 0},
		{"asin(0)", 0},
		{"atan(0)", 0},
		{"atan2(0, 1)", 0},
		{"pow(10, 0)", 1},
		{"mod(10, 3)", 1},
		{"mod(-1, 3)", math.Mod(-1, 3)},
		{"10 % 3", 1},
		{"-7 % 3", math.Mod(-7, 3)},
		{"max(2, 9)", 9},
		{"max(2, 9, 4, 11, 6)", 11},
		{"min(2, 9, 4, -1)", -1},
		{"7 / 2", 3.5},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			v, err := expr.NewExpression(c.src).Evaluate()
			if err != nil {
				t.Fatalf("Evaluate(%q) failed: %v", c.src, err)
			}
			if v != c.want {
				t.Errorf("Evaluate(%q) = %g; want %g", c.src, v, c.want)
			}
		})
	}
}

func TestBooleanBuiltins(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"true", 1},
		{"false", 0},
		{"1 < 2", 1},
		{"2 < 1", 0},
		{"1 <= 1", 1},
		{"2 >= 3", 0},
		{"3 > 2", 1},
		{"2 == 2", 1},
		{"2 != 2", 0},
		{"2 != 3", 1},
		{"1 && 0", 0},
		{"1 && 2", 1},
		{"1 || 0", 1},
		{"0 || 0", 0},
		{"!0", 1},
		{"!5", 0},
		{"1 < 2 && 2 < 3", 1},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			v, err := expr.NewExpression(c.src, expr.BooleanSymbols()).Evaluate()
			if err != nil {
				t.Fatalf("Evaluate(%q) failed: %v", c.src, err)
			}
			if v != c.want {
				t.Errorf("Evaluate(%q) = %g; want %g", c.src, v, c.want)
			}
		})
	}
}

// The boolean table is opt-in: without it the comparison operators are
// plain undefined symbols.
func TestBooleanBuiltinsOptIn(t *testing.T) {
	_, err := expr.NewExpression("1 < 2").Evaluate()
	if err == nil {
		t.Fatal("comparison evaluated without BooleanSymbols")
	}
	if _, ok := err.(*expr.UndefinedSymbolError); !ok {
		t.Errorf("error = %T; want *UndefinedSymbolError", err)
	}
}

// Logical operators do not short-circuit: both sides always evaluate, so
// an error on the right surfaces even when the left decides the result.
func TestNoShortCircuit(t *testing.T) {
	a := expr.Arrays(map[string][]float64{"a": {1}})
	_, err := expr.NewExpression("0 && a[9]", a, expr.BooleanSymbols()).Evaluate()
	if err == nil {
		t.Fatal("right operand of && was not evaluated")
	}
	if _, ok := err.(*expr.ArrayBoundsError); !ok {
		t.Errorf("error = %T; want *ArrayBoundsError", err)
	}
}

func TestArityString(t *testing.T) {
	cases := []struct {
		arity expr.Arity
		want  string
	}{
		{expr.Exactly(0), "0"},
		{expr.Exactly(2), "2"},
		{expr.AtLeast(2), "at least 2"},
	}
	for _, c := range cases {
		if got := c.arity.String(); got != c.want {
			t.Errorf("%#v.String() = %q; want %q", c.arity, got, c.want)
		}
	}
}

func TestArityMatches(t *testing.T) {
	cases := []struct {
		decl, call expr.Arity
		want       bool
	}{
		{expr.Exactly(2), expr.Exactly(2), true},
		{expr.Exactly(2), expr.Exactly(3), false},
		{expr.AtLeast(2), expr.Exactly(2), true},
		{expr.AtLeast(2), expr.Exactly(5), true},
		{expr.AtLeast(2), expr.Exactly(1), false},
		{expr.AtLeast(2), expr.AtLeast(3), true},
		{expr.Exactly(3), expr.AtLeast(2), true},
		{expr.Exactly(1), expr.AtLeast(2), false},
	}
	for _, c := range cases {
		if got := c.decl.Matches(c.call); got != c.want {
			t.Errorf("%v.Matches(%v) = %v; want %v", c.decl, c.call, got, c.want)
		}
	}
}

func TestSymbolString(t *testing.T) {
	cases := []struct {
		sym  expr.Symbol
		want string
	}{
		{expr.Variable("x"), "variable x"},
		{expr.Infix("+"), "infix operator +"},
		{expr.Prefix("-"), "prefix operator -"},
		{expr.Postfix("%"), "postfix operator %"},
		{expr.Function("pow", expr.Exactly(2)), "function pow (2 arguments)"},
		{expr.Function("sqrt", expr.Exactly(1)), "function sqrt (1 argument)"},
		{expr.Function("max", expr.AtLeast(2)), "function max (at least 2 arguments)"},
		{expr.Array("a"), "array a"},
		{expr.Variable("hello world"), "variable `hello world`"},
	}
	for _, c := range cases {
		if got := c.sym.String(); got != c.want {
			t.Errorf("Symbol.String() = %q; want %q", got, c.want)
		}
	}
}
