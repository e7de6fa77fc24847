package expr_test

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprkit/expr"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name string
		src  string
		opts []expr.Option
		want float64
	}{
		{"precedence", "1 + 2 * 3", nil, 7},
		{"grouping", "(1 + 2) * 3", nil, 9},
		{"left-assoc", "2 - 3 - 1", nil, -2},
		{"left-assoc-inner", "10 - 2 * 3 - 1", nil, 3},
		{"left-assoc-div", "1 - 6 / 2 - 1", nil, -3},
		{"left-assoc-mixed", "1 - 2 * 3 + 4", nil, -1},
		{"unary", "-2 + 3", nil, 1},
		{"unary-tight", "-2 * 3", nil, -6},
		{"pow", "pow(2, 3)", nil, 8},
		{"max", "max(1, 5, 3)", nil, 5},
		{"min", "min(4, 2, 9)", nil, 2},
		{"mod", "10 % 3", nil, 1},
		{"pi", "pi * 2", nil, 2 * math.Pi},
		{"nested", "pow(2, pow(2, 3))", nil, 256},

		{"ternary", "1 > 0 ? 10 : 20", []expr.Option{expr.BooleanSymbols()}, 10},
		{"ternary-false", "0 > 1 ? 10 : 20", []expr.Option{expr.BooleanSymbols()}, 20},
		{"ternary-dense", "1>0?10:20", []expr.Option{expr.BooleanSymbols()}, 10},
		{"elvis", "5 ?: 2", []expr.Option{expr.BooleanSymbols()}, 5},
		{"elvis-fallback", "0 ?: 2", []expr.Option{expr.BooleanSymbols()}, 2},
		{"truth", "true + false", []expr.Option{expr.BooleanSymbols()}, 1},
		{"not", "!0 + !3", []expr.Option{expr.BooleanSymbols()}, 1},

		{"constant", "x + 2", []expr.Option{expr.Constant("x", 40)}, 42},
		{"constants", "a * b", []expr.Option{expr.Constants(map[string]float64{"a": 6, "b": 7})}, 42},
		{"shadow-builtin", "pi", []expr.Option{expr.Constant("pi", 3)}, 3},
		{"no-fold", "pow(2, 10) / 4", []expr.Option{expr.DisableOptimizations()}, 256},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := expr.NewExpression(c.src, c.opts...).Evaluate()
			if err != nil {
				t.Fatalf("Evaluate(%q) failed: %v", c.src, err)
			}
			if v != c.want {
				t.Errorf("Evaluate(%q) = %g; want %g", c.src, v, c.want)
			}
		})
	}
}

func TestEvaluateArityMismatch(t *testing.T) {
	_, err := expr.NewExpression("sqrt(1, 2)").Evaluate()
	require.Error(t, err)
	var arity *expr.ArityMismatchError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, "sqrt", arity.Symbol.Name)
	assert.Equal(t, expr.Exactly(1), arity.Symbol.Arity)
	assert.Equal(t, "function sqrt (1 argument) expects 1 argument", err.Error())
}

func TestEvaluateArrays(t *testing.T) {
	a := expr.Arrays(map[string][]float64{"a": {10, 20, 30}})

	v, err := expr.NewExpression("a[1]", a).Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)

	v, err = expr.NewExpression("a[1 + 1]", a).Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 30.0, v)

	_, err = expr.NewExpression("a[5]", a).Evaluate()
	var bounds *expr.ArrayBoundsError
	require.ErrorAs(t, err, &bounds)
	assert.Equal(t, 5.0, bounds.Index)

	_, err = expr.NewExpression("a[1.5]", a).Evaluate()
	require.ErrorAs(t, err, &bounds)
	assert.Equal(t, 1.5, bounds.Index)

	_, err = expr.NewExpression("a[-1]", a).Evaluate()
	require.ErrorAs(t, err, &bounds)
}

func TestEvaluateUndefined(t *testing.T) {
	_, err := expr.NewExpression("foo(1)").Evaluate()
	var undef *expr.UndefinedSymbolError
	require.ErrorAs(t, err, &undef)
	assert.Equal(t, expr.Function("foo", expr.Exactly(1)), undef.Symbol)

	_, err = expr.NewExpression("x + 1").Evaluate()
	require.ErrorAs(t, err, &undef)
	assert.Equal(t, expr.Variable("x"), undef.Symbol)
}

func TestEvaluateParseError(t *testing.T) {
	_, err := expr.NewExpression("1 2").Evaluate()
	var unexpected *expr.UnexpectedTokenError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, "2", unexpected.Token)

	// Evaluation is all-or-nothing: one bad argument fails the call even
	// though its siblings parsed.
	_, err = expr.NewExpression("max(1 2, 5)").Evaluate()
	require.ErrorAs(t, err, &unexpected)
}

func TestFolding(t *testing.T) {
	e := expr.NewExpression("1 + 2")
	assert.Equal(t, "3", e.String())
	assert.Empty(t, e.Symbols())

	e = expr.NewExpression("x + 2")
	assert.Equal(t, "x + 2", e.String())
	assert.Equal(t, map[expr.Symbol]bool{expr.Variable("x"): true}, e.Symbols())

	e = expr.NewExpression("x + 2", expr.Constant("x", 5))
	assert.Equal(t, "7", e.String())
	assert.Empty(t, e.Symbols())

	e = expr.NewExpression("1 + 2", expr.DisableOptimizations())
	assert.Equal(t, "1 + 2", e.String())
	v, err := e.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestImpureSymbolsNotFolded(t *testing.T) {
	calls := 0
	e := expr.NewExpression("tick() + tick()", expr.Symbols(map[expr.Symbol]expr.Evaluator{
		expr.Function("tick", expr.Exactly(0)): func([]float64) (float64, error) {
			calls++
			return float64(calls), nil
		},
	}))
	require.Equal(t, 0, calls, "impure symbols must not be evaluated during binding")

	v, err := e.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 3.0, v) // 1 + 2
	assert.Contains(t, e.Symbols(), expr.Function("tick", expr.Exactly(0)))
}

func TestPureSymbolsFold(t *testing.T) {
	table := expr.Symbols(map[expr.Symbol]expr.Evaluator{
		expr.Function("double", expr.Exactly(1)): func(args []float64) (float64, error) {
			return 2 * args[0], nil
		},
	})

	e := expr.NewExpression("double(4)", table, expr.PureSymbols())
	assert.Equal(t, "8", e.String())
	assert.Empty(t, e.Symbols())

	e = expr.NewExpression("double(4)", table)
	assert.Equal(t, "double(4)", e.String())
	assert.Contains(t, e.Symbols(), expr.Function("double", expr.Exactly(1)))
}

func TestBind(t *testing.T) {
	parsed, err := expr.ParseStrict("width * 50%")
	require.NoError(t, err)

	width := 640.0
	impure := func(sym expr.Symbol) expr.Evaluator {
		switch sym {
		case expr.Variable("width"):
			return func([]float64) (float64, error) { return width, nil }
		case expr.Postfix("%"):
			return func(args []float64) (float64, error) { return args[0] / 100, nil }
		}
		return nil
	}
	pure := func(sym expr.Symbol) expr.Evaluator {
		if sym == (expr.Infix("*")) {
			return func(args []float64) (float64, error) { return args[0] * args[1], nil }
		}
		return nil
	}

	e := expr.Bind(parsed, impure, pure)
	v, err := e.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 320.0, v)

	// Impure symbols read their state at every evaluation.
	width = 100
	v, err = e.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, 50.0, v)

	assert.Contains(t, e.Symbols(), expr.Variable("width"))
	assert.Contains(t, e.Symbols(), expr.Postfix("%"))
	assert.NotContains(t, e.Symbols(), expr.Infix("*"))
}

func TestConditionalSynthesis(t *testing.T) {
	// With ? and : bound separately, ?: is assembled from the pair.
	e := expr.NewExpression("1 ? 10 : 20", expr.Symbols(map[expr.Symbol]expr.Evaluator{
		expr.Infix("?"): func(args []float64) (float64, error) {
			if args[0] != 0 {
				return args[1], nil
			}
			return 0, nil
		},
		expr.Infix(":"): func(args []float64) (float64, error) {
			return args[0] + args[1]/1000, nil
		},
	}))
	v, err := e.Evaluate()
	require.NoError(t, err)
	assert.InDelta(t, 10.02, v, 1e-12)
}

func TestEvaluateConcurrent(t *testing.T) {
	e := expr.NewExpression("pow(2, 10) / 4", expr.DisableOptimizations())
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				v, err := e.Evaluate()
				if err != nil {
					errs <- err
					return
				}
				if v != 256 {
					errs <- fmt.Errorf("got %g, want 256", v)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func BenchmarkEvaluate(b *testing.B) {
	e := expr.NewExpression("pow(x, 2) + 3 * x - 1", expr.Constant("x", 7), expr.DisableOptimizations())
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := e.Evaluate(); err != nil {
			b.Fatal(err)
		}
	}
}

func ExampleNewExpression() {
	e := expr.NewExpression("pow(x, 2) + 1", expr.Constant("x", 3))
	v, err := e.Evaluate()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(v)
	// Output: 10
}
