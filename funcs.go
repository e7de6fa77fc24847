package expr

import "math"

// Helper constructors adapting plain float functions to Evaluator. The
// argument counts are guaranteed by the arity recorded on the symbol each
// evaluator is registered under.

func constEval(v float64) Evaluator {
	return func([]float64) (float64, error) { return v, nil }
}

func unary(f func(float64) float64) Evaluator {
	return func(args []float64) (float64, error) { return f(args[0]), nil }
}

func binary(f func(a, b float64) float64) Evaluator {
	return func(args []float64) (float64, error) { return f(args[0], args[1]), nil }
}

// variadic reduces two or more arguments pairwise from the left.
func variadic(f func(a, b float64) float64) Evaluator {
	return func(args []float64) (float64, error) {
		v := args[0]
		for _, a := range args[1:] {
			v = f(v, a)
		}
		return v, nil
	}
}

func comparison(f func(a, b float64) bool) Evaluator {
	return func(args []float64) (float64, error) {
		if f(args[0], args[1]) {
			return 1, nil
		}
		return 0, nil
	}
}

func errorEval(err error) Evaluator {
	return func([]float64) (float64, error) { return 0, err }
}

// arrayEval returns the evaluator for indexing a fixed slice of values.
// The index must be an exact integer within range; anything else is an
// ArrayBoundsError carrying the runtime index value.
func arrayEval(sym Symbol, values []float64) Evaluator {
	vals := append([]float64(nil), values...)
	return func(args []float64) (float64, error) {
		idx := args[0]
		i := int(idx)
		if float64(i) != idx || i < 0 || i >= len(vals) {
			return 0, &ArrayBoundsError{Symbol: sym, Index: idx}
		}
		return vals[i], nil
	}
}

// mathSymbols is the always-available pure builtin table.
var mathSymbols = map[Symbol]Evaluator{
	Variable("pi"): constEval(math.Pi),

	Infix("+"): binary(func(a, b float64) float64 { return a + b }),
	Infix("-"): binary(func(a, b float64) float64 { return a - b }),
	Infix("*"): binary(func(a, b float64) float64 { return a * b }),
	Infix("/"): binary(func(a, b float64) float64 { return a / b }),
	Infix("%"): binary(math.Mod),

	Prefix("-"): unary(func(v float64) float64 { return -v }),

	Function("sqrt", Exactly(1)):  unary(math.Sqrt),
	Function("floor", Exactly(1)): unary(math.Floor),
	Function("ceil", Exactly(1)):  unary(math.Ceil),
	Function("round", Exactly(1)): unary(math.Round),
	Function("cos", Exactly(1)):   unary(math.Cos),
	Function("acos", Exactly(1)):  unary(math.Acos),
	Function("sin", Exactly(1)):   unary(math.Sin),
	Function("asin", Exactly(1)):  unary(math.Asin),
	Function("tan", Exactly(1)):   unary(math.Tan),
	Function("atan", Exactly(1)):  unary(math.Atan),
	Function("abs", Exactly(1)):   unary(math.Abs),

	Function("pow", Exactly(2)):   binary(math.Pow),
	Function("atan2", Exactly(2)): binary(math.Atan2),
	Function("mod", Exactly(2)):   binary(math.Mod),

	Function("max", AtLeast(2)): variadic(math.Max),
	Function("min", AtLeast(2)): variadic(math.Min),
}

// boolSymbols is the opt-in boolean table. Truth values are 1 and 0 and
// any non-zero argument counts as true. The logical operators do not
// short-circuit: arguments are plain subtrees, so both sides are always
// evaluated.
var boolSymbols = map[Symbol]Evaluator{
	Variable("true"):  constEval(1),
	Variable("false"): constEval(0),

	Infix("=="): comparison(func(a, b float64) bool { return a == b }),
	Infix("!="): comparison(func(a, b float64) bool { return a != b }),
	Infix(">"):  comparison(func(a, b float64) bool { return a > b }),
	Infix(">="): comparison(func(a, b float64) bool { return a >= b }),
	Infix("<"):  comparison(func(a, b float64) bool { return a < b }),
	Infix("<="): comparison(func(a, b float64) bool { return a <= b }),

	Infix("&&"): comparison(func(a, b float64) bool { return a != 0 && b != 0 }),
	Infix("||"): comparison(func(a, b float64) bool { return a != 0 || b != 0 }),

	Prefix("!"): unary(func(v float64) float64 {
		if v == 0 {
			return 1
		}
		return 0
	}),

	// The conditional accepts two or three arguments: "a ?: b" is a with
	// b as the fallback when a is zero.
	Infix("?:"): func(args []float64) (float64, error) {
		if args[0] != 0 {
			if len(args) == 2 {
				return args[0], nil
			}
			return args[1], nil
		}
		return args[len(args)-1], nil
	},
}
