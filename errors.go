package expr

import "strconv"

// UnexpectedTokenError indicates input that could not be recognized as part
// of an expression. An empty Token means the parser expected an expression
// and found nothing at all.
type UnexpectedTokenError struct {
	// Token is the offending text.
	Token string
}

func (err *UnexpectedTokenError) Error() string {
	if err.Token == "" {
		return "empty expression"
	}
	return "unexpected token " + strconv.Quote(err.Token)
}

// MissingDelimiterError indicates an expected closing token that never
// appeared, e.g. an unterminated argument list or quoted identifier.
type MissingDelimiterError struct {
	// Delim is the delimiter that was expected.
	Delim string
}

func (err *MissingDelimiterError) Error() string {
	return "missing " + strconv.Quote(err.Delim)
}

// UndefinedSymbolError indicates a symbol with no evaluator bound to it.
type UndefinedSymbolError struct {
	// Symbol is the symbol that was not resolved.
	Symbol Symbol
}

func (err *UndefinedSymbolError) Error() string {
	return "undefined " + err.Symbol.String()
}

// ArityMismatchError indicates a symbol applied to the wrong number of
// arguments. Symbol carries the expected arity, not the arity of the call.
type ArityMismatchError struct {
	// Symbol is the known symbol whose declared arity was not matched.
	Symbol Symbol
}

func (err *ArityMismatchError) Error() string {
	if err.Symbol.Kind == SymbolArray || err.Symbol.Kind == SymbolInfix && err.Symbol.Name == "[]" {
		return err.Symbol.String() + " expects 1 index"
	}
	return err.Symbol.String() + " expects " + err.Symbol.Arity.describe()
}

// DepthLimitError indicates an expression whose nesting or operator chain
// is too deep to build safely.
type DepthLimitError struct{}

func (err *DepthLimitError) Error() string {
	return "expression nests too deeply"
}

// ArrayBoundsError indicates an array subscript outside the array, or one
// that is not an integer.
type ArrayBoundsError struct {
	// Symbol is the array that was indexed.
	Symbol Symbol
	// Index is the runtime value of the subscript.
	Index float64
}

func (err *ArrayBoundsError) Error() string {
	return "index " + formatNumber(err.Index) + " out of bounds for " + err.Symbol.String()
}

var (
	_ error = (*UnexpectedTokenError)(nil)
	_ error = (*MissingDelimiterError)(nil)
	_ error = (*UndefinedSymbolError)(nil)
	_ error = (*DepthLimitError)(nil)
	_ error = (*ArityMismatchError)(nil)
	_ error = (*ArrayBoundsError)(nil)
)
