package expr

import "strconv"

// Arity is the number of arguments a function accepts, either an exact count
// or a minimum. The zero value is "exactly zero arguments".
type Arity struct {
	// N is the required argument count, or the minimum count if AtLeast.
	N int
	// AtLeast marks N as a lower bound rather than an exact requirement.
	AtLeast bool
}

// Exactly returns the arity of a function taking exactly n arguments.
func Exactly(n int) Arity {
	return Arity{N: n}
}

// AtLeast returns the arity of a variadic function taking n or more
// arguments.
func AtLeast(n int) Arity {
	return Arity{N: n, AtLeast: true}
}

// Matches reports whether a call site with arity call satisfies the declared
// arity a. An "at least n" declaration is satisfied by any exact count of n
// or more, which lets a single variadic declaration match every call site.
func (a Arity) Matches(call Arity) bool {
	switch {
	case a.AtLeast && call.AtLeast:
		return true
	case a.AtLeast:
		return call.N >= a.N
	case call.AtLeast:
		return a.N >= call.N
	default:
		return a.N == call.N
	}
}

func (a Arity) String() string {
	if a.AtLeast {
		return "at least " + strconv.Itoa(a.N)
	}
	return strconv.Itoa(a.N)
}

// describe renders the arity for error messages, with a unit.
func (a Arity) describe() string {
	if a.N == 1 && !a.AtLeast {
		return "1 argument"
	}
	return a.String() + " arguments"
}

// SymbolKind distinguishes the ways a name can be used in an expression.
type SymbolKind int8

const (
	// SymbolVariable is a bare named value, e.g. "pi" or "x".
	SymbolVariable SymbolKind = iota
	// SymbolInfix is a binary operator between two operands, e.g. "+".
	SymbolInfix
	// SymbolPrefix is a unary operator before its operand, e.g. "-" in "-x".
	SymbolPrefix
	// SymbolPostfix is a unary operator after its operand, e.g. "%" in "50%".
	SymbolPostfix
	// SymbolFunction is a named call with a fixed or minimum argument count.
	SymbolFunction
	// SymbolArray is a named indexed collection, e.g. "a" in "a[0]".
	SymbolArray
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolInfix:
		return "infix operator"
	case SymbolPrefix:
		return "prefix operator"
	case SymbolPostfix:
		return "postfix operator"
	case SymbolFunction:
		return "function"
	case SymbolArray:
		return "array"
	default:
		return "symbol"
	}
}

// Symbol identifies a named value or operator in an expression. Symbols are
// comparable and usable as map keys. Two function symbols are equal only if
// their arities are equal as well; every other kind compares by kind and
// name alone, since constructors leave Arity zero for them.
type Symbol struct {
	Kind SymbolKind
	Name string
	// Arity is meaningful only when Kind is SymbolFunction.
	Arity Arity
}

// Variable returns the symbol for a bare named value.
func Variable(name string) Symbol {
	return Symbol{Kind: SymbolVariable, Name: name}
}

// Infix returns the symbol for a binary operator.
func Infix(name string) Symbol {
	return Symbol{Kind: SymbolInfix, Name: name}
}

// Prefix returns the symbol for a unary operator preceding its operand.
func Prefix(name string) Symbol {
	return Symbol{Kind: SymbolPrefix, Name: name}
}

// Postfix returns the symbol for a unary operator following its operand.
func Postfix(name string) Symbol {
	return Symbol{Kind: SymbolPostfix, Name: name}
}

// Function returns the symbol for a named call with the given arity.
func Function(name string, arity Arity) Symbol {
	return Symbol{Kind: SymbolFunction, Name: name, Arity: arity}
}

// Array returns the symbol for a named indexed collection.
func Array(name string) Symbol {
	return Symbol{Kind: SymbolArray, Name: name}
}

// displayName renders the symbol's name, quoting it if it is not a valid
// identifier or operator on its own.
func (s Symbol) displayName() string {
	switch s.Name {
	case "()", "[]":
		// Structural pseudo-operators built by the parser.
		return s.Name
	}
	return EscapeIdentifier(s.Name)
}

func (s Symbol) String() string {
	if s.Kind == SymbolFunction {
		return "function " + s.displayName() + " (" + s.Arity.describe() + ")"
	}
	return s.Kind.String() + " " + s.displayName()
}
