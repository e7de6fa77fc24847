package expr

import (
	"strconv"
	"strings"
)

// exprKind is the tag distinguishing the cases of a subexpression.
type exprKind int8

const (
	exprNone exprKind = iota
	exprLiteral
	exprSymbol
	exprError
)

// subexpression is one node of a parsed expression tree. It is a tagged
// union: literals carry num, symbol applications carry sym, args, and
// (after binding) fn, and error leaves carry err along with the source
// text they were scanned from. Nodes are plain values; trees share no
// state and are never mutated after construction, so binding builds a
// new tree rather than writing into this one.
type subexpression struct {
	kind exprKind
	num  float64
	sym  Symbol
	args []subexpression
	fn   Evaluator
	err  error
	text string
}

// literalNode returns a literal leaf.
func literalNode(v float64) subexpression {
	return subexpression{kind: exprLiteral, num: v}
}

// symbolNode returns a symbol reference with no arguments.
func symbolNode(sym Symbol) subexpression {
	return subexpression{kind: exprSymbol, sym: sym}
}

// symbolNodeArgs returns a symbol applied to arguments.
func symbolNodeArgs(sym Symbol, args []subexpression) subexpression {
	return subexpression{kind: exprSymbol, sym: sym, args: args}
}

// errorLeaf returns an error leaf remembering the source text it came from.
// The text is what the printer emits for the leaf, so an invalid expression
// prints back to itself.
func errorLeaf(err error, text string) subexpression {
	return subexpression{kind: exprError, err: err, text: text}
}

// operand reports whether the node can serve as the left-hand side of an
// infix or postfix operator: literals, error leaves, and any symbol other
// than a pending (argumentless) prefix or infix operator.
func (s *subexpression) operand() bool {
	switch s.kind {
	case exprLiteral, exprError:
		return true
	case exprSymbol:
		switch s.sym.Kind {
		case SymbolInfix, SymbolPrefix:
			return len(s.args) > 0
		default:
			return true
		}
	}
	return false
}

// firstError returns the error of the leftmost error leaf in the tree, or
// nil if the tree parsed cleanly.
func (s *subexpression) firstError() error {
	if s.kind == exprError {
		return s.err
	}
	for i := range s.args {
		if err := s.args[i].firstError(); err != nil {
			return err
		}
	}
	return nil
}

// collectSymbols adds every symbol referenced in the tree to set.
func (s *subexpression) collectSymbols(set map[Symbol]bool) {
	if s.kind == exprSymbol {
		set[s.sym] = true
	}
	for i := range s.args {
		s.args[i].collectSymbols(set)
	}
}

// tokenText renders the node as the single token it was scanned from, for
// error messages about misplaced tokens.
func (s *subexpression) tokenText() string {
	switch s.kind {
	case exprLiteral:
		return formatNumber(s.num)
	case exprError:
		return s.text
	default:
		return s.sym.Name
	}
}

// formatNumber renders a float64 in the shortest form that parses back to
// the same value.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// printPrecedence returns the precedence and associativity governing how
// the node binds when printed, and whether the node is an applied operator
// at all. Atomic nodes (literals, variables, calls, error leaves) never
// need parentheses around themselves.
func (s *subexpression) printPrecedence() (prec int8, right, applied bool) {
	if s.kind != exprSymbol || len(s.args) == 0 {
		return 0, false, false
	}
	switch s.sym.Kind {
	case SymbolInfix:
		if s.sym.Name == "?:" && len(s.args) == 3 {
			// A full conditional prints as ? and : again.
			op := binop("?")
			return op.prec, op.right, true
		}
		op := binop(s.sym.Name)
		return op.prec, op.right, true
	case SymbolPrefix, SymbolPostfix:
		op := binop("[]")
		return op.prec, op.right, true
	}
	return 0, false, false
}

// String renders the tree back to source text with minimal parentheses:
// a child is wrapped only when re-parsing the flat text would regroup it.
func (s *subexpression) String() string {
	var b strings.Builder
	s.print(&b)
	return b.String()
}

func (s *subexpression) print(b *strings.Builder) {
	switch s.kind {
	case exprLiteral:
		b.WriteString(formatNumber(s.num))
	case exprError:
		b.WriteString(s.text)
	case exprSymbol:
		s.printSymbol(b)
	default:
		b.WriteString("<invalid>")
	}
}

func (s *subexpression) printSymbol(b *strings.Builder) {
	sym := s.sym
	switch {
	case len(s.args) == 0:
		b.WriteString(sym.displayName())
	case sym.Kind == SymbolPrefix:
		b.WriteString(sym.displayName())
		arg := &s.args[0]
		// A prefix argument that is itself an applied prefix or infix must
		// be wrapped, or the flat text would rescan as one longer operator
		// or regroup under precedence.
		if _, _, applied := arg.printPrecedence(); applied && arg.sym.Kind != SymbolPostfix {
			b.WriteByte('(')
			arg.print(b)
			b.WriteByte(')')
		} else {
			arg.print(b)
		}
	case sym.Kind == SymbolPostfix:
		arg := &s.args[0]
		if _, _, applied := arg.printPrecedence(); applied {
			b.WriteByte('(')
			arg.print(b)
			b.WriteByte(')')
		} else {
			arg.print(b)
		}
		b.WriteString(sym.displayName())
	case sym.Kind == SymbolFunction && sym.Name == "[]":
		// Literal array construction.
		b.WriteByte('[')
		s.printArgs(b, s.args)
		b.WriteByte(']')
	case sym.Kind == SymbolFunction:
		b.WriteString(sym.displayName())
		b.WriteByte('(')
		s.printArgs(b, s.args)
		b.WriteByte(')')
	case sym.Kind == SymbolArray:
		b.WriteString(sym.displayName())
		b.WriteByte('[')
		s.args[0].print(b)
		b.WriteByte(']')
	case sym.Kind == SymbolInfix && sym.Name == "()":
		s.printCallee(b, &s.args[0])
		b.WriteByte('(')
		s.printArgs(b, s.args[1:])
		b.WriteByte(')')
	case sym.Kind == SymbolInfix && sym.Name == "[]":
		s.printCallee(b, &s.args[0])
		b.WriteByte('[')
		s.args[1].print(b)
		b.WriteByte(']')
	case sym.Kind == SymbolInfix && sym.Name == "?:" && len(s.args) == 3:
		prec, right, _ := s.printPrecedence()
		s.printChild(b, &s.args[0], prec, right, true)
		b.WriteString(" ? ")
		s.printChild(b, &s.args[1], prec, right, false)
		b.WriteString(" : ")
		s.printChild(b, &s.args[2], prec, right, false)
	case sym.Kind == SymbolInfix && len(s.args) == 2:
		prec, right, _ := s.printPrecedence()
		s.printChild(b, &s.args[0], prec, right, true)
		b.WriteByte(' ')
		b.WriteString(sym.displayName())
		b.WriteByte(' ')
		s.printChild(b, &s.args[1], prec, right, false)
	default:
		// An operator applied at an arity the printer has no flat spelling
		// for; render it as a call so the output still scans.
		b.WriteString(sym.displayName())
		b.WriteByte('(')
		s.printArgs(b, s.args)
		b.WriteByte(')')
	}
}

// printChild prints an infix operand, parenthesizing it when its own
// precedence would regroup under the parent on re-parse.
func (s *subexpression) printChild(b *strings.Builder, child *subexpression, prec int8, right, isLeft bool) {
	cprec, _, applied := child.printPrecedence()
	wrap := false
	if applied {
		switch {
		case cprec < prec:
			wrap = true
		case cprec == prec:
			// On the associative side the grouping is implied; on the other
			// side it must be spelled out.
			wrap = isLeft == right
		}
	}
	if wrap {
		b.WriteByte('(')
		child.print(b)
		b.WriteByte(')')
	} else {
		child.print(b)
	}
}

// printCallee prints the target of a subscript or call-on-expression,
// which binds tighter than anything else and so wraps every applied
// operator.
func (s *subexpression) printCallee(b *strings.Builder, callee *subexpression) {
	if _, _, applied := callee.printPrecedence(); applied {
		b.WriteByte('(')
		callee.print(b)
		b.WriteByte(')')
	} else {
		callee.print(b)
	}
}

func (s *subexpression) printArgs(b *strings.Builder, args []subexpression) {
	for i := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		args[i].print(b)
	}
}
