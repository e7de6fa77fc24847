package expr

import "strings"

// operator is a precedence table entry.
type operator struct {
	prec  int8
	right bool
}

var comparisonOps = map[string]bool{
	"<": true, "<=": true, ">=": true, ">": true,
	"==": true, "!=": true, "===": true, "!==": true,
	"lt": true, "le": true, "lte": true,
	"gt": true, "ge": true, "gte": true,
	"eq": true, "ne": true,
}

var assignmentOps = map[string]bool{
	"=": true, "*=": true, "/=": true, "%=": true, "+=": true, "-=": true,
	"<<=": true, ">>=": true, "&=": true, "^=": true, "|=": true, ":=": true,
}

// binop returns the precedence and associativity of an infix operator.
// Unlisted operators bind at precedence 0, left-associative, alongside the
// additive operators. Comparison operators are right-associative so that
// chained comparisons group deterministically.
func binop(name string) operator {
	switch name {
	case "[]":
		return operator{prec: 100, right: true}
	case "<<", ">>":
		return operator{prec: 2}
	case "*", "/", "%", "&":
		return operator{prec: 1}
	case "..", "...", "..<":
		return operator{prec: -1}
	case "is", "as", "isa":
		return operator{prec: -2}
	case "??", "?:":
		return operator{prec: -3, right: true}
	case "&&", "||":
		return operator{prec: -5}
	case "?", ":":
		return operator{prec: -6, right: true}
	case ",":
		return operator{prec: -100}
	}
	if comparisonOps[name] {
		return operator{prec: -4, right: true}
	}
	if assignmentOps[name] {
		return operator{prec: -7, right: true}
	}
	return operator{}
}

// takesPrecedence reports whether the operator named next binds tighter
// than the operator named prev when both compete for the operand between
// them. Ties go to next only when next is right-associative.
func takesPrecedence(next, prev string) bool {
	n, p := binop(next), binop(prev)
	return n.prec > p.prec || n.prec == p.prec && n.right
}

// parser accumulates scanned tokens on a stack and collapses them into a
// single tree once the input (or a stop delimiter) is reached.
type parser struct {
	cur        *Cursor
	delimiters []string
	stack      []subexpression
	depth      int
}

// Nesting and length limits bound the depth of the trees the parser will
// build, so adversarial input fails with an error instead of exhausting
// the call stack here or in a later tree walk.
const (
	maxNestingDepth = 1000
	maxStackLen     = 1 << 16
)

// parseHook, when set, observes every source string handed to the
// tokenizer. Tests use it to count cache misses.
var parseHook func(source string)

// parseExpression parses source completely. Structural errors do not
// propagate: they are captured as an error leaf over the whole source
// text, so the result always prints back to its input.
func parseExpression(source string) subexpression {
	if parseHook != nil {
		parseHook(source)
	}
	cur := NewCursor(source)
	node, err := parseSubexpr(cur, nil, 0)
	if err == nil && !cur.Empty() {
		err = &UnexpectedTokenError{Token: cur.Rest()}
	}
	if err != nil {
		return errorLeaf(err, source)
	}
	return node
}

func parseSubexpr(cur *Cursor, delimiters []string, depth int) (subexpression, error) {
	p := &parser{cur: cur, delimiters: delimiters, depth: depth}
	return p.parse()
}

func (p *parser) parse() (subexpression, error) {
	if p.depth > maxNestingDepth {
		return subexpression{}, &DepthLimitError{}
	}
	// The start of input counts as whitespace for operator classification.
	wsBefore := true
	for {
		if p.cur.skipWhitespace() {
			wsBefore = true
		}
		if p.cur.Empty() || p.atDelimiter() {
			break
		}
		if node, ok := p.cur.scanNumber(); ok {
			p.stack = append(p.stack, node)
		} else if name, ok := p.cur.scanIdentifier(); ok {
			p.stack = append(p.stack, symbolNode(Variable(name)))
		} else if op, ok := p.cur.scanOperator(); ok {
			if err := p.handleOperator(op, wsBefore); err != nil {
				return subexpression{}, err
			}
		} else if node, ok := p.cur.scanEscapedIdentifier(); ok {
			p.stack = append(p.stack, node)
		} else {
			return subexpression{}, &UnexpectedTokenError{Token: p.cur.Rest()}
		}
		if len(p.stack) > maxStackLen {
			return subexpression{}, &DepthLimitError{}
		}
		wsBefore = false
	}
	return p.finish()
}

func (p *parser) atDelimiter() bool {
	for _, d := range p.delimiters {
		if p.cur.hasPrefix(d) {
			return true
		}
	}
	return false
}

func (p *parser) top() *subexpression {
	if len(p.stack) == 0 {
		return nil
	}
	return &p.stack[len(p.stack)-1]
}

// handleOperator dispatches a scanned operator token. Parentheses,
// brackets, and commas are structural; everything else is classified as
// infix, prefix, or postfix from the whitespace around it: spaced on both
// sides or on neither side means infix, spaced before only means prefix,
// spaced after only means postfix.
func (p *parser) handleOperator(op string, wsBefore bool) error {
	switch op {
	case "(":
		return p.handleCall()
	case "[":
		return p.handleSubscript()
	case ",":
		return &UnexpectedTokenError{Token: ","}
	}
	wsAfter := p.cur.followedByWhitespace()
	switch {
	case wsBefore == wsAfter:
		p.pushOperator(Infix(op))
	case wsBefore:
		p.pushOperator(Prefix(op))
	default:
		p.pushOperator(Postfix(op))
	}
	return nil
}

// pushOperator places a classified operator on the stack. The whitespace
// classification is a heuristic, so two corrections apply here: a postfix
// operator with no operand to its left must really be a prefix, and a
// prefix operator directly after an operand must really be an infix.
func (p *parser) pushOperator(sym Symbol) {
	top := p.top()
	switch sym.Kind {
	case SymbolPostfix:
		if top != nil && top.operand() {
			*top = symbolNodeArgs(sym, []subexpression{*top})
			return
		}
		p.stack = append(p.stack, symbolNode(Prefix(sym.Name)))
	case SymbolPrefix:
		if top != nil && top.operand() {
			p.stack = append(p.stack, symbolNode(Infix(sym.Name)))
			return
		}
		p.stack = append(p.stack, symbolNode(sym))
	default:
		p.stack = append(p.stack, symbolNode(sym))
	}
}

// handleCall consumes a parenthesized, comma-separated argument list. A
// bare variable before the parenthesis becomes a function call, any other
// operand becomes a call through the synthetic "()" operator, and with no
// operand at all the parentheses are plain grouping.
func (p *parser) handleCall() error {
	args, err := p.parseArgList(")")
	if err != nil {
		return err
	}
	if top := p.top(); top != nil && top.operand() {
		if top.kind == exprSymbol && top.sym.Kind == SymbolVariable && len(top.args) == 0 {
			*top = symbolNodeArgs(Function(top.sym.Name, Exactly(len(args))), args)
			return nil
		}
		*top = symbolNodeArgs(Infix("()"), append([]subexpression{*top}, args...))
		return nil
	}
	switch len(args) {
	case 1:
		p.stack = append(p.stack, args[0])
		return nil
	case 0:
		p.stack = append(p.stack, errorLeaf(&UnexpectedTokenError{}, "()"))
		return nil
	default:
		return &UnexpectedTokenError{Token: ","}
	}
}

// handleSubscript consumes a bracketed argument list. A bare variable
// before the bracket becomes an array index (exactly one argument), any
// other operand becomes a subscript through the synthetic "[]" operator,
// and with no operand the brackets construct a literal array.
func (p *parser) handleSubscript() error {
	args, err := p.parseArgList("]")
	if err != nil {
		return err
	}
	if top := p.top(); top != nil && top.operand() {
		if top.kind == exprSymbol && top.sym.Kind == SymbolVariable && len(top.args) == 0 {
			sym := Array(top.sym.Name)
			if len(args) != 1 {
				text := subscriptText(top.sym.displayName(), args)
				*top = errorLeaf(&ArityMismatchError{Symbol: sym}, text)
				return nil
			}
			*top = symbolNodeArgs(sym, args)
			return nil
		}
		if len(args) != 1 {
			text := subscriptText(top.String(), args)
			*top = errorLeaf(&ArityMismatchError{Symbol: Infix("[]")}, text)
			return nil
		}
		*top = symbolNodeArgs(Infix("[]"), []subexpression{*top, args[0]})
		return nil
	}
	p.stack = append(p.stack, symbolNodeArgs(Function("[]", Exactly(len(args))), args))
	return nil
}

func subscriptText(base string, args []subexpression) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteByte('[')
	for i := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		args[i].print(&b)
	}
	b.WriteByte(']')
	return b.String()
}

// parseArgList parses comma-separated expressions up to the closing
// delimiter, consuming it. An argument that fails to parse is captured as
// an error leaf over its source fragment and skipped, so its siblings
// still parse; only a missing closer fails the whole list.
func (p *parser) parseArgList(close string) ([]subexpression, error) {
	var args []subexpression
	p.cur.skipWhitespace()
	if p.cur.scanString(close) {
		return args, nil
	}
	delims := []string{",", close}
	for {
		mark := p.cur.mark()
		node, err := parseSubexpr(p.cur, delims, p.depth+1)
		if err != nil {
			if !p.cur.skipTo(delims) {
				return args, &MissingDelimiterError{Delim: close}
			}
			node = errorLeaf(err, strings.TrimSpace(p.cur.since(mark)))
		}
		args = append(args, node)
		p.cur.skipWhitespace()
		switch {
		case p.cur.scanString(","):
			continue
		case p.cur.scanString(close):
			return args, nil
		default:
			return args, &MissingDelimiterError{Delim: close}
		}
	}
}

// finish collapses the accumulated stack into a single operand.
func (p *parser) finish() (subexpression, error) {
	if len(p.stack) == 0 {
		return subexpression{}, &UnexpectedTokenError{Token: ""}
	}
	if err := p.collapseStack(0); err != nil {
		return subexpression{}, err
	}
	root := p.stack[0]
	if !root.operand() {
		return subexpression{}, &UnexpectedTokenError{Token: root.sym.Name}
	}
	return root, nil
}

// collapseStack reduces stack[i:] to a single operand.
func (p *parser) collapseStack(i int) error {
	return p.collapseBound(i, "")
}

// collapseBound combines operands at i using the precedence table, for as
// long as the leading operator takes precedence over prev; an empty prev
// means no bound. The stack at this point is a run of operands and bare
// operators; prefix runs bind tightest, a trailing bare operator becomes
// a postfix, and adjacent operands are an error unless the left one is an
// applied postfix that can be reopened as an infix.
func (p *parser) collapseBound(i int, prev string) error {
	for len(p.stack) > i+1 {
		lhs := &p.stack[i]
		if !lhs.operand() {
			if err := p.collapsePrefix(i); err != nil {
				return err
			}
			continue
		}
		rhs := &p.stack[i+1]
		if rhs.operand() {
			if lhs.kind == exprSymbol && lhs.sym.Kind == SymbolPostfix && len(lhs.args) == 1 {
				// The postfix really separated two operands, e.g. "2% 3": put
				// its operand back and retry with the operator as an infix.
				arg := lhs.args[0]
				name := lhs.sym.Name
				rest := append([]subexpression{arg, symbolNode(Infix(name))}, p.stack[i+1:]...)
				p.stack = append(p.stack[:i], rest...)
				continue
			}
			return &UnexpectedTokenError{Token: rhs.tokenText()}
		}
		if prev != "" && !takesPrecedence(rhs.sym.Name, prev) {
			// The caller's operator binds at least as tightly; leave the
			// rest of the stack to it.
			return nil
		}
		if len(p.stack) == i+2 {
			// Trailing bare operator becomes a postfix over the operand.
			p.stack[i] = symbolNodeArgs(Postfix(rhs.sym.Name), []subexpression{*lhs})
			p.stack = p.stack[:i+1]
			return nil
		}
		if !p.stack[i+2].operand() {
			if err := p.collapsePrefix(i + 2); err != nil {
				return err
			}
		}
		if len(p.stack) > i+3 {
			next := &p.stack[i+3]
			if next.operand() || takesPrecedence(next.sym.Name, rhs.sym.Name) {
				// The right-hand operand extends rightward, but only while
				// its operators bind tighter than rhs; anything looser comes
				// back to this frame's comparison.
				if err := p.collapseBound(i+2, rhs.sym.Name); err != nil {
					return err
				}
				continue
			}
		}
		node := combineInfix(*lhs, rhs.sym.Name, p.stack[i+2])
		p.stack[i] = node
		p.stack = append(p.stack[:i+1], p.stack[i+3:]...)
	}
	return nil
}

// collapsePrefix reduces the run of bare operators starting at j into a
// nest of prefix applications over the first operand that follows.
func (p *parser) collapsePrefix(j int) error {
	k := j
	for k < len(p.stack) && !p.stack[k].operand() {
		k++
	}
	if k == len(p.stack) {
		return &UnexpectedTokenError{Token: p.stack[len(p.stack)-1].sym.Name}
	}
	node := p.stack[k]
	for m := k - 1; m >= j; m-- {
		node = symbolNodeArgs(Prefix(p.stack[m].sym.Name), []subexpression{node})
	}
	p.stack[j] = node
	p.stack = append(p.stack[:j+1], p.stack[k+1:]...)
	return nil
}

// combineInfix joins two operands under an infix operator. The ternary
// conditional is assembled here: a ":" whose left side is an applied "?"
// pair, or a "?" whose right side is an applied ":" pair, merges into a
// single three-argument "?:" node.
func combineInfix(lhs subexpression, name string, rhs subexpression) subexpression {
	switch {
	case name == ":" && lhs.kind == exprSymbol && lhs.sym == Infix("?") && len(lhs.args) == 2:
		return symbolNodeArgs(Infix("?:"), []subexpression{lhs.args[0], lhs.args[1], rhs})
	case name == "?" && rhs.kind == exprSymbol && rhs.sym == Infix(":") && len(rhs.args) == 2:
		return symbolNodeArgs(Infix("?:"), []subexpression{lhs, rhs.args[0], rhs.args[1]})
	}
	return symbolNodeArgs(Infix(name), []subexpression{lhs, rhs})
}

// ParsedExpression is the immutable result of parsing, before any
// evaluator binding. A failed parse is still a ParsedExpression: the
// failure is embedded in the tree and reported by Err.
type ParsedExpression struct {
	root subexpression
}

// Err returns the leftmost error captured in the expression, or nil if it
// parsed cleanly.
func (p ParsedExpression) Err() error {
	return p.root.firstError()
}

// String renders the expression back to source text with minimal
// parentheses. Re-parsing the result yields an equivalent expression.
func (p ParsedExpression) String() string {
	return p.root.String()
}

// Symbols returns every symbol the expression references, before any
// folding.
func (p ParsedExpression) Symbols() map[Symbol]bool {
	set := make(map[Symbol]bool)
	p.root.collectSymbols(set)
	return set
}

// ParseUncached parses source without consulting the shared cache. It
// never fails; check Err on the result for embedded parse errors.
func ParseUncached(source string) ParsedExpression {
	return ParsedExpression{root: parseExpression(source)}
}

// ParseStrict parses source without the cache and reports any embedded
// parse error immediately instead of deferring it to evaluation.
func ParseStrict(source string) (ParsedExpression, error) {
	p := ParseUncached(source)
	if err := p.Err(); err != nil {
		return ParsedExpression{}, err
	}
	return p, nil
}

// ParseSubexpression parses an expression embedded in a larger document,
// stopping before the first of the given delimiters. The cursor advances
// past the consumed portion; the delimiter itself is left unconsumed.
func ParseSubexpression(cur *Cursor, delimiters ...string) ParsedExpression {
	mark := cur.mark()
	node, err := parseSubexpr(cur, delimiters, 0)
	if err != nil {
		node = errorLeaf(err, cur.since(mark))
	}
	return ParsedExpression{root: node}
}
