package expr

// Expression is a parsed and bound expression, ready to evaluate. It is
// immutable: a single Expression may be evaluated concurrently from many
// goroutines, provided any caller-supplied evaluator tolerates concurrent
// invocation.
type Expression struct {
	root subexpression
	syms map[Symbol]bool
}

// An Option configures how NewExpression binds symbols.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

type config struct {
	constants map[string]float64
	arrays    map[string][]float64
	symbols   map[Symbol]Evaluator
	noFold    bool
	boolean   bool
	pureSyms  bool
}

// Constant defines a named constant. Constants shadow caller-supplied
// symbol tables and builtins, bind pure, and fold away during binding.
func Constant(name string, value float64) Option {
	return optionFunc(func(c *config) {
		if c.constants == nil {
			c.constants = make(map[string]float64)
		}
		c.constants[name] = value
	})
}

// Constants defines named constants in bulk, like repeated Constant
// options.
func Constants(values map[string]float64) Option {
	return optionFunc(func(c *config) {
		if c.constants == nil {
			c.constants = make(map[string]float64, len(values))
		}
		for k, v := range values {
			c.constants[k] = v
		}
	})
}

// Arrays defines named value lists indexable with the a[i] syntax. Arrays
// bind pure, so an index known at bind time folds to its element.
func Arrays(values map[string][]float64) Option {
	return optionFunc(func(c *config) {
		if c.arrays == nil {
			c.arrays = make(map[string][]float64, len(values))
		}
		for k, v := range values {
			c.arrays[k] = v
		}
	})
}

// Symbols supplies caller evaluators keyed by symbol. They bind impure,
// re-evaluated on every call, unless PureSymbols is also given.
func Symbols(table map[Symbol]Evaluator) Option {
	return optionFunc(func(c *config) {
		if c.symbols == nil {
			c.symbols = make(map[Symbol]Evaluator, len(table))
		}
		for k, v := range table {
			c.symbols[k] = v
		}
	})
}

// DisableOptimizations turns off constant folding, keeping every symbol
// node live in the bound tree.
func DisableOptimizations() Option {
	return optionFunc(func(c *config) { c.noFold = true })
}

// BooleanSymbols enables the boolean builtin table: true and false,
// comparison and logical operators, and the ?: conditional.
func BooleanSymbols() Option {
	return optionFunc(func(c *config) { c.boolean = true })
}

// PureSymbols marks every caller-supplied symbol as deterministic and
// eligible for constant folding.
func PureSymbols() Option {
	return optionFunc(func(c *config) { c.pureSyms = true })
}

// NewExpression parses source through the shared cache and binds it with
// the given options. It never fails; parse and binding problems surface
// from Evaluate.
func NewExpression(source string, opts ...Option) *Expression {
	return NewExpressionFrom(Parse(source), opts...)
}

// NewExpressionFrom binds an already-parsed expression with the given
// options.
func NewExpressionFrom(parsed ParsedExpression, opts ...Option) *Expression {
	var c config
	for _, o := range opts {
		o.apply(&c)
	}
	b := &binder{resolve: c.resolve, fold: !c.noFold, syms: make(map[Symbol]bool)}
	return &Expression{root: b.bind(parsed.root), syms: b.syms}
}

// lookupSymbol finds sym in a table, additionally letting a variadic
// function declaration match any call arity it accepts. When several
// declarations match, the one with the highest minimum wins.
func lookupSymbol(table map[Symbol]Evaluator, sym Symbol) Evaluator {
	if fn, ok := table[sym]; ok {
		return fn
	}
	if sym.Kind != SymbolFunction {
		return nil
	}
	var best Evaluator
	bestN := -1
	for key, fn := range table {
		if key.Kind == SymbolFunction && key.Name == sym.Name &&
			key.Arity.Matches(sym.Arity) && key.Arity.N > bestN {
			best, bestN = fn, key.Arity.N
		}
	}
	return best
}

// lookup runs the resolution chain for sym: constants and arrays, then
// the caller's symbol table, then builtins. It does not synthesize error
// evaluators; resolve layers those on top.
func (c *config) lookup(sym Symbol) (resolution, bool) {
	switch sym.Kind {
	case SymbolVariable:
		if v, ok := c.constants[sym.Name]; ok {
			return resolution{fn: constEval(v), pure: true}, true
		}
	case SymbolArray:
		if a, ok := c.arrays[sym.Name]; ok {
			return resolution{fn: arrayEval(sym, a), pure: true}, true
		}
	}
	if fn := lookupSymbol(c.symbols, sym); fn != nil {
		return resolution{fn: fn, pure: c.pureSyms, extern: !c.pureSyms}, true
	}
	if fn := lookupSymbol(mathSymbols, sym); fn != nil {
		return resolution{fn: fn, pure: true}, true
	}
	if c.boolean {
		if fn := lookupSymbol(boolSymbols, sym); fn != nil {
			return resolution{fn: fn, pure: true}, true
		}
	}
	return resolution{}, false
}

func (c *config) resolve(sym Symbol) resolution {
	if res, ok := c.lookup(sym); ok {
		return res
	}
	if sym.Kind == SymbolInfix && sym.Name == "?:" {
		if res, ok := c.conditional(); ok {
			return res
		}
	}
	if want, ok := c.declaredArity(sym); ok {
		return resolution{fn: errorEval(&ArityMismatchError{Symbol: want}), extern: true}
	}
	return resolution{extern: true}
}

// conditional synthesizes a ?: evaluator from separately-bound ? and :
// operators, applying : to the branch values and ? to the condition and
// that result.
func (c *config) conditional() (resolution, bool) {
	q, qok := c.lookup(Infix("?"))
	col, cok := c.lookup(Infix(":"))
	if !qok || !cok {
		return resolution{}, false
	}
	fn := func(args []float64) (float64, error) {
		if len(args) == 2 {
			return q.fn(args)
		}
		v, err := col.fn(args[1:])
		if err != nil {
			return 0, err
		}
		return q.fn([]float64{args[0], v})
	}
	return resolution{
		fn:     fn,
		pure:   q.pure && col.pure,
		extern: q.extern || col.extern,
	}, true
}

// declaredArity reports whether a function with sym's name is declared
// anywhere at a different arity, returning the declared symbol for a
// better diagnostic than "undefined".
func (c *config) declaredArity(sym Symbol) (Symbol, bool) {
	if sym.Kind != SymbolFunction {
		return Symbol{}, false
	}
	tables := []map[Symbol]Evaluator{c.symbols, mathSymbols}
	if c.boolean {
		tables = append(tables, boolSymbols)
	}
	for _, table := range tables {
		for key := range table {
			if key.Kind == SymbolFunction && key.Name == sym.Name {
				return key, true
			}
		}
	}
	return Symbol{}, false
}

// Evaluate computes the expression's value. It is all-or-nothing: an
// error anywhere in the tree means no result. The receiver is not
// mutated, so concurrent calls are safe.
func (e *Expression) Evaluate() (float64, error) {
	return eval(&e.root)
}

func eval(s *subexpression) (float64, error) {
	switch s.kind {
	case exprLiteral:
		return s.num, nil
	case exprError:
		return 0, s.err
	case exprSymbol:
		if s.fn == nil {
			return 0, &UndefinedSymbolError{Symbol: s.sym}
		}
		args := make([]float64, len(s.args))
		for i := range s.args {
			v, err := eval(&s.args[i])
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		return s.fn(args)
	}
	panic("expr: evaluate on invalid node")
}

// String renders the bound expression, with folded subtrees shown as
// their literal results.
func (e *Expression) String() string {
	return e.root.String()
}

// Symbols returns the symbols whose values can still vary or fail at
// evaluation time: unresolved symbols, impure bindings, and binding
// errors. Symbols folded away or bound to pure evaluators are not
// reported.
func (e *Expression) Symbols() map[Symbol]bool {
	out := make(map[Symbol]bool, len(e.syms))
	for k := range e.syms {
		out[k] = true
	}
	return out
}
