package expr

// Evaluator computes a value from already-evaluated argument values. An
// evaluator bound to a zero-argument symbol is called with an empty slice.
type Evaluator func(args []float64) (float64, error)

// resolution is the outcome of looking up one symbol during binding. A nil
// fn leaves the symbol unbound; evaluation then reports it as undefined.
type resolution struct {
	fn Evaluator
	// pure marks the evaluator as deterministic in its arguments and
	// eligible for constant folding.
	pure bool
	// extern marks the symbol as depending on external state or being
	// unresolved; extern symbols are reported by Expression.Symbols.
	extern bool
}

// binder rewrites a parsed tree into an evaluation-ready one, attaching
// an evaluator to every symbol node and folding pure subtrees whose
// arguments are all literals. The input tree is never mutated.
type binder struct {
	resolve func(Symbol) resolution
	fold    bool
	syms    map[Symbol]bool
}

func (b *binder) bind(s subexpression) subexpression {
	if s.kind != exprSymbol {
		return s
	}
	args := make([]subexpression, len(s.args))
	allLiteral := true
	for i := range s.args {
		args[i] = b.bind(s.args[i])
		if args[i].kind != exprLiteral {
			allLiteral = false
		}
	}
	node := s
	node.args = args
	res := b.resolve(s.sym)
	node.fn = res.fn
	if res.fn != nil && res.pure && b.fold && allLiteral {
		vals := make([]float64, len(args))
		for i := range args {
			vals[i] = args[i].num
		}
		if v, err := res.fn(vals); err == nil {
			return literalNode(v)
		}
		// The fold failed, e.g. an out-of-range constant index. Keep the
		// node bound so evaluation reports the error.
	}
	if res.extern || res.fn == nil {
		b.syms[s.sym] = true
	}
	return node
}

// Bind attaches evaluators to a parsed expression under a custom symbol
// policy. The impure resolver is consulted first and its symbols are never
// folded, which suits symbols that read external mutable state. The pure
// resolver is consulted next and its results are folded when all their
// arguments are constant. Either resolver may be nil. Binding never fails:
// symbols neither resolver recognizes stay unbound and evaluation reports
// them with an UndefinedSymbolError.
func Bind(parsed ParsedExpression, impure, pure func(Symbol) Evaluator) *Expression {
	resolve := func(sym Symbol) resolution {
		if impure != nil {
			if fn := impure(sym); fn != nil {
				return resolution{fn: fn, extern: true}
			}
		}
		if pure != nil {
			if fn := pure(sym); fn != nil {
				return resolution{fn: fn, pure: true}
			}
		}
		return resolution{extern: true}
	}
	b := &binder{resolve: resolve, fold: true, syms: make(map[Symbol]bool)}
	return &Expression{root: b.bind(parsed.root), syms: b.syms}
}
