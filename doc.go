// Package expr implements an embeddable float64 expression engine.
//
// An expression string like "pow(x, 2) + 1" is parsed into an immutable
// syntax tree, bound against a set of constants, arrays, and custom symbol
// evaluators, and then evaluated any number of times. Subtrees whose inputs
// are all constant are folded away during binding, so "2 * pi * r" costs a
// single multiplication per evaluation.
//
// Parse failures and unresolved symbols are not fatal: they are carried
// inside the tree as values and only surface as errors when evaluation
// reaches them. This lets an application parse user input eagerly, display
// it, and report problems late. Errors returned by caller-supplied
// evaluators pass through Evaluate untyped and unwrapped.
package expr
