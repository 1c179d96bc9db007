// Package lang implements the formula language of windeq: parsing of
// arithmetic expression text into an owned syntax tree, algebra over parsed
// formulas, default variable scopes and elementwise evaluation over scalars
// and float64 vectors.
//
// # Grammar
//
// A formula is infix arithmetic over numeric literals and identifiers:
//
//	capex * (1 + contingency) - np.exp(-0.05 * year) ** 2
//
// The binary operators are + - * / and power, spelled either ** or ^.
// Unary minus is supported. Calls are limited to the whitelist returned by
// [Functions], each of which may be written bare or with the "np." prefix.
// The constants np.pi and np.e are also accepted. Everything else, including
// brackets, strings, comparisons and member access, is rejected with
// [ErrIllegalExpression].
//
// Identifiers may contain underscores and digits. Scientific-notation literals
// such as 4.54e6 are numbers, never the identifier "e".
//
// # Formulas
//
// A [Formula] is immutable. [Combine] and its shorthands [Add], [Sub],
// [Mul], [Div] and [Pow] synthesize new formulas over deep copies of their
// operands, merging default variable tables with the right operand winning.
//
// [Formula.Evaluate] merges the caller's [Bindings] over the formula's
// default [Scope], reports every unbound variable with [ErrMissingInput] and
// then evaluates the tree elementwise.
//
// # Errors
//
// Every error returned by windeq is a *[Error] matching one of the sentinel
// values in this package with [errors.Is]. Errors carry slog attributes and
// implement [log/slog.LogValuer].
package lang
