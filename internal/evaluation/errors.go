package evaluation

import "errors"

// ErrInvalidConfig marks invalid static input: a missing price column, an
// unsupported return kind, malformed evaluator parameters. These abort the
// offending evaluation immediately and are never retried. Degenerate data
// (too few observations, zero variance, sparse dates) is NOT an error; it is
// recorded in EvalResult.Notes and shrinks the effective sample instead.
var ErrInvalidConfig = errors.New("invalid configuration")
