package rewrite

// #region imports
import (
	"context"
)

// #endregion imports

// #region oneshot-generator

// OneShotGenerator produces a rewrite of the whole text in a single call.
type OneShotGenerator interface {
	GenerateOneShot(ctx context.Context, text string, banned []string) (string, error)
}

// #endregion oneshot-generator

// #region oneshot

// OneShot is the baseline comparator: one generation call over the full
// text, no token-level validation, no retry, no reassembly. It exists so
// the metrics engine can compare strategies.
type OneShot struct {
	gen OneShotGenerator
}

// NewOneShot wraps a whole-text generator as a Strategy.
func NewOneShot(gen OneShotGenerator) *OneShot {
	return &OneShot{gen: gen}
}

// ID identifies the one-shot strategy.
func (o *OneShot) ID() StrategyID { return StrategyOneShot }

// Rewrite delegates the full text to the generation capability once. An
// empty banned set is the identity rewrite. A generation failure is the
// only error; the output is never validated here.
func (o *OneShot) Rewrite(ctx context.Context, text string, banned []string) (Result, error) {
	if len(banned) == 0 {
		return Result{Output: text}, nil
	}
	out, err := o.gen.GenerateOneShot(ctx, text, banned)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: out}, nil
}

// #endregion oneshot
