package rewrite

// #region imports
import (
	"context"
	"fmt"
)

// #endregion imports

// #region strategy-id

// StrategyID identifies a rewrite strategy.
type StrategyID string

const (
	StrategySequential StrategyID = "sequential"
	StrategyOneShot    StrategyID = "oneshot"
)

// #endregion strategy-id

// #region strategy

// Strategy is the closed set of rewrite approaches. Selection is an
// explicit configuration choice made by the caller, never runtime type
// inspection.
type Strategy interface {
	ID() StrategyID
	Rewrite(ctx context.Context, text string, banned []string) (Result, error)
}

// Select returns the strategy matching id from the given set.
func Select(id StrategyID, strategies ...Strategy) (Strategy, error) {
	for _, s := range strategies {
		if s.ID() == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("rewrite: unknown strategy %q", id)
}

// #endregion strategy
