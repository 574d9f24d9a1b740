package shelving

import (
	"context"
	"fmt"
)

// checkInterval is how many search nodes pass between context checks.
const checkInterval = 4096

// searchGuard enforces the node budget and cooperative cancellation. A nil
// guard never aborts, which is how the pure entry points run.
type searchGuard struct {
	ctx    context.Context
	budget int64
	nodes  int64
}

func newSearchGuard(ctx context.Context, budget int64) *searchGuard {
	return &searchGuard{ctx: ctx, budget: budget}
}

func (g *searchGuard) tick() error {
	if g == nil {
		return nil
	}
	g.nodes++
	if g.budget > 0 && g.nodes > g.budget {
		return fmt.Errorf("%w: node budget of %d exhausted", ErrSearchAborted, g.budget)
	}
	if g.nodes%checkInterval == 0 {
		if err := g.ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrSearchAborted, err)
		}
	}
	return nil
}

func (g *searchGuard) visited() int64 {
	if g == nil {
		return 0
	}
	return g.nodes
}
