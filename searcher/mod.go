package searcher

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

var (
	// ErrNoLegalMove means the search was asked to move in a state without legal
	// moves. Callers should check the terminal status first.
	ErrNoLegalMove = errors.New("no legal move to search")
	// ErrSearchBudgetExceeded means the budget ran out before a single root
	// move was fully evaluated.
	ErrSearchBudgetExceeded = errors.New("search budget exceeded")
)

// budget bounds one search call by wall clock and node count.
type budget struct {
	ctx      context.Context
	deadline time.Time // Zero for no time limit
	maxNodes int64     // 0 for no node limit
	nodes    atomic.Int64
}

func newBudget(ctx context.Context, duration time.Duration, maxNodes int64) *budget {
	b := &budget{ctx: ctx, maxNodes: maxNodes}
	if duration > 0 {
		b.deadline = time.Now().Add(duration)
	}
	return b
}

func (b *budget) bounded() bool {
	return !b.deadline.IsZero() || b.maxNodes > 0
}

// tick accounts for one searched node.
func (b *budget) tick() error {
	n := b.nodes.Add(1)
	if b.maxNodes > 0 && n > b.maxNodes {
		return ErrSearchBudgetExceeded
	}
	if n%tickInterval == 1 {
		if err := b.ctx.Err(); err != nil {
			return err
		}
		if !b.deadline.IsZero() && !time.Now().Before(b.deadline) {
			return ErrSearchBudgetExceeded
		}
	}
	return nil
}
