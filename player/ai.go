package player

import (
	"context"
	"sync"

	"mnk/game"
	"mnk/searcher"

	"github.com/rs/zerolog/log"
)

type Searcher interface {
	FindMove(ctx context.Context, state *game.State) (searcher.Result, error)
}

// AIController plays the moves found by a searcher.
type AIController struct {
	searcher Searcher
	parent   *AIController // Set on relaxed copies, which record results there

	mu   sync.Mutex
	last searcher.Result
}

func NewAI(s Searcher) *AIController {
	return &AIController{searcher: s}
}

func (a *AIController) Kind() Kind {
	return AI
}

func (a *AIController) FindMove(ctx context.Context, state *game.State) (game.Move, error) {
	result, err := a.searcher.FindMove(ctx, state)
	if err != nil {
		return game.Move{}, err
	}
	owner := a
	if a.parent != nil {
		owner = a.parent
	}
	owner.mu.Lock()
	owner.last = result
	owner.mu.Unlock()
	return result.Move, nil
}

func (a *AIController) Report(move game.Move, err error) {
	if err != nil {
		log.Debug().Err(err).Stringer("move", move).Msg("search move was not played")
	}
}

// LastResult returns the result of the most recent successful search.
func (a *AIController) LastResult() searcher.Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.last
}

// Relaxed returns a controller searching without time or node budgets. It
// returns nil when the searcher cannot drop its budget.
func (a *AIController) Relaxed() Controller {
	s, ok := a.searcher.(*searcher.AlphaBeta)
	if !ok {
		return nil
	}
	return &AIController{searcher: s.Unbounded(), parent: a}
}
