package player

import (
	"context"
	"sync"

	"mnk/game"
)

type submission struct {
	move  game.Move
	reply chan error
}

// HumanController relays moves from an input source. Submit blocks until the
// engine has judged the move, so rejections reach the input with their reason.
type HumanController struct {
	submissions chan submission

	mu      sync.Mutex
	pending *submission // Returned by FindMove, waiting for Report
}

func NewHuman() *HumanController {
	return &HumanController{submissions: make(chan submission)}
}

func (h *HumanController) Kind() Kind {
	return Human
}

// Submit offers move for the player's current turn and returns the engine's
// verdict: nil when played, the rejection otherwise.
func (h *HumanController) Submit(ctx context.Context, move game.Move) error {
	sub := submission{move: move, reply: make(chan error, 1)}
	select {
	case h.submissions <- sub:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-sub.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *HumanController) FindMove(ctx context.Context, state *game.State) (game.Move, error) {
	select {
	case sub := <-h.submissions:
		h.mu.Lock()
		h.pending = &sub
		h.mu.Unlock()
		return sub.move, nil
	case <-ctx.Done():
		return game.Move{}, ctx.Err()
	}
}

func (h *HumanController) Report(move game.Move, err error) {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	if pending != nil {
		pending.reply <- err
	}
}
