package searcher

import (
	"math"

	"mnk/game"
)

// searchNode is a state with its remaining search depth. Nodes are created and
// owned by a single worker and never shared.
type searchNode struct {
	state *game.State
	depth int
}

func (n searchNode) key() tableKey {
	return tableKey{state: n.state.Key(), depth: n.depth}
}

// worker runs the recursive part of one search. Workers of the same call share
// the budget, the table and the metrics, which are all safe for concurrent use.
type worker struct {
	rules    game.Rules
	root     game.Player
	evaluate game.Evaluate
	budget   *budget
	table    *transpositions // nil without memoization
	metrics  Collector
}

// minimax returns the value of node for the root player. The value is exact
// when it lies strictly inside (alpha, beta), at most alpha when the true value
// is, and at least beta when the true value is.
func (w *worker) minimax(node searchNode, alpha, beta float64) (float64, error) {
	if err := w.budget.tick(); err != nil {
		return 0, err
	}
	w.metrics.AddNode()

	state := node.state
	if status := state.Status(); status.Decided() {
		return terminalScore(status, state.Ply(), w.root), nil
	}
	if node.depth == 0 {
		return w.evaluate(state, w.root), nil
	}

	var key tableKey
	if w.table != nil {
		key = node.key()
		if score, ok := w.table.probe(key, alpha, beta); ok {
			w.metrics.AddTableHit()
			return score, nil
		}
	}

	moves := w.rules.LegalMoves(state)
	if len(moves) == 0 {
		return Draw, nil
	}

	alphaOrig, betaOrig := alpha, beta
	maximizing := state.ActivePlayer() == w.root
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}

	for _, move := range moves {
		child, err := w.rules.Apply(state, move)
		if err != nil {
			return 0, err
		}
		score, err := w.minimax(searchNode{state: child, depth: node.depth - 1}, alpha, beta)
		if err != nil {
			return 0, err
		}

		if maximizing {
			best = max(best, score)
			alpha = max(alpha, best)
		} else {
			best = min(best, score)
			beta = min(beta, best)
		}
		if alpha >= beta {
			w.metrics.AddCutoff()
			break
		}
	}

	if w.table != nil {
		w.table.store(key, best, alphaOrig, betaOrig)
	}
	return best, nil
}
