package searcher

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"mnk/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(s *AlphaBeta)

// Result is the move chosen by a search and its score for the searching player.
type Result struct {
	Move   game.Move
	Score  float64
	Depth  int // Depth of the iteration the move came from
	Metric SearchMetric
}

// AlphaBeta is a depth-bounded minimax searcher with alpha-beta pruning. With
// identical options it always returns the same move for the same state, no
// matter how many goroutines it uses.
type AlphaBeta struct {
	rules      game.Rules
	depth      int
	goroutines int
	duration   time.Duration
	nodes      int64
	evaluate   game.Evaluate
	memoize    bool
	metrics    bool
	tieBreak   *tieBreaker
}

// tieBreaker shuffles root moves so that ties go to a random move.
type tieBreaker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func WithGoroutines(goroutines int) Option {
	return func(s *AlphaBeta) {
		if goroutines > 0 {
			s.goroutines = goroutines
		}
	}
}

// WithDuration bounds each search by wall clock time.
func WithDuration(duration time.Duration) Option {
	return func(s *AlphaBeta) {
		if duration > 0 {
			s.duration = duration
		}
	}
}

// WithNodeBudget bounds each search by the number of visited nodes.
func WithNodeBudget(nodes int64) Option {
	return func(s *AlphaBeta) {
		if nodes > 0 {
			s.nodes = nodes
		}
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(s *AlphaBeta) {
		if evaluate != nil {
			s.evaluate = evaluate
		}
	}
}

// WithTranspositions memoizes node values by state and remaining depth.
func WithTranspositions() Option {
	return func(s *AlphaBeta) {
		s.memoize = true
	}
}

// WithRandomTieBreak shuffles the root moves with a generator seeded by seed,
// so equally scored moves are picked at random instead of first come.
func WithRandomTieBreak(seed uint64) Option {
	return func(s *AlphaBeta) {
		s.tieBreak = &tieBreaker{rng: rand.New(rand.NewSource(seed))}
	}
}

func WithMetrics() Option {
	return func(s *AlphaBeta) {
		s.metrics = true
	}
}

func NewAlphaBeta(rules game.Rules, depth int, options ...Option) *AlphaBeta {
	if depth <= 0 {
		panic("search depth must be positive")
	}
	s := &AlphaBeta{ // Default values
		rules:      rules,
		depth:      depth,
		goroutines: 1,
		evaluate:   rules.WindowEvaluator(game.DefaultWeights(rules.WinLength)),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Unbounded returns a copy of the searcher without time or node budgets.
func (s *AlphaBeta) Unbounded() *AlphaBeta {
	c := *s
	c.duration = 0
	c.nodes = 0
	return &c
}

func (s *AlphaBeta) MaxDepth() int {
	return s.depth
}

// FindMove searches state for the active player's best move. A cancelled
// context aborts the search and discards any partial result.
func (s *AlphaBeta) FindMove(ctx context.Context, state *game.State) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return s.search(state, newBudget(ctx, s.duration, s.nodes))
}

type rootResult struct {
	index     int
	move      game.Move
	score     float64
	depth     int
	evaluated int // Root moves fully searched
}

func (s *AlphaBeta) search(state *game.State, b *budget) (Result, error) {
	moves := s.rules.LegalMoves(state)
	if len(moves) == 0 {
		return Result{}, ErrNoLegalMove
	}
	moves = s.order(moves)

	metrics := NewDummyCollector()
	if s.metrics {
		metrics = NewCollector()
	}
	metrics.Start(s.goroutines, s.depth)

	var table *transpositions
	if s.memoize {
		table = newTranspositions()
	}

	var best *rootResult
	if !b.bounded() {
		r, err := s.searchRoot(state, moves, s.depth, b, table, metrics)
		if err != nil {
			return Result{}, err
		}
		metrics.CompleteDepth(s.depth)
		best = &r
	} else {
		// Iterative deepening keeps a complete answer ready for when the budget
		// runs out.
		for depth := 1; depth <= s.depth; depth++ {
			r, err := s.searchRoot(state, moves, depth, b, table, metrics)
			if err == nil {
				metrics.CompleteDepth(depth)
				best = &r
				continue
			}
			if !errors.Is(err, ErrSearchBudgetExceeded) {
				return Result{}, err
			}
			if best == nil && r.evaluated > 0 {
				metrics.SetPartial()
				best = &r
			}
			break
		}
	}
	if best == nil {
		return Result{}, ErrSearchBudgetExceeded
	}

	result := Result{
		Move:   best.move,
		Score:  best.score,
		Depth:  best.depth,
		Metric: metrics.Complete(),
	}
	log.Debug().
		Str("player", state.ActivePlayer().String()).
		Int("ply", state.Ply()).
		Stringer("move", result.Move).
		Float64("score", result.Score).
		Int("depth", result.Depth).
		Int64("nodes", b.nodes.Load()).
		Msg("search complete")
	return result, nil
}

func (s *AlphaBeta) order(moves []game.Move) []game.Move {
	if s.tieBreak == nil {
		return moves
	}
	s.tieBreak.mu.Lock()
	defer s.tieBreak.mu.Unlock()

	s.tieBreak.rng.Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})
	return moves
}

func (s *AlphaBeta) newWorker(root game.Player, b *budget, table *transpositions, metrics Collector) *worker {
	return &worker{
		rules:    s.rules,
		root:     root,
		evaluate: s.evaluate,
		budget:   b,
		table:    table,
		metrics:  metrics,
	}
}

// searchRoot searches every root move to depth and keeps the first move with
// the highest score. On error the result holds the best fully searched move.
func (s *AlphaBeta) searchRoot(state *game.State, moves []game.Move, depth int, b *budget, table *transpositions, metrics Collector) (rootResult, error) {
	if s.goroutines > 1 && len(moves) > 1 {
		return s.searchRootParallel(state, moves, depth, b, table, metrics)
	}

	w := s.newWorker(state.ActivePlayer(), b, table, metrics)
	best := rootResult{index: -1, score: math.Inf(-1), depth: depth}
	alpha := math.Inf(-1)
	for i, move := range moves {
		child, err := s.rules.Apply(state, move)
		if err != nil {
			return best, err
		}
		score, err := w.minimax(searchNode{state: child, depth: depth - 1}, alpha, math.Inf(1))
		if err != nil {
			return best, err
		}
		best.evaluated++
		if score > best.score {
			best.index, best.move, best.score = i, move, score
		}
		alpha = max(alpha, score)
	}
	return best, nil
}

// searchRootParallel splits the root moves across goroutines. Each root move
// is searched with a full window, so every score is exact and the choice
// matches the sequential search.
func (s *AlphaBeta) searchRootParallel(state *game.State, moves []game.Move, depth int, b *budget, table *transpositions, metrics Collector) (rootResult, error) {
	scores := make([]float64, len(moves))
	errs := make([]error, len(moves))

	task := make(chan int, len(moves))
	for i := range moves {
		task <- i
	}
	close(task)

	var wg sync.WaitGroup
	for i := 0; i < min(s.goroutines, len(moves)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			w := s.newWorker(state.ActivePlayer(), b, table, metrics)
			for i := range task {
				child, err := s.rules.Apply(state, moves[i])
				if err != nil {
					errs[i] = err
					continue
				}
				scores[i], errs[i] = w.minimax(searchNode{state: child, depth: depth - 1}, math.Inf(-1), math.Inf(1))
			}
		}()
	}
	wg.Wait()

	best := rootResult{index: -1, score: math.Inf(-1), depth: depth}
	var firstErr error
	for i, move := range moves {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		best.evaluated++
		if scores[i] > best.score {
			best.index, best.move, best.score = i, move, scores[i]
		}
	}
	if err := b.ctx.Err(); err != nil {
		return best, err
	}
	return best, firstErr
}
