package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"mnk/config"
	"mnk/game"
	"mnk/player"
	"mnk/searcher"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// relaxer is implemented by controllers that can search again without a budget.
type relaxer interface {
	Relaxed() player.Controller
}

// Engine owns one game and runs its turn loop. Moves are applied one at a
// time. Controllers are consulted without holding the engine lock, so a
// pending search or human input never blocks Undo, Reset or Snapshot.
type Engine struct {
	mu          sync.Mutex
	id          uuid.UUID
	rules       game.Rules
	history     *game.History
	phase       Phase
	forfeit     game.Status // Set when a player resigned
	controllers map[game.Player]player.Controller
	observers   []Observer
	policy      BudgetPolicy

	generation uint64 // Bumped by Play, Undo, Reset, Resign and Restore to discard pending moves
	cancel     context.CancelFunc
}

func New(rules game.Rules, start game.Player, controllers map[game.Player]player.Controller, options ...Option) (*Engine, error) {
	initial, err := rules.NewState(start)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		id:          uuid.New(),
		rules:       rules,
		history:     game.NewHistory(initial),
		phase:       AwaitingMove,
		controllers: make(map[game.Player]player.Controller, len(controllers)),
	}
	for p, c := range controllers {
		e.controllers[p] = c
	}
	for _, option := range options {
		option(e)
	}
	return e, nil
}

// Build creates an engine from a configuration. Human seats get a
// player.HumanController, reachable through Human.
func Build(cfg config.Config, options ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := ParseBudgetPolicy(cfg.AI.OnBudgetExceeded)
	if err != nil {
		return nil, err
	}
	controllers := make(map[game.Player]player.Controller, 2)
	for _, p := range []game.Player{game.PlayerA, game.PlayerB} {
		switch cfg.Players.Of(p) {
		case player.AI:
			controllers[p] = player.NewAI(cfg.NewSearcher())
		default:
			controllers[p] = player.NewHuman()
		}
	}
	options = append([]Option{WithBudgetPolicy(policy)}, options...)
	return New(cfg.Board, cfg.Start, controllers, options...)
}

func (e *Engine) ID() uuid.UUID {
	return e.id
}

func (e *Engine) Rules() game.Rules {
	return e.rules
}

// Controller returns the controller of p.
func (e *Engine) Controller(p game.Player) (player.Controller, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.controllers[p]
	return c, ok
}

// Human returns the human controller of p, if p is played by a human.
func (e *Engine) Human(p game.Player) (*player.HumanController, bool) {
	c, ok := e.Controller(p)
	if !ok {
		return nil, false
	}
	h, ok := c.(*player.HumanController)
	return h, ok
}

func (e *Engine) Subscribe(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.observers = append(e.observers, observer)
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.snapshot()
}

// Result returns the status of the game, including resignations.
func (e *Engine) Result() game.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.result()
}

// Record returns the save record of the moves played so far.
func (e *Engine) Record() game.Record {
	e.mu.Lock()
	defer e.mu.Unlock()

	return game.NewRecord(e.rules, e.history)
}

// Play applies move for the active player. An illegal move is rejected with a
// *game.IllegalMoveError and leaves the game as it was. A legal move
// supersedes a pending step, which is aborted with ErrSearchAborted.
func (e *Engine) Play(move game.Move) error {
	return e.apply(move, nil)
}

// Step asks the active player's controller for a move and plays it. The
// controller hears back through Report whether its move was played.
func (e *Engine) Step(ctx context.Context) error {
	e.mu.Lock()
	if e.phase == Finished {
		e.mu.Unlock()
		return ErrGameFinished
	}
	if e.cancel != nil {
		e.mu.Unlock()
		return ErrStepInProgress
	}
	state := e.history.Current()
	mover := state.ActivePlayer()
	controller, ok := e.controllers[mover]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w %s", ErrNoController, mover)
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	generation := e.generation
	e.mu.Unlock()
	defer e.endStep(generation, cancel)

	move, err := controller.FindMove(ctx, state)
	if errors.Is(err, searcher.ErrSearchBudgetExceeded) {
		var resigned bool
		move, resigned, err = e.overBudget(ctx, controller, state, generation)
		if resigned {
			controller.Report(move, err)
			return nil
		}
	}
	if err != nil {
		if e.stale(generation) {
			err = ErrSearchAborted
		}
		controller.Report(move, err)
		return err
	}

	err = e.apply(move, &generation)
	controller.Report(move, err)
	return err
}

// overBudget handles a search that ran out of budget without a move.
func (e *Engine) overBudget(ctx context.Context, controller player.Controller, state *game.State, generation uint64) (game.Move, bool, error) {
	mover := state.ActivePlayer()
	if e.policy == Resign {
		log.Warn().Str("player", mover.String()).Msg("search budget exceeded, resigning")
		if err := e.resign(mover, &generation); err != nil {
			return game.Move{}, false, err
		}
		return game.Move{}, true, searcher.ErrSearchBudgetExceeded
	}

	r, ok := controller.(relaxer)
	if !ok {
		return game.Move{}, false, searcher.ErrSearchBudgetExceeded
	}
	relaxed := r.Relaxed()
	if relaxed == nil {
		return game.Move{}, false, searcher.ErrSearchBudgetExceeded
	}
	log.Warn().Str("player", mover.String()).Msg("search budget exceeded, retrying without budget")
	move, err := relaxed.FindMove(ctx, state)
	return move, false, err
}

func (e *Engine) endStep(generation uint64, cancel context.CancelFunc) {
	e.mu.Lock()
	if e.generation == generation {
		e.cancel = nil
	}
	e.mu.Unlock()
	cancel()
}

func (e *Engine) stale(generation uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.generation != generation
}

// Run steps until the game is finished. Illegal human moves and aborted
// searches do not end the loop.
func (e *Engine) Run(ctx context.Context) (game.Status, error) {
	for {
		err := e.Step(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return e.Result(), ctxErr
			}
			var illegal *game.IllegalMoveError
			switch {
			case errors.Is(err, ErrGameFinished):
				return e.Result(), nil
			case errors.Is(err, ErrSearchAborted):
				continue
			case errors.As(err, &illegal) && e.humanToMove():
				log.Debug().Err(err).Msg("rejected human move")
				continue
			default:
				return e.Result(), err
			}
		}
		if snapshot := e.Snapshot(); snapshot.Phase == Finished {
			return snapshot.Result, nil
		}
	}
}

func (e *Engine) humanToMove() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.controllers[e.history.Current().ActivePlayer()]
	return ok && c.Kind() == player.Human
}

// Undo takes back the last transition: a resignation if there is one,
// otherwise the last move. A pending step is aborted. At the initial state it
// fails with game.ErrNoHistory and changes nothing.
func (e *Engine) Undo() error {
	e.mu.Lock()
	if e.forfeit.Decided() {
		e.forfeit = game.Status{}
	} else if _, err := e.history.Pop(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.abort()
	e.phase = e.phaseOf(e.history.Current())
	snapshot, observers := e.snapshot(), e.observers
	e.mu.Unlock()

	log.Debug().Int("ply", snapshot.Ply).Msg("undo")
	notify(observers, snapshot)
	return nil
}

// Reset aborts any pending step and returns to the initial state.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.abort()
	e.history = game.NewHistory(e.history.Initial())
	e.forfeit = game.Status{}
	e.phase = AwaitingMove
	snapshot, observers := e.snapshot(), e.observers
	e.mu.Unlock()

	notify(observers, snapshot)
}

// Resign ends the game with a win for the opponent of p. A pending step is
// aborted.
func (e *Engine) Resign(p game.Player) error {
	return e.resign(p, nil)
}

// Restore replaces the game with the one saved in record. The record must be
// played under the engine's rules.
func (e *Engine) Restore(record game.Record) error {
	if record.Rules != e.rules {
		return fmt.Errorf("failed to restore record: rules %+v do not match %+v", record.Rules, e.rules)
	}
	h, err := record.Replay()
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.abort()
	e.history = h
	e.forfeit = game.Status{}
	e.phase = e.phaseOf(h.Current())
	snapshot, observers := e.snapshot(), e.observers
	e.mu.Unlock()

	notify(observers, snapshot)
	return nil
}

// apply plays move. When generation is set the move is discarded with
// ErrSearchAborted if the game changed since the move was requested.
// Otherwise the move comes from outside the turn loop and any pending step is
// aborted once the move is played.
func (e *Engine) apply(move game.Move, generation *uint64) error {
	e.mu.Lock()
	if generation != nil && *generation != e.generation {
		e.mu.Unlock()
		return ErrSearchAborted
	}
	if e.phase == Finished {
		e.mu.Unlock()
		return ErrGameFinished
	}
	current := e.history.Current()
	e.phase = Evaluating
	evaluating, observers := e.snapshot(), e.observers

	next, err := e.rules.Apply(current, move)
	if err != nil {
		e.phase = AwaitingMove
		awaiting := e.snapshot()
		e.mu.Unlock()

		log.Debug().Err(err).Str("player", current.ActivePlayer().String()).Msg("rejected move")
		notify(observers, evaluating, awaiting)
		return err
	}
	e.history.Push(move, next)
	if generation == nil {
		e.abort()
	}
	e.phase = e.phaseOf(next)
	after := e.snapshot()
	e.mu.Unlock()

	log.Debug().
		Str("player", current.ActivePlayer().String()).
		Stringer("move", move).
		Int("ply", next.Ply()).
		Msg("move played")
	if after.Phase == Finished {
		log.Info().Stringer("id", e.id).Stringer("result", after.Result).Int("ply", after.Ply).Msg("game over")
	}
	notify(observers, evaluating, after)
	return nil
}

func (e *Engine) resign(p game.Player, generation *uint64) error {
	if p != game.PlayerA && p != game.PlayerB {
		return fmt.Errorf("invalid player %s", p)
	}
	e.mu.Lock()
	if generation != nil && *generation != e.generation {
		e.mu.Unlock()
		return ErrSearchAborted
	}
	if e.phase == Finished {
		e.mu.Unlock()
		return ErrGameFinished
	}
	e.forfeit = game.WinFor(p.Opponent())
	e.phase = Finished
	e.abort()
	snapshot, observers := e.snapshot(), e.observers
	e.mu.Unlock()

	log.Info().Stringer("id", e.id).Str("player", p.String()).Msg("player resigned")
	notify(observers, snapshot)
	return nil
}

// abort discards the pending step, if any. Callers hold e.mu.
func (e *Engine) abort() {
	e.generation++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

func (e *Engine) phaseOf(s *game.State) Phase {
	if e.forfeit.Decided() || s.Status().Decided() {
		return Finished
	}
	return AwaitingMove
}

func (e *Engine) result() game.Status {
	if e.forfeit.Decided() {
		return e.forfeit
	}
	return e.history.Current().Status()
}

func (e *Engine) snapshot() Snapshot {
	current := e.history.Current()
	snapshot := Snapshot{
		GameID: e.id,
		Phase:  e.phase,
		State:  current,
		Result: e.result(),
		Ply:    current.Ply(),
	}
	if last, ok := e.history.Last(); ok {
		move := last.Move
		snapshot.LastMove = &move
	}
	return snapshot
}

func notify(observers []Observer, snapshots ...Snapshot) {
	for _, snapshot := range snapshots {
		for _, observer := range observers {
			observer(snapshot)
		}
	}
}
