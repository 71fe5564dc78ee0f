package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"mnk/config"
	"mnk/game"
	"mnk/player"
	"mnk/searcher"

	"github.com/stretchr/testify/require"
)

// stubController returns canned moves and errors and records reports.
type stubController struct {
	kind    player.Kind
	moves   []game.Move
	err     error
	relaxed player.Controller

	mu      sync.Mutex
	reports []error
}

func (c *stubController) Kind() player.Kind {
	return c.kind
}

func (c *stubController) FindMove(_ context.Context, _ *game.State) (game.Move, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return game.Move{}, c.err
	}
	move := c.moves[0]
	c.moves = c.moves[1:]
	return move, nil
}

func (c *stubController) Report(_ game.Move, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reports = append(c.reports, err)
}

type relaxedStub struct {
	*stubController
}

func (c relaxedStub) Relaxed() player.Controller {
	return c.relaxed
}

// blockingController waits for its context after announcing the request.
type blockingController struct {
	started chan struct{}
}

func (c *blockingController) Kind() player.Kind {
	return player.AI
}

func (c *blockingController) FindMove(ctx context.Context, _ *game.State) (game.Move, error) {
	close(c.started)
	<-ctx.Done()
	return game.Move{}, ctx.Err()
}

func (c *blockingController) Report(game.Move, error) {}

func newTicTacToe(t *testing.T, controllers map[game.Player]player.Controller, options ...Option) *Engine {
	t.Helper()
	e, err := New(game.TicTacToe(), game.PlayerA, controllers, options...)
	require.NoError(t, err)
	return e
}

func TestPlay(t *testing.T) {
	t.Run("completing a row finishes the game with a win", func(t *testing.T) {
		e := newTicTacToe(t, nil)
		require.Equal(t, AwaitingMove, e.Snapshot().Phase)
		require.Nil(t, e.Snapshot().LastMove)

		for _, move := range []game.Move{
			game.NewMove(0, 0), game.NewMove(1, 0),
			game.NewMove(0, 1), game.NewMove(1, 1),
			game.NewMove(0, 2),
		} {
			require.NoError(t, e.Play(move))
		}

		snapshot := e.Snapshot()
		require.Equal(t, Finished, snapshot.Phase)
		require.Equal(t, game.WinFor(game.PlayerA), snapshot.Result)
		require.Equal(t, 5, snapshot.Ply)
		require.Equal(t, game.NewMove(0, 2), *snapshot.LastMove)
		require.Equal(t, game.NoPlayer, snapshot.Active())
		require.ErrorIs(t, e.Play(game.NewMove(2, 2)), ErrGameFinished, "No move is accepted after the game ended")
	})

	t.Run("illegal move leaves the game unchanged", func(t *testing.T) {
		var phases []Phase
		e := newTicTacToe(t, nil, WithObserver(func(s Snapshot) { phases = append(phases, s.Phase) }))
		require.NoError(t, e.Play(game.NewMove(1, 1)))
		before := e.Snapshot()

		err := e.Play(game.NewMove(1, 1))

		var illegal *game.IllegalMoveError
		require.ErrorAs(t, err, &illegal)
		require.Equal(t, "cell is occupied", illegal.Reason)
		after := e.Snapshot()
		require.Equal(t, AwaitingMove, after.Phase)
		require.True(t, before.State.Equal(after.State))
		require.Equal(t, game.PlayerB, after.Active())
		require.Equal(t, []Phase{Evaluating, AwaitingMove, Evaluating, AwaitingMove}, phases)
	})

	t.Run("full board without a line is a draw", func(t *testing.T) {
		e := newTicTacToe(t, nil)
		// X O X / X O O / O X X
		for _, move := range []game.Move{
			game.NewMove(0, 0), game.NewMove(0, 1),
			game.NewMove(0, 2), game.NewMove(1, 1),
			game.NewMove(1, 0), game.NewMove(1, 2),
			game.NewMove(2, 1), game.NewMove(2, 0),
			game.NewMove(2, 2),
		} {
			require.NoError(t, e.Play(move))
		}
		require.Equal(t, Finished, e.Snapshot().Phase)
		require.Equal(t, game.Status{Outcome: game.Draw}, e.Result())
	})
}

func TestUndo(t *testing.T) {
	t.Run("undo twice returns to the initial state", func(t *testing.T) {
		e := newTicTacToe(t, nil)
		initial := e.Snapshot().State
		require.NoError(t, e.Play(game.NewMove(0, 0)))
		require.NoError(t, e.Play(game.NewMove(1, 1)))

		require.NoError(t, e.Undo())
		require.Equal(t, game.PlayerB, e.Snapshot().Active())
		require.NoError(t, e.Undo())

		snapshot := e.Snapshot()
		require.Equal(t, AwaitingMove, snapshot.Phase)
		require.Equal(t, game.PlayerA, snapshot.Active())
		require.True(t, initial.Equal(snapshot.State))
		require.ErrorIs(t, e.Undo(), game.ErrNoHistory)
		require.True(t, initial.Equal(e.Snapshot().State), "A failed undo changes nothing")
	})

	t.Run("undo after a win resumes play", func(t *testing.T) {
		e := newTicTacToe(t, nil)
		for _, move := range []game.Move{
			game.NewMove(0, 0), game.NewMove(1, 0),
			game.NewMove(0, 1), game.NewMove(1, 1),
			game.NewMove(0, 2),
		} {
			require.NoError(t, e.Play(move))
		}
		require.NoError(t, e.Undo())
		require.Equal(t, AwaitingMove, e.Snapshot().Phase)
		require.Equal(t, game.PlayerA, e.Snapshot().Active())
	})

	t.Run("undo takes back a resignation first", func(t *testing.T) {
		e := newTicTacToe(t, nil)
		require.NoError(t, e.Play(game.NewMove(0, 0)))
		require.NoError(t, e.Resign(game.PlayerB))
		require.Equal(t, game.WinFor(game.PlayerA), e.Result())

		require.NoError(t, e.Undo())
		require.Equal(t, AwaitingMove, e.Snapshot().Phase)
		require.Equal(t, 1, e.Snapshot().Ply)
	})

	t.Run("undo aborts a pending search", func(t *testing.T) {
		blocking := &blockingController{started: make(chan struct{})}
		e := newTicTacToe(t, map[game.Player]player.Controller{game.PlayerB: blocking})
		require.NoError(t, e.Play(game.NewMove(0, 0)))

		done := make(chan error, 1)
		go func() {
			done <- e.Step(context.Background())
		}()
		<-blocking.started
		require.NoError(t, e.Undo())

		select {
		case err := <-done:
			require.ErrorIs(t, err, ErrSearchAborted)
		case <-time.After(5 * time.Second):
			t.Fatal("step did not return after undo")
		}
		require.Equal(t, 0, e.Snapshot().Ply)
		require.Equal(t, AwaitingMove, e.Snapshot().Phase)
	})

	t.Run("play aborts a pending step", func(t *testing.T) {
		h := player.NewHuman()
		e := newTicTacToe(t, map[game.Player]player.Controller{game.PlayerA: h})

		done := make(chan error, 1)
		go func() {
			done <- e.Step(context.Background())
		}()
		// The controller of A stays pending until the step is aborted.
		require.Eventually(t, func() bool {
			e.mu.Lock()
			defer e.mu.Unlock()
			return e.cancel != nil
		}, 5*time.Second, time.Millisecond)
		require.NoError(t, e.Play(game.NewMove(1, 1)))

		select {
		case err := <-done:
			require.ErrorIs(t, err, ErrSearchAborted)
		case <-time.After(5 * time.Second):
			t.Fatal("step did not return after play")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		require.ErrorIs(t, h.Submit(ctx, game.NewMove(0, 0)), context.DeadlineExceeded, "The aborted request takes no move")

		snapshot := e.Snapshot()
		require.Equal(t, 1, snapshot.Ply)
		require.Equal(t, game.PlayerA, snapshot.State.OccupantAt(game.Position{Row: 1, Col: 1}))
		require.Equal(t, game.NoPlayer, snapshot.State.OccupantAt(game.Position{Row: 0, Col: 0}))
		require.Equal(t, game.PlayerB, snapshot.Active())
	})
}

func TestReset(t *testing.T) {
	e := newTicTacToe(t, nil)
	require.NoError(t, e.Play(game.NewMove(0, 0)))
	require.NoError(t, e.Resign(game.PlayerB))

	e.Reset()

	snapshot := e.Snapshot()
	require.Equal(t, AwaitingMove, snapshot.Phase)
	require.Equal(t, 0, snapshot.Ply)
	require.Equal(t, game.Status{}, snapshot.Result)
}

func TestStep(t *testing.T) {
	t.Run("reports the outcome to the controller", func(t *testing.T) {
		a := &stubController{kind: player.Human, moves: []game.Move{game.NewMove(4, 4), game.NewMove(0, 0)}}
		e := newTicTacToe(t, map[game.Player]player.Controller{game.PlayerA: a})

		var illegal *game.IllegalMoveError
		require.ErrorAs(t, e.Step(context.Background()), &illegal)
		require.NoError(t, e.Step(context.Background()))

		require.Len(t, a.reports, 2)
		require.ErrorAs(t, a.reports[0], &illegal)
		require.NoError(t, a.reports[1])
		require.Equal(t, 1, e.Snapshot().Ply)
	})

	t.Run("missing controller", func(t *testing.T) {
		e := newTicTacToe(t, nil)
		require.ErrorIs(t, e.Step(context.Background()), ErrNoController)
	})

	t.Run("budget exceeded resigns when configured", func(t *testing.T) {
		a := &stubController{kind: player.AI, err: searcher.ErrSearchBudgetExceeded}
		e := newTicTacToe(t, map[game.Player]player.Controller{game.PlayerA: a}, WithBudgetPolicy(Resign))

		require.NoError(t, e.Step(context.Background()))

		require.Equal(t, Finished, e.Snapshot().Phase)
		require.Equal(t, game.WinFor(game.PlayerB), e.Result())
		require.ErrorIs(t, a.reports[0], searcher.ErrSearchBudgetExceeded)
	})

	t.Run("budget exceeded retries without budget by default", func(t *testing.T) {
		relaxed := &stubController{kind: player.AI, moves: []game.Move{game.NewMove(1, 1)}}
		a := relaxedStub{&stubController{kind: player.AI, err: searcher.ErrSearchBudgetExceeded, relaxed: relaxed}}
		e := newTicTacToe(t, map[game.Player]player.Controller{game.PlayerA: a})

		require.NoError(t, e.Step(context.Background()))

		require.Equal(t, game.NewMove(1, 1), *e.Snapshot().LastMove)
		require.Equal(t, []error{nil}, a.reports)
	})

	t.Run("budget exceeded without a relaxed searcher fails", func(t *testing.T) {
		a := &stubController{kind: player.AI, err: searcher.ErrSearchBudgetExceeded}
		e := newTicTacToe(t, map[game.Player]player.Controller{game.PlayerA: a})

		require.ErrorIs(t, e.Step(context.Background()), searcher.ErrSearchBudgetExceeded)
		require.Equal(t, AwaitingMove, e.Snapshot().Phase)
	})
}

func TestRun(t *testing.T) {
	t.Run("perfect players draw tic-tac-toe", func(t *testing.T) {
		cfg := config.Default()
		cfg.Players = config.Players{A: player.AI, B: player.AI}
		e, err := Build(cfg)
		require.NoError(t, err)

		result, err := e.Run(context.Background())

		require.NoError(t, err)
		require.Equal(t, game.Status{Outcome: game.Draw}, result)
		require.Equal(t, 9, e.Snapshot().Ply)
	})

	t.Run("human moves come from submissions", func(t *testing.T) {
		cfg := config.Default()
		cfg.Players = config.Players{A: player.Human, B: player.Human}
		e, err := Build(cfg)
		require.NoError(t, err)
		a, ok := e.Human(game.PlayerA)
		require.True(t, ok)
		b, ok := e.Human(game.PlayerB)
		require.True(t, ok)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		type outcome struct {
			result game.Status
			err    error
		}
		done := make(chan outcome, 1)
		go func() {
			result, err := e.Run(ctx)
			done <- outcome{result, err}
		}()

		require.NoError(t, a.Submit(ctx, game.NewMove(0, 0)))
		var illegal *game.IllegalMoveError
		require.ErrorAs(t, b.Submit(ctx, game.NewMove(0, 0)), &illegal, "Rejections reach the submitter")
		require.NoError(t, b.Submit(ctx, game.NewMove(1, 0)))
		require.NoError(t, a.Submit(ctx, game.NewMove(0, 1)))
		require.NoError(t, b.Submit(ctx, game.NewMove(1, 1)))
		require.NoError(t, a.Submit(ctx, game.NewMove(0, 2)))

		got := <-done
		require.NoError(t, got.err)
		require.Equal(t, game.WinFor(game.PlayerA), got.result)
	})
}

func TestRestore(t *testing.T) {
	e := newTicTacToe(t, nil)
	require.NoError(t, e.Play(game.NewMove(0, 0)))
	require.NoError(t, e.Play(game.NewMove(2, 2)))
	record := e.Record()

	restored := newTicTacToe(t, nil)
	require.NoError(t, restored.Restore(record))

	require.True(t, e.Snapshot().State.Equal(restored.Snapshot().State))
	require.Equal(t, record, restored.Record())

	other := game.Rules{Width: 4, Height: 4, WinLength: 3}
	require.Error(t, restored.Restore(game.Record{Rules: other, Start: game.PlayerA}))
}
