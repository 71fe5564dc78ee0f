package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func play(t *testing.T, rules Rules, s *State, moves ...Move) *State {
	t.Helper()
	for _, move := range moves {
		next, err := rules.Apply(s, move)
		require.NoError(t, err, "move %s", move)
		s = next
	}
	return s
}

func newState(t *testing.T, rules Rules) *State {
	t.Helper()
	s, err := rules.NewState(PlayerA)
	require.NoError(t, err)
	return s
}

func TestTicTacToeScenario(t *testing.T) {
	rules := TicTacToe()
	s := newState(t, rules)
	require.Len(t, rules.LegalMoves(s), 9)

	s = play(t, rules, s, NewMove(0, 0))
	require.Len(t, rules.LegalMoves(s), 8, "A corner leaves eight cells")
	require.Equal(t, PlayerB, s.ActivePlayer())

	s = play(t, rules, s, NewMove(1, 0), NewMove(0, 1), NewMove(1, 1))
	require.False(t, s.Status().Decided())

	s = play(t, rules, s, NewMove(0, 2))
	require.Equal(t, WinFor(PlayerA), s.Status(), "The third cell of the row wins")
	require.Empty(t, rules.LegalMoves(s))

	_, err := rules.Apply(s, NewMove(2, 2))
	var illegal *IllegalMoveError
	require.ErrorAs(t, err, &illegal)
	require.Equal(t, "game is over", illegal.Reason)
}

func TestApply(t *testing.T) {
	rules := TicTacToe()

	t.Run("rejects illegal moves with a reason", func(t *testing.T) {
		s := play(t, rules, newState(t, rules), NewMove(1, 1))
		for move, reason := range map[Move]string{
			NewMove(1, 1):  "cell is occupied",
			NewMove(3, 0):  "out of bounds",
			NewMove(0, -1): "out of bounds",
			{Position: Position{0, 0}, Action: Action(7)}: "unknown action 7",
		} {
			_, err := rules.Apply(s, move)
			var illegal *IllegalMoveError
			require.ErrorAs(t, err, &illegal, "move %s", move)
			require.Equal(t, reason, illegal.Reason)
		}
	})

	t.Run("leaves the previous state untouched", func(t *testing.T) {
		s := newState(t, rules)
		key := s.Key()
		next := play(t, rules, s, NewMove(2, 2))

		require.Equal(t, key, s.Key())
		require.Equal(t, NoPlayer, s.OccupantAt(Position{2, 2}))
		require.Equal(t, PlayerA, next.OccupantAt(Position{2, 2}))
		require.Equal(t, 1, next.Ply())
	})

	t.Run("full board without a line is a draw", func(t *testing.T) {
		s := play(t, rules, newState(t, rules),
			NewMove(0, 0), NewMove(0, 1), NewMove(0, 2),
			NewMove(1, 1), NewMove(1, 0), NewMove(1, 2),
			NewMove(2, 1), NewMove(2, 0), NewMove(2, 2),
		)
		require.Equal(t, Status{Outcome: Draw}, s.Status())
		require.Equal(t, "draw", s.Status().String())
	})

	t.Run("diagonal wins", func(t *testing.T) {
		s := play(t, rules, newState(t, rules),
			NewMove(0, 2), NewMove(0, 0),
			NewMove(1, 1), NewMove(0, 1),
			NewMove(2, 0),
		)
		require.Equal(t, WinFor(PlayerA), s.Status())
	})

	t.Run("move budget ends in a draw", func(t *testing.T) {
		budgeted := Rules{Width: 5, Height: 5, WinLength: 4, MaxPly: 2}
		s := play(t, budgeted, newState(t, budgeted), NewMove(0, 0), NewMove(4, 4))
		require.Equal(t, Status{Outcome: Draw}, s.Status())
	})
}

func TestGravity(t *testing.T) {
	rules := Rules{Width: 7, Height: 6, WinLength: 4, Gravity: true}
	s := newState(t, rules)

	moves := rules.LegalMoves(s)
	require.Len(t, moves, 7, "Only the bottom row is playable on an empty board")
	for _, move := range moves {
		require.Equal(t, 5, move.Row)
	}

	_, err := rules.Apply(s, NewMove(0, 3))
	var illegal *IllegalMoveError
	require.ErrorAs(t, err, &illegal)
	require.Equal(t, "cell is not supported", illegal.Reason)

	s = play(t, rules, s, NewMove(5, 3))
	require.Contains(t, rules.LegalMoves(s), NewMove(4, 3))

	// A stacks column 0, B stacks column 1
	s = play(t, rules, newState(t, rules),
		NewMove(5, 0), NewMove(5, 1),
		NewMove(4, 0), NewMove(4, 1),
		NewMove(3, 0), NewMove(3, 1),
		NewMove(2, 0),
	)
	require.Equal(t, WinFor(PlayerA), s.Status())
}

func TestNewState(t *testing.T) {
	_, err := TicTacToe().NewState(NoPlayer)
	require.Error(t, err)

	_, err = Rules{Width: 3, Height: 3, WinLength: 4}.NewState(PlayerA)
	require.Error(t, err)

	s, err := TicTacToe().NewState(PlayerB)
	require.NoError(t, err)
	require.Equal(t, PlayerB, s.ActivePlayer())
	require.Equal(t, 0, s.Ply())
}

// Random playouts check the properties every reachable state must have.
func TestRandomPlayouts(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, rules := range []Rules{
		TicTacToe(),
		{Width: 5, Height: 4, WinLength: 3},
		{Width: 7, Height: 6, WinLength: 4, Gravity: true},
		{Width: 6, Height: 6, WinLength: 4, MaxPly: 20},
	} {
		for i := 0; i < 50; i++ {
			s := newState(t, rules)
			initial := s
			var moves []Move
			for !s.Status().Decided() {
				legal := rules.LegalMoves(s)
				require.NotEmpty(t, legal, "Undecided states have legal moves")
				for _, move := range legal {
					next, err := rules.Apply(s, move)
					require.NoError(t, err, "Every legal move is accepted")
					require.Equal(t, s.Ply()+1, next.Ply())
					require.Equal(t, s.ActivePlayer().Opponent(), next.ActivePlayer())
				}
				move := legal[rng.Intn(len(legal))]
				moves = append(moves, move)
				s = play(t, rules, s, move)
				require.Equal(t, s.Status(), rules.Status(s), "Cached status matches a full scan")
				require.Equal(t, s.Status(), s.Status(), "Status is stable")
			}

			h, err := Replay(rules, initial, moves)
			require.NoError(t, err)
			require.True(t, s.Equal(h.Current()))
			require.Equal(t, s.Hash(), h.Current().Hash())
		}
	}
}

func TestStateKey(t *testing.T) {
	rules := TicTacToe()
	a := play(t, rules, newState(t, rules), NewMove(0, 0), NewMove(1, 1), NewMove(2, 2))
	b := play(t, rules, newState(t, rules), NewMove(2, 2), NewMove(1, 1), NewMove(0, 0))
	c := play(t, rules, newState(t, rules), NewMove(2, 2), NewMove(1, 1), NewMove(0, 1))

	require.True(t, a.Equal(b), "Transpositions are equal")
	require.Equal(t, a.Hash(), b.Hash())
	require.False(t, a.Equal(c))
	require.Equal(t, "X . .\n. O .\n. . X\n", a.String())
}
