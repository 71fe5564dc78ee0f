package game

import (
	"errors"
	"fmt"
	"strings"
)

// Player identifies the occupant of a cell. NoPlayer marks an empty cell.
type Player int8

const (
	NoPlayer Player = iota
	PlayerA
	PlayerB
)

// Opponent returns the other player. NoPlayer has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case PlayerA:
		return PlayerB
	case PlayerB:
		return PlayerA
	default:
		return NoPlayer
	}
}

func (p Player) String() string {
	switch p {
	case PlayerA:
		return "A"
	case PlayerB:
		return "B"
	default:
		return "-"
	}
}

// Symbol is the stone drawn for the player on a board.
func (p Player) Symbol() byte {
	switch p {
	case PlayerA:
		return 'X'
	case PlayerB:
		return 'O'
	default:
		return '.'
	}
}

func ParsePlayer(s string) (Player, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "X":
		return PlayerA, nil
	case "B", "O":
		return PlayerB, nil
	default:
		return NoPlayer, fmt.Errorf("unknown player %q", s)
	}
}

func (p Player) MarshalText() ([]byte, error) {
	if p != PlayerA && p != PlayerB {
		return nil, fmt.Errorf("cannot encode player %d", p)
	}
	return []byte(p.String()), nil
}

func (p *Player) UnmarshalText(text []byte) error {
	parsed, err := ParsePlayer(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

type Outcome int8

const (
	Undecided Outcome = iota
	Win
	Draw
)

// Status is the terminal status of a state. Winner is only set for Win.
type Status struct {
	Outcome Outcome
	Winner  Player
}

func WinFor(p Player) Status {
	return Status{Outcome: Win, Winner: p}
}

func (s Status) Decided() bool {
	return s.Outcome != Undecided
}

func (s Status) String() string {
	switch s.Outcome {
	case Win:
		return fmt.Sprintf("win(%s)", s.Winner)
	case Draw:
		return "draw"
	default:
		return "undecided"
	}
}

type StateHash uint64

// Evaluates the state to a score between -1 and 1 indicating how favorable the
// position is for player (positive) against their opponent (negative).
type Evaluate func(s *State, player Player) float64

var ErrNoHistory = errors.New("no history to undo")

// IllegalMoveError is returned when a move is not playable in a state.
type IllegalMoveError struct {
	Move   Move
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s: %s", e.Move, e.Reason)
}
