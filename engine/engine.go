package engine

import (
	"errors"
	"fmt"
	"strings"

	"mnk/game"

	"github.com/google/uuid"
)

var (
	ErrGameFinished   = errors.New("game is finished")
	ErrSearchAborted  = errors.New("search was aborted")
	ErrNoController   = errors.New("no controller for player")
	ErrStepInProgress = errors.New("a step is already in progress")
)

// Phase is the state of the turn loop.
type Phase int

const (
	AwaitingMove Phase = iota
	Evaluating
	Finished
)

func (p Phase) String() string {
	switch p {
	case AwaitingMove:
		return "awaiting move"
	case Evaluating:
		return "evaluating"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// BudgetPolicy decides what happens when an AI search runs out of budget
// before evaluating a single root move.
type BudgetPolicy int

const (
	// RetryUnbounded searches again without time or node budgets.
	RetryUnbounded BudgetPolicy = iota
	// Resign forfeits the game to the opponent.
	Resign
)

func (b BudgetPolicy) String() string {
	if b == Resign {
		return "resign"
	}
	return "retry"
}

func ParseBudgetPolicy(s string) (BudgetPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "retry", "":
		return RetryUnbounded, nil
	case "resign":
		return Resign, nil
	default:
		return RetryUnbounded, fmt.Errorf("unknown budget policy %q", s)
	}
}

// Snapshot is a read-only view of the engine after a transition.
type Snapshot struct {
	GameID   uuid.UUID
	Phase    Phase
	State    *game.State
	Result   game.Status
	LastMove *game.Move // Nil at the initial state
	Ply      int
}

// Active returns the player expected to move, or NoPlayer once finished.
func (s Snapshot) Active() game.Player {
	if s.Phase == Finished {
		return game.NoPlayer
	}
	return s.State.ActivePlayer()
}

type Observer func(Snapshot)

type Option func(e *Engine)

func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		if observer != nil {
			e.observers = append(e.observers, observer)
		}
	}
}

func WithGameID(id uuid.UUID) Option {
	return func(e *Engine) {
		e.id = id
	}
}

func WithBudgetPolicy(policy BudgetPolicy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}
