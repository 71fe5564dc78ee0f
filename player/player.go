package player

import (
	"context"
	"fmt"
	"strings"

	"mnk/game"
)

// Kind tells whether moves of a player come from outside or from a search.
type Kind int

const (
	Human Kind = iota
	AI
)

func (k Kind) String() string {
	switch k {
	case Human:
		return "human"
	case AI:
		return "ai"
	default:
		return "unknown"
	}
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human":
		return Human, nil
	case "ai", "computer":
		return AI, nil
	default:
		return Human, fmt.Errorf("unknown controller kind %q", s)
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Controller supplies the moves of one player.
type Controller interface {
	Kind() Kind
	// FindMove returns the move to play in state. It may block until the move
	// is known or ctx is done.
	FindMove(ctx context.Context, state *game.State) (game.Move, error)
	// Report tells the controller how a move it supplied was received: nil when
	// it was played, the rejection otherwise.
	Report(move game.Move, err error)
}
