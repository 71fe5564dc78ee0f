package game

import (
	"hash/fnv"
	"strings"
)

// State is an immutable snapshot of one point of a game. New states are only
// produced by Rules.Apply, so a *State may be shared freely across goroutines.
type State struct {
	width  int
	height int
	cells  []Player // Row-major occupants
	active Player
	ply    int
	status Status
}

func (s *State) Width() int {
	return s.width
}

func (s *State) Height() int {
	return s.height
}

func (s *State) InBounds(p Position) bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < s.height && p.Col < s.width
}

// OccupantAt returns NoPlayer for empty and out of bounds cells.
func (s *State) OccupantAt(p Position) Player {
	if !s.InBounds(p) {
		return NoPlayer
	}
	return s.cells[s.index(p)]
}

func (s *State) ActivePlayer() Player {
	return s.active
}

// Ply is the number of moves applied since the initial state.
func (s *State) Ply() int {
	return s.ply
}

func (s *State) Status() Status {
	return s.status
}

// Key is the canonical equality key: dimensions, board, active player and
// status. Two states are Equal iff their keys are identical.
func (s *State) Key() string {
	var b strings.Builder
	b.Grow(len(s.cells) + 5)
	b.WriteByte(byte(s.width))
	b.WriteByte(byte(s.height))
	for _, cell := range s.cells {
		b.WriteByte(byte(cell))
	}
	b.WriteByte(byte(s.active))
	b.WriteByte(byte(s.status.Outcome))
	b.WriteByte(byte(s.status.Winner))
	return b.String()
}

func (s *State) Hash() StateHash {
	h := fnv.New64a()
	h.Write([]byte(s.Key()))
	return StateHash(h.Sum64())
}

func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.width != other.width || s.height != other.height || s.active != other.active || s.status != other.status {
		return false
	}
	for i, cell := range s.cells {
		if other.cells[i] != cell {
			return false
		}
	}
	return true
}

// String draws the board one row per line, top row first.
func (s *State) String() string {
	var b strings.Builder
	for row := 0; row < s.height; row++ {
		for col := 0; col < s.width; col++ {
			if col > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(s.cells[row*s.width+col].Symbol())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (s *State) index(p Position) int {
	return p.Row*s.width + p.Col
}

func (s *State) copy() *State {
	cells := make([]Player, len(s.cells))
	copy(cells, s.cells)
	return &State{
		width:  s.width,
		height: s.height,
		cells:  cells,
		active: s.active,
		ply:    s.ply,
		status: s.status,
	}
}
