package game

import "fmt"

const MaxBoardSize = 64

// Rules of an m,n,k-game: players alternately place stones on a Width x Height
// board and the first to line up WinLength stones wins.
type Rules struct {
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	WinLength int  `yaml:"win_length"`
	Gravity   bool `yaml:"gravity"`  // Stones must rest on the bottom row or on another stone
	MaxPly    int  `yaml:"max_ply"` // Move budget, 0 for the whole board
}

// The four line directions: horizontal, vertical and both diagonals.
var directions = [4]Position{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

func TicTacToe() Rules {
	return Rules{Width: 3, Height: 3, WinLength: 3}
}

func (r Rules) Validate() error {
	if r.Width < 1 || r.Height < 1 || r.Width > MaxBoardSize || r.Height > MaxBoardSize {
		return fmt.Errorf("board %dx%d: dimensions must be between 1 and %d", r.Width, r.Height, MaxBoardSize)
	}
	if r.WinLength < 1 || r.WinLength > max(r.Width, r.Height) {
		return fmt.Errorf("win length %d does not fit a %dx%d board", r.WinLength, r.Width, r.Height)
	}
	if r.MaxPly < 0 {
		return fmt.Errorf("max ply %d must not be negative", r.MaxPly)
	}
	return nil
}

func (r Rules) NewState(start Player) (*State, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if start != PlayerA && start != PlayerB {
		return nil, fmt.Errorf("starting player must be A or B, got %s", start)
	}
	return &State{
		width:  r.Width,
		height: r.Height,
		cells:  make([]Player, r.Width*r.Height),
		active: start,
	}, nil
}

// LegalMoves lists every playable move in row-major order. Terminal states
// have no legal moves.
func (r Rules) LegalMoves(s *State) []Move {
	if s.status.Decided() {
		return nil
	}
	moves := make([]Move, 0, len(s.cells)-s.ply)
	for row := 0; row < s.height; row++ {
		for col := 0; col < s.width; col++ {
			p := Position{Row: row, Col: col}
			if r.playable(s, p) {
				moves = append(moves, Move{Position: p})
			}
		}
	}
	return moves
}

// Apply returns the state after move, or an *IllegalMoveError. The result's
// status is decided by this call, so a winning move is never detected late.
func (r Rules) Apply(s *State, move Move) (*State, error) {
	if err := r.check(s, move); err != nil {
		return nil, err
	}

	next := s.copy()
	next.cells[next.index(move.Position)] = s.active
	next.ply++
	next.active = s.active.Opponent()
	next.status = r.statusAfter(next, move.Position, s.active)
	return next, nil
}

func (r Rules) check(s *State, move Move) error {
	illegal := func(reason string) error {
		return &IllegalMoveError{Move: move, Reason: reason}
	}
	switch {
	case s.status.Decided():
		return illegal("game is over")
	case move.Action != Place:
		return illegal(fmt.Sprintf("unknown action %d", move.Action))
	case !s.InBounds(move.Position):
		return illegal("out of bounds")
	case s.cells[s.index(move.Position)] != NoPlayer:
		return illegal("cell is occupied")
	case !r.supported(s, move.Position):
		return illegal("cell is not supported")
	}
	return nil
}

func (r Rules) playable(s *State, p Position) bool {
	return s.cells[s.index(p)] == NoPlayer && r.supported(s, p)
}

func (r Rules) supported(s *State, p Position) bool {
	if !r.Gravity || p.Row == s.height-1 {
		return true
	}
	return s.cells[s.index(Position{Row: p.Row + 1, Col: p.Col})] != NoPlayer
}

// statusAfter only inspects lines through the stone just placed.
func (r Rules) statusAfter(s *State, placed Position, mover Player) Status {
	for _, dir := range directions {
		run := 1 + r.count(s, placed, dir, mover) + r.count(s, placed, Position{-dir.Row, -dir.Col}, mover)
		if run >= r.WinLength {
			return WinFor(mover)
		}
	}
	if r.exhausted(s) {
		return Status{Outcome: Draw}
	}
	return Status{}
}

// count returns the number of consecutive stones of player from p (exclusive)
// in direction dir.
func (r Rules) count(s *State, p Position, dir Position, player Player) int {
	n := 0
	for {
		p = Position{Row: p.Row + dir.Row, Col: p.Col + dir.Col}
		if !s.InBounds(p) || s.cells[s.index(p)] != player {
			return n
		}
		n++
	}
}

func (r Rules) exhausted(s *State) bool {
	if r.MaxPly > 0 && s.ply >= r.MaxPly {
		return true
	}
	for row := 0; row < s.height; row++ {
		for col := 0; col < s.width; col++ {
			if r.playable(s, Position{Row: row, Col: col}) {
				return false
			}
		}
	}
	return true
}

// Status recomputes the terminal status from the board alone. It always agrees
// with the status cached by Apply.
func (r Rules) Status(s *State) Status {
	for row := 0; row < s.height; row++ {
		for col := 0; col < s.width; col++ {
			p := Position{Row: row, Col: col}
			player := s.cells[s.index(p)]
			if player == NoPlayer {
				continue
			}
			for _, dir := range directions {
				if 1+r.count(s, p, dir, player) >= r.WinLength {
					return WinFor(player)
				}
			}
		}
	}
	if r.exhausted(s) {
		return Status{Outcome: Draw}
	}
	return Status{}
}
