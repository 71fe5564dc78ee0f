package game

// Entry is one applied move and the state it produced.
type Entry struct {
	Move  Move
	State *State
}

// History is the ordered list of moves applied since an initial state.
// Replaying its moves through Rules.Apply reproduces every recorded state.
type History struct {
	initial *State
	entries []Entry
}

func NewHistory(initial *State) *History {
	return &History{initial: initial}
}

func (h *History) Push(move Move, state *State) {
	h.entries = append(h.entries, Entry{Move: move, State: state})
}

// Pop removes the most recent entry. It fails with ErrNoHistory at the initial
// state.
func (h *History) Pop() (Entry, error) {
	if len(h.entries) == 0 {
		return Entry{}, ErrNoHistory
	}
	last := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]
	return last, nil
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Initial() *State {
	return h.initial
}

func (h *History) Current() *State {
	if len(h.entries) == 0 {
		return h.initial
	}
	return h.entries[len(h.entries)-1].State
}

// Last returns the most recent entry, if any.
func (h *History) Last() (Entry, bool) {
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *History) Moves() []Move {
	moves := make([]Move, len(h.entries))
	for i, entry := range h.entries {
		moves[i] = entry.Move
	}
	return moves
}

func (h *History) Entries() []Entry {
	return append([]Entry(nil), h.entries...)
}

// Replay applies moves from initial and records every resulting state.
func Replay(rules Rules, initial *State, moves []Move) (*History, error) {
	h := NewHistory(initial)
	state := initial
	for _, move := range moves {
		next, err := rules.Apply(state, move)
		if err != nil {
			return nil, err
		}
		h.Push(move, next)
		state = next
	}
	return h, nil
}
