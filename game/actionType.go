package game

// Action represents the kind of action a move performs.
type Action int

const (
	Place Action = iota
)

func (a Action) String() string {
	switch a {
	case Place:
		return "place"
	default:
		return "unknown"
	}
}
