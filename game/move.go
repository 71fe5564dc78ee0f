package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Position addresses a cell. Row 0 is the top row.
type Position struct {
	Row int
	Col int
}

func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.Row, p.Col)
}

// Move represents an action taken by the active player relative to a state.
type Move struct {
	Position
	Action Action
}

func NewMove(row, col int) Move {
	return Move{Position: Position{Row: row, Col: col}}
}

func (m Move) String() string {
	if m.Action == Place {
		return m.Position.String()
	}
	return m.Action.String() + " " + m.Position.String()
}

// ParseMove reads the "row,col" text form of a placement.
func ParseMove(s string) (Move, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 2 {
		return Move{}, fmt.Errorf("move %q: want \"row,col\"", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Move{}, fmt.Errorf("move %q: bad row: %w", s, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return Move{}, fmt.Errorf("move %q: bad column: %w", s, err)
	}
	return NewMove(row, col), nil
}

func (m Move) MarshalText() ([]byte, error) {
	if m.Action != Place {
		return nil, fmt.Errorf("cannot encode %s move", m.Action)
	}
	return []byte(m.Position.String()), nil
}

func (m *Move) UnmarshalText(text []byte) error {
	parsed, err := ParseMove(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
