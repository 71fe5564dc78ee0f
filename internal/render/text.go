// Package render draws games as text for terminals.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"mnk/engine"
	"mnk/game"

	"github.com/fatih/color"
)

// Text writes a board diagram and a status line for every snapshot it is given.
type Text struct {
	w       io.Writer
	stones  map[game.Player]*color.Color
	last    *color.Color
	colored bool
}

func NewText(w io.Writer, colored bool) *Text {
	t := &Text{
		w: w,
		stones: map[game.Player]*color.Color{
			game.PlayerA: color.New(color.FgRed, color.Bold),
			game.PlayerB: color.New(color.FgBlue, color.Bold),
		},
		last:    color.New(color.Underline),
		colored: colored,
	}
	for _, c := range t.stones {
		t.enable(c)
	}
	t.enable(t.last)
	return t
}

func (t *Text) enable(c *color.Color) {
	if t.colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
}

// Board draws s with row and column numbers. The stone of last is underlined.
func (t *Text) Board(s *game.State, last *game.Move) string {
	width := len(strconv.Itoa(max(s.Width(), s.Height()) - 1))
	cell := func(text string) string {
		return fmt.Sprintf("%*s", width, text)
	}

	var b strings.Builder
	b.WriteString(cell(""))
	for col := 0; col < s.Width(); col++ {
		b.WriteString(" " + cell(strconv.Itoa(col)))
	}
	b.WriteByte('\n')
	for row := 0; row < s.Height(); row++ {
		b.WriteString(cell(strconv.Itoa(row)))
		for col := 0; col < s.Width(); col++ {
			p := game.Position{Row: row, Col: col}
			occupant := s.OccupantAt(p)
			stone := cell(string(occupant.Symbol()))
			if c, ok := t.stones[occupant]; ok {
				stone = c.Sprint(stone)
				if last != nil && last.Position == p {
					stone = t.last.Sprint(stone)
				}
			}
			b.WriteString(" " + stone)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Status describes whose turn it is or how the game ended.
func (t *Text) Status(snapshot engine.Snapshot) string {
	switch snapshot.Phase {
	case engine.Finished:
		result := snapshot.Result
		if result.Outcome == game.Win {
			return fmt.Sprintf("Game over after %d moves: %s wins", snapshot.Ply, t.player(result.Winner))
		}
		return fmt.Sprintf("Game over after %d moves: %s", snapshot.Ply, result)
	case engine.Evaluating:
		return "Evaluating move..."
	default:
		return fmt.Sprintf("Move %d: %s to play", snapshot.Ply+1, t.player(snapshot.Active()))
	}
}

func (t *Text) player(p game.Player) string {
	name := fmt.Sprintf("%s (%c)", p, p.Symbol())
	if c, ok := t.stones[p]; ok {
		return c.Sprint(name)
	}
	return name
}

// Render is an engine.Observer. Evaluating snapshots are skipped since the
// next snapshot follows immediately.
func (t *Text) Render(snapshot engine.Snapshot) {
	if snapshot.Phase == engine.Evaluating {
		return
	}
	fmt.Fprintf(t.w, "\n%s%s\n", t.Board(snapshot.State, snapshot.LastMove), t.Status(snapshot))
}
