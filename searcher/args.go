package searcher

import "mnk/game"

// Scores for terminal states, from the searching player's perspective. They
// lie far outside the [-1, 1] heuristic range so a forced win always beats a
// good position.
const (
	Win  = 1e6
	Loss = -Win
	Draw = 0.0
)

// tickInterval is how many nodes are searched between clock and context checks.
const tickInterval = 256

// terminalScore prefers quicker wins and slower losses. Ply is a property of
// the state, so the score does not depend on the path that reached it.
func terminalScore(status game.Status, ply int, root game.Player) float64 {
	switch {
	case status.Outcome == game.Draw:
		return Draw
	case status.Winner == root:
		return Win - float64(ply)
	default:
		return Loss + float64(ply)
	}
}
