package game

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Weights scores open windows by stone count: Weights[i] is the value of a
// window holding i+1 stones of one player and none of the other.
type Weights []float64

// DefaultWeights grows geometrically so a window one stone closer to a line
// outweighs several weaker ones.
func DefaultWeights(winLength int) Weights {
	weights := make(Weights, max(winLength-1, 0))
	w := 1.0
	for i := range weights {
		weights[i] = w
		w *= 4
	}
	return weights
}

func (w Weights) Validate(winLength int) error {
	if len(w) != max(winLength-1, 0) {
		return fmt.Errorf("want %d weights for win length %d, got %d", max(winLength-1, 0), winLength, len(w))
	}
	for i, v := range w {
		if v < 0 {
			return fmt.Errorf("weight %d is negative: %v", i, v)
		}
	}
	return nil
}

// WindowEvaluator tallies every WinLength-long window that is still winnable
// by exactly one player, producing a score between -1 and 1 from player's
// perspective.
func (r Rules) WindowEvaluator(weights Weights) Evaluate {
	if err := weights.Validate(r.WinLength); err != nil {
		panic(err)
	}
	return func(s *State, player Player) float64 {
		features := r.windowFeatures(s)
		mine := floats.Dot(weights, features[player])
		theirs := floats.Dot(weights, features[player.Opponent()])
		return normalize(mine, theirs)
	}
}

// windowFeatures counts, per player, the windows holding i+1 of their stones
// and no opposing stone.
func (r Rules) windowFeatures(s *State) map[Player][]float64 {
	k := r.WinLength
	features := map[Player][]float64{
		PlayerA: make([]float64, max(k-1, 0)),
		PlayerB: make([]float64, max(k-1, 0)),
	}
	for row := 0; row < s.height; row++ {
		for col := 0; col < s.width; col++ {
			for _, dir := range directions {
				end := Position{Row: row + dir.Row*(k-1), Col: col + dir.Col*(k-1)}
				if !s.InBounds(end) {
					continue
				}
				var counts [3]int
				for i := 0; i < k; i++ {
					counts[s.cells[s.index(Position{Row: row + dir.Row*i, Col: col + dir.Col*i})]]++
				}
				a, b := counts[PlayerA], counts[PlayerB]
				switch {
				case a > 0 && b == 0 && a < k:
					features[PlayerA][a-1]++
				case b > 0 && a == 0 && b < k:
					features[PlayerB][b-1]++
				}
			}
		}
	}
	return features
}

// normalize normalizes value relative to otherValue to a score between -1 and 1
func normalize(value float64, otherValue float64) float64 {
	total := value + otherValue
	if total == 0 {
		return 0
	}
	return (value - otherValue) / total
}
