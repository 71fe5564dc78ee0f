package metrics

import (
	"time"

	"mnk/game"
	"mnk/searcher"
)

// AgentConfig describes one AI player of an experiment.
type AgentConfig struct {
	ID         int
	Depth      int
	Goroutines int
	Duration   time.Duration // Per move, 0 for no time limit
	Nodes      int64         // Per move, 0 for no node limit
	Memoize    bool
}

func (c AgentConfig) NewSearcher(rules game.Rules) *searcher.AlphaBeta {
	options := []searcher.Option{
		searcher.WithGoroutines(c.Goroutines),
		searcher.WithDuration(c.Duration),
		searcher.WithNodeBudget(c.Nodes),
		searcher.WithMetrics(),
	}
	if c.Memoize {
		options = append(options, searcher.WithTranspositions())
	}
	return searcher.NewAlphaBeta(rules, c.Depth, options...)
}

type MoveMetric struct {
	Step  int
	Agent int // AgentConfig.ID
	Move  game.Move
	Score float64
	searcher.SearchMetric
}

type GameMetric struct {
	StartingAgent int // AgentConfig.ID
	Winner        int // AgentConfig.ID, 0 for a draw
	Result        game.Status
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	TotalMoves    int
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID
	Agent2 int // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}
