package experiments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mnk/engine"
	"mnk/experiments/metrics"
	"mnk/game"
	"mnk/player"

	"github.com/rs/zerolog/log"
)

const NumGames = 10 // Per match up

// Experiment plays every match up a number of games on the same rules.
// Agent IDs must be positive and unique.
type Experiment struct {
	Name     string
	Rules    game.Rules
	Configs  []metrics.AgentConfig
	MatchUps [][2]metrics.AgentConfig
	Games    int
	Policy   engine.BudgetPolicy // For searches that run out of budget
}

// Summary counts the results of an experiment per agent.
type Summary struct {
	Games  int
	Wins   map[int]int // AgentConfig.ID to games won
	Draws  int
	Moves  int
	Nodes  int64
	Output string // Directory holding the CSV files
}

// Parallelization pairs sequential searches with root-split ones under the
// same time budget, to see how much the extra goroutines buy.
func Parallelization(rules game.Rules, depth int, budget time.Duration) Experiment {
	baseline := metrics.AgentConfig{ID: 1, Depth: depth, Goroutines: 1, Duration: budget, Memoize: true}
	configs := []metrics.AgentConfig{
		{ID: 2, Depth: depth, Goroutines: 2, Duration: budget, Memoize: true},
		{ID: 3, Depth: depth, Goroutines: 4, Duration: budget, Memoize: true},
		{ID: 4, Depth: depth, Goroutines: 8, Duration: budget, Memoize: true},
	}
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range configs {
		matchUps = append(matchUps, [2]metrics.AgentConfig{baseline, config})
	}
	return Experiment{
		Name:     "parallelization",
		Rules:    rules,
		Configs:  append([]metrics.AgentConfig{baseline}, configs...),
		MatchUps: matchUps,
		Games:    NumGames,
	}
}

// Depth pairs a shallow search with deeper ones.
func Depth(rules game.Rules, depths ...int) Experiment {
	var configs []metrics.AgentConfig
	for i, depth := range depths {
		configs = append(configs, metrics.AgentConfig{ID: i + 1, Depth: depth, Goroutines: 1, Memoize: true})
	}
	matchUps := [][2]metrics.AgentConfig{}
	for _, config := range configs[min(1, len(configs)):] {
		matchUps = append(matchUps, [2]metrics.AgentConfig{configs[0], config})
	}
	return Experiment{
		Name:     "depth",
		Rules:    rules,
		Configs:  configs,
		MatchUps: matchUps,
		Games:    NumGames,
	}
}

// Run plays the experiment and stores its records as CSV files under dir.
func Run(ctx context.Context, exp Experiment, dir string) (Summary, error) {
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	summary := Summary{Wins: make(map[int]int)}

	log.Info().Msgf("starting %s experiment...", exp.Name)

	for mi, matchup := range exp.MatchUps {
		config1, config2 := matchup[0], matchup[1]
		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(exp.MatchUps), config1, config2)

		games, moves, err := RunMatch(ctx, exp.Rules, config1, config2, exp.Games, engine.WithBudgetPolicy(exp.Policy))
		if err != nil {
			return summary, err
		}
		for i, gameMetric := range games {
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     config1.ID,
				Agent2:     config2.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moves[i] {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
				summary.Nodes += mm.Nodes
			}
			summary.Games++
			summary.Moves += gameMetric.TotalMoves
			if gameMetric.Winner == 0 {
				summary.Draws++
			} else {
				summary.Wins[gameMetric.Winner]++
			}
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(exp.MatchUps))
	}

	log.Info().Msgf("completed %s experiment", exp.Name)

	writer, err := metrics.NewWriter(dir, exp.Name)
	if err != nil {
		return summary, fmt.Errorf("failed to create experiment writer: %w", err)
	}
	summary.Output = writer.Dir()
	if err := writer.WriteAgentConfigs(exp.Configs); err != nil {
		return summary, fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return summary, fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return summary, fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Str("dir", writer.Dir()).Msg("stored experiment records")
	return summary, nil
}

// RunMatch plays games between two agents, alternating who moves first.
// The returned move metrics are indexed like the game metrics. Each game's
// engine is built with options.
func RunMatch(ctx context.Context, rules game.Rules, config1, config2 metrics.AgentConfig, games int, options ...engine.Option) ([]metrics.GameMetric, [][]metrics.MoveMetric, error) {
	gameMetrics := make([]metrics.GameMetric, 0, games)
	moveMetrics := make([][]metrics.MoveMetric, 0, games)
	for i := 0; i < games; i++ {
		first, second := config1, config2
		if i%2 == 1 {
			first, second = config2, config1
		}
		gm, mm, err := runGame(ctx, rules, first, second, options...)
		if err != nil {
			return nil, nil, fmt.Errorf("game %d: %w", i+1, err)
		}
		log.Debug().Msgf("game %d of %d ended with %s", i+1, games, gm.Result)
		gameMetrics = append(gameMetrics, gm)
		moveMetrics = append(moveMetrics, mm)
	}
	return gameMetrics, moveMetrics, nil
}

// runGame plays one game where first moves as player A.
func runGame(ctx context.Context, rules game.Rules, first, second metrics.AgentConfig, options ...engine.Option) (metrics.GameMetric, []metrics.MoveMetric, error) {
	agents := map[game.Player]metrics.AgentConfig{game.PlayerA: first, game.PlayerB: second}
	ais := map[game.Player]*player.AIController{
		game.PlayerA: player.NewAI(first.NewSearcher(rules)),
		game.PlayerB: player.NewAI(second.NewSearcher(rules)),
	}
	e, err := engine.New(rules, game.PlayerA, map[game.Player]player.Controller{
		game.PlayerA: ais[game.PlayerA],
		game.PlayerB: ais[game.PlayerB],
	}, options...)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}

	gameMetric := metrics.GameMetric{StartingAgent: first.ID, StartTime: time.Now()}
	var moveMetrics []metrics.MoveMetric
	for step := 1; ; step++ {
		before := e.Snapshot()
		mover := before.Active()
		err := e.Step(ctx)
		if errors.Is(err, engine.ErrGameFinished) {
			break
		}
		if err != nil {
			return metrics.GameMetric{}, nil, err
		}
		// A resignation over budget ends the game without a move.
		if e.Snapshot().Ply == before.Ply {
			continue
		}
		result := ais[mover].LastResult()
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Agent:        agents[mover].ID,
			Move:         result.Move,
			Score:        result.Score,
			SearchMetric: result.Metric,
		})
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.Result = e.Result()
	gameMetric.TotalMoves = e.Snapshot().Ply
	if gameMetric.Result.Outcome == game.Win {
		gameMetric.Winner = agents[gameMetric.Result.Winner].ID
	}
	return gameMetric, moveMetrics, nil
}
