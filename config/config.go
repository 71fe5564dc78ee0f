package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"mnk/game"
	"mnk/player"
	"mnk/searcher"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// RelativePath is where the configuration file is looked up under the XDG
// config directories.
const RelativePath = "mnk/config.yaml"

const (
	RetryUnbounded = "retry"
	Resign         = "resign"
)

type Config struct {
	Board   game.Rules  `yaml:"board"`
	Start   game.Player `yaml:"start"`
	Players Players     `yaml:"players"`
	AI      AI          `yaml:"ai"`
}

type Players struct {
	A player.Kind `yaml:"a"`
	B player.Kind `yaml:"b"`
}

// Of returns the controller kind configured for p.
func (p Players) Of(pl game.Player) player.Kind {
	if pl == game.PlayerB {
		return p.B
	}
	return p.A
}

type AI struct {
	Depth            int           `yaml:"depth"`
	Weights          game.Weights  `yaml:"weights,omitempty"` // Defaults to game.DefaultWeights
	Duration         time.Duration `yaml:"duration,omitempty"`
	Nodes            int64         `yaml:"nodes,omitempty"`
	Goroutines       int           `yaml:"goroutines"`
	Deterministic    bool          `yaml:"deterministic"`
	Seed             uint64        `yaml:"seed,omitempty"` // Random tie-break seed, 0 picks one from the clock
	Memoize          bool          `yaml:"memoize"`
	OnBudgetExceeded string        `yaml:"on_budget_exceeded"`
}

func Default() Config {
	return Config{
		Board: game.TicTacToe(),
		Start: game.PlayerA,
		Players: Players{
			A: player.Human,
			B: player.AI,
		},
		AI: AI{
			Depth:            9,
			Goroutines:       1,
			Deterministic:    true,
			Memoize:          true,
			OnBudgetExceeded: RetryUnbounded,
		},
	}
}

// Parse reads a YAML configuration on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Locate returns the path of the user's configuration file, if there is one.
func Locate() (string, bool) {
	path, err := xdg.SearchConfigFile(RelativePath)
	if err != nil {
		return "", false
	}
	return path, true
}

func (c Config) Validate() error {
	if err := c.Board.Validate(); err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}
	if c.Start != game.PlayerA && c.Start != game.PlayerB {
		return fmt.Errorf("invalid start: %s", c.Start)
	}
	ai := c.AI
	if ai.Depth < 1 {
		return fmt.Errorf("invalid ai depth %d: must be positive", ai.Depth)
	}
	if ai.Weights != nil {
		if err := ai.Weights.Validate(c.Board.WinLength); err != nil {
			return fmt.Errorf("invalid ai weights: %w", err)
		}
	}
	if ai.Duration < 0 || ai.Nodes < 0 || ai.Goroutines < 0 {
		return fmt.Errorf("invalid ai budget: duration, nodes and goroutines must not be negative")
	}
	if ai.OnBudgetExceeded != RetryUnbounded && ai.OnBudgetExceeded != Resign {
		return fmt.Errorf("invalid on_budget_exceeded %q: want %q or %q", ai.OnBudgetExceeded, RetryUnbounded, Resign)
	}
	return nil
}

func (c Config) Rules() game.Rules {
	return c.Board
}

func (c Config) Evaluate() game.Evaluate {
	weights := c.AI.Weights
	if weights == nil {
		weights = game.DefaultWeights(c.Board.WinLength)
	}
	return c.Board.WindowEvaluator(weights)
}

func (c Config) SearchOptions() []searcher.Option {
	ai := c.AI
	options := []searcher.Option{
		searcher.WithEvaluationFn(c.Evaluate()),
		searcher.WithGoroutines(ai.Goroutines),
		searcher.WithDuration(ai.Duration),
		searcher.WithNodeBudget(ai.Nodes),
		searcher.WithMetrics(),
	}
	if ai.Memoize {
		options = append(options, searcher.WithTranspositions())
	}
	if !ai.Deterministic {
		seed := ai.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		options = append(options, searcher.WithRandomTieBreak(seed))
	}
	return options
}

func (c Config) NewSearcher() *searcher.AlphaBeta {
	return searcher.NewAlphaBeta(c.Rules(), c.AI.Depth, c.SearchOptions()...)
}
