package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/adrg/xdg"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"mnk/engine"
	"mnk/experiments"
)

func Bench() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Play computer against computer and record search metrics",
		Long: heredoc.Doc(`
			bench plays match ups between differently configured searches on the
			configured board and writes game and move records as CSV files.

			Experiments:
			  depth            a depth 1 search against deeper ones
			  parallelization  one goroutine against several, under a time budget
		`),
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			name, _ := flags.GetString("experiment")
			games, _ := flags.GetInt("games")
			out, _ := flags.GetString("out")
			budget, _ := flags.GetDuration("duration")

			var exp experiments.Experiment
			switch name {
			case "depth":
				depths := []int{1}
				for d := 2; d <= cfg.AI.Depth; d += 2 {
					depths = append(depths, d)
				}
				exp = experiments.Depth(cfg.Board, depths...)
			case "parallelization":
				exp = experiments.Parallelization(cfg.Board, cfg.AI.Depth, budget)
			default:
				return fmt.Errorf("unknown experiment %q", name)
			}
			exp.Games = games
			if exp.Policy, err = engine.ParseBudgetPolicy(cfg.AI.OnBudgetExceeded); err != nil {
				return err
			}

			s := spinner.New(spinner.CharSets[spinnerCharSet], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
			s.Suffix = " playing " + exp.Name + " match ups..."
			s.Start()
			summary, err := experiments.Run(cmd.Context(), exp, out)
			s.Stop()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d games, %d moves, %d nodes\n", summary.Games, summary.Moves, summary.Nodes)
			ids := make([]int, 0, len(exp.Configs))
			for _, config := range exp.Configs {
				ids = append(ids, config.ID)
			}
			sort.Ints(ids)
			for _, id := range ids {
				fmt.Fprintf(w, "agent %d: %d wins\n", id, summary.Wins[id])
			}
			fmt.Fprintf(w, "draws: %d\nrecords: %s\n", summary.Draws, summary.Output)
			return nil
		},
	}

	cmd.Flags().StringP("experiment", "e", "depth", "Experiment to run: depth or parallelization")
	cmd.Flags().IntP("games", "g", experiments.NumGames, "Games per match up")
	cmd.Flags().StringP("out", "o", filepath.Join(xdg.DataHome, "mnk", "experiments"), "Directory for the CSV records")
	cmd.Flags().Duration("duration", 50*time.Millisecond, "Time budget per move for the parallelization experiment")

	return cmd
}
