package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mnk/config"
	"mnk/engine"
	"mnk/game"
	"mnk/internal/render"
	"mnk/player"
)

const spinnerCharSet = 14

func Play() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game in the terminal",
		Long: heredoc.Doc(`
			play starts a game with the configured board and players. Human
			players enter moves as "row,col", counted from the top left corner.

			Besides moves, these commands are understood:
			  undo    take back the last move (and the reply of the computer)
			  resign  give up the game
			  quit    leave without finishing
		`),
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := applyPlayFlags(cmd, &cfg); err != nil {
				return err
			}
			noColor, _ := cmd.Flags().GetBool("no-color")
			save, _ := cmd.Flags().GetString("save")
			return play(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), !noColor, save)
		},
	}

	cmd.Flags().String("a", "", "Controller of player A: human or ai")
	cmd.Flags().String("b", "", "Controller of player B: human or ai")
	cmd.Flags().Int("depth", 0, "Search depth of the computer")
	cmd.Flags().String("start", "", "Player moving first: A or B")
	cmd.Flags().String("save", "", "Write the game record to this file when the game ends")
	cmd.Flags().Bool("no-color", false, "Draw the board without colors")

	return cmd
}

func applyPlayFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	for flag, seat := range map[string]*player.Kind{"a": &cfg.Players.A, "b": &cfg.Players.B} {
		if !flags.Changed(flag) {
			continue
		}
		value, _ := flags.GetString(flag)
		kind, err := player.ParseKind(value)
		if err != nil {
			return err
		}
		*seat = kind
	}
	if flags.Changed("depth") {
		cfg.AI.Depth, _ = flags.GetInt("depth")
	}
	if flags.Changed("start") {
		value, _ := flags.GetString("start")
		start, err := game.ParsePlayer(value)
		if err != nil {
			return err
		}
		cfg.Start = start
	}
	return cfg.Validate()
}

func play(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer, colored bool, save string) error {
	text := render.NewText(out, colored)
	s := spinner.New(spinner.CharSets[spinnerCharSet], 100*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = " thinking..."
	thinking := func(snapshot engine.Snapshot) {
		if snapshot.Phase == engine.AwaitingMove && cfg.Players.Of(snapshot.Active()) == player.AI {
			s.Start()
		} else {
			s.Stop()
		}
	}
	defer s.Stop()

	e, err := engine.Build(cfg)
	if err != nil {
		return err
	}
	text.Render(e.Snapshot())
	thinking(e.Snapshot())
	// Subscribed only now so the spinner never draws over the board.
	e.Subscribe(func(snapshot engine.Snapshot) {
		s.Stop()
		text.Render(snapshot)
		thinking(snapshot)
	})
	log.Debug().Stringer("id", e.ID()).Msg("game started")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	done := make(chan error, 1)
	go func() {
		_, err := e.Run(ctx)
		done <- err
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	warn := color.New(color.FgYellow)
	if !colored {
		warn.DisableColor()
	}
	for {
		select {
		case err := <-done:
			s.Stop()
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			if e.Snapshot().Phase != engine.Finished {
				fmt.Fprintln(out, "Game abandoned")
			}
			if save != "" {
				return writeRecord(save, e.Record())
			}
			return nil

		case line, ok := <-lines:
			if !ok {
				lines = nil
				if hasHuman(cfg) {
					stop()
				}
				continue
			}
			if err := handle(ctx, e, cfg, line, stop); err != nil {
				warn.Fprintln(out, err)
			}
		}
	}
}

func hasHuman(cfg config.Config) bool {
	return cfg.Players.A == player.Human || cfg.Players.B == player.Human
}

// handle carries out one line of input.
func handle(ctx context.Context, e *engine.Engine, cfg config.Config, line string, quit func()) error {
	line = strings.ToLower(strings.TrimSpace(line))
	active := e.Snapshot().Active()
	switch line {
	case "":
		return nil
	case "quit", "q", "exit":
		quit()
		return nil
	case "undo", "u":
		if err := e.Undo(); err != nil {
			return err
		}
		// Take back the computer's reply as well, so the human moves again.
		if snapshot := e.Snapshot(); snapshot.Ply > 0 && cfg.Players.Of(snapshot.Active()) == player.AI && hasHuman(cfg) {
			return e.Undo()
		}
		return nil
	case "resign":
		if cfg.Players.Of(active) != player.Human {
			return fmt.Errorf("only a human player can resign, %s is to move", active)
		}
		return e.Resign(active)
	}

	move, err := game.ParseMove(line)
	if err != nil {
		return err
	}
	h, ok := e.Human(active)
	if !ok {
		return fmt.Errorf("it is not a human's turn")
	}
	return h.Submit(ctx, move)
}

func writeRecord(path string, record game.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	defer f.Close()

	if err := game.WriteRecord(f, record); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("saved game")
	return nil
}
