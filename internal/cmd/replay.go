package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mnk/engine"
	"mnk/game"
	"mnk/internal/render"
)

func Replay() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay file",
		Short: "Show a saved game move by move",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			noColor, _ := cmd.Flags().GetBool("no-color")
			return replay(f, cmd.OutOrStdout(), !noColor)
		},
	}

	cmd.Flags().Bool("no-color", false, "Draw the board without colors")

	return cmd
}

func replay(in io.Reader, out io.Writer, colored bool) error {
	record, err := game.ReadRecord(in)
	if err != nil {
		return err
	}
	// The engine checks the record move by move and reports the result.
	e, err := engine.New(record.Rules, record.Start, nil)
	if err != nil {
		return err
	}
	if err := e.Restore(record); err != nil {
		return err
	}
	h, err := record.Replay()
	if err != nil {
		return err
	}

	text := render.NewText(out, colored)
	fmt.Fprintf(out, "%dx%d board, %d in a row\n%s", record.Rules.Width, record.Rules.Height, record.Rules.WinLength, text.Board(h.Initial(), nil))
	for i, entry := range h.Entries() {
		mover := entry.State.ActivePlayer().Opponent()
		fmt.Fprintf(out, "\n%d. %s plays %s\n%s", i+1, mover, entry.Move, text.Board(entry.State, &entry.Move))
	}
	fmt.Fprintln(out, text.Status(e.Snapshot()))
	return nil
}
