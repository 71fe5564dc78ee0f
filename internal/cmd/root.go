// Package cmd implements the mnk command line.
package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mnk/config"
)

func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "mnk",
		Short: "Play m,n,k-games against an alpha-beta search",
		Long: heredoc.Doc(`
			mnk plays m,n,k-games such as tic-tac-toe, gomoku or connect four
			between humans and a minimax search with alpha-beta pruning.

			Settings are read from --config, or else from mnk/config.yaml in
			the XDG config directories.
		`),
		Args: cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			if cmd.Flag("debug").Changed {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			if cmd.Flag("trace").Changed {
				zerolog.SetGlobalLevel(zerolog.TraceLevel)
			}
		},
	}

	root.PersistentFlags().BoolP("debug", "d", false, "Show debug logs")
	root.PersistentFlags().BoolP("trace", "t", false, "Show trace logs")
	root.PersistentFlags().StringP("config", "c", "", "Path of the configuration file")

	root.AddCommand(Play())
	root.AddCommand(Replay())
	root.AddCommand(Bench())

	return root
}

// loadConfig reads the configuration named by --config, the user's
// configuration file, or the defaults, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		found, ok := config.Locate()
		if !ok {
			log.Debug().Msg("no configuration file, using defaults")
			return config.Default(), nil
		}
		path = found
	}
	log.Debug().Str("path", path).Msg("loading configuration")
	return config.Load(path)
}
