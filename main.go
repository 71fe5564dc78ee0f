package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mnk/internal/cmd"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if err := cmd.Root().Execute(); err != nil {
		log.Error().Err(err).Msg("mnk failed")
		os.Exit(1)
	}
}
