package main

import (
	"os"

	"github.com/rs/zerolog/log"
	_ "github.com/tanpawarit/supervisor-agent/pkg/logger/autoload"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("supervisor exited")
		os.Exit(1)
	}
}
