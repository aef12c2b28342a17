package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

var (
	logLevel   string
	configPath string
	engineConf EngineConfig

	// position flags, shared by the commands working on a single position
	positionMoves    string
	positionNotation string
)

var rootCmd = &cobra.Command{
	Use:           "uttt",
	Short:         "Ultimate tic-tac-toe engine",
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(strings.ToLower(logLevel))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		zerolog.SetGlobalLevel(level)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

		engineConf, err = LoadEngineConfig(configPath)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "JSON engine configuration file")
}

func addPositionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&positionMoves, "moves", "m", "", "Comma separated moves played from the empty board")
	cmd.Flags().StringVarP(&positionNotation, "notation", "p", "", "Position in the board notation, e.g. '9/9/9/9/9/9/9/9/9 x -'")
	cmd.MarkFlagsMutuallyExclusive("moves", "notation")
}

// Position given by the position flags, the empty board by default
func parsePosition() (uttt.Position, error) {
	switch {
	case positionNotation != "":
		return uttt.FromNotation(positionNotation)
	case positionMoves != "":
		return uttt.FromMoveList(positionMoves)
	}
	return uttt.NewPosition(), nil
}
