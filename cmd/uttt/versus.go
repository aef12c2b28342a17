package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/IlikeChooros/uttt-engine/pkg/bench"
	"github.com/IlikeChooros/uttt-engine/pkg/mcts"
)

var (
	versusGames    int
	versusThreads  int
	versusMovetime time.Duration
	versusP1       string
	versusP2       string
	versusOut      string
	versusTieBreak bool
)

func init() {
	versusCmd := &cobra.Command{
		Use:   "versus",
		Short: "Play a match between two engines",
		Long: `Play a series of games between two engines, each game starts with a random player.

Examples:
  uttt versus --p1 ab --p2 rave --games 100 --movetime 100ms
  uttt versus --p1 mcts --p2 random --games 20 --out games.parquet`,
		RunE: runVersus,
	}
	versusCmd.Flags().IntVarP(&versusGames, "games", "n", 20, "Number of games")
	versusCmd.Flags().IntVarP(&versusThreads, "threads", "t", max(1, runtime.NumCPU()/2), "Games played in parallel")
	versusCmd.Flags().DurationVar(&versusMovetime, "movetime", 100*time.Millisecond, "Time per move")
	versusCmd.Flags().StringVar(&versusP1, "p1", "ab", "First engine: ab, mcts, rave or random")
	versusCmd.Flags().StringVar(&versusP2, "p2", "mcts", "Second engine: ab, mcts, rave or random")
	versusCmd.Flags().StringVarP(&versusOut, "out", "o", "", "Write the game records to this parquet file")
	versusCmd.Flags().BoolVar(&versusTieBreak, "tie-break", true, "Full boards are won by the side with more captured blocks")

	rootCmd.AddCommand(versusCmd)
}

func newPlayer(name string, seed int64) (bench.Player, error) {
	switch name {
	case "ab", "alphabeta":
		config := engineConf.AlphaBeta
		config.SetThreads(1)
		return bench.NewAlphaBetaPlayer(config, versusMovetime), nil
	case "mcts", "ucb1", "rave":
		limits := *engineConf.MCTS.Limits
		limits.SetMovetime(int(versusMovetime.Milliseconds())).SetThreads(1)
		return bench.NewMCTSPlayer(name == "rave", engineConf.MCTS.ExplorationParam, &limits), nil
	case "random":
		return bench.NewRandomPlayer(seed), nil
	}
	return nil, fmt.Errorf("unknown engine %q, use ab, mcts, rave or random", name)
}

func runVersus(cmd *cobra.Command, args []string) error {
	p1, err := newPlayer(versusP1, mcts.SeedGeneratorFn())
	if err != nil {
		return err
	}
	p2, err := newPlayer(versusP2, mcts.SeedGeneratorFn()+1)
	if err != nil {
		return err
	}

	arena := bench.NewVersusArena(p1, p2).
		Setup(versusGames, versusThreads).
		WithContext(cmd.Context())
	arena.TieBreak = versusTieBreak

	// live progress only on an interactive terminal
	var listener bench.ListenerLike = &bench.LogListener{}
	if f, ok := cmd.OutOrStdout().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		listener = bench.NewTerminalListener(f)
	}

	summary, err := arena.Run(listener)
	if err != nil {
		return err
	}

	if versusOut != "" {
		records := arena.Records()
		if err := bench.WriteRecords(versusOut, records); err != nil {
			return err
		}
		log.Info().Str("path", versusOut).Int("games", len(records)).Msg("records-written")
	}

	log.Debug().Str("summary", fmt.Sprintf("%+v", summary)).Msg("versus-finished")
	return nil
}
