package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/IlikeChooros/uttt-engine/pkg/alphabeta"
	"github.com/IlikeChooros/uttt-engine/pkg/mcts"
	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

var (
	searchEngine   string
	searchMovetime time.Duration
	searchDepth    int
	searchThreads  int
	searchMultiPv  int
)

func init() {
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Find the best move of a position",
		Long: `Find the best move of a position with one of the engines.

Examples:
  uttt search --engine ab --movetime 1s
  uttt search --engine rave --movetime 500ms --moves "40,36,4"
  uttt search --engine ab --depth 6`,
		RunE: runSearch,
	}
	searchCmd.Flags().StringVarP(&searchEngine, "engine", "e", "ab", "Engine: ab, mcts or rave")
	searchCmd.Flags().DurationVar(&searchMovetime, "movetime", time.Second, "Time budget of the search")
	searchCmd.Flags().IntVarP(&searchDepth, "depth", "d", 0, "Fixed alpha-beta depth, ignores --movetime")
	searchCmd.Flags().IntVarP(&searchThreads, "threads", "t", 0, "Number of threads, 0 keeps the configured value")
	searchCmd.Flags().IntVar(&searchMultiPv, "multipv", 1, "Number of MCTS lines to print")
	addPositionFlags(searchCmd)

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	pos, err := parsePosition()
	if err != nil {
		return err
	}
	if pos.IsOver() {
		return fmt.Errorf("game is already over: %v", pos.Result())
	}

	switch searchEngine {
	case "ab", "alphabeta":
		return searchAlphaBeta(cmd, pos)
	case "mcts", "ucb1":
		return searchMCTS(cmd, pos, mcts.NewUCB1())
	case "rave":
		return searchMCTS(cmd, pos, mcts.NewRAVE())
	}
	return fmt.Errorf("unknown engine %q, use ab, mcts or rave", searchEngine)
}

func searchAlphaBeta(cmd *cobra.Command, pos uttt.Position) error {
	config := engineConf.AlphaBeta
	if searchThreads > 0 {
		config.SetThreads(searchThreads)
	}

	var result alphabeta.Result
	if searchDepth > 0 {
		config.SetDepth(searchDepth, searchDepth)
		result = alphabeta.NewManager(pos, config).Search(cmd.Context())
	} else {
		result = alphabeta.NewManager(pos, config).SearchFixedTime(cmd.Context(), searchMovetime)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "bestmove %v score %.2f depth %d nodes %d time %v\n",
		result.Move, result.Score, result.Depth, result.Nodes, result.Elapsed.Round(time.Millisecond))
	return nil
}

func searchMCTS(cmd *cobra.Command, pos uttt.Position, strategy mcts.Strategy) error {
	limits := *engineConf.MCTS.Limits
	limits.SetMovetime(int(searchMovetime.Milliseconds())).SetMultiPv(searchMultiPv)
	if searchThreads > 0 {
		limits.SetThreads(searchThreads)
	}

	tree := mcts.NewMCTS(pos, strategy)
	tree.SetExplorationParam(engineConf.MCTS.ExplorationParam)
	tree.SetLimits(&limits)
	tree.SetContext(cmd.Context())

	listener := mcts.NewStatsListener()
	listener.OnDepth(func(stats mcts.ListenerTreeStats) {
		if len(stats.Lines) == 0 {
			return
		}
		log.Info().
			Int("depth", stats.Maxdepth).
			Int("cycles", stats.Cycles).
			Uint32("cps", stats.Cps).
			Stringer("move", stats.Lines[0].BestMove).
			Float64("eval", stats.Lines[0].Eval).
			Msg("mcts-depth")
	})
	tree.SetListener(listener)
	tree.Search()

	out := cmd.OutOrStdout()
	for i, line := range tree.MultiPv(mcts.BestChildMostVisits) {
		fmt.Fprintf(out, "line %d: eval %.3f visits %d pv %s\n",
			i+1, tree.Node(line.Root).Value, tree.Node(line.Root).N, uttt.MoveList(line.Pv))
	}
	fmt.Fprintf(out, "bestmove %v score %.3f cycles %d depth %d stop %v\n",
		tree.RootMove(), tree.RootScore(), tree.Cycles(), tree.MaxDepth(), tree.StopReason())
	return nil
}
