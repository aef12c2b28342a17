package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

var (
	perftDepth   int
	perftThreads int
)

func init() {
	perftCmd := &cobra.Command{
		Use:   "perft",
		Short: "Count the leaf positions reachable in exactly N moves",
		Long: `Count the leaf positions reachable in exactly N moves.

Examples:
  uttt perft --depth 5
  uttt perft --depth 6 --threads 8 --moves "40,36"`,
		RunE: runPerft,
	}
	perftCmd.Flags().IntVarP(&perftDepth, "depth", "d", 4, "Perft depth")
	perftCmd.Flags().IntVarP(&perftThreads, "threads", "t", runtime.NumCPU(), "Number of goroutines")
	addPositionFlags(perftCmd)

	divideCmd := &cobra.Command{
		Use:   "divide",
		Short: "Perft split by the root moves",
		RunE:  runDivide,
	}
	divideCmd.Flags().IntVarP(&perftDepth, "depth", "d", 4, "Perft depth")
	addPositionFlags(divideCmd)

	rootCmd.AddCommand(perftCmd, divideCmd)
}

func runPerft(cmd *cobra.Command, args []string) error {
	pos, err := parsePosition()
	if err != nil {
		return err
	}

	start := time.Now()
	nodes, err := uttt.PerftParallel(cmd.Context(), pos, perftDepth, perftThreads)
	if err != nil {
		return fmt.Errorf("perft: %w", err)
	}

	elapsed := time.Since(start)
	fmt.Fprintf(cmd.OutOrStdout(), "nodes %d time %v nps %.0f\n",
		nodes, elapsed.Round(time.Millisecond), float64(nodes)/max(elapsed.Seconds(), 1e-9))
	return nil
}

func runDivide(cmd *cobra.Command, args []string) error {
	pos, err := parsePosition()
	if err != nil {
		return err
	}

	var total uint64
	for _, entry := range uttt.Divide(pos, perftDepth) {
		fmt.Fprintf(cmd.OutOrStdout(), "%v: %d\n", entry.Move, entry.Nodes)
		total += entry.Nodes
	}
	fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", total)
	return nil
}
