package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/IlikeChooros/uttt-engine/pkg/render"
)

var (
	renderSVG   string
	renderLegal bool
)

func init() {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Draw a position on the terminal or as an SVG image",
		Long: `Draw a position on the terminal or as an SVG image.

Examples:
  uttt render --moves "40,36,4"
  uttt render --notation "9/9/9/9/4x4/9/9/9/9 o 4" --svg board.svg`,
		RunE: runRender,
	}
	renderCmd.Flags().StringVar(&renderSVG, "svg", "", "Write an SVG image to this file instead")
	renderCmd.Flags().BoolVar(&renderLegal, "legal", true, "Mark the legal moves")
	addPositionFlags(renderCmd)

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	pos, err := parsePosition()
	if err != nil {
		return err
	}

	if renderSVG == "" {
		opts := render.DefaultTerminalOptions()
		opts.ShowLegal = renderLegal
		return render.Terminal(cmd.OutOrStdout(), pos, opts)
	}

	f, err := os.Create(renderSVG)
	if err != nil {
		return fmt.Errorf("create svg: %w", err)
	}
	if err := render.SVG(f, pos); err != nil {
		f.Close()
		return fmt.Errorf("write svg: %w", err)
	}
	return f.Close()
}
