package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

type TerminalOptions struct {
	// ANSI colors of the sides and of the playable cells
	XColor   string
	OColor   string
	Playable string
	// Mark the cells legal for the side to move
	ShowLegal bool
}

func DefaultTerminalOptions() TerminalOptions {
	return TerminalOptions{
		XColor:    "1",
		OColor:    "4",
		Playable:  "2",
		ShowLegal: true,
	}
}

// Draw the board with colored sides, captured blocks are drawn bold
// in the capturing side's color
func Terminal(w io.Writer, pos uttt.Position, opts TerminalOptions, outOpts ...termenv.OutputOption) error {
	out := termenv.NewOutput(w, outOpts...)

	var legal uttt.MoveSet
	if opts.ShowLegal && !pos.IsOver() {
		legal = pos.LegalMoves()
	}
	capturedBy := func(bi uint8) (uttt.Side, bool) {
		for side := uttt.X; side <= uttt.O; side++ {
			if pos.Captured(side)&(1<<bi) != 0 {
				return side, true
			}
		}
		return uttt.X, false
	}
	sideColor := func(side uttt.Side) string {
		if side == uttt.X {
			return opts.XColor
		}
		return opts.OColor
	}

	builder := strings.Builder{}
	for row := 0; row < 9; row++ {
		if row == 3 || row == 6 {
			builder.WriteString(strings.Repeat("-", 23))
			builder.WriteByte('\n')
		}
		for col := 0; col < 9; col++ {
			if col == 3 || col == 6 {
				builder.WriteString(" |")
			}
			builder.WriteByte(' ')

			m := uttt.MoveFromRowCol(row, col)
			side, occupied := pos.CellAt(m)
			switch {
			case occupied:
				style := out.String(side.String()).Foreground(out.Color(sideColor(side)))
				if owner, ok := capturedBy(m.Block()); ok && owner == side {
					style = style.Bold()
				}
				builder.WriteString(style.String())
			case legal.Contains(m):
				builder.WriteString(out.String("*").Foreground(out.Color(opts.Playable)).String())
			default:
				builder.WriteByte('.')
			}
		}
		builder.WriteByte('\n')
	}

	status := fmt.Sprintf("%v to move", pos.SideToMove())
	if pos.IsOver() {
		status = pos.Result().String()
	}
	fmt.Fprintf(&builder, "%s, captured X=%d O=%d\n",
		status, pos.CapturedCount(uttt.X), pos.CapturedCount(uttt.O))

	_, err := io.WriteString(out, builder.String())
	return err
}
