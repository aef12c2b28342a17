package render

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

const (
	cellSize = 40
	margin   = 10
	boardPx  = 9*cellSize + 2*margin
)

// Write the board as an SVG image, captured blocks are shaded with the capturing
// side's color and the legal cells are marked with dots
func SVG(w io.Writer, pos uttt.Position) error {
	cw := &errWriter{w: w}
	canvas := svg.New(cw)
	canvas.Start(boardPx, boardPx+cellSize)
	canvas.Rect(0, 0, boardPx, boardPx+cellSize, "fill:white")

	for bi := uint8(0); bi < 9; bi++ {
		x, y := margin+int(bi%3)*3*cellSize, margin+int(bi/3)*3*cellSize
		fill := "none"
		switch {
		case pos.Captured(uttt.X)&(1<<bi) != 0:
			fill = "#f4c7c3"
		case pos.Captured(uttt.O)&(1<<bi) != 0:
			fill = "#c6dafc"
		}
		canvas.Rect(x, y, 3*cellSize, 3*cellSize, "fill:"+fill)
	}

	// thin cell lines, then thick block lines
	for i := 0; i <= 9; i++ {
		width := 1
		if i%3 == 0 {
			width = 3
		}
		style := fmt.Sprintf("stroke:black;stroke-width:%d", width)
		offset := margin + i*cellSize
		canvas.Line(margin, offset, margin+9*cellSize, offset, style)
		canvas.Line(offset, margin, offset, margin+9*cellSize, style)
	}

	var legal uttt.MoveSet
	if !pos.IsOver() {
		legal = pos.LegalMoves()
	}
	for m := uttt.Move(0); m < uttt.NumCells; m++ {
		row, col := m.RowCol()
		cx, cy := margin+col*cellSize+cellSize/2, margin+row*cellSize+cellSize/2

		side, ok := pos.CellAt(m)
		switch {
		case ok && side == uttt.X:
			d := cellSize/2 - 8
			canvas.Line(cx-d, cy-d, cx+d, cy+d, "stroke:#c5221f;stroke-width:4")
			canvas.Line(cx-d, cy+d, cx+d, cy-d, "stroke:#c5221f;stroke-width:4")
		case ok:
			canvas.Circle(cx, cy, cellSize/2-8, "fill:none;stroke:#1967d2;stroke-width:4")
		case legal.Contains(m):
			canvas.Circle(cx, cy, 4, "fill:#188038")
		}
	}

	status := fmt.Sprintf("%v to move", pos.SideToMove())
	if pos.IsOver() {
		status = pos.Result().String()
	}
	canvas.Text(margin, boardPx+cellSize/2, status, "font-family:sans-serif;font-size:18px")
	canvas.End()
	return cw.err
}

// svgo ignores write errors, keep the first one
type errWriter struct {
	w   io.Writer
	err error
}

func (c *errWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.err = err
	return n, err
}
