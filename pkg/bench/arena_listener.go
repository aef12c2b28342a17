package bench

import (
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"
)

// Rows taken by the header, worker lines start below it
const statsRowStart = 3

// Live per-worker progress drawn in place on a terminal
type TerminalListener struct {
	out *termenv.Output
	mu  *sync.Mutex
	row int
}

func NewTerminalListener(w io.Writer, opts ...termenv.OutputOption) *TerminalListener {
	return &TerminalListener{
		out: termenv.NewOutput(w, opts...),
		mu:  &sync.Mutex{},
	}
}

func (l *TerminalListener) SetRow(row int) {
	l.row = row
}

func (l *TerminalListener) Clone() ListenerLike {
	return &TerminalListener{out: l.out, mu: l.mu, row: l.row}
}

func (l *TerminalListener) color(text, color string) termenv.Style {
	return l.out.String(text).Foreground(l.out.Color(color))
}

func (l *TerminalListener) printRow(row int, line string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.out.MoveCursor(row, 1)
	l.out.ClearLine()
	fmt.Fprint(l.out, line)
}

func (l *TerminalListener) OnStart(info VersusSummaryInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.out.HideCursor()
	l.out.ClearScreen()
	l.out.MoveCursor(1, 1)
	fmt.Fprintf(l.out, "%s vs %s, %d workers\n",
		l.color(info.P1Name, "2").Bold(), l.color(info.P2Name, "4").Bold(), info.Workers)
}

func (l *TerminalListener) OnGameStart(info VersusWorkerInfo) {
	l.printRow(l.row, fmt.Sprintf("worker %d: game %d/%d started", info.WorkerID, info.FinishedGames+1, info.NGames))
}

func (l *TerminalListener) OnMoveMade(info VersusWorkerInfo) {
	last := info.Moves[len(info.Moves)-1]
	l.printRow(l.row, fmt.Sprintf("worker %d: game %d/%d ply %d move %v",
		info.WorkerID, info.FinishedGames+1, info.NGames, info.GameMoveNum, last))
}

func (l *TerminalListener) OnFinishedGame(info VersusWorkerInfo) {
	l.printRow(l.row, fmt.Sprintf("worker %d: %d/%d games, %s %s %s",
		info.WorkerID, info.FinishedGames, info.NGames,
		l.color(fmt.Sprintf("+%d", info.P1Wins), "2"),
		l.color(fmt.Sprintf("-%d", info.P2Wins), "1"),
		l.color(fmt.Sprintf("=%d", info.Draws), "3")))
}

func (l *TerminalListener) OnFinishedWork(info VersusWorkerInfo) {
	l.printRow(l.row, fmt.Sprintf("worker %d: done, %d games", info.WorkerID, info.FinishedGames))
}

func (l *TerminalListener) Summary(info VersusSummaryInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.out.MoveCursor(statsRowStart+info.Workers+1, 1)
	fmt.Fprintf(l.out, "%s: %d  %s: %d  draws: %d  (first to move won %d, second %d) of %d games\n",
		l.color(info.P1Name, "2").Bold(), info.P1Wins,
		l.color(info.P2Name, "4").Bold(), info.P2Wins,
		info.Draws, info.FirstToMoveWins, info.SecondToMoveWins, info.TotalGames)
}

func (l *TerminalListener) OnEnd() {
	l.out.ShowCursor()
}
