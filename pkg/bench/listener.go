package bench

import (
	"github.com/rs/zerolog/log"
)

// Callbacks of the arena. Every worker gets its own clone, the clones are called
// from different goroutines
type ListenerLike interface {
	OnStart(info VersusSummaryInfo)
	OnGameStart(info VersusWorkerInfo)
	OnMoveMade(info VersusWorkerInfo)
	OnFinishedGame(info VersusWorkerInfo)
	OnFinishedWork(info VersusWorkerInfo)
	// Called once, after all workers finished
	Summary(info VersusSummaryInfo)
	OnEnd()
	SetRow(row int)
	Clone() ListenerLike
}

// Ignores every event
type DefaultListener struct {
	row int
}

func (d *DefaultListener) OnStart(VersusSummaryInfo)       {}
func (d *DefaultListener) OnGameStart(VersusWorkerInfo)    {}
func (d *DefaultListener) OnMoveMade(VersusWorkerInfo)     {}
func (d *DefaultListener) OnFinishedGame(VersusWorkerInfo) {}
func (d *DefaultListener) OnFinishedWork(VersusWorkerInfo) {}
func (d *DefaultListener) Summary(VersusSummaryInfo)       {}
func (d *DefaultListener) OnEnd()                          {}
func (d *DefaultListener) SetRow(row int)                  { d.row = row }
func (d *DefaultListener) Clone() ListenerLike             { return &DefaultListener{row: d.row} }

// Writes the finished games and the summary to the global logger
type LogListener struct {
	DefaultListener
}

func (l *LogListener) OnFinishedGame(info VersusWorkerInfo) {
	log.Info().
		Int("worker", info.WorkerID).
		Int("game", info.FinishedGames).
		Int("plies", info.GameMoveNum).
		Int("p1-wins", info.P1Wins).
		Int("p2-wins", info.P2Wins).
		Int("draws", info.Draws).
		Str("final", info.Position.Notation()).
		Msg("game-finished")
}

func (l *LogListener) Summary(info VersusSummaryInfo) {
	log.Info().
		Str("player1", info.P1Name).
		Str("player2", info.P2Name).
		Int("games", info.TotalGames).
		Int("p1-wins", info.P1Wins).
		Int("p2-wins", info.P2Wins).
		Int("draws", info.Draws).
		Int("first-to-move-wins", info.FirstToMoveWins).
		Msg("arena-summary")
}

func (l *LogListener) Clone() ListenerLike {
	return &LogListener{}
}
