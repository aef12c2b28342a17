package mcts

import (
	"math/rand"

	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

// Outcome of a simulation, with the moves each side played in the rollout
type Playout struct {
	Result Result
	Moves  [2]uttt.MoveSet
}

// Value of a finished game: 1 for an X win, 0 for an O win, a full board
// is nudged toward the side with more captured blocks
func terminalValue(pos *uttt.Position) Result {
	switch pos.Result() {
	case uttt.XWon:
		return 1
	case uttt.OWon:
		return 0
	}
	return 0.5 + DrawNudge*Result(uttt.Signum(pos.CapturedDiff()))
}

// Play uniformly random legal moves until the game ends
func rollout(pos uttt.Position, rng *rand.Rand, playout *Playout) {
	playout.Moves = [2]uttt.MoveSet{}
	for !pos.IsOver() {
		moves := pos.LegalMoves()
		move := moves.Nth(rng.Intn(moves.Len()))
		playout.Moves[pos.SideToMove()].Add(move)
		pos.MakeMove(move)
	}
	playout.Result = terminalValue(&pos)
}
