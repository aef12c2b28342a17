package alphabeta

import (
	"errors"
	"sync/atomic"

	"github.com/IlikeChooros/uttt-engine/pkg/eval"
	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

// Returned through the whole recursion once the stop flag is set,
// the partial score is meaningless and must be discarded
var ErrSearchStopped = errors.New("search stopped")

// Negamax searcher of a single root move, not safe for concurrent use,
// but many workers may share the same stop flag
type Worker struct {
	eval       *eval.Evaluator
	stop       *atomic.Bool
	quiescence bool
	tieBreak   bool
	nodes      uint64
}

func NewWorker(evaluator *eval.Evaluator, stop *atomic.Bool, config Config) *Worker {
	return &Worker{
		eval:       evaluator,
		stop:       stop,
		quiescence: config.Quiescence,
		tieBreak:   config.TieBreak,
	}
}

// Number of leaves evaluated so far
func (w *Worker) Nodes() uint64 {
	return w.nodes
}

// The stop flag is checked only here, at every leaf
func (w *Worker) leaf(score eval.Score) (eval.Score, error) {
	w.nodes++
	if w.stop.Load() {
		return 0, ErrSearchStopped
	}
	return score, nil
}

// Value of a full board from the side to move's perspective
func (w *Worker) drawScore(pos *uttt.Position) eval.Score {
	if !w.tieBreak {
		return 0
	}
	return eval.Score(uttt.Signum(pos.CapturedDiff())) * pos.SideToMove().Sign() * eval.ScoreWin
}

// Fail-hard alpha-beta negamax, the score is from the side to move's perspective
func (w *Worker) Negamax(pos uttt.Position, depth int, alpha, beta eval.Score) (eval.Score, error) {
	if pos.IsWon(pos.SideToMove().Other()) {
		return w.leaf(eval.ScoreLoss)
	}
	if pos.IsDrawn() {
		return w.leaf(w.drawScore(&pos))
	}

	if depth <= 0 {
		if !w.quiescence {
			return w.leaf(w.eval.Evaluate(&pos))
		}
		side := pos.SideToMove()
		return w.Quiesce(pos, pos.Forcing(side), pos.Forcing(side.Other()))
	}

	moves := pos.LegalMoves()
	for m := moves.Pop(); m != uttt.NullMove; m = moves.Pop() {
		child := pos
		child.MakeMove(m)

		score, err := w.Negamax(child, depth-1, -beta, -alpha)
		if err != nil {
			return 0, err
		}

		score = -score
		if score >= beta {
			return beta, nil
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha, nil
}

// Resolve forcing block captures, 'own' and 'opp' are the forcing moves of the side
// to move and of its opponent
func (w *Worker) Quiesce(pos uttt.Position, own, opp uttt.MoveSet) (eval.Score, error) {
	if pos.IsWon(pos.SideToMove().Other()) {
		return w.leaf(eval.ScoreLoss)
	}
	if pos.IsDrawn() {
		return w.leaf(w.drawScore(&pos))
	}

	captures := pos.LegalMoves().Intersect(own)
	if captures.Empty() {
		return w.leaf(w.eval.Evaluate(&pos))
	}

	best := eval.ScoreNegInf
	for m := captures.Pop(); m != uttt.NullMove; m = captures.Pop() {
		child := pos
		child.MakeMove(m)

		nextOwn, nextOpp := own, opp
		nextOwn.Remove(m)
		nextOpp.Remove(m)

		score, err := w.Quiesce(child, nextOpp, nextOwn)
		if err != nil {
			return 0, err
		}
		best = max(best, -score)
	}
	return best, nil
}
