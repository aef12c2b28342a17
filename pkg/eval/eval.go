// Package eval implements the static evaluation used as the leaf value of the
// alpha-beta search. Every block is scored from a precomputed table indexed by
// the (own, their) occupancy pair, the meta board is scored the same way and
// weighted much higher.
package eval

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

// Evaluation score, always from the perspective of the side to move
type Score = float32

const (
	ScoreWin    Score = 1e6
	ScoreLoss   Score = -1e6
	ScorePosInf Score = 1e7
	ScoreNegInf Score = -1e7
)

// Weights of the block score table
type Weights struct {
	// Block already won
	Won float32 `json:"won"`
	// One, two or three cells away from winning the block, one and two
	// are multiplied by Routes[n_routes]
	NeedOne   float32 `json:"need_one"`
	NeedTwo   float32 `json:"need_two"`
	NeedThree float32 `json:"need_three"`
	// Block can't be won anymore
	Hopeless float32 `json:"hopeless"`
	// Sublinear multiplier by the number of winning routes
	Routes [9]float32 `json:"routes"`
	// Multiplier of the meta board score
	Meta float32 `json:"meta"`
}

func DefaultWeights() Weights {
	return Weights{
		Won:       8,
		NeedOne:   3,
		NeedTwo:   0.5,
		NeedThree: 0.1,
		Hopeless:  0,
		Routes:    [9]float32{1.0, 1.4, 1.7, 2.0, 2.0, 2.0, 2.0, 2.0, 2.0},
		Meta:      10,
	}
}

func (w Weights) String() string {
	builder := strings.Builder{}
	_ = json.NewEncoder(&builder).Encode(w)
	return builder.String()
}

// Score of a single block for one side
func (w *Weights) blockScore(state uttt.BlockState) float32 {
	routes := w.Routes[min(int(state.Routes()), len(w.Routes)-1)]
	switch state.MinNeeded() {
	case 0:
		return w.Won
	case 1:
		return w.NeedOne * routes
	case 2:
		return w.NeedTwo * routes
	case 3:
		return w.NeedThree
	}
	return w.Hopeless
}

type Evaluator struct {
	weights Weights
	table   []float32
}

// Build the block score table for the weights
func New(weights Weights) *Evaluator {
	uttt.Init()
	e := &Evaluator{
		weights: weights,
		table:   make([]float32, uttt.NumBlockPairs),
	}

	for i := range uttt.NumBlockPairs {
		own, their := uttt.B33(i)&uttt.BlockOcc, uttt.B33(i>>9)
		if own&their != 0 {
			continue
		}
		e.table[i] = weights.blockScore(uttt.ClassifyIndex(i))
	}
	return e
}

var (
	defaultEvaluator *Evaluator
	defaultOnce      sync.Once
)

// Shared evaluator with the default weights
func Default() *Evaluator {
	defaultOnce.Do(func() {
		defaultEvaluator = New(DefaultWeights())
	})
	return defaultEvaluator
}

func (e *Evaluator) Weights() Weights {
	return e.weights
}

// Signed block score, positive favors x
func (e *Evaluator) Block(x, o uttt.B33) Score {
	return e.table[int(x)|int(o)<<9] - e.table[int(o)|int(x)<<9]
}

// Static evaluation of a non-terminal position
func (e *Evaluator) Evaluate(pos *uttt.Position) Score {
	score := Score(0)
	for bi := uint8(0); bi < 9; bi++ {
		score += e.Block(pos.Block(uttt.X, bi), pos.Block(uttt.O, bi))
	}
	score += e.weights.Meta * e.Block(pos.Captured(uttt.X), pos.Captured(uttt.O))
	return score * pos.SideToMove().Sign()
}

// Captured block difference, from the perspective of the side to move
func Basic(pos *uttt.Position) Score {
	return Score(pos.CapturedDiff()) * pos.SideToMove().Sign()
}

// Evaluation function signature, both Basic and (*Evaluator).Evaluate satisfy it
type Func func(pos *uttt.Position) Score
