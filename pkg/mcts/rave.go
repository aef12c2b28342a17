package mcts

import (
	"math"

	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

// Rapid Action Value Estimation (RAVE) selection policy
// Reference: https://en.wikipedia.org/wiki/Monte_Carlo_tree_search#Improvements
// Every move played later in a simulation by the same side also updates the
// sibling with that move at each earlier node of the path ("all moves as first").

// Weight of the RAVE value given the real and the RAVE visit counts, should be close
// to one for few real visits and fall toward zero as they accumulate
type RaveBetaFnType func(visits, raveVisits int32) float64

// D. Silver's beta: rn / (n + rn + 4 * n * rn * b^2), with b = 0.5
func RaveDSilver(visits, raveVisits int32) float64 {
	const (
		b      = 0.5
		factor = 4 * b * b
	)
	n, rn := float64(visits), float64(raveVisits)
	return rn / (n + rn + factor*n*rn)
}

type RAVE struct{}

func NewRAVE() *RAVE {
	initLnTable()
	return &RAVE{}
}

func (r *RAVE) Select(tree *MCTS, parent NodeIndex) NodeIndex {
	node := &tree.nodes[parent]
	sign := Result(node.Pos.SideToMove().Sign())
	lnParentVisits := ln(node.N)

	best := math.Inf(-1)
	bestIdx := NoNode
	begin, end := node.children()
	for idx := begin; idx < end; idx++ {
		child := &tree.nodes[idx]
		if child.N == 0 {
			return idx
		}

		q := float64(child.Value * sign)
		if child.RaveN > 0 {
			beta := RaveBetaFunction(child.N, child.RaveN)
			q = (1-beta)*q + beta*float64(child.RaveValue*sign)
		}

		ucb := q + tree.explorationParam*math.Sqrt(lnParentVisits/float64(child.N))
		if ucb > best {
			best = ucb
			bestIdx = idx
		}
	}
	return bestIdx
}

func (r *RAVE) Backpropagate(tree *MCTS, path []NodeIndex, playout *Playout) {
	backpropagate(tree, path, playout.Result)

	// moves played after the current node, by side
	played := playout.Moves
	for i := len(path) - 1; i >= 0; i-- {
		node := &tree.nodes[path[i]]
		mover := node.Pos.SideToMove()

		begin, end := node.children()
		for idx := begin; idx < end; idx++ {
			if child := &tree.nodes[idx]; played[mover].Contains(child.Move) {
				child.AddRaveResult(playout.Result)
			}
		}

		if node.Move != uttt.NullMove {
			played[mover.Other()].Add(node.Move)
		}
	}
}
