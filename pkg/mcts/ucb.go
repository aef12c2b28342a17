package mcts

import (
	"math"
	"sync"
)

const lnTableSize = 80000

var (
	lnTable     *[lnTableSize]float64
	lnTableOnce sync.Once
)

func initLnTable() {
	lnTableOnce.Do(func() {
		table := new([lnTableSize]float64)
		for i := 1; i < lnTableSize; i++ {
			table[i] = math.Log(float64(i))
		}
		lnTable = table
	})
}

// Natural logarithm of the visit count, looked up for small counts
func ln(n int32) float64 {
	if n < lnTableSize {
		return lnTable[n]
	}
	return math.Log(float64(n))
}

type UCB1 struct{}

func NewUCB1() *UCB1 {
	initLnTable()
	return &UCB1{}
}

// UCT: value for the parent's side to move + C * sqrt(ln(parent visits) / visits),
// an unvisited child is always chosen first
func (u *UCB1) Select(tree *MCTS, parent NodeIndex) NodeIndex {
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

		ucb := float64(child.Value*sign) +
			tree.explorationParam*math.Sqrt(lnParentVisits/float64(child.N))
		if ucb > best {
			best = ucb
			bestIdx = idx
		}
	}
	return bestIdx
}

func (u *UCB1) Backpropagate(tree *MCTS, path []NodeIndex, playout *Playout) {
	backpropagate(tree, path, playout.Result)
}
