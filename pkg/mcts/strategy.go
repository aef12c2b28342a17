package mcts

// Selection and backpropagation policy of the tree
type Strategy interface {
	// Choose the child of an expanded 'parent' to descend into
	Select(tree *MCTS, parent NodeIndex) NodeIndex
	// Update every node on the path, root first
	Backpropagate(tree *MCTS, path []NodeIndex, playout *Playout)
}

// Incremental mean update along the path, the same value for every node
// since the result is on the absolute scale
func backpropagate(tree *MCTS, path []NodeIndex, result Result) {
	for _, idx := range path {
		tree.nodes[idx].AddResult(result)
	}
}
