package mcts

import (
	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

// Index of a node in the tree's arena
type NodeIndex int32

const (
	rootIndex NodeIndex = 0
	NoNode    NodeIndex = -1
)

// Tree node, children are stored contiguously in the arena starting at FirstChild.
// Value and RaveValue are running means on the absolute scale of Result
type Node struct {
	Pos         uttt.Position
	Move        uttt.Move // move that led to this node
	NumChildren uint8
	terminal    bool
	FirstChild  NodeIndex
	N           int32
	Value       Result
	RaveN       int32
	RaveValue   Result
}

func newNode(pos uttt.Position, move uttt.Move) Node {
	return Node{
		Pos:        pos,
		Move:       move,
		terminal:   pos.IsOver(),
		FirstChild: NoNode,
	}
}

// Whether the game is finished in this node
func (node *Node) Terminal() bool {
	return node.terminal
}

// Same as asking if the node has children
func (node *Node) Expanded() bool {
	return node.NumChildren > 0
}

// Update the running mean with a new simulation result
func (node *Node) AddResult(result Result) {
	node.N++
	node.Value += (result - node.Value) / Result(node.N)
}

// Update the all-moves-as-first running mean
func (node *Node) AddRaveResult(result Result) {
	node.RaveN++
	node.RaveValue += (result - node.RaveValue) / Result(node.RaveN)
}

// Value from the perspective of 'side', in [0, 1]
func (node *Node) ValueFor(side uttt.Side) Result {
	if side == uttt.X {
		return node.Value
	}
	return 1 - node.Value
}

// Combine the statistics of the same node searched by another tree
func (node *Node) merge(other *Node) {
	if total := node.N + other.N; total > 0 {
		node.Value = (node.Value*Result(node.N) + other.Value*Result(other.N)) / Result(total)
		node.N = total
	}
	if total := node.RaveN + other.RaveN; total > 0 {
		node.RaveValue = (node.RaveValue*Result(node.RaveN) + other.RaveValue*Result(other.RaveN)) / Result(total)
		node.RaveN = total
	}
}

// Child indices of the node
func (node *Node) children() (NodeIndex, NodeIndex) {
	return node.FirstChild, node.FirstChild + NodeIndex(node.NumChildren)
}

// Copy the subtree below src[si] into dst, as the children of dst[di]. The copied
// children are laid out breadth first, so sibling blocks stay contiguous
func graft(dst []Node, di NodeIndex, src []Node, si NodeIndex) []Node {
	type link struct{ dst, src NodeIndex }
	queue := []link{{di, si}}

	for len(queue) > 0 {
		l := queue[0]
		queue = queue[1:]

		from := &src[l.src]
		if !from.Expanded() {
			dst[l.dst].FirstChild, dst[l.dst].NumChildren = NoNode, 0
			continue
		}

		first := NodeIndex(len(dst))
		begin, end := from.children()
		dst = append(dst, src[begin:end]...)
		dst[l.dst].FirstChild, dst[l.dst].NumChildren = first, from.NumChildren

		for k := range NodeIndex(from.NumChildren) {
			queue = append(queue, link{first + k, begin + k})
		}
	}
	return dst
}
