package mcts

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

// Monte-Carlo tree over an arena of nodes, the root is always at index 0.
// A tree is searched by a single goroutine, parallel search runs independent
// trees and merges them into this one
type MCTS struct {
	TreeStats
	Limiter          LimiterLike
	listener         *StatsListener
	strategy         Strategy
	explorationParam float64
	nodes            []Node
	size             atomic.Uint32
	path             []NodeIndex
	playout          Playout
	rng              *rand.Rand
	threadId         int
	mu               sync.Mutex // held by the running search
}

// Create new tree rooted at 'pos', a nil strategy means UCB1
func NewMCTS(pos uttt.Position, strategy Strategy) *MCTS {
	if strategy == nil {
		strategy = NewUCB1()
	}
	initLnTable()

	tree := &MCTS{
		Limiter:          NewLimiter(uint32(unsafe.Sizeof(Node{}))),
		listener:         &StatsListener{nCycles: 1},
		strategy:         strategy,
		explorationParam: ExplorationParam,
		rng:              rand.New(rand.NewSource(SeedGeneratorFn())),
	}
	tree.reset(pos)
	return tree
}

func (t *MCTS) reset(pos uttt.Position) {
	t.nodes = append(t.nodes[:0], newNode(pos, uttt.NullMove))
	t.size.Store(1)
	t.TreeStats.reset()
}

// Tree searching the same root with its own random source, sharing the limiter
func (t *MCTS) fork(threadId int) *MCTS {
	tree := &MCTS{
		Limiter:          t.Limiter,
		listener:         &StatsListener{nCycles: 1},
		strategy:         t.strategy,
		explorationParam: t.explorationParam,
		rng:              rand.New(rand.NewSource(SeedGeneratorFn() + int64(threadId))),
		threadId:         threadId,
	}
	tree.reset(t.nodes[rootIndex].Pos)
	return tree
}

func (t *MCTS) ResetListener() {
	t.listener.OnCycle(nil).OnDepth(nil).OnStop(nil)
}

func (t *MCTS) StatsListener() *StatsListener {
	return t.listener
}

func (t *MCTS) SetListener(listener StatsListener) {
	*t.listener = listener
}

// Adds custom context to the limiter, enabling cancellation through it
//
// Example:
//
//	ctx, cancel := context.WithCancel(context.Background())
//
//	tree.SetContext(ctx)
//	go func() {
//	    time.Sleep(2 * time.Second)
//	    cancel() // Cancel the search after 2 seconds
//	}()
//
//	tree.Search()
func (t *MCTS) SetContext(ctx context.Context) {
	t.Limiter.SetContext(ctx)
}

// Exploration constant of this tree
func (t *MCTS) SetExplorationParam(c float64) {
	t.explorationParam = max(0, c)
}

func (t *MCTS) ExplorationParam() float64 {
	return t.explorationParam
}

func (t *MCTS) Strategy() Strategy {
	return t.strategy
}

func (t *MCTS) SetStrategy(strategy Strategy) {
	if strategy != nil {
		t.strategy = strategy
	}
}

// Stop the running search. A Stop issued before Search starts ends that
// search after the minimum number of simulations
func (t *MCTS) Stop() {
	t.Limiter.SetStop(true)
}

// Reason why the search was stopped, valid after search ends
func (t *MCTS) StopReason() StopReason {
	return t.Limiter.StopReason()
}

func (t *MCTS) SetLimits(limits *Limits) {
	t.Limiter.SetLimits(limits)
}

func (t *MCTS) Limits() *Limits {
	return t.Limiter.Limits()
}

// Position at the root of the tree
func (t *MCTS) Position() uttt.Position {
	return t.nodes[rootIndex].Pos
}

func (t *MCTS) Root() *Node {
	return &t.nodes[rootIndex]
}

func (t *MCTS) Node(idx NodeIndex) *Node {
	return &t.nodes[idx]
}

// Children of the node, the slice aliases the arena
func (t *MCTS) Children(idx NodeIndex) []Node {
	begin, end := t.nodes[idx].children()
	if begin == NoNode {
		return nil
	}
	return t.nodes[begin:end]
}

func (t *MCTS) String() string {
	root := t.Root()
	return fmt.Sprintf("MCTS={Size=%d, Stats:{maxdepth=%d, cps=%d, cycles=%d}, Root={n=%d, value=%.3f, children=%d}}",
		t.Size(), t.MaxDepth(), t.Cps(), t.Cycles(), root.N, root.Value, root.NumChildren)
}

// Number of nodes in the arena
func (t *MCTS) Size() uint32 {
	return t.size.Load()
}

// Number of nodes reachable from the root, equal to Size
func (t *MCTS) Count() int {
	count := 0
	stack := []NodeIndex{rootIndex}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++

		begin, end := t.nodes[idx].children()
		for child := begin; child < end; child++ {
			stack = append(stack, child)
		}
	}
	return count
}

// Returns approximation of memory usage of the tree structure
func (t *MCTS) MemoryUsage() uint32 {
	return t.Size()*uint32(unsafe.Sizeof(Node{})) + uint32(unsafe.Sizeof(MCTS{}))
}

// Play 'move' at the root, keeping the subtree below it. If the move was never
// expanded the tree starts over from the new position. Returns false if the move
// is illegal, leaving the tree unchanged
func (t *MCTS) MakeMove(move uttt.Move) bool {
	t.Stop()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Limiter.SetStop(false)

	root := &t.nodes[rootIndex]
	if root.Terminal() || !move.Valid() || !root.Pos.LegalMoves().Contains(move) {
		return false
	}

	for idx := range t.Children(rootIndex) {
		child := root.FirstChild + NodeIndex(idx)
		if t.nodes[child].Move != move {
			continue
		}

		nodes := make([]Node, 1, len(t.nodes))
		nodes[0] = t.nodes[child]
		nodes[0].Move = uttt.NullMove
		t.nodes = graft(nodes, rootIndex, t.nodes, child)
		t.size.Store(uint32(len(t.nodes)))
		t.maxdepth.Store(max(0, t.maxdepth.Load()-1))
		return true
	}

	pos := root.Pos
	pos.MakeMove(move)
	t.reset(pos)
	return true
}

// Discard the tree and start over from 'pos'
func (t *MCTS) Reset(pos uttt.Position) {
	t.Stop()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Limiter.SetStop(false)
	t.reset(pos)
}

// Return best child of the node based on the policy, NoNode if none was visited
func (t *MCTS) BestChild(idx NodeIndex, policy BestChildPolicy) NodeIndex {
	node := &t.nodes[idx]
	begin, end := node.children()
	bestChild := NoNode

	switch policy {
	case BestChildMostVisits:
		maxVisits := int32(0)
		for child := begin; child < end; child++ {
			if n := t.nodes[child].N; n > maxVisits {
				maxVisits = n
				bestChild = child
			}
		}
	case BestChildWinRate:
		const minVisitsThreshold = 10
		side := node.Pos.SideToMove()
		bestWinRate := Result(-1)
		for child := begin; child < end; child++ {
			c := &t.nodes[child]
			if c.N < minVisitsThreshold {
				continue
			}
			if winRate := c.ValueFor(side); winRate > bestWinRate {
				bestWinRate = winRate
				bestChild = child
			}
		}
		if bestChild == NoNode {
			return t.BestChild(idx, BestChildMostVisits)
		}
	}

	return bestChild
}

// 'the best move' in the position, the most visited root child. Falls back to
// any legal move if the search didn't visit a child, NullMove on a finished game
func (t *MCTS) RootMove() uttt.Move {
	if best := t.BestChild(rootIndex, BestChildMostVisits); best != NoNode {
		return t.nodes[best].Move
	}
	if root := t.Root(); !root.Terminal() {
		return root.Pos.LegalMoves().Any()
	}
	return uttt.NullMove
}

// Current value of the best root child, 1 is a win for X
func (t *MCTS) RootScore() Result {
	if best := t.BestChild(rootIndex, BestChildMostVisits); best != NoNode {
		return t.nodes[best].Value
	}
	return Result(math.NaN())
}

type PvResult struct {
	Root     NodeIndex
	Pv       []uttt.Move
	Terminal bool
	Draw     bool
}

// Returns the best lines from the root, as many as Limits.MultiPv
func (t *MCTS) MultiPv(policy BestChildPolicy) []PvResult {
	children := make([]NodeIndex, 0, t.nodes[rootIndex].NumChildren)
	begin, end := t.nodes[rootIndex].children()
	for child := begin; child < end; child++ {
		if t.nodes[child].N > 0 {
			children = append(children, child)
		}
	}

	slices.SortStableFunc(children, func(a, b NodeIndex) int {
		return int(t.nodes[b].N - t.nodes[a].N)
	})

	count := min(len(children), max(1, t.Limits().MultiPv))
	multipv := make([]PvResult, count)
	for i := range count {
		pv, terminal, draw := t.Pv(children[i], policy, true)
		multipv[i] = PvResult{
			Root:     children[i],
			Pv:       pv,
			Terminal: terminal,
			Draw:     draw,
		}
	}
	return multipv
}

// Principal variation (ie. the best sequence of nodes) from the node 'root',
// also returns whether it ends in a finished game
func (t *MCTS) PvNodes(root NodeIndex, policy BestChildPolicy, includeRoot bool) ([]NodeIndex, bool) {
	pv := make([]NodeIndex, 0, t.MaxDepth()+1)
	if includeRoot {
		pv = append(pv, root)
	}

	node := root
	for t.nodes[node].Expanded() {
		next := t.BestChild(node, policy)
		if next == NoNode {
			break
		}
		node = next
		pv = append(pv, node)
	}

	return pv, t.nodes[node].Terminal()
}

// Principal variation moves, returns (moves, terminal, draw)
func (t *MCTS) Pv(root NodeIndex, policy BestChildPolicy, includeRoot bool) ([]uttt.Move, bool, bool) {
	nodes, terminal := t.PvNodes(root, policy, includeRoot)
	pv := make([]uttt.Move, 0, len(nodes))
	for _, idx := range nodes {
		if move := t.nodes[idx].Move; move != uttt.NullMove {
			pv = append(pv, move)
		}
	}

	draw := false
	if terminal && len(nodes) > 0 {
		last := &t.nodes[nodes[len(nodes)-1]]
		draw = last.Pos.Result() == uttt.Draw
	}
	return pv, terminal, draw
}

// Search 'pos' for 'budget' with UCB1 and the exploration constant 'c',
// returns the most visited move and its value (1 is a win for X)
func Go(pos uttt.Position, c float64, budget time.Duration) (uttt.Move, Result) {
	tree := NewMCTS(pos, NewUCB1())
	tree.SetExplorationParam(c)
	tree.SetLimits(DefaultLimits().SetMovetime(int(budget.Milliseconds())))
	tree.Search()
	return tree.RootMove(), tree.RootScore()
}
