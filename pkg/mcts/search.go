package mcts

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

// Run the search until a limit is reached, blocks the caller. With Limits.NThreads > 1
// independent trees are searched in parallel and merged into this one
func (t *MCTS) Search() {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer t.Limiter.SetStop(false)

	t.setupSearch()
	if t.nodes[rootIndex].Terminal() {
		t.Limiter.SetStopReason(StopTerminal)
		t.listener.invoke(t, t.listener.onStop)
		return
	}

	threads := max(1, t.Limiter.Limits().NThreads)
	workers := make([]*MCTS, threads)
	workers[mainThreadId] = t
	for id := 1; id < threads; id++ {
		workers[id] = t.fork(id)
	}

	g := errgroup.Group{}
	for _, w := range workers {
		g.Go(func() error {
			w.search()
			return nil
		})
	}
	_ = g.Wait()

	for _, w := range workers[1:] {
		t.mergeTree(w)
	}

	t.Limiter.EvaluateStopReason(t.Size(), uint32(t.MaxDepth()), uint32(t.Cycles()))
	log.Debug().
		Int("cycles", t.Cycles()).
		Uint32("size", t.Size()).
		Int("maxdepth", t.MaxDepth()).
		Int("threads", threads).
		Stringer("move", t.RootMove()).
		Float64("value", float64(t.RootScore())).
		Stringer("reason", t.StopReason()).
		Msg("mcts-search-finished")
	t.listener.invoke(t, t.listener.onStop)
}

// Resets the limiter and the counters, doesn't start the search
func (t *MCTS) setupSearch() {
	t.Limiter.Reset()
	t.cps.Store(0)
	t.cycles.Store(0)
	t.maxdepth.Store(0)
}

// Simulation loop of a single tree
func (t *MCTS) search() {
	main := t.threadId == mainThreadId
	for cycles := uint32(0); t.nodes[rootIndex].N < minCycles ||
		t.Limiter.Ok(t.Size(), uint32(t.MaxDepth()), cycles); {

		t.treewalk()
		cycles = t.cycles.Add(1)
		t.cps.Store(uint32(uint64(cycles) * 1000 / uint64(t.Limiter.Elapsed())))

		if main {
			t.listener.invokeCycle(t, cycles)
		}
	}
}

// Run a single simulation from the root
func (t *MCTS) Simulate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.nodes[rootIndex].Terminal() {
		t.treewalk()
		t.cycles.Add(1)
	}
}

// One simulation: descend with the strategy, expand a leaf visited before,
// roll out from a fresh leaf and backpropagate the result along the path
func (t *MCTS) treewalk() {
	t.path = t.path[:0]
	idx := rootIndex

	for {
		t.path = append(t.path, idx)
		node := &t.nodes[idx]
		if node.N == 0 || node.Terminal() {
			break
		}

		if !node.Expanded() {
			// memory limit reached, keep simulating from the leaf
			if !t.Limiter.Expand() {
				break
			}
			idx = t.expand(idx)
			continue
		}

		idx = t.strategy.Select(t, idx)
	}

	leaf := &t.nodes[idx]
	if leaf.Terminal() {
		t.playout.Result = terminalValue(&leaf.Pos)
		t.playout.Moves = [2]uttt.MoveSet{}
	} else {
		rollout(leaf.Pos, t.rng, &t.playout)
	}
	t.strategy.Backpropagate(t, t.path, &t.playout)

	if depth := int32(len(t.path) - 1); depth > t.maxdepth.Load() {
		t.maxdepth.Store(depth)
		if t.threadId == mainThreadId {
			t.listener.invoke(t, t.listener.onDepth)
		}
	}
}

// Add a child per legal move, returns the first one
func (t *MCTS) expand(idx NodeIndex) NodeIndex {
	pos := t.nodes[idx].Pos
	moves := pos.LegalMoves()
	first := NodeIndex(len(t.nodes))

	for move := moves.Pop(); move != uttt.NullMove; move = moves.Pop() {
		child := pos
		child.MakeMove(move)
		t.nodes = append(t.nodes, newNode(child, move))
	}

	node := &t.nodes[idx]
	node.FirstChild, node.NumChildren = first, uint8(NodeIndex(len(t.nodes))-first)
	t.size.Store(uint32(len(t.nodes)))
	return first
}

// Add the statistics of another tree with the same root into this one
func (t *MCTS) mergeTree(other *MCTS) {
	t.mergeNode(rootIndex, other, rootIndex)
	t.size.Store(uint32(len(t.nodes)))
	t.cycles.Add(other.cycles.Load())
	t.maxdepth.Store(max(t.maxdepth.Load(), other.maxdepth.Load()))
}

func (t *MCTS) mergeNode(di NodeIndex, other *MCTS, si NodeIndex) {
	t.nodes[di].merge(&other.nodes[si])

	src := &other.nodes[si]
	if !src.Expanded() {
		return
	}
	if !t.nodes[di].Expanded() {
		t.nodes = graft(t.nodes, di, other.nodes, si)
		return
	}

	dst := &t.nodes[di]
	if dst.NumChildren != src.NumChildren {
		panic(fmt.Sprintf("mcts: merging node %v with %d children into one with %d",
			src.Pos.Notation(), src.NumChildren, dst.NumChildren))
	}

	dBegin, sBegin := dst.FirstChild, src.FirstChild
	for k := range NodeIndex(src.NumChildren) {
		t.mergeNode(dBegin+k, other, sBegin+k)
	}
}
