package mcts

import "github.com/IlikeChooros/uttt-engine/pkg/uttt"

type SearchLine struct {
	BestMove uttt.Move
	Moves    []uttt.Move
	// Mean value of the line's first move, 1 is a win for X
	Eval     float64
	Visits   int32
	Terminal bool
	Draw     bool
}

type ListenerTreeStats struct {
	Maxdepth   int
	Cycles     int
	TimeMs     int
	Cps        uint32
	Size       uint32
	Lines      []SearchLine
	StopReason StopReason
}

func toListenerStats(tree *MCTS) ListenerTreeStats {
	pv := tree.MultiPv(BestChildMostVisits)
	lines := make([]SearchLine, len(pv))
	for i := range pv {
		node := tree.Node(pv[i].Root)
		lines[i] = SearchLine{
			BestMove: node.Move,
			Moves:    pv[i].Pv,
			Eval:     float64(node.Value),
			Visits:   node.N,
			Terminal: pv[i].Terminal,
			Draw:     pv[i].Draw,
		}
	}

	return ListenerTreeStats{
		Lines:      lines,
		Maxdepth:   tree.MaxDepth(),
		Cycles:     tree.Cycles(),
		TimeMs:     int(tree.Limiter.Elapsed()),
		Cps:        tree.Cps(),
		Size:       tree.Size(),
		StopReason: tree.Limiter.StopReason(),
	}
}

// Listener function callback, receives the current tree statistics
type ListenerFunc func(ListenerTreeStats)

type StatsListener struct {
	// called when 'max depth' increases
	onDepth ListenerFunc

	// called every nCycles simulations
	onCycle ListenerFunc
	nCycles int

	// called when the search stops (either by limiter or 'stop' signal)
	onStop ListenerFunc
}

func NewStatsListener() StatsListener {
	return StatsListener{nCycles: 1}
}

// Attach new on max depth change callback, called only by the main search thread,
// meaning no need for synchronization here
func (listener *StatsListener) OnDepth(onDepth ListenerFunc) *StatsListener {
	listener.onDepth = onDepth
	return listener
}

// Attach new on iteration callback, this slows down the search because of the pv
// evaluation, so keep the interval large
func (listener *StatsListener) OnCycle(onCycle ListenerFunc) *StatsListener {
	listener.onCycle = onCycle
	return listener
}

func (listener *StatsListener) SetCycleInterval(n int) *StatsListener {
	listener.nCycles = max(1, n)
	return listener
}

// Attach 'on search end' callback, called once by the main thread after the
// trees are merged, makes 'StopReason' available in the stats
func (listener *StatsListener) OnStop(onStop ListenerFunc) *StatsListener {
	listener.onStop = onStop
	return listener
}

func (listener *StatsListener) invokeCycle(tree *MCTS, cycles uint32) {
	if listener.onCycle != nil && cycles%uint32(listener.nCycles) == 0 {
		listener.onCycle(toListenerStats(tree))
	}
}

func (listener *StatsListener) invoke(tree *MCTS, f ListenerFunc) {
	if f != nil {
		f(toListenerStats(tree))
	}
}
