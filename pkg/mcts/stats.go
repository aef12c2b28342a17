package mcts

import "sync/atomic"

// Counters of the running search, safe to read from other goroutines
type TreeStats struct {
	maxdepth atomic.Int32
	cps      atomic.Uint32
	cycles   atomic.Uint32
}

func (s *TreeStats) reset() {
	s.maxdepth.Store(0)
	s.cps.Store(0)
	s.cycles.Store(0)
}

// Maximum depth reached during the search, note that usually MaxDepth != len(pv)
func (s *TreeStats) MaxDepth() int {
	return int(s.maxdepth.Load())
}

// Total number of simulations ran during the search
func (s *TreeStats) Cycles() int {
	return int(s.cycles.Load())
}

// Simulations per second
func (s *TreeStats) Cps() uint32 {
	return s.cps.Load()
}
