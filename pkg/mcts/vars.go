package mcts

import "time"

// Main thread id, only this thread calls the listener during the search
const mainThreadId = 0

// Elapsed time is checked once per this many simulations
const TimeCheckInterval = 500

// Simulations run regardless of the limits, enough to expand the root
// and visit one of its children
const minCycles = 2

// Exploration parameter used in UCB1 formula, higher values increase exploration
// while lower values increase exploitation. Default is 0.85, new trees copy it
var ExplorationParam float64 = 0.85

// Set the default exploration parameter of new trees
func SetExplorationParam(c float64) {
	ExplorationParam = max(0.0, c)
}

// A full board is scored 0.5 plus DrawNudge times the sign of the captured block
// difference, the side with more captured blocks is credited with the game
var DrawNudge Result = 0.5

func SetDrawNudge(nudge Result) {
	DrawNudge = min(0.5, max(0, nudge))
}

// Customizable beta function for the rave selection, by default uses D. Silver solution, with b=0.5
var RaveBetaFunction RaveBetaFnType = RaveDSilver

// Set custom beta function for RAVE selection policy
func SetRaveBetaFunction(f RaveBetaFnType) {
	if f != nil {
		RaveBetaFunction = f
	}
}

var SeedGeneratorFn SeedGeneratorFnType = func() int64 {
	return time.Now().UnixNano()
}

// Set custom seed generator function for random number generators in MCTS,
// by default uses current time in nanoseconds
func SetSeedGeneratorFn(f SeedGeneratorFnType) {
	if f != nil {
		SeedGeneratorFn = f
	}
}

const (
	// When choosing the best child, choose the one with most visits,
	// this is the go-to method for MCTS
	BestChildMostVisits BestChildPolicy = iota

	// Experimental: choose the child with the best win rate for the side to move
	BestChildWinRate
)
