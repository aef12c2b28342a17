package mcts

// Other types, which didn't fit to MCTS or Node files

// Result of the rollout, ranges from [0, 1] on an absolute scale:
// 1 is a win for X, 0 is a win for O
type Result float64

type BestChildPolicy int
type SeedGeneratorFnType func() int64
