package alphabeta

import (
	"encoding/json"
	"runtime"
	"strings"
	"time"

	"github.com/IlikeChooros/uttt-engine/pkg/eval"
)

// Time allocation of the free (clock based) search
type TimePolicy struct {
	// before EndgamePly a move gets remaining / (HorizonPly - ply)
	HorizonPly int `json:"horizon_ply"`
	EndgamePly int `json:"endgame_ply"`
	// after EndgamePly a move gets max(EndgameMinMs, remaining / EndgameDivisor)
	EndgameMinMs   int `json:"endgame_min_ms"`
	EndgameDivisor int `json:"endgame_divisor"`
}

func DefaultTimePolicy() TimePolicy {
	return TimePolicy{
		HorizonPly:     65,
		EndgamePly:     60,
		EndgameMinMs:   1000,
		EndgameDivisor: 3,
	}
}

// Time budget for the next move, given the mover's remaining clock
func (tp TimePolicy) Allocate(ply int, remaining time.Duration) time.Duration {
	if ply > tp.EndgamePly {
		return max(time.Duration(tp.EndgameMinMs)*time.Millisecond, remaining/time.Duration(max(1, tp.EndgameDivisor)))
	}
	return remaining / time.Duration(max(1, tp.HorizonPly-ply))
}

type Config struct {
	// Maximum number of goroutines searching root moves in parallel
	Threads int `json:"threads"`
	// Root moves searched serially (including the previous best) before fanning out
	SerialMoves int `json:"serial_moves"`
	MinDepth    int `json:"min_depth"`
	MaxDepth    int `json:"max_depth"`
	// Subtracted from the fixed time budget to account for the shutdown
	SafetyMarginMs int `json:"safety_margin_ms"`
	// Extend leaves with forcing block captures
	Quiescence bool `json:"quiescence"`
	// Full board is won by the side with more captured blocks
	TieBreak   bool         `json:"tie_break"`
	Weights    eval.Weights `json:"weights"`
	TimePolicy TimePolicy   `json:"time_policy"`
}

const (
	DefaultMaxDepth     = 40
	DefaultSafetyMargin = 25
)

func DefaultConfig() Config {
	return Config{
		Threads:        runtime.NumCPU(),
		SerialMoves:    4,
		MinDepth:       1,
		MaxDepth:       DefaultMaxDepth,
		SafetyMarginMs: DefaultSafetyMargin,
		Quiescence:     true,
		TieBreak:       true,
		Weights:        eval.DefaultWeights(),
		TimePolicy:     DefaultTimePolicy(),
	}
}

func (c Config) String() string {
	builder := strings.Builder{}
	_ = json.NewEncoder(&builder).Encode(c)
	return builder.String()
}

func (c *Config) SetThreads(threads int) *Config {
	c.Threads = max(1, threads)
	return c
}

// Set the depth range of iterative deepening
func (c *Config) SetDepth(minDepth, maxDepth int) *Config {
	c.MinDepth = max(1, minDepth)
	c.MaxDepth = max(c.MinDepth, maxDepth)
	return c
}

func (c *Config) SetQuiescence(enabled bool) *Config {
	c.Quiescence = enabled
	return c
}

func (c *Config) SetTieBreak(enabled bool) *Config {
	c.TieBreak = enabled
	return c
}

func (c *Config) SetWeights(weights eval.Weights) *Config {
	c.Weights = weights
	return c
}

func (c *Config) SetSafetyMargin(ms int) *Config {
	c.SafetyMarginMs = max(0, ms)
	return c
}

func (c *Config) safetyMargin() time.Duration {
	return time.Duration(c.SafetyMarginMs) * time.Millisecond
}
