package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/IlikeChooros/uttt-engine/pkg/alphabeta"
	"github.com/IlikeChooros/uttt-engine/pkg/mcts"
)

type MCTSConfig struct {
	ExplorationParam float64      `json:"exploration_param"`
	DrawNudge        float64      `json:"draw_nudge"`
	Limits           *mcts.Limits `json:"limits"`
}

// Engine settings loaded from the --config file, missing fields keep the defaults
type EngineConfig struct {
	AlphaBeta alphabeta.Config `json:"alphabeta"`
	MCTS      MCTSConfig       `json:"mcts"`
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		AlphaBeta: alphabeta.DefaultConfig(),
		MCTS: MCTSConfig{
			ExplorationParam: mcts.ExplorationParam,
			DrawNudge:        float64(mcts.DrawNudge),
			Limits:           mcts.DefaultLimits(),
		},
	}
}

// Read the config from 'path', an empty path gives the defaults
func LoadEngineConfig(path string) (EngineConfig, error) {
	config := DefaultEngineConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config %s: %w", path, err)
	}

	config.AlphaBeta.SetDepth(config.AlphaBeta.MinDepth, config.AlphaBeta.MaxDepth)
	config.AlphaBeta.SetThreads(config.AlphaBeta.Threads)
	if config.MCTS.Limits == nil {
		config.MCTS.Limits = mcts.DefaultLimits()
	}
	mcts.SetDrawNudge(mcts.Result(config.MCTS.DrawNudge))
	return config, nil
}
