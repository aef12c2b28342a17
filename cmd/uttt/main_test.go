package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/IlikeChooros/uttt-engine/pkg/alphabeta"
	"github.com/IlikeChooros/uttt-engine/pkg/bench"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	positionMoves, positionNotation = "", ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("uttt %s: %v\n%s", strings.Join(args, " "), err, buf.String())
	}
	return buf.String()
}

func TestPerftCommand(t *testing.T) {
	out := execute(t, "perft", "--depth", "1", "--threads", "2")
	if !strings.HasPrefix(out, "nodes 720 ") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestDivideCommand(t *testing.T) {
	out := execute(t, "divide", "--depth", "1")
	if !strings.Contains(out, "total: 720") || strings.Count(out, "\n") != 82 {
		t.Errorf("unexpected output %q", out)
	}
}

func TestSearchCommand(t *testing.T) {
	out := execute(t, "search", "--engine", "ab", "--depth", "2", "--notation", "xxx6/xxx6/xx7/9/9/9/9/9/9 x 2")
	if !strings.HasPrefix(out, "bestmove 20 ") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRenderCommand(t *testing.T) {
	out := execute(t, "render", "--moves", "40,36")
	if !strings.Contains(out, "X to move") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRenderSVGCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.svg")
	execute(t, "render", "--svg", path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("output is not an svg image")
	}
}

func TestVersusCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.parquet")
	execute(t, "versus", "--p1", "random", "--p2", "random", "--games", "4", "--threads", "2", "--out", path)

	records, err := bench.ReadRecords(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Errorf("read %d records, want 4", len(records))
	}
}

func TestLoadEngineConfig(t *testing.T) {
	config, err := LoadEngineConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if config.AlphaBeta != alphabeta.DefaultConfig() {
		t.Error("empty path changed the defaults")
	}

	path := filepath.Join(t.TempDir(), "engine.json")
	data := `{"alphabeta": {"max_depth": 8, "quiescence": false}, "mcts": {"exploration_param": 1.2, "limits": {"multipv": 3}}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err = LoadEngineConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if config.AlphaBeta.MaxDepth != 8 || config.AlphaBeta.Quiescence {
		t.Errorf("alphabeta config not applied: %v", config.AlphaBeta)
	}
	if !config.AlphaBeta.TieBreak || config.AlphaBeta.MinDepth != 1 {
		t.Errorf("missing fields lost their defaults: %v", config.AlphaBeta)
	}
	if config.MCTS.ExplorationParam != 1.2 || config.MCTS.Limits.MultiPv != 3 {
		t.Errorf("mcts config not applied: %+v", config.MCTS)
	}

	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadEngineConfig(path); err == nil {
		t.Error("broken json was accepted")
	}
}
