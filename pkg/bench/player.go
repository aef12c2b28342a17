package bench

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/IlikeChooros/uttt-engine/pkg/alphabeta"
	"github.com/IlikeChooros/uttt-engine/pkg/mcts"
	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

// Engine taking part in the arena. Each worker plays with its own clones
type Player interface {
	Name() string
	// Start a new game from 'pos'
	Reset(pos uttt.Position)
	// Choose a move for the side to move in 'pos'
	BestMove(ctx context.Context, pos uttt.Position) (uttt.Move, error)
	// Notify about a move played on the board, by either side
	MakeMove(move uttt.Move)
	Clone() Player
}

// Iterative deepening alpha-beta with a fixed time per move
type AlphaBetaPlayer struct {
	Config   alphabeta.Config
	Movetime time.Duration
	manager  *alphabeta.Manager
}

func NewAlphaBetaPlayer(config alphabeta.Config, movetime time.Duration) *AlphaBetaPlayer {
	return &AlphaBetaPlayer{Config: config, Movetime: movetime}
}

func (p *AlphaBetaPlayer) Name() string {
	return fmt.Sprintf("alphabeta(%v)", p.Movetime)
}

func (p *AlphaBetaPlayer) Reset(pos uttt.Position) {
	p.manager = alphabeta.NewManager(pos, p.Config)
}

func (p *AlphaBetaPlayer) BestMove(ctx context.Context, pos uttt.Position) (uttt.Move, error) {
	if p.manager == nil {
		p.Reset(pos)
	}
	p.manager.SetPosition(pos)
	result := p.manager.SearchFixedTime(ctx, p.Movetime)
	if result.Move == uttt.NullMove {
		return result.Move, fmt.Errorf("%s: no move in %v", p.Name(), pos.Notation())
	}
	return result.Move, nil
}

func (p *AlphaBetaPlayer) MakeMove(uttt.Move) {}

func (p *AlphaBetaPlayer) Clone() Player {
	return NewAlphaBetaPlayer(p.Config, p.Movetime)
}

// Monte-Carlo tree search reusing its tree between moves
type MCTSPlayer struct {
	Rave             bool
	ExplorationParam float64
	Limits           mcts.Limits
	tree             *mcts.MCTS
}

func NewMCTSPlayer(rave bool, c float64, limits *mcts.Limits) *MCTSPlayer {
	return &MCTSPlayer{Rave: rave, ExplorationParam: c, Limits: *limits}
}

func (p *MCTSPlayer) Name() string {
	name := "ucb1"
	if p.Rave {
		name = "rave"
	}
	return fmt.Sprintf("mcts-%s(c=%.2f, %dms)", name, p.ExplorationParam, p.Limits.Movetime)
}

func (p *MCTSPlayer) Reset(pos uttt.Position) {
	var strategy mcts.Strategy = mcts.NewUCB1()
	if p.Rave {
		strategy = mcts.NewRAVE()
	}

	limits := p.Limits
	p.tree = mcts.NewMCTS(pos, strategy)
	p.tree.SetExplorationParam(p.ExplorationParam)
	p.tree.SetLimits(&limits)
}

func (p *MCTSPlayer) BestMove(ctx context.Context, pos uttt.Position) (uttt.Move, error) {
	if p.tree == nil || p.tree.Position() != pos {
		p.Reset(pos)
	}

	p.tree.SetContext(ctx)
	p.tree.Search()
	move := p.tree.RootMove()
	if move == uttt.NullMove {
		return move, fmt.Errorf("%s: no move in %v", p.Name(), pos.Notation())
	}
	return move, nil
}

func (p *MCTSPlayer) MakeMove(move uttt.Move) {
	if p.tree != nil {
		p.tree.MakeMove(move)
	}
}

func (p *MCTSPlayer) Clone() Player {
	return NewMCTSPlayer(p.Rave, p.ExplorationParam, &p.Limits)
}

// Uniformly random legal moves
type RandomPlayer struct {
	rng *rand.Rand
}

func NewRandomPlayer(seed int64) *RandomPlayer {
	return &RandomPlayer{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPlayer) Name() string {
	return "random"
}

func (p *RandomPlayer) Reset(uttt.Position) {}

func (p *RandomPlayer) BestMove(_ context.Context, pos uttt.Position) (uttt.Move, error) {
	moves := pos.LegalMoves()
	return moves.Nth(p.rng.Intn(moves.Len())), nil
}

func (p *RandomPlayer) MakeMove(uttt.Move) {}

func (p *RandomPlayer) Clone() Player {
	return NewRandomPlayer(p.rng.Int63())
}
