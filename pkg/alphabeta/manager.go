package alphabeta

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/IlikeChooros/uttt-engine/pkg/eval"
	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

// Outcome of a search, the score is from the perspective of the side to move
type Result struct {
	Move    uttt.Move     `json:"move"`
	Score   eval.Score    `json:"score"`
	Depth   int           `json:"depth"`
	Nodes   uint64        `json:"nodes"`
	Elapsed time.Duration `json:"elapsed"`
	// search ended by the stop flag, not by reaching the depth limit
	Stopped bool `json:"stopped"`
}

func (r Result) String() string {
	builder := strings.Builder{}
	_ = json.NewEncoder(&builder).Encode(r)
	return builder.String()
}

// Best score found at the root, shared between the root move searchers.
// A stale read only weakens pruning
type sharedScore struct {
	bits atomic.Uint32
}

func (s *sharedScore) Load() eval.Score {
	return math.Float32frombits(s.bits.Load())
}

func (s *sharedScore) Store(v eval.Score) {
	s.bits.Store(math.Float32bits(v))
}

// Iterative deepening driver, owns the position snapshot and the stop flag
type Manager struct {
	pos    uttt.Position
	config Config
	eval   *eval.Evaluator
	stop   atomic.Bool
	nodes  atomic.Uint64
	mu     sync.Mutex // one search at a time
}

func NewManager(pos uttt.Position, config Config) *Manager {
	evaluator := eval.Default()
	if config.Weights != eval.DefaultWeights() {
		evaluator = eval.New(config.Weights)
	}

	config.SetDepth(config.MinDepth, config.MaxDepth)
	config.SetThreads(config.Threads)
	return &Manager{
		pos:    pos,
		config: config,
		eval:   evaluator,
	}
}

func (m *Manager) Config() Config {
	return m.config
}

func (m *Manager) Position() uttt.Position {
	return m.pos
}

// Replace the root position, must not be called during a search
func (m *Manager) SetPosition(pos uttt.Position) {
	m.pos = pos
}

// Ask the running search to stop, it returns the best result found so far.
// A Stop issued before the search starts ends the next search right away
func (m *Manager) Stop() {
	m.stop.Store(true)
}

// Search until the depth limit, Stop or the context cancellation
func (m *Manager) Search(ctx context.Context) Result {
	return m.searchWithin(ctx, -1)
}

// Search for 'budget' minus the safety margin, then stop and return the result
// of the last completed depth
func (m *Manager) SearchFixedTime(ctx context.Context, budget time.Duration) Result {
	wait := budget - m.config.safetyMargin()
	if wait <= 0 {
		wait = budget / 2
	}
	return m.searchWithin(ctx, wait)
}

// Allocate time from the mover's remaining clock and search for that long
func (m *Manager) SearchFree(ctx context.Context, xRemaining, oRemaining time.Duration) Result {
	remaining := xRemaining
	if m.pos.SideToMove() == uttt.O {
		remaining = oRemaining
	}

	budget := m.config.TimePolicy.Allocate(m.pos.Ply(), remaining)
	log.Debug().
		Int("ply", m.pos.Ply()).
		Dur("remaining", remaining).
		Dur("budget", budget).
		Msg("allocated-time")
	return m.SearchFixedTime(ctx, budget)
}

func (m *Manager) searchWithin(ctx context.Context, wait time.Duration) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	// cleared once the search has returned, so an early Stop is never lost
	defer m.stop.Store(false)
	m.nodes.Store(0)
	done := make(chan Result, 1)
	go func() {
		done <- m.iterate()
	}()

	var timeout <-chan time.Time
	if wait >= 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case r := <-done:
		return r
	case <-timeout:
	case <-ctx.Done():
	}

	m.stop.Store(true)
	return <-done
}

func (m *Manager) iterate() Result {
	start := time.Now()
	pos := m.pos
	if pos.IsOver() {
		return Result{Move: uttt.NullMove}
	}

	moves := pos.LegalMoves()
	best := Result{Move: moves.Any(), Score: eval.ScoreNegInf}
	if moves.Len() == 1 {
		best.Score = 0
		return best
	}

	// deeper than the number of empty cells can't change anything
	maxDepth := max(m.config.MinDepth, min(m.config.MaxDepth, pos.EmptyCells().Len()))
	completed := 0

	for depth := m.config.MinDepth; depth <= maxDepth; depth++ {
		result, err := m.searchRoot(pos, moves, depth, best.Move)
		if err != nil {
			if !errors.Is(err, ErrSearchStopped) {
				log.Error().Err(err).Int("depth", depth).Msg("root-search-failed")
			}

			// nothing completed yet, so take the partial scan if the first move got a score
			if completed == 0 && result.Move != uttt.NullMove {
				best.Move, best.Score = result.Move, result.Score
			}
			best.Stopped = true
			log.Debug().Int("depth", depth).Int("completed", completed).Msg("search-stopped")
			break
		}

		best.Move, best.Score = result.Move, result.Score
		completed = depth
		log.Debug().
			Int("depth", depth).
			Stringer("move", best.Move).
			Float32("score", best.Score).
			Uint64("nodes", m.nodes.Load()).
			Dur("elapsed", time.Since(start)).
			Msg("depth-finished")

		if best.Score >= eval.ScoreWin || best.Score <= eval.ScoreLoss {
			break
		}
	}

	best.Depth = completed
	best.Nodes = m.nodes.Load()
	best.Elapsed = time.Since(start)
	return best
}

type rootMove struct {
	Move  uttt.Move
	Score eval.Score
}

// Search all root moves to 'depth', the previous best first, then a few serially and
// the rest in parallel. On error the returned move is the best one scored so far,
// NullMove if not even the first one completed
func (m *Manager) searchRoot(pos uttt.Position, moves uttt.MoveSet, depth int, first uttt.Move) (rootMove, error) {
	remaining := moves
	remaining.Remove(first)

	w := NewWorker(m.eval, &m.stop, m.config)
	defer func() { m.nodes.Add(w.Nodes()) }()

	// full window, its score is the cutoff bound for every sibling
	score, err := searchMove(w, pos, first, depth, eval.ScoreNegInf)
	if err != nil {
		return rootMove{Move: uttt.NullMove}, err
	}

	best := rootMove{Move: first, Score: score}
	var bound sharedScore
	bound.Store(score)

	for i := 1; i < m.config.SerialMoves && !remaining.Empty(); i++ {
		move := remaining.Pop()
		score, err := searchMove(w, pos, move, depth, bound.Load())
		if err != nil {
			return best, err
		}
		if score > best.Score {
			best = rootMove{Move: move, Score: score}
			bound.Store(score)
		}
	}

	var mu sync.Mutex
	g := errgroup.Group{}
	g.SetLimit(m.config.Threads)

	for move := remaining.Pop(); move != uttt.NullMove; move = remaining.Pop() {
		g.Go(func() error {
			w := NewWorker(m.eval, &m.stop, m.config)
			score, err := searchMove(w, pos, move, depth, bound.Load())
			m.nodes.Add(w.Nodes())
			if err != nil {
				return err
			}

			mu.Lock()
			if score > best.Score {
				best = rootMove{Move: move, Score: score}
				bound.Store(score)
			}
			mu.Unlock()
			return nil
		})
	}

	err = g.Wait()
	mu.Lock()
	defer mu.Unlock()
	return best, err
}

// Score of a root move, 'bound' is the best root score so far
func searchMove(w *Worker, pos uttt.Position, move uttt.Move, depth int, bound eval.Score) (eval.Score, error) {
	child := pos
	child.MakeMove(move)
	score, err := w.Negamax(child, depth-1, eval.ScoreNegInf, -bound)
	return -score, err
}

// Fixed depth, single threaded search without a time limit
func BestMove(pos uttt.Position, depth int, config Config) Result {
	var stop atomic.Bool
	start := time.Now()
	evaluator := eval.Default()
	if config.Weights != eval.DefaultWeights() {
		evaluator = eval.New(config.Weights)
	}

	if pos.IsOver() {
		return Result{Move: uttt.NullMove}
	}

	w := NewWorker(evaluator, &stop, config)
	moves := pos.LegalMoves()
	best := Result{Move: moves.Any(), Score: eval.ScoreNegInf, Depth: max(1, depth)}
	for move := moves.Pop(); move != uttt.NullMove; move = moves.Pop() {
		// the flag is never set, so there is no error to handle
		score, _ := searchMove(w, pos, move, best.Depth, best.Score)
		if score > best.Score {
			best.Move, best.Score = move, score
		}
	}

	best.Nodes = w.Nodes()
	best.Elapsed = time.Since(start)
	return best
}
