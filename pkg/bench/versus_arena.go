package bench

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/IlikeChooros/uttt-engine/pkg/mcts"
	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

/*
Arena benchmark subpackage, plays a series of games between two players,
each game starts with a random player to move first.
*/

type VersusArena struct {
	VersusArenaStats
	Player1  Player
	Player2  Player
	NGames   int
	NThreads int
	Position uttt.Position
	// Full boards are won by the side with more captured blocks
	TieBreak bool

	records []GameRecord
	mu      sync.Mutex
	ctx     context.Context
}

func NewVersusArena(player1, player2 Player) *VersusArena {
	return &VersusArena{
		Player1:  player1,
		Player2:  player2,
		NGames:   100,
		NThreads: 2,
		Position: uttt.NewPosition(),
		TieBreak: true,
		ctx:      context.Background(),
	}
}

func (va *VersusArena) WithContext(ctx context.Context) *VersusArena {
	va.ctx = ctx
	return va
}

func (va *VersusArena) Setup(nGames, nThreads int) *VersusArena {
	va.NGames = max(0, nGames)
	va.NThreads = max(1, nThreads)
	return va
}

// Games finished by the last run, ordered by worker and game number
func (va *VersusArena) Records() []GameRecord {
	va.mu.Lock()
	defer va.mu.Unlock()
	return append([]GameRecord(nil), va.records...)
}

func (va *VersusArena) summary(workers int) VersusSummaryInfo {
	return VersusSummaryInfo{
		TotalGames:       va.Total(),
		P1Wins:           va.P1Wins(),
		P2Wins:           va.P2Wins(),
		FirstToMoveWins:  va.FirstToMoveWins(),
		SecondToMoveWins: va.SecondToMoveWins(),
		Draws:            va.Draws(),
		Workers:          workers,
		P1Name:           va.Player1.Name(),
		P2Name:           va.Player2.Name(),
	}
}

// Play all games, blocks until they're finished or the context is cancelled.
// A cancelled run returns the summary of the finished games and no error
func (va *VersusArena) Run(listener ListenerLike) (VersusSummaryInfo, error) {
	if listener == nil {
		listener = &DefaultListener{}
	}

	va.reset()
	workers := max(1, min(va.NThreads, va.NGames))
	listener.OnStart(va.summary(workers))

	g, ctx := errgroup.WithContext(va.ctx)
	perWorker, rest := va.NGames/workers, va.NGames%workers
	for id := range workers {
		nGames := perWorker
		if id < rest {
			nGames++
		}

		// Always use clones, players keep per-game state
		p1, p2 := va.Player1.Clone(), va.Player2.Clone()
		l := listener.Clone()
		l.SetRow(id + statsRowStart)

		g.Go(func() error {
			return va.worker(ctx, id, nGames, l, p1, p2)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}

	va.mu.Lock()
	sortRecords(va.records)
	va.mu.Unlock()

	summary := va.summary(workers)
	listener.Summary(summary)
	listener.OnEnd()
	return summary, err
}

func (va *VersusArena) reset() {
	va.VersusArenaStats.reset()
	va.mu.Lock()
	va.records = va.records[:0]
	va.mu.Unlock()
}

func (va *VersusArena) worker(ctx context.Context, id, nGames int, listener ListenerLike, p1, p2 Player) error {
	r := rand.New(rand.NewSource(mcts.SeedGeneratorFn() + int64(id)))
	local := VersusWorkerInfo{
		WorkerID: id,
		NGames:   nGames,
		P1Name:   p1.Name(),
		P2Name:   p2.Name(),
	}

	for game := range nGames {
		if err := ctx.Err(); err != nil {
			return err
		}

		p1First := r.Intn(2) == 0
		first, second := p1, p2
		if !p1First {
			first, second = p2, p1
		}

		record, final, err := va.playGame(ctx, first, second, listener, &local)
		if err != nil {
			return err
		}

		outcome := computeOutcome(&final, va.Position.SideToMove(), va.TieBreak)
		result := toAgentResult(outcome, p1First)
		va.add(result, outcome)
		switch result {
		case VersusPl1Win:
			local.P1Wins++
		case VersusPl2Win:
			local.P2Wins++
		default:
			local.Draws++
		}
		if !outcome.IsDraw {
			if outcome.FirstPlayerWon {
				local.FirstToMoveWins++
			} else {
				local.SecondToMoveWins++
			}
		}

		record.Worker, record.Game = int32(id), int32(game)
		record.Winner = result.String()
		va.mu.Lock()
		va.records = append(va.records, record)
		va.mu.Unlock()

		local.FinishedGames = game + 1
		listener.OnFinishedGame(local)
		log.Debug().
			Int("worker", id).
			Int("game", game).
			Stringer("winner", result).
			Int("plies", int(record.Plies)).
			Msg("arena-game-finished")
	}

	listener.OnFinishedWork(local)
	return nil
}

// Play a single game, 'first' moves first from the arena's position
func (va *VersusArena) playGame(ctx context.Context, first, second Player, listener ListenerLike, info *VersusWorkerInfo) (GameRecord, uttt.Position, error) {
	start := time.Now()
	pos := va.Position
	players := [2]Player{first, second}
	moves := make([]uttt.Move, 0, uttt.NumCells)

	first.Reset(pos)
	second.Reset(pos)
	info.Moves, info.GameMoveNum, info.Position = moves, 0, pos
	listener.OnGameStart(*info)

	for turn := 0; !pos.IsOver(); turn ^= 1 {
		if err := ctx.Err(); err != nil {
			return GameRecord{}, pos, err
		}

		player := players[turn]
		move, err := player.BestMove(ctx, pos)
		if err != nil {
			return GameRecord{}, pos, err
		}
		if !move.Valid() || !pos.LegalMoves().Contains(move) {
			if ctx.Err() != nil {
				return GameRecord{}, pos, ctx.Err()
			}
			return GameRecord{}, pos, fmt.Errorf("%s played %v in %v: %w", player.Name(), move, pos.Notation(), uttt.ErrIllegalMove)
		}

		pos.MakeMove(move)
		moves = append(moves, move)
		first.MakeMove(move)
		second.MakeMove(move)

		info.Moves, info.GameMoveNum, info.Position = moves, len(moves), pos
		listener.OnMoveMade(*info)
	}

	return newGameRecord(first.Name(), second.Name(), pos, moves, va.TieBreak, time.Since(start)), pos, nil
}
