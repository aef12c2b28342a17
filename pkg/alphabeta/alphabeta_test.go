package alphabeta

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IlikeChooros/uttt-engine/pkg/eval"
	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

// x owns blocks 0 and 1 and is sent to block 2, where it has two in a row
const winInOne = "xxx6/xxx6/xx7/9/9/9/9/9/9 x 2"

const midgame = "0, 3, 27, 4, 36, 5, 46, 13, 37, 12, 28, 14"

func mustNotation(t *testing.T, notation string) uttt.Position {
	t.Helper()
	pos, err := uttt.FromNotation(notation)
	if err != nil {
		t.Fatal(err)
	}
	return pos
}

func mustMoveList(t *testing.T, list string) uttt.Position {
	t.Helper()
	pos, err := uttt.FromMoveList(list)
	if err != nil {
		t.Fatal(err)
	}
	return pos
}

func TestBestMoveWinInOne(t *testing.T) {
	pos := mustNotation(t, winInOne)

	for depth := 1; depth <= 3; depth++ {
		result := BestMove(pos, depth, DefaultConfig())
		if result.Move != 20 {
			t.Errorf("depth %d: move=%v, want 20", depth, result.Move)
		}
		if result.Score != eval.ScoreWin {
			t.Errorf("depth %d: score=%f, want %f", depth, result.Score, eval.ScoreWin)
		}
	}
}

func TestQuiescenceFindsCapture(t *testing.T) {
	pos := mustNotation(t, winInOne)
	var stop atomic.Bool

	config := DefaultConfig()
	w := NewWorker(eval.Default(), &stop, *config.SetQuiescence(true))
	score, err := w.Negamax(pos, 0, eval.ScoreNegInf, eval.ScorePosInf)
	if err != nil {
		t.Fatal(err)
	}
	if score != eval.ScoreWin {
		t.Errorf("quiescence score=%f, want %f", score, eval.ScoreWin)
	}

	w = NewWorker(eval.Default(), &stop, *config.SetQuiescence(false))
	score, err = w.Negamax(pos, 0, eval.ScoreNegInf, eval.ScorePosInf)
	if err != nil {
		t.Fatal(err)
	}
	if want := eval.Default().Evaluate(&pos); score != want {
		t.Errorf("static score=%f, want %f", score, want)
	}
}

func TestQuietPositionEqualsEval(t *testing.T) {
	pos := uttt.NewPosition()
	pos.MakeMove(40)
	var stop atomic.Bool

	w := NewWorker(eval.Default(), &stop, DefaultConfig())
	score, err := w.Negamax(pos, 0, eval.ScoreNegInf, eval.ScorePosInf)
	if err != nil {
		t.Fatal(err)
	}
	if want := eval.Default().Evaluate(&pos); score != want {
		t.Errorf("score=%f, want %f", score, want)
	}
}

func TestDrawScore(t *testing.T) {
	// full board, x captured more blocks, o to move
	pos := mustNotation(t, "xxxxxxxxx/xxxxxxxxx/ooooooooo/xoxxoxoxo/xoxxoxoxo/xoxxoxoxo/xoxxoxoxo/xoxxoxoxo/xoxxoxoxo o -")
	var stop atomic.Bool

	config := DefaultConfig()
	w := NewWorker(eval.Default(), &stop, *config.SetTieBreak(true))
	if score, _ := w.Negamax(pos, 3, eval.ScoreNegInf, eval.ScorePosInf); score != -eval.ScoreWin {
		t.Errorf("tie break score=%f, want %f", score, -eval.ScoreWin)
	}

	w = NewWorker(eval.Default(), &stop, *config.SetTieBreak(false))
	if score, _ := w.Negamax(pos, 3, eval.ScoreNegInf, eval.ScorePosInf); score != 0 {
		t.Errorf("plain draw score=%f, want 0", score)
	}
}

func TestStoppedWorkerUnwinds(t *testing.T) {
	var stop atomic.Bool
	stop.Store(true)

	w := NewWorker(eval.Default(), &stop, DefaultConfig())
	_, err := w.Negamax(uttt.NewPosition(), 6, eval.ScoreNegInf, eval.ScorePosInf)
	if !errors.Is(err, ErrSearchStopped) {
		t.Fatalf("err=%v, want ErrSearchStopped", err)
	}
	if w.Nodes() != 1 {
		t.Errorf("evaluated %d leaves after the stop, want 1", w.Nodes())
	}
}

func TestManagerMatchesBestMove(t *testing.T) {
	pos := mustMoveList(t, midgame)
	config := DefaultConfig()
	config.SetDepth(3, 3).SetThreads(4)

	manager := NewManager(pos, config)
	result := manager.Search(context.Background())
	want := BestMove(pos, 3, config)

	if result.Depth != 3 || result.Stopped {
		t.Fatalf("depth=%d stopped=%v, want a completed depth 3", result.Depth, result.Stopped)
	}
	if result.Score != want.Score {
		t.Errorf("manager score=%f, fixed depth score=%f", result.Score, want.Score)
	}
	if !pos.LegalMoves().Contains(result.Move) {
		t.Errorf("illegal move %v", result.Move)
	}
}

func TestSearchFixedTime(t *testing.T) {
	pos := uttt.NewPosition()
	manager := NewManager(pos, DefaultConfig())

	start := time.Now()
	result := manager.SearchFixedTime(context.Background(), 200*time.Millisecond)
	elapsed := time.Since(start)

	if !pos.LegalMoves().Contains(result.Move) {
		t.Errorf("illegal move %v", result.Move)
	}
	if result.Depth < 1 {
		t.Errorf("no completed depth in 200ms: %v", result)
	}
	if elapsed > time.Second {
		t.Errorf("search took %v with a 200ms budget", elapsed)
	}
}

func TestSearchFindsWin(t *testing.T) {
	manager := NewManager(mustNotation(t, winInOne), DefaultConfig())
	result := manager.SearchFixedTime(context.Background(), time.Second)

	if result.Move != 20 || result.Score != eval.ScoreWin {
		t.Errorf("result=%v, want move 20 with a winning score", result)
	}
}

// the stop flag may be set at any moment and the move must stay legal
func TestCancellationSafety(t *testing.T) {
	positions := []uttt.Position{uttt.NewPosition(), mustMoveList(t, midgame)}
	delays := []time.Duration{0, time.Millisecond, 20 * time.Millisecond, 100 * time.Millisecond}

	for _, pos := range positions {
		for _, delay := range delays {
			manager := NewManager(pos, DefaultConfig())
			done := make(chan Result, 1)
			go func() {
				done <- manager.Search(context.Background())
			}()

			time.Sleep(delay)
			manager.Stop()

			select {
			case result := <-done:
				if !pos.LegalMoves().Contains(result.Move) {
					t.Errorf("delay %v: illegal move %v", delay, result.Move)
				}
			case <-time.After(2 * time.Second):
				t.Fatalf("delay %v: search did not stop", delay)
			}
		}
	}
}

// a Stop racing with the start of the search must still end it
func TestStopRightAfterLaunch(t *testing.T) {
	pos := uttt.NewPosition()
	for run := 0; run < 20; run++ {
		manager := NewManager(pos, DefaultConfig())
		done := make(chan Result, 1)
		go func() {
			done <- manager.Search(context.Background())
		}()
		manager.Stop()

		select {
		case result := <-done:
			if !pos.LegalMoves().Contains(result.Move) {
				t.Errorf("run %d: illegal move %v", run, result.Move)
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("run %d: search did not stop", run)
		}
	}
}

func TestStopBeforeSearch(t *testing.T) {
	pos := uttt.NewPosition()
	manager := NewManager(pos, DefaultConfig())
	manager.Stop()

	result := manager.Search(context.Background())
	if !result.Stopped || result.Depth != 0 {
		t.Errorf("result=%v, want a search stopped before any depth", result)
	}
	if !pos.LegalMoves().Contains(result.Move) {
		t.Errorf("illegal move %v", result.Move)
	}

	// the stop was consumed, the next search runs normally
	result = manager.SearchFixedTime(context.Background(), 200*time.Millisecond)
	if result.Depth < 1 {
		t.Errorf("no completed depth after a consumed stop: %v", result)
	}
}

func TestContextCancellation(t *testing.T) {
	pos := uttt.NewPosition()
	manager := NewManager(pos, DefaultConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	result := manager.SearchFixedTime(ctx, time.Hour)
	if time.Since(start) > 2*time.Second {
		t.Error("context cancellation was ignored")
	}
	if !result.Stopped || !pos.LegalMoves().Contains(result.Move) {
		t.Errorf("unexpected result %v", result)
	}
}

func TestSingleLegalMove(t *testing.T) {
	// x is sent to block 0, which has one empty cell
	pos := mustNotation(t, "xoxoxoox1/9/9/9/9/9/9/9/9 x 0")
	result := NewManager(pos, DefaultConfig()).SearchFixedTime(context.Background(), time.Hour)
	if result.Move != 8 {
		t.Errorf("move=%v, want 8", result.Move)
	}
}

func TestTimePolicy(t *testing.T) {
	tp := DefaultTimePolicy()
	tests := []struct {
		ply       int
		remaining time.Duration
		want      time.Duration
	}{
		{10, 55 * time.Second, time.Second},
		{0, 65 * time.Second, time.Second},
		{61, 1500 * time.Millisecond, time.Second},
		{61, 9 * time.Second, 3 * time.Second},
	}

	for _, tt := range tests {
		if got := tp.Allocate(tt.ply, tt.remaining); got != tt.want {
			t.Errorf("Allocate(%d, %v)=%v, want %v", tt.ply, tt.remaining, got, tt.want)
		}
	}
}

func TestSearchFree(t *testing.T) {
	pos := mustMoveList(t, "40")
	manager := NewManager(pos, DefaultConfig())

	start := time.Now()
	result := manager.SearchFree(context.Background(), time.Minute, 6400*time.Millisecond)
	if !pos.LegalMoves().Contains(result.Move) {
		t.Errorf("illegal move %v", result.Move)
	}
	// o has 6.4s at ply 1, which is 100ms
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("free search took %v", elapsed)
	}
}

func BenchmarkSearchDepth4(b *testing.B) {
	pos, _ := uttt.FromMoveList(midgame)
	config := DefaultConfig()
	config.SetDepth(4, 4)
	for i := 0; i < b.N; i++ {
		NewManager(pos, config).Search(context.Background())
	}
}
