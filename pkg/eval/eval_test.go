package eval

import (
	"testing"

	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

func TestEvaluateStartpos(t *testing.T) {
	pos := uttt.NewPosition()
	if score := Default().Evaluate(&pos); score != 0 {
		t.Errorf("empty board eval=%f, want 0", score)
	}
}

func TestEvaluateSideToMove(t *testing.T) {
	pos := uttt.NewPosition()
	pos.MakeMove(40)

	e := Default()
	score := e.Evaluate(&pos)
	if score >= 0 {
		t.Errorf("after x takes the center, eval for o=%f, want < 0", score)
	}

	// same board, x to move
	flipped, err := uttt.FromNotation("9/9/9/9/4x4/9/9/9/9 x 4")
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Evaluate(&flipped); got != -score {
		t.Errorf("eval with x to move=%f, want %f", got, -score)
	}
}

func TestBlockSymmetry(t *testing.T) {
	e := Default()
	for x := uttt.B33(0); x <= uttt.BlockOcc; x += 7 {
		for o := uttt.B33(0); o <= uttt.BlockOcc; o += 5 {
			if x&o != 0 {
				continue
			}
			if a, b := e.Block(x, o), e.Block(o, x); a != -b {
				t.Fatalf("Block(%09b,%09b)=%f, Block(%09b,%09b)=%f", x, o, a, o, x, b)
			}
		}
	}
}

func TestBlockScoreTable(t *testing.T) {
	w := DefaultWeights()
	e := New(w)

	tests := []struct {
		name string
		x, o uttt.B33
		want Score
	}{
		{"empty", 0, 0, 0},
		// x: 2 cells needed on 4 routes, o: 3 cells needed on 4 routes
		{"center", 0b000010000, 0, w.NeedTwo*w.Routes[4] - w.NeedThree},
		// x won, o can't win anymore
		{"won", 0b111100111, 0b000011000, w.Won - w.Hopeless},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Block(tt.x, tt.o); got != tt.want {
				t.Errorf("Block=%f, want %f", got, tt.want)
			}
		})
	}
}

func TestMetaWeight(t *testing.T) {
	pos, err := uttt.FromMoveList("0,3,27,4,37,9,1,10,11,18,2")
	if err != nil {
		t.Fatal(err)
	}

	w := DefaultWeights()
	low := New(w).Evaluate(&pos)
	w.Meta = 100
	high := New(w).Evaluate(&pos)

	// o to move, x owns a block
	if !(high < low && low < 0) {
		t.Errorf("meta weight should push the eval further from o: low=%f high=%f", low, high)
	}
}

func TestBasic(t *testing.T) {
	pos, err := uttt.FromMoveList("0,3,27,4,37,9,1,10,11,18,2")
	if err != nil {
		t.Fatal(err)
	}

	if got := Basic(&pos); got != -1 {
		t.Errorf("Basic=%f, want -1", got)
	}
}

func BenchmarkEvaluate(b *testing.B) {
	pos, _ := uttt.FromMoveList("0,3,27,4,36,5,46,13,37,12,28,14")
	e := Default()
	for i := 0; i < b.N; i++ {
		e.Evaluate(&pos)
	}
}
