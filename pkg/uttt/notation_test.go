package uttt

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func TestNotationStartpos(t *testing.T) {
	pos := NewPosition()
	if got := pos.Notation(); got != StartingPosition {
		t.Errorf("Notation=%q, want %q", got, StartingPosition)
	}

	parsed, err := FromNotation("startpos")
	if err != nil {
		t.Fatal(err)
	}
	if parsed != pos {
		t.Errorf("startpos parsed into %s", parsed.Notation())
	}
}

func TestNotationExample(t *testing.T) {
	const notation = "9/9/9/7x1/4xo3/8x/9/4o4/o8 x 0"
	pos, err := FromNotation(notation)
	if err != nil {
		t.Fatal(err)
	}

	if got := pos.Notation(); got != notation {
		t.Errorf("Notation=%q, want %q", got, notation)
	}
	if side, ok := pos.CellAt(MakeMove(3, 7)); !ok || side != X {
		t.Error("expected x on block 3 cell 7")
	}
	if pos.SideToMove() != X || pos.LastBlock() != 0 {
		t.Errorf("side=%v last=%d", pos.SideToMove(), pos.LastBlock())
	}
}

func TestNotationErrors(t *testing.T) {
	tests := []string{
		"",
		"9/9/9/9/9/9/9/9 x -",
		"9/9/9/9/9/9/9/9/9 y -",
		"9/9/9/9/9/9/9/9/9 x 9",
		"9/9/9/9/9/9/9/9/8 x -",
		"9/9/9/9/9/9/9/9/9x x -",
		"9/9/9/9/9/9/9/9/a8 x -",
		"xxxooo3/9/9/9/9/9/9/9/9 x -",
	}

	for _, notation := range tests {
		t.Run(notation, func(t *testing.T) {
			if _, err := FromNotation(notation); err == nil {
				t.Errorf("expected an error for %q", notation)
			}
		})
	}
}

func TestBGNErrors(t *testing.T) {
	tests := []string{
		"1 0/0/0/0/0/0/0/0/0 0/0/0/0/0/0/0/0/0 9 X",
		"2 0/0/0/0/0/0/0/0 0/0/0/0/0/0/0/0/0 9 X",
		"2 0/0/0/0/0/0/0/0/0 0/0/0/0/0/0/0/0/0 9 Z",
		"2 0/0/0/0/0/0/0/0/zz 0/0/0/0/0/0/0/0/0 9 X",
		"2 1/0/0/0/0/0/0/0/0 1/0/0/0/0/0/0/0/0 9 X",
	}

	for _, bgn := range tests {
		if _, err := ParseBGN(bgn); !errors.Is(err, ErrInvalidNotation) && !errors.Is(err, ErrInvalidPosition) {
			t.Errorf("ParseBGN(%q): err=%v", bgn, err)
		}
	}
}

func TestCompactBoardErrors(t *testing.T) {
	pos := NewPosition()
	board := pos.CompactBoard()

	if _, err := ParseCompactBoard(board[:len(board)-2], X, false); !errors.Is(err, ErrInvalidNotation) {
		t.Errorf("truncated board: err=%v", err)
	}
	if _, err := ParseCompactBoard(strings.Replace(board, ".", "?", 1), X, false); !errors.Is(err, ErrInvalidNotation) {
		t.Errorf("bad cell: err=%v", err)
	}
	if _, err := ParseCompactBoard(strings.Replace(board, ".", "O", 1), X, true); !errors.Is(err, ErrInvalidNotation) {
		t.Errorf("impossible side count: err=%v", err)
	}
}

// every format must reproduce the same pretty board
func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for game := 0; game < 200; game++ {
		pos := NewPosition()
		for !pos.IsOver() {
			checkRoundTrip(t, pos)
			moves := pos.LegalMoves()
			pos.MakeMove(moves.Nth(r.Intn(moves.Len())))
		}
		checkRoundTrip(t, pos)
	}
}

func checkRoundTrip(t *testing.T, pos Position) {
	t.Helper()
	want := pos.Pretty()

	parsers := map[string]func() (Position, error){
		"notation": func() (Position, error) { return FromNotation(pos.Notation()) },
		"bgn":      func() (Position, error) { return ParseBGN(pos.BGN()) },
		"compact": func() (Position, error) {
			return ParseCompactBoard(pos.CompactBoard(), pos.SideToMove(), false)
		},
	}

	for name, parse := range parsers {
		parsed, err := parse()
		if err != nil {
			t.Fatalf("%s: %v\n%s", name, err, want)
		}
		if got := parsed.Pretty(); got != want {
			t.Fatalf("%s round trip mismatch:\n%s\nwant:\n%s", name, got, want)
		}
		if parsed.Result() != pos.Result() || parsed.Captured(X) != pos.Captured(X) || parsed.Captured(O) != pos.Captured(O) {
			t.Fatalf("%s: result or captured blocks differ for %s", name, pos.Notation())
		}
	}
}

func TestPrettyLayout(t *testing.T) {
	pos, err := FromMoveList("40")
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(pos.Pretty(), "\n"), "\n")
	if len(lines) != 12 {
		t.Fatalf("pretty board has %d lines, want 12", len(lines))
	}
	if lines[5] != " - - - | - X - | - - -" {
		t.Errorf("middle row=%q", lines[5])
	}
	if lines[11] != "O 4" {
		t.Errorf("status line=%q", lines[11])
	}
}
