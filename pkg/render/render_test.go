package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	"github.com/IlikeChooros/uttt-engine/pkg/uttt"
)

func TestTerminalPlain(t *testing.T) {
	pos, err := uttt.FromMoveList("40")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Terminal(&buf, pos, DefaultTerminalOptions(), termenv.WithProfile(termenv.Ascii)); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Errorf("ascii profile produced escape codes: %q", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 12 {
		t.Fatalf("got %d lines, want 12:\n%s", len(lines), out)
	}
	// o is sent to the middle block, its empty cells are marked
	if got := strings.Count(out, "*"); got != 8 {
		t.Errorf("marked %d legal cells, want 8", got)
	}
	if strings.Count(out, "X") != 2 || !strings.Contains(out, "O to move") {
		t.Errorf("unexpected board:\n%s", out)
	}
}

func TestTerminalColored(t *testing.T) {
	pos, _ := uttt.FromMoveList("40")
	var buf bytes.Buffer
	if err := Terminal(&buf, pos, DefaultTerminalOptions(), termenv.WithProfile(termenv.ANSI)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Error("ansi profile produced no escape codes")
	}
}

func TestTerminalFinished(t *testing.T) {
	pos, err := uttt.FromNotation("xxxxxxxxx/xxxxxxxxx/xxxxxxxxx/9/9/9/9/9/9 o -")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	opts := DefaultTerminalOptions()
	if err := Terminal(&buf, pos, opts, termenv.WithProfile(termenv.Ascii)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "X won, captured X=3 O=0") {
		t.Errorf("missing result line:\n%s", buf.String())
	}
}

func TestSVG(t *testing.T) {
	pos, _ := uttt.FromMoveList("40, 36")

	var buf bytes.Buffer
	if err := SVG(&buf, pos); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatalf("not an svg document:\n%s", out)
	}
	if got := strings.Count(out, "<circle"); got != 1+9 {
		t.Errorf("%d circles, want one O and 9 legal dots", got)
	}
	if !strings.Contains(out, "X to move") {
		t.Error("missing status text")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestSVGWriteError(t *testing.T) {
	if err := SVG(failingWriter{}, uttt.NewPosition()); err == nil {
		t.Error("write error was swallowed")
	}
}
