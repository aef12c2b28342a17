package uttt

import (
	"fmt"
	"strconv"
	"strings"
)

// Notation of the empty board, X to move anywhere
const StartingPosition = "9/9/9/9/9/9/9/9/9 x -"

// string notation for the big tic tac toe position
// Much like the FEN representation of a chessboard:
//
//	B/B/B/B/B/B/B/B/B <turn> <last block>
//
// where `B` is one block, cells in row-major order, 'x' and 'o' for
// the pieces and a digit for a run of empty cells. For example the block
//
//	o | x | x
//	x | o |
//	o |   |
//
// is written as `oxxxo1o2`. <turn> is either 'x' or 'o', <last block> is
// the block the side to move is sent to (0-8), or '-' if it may play anywhere.
//
// A captured block is written as filled by the capturing side.
//
// Examples:
//
// * 9/9/9/9/9/9/9/9/9 x -
//
// * 9/9/9/7x1/4xo3/8x/9/4o4/o8 x 0
func (p *Position) Notation() string {
	builder := strings.Builder{}

	for bi := uint8(0); bi < 9; bi++ {
		counter := 0
		for cell := uint8(0); cell < 9; cell++ {
			side, ok := p.CellAt(MakeMove(bi, cell))
			if !ok {
				counter++
				continue
			}

			if counter > 0 {
				builder.WriteByte('0' + byte(counter))
				counter = 0
			}
			if side == X {
				builder.WriteByte('x')
			} else {
				builder.WriteByte('o')
			}
		}

		if counter > 0 {
			builder.WriteByte('0' + byte(counter))
		}
		if bi != 8 {
			builder.WriteByte('/')
		}
	}

	builder.WriteByte(' ')
	if p.toMove == X {
		builder.WriteByte('x')
	} else {
		builder.WriteByte('o')
	}

	builder.WriteByte(' ')
	if p.lastBlock == AnyBlock {
		builder.WriteByte('-')
	} else {
		builder.WriteByte('0' + p.lastBlock)
	}

	return builder.String()
}

// Create the position from the notation string, "startpos" is accepted
// as an alias of the starting position
func FromNotation(notation string) (Position, error) {
	Init()
	notation = strings.TrimSpace(notation)
	if notation == "startpos" {
		notation = StartingPosition
	}

	fields := strings.Fields(notation)
	if len(fields) != 3 {
		return Position{}, fmt.Errorf("expected 3 fields, got %d: %w", len(fields), ErrInvalidNotation)
	}

	blocks := strings.Split(fields[0], "/")
	if len(blocks) != 9 {
		return Position{}, fmt.Errorf("expected 9 blocks, got %d: %w", len(blocks), ErrInvalidNotation)
	}

	pos := Position{lastBlock: AnyBlock}
	for bi, block := range blocks {
		cell := uint8(0)
		for i, v := range block {
			switch {
			case v == 'x' || v == 'o':
				if cell >= 9 {
					return Position{}, fmt.Errorf("too many cells in block %d: %w", bi, ErrInvalidNotation)
				}
				side := X
				if v == 'o' {
					side = O
				}
				pos.boards[side].fillBlock(uint8(bi), 1<<cell)
				cell++
			case '1' <= v && v <= '9':
				cell += uint8(v - '0')
				if cell > 9 {
					return Position{}, fmt.Errorf("skip overflows block %d at %d: %w", bi, i, ErrInvalidNotation)
				}
			default:
				return Position{}, fmt.Errorf("unexpected token %q in block %d: %w", v, bi, ErrInvalidNotation)
			}
		}

		if cell != 9 {
			return Position{}, fmt.Errorf("block %d has %d cells: %w", bi, cell, ErrInvalidNotation)
		}
	}

	switch fields[1] {
	case "x":
		pos.toMove = X
	case "o":
		pos.toMove = O
	default:
		return Position{}, fmt.Errorf("invalid side %q: %w", fields[1], ErrInvalidNotation)
	}

	lastBlock, err := parseLastBlock(fields[2], '-')
	if err != nil {
		return Position{}, err
	}
	pos.lastBlock = lastBlock

	if err := pos.rebuild(); err != nil {
		return Position{}, err
	}
	return pos, nil
}

func parseLastBlock(token string, any byte) (uint8, error) {
	if len(token) != 1 {
		return 0, fmt.Errorf("invalid last block %q: %w", token, ErrInvalidNotation)
	}

	switch v := token[0]; {
	case v == any:
		return AnyBlock, nil
	case '0' <= v && v <= '8':
		return v - '0', nil
	}
	return 0, fmt.Errorf("invalid last block %q: %w", token, ErrInvalidNotation)
}

// Board game notation: "2 <x blocks> <o blocks> <last block> <side>", where blocks are
// 9 hex occupancy masks separated by '/', last block is 0-8 or 9 for any
func (p *Position) BGN() string {
	side := func(s Side) string {
		blocks := make([]string, 9)
		for bi := uint8(0); bi < 9; bi++ {
			blocks[bi] = strconv.FormatUint(uint64(p.boards[s].block(bi)), 16)
		}
		return strings.Join(blocks, "/")
	}
	return fmt.Sprintf("2 %s %s %d %v", side(X), side(O), p.lastBlock, p.toMove)
}

func ParseBGN(repr string) (Position, error) {
	Init()
	fields := strings.Fields(repr)
	if len(fields) != 5 {
		return Position{}, fmt.Errorf("expected 5 tokens, got %d: %w", len(fields), ErrInvalidNotation)
	}
	if fields[0] != "2" {
		return Position{}, fmt.Errorf("unsupported level %q: %w", fields[0], ErrInvalidNotation)
	}

	pos := Position{}
	for i, side := range [2]Side{X, O} {
		blocks := strings.Split(fields[1+i], "/")
		if len(blocks) != 9 {
			return Position{}, fmt.Errorf("expected 9 blocks for %v, got %d: %w", side, len(blocks), ErrInvalidNotation)
		}
		for bi, tok := range blocks {
			occ, err := strconv.ParseUint(strings.TrimSpace(tok), 16, 16)
			if err != nil || B33(occ) > BlockOcc {
				return Position{}, fmt.Errorf("bad block %q for %v: %w", tok, side, ErrInvalidNotation)
			}
			pos.boards[side].fillBlock(uint8(bi), B33(occ))
		}
	}

	lastBlock, err := parseLastBlock(fields[3], '9')
	if err != nil {
		return Position{}, err
	}
	pos.lastBlock = lastBlock

	switch fields[4] {
	case "X":
		pos.toMove = X
	case "O":
		pos.toMove = O
	default:
		return Position{}, fmt.Errorf("side must be 'X' or 'O', got %q: %w", fields[4], ErrInvalidNotation)
	}

	if err := pos.rebuild(); err != nil {
		return Position{}, err
	}
	return pos, nil
}

const (
	compactLineLen = 11
	compactLines   = 11
	compactLen     = compactLines*(compactLineLen+1) + 1
)

// Compact board: 11 lines like "O..|XX.|...", block rows separated
// by "-----------", followed by the last block digit or '-'
func (p *Position) CompactBoard() string {
	builder := strings.Builder{}
	builder.Grow(compactLen)
	for row := 0; row < 9; row++ {
		if row == 3 || row == 6 {
			builder.WriteString(strings.Repeat("-", compactLineLen))
			builder.WriteByte('\n')
		}
		for col := 0; col < 9; col++ {
			if col == 3 || col == 6 {
				builder.WriteByte('|')
			}
			builder.WriteByte(p.cellChar(MoveFromRowCol(row, col), '.'))
		}
		builder.WriteByte('\n')
	}

	if p.lastBlock == AnyBlock {
		builder.WriteByte('-')
	} else {
		builder.WriteByte('0' + p.lastBlock)
	}
	return builder.String()
}

// Parse the compact board, with 'autoSide' the side to move is deduced from
// the number of pieces and 'toMove' is ignored
func ParseCompactBoard(repr string, toMove Side, autoSide bool) (Position, error) {
	Init()
	repr = strings.TrimSpace(strings.ReplaceAll(repr, "\r\n", "\n"))
	if len(repr) != compactLen {
		return Position{}, fmt.Errorf("expected %d characters, got %d: %w", compactLen, len(repr), ErrInvalidNotation)
	}

	// the last block may be separated from the board by a space or a newline
	lines := strings.Split(repr[:compactLen-2], "\n")
	if len(lines) != compactLines {
		return Position{}, fmt.Errorf("expected %d lines, got %d: %w", compactLines, len(lines), ErrInvalidNotation)
	}

	pos := Position{}
	count := [2]int{}
	row := 0
	for i, line := range lines {
		if i == 3 || i == 7 {
			continue
		}
		if len(line) != compactLineLen {
			return Position{}, fmt.Errorf("line %d has %d characters: %w", i, len(line), ErrInvalidNotation)
		}

		col := 0
		for j := 0; j < compactLineLen; j++ {
			if j == 3 || j == 7 {
				continue
			}
			m := MoveFromRowCol(row, col)
			switch line[j] {
			case 'X':
				pos.boards[X].fillBlock(m.Block(), 1<<m.Cell())
				count[X]++
			case 'O':
				pos.boards[O].fillBlock(m.Block(), 1<<m.Cell())
				count[O]++
			case '.', '-':
			default:
				return Position{}, fmt.Errorf("unexpected %q at line %d: %w", line[j], i, ErrInvalidNotation)
			}
			col++
		}
		row++
	}

	lastBlock, err := parseLastBlock(repr[compactLen-1:], '-')
	if err != nil {
		return Position{}, err
	}
	pos.lastBlock = lastBlock

	pos.toMove = toMove
	if autoSide {
		switch count[X] - count[O] {
		case 0:
			pos.toMove = X
		case 1:
			pos.toMove = O
		default:
			return Position{}, fmt.Errorf("impossible piece count x=%d o=%d: %w", count[X], count[O], ErrInvalidNotation)
		}
	}

	if err := pos.rebuild(); err != nil {
		return Position{}, err
	}
	return pos, nil
}

// Replay a comma separated list of move indices from the starting position
func FromMoveList(repr string) (Position, error) {
	pos := NewPosition()
	for i, tok := range strings.Split(repr, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		idx, err := strconv.Atoi(tok)
		if err != nil || idx < 0 || idx >= NumCells {
			return Position{}, fmt.Errorf("bad move %q at %d: %w", tok, i, ErrInvalidNotation)
		}

		m := Move(idx)
		if pos.IsOver() || !pos.legalMoves().Contains(m) {
			return Position{}, fmt.Errorf("move %v at %d in %s: %w", m, i, pos.Notation(), ErrIllegalMove)
		}
		pos.makeMove(m)
	}
	return pos, nil
}

// Comma separated move list, the inverse of FromMoveList
func MoveList(moves []Move) string {
	tokens := make([]string, len(moves))
	for i, m := range moves {
		tokens[i] = m.String()
	}
	return strings.Join(tokens, ",")
}

func (p *Position) cellChar(m Move, empty byte) byte {
	side, ok := p.CellAt(m)
	switch {
	case !ok:
		return empty
	case side == X:
		return 'X'
	}
	return 'O'
}

// Human readable board, followed by the side to move and the last block
func (p *Position) Pretty() string {
	builder := strings.Builder{}
	for row := 0; row < 9; row++ {
		if row == 3 || row == 6 {
			builder.WriteString(strings.Repeat("-", 23))
			builder.WriteByte('\n')
		}
		for col := 0; col < 9; col++ {
			if col == 3 || col == 6 {
				builder.WriteString(" |")
			}
			builder.WriteByte(' ')
			builder.WriteByte(p.cellChar(MoveFromRowCol(row, col), '-'))
		}
		builder.WriteByte('\n')
	}

	last := byte('-')
	if p.lastBlock != AnyBlock {
		last = '0' + p.lastBlock
	}
	fmt.Fprintf(&builder, "%v %c\n", p.toMove, last)
	return builder.String()
}
