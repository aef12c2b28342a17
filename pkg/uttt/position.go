package uttt

import (
	"fmt"
	"math/bits"
)

// Per-side occupancy: 81 cells and 9 captured-block bits, see MoveSet for the layout
type bitboard [2]uint64

func (b *bitboard) block(bi uint8) B33 {
	w, shift := blockWord(bi)
	return B33(b[w]>>shift) & BlockOcc
}

func (b *bitboard) fillBlock(bi uint8, occ B33) {
	w, shift := blockWord(bi)
	b[w] |= uint64(occ&BlockOcc) << shift
}

func (b *bitboard) captured() B33 {
	return B33(b[1]>>capturedShift) & BlockOcc
}

func (b *bitboard) setCaptured(bi uint8) {
	b[1] |= 1 << (capturedShift + uint(bi))
}

// Game state, a fixed size value type, copy it to branch the search
type Position struct {
	boards    [2]bitboard
	hopeless  [2]B33 // blocks each side can no longer win
	toMove    Side
	lastBlock uint8
	ply       uint8
}

// Empty board, X to move anywhere
func NewPosition() Position {
	Init()
	return Position{toMove: X, lastBlock: AnyBlock}
}

// Returns a copy of the position
func (p *Position) Clone() Position {
	return *p
}

func (p *Position) SideToMove() Side {
	return p.toMove
}

// Cell index within its block of the last move, or AnyBlock
func (p *Position) LastBlock() uint8 {
	return p.lastBlock
}

// Number of moves played so far
func (p *Position) Ply() int {
	return int(p.ply)
}

// Occupancy of the block 'bi' by the side, a captured block is reported
// as full on the capturing side's view (minus the opponent's cells)
func (p *Position) Block(side Side, bi uint8) B33 {
	return p.boards[side].block(bi)
}

// Blocks captured by the side
func (p *Position) Captured(side Side) B33 {
	return p.boards[side].captured()
}

func (p *Position) CapturedCount(side Side) int {
	return bits.OnesCount16(p.boards[side].captured())
}

// Blocks the side can no longer win
func (p *Position) HopelessBlocks(side Side) B33 {
	return p.hopeless[side]
}

// X captured blocks minus O captured blocks
func (p *Position) CapturedDiff() int {
	return p.CapturedCount(X) - p.CapturedCount(O)
}

// Which side occupies the cell, ok is false for an empty cell
func (p *Position) CellAt(m Move) (side Side, ok bool) {
	w, bit := cellWord(m), uint64(1)<<cellShift(m)
	switch {
	case p.boards[X][w]&bit != 0:
		return X, true
	case p.boards[O][w]&bit != 0:
		return O, true
	}
	return X, false
}

func (p *Position) occupied() MoveSet {
	return MoveSet{
		(p.boards[X][0] | p.boards[O][0]) & boardMaskLo,
		(p.boards[X][1] | p.boards[O][1]) & boardMaskHi,
	}
}

// All empty cells of the board
func (p *Position) EmptyCells() MoveSet {
	total := p.occupied()
	return MoveSet{^total[0] & boardMaskLo, ^total[1] & boardMaskHi}
}

// Empty cells playable by the side to move. Panics if the game is over
func (p *Position) LegalMoves() MoveSet {
	if p.IsOver() {
		panic(fmt.Sprintf("uttt: legal moves requested on a finished game %s", p.Notation()))
	}
	return p.legalMoves()
}

func (p *Position) legalMoves() MoveSet {
	total := p.occupied()
	w, shift := blockWord(p.lastBlock)
	target := B33(total[w]>>shift) & BlockOcc
	full := p.lastBlock == AnyBlock || target == BlockOcc

	// all ones when the move is unconstrained
	broadcast := -uint64(boolToInt(full))
	var mask MoveSet
	mask[0], mask[1] = broadcast, broadcast
	mask[w] |= uint64(BlockOcc) << shift

	return MoveSet{
		mask[0] &^ total[0] & boardMaskLo,
		mask[1] &^ total[1] & boardMaskHi,
	}
}

// Play the move for the side to move, panics if the move is not legal
func (p *Position) MakeMove(m Move) {
	if !m.Valid() || !p.LegalMoves().Contains(m) {
		panic(fmt.Sprintf("uttt: illegal move %v in %s", m, p.Notation()))
	}
	p.makeMove(m)
}

func (p *Position) makeMove(m Move) {
	side := p.toMove
	mine, theirs := &p.boards[side], &p.boards[side.Other()]
	mine[cellWord(m)] |= 1 << cellShift(m)

	bi := m.Block()
	occ := mine.block(bi)
	if BlockWon(occ) {
		mine.setCaptured(bi)
		mine.fillBlock(bi, BlockOcc&^theirs.block(bi))
		occ = mine.block(bi)
	}

	p.hopeless[side.Other()] |= B33(boolToInt(BlockHopeless(occ))) << bi
	p.toMove = side.Other()
	p.lastBlock = m.Cell()
	p.ply++
}

// Whether the side has won the meta board
func (p *Position) IsWon(side Side) bool {
	return BlockWon(p.boards[side].captured())
}

// All 81 cells are occupied
func (p *Position) IsDrawn() bool {
	total := p.occupied()
	return total[0] == boardMaskLo && total[1] == boardMaskHi
}

func (p *Position) IsOver() bool {
	return p.IsWon(X) || p.IsWon(O) || p.IsDrawn()
}

// Neither side can complete a line on the meta board anymore
func (p *Position) IsHopeless() bool {
	return BlockHopeless(p.hopeless[X]) && BlockHopeless(p.hopeless[O])
}

func (p *Position) Result() GameResult {
	switch {
	case p.IsWon(X):
		return XWon
	case p.IsWon(O):
		return OWon
	case p.IsDrawn():
		return Draw
	}
	return Ongoing
}

// Like Result, but with 'tieBreak' a full board is won by the side
// with more captured blocks
func (p *Position) Outcome(tieBreak bool) GameResult {
	result := p.Result()
	if result != Draw || !tieBreak {
		return result
	}

	switch Signum(p.CapturedDiff()) {
	case 1:
		return XWon
	case -1:
		return OWon
	}
	return Draw
}

// Empty cells that would immediately capture a block for the side
func (p *Position) Forcing(side Side) MoveSet {
	var set MoveSet
	mine, theirs := &p.boards[side], &p.boards[side.Other()]
	for bi := uint8(0); bi < 9; bi++ {
		own, opp := mine.block(bi), theirs.block(bi)
		if Classify(own, opp).MinNeeded() != 1 {
			continue
		}

		var cells B33
		for empty := BlockOcc &^ (own | opp); empty != 0; empty &= empty - 1 {
			cell := B33(1) << bits.TrailingZeros16(empty)
			if BlockWon(own | cell) {
				cells |= cell
			}
		}
		set.addBlock(bi, cells)
	}
	return set
}

// Recompute the captured bits, fills and hopeless masks from raw cells,
// used by the parsers
func (p *Position) rebuild() error {
	var raw [2][9]B33
	for side := range raw {
		for bi := uint8(0); bi < 9; bi++ {
			raw[side][bi] = p.boards[side].block(bi)
		}
	}

	p.hopeless = [2]B33{}
	p.ply = 0
	for bi := uint8(0); bi < 9; bi++ {
		x, o := raw[X][bi], raw[O][bi]
		if x&o != 0 {
			return fmt.Errorf("block %d has cells occupied by both sides: %w", bi, ErrInvalidPosition)
		}
		p.ply += uint8(bits.OnesCount16(x | o))

		xWon, oWon := BlockWon(x), BlockWon(o)
		if xWon && oWon {
			return fmt.Errorf("block %d won by both sides: %w", bi, ErrInvalidPosition)
		}
		if xWon {
			p.boards[X].setCaptured(bi)
			p.boards[X].fillBlock(bi, BlockOcc&^o)
		}
		if oWon {
			p.boards[O].setCaptured(bi)
			p.boards[O].fillBlock(bi, BlockOcc&^x)
		}

		for side := X; side <= O; side++ {
			p.hopeless[side.Other()] |= B33(boolToInt(BlockHopeless(p.boards[side].block(bi)))) << bi
		}
	}

	if p.IsWon(X) && p.IsWon(O) {
		return fmt.Errorf("both sides won the game: %w", ErrInvalidPosition)
	}
	return nil
}

// Check the position's invariants, returns nil if the position is consistent
func (p *Position) Validate() error {
	for bi := uint8(0); bi < 9; bi++ {
		x, o := p.boards[X].block(bi), p.boards[O].block(bi)
		if x&o != 0 {
			return fmt.Errorf("block %d overlaps: %w", bi, ErrInvalidPosition)
		}

		for side := X; side <= O; side++ {
			captured := p.boards[side].captured()&(1<<bi) != 0
			if captured != BlockWon(p.boards[side].block(bi)) {
				return fmt.Errorf("block %d captured flag mismatch for %v: %w", bi, side, ErrInvalidPosition)
			}

			hopeless := p.hopeless[side.Other()]&(1<<bi) != 0
			if hopeless != BlockHopeless(p.boards[side].block(bi)) {
				return fmt.Errorf("block %d hopeless flag mismatch for %v: %w", bi, side.Other(), ErrInvalidPosition)
			}
		}
	}

	if p.lastBlock > AnyBlock || p.toMove > O {
		return fmt.Errorf("bad side or last block: %w", ErrInvalidPosition)
	}
	return nil
}

func (p Position) String() string {
	return p.Notation()
}
