package uttt

import (
	"strconv"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Side to move, X always starts the game
type Side uint8

const (
	X Side = iota
	O
)

// The opposite side
func (s Side) Other() Side {
	return s ^ 1
}

// +1 for X, -1 for O, used to convert X-relative values into side-relative ones
func (s Side) Sign() float32 {
	return float32(1 - 2*int(s))
}

func (s Side) String() string {
	if s == X {
		return "X"
	}
	return "O"
}

// 9-bit occupancy mask of a single block (sub-board), bit i is cell i in row-major order
type B33 = uint16

const (
	// All 9 cells of a block
	BlockOcc B33 = 0x1ff

	// Number of cells on the whole board
	NumCells = 81

	// Sentinel for 'last block', the next player may play in any undecided block
	AnyBlock uint8 = 9
)

// Cell index on the board 0-80, blocks in row-major order, cells within
// a block in row-major order
type Move uint8

// Returned by engines, when there is no legal move
const NullMove Move = 0xff

// Make a move from the block index and the cell index within that block
func MakeMove(block, cell uint8) Move {
	return Move(block*9 + cell)
}

// Convert a 9x9 grid coordinate into a move
func MoveFromRowCol(row, col int) Move {
	block := (row/3)*3 + col/3
	cell := (row%3)*3 + col%3
	return Move(block*9 + cell)
}

// Block index (0-8) of this move
func (m Move) Block() uint8 {
	return uint8(m) / 9
}

// Cell index (0-8) within the block
func (m Move) Cell() uint8 {
	return uint8(m) % 9
}

// Grid coordinate of this move on the 9x9 board
func (m Move) RowCol() (row, col int) {
	b, c := int(m.Block()), int(m.Cell())
	return (b/3)*3 + c/3, (b%3)*3 + c%3
}

func (m Move) Valid() bool {
	return m < NumCells
}

func (m Move) String() string {
	if m == NullMove {
		return "none"
	}
	return strconv.Itoa(int(m))
}

// Result of the game
type GameResult uint8

const (
	Ongoing GameResult = iota
	XWon
	OWon
	Draw
)

func (r GameResult) String() string {
	switch r {
	case XWon:
		return "X won"
	case OWon:
		return "O won"
	case Draw:
		return "Draw"
	}
	return "Ongoing"
}

// Convert bool to 0 or 1 without a branch
func boolToInt(b bool) int {
	return int(*(*byte)(unsafe.Pointer(&b)))
}

// -1, 0 or 1 depending on the sign of x
func Signum[T constraints.Signed | constraints.Float](x T) T {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
