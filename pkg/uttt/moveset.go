package uttt

import (
	"math/bits"
	"strings"
)

// Both MoveSet and the per-side bitboards share one layout. Go has no 128-bit
// integer, so 90 bits are split into two words: word 0 holds blocks 0-6
// (63 cell bits), word 1 holds blocks 7-8 in bits 0-17 and the captured
// blocks in bits 18-26. A block never straddles the two words.
const (
	cellsPerWord  = 63
	capturedShift = 18

	boardMaskLo uint64 = 1<<cellsPerWord - 1
	boardMaskHi uint64 = 1<<capturedShift - 1
)

func cellWord(m Move) int {
	return int(m) / cellsPerWord
}

func cellShift(m Move) uint {
	return uint(m) % cellsPerWord
}

// word index and bit offset of the block 'bi', valid for bi in 0..9
// (bi = 9 points at the captured bits, which are masked out by callers)
func blockWord(bi uint8) (int, uint) {
	return int(bi / 7), uint(bi%7) * 9
}

// Set of board cells, bit mask over the 81 cells
type MoveSet [2]uint64

// Number of moves in the set
func (s MoveSet) Len() int {
	return bits.OnesCount64(s[0]) + bits.OnesCount64(s[1])
}

func (s MoveSet) Empty() bool {
	return s[0]|s[1] == 0
}

func (s MoveSet) Contains(m Move) bool {
	return m < NumCells && s[cellWord(m)]&(1<<cellShift(m)) != 0
}

func (s *MoveSet) Add(m Move) {
	s[cellWord(m)] |= 1 << cellShift(m)
}

func (s *MoveSet) Remove(m Move) {
	s[cellWord(m)] &^= 1 << cellShift(m)
}

func (s MoveSet) Intersect(other MoveSet) MoveSet {
	return MoveSet{s[0] & other[0], s[1] & other[1]}
}

func (s MoveSet) Subtract(other MoveSet) MoveSet {
	return MoveSet{s[0] &^ other[0], s[1] &^ other[1]}
}

func (s MoveSet) Union(other MoveSet) MoveSet {
	return MoveSet{s[0] | other[0], s[1] | other[1]}
}

// Lowest move in the set, NullMove if empty
func (s MoveSet) Any() Move {
	if s[0] != 0 {
		return Move(bits.TrailingZeros64(s[0]))
	}
	if s[1] != 0 {
		return Move(cellsPerWord + bits.TrailingZeros64(s[1]))
	}
	return NullMove
}

// k-th (0 based) lowest move in the set, NullMove if k >= Len()
func (s MoveSet) Nth(k int) Move {
	lo := bits.OnesCount64(s[0])
	if k < lo {
		return Move(selectBit(s[0], k))
	}
	k -= lo
	if k < bits.OnesCount64(s[1]) {
		return Move(cellsPerWord + selectBit(s[1], k))
	}
	return NullMove
}

func selectBit(w uint64, k int) int {
	for range k {
		w &= w - 1
	}
	return bits.TrailingZeros64(w)
}

// Remove and return the lowest move, NullMove if the set is empty.
// Iterating with Pop consumes the set:
//
//	for m := moves.Pop(); m != NullMove; m = moves.Pop() { ... }
func (s *MoveSet) Pop() Move {
	m := s.Any()
	if m != NullMove {
		s.Remove(m)
	}
	return m
}

// All moves in increasing order
func (s MoveSet) Slice() []Move {
	moves := make([]Move, 0, s.Len())
	for m := s.Pop(); m != NullMove; m = s.Pop() {
		moves = append(moves, m)
	}
	return moves
}

// Set the cells of block 'bi' from its 9-bit occupancy
func (s *MoveSet) addBlock(bi uint8, occ B33) {
	w, shift := blockWord(bi)
	s[w] |= uint64(occ&BlockOcc) << shift
}

func (s MoveSet) String() string {
	builder := strings.Builder{}
	builder.WriteByte('[')
	for i, m := range s.Slice() {
		if i > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(m.String())
	}
	builder.WriteByte(']')
	return builder.String()
}

// Create a set from the given moves
func NewMoveSet(moves ...Move) MoveSet {
	var s MoveSet
	for _, m := range moves {
		s.Add(m)
	}
	return s
}
