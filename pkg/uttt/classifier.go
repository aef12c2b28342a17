package uttt

import (
	"fmt"
	"math/bits"
	"sync"
)

// Number of (own, their) occupancy pairs of a single block
const NumBlockPairs = 1 << 18

// Rows, columns and diagonals of a 3x3 block
var WinningLines = [8]B33{
	0b000000111, 0b000111000, 0b111000000,
	0b001001001, 0b010010010, 0b100100100,
	0b001010100, 0b100010001,
}

// Classification of a block from one side's perspective, packed as
// min_needed | n_routes << 3
type BlockState uint8

const (
	minNeededMask = 0b111

	// No winning line is left for this side
	Unwinnable uint8 = 4
)

func newBlockState(minNeeded, routes uint8) BlockState {
	return BlockState(minNeeded | routes<<3)
}

// Minimum number of additional cells needed to win the block (0-4)
func (s BlockState) MinNeeded() uint8 {
	return uint8(s) & minNeededMask
}

// Number of winning lines achieving MinNeeded
func (s BlockState) Routes() uint8 {
	return uint8(s) >> 3
}

func (s BlockState) Won() bool {
	return s.MinNeeded() == 0
}

func (s BlockState) Hopeless() bool {
	return s.MinNeeded() == Unwinnable
}

func (s BlockState) String() string {
	return fmt.Sprintf("BlockState{min=%d, routes=%d}", s.MinNeeded(), s.Routes())
}

var (
	// nil until Init, so an early lookup panics instead of returning garbage
	blockStates *[NumBlockPairs]BlockState
	initOnce    sync.Once
)

// Build the block classification table, must be called before any lookup.
// Safe to call many times, only the first call does the work
func Init() {
	initOnce.Do(func() {
		table := new([NumBlockPairs]BlockState)
		for i := range NumBlockPairs {
			table[i] = computeBlockState(B33(i)&BlockOcc, B33(i>>9))
		}
		blockStates = table
	})
}

func computeBlockState(own, their B33) BlockState {
	minNeeded := Unwinnable
	routes := uint8(0)
	for _, line := range WinningLines {
		// dead line
		if line&their != 0 {
			continue
		}

		remaining := uint8(3 - bits.OnesCount16(line&own))
		if remaining < minNeeded {
			minNeeded = remaining
			routes = 1
		} else if remaining == minNeeded {
			routes++
		}
	}

	if minNeeded == Unwinnable {
		routes = 0
	}
	return newBlockState(minNeeded, routes)
}

// Classify the block from the perspective of the 'own' side, panics if the masks overlap
func Classify(own, their B33) BlockState {
	if own&their != 0 {
		panic(fmt.Sprintf("uttt: overlapping block occupancy own=%09b their=%09b", own, their))
	}
	return blockStates[int(own)|int(their)<<9]
}

// Lookup by the raw table index (own | their << 9)
func ClassifyIndex(index int) BlockState {
	return blockStates[index]
}

// Whether the occupancy contains a winning line
func BlockWon(occ B33) bool {
	return blockStates[occ&BlockOcc].Won()
}

// Whether every winning line contains a cell from 'occ', in other words
// the other side can't win the block anymore
func BlockHopeless(occ B33) bool {
	return blockStates[int(occ&BlockOcc)<<9].Hopeless()
}
