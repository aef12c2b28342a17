package uttt

import (
	"math/bits"
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	Init()
	os.Exit(m.Run())
}

func TestBlockWon(t *testing.T) {
	if !BlockWon(BlockOcc) {
		t.Error("full block should be won")
	}

	for _, line := range WinningLines {
		if state := Classify(line, 0); state.MinNeeded() != 0 {
			t.Errorf("line %09b: min=%d, want 0", line, state.MinNeeded())
		}
	}

	if BlockWon(0) || BlockWon(0b000010011) {
		t.Error("block without a line should not be won")
	}
}

func TestEmptyBlockState(t *testing.T) {
	state := Classify(0, 0)
	if min := state.MinNeeded(); min <= 0 || min >= 4 {
		t.Errorf("empty block: min=%d, want between 1 and 3", min)
	}
	if state.MinNeeded() != 3 || state.Routes() != 8 {
		t.Errorf("empty block: got %v, want min=3 routes=8", state)
	}
}

func TestClassifyCases(t *testing.T) {
	tests := []struct {
		name      string
		own       B33
		their     B33
		minNeeded uint8
		routes    uint8
	}{
		{"center", 0b000010000, 0, 2, 4},
		{"two in a row", 0b000000011, 0, 1, 1},
		{"fork", 0b000010001 | 0b000000100, 0, 1, 3},
		{"blocked corner", 0b000000001, 0b000010110, 2, 1},
		{"hopeless", 0, 0b101010101, 4, 0},
		{"opponent owns center", 0, 0b000010000, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := Classify(tt.own, tt.their)
			if state.MinNeeded() != tt.minNeeded || state.Routes() != tt.routes {
				t.Errorf("got %v, want min=%d routes=%d", state, tt.minNeeded, tt.routes)
			}
		})
	}
}

// every table entry against a direct recount
func TestClassifierExhaustive(t *testing.T) {
	for own := B33(0); own <= BlockOcc; own++ {
		for their := B33(0); their <= BlockOcc; their++ {
			if own&their != 0 {
				continue
			}

			minNeeded, routes := uint8(4), uint8(0)
			for _, line := range WinningLines {
				if line&their != 0 {
					continue
				}
				need := uint8(3 - bits.OnesCount16(line&own))
				if need < minNeeded {
					minNeeded, routes = need, 0
				}
				if need == minNeeded {
					routes++
				}
			}

			state := ClassifyIndex(int(own) | int(their)<<9)
			if state.MinNeeded() != minNeeded || state.Routes() != routes {
				t.Fatalf("own=%09b their=%09b: got %v, want min=%d routes=%d",
					own, their, state, minNeeded, routes)
			}
		}
	}
}

func TestBlockHopeless(t *testing.T) {
	if BlockHopeless(0) {
		t.Error("empty occupancy can't make a block hopeless")
	}
	if !BlockHopeless(BlockOcc) {
		t.Error("full occupancy should make a block hopeless")
	}
	// center and the four corners touch every line
	if !BlockHopeless(0b101010101) {
		t.Error("corners and center should make a block hopeless")
	}
}

func TestClassifyOverlapPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Classify with overlapping masks should panic")
		}
	}()
	Classify(0b11, 0b10)
}
