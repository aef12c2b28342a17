package uttt

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidNotation = errors.New("invalid notation")
	ErrIllegalMove     = errors.New("illegal move")
)

// Count leaf positions after exactly 'depth' + 1 plies. A finished game counts
// as zero leaves, depth 0 returns the number of legal moves
func Perft(pos Position, depth int) uint64 {
	if pos.IsWon(pos.toMove.Other()) || pos.IsDrawn() {
		return 0
	}

	moves := pos.legalMoves()
	if depth <= 0 {
		return uint64(moves.Len())
	}

	nodes := uint64(0)
	for m := moves.Pop(); m != NullMove; m = moves.Pop() {
		child := pos
		child.makeMove(m)
		nodes += Perft(child, depth-1)
	}
	return nodes
}

// Perft count of every root move
type DivideEntry struct {
	Move  Move
	Nodes uint64
}

// Perft split by root moves, in increasing move order
func Divide(pos Position, depth int) []DivideEntry {
	if pos.IsOver() {
		return nil
	}

	moves := pos.legalMoves()
	entries := make([]DivideEntry, 0, moves.Len())
	for m := moves.Pop(); m != NullMove; m = moves.Pop() {
		child := pos
		child.makeMove(m)
		entries = append(entries, DivideEntry{Move: m, Nodes: Perft(child, depth-1)})
	}
	return entries
}

// Same as Perft, but the root moves are counted in parallel by at most 'threads'
// goroutines. Returns ctx.Err() if the context was cancelled before all
// subtrees were counted
func PerftParallel(ctx context.Context, pos Position, depth, threads int) (uint64, error) {
	if pos.IsWon(pos.toMove.Other()) || pos.IsDrawn() {
		return 0, nil
	}
	if depth <= 0 {
		return uint64(pos.legalMoves().Len()), nil
	}

	var nodes atomic.Uint64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, threads))

	moves := pos.legalMoves()
	for m := moves.Pop(); m != NullMove; m = moves.Pop() {
		child := pos
		child.makeMove(m)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			nodes.Add(Perft(child, depth-1))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return nodes.Load(), nil
}
