package mcts

import (
	"context"
	"math"
	"sync/atomic"
	"unsafe"
)

type StopReason int

const (
	StopNone      StopReason = iota
	StopInterrupt            = 1  // Stopped by user, by calling .SetStop(true) or context cancellation
	StopMovetime             = 2  // Time limit reached
	StopMemory               = 4  // Memory limit reached
	StopDepth                = 8  // Depth limit reached
	StopCycles               = 16 // Cycle limit reached
	StopTerminal             = 32 // Root position is already finished
)

func (sr StopReason) String() string {
	if sr == StopNone {
		return "None"
	}

	reasons := []struct {
		flag StopReason
		name string
	}{
		{StopInterrupt, "Interrupt"},
		{StopMovetime, "Movetime"},
		{StopMemory, "Memory"},
		{StopDepth, "Depth"},
		{StopCycles, "Cycles"},
		{StopTerminal, "Terminal"},
	}

	var result string
	for _, r := range reasons {
		if sr&r.flag == r.flag {
			if result != "" {
				result += "|"
			}
			result += r.name
		}
	}

	return result
}

type LimiterLike interface {
	SetContext(ctx context.Context)
	SetLimits(*Limits)
	Limits() *Limits
	// Elapsed time in ms since the last 'Reset' call
	Elapsed() uint32
	// Set the stop signal, the search exits once it's set
	SetStop(bool)
	Stop() bool
	// Reset the clock and the limit masks, called on search setup.
	// The stop flag is kept, the search clears it once it ends
	Reset()
	// Whether the tree can grow
	Expand() bool
	// Whether the search may continue, called once per simulation
	Ok(size, depth, cycles uint32) bool
	// Reason why the search was stopped, valid after search ends
	StopReason() StopReason
	// Evaluate the stop reason based on the current state, called once by the main thread
	EvaluateStopReason(size, depth, cycles uint32)
	// Mark the search as finished without running, e.g. on a terminal root
	SetStopReason(StopReason)
}

type Limiter struct {
	limits     *Limits
	Timer      *_Timer
	nodeSize   uint32
	maxSize    uint32
	expand     atomic.Bool
	stop       atomic.Bool
	areSetMask int
	reason     StopReason
	ctx        context.Context
}

func NewLimiter(nodesize uint32) *Limiter {
	limiter := &Limiter{
		limits:   DefaultLimits(),
		Timer:    _NewTimer(),
		nodeSize: max(1, nodesize),
		maxSize:  math.MaxUint32,
		ctx:      context.Background(),
	}

	limiter.expand.Store(true)
	return limiter
}

func (l *Limiter) Reset() {
	l.Timer.Movetime(l.limits.Movetime)
	l.Timer.Reset()
	l.expand.Store(true)
	l.reason = StopNone

	// Maximum number of nodes based on memory
	if !l.limits.InfiniteSize() {
		l.maxSize = uint32(min(l.limits.ByteSize/int64(l.nodeSize), math.MaxUint32))
	} else {
		l.maxSize = math.MaxUint32
	}

	l.areSetMask = toMask(l.Timer.IsSet(), 1) |
		toMask(!l.limits.InfiniteSize(), 2) |
		toMask(l.limits.Depth != DefaultDepthLimit, 3) |
		toMask(l.limits.Cycles != DefaultCyclesLimit, 4)
}

func (l *Limiter) EvaluateStopReason(size, depth, cycles uint32) {
	okMask := l.limitMask(size, depth, cycles, true)
	reason := StopNone

	for _, flag := range []StopReason{StopInterrupt, StopMovetime, StopMemory, StopDepth, StopCycles} {
		if okMask&int(flag) != 0 {
			reason |= flag
		}
	}

	l.reason = reason
}

func (l *Limiter) StopReason() StopReason {
	return l.reason
}

func (l *Limiter) SetStopReason(reason StopReason) {
	l.reason = reason
}

func (l *Limiter) SetContext(ctx context.Context) {
	l.ctx = ctx
}

func (l *Limiter) SetStop(v bool) {
	l.stop.Store(v)
}

func (l *Limiter) Stop() bool {
	select {
	case <-l.ctx.Done():
		l.stop.Store(true)
	default:
	}
	return l.stop.Load()
}

func (l *Limiter) SetLimits(limits *Limits) {
	l.limits = limits
}

func (l *Limiter) Limits() *Limits {
	return l.limits
}

func (l *Limiter) Elapsed() uint32 {
	return uint32(l.Timer.Deltatime())
}

func (l *Limiter) Expand() bool {
	return l.expand.Load()
}

func toMask(val bool, offset int) int {
	return int(*(*byte)(unsafe.Pointer(&val))) << offset
}

// Bit mask of the reached limits, the clock is read only every TimeCheckInterval cycles
// unless 'readClock' is set
func (l *Limiter) limitMask(size, depth, cycles uint32, readClock bool) int {
	stop := l.Stop()
	if l.limits.Infinite {
		return toMask(stop, 0)
	}

	checkTime := readClock || cycles%TimeCheckInterval == 0
	limitMask := toMask(stop, 0)
	limitMask |= toMask(checkTime && l.Timer.IsEnd(), 1)
	limitMask |= toMask(l.maxSize <= size, 2)
	limitMask |= toMask(l.limits.Depth <= int(depth), 3)
	limitMask |= toMask(l.limits.Cycles <= cycles, 4)
	return limitMask
}

func (l *Limiter) OkMask(size, depth, cycles uint32) int {
	limitMask := l.limitMask(size, depth, cycles, false)

	// time or cycles AND memory: once the memory is exhausted stop growing the tree
	// and keep simulating until the other limit is reached
	if l.areSetMask&StopMemory != 0 && l.areSetMask&(StopMovetime|StopCycles) != 0 {
		if limitMask&StopMemory != 0 {
			l.expand.Store(false)
			limitMask &^= StopMemory
		}
	}

	return limitMask
}

func (l *Limiter) Ok(size, depth, cycles uint32) bool {
	return l.OkMask(size, depth, cycles) == 0
}
