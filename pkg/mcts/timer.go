package mcts

import (
	"time"
)

// Subtracted from the movetime, so the search returns before the deadline
const MovetimeSafetyMargin = 20 * time.Millisecond

type _Timer struct {
	start    time.Time
	duration time.Duration
}

func _NewTimer() *_Timer {
	return &_Timer{time.Now(), -1}
}

// Check if this timer has ended
func (t *_Timer) IsEnd() bool {
	return t.duration >= 0 && time.Since(t.start) >= t.duration
}

func (t *_Timer) IsSet() bool {
	return t.duration != -1
}

// Set the 'start' as now
func (t *_Timer) Reset() {
	t.start = time.Now()
}

func (t *_Timer) Start() time.Time {
	return t.start
}

// Elapsed milliseconds since the last reset, at least 1
func (t *_Timer) Deltatime() int {
	return max(int(time.Since(t.start).Milliseconds()), 1)
}

// Set the budget in milliseconds, negative disables the timer. Short budgets
// keep at least half of their time when the safety margin is taken off
func (t *_Timer) Movetime(movetime int) {
	if movetime < 0 {
		t.duration = -1
		return
	}

	budget := time.Duration(movetime) * time.Millisecond
	t.duration = max(budget-MovetimeSafetyMargin, budget/2)
}
