package game

import (
	"github.com/nelhage/fourline/four"
)

// Move is one applied transition: the disc placed plus its 1-based
// position in the game.
type Move struct {
	four.Move
	Number int
}

// Recorder receives every committed transition together with the
// snapshot taken after it. Implementations must not block for long;
// they run inside the session's critical section so that moves arrive
// in order.
type Recorder interface {
	RecordMove(snap Snapshot, mv Move)
}

// MultiRecorder fans a transition out to several sinks.
type MultiRecorder []Recorder

func (m MultiRecorder) RecordMove(snap Snapshot, mv Move) {
	for _, r := range m {
		r.RecordMove(snap, mv)
	}
}
