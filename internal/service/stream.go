package service

import "github.com/prepwise/prepwise-api/internal/dto"

// streamState tracks the lifecycle of one SSE token relay.
type streamState int

const (
	streamIdle streamState = iota
	streamActive
	streamCompleted
	streamFailed
)

// streamRelay is the per-request state machine for the token relay. It
// decides which frames are still legal to emit (no content after the
// terminal sentinel, at most one terminal frame) and tolerates a dead
// sink: once a write fails the relay stops emitting, while the caller
// keeps draining the upstream so the transcript is still persisted.
type streamRelay struct {
	state    streamState
	emit     func(dto.StreamEvent) error
	sinkDead bool
}

func newStreamRelay(emit func(dto.StreamEvent) error) *streamRelay {
	return &streamRelay{state: streamIdle, emit: emit}
}

// Token forwards one incremental content frame.
func (r *streamRelay) Token(token string) {
	if r.state == streamIdle {
		r.state = streamActive
	}
	if r.state != streamActive {
		return
	}
	r.send(dto.StreamEvent{Content: token})
}

// Complete emits the terminal done sentinel.
func (r *streamRelay) Complete() {
	if r.state == streamCompleted || r.state == streamFailed {
		return
	}
	r.state = streamCompleted
	r.send(dto.StreamEvent{Done: true})
}

// Fail emits an in-band error frame and closes the relay.
func (r *streamRelay) Fail(message string) {
	if r.state == streamCompleted || r.state == streamFailed {
		return
	}
	r.state = streamFailed
	r.send(dto.StreamEvent{Error: message})
}

func (r *streamRelay) send(event dto.StreamEvent) {
	if r.sinkDead {
		return
	}
	if err := r.emit(event); err != nil {
		// Client went away. Stop writing; the caller finishes the turn.
		r.sinkDead = true
	}
}
