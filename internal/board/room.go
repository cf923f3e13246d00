package board

import (
	"sync"

	"github.com/vovakirdan/wireboard/internal/auth"
)

// roomState holds one room's log and password. All access goes through mu,
// which is independent of every other room.
type roomState struct {
	mu       sync.Mutex
	segments []Segment

	// set once at creation
	protected bool
	password  auth.PasswordDigest

	maxSegments int
	evictBatch  int
}

func newRoomState(password string, maxSegments, evictBatch int) *roomState {
	r := &roomState{
		maxSegments: maxSegments,
		evictBatch:  evictBatch,
	}
	if password != "" {
		r.protected = true
		r.password = auth.HashPassword(password)
	}
	return r
}

// admits reports whether password opens the room. The password never changes
// after creation, so no lock is needed.
func (r *roomState) admits(password string) bool {
	if !r.protected {
		return true
	}
	return auth.ComparePassword(r.password, password)
}

func (r *roomState) add(seg Segment) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.segments = append(r.segments, seg)
	if len(r.segments) > r.maxSegments {
		r.evictLocked()
	}
}

// evictLocked drops the oldest evictBatch segments in one step. The tail is
// compacted into the existing backing array so the dropped prefix is released.
func (r *roomState) evictLocked() {
	n := r.evictBatch
	if n > len(r.segments) {
		n = len(r.segments)
	}
	kept := copy(r.segments, r.segments[n:])
	clear(r.segments[kept:])
	r.segments = r.segments[:kept]
}

func (r *roomState) snapshot() []Segment {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Segment, len(r.segments))
	copy(out, r.segments)
	return out
}

func (r *roomState) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.segments = nil
}

func (r *roomState) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.segments)
}
