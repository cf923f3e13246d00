package board

import (
	"strings"
	"sync"
)

const (
	// DefaultMaxSegments caps a room log.
	DefaultMaxSegments = 200_000
	// DefaultEvictBatch is how many of the oldest segments go when the cap is exceeded.
	DefaultEvictBatch = 50_000
)

// RoomInfo is a read-only summary of a room.
type RoomInfo struct {
	ID        string
	Protected bool
	Segments  int
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity overrides the per-room cap and eviction batch. Invalid values
// are ignored.
func WithCapacity(maxSegments, evictBatch int) Option {
	return func(s *Store) {
		if maxSegments <= 0 || evictBatch <= 0 || evictBatch > maxSegments {
			return
		}
		s.maxSegments = maxSegments
		s.evictBatch = evictBatch
	}
}

// Store owns every room. The map lock is held only for lookup and insertion;
// room logs are guarded by their own locks, so rooms never block each other.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*roomState

	maxSegments int
	evictBatch  int
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		rooms:       make(map[string]*roomState),
		maxSegments: DefaultMaxSegments,
		evictBatch:  DefaultEvictBatch,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeRoomID maps a room id to its store key. Ids are case-insensitive
// and a blank id names the default room.
func NormalizeRoomID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultRoomID
	}
	return strings.ToLower(id)
}

// TryEnterRoom admits a caller into a room, creating it with password when it
// does not exist yet. An empty password means the room is open. A failed
// attempt leaves the room untouched.
func (s *Store) TryEnterRoom(roomID, password string) (allowed, created bool) {
	room, created := s.getOrCreate(NormalizeRoomID(roomID), password)
	if created {
		return true, true
	}
	return room.admits(password), false
}

// Add appends seg to the room log, creating the room if needed.
func (s *Store) Add(roomID string, seg Segment) {
	room, _ := s.getOrCreate(NormalizeRoomID(roomID), "")
	room.add(seg)
}

// GetAll returns a copy of the room log in insertion order. Unknown rooms
// yield an empty slice and are not created.
func (s *Store) GetAll(roomID string) []Segment {
	room, ok := s.lookup(NormalizeRoomID(roomID))
	if !ok {
		return []Segment{}
	}
	return room.snapshot()
}

// Clear empties the room log. Unknown rooms are ignored.
func (s *Store) Clear(roomID string) {
	room, ok := s.lookup(NormalizeRoomID(roomID))
	if !ok {
		return
	}
	room.reset()
}

// Stat describes a room without creating it.
func (s *Store) Stat(roomID string) (RoomInfo, bool) {
	id := NormalizeRoomID(roomID)
	room, ok := s.lookup(id)
	if !ok {
		return RoomInfo{}, false
	}
	return RoomInfo{
		ID:        id,
		Protected: room.protected,
		Segments:  room.size(),
	}, true
}

// Len returns the number of rooms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

func (s *Store) lookup(id string) (*roomState, bool) {
	s.mu.RLock()
	room, ok := s.rooms[id]
	s.mu.RUnlock()
	return room, ok
}

// getOrCreate returns the room for id. Exactly one concurrent caller creates
// a missing room; the others observe it.
func (s *Store) getOrCreate(id, password string) (*roomState, bool) {
	if room, ok := s.lookup(id); ok {
		return room, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if room, ok := s.rooms[id]; ok {
		return room, false
	}
	room := newRoomState(password, s.maxSegments, s.evictBatch)
	s.rooms[id] = room
	return room, true
}
