package core

import "github.com/vovakirdan/wireboard/internal/board"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventJoined acknowledges a successful join to the caller.
	EventJoined EventKind = iota
	// EventJoinFailed tells the caller it was not admitted.
	EventJoinFailed
	// EventFullState delivers the room log to a client that just joined.
	EventFullState
	// EventDraw relays a segment to the other members of a room.
	EventDraw
	// EventClear tells every member that the room was cleared.
	EventClear
	// EventLeft confirms that the client left its room.
	EventLeft
	// EventError notifies the caller about a rejected command.
	EventError
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	ClientID string
	User     string
	Created  bool
	Ticket   string
	Reason   string
	Segment  board.Segment
	Segments []board.Segment // for EventFullState
	Error    *CoreError
}
