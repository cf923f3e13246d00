package core

import "github.com/vovakirdan/wireboard/internal/board"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom admits the client into a room and replays its log.
	CommandJoinRoom CommandKind = iota
	// CommandDraw appends a segment and relays it to the rest of the room.
	CommandDraw
	// CommandClear empties a room log.
	CommandClear
	// CommandLeaveRoom removes the client from its room's broadcast group.
	CommandLeaveRoom
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Room string

	// join
	UserName string
	Password string
	Create   bool
	Ticket   string

	// draw; nil means the payload was missing
	Segment *board.Segment
}
