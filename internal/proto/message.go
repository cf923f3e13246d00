package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin  = "join"
	InboundTypeDraw  = "draw"
	InboundTypeClear = "clear"
	InboundTypeLeave = "leave"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventJoined       = "joined"
	EventJoinFailed   = "join-failed"
	EventFullState    = "full-state"
	EventReceiveDraw  = "receive-draw"
	EventReceiveClear = "receive-clear"
	EventLeft         = "left"
)

// JoinData asks to enter a room. A blank RoomID with Create set asks the
// server to pick a fresh room code.
type JoinData struct {
	RoomID   string `json:"roomId,omitempty"`
	UserName string `json:"userName"`
	Password string `json:"password,omitempty"`
	Create   bool   `json:"create,omitempty"`
	Ticket   string `json:"ticket,omitempty"`
}

// ClearData asks to clear a room.
type ClearData struct {
	RoomID string `json:"roomId,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventJoinedData acknowledges a join.
type EventJoinedData struct {
	ConnectionID string `json:"connectionId"`
	UserName     string `json:"userName"`
	RoomID       string `json:"roomId"`
	Created      bool   `json:"created"`
	Ticket       string `json:"ticket,omitempty"`
}

// EventJoinFailedData tells the caller why it was not admitted.
type EventJoinFailedData struct {
	RoomID string `json:"roomId,omitempty"`
	Reason string `json:"reason"`
}

// EventFullStateData replays a room log to a client that just joined.
type EventFullStateData struct {
	RoomID   string        `json:"roomId"`
	Segments []SegmentData `json:"segments"`
}

// EventRoomData carries only a room id (receive-clear, left).
type EventRoomData struct {
	RoomID string `json:"roomId"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
