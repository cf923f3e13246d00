package board

// DefaultRoomID is used whenever a caller names no room.
const DefaultRoomID = "__default"

// Segment is one drawn line segment. Segments are values and are never
// modified after they are appended to a room log.
type Segment struct {
	FromX    float64
	FromY    float64
	ToX      float64
	ToY      float64
	Color    string
	Size     float64
	IsStart  bool
	UserName string
	RoomID   string
}
