package proto

import "github.com/vovakirdan/wireboard/internal/board"

const (
	// DefaultColor is used when a segment carries no color.
	DefaultColor = "#000000"
	// DefaultSize is used when a segment carries no positive stroke width.
	DefaultSize = 2.0
)

// SegmentData is a line segment on the wire. Optional fields are pointers so
// that absent values can be told apart from zero values.
type SegmentData struct {
	FromX    float64  `json:"fromX"`
	FromY    float64  `json:"fromY"`
	ToX      float64  `json:"toX"`
	ToY      float64  `json:"toY"`
	Color    *string  `json:"color,omitempty"`
	Size     *float64 `json:"size,omitempty"`
	IsStart  bool     `json:"isStart,omitempty"`
	UserName *string  `json:"userName,omitempty"`
	RoomID   *string  `json:"roomId,omitempty"`
}

// Segment applies defaults and returns the core segment.
func (d SegmentData) Segment() board.Segment {
	seg := board.Segment{
		FromX:   d.FromX,
		FromY:   d.FromY,
		ToX:     d.ToX,
		ToY:     d.ToY,
		Color:   DefaultColor,
		Size:    DefaultSize,
		IsStart: d.IsStart,
	}
	if d.Color != nil && *d.Color != "" {
		seg.Color = *d.Color
	}
	if d.Size != nil && *d.Size > 0 {
		seg.Size = *d.Size
	}
	if d.UserName != nil {
		seg.UserName = *d.UserName
	}
	if d.RoomID != nil {
		seg.RoomID = *d.RoomID
	}
	return seg
}

// SegmentFrom converts a stored segment to its wire form.
func SegmentFrom(seg board.Segment) SegmentData {
	d := SegmentData{
		FromX:   seg.FromX,
		FromY:   seg.FromY,
		ToX:     seg.ToX,
		ToY:     seg.ToY,
		Color:   &seg.Color,
		Size:    &seg.Size,
		IsStart: seg.IsStart,
	}
	if seg.UserName != "" {
		d.UserName = &seg.UserName
	}
	if seg.RoomID != "" {
		d.RoomID = &seg.RoomID
	}
	return d
}
