package http

import (
	"bytes"
	"encoding/json"

	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/proto"
)

// inboundToCommand maps a client envelope to a core command. Payloads that
// cannot be decoded yield a protocol error for the caller only.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := decodeData(inbound.Data, &join); err != nil {
			return nil, badRequest("invalid join payload")
		}
		return &core.Command{
			Kind:     core.CommandJoinRoom,
			Room:     join.RoomID,
			UserName: join.UserName,
			Password: join.Password,
			Create:   join.Create,
			Ticket:   join.Ticket,
		}, nil
	case proto.InboundTypeDraw:
		cmd := &core.Command{Kind: core.CommandDraw}
		if isEmptyData(inbound.Data) {
			// the hub drops draws without a segment
			return cmd, nil
		}
		var data proto.SegmentData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, badRequest("invalid segment payload")
		}
		seg := data.Segment()
		cmd.Room = seg.RoomID
		cmd.Segment = &seg
		return cmd, nil
	case proto.InboundTypeClear:
		var clear proto.ClearData
		if err := decodeData(inbound.Data, &clear); err != nil {
			return nil, badRequest("invalid clear payload")
		}
		return &core.Command{Kind: core.CommandClear, Room: clear.RoomID}, nil
	case proto.InboundTypeLeave:
		return &core.Command{Kind: core.CommandLeaveRoom}, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}
	}
}

func decodeData(data json.RawMessage, v any) error {
	if isEmptyData(data) {
		return nil
	}
	return json.Unmarshal(data, v)
}

func isEmptyData(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventJoined:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventJoined,
			Data: proto.EventJoinedData{
				ConnectionID: event.ClientID,
				UserName:     event.User,
				RoomID:       event.Room,
				Created:      event.Created,
				Ticket:       event.Ticket,
			},
		}
	case core.EventJoinFailed:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventJoinFailed,
			Data: proto.EventJoinFailedData{
				RoomID: event.Room,
				Reason: event.Reason,
			},
		}
	case core.EventFullState:
		segments := make([]proto.SegmentData, 0, len(event.Segments))
		for _, seg := range event.Segments {
			segments = append(segments, proto.SegmentFrom(seg))
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventFullState,
			Data: proto.EventFullStateData{
				RoomID:   event.Room,
				Segments: segments,
			},
		}
	case core.EventDraw:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveDraw,
			Data:  proto.SegmentFrom(event.Segment),
		}
	case core.EventClear:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveClear,
			Data:  proto.EventRoomData{RoomID: event.Room},
		}
	case core.EventLeft:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventLeft,
			Data:  proto.EventRoomData{RoomID: event.Room},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
