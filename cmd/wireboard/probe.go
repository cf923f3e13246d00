package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wireboard/internal/proto"
)

type probeOptions struct {
	addr     string
	user     string
	room     string
	password string
	create   bool
	timeout  time.Duration
}

func newProbeCmd() *cobra.Command {
	opts := probeOptions{}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Join a room over websocket, draw one segment and print the replies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			return runProbe(ctx, cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", "ws://localhost:8080/ws", "websocket address")
	flags.StringVar(&opts.user, "user", "probe", "user name")
	flags.StringVar(&opts.room, "room", "", "room id (blank is the default room)")
	flags.StringVar(&opts.password, "password", "", "room password")
	flags.BoolVar(&opts.create, "create", false, "ask the server for a fresh room code when --room is blank")
	flags.DurationVar(&opts.timeout, "timeout", 5*time.Second, "total timeout for the run")
	return cmd
}

func runProbe(ctx context.Context, out io.Writer, opts probeOptions) error {
	conn, _, err := websocket.Dial(ctx, opts.addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		return wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload})
	}

	if err := send(proto.InboundTypeJoin, proto.JoinData{
		RoomID:   opts.room,
		UserName: opts.user,
		Password: opts.password,
		Create:   opts.create,
	}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	var outbound struct {
		Type  string          `json:"type"`
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
		Error *proto.Error    `json:"error,omitempty"`
	}

	for {
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		fmt.Fprintf(out, "type=%s event=%s data=%s\n", outbound.Type, outbound.Event, string(outbound.Data))
		if outbound.Error != nil {
			return fmt.Errorf("server error %s: %s", outbound.Error.Code, outbound.Error.Msg)
		}

		switch outbound.Event {
		case proto.EventJoinFailed:
			return errors.New("join failed")
		case proto.EventJoined:
			var joined proto.EventJoinedData
			if err := json.Unmarshal(outbound.Data, &joined); err == nil {
				opts.room = joined.RoomID
			}
		case proto.EventFullState:
			room := opts.room
			seg := proto.SegmentData{FromX: 0, FromY: 0, ToX: 10, ToY: 10, IsStart: true, RoomID: &room}
			if err := send(proto.InboundTypeDraw, seg); err != nil {
				return fmt.Errorf("send draw: %w", err)
			}
			fmt.Fprintf(out, "drew one segment in room %s\n", room)
			return nil
		}
	}
}
