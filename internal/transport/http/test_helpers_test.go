package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wireboard/internal/auth"
	"github.com/vovakirdan/wireboard/internal/board"
	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/proto"
)

type testServer struct {
	*httptest.Server
	boards *board.Store
	hub    *core.Hub
	// stopHub cancels the hub loop as a graceful shutdown does.
	stopHub context.CancelFunc
}

func startTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	for _, m := range mutate {
		m(&cfg)
	}

	logger := zerolog.Nop()
	boards := board.NewStore(board.WithCapacity(cfg.MaxSegments, cfg.EvictBatch))

	var tickets *auth.TicketConfig
	if cfg.TicketSecret != "" {
		tickets = &auth.TicketConfig{Secret: []byte(cfg.TicketSecret), Issuer: "wireboard", TTL: cfg.TicketTTL}
	}
	hub := core.NewHub(boards, tickets, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	server := NewServer(hub, boards, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, boards: boards, hub: hub, stopHub: cancel}
}

func (ts *testServer) dial(t *testing.T, ctx context.Context) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err, "dial")
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	var raw json.RawMessage
	if data != nil {
		payload, err := json.Marshal(data)
		require.NoError(t, err)
		raw = payload
	}
	require.NoError(t, wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: raw}))
}

// frame is the decoded shape of an outbound message.
type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) frame {
	t.Helper()

	var f frame
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	return f
}

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, event string, into any) {
	t.Helper()

	f := readFrame(t, ctx, conn)
	require.Equal(t, proto.OutboundTypeEvent, f.Type, "frame: %+v", f)
	require.Equal(t, event, f.Event)
	if into != nil {
		require.NoError(t, json.Unmarshal(f.Data, into))
	}
}

// join enters a room and consumes the joined and full-state events.
func join(t *testing.T, ctx context.Context, conn *websocket.Conn, data proto.JoinData) (proto.EventJoinedData, proto.EventFullStateData) {
	t.Helper()

	send(t, ctx, conn, proto.InboundTypeJoin, data)

	var joined proto.EventJoinedData
	readEvent(t, ctx, conn, proto.EventJoined, &joined)
	var state proto.EventFullStateData
	readEvent(t, ctx, conn, proto.EventFullState, &state)
	return joined, state
}

func strPtr(s string) *string { return &s }
