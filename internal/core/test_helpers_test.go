package core

import (
	"context"
	"testing"
	"time"

	"github.com/vovakirdan/wireboard/internal/board"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustNextEvent requires the very next event to be of the given kind.
func mustNextEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	select {
	case ev := <-ch:
		if ev.Kind != kind {
			t.Fatalf("expected event kind %v, got %+v", kind, ev)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("expected event kind %v not received", kind)
		return nil
	}
}

func mustNoEvent(t *testing.T, ch <-chan *Event, wait time.Duration) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(wait):
	}
}

func startHub(t *testing.T, opts ...board.Option) (*Hub, *board.Store) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	boards := board.NewStore(opts...)
	hub := NewHub(boards, nil, nil)
	go hub.Run(ctx)
	return hub, boards
}

func joinRoom(t *testing.T, hub *Hub, c *Client, room, password string) *Event {
	t.Helper()

	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandJoinRoom, Room: room, UserName: c.Name(), Password: password}
	joined := mustNextEvent(t, c.Events, EventJoined)
	mustNextEvent(t, c.Events, EventFullState)
	return joined
}
