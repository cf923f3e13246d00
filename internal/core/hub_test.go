package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/wireboard/internal/auth"
	"github.com/vovakirdan/wireboard/internal/board"
)

func TestHubJoinDrawAndClear(t *testing.T) {
	hub, _ := startHub(t)

	alice := NewClient("a", "alice", 0)
	bob := NewClient("b", "bob", 0)

	joined := joinRoom(t, hub, alice, "Studio", "")
	if !joined.Created || joined.Room != "Studio" || joined.ClientID != "a" || joined.User != "alice" {
		t.Fatalf("unexpected joined event: %+v", joined)
	}
	joined = joinRoom(t, hub, bob, "studio", "")
	if joined.Created {
		t.Fatalf("second join must not create the room: %+v", joined)
	}

	alice.Commands <- &Command{Kind: CommandDraw, Segment: &board.Segment{
		FromX: 1, FromY: 2, ToX: 3, ToY: 4, Color: "#ff0000", Size: 3, RoomID: "STUDIO",
	}}

	drawEv := mustEvent(t, bob.Events, EventDraw)
	if drawEv.Segment.Color != "#ff0000" || drawEv.Segment.ToY != 4 || drawEv.Segment.UserName != "alice" {
		t.Fatalf("unexpected draw event: %+v", drawEv)
	}
	// The sender already rendered its own stroke.
	mustNoEvent(t, alice.Events, 100*time.Millisecond)

	bob.Commands <- &Command{Kind: CommandClear, Room: "studio"}
	mustEvent(t, alice.Events, EventClear)
	mustEvent(t, bob.Events, EventClear)
}

func TestHubLateJoinerReceivesFullState(t *testing.T) {
	hub, boards := startHub(t)

	for i := 0; i < 3; i++ {
		boards.Add("replay", board.Segment{FromX: float64(i)})
	}

	carol := NewClient("c", "carol", 0)
	hub.RegisterClient(carol)
	carol.Commands <- &Command{Kind: CommandJoinRoom, Room: "replay"}

	mustNextEvent(t, carol.Events, EventJoined)
	state := mustNextEvent(t, carol.Events, EventFullState)
	if len(state.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(state.Segments))
	}
	for i, seg := range state.Segments {
		if seg.FromX != float64(i) {
			t.Fatalf("segment %d out of order: %+v", i, seg)
		}
	}
}

func TestHubWrongPasswordFails(t *testing.T) {
	hub, boards := startHub(t)
	boards.TryEnterRoom("vault", "secret")

	eve := NewClient("e", "eve", 0)
	hub.RegisterClient(eve)
	eve.Commands <- &Command{Kind: CommandJoinRoom, Room: "vault", Password: "guess"}

	ev := mustNextEvent(t, eve.Events, EventJoinFailed)
	if ev.Reason != ReasonWrongPassword {
		t.Fatalf("unexpected reason: %q", ev.Reason)
	}
	mustNoEvent(t, eve.Events, 100*time.Millisecond)
	if hub.Members("vault") != 0 {
		t.Fatalf("denied client must not join the group")
	}

	// Retrying with the right password works.
	eve.Commands <- &Command{Kind: CommandJoinRoom, Room: "vault", Password: "secret"}
	mustNextEvent(t, eve.Events, EventJoined)
	mustNextEvent(t, eve.Events, EventFullState)
}

func TestHubDenialDoesNotReachRoom(t *testing.T) {
	hub, _ := startHub(t)

	owner := NewClient("o", "owner", 0)
	joinRoom(t, hub, owner, "private", "pw")

	intruder := NewClient("i", "intruder", 0)
	hub.RegisterClient(intruder)
	intruder.Commands <- &Command{Kind: CommandJoinRoom, Room: "private", Password: "nope"}
	mustNextEvent(t, intruder.Events, EventJoinFailed)

	mustNoEvent(t, owner.Events, 100*time.Millisecond)
}

func TestHubCreateGeneratesRoomCode(t *testing.T) {
	hub, boards := startHub(t)

	alice := NewClient("a", "alice", 0)
	hub.RegisterClient(alice)
	alice.Commands <- &Command{Kind: CommandJoinRoom, Create: true, Password: "pw"}

	joined := mustNextEvent(t, alice.Events, EventJoined)
	if len(joined.Room) != 6 || !joined.Created {
		t.Fatalf("expected a generated 6 character room, got %+v", joined)
	}
	info, ok := boards.Stat(joined.Room)
	if !ok || !info.Protected {
		t.Fatalf("expected protected room %s, got %+v", joined.Room, info)
	}
}

func TestHubBlankRoomUsesDefault(t *testing.T) {
	hub, boards := startHub(t)

	alice := NewClient("a", "alice", 0)
	joined := joinRoom(t, hub, alice, "", "")
	if joined.Room != board.DefaultRoomID {
		t.Fatalf("expected default room, got %q", joined.Room)
	}

	bob := NewClient("b", "bob", 0)
	hub.RegisterClient(bob)
	bob.Commands <- &Command{Kind: CommandDraw, Segment: &board.Segment{ToX: 1, ToY: 1}}

	ev := mustEvent(t, alice.Events, EventDraw)
	if ev.Room != board.DefaultRoomID {
		t.Fatalf("unexpected room: %q", ev.Room)
	}
	if got := boards.GetAll(board.DefaultRoomID); len(got) != 1 {
		t.Fatalf("expected 1 segment in default room, got %d", len(got))
	}
}

func TestHubDrawWithoutSegmentIsIgnored(t *testing.T) {
	hub, boards := startHub(t)

	alice := NewClient("a", "alice", 0)
	bob := NewClient("b", "bob", 0)
	joinRoom(t, hub, alice, "r", "")
	joinRoom(t, hub, bob, "r", "")

	alice.Commands <- &Command{Kind: CommandDraw, Room: "r"}
	mustNoEvent(t, bob.Events, 100*time.Millisecond)
	mustNoEvent(t, alice.Events, 10*time.Millisecond)
	if n := len(boards.GetAll("r")); n != 0 {
		t.Fatalf("expected empty log, got %d", n)
	}
}

func TestHubDrawToUnjoinedRoomCreatesIt(t *testing.T) {
	hub, boards := startHub(t)

	alice := NewClient("a", "alice", 0)
	hub.RegisterClient(alice)
	alice.Commands <- &Command{Kind: CommandDraw, Segment: &board.Segment{RoomID: "elsewhere", ToX: 5}}

	deadline := time.Now().Add(2 * time.Second)
	for len(boards.GetAll("elsewhere")) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("segment was not stored")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubClearReachesSenderOutsideGroup(t *testing.T) {
	hub, boards := startHub(t)
	boards.Add("r", board.Segment{})

	outsider := NewClient("o", "outsider", 0)
	hub.RegisterClient(outsider)
	outsider.Commands <- &Command{Kind: CommandClear, Room: "r"}

	ev := mustNextEvent(t, outsider.Events, EventClear)
	if ev.Room != "r" {
		t.Fatalf("unexpected clear event: %+v", ev)
	}
	if n := len(boards.GetAll("r")); n != 0 {
		t.Fatalf("expected empty log, got %d", n)
	}
}

func TestHubClearUnknownRoomIsNoop(t *testing.T) {
	hub, boards := startHub(t)

	alice := NewClient("a", "alice", 0)
	hub.RegisterClient(alice)
	alice.Commands <- &Command{Kind: CommandClear, Room: "ghost"}

	mustNextEvent(t, alice.Events, EventClear)
	if boards.Len() != 0 {
		t.Fatalf("clear must not create rooms")
	}
}

func TestHubRejoinMovesClient(t *testing.T) {
	hub, _ := startHub(t)

	alice := NewClient("a", "alice", 0)
	bob := NewClient("b", "bob", 0)
	joinRoom(t, hub, alice, "one", "")
	joinRoom(t, hub, bob, "one", "")

	bob.Commands <- &Command{Kind: CommandJoinRoom, Room: "two"}
	mustNextEvent(t, bob.Events, EventJoined)
	mustNextEvent(t, bob.Events, EventFullState)

	if hub.Members("one") != 1 || hub.Members("two") != 1 {
		t.Fatalf("unexpected members: one=%d two=%d", hub.Members("one"), hub.Members("two"))
	}

	alice.Commands <- &Command{Kind: CommandDraw, Segment: &board.Segment{RoomID: "one"}}
	mustNoEvent(t, bob.Events, 100*time.Millisecond)
}

func TestHubLeave(t *testing.T) {
	hub, _ := startHub(t)

	alice := NewClient("a", "alice", 0)
	joinRoom(t, hub, alice, "room", "")

	alice.Commands <- &Command{Kind: CommandLeaveRoom}
	ev := mustNextEvent(t, alice.Events, EventLeft)
	if ev.Room != "room" {
		t.Fatalf("unexpected left event: %+v", ev)
	}
	if hub.Members("room") != 0 {
		t.Fatalf("expected empty group")
	}

	alice.Commands <- &Command{Kind: CommandLeaveRoom}
	errEv := mustNextEvent(t, alice.Events, EventError)
	if errEv.Error == nil || errEv.Error.Code != ErrCodeNotInRoom {
		t.Fatalf("expected not_in_room error, got %+v", errEv)
	}
}

func TestHubUnregisterRemovesMember(t *testing.T) {
	hub, _ := startHub(t)

	alice := NewClient("a", "alice", 0)
	joinRoom(t, hub, alice, "room", "")

	hub.UnregisterClient(alice)
	select {
	case <-alice.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("client was not closed")
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Members("room") != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected empty group after unregister")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubSlowClientIsDisconnected(t *testing.T) {
	hub, _ := startHub(t)

	fast := NewClient("f", "fast", 0)
	slow := NewClient("s", "slow", 2)
	joinRoom(t, hub, fast, "room", "")
	joinRoom(t, hub, slow, "room", "")

	for i := 0; i < 5; i++ {
		fast.Commands <- &Command{Kind: CommandDraw, Segment: &board.Segment{RoomID: "room", FromX: float64(i)}}
	}

	select {
	case <-slow.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("slow client was not disconnected")
	}
	if hub.Members("room") != 1 {
		t.Fatalf("expected only the fast client to remain, got %d", hub.Members("room"))
	}
}

func TestHubTicketAdmitsWithoutPassword(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tickets := &auth.TicketConfig{Secret: []byte("secret"), Issuer: "test", TTL: time.Hour}
	hub := NewHub(board.NewStore(), tickets, nil)
	go hub.Run(ctx)

	alice := NewClient("a", "alice", 0)
	joined := joinRoom(t, hub, alice, "Vault", "pw")
	if joined.Ticket == "" {
		t.Fatalf("expected a room ticket")
	}

	again := NewClient("a2", "alice", 0)
	hub.RegisterClient(again)
	again.Commands <- &Command{Kind: CommandJoinRoom, Room: "vault", Ticket: joined.Ticket}
	mustNextEvent(t, again.Events, EventJoined)

	// A ticket for another room does not help.
	other := NewClient("x", "mallory", 0)
	joinRoom(t, hub, other, "other", "pw2")
	other.Commands <- &Command{Kind: CommandJoinRoom, Room: "other", Ticket: joined.Ticket}
	mustNextEvent(t, other.Events, EventJoinFailed)
}

func TestHubJoinDuringDrawStreamMissesNothing(t *testing.T) {
	hub, _ := startHub(t)

	const total = 5000
	drawer := NewClient("d", "drawer", 0)
	joinRoom(t, hub, drawer, "race", "")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < total; i++ {
			drawer.Commands <- &Command{Kind: CommandDraw, Segment: &board.Segment{RoomID: "race", FromX: float64(i)}}
		}
	}()

	joiner := NewClient("j", "joiner", total+2)
	hub.RegisterClient(joiner)
	joiner.Commands <- &Command{Kind: CommandJoinRoom, Room: "race"}
	mustNextEvent(t, joiner.Events, EventJoined)
	state := mustNextEvent(t, joiner.Events, EventFullState)
	<-done

	seen := make(map[float64]bool, total)
	for _, seg := range state.Segments {
		seen[seg.FromX] = true
	}
	for len(seen) < total {
		ev := mustNextEvent(t, joiner.Events, EventDraw)
		seen[ev.Segment.FromX] = true
	}
	if joiner.Err() != nil {
		t.Fatalf("joiner was disconnected: %v", joiner.Err())
	}
}

func TestHubCloseReasons(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(board.NewStore(), nil, nil)
	go hub.Run(ctx)

	fast := NewClient("f", "fast", 0)
	slow := NewClient("s", "slow", 2)
	joinRoom(t, hub, fast, "room", "")
	joinRoom(t, hub, slow, "room", "")
	for i := 0; i < 3; i++ {
		fast.Commands <- &Command{Kind: CommandDraw, Segment: &board.Segment{RoomID: "room"}}
	}
	select {
	case <-slow.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("slow client was not disconnected")
	}
	if !errors.Is(slow.Err(), ErrSlowConsumer) {
		t.Fatalf("expected slow consumer, got %v", slow.Err())
	}

	cancel()
	select {
	case <-fast.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("client was not closed on shutdown")
	}
	if !errors.Is(fast.Err(), ErrHubStopped) {
		t.Fatalf("expected hub stopped, got %v", fast.Err())
	}
}
