package core

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/auth"
	"github.com/vovakirdan/wireboard/internal/board"
)

// Hub routes client commands to the board store and fans the resulting
// events out to broadcast groups. Each client is served by its own goroutine,
// so commands from one client are handled in order while different clients
// run concurrently.
type Hub struct {
	boards  *board.Store
	tickets *auth.TicketConfig
	log     *zerolog.Logger

	mu     sync.RWMutex
	groups map[string]*Group

	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
}

// NewHub creates a hub over boards. A nil or empty tickets config disables
// room tickets.
func NewHub(boards *board.Store, tickets *auth.TicketConfig, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		boards:     boards,
		tickets:    tickets,
		log:        logger,
		groups:     make(map[string]*Group),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// Run serves registrations until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case client := <-h.register:
			h.log.Debug().Str("client_id", client.ID).Msg("client registered")
			go h.serve(ctx, client)
		case client := <-h.unregister:
			client.close(nil)
			h.detach(client)
			h.log.Debug().Str("client_id", client.ID).Msg("client unregistered")
		case <-ctx.Done():
			return
		}
	}
}

// RegisterClient starts serving the client's commands.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.stopped:
		c.close(ErrHubStopped)
	}
}

// UnregisterClient stops serving the client and removes it from its room.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stopped:
		c.close(ErrHubStopped)
		h.detach(c)
	}
}

func (h *Hub) serve(ctx context.Context, c *Client) {
	for {
		select {
		case cmd := <-c.Commands:
			if cmd != nil {
				h.handle(c, cmd)
			}
		case <-c.done:
			return
		case <-ctx.Done():
			c.close(ErrHubStopped)
			return
		}
	}
}

func (h *Hub) handle(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinRoom:
		h.join(c, cmd)
	case CommandDraw:
		h.draw(c, cmd)
	case CommandClear:
		h.clear(c, cmd)
	case CommandLeaveRoom:
		h.leave(c)
	default:
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "unknown command")})
	}
}

func (h *Hub) join(c *Client, cmd *Command) {
	display := strings.TrimSpace(cmd.Room)
	if display == "" && cmd.Create {
		code, err := board.NewRoomCode()
		if err != nil {
			h.log.Error().Err(err).Str("client_id", c.ID).Msg("generate room code")
			h.send(c, &Event{Kind: EventJoinFailed, Reason: ReasonRoomCode})
			return
		}
		display = code
	}
	display = displayRoomID(display)
	key := board.NormalizeRoomID(display)

	allowed, created := h.admitByTicket(key, cmd.Ticket), false
	if !allowed {
		allowed, created = h.boards.TryEnterRoom(display, cmd.Password)
	}
	if !allowed {
		h.log.Info().Str("client_id", c.ID).Str("room_id", key).Msg("join denied")
		h.send(c, &Event{Kind: EventJoinFailed, Room: display, Reason: ReasonWrongPassword})
		return
	}

	c.setName(strings.TrimSpace(cmd.UserName))
	name := c.Name()

	var ticket string
	if h.tickets.Enabled() {
		t, err := auth.IssueTicket(h.tickets, key, name)
		if err != nil {
			h.log.Warn().Err(err).Str("client_id", c.ID).Msg("issue room ticket")
		}
		ticket = t
	}

	if previous := c.Room(); previous != "" && previous != key {
		h.removeFromGroup(c, previous)
	}

	// Joining the group and taking the snapshot happen under the group lock,
	// so every draw is either in the snapshot or broadcast to c afterwards.
	var delivered bool
	ok := h.group(key).AddClient(c, func() {
		delivered = c.deliver(&Event{
			Kind:     EventJoined,
			Room:     display,
			ClientID: c.ID,
			User:     name,
			Created:  created,
			Ticket:   ticket,
		}) && c.deliver(&Event{
			Kind:     EventFullState,
			Room:     display,
			Segments: h.boards.GetAll(key),
		})
	})
	if !ok {
		return
	}
	if !delivered {
		h.dropSlow(c)
		return
	}

	h.log.Info().
		Str("client_id", c.ID).
		Str("user", name).
		Str("room_id", key).
		Bool("created", created).
		Msg("client joined room")
}

// admitByTicket reports whether token is a valid ticket for an existing room.
func (h *Hub) admitByTicket(key, token string) bool {
	if token == "" || !h.tickets.Enabled() {
		return false
	}
	claims, err := auth.ValidateTicket(h.tickets, token)
	if err != nil {
		h.log.Debug().Err(err).Msg("room ticket rejected")
		return false
	}
	if claims.Room != key {
		return false
	}
	_, exists := h.boards.Stat(key)
	return exists
}

func (h *Hub) draw(c *Client, cmd *Command) {
	if cmd.Segment == nil {
		h.log.Debug().Str("client_id", c.ID).Msg("draw without segment ignored")
		return
	}

	seg := *cmd.Segment
	if seg.UserName == "" {
		seg.UserName = c.Name()
	}
	h.boards.Add(seg.RoomID, seg)

	key := board.NormalizeRoomID(seg.RoomID)
	h.broadcast(key, &Event{Kind: EventDraw, Room: displayRoomID(seg.RoomID), Segment: seg}, c)
}

func (h *Hub) clear(c *Client, cmd *Command) {
	h.boards.Clear(cmd.Room)

	key := board.NormalizeRoomID(cmd.Room)
	event := &Event{Kind: EventClear, Room: displayRoomID(cmd.Room)}
	g := h.broadcast(key, event, nil)
	if g == nil || !g.Has(c) {
		h.send(c, event)
	}

	h.log.Info().Str("client_id", c.ID).Str("room_id", key).Msg("room cleared")
}

func (h *Hub) leave(c *Client) {
	room := c.Room()
	if room == "" {
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeNotInRoom, "not in a room")})
		return
	}
	h.removeFromGroup(c, room)
	h.send(c, &Event{Kind: EventLeft, Room: room})
}

// broadcast sends event to the group keyed by key, skipping except, and
// returns the group if one exists.
func (h *Hub) broadcast(key string, event *Event, except *Client) *Group {
	h.mu.RLock()
	g := h.groups[key]
	h.mu.RUnlock()
	if g == nil {
		return nil
	}

	for _, slow := range g.Broadcast(event, except) {
		h.dropSlow(slow)
	}
	return g
}

func (h *Hub) send(c *Client, event *Event) {
	if !c.deliver(event) {
		h.dropSlow(c)
	}
}

// dropSlow disconnects a client that cannot keep up. It will replay the room
// log when it reconnects.
func (h *Hub) dropSlow(c *Client) {
	if c.closed() {
		return
	}
	h.log.Warn().Str("client_id", c.ID).Str("room_id", c.Room()).Msg("disconnecting slow client")
	c.close(ErrSlowConsumer)
	h.detach(c)
}

func (h *Hub) detach(c *Client) {
	if room := c.Room(); room != "" {
		h.removeFromGroup(c, room)
	}
}

func (h *Hub) removeFromGroup(c *Client, key string) {
	h.mu.RLock()
	g := h.groups[key]
	h.mu.RUnlock()
	if g != nil {
		g.RemoveClient(c)
	}
	// only clear the room if no concurrent join moved the client elsewhere
	c.mu.Lock()
	if c.room == key {
		c.room = ""
	}
	c.mu.Unlock()
}

// group returns the broadcast group for key, creating it on first use.
// Groups live as long as the hub, like the rooms they mirror.
func (h *Hub) group(key string) *Group {
	h.mu.RLock()
	g, ok := h.groups[key]
	h.mu.RUnlock()
	if ok {
		return g
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if g, ok := h.groups[key]; ok {
		return g
	}
	g = NewGroup(key)
	h.groups[key] = g
	return g
}

// displayRoomID keeps the caller's spelling of a room id, defaulting blanks.
func displayRoomID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return board.DefaultRoomID
	}
	return id
}

// Members returns the number of clients in a room's broadcast group.
func (h *Hub) Members(roomID string) int {
	h.mu.RLock()
	g := h.groups[board.NormalizeRoomID(roomID)]
	h.mu.RUnlock()
	if g == nil {
		return 0
	}
	return g.Len()
}
