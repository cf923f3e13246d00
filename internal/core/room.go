package core

import "sync"

// Group is the broadcast group of one room: the clients that receive its
// draw and clear events.
type Group struct {
	Name string

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewGroup constructs a group with no clients.
func NewGroup(name string) *Group {
	return &Group{
		Name:    name,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client and runs onAdded before any later broadcast can
// reach it. Returns false if the client is already closed.
func (g *Group) AddClient(c *Client, onAdded func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c.closed() {
		return false
	}
	g.clients[c] = struct{}{}
	c.setRoom(g.Name)
	if onAdded != nil {
		onAdded()
	}
	return true
}

// RemoveClient deletes a client from the group. Returns true if removed.
func (g *Group) RemoveClient(c *Client) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.clients[c]; !exists {
		return false
	}
	delete(g.clients, c)
	return true
}

// Has reports whether c is a member.
func (g *Group) Has(c *Client) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.clients[c]
	return ok
}

// Broadcast sends an event to every member except the given one. Members that
// cannot take the event are removed; the ones still open are returned so the
// caller can disconnect them.
func (g *Group) Broadcast(event *Event, except *Client) []*Client {
	g.mu.Lock()
	defer g.mu.Unlock()

	var slow []*Client
	for client := range g.clients {
		if client == except {
			continue
		}
		if client.deliver(event) {
			continue
		}
		delete(g.clients, client)
		if !client.closed() {
			slow = append(slow, client)
		}
	}
	return slow
}

// Len returns the number of members.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.clients)
}
