package core

import "sync"

const defaultEventBuffer = 256

// Client is a connection as seen by the core layer.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	mu   sync.Mutex
	name string
	room string // normalized id of the group the client is in, "" when none

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// NewClient constructs a client with initialized channels. A non-positive
// buffer selects the default event queue size.
func NewClient(id, name string, buffer int) *Client {
	if name == "" {
		name = id
	}
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	return &Client{
		ID:       id,
		name:     name,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, buffer),
		done:     make(chan struct{}),
	}
}

// Name returns the display name the client last joined with.
func (c *Client) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// Room returns the normalized id of the room the client is in.
func (c *Client) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// Done is closed once the hub stops serving the client.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err reports why the client was closed: ErrSlowConsumer, ErrHubStopped, or
// nil when it was unregistered. Only meaningful after Done is closed.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.closeErr
	default:
		return nil
	}
}

func (c *Client) setName(name string) {
	if name == "" {
		return
	}
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
}

func (c *Client) setRoom(room string) (previous string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous, c.room = c.room, room
	return previous
}

func (c *Client) close(err error) {
	c.closeOnce.Do(func() {
		c.closeErr = err
		close(c.done)
	})
}

func (c *Client) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// deliver enqueues an event without blocking. It reports false when the
// client is gone or its queue is full.
func (c *Client) deliver(event *Event) bool {
	if c.closed() {
		return false
	}
	select {
	case c.Events <- event:
		return true
	default:
		return false
	}
}
