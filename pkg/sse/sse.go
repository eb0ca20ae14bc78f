package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/gin-gonic/gin"
)

// Event is a server-sent event pushed to a user's open streams.
type Event struct {
	UserID string
	Name   string
	Data   any
}

type client struct {
	userID string
	ch     chan Event
}

// Manager fans task-change events out to connected clients. Each user can
// hold several streams (multiple tabs/devices).
type Manager struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	events     chan Event
	register   chan *client
	unregister chan *client
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[*client]struct{}),
		events:     make(chan Event, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run is the hub loop; start it in its own goroutine.
func (m *Manager) Run() {
	for {
		select {
		case c := <-m.register:
			m.mu.Lock()
			m.clients[c] = struct{}{}
			m.mu.Unlock()
		case c := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[c]; ok {
				delete(m.clients, c)
				close(c.ch)
			}
			m.mu.Unlock()
		case ev := <-m.events:
			m.mu.RLock()
			for c := range m.clients {
				if c.userID != ev.UserID {
					continue
				}
				select {
				case c.ch <- ev:
				default: // slow client, drop rather than block the hub
				}
			}
			m.mu.RUnlock()
		}
	}
}

// Notify queues an event for all of the user's streams. Never blocks the
// caller; events are dropped if the hub is saturated.
func (m *Manager) Notify(userID, name string, data any) {
	select {
	case m.events <- Event{UserID: userID, Name: name, Data: data}:
	default:
	}
}

// ServeHTTP streams events to one client until the connection closes.
func (m *Manager) ServeHTTP(c *gin.Context, userID string) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	cl := &client{userID: userID, ch: make(chan Event, 16)}
	m.register <- cl
	defer func() { m.unregister <- cl }()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-cl.ch:
			if !ok {
				return false
			}
			payload, err := json.Marshal(ev.Data)
			if err != nil {
				return true
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
