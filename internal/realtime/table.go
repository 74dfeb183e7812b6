// Connection table of the Gatepass realtime gateway.

package realtime

import (
	"Gatepass/internal/entity"
	"sync"
)

// Notifier pushes a server message to one live connection by its id.
// Delivery is best-effort: pushing to an unknown or congested connection
// reports false and the message is dropped, never queued.
type Notifier interface {
	Push(connID string, msg entity.ServerMessage) bool
}

// Table tracks every live websocket client by connection id.
// It is the process-local counterpart of the admin registry: the registry maps
// events to connection ids, the table maps connection ids to send channels.
type Table struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// Returns a new empty connection table.
func NewTable() *Table {
	return &Table{clients: make(map[string]*client)}
}

func (t *Table) add(c *client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clients[c.id] = c
}

// remove drops the connection from the table and signals its write pump.
// The send channel is deliberately never closed: a concurrent Push may still
// hold the client, and a send on a closed channel would panic the caller.
// A message enqueued after removal just sits in the orphaned buffer.
func (t *Table) remove(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.clients[connID]; ok {
		delete(t.clients, connID)
		close(c.done)
	}
}

func (t *Table) get(connID string) (*client, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.clients[connID]
	return c, ok
}

// Push sends msg to the connection's outbound channel without blocking.
func (t *Table) Push(connID string, msg entity.ServerMessage) bool {
	c, ok := t.get(connID)
	if !ok {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		// Slow consumer, drop instead of stalling the caller
		return false
	}
}
