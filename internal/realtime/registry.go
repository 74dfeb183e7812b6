// Admin registry keeps track of which connection is watching each event's live dashboard.

package realtime

import "sync"

// Registry is the single-writer-wins association of event code to the one
// connection currently receiving that event's live feed. Registering a new
// watcher for an event overwrites any previous entry (last registration wins).
// Constructed once per process and shared by the gateway and the sweep task.
type Registry interface {
	// Set records connID as the watcher of eventCode, replacing any previous watcher.
	Set(eventCode string, connID string)
	// Remove drops the watcher entry for eventCode, no-op if absent.
	Remove(eventCode string)
	// Get returns the watcher connection of eventCode, if any.
	Get(eventCode string) (string, bool)
	// Events returns every event code that currently has a watcher.
	Events() []string
	// Release drops every entry owned by connID, used when its connection closes.
	Release(connID string)
}

type registry struct {
	mu       sync.RWMutex
	watchers map[string]string
}

// Returns a new in-memory admin registry.
func NewRegistry() Registry {
	return &registry{watchers: make(map[string]string)}
}

func (r *registry) Set(eventCode string, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers[eventCode] = connID
}

func (r *registry) Remove(eventCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.watchers, eventCode)
}

func (r *registry) Get(eventCode string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.watchers[eventCode]
	return connID, ok
}

func (r *registry) Events() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := make([]string, 0, len(r.watchers))
	for eventCode := range r.watchers {
		events = append(events, eventCode)
	}
	return events
}

func (r *registry) Release(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for eventCode, owner := range r.watchers {
		if owner == connID {
			delete(r.watchers, eventCode)
		}
	}
}
