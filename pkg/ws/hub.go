package ws

import (
	"sort"
	"sync"

	"github.com/steveyiyo/voicerelay/pkg/types"
)

// Entry is a live relay connection.
type Entry interface {
	Close() error
	Summary() types.SessionSummary
}

// Hub is the process-wide table of live connections keyed by connection id.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Entry
}

func NewHub() *Hub {
	return &Hub{conns: map[string]Entry{}}
}

func (h *Hub) Add(id string, e Entry) {
	h.mu.Lock()
	h.conns[id] = e
	h.mu.Unlock()
}

func (h *Hub) Get(id string) (Entry, bool) {
	h.mu.RLock()
	e, ok := h.conns[id]
	h.mu.RUnlock()
	return e, ok
}

func (h *Hub) Remove(id string) {
	h.mu.Lock()
	delete(h.conns, id)
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Summaries returns a snapshot ordered by connection age.
func (h *Hub) Summaries() []types.SessionSummary {
	h.mu.RLock()
	out := make([]types.SessionSummary, 0, len(h.conns))
	for _, e := range h.conns {
		out = append(out, e.Summary())
	}
	h.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ConnectionID < out[j].ConnectionID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// CloseAll asks every live connection to tear down. Entries remove themselves
// as their handlers exit.
func (h *Hub) CloseAll() int {
	h.mu.RLock()
	entries := make([]Entry, 0, len(h.conns))
	for _, e := range h.conns {
		entries = append(entries, e)
	}
	h.mu.RUnlock()
	for _, e := range entries {
		_ = e.Close()
	}
	return len(entries)
}
