// Package progress delivers pipeline progress events to live subscribers.
// Delivery is fire-and-forget and at-most-once: a subscriber that joins
// after an event was published never sees it, and a subscriber whose buffer
// is full loses the event. Publishing never blocks the pipeline.
package progress

import (
	"sync"

	"github.com/valpere/transflow/internal"
)

// Publisher is the capability the orchestrator needs: emit one event.
type Publisher interface {
	Publish(ev internal.ProgressEvent)
}

// Nop is a Publisher that drops everything; used by the one-shot CLI mode.
type Nop struct{}

func (Nop) Publish(internal.ProgressEvent) {}

// DefaultBuffer is the per-subscriber channel capacity used when the caller
// passes a non-positive buffer size.
const DefaultBuffer = 64

type subscriber struct {
	ch chan internal.ProgressEvent
}

// Hub fans progress events out to subscribers registered by project id or
// file id.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// SubscribeFile registers for events of one file. The returned cancel
// function unregisters and closes the channel; it is safe to call twice.
func (h *Hub) SubscribeFile(fileID string, buffer int) (<-chan internal.ProgressEvent, func()) {
	return h.subscribe("file:"+fileID, buffer)
}

// SubscribeProject registers for events of every file in a project.
func (h *Hub) SubscribeProject(projectID string, buffer int) (<-chan internal.ProgressEvent, func()) {
	return h.subscribe("project:"+projectID, buffer)
}

func (h *Hub) subscribe(topic string, buffer int) (<-chan internal.ProgressEvent, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sub := &subscriber{ch: make(chan internal.ProgressEvent, buffer)}

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*subscriber]struct{})
	}
	h.subs[topic][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[topic], sub)
			if len(h.subs[topic]) == 0 {
				delete(h.subs, topic)
			}
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers ev to all subscribers of the event's file and project.
// Subscribers with full buffers are skipped.
func (h *Hub) Publish(ev internal.ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, topic := range []string{"file:" + ev.FileID, "project:" + ev.ProjectID} {
		for sub := range h.subs[topic] {
			select {
			case sub.ch <- ev:
			default:
				// Slow subscriber: drop rather than block the pipeline.
			}
		}
	}
}
