package websocket

import (
	"context"
	"sync"

	"storyforge/domain/ports"
)

// StatusHub กระจาย status event ให้ subscriber ของแต่ละ script (room = script ID)
// ใช้ทั้งเป็น StatusPublisherPort และ StatusSubscriberPort
type StatusHub struct {
	mu     sync.RWMutex
	rooms  map[string]map[uint64]ports.StatusHandler
	nextID uint64
}

func NewStatusHub() *StatusHub {
	return &StatusHub{rooms: make(map[string]map[uint64]ports.StatusHandler)}
}

var (
	_ ports.StatusPublisherPort  = (*StatusHub)(nil)
	_ ports.StatusSubscriberPort = (*StatusHub)(nil)
)

func (h *StatusHub) SubscribeScript(scriptID string, handler ports.StatusHandler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	if h.rooms[scriptID] == nil {
		h.rooms[scriptID] = make(map[uint64]ports.StatusHandler)
	}
	h.rooms[scriptID][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.rooms[scriptID], id)
			if len(h.rooms[scriptID]) == 0 {
				delete(h.rooms, scriptID)
			}
		})
	}
}

// PublishStatus เรียก handler ทุกตัวใน room, handler ต้องไม่ block
func (h *StatusHub) PublishStatus(_ context.Context, event *ports.StatusEvent) error {
	if event == nil {
		return nil
	}
	h.mu.RLock()
	handlers := make([]ports.StatusHandler, 0, len(h.rooms[event.ScriptID]))
	for _, fn := range h.rooms[event.ScriptID] {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(event)
	}
	return nil
}

// Subscribers จำนวน subscriber ของ script
func (h *StatusHub) Subscribers(scriptID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[scriptID])
}
