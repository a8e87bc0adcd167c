package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"storyforge/domain/ports"
	"storyforge/pkg/logger"
)

const (
	statusBuffer    = 64
	statusWriteWait = 10 * time.Second
	statusPingEvery = 30 * time.Second
)

// StatusHandler push status event ของ script ผ่าน websocket
// client ยัง poll list endpoint ได้เหมือนเดิม ช่องทางนี้เป็นแค่ตัวเสริม
type StatusHandler struct {
	hub ports.StatusSubscriberPort
}

func NewStatusHandler(hub ports.StatusSubscriberPort) *StatusHandler {
	return &StatusHandler{hub: hub}
}

// Upgrade รับเฉพาะ websocket request ที่ script ID ถูกต้อง
func (h *StatusHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, err := uuid.Parse(c.Params("id")); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid script ID")
	}
	return c.Next()
}

// Stream GET /ws/scripts/:id
func (h *StatusHandler) Stream(conn *websocket.Conn) {
	scriptID := conn.Params("id")

	// hub เรียก handler แบบ sync จึงต้องไม่ block: เต็มแล้วทิ้ง event
	events := make(chan *ports.StatusEvent, statusBuffer)
	unsubscribe := h.hub.SubscribeScript(scriptID, func(event *ports.StatusEvent) {
		select {
		case events <- event:
		default:
			logger.Warn("Status stream buffer full, dropping event", "script_id", scriptID, "entity_id", event.EntityID)
		}
	})
	defer unsubscribe()

	logger.Info("Status stream connected", "script_id", scriptID)
	defer logger.Info("Status stream closed", "script_id", scriptID)

	// read loop จับการปิดจากฝั่ง client
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(statusPingEvery)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case event := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(statusWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				logger.Warn("Status stream write failed", "script_id", scriptID, "error", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(statusWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
