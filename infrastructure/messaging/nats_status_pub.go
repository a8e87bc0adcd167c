package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"storyforge/domain/ports"
)

// SubjectPrefix subject = generation.{scriptID}
const SubjectPrefix = "generation"

// NATSStatusPublisher implements StatusPublisherPort using NATS Pub/Sub
type NATSStatusPublisher struct {
	conn *nats.Conn
}

// NewNATSStatusPublisher สร้าง StatusPublisherPort adapter สำหรับ NATS
func NewNATSStatusPublisher(conn *nats.Conn) ports.StatusPublisherPort {
	return &NATSStatusPublisher{conn: conn}
}

// PublishStatus ส่ง status event ผ่าน NATS Pub/Sub
func (p *NATSStatusPublisher) PublishStatus(ctx context.Context, event *ports.StatusEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.ScriptID == "" {
		return fmt.Errorf("script_id is required")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal status event: %w", err)
	}

	return p.conn.Publish(Subject(event.ScriptID), data)
}

func Subject(scriptID string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, scriptID)
}
