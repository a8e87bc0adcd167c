package websocket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"storyforge/domain/ports"
)

func TestStatusHubRoutesByScript(t *testing.T) {
	hub := NewStatusHub()

	var gotA, gotB []string
	unsubA := hub.SubscribeScript("a", func(e *ports.StatusEvent) { gotA = append(gotA, e.EntityID) })
	hub.SubscribeScript("b", func(e *ports.StatusEvent) { gotB = append(gotB, e.EntityID) })

	_ = hub.PublishStatus(context.Background(), &ports.StatusEvent{ScriptID: "a", EntityID: "k1"})
	_ = hub.PublishStatus(context.Background(), &ports.StatusEvent{ScriptID: "b", EntityID: "k2"})

	assert.Equal(t, []string{"k1"}, gotA)
	assert.Equal(t, []string{"k2"}, gotB)

	unsubA()
	unsubA()
	_ = hub.PublishStatus(context.Background(), &ports.StatusEvent{ScriptID: "a", EntityID: "k3"})

	assert.Equal(t, []string{"k1"}, gotA)
	assert.Equal(t, 0, hub.Subscribers("a"))
	assert.Equal(t, 1, hub.Subscribers("b"))
}
