package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"storyforge/domain/ports"
)

type recordingPublisher struct {
	events []*ports.StatusEvent
	err    error
}

func (r *recordingPublisher) PublishStatus(_ context.Context, e *ports.StatusEvent) error {
	r.events = append(r.events, e)
	return r.err
}

func TestFanoutPublisherDeliversToAll(t *testing.T) {
	a := &recordingPublisher{}
	b := &recordingPublisher{err: errors.New("nats down")}
	fan := NewFanoutPublisher(a, nil, b)

	err := fan.PublishStatus(context.Background(), &ports.StatusEvent{ScriptID: "s1", Status: "completed"})

	assert.EqualError(t, err, "nats down")
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "generation.abc", Subject("abc"))
}
