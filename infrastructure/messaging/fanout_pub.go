package messaging

import (
	"context"
	"errors"

	"storyforge/domain/ports"
)

// FanoutPublisher ส่ง event ให้ทุก publisher, error รวมกันคืนทีเดียว
type FanoutPublisher struct {
	publishers []ports.StatusPublisherPort
}

func NewFanoutPublisher(publishers ...ports.StatusPublisherPort) *FanoutPublisher {
	out := make([]ports.StatusPublisherPort, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	return &FanoutPublisher{publishers: out}
}

func (f *FanoutPublisher) PublishStatus(ctx context.Context, event *ports.StatusEvent) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.PublishStatus(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
