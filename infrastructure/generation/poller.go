package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storyforge/domain/ports"
	"storyforge/pkg/apperrors"
	"storyforge/pkg/logger"
)

// PollPolicy ระยะห่างและจำนวนครั้งสูงสุดของการ poll
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// Policies poll policy แยกตามประเภทงาน
type Policies struct {
	Image  PollPolicy
	Video  PollPolicy
	Jimeng PollPolicy
}

// DefaultPolicies image 2s x 60, video 5s x 60, jimeng 2s x 30
func DefaultPolicies() Policies {
	return Policies{
		Image:  PollPolicy{Interval: 2 * time.Second, MaxAttempts: 60},
		Video:  PollPolicy{Interval: 5 * time.Second, MaxAttempts: 60},
		Jimeng: PollPolicy{Interval: 2 * time.Second, MaxAttempts: 30},
	}
}

// For เลือก policy จาก model และ kind
func (p Policies) For(model string, kind ports.JobKind) PollPolicy {
	switch {
	case strings.HasPrefix(model, "jimeng"):
		return p.Jimeng
	case kind == ports.JobKindVideo:
		return p.Video
	default:
		return p.Image
	}
}

// Await poll จนกว่างานจะจบ
//   - Failed คืน UpstreamError ทันที
//   - ครบ MaxAttempts แล้วยัง pending คืน TimeoutError
//   - ctx ถูกยกเลิกคืน ctx.Err()
func Await(ctx context.Context, client ports.TaskClientPort, handle ports.TaskHandle, policy PollPolicy) (string, error) {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}

	timer := time.NewTimer(policy.Interval)
	defer timer.Stop()

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}

		status, err := client.Poll(ctx, handle)
		if err != nil {
			return "", err
		}

		switch status.State {
		case ports.TaskSucceeded:
			if len(status.ResultURLs) == 0 || status.ResultURLs[0] == "" {
				return "", apperrors.Upstream(handle.Model, "task succeeded without a result url", nil)
			}
			return status.ResultURLs[0], nil
		case ports.TaskFailed:
			reason := status.Reason
			if reason == "" {
				reason = "generation failed"
			}
			return "", apperrors.Upstream(handle.Model, reason, nil)
		}

		logger.DebugContext(ctx, "Task still pending",
			"task_id", handle.ID,
			"model", handle.Model,
			"attempt", attempt,
		)
		timer.Reset(policy.Interval)
	}

	return "", apperrors.Timeout(handle.Model, fmt.Sprintf("task %s not finished after %d polls", handle.ID, policy.MaxAttempts))
}

// Run = Submit แล้ว Await, คืน URL แรกของผลลัพธ์
func Run(ctx context.Context, client ports.TaskClientPort, spec ports.JobSpec, policy PollPolicy) (string, error) {
	handle, err := client.Submit(ctx, spec)
	if err != nil {
		return "", err
	}

	logger.InfoContext(ctx, "Generation task submitted",
		"task_id", handle.ID,
		"model", handle.Model,
		"kind", string(handle.Kind),
	)

	return Await(ctx, client, handle, policy)
}
