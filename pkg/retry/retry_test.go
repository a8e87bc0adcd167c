package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleep struct {
	waits []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

func TestPolicyWait(t *testing.T) {
	p := Policy{MinWait: 2 * time.Second, MaxWait: 10 * time.Second, Multiplier: 2}

	assert.Equal(t, 2*time.Second, p.Wait(1))
	assert.Equal(t, 4*time.Second, p.Wait(2))
	assert.Equal(t, 8*time.Second, p.Wait(3))
	assert.Equal(t, 10*time.Second, p.Wait(4))
	assert.Equal(t, 10*time.Second, p.Wait(10))
}

func TestDefaultPolicyIsFlat(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, 2*time.Second, p.Wait(1))
	assert.Equal(t, 2*time.Second, p.Wait(2))
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	rec := &recordingSleep{}
	p := Policy{MaxAttempts: 3, MinWait: time.Second, MaxWait: 5 * time.Second, Multiplier: 3, Sleep: rec.sleep}

	calls := 0
	got, err := DoValue(context.Background(), p, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("flaky")
		}
		return "script text", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "script text", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 3 * time.Second}, rec.waits)
}

func TestDoReturnsLastErrorUnchanged(t *testing.T) {
	rec := &recordingSleep{}
	p := Policy{MaxAttempts: 3, MinWait: time.Second, MaxWait: time.Second, Multiplier: 1, Sleep: rec.sleep}

	last := errors.New("third failure")
	calls := 0
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		if calls == 3 {
			return last
		}
		return errors.New("earlier failure")
	})

	assert.Same(t, last, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, rec.waits, 2)
}

func TestDoStopsOnPermanent(t *testing.T) {
	rec := &recordingSleep{}
	p := Policy{MaxAttempts: 5, MinWait: time.Second, Sleep: rec.sleep}

	cause := errors.New("missing api key")
	calls := 0
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		return Permanent(cause)
	})

	assert.Same(t, cause, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.waits)
}

func TestDoHonoursContextDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{MaxAttempts: 3, MinWait: time.Hour, MaxWait: time.Hour}
	err := Do(ctx, p, func(ctx context.Context) error {
		return errors.New("fail")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
