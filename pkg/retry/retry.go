// Package retry wraps fallible calls with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"storyforge/pkg/logger"
)

// Policy wait ก่อน attempt ถัดไป = min(MinWait * Multiplier^(attempt-1), MaxWait)
type Policy struct {
	MaxAttempts int
	MinWait     time.Duration
	MaxWait     time.Duration
	Multiplier  float64

	// Sleep ใช้แทน timer ใน test, nil = รอจริงแบบ cancel ได้
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy 3 ครั้ง, รอ 2s ถึง 10s
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, MinWait: 2 * time.Second, MaxWait: 10 * time.Second, Multiplier: 1}
}

// Wait คืนเวลารอหลัง attempt ที่ล้มเหลว (attempt เริ่มที่ 1)
func (p Policy) Wait(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := p.Multiplier
	if mult <= 0 {
		mult = 1
	}
	wait := float64(p.MinWait) * math.Pow(mult, float64(attempt-1))
	if p.MaxWait > 0 && wait > float64(p.MaxWait) {
		return p.MaxWait
	}
	return time.Duration(wait)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent หยุด retry ทันที, Do จะคืน err ตัวในโดยไม่ห่อ
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do เรียก op จนสำเร็จหรือครบ MaxAttempts แล้วคืน error ล่าสุดตามเดิม
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue เหมือน Do แต่คืนค่าจาก op
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		wait := p.Wait(attempt)
		logger.WarnContext(ctx, "Retrying after failure",
			"attempt", attempt,
			"max_attempts", attempts,
			"wait", wait.String(),
			"error", err,
		)
		if serr := sleep(ctx, wait); serr != nil {
			return zero, serr
		}
	}
	return zero, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
