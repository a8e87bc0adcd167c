package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"storyforge/pkg/logger"
)

// UnitError error จาก background unit หนึ่งตัว
type UnitError struct {
	Name string
	Err  error
}

func (e UnitError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Pool รัน background units บน ants pool
// unit ทำงานต่อหลัง request จบ ทุก error และ panic ถูกส่งเข้า Errors แล้ว log
type Pool struct {
	pool   *ants.Pool
	base   context.Context
	cancel context.CancelFunc
	errs   chan UnitError
	wg     sync.WaitGroup
	drain  sync.WaitGroup

	// onError ถูกเรียกจาก drain goroutine
	onError func(UnitError)
}

type Option func(*Pool)

// WithErrorHook ให้ผู้เรียนเห็น error ที่ drain ได้
func WithErrorHook(fn func(UnitError)) Option {
	return func(p *Pool) { p.onError = fn }
}

// NewPool size <= 0 = ไม่จำกัดจำนวน worker
// pool ที่จำกัดขนาดไม่ block ผู้เรียกเมื่อเต็ม Go คืน error ทันทีแทน
func NewPool(size int, opts ...Option) (*Pool, error) {
	if size <= 0 {
		size = -1
	}

	base, cancel := context.WithCancel(context.Background())
	p := &Pool{
		base:   base,
		cancel: cancel,
		errs:   make(chan UnitError, 128),
	}
	for _, opt := range opts {
		opt(p)
	}

	pool, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(v any) {
			logger.Error("Panic in worker pool", "panic", v)
		}),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	p.pool = pool

	p.drain.Add(1)
	go p.drainErrors()

	return p, nil
}

// Go ส่ง unit เข้า pool, ctx ของ request ใช้แค่ดึง request id มาติด log
// ไม่ block: pool เต็มคืน error ที่ห่อ ants.ErrPoolOverload
func (p *Pool) Go(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	unitCtx := logger.Detach(ctx)
	unitCtx, cancel := context.WithCancel(unitCtx)
	stop := context.AfterFunc(p.base, cancel)

	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		defer stop()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				p.errs <- UnitError{Name: name, Err: fmt.Errorf("panic: %v", r)}
			}
		}()

		if err := fn(unitCtx); err != nil {
			p.errs <- UnitError{Name: name, Err: err}
		}
	})
	if err != nil {
		p.wg.Done()
		stop()
		cancel()
		return fmt.Errorf("failed to submit %s: %w", name, err)
	}
	return nil
}

// Wait รอ unit ที่ส่งไปแล้วทั้งหมด
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Running จำนวน worker ที่กำลังทำงาน
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Release ยกเลิก ctx ของทุก unit รอให้จบ แล้วปิด pool
func (p *Pool) Release() {
	p.cancel()
	p.wg.Wait()
	p.pool.Release()
	close(p.errs)
	p.drain.Wait()
}

func (p *Pool) drainErrors() {
	defer p.drain.Done()
	for ue := range p.errs {
		logger.Error("Background unit failed", "unit", ue.Name, "error", ue.Err)
		if p.onError != nil {
			p.onError(ue)
		}
	}
}
