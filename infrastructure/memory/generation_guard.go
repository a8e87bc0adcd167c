// Package memory มี implementation แบบ in-process สำหรับตอนไม่เปิด Redis
package memory

import (
	"context"
	"sync"
	"time"

	"storyforge/domain/ports"
)

type lockEntry struct {
	token   uint64
	expires time.Time
}

// GenerationGuard เก็บ epoch และ lock ใน memory (instance เดียว)
type GenerationGuard struct {
	mu     sync.Mutex
	epochs map[string]int64
	locks  map[string]lockEntry
	seq    uint64
	now    func() time.Time
}

func NewGenerationGuard() *GenerationGuard {
	return &GenerationGuard{
		epochs: make(map[string]int64),
		locks:  make(map[string]lockEntry),
		now:    time.Now,
	}
}

var _ ports.GenerationGuardPort = (*GenerationGuard)(nil)

func (g *GenerationGuard) Advance(_ context.Context, key string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.epochs[key]++
	return g.epochs[key], nil
}

func (g *GenerationGuard) Current(_ context.Context, key string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.epochs[key], nil
}

func (g *GenerationGuard) TryLock(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if cur, held := g.locks[key]; held && now.Before(cur.expires) {
		return func() {}, false, nil
	}

	g.seq++
	token := g.seq
	g.locks[key] = lockEntry{token: token, expires: now.Add(ttl)}

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			// lock หมดอายุแล้วมีคนอื่นถือต่อ: ไม่ลบของเขา
			if cur, ok := g.locks[key]; ok && cur.token == token {
				delete(g.locks, key)
			}
		})
	}
	return release, true, nil
}
