package ports

import (
	"context"
	"time"
)

// GenerationGuardPort กันงาน generation ของ script เดียวกันทับกัน
//
// Epoch: request ใหม่เรียก Advance ได้ epoch ใหม่, background unit เก็บ epoch ไว้
// แล้วเช็ค Current ก่อนเขียน ถ้าไม่ตรงแปลว่ามี request ใหม่กว่ามาแทนแล้ว
//
// Lock: ครอบช่วง delete + create rows ของ request ให้ทำทีละ request ต่อ script
type GenerationGuardPort interface {
	Advance(ctx context.Context, key string) (int64, error)
	Current(ctx context.Context, key string) (int64, error)

	// TryLock คืน ok=false ถ้ามีคนถืออยู่, release ปลอดภัยที่จะเรียกซ้ำ
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}
