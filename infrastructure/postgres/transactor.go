package postgres

import (
	"context"

	"gorm.io/gorm"

	"storyforge/domain/repositories"
)

type txKey struct{}

// GormTransactor เก็บ *gorm.DB ของ transaction ไว้ใน context
// repository ทุกตัวดึงผ่าน conn() จึงอยู่ใน transaction เดียวกันโดยอัตโนมัติ
type GormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) repositories.Transactor {
	return &GormTransactor{db: db}
}

func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// อยู่ใน transaction อยู่แล้ว: ใช้ตัวเดิม
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn คืน transaction จาก context ถ้ามี, ไม่งั้นใช้ db ปกติ
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
