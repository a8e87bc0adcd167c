package repositories

import "context"

// Transactor เปิด transaction scope สั้นๆ ให้ทุก repository call ใน fn
//
// background job แต่ละตัวเปิด scope ของตัวเอง ไม่ใช้ร่วมกับ HTTP request
// หรือ job อื่น, fn คืน error = rollback
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
