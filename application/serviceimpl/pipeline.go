package serviceimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storyforge/domain/ports"
	"storyforge/domain/repositories"
	"storyforge/domain/services"
	"storyforge/infrastructure/generation"
	"storyforge/pkg/apperrors"
	"storyforge/pkg/logger"
)

// Launcher ส่ง background unit เข้า pool (worker.Pool)
type Launcher interface {
	Go(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// PipelineDeps collaborators ที่ keyframe และ video pipeline ใช้ร่วมกัน
type PipelineDeps struct {
	Scripts   repositories.ScriptRepository
	Keyframes repositories.KeyframeRepository
	Segments  repositories.VideoSegmentRepository
	Tx        repositories.Transactor
	Tasks     ports.TaskClientPort
	Blob      ports.BlobStorePort
	Guard     ports.GenerationGuardPort
	Publisher ports.StatusPublisherPort
	Pool      Launcher
	Reaper    services.ReaperService
	Catalog   services.ModelCatalogService
	Policies  generation.Policies
}

// lock ครอบแค่ช่วง advance + delete + create ของ request
const generationLockTTL = 30 * time.Second

func keyframeScriptKey(scriptID uuid.UUID) string { return "keyframes:script:" + scriptID.String() }
func keyframeItemKey(id uuid.UUID) string         { return "keyframes:item:" + id.String() }
func videoScriptKey(scriptID uuid.UUID) string    { return "videos:script:" + scriptID.String() }
func videoItemKey(id uuid.UUID) string            { return "videos:item:" + id.String() }

// epochCheck epoch ที่ unit จับไว้ตอนเริ่ม
type epochCheck struct {
	guard ports.GenerationGuardPort
	key   string
	epoch int64
}

// superseded true เมื่อมี request ใหม่กว่า advance epoch ไปแล้ว
// อ่าน epoch ไม่ได้ถือว่ายังเป็นเจ้าของอยู่
func (e epochCheck) superseded(ctx context.Context) bool {
	current, err := e.guard.Current(ctx, e.key)
	if err != nil {
		logger.WarnContext(ctx, "Failed to read generation epoch", "key", e.key, "error", err)
		return false
	}
	return current != e.epoch
}

// beginGeneration ถือ lock ของ key แล้ว advance epoch และรัน setup
func beginGeneration(ctx context.Context, guard ports.GenerationGuardPort, key string, setup func() error) (epochCheck, error) {
	release, ok, err := guard.TryLock(ctx, "lock:"+key, generationLockTTL)
	if err != nil {
		return epochCheck{}, fmt.Errorf("failed to acquire generation lock: %w", err)
	}
	if !ok {
		return epochCheck{}, apperrors.Conflict("another generation request is being prepared, please retry")
	}
	defer release()

	epoch, err := guard.Advance(ctx, key)
	if err != nil {
		return epochCheck{}, fmt.Errorf("failed to advance generation epoch: %w", err)
	}
	if err := setup(); err != nil {
		return epochCheck{}, err
	}
	return epochCheck{guard: guard, key: key, epoch: epoch}, nil
}

// writeTerminal เขียนสถานะใน transaction ของตัวเอง
// ใช้ context ที่ไม่ถูก cancel เพื่อให้เขียน failed ได้แม้ unit ถูกยกเลิก
func writeTerminal(ctx context.Context, tx repositories.Transactor, fn func(ctx context.Context) error) error {
	return tx.WithinTransaction(context.WithoutCancel(ctx), fn)
}

// protect แปลง panic ใน generation call เป็น error เพื่อให้ row ถูกเขียน failed
func protect(fn func() (string, error)) (url string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// publishStatus error ของ publisher แค่ log
func publishStatus(ctx context.Context, pub ports.StatusPublisherPort, event *ports.StatusEvent) {
	if pub == nil {
		return
	}
	event.At = time.Now().UTC()
	if err := pub.PublishStatus(context.WithoutCancel(ctx), event); err != nil {
		logger.WarnContext(ctx, "Failed to publish status event",
			"entity_type", event.EntityType,
			"entity_id", event.EntityID,
			"error", err,
		)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
