package serviceimpl

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyforge/domain/models"
)

type fakeScheduler struct {
	jobs map[string]string
	task func()
}

func (f *fakeScheduler) Start()                    {}
func (f *fakeScheduler) Stop()                     {}
func (f *fakeScheduler) IsRunning() bool           { return true }
func (f *fakeScheduler) RemoveJob(id string) error { delete(f.jobs, id); return nil }
func (f *fakeScheduler) AddJob(id, cronExpr string, task func()) error {
	if f.jobs == nil {
		f.jobs = map[string]string{}
	}
	f.jobs[id] = cronExpr
	f.task = task
	return nil
}

func TestStaleReaperThreshold(t *testing.T) {
	keyframes := newFakeKeyframeRepo()
	segments := newFakeSegmentRepo()
	reaper := NewStaleReaperService(StaleReaperConfig{}, keyframes, segments, nil)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	reaper.now = func() time.Time { return now }

	scriptID := uuid.New()
	other := uuid.New()

	oldKF := models.Keyframe{ID: uuid.New(), ScriptID: scriptID, Status: models.GenerationStatusGenerating, UpdatedAt: now.Add(-5*time.Minute - time.Second)}
	newKF := models.Keyframe{ID: uuid.New(), ScriptID: scriptID, Status: models.GenerationStatusGenerating, UpdatedAt: now.Add(-4 * time.Minute)}
	doneKF := models.Keyframe{ID: uuid.New(), ScriptID: scriptID, Status: models.GenerationStatusCompleted, UpdatedAt: now.Add(-time.Hour)}
	otherKF := models.Keyframe{ID: uuid.New(), ScriptID: other, Status: models.GenerationStatusGenerating, UpdatedAt: now.Add(-time.Hour)}
	for _, kf := range []models.Keyframe{oldKF, newKF, doneKF, otherKF} {
		keyframes.put(kf)
	}
	oldSeg := models.VideoSegment{ID: uuid.New(), ScriptID: scriptID, Status: models.GenerationStatusGenerating, UpdatedAt: now.Add(-time.Hour)}
	segments.put(oldSeg)

	result, err := reaper.ReapScript(context.Background(), scriptID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Keyframes)
	assert.Equal(t, int64(1), result.VideoSegments)

	statusOf := func(id uuid.UUID) models.GenerationStatus {
		kf, err := keyframes.GetByID(context.Background(), id)
		require.NoError(t, err)
		return kf.Status
	}
	assert.Equal(t, models.GenerationStatusFailed, statusOf(oldKF.ID))
	assert.Equal(t, models.GenerationStatusGenerating, statusOf(newKF.ID))
	assert.Equal(t, models.GenerationStatusCompleted, statusOf(doneKF.ID))
	assert.Equal(t, models.GenerationStatusGenerating, statusOf(otherKF.ID), "other scripts are untouched")

	all, err := reaper.ReapAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), all.Keyframes)
	assert.Equal(t, models.GenerationStatusFailed, statusOf(otherKF.ID))
}

func TestStaleReaperRegisterSweep(t *testing.T) {
	sched := &fakeScheduler{}

	disabled := NewStaleReaperService(StaleReaperConfig{}, newFakeKeyframeRepo(), newFakeSegmentRepo(), sched)
	require.NoError(t, disabled.RegisterSweep())
	assert.Empty(t, sched.jobs)

	keyframes := newFakeKeyframeRepo()
	enabled := NewStaleReaperService(StaleReaperConfig{SweepCron: "*/5 * * * *"}, keyframes, newFakeSegmentRepo(), sched)
	require.NoError(t, enabled.RegisterSweep())
	assert.Equal(t, "*/5 * * * *", sched.jobs["stale_reaper"])

	stuck := models.Keyframe{ID: uuid.New(), ScriptID: uuid.New(), Status: models.GenerationStatusGenerating, UpdatedAt: time.Now().Add(-time.Hour)}
	keyframes.put(stuck)

	sched.task()

	kf, err := keyframes.GetByID(context.Background(), stuck.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GenerationStatusFailed, kf.Status)
}
