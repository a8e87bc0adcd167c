package serviceimpl

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyforge/domain/dto"
	"storyforge/domain/models"
	"storyforge/domain/ports"
	"storyforge/pkg/apperrors"
)

// seedKeyframes ใส่ opening frame (ถ้า withOpening) และ body keyframes ที่ completed แล้ว
func seedKeyframes(h *pipelineHarness, scriptID uuid.UUID, withOpening bool, body int) []models.Keyframe {
	var rows []models.Keyframe
	add := func(segmentID string, seq int, opening bool) {
		url := fmt.Sprintf("https://cdn.test/keyframes/%s.jpg", segmentID)
		kf := models.Keyframe{
			ID:             uuid.New(),
			ScriptID:       scriptID,
			SegmentID:      segmentID,
			Sequence:       seq,
			IsOpeningFrame: opening,
			Prompt:         "prompt " + segmentID,
			ImageURL:       &url,
			Status:         models.GenerationStatusCompleted,
			UpdatedAt:      time.Now(),
		}
		h.keyframes.put(kf)
		rows = append(rows, kf)
	}
	if withOpening {
		add("segment_0_first_frame", 0, true)
	}
	for i := 0; i < body; i++ {
		add(fmt.Sprintf("segment_%d", i), i+1, false)
	}
	return rows
}

func TestGenerateVideosBridgesConsecutiveKeyframes(t *testing.T) {
	h := newPipelineHarness(t)
	svc := NewVideoService(h.deps)
	script := h.createScript(t, threeSegmentScript)
	kfs := seedKeyframes(h, script.ID, true, 3)

	// keyframe ที่ยังไม่เสร็จไม่ถูกนับ
	h.keyframes.put(models.Keyframe{ID: uuid.New(), ScriptID: script.ID, SegmentID: "segment_3", Sequence: 4, Status: models.GenerationStatusFailed})

	rows, err := svc.GenerateVideos(context.Background(), &dto.GenerateVideosRequest{ScriptID: script.ID})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for i, row := range rows {
		assert.Equal(t, i, row.SegmentIndex)
		assert.Equal(t, kfs[i].URL(), row.FirstFrameURL)
		assert.Equal(t, kfs[i+1].URL(), row.LastFrameURL)
		assert.Equal(t, kfs[i+1].Prompt, row.Prompt, "prompt comes from the destination frame")
		assert.Equal(t, DefaultVideoModel, row.Model)
		assert.Equal(t, DefaultVideoAspectRatio, row.AspectRatio)
		assert.Equal(t, DefaultVideoDuration, row.Duration)
	}

	h.pool.Wait()

	stored, err := svc.ListByScript(context.Background(), script.ID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, seg := range stored {
		assert.Equal(t, models.GenerationStatusCompleted, seg.Status)
		assert.NotEmpty(t, seg.TaskID)
		assert.Regexp(t, `^https://cdn\.test/videos/video_segment_`+seg.ID.String()+`_\d+\.mp4$`, seg.URL())
	}

	for _, spec := range h.tasks.submitted() {
		assert.Equal(t, ports.JobKindVideo, spec.Kind)
		assert.NotEmpty(t, spec.FirstFrameURL)
		assert.NotEmpty(t, spec.LastFrameURL)
	}
}

func TestGenerateVideosToleratesPartialFailure(t *testing.T) {
	h := newPipelineHarness(t)
	svc := NewVideoService(h.deps)
	script := h.createScript(t, threeSegmentScript)
	seedKeyframes(h, script.ID, true, 3)
	h.tasks.fail["prompt segment_1"] = true

	rows, err := svc.GenerateVideos(context.Background(), &dto.GenerateVideosRequest{ScriptID: script.ID, Model: "veo3-fast", Duration: 8})
	require.NoError(t, err)
	h.pool.Wait()

	byIndex := map[int]models.GenerationStatus{}
	stored, err := h.segments.ListByScript(context.Background(), script.ID)
	require.NoError(t, err)
	for _, seg := range stored {
		byIndex[seg.SegmentIndex] = seg.Status
		assert.Equal(t, "veo3-fast", seg.Model)
		assert.Equal(t, 8.0, seg.Duration)
	}

	assert.Len(t, rows, 3)
	assert.Equal(t, models.GenerationStatusCompleted, byIndex[0])
	assert.Equal(t, models.GenerationStatusFailed, byIndex[1])
	assert.Equal(t, models.GenerationStatusCompleted, byIndex[2])
	assert.Equal(t, 1, h.publisher.count("failed"))
}

func TestGenerateVideosValidation(t *testing.T) {
	h := newPipelineHarness(t)
	svc := NewVideoService(h.deps)
	ctx := context.Background()

	t.Run("no completed keyframes", func(t *testing.T) {
		script := h.createScript(t, threeSegmentScript)
		_, err := svc.GenerateVideos(ctx, &dto.GenerateVideosRequest{ScriptID: script.ID})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("missing opening frame", func(t *testing.T) {
		script := h.createScript(t, threeSegmentScript)
		seedKeyframes(h, script.ID, false, 2)
		_, err := svc.GenerateVideos(ctx, &dto.GenerateVideosRequest{ScriptID: script.ID})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("only the opening frame", func(t *testing.T) {
		script := h.createScript(t, threeSegmentScript)
		seedKeyframes(h, script.ID, true, 0)
		_, err := svc.GenerateVideos(ctx, &dto.GenerateVideosRequest{ScriptID: script.ID})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("unknown model", func(t *testing.T) {
		script := h.createScript(t, threeSegmentScript)
		seedKeyframes(h, script.ID, true, 1)
		_, err := svc.GenerateVideos(ctx, &dto.GenerateVideosRequest{ScriptID: script.ID, Model: "kling"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("unknown script", func(t *testing.T) {
		_, err := svc.GenerateVideos(ctx, &dto.GenerateVideosRequest{ScriptID: uuid.New()})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	assert.Empty(t, h.tasks.submitted())
}

func TestRegenerateVideoSegment(t *testing.T) {
	h := newPipelineHarness(t)
	svc := NewVideoService(h.deps)
	script := h.createScript(t, threeSegmentScript)
	ctx := context.Background()

	oldURL := "https://cdn.test/videos/old.mp4"
	seg := models.VideoSegment{
		ID:            uuid.New(),
		ScriptID:      script.ID,
		SegmentIndex:  1,
		FirstFrameURL: "https://cdn.test/a.jpg",
		LastFrameURL:  "https://cdn.test/b.jpg",
		Prompt:        "走到门口",
		Model:         "veo3-fast",
		AspectRatio:   "9:16",
		Duration:      8,
		VideoURL:      &oldURL,
		Status:        models.GenerationStatusCompleted,
	}
	h.segments.put(seg)

	out, err := svc.RegenerateSegment(ctx, seg.ID, &dto.RegenerateVideoRequest{Model: "sora-2"})
	require.NoError(t, err)
	assert.Equal(t, models.GenerationStatusGenerating, out.Status)
	assert.Nil(t, out.VideoURL)
	assert.Equal(t, "sora-2", out.Model)
	h.pool.Wait()

	spec, ok := h.tasks.specFor("走到门口")
	require.True(t, ok)
	assert.Equal(t, "sora-2", spec.Model)
	assert.Equal(t, "9:16", spec.AspectRatio)
	assert.Equal(t, 8.0, spec.Duration)
	assert.Equal(t, "https://cdn.test/b.jpg", spec.LastFrameURL)

	stored, err := svc.GetByID(ctx, seg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GenerationStatusCompleted, stored.Status)
	assert.NotEqual(t, oldURL, stored.URL())

	_, err = svc.RegenerateSegment(ctx, seg.ID, &dto.RegenerateVideoRequest{Model: "unknown"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestListVideoSegmentsReapsStaleRows(t *testing.T) {
	h := newPipelineHarness(t)
	svc := NewVideoService(h.deps)
	script := h.createScript(t, threeSegmentScript)

	h.segments.put(models.VideoSegment{ID: uuid.New(), ScriptID: script.ID, SegmentIndex: 0, Status: models.GenerationStatusGenerating, UpdatedAt: time.Now().Add(-10 * time.Minute)})
	h.segments.put(models.VideoSegment{ID: uuid.New(), ScriptID: script.ID, SegmentIndex: 1, Status: models.GenerationStatusGenerating, UpdatedAt: time.Now()})

	rows, err := svc.ListByScript(context.Background(), script.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.GenerationStatusFailed, rows[0].Status)
	assert.Equal(t, models.GenerationStatusGenerating, rows[1].Status)
}
