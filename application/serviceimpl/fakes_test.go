package serviceimpl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"storyforge/domain/models"
	"storyforge/domain/ports"
	"storyforge/infrastructure/generation"
	"storyforge/infrastructure/memory"
	"storyforge/infrastructure/worker"
	"storyforge/pkg/apperrors"
)

// ===== repositories =====

type fakeScriptRepo struct {
	mu      sync.Mutex
	scripts map[uuid.UUID]models.Script
}

func newFakeScriptRepo() *fakeScriptRepo {
	return &fakeScriptRepo{scripts: map[uuid.UUID]models.Script{}}
}

func (r *fakeScriptRepo) Create(_ context.Context, s *models.Script) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt, s.UpdatedAt = time.Now(), time.Now()
	r.scripts[s.ID] = *s
	return nil
}

func (r *fakeScriptRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Script, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scripts[id]
	if !ok {
		return nil, apperrors.NotFound("script %s not found", id)
	}
	return &s, nil
}

func (r *fakeScriptRepo) Update(_ context.Context, s *models.Script) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts[s.ID] = *s
	return nil
}

func (r *fakeScriptRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.scripts, id)
	return nil
}

func (r *fakeScriptRepo) List(_ context.Context, offset, limit int) ([]*models.Script, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.Script, 0, len(r.scripts))
	for _, s := range r.scripts {
		s := s
		all = append(all, &s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if offset >= len(all) {
		return []*models.Script{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeScriptRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.scripts)), nil
}

type fakeKeyframeRepo struct {
	mu          sync.Mutex
	rows        map[uuid.UUID]models.Keyframe
	now         func() time.Time
	completeErr error // MarkCompleted คืน error นี้ (จำลอง DB ล่ม)
}

func newFakeKeyframeRepo() *fakeKeyframeRepo {
	return &fakeKeyframeRepo{rows: map[uuid.UUID]models.Keyframe{}, now: time.Now}
}

func (r *fakeKeyframeRepo) CreateBatch(_ context.Context, keyframes []*models.Keyframe) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, kf := range keyframes {
		kf.CreatedAt, kf.UpdatedAt = r.now(), r.now()
		r.rows[kf.ID] = *kf
	}
	return nil
}

func (r *fakeKeyframeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Keyframe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kf, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("keyframe %s not found", id)
	}
	return &kf, nil
}

func (r *fakeKeyframeRepo) list(scriptID uuid.UUID, completedOnly bool) []*models.Keyframe {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Keyframe{}
	for _, kf := range r.rows {
		kf := kf
		if kf.ScriptID != scriptID || (completedOnly && !kf.IsCompleted()) {
			continue
		}
		out = append(out, &kf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

func (r *fakeKeyframeRepo) ListByScript(_ context.Context, scriptID uuid.UUID) ([]*models.Keyframe, error) {
	return r.list(scriptID, false), nil
}

func (r *fakeKeyframeRepo) ListCompletedByScript(_ context.Context, scriptID uuid.UUID) ([]*models.Keyframe, error) {
	return r.list(scriptID, true), nil
}

func (r *fakeKeyframeRepo) DeleteByScript(_ context.Context, scriptID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, kf := range r.rows {
		if kf.ScriptID == scriptID {
			delete(r.rows, id)
		}
	}
	return nil
}

// update แก้ row ที่มีอยู่ ถ้า row ถูกลบไปแล้วไม่ทำอะไร (เหมือน UPDATE ที่ไม่เจอ row)
func (r *fakeKeyframeRepo) update(id uuid.UUID, fn func(kf *models.Keyframe)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kf, ok := r.rows[id]
	if !ok {
		return nil
	}
	fn(&kf)
	kf.UpdatedAt = r.now()
	r.rows[id] = kf
	return nil
}

func (r *fakeKeyframeRepo) MarkGenerating(_ context.Context, id uuid.UUID, model, aspectRatio, quality string) error {
	return r.update(id, func(kf *models.Keyframe) {
		kf.Status = models.GenerationStatusGenerating
		kf.ErrorMessage = nil
		kf.Model, kf.AspectRatio, kf.Quality = model, aspectRatio, quality
	})
}

func (r *fakeKeyframeRepo) MarkCompleted(_ context.Context, id uuid.UUID, imageURL string) error {
	r.mu.Lock()
	err := r.completeErr
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.update(id, func(kf *models.Keyframe) {
		kf.Status = models.GenerationStatusCompleted
		kf.ImageURL = &imageURL
		kf.ErrorMessage = nil
	})
}

func (r *fakeKeyframeRepo) MarkFailed(_ context.Context, id uuid.UUID, errorMessage string) error {
	return r.update(id, func(kf *models.Keyframe) {
		kf.Status = models.GenerationStatusFailed
		kf.ErrorMessage = &errorMessage
	})
}

func (r *fakeKeyframeRepo) UpdatePrompt(_ context.Context, id uuid.UUID, prompt string) error {
	return r.update(id, func(kf *models.Keyframe) { kf.Prompt = prompt })
}

func (r *fakeKeyframeRepo) FailStale(_ context.Context, scriptID *uuid.UUID, cutoff time.Time, message string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, kf := range r.rows {
		if scriptID != nil && kf.ScriptID != *scriptID {
			continue
		}
		if kf.Status != models.GenerationStatusGenerating || !kf.UpdatedAt.Before(cutoff) {
			continue
		}
		msg := message
		kf.Status = models.GenerationStatusFailed
		kf.ErrorMessage = &msg
		kf.UpdatedAt = r.now()
		r.rows[id] = kf
		n++
	}
	return n, nil
}

// put ใส่ row ตรงๆ สำหรับจัดสถานะใน test
func (r *fakeKeyframeRepo) put(kf models.Keyframe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[kf.ID] = kf
}

type fakeSegmentRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.VideoSegment
	now  func() time.Time
}

func newFakeSegmentRepo() *fakeSegmentRepo {
	return &fakeSegmentRepo{rows: map[uuid.UUID]models.VideoSegment{}, now: time.Now}
}

func (r *fakeSegmentRepo) CreateBatch(_ context.Context, segments []*models.VideoSegment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, seg := range segments {
		seg.CreatedAt, seg.UpdatedAt = r.now(), r.now()
		r.rows[seg.ID] = *seg
	}
	return nil
}

func (r *fakeSegmentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.VideoSegment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seg, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("video segment %s not found", id)
	}
	return &seg, nil
}

func (r *fakeSegmentRepo) list(scriptID uuid.UUID, completedOnly bool) []*models.VideoSegment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.VideoSegment{}
	for _, seg := range r.rows {
		seg := seg
		if seg.ScriptID != scriptID {
			continue
		}
		if completedOnly && (seg.Status != models.GenerationStatusCompleted || seg.URL() == "") {
			continue
		}
		out = append(out, &seg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SegmentIndex < out[j].SegmentIndex })
	return out
}

func (r *fakeSegmentRepo) ListByScript(_ context.Context, scriptID uuid.UUID) ([]*models.VideoSegment, error) {
	return r.list(scriptID, false), nil
}

func (r *fakeSegmentRepo) ListCompletedByScript(_ context.Context, scriptID uuid.UUID) ([]*models.VideoSegment, error) {
	return r.list(scriptID, true), nil
}

func (r *fakeSegmentRepo) DeleteByScript(_ context.Context, scriptID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, seg := range r.rows {
		if seg.ScriptID == scriptID {
			delete(r.rows, id)
		}
	}
	return nil
}

func (r *fakeSegmentRepo) update(id uuid.UUID, fn func(seg *models.VideoSegment)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seg, ok := r.rows[id]
	if !ok {
		return nil
	}
	fn(&seg)
	seg.UpdatedAt = r.now()
	r.rows[id] = seg
	return nil
}

func (r *fakeSegmentRepo) MarkGenerating(_ context.Context, id uuid.UUID, model string) error {
	return r.update(id, func(seg *models.VideoSegment) {
		seg.Status = models.GenerationStatusGenerating
		seg.VideoURL, seg.ErrorMessage, seg.TaskID = nil, nil, ""
		if model != "" {
			seg.Model = model
		}
	})
}

func (r *fakeSegmentRepo) SetTaskID(_ context.Context, id uuid.UUID, taskID string) error {
	return r.update(id, func(seg *models.VideoSegment) { seg.TaskID = taskID })
}

func (r *fakeSegmentRepo) MarkCompleted(_ context.Context, id uuid.UUID, videoURL string) error {
	return r.update(id, func(seg *models.VideoSegment) {
		seg.Status = models.GenerationStatusCompleted
		seg.VideoURL = &videoURL
		seg.ErrorMessage = nil
	})
}

func (r *fakeSegmentRepo) MarkFailed(_ context.Context, id uuid.UUID, errorMessage string) error {
	return r.update(id, func(seg *models.VideoSegment) {
		seg.Status = models.GenerationStatusFailed
		seg.ErrorMessage = &errorMessage
	})
}

func (r *fakeSegmentRepo) FailStale(_ context.Context, scriptID *uuid.UUID, cutoff time.Time, message string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, seg := range r.rows {
		if scriptID != nil && seg.ScriptID != *scriptID {
			continue
		}
		if seg.Status != models.GenerationStatusGenerating || !seg.UpdatedAt.Before(cutoff) {
			continue
		}
		msg := message
		seg.Status = models.GenerationStatusFailed
		seg.ErrorMessage = &msg
		seg.UpdatedAt = r.now()
		r.rows[id] = seg
		n++
	}
	return n, nil
}

func (r *fakeSegmentRepo) put(seg models.VideoSegment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[seg.ID] = seg
}

// fakeTx รัน fn ตรงๆ นับจำนวน scope ที่เปิด
type fakeTx struct {
	mu     sync.Mutex
	scopes int
}

func (t *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.scopes++
	t.mu.Unlock()
	return fn(ctx)
}

// ===== collaborators =====

// fakeTasks vendor ปลอม: prompt ที่อยู่ใน fail จะถูกปฏิเสธตอน submit
type fakeTasks struct {
	mu    sync.Mutex
	specs []ports.JobSpec
	fail  map[string]bool
	seq   int

	// gate ถ้าไม่ nil, submit ครั้งแรกจะรอจนกว่า gate ถูกปิด
	gate chan struct{}
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{fail: map[string]bool{}}
}

func (f *fakeTasks) Submit(ctx context.Context, spec ports.JobSpec) (ports.TaskHandle, error) {
	f.mu.Lock()
	f.specs = append(f.specs, spec)
	f.seq++
	n := f.seq
	gate := f.gate
	failing := f.fail[spec.Prompt]
	f.mu.Unlock()

	if n == 1 && gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ports.TaskHandle{}, ctx.Err()
		}
	}
	if failing {
		return ports.TaskHandle{}, apperrors.Upstream("fake", "prompt rejected", nil)
	}
	return ports.TaskHandle{ID: fmt.Sprintf("task-%d", n), Model: spec.Model, Kind: spec.Kind}, nil
}

func (f *fakeTasks) Poll(_ context.Context, handle ports.TaskHandle) (ports.TaskStatus, error) {
	return ports.TaskStatus{
		State:      ports.TaskSucceeded,
		ResultURLs: []string{"https://vendor.test/" + handle.ID},
	}, nil
}

func (f *fakeTasks) submitted() []ports.JobSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.JobSpec(nil), f.specs...)
}

// specFor คืน spec ล่าสุดของ prompt
func (f *fakeTasks) specFor(prompt string) (ports.JobSpec, bool) {
	specs := f.submitted()
	for i := len(specs) - 1; i >= 0; i-- {
		if specs[i].Prompt == prompt {
			return specs[i], true
		}
	}
	return ports.JobSpec{}, false
}

type fakeBlob struct {
	mu       sync.Mutex
	uploads  map[string][]byte
	contents map[string][]byte // url -> content สำหรับ Fetch
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{uploads: map[string][]byte{}, contents: map[string][]byte{}}
}

func blobURL(category, name string) string {
	return "https://cdn.test/" + category + "/" + name
}

func (b *fakeBlob) Upload(_ context.Context, r io.Reader, name, category string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := blobURL(category, name)
	b.mu.Lock()
	b.uploads[url] = data
	b.mu.Unlock()
	return url, nil
}

func (b *fakeBlob) UploadFromURL(_ context.Context, sourceURL, name, category string) (string, error) {
	if !strings.HasPrefix(sourceURL, "https://") {
		return "", errors.New("bad source url")
	}
	return blobURL(category, name), nil
}

func (b *fakeBlob) Fetch(_ context.Context, sourceURL string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.contents[sourceURL]
	if !ok {
		return nil, apperrors.Upstream("blob", "GET "+sourceURL+" returned 404", nil)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.StatusEvent
}

func (p *recordingPublisher) PublishStatus(_ context.Context, event *ports.StatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

func (p *recordingPublisher) count(status string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Status == status {
			n++
		}
	}
	return n
}

// ===== harness =====

type pipelineHarness struct {
	scripts   *fakeScriptRepo
	keyframes *fakeKeyframeRepo
	segments  *fakeSegmentRepo
	tx        *fakeTx
	tasks     *fakeTasks
	blob      *fakeBlob
	guard     *memory.GenerationGuard
	publisher *recordingPublisher
	pool      *worker.Pool
	reaper    *StaleReaperService
	deps      PipelineDeps

	unitMu   sync.Mutex
	unitErrs []worker.UnitError
}

func (h *pipelineHarness) unitErrors() []worker.UnitError {
	h.unitMu.Lock()
	defer h.unitMu.Unlock()
	return append([]worker.UnitError(nil), h.unitErrs...)
}

func newPipelineHarness(t *testing.T) *pipelineHarness {
	t.Helper()

	h := &pipelineHarness{}
	pool, err := worker.NewPool(0, worker.WithErrorHook(func(ue worker.UnitError) {
		h.unitMu.Lock()
		h.unitErrs = append(h.unitErrs, ue)
		h.unitMu.Unlock()
	}))
	require.NoError(t, err)
	t.Cleanup(pool.Release)

	catalog, err := NewModelCatalog("", nil)
	require.NoError(t, err)

	fast := generation.PollPolicy{Interval: time.Millisecond, MaxAttempts: 5}

	h.scripts = newFakeScriptRepo()
	h.keyframes = newFakeKeyframeRepo()
	h.segments = newFakeSegmentRepo()
	h.tx = &fakeTx{}
	h.tasks = newFakeTasks()
	h.blob = newFakeBlob()
	h.guard = memory.NewGenerationGuard()
	h.publisher = &recordingPublisher{}
	h.pool = pool
	h.reaper = NewStaleReaperService(StaleReaperConfig{StaleAfter: 5 * time.Minute}, h.keyframes, h.segments, nil)

	h.deps = PipelineDeps{
		Scripts:   h.scripts,
		Keyframes: h.keyframes,
		Segments:  h.segments,
		Tx:        h.tx,
		Tasks:     h.tasks,
		Blob:      h.blob,
		Guard:     h.guard,
		Publisher: h.publisher,
		Pool:      h.pool,
		Reaper:    h.reaper,
		Catalog:   catalog,
		Policies:  generation.Policies{Image: fast, Video: fast, Jimeng: fast},
	}
	return h
}

const threeSegmentScript = `第0帧：一只小黄猫蹲在窗台上

0-6s 小黄猫跳下窗台

6-12s 小黄猫走到门口

12-18s 小黄猫推开门走出去`

func (h *pipelineHarness) createScript(t *testing.T, content string) *models.Script {
	t.Helper()
	s := &models.Script{ID: uuid.New(), Title: "cat", Content: content, SegmentDuration: 6}
	require.NoError(t, h.scripts.Create(context.Background(), s))
	return s
}
