package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyforge/domain/ports"
	"storyforge/pkg/apperrors"
)

type recordedRequest struct {
	Path   string
	Auth   string
	Body   map[string]any
	Action string
}

// fakeAggregator บันทึก request และตอบตาม handler ที่กำหนดต่อ path
type fakeAggregator struct {
	mu       sync.Mutex
	requests []recordedRequest
	replies  map[string]string
}

func (f *fakeAggregator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
		Action: r.URL.Query().Get("Action"),
	})
	reply, ok := f.replies[r.URL.Path+r.URL.Query().Get("Action")]
	f.mu.Unlock()

	if !ok {
		http.Error(w, "no route", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(reply))
}

func (f *fakeAggregator) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newAggregator(t *testing.T, replies map[string]string) (*AggregatorClient, *fakeAggregator) {
	t.Helper()
	fake := &fakeAggregator{replies: replies}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	return NewAggregatorClient(AggregatorConfig{BaseURL: srv.URL, APIKey: "sk-test"}), fake
}

func TestAggregatorSubmitPayloads(t *testing.T) {
	submitted := `{"code":0,"data":{"id":"job-42"}}`

	tests := []struct {
		name     string
		spec     ports.JobSpec
		path     string
		expected map[string]any
		absent   []string
	}{
		{
			name: "nano-banana with reference",
			spec: ports.JobSpec{Kind: ports.JobKindImage, Model: "nano-banana-fast", Prompt: "p", AspectRatio: "16:9", ReferenceURLs: []string{"https://ref"}},
			path: "/v1/draw/nano-banana",
			expected: map[string]any{
				"model": "nano-banana-fast", "aspectRatio": "16:9", "webHook": "-1",
				"urls": []any{"https://ref"},
			},
		},
		{
			name:     "nano-banana without reference",
			spec:     ports.JobSpec{Kind: ports.JobKindImage, Model: "nano-banana", Prompt: "p", AspectRatio: "auto"},
			path:     "/v1/draw/nano-banana",
			expected: map[string]any{"model": "nano-banana"},
			absent:   []string{"urls"},
		},
		{
			name:     "sora-image maps 16:9 to 3:2",
			spec:     ports.JobSpec{Kind: ports.JobKindImage, Model: "sora-image", Prompt: "p", AspectRatio: "16:9", ReferenceURLs: []string{"ignored"}},
			path:     "/v1/draw/completions",
			expected: map[string]any{"model": "sora-image", "size": "3:2", "variants": float64(1)},
			absent:   []string{"urls"},
		},
		{
			name:     "sora-image maps 9:16 to 2:3",
			spec:     ports.JobSpec{Kind: ports.JobKindImage, Model: "sora-image", AspectRatio: "9:16"},
			path:     "/v1/draw/completions",
			expected: map[string]any{"size": "2:3"},
		},
		{
			name: "sora video uses last frame as single reference",
			spec: ports.JobSpec{Kind: ports.JobKindVideo, Model: "sora-2", Prompt: "p", AspectRatio: "16:9", Duration: 6, FirstFrameURL: "https://a", LastFrameURL: "https://b"},
			path: "/v1/video/sora-video",
			expected: map[string]any{
				"model": "sora-2", "duration": float64(6), "size": "small", "shutProgress": true, "url": "https://b",
			},
			absent: []string{"firstFrameUrl", "lastFrameUrl"},
		},
		{
			name: "veo uses first and last frame",
			spec: ports.JobSpec{Kind: ports.JobKindVideo, Model: "veo3.1-fast", Prompt: "p", AspectRatio: "16:9", FirstFrameURL: "https://a", LastFrameURL: "https://b"},
			path: "/v1/video/veo",
			expected: map[string]any{
				"model": "veo3.1-fast", "firstFrameUrl": "https://a", "lastFrameUrl": "https://b",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fake := newAggregator(t, map[string]string{tt.path: submitted})

			handle, err := client.Submit(context.Background(), tt.spec)
			require.NoError(t, err)
			assert.Equal(t, "job-42", handle.ID)
			assert.Equal(t, tt.spec.Model, handle.Model)

			req := fake.last()
			assert.Equal(t, tt.path, req.Path)
			assert.Equal(t, "Bearer sk-test", req.Auth)
			for k, v := range tt.expected {
				assert.Equal(t, v, req.Body[k], k)
			}
			for _, k := range tt.absent {
				assert.NotContains(t, req.Body, k)
			}
		})
	}
}

func TestAggregatorSubmitErrors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		client := NewAggregatorClient(AggregatorConfig{BaseURL: "http://unused"})
		_, err := client.Submit(context.Background(), ports.JobSpec{Model: "nano-banana"})
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})

	t.Run("unknown model", func(t *testing.T) {
		client, _ := newAggregator(t, nil)
		_, err := client.Submit(context.Background(), ports.JobSpec{Model: "dall-e"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("non-zero code", func(t *testing.T) {
		client, _ := newAggregator(t, map[string]string{"/v1/video/veo": `{"code":-1,"msg":"insufficient credits"}`})
		_, err := client.Submit(context.Background(), ports.JobSpec{Kind: ports.JobKindVideo, Model: "veo3-pro"})
		assert.ErrorIs(t, err, apperrors.ErrUpstream)
		assert.Contains(t, err.Error(), "insufficient credits")
	})

	t.Run("http error", func(t *testing.T) {
		client, _ := newAggregator(t, map[string]string{})
		_, err := client.Submit(context.Background(), ports.JobSpec{Kind: ports.JobKindVideo, Model: "veo3-pro"})
		assert.ErrorIs(t, err, apperrors.ErrUpstream)
	})
}

func TestAggregatorPoll(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  ports.TaskStatus
	}{
		{
			name:  "results array",
			reply: `{"code":0,"data":{"status":"succeeded","results":[{"url":"https://img/1.png"}]}}`,
			want:  ports.TaskStatus{State: ports.TaskSucceeded, ResultURLs: []string{"https://img/1.png"}},
		},
		{
			name:  "top level url",
			reply: `{"code":0,"data":{"status":"succeeded","url":"https://vid/1.mp4"}}`,
			want:  ports.TaskStatus{State: ports.TaskSucceeded, ResultURLs: []string{"https://vid/1.mp4"}},
		},
		{
			name:  "failure reason",
			reply: `{"code":0,"data":{"status":"failed","failure_reason":"nsfw","error":"x"}}`,
			want:  ports.TaskStatus{State: ports.TaskFailed, Reason: "nsfw"},
		},
		{
			name:  "error fallback",
			reply: `{"code":0,"data":{"status":"failed","error":"quota"}}`,
			want:  ports.TaskStatus{State: ports.TaskFailed, Reason: "quota"},
		},
		{
			name:  "running is pending",
			reply: `{"code":0,"data":{"status":"running","progress":40}}`,
			want:  ports.TaskStatus{State: ports.TaskPending},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fake := newAggregator(t, map[string]string{"/v1/draw/result": tt.reply})

			got, err := client.Poll(context.Background(), ports.TaskHandle{ID: "job-42", Model: "veo3-fast"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "job-42", fake.last().Body["id"])
		})
	}

	t.Run("non-zero code is upstream error", func(t *testing.T) {
		client, _ := newAggregator(t, map[string]string{"/v1/draw/result": `{"code":500,"msg":"boom"}`})
		_, err := client.Poll(context.Background(), ports.TaskHandle{ID: "x"})
		assert.ErrorIs(t, err, apperrors.ErrUpstream)
	})
}
