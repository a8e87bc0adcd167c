package generation

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyforge/domain/ports"
	"storyforge/pkg/apperrors"
)

func newJimeng(t *testing.T, replies map[string]string) (*JimengClient, *fakeAggregator) {
	t.Helper()
	fake := &fakeAggregator{replies: replies}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := NewJimengClient(JimengConfig{AccessKey: "ak", SecretKey: "sk", BaseURL: srv.URL})
	client.now = func() time.Time { return time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC) }
	return client, fake
}

func TestJimengSize(t *testing.T) {
	tests := []struct {
		aspect, quality string
		w, h            int
	}{
		{"16:9", "1K", 1920, 1080},
		{"16:9", "2K", 2880, 1620},
		{"1:1", "4K", 2048, 2048},
		{"9:16", "720p", 1080, 1920},
		{"auto", "720p", 1024, 1024},
		{"3:2", "unknown", 1536, 1024},
	}

	for _, tt := range tests {
		t.Run(tt.aspect+"_"+tt.quality, func(t *testing.T) {
			w, h := JimengSize(tt.aspect, tt.quality)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestJimengSubmit(t *testing.T) {
	client, fake := newJimeng(t, map[string]string{
		"/CVSync2AsyncSubmitTask": `{"code":10000,"data":{"task_id":"vt-1"}}`,
	})

	refs := []string{"1", "2", "3", "4", "5", "6", "7"}
	handle, err := client.Submit(context.Background(), ports.JobSpec{
		Kind: ports.JobKindImage, Model: "jimeng_t2i_v40", Prompt: "a fox", AspectRatio: "16:9", Quality: "1K", ReferenceURLs: refs,
	})
	require.NoError(t, err)
	assert.Equal(t, ports.TaskHandle{ID: "vt-1", Model: "jimeng_t2i_v40", Kind: ports.JobKindImage}, handle)

	req := fake.last()
	assert.Equal(t, "CVSync2AsyncSubmitTask", req.Action)
	assert.Equal(t, "jimeng_t2i_v40", req.Body["req_key"])
	assert.Equal(t, true, req.Body["force_single"])
	assert.Equal(t, float64(1920), req.Body["width"])
	assert.Equal(t, float64(1080), req.Body["height"])
	assert.Len(t, req.Body["image_urls"], 6)
	assert.True(t, strings.HasPrefix(req.Auth, "HMAC-SHA256 Credential=ak/20250501/cn-north-1/cv/request, "), req.Auth)
}

func TestJimengSubmitErrors(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		client := NewJimengClient(JimengConfig{})
		_, err := client.Submit(context.Background(), ports.JobSpec{Kind: ports.JobKindImage, Model: "jimeng_t2i_v40"})
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})

	t.Run("rejected code", func(t *testing.T) {
		client, _ := newJimeng(t, map[string]string{
			"/CVSync2AsyncSubmitTask": `{"code":50411,"message":"risk check failed"}`,
		})
		_, err := client.Submit(context.Background(), ports.JobSpec{Kind: ports.JobKindImage, Model: "jimeng_t2i_v40"})
		assert.ErrorIs(t, err, apperrors.ErrUpstream)
		assert.Contains(t, err.Error(), "risk check failed")
	})
}

func TestJimengPoll(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  ports.TaskState
		url   string
	}{
		{"done", `{"code":10000,"data":{"status":"done","image_urls":["https://v/1.png"]}}`, ports.TaskSucceeded, "https://v/1.png"},
		{"done without images", `{"code":10000,"data":{"status":"done","image_urls":[]}}`, ports.TaskFailed, ""},
		{"done with error code", `{"code":50413,"message":"bad","data":{"status":"done"}}`, ports.TaskFailed, ""},
		{"in queue", `{"code":10000,"data":{"status":"in_queue"}}`, ports.TaskPending, ""},
		{"generating", `{"code":10000,"data":{"status":"generating"}}`, ports.TaskPending, ""},
		{"not found", `{"code":10000,"data":{"status":"not_found"}}`, ports.TaskFailed, ""},
		{"expired", `{"code":10000,"data":{"status":"expired"}}`, ports.TaskFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fake := newJimeng(t, map[string]string{"/CVSync2AsyncGetResult": tt.reply})

			status, err := client.Poll(context.Background(), ports.TaskHandle{ID: "vt-1", Model: "jimeng_t2i_v40", Kind: ports.JobKindImage})
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.State)
			if tt.url != "" {
				assert.Equal(t, []string{tt.url}, status.ResultURLs)
			}
			assert.Equal(t, "vt-1", fake.last().Body["task_id"])
		})
	}
}

func TestVolcSignerDeterministic(t *testing.T) {
	s := volcSigner{accessKey: "ak", secretKey: "sk", host: "visual.volcengineapi.com"}
	q := url.Values{"Action": {"CVSync2AsyncSubmitTask"}, "Version": {"2022-08-31"}}
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	a := s.sign("POST", "/", q, []byte(`{"a":1}`), now)
	b := s.sign("POST", "/", q, []byte(`{"a":1}`), now)
	c := s.sign("POST", "/", q, []byte(`{"a":2}`), now)

	assert.Equal(t, a.Get("Authorization"), b.Get("Authorization"))
	assert.NotEqual(t, a.Get("Authorization"), c.Get("Authorization"))
	assert.Equal(t, "20250102T030405Z", a.Get("X-Date"))
	assert.Contains(t, a.Get("Authorization"), "SignedHeaders=content-type;host;x-content-sha256;x-date")
}

func TestCanonicalQuery(t *testing.T) {
	q := url.Values{"Version": {"2022-08-31"}, "Action": {"a b"}}
	assert.Equal(t, "Action=a%20b&Version=2022-08-31", canonicalQuery(q))
}
