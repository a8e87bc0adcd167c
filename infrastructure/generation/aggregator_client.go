package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"storyforge/domain/ports"
	"storyforge/pkg/apperrors"
)

const aggregatorVendor = "aggregator"

// AggregatorClient คุยกับ draw/video API ที่รวม nano-banana, sora และ veo ไว้ที่เดียว
// ทุก model ใช้ endpoint poll เดียวกันคือ /v1/draw/result
type AggregatorClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type AggregatorConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64
}

func NewAggregatorClient(cfg AggregatorConfig) *AggregatorClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AggregatorClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    newLimiter(cfg.RateLimit),
	}
}

type aggregatorEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type aggregatorResult struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	URL           string `json:"url"`
	FailureReason string `json:"failure_reason"`
	Error         string `json:"error"`
	Progress      int    `json:"progress"`
	Results       []struct {
		URL string `json:"url"`
	} `json:"results"`
}

// soraImageSizes sora-image ไม่รองรับ 16:9 / 9:16 จึง map เป็น 3:2 / 2:3
var soraImageSizes = map[string]string{
	"auto": "auto",
	"1:1":  "1:1",
	"3:2":  "3:2",
	"2:3":  "2:3",
	"16:9": "3:2",
	"9:16": "2:3",
}

func (c *AggregatorClient) Submit(ctx context.Context, spec ports.JobSpec) (ports.TaskHandle, error) {
	if c.apiKey == "" {
		return ports.TaskHandle{}, apperrors.Configuration(aggregatorVendor, "GENERATION_API_KEY is not set")
	}

	path, payload, err := c.submitRequest(spec)
	if err != nil {
		return ports.TaskHandle{}, err
	}

	var env aggregatorEnvelope
	if err := c.call(ctx, path, payload, &env); err != nil {
		return ports.TaskHandle{}, err
	}

	var data aggregatorResult
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return ports.TaskHandle{}, apperrors.Upstream(spec.Model, "invalid submit response", err)
		}
	}
	if data.ID == "" {
		return ports.TaskHandle{}, apperrors.Upstream(spec.Model, "submit response has no task id", nil)
	}

	return ports.TaskHandle{ID: data.ID, Model: spec.Model, Kind: spec.Kind}, nil
}

func (c *AggregatorClient) Poll(ctx context.Context, handle ports.TaskHandle) (ports.TaskStatus, error) {
	var env aggregatorEnvelope
	if err := c.call(ctx, "/v1/draw/result", map[string]any{"id": handle.ID}, &env); err != nil {
		return ports.TaskStatus{}, err
	}

	var data aggregatorResult
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return ports.TaskStatus{}, apperrors.Upstream(handle.Model, "invalid poll response", err)
		}
	}

	switch data.Status {
	case "succeeded":
		var urls []string
		for _, r := range data.Results {
			if r.URL != "" {
				urls = append(urls, r.URL)
			}
		}
		if len(urls) == 0 && data.URL != "" {
			urls = []string{data.URL}
		}
		return ports.TaskStatus{State: ports.TaskSucceeded, ResultURLs: urls}, nil
	case "failed":
		reason := data.FailureReason
		if reason == "" {
			reason = data.Error
		}
		if reason == "" {
			reason = "unknown error"
		}
		return ports.TaskStatus{State: ports.TaskFailed, Reason: reason}, nil
	default:
		return ports.TaskStatus{State: ports.TaskPending}, nil
	}
}

// submitRequest เลือก endpoint และ payload ตาม model
func (c *AggregatorClient) submitRequest(spec ports.JobSpec) (string, map[string]any, error) {
	switch {
	case spec.Model == "sora-image":
		size, ok := soraImageSizes[spec.AspectRatio]
		if !ok {
			size = "auto"
		}
		return "/v1/draw/completions", map[string]any{
			"model":        "sora-image",
			"prompt":       spec.Prompt,
			"size":         size,
			"variants":     1,
			"webHook":      "-1",
			"shutProgress": false,
		}, nil

	case strings.HasPrefix(spec.Model, "nano-banana"):
		payload := map[string]any{
			"model":        spec.Model,
			"prompt":       spec.Prompt,
			"aspectRatio":  spec.AspectRatio,
			"webHook":      "-1",
			"shutProgress": false,
		}
		if len(spec.ReferenceURLs) > 0 {
			payload["urls"] = spec.ReferenceURLs
		}
		return "/v1/draw/nano-banana", payload, nil

	case strings.HasPrefix(spec.Model, "sora"):
		payload := map[string]any{
			"model":        spec.Model,
			"prompt":       spec.Prompt,
			"aspectRatio":  spec.AspectRatio,
			"duration":     int(spec.Duration),
			"size":         "small",
			"shutProgress": true,
			"webHook":      "-1",
		}
		// sora รับ reference ได้รูปเดียว ใช้ภาพปลายทาง
		if spec.LastFrameURL != "" {
			payload["url"] = spec.LastFrameURL
		}
		return "/v1/video/sora-video", payload, nil

	case strings.HasPrefix(spec.Model, "veo"):
		payload := map[string]any{
			"model":        spec.Model,
			"prompt":       spec.Prompt,
			"aspectRatio":  spec.AspectRatio,
			"shutProgress": true,
			"webHook":      "-1",
		}
		if spec.FirstFrameURL != "" {
			payload["firstFrameUrl"] = spec.FirstFrameURL
		}
		if spec.LastFrameURL != "" {
			payload["lastFrameUrl"] = spec.LastFrameURL
		}
		return "/v1/video/veo", payload, nil
	}

	return "", nil, apperrors.Validation("unsupported model: %s", spec.Model)
}

func (c *AggregatorClient) call(ctx context.Context, path string, payload any, env *aggregatorEnvelope) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	if err := postJSON(ctx, c.httpClient, c.limiter, aggregatorVendor, c.baseURL+path, body, header, env); err != nil {
		return err
	}
	if env.Code != 0 {
		msg := env.Msg
		if msg == "" {
			msg = "unknown error"
		}
		return apperrors.Upstream(aggregatorVendor, msg, nil)
	}
	return nil
}
