package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"storyforge/domain/ports"
	"storyforge/pkg/apperrors"
)

const (
	jimengVendor    = "jimeng"
	jimengVersion   = "2022-08-31"
	jimengSuccess   = 10000
	jimengMaxRefs   = 6
	jimengDefaultIn = "jimeng_t2i_v40"
)

// JimengClient Volcengine visual API (async submit / get result)
type JimengClient struct {
	signer     volcSigner
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

type JimengConfig struct {
	AccessKey string
	SecretKey string
	Host      string // visual.volcengineapi.com
	BaseURL   string // ว่าง = https://{Host}
	Timeout   time.Duration
	RateLimit float64
}

func NewJimengClient(cfg JimengConfig) *JimengClient {
	host := cfg.Host
	if host == "" {
		host = "visual.volcengineapi.com"
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://" + host
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &JimengClient{
		signer:     volcSigner{accessKey: cfg.AccessKey, secretKey: cfg.SecretKey, host: host},
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    newLimiter(cfg.RateLimit),
		now:        time.Now,
	}
}

type jimengResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		TaskID    string   `json:"task_id"`
		Status    string   `json:"status"`
		ImageURLs []string `json:"image_urls"`
	} `json:"data"`
}

// jimengBaseSizes ขนาดฐานต่อ aspect ratio ก่อนคูณ quality
var jimengBaseSizes = map[string][2]int{
	"1:1":  {1024, 1024},
	"16:9": {1920, 1080},
	"9:16": {1080, 1920},
	"4:3":  {1024, 768},
	"3:4":  {768, 1024},
	"3:2":  {1536, 1024},
	"2:3":  {1024, 1536},
	"5:4":  {1280, 1024},
	"4:5":  {1024, 1280},
	"21:9": {2560, 1080},
}

var jimengQualityMultipliers = map[string]float64{
	"1K":    1.0,
	"2K":    1.5,
	"4K":    2.0,
	"720p":  1.0,
	"1080p": 1.5,
}

// JimengSize คำนวณ width/height, aspect ที่ไม่รู้จัก (รวม auto) ใช้ 1024x1024
func JimengSize(aspectRatio, quality string) (int, int) {
	base, ok := jimengBaseSizes[aspectRatio]
	if !ok {
		base = [2]int{1024, 1024}
	}
	mult, ok := jimengQualityMultipliers[quality]
	if !ok {
		mult = 1.0
	}
	return int(float64(base[0]) * mult), int(float64(base[1]) * mult)
}

func (c *JimengClient) Submit(ctx context.Context, spec ports.JobSpec) (ports.TaskHandle, error) {
	if c.signer.accessKey == "" || c.signer.secretKey == "" {
		return ports.TaskHandle{}, apperrors.Configuration(jimengVendor, "VOLC_ACCESS_KEY / VOLC_SECRET_KEY are not set")
	}
	if spec.Kind == ports.JobKindVideo {
		return ports.TaskHandle{}, apperrors.Validation("model %s does not generate video", spec.Model)
	}

	reqKey := spec.Model
	if reqKey == "" {
		reqKey = jimengDefaultIn
	}
	width, height := JimengSize(spec.AspectRatio, spec.Quality)

	body := map[string]any{
		"req_key":      reqKey,
		"prompt":       spec.Prompt,
		"force_single": true,
		"width":        width,
		"height":       height,
	}
	if refs := spec.ReferenceURLs; len(refs) > 0 {
		if len(refs) > jimengMaxRefs {
			refs = refs[:jimengMaxRefs]
		}
		body["image_urls"] = refs
	}

	resp, err := c.call(ctx, "CVSync2AsyncSubmitTask", body)
	if err != nil {
		return ports.TaskHandle{}, err
	}
	if resp.Code != jimengSuccess {
		return ports.TaskHandle{}, apperrors.Upstream(jimengVendor, fmt.Sprintf("submit rejected: %s", resp.Message), nil)
	}
	if resp.Data.TaskID == "" {
		return ports.TaskHandle{}, apperrors.Upstream(jimengVendor, "submit response has no task_id", nil)
	}

	return ports.TaskHandle{ID: resp.Data.TaskID, Model: reqKey, Kind: ports.JobKindImage}, nil
}

func (c *JimengClient) Poll(ctx context.Context, handle ports.TaskHandle) (ports.TaskStatus, error) {
	body := map[string]any{
		"req_key":  handle.Model,
		"task_id":  handle.ID,
		"req_json": `{"return_url":true}`,
	}

	resp, err := c.call(ctx, "CVSync2AsyncGetResult", body)
	if err != nil {
		return ports.TaskStatus{}, err
	}

	switch resp.Data.Status {
	case "done":
		if resp.Code != jimengSuccess {
			return ports.TaskStatus{State: ports.TaskFailed, Reason: resp.Message}, nil
		}
		if len(resp.Data.ImageURLs) == 0 {
			return ports.TaskStatus{State: ports.TaskFailed, Reason: "no image returned"}, nil
		}
		return ports.TaskStatus{State: ports.TaskSucceeded, ResultURLs: resp.Data.ImageURLs}, nil
	case "in_queue", "generating":
		return ports.TaskStatus{State: ports.TaskPending}, nil
	case "not_found":
		return ports.TaskStatus{State: ports.TaskFailed, Reason: "task not found"}, nil
	case "expired":
		return ports.TaskStatus{State: ports.TaskFailed, Reason: "task expired"}, nil
	default:
		return ports.TaskStatus{State: ports.TaskFailed, Reason: fmt.Sprintf("unknown task status %q", resp.Data.Status)}, nil
	}
}

func (c *JimengClient) call(ctx context.Context, action string, payload any) (*jimengResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("Action", action)
	query.Set("Version", jimengVersion)

	header := c.signer.sign(http.MethodPost, "/", query, body, c.now())

	var resp jimengResponse
	if err := postJSON(ctx, c.httpClient, c.limiter, jimengVendor, c.baseURL+"/?"+canonicalQuery(query), body, header, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
