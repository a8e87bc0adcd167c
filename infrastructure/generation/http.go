package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"storyforge/pkg/apperrors"
)

// newLimiter requests ต่อวินาที, <= 0 = ไม่จำกัด
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// postJSON ส่ง body แล้ว decode response เป็น out
// non-2xx และ transport error เป็น UpstreamError ของ vendor นั้น
func postJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, vendor, url string, body []byte, header http.Header, out any) error {
	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperrors.Upstream(vendor, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Upstream(vendor, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.Upstream(vendor, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(raw), 200)), nil)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.Upstream(vendor, "invalid response body", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
